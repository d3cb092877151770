package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	VerificationOTPTTL = 24 * time.Hour
	ResetOTPTTL        = 10 * time.Minute
)

var otpSpan = big.NewInt(900000)

// GenerateOTP draws a six digit code uniformly from [100000, 999999].
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpSpan)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
