package services

import (
	"context"
	"fmt"
)

// Email is an outbound plain-text message.
type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// Notifier delivers emails. A returned error means the message was not accepted.
type Notifier interface {
	Send(ctx context.Context, email Email) error
}

const (
	EmailStatusSent   = "sent"
	EmailStatusFailed = "failed"
)

func welcomeEmail(name, to string) Email {
	return Email{
		To:      to,
		Subject: "Welcome to the blog",
		Text:    fmt.Sprintf("Hi %s,\n\nWelcome! Your account has been created with the email %s.", name, to),
	}
}

func verificationEmail(to, code string) Email {
	return Email{
		To:      to,
		Subject: "Account Verification OTP",
		Text:    fmt.Sprintf("Your OTP is %s. Verify your account using this OTP. It expires in 24 hours.", code),
	}
}

func resetEmail(to, code string) Email {
	return Email{
		To:      to,
		Subject: "Password Reset OTP",
		Text:    fmt.Sprintf("Your OTP for resetting your password is %s. It expires in 10 minutes.", code),
	}
}
