package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rpupo63/portfolio-blog-backend/auth"
	"github.com/rpupo63/portfolio-blog-backend/database"
	"github.com/rpupo63/portfolio-blog-backend/errs"
	"github.com/rpupo63/portfolio-blog-backend/metrics"
	"github.com/rpupo63/portfolio-blog-backend/models"
)

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

type TokenIssuer interface {
	Issue(userID string) (string, error)
	Verify(token string) (string, error)
}

const defaultNotifyTimeout = 10 * time.Second

// AuthService handles accounts, sessions and one-time codes.
type AuthService struct {
	users         database.UserStore
	hasher        PasswordHasher
	tokens        TokenIssuer
	notifier      Notifier
	metrics       metrics.Recorder
	logger        zerolog.Logger
	now           func() time.Time
	generateOTP   func() (string, error)
	notifyTimeout time.Duration

	privilegedSignup bool
}

func NewAuthService(users database.UserStore, hasher PasswordHasher, tokens TokenIssuer, notifier Notifier, rec metrics.Recorder, logger zerolog.Logger) *AuthService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &AuthService{
		users:         users,
		hasher:        hasher,
		tokens:        tokens,
		notifier:      notifier,
		metrics:       rec,
		logger:        logger.With().Str("serviceName", "authService").Logger(),
		now:           time.Now,
		generateOTP:   auth.GenerateOTP,
		notifyTimeout: defaultNotifyTimeout,
	}
}

// WithClock replaces the time source used for OTP expiry.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// WithPrivilegedSignup lets Register accept the admin and main-admin roles.
// Off by default; roles are then granted through SetRole.
func (s *AuthService) WithPrivilegedSignup(allow bool) *AuthService {
	s.privilegedSignup = allow
	return s
}

func checkPasswordLength(password string) error {
	if len(password) > auth.MaxPasswordBytes {
		return errs.NewValidationError("password", fmt.Sprintf("password must be at most %d bytes", auth.MaxPasswordBytes))
	}
	return nil
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User        *models.User
	Token       string
	EmailStatus string
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return AuthResult{}, errs.NewMissingDetailsError()
	}
	if err := checkPasswordLength(in.Password); err != nil {
		return AuthResult{}, err
	}

	role, ok := models.ParseRole(in.Role)
	if !ok {
		return AuthResult{}, errs.NewValidationError("role", "role must be one of user, admin, main-admin")
	}
	if role != models.RoleUser && !s.privilegedSignup {
		return AuthResult{}, errs.NewInsufficientRoleError("the " + string(role) + " role is granted by a main-admin")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return AuthResult{}, errs.NewDuplicateEmailError()
	} else if !errors.Is(err, errs.ErrNotFound) {
		return AuthResult{}, errs.NewDatabaseError("find", "user", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return AuthResult{}, errs.NewInternalErrorWithCause("failed to hash password", err)
	}

	user := &models.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Password:  hash,
		Role:      role,
		CreatedAt: s.now().UTC(),
	}
	if err := s.users.Add(ctx, user); err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			return AuthResult{}, errs.NewDuplicateEmailError()
		}
		return AuthResult{}, errs.NewDatabaseError("add", "user", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return AuthResult{}, errs.NewInternalErrorWithCause("failed to issue session token", err)
	}

	s.metrics.RecordRegistration()
	s.logger.Info().Str("userID", user.ID).Str("role", string(role)).Msg("user registered")

	status := s.notify(ctx, "welcome", welcomeEmail(user.Name, user.Email))
	return AuthResult{User: user, Token: token, EmailStatus: status}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return AuthResult{}, errs.NewMissingDetailsError()
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		s.metrics.RecordLogin(false)
		if errors.Is(err, errs.ErrNotFound) {
			return AuthResult{}, errs.NewUserNotFoundError()
		}
		return AuthResult{}, errs.NewDatabaseError("find", "user", err)
	}

	if !s.hasher.Verify(password, user.Password) {
		s.metrics.RecordLogin(false)
		return AuthResult{}, errs.NewIncorrectPasswordError()
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return AuthResult{}, errs.NewInternalErrorWithCause("failed to issue session token", err)
	}

	s.metrics.RecordLogin(true)
	return AuthResult{User: user, Token: token}, nil
}

// Authenticate resolves a session token to the caller's identity. The role is
// read from the store so a role change applies to tokens already issued.
func (s *AuthService) Authenticate(ctx context.Context, token string) (auth.Identity, error) {
	if token == "" {
		return auth.Identity{}, errs.NewMissingTokenError()
	}

	userID, err := s.tokens.Verify(token)
	if err != nil {
		return auth.Identity{}, errs.NewInvalidTokenError(err)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return auth.Identity{}, errs.NewNotAuthenticatedError("account no longer exists")
		}
		return auth.Identity{}, errs.NewDatabaseError("find", "user", err)
	}

	return auth.Identity{UserID: user.ID, Role: user.Role}, nil
}

// RequestEmailVerificationOtp stores a 24 hour code and emails it.
func (s *AuthService) RequestEmailVerificationOtp(ctx context.Context, userID string) (string, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.IsAccountVerified {
		return "", errs.NewAlreadyVerifiedError()
	}

	code, err := s.issueOTP(ctx, user.ID, auth.VerificationOTPTTL)
	if err != nil {
		return "", err
	}
	return s.notify(ctx, "verify_otp", verificationEmail(user.Email, code)), nil
}

func (s *AuthService) ConfirmEmailVerification(ctx context.Context, userID, otp string) error {
	otp = strings.TrimSpace(otp)
	if userID == "" || otp == "" {
		return errs.NewMissingDetailsError()
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}
	if !user.HasOTP() {
		return errs.NewNoActiveOtpError()
	}

	now := s.now()
	if now.After(*user.VerifyOTPExpireAt) {
		return errs.NewOtpExpiredError()
	}
	if *user.VerifyOTP != otp {
		return errs.NewOtpMismatchError()
	}

	if err := s.users.VerifyAccount(ctx, user.ID, otp, now); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return errs.NewNoActiveOtpError()
		}
		return errs.NewDatabaseError("verify", "user", err)
	}

	s.logger.Info().Str("userID", user.ID).Msg("account verified")
	return nil
}

// RequestPasswordResetOtp stores a 10 minute code and emails it.
func (s *AuthService) RequestPasswordResetOtp(ctx context.Context, userID string) (string, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return "", err
	}

	code, err := s.issueOTP(ctx, user.ID, auth.ResetOTPTTL)
	if err != nil {
		return "", err
	}
	return s.notify(ctx, "reset_otp", resetEmail(user.Email, code)), nil
}

// ConfirmPasswordReset replaces the password when otp is the stored code and
// its expiry instant has not passed.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, email, otp, newPassword string) error {
	email = strings.TrimSpace(email)
	otp = strings.TrimSpace(otp)
	if email == "" || otp == "" || newPassword == "" {
		return errs.NewMissingDetailsError()
	}
	if err := checkPasswordLength(newPassword); err != nil {
		return err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return errs.NewUserNotFoundError()
		}
		return errs.NewDatabaseError("find", "user", err)
	}
	if !user.HasOTP() {
		return errs.NewNoActiveOtpError()
	}

	now := s.now()
	if *user.VerifyOTP != otp || now.After(*user.VerifyOTPExpireAt) {
		return errs.NewOtpInvalidOrExpiredError()
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return errs.NewInternalErrorWithCause("failed to hash password", err)
	}

	if err := s.users.ResetPassword(ctx, user.ID, otp, hash, now); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return errs.NewNoActiveOtpError()
		}
		return errs.NewDatabaseError("reset password for", "user", err)
	}

	s.logger.Info().Str("userID", user.ID).Msg("password reset")
	return nil
}

func (s *AuthService) GetUserData(ctx context.Context, userID string) (models.UserData, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return models.UserData{}, err
	}
	return user.Data(), nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]models.UserData, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "users", err)
	}

	data := make([]models.UserData, 0, len(users))
	for _, u := range users {
		data = append(data, u.Data())
	}
	return data, nil
}

// SetRole changes another user's role. Only a main-admin may do this.
func (s *AuthService) SetRole(ctx context.Context, callerID, targetID, role string) (models.UserData, error) {
	caller, err := s.findUser(ctx, callerID)
	if err != nil {
		return models.UserData{}, err
	}
	if caller.Role != models.RoleMainAdmin {
		return models.UserData{}, errs.NewInsufficientRoleError("only a main-admin can change roles")
	}

	newRole, ok := models.ParseRole(role)
	if !ok || role == "" {
		return models.UserData{}, errs.NewValidationError("role", "role must be one of user, admin, main-admin")
	}

	if err := s.users.SetRole(ctx, targetID, newRole); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return models.UserData{}, errs.NewUserNotFoundError()
		}
		return models.UserData{}, errs.NewDatabaseError("update", "user", err)
	}

	s.logger.Info().Str("callerID", caller.ID).Str("userID", targetID).Str("role", role).Msg("role changed")
	return s.GetUserData(ctx, targetID)
}

func (s *AuthService) findUser(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, errs.NewMissingDetailsError()
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.NewUserNotFoundError()
		}
		return nil, errs.NewDatabaseError("find", "user", err)
	}
	return user, nil
}

func (s *AuthService) issueOTP(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	code, err := s.generateOTP()
	if err != nil {
		return "", errs.NewInternalErrorWithCause("failed to generate otp", err)
	}
	if err := s.users.SetOTP(ctx, userID, code, s.now().Add(ttl).UTC()); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return "", errs.NewUserNotFoundError()
		}
		return "", errs.NewDatabaseError("store otp for", "user", err)
	}
	return code, nil
}

// notify sends best effort. A failure is logged and counted, never returned.
func (s *AuthService) notify(ctx context.Context, kind string, email Email) string {
	if s.notifier == nil {
		return EmailStatusFailed
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	if err := s.notifier.Send(sendCtx, email); err != nil {
		s.metrics.RecordNotification(kind, false)
		s.logger.Warn().Err(err).Str("kind", kind).Msg("email notification failed")
		return EmailStatusFailed
	}

	s.metrics.RecordNotification(kind, true)
	return EmailStatusSent
}
