package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-blog-backend/models"
	"github.com/rpupo63/portfolio-blog-backend/services"
)

type authHandler struct {
	responder Responder
	logger    zerolog.Logger
	auth      *services.AuthService
	cookies   cookiePolicy
}

func newAuthHandler(authService *services.AuthService, cookies cookiePolicy) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder: NewResponder(logger),
		logger:    logger,
		auth:      authService,
		cookies:   cookies,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type registerResponse struct {
	Success     bool         `json:"success"`
	Status      string       `json:"status"`
	Message     string       `json:"message"`
	NewUser     *models.User `json:"newUser"`
	Token       string       `json:"token,omitempty"`
	EmailStatus string       `json:"emailStatus"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool         `json:"success"`
	Status  string       `json:"status"`
	Message string       `json:"message"`
	User    *models.User `json:"user"`
	Token   string       `json:"token"`
}

type messageResponse struct {
	Success     bool   `json:"success"`
	Status      string `json:"status,omitempty"`
	Message     string `json:"message"`
	EmailStatus string `json:"emailStatus,omitempty"`
}

// register creates an account and starts a session
// @Summary Register
// @Description Creates a user, sets the session cookie and sends a best-effort welcome email
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body registerRequest true "Account details"
// @Success 200 {object} registerResponse
// @Failure 400 {object} ErrorResponse "Missing details or unknown role"
// @Failure 409 {object} ErrorResponse "Email already registered"
// @Router /api/auth/register [post]
func (h authHandler) register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		result, err := h.auth.Register(r.Context(), services.RegisterInput{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
			Role:     req.Role,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.cookies.set(w, result.Token)
		h.responder.WriteJSON(w, registerResponse{
			Success:     true,
			Status:      "Success",
			Message:     "User registered successfully",
			NewUser:     result.User,
			Token:       result.Token,
			EmailStatus: result.EmailStatus,
		})
	}
}

// login checks credentials and starts a session
// @Summary Login
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "Credentials"
// @Success 200 {object} loginResponse
// @Failure 401 {object} ErrorResponse "Incorrect password"
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /api/auth/login [post]
func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		result, err := h.auth.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.cookies.set(w, result.Token)
		h.responder.WriteJSON(w, loginResponse{
			Success: true,
			Status:  "Success",
			Message: "Login successful",
			User:    result.User,
			Token:   result.Token,
		})
	}
}

// logout clears the session cookie. Tokens already handed out stay valid until they expire.
// @Summary Logout
// @Tags Auth
// @Produce json
// @Success 200 {object} messageResponse
// @Router /api/auth/logout [post]
func (h authHandler) logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.cookies.clear(w)
		h.responder.WriteJSON(w, messageResponse{
			Success: true,
			Status:  "Success",
			Message: "Logged out",
		})
	}
}

// sendVerifyOtp emails a 24 hour verification code to the caller
// @Summary Send verification OTP
// @Tags Auth
// @Produce json
// @Success 200 {object} messageResponse
// @Failure 400 {object} ErrorResponse "Account already verified"
// @Failure 401 {object} ErrorResponse "Not authenticated"
// @Router /api/auth/emailOtp [post]
func (h authHandler) sendVerifyOtp() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := ctxGetIdentity(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		status, err := h.auth.RequestEmailVerificationOtp(r.Context(), identity.UserID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, messageResponse{
			Success:     true,
			Message:     "Verification OTP sent on email",
			EmailStatus: status,
		})
	}
}

type verifyEmailRequest struct {
	OTP string `json:"otp"`
}

// verifyEmail marks the caller's account verified
// @Summary Verify email
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body verifyEmailRequest true "Code"
// @Success 200 {object} messageResponse
// @Failure 400 {object} ErrorResponse "Missing, expired or mismatched code"
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /api/auth/verifyEmail [post]
func (h authHandler) verifyEmail() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := ctxGetIdentity(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req verifyEmailRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.auth.ConfirmEmailVerification(r.Context(), identity.UserID, req.OTP); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, messageResponse{
			Success: true,
			Message: "Email verified successfully",
		})
	}
}

// isAuthenticated reports that the session is valid; the auth middleware has already checked it
// @Summary Check session
// @Tags Auth
// @Produce json
// @Success 200 {object} messageResponse
// @Failure 401 {object} ErrorResponse "Not authenticated"
// @Router /api/auth/is-auth [get]
func (h authHandler) isAuthenticated() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.WriteJSON(w, map[string]bool{"success": true})
	}
}

// sendResetOtp emails a 10 minute password reset code to the caller
// @Summary Send reset OTP
// @Tags Auth
// @Produce json
// @Success 200 {object} messageResponse
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /api/auth/send-reset-otp [post]
func (h authHandler) sendResetOtp() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := ctxGetIdentity(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		status, err := h.auth.RequestPasswordResetOtp(r.Context(), identity.UserID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, messageResponse{
			Success:     true,
			Message:     "OTP sent to your email",
			EmailStatus: status,
		})
	}
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

// resetPassword sets a new password using a reset code
// @Summary Reset password
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body resetPasswordRequest true "Email, code and new password"
// @Success 200 {object} messageResponse
// @Failure 400 {object} ErrorResponse "Missing details, invalid or expired code"
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /api/auth/reset-password [post]
func (h authHandler) resetPassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resetPasswordRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.auth.ConfirmPasswordReset(r.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, messageResponse{
			Success: true,
			Message: "Password has been reset successfully",
		})
	}
}
