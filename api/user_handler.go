package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-blog-backend/models"
	"github.com/rpupo63/portfolio-blog-backend/services"
)

type userHandler struct {
	responder Responder
	logger    zerolog.Logger
	auth      *services.AuthService
}

func newUserHandler(authService *services.AuthService) userHandler {
	logger := log.With().Str("handlerName", "userHandler").Logger()

	return userHandler{
		responder: NewResponder(logger),
		logger:    logger,
		auth:      authService,
	}
}

type userDataResponse struct {
	Success  bool            `json:"success"`
	UserData models.UserData `json:"userData"`
}

type userListResponse struct {
	Success bool              `json:"success"`
	Users   []models.UserData `json:"users"`
}

type setRoleRequest struct {
	Role string `json:"role"`
}

// getUserData returns the caller's public profile
// @Summary Current user
// @Tags Users
// @Produce json
// @Success 200 {object} userDataResponse
// @Failure 401 {object} ErrorResponse "Not authenticated"
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /user/data [get]
func (h userHandler) getUserData() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := ctxGetIdentity(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		data, err := h.auth.GetUserData(r.Context(), identity.UserID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, userDataResponse{Success: true, UserData: data})
	}
}

// listUsers returns every account
// @Summary List users
// @Tags Users
// @Produce json
// @Success 200 {object} userListResponse
// @Failure 403 {object} ErrorResponse "Caller is not an admin"
// @Router /user [get]
func (h userHandler) listUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := h.auth.ListUsers(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, userListResponse{Success: true, Users: users})
	}
}

// setRole changes another user's role
// @Summary Set user role
// @Tags Users
// @Accept json
// @Produce json
// @Param userID path string true "User ID"
// @Param body body setRoleRequest true "New role"
// @Success 200 {object} userDataResponse
// @Failure 400 {object} ErrorResponse "Unknown role"
// @Failure 403 {object} ErrorResponse "Caller is not a main-admin"
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /user/{userID}/role [put]
func (h userHandler) setRole() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := ctxGetIdentity(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req setRoleRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		data, err := h.auth.SetRole(r.Context(), identity.UserID, chi.URLParam(r, "userID"), req.Role)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, userDataResponse{Success: true, UserData: data})
	}
}
