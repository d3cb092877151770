package api

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	authHandler     authHandler
	blogPostHandler blogPostHandler
	userHandler     userHandler
	ttsHandler      *ttsHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Status  string `json:"status" example:"Fail"`
	Message string `json:"message" example:"user not found"`
	Field   string `json:"field,omitempty" example:"title"`
	Details string `json:"details,omitempty" example:"Additional error details"`
}
