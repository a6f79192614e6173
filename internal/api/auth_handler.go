package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"chartvision-backend-go/internal/core"
	"chartvision-backend-go/internal/middleware"
)

// AuthHandler handles authentication related API endpoints.
type AuthHandler struct {
	userService core.UserService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(us core.UserService) *AuthHandler {
	return &AuthHandler{userService: us}
}

// InitializeUserProfile handles the POST /api/v1/users/initialize endpoint.
// It is called by the client after a Firebase authentication event
// (login/signup) to ensure a corresponding profile exists in Firestore.
func (h *AuthHandler) InitializeUserProfile(c *gin.Context) {
	session, err := middleware.SessionFromContext(c)
	if err != nil {
		log.Println("InitializeUserProfile Error: no authenticated session in context. Auth middleware might not have run or failed.")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: no session in context"})
		return
	}

	user, created, err := h.userService.GetOrCreate(c.Request.Context(), session.UserID, session.Email, session.DisplayName, session.PhotoURL)
	if err != nil {
		log.Printf("InitializeUserProfile Error: userService.GetOrCreate failed for userID %s: %v", session.UserID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to initialize user profile", Details: err.Error()})
		return
	}

	if created {
		log.Printf("User profile created for userID: %s", session.UserID)
		c.JSON(http.StatusCreated, user)
	} else {
		c.JSON(http.StatusOK, user)
	}
}
