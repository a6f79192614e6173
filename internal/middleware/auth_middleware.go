package middleware

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is a local definition for sending standardized error messages.
// It mirrors the one in internal/api to avoid import cycles.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Session carries the identity claims of the authenticated caller. It is
// stored once in the request context by the auth middleware and handed
// explicitly to whatever needs identity, instead of each consumer fishing
// individual claims out of ambient state.
type Session struct {
	UserID      string
	Email       string
	DisplayName string
	PhotoURL    string
}

// sessionContextKey is the gin context key the Session is stored under.
const sessionContextKey = "authSession"

// ErrNoSession is returned by SessionFromContext when the auth middleware
// did not run or failed.
var ErrNoSession = errors.New("no authenticated session in context")

// SessionFromContext retrieves the authenticated session set by VerifyToken.
func SessionFromContext(c *gin.Context) (*Session, error) {
	raw, exists := c.Get(sessionContextKey)
	if !exists {
		return nil, ErrNoSession
	}
	session, ok := raw.(*Session)
	if !ok || session == nil || session.UserID == "" {
		return nil, ErrNoSession
	}
	return session, nil
}

// AuthMiddleware provides Gin middleware for Firebase token authentication.
type AuthMiddleware struct {
	firebaseAuthClient *auth.Client
}

// NewAuthMiddleware creates a new AuthMiddleware instance. It panics if the
// auth client is nil, as this is a critical setup dependency.
func NewAuthMiddleware(fbAuthClient *auth.Client) *AuthMiddleware {
	if fbAuthClient == nil {
		log.Fatal("CRITICAL_ERROR: Firebase Auth client is not initialized for AuthMiddleware.")
		panic("Firebase Auth client is not initialized for AuthMiddleware")
	}
	return &AuthMiddleware{firebaseAuthClient: fbAuthClient}
}

// VerifyToken verifies a Firebase ID token from the Authorization header.
// If valid, it stores a Session in the Gin context for downstream handlers.
func (m *AuthMiddleware) VerifyToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header is required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header format must be 'Bearer {token}'"})
			return
		}
		idToken := parts[1]

		token, err := m.firebaseAuthClient.VerifyIDToken(c.Request.Context(), idToken)
		if err != nil {
			log.Printf("AuthMiddleware: error verifying Firebase ID token: %v", err)
			// Generic message to the client; specifics stay server-side.
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired authentication token"})
			return
		}

		session := &Session{UserID: token.UID}
		if email, ok := token.Claims["email"].(string); ok {
			session.Email = email
		}
		if name, ok := token.Claims["name"].(string); ok {
			session.DisplayName = name
		}
		if picture, ok := token.Claims["picture"].(string); ok {
			session.PhotoURL = picture
		}
		c.Set(sessionContextKey, session)

		c.Next()
	}
}
