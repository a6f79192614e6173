package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"chartvision-backend-go/internal/core"
	"chartvision-backend-go/internal/middleware"
)

// UsageHandler handles quota-related API endpoints.
type UsageHandler struct {
	userService  core.UserService
	usageService core.UsageService
}

// NewUsageHandler creates a new UsageHandler.
func NewUsageHandler(us core.UserService, qs core.UsageService) *UsageHandler {
	return &UsageHandler{userService: us, usageService: qs}
}

// GetMyUsage handles the GET /api/v1/usage/me endpoint. It reports how many
// analyses the caller has performed today and how many remain, applying the
// lazy create and day-boundary reset as a side effect of the read.
func (h *UsageHandler) GetMyUsage(c *gin.Context) {
	session, err := middleware.SessionFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: no session in context"})
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), session.UserID)
	if err != nil {
		log.Printf("GetMyUsage Error: failed to load user %s: %v", session.UserID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve user profile", Details: err.Error()})
		return
	}

	record, err := h.usageService.FetchUsage(c.Request.Context(), session.UserID)
	if err != nil {
		log.Printf("GetMyUsage Error: failed to fetch usage for user %s: %v", session.UserID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Could not fetch usage data", Details: err.Error()})
		return
	}

	resp := UsageResponse{
		AnalysisCountToday: record.AnalysisCountToday,
		LastAnalysisDate:   record.LastAnalysisDate,
		Limit:              h.usageService.Limit(),
		Remaining:          record.Remaining(h.usageService.Limit()),
		Unlimited:          user.IsPro(),
	}
	c.JSON(http.StatusOK, resp)
}
