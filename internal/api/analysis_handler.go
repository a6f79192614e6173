package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"chartvision-backend-go/internal/ai"
	"chartvision-backend-go/internal/core"
	"chartvision-backend-go/internal/middleware"
	"chartvision-backend-go/internal/models"
)

// AnalysisHandler handles analysis-related API endpoints.
type AnalysisHandler struct {
	userService     core.UserService
	usageService    core.UsageService
	analysisService core.AnalysisService
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(us core.UserService, qs core.UsageService, as core.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{userService: us, usageService: qs, analysisService: as}
}

// Analyze handles the POST /api/v1/analyses endpoint. Validation failures
// are rejected before any quota consumption or remote call; quota
// exhaustion is rejected before the model call is made.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	session, err := middleware.SessionFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: no session in context"})
		return
	}

	var body models.AnalyzeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	req, err := body.BuildAnalysisRequest()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid analysis request", Details: err.Error()})
		return
	}

	// The profile is created lazily here as well, so a freshly signed-up
	// user can analyze without a separate initialize round-trip.
	user, _, err := h.userService.GetOrCreate(c.Request.Context(), session.UserID, session.Email, session.DisplayName, session.PhotoURL)
	if err != nil {
		log.Printf("Analyze Error: failed to resolve user %s: %v", session.UserID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to resolve user profile", Details: err.Error()})
		return
	}

	result, err := h.analysisService.Analyze(c.Request.Context(), user, req)
	if err != nil {
		h.writeAnalyzeError(c, session.UserID, err)
		return
	}

	resp := AnalyzeResponse{Result: result, Unlimited: user.IsPro()}
	if !user.IsPro() {
		if record, usageErr := h.usageService.FetchUsage(c.Request.Context(), session.UserID); usageErr == nil {
			resp.Remaining = record.Remaining(h.usageService.Limit())
		}
	}
	c.JSON(http.StatusOK, resp)
}

// writeAnalyzeError maps dispatcher failures onto the error taxonomy:
// quota, authentication, remote-call, and everything else.
func (h *AnalysisHandler) writeAnalyzeError(c *gin.Context, userID string, err error) {
	switch {
	case errors.Is(err, core.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Please sign in to analyze charts"})
	case errors.Is(err, core.ErrQuotaExceeded):
		c.JSON(http.StatusTooManyRequests, ErrorResponse{
			Error:   "Usage limit reached",
			Details: err.Error(),
		})
	case errors.Is(err, ai.ErrModelCall), errors.Is(err, ai.ErrInvalidOutput):
		// Surface the underlying message so the client can show it in the
		// failure notice.
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Analysis failed", Details: err.Error()})
	default:
		log.Printf("Analyze Error: analysis for user %s failed: %v", userID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Analysis failed", Details: err.Error()})
	}
}
