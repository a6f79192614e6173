package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"chartvision-backend-go/internal/core"
	"chartvision-backend-go/internal/middleware"
	"chartvision-backend-go/internal/models"
)

// HistoryHandler handles analysis-history API endpoints.
type HistoryHandler struct {
	historyService core.HistoryService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(hs core.HistoryService) *HistoryHandler {
	return &HistoryHandler{historyService: hs}
}

// ListMyHistory handles the GET /api/v1/history endpoint. It returns the
// caller's analyses, newest first, with "limit" and "startAfter" query
// parameters for pagination.
func (h *HistoryHandler) ListMyHistory(c *gin.Context) {
	session, err := middleware.SessionFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: no session in context"})
		return
	}

	paginationParams := map[string]string{}
	if limit := c.Query("limit"); limit != "" {
		paginationParams["limit"] = limit
	}
	if startAfter := c.Query("startAfter"); startAfter != "" {
		paginationParams["startAfter"] = startAfter
	}

	items, err := h.historyService.ListForUser(c.Request.Context(), session.UserID, paginationParams)
	if err != nil {
		log.Printf("ListMyHistory Error: failed to list history for user %s: %v", session.UserID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve analysis history", Details: err.Error()})
		return
	}
	if items == nil {
		items = []*models.AnalysisHistoryItem{}
	}

	total, err := h.historyService.CountForUser(c.Request.Context(), session.UserID)
	if err != nil {
		// The page itself loaded; a count failure degrades to the page size.
		log.Printf("ListMyHistory Warning: failed to count history for user %s: %v", session.UserID, err)
		total = len(items)
	}

	c.JSON(http.StatusOK, HistoryResponse{Items: items, Total: total})
}
