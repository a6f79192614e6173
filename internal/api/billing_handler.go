package api

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"chartvision-backend-go/internal/core"
	"chartvision-backend-go/internal/middleware"
	"chartvision-backend-go/internal/models"
)

// BillingHandler handles upgrade/checkout API endpoints.
type BillingHandler struct {
	billingService core.BillingService
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(bs core.BillingService) *BillingHandler {
	return &BillingHandler{billingService: bs}
}

// CreateCheckoutSession handles POST /api/v1/billing/create-checkout-session,
// starting a FREE -> PRO upgrade from the pricing page.
func (h *BillingHandler) CreateCheckoutSession(c *gin.Context) {
	session, err := middleware.SessionFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: no session in context"})
		return
	}

	var body models.CreateCheckoutSessionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	sessionID, err := h.billingService.CreateCheckoutSession(c.Request.Context(), session.UserID, body.PriceID)
	if err != nil {
		if errors.Is(err, core.ErrPriceNotFound) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Unknown price", Details: err.Error()})
			return
		}
		log.Printf("CreateCheckoutSession Error: failed for user %s: %v", session.UserID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create checkout session", Details: err.Error()})
		return
	}

	c.JSON(http.StatusOK, CheckoutSessionResponse{SessionID: sessionID})
}

// HandlePaymentWebhook handles POST /api/v1/billing/webhooks/payments. The
// endpoint is public; the provider authenticates via the signature header,
// which the service verifies.
func (h *BillingHandler) HandlePaymentWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Failed to read webhook payload"})
		return
	}
	signature := c.GetHeader("X-Payment-Signature")

	if err := h.billingService.HandlePaymentWebhook(c.Request.Context(), signature, payload); err != nil {
		switch {
		case errors.Is(err, core.ErrWebhookSignature):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid webhook signature"})
		case errors.Is(err, core.ErrWebhookPayload), errors.Is(err, core.ErrUserNotFound):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid webhook payload", Details: err.Error()})
		default:
			log.Printf("HandlePaymentWebhook Error: %v", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to process webhook"})
		}
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Webhook processed"})
}
