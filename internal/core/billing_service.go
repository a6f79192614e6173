package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"chartvision-backend-go/internal/db"
	"chartvision-backend-go/internal/models"
)

// Errors for billing operations.
var (
	ErrPriceNotFound    = errors.New("price ID not found")
	ErrWebhookSignature = errors.New("payment webhook signature verification failed")
	ErrWebhookPayload   = errors.New("payment webhook payload is malformed")
)

// paymentEvent is the minimal webhook payload this service consumes from
// the payment provider.
type paymentEvent struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

// billingService implements the BillingService interface. Checkout-session
// creation is a placeholder until a payment provider is wired in; the
// webhook path is live and flips the user's plan to PRO on a completed
// checkout.
type billingService struct {
	userRepo db.UserRepository
}

// NewBillingService creates a new billingService.
func NewBillingService(userRepo db.UserRepository) BillingService {
	return &billingService{userRepo: userRepo}
}

// CreateCheckoutSession is a placeholder for creating a provider checkout
// session for the FREE -> PRO upgrade. A real implementation would create a
// provider customer for the user and a session for the price ID.
func (s *billingService) CreateCheckoutSession(ctx context.Context, userID, priceID string) (string, error) {
	if priceID == "" {
		return "", fmt.Errorf("%w: empty price ID", ErrPriceNotFound)
	}
	sessionID := "cs_test_" + userID + "_" + priceID
	log.Printf("Placeholder: created checkout session '%s' for user '%s'", sessionID, userID)
	return sessionID, nil
}

// HandlePaymentWebhook processes a payment-provider webhook. Signature
// verification is a placeholder; a completed checkout upgrades the user to
// the PRO plan, which exempts them from the daily analysis quota.
func (s *billingService) HandlePaymentWebhook(ctx context.Context, signature string, payload []byte) error {
	if signature == "" {
		return fmt.Errorf("%w: missing signature header", ErrWebhookSignature)
	}

	var event paymentEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("%w: %v", ErrWebhookPayload, err)
	}

	switch event.Type {
	case "checkout.session.completed":
		if event.UserID == "" {
			return fmt.Errorf("%w: completed checkout without a user ID", ErrWebhookPayload)
		}
		return s.activatePro(ctx, event.UserID)
	default:
		// Unrecognized event types are acknowledged without action.
		log.Printf("Ignoring payment webhook event type '%s'", event.Type)
		return nil
	}
}

// activatePro marks the user as a PRO subscriber.
func (s *billingService) activatePro(ctx context.Context, userID string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, userID)
		}
		return fmt.Errorf("failed to load user '%s' for plan upgrade: %w", userID, err)
	}

	user.Plan = models.PlanPro
	user.SubscriptionStatus = "active"
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to upgrade user '%s' to PRO: %w", userID, err)
	}
	return nil
}
