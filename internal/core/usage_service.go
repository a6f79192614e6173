package core

import (
	"context"
	"errors"
	"fmt"

	"chartvision-backend-go/internal/db"
	"chartvision-backend-go/internal/models"
)

// Sentinel errors for the usage limiter.
var (
	// ErrNotAuthenticated is returned when a quota operation is attempted
	// without an authenticated user.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrQuotaExceeded is returned when a free-tier user has used up
	// today's analyses.
	ErrQuotaExceeded = errors.New("daily analysis limit reached")
)

// usageService implements the UsageService interface over the userUsage
// collection. The counter covers one calendar day (UTC); reads on a later
// date reset it before use.
type usageService struct {
	usageRepo db.UsageRepository
	limit     int // daily cap for free-tier users
}

// NewUsageService creates a new UsageService with the given free-tier daily
// limit.
func NewUsageService(usageRepo db.UsageRepository, limit int) (UsageService, error) {
	if usageRepo == nil {
		return nil, errors.New("UsageRepository is required for UsageService")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("daily limit must be positive, got %d", limit)
	}
	return &usageService{usageRepo: usageRepo, limit: limit}, nil
}

// Limit returns the configured daily cap for free-tier users.
func (s *usageService) Limit() int {
	return s.limit
}

// FetchUsage returns the user's usage record for today. A record is created
// lazily on first use; a record carrying a previous calendar date is reset
// to {0, today} and the reset is persisted before being returned. Any store
// failure is returned as an error so callers can fail closed.
func (s *usageService) FetchUsage(ctx context.Context, userID string) (*models.UsageRecord, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	today := models.TodayUTC()

	record, err := s.usageRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			fresh := &models.UsageRecord{
				UserID:             userID,
				AnalysisCountToday: 0,
				LastAnalysisDate:   today,
			}
			if createErr := s.usageRepo.Create(ctx, fresh); createErr != nil {
				return nil, fmt.Errorf("failed to create usage record for user '%s': %w", userID, createErr)
			}
			return fresh, nil
		}
		return nil, fmt.Errorf("failed to fetch usage record for user '%s': %w", userID, err)
	}

	if record.LastAnalysisDate != today {
		record.AnalysisCountToday = 0
		record.LastAnalysisDate = today
		if setErr := s.usageRepo.Set(ctx, record); setErr != nil {
			return nil, fmt.Errorf("failed to persist daily usage reset for user '%s': %w", userID, setErr)
		}
	}
	return record, nil
}

// CanAnalyze reports whether the user may run another analysis right now.
// PRO users always can; free-tier users can while today's count is below
// the limit. A store failure fails closed.
func (s *usageService) CanAnalyze(ctx context.Context, user *models.User) (bool, error) {
	if user == nil || user.ID == "" {
		return false, ErrNotAuthenticated
	}
	if user.IsPro() {
		return true, nil
	}
	record, err := s.FetchUsage(ctx, user.ID)
	if err != nil {
		return false, err
	}
	return record.AnalysisCountToday < s.limit, nil
}

// IncrementUsage consumes one analysis from today's quota. The increment is
// a conditional atomic update in the store, so concurrent sessions of the
// same user cannot push the counter past the limit. PRO users are not
// metered: the call succeeds with a nil record and no write.
func (s *usageService) IncrementUsage(ctx context.Context, user *models.User) (*models.UsageRecord, error) {
	if user == nil || user.ID == "" {
		return nil, ErrNotAuthenticated
	}
	if user.IsPro() {
		return nil, nil
	}

	record, err := s.usageRepo.IncrementDaily(ctx, user.ID, models.TodayUTC(), s.limit)
	if err != nil {
		if errors.Is(err, db.ErrQuotaExceeded) {
			return nil, fmt.Errorf("%w (%d per day)", ErrQuotaExceeded, s.limit)
		}
		return nil, fmt.Errorf("failed to increment usage for user '%s': %w", user.ID, err)
	}
	return record, nil
}
