package db

import (
	"context"

	"chartvision-backend-go/internal/models"
)

// UserRepository defines the interface for user data storage operations.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
}

// UsageRepository defines the interface for daily usage counter storage.
// Documents live in the "userUsage" collection, one per user, keyed by UID.
type UsageRepository interface {
	// Get retrieves the raw stored record. Returns ErrNotFound when the
	// user has never analyzed anything.
	Get(ctx context.Context, userID string) (*models.UsageRecord, error)
	// Create writes a fresh record for a first-time user.
	Create(ctx context.Context, record *models.UsageRecord) error
	// Set overwrites the counter fields, used for the day-boundary reset.
	Set(ctx context.Context, record *models.UsageRecord) error
	// IncrementDaily atomically applies the day reset and increments the
	// counter, rejecting with ErrQuotaExceeded once limit is reached for
	// the given date. Creates the record if absent. Returns the record as
	// written.
	IncrementDaily(ctx context.Context, userID, today string, limit int) (*models.UsageRecord, error)
}

// HistoryRepository defines the interface for analysis history storage.
type HistoryRepository interface {
	Create(ctx context.Context, item *models.AnalysisHistoryItem) (string, error) // Returns new item ID
	GetByUserID(ctx context.Context, userID string, paginationParams map[string]string) ([]*models.AnalysisHistoryItem, error)
	CountByUserID(ctx context.Context, userID string) (int, error)
}
