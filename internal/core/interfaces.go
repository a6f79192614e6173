package core

import (
	"context"

	"chartvision-backend-go/internal/models"
)

// UserService defines the interface for user-related operations.
type UserService interface {
	// GetOrCreate retrieves a user by ID. If the user doesn't exist, it creates a new one with default values.
	GetOrCreate(ctx context.Context, userID, email, displayName, photoURL string) (*models.User, bool, error)
	GetByID(ctx context.Context, userID string) (*models.User, error)
}

// UsageService is the daily usage limiter: it tracks how many analyses a
// user has performed today and enforces the free-tier cap. PRO users are
// exempt and never metered.
type UsageService interface {
	// FetchUsage returns the user's usage record for today, lazily
	// creating it and persisting the day-boundary reset as needed.
	FetchUsage(ctx context.Context, userID string) (*models.UsageRecord, error)
	// CanAnalyze reports whether the user may run another analysis now.
	// Store failures fail closed: (false, err).
	CanAnalyze(ctx context.Context, user *models.User) (bool, error)
	// IncrementUsage consumes one analysis from today's quota. It returns
	// ErrNotAuthenticated for a nil/anonymous user and ErrQuotaExceeded at
	// the cap, performing no write in either case. For PRO users it
	// succeeds without reading or writing anything (record is nil).
	IncrementUsage(ctx context.Context, user *models.User) (*models.UsageRecord, error)
	// Limit returns the configured daily cap for free-tier users.
	Limit() int
}

// AnalysisService routes a typed analysis request to the matching model
// call, guarded by the usage limiter.
type AnalysisService interface {
	Analyze(ctx context.Context, user *models.User, req models.AnalysisRequest) (*models.AnalysisResult, error)
}

// HistoryService defines the interface for recording and listing completed
// analyses.
type HistoryService interface {
	Record(ctx context.Context, item *models.AnalysisHistoryItem) error
	ListForUser(ctx context.Context, userID string, paginationParams map[string]string) ([]*models.AnalysisHistoryItem, error)
	CountForUser(ctx context.Context, userID string) (int, error)
}

// BillingService defines the interface for upgrade/checkout operations.
type BillingService interface {
	CreateCheckoutSession(ctx context.Context, userID, priceID string) (string, error)
	HandlePaymentWebhook(ctx context.Context, signature string, payload []byte) error
}

// ModelService is the remote generative-model boundary: three
// structured-input/structured-output operations, one per analysis mode.
// Implemented by the ai package.
type ModelService interface {
	DetectTrend(ctx context.Context, image models.ImagePayload) (*models.TrendResult, error)
	ExplainChart(ctx context.Context, chartType, indicators string) (*models.ExplanationResult, error)
	SuggestTrade(ctx context.Context, image models.ImagePayload, chartType, identifiedPattern, explanation string) (*models.SuggestionResult, error)
}

// MediaStore persists uploaded chart images and returns a public URL for
// history items. Implemented by the media package.
type MediaStore interface {
	UploadChartImage(ctx context.Context, userID string, image models.ImagePayload) (string, error)
}
