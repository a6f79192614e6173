package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"chartvision-backend-go/internal/models"
)

const userUsageCollection = "userUsage"

// incrementMaxAttempts bounds the optimistic retries of the usage
// transaction under contention from concurrent sessions of the same user.
const incrementMaxAttempts = 5

// ErrQuotaExceeded is returned by IncrementDaily when the counter has
// already reached the daily limit for the given date.
var ErrQuotaExceeded = errors.New("daily analysis quota exceeded")

// firestoreUsageRepository implements the UsageRepository interface using Firestore.
type firestoreUsageRepository struct {
	client *firestore.Client
}

// NewFirestoreUsageRepository creates a new instance of firestoreUsageRepository.
func NewFirestoreUsageRepository(client *firestore.Client) UsageRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for UsageRepository.")
	}
	return &firestoreUsageRepository{client: client}
}

// Get retrieves the usage record for a user. The stored date may be stale;
// day-boundary handling is the service's responsibility.
func (r *firestoreUsageRepository) Get(ctx context.Context, userID string) (*models.UsageRecord, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for Get operation")
	}
	docSnap, err := r.client.Collection(userUsageCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("usage record for user '%s' not found: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get usage record for user '%s': %w", userID, err)
	}

	var record models.UsageRecord
	if err := docSnap.DataTo(&record); err != nil {
		return nil, fmt.Errorf("failed to decode usage record for user '%s': %w", userID, err)
	}
	record.UserID = docSnap.Ref.ID

	return &record, nil
}

// Create writes a fresh usage record for a first-time user. FirstUsed is
// stamped here; LastAnalysisTimestamp is populated server-side.
func (r *firestoreUsageRepository) Create(ctx context.Context, record *models.UsageRecord) error {
	if record == nil || record.UserID == "" {
		return errors.New("usage record with a user ID is required for Create operation")
	}
	if record.FirstUsed.IsZero() {
		record.FirstUsed = time.Now().UTC()
	}
	_, err := r.client.Collection(userUsageCollection).Doc(record.UserID).Create(ctx, record)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("usage record for user '%s' already exists: %w", record.UserID, err)
		}
		return fmt.Errorf("failed to create usage record for user '%s': %w", record.UserID, err)
	}
	return nil
}

// Set overwrites the counter fields of an existing record, used for the
// day-boundary reset. MergeAll keeps FirstUsed intact when the service
// sends a partial record.
func (r *firestoreUsageRepository) Set(ctx context.Context, record *models.UsageRecord) error {
	if record == nil || record.UserID == "" {
		return errors.New("usage record with a user ID is required for Set operation")
	}
	_, err := r.client.Collection(userUsageCollection).Doc(record.UserID).Set(ctx, map[string]interface{}{
		"analysisCountToday": record.AnalysisCountToday,
		"lastAnalysisDate":   record.LastAnalysisDate,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to set usage record for user '%s': %w", record.UserID, err)
	}
	return nil
}

// IncrementDaily runs a Firestore transaction that re-reads the record,
// applies the calendar-day reset, and increments the counter, rejecting
// with ErrQuotaExceeded once limit successful increments have been recorded
// for today. The transaction makes the read-then-write safe against
// concurrent sessions of the same user; attempts are bounded.
func (r *firestoreUsageRepository) IncrementDaily(ctx context.Context, userID, today string, limit int) (*models.UsageRecord, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for IncrementDaily operation")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	docRef := r.client.Collection(userUsageCollection).Doc(userID)
	var result models.UsageRecord

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		count := 0
		firstUsed := time.Now().UTC()

		snap, err := tx.Get(docRef)
		switch {
		case err == nil:
			var stored models.UsageRecord
			if decodeErr := snap.DataTo(&stored); decodeErr != nil {
				return fmt.Errorf("failed to decode usage record for user '%s': %w", userID, decodeErr)
			}
			// A stale date means the counter belongs to a previous day
			// and resets before the quota check.
			if stored.LastAnalysisDate == today {
				count = stored.AnalysisCountToday
			}
			if !stored.FirstUsed.IsZero() {
				firstUsed = stored.FirstUsed
			}
		case status.Code(err) == codes.NotFound:
			// Lazily created on first analysis attempt.
		default:
			return fmt.Errorf("failed to read usage record for user '%s': %w", userID, err)
		}

		if count >= limit {
			return fmt.Errorf("user '%s' at %d/%d analyses for %s: %w", userID, count, limit, today, ErrQuotaExceeded)
		}

		result = models.UsageRecord{
			UserID:             userID,
			AnalysisCountToday: count + 1,
			LastAnalysisDate:   today,
			FirstUsed:          firstUsed,
		}
		return tx.Set(docRef, &result)
	}, firestore.MaxAttempts(incrementMaxAttempts))
	if err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("usage increment transaction failed for user '%s': %w", userID, err)
	}

	return &result, nil
}
