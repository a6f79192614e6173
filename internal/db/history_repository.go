package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"chartvision-backend-go/internal/models"
)

const analysisHistoryCollection = "analysisHistory"

// firestoreHistoryRepository implements the HistoryRepository interface using Firestore.
type firestoreHistoryRepository struct {
	client *firestore.Client
}

// NewFirestoreHistoryRepository creates a new instance of firestoreHistoryRepository.
func NewFirestoreHistoryRepository(client *firestore.Client) HistoryRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for HistoryRepository.")
	}
	return &firestoreHistoryRepository{client: client}
}

// Create adds a new history document with an auto-generated ID. CreatedAt is
// handled by the serverTimestamp tag.
func (r *firestoreHistoryRepository) Create(ctx context.Context, item *models.AnalysisHistoryItem) (string, error) {
	if item == nil || item.UserID == "" {
		return "", errors.New("history item with a user ID is required for Create operation")
	}
	docRef := r.client.Collection(analysisHistoryCollection).NewDoc()
	item.ID = docRef.ID

	_, err := docRef.Create(ctx, item)
	if err != nil {
		return "", fmt.Errorf("failed to create history item: %w", err)
	}
	return docRef.ID, nil
}

// GetByUserID retrieves a user's analysis history, newest first.
// Pagination is basic: supports "limit" and "startAfter" (document ID).
func (r *firestoreHistoryRepository) GetByUserID(ctx context.Context, userID string, paginationParams map[string]string) ([]*models.AnalysisHistoryItem, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for GetByUserID operation")
	}

	query := r.client.Collection(analysisHistoryCollection).Where("userId", "==", userID).OrderBy("createdAt", firestore.Desc)

	if limitStr, ok := paginationParams["limit"]; ok {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			query = query.Limit(limit)
		}
	}
	if startAfterDocID, ok := paginationParams["startAfter"]; ok && startAfterDocID != "" {
		startAfterSnap, err := r.client.Collection(analysisHistoryCollection).Doc(startAfterDocID).Get(ctx)
		if err == nil {
			query = query.StartAfter(startAfterSnap)
		} else {
			log.Printf("Warning: could not fetch startAfter document '%s': %v. Pagination may be affected.", startAfterDocID, err)
		}
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var items []*models.AnalysisHistoryItem
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate history for user '%s': %w", userID, err)
		}

		var item models.AnalysisHistoryItem
		if err := doc.DataTo(&item); err != nil {
			log.Printf("Error decoding history item (ID: %s) for user '%s': %v. Skipping.", doc.Ref.ID, userID, err)
			continue
		}
		item.ID = doc.Ref.ID
		items = append(items, &item)
	}

	return items, nil
}

// CountByUserID counts a user's stored analyses. Fetches snapshots and
// counts them, which is acceptable at per-user history sizes.
func (r *firestoreHistoryRepository) CountByUserID(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, errors.New("userID cannot be empty for CountByUserID operation")
	}
	iter := r.client.Collection(analysisHistoryCollection).Where("userId", "==", userID).Documents(ctx)
	defer iter.Stop()

	count := 0
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to iterate history for counting (user '%s'): %w", userID, err)
		}
		count++
	}
	return count, nil
}
