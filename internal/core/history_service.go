package core

import (
	"context"
	"fmt"

	"chartvision-backend-go/internal/db"
	"chartvision-backend-go/internal/models"
)

// historyService implements the HistoryService interface.
type historyService struct {
	historyRepo db.HistoryRepository
}

// NewHistoryService creates a new HistoryService instance.
func NewHistoryService(historyRepo db.HistoryRepository) HistoryService {
	return &historyService{
		historyRepo: historyRepo,
	}
}

// Record stores a completed analysis for later display on the history page.
func (s *historyService) Record(ctx context.Context, item *models.AnalysisHistoryItem) error {
	if s.historyRepo == nil {
		return fmt.Errorf("HistoryRepository not initialized in HistoryService")
	}
	if _, err := s.historyRepo.Create(ctx, item); err != nil {
		return fmt.Errorf("failed to record analysis history via repository: %w", err)
	}
	return nil
}

// ListForUser returns the user's analysis history, newest first. Pagination
// params ("limit", "startAfter") are passed through to the repository.
func (s *historyService) ListForUser(ctx context.Context, userID string, paginationParams map[string]string) ([]*models.AnalysisHistoryItem, error) {
	if s.historyRepo == nil {
		return nil, fmt.Errorf("HistoryRepository not initialized in HistoryService")
	}
	items, err := s.historyRepo.GetByUserID(ctx, userID, paginationParams)
	if err != nil {
		return nil, fmt.Errorf("failed to list analysis history for user '%s': %w", userID, err)
	}
	return items, nil
}

// CountForUser returns the user's total number of recorded analyses.
func (s *historyService) CountForUser(ctx context.Context, userID string) (int, error) {
	if s.historyRepo == nil {
		return 0, fmt.Errorf("HistoryRepository not initialized in HistoryService")
	}
	count, err := s.historyRepo.CountByUserID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count analysis history for user '%s': %w", userID, err)
	}
	return count, nil
}
