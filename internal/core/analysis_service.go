package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"chartvision-backend-go/internal/models"
)

// suggestionPatternContext is the identified-pattern value supplied when a
// suggestion is requested directly, without a preceding trend analysis.
const suggestionPatternContext = "User-provided context for direct suggestion"

// analysisService implements the AnalysisService interface. It is the
// dispatcher between a typed analysis request and the matching remote model
// call, with the usage limiter as its guard.
type analysisService struct {
	modelService   ModelService
	usageService   UsageService
	historyService HistoryService
	mediaStore     MediaStore // may be nil; history items then carry no image URL
	logger         *zap.Logger
}

// NewAnalysisService creates a new AnalysisService instance. mediaStore may
// be nil when image storage is not configured.
func NewAnalysisService(
	ms ModelService,
	us UsageService,
	hs HistoryService,
	store MediaStore,
	logger *zap.Logger,
) (AnalysisService, error) {
	if ms == nil {
		return nil, errors.New("ModelService is required for AnalysisService")
	}
	if us == nil {
		return nil, errors.New("UsageService is required for AnalysisService")
	}
	if hs == nil {
		return nil, errors.New("HistoryService is required for AnalysisService")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &analysisService{
		modelService:   ms,
		usageService:   us,
		historyService: hs,
		mediaStore:     store,
		logger:         logger,
	}, nil
}

// Analyze consumes one unit of the user's daily quota, routes the request
// to its model call, and returns the mode-tagged result. Each invocation is
// a single best-effort remote call: no retries, no caching. A model failure
// propagates to the caller and leaves no result or history record behind.
func (s *analysisService) Analyze(ctx context.Context, user *models.User, req models.AnalysisRequest) (*models.AnalysisResult, error) {
	if req == nil {
		return nil, errors.New("analysis request cannot be nil")
	}

	// The quota guard runs before any remote model call is made.
	if _, err := s.usageService.IncrementUsage(ctx, user); err != nil {
		return nil, err
	}

	result, err := s.dispatch(ctx, req)
	if err != nil {
		return nil, err
	}

	s.recordHistory(ctx, user.ID, req, result)
	return result, nil
}

// dispatch matches the request variant to its model call. The switch is
// exhaustive over the sealed AnalysisRequest variants.
func (s *analysisService) dispatch(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResult, error) {
	switch r := req.(type) {
	case models.TrendRequest:
		trend, err := s.modelService.DetectTrend(ctx, r.Image)
		if err != nil {
			return nil, fmt.Errorf("trend analysis failed: %w", err)
		}
		return &models.AnalysisResult{Mode: models.ModeTrend, Trend: trend}, nil

	case models.ExplanationRequest:
		explanation, err := s.modelService.ExplainChart(ctx, r.ChartType, r.Indicators)
		if err != nil {
			return nil, fmt.Errorf("chart explanation failed: %w", err)
		}
		return &models.AnalysisResult{Mode: models.ModeExplanation, Explanation: explanation}, nil

	case models.SuggestionRequest:
		suggestion, err := s.modelService.SuggestTrade(
			ctx,
			r.Image,
			r.ChartType,
			suggestionPatternContext,
			suggestionExplanation(r.ChartType, r.Indicators),
		)
		if err != nil {
			return nil, fmt.Errorf("trade suggestion failed: %w", err)
		}
		return &models.AnalysisResult{Mode: models.ModeSuggestion, Suggestion: suggestion}, nil

	default:
		return nil, fmt.Errorf("unhandled analysis request type %T", req)
	}
}

// suggestionExplanation synthesizes the free-text context passed to the
// suggestion model call from the user-provided inputs.
func suggestionExplanation(chartType, indicators string) string {
	if strings.TrimSpace(indicators) == "" {
		indicators = "not specified"
	}
	return fmt.Sprintf("User-provided chart type: %s. User-provided indicators: %s.", chartType, indicators)
}

// recordHistory persists the completed analysis for the history page.
// Best-effort: the analysis already succeeded, so storage failures are
// logged and not surfaced to the user.
func (s *analysisService) recordHistory(ctx context.Context, userID string, req models.AnalysisRequest, result *models.AnalysisResult) {
	item := &models.AnalysisHistoryItem{
		UserID: userID,
		Mode:   result.Mode,
		Result: *result,
	}

	var image *models.ImagePayload
	switch r := req.(type) {
	case models.TrendRequest:
		image = &r.Image
	case models.SuggestionRequest:
		image = &r.Image
	}
	if image != nil && s.mediaStore != nil {
		url, err := s.mediaStore.UploadChartImage(ctx, userID, *image)
		if err != nil {
			s.logger.Warn("Failed to store chart image for history",
				zap.String("userID", userID),
				zap.String("mode", string(result.Mode)),
				zap.Error(err))
		} else {
			item.ImageURL = url
		}
	}

	if err := s.historyService.Record(ctx, item); err != nil {
		s.logger.Warn("Failed to record analysis history",
			zap.String("userID", userID),
			zap.String("mode", string(result.Mode)),
			zap.Error(err))
	}
}
