package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chartvision-backend-go/internal/db"
	"chartvision-backend-go/internal/models"
)

// -------- test fakes --------

// fakeUsageRepo is an in-memory UsageRepository honoring the same contract
// as the Firestore implementation, including the conditional increment.
type fakeUsageRepo struct {
	records map[string]*models.UsageRecord

	getErr    error
	createErr error
	setErr    error
	incErr    error

	creates int
	sets    int
	incs    int
}

func newFakeUsageRepo() *fakeUsageRepo {
	return &fakeUsageRepo{records: map[string]*models.UsageRecord{}}
}

func (f *fakeUsageRepo) Get(ctx context.Context, userID string) (*models.UsageRecord, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	record, ok := f.records[userID]
	if !ok {
		return nil, fmt.Errorf("usage record for user '%s' not found: %w", userID, db.ErrNotFound)
	}
	copied := *record
	return &copied, nil
}

func (f *fakeUsageRepo) Create(ctx context.Context, record *models.UsageRecord) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.creates++
	copied := *record
	f.records[record.UserID] = &copied
	return nil
}

func (f *fakeUsageRepo) Set(ctx context.Context, record *models.UsageRecord) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.sets++
	copied := *record
	f.records[record.UserID] = &copied
	return nil
}

func (f *fakeUsageRepo) IncrementDaily(ctx context.Context, userID, today string, limit int) (*models.UsageRecord, error) {
	if f.incErr != nil {
		return nil, f.incErr
	}
	f.incs++
	count := 0
	if stored, ok := f.records[userID]; ok && stored.LastAnalysisDate == today {
		count = stored.AnalysisCountToday
	}
	if count >= limit {
		return nil, fmt.Errorf("user '%s' at limit: %w", userID, db.ErrQuotaExceeded)
	}
	updated := &models.UsageRecord{
		UserID:             userID,
		AnalysisCountToday: count + 1,
		LastAnalysisDate:   today,
	}
	f.records[userID] = updated
	copied := *updated
	return &copied, nil
}

func freeUser(id string) *models.User {
	return &models.User{ID: id, Plan: models.PlanFree}
}

func proUser(id string) *models.User {
	return &models.User{ID: id, Plan: models.PlanPro}
}

// -------- tests --------

func TestNewUsageService_Validation(t *testing.T) {
	_, err := NewUsageService(nil, 5)
	require.Error(t, err)

	_, err = NewUsageService(newFakeUsageRepo(), 0)
	require.Error(t, err)

	svc, err := NewUsageService(newFakeUsageRepo(), 5)
	require.NoError(t, err)
	assert.Equal(t, 5, svc.Limit())
}

func TestFetchUsage_CreatesRecordLazily(t *testing.T) {
	repo := newFakeUsageRepo()
	svc, err := NewUsageService(repo, 5)
	require.NoError(t, err)

	record, err := svc.FetchUsage(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, record.AnalysisCountToday)
	assert.Equal(t, models.TodayUTC(), record.LastAnalysisDate)
	assert.Equal(t, 1, repo.creates, "lazy create must be persisted")
}

func TestFetchUsage_ResetsStaleRecord(t *testing.T) {
	repo := newFakeUsageRepo()
	repo.records["u1"] = &models.UsageRecord{
		UserID:             "u1",
		AnalysisCountToday: 3,
		LastAnalysisDate:   "2024-07-28",
	}
	svc, err := NewUsageService(repo, 5)
	require.NoError(t, err)

	record, err := svc.FetchUsage(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, record.AnalysisCountToday)
	assert.Equal(t, models.TodayUTC(), record.LastAnalysisDate)
	require.Equal(t, 1, repo.sets, "reset must be persisted before the record is returned")
	assert.Equal(t, 0, repo.records["u1"].AnalysisCountToday)
}

func TestFetchUsage_SameDayRecordUntouched(t *testing.T) {
	repo := newFakeUsageRepo()
	repo.records["u1"] = &models.UsageRecord{
		UserID:             "u1",
		AnalysisCountToday: 2,
		LastAnalysisDate:   models.TodayUTC(),
	}
	svc, err := NewUsageService(repo, 5)
	require.NoError(t, err)

	record, err := svc.FetchUsage(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, record.AnalysisCountToday)
	assert.Zero(t, repo.sets)
	assert.Zero(t, repo.creates)
}

func TestCanAnalyze_FreeTierBoundaries(t *testing.T) {
	tests := []struct {
		name  string
		count int
		want  bool
	}{
		{"zero used", 0, true},
		{"under limit", 4, true},
		{"at limit", 5, false},
		{"over limit", 7, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := newFakeUsageRepo()
			repo.records["u1"] = &models.UsageRecord{
				UserID:             "u1",
				AnalysisCountToday: tc.count,
				LastAnalysisDate:   models.TodayUTC(),
			}
			svc, err := NewUsageService(repo, 5)
			require.NoError(t, err)

			ok, err := svc.CanAnalyze(context.Background(), freeUser("u1"))
			require.NoError(t, err)
			assert.Equal(t, tc.want, ok)
		})
	}
}

func TestCanAnalyze_ProUserAlwaysAllowed(t *testing.T) {
	repo := newFakeUsageRepo()
	repo.records["pro"] = &models.UsageRecord{
		UserID:             "pro",
		AnalysisCountToday: 100,
		LastAnalysisDate:   models.TodayUTC(),
	}
	svc, err := NewUsageService(repo, 5)
	require.NoError(t, err)

	ok, err := svc.CanAnalyze(context.Background(), proUser("pro"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanAnalyze_StoreFailureFailsClosed(t *testing.T) {
	repo := newFakeUsageRepo()
	repo.getErr = errors.New("store unreachable")
	svc, err := NewUsageService(repo, 5)
	require.NoError(t, err)

	ok, err := svc.CanAnalyze(context.Background(), freeUser("u1"))
	require.Error(t, err)
	assert.False(t, ok)
}

func TestIncrementUsage_Unauthenticated(t *testing.T) {
	repo := newFakeUsageRepo()
	svc, err := NewUsageService(repo, 5)
	require.NoError(t, err)

	_, err = svc.IncrementUsage(context.Background(), nil)
	require.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = svc.IncrementUsage(context.Background(), &models.User{})
	require.ErrorIs(t, err, ErrNotAuthenticated)

	assert.Zero(t, repo.incs, "unauthenticated increment must not touch the store")
	assert.Zero(t, repo.creates)
	assert.Zero(t, repo.sets)
}

func TestIncrementUsage_ProUserNotMetered(t *testing.T) {
	repo := newFakeUsageRepo()
	svc, err := NewUsageService(repo, 5)
	require.NoError(t, err)

	record, err := svc.IncrementUsage(context.Background(), proUser("pro"))
	require.NoError(t, err)
	assert.Nil(t, record)
	assert.Zero(t, repo.incs, "PRO users are never metered")
}

func TestIncrementUsage_FiveThenQuotaExceeded(t *testing.T) {
	repo := newFakeUsageRepo()
	svc, err := NewUsageService(repo, 5)
	require.NoError(t, err)

	user := freeUser("u1")
	for i := 1; i <= 5; i++ {
		record, err := svc.IncrementUsage(context.Background(), user)
		require.NoError(t, err, "increment %d should succeed", i)
		assert.Equal(t, i, record.AnalysisCountToday)
	}

	_, err = svc.IncrementUsage(context.Background(), user)
	require.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Equal(t, 5, repo.records["u1"].AnalysisCountToday, "rejected increment must not change the counter")
}

func TestIncrementUsage_ResetsAcrossDayBoundary(t *testing.T) {
	repo := newFakeUsageRepo()
	repo.records["u1"] = &models.UsageRecord{
		UserID:             "u1",
		AnalysisCountToday: 5,
		LastAnalysisDate:   "2024-07-28",
	}
	svc, err := NewUsageService(repo, 5)
	require.NoError(t, err)

	record, err := svc.IncrementUsage(context.Background(), freeUser("u1"))
	require.NoError(t, err, "yesterday's exhausted quota must not block today")
	assert.Equal(t, 1, record.AnalysisCountToday)
	assert.Equal(t, models.TodayUTC(), record.LastAnalysisDate)
}

func TestIncrementUsage_PersistenceFailure(t *testing.T) {
	repo := newFakeUsageRepo()
	repo.incErr = errors.New("write failed")
	svc, err := NewUsageService(repo, 5)
	require.NoError(t, err)

	_, err = svc.IncrementUsage(context.Background(), freeUser("u1"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrQuotaExceeded)
}

func TestIncrementThenFetch_RoundTrip(t *testing.T) {
	repo := newFakeUsageRepo()
	svc, err := NewUsageService(repo, 5)
	require.NoError(t, err)

	user := freeUser("u1")
	written, err := svc.IncrementUsage(context.Background(), user)
	require.NoError(t, err)

	read, err := svc.FetchUsage(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, written.AnalysisCountToday, read.AnalysisCountToday)
	assert.Equal(t, written.LastAnalysisDate, read.LastAnalysisDate)
}
