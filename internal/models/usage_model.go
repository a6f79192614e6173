package models

import "time"

// UsageDateLayout is the calendar-date form stored in LastAnalysisDate.
// Dates are computed in UTC so the daily reset happens at a single,
// well-defined boundary regardless of server locale.
const UsageDateLayout = "2006-01-02"

// UsageRecord is the persisted per-user counter tracking daily quota
// consumption. One document per user, keyed by the Firebase Auth UID.
// Invariant: AnalysisCountToday counts only analyses performed on
// LastAnalysisDate; a read on a later date must reset the counter to zero
// before the record is used.
type UsageRecord struct {
	UserID                string    `json:"userId" firestore:"-"` // Document ID, the owning user's UID
	AnalysisCountToday    int       `json:"analysisCountToday" firestore:"analysisCountToday"`
	LastAnalysisDate      string    `json:"lastAnalysisDate" firestore:"lastAnalysisDate"` // "YYYY-MM-DD"
	LastAnalysisTimestamp time.Time `json:"lastAnalysisTimestamp,omitempty" firestore:"lastAnalysisTimestamp,serverTimestamp"`
	FirstUsed             time.Time `json:"firstUsed,omitempty" firestore:"firstUsed,omitempty"`
}

// TodayUTC returns the current calendar date in the stored form.
func TodayUTC() string {
	return time.Now().UTC().Format(UsageDateLayout)
}

// Remaining returns how many analyses are left today under the given limit.
// Never negative.
func (r *UsageRecord) Remaining(limit int) int {
	if r == nil {
		return 0
	}
	left := limit - r.AnalysisCountToday
	if left < 0 {
		return 0
	}
	return left
}
