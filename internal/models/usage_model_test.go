package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUsageRecord_Remaining(t *testing.T) {
	tests := []struct {
		name  string
		count int
		limit int
		want  int
	}{
		{"unused", 0, 5, 5},
		{"partially used", 3, 5, 2},
		{"exhausted", 5, 5, 0},
		{"over limit clamps to zero", 9, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := &UsageRecord{AnalysisCountToday: tt.count}
			assert.Equal(t, tt.want, record.Remaining(tt.limit))
		})
	}
}

func TestUsageRecord_Remaining_NilRecord(t *testing.T) {
	var record *UsageRecord
	assert.Equal(t, 0, record.Remaining(5))
}

func TestTodayUTC(t *testing.T) {
	got := TodayUTC()
	parsed, err := time.Parse(UsageDateLayout, got)
	assert.NoError(t, err)
	assert.Equal(t, got, parsed.Format(UsageDateLayout))
}
