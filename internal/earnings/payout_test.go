package earnings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextPaymentDate(t *testing.T) {
	tests := []struct {
		name  string
		after time.Time
		day   int
		want  time.Time
	}{
		{
			name:  "later this month",
			after: time.Date(2026, 10, 3, 12, 0, 0, 0, time.UTC),
			day:   10,
			want:  time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "already passed rolls to next month",
			after: time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC),
			day:   10,
			want:  time.Date(2026, 11, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "payment day itself is not next",
			after: time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC),
			day:   10,
			want:  time.Date(2026, 11, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "clamped to short month",
			after: time.Date(2027, 2, 1, 0, 0, 0, 0, time.UTC),
			day:   31,
			want:  time.Date(2027, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "rolls over year end",
			after: time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC),
			day:   5,
			want:  time.Date(2027, 1, 5, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextPaymentDate(tt.after, tt.day, time.UTC)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestNextPaymentDate_UsesCityClock(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	// 01:00 UTC on the 10th is still the 9th in Sao Paulo
	got := NextPaymentDate(time.Date(2026, 10, 10, 1, 0, 0, 0, time.UTC), 10, loc)

	assert.Equal(t, loc, got.Location())
	assert.Equal(t, 10, got.Day())
	assert.Equal(t, time.October, got.Month())
	assert.Equal(t, 0, got.Hour())
}

func TestNextPaymentDate_NilLocation(t *testing.T) {
	got := NextPaymentDate(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), 15, nil)
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, 15, got.Day())
}
