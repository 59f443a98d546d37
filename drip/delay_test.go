package drip

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealdrip/models"
)

func TestResolveSendAt_Immediate(t *testing.T) {
	anchor := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

	got, err := ResolveSendAt(anchor, models.DelayImmediate, 0, "")
	require.NoError(t, err)
	assert.Equal(t, anchor, got)

	// Immediate ignores whatever value and unit are set
	got, err = ResolveSendAt(anchor, models.DelayImmediate, 99, models.UnitMonths)
	require.NoError(t, err)
	assert.Equal(t, anchor, got)
}

func TestResolveSendAt_FixedDurations(t *testing.T) {
	anchor := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value int
		unit  models.DelayUnit
		want  time.Time
	}{
		{"minutes", 45, models.UnitMinutes, anchor.Add(45 * time.Minute)},
		{"hours", 3, models.UnitHours, anchor.Add(3 * time.Hour)},
		{"days", 2, models.UnitDays, anchor.Add(48 * time.Hour)},
		{"weeks", 2, models.UnitWeeks, anchor.AddDate(0, 0, 14)},
		{"zero value", 0, models.UnitDays, anchor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveSendAt(anchor, models.DelayAfter, tt.value, tt.unit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveSendAt_MonotonicInValue(t *testing.T) {
	anchor := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

	for _, unit := range []models.DelayUnit{models.UnitMinutes, models.UnitHours, models.UnitDays, models.UnitWeeks, models.UnitMonths} {
		prev, err := ResolveSendAt(anchor, models.DelayAfter, 0, unit)
		require.NoError(t, err)
		for v := 1; v <= 5; v++ {
			got, err := ResolveSendAt(anchor, models.DelayAfter, v, unit)
			require.NoError(t, err)
			assert.True(t, got.After(prev), "unit %s value %d should be after value %d", unit, v, v-1)
			prev = got
		}
	}
}

func TestResolveSendAt_MonthClamping(t *testing.T) {
	tests := []struct {
		name   string
		anchor time.Time
		months int
		want   time.Time
	}{
		{
			"jan 31 plus one month clamps to feb 29 in a leap year",
			time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC),
			1,
			time.Date(2024, 2, 29, 9, 0, 0, 0, time.UTC),
		},
		{
			"jan 31 plus one month clamps to feb 28 otherwise",
			time.Date(2025, 1, 31, 9, 0, 0, 0, time.UTC),
			1,
			time.Date(2025, 2, 28, 9, 0, 0, 0, time.UTC),
		},
		{
			"mar 31 plus one month clamps to apr 30",
			time.Date(2025, 3, 31, 9, 0, 0, 0, time.UTC),
			1,
			time.Date(2025, 4, 30, 9, 0, 0, 0, time.UTC),
		},
		{
			"mid-month day is untouched",
			time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC),
			2,
			time.Date(2025, 8, 15, 9, 0, 0, 0, time.UTC),
		},
		{
			"year rollover",
			time.Date(2025, 11, 30, 9, 0, 0, 0, time.UTC),
			3,
			time.Date(2026, 2, 28, 9, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveSendAt(tt.anchor, models.DelayAfter, tt.months, models.UnitMonths)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveSendAt_PreservesTimeOfDay(t *testing.T) {
	anchor := time.Date(2025, 1, 31, 14, 45, 30, 0, time.UTC)

	got, err := ResolveSendAt(anchor, models.DelayAfter, 1, models.UnitMonths)
	require.NoError(t, err)

	hour, min, sec := got.Clock()
	assert.Equal(t, 14, hour)
	assert.Equal(t, 45, min)
	assert.Equal(t, 30, sec)
}

func TestResolveSendAt_InvalidSpecs(t *testing.T) {
	anchor := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

	_, err := ResolveSendAt(anchor, "whenever", 1, models.UnitDays)
	assert.ErrorIs(t, err, ErrInvalidDelaySpec)

	_, err = ResolveSendAt(anchor, models.DelayAfter, -1, models.UnitDays)
	assert.ErrorIs(t, err, ErrInvalidDelaySpec)

	_, err = ResolveSendAt(anchor, models.DelayAfter, 1, "fortnights")
	assert.ErrorIs(t, err, ErrInvalidDelaySpec)

	_, err = ResolveSendAt(anchor, models.DelayAfter, 1, "")
	assert.ErrorIs(t, err, ErrInvalidDelaySpec)
}
