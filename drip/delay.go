package drip

import (
	"fmt"
	"time"

	"dealdrip/models"
)

// ResolveSendAt converts a relative delay spec into an absolute send time.
//
// An immediate delay returns the anchor unchanged and ignores value and
// unit. Minutes, hours and days are fixed durations; weeks and months use
// calendar arithmetic, with month addition clamping the day-of-month to
// the last valid day of the target month (Jan 31 + 1 month = Feb 29 in a
// leap year). Pure and deterministic, no clock reads.
func ResolveSendAt(anchor time.Time, delayType models.DelayType, delayValue int, delayUnit models.DelayUnit) (time.Time, error) {
	switch delayType {
	case models.DelayImmediate:
		return anchor, nil
	case models.DelayAfter:
		// handled below
	default:
		return time.Time{}, fmt.Errorf("%w: unknown delay type %q", ErrInvalidDelaySpec, delayType)
	}

	if delayValue < 0 {
		return time.Time{}, fmt.Errorf("%w: negative delay value %d", ErrInvalidDelaySpec, delayValue)
	}

	switch delayUnit {
	case models.UnitMinutes:
		return anchor.Add(time.Duration(delayValue) * time.Minute), nil
	case models.UnitHours:
		return anchor.Add(time.Duration(delayValue) * time.Hour), nil
	case models.UnitDays:
		return anchor.Add(time.Duration(delayValue) * 24 * time.Hour), nil
	case models.UnitWeeks:
		return anchor.AddDate(0, 0, 7*delayValue), nil
	case models.UnitMonths:
		return addMonthsClamped(anchor, delayValue), nil
	default:
		return time.Time{}, fmt.Errorf("%w: unknown delay unit %q", ErrInvalidDelaySpec, delayUnit)
	}
}

// addMonthsClamped adds whole months keeping the day-of-month, clamped to
// the last valid day of the target month. time.AddDate would normalize
// Jan 31 + 1 month into March, which is not what a drip schedule wants.
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()

	total := int(month) - 1 + months
	year += total / 12
	month = time.Month(total%12 + 1)

	if last := daysIn(year, month); day > last {
		day = last
	}

	hour, min, sec := t.Clock()
	return time.Date(year, month, day, hour, min, sec, t.Nanosecond(), t.Location())
}

// daysIn returns the number of days in the given month
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
