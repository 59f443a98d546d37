package utils

import (
	"context"
	"log"
)

// CalendarClient removes synced calendar events when an appointment is
// deleted. The real client lives in the calendar-sync service; this
// service only holds the boundary.
type CalendarClient interface {
	DeleteEvent(ctx context.Context, eventID string) error
}

// NoopCalendar is used when calendar sync is not configured; it logs the
// skipped cleanup and succeeds.
type NoopCalendar struct {
	Logger *log.Logger
}

func (n *NoopCalendar) DeleteEvent(ctx context.Context, eventID string) error {
	n.Logger.Printf("Calendar sync disabled, skipping cleanup for event %s", eventID)
	return nil
}
