package provider

import (
	"context"
	"errors"
	"time"

	"github.com/gitfudge0/werkday/internal/activity"
)

// ErrNotConnected is returned when an operation requires stored credentials
// that are missing for the requested integration.
var ErrNotConnected = errors.New("integration not connected")

// Provider fetches one calendar day of normalized activity from an upstream
// system. Day is interpreted as [startOfDay, startOfDay+24h) in day's location.
type Provider interface {
	// Source returns which upstream system this provider talks to
	Source() activity.Source

	// Connected returns true if credentials are configured
	Connected() bool

	// FetchDay retrieves and normalizes all activity for the given day
	FetchDay(ctx context.Context, day time.Time) ([]activity.Record, error)
}

// DayWindow returns the [from, to) bounds of the calendar day containing date.
func DayWindow(date time.Time) (time.Time, time.Time) {
	from := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return from, from.Add(24 * time.Hour)
}

// SameDay reports whether ts falls on the calendar day containing day,
// evaluated in day's location. This is the single day-extraction rule used
// both for matching sub-entities and for bucketing.
func SameDay(ts, day time.Time) bool {
	from, to := DayWindow(day)
	return !ts.Before(from) && ts.Before(to)
}
