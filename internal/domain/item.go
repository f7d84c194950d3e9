package domain

import (
	"strings"
	"time"
)

// ScheduleItem is a confirmed block of the user's day. An item with an end
// time is an event; without one it is a reminder.
type ScheduleItem struct {
	ID      string
	Title   string
	StartAt time.Time
	EndAt   *time.Time

	Mode           *ItemMode
	LocationOrLink string
	Notes          string

	// CaptureID is the capture this item was planned from; empty for items
	// entered by hand.
	CaptureID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (i *ScheduleItem) IsEvent() bool    { return i.EndAt != nil }
func (i *ScheduleItem) IsReminder() bool { return i.EndAt == nil }

// Duration is zero for reminders.
func (i *ScheduleItem) Duration() time.Duration {
	if i.EndAt == nil {
		return 0
	}
	return i.EndAt.Sub(i.StartAt)
}

// Validate checks the per-item invariants enforced before storage.
func (i *ScheduleItem) Validate() error {
	if strings.TrimSpace(i.Title) == "" {
		return ErrEmptyTitle
	}
	if i.EndAt != nil && !i.StartAt.Before(*i.EndAt) {
		return ErrInvalidTimeRange
	}
	if i.Mode != nil && !i.Mode.Valid() {
		return ErrInvalidMode
	}
	return nil
}

// OnDay reports whether the item starts on the calendar day of day,
// evaluated in day's location.
func (i *ScheduleItem) OnDay(day time.Time) bool {
	start := i.StartAt.In(day.Location())
	y1, m1, d1 := start.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// DayBounds returns [00:00, next 00:00) of t's calendar day in t's location.
func DayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
