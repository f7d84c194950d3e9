package testutil

import (
	"time"

	"github.com/alexanderramin/nora/internal/domain"
	"github.com/alexanderramin/nora/internal/planner"
	"github.com/google/uuid"
)

// Day is the reference date fixtures are anchored to.
var Day = time.Date(2025, 12, 27, 0, 0, 0, 0, time.UTC)

// At returns h:m on Day.
func At(h, m int) time.Time {
	return Day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

// ScheduleItem options
type ItemOption func(*domain.ScheduleItem)

func WithStart(t time.Time) ItemOption {
	return func(i *domain.ScheduleItem) {
		i.StartAt = t
	}
}

func WithEnd(t time.Time) ItemOption {
	return func(i *domain.ScheduleItem) {
		i.EndAt = &t
	}
}

// AsReminder clears the end time.
func AsReminder() ItemOption {
	return func(i *domain.ScheduleItem) {
		i.EndAt = nil
	}
}

func WithMode(m domain.ItemMode) ItemOption {
	return func(i *domain.ScheduleItem) {
		i.Mode = &m
	}
}

func WithLocation(loc string) ItemOption {
	return func(i *domain.ScheduleItem) {
		i.LocationOrLink = loc
	}
}

func WithNotes(n string) ItemOption {
	return func(i *domain.ScheduleItem) {
		i.Notes = n
	}
}

func WithCaptureID(id string) ItemOption {
	return func(i *domain.ScheduleItem) {
		i.CaptureID = id
	}
}

// NewTestItem returns a one-hour event starting at 09:00 on Day.
func NewTestItem(title string, opts ...ItemOption) *domain.ScheduleItem {
	now := time.Now().UTC().Truncate(time.Second)
	end := At(10, 0)
	i := &domain.ScheduleItem{
		ID:        uuid.New().String(),
		Title:     title,
		StartAt:   At(9, 0),
		EndAt:     &end,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Capture options
type CaptureOption func(*domain.Capture)

func WithSource(s domain.CaptureSource) CaptureOption {
	return func(c *domain.Capture) {
		c.Source = s
	}
}

func WithCreatedAt(t time.Time) CaptureOption {
	return func(c *domain.Capture) {
		c.CreatedAt = t
	}
}

func Processed() CaptureOption {
	return func(c *domain.Capture) {
		c.IsProcessed = true
	}
}

func NewTestCapture(text string, opts ...CaptureOption) *domain.Capture {
	c := &domain.Capture{
		ID:        uuid.New().String(),
		Text:      text,
		Source:    domain.CaptureManual,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewDraftEvent builds a draft block from h:m to h:m on Day.
func NewDraftEvent(title string, sh, sm, eh, em int) planner.DraftBlock {
	end := At(eh, em)
	return planner.NewDraftBlock(title, At(sh, sm), &end)
}

// NewDraftReminder builds a draft block with no end time.
func NewDraftReminder(title string, h, m int) planner.DraftBlock {
	return planner.NewDraftBlock(title, At(h, m), nil)
}
