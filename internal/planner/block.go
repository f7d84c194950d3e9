package planner

import (
	"time"

	"github.com/google/uuid"
)

// DraftBlock is a candidate schedule entry that has not been persisted.
// A block with EndAt is an event; without it, a reminder.
type DraftBlock struct {
	ID      string
	Title   string
	StartAt time.Time
	EndAt   *time.Time
}

// NewDraftBlock creates a block with a fresh identifier.
func NewDraftBlock(title string, startAt time.Time, endAt *time.Time) DraftBlock {
	return DraftBlock{
		ID:      uuid.New().String(),
		Title:   title,
		StartAt: startAt,
		EndAt:   endAt,
	}
}

// IsEvent reports whether the block has a duration.
func (b DraftBlock) IsEvent() bool {
	return b.EndAt != nil
}

// Duration is the explicit span of an event, zero for reminders.
func (b DraftBlock) Duration() time.Duration {
	if b.EndAt == nil {
		return 0
	}
	return b.EndAt.Sub(b.StartAt)
}

// CheckRange enforces the per-block invariant: an event must start strictly
// before it ends.
func (b DraftBlock) CheckRange() error {
	if b.EndAt != nil && !b.StartAt.Before(*b.EndAt) {
		return planErrorf(KindInvalidTimeRange, nil, "%s-%s",
			FormatClock(b.StartAt), FormatClock(*b.EndAt))
	}
	return nil
}
