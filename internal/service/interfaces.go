package service

import (
	"context"
	"time"

	"github.com/alexanderramin/nora/internal/domain"
	"github.com/alexanderramin/nora/internal/planner"
)

type ItemService interface {
	Create(ctx context.Context, item *domain.ScheduleItem) error
	GetByID(ctx context.Context, id string) (*domain.ScheduleItem, error)
	// List returns every stored item sorted by StartAt ascending.
	List(ctx context.Context) ([]*domain.ScheduleItem, error)
	// ListDay returns items starting on day's calendar date in day's location.
	ListDay(ctx context.Context, day time.Time) ([]*domain.ScheduleItem, error)
	// ListUpcoming returns items that have not finished by now.
	ListUpcoming(ctx context.Context, now time.Time) ([]*domain.ScheduleItem, error)
	Update(ctx context.Context, item *domain.ScheduleItem) error
	Delete(ctx context.Context, id string) error
}

type DraftService interface {
	// PersistDraft stores the transcript and one item per block in a single
	// transaction, then marks the capture processed.
	PersistDraft(ctx context.Context, transcript string, source domain.CaptureSource, blocks []planner.DraftBlock) (*domain.Capture, error)
}
