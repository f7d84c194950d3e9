package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/nora/internal/domain"
)

type ScheduleItemRepo interface {
	Create(ctx context.Context, item *domain.ScheduleItem) error
	GetByID(ctx context.Context, id string) (*domain.ScheduleItem, error)
	// List returns every item ordered by start time.
	List(ctx context.Context) ([]*domain.ScheduleItem, error)
	// ListBetween returns items starting in [from, to), ordered by start time.
	ListBetween(ctx context.Context, from, to time.Time) ([]*domain.ScheduleItem, error)
	ListByCapture(ctx context.Context, captureID string) ([]*domain.ScheduleItem, error)
	Update(ctx context.Context, item *domain.ScheduleItem) error
	Delete(ctx context.Context, id string) error
}

type CaptureRepo interface {
	Create(ctx context.Context, c *domain.Capture) error
	GetByID(ctx context.Context, id string) (*domain.Capture, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.Capture, error)
	MarkProcessed(ctx context.Context, id string) error
}
