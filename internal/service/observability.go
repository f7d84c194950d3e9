package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/alexanderramin/nora/internal/domain"
	"github.com/alexanderramin/nora/internal/repository"
)

// UseCase names a service write in logs.
type UseCase string

const (
	UseCaseCreateItem   UseCase = "create_item"
	UseCaseUpdateItem   UseCase = "update_item"
	UseCaseDeleteItem   UseCase = "delete_item"
	UseCasePersistDraft UseCase = "persist_draft"
)

// UseCaseEvent is one finished service write. ItemID is set for item
// writes; the capture fields only for UseCasePersistDraft. CaptureID stays
// empty when the draft was rejected before a capture was built.
type UseCaseEvent struct {
	UseCase   UseCase
	StartedAt time.Time
	Duration  time.Duration
	Err       error

	ItemID string

	CaptureID  string
	Source     domain.CaptureSource
	BlockCount int
}

func (e UseCaseEvent) Success() bool { return e.Err == nil }

// level is Warn for a missing item, which is the caller's mistake rather
// than a storage failure.
func (e UseCaseEvent) level() slog.Level {
	switch {
	case e.Err == nil:
		return slog.LevelInfo
	case errors.Is(e.Err, repository.ErrNotFound):
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

func (e UseCaseEvent) attrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("use_case", string(e.UseCase)),
		slog.Int64("duration_ms", e.Duration.Milliseconds()),
		slog.Bool("success", e.Success()),
	}
	if e.ItemID != "" {
		attrs = append(attrs, slog.String("item_id", e.ItemID))
	}
	if e.UseCase == UseCasePersistDraft {
		attrs = append(attrs,
			slog.String("source", string(e.Source)),
			slog.Int("block_count", e.BlockCount),
		)
		if e.CaptureID != "" {
			attrs = append(attrs, slog.String("capture_id", e.CaptureID))
		}
	}
	if e.Err != nil {
		attrs = append(attrs, slog.String("error", e.Err.Error()))
	}
	return attrs
}

// UseCaseObserver receives use-case execution events.
type UseCaseObserver interface {
	ObserveUseCase(ctx context.Context, event UseCaseEvent)
}

// NoopUseCaseObserver ignores all events.
type NoopUseCaseObserver struct{}

func (NoopUseCaseObserver) ObserveUseCase(context.Context, UseCaseEvent) {}

type logUseCaseObserver struct {
	logger *slog.Logger
}

// NewLogUseCaseObserver writes one slog text line per event to w.
func NewLogUseCaseObserver(w io.Writer) UseCaseObserver {
	if w == nil {
		return NoopUseCaseObserver{}
	}
	return &logUseCaseObserver{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

func (o *logUseCaseObserver) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	o.logger.LogAttrs(ctx, event.level(), "service_use_case", event.attrs()...)
}

func useCaseObserverOrNoop(observers []UseCaseObserver) UseCaseObserver {
	for _, obs := range observers {
		if obs != nil {
			return obs
		}
	}
	return NoopUseCaseObserver{}
}
