package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/nora/internal/db"
	"github.com/alexanderramin/nora/internal/domain"
	"github.com/alexanderramin/nora/internal/planner"
	"github.com/alexanderramin/nora/internal/repository"
	"github.com/google/uuid"
)

type draftService struct {
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewDraftService(uow db.UnitOfWork, observers ...UseCaseObserver) DraftService {
	return &draftService{uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *draftService) PersistDraft(ctx context.Context, transcript string, source domain.CaptureSource, blocks []planner.DraftBlock) (capture *domain.Capture, err error) {
	event := UseCaseEvent{
		UseCase:    UseCasePersistDraft,
		StartedAt:  time.Now().UTC(),
		Source:     source,
		BlockCount: len(blocks),
	}
	defer func() {
		event.Duration = time.Since(event.StartedAt)
		event.Err = err
		s.observer.ObserveUseCase(ctx, event)
	}()

	if !source.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidSource, source)
	}

	now := time.Now().UTC()
	capture = &domain.Capture{
		ID:        uuid.New().String(),
		Text:      transcript,
		Source:    source,
		CreatedAt: now,
	}
	items := make([]*domain.ScheduleItem, 0, len(blocks))
	for i, b := range blocks {
		item := itemFromBlock(b, capture.ID, now)
		if err = item.Validate(); err != nil {
			return nil, fmt.Errorf("block %d %q: %w", i+1, b.Title, err)
		}
		items = append(items, item)
	}
	event.CaptureID = capture.ID

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		captures := repository.NewSQLiteCaptureRepo(tx)
		itemRepo := repository.NewSQLiteScheduleItemRepo(tx)

		if err := captures.Create(ctx, capture); err != nil {
			return err
		}
		for _, item := range items {
			if err := itemRepo.Create(ctx, item); err != nil {
				return err
			}
		}
		return captures.MarkProcessed(ctx, capture.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("persisting draft: %w", err)
	}
	capture.MarkProcessed()
	return capture, nil
}

// itemFromBlock keeps the draft id so a block and the item it became can be
// matched up.
func itemFromBlock(b planner.DraftBlock, captureID string, now time.Time) *domain.ScheduleItem {
	var end *time.Time
	if b.EndAt != nil {
		e := *b.EndAt
		end = &e
	}
	return &domain.ScheduleItem{
		ID:        b.ID,
		Title:     b.Title,
		StartAt:   b.StartAt,
		EndAt:     end,
		CaptureID: captureID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
