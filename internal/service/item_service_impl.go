package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/alexanderramin/nora/internal/domain"
	"github.com/alexanderramin/nora/internal/repository"
	"github.com/google/uuid"
)

type itemService struct {
	items    repository.ScheduleItemRepo
	observer UseCaseObserver
}

func NewItemService(items repository.ScheduleItemRepo, observers ...UseCaseObserver) ItemService {
	return &itemService{items: items, observer: useCaseObserverOrNoop(observers)}
}

func (s *itemService) Create(ctx context.Context, item *domain.ScheduleItem) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observe(ctx, UseCaseCreateItem, item.ID, startedAt, err)
	}()

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if err = item.Validate(); err != nil {
		return fmt.Errorf("creating item: %w", err)
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	return s.items.Create(ctx, item)
}

func (s *itemService) GetByID(ctx context.Context, id string) (*domain.ScheduleItem, error) {
	return s.items.GetByID(ctx, id)
}

func (s *itemService) List(ctx context.Context) ([]*domain.ScheduleItem, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, err
	}
	sortByStart(items)
	return items, nil
}

func (s *itemService) ListDay(ctx context.Context, day time.Time) ([]*domain.ScheduleItem, error) {
	from, to := domain.DayBounds(day)
	items, err := s.items.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	sortByStart(items)
	return items, nil
}

func (s *itemService) ListUpcoming(ctx context.Context, now time.Time) ([]*domain.ScheduleItem, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, err
	}
	upcoming := make([]*domain.ScheduleItem, 0, len(items))
	for _, item := range items {
		if !item.StartAt.Before(now) || (item.EndAt != nil && item.EndAt.After(now)) {
			upcoming = append(upcoming, item)
		}
	}
	sortByStart(upcoming)
	return upcoming, nil
}

func (s *itemService) Update(ctx context.Context, item *domain.ScheduleItem) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observe(ctx, UseCaseUpdateItem, item.ID, startedAt, err)
	}()

	if err = item.Validate(); err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	item.UpdatedAt = time.Now().UTC()
	return s.items.Update(ctx, item)
}

func (s *itemService) Delete(ctx context.Context, id string) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observe(ctx, UseCaseDeleteItem, id, startedAt, err)
	}()
	return s.items.Delete(ctx, id)
}

func (s *itemService) observe(ctx context.Context, uc UseCase, itemID string, startedAt time.Time, err error) {
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		UseCase:   uc,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Err:       err,
		ItemID:    itemID,
	})
}

// sortByStart orders items by StartAt, keeping insertion order for ties.
func sortByStart(items []*domain.ScheduleItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].StartAt.Before(items[j].StartAt)
	})
}
