package service

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/nora/internal/domain"
	"github.com/alexanderramin/nora/internal/repository"
	"github.com/alexanderramin/nora/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupItems(t *testing.T, observers ...UseCaseObserver) (ItemService, *repository.SQLiteScheduleItemRepo) {
	t.Helper()
	repo := repository.NewSQLiteScheduleItemRepo(testutil.NewTestDB(t))
	return NewItemService(repo, observers...), repo
}

func TestItemService_CreateAssignsIDAndTimestamps(t *testing.T) {
	svc, repo := setupItems(t)
	ctx := context.Background()

	end := testutil.At(8, 0)
	item := &domain.ScheduleItem{Title: "Gym", StartAt: testutil.At(7, 0), EndAt: &end}
	require.NoError(t, svc.Create(ctx, item))

	assert.NotEmpty(t, item.ID)
	assert.False(t, item.CreatedAt.IsZero())
	assert.Equal(t, item.CreatedAt, item.UpdatedAt)

	stored, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gym", stored.Title)
}

func TestItemService_CreateValidates(t *testing.T) {
	svc, _ := setupItems(t)
	ctx := context.Background()

	err := svc.Create(ctx, testutil.NewTestItem(""))
	assert.ErrorIs(t, err, domain.ErrEmptyTitle)

	err = svc.Create(ctx, testutil.NewTestItem("x", testutil.WithEnd(testutil.At(9, 0))))
	assert.ErrorIs(t, err, domain.ErrInvalidTimeRange)

	items, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items, "invalid items must not be stored")
}

func TestItemService_ListSortedByStart(t *testing.T) {
	svc, _ := setupItems(t)
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, testutil.NewTestItem("Homework", testutil.WithStart(testutil.At(18, 0)), testutil.WithEnd(testutil.At(20, 0)))))
	require.NoError(t, svc.Create(ctx, testutil.NewTestItem("Gym", testutil.WithStart(testutil.At(7, 0)), testutil.WithEnd(testutil.At(8, 0)))))
	require.NoError(t, svc.Create(ctx, testutil.NewTestItem("Lunch", testutil.WithStart(testutil.At(12, 30)), testutil.WithEnd(testutil.At(13, 0)))))

	items, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	for i := 1; i < len(items); i++ {
		assert.False(t, items[i].StartAt.Before(items[i-1].StartAt))
	}
	assert.Equal(t, "Gym", items[0].Title)
}

func TestItemService_ListDay(t *testing.T) {
	svc, _ := setupItems(t)
	ctx := context.Background()
	next := testutil.Day.AddDate(0, 0, 1)

	require.NoError(t, svc.Create(ctx, testutil.NewTestItem("Today")))
	require.NoError(t, svc.Create(ctx, testutil.NewTestItem("Tomorrow",
		testutil.WithStart(next.Add(9*time.Hour)), testutil.WithEnd(next.Add(10*time.Hour)))))

	items, err := svc.ListDay(ctx, testutil.At(15, 0))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Today", items[0].Title)
}

func TestItemService_ListDayUsesLocation(t *testing.T) {
	svc, _ := setupItems(t)
	ctx := context.Background()
	west := time.FixedZone("UTC-5", -5*3600)

	// 02:00 UTC on the 28th is 21:00 on the 27th in UTC-5.
	late := time.Date(2025, 12, 28, 2, 0, 0, 0, time.UTC)
	require.NoError(t, svc.Create(ctx, testutil.NewTestItem("Late", testutil.WithStart(late), testutil.AsReminder())))

	items, err := svc.ListDay(ctx, time.Date(2025, 12, 27, 12, 0, 0, 0, west))
	require.NoError(t, err)
	require.Len(t, items, 1)

	items, err = svc.ListDay(ctx, time.Date(2025, 12, 27, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestItemService_ListUpcoming(t *testing.T) {
	svc, _ := setupItems(t)
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, testutil.NewTestItem("Done", testutil.WithStart(testutil.At(7, 0)), testutil.WithEnd(testutil.At(8, 0)))))
	require.NoError(t, svc.Create(ctx, testutil.NewTestItem("Ongoing", testutil.WithStart(testutil.At(9, 0)), testutil.WithEnd(testutil.At(11, 0)))))
	require.NoError(t, svc.Create(ctx, testutil.NewTestItem("Past reminder", testutil.WithStart(testutil.At(9, 30)), testutil.AsReminder())))
	require.NoError(t, svc.Create(ctx, testutil.NewTestItem("Later", testutil.WithStart(testutil.At(14, 0)), testutil.WithEnd(testutil.At(15, 0)))))

	items, err := svc.ListUpcoming(ctx, testutil.At(10, 0))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Ongoing", items[0].Title)
	assert.Equal(t, "Later", items[1].Title)
}

func TestItemService_Update(t *testing.T) {
	svc, _ := setupItems(t)
	ctx := context.Background()

	item := testutil.NewTestItem("Gym")
	require.NoError(t, svc.Create(ctx, item))

	item.Title = ""
	assert.ErrorIs(t, svc.Update(ctx, item), domain.ErrEmptyTitle)

	item.Title = "Run"
	require.NoError(t, svc.Update(ctx, item))

	got, err := svc.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Run", got.Title)
}

func TestItemService_Delete(t *testing.T) {
	svc, _ := setupItems(t)
	ctx := context.Background()

	item := testutil.NewTestItem("Gym")
	require.NoError(t, svc.Create(ctx, item))
	require.NoError(t, svc.Delete(ctx, item.ID))

	_, err := svc.GetByID(ctx, item.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, item.ID), repository.ErrNotFound)
}

func TestItemService_ObservesUseCases(t *testing.T) {
	obs := &recordingObserver{}
	svc, _ := setupItems(t, obs)
	ctx := context.Background()

	item := testutil.NewTestItem("Gym")
	require.NoError(t, svc.Create(ctx, item))
	item.Title = "Gym (late)"
	require.NoError(t, svc.Update(ctx, item))
	require.Error(t, svc.Delete(ctx, "missing"))

	require.Len(t, obs.events, 3)
	assert.Equal(t, UseCaseCreateItem, obs.events[0].UseCase)
	assert.True(t, obs.events[0].Success())
	assert.Equal(t, item.ID, obs.events[0].ItemID)
	assert.Equal(t, UseCaseUpdateItem, obs.events[1].UseCase)
	assert.Equal(t, item.ID, obs.events[1].ItemID)
	assert.Equal(t, UseCaseDeleteItem, obs.events[2].UseCase)
	assert.Equal(t, "missing", obs.events[2].ItemID)
	assert.False(t, obs.events[2].Success())
	assert.ErrorIs(t, obs.events[2].Err, repository.ErrNotFound)
}

type recordingObserver struct {
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.events = append(o.events, e)
}
