package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/nora/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openUoW(t *testing.T) (*db.SQLiteUnitOfWork, func(id string) bool) {
	t.Helper()
	database, err := db.OpenDB(db.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	exists := func(id string) bool {
		var n int
		require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM captures WHERE id = ?`, id).Scan(&n))
		return n == 1
	}
	return db.NewSQLiteUnitOfWork(database), exists
}

func insertCapture(ctx context.Context, tx db.DBTX, id string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO captures (id, text, source, created_at) VALUES (?, 'gym at 7', 'manual', '2025-12-27T00:00:00Z')`, id)
	return err
}

func TestWithinTx_CommitOnSuccess(t *testing.T) {
	uow, exists := openUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		return insertCapture(ctx, tx, "c1")
	})
	require.NoError(t, err)
	assert.True(t, exists("c1"), "row should exist after commit")
}

func TestWithinTx_RollbackOnError(t *testing.T) {
	uow, exists := openUoW(t)
	boom := errors.New("item insert failed")

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := insertCapture(ctx, tx, "c2"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, exists("c2"), "row should not exist after rollback")
}

func TestWithinTx_RollbackOnPanic(t *testing.T) {
	uow, exists := openUoW(t)

	assert.Panics(t, func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			_ = insertCapture(ctx, tx, "c3")
			panic("boom")
		})
	})
	assert.False(t, exists("c3"), "row should not exist after panic rollback")
}

func TestWithinTx_CancelledContext(t *testing.T) {
	uow, exists := openUoW(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		called = true
		return insertCapture(ctx, tx, "c4")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called, "fn should not run on a cancelled context")
	assert.False(t, exists("c4"))
}

func TestWithinTx_CancelledBeforeCommit(t *testing.T) {
	uow, exists := openUoW(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := insertCapture(ctx, tx, "c5"); err != nil {
			return err
		}
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "committing transaction")
	assert.False(t, exists("c5"), "row should not exist when commit is cancelled")
}

func TestWithinTx_ErrorAfterCancelIsKept(t *testing.T) {
	uow, exists := openUoW(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	boom := errors.New("item insert failed")

	err := uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := insertCapture(ctx, tx, "c6"); err != nil {
			return err
		}
		cancel()
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, exists("c6"))
}
