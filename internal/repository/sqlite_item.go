package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/nora/internal/db"
	"github.com/alexanderramin/nora/internal/domain"
)

// itemColumns is the canonical SELECT column list for schedule_items.
const itemColumns = `id, title, start_at, end_at, mode, location_or_link, notes,
		capture_id, created_at, updated_at`

// SQLiteScheduleItemRepo implements ScheduleItemRepo using a SQLite database.
type SQLiteScheduleItemRepo struct {
	db db.DBTX
}

// NewSQLiteScheduleItemRepo creates a new SQLiteScheduleItemRepo.
func NewSQLiteScheduleItemRepo(conn db.DBTX) *SQLiteScheduleItemRepo {
	return &SQLiteScheduleItemRepo{db: conn}
}

func (r *SQLiteScheduleItemRepo) Create(ctx context.Context, item *domain.ScheduleItem) error {
	query := `INSERT INTO schedule_items (` + itemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		item.ID,
		item.Title,
		formatTime(item.StartAt),
		nullableTime(item.EndAt),
		nullableMode(item.Mode),
		item.LocationOrLink,
		item.Notes,
		nullableString(item.CaptureID),
		formatTime(item.CreatedAt),
		formatTime(item.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting schedule item: %w", err)
	}
	return nil
}

func (r *SQLiteScheduleItemRepo) GetByID(ctx context.Context, id string) (*domain.ScheduleItem, error) {
	query := `SELECT ` + itemColumns + ` FROM schedule_items WHERE id = ?`
	item, err := scanItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("schedule item: %w", ErrNotFound)
		}
		return nil, err
	}
	return item, nil
}

func (r *SQLiteScheduleItemRepo) List(ctx context.Context) ([]*domain.ScheduleItem, error) {
	query := `SELECT ` + itemColumns + ` FROM schedule_items ORDER BY start_at, created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing schedule items: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

func (r *SQLiteScheduleItemRepo) ListBetween(ctx context.Context, from, to time.Time) ([]*domain.ScheduleItem, error) {
	query := `SELECT ` + itemColumns + ` FROM schedule_items
		WHERE start_at >= ? AND start_at < ?
		ORDER BY start_at, created_at`
	rows, err := r.db.QueryContext(ctx, query, formatTime(from), formatTime(to))
	if err != nil {
		return nil, fmt.Errorf("listing schedule items between: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

func (r *SQLiteScheduleItemRepo) ListByCapture(ctx context.Context, captureID string) ([]*domain.ScheduleItem, error) {
	query := `SELECT ` + itemColumns + ` FROM schedule_items
		WHERE capture_id = ? ORDER BY start_at, created_at`
	rows, err := r.db.QueryContext(ctx, query, captureID)
	if err != nil {
		return nil, fmt.Errorf("listing schedule items by capture: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

func (r *SQLiteScheduleItemRepo) Update(ctx context.Context, item *domain.ScheduleItem) error {
	query := `UPDATE schedule_items SET title = ?, start_at = ?, end_at = ?, mode = ?,
		location_or_link = ?, notes = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		item.Title,
		formatTime(item.StartAt),
		nullableTime(item.EndAt),
		nullableMode(item.Mode),
		item.LocationOrLink,
		item.Notes,
		formatTime(item.UpdatedAt),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("updating schedule item: %w", err)
	}
	return requireAffected(res, "schedule item")
}

func (r *SQLiteScheduleItemRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM schedule_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting schedule item: %w", err)
	}
	return requireAffected(res, "schedule item")
}

func scanItem(row scanner) (*domain.ScheduleItem, error) {
	var (
		item                 domain.ScheduleItem
		startAt, createdAt   string
		updatedAt            string
		endAt, mode, capture sql.NullString
	)
	err := row.Scan(
		&item.ID, &item.Title, &startAt, &endAt, &mode,
		&item.LocationOrLink, &item.Notes, &capture, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning schedule item: %w", err)
	}

	if item.StartAt, err = parseTime(startAt, "start_at"); err != nil {
		return nil, err
	}
	if item.EndAt, err = parseNullableTime(endAt, "end_at"); err != nil {
		return nil, err
	}
	if item.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if updatedAt != "" {
		if item.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
			return nil, err
		}
	}
	if mode.Valid {
		m := domain.ItemMode(mode.String)
		item.Mode = &m
	}
	item.CaptureID = capture.String
	return &item, nil
}

func scanItems(rows *sql.Rows) ([]*domain.ScheduleItem, error) {
	var items []*domain.ScheduleItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating schedule items: %w", err)
	}
	return items, nil
}

func nullableMode(m *domain.ItemMode) any {
	if m == nil {
		return nil
	}
	return string(*m)
}

func requireAffected(res sql.Result, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking %s rows affected: %w", entity, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", entity, ErrNotFound)
	}
	return nil
}
