package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/nora/internal/db"
	"github.com/alexanderramin/nora/internal/domain"
)

// SQLiteCaptureRepo implements CaptureRepo using a SQLite database.
type SQLiteCaptureRepo struct {
	db db.DBTX
}

// NewSQLiteCaptureRepo creates a new SQLiteCaptureRepo.
func NewSQLiteCaptureRepo(conn db.DBTX) *SQLiteCaptureRepo {
	return &SQLiteCaptureRepo{db: conn}
}

func (r *SQLiteCaptureRepo) Create(ctx context.Context, c *domain.Capture) error {
	query := `INSERT INTO captures (id, text, source, is_processed, created_at)
		VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.Text,
		string(c.Source),
		boolToInt(c.IsProcessed),
		formatTime(c.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting capture: %w", err)
	}
	return nil
}

func (r *SQLiteCaptureRepo) GetByID(ctx context.Context, id string) (*domain.Capture, error) {
	query := `SELECT id, text, source, is_processed, created_at FROM captures WHERE id = ?`
	c, err := scanCapture(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("capture: %w", ErrNotFound)
		}
		return nil, err
	}
	return c, nil
}

func (r *SQLiteCaptureRepo) ListRecent(ctx context.Context, limit int) ([]*domain.Capture, error) {
	query := `SELECT id, text, source, is_processed, created_at FROM captures
		ORDER BY created_at DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent captures: %w", err)
	}
	defer rows.Close()

	var captures []*domain.Capture
	for rows.Next() {
		c, err := scanCapture(rows)
		if err != nil {
			return nil, err
		}
		captures = append(captures, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating captures: %w", err)
	}
	return captures, nil
}

func (r *SQLiteCaptureRepo) MarkProcessed(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE captures SET is_processed = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("marking capture processed: %w", err)
	}
	return requireAffected(res, "capture")
}

func scanCapture(row scanner) (*domain.Capture, error) {
	var (
		c         domain.Capture
		source    string
		processed int
		createdAt string
	)
	if err := row.Scan(&c.ID, &c.Text, &source, &processed, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning capture: %w", err)
	}
	created, err := parseTime(createdAt, "created_at")
	if err != nil {
		return nil, err
	}
	c.Source = domain.CaptureSource(source)
	c.IsProcessed = intToBool(processed)
	c.CreatedAt = created
	return &c, nil
}
