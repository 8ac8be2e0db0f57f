package db

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var errClosed = errors.New("database connection is closed")

// SummaryRecord is one row of summary_history: the outcome of one document
// in one run.
type SummaryRecord struct {
	ID           int64
	RunID        string // shared by every document of one batch
	FilePath     string
	FileName     string
	Status       string // summarized, failed, skipped
	FailureKind  string
	Message      string
	ChunkCount   int
	RequestCount int
	SkipReason   string
	OCRPages     int
	Summary      string
	OutputPath   string // saved summary file, if any
	Duration     time.Duration
	CreatedAt    time.Time
}

// Repository reads and writes summary history.
type Repository struct {
	db *Database
}

// NewRepository creates a Repository over an open Database.
func NewRepository(db *Database) *Repository {
	return &Repository{db: db}
}

// Insert stores rec and returns its ID. A zero CreatedAt is set to now.
func (r *Repository) Insert(ctx context.Context, rec SummaryRecord) (int64, error) {
	if r.db == nil {
		return 0, fmt.Errorf("database connection is nil")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	conn, err := r.db.conn()
	if err != nil {
		return 0, err
	}

	res, err := conn.ExecContext(ctx, `
		INSERT INTO summary_history (
			run_id, file_path, file_name, status, failure_kind, message,
			chunk_count, request_count, skip_reason, ocr_pages, summary,
			output_path, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.FilePath, rec.FileName, rec.Status, rec.FailureKind, rec.Message,
		rec.ChunkCount, rec.RequestCount, rec.SkipReason, rec.OCRPages, rec.Summary,
		rec.OutputPath, rec.Duration.Milliseconds(), rec.CreatedAt.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to insert summary history: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return id, nil
}

const selectColumns = `
	SELECT id, run_id, file_path, file_name, status, failure_kind, message,
	       chunk_count, request_count, skip_reason, ocr_pages, summary,
	       output_path, duration_ms, created_at
	FROM summary_history`

// ListRecent returns up to limit records, newest first. A non-positive
// limit means 10.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]SummaryRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	return r.query(ctx, selectColumns+` ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
}

// ListByRun returns the records of one run in insertion order.
func (r *Repository) ListByRun(ctx context.Context, runID string) ([]SummaryRecord, error) {
	return r.query(ctx, selectColumns+` WHERE run_id = ? ORDER BY id ASC`, runID)
}

func (r *Repository) query(ctx context.Context, query string, args ...interface{}) ([]SummaryRecord, error) {
	if r.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	conn, err := r.db.conn()
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query summary history: %w", err)
	}
	defer rows.Close()

	var records []SummaryRecord
	for rows.Next() {
		var rec SummaryRecord
		var durationMS, createdAt int64
		if err := rows.Scan(
			&rec.ID, &rec.RunID, &rec.FilePath, &rec.FileName, &rec.Status,
			&rec.FailureKind, &rec.Message, &rec.ChunkCount, &rec.RequestCount,
			&rec.SkipReason, &rec.OCRPages, &rec.Summary, &rec.OutputPath,
			&durationMS, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan summary history row: %w", err)
		}
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		rec.CreatedAt = time.UnixMilli(createdAt)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating summary history rows: %w", err)
	}
	return records, nil
}
