package db

import (
	"context"
	"fmt"
	"time"
)

// Prune deletes history older than retentionDays and vacuums the file.
// It returns the number of rows removed.
//
// Example:
//
//	n, err := repo.Prune(ctx, 30)
func (r *Repository) Prune(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays < 0 {
		return 0, fmt.Errorf("retentionDays must be non-negative, got %d", retentionDays)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	return r.pruneBefore(ctx, cutoff)
}

func (r *Repository) pruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.db == nil {
		return 0, fmt.Errorf("database connection is nil")
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	conn, err := r.db.conn()
	if err != nil {
		return 0, err
	}

	res, err := conn.ExecContext(ctx, `DELETE FROM summary_history WHERE created_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to prune summary history: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned rows: %w", err)
	}

	if deleted > 0 {
		// VACUUM cannot run inside a transaction; the connection is idle here.
		if _, err := conn.ExecContext(ctx, "VACUUM"); err != nil {
			return deleted, fmt.Errorf("failed to vacuum database: %w", err)
		}
	}
	return deleted, nil
}
