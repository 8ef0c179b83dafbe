package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/civic/internal/db"
	"github.com/alexanderramin/civic/internal/domain"
)

// SQLiteActionEventRepo implements ActionEventRepo using a SQLite database.
type SQLiteActionEventRepo struct {
	db db.DBTX
}

// NewSQLiteActionEventRepo creates a new SQLiteActionEventRepo.
func NewSQLiteActionEventRepo(conn db.DBTX) *SQLiteActionEventRepo {
	return &SQLiteActionEventRepo{db: conn}
}

func (r *SQLiteActionEventRepo) Create(ctx context.Context, e *domain.ActionEvent) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = nowUTC()
	}
	query := `INSERT INTO action_events (id, user_id, action_id, kind, impact_reported, feedback, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.UserID,
		e.ActionID,
		string(e.Kind),
		nullableIntToValue(e.ImpactReported),
		e.Feedback,
		e.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting %s event for action %s: %w", e.Kind, e.ActionID, err)
	}
	return nil
}

func (r *SQLiteActionEventRepo) ListByUser(ctx context.Context, userID string) ([]*domain.ActionEvent, error) {
	query := `SELECT id, user_id, action_id, kind, impact_reported, feedback, created_at
		FROM action_events WHERE user_id = ? ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing action events: %w", err)
	}
	defer rows.Close()

	var out []*domain.ActionEvent
	for rows.Next() {
		var e domain.ActionEvent
		var kind, createdAt string
		var impact sql.NullInt64
		if err := rows.Scan(&e.ID, &e.UserID, &e.ActionID, &kind, &impact, &e.Feedback, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning action event: %w", err)
		}
		e.Kind = domain.ActionEventKind(kind)
		if impact.Valid {
			v := int(impact.Int64)
			e.ImpactReported = &v
		}
		e.CreatedAt = parseTime(createdAt)
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating action events: %w", err)
	}
	return out, nil
}
