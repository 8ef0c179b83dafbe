package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/civic/internal/db"
	"github.com/alexanderramin/civic/internal/domain"
)

// SQLiteActionRepo implements ActionRepo using a SQLite database.
type SQLiteActionRepo struct {
	db db.DBTX
}

// NewSQLiteActionRepo creates a new SQLiteActionRepo.
func NewSQLiteActionRepo(conn db.DBTX) *SQLiteActionRepo {
	return &SQLiteActionRepo{db: conn}
}

const actionColumns = `a.id, a.title, a.description, a.tags, a.intent, a.topic, a.location,
	a.cta_type, a.impact, a.urgency, a.time_commitment, a.organization_name, a.link,
	a.created_at, a.updated_at`

func (r *SQLiteActionRepo) Upsert(ctx context.Context, rec *domain.ActionRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("upserting action: empty id")
	}
	tags, err := encodeJSONColumn(nonNilStrings(rec.Tags))
	if err != nil {
		return err
	}
	now := nowUTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	query := `INSERT INTO actions (id, title, description, tags, intent, topic, location,
			cta_type, impact, urgency, time_commitment, organization_name, link, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			tags = excluded.tags,
			intent = excluded.intent,
			topic = excluded.topic,
			location = excluded.location,
			cta_type = excluded.cta_type,
			impact = excluded.impact,
			urgency = excluded.urgency,
			time_commitment = excluded.time_commitment,
			organization_name = excluded.organization_name,
			link = excluded.link,
			updated_at = excluded.updated_at`
	_, err = r.db.ExecContext(ctx, query,
		rec.ID,
		rec.Title,
		rec.Description,
		tags,
		rec.Intent,
		rec.Topic,
		rec.Location,
		string(domain.ParseCTAType(rec.CTAType)),
		domain.ClampLevel(rec.Impact),
		domain.ClampLevel(rec.Urgency),
		rec.TimeCommitment,
		rec.OrganizationName,
		rec.Link,
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		rec.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upserting action %s: %w", rec.ID, err)
	}
	return nil
}

func (r *SQLiteActionRepo) GetByID(ctx context.Context, id string) (*domain.ActionRecord, error) {
	query := `SELECT ` + actionColumns + ` FROM actions a WHERE a.id = ?`
	rec, err := scanAction(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("action %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return rec, nil
}

func (r *SQLiteActionRepo) List(ctx context.Context, limit int) ([]*domain.ActionRecord, error) {
	query := `SELECT ` + actionColumns + ` FROM actions a ORDER BY a.created_at, a.id LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limitOrAll(limit))
	if err != nil {
		return nil, fmt.Errorf("listing actions: %w", err)
	}
	defer rows.Close()
	return scanActions(rows)
}

func (r *SQLiteActionRepo) ListPersonalized(ctx context.Context, userID string, limit int) ([]*domain.ActionRecord, error) {
	query := `WITH prefs AS (
			SELECT 'topic' AS kind, lower(j.value) AS v
			FROM user_preferences p, json_each(p.preferred_topics) j WHERE p.user_id = ?
			UNION ALL
			SELECT 'intent', lower(j.value)
			FROM user_preferences p, json_each(p.preferred_intents) j WHERE p.user_id = ?
			UNION ALL
			SELECT 'location', lower(j.value)
			FROM user_preferences p, json_each(p.preferred_locations) j WHERE p.user_id = ?
		),
		scored AS (
			SELECT ` + actionColumns + `,
				(SELECT COUNT(*) FROM prefs
				 WHERE (kind = 'topic' AND v = lower(a.topic))
				    OR (kind = 'intent' AND v = lower(a.intent))
				    OR (kind = 'location' AND v = lower(a.location))) AS matches
			FROM actions a
			WHERE a.id NOT IN (
				SELECT action_id FROM action_events WHERE user_id = ? AND kind = 'complete'
			)
		)
		SELECT a.id, a.title, a.description, a.tags, a.intent, a.topic, a.location,
			a.cta_type, a.impact, a.urgency, a.time_commitment, a.organization_name, a.link,
			a.created_at, a.updated_at
		FROM scored a
		WHERE a.matches > 0
		ORDER BY a.matches DESC, a.urgency DESC, a.impact DESC, a.id
		LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, userID, userID, userID, userID, limitOrAll(limit))
	if err != nil {
		return nil, fmt.Errorf("listing personalized actions: %w", err)
	}
	defer rows.Close()
	return scanActions(rows)
}

func (r *SQLiteActionRepo) ListPopular(ctx context.Context, limit int) ([]*domain.ActionRecord, error) {
	query := `SELECT ` + actionColumns + `
		FROM actions a
		LEFT JOIN (
			SELECT action_id, COUNT(*) AS n FROM action_events GROUP BY action_id
		) e ON e.action_id = a.id
		ORDER BY COALESCE(e.n, 0) DESC, a.urgency DESC, a.impact DESC, a.id
		LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limitOrAll(limit))
	if err != nil {
		return nil, fmt.Errorf("listing popular actions: %w", err)
	}
	defer rows.Close()
	return scanActions(rows)
}

func (r *SQLiteActionRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM actions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting action %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("action %s: %w", id, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAction(row rowScanner) (*domain.ActionRecord, error) {
	var rec domain.ActionRecord
	var tags, createdAt, updatedAt string
	err := row.Scan(
		&rec.ID,
		&rec.Title,
		&rec.Description,
		&tags,
		&rec.Intent,
		&rec.Topic,
		&rec.Location,
		&rec.CTAType,
		&rec.Impact,
		&rec.Urgency,
		&rec.TimeCommitment,
		&rec.OrganizationName,
		&rec.Link,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning action: %w", err)
	}
	if rec.Tags, err = decodeStrings(tags); err != nil {
		return nil, fmt.Errorf("action %s tags: %w", rec.ID, err)
	}
	rec.CreatedAt = parseTime(createdAt)
	rec.UpdatedAt = parseTime(updatedAt)
	return &rec, nil
}

func scanActions(rows *sql.Rows) ([]*domain.ActionRecord, error) {
	var out []*domain.ActionRecord
	for rows.Next() {
		rec, err := scanAction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating actions: %w", err)
	}
	return out, nil
}

// limitOrAll maps a non-positive limit to SQLite's "no limit".
func limitOrAll(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
