package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/civic/internal/db"
	"github.com/alexanderramin/civic/internal/domain"
	"github.com/goccy/go-json"
)

// SQLitePreferenceRepo implements PreferenceRepo using a SQLite database.
type SQLitePreferenceRepo struct {
	db db.DBTX
}

// NewSQLitePreferenceRepo creates a new SQLitePreferenceRepo.
func NewSQLitePreferenceRepo(conn db.DBTX) *SQLitePreferenceRepo {
	return &SQLitePreferenceRepo{db: conn}
}

func (r *SQLitePreferenceRepo) Get(ctx context.Context, userID string) (*domain.PreferenceState, error) {
	query := `SELECT user_id, preferred_intents, preferred_topics, preferred_locations,
		total_actions_viewed, actions_completed, actions_saved, total_time_spent_seconds,
		last_engagement_at, ratings
		FROM user_preferences WHERE user_id = ?`

	var p domain.PreferenceState
	var intents, topics, locations, ratings string
	var lastEngagement sql.NullString
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID,
		&intents,
		&topics,
		&locations,
		&p.TotalActionsViewed,
		&p.ActionsCompleted,
		&p.ActionsSaved,
		&p.TotalTimeSpentSeconds,
		&lastEngagement,
		&ratings,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("preferences for %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning preferences: %w", err)
	}

	if p.PreferredIntents, err = decodeStrings(intents); err != nil {
		return nil, err
	}
	if p.PreferredTopics, err = decodeStrings(topics); err != nil {
		return nil, err
	}
	if p.PreferredLocations, err = decodeStrings(locations); err != nil {
		return nil, err
	}
	p.Ratings = map[string]domain.Rating{}
	if ratings != "" {
		if err := json.Unmarshal([]byte(ratings), &p.Ratings); err != nil {
			return nil, fmt.Errorf("decoding ratings: %w", err)
		}
	}
	p.LastEngagementAt = parseNullableTime(lastEngagement, time.RFC3339Nano)
	return &p, nil
}

// Save writes the full snapshot. Counters are merged with MAX so a stale
// snapshot can never move a persisted counter backwards.
func (r *SQLitePreferenceRepo) Save(ctx context.Context, p *domain.PreferenceState) error {
	intents, err := encodeJSONColumn(nonNilStrings(p.PreferredIntents))
	if err != nil {
		return err
	}
	topics, err := encodeJSONColumn(nonNilStrings(p.PreferredTopics))
	if err != nil {
		return err
	}
	locations, err := encodeJSONColumn(nonNilStrings(p.PreferredLocations))
	if err != nil {
		return err
	}
	ratings := p.Ratings
	if ratings == nil {
		ratings = map[string]domain.Rating{}
	}
	ratingsJSON, err := encodeJSONColumn(ratings)
	if err != nil {
		return err
	}

	query := `INSERT INTO user_preferences (user_id, preferred_intents, preferred_topics,
			preferred_locations, total_actions_viewed, actions_completed, actions_saved,
			total_time_spent_seconds, last_engagement_at, ratings, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			preferred_intents = excluded.preferred_intents,
			preferred_topics = excluded.preferred_topics,
			preferred_locations = excluded.preferred_locations,
			total_actions_viewed = MAX(total_actions_viewed, excluded.total_actions_viewed),
			actions_completed = MAX(actions_completed, excluded.actions_completed),
			actions_saved = MAX(actions_saved, excluded.actions_saved),
			total_time_spent_seconds = MAX(total_time_spent_seconds, excluded.total_time_spent_seconds),
			last_engagement_at = excluded.last_engagement_at,
			ratings = excluded.ratings,
			updated_at = excluded.updated_at`
	_, err = r.db.ExecContext(ctx, query,
		p.UserID,
		intents,
		topics,
		locations,
		p.TotalActionsViewed,
		p.ActionsCompleted,
		p.ActionsSaved,
		p.TotalTimeSpentSeconds,
		nullableTimeToString(p.LastEngagementAt, time.RFC3339Nano),
		ratingsJSON,
		nowUTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("saving preferences for %s: %w", p.UserID, err)
	}
	return nil
}
