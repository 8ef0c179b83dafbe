package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/civic/internal/domain"
	"github.com/alexanderramin/civic/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionRepo_UpsertAndGet(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteActionRepo(database)
	ctx := context.Background()

	rec := testutil.NewTestRecord("Call your senator",
		testutil.WithRecordID("a-1"),
		testutil.WithTags("climate", "policy"),
		testutil.WithTopic("Climate"),
		testutil.WithCTA("contact_rep"),
		testutil.WithLevels(9, -2),
	)
	require.NoError(t, repo.Upsert(ctx, rec))

	got, err := repo.GetByID(ctx, "a-1")
	require.NoError(t, err)
	assert.Equal(t, "Call your senator", got.Title)
	assert.Equal(t, []string{"climate", "policy"}, got.Tags)
	assert.Equal(t, "contact_rep", got.CTAType)
	assert.Equal(t, 5, got.Impact, "impact clamped on write")
	assert.Equal(t, 1, got.Urgency, "urgency clamped on write")
	assert.False(t, got.CreatedAt.IsZero())
}

func TestActionRepo_UpsertUpdatesExisting(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteActionRepo(database)
	ctx := context.Background()

	rec := testutil.NewTestRecord("Old title", testutil.WithRecordID("a-1"))
	require.NoError(t, repo.Upsert(ctx, rec))
	rec.Title = "New title"
	rec.CTAType = "not-a-cta"
	require.NoError(t, repo.Upsert(ctx, rec))

	all, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "New title", all[0].Title)
	assert.Equal(t, string(domain.CTALearnMore), all[0].CTAType)
}

func TestActionRepo_UpsertRejectsEmptyID(t *testing.T) {
	repo := NewSQLiteActionRepo(testutil.NewTestDB(t))
	err := repo.Upsert(context.Background(), &domain.ActionRecord{Title: "x"})
	require.Error(t, err)
}

func TestActionRepo_GetByID_NotFound(t *testing.T) {
	repo := NewSQLiteActionRepo(testutil.NewTestDB(t))
	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestActionRepo_Delete(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteActionRepo(database)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, testutil.NewTestRecord("x", testutil.WithRecordID("a-1"))))
	require.NoError(t, repo.Delete(ctx, "a-1"))
	assert.ErrorIs(t, repo.Delete(ctx, "a-1"), ErrNotFound)
}

func TestActionRepo_ListPersonalized(t *testing.T) {
	database := testutil.NewTestDB(t)
	actions := NewSQLiteActionRepo(database)
	prefs := NewSQLitePreferenceRepo(database)
	events := NewSQLiteActionEventRepo(database)
	ctx := context.Background()

	for _, rec := range []*domain.ActionRecord{
		testutil.NewTestRecord("Both match", testutil.WithRecordID("both"),
			testutil.WithTopic("climate"), testutil.WithIntent("volunteer")),
		testutil.NewTestRecord("Topic only", testutil.WithRecordID("topic"),
			testutil.WithTopic("Climate"), testutil.WithLevels(3, 5)),
		testutil.NewTestRecord("Unrelated", testutil.WithRecordID("none"),
			testutil.WithTopic("housing")),
		testutil.NewTestRecord("Done already", testutil.WithRecordID("done"),
			testutil.WithTopic("climate")),
	} {
		require.NoError(t, actions.Upsert(ctx, rec))
	}

	p := domain.NewPreferenceState("u1")
	p.PreferredTopics = []string{"climate"}
	p.PreferredIntents = []string{"Volunteer"}
	require.NoError(t, prefs.Save(ctx, p))
	require.NoError(t, events.Create(ctx, &domain.ActionEvent{
		ID: "e1", UserID: "u1", ActionID: "done", Kind: domain.EventComplete,
	}))

	got, err := actions.ListPersonalized(ctx, "u1", 10)
	require.NoError(t, err)
	ids := make([]string, len(got))
	for i, r := range got {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"both", "topic"}, ids)

	limited, err := actions.ListPersonalized(ctx, "u1", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestActionRepo_ListPersonalized_NoPreferences(t *testing.T) {
	database := testutil.NewTestDB(t)
	actions := NewSQLiteActionRepo(database)
	ctx := context.Background()
	require.NoError(t, actions.Upsert(ctx, testutil.NewTestRecord("x", testutil.WithTopic("climate"))))

	got, err := actions.ListPersonalized(ctx, "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestActionRepo_ListPopular(t *testing.T) {
	database := testutil.NewTestDB(t)
	actions := NewSQLiteActionRepo(database)
	events := NewSQLiteActionEventRepo(database)
	ctx := context.Background()

	require.NoError(t, actions.Upsert(ctx, testutil.NewTestRecord("quiet", testutil.WithRecordID("quiet"), testutil.WithLevels(5, 5))))
	require.NoError(t, actions.Upsert(ctx, testutil.NewTestRecord("busy", testutil.WithRecordID("busy"))))
	for i, kind := range []domain.ActionEventKind{domain.EventStart, domain.EventComplete} {
		require.NoError(t, events.Create(ctx, &domain.ActionEvent{
			ID:        string(rune('a' + i)),
			UserID:    "u1",
			ActionID:  "busy",
			Kind:      kind,
			CreatedAt: time.Date(2026, 3, 1, 12, i, 0, 0, time.UTC),
		}))
	}

	got, err := actions.ListPopular(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "busy", got[0].ID)
	assert.Equal(t, "quiet", got[1].ID)
}
