package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/civic/internal/domain"
	"github.com/alexanderramin/civic/internal/importer"
	"github.com/alexanderramin/civic/internal/repository"
	"github.com/alexanderramin/civic/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedYAML = `version: 1
defaults:
  location: Springfield
actions:
  - id: call-council
    title: Call your council member
    intent: advocate
    topic: transit
    impact: 4
    urgency: 5
    tags: [transit, local]
  - id: tree-planting
    title: Join the tree planting crew
    intent: volunteer
    topic: climate change
    cta_type: volunteer
    time_commitment: 2 hours
`

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestImportFile_CreatesActions(t *testing.T) {
	database := testutil.NewTestDB(t)
	obs := &recordingObserver{}
	svc := NewImportService(testutil.NewTestUoW(database), obs)
	ctx := context.Background()

	res, err := svc.ImportFile(ctx, writeSeed(t, seedYAML))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	assert.Zero(t, res.Updated)

	got, err := repository.NewSQLiteActionRepo(database).GetByID(ctx, "call-council")
	require.NoError(t, err)
	assert.Equal(t, "Springfield", got.Location)
	assert.Equal(t, string(domain.CTAContactRep), got.CTAType)
	assert.Equal(t, 5, got.Urgency)

	events := obs.named(UseCaseImport)
	require.Len(t, events, 1)
	assert.True(t, events[0].Success)
	assert.Equal(t, 2, events[0].Fields["created"])
}

func TestImportFile_SecondRunUpdates(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := NewImportService(testutil.NewTestUoW(database))
	ctx := context.Background()
	path := writeSeed(t, seedYAML)

	_, err := svc.ImportFile(ctx, path)
	require.NoError(t, err)
	res, err := svc.ImportFile(ctx, path)
	require.NoError(t, err)
	assert.Zero(t, res.Created)
	assert.Equal(t, 2, res.Updated)
}

func TestImportSchema_ValidationErrorsListed(t *testing.T) {
	database := testutil.NewTestDB(t)
	obs := &recordingObserver{}
	svc := NewImportService(testutil.NewTestUoW(database), obs)

	schema := &importer.CatalogSchema{
		Version: 1,
		Actions: []importer.ActionImport{
			{ID: "a", Title: "", Impact: 9},
			{ID: "a", Title: "dup"},
		},
	}
	_, err := svc.ImportSchema(context.Background(), schema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog validation failed")
	assert.Contains(t, err.Error(), "actions[0].title")
	assert.Contains(t, err.Error(), "actions[0].impact")
	assert.Contains(t, err.Error(), "duplicate")

	events := obs.named(UseCaseImport)
	require.Len(t, events, 1)
	assert.False(t, events[0].Success)
}

func TestImportSchema_RollsBackOnWriteFailure(t *testing.T) {
	database := testutil.NewTestDB(t)
	boom := errors.New("disk full")
	uow := &testutil.FailOnNthExecUoW{DB: database, FailOn: 2, Err: boom}
	svc := NewImportService(uow)

	schema, err := importer.ParseCatalogSchema([]byte(seedYAML))
	require.NoError(t, err)

	_, err = svc.ImportSchema(context.Background(), schema)
	require.ErrorIs(t, err, boom)

	_, err = repository.NewSQLiteActionRepo(database).GetByID(context.Background(), "call-council")
	assert.ErrorIs(t, err, repository.ErrNotFound, "first upsert must be rolled back")
}

func TestImportFile_MissingFile(t *testing.T) {
	svc := NewImportService(testutil.NewTestUoW(testutil.NewTestDB(t)))
	_, err := svc.ImportFile(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading catalog file")
}
