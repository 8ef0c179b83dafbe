package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/civic/internal/domain"
	"github.com/alexanderramin/civic/internal/preference"
	"github.com/alexanderramin/civic/internal/repository"
	"github.com/alexanderramin/civic/internal/service"
	"github.com/alexanderramin/civic/internal/testutil"
)

var cliNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// testApp wires an App over a fake catalog with three popular actions.
func testApp(t *testing.T) (*App, *testutil.FakeCatalog) {
	t.Helper()
	fake := &testutil.FakeCatalog{
		Popular: []*domain.ActionRecord{
			testutil.NewTestRecord("Call the council", testutil.WithRecordID("call"), testutil.WithTags("transit", "local"), testutil.WithLevels(4, 5)),
			testutil.NewTestRecord("Plant trees", testutil.WithRecordID("trees"), testutil.WithTags("climate"), testutil.WithLevels(3, 2)),
			testutil.NewTestRecord("Sign the petition", testutil.WithRecordID("petition"), testutil.WithTags("climate"), testutil.WithLevels(2, 2)),
		},
	}
	clock := func() time.Time { return cliNow }
	store := preference.NewStore("u1", nil, preference.WithClock(clock))
	engine := service.NewEngine(fake, store, service.EngineConfig{}, nil).WithClock(clock)
	return &App{Engine: engine, Catalog: fake, Now: clock}, fake
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestGenerate_PrintsRankedTable(t *testing.T) {
	app, _ := testApp(t)

	out, err := executeCmd(t, app, "generate", "--intent", "volunteer", "--topic", "climate change", "--location", "Springfield")
	require.NoError(t, err)

	assert.Contains(t, out, "ACTIONS FOR CLIMATE CHANGE")
	assert.Contains(t, out, "Call the council")
	assert.Contains(t, out, "Plant trees")
	assert.Contains(t, out, "3 from catalog, 0 suggested")
	assert.Equal(t, int64(3), app.Engine.Preferences().TotalActionsViewed)
}

func TestGenerate_JSON(t *testing.T) {
	app, _ := testApp(t)

	out, err := executeCmd(t, app, "generate", "-i", "volunteer", "-t", "climate change", "--json")
	require.NoError(t, err)

	var got generateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "climate change", got.Context.Topic)
	assert.Equal(t, 3, got.CatalogCount)
	require.Len(t, got.Actions, 3)
	assert.Equal(t, "call", got.Actions[0].ID)
}

func TestGenerate_FilterFlags(t *testing.T) {
	app, _ := testApp(t)

	out, err := executeCmd(t, app, "generate", "-i", "volunteer", "-t", "climate change", "--tag", "climate", "--json")
	require.NoError(t, err)

	var got generateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Actions, 2)
	for _, a := range got.Actions {
		assert.True(t, a.HasTag("climate"), a.ID)
	}
	assert.Equal(t, int64(2), app.Engine.Preferences().TotalActionsViewed)
	assert.Len(t, app.Engine.Current(), 3, "filtering leaves the held set intact")
}

func TestGenerate_FuzzySearchFlag(t *testing.T) {
	app, _ := testApp(t)

	out, err := executeCmd(t, app, "generate", "-i", "advocate", "-t", "transit", "--search", "councl", "--json")
	require.NoError(t, err)

	var got generateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Actions, 1)
	assert.Equal(t, "call", got.Actions[0].ID)
}

func TestGenerate_RejectsBadLevels(t *testing.T) {
	app, _ := testApp(t)
	_, err := executeCmd(t, app, "generate", "-i", "volunteer", "-t", "x", "--urgency", "9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestGenerate_MissingTopicWithoutTerminal(t *testing.T) {
	app, fake := testApp(t)
	app.IsInteractive = func() bool { return false }

	_, err := executeCmd(t, app, "generate", "--intent", "volunteer")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--topic is required")
	assert.Zero(t, fake.Requests("popular"))
}

func TestGenerate_CatalogDownStillRecommends(t *testing.T) {
	app, fake := testApp(t)
	fake.PopularErr = assert.AnError
	fake.PersonalizedErr = assert.AnError

	out, err := executeCmd(t, app, "generate", "-i", "donate", "-t", "housing")
	require.NoError(t, err)
	assert.Contains(t, out, "0 from catalog")
	assert.Contains(t, out, "(suggested)")
	assert.Contains(t, out, "partly unavailable")
}

func TestCommands_RequireEngine(t *testing.T) {
	for _, args := range [][]string{
		{"generate", "-i", "a", "-t", "b"},
		{"save", "x"},
		{"prefs", "show"},
	} {
		_, err := executeCmd(t, &App{}, args...)
		require.Error(t, err, args)
		assert.Contains(t, err.Error(), "not configured")
	}
}

func TestSave_CountsAndFlushes(t *testing.T) {
	app, _ := testApp(t)
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLitePreferenceRepo(database)
	store := preference.NewStore("u1", nil)
	app.Engine = service.NewEngine(&testutil.FakeCatalog{}, store, service.EngineConfig{}, nil)
	app.Flusher = preference.NewFlusher(store, repo, preference.FlusherConfig{}, nil, nil)

	out, err := executeCmd(t, app, "save", "call")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved call")

	saved, err := repo.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved.ActionsSaved)
	assert.NotNil(t, saved.LastEngagementAt)
}

func TestComplete_ForwardsToCatalog(t *testing.T) {
	app, fake := testApp(t)

	_, err := executeCmd(t, app, "complete", "trees", "--impact", "4", "--feedback", "muddy but fun")
	require.NoError(t, err)

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, domain.EventComplete, calls[0].Kind)
	assert.Equal(t, "u1", calls[0].UserID)
	require.NotNil(t, calls[0].ImpactReported)
	assert.Equal(t, 4, *calls[0].ImpactReported)
	assert.Equal(t, "muddy but fun", calls[0].Feedback)
	assert.Equal(t, int64(1), app.Engine.Preferences().ActionsCompleted)
}

func TestComplete_WithoutImpact(t *testing.T) {
	app, fake := testApp(t)

	_, err := executeCmd(t, app, "complete", "trees")
	require.NoError(t, err)
	require.Len(t, fake.Calls(), 1)
	assert.Nil(t, fake.Calls()[0].ImpactReported)

	_, err = executeCmd(t, app, "complete", "trees", "--impact", "7")
	require.Error(t, err)
}

func TestStart_ForwardsToCatalog(t *testing.T) {
	app, fake := testApp(t)

	out, err := executeCmd(t, app, "start", "petition")
	require.NoError(t, err)
	assert.Contains(t, out, "Started petition")
	require.Len(t, fake.Calls(), 1)
	assert.Equal(t, domain.EventStart, fake.Calls()[0].Kind)
}

func TestRate(t *testing.T) {
	app, _ := testApp(t)

	out, err := executeCmd(t, app, "rate", "trees", "5", "--feedback", "great")
	require.NoError(t, err)
	assert.Contains(t, out, "★★★★★")

	r := app.Engine.Preferences().Ratings["trees"]
	assert.Equal(t, 5, r.Value)
	assert.Equal(t, "great", r.Feedback)

	_, err = executeCmd(t, app, "rate", "trees", "9")
	require.Error(t, err)
	_, err = executeCmd(t, app, "rate", "trees", "five")
	require.Error(t, err)
}

func TestTime(t *testing.T) {
	app, _ := testApp(t)

	out, err := executeCmd(t, app, "time", "1h30m")
	require.NoError(t, err)
	assert.Contains(t, out, "1h 30m")
	assert.Equal(t, int64(5400), app.Engine.Preferences().TotalTimeSpentSeconds)

	_, err = executeCmd(t, app, "time", "-5m")
	require.Error(t, err)
	_, err = executeCmd(t, app, "time", "soon")
	require.Error(t, err)
}

func TestPrefs_ShowExportValidate(t *testing.T) {
	app, _ := testApp(t)
	_, err := executeCmd(t, app, "generate", "-i", "volunteer", "-t", "climate change", "-l", "Springfield")
	require.NoError(t, err)
	_, err = executeCmd(t, app, "rate", "trees", "5")
	require.NoError(t, err)

	out, err := executeCmd(t, app, "prefs", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "PREFERENCES FOR U1")
	assert.Contains(t, out, "climate change")

	path := filepath.Join(t.TempDir(), "prefs.json")
	out, err = executeCmd(t, app, "prefs", "export", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	out, err = executeCmd(t, app, "prefs", "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "valid export for u1 (1 ratings)")
}

func TestPrefs_ExportToStdout(t *testing.T) {
	app, _ := testApp(t)
	out, err := executeCmd(t, app, "prefs", "export")
	require.NoError(t, err)

	_, err = preference.ValidateExport([]byte(out))
	require.NoError(t, err)
}

func TestPrefs_ValidateRejectsIncomplete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"userId":"u1"}`), 0o600))

	_, err := executeCmd(t, &App{}, "prefs", "validate", path)
	require.ErrorIs(t, err, preference.ErrInvalidExport)

	_, err = executeCmd(t, &App{}, "prefs", "validate", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

const cliSeedYAML = `version: 1
actions:
  - id: call-council
    title: Call your council member
    intent: advocate
    topic: transit
    impact: 4
    urgency: 5
  - id: tree-planting
    title: Join the tree planting crew
    intent: volunteer
    topic: climate change
`

func TestSeed(t *testing.T) {
	database := testutil.NewTestDB(t)
	app := &App{Import: service.NewImportService(testutil.NewTestUoW(database))}
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cliSeedYAML), 0o600))

	out, err := executeCmd(t, app, "seed", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 new and 0 updated")

	out, err = executeCmd(t, app, "seed", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 0 new and 2 updated")
}

func TestSeed_RequiresImporter(t *testing.T) {
	_, err := executeCmd(t, &App{}, "seed", "catalog.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite backend")
}

func TestBrowse_RequiresTerminal(t *testing.T) {
	app, _ := testApp(t)
	_, err := executeCmd(t, app, "browse", "-i", "volunteer", "-t", "climate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interactive terminal")
}

func TestRoot_AcceptsConfigFlag(t *testing.T) {
	app, _ := testApp(t)
	_, err := executeCmd(t, app, "--config", "civic.yaml", "prefs", "show")
	require.NoError(t, err)
}
