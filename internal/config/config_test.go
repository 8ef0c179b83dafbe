package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate clears the config search inputs so tests do not pick up a
// developer's civic.yaml or CIVIC_* environment.
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	for _, kv := range os.Environ() {
		if k, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(k, EnvPrefix) {
			t.Setenv(k, "")
			os.Unsetenv(k)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.UserID)
	assert.Equal(t, BackendSQLite, cfg.Catalog.Backend)
	assert.Equal(t, 3, cfg.Engine.MinResults)
	assert.Equal(t, 10, cfg.Engine.MaxResults)
	assert.Equal(t, 5*time.Second, cfg.Preferences.FlushDelay)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.True(t, filepath.IsAbs(cfg.DB.Path))
	assert.Equal(t, "civic.db", filepath.Base(cfg.DB.Path))
}

func TestLoad_FileThenEnv(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "civic.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
user_id: alice
catalog:
  backend: http
  base_url: http://catalog.internal:9000
engine:
  min_results: 4
  max_results: 6
  catalog_timeout: 750ms
log:
  format: json
`), 0o600))

	t.Setenv("CIVIC_ENGINE_MAX_RESULTS", "8")
	t.Setenv("CIVIC_DB", "/tmp/civic-test.db")
	t.Setenv("CIVIC_SERVER_CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "alice", cfg.UserID)
	assert.Equal(t, BackendHTTP, cfg.Catalog.Backend)
	assert.Equal(t, 4, cfg.Engine.MinResults)
	assert.Equal(t, 8, cfg.Engine.MaxResults, "env wins over file")
	assert.Equal(t, 750*time.Millisecond, cfg.Engine.CatalogTimeout)
	assert.Equal(t, "/tmp/civic-test.db", cfg.DB.Path)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_ConfigEnvVarAndDefaultFile(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(DefaultPath, []byte("user_id: from-cwd\n"), 0o600))
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-cwd", cfg.UserID)

	other := filepath.Join(t.TempDir(), "other.yaml")
	require.NoError(t, os.WriteFile(other, []byte("user_id: from-env\n"), 0o600))
	t.Setenv(PathEnvVar, other)
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.UserID)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"min below floor", map[string]string{"CIVIC_ENGINE_MIN_RESULTS": "1"}, "MinResults"},
		{"max below min", map[string]string{"CIVIC_ENGINE_MAX_RESULTS": "2"}, "MaxResults"},
		{"unknown backend", map[string]string{"CIVIC_CATALOG_BACKEND": "grpc"}, "Backend"},
		{"bad log level", map[string]string{"CIVIC_LOG_LEVEL": "loud"}, "Level"},
		{"http without url", map[string]string{"CIVIC_CATALOG_BACKEND": "http", "CIVIC_CATALOG_BASE_URL": ""}, "base_url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "db.path", envKey("CIVIC_DB"))
	assert.Equal(t, "", envKey("CIVIC_CONFIG"))
	assert.Equal(t, "user_id", envKey("CIVIC_USER_ID"))
	assert.Equal(t, "preferences.flush_delay", envKey("CIVIC_PREFERENCES_FLUSH_DELAY"))
	assert.Equal(t, "catalog.breaker_cooldown", envKey("CIVIC_CATALOG_BREAKER_COOLDOWN"))
}

func TestConversions(t *testing.T) {
	cfg := Default()
	cfg.Engine.Variety = true
	cfg.Engine.VarietySeed = 42

	ec := cfg.EngineConfig()
	assert.Equal(t, cfg.Engine.MinResults, ec.MinResults)
	assert.True(t, ec.Variety)
	assert.Equal(t, uint64(42), ec.VarietySeed)

	hc := cfg.HTTPConfig()
	assert.Equal(t, cfg.Catalog.BaseURL, hc.BaseURL)
	assert.Equal(t, uint32(5), hc.BreakerFailures)

	fc := cfg.FlusherConfig()
	assert.Equal(t, cfg.Preferences.FlushDelay, fc.Delay)
}

func TestNewLogger(t *testing.T) {
	cfg := Default()
	cfg.Log = LogConfig{Level: "warn", Format: "json"}
	var buf bytes.Buffer
	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}
