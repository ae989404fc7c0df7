package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	cfg := FromEnv()
	assert.Equal(t, ModeOffline, cfg.Mode)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, 20, cfg.Generation.MaxQuestionsPerTopic)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,,")
	t.Setenv("LLM_TIMEOUT", "5s")
	t.Setenv("GENERATION_CONCURRENCY", "7")
	t.Setenv("ENABLE_SIGNUP", "no")

	cfg := FromEnv()
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 7, cfg.Generation.Concurrency)
	assert.False(t, cfg.EnableSignUp)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "qbank.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http_addr: ":9090"
db_driver: postgres
llm:
  provider: openai
  openai_model: gpt-4o
generation:
  concurrency: 2
  max_questions_per_topic: 10
`), 0o600))

	t.Setenv("QBANK_CONFIG", path)
	t.Setenv("DB_DRIVER", "sqlite")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "sqlite", cfg.DBDriver, "env wins over file")
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o", cfg.LLM.OpenAIModel)
	assert.Equal(t, 2, cfg.Generation.Concurrency)
	assert.Equal(t, 10, cfg.Generation.MaxQuestionsPerTopic)
	// untouched keys keep their defaults
	assert.Equal(t, 8*time.Hour, cfg.TokenTTL)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("QBANK_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())

	cfg.Mode = ModeOnline
	assert.Error(t, cfg.Validate(), "default secret is refused online")
	cfg.AuthHMACSecret = "real-secret"
	assert.NoError(t, cfg.Validate())

	cfg.Mode = "sideways"
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.Generation.Concurrency = 0
	assert.Error(t, cfg.Validate())
}
