package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode      Mode   `yaml:"mode"`
	HTTPAddr  string `yaml:"http_addr"`
	PublicURL string `yaml:"public_url"`

	DBDriver string `yaml:"db_driver"`
	DBDSN    string `yaml:"db_dsn"`

	BlobBasePath string `yaml:"blob_base_path"` // source PDFs live under {exam}/{topic}.pdf

	AuthHMACSecret  string        `yaml:"auth_hmac_secret"`
	TokenTTL        time.Duration `yaml:"token_ttl"`
	EnableLocalAuth bool          `yaml:"enable_local_auth"`
	EnableSignUp    bool          `yaml:"enable_signup"`

	AdminUser     string `yaml:"admin_user"`
	AdminPassHash string `yaml:"admin_pass_hash"` // bcrypt

	CORSOrigins []string `yaml:"cors_origins"`

	LogMode   string `yaml:"log_mode"`
	LogLevel  string `yaml:"log_level"`
	LogRedact bool   `yaml:"log_redact"`

	LLM        LLM        `yaml:"llm"`
	Generation Generation `yaml:"generation"`
}

type LLM struct {
	Provider string        `yaml:"provider"` // gemini|openai|anthropic|mock
	Timeout  time.Duration `yaml:"timeout"`

	GeminiAPIKey string `yaml:"gemini_api_key"`
	GeminiModel  string `yaml:"gemini_model"`

	OpenAIAPIKey  string `yaml:"openai_api_key"`
	OpenAIModel   string `yaml:"openai_model"`
	OpenAIBaseURL string `yaml:"openai_base_url"`

	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	AnthropicModel  string `yaml:"anthropic_model"`

	RetryAttempts int `yaml:"retry_attempts"`
}

type Generation struct {
	Concurrency          int `yaml:"concurrency"`
	MaxQuestionsPerTopic int `yaml:"max_questions_per_topic"`
	MaxTokens            int `yaml:"max_tokens"`
}

func Defaults() Config {
	return Config{
		Mode:            ModeOffline,
		HTTPAddr:        ":8080",
		DBDriver:        "sqlite",
		BlobBasePath:    "./data",
		AuthHMACSecret:  "supersecret-dev-key",
		TokenTTL:        8 * time.Hour,
		EnableLocalAuth: true,
		EnableSignUp:    true,
		AdminUser:       "admin@localhost",
		CORSOrigins:     []string{"http://localhost:3000"},
		LogMode:         "dev",
		LogLevel:        "info",
		LogRedact:       true,
		LLM: LLM{
			Provider:       "gemini",
			Timeout:        90 * time.Second,
			GeminiModel:    "gemini-flash",
			OpenAIModel:    "gpt-4o-mini",
			AnthropicModel: "claude-haiku",
			RetryAttempts:  3,
		},
		Generation: Generation{
			Concurrency:          4,
			MaxQuestionsPerTopic: 20,
			MaxTokens:            8192,
		},
	}
}

// FromEnv builds the configuration from defaults and environment variables.
func FromEnv() Config {
	cfg := Defaults()
	applyEnv(&cfg)
	return cfg
}

// Load reads the optional YAML file named by QBANK_CONFIG, then applies the
// environment on top of it. Environment variables win over the file.
func Load() (Config, error) {
	cfg := Defaults()
	if path := os.Getenv("QBANK_CONFIG"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	return cfg, cfg.Validate()
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("config: decode %s: %w", path, err)
	}
	return nil
}

func (c Config) Validate() error {
	switch c.Mode {
	case ModeOffline, ModeOnline:
	default:
		return fmt.Errorf("config: unknown mode %q", c.Mode)
	}
	if c.Mode == ModeOnline && c.AuthHMACSecret == Defaults().AuthHMACSecret {
		return errors.New("config: AUTH_HMAC_SECRET must be set in online mode")
	}
	if c.Generation.Concurrency < 1 {
		return errors.New("config: generation concurrency must be >= 1")
	}
	if c.Generation.MaxQuestionsPerTopic < 1 {
		return errors.New("config: max questions per topic must be >= 1")
	}
	return nil
}

func applyEnv(c *Config) {
	c.Mode = Mode(envOr("MODE", string(c.Mode)))
	c.HTTPAddr = envOr("HTTP_ADDR", c.HTTPAddr)
	c.PublicURL = envOr("PUBLIC_URL", c.PublicURL)
	c.DBDriver = envOr("DB_DRIVER", c.DBDriver)
	c.DBDSN = envOr("DB_DSN", c.DBDSN)
	c.BlobBasePath = envOr("BLOB_BASE_PATH", c.BlobBasePath)
	c.AuthHMACSecret = envOr("AUTH_HMAC_SECRET", c.AuthHMACSecret)
	c.TokenTTL = envDuration("TOKEN_TTL", c.TokenTTL)
	c.EnableLocalAuth = envBool("ENABLE_LOCAL_AUTH", c.EnableLocalAuth)
	c.EnableSignUp = envBool("ENABLE_SIGNUP", c.EnableSignUp)
	c.AdminUser = envOr("ADMIN_USER", c.AdminUser)
	c.AdminPassHash = envOr("ADMIN_PASS_HASH", c.AdminPassHash)
	c.CORSOrigins = csvOr("CORS_ORIGINS", c.CORSOrigins)
	c.LogMode = envOr("LOG_MODE", c.LogMode)
	c.LogLevel = envOr("LOG_LEVEL", c.LogLevel)
	c.LogRedact = envBool("LOG_REDACTION_ENABLED", c.LogRedact)

	c.LLM.Provider = envOr("LLM_PROVIDER", c.LLM.Provider)
	c.LLM.Timeout = envDuration("LLM_TIMEOUT", c.LLM.Timeout)
	c.LLM.GeminiAPIKey = envOr("GEMINI_API_KEY", c.LLM.GeminiAPIKey)
	c.LLM.GeminiModel = envOr("GEMINI_MODEL", c.LLM.GeminiModel)
	c.LLM.OpenAIAPIKey = envOr("OPENAI_API_KEY", c.LLM.OpenAIAPIKey)
	c.LLM.OpenAIModel = envOr("OPENAI_MODEL", c.LLM.OpenAIModel)
	c.LLM.OpenAIBaseURL = envOr("OPENAI_BASE_URL", c.LLM.OpenAIBaseURL)
	c.LLM.AnthropicAPIKey = envOr("ANTHROPIC_API_KEY", c.LLM.AnthropicAPIKey)
	c.LLM.AnthropicModel = envOr("ANTHROPIC_MODEL", c.LLM.AnthropicModel)
	c.LLM.RetryAttempts = envInt("LLM_RETRY_ATTEMPTS", c.LLM.RetryAttempts)

	c.Generation.Concurrency = envInt("GENERATION_CONCURRENCY", c.Generation.Concurrency)
	c.Generation.MaxQuestionsPerTopic = envInt("MAX_QUESTIONS_PER_TOPIC", c.Generation.MaxQuestionsPerTopic)
	c.Generation.MaxTokens = envInt("GENERATION_MAX_TOKENS", c.Generation.MaxTokens)
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envInt(k string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(k)))
	if err != nil {
		return def
	}
	return v
}

func envDuration(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(os.Getenv(k)))
	if err != nil {
		return def
	}
	return d
}

func csvOr(k string, def []string) []string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
