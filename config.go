package langprompt

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/langprompt/langprompt-go/apierr"
)

// Configuration defaults. Caching is off by default to favor freshness.
const (
	DefaultBaseURL       = "https://api.langprompt.dev/api/v1"
	DefaultTimeout       = 30 * time.Second
	DefaultMaxRetries    = 3
	DefaultRetryDelay    = time.Second
	DefaultMaxRetryDelay = 30 * time.Second
	DefaultCacheTTL      = time.Hour
)

// Config holds the resolved client configuration. Zero fields are filled
// with defaults by Load; explicit client options override anything loaded.
type Config struct {
	ProjectName   string
	ProjectID     string
	APIKey        string
	BaseURL       string
	Timeout       time.Duration
	MaxRetries    int
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
	EnableCache   bool
	CacheTTL      time.Duration
	// Env selects the table read from config files ("default" if empty).
	Env string
}

// fileSection is one environment table in a TOML config file.
// Durations are fractional seconds, matching the file format used by the
// other langprompt SDKs.
type fileSection struct {
	ProjectName   string   `toml:"project_name"`
	ProjectID     string   `toml:"project_id"`
	APIKey        string   `toml:"api_key"`
	BaseURL       string   `toml:"base_url"`
	Timeout       *float64 `toml:"timeout"`
	MaxRetries    *int     `toml:"max_retries"`
	RetryDelay    *float64 `toml:"retry_delay"`
	MaxRetryDelay *float64 `toml:"max_retry_delay"`
	EnableCache   *bool    `toml:"enable_cache"`
	CacheTTL      *float64 `toml:"cache_ttl"`
}

// Load resolves configuration for the given environment with precedence
// environment variables > project file (./.langprompt) > user file
// (~/.langprompt/config) > defaults. A .env file in the working directory is
// loaded first when present so LANGPROMPT_* variables may live there.
// The result is not validated; Validate runs at client construction so that
// explicit options can still fill gaps.
func Load(env string) Config {
	if env == "" {
		env = "default"
	}
	cfg := Config{
		BaseURL:       DefaultBaseURL,
		Timeout:       DefaultTimeout,
		MaxRetries:    DefaultMaxRetries,
		RetryDelay:    DefaultRetryDelay,
		MaxRetryDelay: DefaultMaxRetryDelay,
		CacheTTL:      DefaultCacheTTL,
		Env:           env,
	}
	if home, err := os.UserHomeDir(); err == nil {
		cfg.applyFile(filepath.Join(home, ".langprompt", "config"), env)
	}
	cfg.applyFile(".langprompt", env)

	_ = godotenv.Load() // best effort; absence is the common case
	if v := os.Getenv("LANGPROMPT_PROJECT_NAME"); v != "" {
		cfg.ProjectName = v
	}
	if v := os.Getenv("LANGPROMPT_PROJECT_ID"); v != "" {
		cfg.ProjectID = v
	}
	if v := os.Getenv("LANGPROMPT_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("LANGPROMPT_API_URL"); v != "" {
		cfg.BaseURL = v
	}
	return cfg
}

// applyFile merges one TOML config file's environment table into cfg.
// Missing files are skipped; unreadable ones too, keeping Load infallible.
func (c *Config) applyFile(path, env string) {
	sections := map[string]fileSection{}
	if _, err := toml.DecodeFile(path, &sections); err != nil {
		return
	}
	s, ok := sections[env]
	if !ok {
		return
	}
	if s.ProjectName != "" {
		c.ProjectName = s.ProjectName
	}
	if s.ProjectID != "" {
		c.ProjectID = s.ProjectID
	}
	if s.APIKey != "" {
		c.APIKey = s.APIKey
	}
	if s.BaseURL != "" {
		c.BaseURL = s.BaseURL
	}
	if s.Timeout != nil {
		c.Timeout = secondsToDuration(*s.Timeout)
	}
	if s.MaxRetries != nil {
		c.MaxRetries = *s.MaxRetries
	}
	if s.RetryDelay != nil {
		c.RetryDelay = secondsToDuration(*s.RetryDelay)
	}
	if s.MaxRetryDelay != nil {
		c.MaxRetryDelay = secondsToDuration(*s.MaxRetryDelay)
	}
	if s.EnableCache != nil {
		c.EnableCache = *s.EnableCache
	}
	if s.CacheTTL != nil {
		c.CacheTTL = secondsToDuration(*s.CacheTTL)
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Validate checks the configuration. Violations are apierr validation errors
// with a stable code in Details.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return apierr.Validation("API base URL is required", map[string]any{"code": "MISSING_BASE_URL"})
	}
	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return apierr.Validation("API base URL is malformed", map[string]any{"code": "INVALID_BASE_URL", "base_url": c.BaseURL})
	}
	if c.Timeout <= 0 {
		return apierr.Validation("timeout must be positive", map[string]any{"code": "INVALID_TIMEOUT"})
	}
	if c.MaxRetries < 0 {
		return apierr.Validation("max retries must be non-negative", map[string]any{"code": "INVALID_MAX_RETRIES"})
	}
	if c.RetryDelay <= 0 {
		return apierr.Validation("retry delay must be positive", map[string]any{"code": "INVALID_RETRY_DELAY"})
	}
	if c.MaxRetryDelay < c.RetryDelay {
		return apierr.Validation("max retry delay must be >= retry delay", map[string]any{"code": "INVALID_MAX_RETRY_DELAY"})
	}
	if c.CacheTTL <= 0 {
		return apierr.Validation("cache TTL must be positive", map[string]any{"code": "INVALID_CACHE_TTL"})
	}
	return nil
}

// RedactedKey returns a short non-identifying prefix of the API key for
// diagnostics. The full credential is never emitted anywhere.
func (c *Config) RedactedKey() string {
	if c.APIKey == "" {
		return "<none>"
	}
	if len(c.APIKey) <= 10 {
		return "***"
	}
	return c.APIKey[:10] + "..."
}

// String implements fmt.Stringer with the credential redacted.
func (c Config) String() string {
	return fmt.Sprintf("Config(project_id=%s, project_name=%s, api_key=%s, base_url=%s, timeout=%s, enable_cache=%t)",
		c.ProjectID, c.ProjectName, c.RedactedKey(), c.BaseURL, c.Timeout, c.EnableCache)
}
