package langprompt

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langprompt/langprompt-go/apierr"
)

// isolateConfig points both config-file locations at temp dirs and clears
// the LANGPROMPT_* environment. Not parallel-safe by construction.
func isolateConfig(t *testing.T) (home, project string) {
	t.Helper()
	home = t.TempDir()
	project = t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(project)
	for _, k := range []string{"LANGPROMPT_PROJECT_NAME", "LANGPROMPT_PROJECT_ID", "LANGPROMPT_API_KEY", "LANGPROMPT_API_URL"} {
		t.Setenv(k, "")
	}
	return home, project
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfig(t)
	cfg := Load("")
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultMaxRetries, cfg.MaxRetries)
	assert.Equal(t, DefaultRetryDelay, cfg.RetryDelay)
	assert.Equal(t, DefaultMaxRetryDelay, cfg.MaxRetryDelay)
	assert.False(t, cfg.EnableCache)
	assert.Equal(t, DefaultCacheTTL, cfg.CacheTTL)
	assert.Equal(t, "default", cfg.Env)
}

func TestLoad_UserFileThenProjectFileThenEnv(t *testing.T) {
	home, project := isolateConfig(t)

	userDir := filepath.Join(home, ".langprompt")
	require.NoError(t, os.MkdirAll(userDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(userDir, "config"), []byte(`
[default]
api_key = "user-key"
base_url = "https://user.example.com"
project_name = "user-project"
timeout = 10.0
`), 0o644))

	require.NoError(t, os.WriteFile(filepath.Join(project, ".langprompt"), []byte(`
[default]
api_key = "project-key"
enable_cache = true
cache_ttl = 120.0
`), 0o644))

	t.Setenv("LANGPROMPT_API_KEY", "env-key")

	cfg := Load("default")
	// env var beats the project file which beats the user file.
	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, "https://user.example.com", cfg.BaseURL)
	assert.Equal(t, "user-project", cfg.ProjectName)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.True(t, cfg.EnableCache)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
}

func TestLoad_EnvironmentTables(t *testing.T) {
	_, project := isolateConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(project, ".langprompt"), []byte(`
[default]
project_name = "dev-project"

[production]
project_name = "prod-project"
max_retries = 5
`), 0o644))

	dev := Load("default")
	assert.Equal(t, "dev-project", dev.ProjectName)
	assert.Equal(t, DefaultMaxRetries, dev.MaxRetries)

	prod := Load("production")
	assert.Equal(t, "prod-project", prod.ProjectName)
	assert.Equal(t, 5, prod.MaxRetries)
}

func TestLoad_MalformedFileIgnored(t *testing.T) {
	_, project := isolateConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(project, ".langprompt"), []byte("not [valid toml"), 0o644))
	cfg := Load("")
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()
	valid := testConfig(false)
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing base url", func(c *Config) { c.BaseURL = "" }},
		{"malformed base url", func(c *Config) { c.BaseURL = "not a url" }},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }},
		{"zero retry delay", func(c *Config) { c.RetryDelay = 0 }},
		{"max delay below base", func(c *Config) { c.MaxRetryDelay = c.RetryDelay / 2 }},
		{"zero cache ttl", func(c *Config) { c.CacheTTL = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := testConfig(false)
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, apierr.ErrValidation)
		})
	}
}

func TestConfig_RedactedKey(t *testing.T) {
	t.Parallel()
	cfg := Config{}
	assert.Equal(t, "<none>", cfg.RedactedKey())

	cfg.APIKey = "short"
	assert.Equal(t, "***", cfg.RedactedKey())

	cfg.APIKey = "sk-live-abcdefghijklmnop"
	assert.Equal(t, "sk-live-ab...", cfg.RedactedKey())
}

func TestConfig_StringNeverLeaksCredential(t *testing.T) {
	t.Parallel()
	cfg := testConfig(false)
	s := cfg.String()
	assert.NotContains(t, s, cfg.APIKey)
	assert.Contains(t, s, cfg.RedactedKey())
}
