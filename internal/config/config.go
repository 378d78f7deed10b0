// Package config loads scholarbib settings from defaults, an optional YAML
// file and SCHOLARBIB_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	scholarbib "github.com/compscidr/scholarbib"
	"github.com/compscidr/scholarbib/internal/logging"
)

const (
	// EnvPrefix prefixes every environment override, e.g. SCHOLARBIB_SCHOLAR_ID.
	EnvPrefix = "SCHOLARBIB"

	// EnvDisableAutoUpdate turns the update command into a no-op outside CI.
	EnvDisableAutoUpdate = "DISABLE_AUTO_UPDATE"
	// EnvGitHubActions is set by the GitHub Actions runner.
	EnvGitHubActions = "GITHUB_ACTIONS"
)

// Config holds all settings of the scholarbib commands.
type Config struct {
	Scholar      ScholarConfig      `mapstructure:"scholar"`
	Details      DetailsConfig      `mapstructure:"details"`
	Bibliography BibliographyConfig `mapstructure:"bibliography"`
	Logging      logging.Config     `mapstructure:"logging"`

	// AutoUpdateDisabled and InCI are read from DISABLE_AUTO_UPDATE and
	// GITHUB_ACTIONS, without prefix.
	AutoUpdateDisabled bool `mapstructure:"-"`
	InCI               bool `mapstructure:"-"`
}

// ScholarConfig controls the profile request.
type ScholarConfig struct {
	ID              string        `mapstructure:"id"`
	BaseURL         string        `mapstructure:"base_url"`
	PageSize        int           `mapstructure:"page_size"`
	Timeout         time.Duration `mapstructure:"timeout"`
	RequestDelay    time.Duration `mapstructure:"request_delay"`
	MaxRetries      int           `mapstructure:"max_retries"`
	BaseDelay       time.Duration `mapstructure:"base_delay"`
	MaxDelay        time.Duration `mapstructure:"max_delay"`
	RateLimitedWait time.Duration `mapstructure:"rate_limited_wait"`
	UnavailableWait time.Duration `mapstructure:"unavailable_wait"`
}

// DetailsConfig controls the optional per-article requests.
type DetailsConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RequestDelay time.Duration `mapstructure:"request_delay"`
}

type BibliographyConfig struct {
	Path              string `mapstructure:"path"`
	KeyPrefix         string `mapstructure:"key_prefix"`
	SelectedThreshold int    `mapstructure:"selected_threshold"`
	AbstractLimit     int    `mapstructure:"abstract_limit"`
	AbbreviationsFile string `mapstructure:"abbreviations_file"`
}

// Load reads configuration. An explicit path must exist; without one,
// scholarbib.yml is looked up in ., _scripts and _config and may be absent.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("scholarbib")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("_scripts")
		v.AddConfigPath("_config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	cfg.AutoUpdateDisabled = strings.EqualFold(strings.TrimSpace(os.Getenv(EnvDisableAutoUpdate)), "true")
	cfg.InCI = os.Getenv(EnvGitHubActions) != ""

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scholar.id", "JlIWcccAAAAJ")
	v.SetDefault("scholar.base_url", "https://scholar.google.com")
	v.SetDefault("scholar.page_size", 100)
	v.SetDefault("scholar.timeout", "45s")
	v.SetDefault("scholar.request_delay", "2s")
	v.SetDefault("scholar.max_retries", 5)
	v.SetDefault("scholar.base_delay", "5s")
	v.SetDefault("scholar.max_delay", "120s")
	v.SetDefault("scholar.rate_limited_wait", "30s")
	v.SetDefault("scholar.unavailable_wait", "20s")

	v.SetDefault("details.enabled", false)
	v.SetDefault("details.max_retries", 3)
	v.SetDefault("details.request_delay", "3s")

	v.SetDefault("bibliography.path", "_bibliography/papers.bib")
	v.SetDefault("bibliography.key_prefix", "heidarzadeh")
	v.SetDefault("bibliography.selected_threshold", 50)
	v.SetDefault("bibliography.abstract_limit", 500)
	v.SetDefault("bibliography.abbreviations_file", "")

	logDefaults := logging.DefaultConfig()
	v.SetDefault("logging.level", logDefaults.Level)
	v.SetDefault("logging.format", logDefaults.Format)
	v.SetDefault("logging.output", logDefaults.Output)
}

// Validate checks the settings the commands cannot work without.
func (c *Config) Validate() error {
	if c.Scholar.ID == "" {
		return errors.New("scholar.id is required")
	}
	if c.Bibliography.Path == "" {
		return errors.New("bibliography.path is required")
	}
	if c.Scholar.MaxRetries < 1 {
		return fmt.Errorf("scholar.max_retries must be at least 1, got %d", c.Scholar.MaxRetries)
	}
	if c.Scholar.PageSize < 1 {
		return fmt.Errorf("scholar.page_size must be at least 1, got %d", c.Scholar.PageSize)
	}
	return nil
}

// UpdateDisabled reports whether the update command should skip its run:
// DISABLE_AUTO_UPDATE=true is honoured everywhere except in GitHub Actions.
func (c *Config) UpdateDisabled() bool {
	return c.AutoUpdateDisabled && !c.InCI
}

// ProfilePolicy is the retry policy for the profile listing request.
func (c *Config) ProfilePolicy() scholarbib.RetryPolicy {
	return scholarbib.RetryPolicy{
		MaxAttempts:     c.Scholar.MaxRetries,
		BaseDelay:       c.Scholar.BaseDelay,
		MaxDelay:        c.Scholar.MaxDelay,
		RateLimitedWait: c.Scholar.RateLimitedWait,
		UnavailableWait: c.Scholar.UnavailableWait,
	}
}

// ArticlePolicy is the retry policy for detail page requests. Pacing between
// detail requests is details.request_delay, applied by the client.
func (c *Config) ArticlePolicy() scholarbib.RetryPolicy {
	p := scholarbib.DefaultArticlePolicy()
	if c.Details.MaxRetries > 0 {
		p.MaxAttempts = c.Details.MaxRetries
	}
	return p
}
