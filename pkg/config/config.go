package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "PINSCRAPER_"

// Config holds all configuration options for the board downloader
type Config struct {
	Pinterest     PinterestConfig    `yaml:"pinterest" json:"pinterest"`
	Browser       BrowserConfig      `yaml:"browser" json:"browser"`
	Download      DownloadConfig     `yaml:"download" json:"download"`
	RateLimit     RateLimitConfig    `yaml:"rate_limit" json:"rate_limit"`
	Output        OutputConfig       `yaml:"output" json:"output"`
	Notifications NotificationConfig `yaml:"notifications" json:"notifications"`
	Logging       LoggingConfig      `yaml:"logging" json:"logging"`
}

// PinterestConfig holds the site-specific values every run depends on.
// None of them may be blank.
type PinterestConfig struct {
	BaseAssetOrigin     string `yaml:"base_asset_origin" json:"base_asset_origin" validate:"required,url,endswith=/"`
	SiteOrigin          string `yaml:"site_origin" json:"site_origin" validate:"required,url"`
	BoardStopSelector   string `yaml:"board_stop_selector" json:"board_stop_selector" validate:"required"`
	ProfileStopSelector string `yaml:"profile_stop_selector" json:"profile_stop_selector" validate:"required"`
}

// BrowserConfig controls the headless browser used for scroll capture
type BrowserConfig struct {
	Headless         bool          `yaml:"headless" json:"headless"`
	UserAgent        string        `yaml:"user_agent" json:"user_agent"`
	Timeout          time.Duration `yaml:"timeout" json:"timeout" validate:"gt=0"`
	ScrollStep       int           `yaml:"scroll_step" json:"scroll_step" validate:"min=1"`
	SettleDelay      time.Duration `yaml:"settle_delay" json:"settle_delay" validate:"gte=0"`
	MaxScrolls       int           `yaml:"max_scrolls" json:"max_scrolls" validate:"min=1"`
	FinalBurst       int           `yaml:"final_burst" json:"final_burst" validate:"min=0"`
	StrictStagnation bool          `yaml:"strict_stagnation" json:"strict_stagnation"`
}

// DownloadConfig holds download and retry configuration
type DownloadConfig struct {
	Timeout          time.Duration `yaml:"timeout" json:"timeout" validate:"gt=0"`
	RetryAttempts    int           `yaml:"retry_attempts" json:"retry_attempts" validate:"min=0,max=10"`
	RetryBaseDelay   time.Duration `yaml:"retry_base_delay" json:"retry_base_delay" validate:"gte=0"`
	PermanentMarkers []string      `yaml:"permanent_markers" json:"permanent_markers" validate:"dive,required"`
	SkipExisting     bool          `yaml:"skip_existing" json:"skip_existing"`
}

// RateLimitConfig holds rate limiting configuration. Zero disables limiting.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute" validate:"min=0"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	BaseDirectory string `yaml:"base_directory" json:"base_directory" validate:"required"`
}

// NotificationConfig holds notification preferences
type NotificationConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Pinterest: PinterestConfig{
			BaseAssetOrigin:     "https://i.pinimg.com/",
			SiteOrigin:          "https://www.pinterest.com",
			BoardStopSelector:   ".qQp > div:nth-child(1) > div:nth-child(1) > h2:nth-child(1)",
			ProfileStopSelector: "div[data-test-id=\"footer\"]",
		},
		Browser: BrowserConfig{
			Headless:    true,
			UserAgent:   "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
			Timeout:     5 * time.Minute,
			ScrollStep:  500,
			SettleDelay: time.Second,
			MaxScrolls:  50,
			FinalBurst:  3,
		},
		Download: DownloadConfig{
			Timeout:          30 * time.Second,
			RetryAttempts:    3,
			RetryBaseDelay:   3 * time.Second,
			PermanentMarkers: []string{"Forbidden", "Not Found"},
			SkipExisting:     true,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 120,
		},
		Output: OutputConfig{
			BaseDirectory: "Downloads",
		},
		Notifications: NotificationConfig{
			Enabled: false,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv(envPrefix + "BASE_ASSET_ORIGIN"); v != "" {
		c.Pinterest.BaseAssetOrigin = v
	}
	if v := os.Getenv(envPrefix + "SITE_ORIGIN"); v != "" {
		c.Pinterest.SiteOrigin = v
	}
	if v := os.Getenv(envPrefix + "BOARD_STOP_SELECTOR"); v != "" {
		c.Pinterest.BoardStopSelector = v
	}
	if v := os.Getenv(envPrefix + "PROFILE_STOP_SELECTOR"); v != "" {
		c.Pinterest.ProfileStopSelector = v
	}
	if v := os.Getenv(envPrefix + "USER_AGENT"); v != "" {
		c.Browser.UserAgent = v
	}
	if v := os.Getenv(envPrefix + "HEADLESS"); v != "" {
		headless, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sHEADLESS: %w", envPrefix, err)
		}
		c.Browser.Headless = headless
	}
	if v := os.Getenv(envPrefix + "REQUESTS_PER_MINUTE"); v != "" {
		rpm, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sREQUESTS_PER_MINUTE: %w", envPrefix, err)
		}
		c.RateLimit.RequestsPerMinute = rpm
	}
	if v := os.Getenv(envPrefix + "OUTPUT_DIR"); v != "" {
		c.Output.BaseDirectory = v
	}
	if v := os.Getenv(envPrefix + "NOTIFICATIONS_ENABLED"); v != "" {
		c.Notifications.Enabled = strings.ToLower(v) == "true"
	}
	if v := os.Getenv(envPrefix + "LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// FindConfigFile returns the first config file found in the standard
// locations, or "" when there is none
func FindConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		"pinscraper.yaml",
		"pinscraper.yml",
		".pinscraper.yaml",
		".pinscraper.yml",
		filepath.Join(home, ".config", "pinscraper", "config.yaml"),
		filepath.Join(home, ".config", "pinscraper", "config.yml"),
		filepath.Join(home, ".pinscraper.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, describe(fe))
	}
	return errors.Join(errs...)
}

func describe(fe validator.FieldError) error {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", field)
	case "url":
		return fmt.Errorf("%s must be an absolute URL", field)
	case "endswith":
		return fmt.Errorf("%s must end with %q", field, fe.Param())
	case "oneof":
		return fmt.Errorf("%s must be one of [%s]", field, fe.Param())
	default:
		return fmt.Errorf("%s failed %s=%s (got %v)", field, fe.Tag(), fe.Param(), fe.Value())
	}
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if dir, ok := flags["output"].(string); ok && dir != "" {
		c.Output.BaseDirectory = dir
	}
	if level, ok := flags["log-level"].(string); ok && level != "" {
		c.Logging.Level = level
	}
	if headless, ok := flags["headless"].(bool); ok {
		c.Browser.Headless = headless
	}
	if rpm, ok := flags["rate-limit"].(int); ok && rpm >= 0 {
		c.RateLimit.RequestsPerMinute = rpm
	}
	if attempts, ok := flags["max-retries"].(int); ok && attempts >= 0 {
		c.Download.RetryAttempts = attempts
	}
	if strict, ok := flags["strict-stagnation"].(bool); ok {
		c.Browser.StrictStagnation = strict
	}
	if skip, ok := flags["skip-existing"].(bool); ok {
		c.Download.SkipExisting = skip
	}
	if notify, ok := flags["notifications"].(bool); ok {
		c.Notifications.Enabled = notify
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: flags > environment > .env file > config file > defaults.
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".pinscraper.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
