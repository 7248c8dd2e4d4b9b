package internal

import (
	"fmt"
	"log/slog"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/wikimark/internal/callout"
	"github.com/starford/wikimark/internal/markdown"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Vault  VaultConfig       `yaml:"vault"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	Auth   AuthConfig        `yaml:"auth"`
	Render RenderConfig      `yaml:"render"`
	Build  BuildConfig       `yaml:"build"`
	Events EventsConfig      `yaml:"events"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Render.Validate(); err != nil {
		return err
	}
	if err := c.Build.Validate(); err != nil {
		return err
	}
	return c.Events.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// VaultConfig holds the path to the Markdown vault directory.
type VaultConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

var singlePrintable = regexp.MustCompile(`^[\x21-\x7e]$`)

// RenderConfig controls how notes are turned into HTML.
type RenderConfig struct {
	// ContentRootURLPrefix is prepended to the URL of every vault file.
	ContentRootURLPrefix string `yaml:"content_root_url_prefix"`
	// BaseURL prefixes slug URLs of links that resolve to no file.
	BaseURL string `yaml:"base_url"`
	// Manifest is an optional YAML file of {file, permalink, content}
	// entries. Relative paths are read from the working directory.
	Manifest string          `yaml:"manifest"`
	Callout  callout.Options `yaml:"callout"`
	// AliasDivider separates target and alias in [[target|alias]].
	AliasDivider string `yaml:"alias_divider"`
	Linkify      bool   `yaml:"linkify"`
	// Unsafe keeps raw HTML and javascript: style URLs in rendered pages.
	Unsafe bool `yaml:"unsafe"`
}

// Validate validates the render configuration.
func (c *RenderConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ContentRootURLPrefix, validation.Length(0, 256)),
		validation.Field(&c.BaseURL, validation.Length(0, 2048)),
		validation.Field(&c.AliasDivider, validation.Required, validation.Match(singlePrintable),
			validation.NotIn("[", "]", "!", "#", "^")),
	)
}

// ParserOptions returns the Markdown parser settings.
func (c *RenderConfig) ParserOptions() []markdown.Option {
	return []markdown.Option{
		markdown.WithAliasDivider(c.AliasDivider[0]),
		markdown.WithLinkify(c.Linkify),
	}
}

// BuildConfig holds static site build settings.
type BuildConfig struct {
	OutDir      string `yaml:"out_dir"`
	Concurrency int    `yaml:"concurrency"`
}

// Validate validates the build configuration.
func (c *BuildConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.OutDir, validation.Required),
		validation.Field(&c.Concurrency, validation.Required, validation.Min(1), validation.Max(256)),
	)
}

// EventsConfig tunes the live update stream.
type EventsConfig struct {
	LinksThrottle time.Duration `yaml:"links_throttle"`
	Heartbeat     time.Duration `yaml:"heartbeat"`
}

// Validate validates the events configuration.
func (c *EventsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.LinksThrottle, validation.Min(time.Duration(0))),
		validation.Field(&c.Heartbeat, validation.Min(time.Duration(0))),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Vault: VaultConfig{
			Path: "./vault",
		},
		SQLite: SQLiteConfig{
			Path: "./wikimark.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Render: RenderConfig{
			AliasDivider: "|",
			Linkify:      true,
			Callout: callout.Options{
				ComponentName: callout.DefaultComponentName,
				TypePropName:  callout.DefaultTypePropName,
				DefaultType:   callout.DefaultType,
			},
		},
		Build: BuildConfig{
			OutDir:      "./public",
			Concurrency: 4,
		},
		Events: EventsConfig{
			LinksThrottle: 2 * time.Second,
			Heartbeat:     15 * time.Second,
		},
	}
}
