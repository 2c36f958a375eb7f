package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// DefaultExtension is the file extension of Haven FS descriptions.
const DefaultExtension = ".havenfs"

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app" toml:"app"`
	Workspace WorkspaceConfig   `yaml:"workspace" toml:"workspace"`
	SQLite    SQLiteConfig      `yaml:"sqlite" toml:"sqlite"`
	Auth      AuthConfig        `yaml:"auth" toml:"auth"`
	Events    EventsConfig      `yaml:"events" toml:"events"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Workspace.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	return c.Events.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level" toml:"log_level"`
	HTTP     HTTPConfig `yaml:"http" toml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port" toml:"port"`
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

// WorkspaceConfig points at the directory holding the description files.
type WorkspaceConfig struct {
	Path      string `yaml:"path" toml:"path"`
	Extension string `yaml:"extension" toml:"extension"`
}

// Validate validates the workspace configuration.
func (c *WorkspaceConfig) Validate() error {
	if c.Extension == "" {
		c.Extension = DefaultExtension
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Extension, validation.Required, validation.Length(2, 16)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path" toml:"path"`
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
	Mode  string `yaml:"mode" toml:"mode"`
	Token string `yaml:"token" toml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
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

// EventsConfig tunes the server-sent event stream.
type EventsConfig struct {
	// Throttle is the minimum interval between index.updated events.
	Throttle time.Duration `yaml:"throttle" toml:"throttle"`
}

// Validate validates the events configuration.
func (c *EventsConfig) Validate() error {
	if c.Throttle == 0 {
		c.Throttle = 2 * time.Second
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Throttle, validation.Min(time.Millisecond)),
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
		Workspace: WorkspaceConfig{
			Path:      "./workspace",
			Extension: DefaultExtension,
		},
		SQLite: SQLiteConfig{
			Path: "./haven.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Events: EventsConfig{
			Throttle: 2 * time.Second,
		},
	}
}
