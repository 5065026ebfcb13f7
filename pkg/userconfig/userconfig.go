// Package userconfig provides user-level configuration for the dokkaebi CLI.
// This configuration is stored in ~/.config/dokkaebi/config.yaml and holds
// the tracking property, the persisted client ID and the app identity.
package userconfig

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/google/uuid"
	"github.com/natefinch/atomic"

	"github.com/elex-project/dokkaebi/pkg/paths"
)

// CurrentVersion is the current version of the user config format
const CurrentVersion = "v1"

// ErrUnknownKey is returned by Get and Set for keys that don't exist.
var ErrUnknownKey = errors.New("unknown config key")

// App identifies the application reported by "send app-start" when no
// arguments are given.
type App struct {
	Name        string `yaml:"name,omitempty"`
	Version     string `yaml:"version,omitempty"`
	ID          string `yaml:"id,omitempty"`
	InstallerID string `yaml:"installer_id,omitempty"`
}

// Config represents the user-level dokkaebi configuration
type Config struct {
	mu sync.Mutex

	// Version is the config format version
	Version string `yaml:"version,omitempty"`
	// TrackingID is the destination property, UA-XXXX-Y
	TrackingID string `yaml:"tracking_id,omitempty"`
	// ClientID identifies this installation. Generated on first use.
	ClientID string `yaml:"client_id,omitempty"`
	// Endpoint overrides the collection endpoint
	Endpoint string `yaml:"endpoint,omitempty"`
	App      App    `yaml:"app,omitempty"`
}

// Path returns the path to the config file
func Path() string {
	return filepath.Join(paths.GetConfigDir(), "config.yaml")
}

// Load loads the user configuration from the config file.
// A missing file yields an empty configuration.
func Load() (*Config, error) {
	return loadFrom(Path())
}

func loadFrom(configPath string) (*Config, error) {
	config := &Config{}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Save saves the configuration to the config file
func (c *Config) Save() error {
	return c.saveTo(Path())
}

func (c *Config) saveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	c.mu.Lock()
	c.Version = CurrentVersion
	data, err := yaml.Marshal(c)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return atomic.WriteFile(path, bytes.NewReader(data))
}

// EnsureClientID returns the persisted client ID, generating one when none
// is set or the stored one is unusable. created reports whether the caller
// should save the config.
func (c *Config) EnsureClientID() (id uuid.UUID, created bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id, err := uuid.Parse(c.ClientID); err == nil && id != uuid.Nil {
		return id, false
	}

	id = uuid.New()
	c.ClientID = id.String()
	return id, true
}

// field maps a dotted key to the string it addresses.
func (c *Config) field(key string) (*string, bool) {
	switch key {
	case "tracking_id":
		return &c.TrackingID, true
	case "client_id":
		return &c.ClientID, true
	case "endpoint":
		return &c.Endpoint, true
	case "app.name":
		return &c.App.Name, true
	case "app.version":
		return &c.App.Version, true
	case "app.id":
		return &c.App.ID, true
	case "app.installer_id":
		return &c.App.InstallerID, true
	}
	return nil, false
}

// Keys lists the keys accepted by Get and Set.
func Keys() []string {
	return slices.Clone(keys)
}

var keys = []string{
	"tracking_id",
	"client_id",
	"endpoint",
	"app.name",
	"app.version",
	"app.id",
	"app.installer_id",
}

// Get returns the value stored under key.
func (c *Config) Get(key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, ok := c.field(key)
	if !ok {
		return "", fmt.Errorf("%w %q (valid keys: %s)", ErrUnknownKey, key, strings.Join(keys, ", "))
	}
	return *f, nil
}

// Set stores value under key. An empty value clears the key.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)

	if key == "client_id" && value != "" {
		id, err := uuid.Parse(value)
		if err != nil {
			return fmt.Errorf("invalid client_id %q: %w", value, err)
		}
		value = id.String()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	f, ok := c.field(key)
	if !ok {
		return fmt.Errorf("%w %q (valid keys: %s)", ErrUnknownKey, key, strings.Join(keys, ", "))
	}
	*f = value
	return nil
}
