// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/botfleet/lib/sealed"
	"github.com/bureau-foundation/botfleet/lib/session"
)

// EnvironmentVariable names the config file when --config is absent.
const EnvironmentVariable = "BOTFLEET_CONFIG"

// Grid drivers.
const (
	DriverSimulated = "simulated"
	DriverWebsocket = "websocket"
)

// Config is the complete controller configuration.
type Config struct {
	// Bots describes the fleet created at startup.
	Bots BotsConfig `yaml:"bots" json:"bots"`

	// Connect controls connect sequences.
	Connect ConnectConfig `yaml:"connect" json:"connect"`

	// Grid selects and configures the grid the bots log in to.
	Grid GridConfig `yaml:"grid" json:"grid"`

	// Control configures the operator control socket.
	Control ControlConfig `yaml:"control" json:"control"`

	// Metrics configures the prometheus endpoint.
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`

	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// BotsConfig describes the bots created at startup.
type BotsConfig struct {
	// Count is the number of bots to create.
	Count int `yaml:"count" json:"count"`

	// FirstName is shared by every bot.
	FirstName string `yaml:"first_name" json:"first_name"`

	// LastName is the stem of every bot's last name; bot n is
	// "<last_name>_<n>".
	LastName string `yaml:"last_name" json:"last_name"`

	Password string `yaml:"password" json:"password"`

	// SealedPassword is the password sealed with "botfleet seal".
	// It replaces Password and needs IdentityFile to open.
	SealedPassword string `yaml:"sealed_password" json:"sealed_password"`

	// IdentityFile is the age identity that opens SealedPassword.
	IdentityFile string `yaml:"identity_file" json:"identity_file"`

	LoginURI string `yaml:"login_uri" json:"login_uri"`

	// From is the number of the first bot.
	From int `yaml:"from" json:"from"`

	// Start is "last", "home", or "region[/x[/y[/z]]]".
	// Default: last
	Start string `yaml:"start" json:"start"`

	// Wear is "no", "yes", or "save".
	// Default: no
	Wear string `yaml:"wear" json:"wear"`

	// Behaviors is a comma-separated list of behavior tokens.
	// Default: p
	Behaviors string `yaml:"behaviors" json:"behaviors"`

	// ActionInterval is the pause between behavior rounds of a
	// connected bot. "0s" disables behaviors.
	// Default: 10s
	ActionInterval string `yaml:"action_interval" json:"action_interval"`

	// Settings override session settings such as SEND_AGENT_UPDATES.
	Settings map[string]bool `yaml:"settings" json:"settings"`
}

// ConnectConfig controls connect sequences.
type ConnectConfig struct {
	// LoginDelay is the stagger between logins.
	// Default: 5s
	LoginDelay string `yaml:"login_delay" json:"login_delay"`

	// ConnectOnStart connects every bot once the controller is up.
	ConnectOnStart bool `yaml:"connect_on_start" json:"connect_on_start"`
}

// GridConfig selects the grid driver.
type GridConfig struct {
	// Driver is "simulated" or "websocket".
	// Default: simulated
	Driver string `yaml:"driver" json:"driver"`

	// URL is the websocket gateway endpoint. Required for the
	// websocket driver.
	URL string `yaml:"url" json:"url"`

	// MessageRate limits envelopes per second per bot session.
	// Default: 20
	MessageRate float64 `yaml:"message_rate" json:"message_rate"`

	// MessageBurst is the burst allowance above MessageRate.
	// Default: 5
	MessageBurst int `yaml:"message_burst" json:"message_burst"`

	// Simulated configures the in-process grid.
	Simulated SimulatedGridConfig `yaml:"simulated" json:"simulated"`
}

// SimulatedGridConfig configures the in-process grid.
type SimulatedGridConfig struct {
	Regions []RegionConfig `yaml:"regions" json:"regions"`

	// LoginLatency is how long each simulated login takes.
	// Default: 0s
	LoginLatency string `yaml:"login_latency" json:"login_latency"`

	// FailLogins lists "First Last" names whose logins are rejected.
	FailLogins []string `yaml:"fail_logins" json:"fail_logins"`
}

// RegionConfig places one simulated region on the grid.
type RegionConfig struct {
	Name string `yaml:"name" json:"name"`
	X    uint32 `yaml:"x" json:"x"`
	Y    uint32 `yaml:"y" json:"y"`
}

// ControlConfig configures the operator control socket.
type ControlConfig struct {
	// Socket is the Unix socket path.
	// Default: ${XDG_RUNTIME_DIR:-/tmp}/botfleet.sock
	Socket string `yaml:"socket" json:"socket"`
}

// MetricsConfig configures the prometheus endpoint.
type MetricsConfig struct {
	// Listen is the TCP address to serve /metrics on. Empty disables
	// the endpoint.
	Listen string `yaml:"listen" json:"listen"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	// Level is debug, info, warn, or error.
	// Default: info
	Level string `yaml:"level" json:"level"`

	// Format is auto, text, or json. Auto selects text on a terminal
	// and JSON otherwise.
	// Default: auto
	Format string `yaml:"format" json:"format"`
}

// DefaultSocketPath is the control socket path before expansion.
const DefaultSocketPath = "${XDG_RUNTIME_DIR:-/tmp}/botfleet.sock"

// Default returns the default configuration. Loaded files are merged
// over it.
func Default() *Config {
	return &Config{
		Bots: BotsConfig{
			Count:          1,
			FirstName:      "Test",
			LastName:       "Bot",
			Start:          "last",
			Wear:           string(session.WearNo),
			Behaviors:      "p",
			ActionInterval: "10s",
		},
		Connect: ConnectConfig{
			LoginDelay: "5s",
		},
		Grid: GridConfig{
			Driver:       DriverSimulated,
			MessageRate:  20,
			MessageBurst: 5,
			Simulated: SimulatedGridConfig{
				LoginLatency: "0s",
			},
		},
		Control: ControlConfig{
			Socket: expandVars(DefaultSocketPath, nil),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load loads configuration from the file named by BOTFLEET_CONFIG.
// It fails if the variable is unset.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your botfleet config file, or use --config flag", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path, merged over Default.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), c); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	return nil
}

// expandVariables expands ${VAR} and ${VAR:-default} in path fields.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Control.Socket = expandVars(c.Control.Socket, vars)
	c.Grid.URL = expandVars(c.Grid.URL, vars)
	c.Bots.LoginURI = expandVars(c.Bots.LoginURI, vars)
	c.Bots.IdentityFile = expandVars(c.Bots.IdentityFile, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns, looking in
// vars first and then the environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error

	if c.Bots.Count < 0 {
		errs = append(errs, fmt.Errorf("bots.count must not be negative, got %d", c.Bots.Count))
	}
	if c.Bots.FirstName == "" {
		errs = append(errs, errors.New("bots.first_name is required"))
	}
	if c.Bots.LastName == "" {
		errs = append(errs, errors.New("bots.last_name is required"))
	}
	if c.Bots.From < 0 {
		errs = append(errs, fmt.Errorf("bots.from must not be negative, got %d", c.Bots.From))
	}
	if c.Bots.SealedPassword != "" {
		if c.Bots.Password != "" {
			errs = append(errs, errors.New("bots.password and bots.sealed_password are mutually exclusive"))
		}
		if c.Bots.IdentityFile == "" {
			errs = append(errs, errors.New("bots.identity_file is required with bots.sealed_password"))
		}
	}
	if _, err := session.ParseWearMode(c.Bots.Wear); err != nil {
		errs = append(errs, fmt.Errorf("bots.wear: %w", err))
	}
	for key := range c.Bots.Settings {
		if err := session.ValidateSetting(key); err != nil {
			errs = append(errs, fmt.Errorf("bots.settings: %w", err))
		}
	}

	durations := []struct{ field, value string }{
		{"bots.action_interval", c.Bots.ActionInterval},
		{"connect.login_delay", c.Connect.LoginDelay},
		{"grid.simulated.login_latency", c.Grid.Simulated.LoginLatency},
	}
	for _, duration := range durations {
		if _, err := parseDuration(duration.field, duration.value); err != nil {
			errs = append(errs, err)
		}
	}

	drivers := []string{DriverSimulated, DriverWebsocket}
	if !slices.Contains(drivers, c.Grid.Driver) {
		errs = append(errs, fmt.Errorf("grid.driver must be one of: %v", drivers))
	}
	if c.Grid.Driver == DriverWebsocket && c.Grid.URL == "" {
		errs = append(errs, errors.New("grid.url is required for the websocket driver"))
	}
	if c.Grid.MessageRate < 0 {
		errs = append(errs, errors.New("grid.message_rate must not be negative"))
	}
	if c.Grid.MessageBurst < 0 {
		errs = append(errs, errors.New("grid.message_burst must not be negative"))
	}
	seen := make(map[string]bool)
	for _, simulated := range c.Grid.Simulated.Regions {
		if simulated.Name == "" {
			errs = append(errs, errors.New("grid.simulated.regions: every region needs a name"))
			continue
		}
		if seen[simulated.Name] {
			errs = append(errs, fmt.Errorf("grid.simulated.regions: duplicate region %q", simulated.Name))
		}
		seen[simulated.Name] = true
	}

	if c.Control.Socket == "" {
		errs = append(errs, errors.New("control.socket is required"))
	}

	levels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(levels, c.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level must be one of: %v", levels))
	}
	formats := []string{"auto", "text", "json"}
	if !slices.Contains(formats, c.Logging.Format) {
		errs = append(errs, fmt.Errorf("logging.format must be one of: %v", formats))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// UnsealPassword opens bots.sealed_password with bots.identity_file
// and stores the result in bots.password. It does nothing when no
// sealed password is configured.
func (c *Config) UnsealPassword() error {
	if c.Bots.SealedPassword == "" {
		return nil
	}
	key, err := sealed.LoadIdentity(c.Bots.IdentityFile)
	if err != nil {
		return fmt.Errorf("bots.identity_file: %w", err)
	}
	defer key.Close()

	password, err := sealed.Open(c.Bots.SealedPassword, key)
	if err != nil {
		return fmt.Errorf("bots.sealed_password: %w", err)
	}
	defer password.Close()

	c.Bots.Password = password.String()
	c.Bots.SealedPassword = ""
	return nil
}

func parseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if duration < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %s", field, value)
	}
	return duration, nil
}

// ActionInterval returns bots.action_interval. Call Validate first;
// an unparseable value reads as zero.
func (c *Config) ActionInterval() time.Duration {
	duration, _ := parseDuration("", c.Bots.ActionInterval)
	return duration
}

// LoginDelay returns connect.login_delay.
func (c *Config) LoginDelay() time.Duration {
	duration, _ := parseDuration("", c.Connect.LoginDelay)
	return duration
}

// LoginLatency returns grid.simulated.login_latency.
func (c *Config) LoginLatency() time.Duration {
	duration, _ := parseDuration("", c.Grid.Simulated.LoginLatency)
	return duration
}
