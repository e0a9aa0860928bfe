// Package config loads the controller configuration: thresholds, targets,
// display geometry, poll intervals and file locations.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Thresholds trigger alarms and status messages.
type Thresholds struct {
	MaxTempC   float64       `mapstructure:"max_temp_c" yaml:"max_temp_c"`
	MinTempC   float64       `mapstructure:"min_temp_c" yaml:"min_temp_c"`
	DoorOpen   time.Duration `mapstructure:"door_open" yaml:"door_open"`
	MaxEnergyW float64       `mapstructure:"max_energy_w" yaml:"max_energy_w"`
}

// Targets are the nominal values, also used as fallbacks when a read fails.
type Targets struct {
	TemperatureC float64 `mapstructure:"temperature_c" yaml:"temperature_c"`
	EnergyWatts  float64 `mapstructure:"energy_watts" yaml:"energy_watts"`
}

// Display describes the text display geometry and its file mirror.
type Display struct {
	Cols int    `mapstructure:"cols" yaml:"cols"`
	File string `mapstructure:"file" yaml:"file"`
}

// Intervals drive the per-subsystem checks of the monitor loop.
type Intervals struct {
	Tick           time.Duration `mapstructure:"tick" yaml:"tick"`
	SensorRead     time.Duration `mapstructure:"sensor_read" yaml:"sensor_read"`
	SimulatorWrite time.Duration `mapstructure:"simulator_write" yaml:"simulator_write"`
	ButtonPoll     time.Duration `mapstructure:"button_poll" yaml:"button_poll"`
	SelfCheck      time.Duration `mapstructure:"self_check" yaml:"self_check"`
	ConfirmHold    time.Duration `mapstructure:"confirm_hold" yaml:"confirm_hold"`
}

// Workspace holds the sensor files emulating the hardware.
type Workspace struct {
	Dir             string `mapstructure:"dir" yaml:"dir"`
	TemperatureFile string `mapstructure:"temperature_file" yaml:"temperature_file"`
	DoorFile        string `mapstructure:"door_file" yaml:"door_file"`
	EnergyFile      string `mapstructure:"energy_file" yaml:"energy_file"`
	ButtonFile      string `mapstructure:"button_file" yaml:"button_file"`
}

// Log configures the log sink.
type Log struct {
	Level    string `mapstructure:"level" yaml:"level"`
	File     string `mapstructure:"file" yaml:"file"`
	MaxBytes int64  `mapstructure:"max_bytes" yaml:"max_bytes"`
}

// Simulator configures the sensor value generator.
type Simulator struct {
	Enabled bool  `mapstructure:"enabled" yaml:"enabled"`
	Seed    int64 `mapstructure:"seed" yaml:"seed"` // 0 picks a time-based seed
}

// DB configures the SQLite history store.
type DB struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// HTTP configures the operator API.
type HTTP struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Port    string `mapstructure:"port" yaml:"port"`
}

// Auth configures operator tokens.
type Auth struct {
	SigningKey string        `mapstructure:"signing_key" yaml:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`
}

// Config is the full configuration record handed to the core at construction.
type Config struct {
	Thresholds Thresholds `mapstructure:"thresholds" yaml:"thresholds"`
	Targets    Targets    `mapstructure:"targets" yaml:"targets"`
	Display    Display    `mapstructure:"display" yaml:"display"`
	Intervals  Intervals  `mapstructure:"intervals" yaml:"intervals"`
	Workspace  Workspace  `mapstructure:"workspace" yaml:"workspace"`
	Log        Log        `mapstructure:"log" yaml:"log"`
	Simulator  Simulator  `mapstructure:"simulator" yaml:"simulator"`
	DB         DB         `mapstructure:"db" yaml:"db"`
	HTTP       HTTP       `mapstructure:"http" yaml:"http"`
	Auth       Auth       `mapstructure:"auth" yaml:"auth"`
}

const envPrefix = "FRIDGE"

// minDisplayCols is the narrowest display the status line format fits into.
const minDisplayCols = 16

// setDefaults registers the built-in values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("thresholds.max_temp_c", 8.0)
	v.SetDefault("thresholds.min_temp_c", -2.0)
	v.SetDefault("thresholds.door_open", 30*time.Second)
	v.SetDefault("thresholds.max_energy_w", 200.0)

	v.SetDefault("targets.temperature_c", 4.0)
	v.SetDefault("targets.energy_watts", 120.0)

	v.SetDefault("display.cols", 40)
	v.SetDefault("display.file", "Workspace/display.txt")

	v.SetDefault("intervals.tick", 100*time.Millisecond)
	v.SetDefault("intervals.sensor_read", time.Second)
	v.SetDefault("intervals.simulator_write", 5*time.Second)
	v.SetDefault("intervals.button_poll", 2*time.Second)
	v.SetDefault("intervals.self_check", 30*time.Second)
	v.SetDefault("intervals.confirm_hold", 2*time.Second)

	v.SetDefault("workspace.dir", "Workspace")
	v.SetDefault("workspace.temperature_file", "Workspace/temperature.txt")
	v.SetDefault("workspace.door_file", "Workspace/door.txt")
	v.SetDefault("workspace.energy_file", "Workspace/energy.txt")
	v.SetDefault("workspace.button_file", "Workspace/button.txt")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "smart_fridge.log")
	v.SetDefault("log.max_bytes", int64(1<<20))

	v.SetDefault("simulator.enabled", true)
	v.SetDefault("simulator.seed", int64(0))

	v.SetDefault("db.path", "smart_fridge.db")

	v.SetDefault("http.enabled", true)
	v.SetDefault("http.port", "8080")

	v.SetDefault("auth.signing_key", "change-me")
	v.SetDefault("auth.token_ttl", time.Hour)
}

// Default returns the built-in configuration without reading any file.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return cfg
}

// Load reads the YAML file at path (if non-empty), applies FRIDGE_* environment
// overrides on top of the defaults, and validates the result.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %q: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the invariants the monitor relies on.
func (c Config) Validate() error {
	var errs []error
	if c.Thresholds.MinTempC >= c.Thresholds.MaxTempC {
		errs = append(errs, fmt.Errorf("thresholds: min_temp_c %.2f must be below max_temp_c %.2f",
			c.Thresholds.MinTempC, c.Thresholds.MaxTempC))
	}
	if c.Thresholds.DoorOpen <= 0 {
		errs = append(errs, errors.New("thresholds: door_open must be positive"))
	}
	if c.Thresholds.MaxEnergyW <= 0 {
		errs = append(errs, errors.New("thresholds: max_energy_w must be positive"))
	}
	if c.Display.Cols < minDisplayCols {
		errs = append(errs, fmt.Errorf("display: cols must be at least %d, got %d", minDisplayCols, c.Display.Cols))
	}
	for name, d := range map[string]time.Duration{
		"tick":            c.Intervals.Tick,
		"sensor_read":     c.Intervals.SensorRead,
		"simulator_write": c.Intervals.SimulatorWrite,
		"button_poll":     c.Intervals.ButtonPoll,
		"self_check":      c.Intervals.SelfCheck,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("intervals: %s must be positive", name))
		}
	}
	if c.Intervals.ConfirmHold < 0 {
		errs = append(errs, errors.New("intervals: confirm_hold must not be negative"))
	}
	if c.Workspace.TemperatureFile == "" || c.Workspace.DoorFile == "" ||
		c.Workspace.EnergyFile == "" || c.Workspace.ButtonFile == "" {
		errs = append(errs, errors.New("workspace: all sensor file paths are required"))
	}
	if c.Log.MaxBytes <= 0 {
		errs = append(errs, errors.New("log: max_bytes must be positive"))
	}
	return errors.Join(errs...)
}

const redacted = "<redacted>"

// WriteYAML prints the effective configuration in the config file format.
// The signing key is redacted.
func (c Config) WriteYAML(w io.Writer) error {
	if c.Auth.SigningKey != "" {
		c.Auth.SigningKey = redacted
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}
