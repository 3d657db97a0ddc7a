// Package config loads the optional YAML configuration file. Flags take
// precedence over the file; the file takes precedence over defaults.
package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/msf-clock/internal/gpio"
)

// Duration wraps time.Duration so values can be written as "15m" or
// "90s" in YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Config is the daemon configuration.
type Config struct {
	Chip      string   `yaml:"chip"`
	DataPin   int      `yaml:"data_pin"`
	EnablePin int      `yaml:"enable_pin"` // -1 disables
	LEDPin    int      `yaml:"led_pin"`    // -1 disables
	Broker    string   `yaml:"broker"`
	ClientID  string   `yaml:"client_id"`
	HTTPAddr  string   `yaml:"http"` // empty disables
	Heartbeat Duration `yaml:"heartbeat"`
	Trace     string   `yaml:"trace"`      // comma-separated categories
	TracePort string   `yaml:"trace_port"` // serial device, empty = stderr
	TraceBaud int      `yaml:"trace_baud"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Chip:      gpio.DefaultChip,
		DataPin:   gpio.DefaultPinData,
		EnablePin: gpio.DefaultPinEnable,
		LEDPin:    gpio.DefaultPinLED,
		Broker:    "tcp://192.168.1.200:1883",
		ClientID:  "msf-clock",
		HTTPAddr:  ":80",
		Heartbeat: Duration(15 * time.Minute),
		Trace:     "sync,edge,bcd",
		TraceBaud: 115200,
	}
}

// Load reads path on top of the defaults. Keys absent from the file
// keep their default values; unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
