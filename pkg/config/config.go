package config

import (
	"fmt"
	"os"
	"time"

	"github.com/itohio/govitals/pkg/hw"
	"github.com/itohio/govitals/pkg/vitals"
	"gopkg.in/yaml.v3"
)

// Config represents the host application configuration.
type Config struct {
	Serial      SerialConfig      `yaml:"serial"`
	Poll        PollConfig        `yaml:"poll"`
	Filter      FilterConfig      `yaml:"filter"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Sim         SimConfig         `yaml:"sim"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

// PollConfig controls how often the device is asked for a status report and
// how much history is kept.
type PollConfig struct {
	Interval time.Duration `yaml:"interval"`
	Window   time.Duration `yaml:"window"`
}

// FilterConfig mirrors the firmware's Kalman tuning. It only affects the
// simulated device; real hardware uses its compiled-in constants.
type FilterConfig struct {
	ProcessNoise      float32 `yaml:"process_noise"`
	MeasurementNoise  float32 `yaml:"measurement_noise"`
	InitialCovariance float32 `yaml:"initial_covariance"`
}

// CalibrationConfig is the temperature sensor line: °C = (raw - offset) / gain.
type CalibrationConfig struct {
	Offset float32 `yaml:"offset"`
	Gain   float32 `yaml:"gain"`
}

// SimConfig contains simulated device configuration.
type SimConfig struct {
	AmbientC     float32       `yaml:"ambient_c"`     // Die temperature (°C)
	Drift        float32       `yaml:"drift"`         // Temperature change per conversion (°C)
	SupplyMV     float32       `yaml:"supply_mv"`     // AVCC (mV)
	NoiseCounts  float32       `yaml:"noise_counts"`  // Sensor noise standard deviation (counts)
	StepInterval time.Duration `yaml:"step_interval"` // Main-loop iteration period
	SampleEvery  int           `yaml:"sample_every"`  // Main-loop iterations per filter update
	ConvertPolls int           `yaml:"convert_polls"` // Busy polls per conversion
	Seed         uint64        `yaml:"seed"`
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	opts := vitals.DefaultOptions()
	return &Config{
		Serial: SerialConfig{
			Port: "COM3", // Default for Windows, should be "/dev/ttyACM0" on Linux/Mac
			Baud: 9600,
		},
		Poll: PollConfig{
			Interval: time.Second,
			Window:   5 * time.Minute,
		},
		Filter: FilterConfig{
			ProcessNoise:      opts.ProcessNoise,
			MeasurementNoise:  opts.MeasurementNoise,
			InitialCovariance: opts.InitialCovariance,
		},
		Calibration: CalibrationConfig{
			Offset: opts.Offset,
			Gain:   opts.Gain,
		},
		Sim: SimConfig{
			AmbientC:     25,
			SupplyMV:     5000,
			NoiseCounts:  2,
			StepInterval: time.Millisecond,
			SampleEvery:  100,
			ConvertPolls: 4,
			Seed:         1,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Ensure minimum required fields are set (use defaults if missing)
	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Options maps the filter, calibration and simulation cadence onto firmware options.
func (c *Config) Options() vitals.Options {
	return vitals.Options{
		Offset:            c.Calibration.Offset,
		Gain:              c.Calibration.Gain,
		ProcessNoise:      c.Filter.ProcessNoise,
		MeasurementNoise:  c.Filter.MeasurementNoise,
		InitialCovariance: c.Filter.InitialCovariance,
		SampleEvery:       c.Sim.SampleEvery,
	}
}

// Die returns the simulated silicon described by the sim section.
func (c *Config) Die() hw.DieConfig {
	return hw.DieConfig{
		TempC:       c.Sim.AmbientC,
		Drift:       c.Sim.Drift,
		SupplyMV:    c.Sim.SupplyMV,
		BandgapMV:   1100,
		Offset:      c.Calibration.Offset,
		Gain:        c.Calibration.Gain,
		NoiseCounts: c.Sim.NoiseCounts,
		Seed:        c.Sim.Seed,
	}
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.Baud == 0 {
		c.Serial.Baud = def.Serial.Baud
	}

	if c.Poll.Interval == 0 {
		c.Poll.Interval = def.Poll.Interval
	}
	if c.Poll.Window == 0 {
		c.Poll.Window = def.Poll.Window
	}

	if c.Filter.MeasurementNoise == 0 {
		c.Filter.MeasurementNoise = def.Filter.MeasurementNoise
	}
	if c.Filter.InitialCovariance == 0 {
		c.Filter.InitialCovariance = def.Filter.InitialCovariance
	}

	if c.Calibration.Gain == 0 {
		c.Calibration.Gain = def.Calibration.Gain
	}

	if c.Sim.StepInterval == 0 {
		c.Sim.StepInterval = def.Sim.StepInterval
	}
	if c.Sim.SampleEvery == 0 {
		c.Sim.SampleEvery = def.Sim.SampleEvery
	}
	if c.Sim.SupplyMV == 0 {
		c.Sim.SupplyMV = def.Sim.SupplyMV
	}
}
