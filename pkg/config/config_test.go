package config

import (
	"os"
	"testing"
	"time"

	"github.com/itohio/govitals/pkg/vitals"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "COM3", cfg.Serial.Port)
	assert.Equal(t, 9600, cfg.Serial.Baud)
	assert.Equal(t, time.Second, cfg.Poll.Interval)
	assert.Equal(t, 5*time.Minute, cfg.Poll.Window)
	assert.Equal(t, float32(0.01), cfg.Filter.ProcessNoise)
	assert.Equal(t, float32(4), cfg.Filter.MeasurementNoise)
	assert.Equal(t, float32(10), cfg.Filter.InitialCovariance)
	assert.Equal(t, float32(324.31), cfg.Calibration.Offset)
	assert.Equal(t, float32(1.22), cfg.Calibration.Gain)
	assert.Equal(t, float32(5000), cfg.Sim.SupplyMV)
	assert.Equal(t, time.Millisecond, cfg.Sim.StepInterval)
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "COM3", cfg.Serial.Port)
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
serial:
  port: "/dev/ttyACM0"
  baud: 9600

poll:
  interval: 500ms
  window: 1m

filter:
  process_noise: 0.05
  measurement_noise: 2.5
  initial_covariance: 8

calibration:
  offset: 330.5
  gain: 1.1

sim:
  ambient_c: 31.5
  drift: 0.001
  supply_mv: 3300
  noise_counts: 0
  step_interval: 2ms
  sample_every: 10
  convert_polls: 1
  seed: 42
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, 500*time.Millisecond, cfg.Poll.Interval)
	assert.Equal(t, time.Minute, cfg.Poll.Window)
	assert.Equal(t, float32(0.05), cfg.Filter.ProcessNoise)
	assert.Equal(t, float32(2.5), cfg.Filter.MeasurementNoise)
	assert.Equal(t, float32(8), cfg.Filter.InitialCovariance)
	assert.Equal(t, float32(330.5), cfg.Calibration.Offset)
	assert.Equal(t, float32(1.1), cfg.Calibration.Gain)
	assert.Equal(t, float32(31.5), cfg.Sim.AmbientC)
	assert.Equal(t, float32(3300), cfg.Sim.SupplyMV)
	assert.Equal(t, 2*time.Millisecond, cfg.Sim.StepInterval)
	assert.Equal(t, 10, cfg.Sim.SampleEvery)
	assert.Equal(t, uint64(42), cfg.Sim.Seed)
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("invalid: yaml: content: [")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PartialYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
serial:
  port: "/dev/ttyACM0"
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	// Should use defaults for missing fields
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, 9600, cfg.Serial.Baud)
	assert.Equal(t, time.Second, cfg.Poll.Interval)
	assert.Equal(t, float32(4), cfg.Filter.MeasurementNoise)
	assert.Equal(t, float32(1.22), cfg.Calibration.Gain)
	assert.Equal(t, time.Millisecond, cfg.Sim.StepInterval)
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Serial.Port = "/dev/ttyUSB0"
	cfg.Poll.Interval = 2 * time.Second

	tmpfile, err := os.CreateTemp("", "test_save_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	err = cfg.Save(tmpfile.Name())
	require.NoError(t, err)

	// Load it back and verify
	loaded, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", loaded.Serial.Port)
	assert.Equal(t, 2*time.Second, loaded.Poll.Interval)
}

func TestOptions(t *testing.T) {
	cfg := Default()
	cfg.Sim.SampleEvery = 1000

	assert.Equal(t, vitals.DefaultOptions(), cfg.Options())
}

func TestDie(t *testing.T) {
	cfg := Default()
	cfg.Sim.AmbientC = 40

	die := cfg.Die()
	assert.Equal(t, float32(40), die.TempC)
	assert.Equal(t, float32(5000), die.SupplyMV)
	assert.Equal(t, float32(1100), die.BandgapMV)
	assert.Equal(t, cfg.Calibration.Gain, die.Gain)
}
