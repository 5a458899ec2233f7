//go:build !avr

package hw

import (
	"math/rand/v2"
	"sync"

	"github.com/chewxy/math32"
)

// DieConfig describes the simulated silicon.
type DieConfig struct {
	TempC       float32 // die temperature (°C)
	Drift       float32 // temperature change per temperature conversion (°C)
	SupplyMV    float32 // AVCC (mV)
	BandgapMV   float32 // bandgap cell voltage (mV)
	Offset      float32 // sensor counts at 0 °C against the 1.1 V reference
	Gain        float32 // sensor counts per °C
	NoiseCounts float32 // standard deviation of sensor noise (counts)
	Seed        uint64
}

// DefaultDieConfig returns a die at room temperature on a 5 V rail.
func DefaultDieConfig() DieConfig {
	return DieConfig{
		TempC:       25,
		SupplyMV:    5000,
		BandgapMV:   1100,
		Offset:      324.31,
		Gain:        1.22,
		NoiseCounts: 2,
		Seed:        1,
	}
}

// Die models the analog sources an ATmega328P samples internally: the
// temperature sensor and the bandgap cell. Sample is suitable as a SimADC
// source.
type Die struct {
	mu  sync.Mutex
	cfg DieConfig
	rng *rand.Rand
}

// NewDie creates a die model.
func NewDie(cfg DieConfig) *Die {
	if cfg.BandgapMV == 0 {
		cfg.BandgapMV = 1100
	}
	return &Die{
		cfg: cfg,
		rng: rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
	}
}

// SetTemperature changes the die temperature.
func (d *Die) SetTemperature(c float32) {
	d.mu.Lock()
	d.cfg.TempC = c
	d.mu.Unlock()
}

// Temperature returns the current die temperature.
func (d *Die) Temperature() float32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cfg.TempC
}

// SetSupply changes AVCC. A zero supply makes the bandgap read as zero.
func (d *Die) SetSupply(mv float32) {
	d.mu.Lock()
	d.cfg.SupplyMV = mv
	d.mu.Unlock()
}

// Sample converts the input selected by mux against the reference selected by mux.
func (d *Die) Sample(mux uint8) uint16 {
	d.mu.Lock()
	defer d.mu.Unlock()

	var refMV float32
	switch mux & ADMUXRefMask {
	case ADMUXRefInternal1V1:
		refMV = 1100
	default:
		refMV = d.cfg.SupplyMV
	}
	if refMV <= 0 {
		return 0
	}

	var inputMV, noise float32
	switch mux & ADMUXChannelMask {
	case ChannelTemperature:
		counts := d.cfg.TempC*d.cfg.Gain + d.cfg.Offset
		inputMV = counts * 1100 / 1024
		if d.cfg.NoiseCounts > 0 {
			noise = float32(d.rng.NormFloat64()) * d.cfg.NoiseCounts
		}
		d.cfg.TempC += d.cfg.Drift
	case ChannelBandgap:
		inputMV = d.cfg.BandgapMV
		if d.cfg.SupplyMV <= 0 {
			return 0
		}
	default:
		return 0
	}

	v := math32.Round(inputMV*1024/refMV + noise)
	switch {
	case v < 0:
		return 0
	case v > 1023:
		return 1023
	}
	return uint16(v)
}
