// Package adc reads the on-die analog inputs of the ATmega328P and derives
// the supply voltage from the internal bandgap cell.
package adc

import (
	"time"

	"github.com/itohio/govitals/pkg/hw"
)

const (
	// ChannelTemperature is the on-die temperature sensor input.
	ChannelTemperature = hw.ChannelTemperature
	// ChannelBandgap is the internal bandgap cell input.
	ChannelBandgap = hw.ChannelBandgap

	// BandgapMillivolts is the nominal bandgap cell voltage.
	BandgapMillivolts = 1100
	// FullScale is the count span of a 10-bit conversion.
	FullScale = 1024

	// SettleDelay lets the internal reference stabilise after enabling the ADC.
	SettleDelay = time.Millisecond
)

// Converter is the conversion channel. Every read blocks until the hardware
// reports completion; there is no timeout.
type Converter struct {
	dev   hw.ADC
	sleep func(time.Duration)
}

// New creates a converter on dev.
func New(dev hw.ADC) *Converter {
	return &Converter{dev: dev, sleep: time.Sleep}
}

// NewWithSleep creates a converter that waits for the reference through sleep.
func NewWithSleep(dev hw.ADC, sleep func(time.Duration)) *Converter {
	if sleep == nil {
		sleep = func(time.Duration) {}
	}
	return &Converter{dev: dev, sleep: sleep}
}

// Configure sets the /128 prescaler, enables the converter, selects the
// internal 1.1 V reference and waits for it to settle.
func (c *Converter) Configure() {
	c.dev.SetControl(c.dev.Control()&^hw.ADCSRAPrescalerMask | hw.ADCSRAPrescaler128)
	c.dev.SetControl(c.dev.Control() | hw.ADCSRAEnable)
	c.dev.SetMux(hw.ADMUXRefInternal1V1)
	c.sleep(SettleDelay)
}

// Read converts channel against the internal 1.1 V reference.
func (c *Converter) Read(channel uint8) uint16 {
	c.dev.SetMux(hw.ADMUXRefInternal1V1 | channel&hw.ADMUXChannelMask)
	return c.convert()
}

// ReadTemperature converts the temperature sensor input.
func (c *Converter) ReadTemperature() uint16 {
	return c.Read(ChannelTemperature)
}

// ReadBandgap converts the bandgap cell against the supply rail. The previous
// reference and channel selection is restored afterwards.
func (c *Converter) ReadBandgap() uint16 {
	saved := c.dev.Mux()
	c.dev.SetMux(hw.ADMUXRefAVCC | ChannelBandgap&hw.ADMUXChannelMask)
	v := c.convert()
	c.dev.SetMux(saved)
	return v
}

// SupplyMillivolts estimates AVCC from the bandgap reading. It returns 0 when
// the bandgap reads 0; callers must treat 0 as unknown.
func (c *Converter) SupplyMillivolts() uint16 {
	return SupplyFromBandgap(c.ReadBandgap())
}

// SupplyFromBandgap converts a bandgap count taken against AVCC into AVCC millivolts.
func SupplyFromBandgap(raw uint16) uint16 {
	if raw == 0 {
		return 0
	}
	return uint16(uint32(BandgapMillivolts) * FullScale / uint32(raw))
}

func (c *Converter) convert() uint16 {
	c.dev.SetControl(c.dev.Control() | hw.ADCSRAStart)
	for c.dev.Control()&hw.ADCSRAStart != 0 {
	}
	c.dev.SetControl(c.dev.Control() | hw.ADCSRAComplete)

	lo, hi := c.dev.Result()
	return uint16(lo) | uint16(hi)<<8
}
