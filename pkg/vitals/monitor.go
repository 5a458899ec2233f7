package vitals

import (
	"github.com/itohio/govitals/pkg/adc"
	"github.com/itohio/govitals/pkg/console"
	"github.com/itohio/govitals/pkg/kalman"
)

var _ console.Source = (*Monitor)(nil)

// Monitor is the acquisition loop: it samples the temperature sensor on a
// fixed cadence and feeds the filter.
type Monitor struct {
	conv   *adc.Converter
	opts   Options
	filter kalman.Filter
	ticks  int
}

// NewMonitor creates a monitor reading from conv.
func NewMonitor(conv *adc.Converter, opts Options) *Monitor {
	if opts.SampleEvery <= 0 {
		opts.SampleEvery = 1
	}
	return &Monitor{conv: conv, opts: opts}
}

// Start seeds the filter from one temperature reading.
func (m *Monitor) Start() {
	c := m.opts.Celsius(m.conv.ReadTemperature())
	m.filter.Init(c, m.opts.InitialCovariance, m.opts.ProcessNoise, m.opts.MeasurementNoise)
	m.ticks = 0
}

// Tick counts a main-loop iteration and samples once every SampleEvery calls.
// It reports whether a sample was taken.
func (m *Monitor) Tick() bool {
	m.ticks++
	if m.ticks < m.opts.SampleEvery {
		return false
	}
	m.ticks = 0
	m.Sample()
	return true
}

// Sample reads the sensor, folds it into the filter and returns the new estimate.
func (m *Monitor) Sample() float32 {
	return m.filter.Update(m.opts.Celsius(m.conv.ReadTemperature()))
}

// Status takes a fresh reading, updates the filter with it and estimates the supply.
func (m *Monitor) Status() console.Report {
	raw := m.conv.ReadTemperature()
	c := m.opts.Celsius(raw)
	filtered := m.filter.Update(c)
	return console.Report{
		Raw:       raw,
		RawC:      c,
		FilteredC: filtered,
		SupplyMV:  m.conv.SupplyMillivolts(),
	}
}

// ResetFilter reseeds the filter from a fresh reading.
func (m *Monitor) ResetFilter() float32 {
	c := m.opts.Celsius(m.conv.ReadTemperature())
	m.filter.Reset(c)
	return c
}

// Filter exposes the temperature filter.
func (m *Monitor) Filter() *kalman.Filter {
	return &m.filter
}
