// Package vitals ties the firmware together: serial console, ADC acquisition
// and the temperature filter, driven from a single main loop.
package vitals

import (
	"github.com/itohio/govitals/pkg/adc"
	"github.com/itohio/govitals/pkg/console"
	"github.com/itohio/govitals/pkg/hw"
	"github.com/itohio/govitals/pkg/uart"
)

// Options are the firmware's fixed tuning constants.
type Options struct {
	// Temperature calibration: °C = (raw - Offset) / Gain.
	Offset float32
	Gain   float32

	ProcessNoise      float32
	MeasurementNoise  float32
	InitialCovariance float32

	// SampleEvery is the number of main-loop iterations between filter updates.
	SampleEvery int
}

// DefaultOptions returns the calibration and tuning used on the device.
func DefaultOptions() Options {
	return Options{
		Offset:            324.31,
		Gain:              1.22,
		ProcessNoise:      0.01,
		MeasurementNoise:  4.0,
		InitialCovariance: 10.0,
		SampleEvery:       1000,
	}
}

// Celsius converts a raw temperature count.
func (o Options) Celsius(raw uint16) float32 {
	return (float32(raw) - o.Offset) / o.Gain
}

// App is the complete firmware.
type App struct {
	UART    *uart.Transport
	ADC     *adc.Converter
	Monitor *Monitor
	Console *console.Console
}

// New assembles the firmware on the given hardware. The caller routes the
// UART receive interrupt to App.UART.HandleInterrupt.
func New(uartDev hw.UART, adcDev hw.ADC, irq hw.Interrupts, opts Options) *App {
	a := &App{
		UART: uart.New(uartDev, irq),
		ADC:  adc.New(adcDev),
	}
	a.Monitor = NewMonitor(a.ADC, opts)
	a.Console = console.New(a.UART, a.Monitor)
	return a
}

// Boot brings up the serial line and the ADC, seeds the filter from a first
// reading and prints the banner.
func (a *App) Boot() {
	a.UART.Configure()
	a.ADC.Configure()
	a.Monitor.Start()
	a.Console.Banner()
}

// Step runs one main-loop iteration: serve pending input, then advance the
// acquisition cadence.
func (a *App) Step() {
	a.Console.Poll()
	a.Monitor.Tick()
}

// Run loops forever.
func (a *App) Run() {
	for {
		a.Step()
	}
}
