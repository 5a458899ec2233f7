// Package trend keeps a time window of device readings for display: the
// readings themselves, the rate of change of the filtered temperature, and
// summary statistics.
package trend

import (
	"math"
	"sync"
	"time"

	"github.com/itohio/govitals/pkg/device"
)

// Stats summarizes the filtered temperature over the window.
type Stats struct {
	Count   int
	MinC    float64
	MaxC    float64
	MeanC   float64
	Last    device.Reading
	RateCPM float64 // Latest rate of change (°C/min)
}

// UpdateFunc receives copies of the current window.
type UpdateFunc func(readings []device.Reading, rates []float64, stats Stats)

// Trend is a FIFO of readings bounded by age.
//
// Rates correspond to reading pairs: rates[i] is the change in FilteredC from
// readings[i] to readings[i+1], in °C per minute, so n readings carry n-1
// rates.
type Trend struct {
	window time.Duration

	mu       sync.RWMutex
	readings []device.Reading
	rates    []float64
	shutdown bool

	cbMu      sync.RWMutex
	callbacks []UpdateFunc
}

// New creates a trend holding readings no older than window relative to the
// newest one.
func New(window time.Duration) *Trend {
	return &Trend{window: window}
}

// Process adds readings from input until it closes. After that no further
// callbacks are sent until ResetShutdown.
func (t *Trend) Process(input <-chan device.Reading) {
	for r := range input {
		t.Add(r)
	}
	t.mu.Lock()
	t.shutdown = true
	t.mu.Unlock()
}

// Add appends a reading, evicts what fell out of the window and notifies
// callbacks.
func (t *Trend) Add(r device.Reading) {
	t.mu.Lock()

	t.readings = append(t.readings, r)

	if t.window > 0 {
		cutoff := r.Timestamp.Add(-t.window)
		drop := 0
		for drop < len(t.readings)-1 && !t.readings[drop].Timestamp.After(cutoff) {
			drop++
		}
		if drop > 0 {
			t.readings = t.readings[drop:]
			if drop <= len(t.rates) {
				t.rates = t.rates[drop:]
			} else {
				t.rates = t.rates[:0]
			}
		}
	}

	if n := len(t.readings); n >= 2 {
		prev, curr := t.readings[n-2], t.readings[n-1]
		rate := 0.0
		if dt := curr.Timestamp.Sub(prev.Timestamp).Minutes(); dt > 0 {
			rate = (curr.FilteredC - prev.FilteredC) / dt
		}
		t.rates = append(t.rates, rate)
		if len(t.rates) > n-1 {
			t.rates = t.rates[len(t.rates)-(n-1):]
		}
	}

	notify := !t.shutdown
	t.mu.Unlock()

	if notify {
		t.notify()
	}
}

// SetWindow changes the window. It applies from the next Add.
func (t *Trend) SetWindow(window time.Duration) {
	t.mu.Lock()
	t.window = window
	t.mu.Unlock()
}

// Readings returns a copy of the window, oldest first.
func (t *Trend) Readings() []device.Reading {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]device.Reading, len(t.readings))
	copy(result, t.readings)
	return result
}

// Rates returns a copy of the rates, oldest first.
func (t *Trend) Rates() []float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]float64, len(t.rates))
	copy(result, t.rates)
	return result
}

// Stats summarizes the current window.
func (t *Trend) Stats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return summarize(t.readings, t.rates)
}

// Clear drops all readings.
func (t *Trend) Clear() {
	t.mu.Lock()
	t.readings = t.readings[:0]
	t.rates = t.rates[:0]
	t.mu.Unlock()
}

// OnUpdate registers a callback invoked after every Add. Callbacks run on the
// adding goroutine and should return quickly.
func (t *Trend) OnUpdate(cb UpdateFunc) {
	t.cbMu.Lock()
	defer t.cbMu.Unlock()
	t.callbacks = append(t.callbacks, cb)
}

// ResetShutdown re-enables callbacks for a new input stream.
func (t *Trend) ResetShutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.shutdown = false
}

func (t *Trend) notify() {
	t.mu.RLock()
	readings := make([]device.Reading, len(t.readings))
	copy(readings, t.readings)
	rates := make([]float64, len(t.rates))
	copy(rates, t.rates)
	stats := summarize(t.readings, t.rates)
	t.mu.RUnlock()

	t.cbMu.RLock()
	callbacks := make([]UpdateFunc, len(t.callbacks))
	copy(callbacks, t.callbacks)
	t.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(readings, rates, stats)
		}
	}
}

func summarize(readings []device.Reading, rates []float64) Stats {
	if len(readings) == 0 {
		return Stats{}
	}

	s := Stats{
		Count: len(readings),
		MinC:  math.Inf(1),
		MaxC:  math.Inf(-1),
		Last:  readings[len(readings)-1],
	}
	sum := 0.0
	for _, r := range readings {
		s.MinC = math.Min(s.MinC, r.FilteredC)
		s.MaxC = math.Max(s.MaxC, r.FilteredC)
		sum += r.FilteredC
	}
	s.MeanC = sum / float64(len(readings))
	if len(rates) > 0 {
		s.RateCPM = rates[len(rates)-1]
	}
	return s
}
