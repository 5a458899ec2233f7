package main

import (
	"context"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"github.com/itohio/govitals/pkg/device"
	"github.com/itohio/govitals/pkg/trend"
)

// chain tracks the goroutines fed by one connection for graceful shutdown.
type chain struct {
	device    device.Device
	cancel    context.CancelFunc
	pollDone  chan struct{} // Closed when the poller exits
	trendDone chan struct{} // Closed when the trend has drained the readings channel
}

// startChain polls dev for status reports and feeds its readings into the trend.
func startChain(state *appState, dev device.Device) *chain {
	ctx, cancel := context.WithCancel(context.Background())
	c := &chain{
		device:    dev,
		cancel:    cancel,
		pollDone:  make(chan struct{}),
		trendDone: make(chan struct{}),
	}

	state.trend.ResetShutdown()
	readings := dev.Readings()

	go func() {
		defer close(c.pollDone)
		device.Poll(ctx, dev, state.cfg.Poll.Interval, state.log)
	}()

	go func() {
		defer close(c.trendDone)
		state.trend.Process(readings)
	}()

	return c
}

// closeChain stops polling, closes the device and waits for the readings
// channel to drain.
func closeChain(c *chain) {
	if c == nil {
		return
	}

	c.cancel()
	<-c.pollDone

	if c.device != nil {
		c.device.Close()
	}

	<-c.trendDone
}

// hookScope forwards trend updates to the scope widget on the main thread,
// dropping updates that arrive faster than scopeRefreshInterval.
func hookScope(state *appState) {
	th := &throttle{every: scopeRefreshInterval}
	state.trend.OnUpdate(func(readings []device.Reading, _ []float64, stats trend.Stats) {
		if !th.allow(time.Now()) {
			return
		}
		fyne.Do(func() {
			state.scopeWidget.UpdateData(readings, stats)
		})
	})
}

// throttle admits at most one event per interval.
type throttle struct {
	every time.Duration

	mu   sync.Mutex
	last time.Time
}

func (t *throttle) allow(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.last.IsZero() && now.Sub(t.last) < t.every {
		return false
	}
	t.last = now
	return true
}
