package trend

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/itohio/govitals/pkg/device"
	"github.com/stretchr/testify/assert"
)

// TestTrend_GracefulShutdown_NoCallbacksAfterClose tests that the trend stops
// sending callbacks after the input channel is closed.
func TestTrend_GracefulShutdown_NoCallbacksAfterClose(t *testing.T) {
	tr := New(10 * time.Second)

	var callbackCount atomic.Int32
	tr.OnUpdate(func([]device.Reading, []float64, Stats) {
		callbackCount.Add(1)
	})

	input := make(chan device.Reading, 10)
	done := make(chan struct{})
	go func() {
		defer close(done)
		tr.Process(input)
	}()

	now := time.Now()
	for i := range 3 {
		input <- reading(now.Add(time.Duration(i)*time.Second), float64(i))
	}
	close(input)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Process did not return after input closed")
	}
	assert.Equal(t, int32(3), callbackCount.Load())

	// Readings are still recorded after shutdown, but nobody is notified
	tr.Add(reading(now.Add(3*time.Second), 3))
	assert.Equal(t, int32(3), callbackCount.Load())
	assert.Len(t, tr.Readings(), 4)

	// A new chain re-enables callbacks
	tr.ResetShutdown()
	tr.Add(reading(now.Add(4*time.Second), 4))
	assert.Equal(t, int32(4), callbackCount.Load())
}
