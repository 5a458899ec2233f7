package device

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestSim_GracefulShutdown tests that Sim closes the readings channel
// when Close() is called while a poller is running.
func TestSim_GracefulShutdown(t *testing.T) {
	dev := NewSim(testConfig(), nil)
	err := dev.Connect()
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Poll(ctx, dev, 20*time.Millisecond, nil)

	readings := dev.Readings()

	// Read a few readings
	received := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range readings {
			received++
			if received == 3 {
				// Got enough readings, now close device
				dev.Close()
			}
		}
	}()

	// Wait for readings and channel closure
	select {
	case <-done:
		// Channel closed successfully
	case <-time.After(5 * time.Second):
		t.Fatal("Readings channel did not close within timeout")
	}

	// Should have received at least a few readings
	assert.GreaterOrEqual(t, received, 3, "Should receive readings before channel closes")
	assert.False(t, dev.IsConnected())

	// Verify channel is closed
	_, ok := <-readings
	assert.False(t, ok, "Channel should be closed")
}
