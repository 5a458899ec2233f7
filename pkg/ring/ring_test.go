package ring

import (
	"sync"
	"testing"

	"github.com/itohio/govitals/pkg/hw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRing() (*Ring, *hw.SimIRQ) {
	irq := &hw.SimIRQ{}
	irq.Enable()
	return New(irq), irq
}

func drain(r *Ring) []byte {
	var out []byte
	for {
		b, ok := r.Pop()
		if !ok {
			return out
		}
		out = append(out, b)
	}
}

func TestRing_CapacityLaw(t *testing.T) {
	r, _ := newRing()

	for i := 0; i < Size-1; i++ {
		require.True(t, r.Push(byte(i)), "push %d", i)
	}
	assert.Equal(t, Size-1, r.Len())

	assert.False(t, r.Push(0xFF), "push into full ring must be dropped")
	assert.Equal(t, Size-1, r.Len())

	got := drain(r)
	assert.Len(t, got, Size-1)
	assert.Equal(t, 0, r.Len())
}

func TestRing_FIFO(t *testing.T) {
	r, _ := newRing()

	r.Push('a')
	r.Push('b')
	b, ok := r.Pop()
	require.True(t, ok)
	assert.Equal(t, byte('a'), b)
	r.Push('c')

	assert.Equal(t, []byte{'b', 'c'}, drain(r))
}

func TestRing_FIFOAcrossWrap(t *testing.T) {
	r, _ := newRing()

	const n = 1000
	var got []byte
	for i := 0; i < n; i++ {
		require.True(t, r.Push(byte(i)))
		if i%3 == 2 {
			got = append(got, drain(r)...)
		}
	}
	got = append(got, drain(r)...)

	require.Len(t, got, n)
	for i := range got {
		assert.Equal(t, byte(i), got[i], "index %d", i)
	}
}

func TestRing_OverflowKeepsOldest(t *testing.T) {
	r, _ := newRing()

	for i := 0; i < Size+1; i++ {
		r.Push(byte(i))
	}

	got := drain(r)
	require.Len(t, got, Size-1)
	for i := range got {
		assert.Equal(t, byte(i), got[i])
	}
}

func TestRing_PopEmpty(t *testing.T) {
	r, _ := newRing()

	b, ok := r.Pop()
	assert.False(t, ok)
	assert.Equal(t, byte(0), b)
}

func TestRing_ResetIdempotent(t *testing.T) {
	tests := []struct {
		name   string
		pushes int
	}{
		{name: "empty", pushes: 0},
		{name: "partial", pushes: 10},
		{name: "full", pushes: Size + 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newRing()
			for i := 0; i < tt.pushes; i++ {
				r.Push(byte(i))
			}
			r.Reset()
			assert.Equal(t, 0, r.Len())
			r.Reset()
			assert.Equal(t, 0, r.Len())

			// ring is usable again from slot zero
			r.Push('x')
			assert.Equal(t, []byte{'x'}, drain(r))
		})
	}
}

// TestRing_ConcurrentProducer runs the producer from another goroutine through
// the simulated interrupt, the way the UART receive handler feeds the ring.
func TestRing_ConcurrentProducer(t *testing.T) {
	r, irq := newRing()

	const n = 5000
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			b := byte(i)
			for {
				var ok bool
				irq.Raise(func() { ok = r.Push(b) })
				if ok {
					break
				}
			}
		}
	}()

	got := make([]byte, 0, n)
	for len(got) < n {
		if b, ok := r.Pop(); ok {
			got = append(got, b)
		}
	}
	wg.Wait()

	for i := range got {
		require.Equal(t, byte(i), got[i], "index %d", i)
	}
}
