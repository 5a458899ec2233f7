// Package ring implements the fixed-size receive ring shared between the
// UART receive interrupt (single producer) and the main loop (single consumer).
package ring

import "github.com/itohio/govitals/pkg/hw"

// Size is the ring capacity. One slot stays free to tell full from empty, so
// at most Size-1 bytes are buffered.
const Size = 64

// Ring is a single-producer, single-consumer byte ring.
//
// Push belongs to the interrupt context and runs with interrupts masked.
// Every other method belongs to the main context and touches shared fields
// only inside a section masked through irq.
type Ring struct {
	irq   hw.Interrupts
	buf   [Size]byte
	head  uint8 // next write slot
	tail  uint8 // next read slot
	count uint8
}

// New returns an empty ring guarded by irq.
func New(irq hw.Interrupts) *Ring {
	return &Ring{irq: irq}
}

// Init resets r to an empty ring guarded by irq. It is meant for rings
// embedded by value before interrupts are enabled.
func (r *Ring) Init(irq hw.Interrupts) {
	*r = Ring{irq: irq}
}

// Push stores b unless the ring is full, in which case b is dropped and the
// buffered bytes are left untouched. Interrupt context only.
func (r *Ring) Push(b byte) bool {
	next := (r.head + 1) % Size
	if next == r.tail {
		return false
	}
	r.buf[r.head] = b
	r.head = next
	r.count++
	return true
}

// Pop removes and returns the oldest byte. It returns 0, false when empty.
func (r *Ring) Pop() (byte, bool) {
	s := r.irq.Disable()
	if r.count == 0 {
		r.irq.Restore(s)
		return 0, false
	}
	b := r.buf[r.tail]
	r.tail = (r.tail + 1) % Size
	r.count--
	r.irq.Restore(s)
	return b, true
}

// Len returns the number of buffered bytes.
func (r *Ring) Len() int {
	s := r.irq.Disable()
	n := r.count
	r.irq.Restore(s)
	return int(n)
}

// Reset drops all buffered bytes.
func (r *Ring) Reset() {
	s := r.irq.Disable()
	r.head, r.tail, r.count = 0, 0, 0
	r.irq.Restore(s)
}
