// Package uart drives USART0: polled transmit and interrupt-fed receive.
package uart

import (
	"github.com/itohio/govitals/pkg/hw"
	"github.com/itohio/govitals/pkg/ring"
)

const (
	// DefaultClockHz is the ATmega328P system clock on an Arduino Uno.
	DefaultClockHz = 16000000
	// DefaultBaudRate is the fixed line rate.
	DefaultBaudRate = 9600
)

// Divisor returns the UBRR value for an asynchronous normal-speed link:
// clock/(16*baud) - 1.
func Divisor(clockHz, baud uint32) uint16 {
	return uint16(clockHz/(16*baud) - 1)
}

// Transport is the serial line. It owns the receive ring; HandleInterrupt is
// the only producer and the remaining read methods are the only consumer.
type Transport struct {
	dev hw.UART
	irq hw.Interrupts
	rx  ring.Ring

	clockHz uint32
	baud    uint32
}

// New creates a transport on dev at the default clock and baud rate.
func New(dev hw.UART, irq hw.Interrupts) *Transport {
	t := &Transport{
		dev:     dev,
		irq:     irq,
		clockHz: DefaultClockHz,
		baud:    DefaultBaudRate,
	}
	t.rx.Init(irq)
	return t
}

// Configure programs the divisor, enables 8N1 transmit and receive with the
// receive-complete interrupt, and turns interrupts on globally.
func (t *Transport) Configure() {
	t.dev.SetDivisor(Divisor(t.clockHz, t.baud))
	t.dev.Enable()
	t.irq.Enable()
}

// HandleInterrupt is the receive-complete handler. The data register is read
// unconditionally; the byte is dropped if the ring is full.
func (t *Transport) HandleInterrupt() {
	b := t.dev.Received()
	t.rx.Push(b)
}

// WriteByte spins until the transmitter is ready, then sends b.
// It never fails; the error satisfies io.ByteWriter.
func (t *Transport) WriteByte(b byte) error {
	for !t.dev.TxReady() {
	}
	t.dev.Transmit(b)
	return nil
}

// WriteString sends s byte by byte.
func (t *Transport) WriteString(s string) {
	for i := 0; i < len(s); i++ {
		t.WriteByte(s[i])
	}
}

// Write sends p byte by byte. It always reports len(p), nil.
func (t *Transport) Write(p []byte) (int, error) {
	for _, b := range p {
		t.WriteByte(b)
	}
	return len(p), nil
}

// Buffered reports whether received bytes are waiting.
func (t *Transport) Buffered() bool {
	return t.rx.Len() > 0
}

// Len returns the number of received bytes waiting.
func (t *Transport) Len() int {
	return t.rx.Len()
}

// Receive returns the oldest received byte, or 0 when nothing is buffered.
// Use Buffered to tell a received zero from an empty buffer.
func (t *Transport) Receive() byte {
	b, _ := t.rx.Pop()
	return b
}

// Flush discards every buffered byte.
func (t *Transport) Flush() {
	t.rx.Reset()
}
