//go:build !avr

package hw

import (
	"sync"
	"sync/atomic"
)

var (
	_ ADC        = (*SimADC)(nil)
	_ UART       = (*SimUART)(nil)
	_ Interrupts = (*SimIRQ)(nil)
)

// SimIRQ emulates the global interrupt flag on a host. A masked section holds
// a mutex, and Raise runs a handler under the same mutex, so a handler can
// never interleave with a masked section of the main context.
// Masked sections must not nest.
type SimIRQ struct {
	mu      sync.Mutex
	enabled atomic.Bool
}

// Enable sets the global interrupt flag.
func (s *SimIRQ) Enable() { s.enabled.Store(true) }

// Enabled reports whether the global interrupt flag is set.
func (s *SimIRQ) Enabled() bool { return s.enabled.Load() }

// Disable enters a masked section.
func (s *SimIRQ) Disable() State {
	s.mu.Lock()
	return 1
}

// Restore leaves the masked section entered by Disable.
func (s *SimIRQ) Restore(State) {
	s.mu.Unlock()
}

// Raise runs handler as an interrupt. It returns false without running the
// handler when interrupts are globally disabled.
func (s *SimIRQ) Raise(handler func()) bool {
	if !s.enabled.Load() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	handler()
	return true
}

// SimADC emulates the ADC registers. A conversion started with ADSC completes
// after ConvertPolls reads of the control register; the result is produced by
// Source from the ADMUX value latched at conversion start.
type SimADC struct {
	// ConvertPolls is the number of Control reads a conversion stays busy.
	ConvertPolls int
	// Source produces the 10-bit sample for a given ADMUX value.
	Source func(mux uint8) uint16

	mu      sync.Mutex
	control uint8
	mux     uint8
	latched uint8
	pending int
	result  uint16
	history []uint8
}

// NewSimADC creates a simulated ADC backed by source.
func NewSimADC(source func(mux uint8) uint16) *SimADC {
	return &SimADC{Source: source}
}

func (a *SimADC) Control() uint8 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.control&ADCSRAStart != 0 && a.control&ADCSRAEnable != 0 {
		if a.pending > 0 {
			a.pending--
		}
		if a.pending == 0 {
			a.complete()
		}
	}
	return a.control
}

func (a *SimADC) SetControl(v uint8) {
	a.mu.Lock()
	defer a.mu.Unlock()

	flag := a.control & ADCSRAComplete
	if v&ADCSRAComplete != 0 {
		// write-one-to-clear
		flag = 0
	}
	starting := v&ADCSRAStart != 0 && a.control&ADCSRAStart == 0
	a.control = (v &^ ADCSRAComplete) | flag

	if starting && a.control&ADCSRAEnable != 0 {
		a.latched = a.mux
		a.history = append(a.history, a.mux)
		a.pending = a.ConvertPolls
		if a.pending <= 0 {
			a.complete()
		}
	}
}

func (a *SimADC) complete() {
	var v uint16
	if a.Source != nil {
		v = a.Source(a.latched)
	}
	a.result = v & 0x3FF
	a.control &^= ADCSRAStart
	a.control |= ADCSRAComplete
}

func (a *SimADC) Mux() uint8 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mux
}

func (a *SimADC) SetMux(v uint8) {
	a.mu.Lock()
	a.mux = v
	a.mu.Unlock()
}

func (a *SimADC) Result() (lo, hi uint8) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return uint8(a.result), uint8(a.result >> 8)
}

// History returns the ADMUX values latched by every conversion so far.
func (a *SimADC) History() []uint8 {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]uint8, len(a.history))
	copy(out, a.history)
	return out
}

// SimUART emulates USART0. Transmitted bytes are collected (or passed to
// OnTransmit when set); received bytes are injected with Inject, which raises
// the attached receive interrupt.
type SimUART struct {
	// TxPolls is the number of TxReady polls that report busy after each byte.
	TxPolls int
	// OnTransmit, when set, receives every transmitted byte instead of the
	// internal output buffer.
	OnTransmit func(b uint8)

	mu      sync.Mutex
	divisor uint16
	enabled bool
	rx      uint8
	busy    int
	out     []byte

	irq *SimIRQ
	isr func()
}

// Attach wires the receive-complete interrupt handler.
func (u *SimUART) Attach(irq *SimIRQ, isr func()) {
	u.mu.Lock()
	u.irq = irq
	u.isr = isr
	u.mu.Unlock()
}

func (u *SimUART) SetDivisor(d uint16) {
	u.mu.Lock()
	u.divisor = d
	u.mu.Unlock()
}

// Divisor returns the programmed baud-rate divisor.
func (u *SimUART) Divisor() uint16 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.divisor
}

func (u *SimUART) Enable() {
	u.mu.Lock()
	u.enabled = true
	u.mu.Unlock()
}

// Enabled reports whether Enable was called.
func (u *SimUART) Enabled() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.enabled
}

func (u *SimUART) TxReady() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.busy > 0 {
		u.busy--
		return false
	}
	return true
}

func (u *SimUART) Transmit(b uint8) {
	u.mu.Lock()
	u.busy = u.TxPolls
	sink := u.OnTransmit
	if sink == nil {
		u.out = append(u.out, b)
	}
	u.mu.Unlock()
	if sink != nil {
		sink(b)
	}
}

func (u *SimUART) Received() uint8 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.rx
}

// Inject places b in the receive register and raises the receive interrupt.
// It reports whether the handler ran; with the receiver or interrupts
// disabled the byte is overwritten by the next one, as on hardware.
func (u *SimUART) Inject(b uint8) bool {
	u.mu.Lock()
	u.rx = b
	irq, isr, on := u.irq, u.isr, u.enabled
	u.mu.Unlock()
	if !on || irq == nil || isr == nil {
		return false
	}
	return irq.Raise(isr)
}

// Output returns a copy of everything transmitted so far.
func (u *SimUART) Output() []byte {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]byte, len(u.out))
	copy(out, u.out)
	return out
}

// TakeOutput returns and clears the transmitted bytes.
func (u *SimUART) TakeOutput() []byte {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := u.out
	u.out = nil
	return out
}
