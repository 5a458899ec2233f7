// Package hw defines the narrow register-level capabilities the firmware core
// needs from the microcontroller. The AVR implementation lives in firmware/,
// a simulated one in this package.
package hw

// ADC register bits (ATmega328P ADCSRA / ADMUX layout).
const (
	ADMUXRefInternal1V1 = 0xC0 // REFS1|REFS0: internal 1.1 V reference
	ADMUXRefAVCC        = 0x40 // REFS0: supply rail reference
	ADMUXRefMask        = 0xC0
	ADMUXChannelMask    = 0x0F

	ADCSRAPrescalerMask = 0x07
	ADCSRAPrescaler128  = 0x07
	ADCSRAEnable        = 0x80
	ADCSRAStart         = 0x40
	ADCSRAComplete      = 0x10
)

// ADC input channels wired to on-die sources.
const (
	ChannelTemperature = 8
	ChannelBandgap     = 14
)

// ADC exposes the analog-to-digital converter registers.
type ADC interface {
	// Control returns ADCSRA.
	Control() uint8
	// SetControl writes ADCSRA. Writing ADCSRAComplete acknowledges a finished conversion.
	SetControl(v uint8)
	// Mux returns ADMUX (reference + channel selection).
	Mux() uint8
	// SetMux writes ADMUX.
	SetMux(v uint8)
	// Result returns ADCL and ADCH. ADCL must be read first.
	Result() (lo, hi uint8)
}

// UART exposes the USART0 registers.
type UART interface {
	// SetDivisor writes UBRR0H/UBRR0L.
	SetDivisor(d uint16)
	// Enable turns on the transmitter, the receiver and the receive-complete
	// interrupt, and selects 8N1 frames.
	Enable()
	// TxReady reports UDRE0: the transmit holding register is empty.
	TxReady() bool
	// Transmit loads UDR0 for sending.
	Transmit(b uint8)
	// Received reads UDR0. Reading it clears the receive-complete condition.
	Received() uint8
}

// State is an opaque saved interrupt mask.
type State uintptr

// Interrupts controls the global interrupt flag.
type Interrupts interface {
	// Enable sets the global interrupt flag (sei).
	Enable()
	// Disable masks interrupts and returns the previous state.
	Disable() State
	// Restore returns the interrupt flag to a state returned by Disable.
	Restore(s State)
}
