//go:build avr

package main

import (
	"runtime/interrupt"

	"device/avr"

	"github.com/itohio/govitals/pkg/hw"
)

var (
	_ hw.ADC        = adc{}
	_ hw.UART       = usart0{}
	_ hw.Interrupts = irqs{}
)

// adc maps hw.ADC onto the ATmega328P ADC registers.
type adc struct{}

func (adc) Control() uint8 { return avr.ADCSRA.Get() }
func (adc) SetControl(v uint8) { avr.ADCSRA.Set(v) }
func (adc) Mux() uint8 { return avr.ADMUX.Get() }
func (adc) SetMux(v uint8) { avr.ADMUX.Set(v) }
func (adc) Result() (lo, hi uint8) {
	// ADCL latches ADCH, so the low byte goes first.
	lo = avr.ADCL.Get()
	hi = avr.ADCH.Get()
	return lo, hi
}

// usart0 maps hw.UART onto USART0.
type usart0 struct{}

func (usart0) SetDivisor(d uint16) {
	avr.UBRR0H.Set(uint8(d >> 8))
	avr.UBRR0L.Set(uint8(d))
}

func (usart0) Enable() {
	avr.UCSR0B.Set(avr.UCSR0B_TXEN0 | avr.UCSR0B_RXEN0 | avr.UCSR0B_RXCIE0)
	avr.UCSR0C.Set(avr.UCSR0C_UCSZ01 | avr.UCSR0C_UCSZ00)
}

func (usart0) TxReady() bool { return avr.UCSR0A.HasBits(avr.UCSR0A_UDRE0) }
func (usart0) Transmit(b uint8) { avr.UDR0.Set(b) }
func (usart0) Received() uint8 { return avr.UDR0.Get() }

// irqs maps hw.Interrupts onto the global interrupt flag.
type irqs struct{}

func (irqs) Enable() { avr.Asm("sei") }
func (irqs) Disable() hw.State { return hw.State(interrupt.Disable()) }
func (irqs) Restore(s hw.State) { interrupt.Restore(interrupt.State(s)) }
