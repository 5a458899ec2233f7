//go:build avr

//go:generate tinygo flash -target=arduino -serial=none

package main

import (
	"runtime/interrupt"

	"device/avr"

	"github.com/itohio/govitals/pkg/vitals"
)

var app *vitals.App

func main() {
	app = vitals.New(usart0{}, adc{}, irqs{}, tuning())

	// Register the receive-complete interrupt before Boot turns interrupts on.
	interrupt.New(avr.IRQ_USART_RX, handleRX)

	app.Boot()

	// Main loop: serve the console, sample every SampleEvery iterations.
	app.Run()
}

func handleRX(interrupt.Interrupt) {
	app.UART.HandleInterrupt()
}
