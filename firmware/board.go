//go:build avr

package main

import "github.com/itohio/govitals/pkg/vitals"

const (
	// Temperature calibration for this board's ATmega328P:
	// °C = (raw - TEMP_OFFSET) / TEMP_GAIN
	TEMP_OFFSET = 324.31
	TEMP_GAIN   = 1.22

	// Filter tuning
	KALMAN_PROCESS_NOISE     = 0.01
	KALMAN_MEASUREMENT_NOISE = 4.0
	KALMAN_INITIAL_ERROR     = 10.0

	// Main-loop iterations between background filter updates
	SAMPLE_EVERY = 1000
)

func tuning() vitals.Options {
	return vitals.Options{
		Offset:            TEMP_OFFSET,
		Gain:              TEMP_GAIN,
		ProcessNoise:      KALMAN_PROCESS_NOISE,
		MeasurementNoise:  KALMAN_MEASUREMENT_NOISE,
		InitialCovariance: KALMAN_INITIAL_ERROR,
		SampleEvery:       SAMPLE_EVERY,
	}
}
