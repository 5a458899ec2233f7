// Package kalman implements a scalar Kalman filter for a random-walk signal.
package kalman

import "github.com/chewxy/math32"

// Filter estimates a slowly varying scalar from noisy samples. The model
// assumes the true value stays constant between updates apart from process
// noise, so there is no velocity term.
//
// All methods accept a nil receiver: mutators do nothing and accessors return 0.
type Filter struct {
	estimate   float32
	covariance float32
	q          float32 // process noise variance
	r          float32 // measurement noise variance
	gain       float32
}

// New returns a filter seeded with an initial estimate and covariance.
func New(estimate, covariance, processNoise, measurementNoise float32) *Filter {
	f := &Filter{}
	f.Init(estimate, covariance, processNoise, measurementNoise)
	return f
}

// Init seeds every field of f. The gain starts at zero.
func (f *Filter) Init(estimate, covariance, processNoise, measurementNoise float32) {
	if f == nil {
		return
	}
	*f = Filter{
		estimate:   estimate,
		covariance: covariance,
		q:          processNoise,
		r:          measurementNoise,
	}
}

// Update folds measurement z into the estimate and returns the new estimate.
func (f *Filter) Update(z float32) float32 {
	if f == nil {
		return 0
	}
	predicted := f.covariance + f.q
	f.gain = predicted / (predicted + f.r)
	f.estimate += f.gain * (z - f.estimate)
	f.covariance = (1 - f.gain) * predicted
	return f.estimate
}

// Reset reseeds the estimate and sets the covariance to the measurement noise,
// i.e. as uncertain as one fresh sample. Noise parameters are kept.
func (f *Filter) Reset(estimate float32) {
	if f == nil {
		return
	}
	f.estimate = estimate
	f.covariance = f.r
	f.gain = 0
}

func (f *Filter) Estimate() float32 {
	if f == nil {
		return 0
	}
	return f.estimate
}

func (f *Filter) Covariance() float32 {
	if f == nil {
		return 0
	}
	return f.covariance
}

// Gain returns the gain computed by the last Update.
func (f *Filter) Gain() float32 {
	if f == nil {
		return 0
	}
	return f.gain
}

func (f *Filter) ProcessNoise() float32 {
	if f == nil {
		return 0
	}
	return f.q
}

func (f *Filter) MeasurementNoise() float32 {
	if f == nil {
		return 0
	}
	return f.r
}

// SteadyState returns the gain and posterior covariance the filter converges
// to. The prior covariance P solves P = P*R/(P+R) + Q, giving
// P = (Q + sqrt(Q*Q + 4*Q*R)) / 2.
func (f *Filter) SteadyState() (gain, covariance float32) {
	if f == nil {
		return 0, 0
	}
	return SteadyState(f.q, f.r)
}

// SteadyState computes the stationary gain and posterior covariance for the
// given noise variances.
func SteadyState(processNoise, measurementNoise float32) (gain, covariance float32) {
	q, r := processNoise, measurementNoise
	if q+r <= 0 {
		return 0, 0
	}
	prior := (q + math32.Sqrt(q*q+4*q*r)) / 2
	gain = prior / (prior + r)
	return gain, (1 - gain) * prior
}
