package capture

import (
	"math"
	"time"
)

// Axis indices used throughout the capture pipeline.
const (
	AxisX = 0
	AxisY = 1
	AxisZ = 2
	Axes  = 3
)

// AxisNames maps axis indices to their display names
var AxisNames = [Axes]string{"X", "Y", "Z"}

// Sample is one timestamped tri-axial acceleration reading. ElapsedUS is
// microseconds since the first sample of the run; the first sample is 0.
type Sample struct {
	ElapsedUS int64   `json:"elapsed_us"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
}

// RawCapture holds one acquisition run: N timestamped tri-axial samples.
// ElapsedUS is strictly non-decreasing with the first sample at 0.
type RawCapture struct {
	Samples []Sample `json:"samples"`
}

// NewRawCapture creates an empty capture with room for n samples
func NewRawCapture(n int) *RawCapture {
	return &RawCapture{Samples: make([]Sample, 0, n)}
}

// Len returns the number of samples captured so far
func (rc *RawCapture) Len() int {
	return len(rc.Samples)
}

// Reset empties the capture, keeping the allocated backing array
func (rc *RawCapture) Reset() {
	rc.Samples = rc.Samples[:0]
}

// Append adds one sample to the capture
func (rc *RawCapture) Append(s Sample) {
	rc.Samples = append(rc.Samples, s)
}

// Axis extracts one acceleration axis as a contiguous slice
func (rc *RawCapture) Axis(axis int) []float64 {
	out := make([]float64, len(rc.Samples))
	for i, s := range rc.Samples {
		switch axis {
		case AxisX:
			out[i] = s.X
		case AxisY:
			out[i] = s.Y
		case AxisZ:
			out[i] = s.Z
		}
	}
	return out
}

// TotalMagnitude returns the per-sample vector magnitude sqrt(x²+y²+z²)
func (rc *RawCapture) TotalMagnitude() []float64 {
	out := make([]float64, len(rc.Samples))
	for i, s := range rc.Samples {
		out[i] = magnitude3(s.X, s.Y, s.Z)
	}
	return out
}

// AxisStats holds descriptive statistics for one acceleration axis.
// SD is the population standard deviation (divide by N).
type AxisStats struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
	SD   float64 `json:"sd"`
}

// Record is a persisted, immutable bundle of one capture: metadata,
// raw samples and half-spectra. Timestamps are not persisted; the
// measured sample rate summarizes them.
type Record struct {
	StartTime  time.Time       `json:"start_time"`
	SampleRate float64         `json:"sample_rate"`
	PeakFreqs  [Axes]float64   `json:"peak_freqs"`
	Stats      [Axes]AxisStats `json:"stats"`
	Raw        [Axes][]float64 `json:"raw"`
	Spectra    [Axes][]float64 `json:"spectra"`
}

// SampleCount returns N, the number of raw samples per axis
func (r *Record) SampleCount() int {
	return len(r.Raw[AxisX])
}

// AsRawCapture rebuilds a raw capture view of the persisted samples.
// The original timestamps are not stored, so elapsed values are
// synthesized from the measured sample rate; this is sufficient for
// rebuilding spectrograms, which only consume the magnitudes.
func (r *Record) AsRawCapture() *RawCapture {
	n := r.SampleCount()
	rc := NewRawCapture(n)

	stepUS := 0.0
	if r.SampleRate > 0 {
		stepUS = 1e6 / r.SampleRate
	}
	for i := 0; i < n; i++ {
		rc.Append(Sample{
			ElapsedUS: int64(float64(i) * stepUS),
			X:         r.Raw[AxisX][i],
			Y:         r.Raw[AxisY][i],
			Z:         r.Raw[AxisZ][i],
		})
	}
	return rc
}

// BinCount returns N/2, the number of spectrum bins per axis
func (r *Record) BinCount() int {
	return len(r.Spectra[AxisX])
}

func magnitude3(x, y, z float64) float64 {
	return math.Sqrt(x*x + y*y + z*z)
}
