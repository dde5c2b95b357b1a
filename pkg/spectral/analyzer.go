package spectral

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/mjibson/go-dsp/fft"

	"github.com/vibelab/vibrascope/pkg/capture"
)

// Analyzer turns a raw capture into per-axis magnitude spectra and
// interpolated peak frequencies
type Analyzer struct {
	logger logging.Logger
}

// Analysis holds the spectral result for one capture. Spectra carry the
// first N/2 magnitude bins per axis; SampleRate is measured from the
// capture timestamps, not the nominal configuration value.
type Analysis struct {
	SampleRate float64                 `json:"sample_rate"`
	Spectra    [capture.Axes][]float64 `json:"spectra"`
	PeakFreqs  [capture.Axes]float64   `json:"peak_freqs"`
}

// NewAnalyzer creates a new spectral analyzer
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		logger: logging.WithFields(logging.Fields{
			"component": "spectral_analyzer",
		}),
	}
}

// Analyze computes the magnitude spectrum and peak frequency for each
// axis of the capture. Each axis is processed independently: mean
// removal, Hamming window, forward FFT, magnitude of the first N/2
// bins, then parabolic peak interpolation against the measured rate.
func (a *Analyzer) Analyze(rc *capture.RawCapture) (*Analysis, error) {
	n := rc.Len()
	if n < 2 {
		return nil, fmt.Errorf("capture too short for analysis: %d samples", n)
	}

	fs := MeasuredSampleRate(rc)
	window := Hamming(n)

	result := &Analysis{SampleRate: fs}
	for axis := 0; axis < capture.Axes; axis++ {
		spectrum := a.axisSpectrum(rc.Axis(axis), window)
		result.Spectra[axis] = spectrum
		result.PeakFreqs[axis] = PeakFrequency(spectrum, fs, n)
	}

	a.logger.Debug("Spectral analysis completed", logging.Fields{
		"samples":     n,
		"sample_rate": fs,
		"peak_x":      result.PeakFreqs[capture.AxisX],
		"peak_y":      result.PeakFreqs[capture.AxisY],
		"peak_z":      result.PeakFreqs[capture.AxisZ],
	})

	return result, nil
}

// axisSpectrum computes the first N/2 magnitude bins for one axis. The
// complex FFT output is discarded; only magnitudes survive.
func (a *Analyzer) axisSpectrum(signal, window []float64) []float64 {
	DetrendAndWindow(signal, window)

	bins := fft.FFTReal(signal)
	half := len(signal) / 2

	spectrum := make([]float64, half)
	for i := 0; i < half; i++ {
		spectrum[i] = cmplx.Abs(bins[i])
	}
	return spectrum
}

// MeasuredSampleRate derives the true sampling frequency from the
// capture timestamps: (N-1) divided by the sum of inter-sample deltas
// in seconds. The first sample is at elapsed 0, so the sum of deltas is
// the last timestamp.
func MeasuredSampleRate(rc *capture.RawCapture) float64 {
	n := rc.Len()
	if n < 2 {
		return 0
	}

	elapsed := float64(rc.Samples[n-1].ElapsedUS) * 1e-6
	if elapsed <= 0 {
		return 0
	}
	return float64(n-1) / elapsed
}

// PeakFrequency locates the largest magnitude bin, refines it with
// parabolic interpolation against its neighbors, and converts to Hz.
// fftSize is the full transform length N (twice the spectrum length).
// The result is clamped into [0, fs/2].
func PeakFrequency(spectrum []float64, fs float64, fftSize int) float64 {
	if len(spectrum) < 2 || fs <= 0 {
		return 0
	}

	// Bin 0 holds DC residue; the peak search starts at 1.
	peak := 1
	for i := 2; i < len(spectrum); i++ {
		if spectrum[i] > spectrum[peak] {
			peak = i
		}
	}

	pos := float64(peak)
	if peak > 0 && peak < len(spectrum)-1 {
		left := spectrum[peak-1]
		mid := spectrum[peak]
		right := spectrum[peak+1]
		denom := left - 2*mid + right
		if math.Abs(denom) > 1e-12 {
			pos += 0.5 * (left - right) / denom
		}
	}

	freq := pos * fs / float64(fftSize)
	return math.Min(math.Max(freq, 0), fs/2)
}
