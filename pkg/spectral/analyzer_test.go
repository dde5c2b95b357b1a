package spectral

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibelab/vibrascope/pkg/capture"
)

// sineCapture builds an N-sample capture with uniform 5ms spacing
// (nominal 200 Hz) carrying a sinusoid at freq on the X axis only
func sineCapture(n int, freq float64) *capture.RawCapture {
	rc := capture.NewRawCapture(n)
	for i := 0; i < n; i++ {
		t := float64(i) * 0.005
		rc.Append(capture.Sample{
			ElapsedUS: int64(i) * 5000,
			X:         math.Sin(2 * math.Pi * freq * t),
		})
	}
	return rc
}

func TestMeasuredSampleRateUniformDeltas(t *testing.T) {
	rc := sineCapture(1024, 20)

	fs := MeasuredSampleRate(rc)
	assert.InDelta(t, 200.0, fs, 1e-9, "uniform 5ms spacing measures 200 Hz")
}

func TestMeasuredSampleRateDegenerate(t *testing.T) {
	assert.Equal(t, 0.0, MeasuredSampleRate(capture.NewRawCapture(0)))

	rc := capture.NewRawCapture(2)
	rc.Append(capture.Sample{ElapsedUS: 0})
	assert.Equal(t, 0.0, MeasuredSampleRate(rc), "single sample has no rate")
}

func TestAnalyzePeakWithinBinWidth(t *testing.T) {
	const (
		n    = 1024
		freq = 20.0
	)
	rc := sineCapture(n, freq)

	analysis, err := NewAnalyzer().Analyze(rc)
	require.NoError(t, err)

	binWidth := analysis.SampleRate / float64(n)
	assert.InDelta(t, freq, analysis.PeakFreqs[capture.AxisX], binWidth,
		"interpolated peak within one bin width of the true frequency")
}

func TestAnalyzeSpectrumShape(t *testing.T) {
	rc := sineCapture(1024, 20)

	analysis, err := NewAnalyzer().Analyze(rc)
	require.NoError(t, err)

	for axis := 0; axis < capture.Axes; axis++ {
		require.Len(t, analysis.Spectra[axis], 512, "half spectrum per axis")
		for i, mag := range analysis.Spectra[axis] {
			assert.GreaterOrEqual(t, mag, 0.0, "bin %d on axis %d", i, axis)
		}
		assert.GreaterOrEqual(t, analysis.PeakFreqs[axis], 0.0)
		assert.LessOrEqual(t, analysis.PeakFreqs[axis], analysis.SampleRate/2)
	}
}

func TestAnalyzeRemovesDCOffset(t *testing.T) {
	n := 512
	rc := capture.NewRawCapture(n)
	for i := 0; i < n; i++ {
		t := float64(i) * 0.005
		rc.Append(capture.Sample{
			ElapsedUS: int64(i) * 5000,
			X:         5.0 + math.Sin(2*math.Pi*20*t),
		})
	}

	analysis, err := NewAnalyzer().Analyze(rc)
	require.NoError(t, err)

	// A large constant offset must not move the detected peak to DC.
	assert.InDelta(t, 20.0, analysis.PeakFreqs[capture.AxisX], 0.5)
}

func TestAnalyzeTooShort(t *testing.T) {
	rc := capture.NewRawCapture(1)
	rc.Append(capture.Sample{})

	_, err := NewAnalyzer().Analyze(rc)
	require.Error(t, err)
}

func TestPeakFrequencyParabolicRefinement(t *testing.T) {
	// Asymmetric neighbors pull the refined position toward the larger
	// one: peak bin 5, left 0.5, right 0.9.
	spectrum := make([]float64, 16)
	spectrum[4] = 0.5
	spectrum[5] = 1.0
	spectrum[6] = 0.9

	freq := PeakFrequency(spectrum, 32, 32)
	assert.Greater(t, freq, 5.0, "refined above the integer bin")
	assert.Less(t, freq, 6.0)
}

func TestHammingEndpoints(t *testing.T) {
	w := Hamming(64)
	require.Len(t, w, 64)
	assert.InDelta(t, 0.08, w[0], 1e-12)
	assert.InDelta(t, 0.08, w[63], 1e-12)
	assert.InDelta(t, 1.0, w[31], 0.01, "near unity mid-window")
}
