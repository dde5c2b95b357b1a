// Package spectrogram builds a transient time-frequency grid from the
// total-magnitude signal of a raw capture. Grids are rebuilt on every
// load and never persisted.
package spectrogram

import (
	"math"
	"math/cmplx"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/vibelab/vibrascope/pkg/capture"
	"github.com/vibelab/vibrascope/pkg/spectral"
)

const (
	// SegmentLength is the fixed analysis window length L
	SegmentLength = 128
	// HopLength is the stride between segment starts (50% overlap)
	HopLength = SegmentLength / 2
	// MaxSegments bounds the number of time segments S
	MaxSegments = 17
	// Bins is the number of frequency bins kept per segment
	Bins = SegmentLength / 2

	// magnitudeFloor keeps log10 defined for silent bins
	magnitudeFloor = 1e-9
	// maxSpanDecades limits the displayed dynamic range to 60 dB
	maxSpanDecades = 3.0
	// minSpanDecades widens a flat grid so normalization stays defined
	minSpanDecades = 0.1
)

// Grid is a normalizable time-frequency grid of log10 magnitudes with a
// clamped display range. Cells is indexed [segment][bin].
type Grid struct {
	Cells [][Bins]float64 `json:"cells"`
	Min   float64         `json:"min"`
	Max   float64         `json:"max"`
}

// Segments returns the number of time segments in the grid
func (g *Grid) Segments() int {
	return len(g.Cells)
}

// SpanDecades returns the clamped display span in decades
func (g *Grid) SpanDecades() float64 {
	return g.Max - g.Min
}

// Normalized maps every cell into [0,1] against the clamped range.
// Values below the raised floor clip to 0.
func (g *Grid) Normalized() [][]float64 {
	span := g.Max - g.Min
	out := make([][]float64, len(g.Cells))
	for s, row := range g.Cells {
		out[s] = make([]float64, Bins)
		for b, v := range row {
			norm := (v - g.Min) / span
			out[s][b] = math.Min(math.Max(norm, 0), 1)
		}
	}
	return out
}

// Builder computes spectrogram grids. One builder can be reused across
// captures; the FFT plan and window are allocated once.
type Builder struct {
	fft    *fourier.FFT
	window []float64
	logger logging.Logger
}

// NewBuilder creates a new spectrogram builder
func NewBuilder() *Builder {
	return &Builder{
		fft:    fourier.NewFFT(SegmentLength),
		window: spectral.Hamming(SegmentLength),
		logger: logging.WithFields(logging.Fields{
			"component": "spectrogram_builder",
		}),
	}
}

// Build segments the capture's total-magnitude signal into Hamming
// windowed blocks of SegmentLength with HopLength stride, transforms
// each, and collects log10 magnitudes. The returned grid always has at
// least one segment: when fewer than SegmentLength samples exist, a
// single all-zero segment with range [0,1] stands in.
func (b *Builder) Build(rc *capture.RawCapture) *Grid {
	signal := rc.TotalMagnitude()

	grid := &Grid{
		Min: math.Inf(1),
		Max: math.Inf(-1),
	}

	segment := make([]float64, SegmentLength)
	for start := 0; start+SegmentLength <= len(signal) && len(grid.Cells) < MaxSegments; start += HopLength {
		copy(segment, signal[start:start+SegmentLength])
		spectral.DetrendAndWindow(segment, b.window)

		coeffs := b.fft.Coefficients(nil, segment)

		var row [Bins]float64
		for bin := 0; bin < Bins; bin++ {
			mag := cmplx.Abs(coeffs[bin])
			if mag < magnitudeFloor {
				mag = magnitudeFloor
			}
			cell := math.Log10(mag)
			row[bin] = cell

			if cell < grid.Min {
				grid.Min = cell
			}
			if cell > grid.Max {
				grid.Max = cell
			}
		}
		grid.Cells = append(grid.Cells, row)
	}

	if len(grid.Cells) == 0 {
		grid.Cells = append(grid.Cells, [Bins]float64{})
		grid.Min, grid.Max = 0, 1
		b.logger.Debug("Capture too short for segmentation, returning degenerate grid", logging.Fields{
			"samples": len(signal),
		})
		return grid
	}

	b.clampRange(grid)

	b.logger.Debug("Spectrogram built", logging.Fields{
		"segments": len(grid.Cells),
		"min":      grid.Min,
		"max":      grid.Max,
	})

	return grid
}

// clampRange enforces the display-range invariants: a flat grid is
// widened to minSpanDecades, and a span beyond maxSpanDecades has its
// floor raised so only the top 60 dB remain visible.
func (b *Builder) clampRange(g *Grid) {
	span := g.Max - g.Min
	switch {
	case span < 1e-6:
		g.Max = g.Min + minSpanDecades
	case span > maxSpanDecades:
		g.Min = g.Max - maxSpanDecades
	}
}
