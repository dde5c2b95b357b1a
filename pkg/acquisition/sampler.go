package acquisition

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"strconv"

	"github.com/vibelab/vibrascope/pkg/capture"
)

// SineSampler synthesizes a tri-axial sinusoid at a nominal sample
// rate, optionally with additive noise. Used for bring-up and tests
// where no accelerometer is attached.
type SineSampler struct {
	Freq  [capture.Axes]float64
	Amp   [capture.Axes]float64
	Rate  float64
	Noise float64

	n   int
	rng *rand.Rand
}

// NewSineSampler creates a synthetic sampler with the given per-axis
// frequencies and amplitudes, advancing at the nominal rate
func NewSineSampler(rate float64, freq, amp [capture.Axes]float64) *SineSampler {
	return &SineSampler{
		Freq: freq,
		Amp:  amp,
		Rate: rate,
		rng:  rand.New(rand.NewSource(1)),
	}
}

// Sample implements Sampler
func (s *SineSampler) Sample() (float64, float64, float64, error) {
	t := float64(s.n) / s.Rate
	s.n++

	var v [capture.Axes]float64
	for axis := 0; axis < capture.Axes; axis++ {
		v[axis] = s.Amp[axis] * math.Sin(2*math.Pi*s.Freq[axis]*t)
		if s.Noise > 0 {
			v[axis] += s.Noise * (s.rng.Float64()*2 - 1)
		}
	}
	return v[capture.AxisX], v[capture.AxisY], v[capture.AxisZ], nil
}

// ReplaySampler feeds previously exported samples back into the
// controller from CSV rows of the form "ax,ay,az". The whole file is
// read at construction; Sample fails once the rows run out.
type ReplaySampler struct {
	rows [][capture.Axes]float64
	next int
}

// NewReplaySampler parses CSV sample rows from r
func NewReplaySampler(r io.Reader) (*ReplaySampler, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = capture.Axes

	var rows [][capture.Axes]float64
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing replay row %d: %w", len(rows)+1, err)
		}

		var row [capture.Axes]float64
		for i, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("parsing replay row %d field %d: %w", len(rows)+1, i+1, err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("replay input contains no samples")
	}
	return &ReplaySampler{rows: rows}, nil
}

// Remaining returns the number of unread rows
func (s *ReplaySampler) Remaining() int {
	return len(s.rows) - s.next
}

// Sample implements Sampler
func (s *ReplaySampler) Sample() (float64, float64, float64, error) {
	if s.next >= len(s.rows) {
		return 0, 0, 0, fmt.Errorf("replay input exhausted after %d samples", len(s.rows))
	}
	row := s.rows[s.next]
	s.next++
	return row[capture.AxisX], row[capture.AxisY], row[capture.AxisZ], nil
}
