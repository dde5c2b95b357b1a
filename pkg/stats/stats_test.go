package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vibelab/vibrascope/pkg/capture"
)

func TestComputeConstantSignal(t *testing.T) {
	signal := make([]float64, 1024)
	for i := range signal {
		signal[i] = 0.5
	}

	st := Compute(signal)
	assert.Equal(t, 0.5, st.Min)
	assert.Equal(t, 0.5, st.Max)
	assert.Equal(t, 0.5, st.Mean)
	assert.Equal(t, 0.0, st.SD)
}

func TestComputeKnownValues(t *testing.T) {
	// Population SD of {1, 2, 3, 4} is sqrt(5/4), not the sample
	// estimate sqrt(5/3).
	st := Compute([]float64{1, 2, 3, 4})

	assert.Equal(t, 1.0, st.Min)
	assert.Equal(t, 4.0, st.Max)
	assert.Equal(t, 2.5, st.Mean)
	assert.InDelta(t, math.Sqrt(1.25), st.SD, 1e-12)
}

func TestComputeEmptySignal(t *testing.T) {
	st := Compute(nil)
	assert.Equal(t, capture.AxisStats{}, st)
}

func TestComputeAll(t *testing.T) {
	rc := capture.NewRawCapture(4)
	for i := 0; i < 4; i++ {
		rc.Append(capture.Sample{
			ElapsedUS: int64(i) * 5000,
			X:         float64(i + 1),
			Y:         -1,
			Z:         0,
		})
	}

	all := ComputeAll(rc)
	assert.Equal(t, 2.5, all[capture.AxisX].Mean)
	assert.Equal(t, -1.0, all[capture.AxisY].Mean)
	assert.Equal(t, 0.0, all[capture.AxisY].SD)
	assert.Equal(t, 0.0, all[capture.AxisZ].Max)
}
