package capture

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAxisExtraction(t *testing.T) {
	rc := NewRawCapture(2)
	rc.Append(Sample{ElapsedUS: 0, X: 1, Y: 2, Z: 3})
	rc.Append(Sample{ElapsedUS: 5000, X: 4, Y: 5, Z: 6})

	assert.Equal(t, []float64{1, 4}, rc.Axis(AxisX))
	assert.Equal(t, []float64{2, 5}, rc.Axis(AxisY))
	assert.Equal(t, []float64{3, 6}, rc.Axis(AxisZ))
}

func TestTotalMagnitude(t *testing.T) {
	rc := NewRawCapture(2)
	rc.Append(Sample{X: 3, Y: 4, Z: 0})
	rc.Append(Sample{X: 1, Y: 2, Z: 2})

	mag := rc.TotalMagnitude()
	require.Len(t, mag, 2)
	assert.InDelta(t, 5.0, mag[0], 1e-12)
	assert.InDelta(t, 3.0, mag[1], 1e-12)
}

func TestAsRawCaptureSynthesizesTimestamps(t *testing.T) {
	r := &Record{SampleRate: 200}
	for axis := 0; axis < Axes; axis++ {
		r.Raw[axis] = []float64{0.1, 0.2, 0.3, 0.4}
		r.Spectra[axis] = []float64{0, 0}
	}

	rc := r.AsRawCapture()
	require.Equal(t, 4, rc.Len())
	assert.EqualValues(t, 0, rc.Samples[0].ElapsedUS)
	assert.EqualValues(t, 5000, rc.Samples[1].ElapsedUS)
	assert.EqualValues(t, 15000, rc.Samples[3].ElapsedUS)
	assert.Equal(t, 0.2, rc.Samples[1].X)
}

func TestResetKeepsCapacity(t *testing.T) {
	rc := NewRawCapture(8)
	rc.Append(Sample{X: 1})
	require.Equal(t, 1, rc.Len())

	rc.Reset()
	assert.Equal(t, 0, rc.Len())
	assert.Equal(t, 8, cap(rc.Samples))
}

func TestErrorCodes(t *testing.T) {
	err := NewNotFoundError("store.read", "logical index 5 out of range")
	assert.True(t, IsNotFound(err))
	assert.False(t, IsValidation(err))
	assert.Contains(t, err.Error(), "store.read")

	wrapped := NewStorageIOError("store.append", "writing slot 2", errors.ErrUnsupported)
	assert.ErrorIs(t, wrapped, errors.ErrUnsupported)
}
