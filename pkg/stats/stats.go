// Package stats computes per-axis descriptive statistics for a raw
// capture. Both the persist path and any display path call the same
// functions; there is no second implementation anywhere.
package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/vibelab/vibrascope/pkg/capture"
)

// Compute returns {min, max, mean, sd} for one signal. SD is the
// population standard deviation (second moment about the mean, divide
// by N), not the sample estimate.
func Compute(signal []float64) capture.AxisStats {
	if len(signal) == 0 {
		return capture.AxisStats{}
	}

	mean := stat.Mean(signal, nil)
	variance := stat.MomentAbout(2, signal, mean, nil)

	return capture.AxisStats{
		Min:  floats.Min(signal),
		Max:  floats.Max(signal),
		Mean: mean,
		SD:   math.Sqrt(variance),
	}
}

// ComputeAll computes statistics for all three axes of a raw capture
func ComputeAll(rc *capture.RawCapture) [capture.Axes]capture.AxisStats {
	var out [capture.Axes]capture.AxisStats
	for axis := 0; axis < capture.Axes; axis++ {
		out[axis] = Compute(rc.Axis(axis))
	}
	return out
}
