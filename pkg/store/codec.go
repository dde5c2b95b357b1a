package store

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/vibelab/vibrascope/pkg/capture"
)

// On-disk record layout, little-endian, no length framing:
//
//	int64   start time (Unix nanoseconds)
//	float64 measured sampling frequency
//	float64 ×3 peak frequencies (X, Y, Z)
//	float64 ×12 statistics (min, max, mean, sd per axis)
//	float64 ×3N raw samples (axis-major)
//	float64 ×3(N/2) spectrum magnitudes (axis-major)
//
// All sizes follow from the sample count, so a slot is addressed by
// offset arithmetic alone.
const headerSize = 8 + 8 + capture.Axes*8 + capture.Axes*4*8

// cursorSize is the fixed byte length of the cursor record
// {count, oldestSlot, newestSlot}.
const cursorSize = 3 * 4

func recordSize(sampleCount int) int64 {
	raw := capture.Axes * sampleCount * 8
	spectra := capture.Axes * (sampleCount / 2) * 8
	return int64(headerSize + raw + spectra)
}

func encodeRecord(buf []byte, r *capture.Record) {
	off := 0
	put := func(v float64) {
		binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(v))
		off += 8
	}

	binary.LittleEndian.PutUint64(buf[off:], uint64(r.StartTime.UnixNano()))
	off += 8
	put(r.SampleRate)

	for axis := 0; axis < capture.Axes; axis++ {
		put(r.PeakFreqs[axis])
	}
	for axis := 0; axis < capture.Axes; axis++ {
		st := r.Stats[axis]
		put(st.Min)
		put(st.Max)
		put(st.Mean)
		put(st.SD)
	}
	for axis := 0; axis < capture.Axes; axis++ {
		for _, v := range r.Raw[axis] {
			put(v)
		}
	}
	for axis := 0; axis < capture.Axes; axis++ {
		for _, v := range r.Spectra[axis] {
			put(v)
		}
	}
}

func decodeRecord(buf []byte, sampleCount int) *capture.Record {
	off := 0
	get := func() float64 {
		v := math.Float64frombits(binary.LittleEndian.Uint64(buf[off:]))
		off += 8
		return v
	}

	r := &capture.Record{}
	r.StartTime = time.Unix(0, int64(binary.LittleEndian.Uint64(buf[off:])))
	off += 8
	r.SampleRate = get()

	for axis := 0; axis < capture.Axes; axis++ {
		r.PeakFreqs[axis] = get()
	}
	for axis := 0; axis < capture.Axes; axis++ {
		r.Stats[axis] = capture.AxisStats{
			Min:  get(),
			Max:  get(),
			Mean: get(),
			SD:   get(),
		}
	}
	for axis := 0; axis < capture.Axes; axis++ {
		r.Raw[axis] = make([]float64, sampleCount)
		for i := range r.Raw[axis] {
			r.Raw[axis][i] = get()
		}
	}
	half := sampleCount / 2
	for axis := 0; axis < capture.Axes; axis++ {
		r.Spectra[axis] = make([]float64, half)
		for i := range r.Spectra[axis] {
			r.Spectra[axis][i] = get()
		}
	}
	return r
}

func encodeCursor(r *Ring) []byte {
	buf := make([]byte, cursorSize)
	binary.LittleEndian.PutUint32(buf[0:], uint32(r.Count()))
	binary.LittleEndian.PutUint32(buf[4:], uint32(r.Oldest()))
	binary.LittleEndian.PutUint32(buf[8:], uint32(r.Newest()))
	return buf
}

func decodeCursor(buf []byte) (count, oldest, newest int, ok bool) {
	if len(buf) < cursorSize {
		return 0, 0, 0, false
	}
	count = int(int32(binary.LittleEndian.Uint32(buf[0:])))
	oldest = int(int32(binary.LittleEndian.Uint32(buf[4:])))
	newest = int(int32(binary.LittleEndian.Uint32(buf[8:])))
	return count, oldest, newest, true
}
