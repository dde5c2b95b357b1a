// Package transport encodes captures as the asterisk-delimited frame
// stream spoken over a continuous link. The grammar per record is: one
// timestamp frame, a sample clear marker followed by per-sample frames,
// a spectrum clear marker followed by per-bin frames, then three peak
// frames.
package transport

import (
	"fmt"
	"io"
	"time"

	"github.com/vibelab/vibrascope/pkg/capture"
)

// TimeLayout is the timestamp format carried in *T...* frames
const TimeLayout = "2006-01-02 15:04:05"

// Clear markers for the sample and spectrum streams
const (
	SampleClear   = "*KC*"
	SpectrumClear = "*HC*"
)

// TimestampFrame encodes the wall-clock frame *T<yyyy-MM-dd HH:mm:ss>*
func TimestampFrame(t time.Time) string {
	return "*T" + t.Format(TimeLayout) + "*"
}

// SampleFrame encodes one tri-axial sample at time t seconds:
// *KX<t>Y<ax>,X<t>Y<ay>,X<t>Y<az>*
func SampleFrame(t, ax, ay, az float64) string {
	return fmt.Sprintf("*KX%.5fY%.5f,X%.5fY%.5f,X%.5fY%.5f*", t, ax, t, ay, t, az)
}

// SpectrumFrame encodes one frequency bin:
// *HX<freq>Y<magX>,X<freq>Y<magY>,X<freq>Y<magZ>*
func SpectrumFrame(freq, mx, my, mz float64) string {
	return fmt.Sprintf("*HX%.2fY%.5f,X%.2fY%.5f,X%.2fY%.5f*", freq, mx, freq, my, freq, mz)
}

// PeakFrame encodes one per-axis peak frequency: *X<peak>*, *Y<peak>*
// or *Z<peak>*
func PeakFrame(axis int, peak float64) string {
	return fmt.Sprintf("*%s%.2f*", capture.AxisNames[axis], peak)
}

// Encoder writes complete record streams to an underlying writer.
// Frames are emitted back to back; the asterisk delimiters are the only
// framing.
type Encoder struct {
	w io.Writer
}

// NewEncoder creates an encoder over w
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// EncodeRecord streams one persisted record: timestamp, cleared sample
// stream, cleared spectrum stream, then the three peaks. Sample times
// are reconstructed from the measured rate.
func (e *Encoder) EncodeRecord(r *capture.Record) error {
	n := r.SampleCount()
	dt := 0.0
	if r.SampleRate > 0 {
		dt = 1.0 / r.SampleRate
	}

	if err := e.emit(TimestampFrame(r.StartTime)); err != nil {
		return err
	}

	if err := e.emit(SampleClear); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		frame := SampleFrame(float64(i)*dt,
			r.Raw[capture.AxisX][i], r.Raw[capture.AxisY][i], r.Raw[capture.AxisZ][i])
		if err := e.emit(frame); err != nil {
			return err
		}
	}

	if err := e.emit(SpectrumClear); err != nil {
		return err
	}
	binWidth := r.SampleRate / float64(n)
	for i := 0; i < r.BinCount(); i++ {
		frame := SpectrumFrame(float64(i)*binWidth,
			r.Spectra[capture.AxisX][i], r.Spectra[capture.AxisY][i], r.Spectra[capture.AxisZ][i])
		if err := e.emit(frame); err != nil {
			return err
		}
	}

	for axis := 0; axis < capture.Axes; axis++ {
		if err := e.emit(PeakFrame(axis, r.PeakFreqs[axis])); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) emit(frame string) error {
	if _, err := io.WriteString(e.w, frame); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}
