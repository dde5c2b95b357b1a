// Package export renders the record store as the bulk textual dump
// consumed by the export collaborator.
package export

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"

	"github.com/vibelab/vibrascope/pkg/capture"
	"github.com/vibelab/vibrascope/pkg/store"
)

// TimeLayout is the timestamp format used in export headers
const TimeLayout = "2006-01-02 15:04:05"

// Exporter streams every stored record through an io.Writer in the
// bulk export format: a BEGIN/END envelope with a record count and
// export time, then one block per record with metadata, raw time data
// and the half spectrum.
type Exporter struct {
	store  store.RecordStore
	now    func() time.Time
	logger logging.Logger
}

// NewExporter creates an exporter over the given store
func NewExporter(st store.RecordStore) *Exporter {
	return &Exporter{
		store: st,
		now:   time.Now,
		logger: logging.WithFields(logging.Fields{
			"component": "exporter",
		}),
	}
}

// SetClock overrides the export-time source
func (e *Exporter) SetClock(now func() time.Time) {
	e.now = now
}

// WriteAll writes the complete export to w, oldest record first
func (e *Exporter) WriteAll(w io.Writer) error {
	count := e.store.Count()

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "=== BEGIN EXPORT ===\n")
	fmt.Fprintf(bw, "RECORD_COUNT:%d\n", count)
	fmt.Fprintf(bw, "EXPORT_TIME:%s\n", e.now().Format(TimeLayout))

	for i := 0; i < count; i++ {
		rec, err := e.store.Read(i)
		if err != nil {
			return fmt.Errorf("reading record %d for export: %w", i, err)
		}
		writeRecord(bw, i, rec)
	}

	fmt.Fprintf(bw, "=== END EXPORT ===\n")
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flushing export: %w", err)
	}

	e.logger.Debug("Bulk export written", logging.Fields{
		"records": count,
	})
	return nil
}

func writeRecord(w io.Writer, index int, r *capture.Record) {
	fmt.Fprintf(w, "=== RECORD %d ===\n", index)
	fmt.Fprintf(w, "TIMESTAMP:%s\n", r.StartTime.Format(TimeLayout))
	fmt.Fprintf(w, "SAMPLING_FREQ:%.2f\n", r.SampleRate)
	fmt.Fprintf(w, "PEAK_FREQ:%.2f,%.2f,%.2f\n",
		r.PeakFreqs[capture.AxisX], r.PeakFreqs[capture.AxisY], r.PeakFreqs[capture.AxisZ])

	fmt.Fprintf(w, "TIME_DATA:\n")
	n := r.SampleCount()
	for i := 0; i < n; i++ {
		fmt.Fprintf(w, "%.5f,%.5f,%.5f\n",
			r.Raw[capture.AxisX][i], r.Raw[capture.AxisY][i], r.Raw[capture.AxisZ][i])
	}

	// Bin i sits at i·Fs/N; only the first N/2 bins are stored.
	fmt.Fprintf(w, "SPECTRUM:\n")
	binWidth := r.SampleRate / float64(n)
	for i := 0; i < r.BinCount(); i++ {
		fmt.Fprintf(w, "%.2f,%.5f,%.5f,%.5f\n",
			float64(i)*binWidth,
			r.Spectra[capture.AxisX][i], r.Spectra[capture.AxisY][i], r.Spectra[capture.AxisZ][i])
	}
}
