// Package app owns the session object: the explicit home of everything
// that would otherwise be ambient state (live capture buffer, store
// handle, current view index). Every core operation is a method on the
// session; there are no package-level singletons.
package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/google/uuid"

	"github.com/vibelab/vibrascope/configs"
	"github.com/vibelab/vibrascope/pkg/acquisition"
	"github.com/vibelab/vibrascope/pkg/capture"
	"github.com/vibelab/vibrascope/pkg/export"
	"github.com/vibelab/vibrascope/pkg/spectral"
	"github.com/vibelab/vibrascope/pkg/spectrogram"
	"github.com/vibelab/vibrascope/pkg/stats"
	"github.com/vibelab/vibrascope/pkg/store"
)

// Session wires the capture pipeline together for one process
// lifetime. Execution is single threaded; the acquisition state machine
// is what keeps the live buffer and record browsing from overlapping.
type Session struct {
	ID     string
	Config *configs.Config
	Logger logging.Logger
	Store  store.RecordStore
	Clock  Clock

	analyzer   *spectral.Analyzer
	builder    *spectrogram.Builder
	controller *acquisition.Controller

	lastRecord *capture.Record
	lastGrid   *spectrogram.Grid
	viewIndex  int
}

// NewSession builds a session from configuration. A store that fails to
// mount is reported once and replaced with a no-op sink; the session
// keeps working without persistence.
func NewSession(cfg *configs.Config) *Session {
	id := uuid.NewString()
	logger := logging.WithFields(logging.Fields{
		"component":  "session",
		"session_id": id,
	})

	var st store.RecordStore
	st, err := store.Open(cfg.StoreDir(), cfg.Acquisition.SampleCount, cfg.Store.Capacity)
	if err != nil {
		logger.Error(err, "Record store failed to mount, continuing with no-op sink", logging.Fields{
			"store_dir": cfg.StoreDir(),
		})
		st = store.NewNoop()
	}

	return &Session{
		ID:       id,
		Config:   cfg,
		Logger:   logger,
		Store:    st,
		Clock:    NewSystemClock(),
		analyzer: spectral.NewAnalyzer(),
		builder:  spectrogram.NewBuilder(),
	}
}

// RequestCapture arms a controller, runs one full acquisition, analyzes
// and persists the result, and returns the record with its freshly
// built spectrogram. Statistics are computed here, once, and persisted;
// they are never recomputed on load.
func (s *Session) RequestCapture(ctx context.Context, sampler acquisition.Sampler, trigger acquisition.TriggerSource) (*capture.Record, *spectrogram.Grid, error) {
	if s.sampling() {
		return nil, nil, fmt.Errorf("acquisition already in progress")
	}

	ctrl := acquisition.NewController(s.acquisitionConfig(), sampler, trigger)
	ctrl.SetTimeSource(time.Now, s.Clock.Now)
	s.controller = ctrl

	if err := ctrl.Arm(); err != nil {
		return nil, nil, err
	}

	raw, err := ctrl.Run(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("acquisition failed: %w", err)
	}

	analysis, err := s.analyzer.Analyze(raw)
	if err != nil {
		return nil, nil, err
	}

	rec := &capture.Record{
		StartTime:  ctrl.StartTime(),
		SampleRate: analysis.SampleRate,
		PeakFreqs:  analysis.PeakFreqs,
		Stats:      stats.ComputeAll(raw),
		Raw: [capture.Axes][]float64{
			raw.Axis(capture.AxisX),
			raw.Axis(capture.AxisY),
			raw.Axis(capture.AxisZ),
		},
		Spectra: analysis.Spectra,
	}

	slot, err := s.Store.Append(rec)
	if err != nil {
		return nil, nil, fmt.Errorf("persisting record: %w", err)
	}

	grid := s.builder.Build(raw)
	s.lastRecord = rec
	s.lastGrid = grid

	s.Logger.Info("Capture completed", logging.Fields{
		"slot":        slot,
		"sample_rate": rec.SampleRate,
		"peak_x":      rec.PeakFreqs[capture.AxisX],
		"peak_y":      rec.PeakFreqs[capture.AxisY],
		"peak_z":      rec.PeakFreqs[capture.AxisZ],
	})

	return rec, grid, nil
}

// LoadRecord reads a stored record by logical index (0 = oldest) and
// rebuilds its spectrogram. Persisted statistics and spectra are used
// as stored. Rejected while sampling: the live buffer has exactly one
// writer.
func (s *Session) LoadRecord(logical int) (*capture.Record, *spectrogram.Grid, error) {
	if s.sampling() {
		return nil, nil, fmt.Errorf("cannot browse records while sampling")
	}

	rec, err := s.Store.Read(logical)
	if err != nil {
		return nil, nil, err
	}

	grid := s.builder.Build(rec.AsRawCapture())
	s.viewIndex = logical
	return rec, grid, nil
}

// ViewIndex returns the logical index of the last browsed record
func (s *Session) ViewIndex() int {
	return s.viewIndex
}

// CurrentTime reads the wall clock
func (s *Session) CurrentTime() time.Time {
	return s.Clock.Now()
}

// SetTime updates the wall clock after range validation. Out-of-range
// values are rejected and the clock is left unchanged.
func (s *Session) SetTime(t time.Time) error {
	if t.Year() < 2000 || t.Year() > 2099 {
		return capture.NewValidationError("clock.set",
			fmt.Sprintf("year %d outside accepted range [2000, 2099]", t.Year()))
	}
	return s.Clock.Set(t)
}

// Export writes the bulk textual export of every stored record to w
func (s *Session) Export(w io.Writer) error {
	if s.sampling() {
		return fmt.Errorf("cannot export while sampling")
	}

	exporter := export.NewExporter(s.Store)
	exporter.SetClock(s.Clock.Now)
	return exporter.WriteAll(w)
}

// StoreStats reports record store occupancy
func (s *Session) StoreStats() store.Stats {
	return s.Store.Stats()
}

// DeleteAll wipes the record store. Idempotent.
func (s *Session) DeleteAll() error {
	s.viewIndex = 0
	return s.Store.DeleteAll()
}

// Close releases the store handle
func (s *Session) Close() error {
	return s.Store.Close()
}

func (s *Session) sampling() bool {
	return s.controller != nil && s.controller.State() == acquisition.StateSampling
}

func (s *Session) acquisitionConfig() acquisition.Config {
	mode := acquisition.TriggerSelf
	if s.Config.Acquisition.TriggerMode == "external" {
		mode = acquisition.TriggerExternal
	}
	return acquisition.Config{
		SampleCount: s.Config.Acquisition.SampleCount,
		MinInterval: s.Config.Acquisition.MinInterval,
		Mode:        mode,
		Threshold:   s.Config.Acquisition.TriggerThreshold,
	}
}
