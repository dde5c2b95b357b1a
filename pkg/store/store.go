// Package store persists completed captures in a fixed-capacity
// circular log backed by two files: a slotted data file and a small
// cursor record rewritten after every append or wipe.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/RyanBlaney/latency-benchmark-common/logging"

	"github.com/vibelab/vibrascope/pkg/capture"
)

const (
	dataFileName   = "records.dat"
	cursorFileName = "cursor.dat"
)

// Stats describes store occupancy
type Stats struct {
	Count      int   `json:"count"`
	Capacity   int   `json:"capacity"`
	UsedBytes  int64 `json:"used_bytes"`
	TotalBytes int64 `json:"total_bytes"`
}

// RecordStore is the persistence surface the session depends on. The
// file-backed Store implements it; a no-op sink stands in when the
// backing directory fails to mount.
type RecordStore interface {
	Append(r *capture.Record) (slot int, err error)
	Read(logical int) (*capture.Record, error)
	DeleteAll() error
	Stats() Stats
	Count() int
	Close() error
}

// Store is the file-backed circular record log. A record occupies one
// fixed-size slot; the cursor file carries {count, oldest, newest} and
// is the only source of ring state across restarts. A missing,
// truncated or inconsistent cursor resets the store to empty.
type Store struct {
	dataPath    string
	cursorPath  string
	data        *os.File
	ring        *Ring
	sampleCount int
	slotSize    int64
	logger      logging.Logger
}

// Open mounts (or creates) a record store in dir. sampleCount is N,
// the fixed per-axis raw sample count every record must carry.
func Open(dir string, sampleCount, capacity int) (*Store, error) {
	if sampleCount < 2 || sampleCount%2 != 0 {
		return nil, capture.NewConfigError("store.open",
			fmt.Sprintf("sample count must be even and >= 2, got %d", sampleCount), nil)
	}
	if capacity < 1 {
		return nil, capture.NewConfigError("store.open",
			fmt.Sprintf("capacity must be >= 1, got %d", capacity), nil)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, capture.NewConfigError("store.open", "creating store directory", err)
	}

	dataPath := filepath.Join(dir, dataFileName)
	f, err := os.OpenFile(dataPath, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, capture.NewConfigError("store.open", "opening data file", err)
	}

	s := &Store{
		dataPath:    dataPath,
		cursorPath:  filepath.Join(dir, cursorFileName),
		data:        f,
		sampleCount: sampleCount,
		slotSize:    recordSize(sampleCount),
		logger: logging.WithFields(logging.Fields{
			"component": "record_store",
			"dir":       dir,
		}),
	}
	s.loadCursor(capacity)

	s.logger.Debug("Record store mounted", logging.Fields{
		"count":     s.ring.Count(),
		"capacity":  s.ring.Capacity(),
		"slot_size": s.slotSize,
	})

	return s, nil
}

// loadCursor restores ring state from the cursor file. Any defect in
// the cursor (missing file, short read, out-of-range or inconsistent
// values) resets the store to empty rather than failing the mount.
func (s *Store) loadCursor(capacity int) {
	buf, err := os.ReadFile(s.cursorPath)
	if err != nil {
		s.ring = NewRing(capacity)
		return
	}

	count, oldest, newest, ok := decodeCursor(buf)
	if ok {
		if ring, valid := RestoreRing(capacity, count, oldest, newest); valid {
			s.ring = ring
			return
		}
	}

	s.logger.Warn("Cursor record invalid, resetting store to empty", logging.Fields{
		"cursor_bytes": len(buf),
	})
	s.ring = NewRing(capacity)
}

// Append writes the record into the next slot, evicting the oldest
// entry when the ring is full, and returns the physical slot used. The
// cursor record is rewritten only after the data write succeeds, so a
// failed write never corrupts ring bookkeeping.
func (s *Store) Append(r *capture.Record) (int, error) {
	if err := s.checkShape(r); err != nil {
		return 0, err
	}

	buf := make([]byte, s.slotSize)
	encodeRecord(buf, r)

	slot := s.ring.NextSlot()
	if _, err := s.data.WriteAt(buf, int64(slot)*s.slotSize); err != nil {
		return 0, capture.NewStorageIOError("store.append",
			fmt.Sprintf("writing slot %d", slot), err)
	}

	_, evicted := s.ring.Append()
	if err := s.writeCursor(); err != nil {
		return 0, err
	}

	s.logger.Debug("Record appended", logging.Fields{
		"slot":    slot,
		"count":   s.ring.Count(),
		"evicted": evicted,
	})

	return slot, nil
}

// Read loads the record at a logical index: 0 is the oldest entry,
// Count()-1 the newest
func (s *Store) Read(logical int) (*capture.Record, error) {
	slot, err := s.ring.Slot(logical)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, s.slotSize)
	if _, err := s.data.ReadAt(buf, int64(slot)*s.slotSize); err != nil {
		return nil, capture.NewStorageIOError("store.read",
			fmt.Sprintf("reading slot %d", slot), err)
	}

	return decodeRecord(buf, s.sampleCount), nil
}

// DeleteAll empties the ring and removes all persisted records. Safe to
// call on an already-empty store.
func (s *Store) DeleteAll() error {
	s.ring.Reset()
	if err := s.data.Truncate(0); err != nil {
		return capture.NewStorageIOError("store.delete_all", "truncating data file", err)
	}
	if err := s.writeCursor(); err != nil {
		return err
	}

	s.logger.Debug("Record store wiped")
	return nil
}

// Stats reports store occupancy
func (s *Store) Stats() Stats {
	return Stats{
		Count:      s.ring.Count(),
		Capacity:   s.ring.Capacity(),
		UsedBytes:  int64(s.ring.Count()) * s.slotSize,
		TotalBytes: int64(s.ring.Capacity()) * s.slotSize,
	}
}

// Count returns the number of stored records
func (s *Store) Count() int {
	return s.ring.Count()
}

// Close releases the data file handle
func (s *Store) Close() error {
	return s.data.Close()
}

func (s *Store) writeCursor() error {
	if err := os.WriteFile(s.cursorPath, encodeCursor(s.ring), 0o644); err != nil {
		return capture.NewStorageIOError("store.cursor", "rewriting cursor record", err)
	}
	return nil
}

// checkShape rejects records whose slices do not match the slot layout
func (s *Store) checkShape(r *capture.Record) error {
	half := s.sampleCount / 2
	for axis := 0; axis < capture.Axes; axis++ {
		if len(r.Raw[axis]) != s.sampleCount {
			return capture.NewValidationError("store.append",
				fmt.Sprintf("axis %s has %d raw samples, store expects %d",
					capture.AxisNames[axis], len(r.Raw[axis]), s.sampleCount))
		}
		if len(r.Spectra[axis]) != half {
			return capture.NewValidationError("store.append",
				fmt.Sprintf("axis %s has %d spectrum bins, store expects %d",
					capture.AxisNames[axis], len(r.Spectra[axis]), half))
		}
	}
	return nil
}
