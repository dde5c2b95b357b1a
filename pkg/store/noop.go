package store

import (
	"github.com/RyanBlaney/latency-benchmark-common/logging"

	"github.com/vibelab/vibrascope/pkg/capture"
)

// noopStore is the fail-safe sink used when the real store cannot
// mount. Appends are accepted and discarded so the capture path keeps
// working; reads behave like an empty store.
type noopStore struct {
	logger logging.Logger
}

// NewNoop returns a store that discards every record. The mount failure
// is reported once by the caller; the sink itself stays quiet.
func NewNoop() RecordStore {
	return &noopStore{
		logger: logging.WithFields(logging.Fields{
			"component": "record_store",
			"mode":      "noop",
		}),
	}
}

func (n *noopStore) Append(r *capture.Record) (int, error) {
	n.logger.Debug("Discarding record, store unavailable")
	return 0, nil
}

func (n *noopStore) Read(logical int) (*capture.Record, error) {
	return nil, capture.NewNotFoundError("store.read", "store unavailable, no records")
}

func (n *noopStore) DeleteAll() error { return nil }

func (n *noopStore) Stats() Stats { return Stats{} }

func (n *noopStore) Count() int { return 0 }

func (n *noopStore) Close() error { return nil }
