// Package acquisition drives fixed-length tri-axial sampling runs
// through a cooperative tick loop. The controller is the only writer of
// the live capture buffer; callers must not read it while sampling.
package acquisition

import (
	"context"
	"fmt"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"

	"github.com/vibelab/vibrascope/pkg/capture"
)

// State is the acquisition state machine position
type State int

const (
	StateIdle State = iota
	StateArmed
	StateSampling
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateSampling:
		return "sampling"
	case StateDone:
		return "done"
	}
	return "unknown"
}

// TriggerMode selects how an armed controller starts sampling
type TriggerMode int

const (
	// TriggerSelf starts sampling immediately on arming
	TriggerSelf TriggerMode = iota
	// TriggerExternal waits for an analog reading above the threshold
	TriggerExternal
)

func (m TriggerMode) String() string {
	if m == TriggerExternal {
		return "external"
	}
	return "self"
}

// Sampler reads one tri-axial acceleration sample
type Sampler interface {
	Sample() (x, y, z float64, err error)
}

// TriggerSource provides the external analog trigger reading on a
// 0-4095 scale
type TriggerSource interface {
	Read() int
}

// TriggerFunc adapts a function to the TriggerSource interface
type TriggerFunc func() int

// Read implements TriggerSource
func (f TriggerFunc) Read() int { return f() }

// Config holds the fixed parameters of one acquisition run
type Config struct {
	// SampleCount is N, the exact number of samples per run
	SampleCount int
	// MinInterval gates sample acceptance; at most one sample is taken
	// per tick and never sooner than this after the previous one
	MinInterval time.Duration
	// Mode selects self- or external-trigger arming
	Mode TriggerMode
	// Threshold is the external trigger level (exclusive, 0-4095)
	Threshold int
}

// Controller runs the IDLE → ARMED → SAMPLING → DONE acquisition state
// machine. It advances at most one sample per Tick and completes
// deterministically after exactly SampleCount samples. An armed
// controller with an unsatisfied trigger stays armed indefinitely;
// there is no internal timeout.
type Controller struct {
	cfg     Config
	sampler Sampler
	trigger TriggerSource
	logger  logging.Logger

	// now is the monotonic source used for interval gating; wall is the
	// wall-clock chip read used once for the record start time. Both
	// default to time.Now and are swapped out in tests.
	now  func() time.Time
	wall func() time.Time

	state     State
	buffer    *capture.RawCapture
	firstAt   time.Time
	lastAt    time.Time
	startWall time.Time
}

// NewController creates an idle controller. trigger may be nil in
// self-trigger mode.
func NewController(cfg Config, sampler Sampler, trigger TriggerSource) *Controller {
	return &Controller{
		cfg:     cfg,
		sampler: sampler,
		trigger: trigger,
		now:     time.Now,
		wall:    time.Now,
		buffer:  capture.NewRawCapture(cfg.SampleCount),
		logger: logging.WithFields(logging.Fields{
			"component":    "acquisition_controller",
			"sample_count": cfg.SampleCount,
			"trigger_mode": cfg.Mode.String(),
		}),
	}
}

// SetTimeSource overrides the monotonic and wall-clock time sources
func (c *Controller) SetTimeSource(now, wall func() time.Time) {
	c.now = now
	c.wall = wall
}

// State returns the current state machine position
func (c *Controller) State() State {
	return c.state
}

// Arm moves the controller to ARMED. Valid from IDLE, DONE or ARMED
// (re-arm); arming during SAMPLING is rejected.
func (c *Controller) Arm() error {
	if c.state == StateSampling {
		return fmt.Errorf("cannot arm while sampling")
	}

	c.state = StateArmed
	c.buffer.Reset()
	c.logger.Debug("Controller armed")
	return nil
}

// Tick advances the state machine by at most one step: an armed
// controller checks its trigger, a sampling controller accepts at most
// one sample if the minimum interval has elapsed. Returns true once the
// run is complete.
func (c *Controller) Tick() (bool, error) {
	switch c.state {
	case StateArmed:
		if c.triggered() {
			c.state = StateSampling
			c.logger.Debug("Trigger satisfied, sampling started")
		}
	case StateSampling:
		if err := c.sampleOnce(); err != nil {
			return false, err
		}
		if c.buffer.Len() >= c.cfg.SampleCount {
			c.state = StateDone
			c.logger.Debug("Acquisition complete", logging.Fields{
				"samples":    c.buffer.Len(),
				"start_time": c.startWall.Format(time.RFC3339),
			})
		}
	}
	return c.state == StateDone, nil
}

// Run arms nothing and decides nothing: it just drives Tick until the
// run completes or ctx is canceled. The tick period is a fraction of
// the minimum sample interval so gating, not the loop, sets the rate.
func (c *Controller) Run(ctx context.Context) (*capture.RawCapture, error) {
	period := c.cfg.MinInterval / 4
	if period <= 0 {
		period = time.Millisecond
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			done, err := c.Tick()
			if err != nil {
				return nil, err
			}
			if done {
				return c.buffer, nil
			}
		}
	}
}

// Capture exposes the completed raw capture. Only meaningful in DONE.
func (c *Controller) Capture() *capture.RawCapture {
	return c.buffer
}

// StartTime returns the wall-clock time captured at the first sample of
// the current run
func (c *Controller) StartTime() time.Time {
	return c.startWall
}

func (c *Controller) triggered() bool {
	if c.cfg.Mode == TriggerSelf {
		return true
	}
	return c.trigger != nil && c.trigger.Read() > c.cfg.Threshold
}

// sampleOnce accepts one sample if the gate allows it. The first sample
// anchors both the elapsed-microseconds origin and the wall-clock start
// time; its elapsed value is always 0.
func (c *Controller) sampleOnce() error {
	now := c.now()

	if c.buffer.Len() > 0 && now.Sub(c.lastAt) < c.cfg.MinInterval {
		return nil
	}

	x, y, z, err := c.sampler.Sample()
	if err != nil {
		return fmt.Errorf("reading sample %d: %w", c.buffer.Len(), err)
	}

	var elapsed int64
	if c.buffer.Len() == 0 {
		c.firstAt = now
		c.startWall = c.wall()
	} else {
		elapsed = now.Sub(c.firstAt).Microseconds()
	}

	c.buffer.Append(capture.Sample{ElapsedUS: elapsed, X: x, Y: y, Z: z})
	c.lastAt = now
	return nil
}
