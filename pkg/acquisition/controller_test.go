package acquisition

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances only when told, so tick timing is deterministic
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func testConfig(n int) Config {
	return Config{
		SampleCount: n,
		MinInterval: 5 * time.Millisecond,
		Mode:        TriggerSelf,
		Threshold:   4000,
	}
}

// countingSampler returns its call count as the X value
type countingSampler struct {
	calls int
}

func (s *countingSampler) Sample() (float64, float64, float64, error) {
	s.calls++
	return float64(s.calls), 0.25, -0.25, nil
}

// runToCompletion drives the controller with the clock advancing step
// per tick until DONE
func runToCompletion(t *testing.T, c *Controller, clock *fakeClock, step time.Duration, maxTicks int) {
	t.Helper()
	for i := 0; i < maxTicks; i++ {
		done, err := c.Tick()
		require.NoError(t, err)
		if done {
			return
		}
		clock.advance(step)
	}
	t.Fatalf("controller did not complete within %d ticks (state %s)", maxTicks, c.State())
}

func TestSelfTriggerRunCompletes(t *testing.T) {
	clock := newFakeClock()
	sampler := &countingSampler{}
	c := NewController(testConfig(32), sampler, nil)
	c.SetTimeSource(clock.now, clock.now)

	assert.Equal(t, StateIdle, c.State())
	require.NoError(t, c.Arm())
	assert.Equal(t, StateArmed, c.State())

	runToCompletion(t, c, clock, 5*time.Millisecond, 100)

	assert.Equal(t, StateDone, c.State())
	assert.Equal(t, 32, c.Capture().Len(), "exactly N samples")
	assert.Equal(t, 32, sampler.calls, "one sampler read per accepted sample")
}

func TestElapsedTimestampsInvariant(t *testing.T) {
	clock := newFakeClock()
	c := NewController(testConfig(16), &countingSampler{}, nil)
	c.SetTimeSource(clock.now, clock.now)

	require.NoError(t, c.Arm())
	runToCompletion(t, c, clock, 5*time.Millisecond, 100)

	samples := c.Capture().Samples
	assert.EqualValues(t, 0, samples[0].ElapsedUS, "first sample anchors elapsed at 0")
	for i := 1; i < len(samples); i++ {
		assert.GreaterOrEqual(t, samples[i].ElapsedUS, samples[i-1].ElapsedUS)
	}
	assert.EqualValues(t, 15*5000, samples[15].ElapsedUS, "uniform 5ms spacing")
}

func TestStartTimeCapturedAtFirstSample(t *testing.T) {
	clock := newFakeClock()
	wall := newFakeClock()
	wall.t = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	c := NewController(testConfig(8), &countingSampler{}, nil)
	c.SetTimeSource(clock.now, wall.now)

	require.NoError(t, c.Arm())
	// Trigger tick, then the first sampling tick takes the anchor.
	_, err := c.Tick()
	require.NoError(t, err)
	_, err = c.Tick()
	require.NoError(t, err)

	anchor := c.StartTime()
	assert.Equal(t, wall.t, anchor)

	// Later wall-clock movement must not disturb the recorded start.
	wall.advance(time.Hour)
	runToCompletion(t, c, clock, 5*time.Millisecond, 100)
	assert.Equal(t, anchor, c.StartTime())
}

func TestMinIntervalGating(t *testing.T) {
	clock := newFakeClock()
	sampler := &countingSampler{}
	c := NewController(testConfig(4), sampler, nil)
	c.SetTimeSource(clock.now, clock.now)

	require.NoError(t, c.Arm())
	_, err := c.Tick() // trigger
	require.NoError(t, err)
	_, err = c.Tick() // first sample, immediate
	require.NoError(t, err)
	require.Equal(t, 1, sampler.calls)

	// Ticks inside the 5ms window are rejected by the gate.
	for i := 0; i < 4; i++ {
		clock.advance(time.Millisecond)
		_, err = c.Tick()
		require.NoError(t, err)
	}
	assert.Equal(t, 1, sampler.calls, "no sample accepted before the interval elapses")

	clock.advance(time.Millisecond)
	_, err = c.Tick()
	require.NoError(t, err)
	assert.Equal(t, 2, sampler.calls)
}

func TestExternalTriggerGatesArming(t *testing.T) {
	clock := newFakeClock()
	level := 0
	cfg := testConfig(4)
	cfg.Mode = TriggerExternal

	c := NewController(cfg, &countingSampler{}, TriggerFunc(func() int { return level }))
	c.SetTimeSource(clock.now, clock.now)
	require.NoError(t, c.Arm())

	// Below threshold the controller stays armed indefinitely.
	for i := 0; i < 50; i++ {
		done, err := c.Tick()
		require.NoError(t, err)
		assert.False(t, done)
		clock.advance(5 * time.Millisecond)
	}
	assert.Equal(t, StateArmed, c.State())

	level = 4095
	_, err := c.Tick()
	require.NoError(t, err)
	assert.Equal(t, StateSampling, c.State())

	runToCompletion(t, c, clock, 5*time.Millisecond, 100)
	assert.Equal(t, 4, c.Capture().Len())
}

func TestExternalTriggerThresholdIsExclusive(t *testing.T) {
	cfg := testConfig(4)
	cfg.Mode = TriggerExternal

	c := NewController(cfg, &countingSampler{}, TriggerFunc(func() int { return cfg.Threshold }))
	require.NoError(t, c.Arm())

	_, err := c.Tick()
	require.NoError(t, err)
	assert.Equal(t, StateArmed, c.State(), "reading equal to threshold does not trigger")
}

func TestArmRejectedWhileSampling(t *testing.T) {
	clock := newFakeClock()
	c := NewController(testConfig(8), &countingSampler{}, nil)
	c.SetTimeSource(clock.now, clock.now)

	require.NoError(t, c.Arm())
	_, err := c.Tick()
	require.NoError(t, err)
	require.Equal(t, StateSampling, c.State())

	err = c.Arm()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sampling")
}

func TestRearmAfterDone(t *testing.T) {
	clock := newFakeClock()
	c := NewController(testConfig(4), &countingSampler{}, nil)
	c.SetTimeSource(clock.now, clock.now)

	require.NoError(t, c.Arm())
	runToCompletion(t, c, clock, 5*time.Millisecond, 100)
	require.Equal(t, StateDone, c.State())

	require.NoError(t, c.Arm())
	assert.Equal(t, StateArmed, c.State())
	assert.Equal(t, 0, c.Capture().Len(), "re-arm resets the live buffer")
}

func TestReplaySamplerExhaustion(t *testing.T) {
	s, err := NewReplaySampler(strings.NewReader("0.1,0.2,0.3\n0.4,0.5,0.6\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Remaining())

	x, y, z, err := s.Sample()
	require.NoError(t, err)
	assert.Equal(t, 0.1, x)
	assert.Equal(t, 0.2, y)
	assert.Equal(t, 0.3, z)

	_, _, _, err = s.Sample()
	require.NoError(t, err)

	_, _, _, err = s.Sample()
	require.Error(t, err, "exhausted replay input fails")
}

func TestReplaySamplerRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"wrong field count", "1,2\n"},
		{"non-numeric", "a,b,c\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReplaySampler(strings.NewReader(tt.input))
			require.Error(t, err)
		})
	}
}

func TestSineSamplerDeterministic(t *testing.T) {
	freq := [3]float64{20, 10, 5}
	amp := [3]float64{1, 1, 1}

	a := NewSineSampler(200, freq, amp)
	b := NewSineSampler(200, freq, amp)

	for i := 0; i < 10; i++ {
		ax, ay, az, err := a.Sample()
		require.NoError(t, err)
		bx, by, bz, err := b.Sample()
		require.NoError(t, err)
		assert.Equal(t, ax, bx)
		assert.Equal(t, ay, by)
		assert.Equal(t, az, bz)
	}
}
