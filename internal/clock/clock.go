package clock

import "time"

// Clock supplies nanosecond timestamps relative to a fixed run epoch.
// One clock instance backs one compilation run; every span endpoint in
// the engine comes from the same instance.
type Clock interface {
	// Elapsed returns nanoseconds since the run epoch.
	Elapsed() int64

	// Epoch returns the wall-clock instant the run started.
	Epoch() time.Time
}

// Monotonic is the production clock. The epoch is captured once at
// construction and never moves.
type Monotonic struct {
	start time.Time
}

// Start creates a Monotonic clock with the epoch set to now.
func Start() *Monotonic {
	return &Monotonic{start: time.Now()}
}

// Elapsed returns nanoseconds since the epoch.
func (m *Monotonic) Elapsed() int64 {
	return time.Since(m.start).Nanoseconds()
}

// Epoch returns the captured start instant.
func (m *Monotonic) Epoch() time.Time {
	return m.start
}

// Manual is a clock driven by the caller. Replay uses it to restore the
// timestamps recorded in a capture stream; tests use it to pin exact
// nanosecond values.
type Manual struct {
	epoch time.Time
	now   int64
}

// NewManual creates a Manual clock at elapsed 0 with the given epoch.
func NewManual(epoch time.Time) *Manual {
	return &Manual{epoch: epoch}
}

// Set moves the clock to an absolute elapsed value. Moving backwards is
// ignored so the clock stays monotonic even on damaged input.
func (m *Manual) Set(ns int64) {
	if ns > m.now {
		m.now = ns
	}
}

// Advance moves the clock forward by d nanoseconds.
func (m *Manual) Advance(d int64) {
	if d > 0 {
		m.now += d
	}
}

// Elapsed returns the current elapsed value.
func (m *Manual) Elapsed() int64 {
	return m.now
}

// Epoch returns the configured epoch.
func (m *Manual) Epoch() time.Time {
	return m.epoch
}
