// Package memwatch monitors heap pressure and reports a throttle level so
// the driver can narrow its in-flight fetch concurrency under memory
// pressure. It never gates correctness — only how many fetches run at once.
package memwatch

import (
	"runtime"
	"runtime/debug"
	"sync"
)

// Level indicates memory pressure severity.
type Level int

const (
	// Normal indicates heap usage is within normal bounds.
	Normal Level = iota
	// Warning indicates heap usage is elevated.
	Warning
	// Critical indicates heap usage is critical.
	Critical
)

const (
	// emaAlpha is the smoothing factor applied to each new HeapAlloc sample.
	// A single GC cycle can swing HeapAlloc by tens of percentage points
	// between two Check calls; smoothing keeps one spike from flipping the
	// level and flipping concurrency back and forth with it.
	emaAlpha = 0.3

	// Entering a level requires crossing its upper threshold; leaving it
	// requires dropping below a lower one. The gap is the hysteresis band:
	// it stops usage hovering right at a boundary from toggling the level
	// (and the driver's concurrency) on every other sample.
	warningEnter, warningExit   = 75.0, 65.0
	criticalEnter, criticalExit = 90.0, 80.0
)

// Watcher monitors memory pressure and invokes a callback when the
// throttle level changes. Pressure is judged against an exponentially
// smoothed heap-usage percentage rather than the raw instantaneous sample,
// with separate enter/exit thresholds per level.
type Watcher struct {
	mu         sync.RWMutex
	limitBytes int64
	callback   func(level Level)
	lastLevel  Level
	emaPercent float64
	primed     bool
}

// New creates a Watcher with a soft heap limit of limitMB megabytes, set via
// runtime/debug.SetMemoryLimit. Pass 0 to disable limit enforcement; Check
// then always reports Normal.
func New(limitMB int64) *Watcher {
	limitBytes := limitMB * 1024 * 1024
	if limitBytes > 0 {
		debug.SetMemoryLimit(limitBytes)
	}
	return &Watcher{
		limitBytes: limitBytes,
		lastLevel:  Normal,
	}
}

// OnThrottle registers cb to be invoked whenever Check observes a level
// change. Replaces any previously registered callback.
func (w *Watcher) OnThrottle(cb func(level Level)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callback = cb
}

// SetLimit updates the soft heap limit in bytes. The smoothed average is
// reset so the new limit is judged against a fresh sample rather than an
// EMA computed under the old one.
func (w *Watcher) SetLimit(limitBytes int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.limitBytes = limitBytes
	w.primed = false
	if limitBytes > 0 {
		debug.SetMemoryLimit(limitBytes)
	}
}

// Check samples current heap usage, folds it into the running exponential
// moving average, and returns the smoothed usage percentage and throttle
// level. Call periodically (e.g. once per batch) from the driver.
func (w *Watcher) Check() (usedPercent float64, level Level) {
	w.mu.RLock()
	limitBytes := w.limitBytes
	w.mu.RUnlock()

	if limitBytes <= 0 {
		return 0, Normal
	}

	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	sample := (float64(stats.HeapAlloc) / float64(limitBytes)) * 100

	w.mu.Lock()
	if !w.primed {
		w.emaPercent = sample
		w.primed = true
	} else {
		w.emaPercent = emaAlpha*sample + (1-emaAlpha)*w.emaPercent
	}
	usedPercent = w.emaPercent
	level = nextLevel(w.lastLevel, usedPercent)

	changed := level != w.lastLevel
	w.lastLevel = level
	callback := w.callback
	w.mu.Unlock()

	if changed && callback != nil {
		callback(level)
	}

	return usedPercent, level
}

// nextLevel applies hysteresis: moving to a higher level takes the upper
// (enter) threshold, falling back to a lower level takes the lower (exit)
// threshold, and anywhere in between the current level holds.
func nextLevel(current Level, percent float64) Level {
	switch current {
	case Critical:
		if percent < criticalExit {
			if percent < warningExit {
				return Normal
			}
			return Warning
		}
		return Critical
	case Warning:
		if percent >= criticalEnter {
			return Critical
		}
		if percent < warningExit {
			return Normal
		}
		return Warning
	default: // Normal
		if percent >= criticalEnter {
			return Critical
		}
		if percent >= warningEnter {
			return Warning
		}
		return Normal
	}
}
