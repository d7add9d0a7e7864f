/*
counter.go - The live counting sheet

PURPOSE:
  Holds the in-progress sheet between saves. Hardware buttons and keyboard
  repeat can fire faster than a human can count, so each cell enforces a
  200ms cooldown: an increment inside the window is dropped, not queued.

  The counter also tracks when counting started (last reset or load); that
  instant anchors the session duration recorded on save.
*/
package traffic

import (
	"sync"
	"time"
)

// InputCooldown is the minimum interval between accepted increments of the
// same cell.
const InputCooldown = 200 * time.Millisecond

type cellKey struct {
	direction string
	class     VehicleClass
}

// Counter is the live sheet. Safe for concurrent use.
type Counter struct {
	mu        sync.Mutex
	rows      []Row
	startedAt time.Time
	lastInput map[cellKey]time.Time
}

// NewCounter returns a zeroed sheet started at the given instant.
func NewCounter(now time.Time) *Counter {
	return &Counter{
		rows:      NewRows(),
		startedAt: now,
		lastInput: make(map[cellKey]time.Time),
	}
}

// Load replaces the sheet with previously persisted rows and restarts the
// session clock. Unknown directions in the input are dropped.
func (c *Counter) Load(rows []Row, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fresh := NewRows()
	for _, r := range rows {
		for i := range fresh {
			if fresh[i].Direction == r.Direction {
				counts := r
				fresh[i] = counts
			}
		}
	}
	c.rows = fresh
	c.startedAt = now
	c.lastInput = make(map[cellKey]time.Time)
}

// Increment bumps one cell, honoring the per-cell cooldown. Returns false
// when the input was dropped (cooldown window or unknown cell).
func (c *Counter) Increment(direction string, class VehicleClass, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cellKey{direction: direction, class: class}
	if last, ok := c.lastInput[key]; ok && now.Sub(last) < InputCooldown {
		return false
	}

	for i := range c.rows {
		if c.rows[i].Direction != direction {
			continue
		}
		cell := c.rows[i].cell(class)
		if cell == nil {
			return false
		}
		*cell++
		c.lastInput[key] = now
		return true
	}
	return false
}

// Rows returns a copy of the current sheet.
func (c *Counter) Rows() []Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Row(nil), c.rows...)
}

// Total sums the current sheet.
func (c *Counter) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Total(c.rows)
}

// StartedAt returns when the current counting session began.
func (c *Counter) StartedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startedAt
}

// Reset zeroes the sheet and restarts the session clock. History is not
// touched; persistence of the reset is the caller's concern.
func (c *Counter) Reset(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rows = NewRows()
	c.startedAt = now
	c.lastInput = make(map[cellKey]time.Time)
}
