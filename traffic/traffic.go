/*
Package traffic implements the manual traffic-counting instrument and its
aggregation engine.

PURPOSE:
  A counting sheet is six fixed directions by eight vehicle classes, all
  non-negative integers incremented one at a time. Saving merges the sheet
  into the day's historical entry; the aggregation side derives daily and
  monthly totals, peak direction, and per-contributor session statistics.

SAVE SEMANTICS:
  total        = sum of every cell across all rows and classes
  breakdown    = overwritten by the save (a save replaces the day's
                 snapshot, it does not accumulate across saves)
  contributors = a session record {start, end, duration-hours} is appended
                 under the acting user; duration is wall-clock time since
                 the counter was last reset or loaded

PEAK DIRECTION:
  Argmax over rows of the per-row class sum, strict greater-than so ties
  resolve to the first row in sheet order. "N/A" for an empty day.

RESET:
  Clears the live sheet and the live storage key only. Already-saved
  historical days are never altered retroactively.

SEE ALSO:
  - counter.go: The live sheet with input cooldown
  - store.go: Persistence of the live sheet and history
*/
package traffic

import (
	"sort"
	"strings"
	"time"

	"github.com/gravity/hrm-engine/hrm"
)

// =============================================================================
// SHEET MODEL
// =============================================================================

// Directions is the fixed sheet order. Peak-direction ties resolve to the
// earliest entry here.
var Directions = []string{"Bear Left", "Left", "Thru", "Right", "Bear Right", "U-turn"}

type VehicleClass string

const (
	ClassCar  VehicleClass = "car"
	ClassLGV  VehicleClass = "lgv"
	ClassOGV1 VehicleClass = "ogv1"
	ClassOGV2 VehicleClass = "ogv2"
	ClassBus  VehicleClass = "bus"
	ClassMC   VehicleClass = "mc"
	ClassPC   VehicleClass = "pc"
	ClassPeds VehicleClass = "peds"
)

// Classes is the fixed column order of the sheet.
var Classes = []VehicleClass{ClassCar, ClassLGV, ClassOGV1, ClassOGV2, ClassBus, ClassMC, ClassPC, ClassPeds}

// Row is one direction's counters.
type Row struct {
	Direction string `json:"direction"`
	Car       int    `json:"car"`
	LGV       int    `json:"lgv"`
	OGV1      int    `json:"ogv1"`
	OGV2      int    `json:"ogv2"`
	Bus       int    `json:"bus"`
	MC        int    `json:"mc"`
	PC        int    `json:"pc"`
	Peds      int    `json:"peds"`
}

// Total sums the row's vehicle-class counters.
func (r Row) Total() int {
	return r.Car + r.LGV + r.OGV1 + r.OGV2 + r.Bus + r.MC + r.PC + r.Peds
}

func (r *Row) cell(class VehicleClass) *int {
	switch class {
	case ClassCar:
		return &r.Car
	case ClassLGV:
		return &r.LGV
	case ClassOGV1:
		return &r.OGV1
	case ClassOGV2:
		return &r.OGV2
	case ClassBus:
		return &r.Bus
	case ClassMC:
		return &r.MC
	case ClassPC:
		return &r.PC
	case ClassPeds:
		return &r.Peds
	default:
		return nil
	}
}

// NewRows returns a zeroed sheet in the fixed direction order.
func NewRows() []Row {
	rows := make([]Row, len(Directions))
	for i, d := range Directions {
		rows[i] = Row{Direction: d}
	}
	return rows
}

// Total sums every cell across all rows.
func Total(rows []Row) int {
	total := 0
	for _, r := range rows {
		total += r.Total()
	}
	return total
}

// PeakDirection returns the direction with the highest row total, first
// occurrence winning ties, "N/A" when there are no rows.
func PeakDirection(rows []Row) string {
	peak := "N/A"
	best := -1
	for _, r := range rows {
		if t := r.Total(); t > best {
			best = t
			peak = r.Direction
		}
	}
	return peak
}

// =============================================================================
// DAILY HISTORY
// =============================================================================

// Session is one counting interval between a reset/load and a save.
type Session struct {
	StartTime string  `json:"startTime"`
	EndTime   string  `json:"endTime"`
	Duration  float64 `json:"duration"` // hours
}

type Contributor struct {
	Name     string    `json:"name"`
	Role     string    `json:"role"`
	Sessions []Session `json:"sessions"`
}

// DailyEntry is one saved day.
type DailyEntry struct {
	Total        int                     `json:"total"`
	Breakdown    []Row                   `json:"breakdown"`
	Contributors map[string]*Contributor `json:"contributors"`
}

// History maps date (YYYY-MM-DD) to the day's entry.
type History map[string]*DailyEntry

// RecordSession merges a save into the history for the given day: the
// breakdown snapshot is overwritten, the total recomputed from the sheet,
// and a session appended under the acting user.
func (h History) RecordSession(day string, rows []Row, user hrm.Identity, start, end time.Time) *DailyEntry {
	entry, ok := h[day]
	if !ok {
		entry = &DailyEntry{Contributors: make(map[string]*Contributor)}
		h[day] = entry
	}
	if entry.Contributors == nil {
		entry.Contributors = make(map[string]*Contributor)
	}

	entry.Total = Total(rows)
	entry.Breakdown = append([]Row(nil), rows...)

	c, ok := entry.Contributors[user.ID]
	if !ok {
		c = &Contributor{Name: user.Name, Role: user.Role}
		entry.Contributors[user.ID] = c
	}
	c.Sessions = append(c.Sessions, Session{
		StartTime: start.UTC().Format(time.RFC3339),
		EndTime:   end.UTC().Format(time.RFC3339),
		Duration:  end.Sub(start).Hours(),
	})

	return entry
}

// =============================================================================
// MONTHLY SUMMARY
// =============================================================================

// SessionStats summarizes one contributor's sessions on one day.
type SessionStats struct {
	Name     string
	Count    int
	MinHours float64
	AvgHours float64
	MaxHours float64
}

// DaySummary is the aggregation of one saved day.
type DaySummary struct {
	Date         string
	Total        int
	Peak         string
	Contributors map[string]SessionStats // by contributor id
}

// MonthSummary is the monthly roll-up.
type MonthSummary struct {
	Days []DaySummary
	// UserDays counts distinct days each contributor (by name) saved at
	// least one session: a presence tally, not summed duration.
	UserDays map[string]int
}

// Summarize aggregates the history for one month ("2006-01"). Pure over
// the snapshot; days are ordered by date.
func Summarize(h History, monthKey string) MonthSummary {
	summary := MonthSummary{UserDays: make(map[string]int)}

	var days []string
	for day := range h {
		if strings.HasPrefix(day, monthKey) {
			days = append(days, day)
		}
	}
	sort.Strings(days)

	for _, day := range days {
		entry := h[day]
		ds := DaySummary{
			Date:         day,
			Total:        entry.Total,
			Peak:         PeakDirection(entry.Breakdown),
			Contributors: make(map[string]SessionStats),
		}

		for id, c := range entry.Contributors {
			if len(c.Sessions) == 0 {
				continue
			}
			stats := SessionStats{Name: c.Name, Count: len(c.Sessions)}
			var sum float64
			for i, s := range c.Sessions {
				if i == 0 || s.Duration < stats.MinHours {
					stats.MinHours = s.Duration
				}
				if s.Duration > stats.MaxHours {
					stats.MaxHours = s.Duration
				}
				sum += s.Duration
			}
			stats.AvgHours = sum / float64(len(c.Sessions))
			ds.Contributors[id] = stats
			summary.UserDays[c.Name]++
		}

		summary.Days = append(summary.Days, ds)
	}

	return summary
}
