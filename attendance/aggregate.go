/*
Package attendance aggregates login sessions into worked-time views.

PURPOSE:
  Takes the raw login/logout session log and derives per-employee worked
  durations, Present/HalfDay/Absent classification, and the day-level
  calendar heat-map. Also owns session recording (login suppression,
  logout resolution).

DURATION RULES:
  Closed session:  logout - login.
  Open session:    now - login, but only when the login's local day is
                   today. Open sessions from past days contribute zero: a
                   crashed or forgotten logout must not inflate historic
                   totals.

CLASSIFICATION:
  Per-employee day total: >= 8h Present, >= 4h HalfDay, else Absent.
  Day heat-map (summed across ALL employees): >= 8h Complete, > 0 Short.
  These are different aggregates and are never conflated.

SESSION RECORDING:
  At most one open session per employee id. A login while a session is
  already open is suppressed; a logout closes the most recent open session
  for the (name, id) pair and is a no-op when none is open.

All aggregation functions are pure over their inputs: calling them twice on
the same snapshot yields identical output.

SEE ALSO:
  - hrm/types.go: LoginSession
  - csv.go: Report export
*/
package attendance

import (
	"sort"
	"time"

	"github.com/gravity/hrm-engine/hrm"
)

// =============================================================================
// DURATION & CLASSIFICATION
// =============================================================================

type Status string

const (
	StatusPresent Status = "Present"
	StatusHalfDay Status = "Half Day"
	StatusAbsent  Status = "Absent"
)

const (
	presentThreshold = 8 * time.Hour
	halfDayThreshold = 4 * time.Hour
)

// SessionDuration computes one session's contribution at the given instant.
func SessionDuration(s hrm.LoginSession, now time.Time) time.Duration {
	login, err := time.Parse(time.RFC3339, s.Login)
	if err != nil {
		return 0
	}
	if s.Open() {
		if hrm.SameLocalDay(login, now) {
			return now.Sub(login)
		}
		return 0
	}
	logout, err := time.Parse(time.RFC3339, s.Logout)
	if err != nil {
		return 0
	}
	return logout.Sub(login)
}

// Classify maps a day's total worked duration onto an attendance status.
// Exactly 4h is HalfDay; exactly 8h is Present.
func Classify(total time.Duration) Status {
	switch {
	case total >= presentThreshold:
		return StatusPresent
	case total >= halfDayThreshold:
		return StatusHalfDay
	default:
		return StatusAbsent
	}
}

// =============================================================================
// GROUPING
// =============================================================================

// Group is one employee's sessions with their summed duration.
type Group struct {
	EmployeeID string
	Name       string
	Role       string
	Sessions   []hrm.LoginSession
	Total      time.Duration
}

// Status classifies the group's total.
func (g Group) Status() Status { return Classify(g.Total) }

// Aggregate groups sessions by employee id and sums durations. The result
// is ordered by employee id so repeated calls are byte-identical.
func Aggregate(sessions []hrm.LoginSession, now time.Time) []Group {
	byID := make(map[string]*Group)
	var order []string

	for _, s := range sessions {
		g, ok := byID[s.ID]
		if !ok {
			g = &Group{EmployeeID: s.ID, Name: s.Name, Role: s.Role}
			byID[s.ID] = g
			order = append(order, s.ID)
		}
		g.Sessions = append(g.Sessions, s)
		g.Total += SessionDuration(s, now)
	}

	sort.Strings(order)
	out := make([]Group, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out
}

// AggregateDay restricts the aggregation to sessions whose login falls on
// the given local day (YYYY-MM-DD).
func AggregateDay(sessions []hrm.LoginSession, day string, now time.Time) []Group {
	var filtered []hrm.LoginSession
	for _, s := range sessions {
		if login, err := time.Parse(time.RFC3339, s.Login); err == nil && hrm.LocalDay(login) == day {
			filtered = append(filtered, s)
		}
	}
	return Aggregate(filtered, now)
}

// =============================================================================
// DAY HEAT-MAP
// =============================================================================

type DayMark string

const (
	DayComplete DayMark = "complete"
	DayShort    DayMark = "short"
)

// DayHeat sums durations across all employees per local day. Days with at
// least 8 hours total are Complete, days with any positive total are Short,
// zero-duration days are absent from the map.
func DayHeat(sessions []hrm.LoginSession, now time.Time) map[string]DayMark {
	totals := make(map[string]time.Duration)
	for _, s := range sessions {
		login, err := time.Parse(time.RFC3339, s.Login)
		if err != nil {
			continue
		}
		totals[hrm.LocalDay(login)] += SessionDuration(s, now)
	}

	marks := make(map[string]DayMark)
	for day, total := range totals {
		switch {
		case total >= presentThreshold:
			marks[day] = DayComplete
		case total > 0:
			marks[day] = DayShort
		}
	}
	return marks
}

// Presence is one employee's Present-day count for a month.
type Presence struct {
	EmployeeID string
	Name       string
	Days       int
}

// MonthlyPresence counts, per employee id, the days in the given month
// ("2006-01") classified Present. Keyed by id so employees sharing a name
// never merge; sorted by id.
func MonthlyPresence(sessions []hrm.LoginSession, monthKey string, now time.Time) []Presence {
	// day -> employee id -> total
	type dayEmp struct{ day, id string }
	totals := make(map[dayEmp]time.Duration)
	names := make(map[string]string)

	for _, s := range sessions {
		login, err := time.Parse(time.RFC3339, s.Login)
		if err != nil {
			continue
		}
		day := hrm.LocalDay(login)
		if len(day) < len(monthKey) || day[:len(monthKey)] != monthKey {
			continue
		}
		totals[dayEmp{day: day, id: s.ID}] += SessionDuration(s, now)
		names[s.ID] = s.Name
	}

	counts := make(map[string]int)
	for key, total := range totals {
		if Classify(total) == StatusPresent {
			counts[key.id]++
		}
	}

	out := make([]Presence, 0, len(counts))
	for id, days := range counts {
		out = append(out, Presence{EmployeeID: id, Name: names[id], Days: days})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out
}

// =============================================================================
// SESSION RECORDING
// =============================================================================

// RecordLogin appends a new open session unless one is already open for the
// employee id. Returns the (possibly unchanged) log and whether a session
// was created.
func RecordLogin(sessions []hrm.LoginSession, name, id, role string, now time.Time) ([]hrm.LoginSession, bool) {
	for _, s := range sessions {
		if s.ID == id && s.Open() {
			return sessions, false
		}
	}
	return append(sessions, hrm.LoginSession{
		Name:  name,
		ID:    id,
		Role:  role,
		Login: now.UTC().Format(time.RFC3339),
	}), true
}

// RecordLogout closes the most recent open session for the (name, id) pair.
// Returns false when no open session exists; the log is untouched.
func RecordLogout(sessions []hrm.LoginSession, name, id string, now time.Time) bool {
	for i := len(sessions) - 1; i >= 0; i-- {
		if sessions[i].Name == name && sessions[i].ID == id && sessions[i].Open() {
			sessions[i].Logout = now.UTC().Format(time.RFC3339)
			return true
		}
	}
	return false
}
