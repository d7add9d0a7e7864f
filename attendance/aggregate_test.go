package attendance_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravity/hrm-engine/attendance"
	"github.com/gravity/hrm-engine/hrm"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// Midday local-time instants keep the local-day logic stable regardless of
// the machine's timezone.
var now = time.Date(2026, time.June, 15, 18, 0, 0, 0, time.Local)

func session(id, name string, login, logout time.Time) hrm.LoginSession {
	s := hrm.LoginSession{
		ID:    id,
		Name:  name,
		Login: login.Format(time.RFC3339),
	}
	if !logout.IsZero() {
		s.Logout = logout.Format(time.RFC3339)
	}
	return s
}

func at(day int, hour int) time.Time {
	return time.Date(2026, time.June, day, hour, 0, 0, 0, time.Local)
}

// =============================================================================
// DURATION TESTS
// =============================================================================

func TestSessionDuration_Closed(t *testing.T) {
	s := session("E1", "Evan", at(10, 9), at(10, 17))
	assert.Equal(t, 8*time.Hour, attendance.SessionDuration(s, now))
}

func TestSessionDuration_OpenToday(t *testing.T) {
	// GIVEN: A session opened this morning, still open
	// WHEN: Measured at 18:00 the same day
	// THEN: It contributes now - login

	s := session("E1", "Evan", at(15, 9), time.Time{})
	assert.Equal(t, 9*time.Hour, attendance.SessionDuration(s, now))
}

func TestSessionDuration_OpenFromPastDayIsZero(t *testing.T) {
	// A forgotten logout must not inflate historic totals.
	s := session("E1", "Evan", at(10, 9), time.Time{})
	assert.Equal(t, time.Duration(0), attendance.SessionDuration(s, now))
}

func TestSessionDuration_UnparseableIsZero(t *testing.T) {
	s := hrm.LoginSession{ID: "E1", Login: "yesterday-ish"}
	assert.Equal(t, time.Duration(0), attendance.SessionDuration(s, now))
}

// =============================================================================
// CLASSIFICATION TESTS
// =============================================================================

func TestClassify_Boundaries(t *testing.T) {
	assert.Equal(t, attendance.StatusPresent, attendance.Classify(8*time.Hour))
	assert.Equal(t, attendance.StatusHalfDay, attendance.Classify(8*time.Hour-time.Minute))
	assert.Equal(t, attendance.StatusHalfDay, attendance.Classify(4*time.Hour))
	assert.Equal(t, attendance.StatusAbsent, attendance.Classify(4*time.Hour-time.Minute))
	assert.Equal(t, attendance.StatusAbsent, attendance.Classify(0))
}

// =============================================================================
// AGGREGATION TESTS
// =============================================================================

func TestAggregate_SumsPerEmployee(t *testing.T) {
	// GIVEN: Two sessions for one employee, one for another
	// THEN: Durations sum per employee, classification follows the sum

	sessions := []hrm.LoginSession{
		session("E1", "Evan", at(15, 9), at(15, 13)),  // 4h
		session("E1", "Evan", at(15, 14), at(15, 19)), // 5h
		session("E2", "Erin", at(15, 10), at(15, 13)), // 3h
	}

	groups := attendance.Aggregate(sessions, now)
	require.Len(t, groups, 2)

	assert.Equal(t, "E1", groups[0].EmployeeID)
	assert.Equal(t, 9*time.Hour, groups[0].Total)
	assert.Equal(t, attendance.StatusPresent, groups[0].Status())

	assert.Equal(t, "E2", groups[1].EmployeeID)
	assert.Equal(t, attendance.StatusAbsent, groups[1].Status())
}

func TestAggregate_Idempotent(t *testing.T) {
	sessions := []hrm.LoginSession{
		session("E2", "Erin", at(15, 10), at(15, 13)),
		session("E1", "Evan", at(15, 9), at(15, 17)),
	}
	first := attendance.Aggregate(sessions, now)
	second := attendance.Aggregate(sessions, now)
	assert.Equal(t, first, second)
}

func TestAggregateDay_FiltersByLoginDay(t *testing.T) {
	sessions := []hrm.LoginSession{
		session("E1", "Evan", at(14, 9), at(14, 17)),
		session("E1", "Evan", at(15, 9), at(15, 12)),
	}

	groups := attendance.AggregateDay(sessions, "2026-06-14", now)
	require.Len(t, groups, 1)
	assert.Equal(t, 8*time.Hour, groups[0].Total)
}

// =============================================================================
// HEAT-MAP TESTS
// =============================================================================

func TestDayHeat_SumsAcrossEmployees(t *testing.T) {
	// GIVEN: Two employees with 5h and 4h on the same day
	// THEN: The day is Complete (9h total) even though neither is Present

	sessions := []hrm.LoginSession{
		session("E1", "Evan", at(14, 9), at(14, 14)),  // 5h
		session("E2", "Erin", at(14, 10), at(14, 14)), // 4h
		session("E1", "Evan", at(13, 9), at(13, 10)),  // 1h
	}

	heat := attendance.DayHeat(sessions, now)
	assert.Equal(t, attendance.DayComplete, heat["2026-06-14"])
	assert.Equal(t, attendance.DayShort, heat["2026-06-13"])
	assert.NotContains(t, heat, "2026-06-12")
}

func TestMonthlyPresence_CountsPresentDays(t *testing.T) {
	sessions := []hrm.LoginSession{
		session("E1", "Evan", at(10, 9), at(10, 17)), // Present
		session("E1", "Evan", at(11, 9), at(11, 17)), // Present
		session("E1", "Evan", at(12, 9), at(12, 12)), // 3h, not Present
		session("E2", "Erin", at(10, 9), at(10, 18)), // Present
		{ID: "E1", Name: "Evan", Login: "2026-05-20T09:00:00Z", Logout: "2026-05-20T18:00:00Z"},
	}

	stats := attendance.MonthlyPresence(sessions, "2026-06", now)
	assert.Equal(t, []attendance.Presence{
		{EmployeeID: "E1", Name: "Evan", Days: 2},
		{EmployeeID: "E2", Name: "Erin", Days: 1},
	}, stats)
}

func TestMonthlyPresence_SharedNamesStaySeparate(t *testing.T) {
	// GIVEN: Two employees with the same display name
	// WHEN: Counting Present days for the month
	// THEN: Each id keeps its own tally

	sessions := []hrm.LoginSession{
		session("E1", "Evan", at(10, 9), at(10, 17)),
		session("E1", "Evan", at(11, 9), at(11, 17)),
		session("E3", "Evan", at(10, 9), at(10, 17)),
	}

	stats := attendance.MonthlyPresence(sessions, "2026-06", now)
	assert.Equal(t, []attendance.Presence{
		{EmployeeID: "E1", Name: "Evan", Days: 2},
		{EmployeeID: "E3", Name: "Evan", Days: 1},
	}, stats)
}

// =============================================================================
// SESSION RECORDING
// =============================================================================

func TestRecordLogin_SuppressedWhileOpen(t *testing.T) {
	// GIVEN: An open session for E1
	// WHEN: E1 logs in again
	// THEN: No new session is created

	sessions, created := attendance.RecordLogin(nil, "Evan", "E1", "Employee", at(15, 9))
	require.True(t, created)
	require.Len(t, sessions, 1)

	sessions, created = attendance.RecordLogin(sessions, "Evan", "E1", "Employee", at(15, 10))
	assert.False(t, created)
	assert.Len(t, sessions, 1)
}

func TestRecordLogin_AllowedAfterLogout(t *testing.T) {
	sessions, _ := attendance.RecordLogin(nil, "Evan", "E1", "Employee", at(15, 9))
	require.True(t, attendance.RecordLogout(sessions, "Evan", "E1", at(15, 12)))

	sessions, created := attendance.RecordLogin(sessions, "Evan", "E1", "Employee", at(15, 13))
	assert.True(t, created)
	assert.Len(t, sessions, 2)
}

func TestRecordLogout_ClosesMostRecentOpen(t *testing.T) {
	sessions := []hrm.LoginSession{
		session("E1", "Evan", at(14, 9), at(14, 17)),
		session("E1", "Evan", at(15, 9), time.Time{}),
	}

	require.True(t, attendance.RecordLogout(sessions, "Evan", "E1", at(15, 18)))
	assert.False(t, sessions[1].Open())
	assert.Equal(t, at(15, 18).UTC().Format(time.RFC3339), sessions[1].Logout)
}

func TestRecordLogout_NoOpenSession(t *testing.T) {
	sessions := []hrm.LoginSession{session("E1", "Evan", at(14, 9), at(14, 17))}
	assert.False(t, attendance.RecordLogout(sessions, "Evan", "E1", at(15, 18)))
}

// =============================================================================
// EXPORT
// =============================================================================

func TestExport_Contract(t *testing.T) {
	sessions := []hrm.LoginSession{session("E1", "Evan", at(15, 9), at(15, 17))}

	var buf bytes.Buffer
	require.NoError(t, attendance.Export(sessions, now, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(attendance.ExportHeader, ","), lines[0])
	assert.Contains(t, lines[1], "8h 0m")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "8h 30m", attendance.FormatDuration(8*time.Hour+30*time.Minute))
	assert.Equal(t, "0h 0m", attendance.FormatDuration(0))
}
