package traffic_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravity/hrm-engine/hrm"
	"github.com/gravity/hrm-engine/traffic"
)

var t0 = time.Date(2026, time.June, 15, 8, 0, 0, 0, time.UTC)

// =============================================================================
// SHEET TESTS
// =============================================================================

func TestNewRows_FixedOrder(t *testing.T) {
	rows := traffic.NewRows()
	require.Len(t, rows, 6)
	for i, d := range traffic.Directions {
		assert.Equal(t, d, rows[i].Direction)
		assert.Equal(t, 0, rows[i].Total())
	}
}

func TestPeakDirection_FirstWinsTies(t *testing.T) {
	// GIVEN: Two directions with the same total
	// THEN: The earlier one in sheet order is the peak

	rows := traffic.NewRows()
	rows[1].Car = 5 // Left
	rows[3].Bus = 5 // Right

	assert.Equal(t, "Left", traffic.PeakDirection(rows))
}

func TestPeakDirection_EmptySheet(t *testing.T) {
	assert.Equal(t, "N/A", traffic.PeakDirection(nil))
	// An all-zero sheet still names a direction: zero beats the initial -1.
	assert.Equal(t, traffic.Directions[0], traffic.PeakDirection(traffic.NewRows()))
}

// =============================================================================
// COUNTER TESTS
// =============================================================================

func TestCounter_IncrementAndTotal(t *testing.T) {
	c := traffic.NewCounter(t0)

	assert.True(t, c.Increment("Left", traffic.ClassCar, t0))
	assert.True(t, c.Increment("Left", traffic.ClassBus, t0.Add(time.Second)))
	assert.True(t, c.Increment("Thru", traffic.ClassCar, t0.Add(2*time.Second)))

	assert.Equal(t, 3, c.Total())
	rows := c.Rows()
	assert.Equal(t, 1, rows[1].Car)
	assert.Equal(t, 1, rows[1].Bus)
}

func TestCounter_CooldownDropsRapidRepeats(t *testing.T) {
	// GIVEN: Two increments of the same cell 50ms apart
	// THEN: The second is dropped, a different cell is unaffected

	c := traffic.NewCounter(t0)

	assert.True(t, c.Increment("Left", traffic.ClassCar, t0))
	assert.False(t, c.Increment("Left", traffic.ClassCar, t0.Add(50*time.Millisecond)))
	assert.True(t, c.Increment("Left", traffic.ClassLGV, t0.Add(50*time.Millisecond)))
	assert.True(t, c.Increment("Left", traffic.ClassCar, t0.Add(traffic.InputCooldown)))

	assert.Equal(t, 3, c.Total())
}

func TestCounter_UnknownCellRejected(t *testing.T) {
	c := traffic.NewCounter(t0)
	assert.False(t, c.Increment("Sideways", traffic.ClassCar, t0))
	assert.False(t, c.Increment("Left", traffic.VehicleClass("hovercraft"), t0))
	assert.Equal(t, 0, c.Total())
}

func TestCounter_ResetClearsSheetAndClock(t *testing.T) {
	c := traffic.NewCounter(t0)
	c.Increment("Left", traffic.ClassCar, t0)

	later := t0.Add(time.Hour)
	c.Reset(later)

	assert.Equal(t, 0, c.Total())
	assert.Equal(t, later, c.StartedAt())
}

func TestCounter_LoadRestoresByDirection(t *testing.T) {
	c := traffic.NewCounter(t0)
	c.Load([]traffic.Row{{Direction: "Thru", Car: 7}}, t0.Add(time.Minute))

	rows := c.Rows()
	require.Len(t, rows, 6)
	assert.Equal(t, 7, rows[2].Car)
	assert.Equal(t, 7, c.Total())
	assert.Equal(t, t0.Add(time.Minute), c.StartedAt())
}

// =============================================================================
// HISTORY TESTS
// =============================================================================

func TestRecordSession_OverwritesBreakdown(t *testing.T) {
	// GIVEN: A day already saved with an older snapshot
	// WHEN: Saving again with new counts
	// THEN: The breakdown and total reflect only the latest sheet

	h := make(traffic.History)
	user := hrm.Identity{ID: "E1", Name: "Evan", Role: "Employee"}

	rows := traffic.NewRows()
	rows[0].Car = 3
	h.RecordSession("2026-06-15", rows, user, t0, t0.Add(time.Hour))

	rows[0].Car = 10
	entry := h.RecordSession("2026-06-15", rows, user, t0.Add(time.Hour), t0.Add(2*time.Hour))

	assert.Equal(t, 10, entry.Total)
	assert.Equal(t, 10, entry.Breakdown[0].Car)
	assert.Len(t, entry.Contributors["E1"].Sessions, 2, "sessions accumulate, the snapshot does not")
}

func TestRecordSession_SaveIsIdempotentOnTotals(t *testing.T) {
	h := make(traffic.History)
	user := hrm.Identity{ID: "E1", Name: "Evan"}

	rows := traffic.NewRows()
	rows[0].Car = 4

	first := h.RecordSession("2026-06-15", rows, user, t0, t0.Add(time.Hour))
	again := h.RecordSession("2026-06-15", rows, user, t0.Add(time.Hour), t0.Add(time.Hour))

	assert.Equal(t, first.Total, again.Total, "saving the same sheet twice must not change the total")
}

func TestRecordSession_DurationHours(t *testing.T) {
	h := make(traffic.History)
	entry := h.RecordSession("2026-06-15", traffic.NewRows(),
		hrm.Identity{ID: "E1", Name: "Evan"}, t0, t0.Add(90*time.Minute))

	require.Len(t, entry.Contributors["E1"].Sessions, 1)
	assert.InDelta(t, 1.5, entry.Contributors["E1"].Sessions[0].Duration, 1e-9)
}

// =============================================================================
// MONTHLY SUMMARY TESTS
// =============================================================================

func TestSummarize_MonthRollup(t *testing.T) {
	h := make(traffic.History)
	evan := hrm.Identity{ID: "E1", Name: "Evan"}
	erin := hrm.Identity{ID: "E2", Name: "Erin"}

	rows := traffic.NewRows()
	rows[2].Car = 8 // Thru

	h.RecordSession("2026-06-14", rows, evan, t0, t0.Add(time.Hour))
	h.RecordSession("2026-06-15", rows, evan, t0, t0.Add(2*time.Hour))
	h.RecordSession("2026-06-15", rows, evan, t0.Add(3*time.Hour), t0.Add(4*time.Hour))
	h.RecordSession("2026-06-15", rows, erin, t0, t0.Add(time.Hour))
	h.RecordSession("2026-05-01", rows, evan, t0, t0.Add(time.Hour))

	summary := traffic.Summarize(h, "2026-06")

	require.Len(t, summary.Days, 2)
	assert.Equal(t, "2026-06-14", summary.Days[0].Date)
	assert.Equal(t, "2026-06-15", summary.Days[1].Date)
	assert.Equal(t, "Thru", summary.Days[1].Peak)

	evanStats := summary.Days[1].Contributors["E1"]
	assert.Equal(t, 2, evanStats.Count)
	assert.InDelta(t, 1.0, evanStats.MinHours, 1e-9)
	assert.InDelta(t, 1.5, evanStats.AvgHours, 1e-9)
	assert.InDelta(t, 2.0, evanStats.MaxHours, 1e-9)

	// UserDays counts distinct days, not sessions.
	assert.Equal(t, 2, summary.UserDays["Evan"])
	assert.Equal(t, 1, summary.UserDays["Erin"])
}

func TestSummarize_EmptyMonth(t *testing.T) {
	summary := traffic.Summarize(make(traffic.History), "2026-06")
	assert.Empty(t, summary.Days)
	assert.Empty(t, summary.UserDays)
}
