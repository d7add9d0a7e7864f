/*
csv.go - Attendance report export

The header row is the interchange contract:
  Employee Name,Employee ID,Login Time,Logout Time,Duration
*/
package attendance

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/gravity/hrm-engine/hrm"
)

// ExportHeader is the first row of the attendance export.
var ExportHeader = []string{"Employee Name", "Employee ID", "Login Time", "Logout Time", "Duration"}

// Export writes one row per session. Open sessions export an empty logout
// column and their duration as of "now" (zero for past days).
func Export(sessions []hrm.LoginSession, now time.Time, w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ExportHeader); err != nil {
		return err
	}

	for _, s := range sessions {
		record := []string{
			s.Name,
			s.ID,
			s.Login,
			s.Logout,
			FormatDuration(SessionDuration(s, now)),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// FormatDuration renders a duration as "Xh Ym" for report display.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
