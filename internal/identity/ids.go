package identity

import (
	"fmt"
	"time"
)

// Registrar-issued ids are sequential within a period: student ids are
// "yymmNNN" (e.g. 2501001), teacher ids are "yyyy-NNNN" starting at 0100
// (e.g. 2025-0100). The counter resets when the period rolls over.

// NextStudentID derives the next student id from the current maximum.
// last is the highest existing id, or empty when none exist yet.
func NextStudentID(last string, now time.Time) string {
	ym := now.Format("0601")
	if len(last) < 7 || last[:4] != ym {
		return ym + "001"
	}
	var n int
	if _, err := fmt.Sscanf(last[4:], "%d", &n); err != nil {
		return ym + "001"
	}
	return fmt.Sprintf("%s%03d", ym, n+1)
}

// NextTeacherID derives the next teacher id from the current maximum.
func NextTeacherID(last string, now time.Time) string {
	year := now.Format("2006")
	if len(last) < 9 || last[:4] != year {
		return year + "-0100"
	}
	var n int
	if _, err := fmt.Sscanf(last[5:], "%d", &n); err != nil {
		return year + "-0100"
	}
	return fmt.Sprintf("%s-%04d", year, n+1)
}
