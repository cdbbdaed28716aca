package model

import "time"

// AttendanceSession is one row of the daily ledger. ExitTime is nil while
// the session is open.
type AttendanceSession struct {
	Name        string
	Designation Designation
	EnterTime   time.Time
	ExitTime    *time.Time
}

// Open reports whether the session has no exit time yet.
func (s AttendanceSession) Open() bool {
	return s.ExitTime == nil
}

// Matches reports whether the session belongs to the given person.
func (s AttendanceSession) Matches(name string, d Designation) bool {
	return s.Name == name && s.Designation == d
}

// Layouts used by every ledger backend.
const (
	TimestampLayout = "2006-01-02 15:04:05"
	DayLayout       = "2006-01-02"
)

// Day truncates t to its calendar day in t's location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
