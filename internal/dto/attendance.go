package dto

import (
	"encoding/json"
	"time"

	"campusguard/internal/model"
)

// AttendanceRow is one session of the daily ledger.
type AttendanceRow struct {
	Name        string     `json:"name"`
	Designation string     `json:"designation"`
	EnterTime   time.Time  `json:"enterTime"`
	ExitTime    *time.Time `json:"exitTime"`
}

// MarshalJSON formats times the way the ledger files store them; an open
// session has a null exit time.
func (a AttendanceRow) MarshalJSON() ([]byte, error) {
	type Alias AttendanceRow
	var exit *string
	if a.ExitTime != nil {
		s := a.ExitTime.Format(model.TimestampLayout)
		exit = &s
	}
	return json.Marshal(&struct {
		EnterTime string  `json:"enterTime"`
		ExitTime  *string `json:"exitTime"`
		Alias
	}{
		EnterTime: a.EnterTime.Format(model.TimestampLayout),
		ExitTime:  exit,
		Alias:     (Alias)(a),
	})
}

// AttendanceData is the response of GET /api/attendance.
type AttendanceData struct {
	Date   string          `json:"date"`
	Rows   []AttendanceRow `json:"rows"`
	Open   int             `json:"open"`
	Length int             `json:"length"`
}

// NewAttendanceData converts one ledger partition.
func NewAttendanceData(day time.Time, sessions []model.AttendanceSession) AttendanceData {
	data := AttendanceData{Date: day.Format(model.DayLayout), Rows: make([]AttendanceRow, 0, len(sessions))}
	for _, s := range sessions {
		data.Rows = append(data.Rows, AttendanceRow{
			Name:        s.Name,
			Designation: s.Designation.String(),
			EnterTime:   s.EnterTime,
			ExitTime:    s.ExitTime,
		})
		if s.Open() {
			data.Open++
		}
	}
	data.Length = len(data.Rows)
	return data
}
