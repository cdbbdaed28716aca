package dto

import (
	"encoding/json"
	"time"
)

// IntruderInfo describes one stored intruder capture.
type IntruderInfo struct {
	Name      string    `json:"name"`
	Camera    int       `json:"camera"`
	Date      time.Time `json:"date"`
	TimeOfDay time.Time `json:"timeOfDay"`
}

// MarshalJSON customizes JSON output for IntruderInfo to format date and time-of-day.
func (i IntruderInfo) MarshalJSON() ([]byte, error) {
	type Alias IntruderInfo
	return json.Marshal(&struct {
		Date      string `json:"date"`
		TimeOfDay string `json:"timeOfDay"`
		Alias
	}{
		Date:      i.Date.Format("02-01-2006"),
		TimeOfDay: i.TimeOfDay.Format("15:04:05"),
		Alias:     (Alias)(i),
	})
}

// IntrudersData is the response of GET /api/intruders.
type IntrudersData struct {
	Intruders []IntruderInfo `json:"intruders"`
	Dir       string         `json:"dir"`
	Length    int            `json:"length"`
	// Distinct is the number of faces the running registry remembers.
	Distinct int `json:"distinct"`
}
