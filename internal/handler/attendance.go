package handler

import (
	"fmt"
	"net/http"
	"time"

	"campusguard/internal/dto"
	"campusguard/internal/logger"
	"campusguard/internal/model"
	"campusguard/internal/service/attendance"
)

// AttendanceHandler handles GET /api/attendance?date=YYYY-MM-DD; today when
// no date is given.
func AttendanceHandler(ledger *attendance.Ledger, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodGet) {
			return
		}

		day := model.Day(time.Now())
		if v := r.URL.Query().Get("date"); v != "" {
			t, err := time.ParseInLocation(model.DayLayout, v, time.Local)
			if err != nil {
				writeError(w, logger, fmt.Errorf("%w: date must be YYYY-MM-DD", model.ErrInvalidInput))
				return
			}
			day = t
		}

		sessions, err := ledger.Day(r.Context(), day)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, dto.NewAttendanceData(day, sessions))
	}
}
