package handler

import (
	"net/http"

	"campusguard/internal/dto"
	"campusguard/internal/logger"
	"campusguard/internal/service/intruder"
	"campusguard/internal/service/storage"
)

// IntrudersHandler returns the stored intruder captures, newest first.
func IntrudersHandler(captures *storage.CaptureService, registry *intruder.Registry, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodGet) {
			return
		}

		records, err := captures.List(r.Context())
		if err != nil {
			writeError(w, logger, err)
			return
		}

		data := dto.IntrudersData{
			Intruders: make([]dto.IntruderInfo, 0, len(records)),
			Dir:       captures.Dir(),
			Distinct:  registry.Len(),
		}
		for _, rec := range records {
			data.Intruders = append(data.Intruders, dto.IntruderInfo{
				Name:      rec.Filename,
				Camera:    int(rec.Camera),
				Date:      rec.CapturedAt,
				TimeOfDay: rec.CapturedAt,
			})
		}
		data.Length = len(data.Intruders)
		writeJSON(w, logger, http.StatusOK, data)
	}
}

// ViewIntruderHandler serves one capture by file name (?file=).
func ViewIntruderHandler(captures *storage.CaptureService, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodGet) {
			return
		}

		path, err := captures.Open(r.Context(), r.URL.Query().Get("file"))
		if err != nil {
			writeError(w, logger, err)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		http.ServeFile(w, r, path)
	}
}

// ClearIntrudersHandler deletes every capture and makes the running registry
// forget the faces it has seen.
func ClearIntrudersHandler(captures *storage.CaptureService, registry *intruder.Registry, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}

		removed, err := captures.Clear(r.Context())
		if err != nil {
			writeError(w, logger, err)
			return
		}
		registry.Clear()
		writeJSON(w, logger, http.StatusOK, map[string]int{"removed": removed})
	}
}
