package handler

import (
	"fmt"
	"net/http"

	"campusguard/internal/dto"
	"campusguard/internal/logger"
	"campusguard/internal/model"
	"campusguard/internal/service"
)

// StartRecognitionHandler handles POST /api/recognition/start.
func StartRecognitionHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}
		if err := manager.Start(r.Context()); err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusAccepted, manager.Status())
	}
}

// StopRecognitionHandler handles POST /api/recognition/stop. It stops a
// recognition or tracking run and returns once cameras are released.
func StopRecognitionHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}
		manager.Stop()
		writeJSON(w, logger, http.StatusOK, manager.Status())
	}
}

// RecognitionStatusHandler handles GET /api/recognition/status.
func RecognitionStatusHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodGet) {
			return
		}
		writeJSON(w, logger, http.StatusOK, manager.Status())
	}
}

// TrackHandler handles POST /api/track with {"index": N}.
func TrackHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}

		var req dto.TrackRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, logger, err)
			return
		}
		if req.Index == nil {
			writeError(w, logger, fmt.Errorf("%w: index is required", model.ErrInvalidInput))
			return
		}

		target, err := manager.Track(r.Context(), *req.Index)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusAccepted, map[string]any{
			"target": dto.FaceInfo{Name: target.Name, Designation: target.Designation.String()},
			"status": manager.Status(),
		})
	}
}
