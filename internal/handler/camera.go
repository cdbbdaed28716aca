package handler

import (
	"fmt"
	"net/http"

	"campusguard/internal/dto"
	"campusguard/internal/logger"
	"campusguard/internal/model"
	"campusguard/internal/service"
	"campusguard/internal/service/camera"
)

// AvailableCamerasHandler handles GET /api/cameras/available.
func AvailableCamerasHandler(registry *camera.Registry, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodGet) {
			return
		}
		cameras := registry.DetectAvailable()
		if cameras == nil {
			cameras = []model.CameraID{}
		}
		writeJSON(w, logger, http.StatusOK, map[string]any{"cameras": cameras, "length": len(cameras)})
	}
}

// CamerasHandler handles GET /api/cameras: the current bindings and policy.
func CamerasHandler(registry *camera.Registry, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodGet) {
			return
		}
		bindings, policy := registry.Snapshot()
		writeJSON(w, logger, http.StatusOK, dto.NewCamerasData(bindings, policy))
	}
}

// plannedAssignment is a validated CameraAssignment.
type plannedAssignment struct {
	camera model.CameraID
	role   model.CameraRole
	access *model.AccessPolicy
}

// planAssignment validates the whole request before the registry is touched.
func planAssignment(req dto.AssignRequest) ([]plannedAssignment, error) {
	if req.Count <= 0 {
		return nil, fmt.Errorf("%w: camera count must be positive", model.ErrConfiguration)
	}
	if len(req.Assignments) != req.Count {
		return nil, fmt.Errorf("%w: %d camera(s) requested but %d assigned", model.ErrConfiguration, req.Count, len(req.Assignments))
	}

	seen := make(map[int]bool, len(req.Assignments))
	plan := make([]plannedAssignment, 0, len(req.Assignments))
	for _, a := range req.Assignments {
		if a.Camera < 0 || a.Camera >= req.Count {
			return nil, fmt.Errorf("%w: camera %d is outside 0-%d", model.ErrConfiguration, a.Camera, req.Count-1)
		}
		if seen[a.Camera] {
			return nil, fmt.Errorf("%w: camera %d assigned twice", model.ErrConfiguration, a.Camera)
		}
		seen[a.Camera] = true

		role, err := model.ParseRoleChoice(a.Role)
		if err != nil {
			return nil, err
		}

		p := plannedAssignment{camera: model.CameraID(a.Camera), role: role}
		if role == model.RestrictedArea {
			if a.Access == nil {
				return nil, fmt.Errorf("%w: restricted area camera %d needs access choices", model.ErrConfiguration, a.Camera)
			}
			policy, err := model.ParseAccessChoices(a.Access)
			if err != nil {
				return nil, err
			}
			p.access = &policy
		}
		plan = append(plan, p)
	}
	return plan, nil
}

// AssignCamerasHandler handles POST /api/cameras/assign. A valid request
// replaces every binding and the access policy; bindings cannot change while
// a run is active.
func AssignCamerasHandler(registry *camera.Registry, manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}

		var req dto.AssignRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, logger, err)
			return
		}
		plan, err := planAssignment(req)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		if manager.Active() {
			writeError(w, logger, fmt.Errorf("%w: stop the current run before reassigning cameras", model.ErrAlreadyRunning))
			return
		}

		session, err := registry.BeginAssignment(req.Count)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		for _, p := range plan {
			if err := session.Assign(p.camera, p.role, p.access); err != nil {
				writeError(w, logger, err)
				return
			}
		}
		if err := session.Commit(); err != nil {
			writeError(w, logger, err)
			return
		}

		bindings, policy := registry.Snapshot()
		logger.Info("📹 %d camera(s) assigned, restricted access: %s", len(bindings), policy)
		writeJSON(w, logger, http.StatusOK, dto.NewCamerasData(bindings, policy))
	}
}
