package dto

import "campusguard/internal/model"

// AssignRequest is the body of POST /api/cameras/assign. Role numbers are
// 1..5 (entry, exit, restricted, classroom, ordinary); access numbers are
// 1..4 (student, admin, teacher, guest).
type AssignRequest struct {
	Count       int                `json:"count"`
	Assignments []CameraAssignment `json:"assignments"`
}

type CameraAssignment struct {
	Camera int   `json:"camera"`
	Role   int   `json:"role"`
	Access []int `json:"access,omitempty"`
}

// BindingInfo describes one bound camera.
type BindingInfo struct {
	Camera   int    `json:"camera"`
	Role     int    `json:"role"`
	RoleName string `json:"roleName"`
}

// CamerasData is the response of GET /api/cameras.
type CamerasData struct {
	Bindings []BindingInfo `json:"bindings"`
	Access   []string      `json:"access"`
}

// NewCamerasData converts registry state for the console.
func NewCamerasData(bindings []model.CameraBinding, policy model.AccessPolicy) CamerasData {
	data := CamerasData{Bindings: make([]BindingInfo, 0, len(bindings)), Access: []string{}}
	for _, b := range bindings {
		data.Bindings = append(data.Bindings, BindingInfo{Camera: int(b.Camera), Role: int(b.Role), RoleName: b.Role.String()})
	}
	for _, d := range policy.Allowed() {
		data.Access = append(data.Access, d.String())
	}
	return data
}
