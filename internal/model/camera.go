package model

import "fmt"

// CameraID is the device index of a camera.
type CameraID int

// CameraRole is the policy a camera feeds.
type CameraRole int

const (
	EntryGate CameraRole = iota + 1
	ExitGate
	RestrictedArea
	Classroom
	Ordinary
)

// CameraRoles lists every role in registry order.
var CameraRoles = []CameraRole{EntryGate, ExitGate, RestrictedArea, Classroom, Ordinary}

func (r CameraRole) String() string {
	switch r {
	case EntryGate:
		return "entry gate"
	case ExitGate:
		return "exit gate"
	case RestrictedArea:
		return "restricted area"
	case Classroom:
		return "classroom"
	case Ordinary:
		return "ordinary camera"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// Valid reports whether r is one of the defined roles.
func (r CameraRole) Valid() bool {
	return r >= EntryGate && r <= Ordinary
}

// IsGate reports whether the role feeds the attendance ledger.
func (r CameraRole) IsGate() bool {
	return r == EntryGate || r == ExitGate
}

// CameraBinding ties a camera to its role.
type CameraBinding struct {
	Camera CameraID   `json:"camera"`
	Role   CameraRole `json:"role"`
}

func (b CameraBinding) String() string {
	return fmt.Sprintf("camera %d (%s)", b.Camera, b.Role)
}
