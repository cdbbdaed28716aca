package pipeline

import (
	"image"

	"campusguard/internal/model"
)

// Source yields frames from one camera. Read blocks until a frame is
// available or the device fails.
type Source interface {
	Read() (image.Image, error)
	Close() error
}

// Opener opens camera devices for a run.
type Opener interface {
	Open(camera model.CameraID) (Source, error)
}
