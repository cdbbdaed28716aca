package model

import "time"

// IntruderRecord is a captured unknown or unauthorized face.
type IntruderRecord struct {
	ID         string
	Camera     CameraID
	Embedding  Embedding
	Filename   string
	FilePath   string
	CapturedAt time.Time
}
