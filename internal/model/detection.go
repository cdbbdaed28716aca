package model

import (
	"image"
	"time"
)

// Face is one detected face region with its embedding.
type Face struct {
	Region    image.Rectangle
	Embedding Embedding
}

// ResolvedDetection is a face matched (or not) against the identity store.
// Frame is kept so downstream consumers can crop the region.
type ResolvedDetection struct {
	Camera     CameraID
	Role       CameraRole
	Region     image.Rectangle
	Embedding  Embedding
	Identity   Identity
	Frame      image.Image
	DetectedAt time.Time
}
