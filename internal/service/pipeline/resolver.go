// Package pipeline turns camera frames into resolved detections.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"time"

	"campusguard/internal/model"
	"campusguard/internal/service/oracle"
)

// FaceDetector finds face regions and embeddings in a frame. Zero faces is
// an empty result, not an error.
type FaceDetector interface {
	DetectFaces(ctx context.Context, frame image.Image) ([]model.Face, error)
}

// Display receives every processed frame together with what was found on it.
type Display interface {
	Show(binding model.CameraBinding, frame image.Image, detections []model.ResolvedDetection)
}

// Gallery is the read-only set of known identities used during one run.
type Gallery struct {
	identities []model.KnownIdentity
	embeddings []model.Embedding
}

// NewGallery indexes identities in load order.
func NewGallery(identities []model.KnownIdentity) *Gallery {
	g := &Gallery{
		identities: append([]model.KnownIdentity(nil), identities...),
		embeddings: make([]model.Embedding, len(identities)),
	}
	for i, id := range identities {
		g.embeddings[i] = id.Embedding
	}
	return g
}

// Len returns the number of identities.
func (g *Gallery) Len() int {
	return len(g.identities)
}

// Resolver runs detection and identity resolution for single frames. It keeps
// no state between frames.
type Resolver struct {
	detector FaceDetector
	oracle   oracle.Oracle
	display  Display
	now      func() time.Time
}

// NewResolver creates a resolver. display may be nil.
func NewResolver(detector FaceDetector, o oracle.Oracle, display Display) *Resolver {
	return &Resolver{detector: detector, oracle: o, display: display, now: time.Now}
}

// WithClock replaces the time source used to stamp detections.
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	r.now = now
	return r
}

// Identify resolves one embedding; the first positional match wins.
func (r *Resolver) Identify(g *Gallery, embedding model.Embedding) model.Identity {
	idx := oracle.FirstMatch(r.oracle, g.embeddings, embedding)
	if idx < 0 {
		return model.Unknown()
	}
	id := g.identities[idx]
	return model.KnownAs(id.Name, id.Designation)
}

// Resolve detects every face on frame and resolves it against g.
func (r *Resolver) Resolve(ctx context.Context, binding model.CameraBinding, frame image.Image, g *Gallery) ([]model.ResolvedDetection, error) {
	faces, err := r.detector.DetectFaces(ctx, frame)
	if err != nil {
		return nil, fmt.Errorf("face detection on %s: %w", binding, err)
	}

	now := r.now()
	detections := make([]model.ResolvedDetection, 0, len(faces))
	for _, f := range faces {
		detections = append(detections, model.ResolvedDetection{
			Camera:     binding.Camera,
			Role:       binding.Role,
			Region:     f.Region,
			Embedding:  f.Embedding,
			Identity:   r.Identify(g, f.Embedding),
			Frame:      frame,
			DetectedAt: now,
		})
	}

	if r.display != nil {
		r.display.Show(binding, frame, detections)
	}
	return detections, nil
}

// Locate looks for target on frame and returns the first matching face, or
// nil when the target is not visible.
func (r *Resolver) Locate(ctx context.Context, binding model.CameraBinding, frame image.Image, target model.KnownIdentity) (*model.ResolvedDetection, error) {
	faces, err := r.detector.DetectFaces(ctx, frame)
	if err != nil {
		return nil, fmt.Errorf("face detection on %s: %w", binding, err)
	}

	var found *model.ResolvedDetection
	reference := []model.Embedding{target.Embedding}
	for _, f := range faces {
		if !oracle.AnyMatch(r.oracle, reference, f.Embedding) {
			continue
		}
		found = &model.ResolvedDetection{
			Camera:     binding.Camera,
			Role:       binding.Role,
			Region:     f.Region,
			Embedding:  f.Embedding,
			Identity:   model.KnownAs(target.Name, target.Designation),
			Frame:      frame,
			DetectedAt: r.now(),
		}
		break
	}

	if r.display != nil {
		var shown []model.ResolvedDetection
		if found != nil {
			shown = append(shown, *found)
		}
		r.display.Show(binding, frame, shown)
	}
	return found, nil
}
