// Package identity loads the known faces from the categorized directory tree.
package identity

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/disintegration/imaging"

	"campusguard/internal/logger"
	"campusguard/internal/model"
)

// FaceDetector finds faces and their embeddings in an image.
type FaceDetector interface {
	DetectFaces(ctx context.Context, img image.Image) ([]model.Face, error)
}

// Store holds the identities of one load. Reloads replace the whole set.
type Store struct {
	root     string
	detector FaceDetector
	logger   *logger.Logger

	mu         sync.RWMutex
	identities []model.KnownIdentity
}

// NewStore creates a store over the given known-faces root.
func NewStore(root string, detector FaceDetector, logger *logger.Logger) *Store {
	return &Store{root: root, detector: detector, logger: logger}
}

// Root returns the known-faces directory.
func (s *Store) Root() string {
	return s.root
}

// Load scans students, admins, teachers and guests in that order and
// replaces the held identities. Images without a detectable face, and files
// that are not decodable images, are skipped.
func (s *Store) Load(ctx context.Context) ([]model.KnownIdentity, error) {
	var loaded []model.KnownIdentity

	for _, d := range model.Designations {
		dir := filepath.Join(s.root, d.Category())
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create category directory %s: %w", dir, err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to read category directory %s: %w", dir, err)
		}

		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if entry.IsDir() {
				continue
			}

			path := filepath.Join(dir, entry.Name())
			img, err := imaging.Open(path)
			if err != nil {
				s.logger.Warning("Skipping %s: %v", path, err)
				continue
			}

			faces, err := s.detector.DetectFaces(ctx, img)
			if err != nil {
				s.logger.Warning("Face detection failed for %s: %v", path, err)
				continue
			}
			if len(faces) == 0 {
				continue
			}

			loaded = append(loaded, model.KnownIdentity{
				Name:        baseName(entry.Name()),
				Designation: d,
				Embedding:   faces[0].Embedding,
			})
		}
	}

	s.mu.Lock()
	s.identities = loaded
	s.mu.Unlock()

	s.logger.Info("Loaded %d known identities from %s", len(loaded), s.root)
	return append([]model.KnownIdentity(nil), loaded...), nil
}

// Identities returns the identities of the last load in load order.
func (s *Store) Identities() []model.KnownIdentity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.KnownIdentity(nil), s.identities...)
}

// Add saves a face image as <category>/<name>.jpg, overwriting an existing
// image of the same name. The new face is picked up by the next Load.
func (s *Store) Add(name string, d model.Designation, img image.Image) (string, error) {
	name, err := model.ValidateName(name)
	if err != nil {
		return "", err
	}
	if !d.Valid() {
		return "", fmt.Errorf("%w: invalid designation", model.ErrInvalidInput)
	}
	if img == nil {
		return "", fmt.Errorf("%w: image is required", model.ErrInvalidInput)
	}

	dir := filepath.Join(s.root, d.Category())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrPersistence, err)
	}

	path := filepath.Join(dir, name+".jpg")
	if err := imaging.Save(img, path); err != nil {
		return "", fmt.Errorf("%w: failed to save face %s: %v", model.ErrPersistence, name, err)
	}

	s.logger.Info("Face for %s saved at %s", name, path)
	return path, nil
}

// Remove deletes the stored image(s) of name in the designation's category.
func (s *Store) Remove(name string, d model.Designation) error {
	if !d.Valid() {
		return fmt.Errorf("%w: invalid designation", model.ErrInvalidInput)
	}

	files, err := s.files(d)
	if err != nil {
		return err
	}

	removed := 0
	for _, f := range files {
		if baseName(f) != name {
			continue
		}
		if err := os.Remove(filepath.Join(s.root, d.Category(), f)); err != nil {
			return fmt.Errorf("%w: failed to delete %s: %v", model.ErrPersistence, f, err)
		}
		removed++
	}

	if removed == 0 {
		return fmt.Errorf("%w: face %s not found in %s", model.ErrNotFound, name, d.Category())
	}

	s.logger.Info("Face %s deleted from %s", name, d.Category())
	return nil
}

// List returns the names stored in a category, sorted.
func (s *Store) List(d model.Designation) ([]string, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: invalid designation", model.ErrInvalidInput)
	}
	files, err := s.files(d)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, baseName(f))
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) files(d model.Designation) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, d.Category()))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", d.Category(), err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() {
			files = append(files, e.Name())
		}
	}
	return files, nil
}

func baseName(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}
