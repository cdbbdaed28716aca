// Package storage persists intruder captures to disk and to the intruder repository.
package storage

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"campusguard/internal/logger"
	"campusguard/internal/model"
	"campusguard/internal/repository"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	// FilePrefix starts every intruder image name.
	FilePrefix = "Intruder-"
	// FileTimeLayout is the second-resolution timestamp in image names.
	FileTimeLayout = "2006-01-02-15-04-05"
	// JPEGQuality used for the saved crops.
	JPEGQuality = 90
)

// CaptureService crops intruder faces out of frames and stores them.
type CaptureService struct {
	dir    string
	repo   repository.IntruderRepository
	logger *logger.Logger
	now    func() time.Time
	mu     sync.Mutex
}

// NewCaptureService creates a service writing images under dir.
func NewCaptureService(dir string, repo repository.IntruderRepository, logger *logger.Logger) *CaptureService {
	return &CaptureService{dir: dir, repo: repo, logger: logger, now: time.Now}
}

// Dir returns the capture directory.
func (s *CaptureService) Dir() string {
	return s.dir
}

// Save writes the face crop of det and records it. On failure nothing is left
// behind on disk.
func (s *CaptureService) Save(ctx context.Context, det model.ResolvedDetection) (*model.IntruderRecord, error) {
	if det.Frame == nil {
		return nil, fmt.Errorf("%w: detection on camera %d has no frame", model.ErrPersistence, det.Camera)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", model.ErrPersistence, s.dir, err)
	}

	at := det.DetectedAt
	if at.IsZero() {
		at = s.now()
	}

	filename, err := s.freeName(at)
	if err != nil {
		return nil, err
	}
	fullpath := filepath.Join(s.dir, filename)

	if err := imaging.Save(crop(det.Frame, det.Region), fullpath, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, fmt.Errorf("%w: save %s: %v", model.ErrPersistence, filename, err)
	}

	rec := &model.IntruderRecord{
		ID:         uuid.NewString(),
		Camera:     det.Camera,
		Embedding:  append(model.Embedding(nil), det.Embedding...),
		Filename:   filename,
		FilePath:   fullpath,
		CapturedAt: at,
	}
	if err := s.repo.Insert(ctx, rec); err != nil {
		os.Remove(fullpath)
		return nil, fmt.Errorf("%w: record %s: %v", model.ErrPersistence, filename, err)
	}

	s.logger.Info("📸 Intruder image saved: %s", filename)
	return rec, nil
}

// List returns every stored capture, newest first.
func (s *CaptureService) List(ctx context.Context) ([]model.IntruderRecord, error) {
	return s.repo.GetAll(ctx)
}

// Open resolves filename to a stored capture path. Only names known to the
// repository are served.
func (s *CaptureService) Open(ctx context.Context, filename string) (string, error) {
	if filename != filepath.Base(filename) || !IsCapture(filename) {
		return "", fmt.Errorf("%w: bad file name %q", model.ErrInvalidInput, filename)
	}
	rec, err := s.repo.GetByFilename(ctx, filename)
	if err != nil {
		return "", err
	}
	if rec == nil {
		return "", fmt.Errorf("%w: %s", model.ErrNotFound, filename)
	}
	return rec.FilePath, nil
}

// Clear deletes every stored capture from disk and from the repository. It
// returns how many files were removed.
func (s *CaptureService) Clear(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.repo.GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: list captures: %v", model.ErrPersistence, err)
	}

	removed := 0
	for _, rec := range records {
		if err := os.Remove(rec.FilePath); err != nil && !os.IsNotExist(err) {
			s.logger.Error("Error deleting file %s: %v", rec.Filename, err)
			continue
		}
		removed++
	}

	if err := s.repo.DeleteAll(ctx); err != nil {
		return removed, fmt.Errorf("%w: clear captures: %v", model.ErrPersistence, err)
	}
	s.logger.Info("Cleared %d intruder image(s)", removed)
	return removed, nil
}

// freeName returns Intruder-<timestamp>.jpg, adding -N when that second is
// already taken.
func (s *CaptureService) freeName(at time.Time) (string, error) {
	base := FilePrefix + at.Format(FileTimeLayout)
	name := base + ".jpg"
	for n := 1; ; n++ {
		_, err := os.Stat(filepath.Join(s.dir, name))
		if os.IsNotExist(err) {
			return name, nil
		}
		if err != nil {
			return "", fmt.Errorf("%w: stat %s: %v", model.ErrPersistence, name, err)
		}
		name = fmt.Sprintf("%s-%d.jpg", base, n)
	}
}

// crop cuts region out of frame; an empty or out-of-frame region keeps the
// whole frame.
func crop(frame image.Image, region image.Rectangle) image.Image {
	r := region.Intersect(frame.Bounds())
	if r.Empty() {
		return frame
	}
	return imaging.Crop(frame, r)
}

// IsCapture reports whether name looks like an intruder image.
func IsCapture(name string) bool {
	return strings.HasPrefix(name, FilePrefix) && strings.EqualFold(filepath.Ext(name), ".jpg")
}

// ParseFileName returns the capture time encoded in an intruder image name.
func ParseFileName(name string) (time.Time, bool) {
	if !IsCapture(name) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, FilePrefix), filepath.Ext(name))
	if len(stamp) < len(FileTimeLayout) {
		return time.Time{}, false
	}
	at, err := time.ParseInLocation(FileTimeLayout, stamp[:len(FileTimeLayout)], time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}
