package storage

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"campusguard/internal/logger"
	"campusguard/internal/model"
	"campusguard/internal/repository/memory"

	"github.com/disintegration/imaging"
)

func newTestService(t *testing.T) (*CaptureService, *memory.IntruderRepository) {
	t.Helper()
	l, err := logger.New(t.TempDir(), nil, nil)
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	t.Cleanup(l.Close)
	repo := memory.NewIntruderRepository()
	return NewCaptureService(filepath.Join(t.TempDir(), "intruder"), repo, l), repo
}

func detection(at time.Time) model.ResolvedDetection {
	frame := imaging.New(100, 80, color.NRGBA{R: 200, A: 255})
	return model.ResolvedDetection{
		Camera:     2,
		Role:       model.Ordinary,
		Region:     image.Rect(10, 10, 50, 40),
		Embedding:  model.Embedding{1, 2, 3},
		Frame:      frame,
		DetectedAt: at,
	}
}

func TestSave_WritesCropAndRecord(t *testing.T) {
	svc, repo := newTestService(t)
	at := time.Date(2026, 10, 19, 14, 3, 7, 0, time.Local)

	rec, err := svc.Save(context.Background(), detection(at))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if rec.Filename != "Intruder-2026-10-19-14-03-07.jpg" {
		t.Errorf("Unexpected filename %s", rec.Filename)
	}
	if rec.ID == "" || rec.Camera != 2 || !rec.CapturedAt.Equal(at) {
		t.Errorf("Unexpected record %+v", rec)
	}

	img, err := imaging.Open(rec.FilePath)
	if err != nil {
		t.Fatalf("open saved crop: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
		t.Errorf("Expected 40x30 crop, got %v", b)
	}

	all, _ := repo.GetAll(context.Background())
	if len(all) != 1 {
		t.Errorf("Expected 1 stored record, got %d", len(all))
	}

	path, err := svc.Open(context.Background(), rec.Filename)
	if err != nil || path != rec.FilePath {
		t.Errorf("Open = %q, %v", path, err)
	}
}

func TestSave_SameSecondGetsSuffix(t *testing.T) {
	svc, _ := newTestService(t)
	at := time.Date(2026, 10, 19, 14, 3, 7, 0, time.Local)

	first, err := svc.Save(context.Background(), detection(at))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	second, err := svc.Save(context.Background(), detection(at))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if first.Filename == second.Filename {
		t.Fatalf("Names collide: %s", first.Filename)
	}
	if second.Filename != "Intruder-2026-10-19-14-03-07-1.jpg" {
		t.Errorf("Unexpected suffix name %s", second.Filename)
	}
}

func TestSave_RegionOutsideFrameKeepsWholeFrame(t *testing.T) {
	svc, _ := newTestService(t)
	det := detection(time.Now())
	det.Region = image.Rect(500, 500, 600, 600)

	rec, err := svc.Save(context.Background(), det)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	img, _ := imaging.Open(rec.FilePath)
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 80 {
		t.Errorf("Expected full frame, got %v", b)
	}
}

func TestSave_UnwritableDirectory(t *testing.T) {
	svc, _ := newTestService(t)
	blocker := filepath.Join(t.TempDir(), "file")
	os.WriteFile(blocker, []byte("x"), 0644)
	svc.dir = filepath.Join(blocker, "intruder")

	_, err := svc.Save(context.Background(), detection(time.Now()))
	if !errors.Is(err, model.ErrPersistence) {
		t.Errorf("Expected ErrPersistence, got %v", err)
	}
}

func TestOpen_RejectsUnknownAndTraversal(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.Open(context.Background(), "../secret.jpg"); !errors.Is(err, model.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Open(context.Background(), "Intruder-x.jpg"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestIsCapture(t *testing.T) {
	if !IsCapture("Intruder-2026-10-19-14-03-07.jpg") || IsCapture("info.log") {
		t.Error("IsCapture misclassified names")
	}
}

func TestClear_RemovesFilesAndRecords(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Save(ctx, detection(time.Now()))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	n, err := svc.Clear(ctx)
	if err != nil || n != 1 {
		t.Fatalf("Clear = %d, %v", n, err)
	}
	if _, err := os.Stat(rec.FilePath); !os.IsNotExist(err) {
		t.Errorf("file still present: %v", err)
	}
	if all, _ := repo.GetAll(ctx); len(all) != 0 {
		t.Errorf("records left: %d", len(all))
	}
}

func TestParseFileName(t *testing.T) {
	at, ok := ParseFileName("Intruder-2026-10-19-14-03-07-2.jpg")
	if !ok || at.Format(FileTimeLayout) != "2026-10-19-14-03-07" {
		t.Errorf("ParseFileName = %v, %v", at, ok)
	}
	if _, ok := ParseFileName("Intruder-garbage.jpg"); ok {
		t.Error("garbage name parsed")
	}
}
