package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"campusguard/internal/model"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDatabase_Connection(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "nested", "campus.db")

	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file should exist")
	}
}

func TestAttendanceRepository_RoundTrip(t *testing.T) {
	repo := NewAttendanceRepository(newTestDB(t))
	ctx := context.Background()

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	exit := time.Date(2026, 3, 2, 17, 0, 0, 0, time.Local)
	sessions := []model.AttendanceSession{
		{Name: "Alice", Designation: model.Student, EnterTime: time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local), ExitTime: &exit},
		{Name: "Bob", Designation: model.Teacher, EnterTime: time.Date(2026, 3, 2, 8, 1, 0, 0, time.Local)},
	}

	if err := repo.SaveDay(ctx, day, sessions); err != nil {
		t.Fatalf("SaveDay failed: %v", err)
	}

	got, err := repo.LoadDay(ctx, day)
	if err != nil {
		t.Fatalf("LoadDay failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(got))
	}
	if got[0].Name != "Alice" || got[0].ExitTime == nil || !got[0].ExitTime.Equal(exit) {
		t.Errorf("Unexpected first session: %+v", got[0])
	}
	if got[1].Name != "Bob" || got[1].Designation != model.Teacher || !got[1].Open() {
		t.Errorf("Unexpected second session: %+v", got[1])
	}
}

func TestAttendanceRepository_SaveDayReplacesPartition(t *testing.T) {
	repo := NewAttendanceRepository(newTestDB(t))
	ctx := context.Background()

	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	tuesday := monday.AddDate(0, 0, 1)
	enter := monday.Add(9 * time.Hour)

	first := []model.AttendanceSession{
		{Name: "Alice", Designation: model.Student, EnterTime: enter},
		{Name: "Bob", Designation: model.Teacher, EnterTime: enter},
	}
	if err := repo.SaveDay(ctx, monday, first); err != nil {
		t.Fatalf("SaveDay failed: %v", err)
	}
	if err := repo.SaveDay(ctx, tuesday, first[:1]); err != nil {
		t.Fatalf("SaveDay failed: %v", err)
	}
	if err := repo.SaveDay(ctx, monday, first[1:]); err != nil {
		t.Fatalf("SaveDay failed: %v", err)
	}

	got, err := repo.LoadDay(ctx, monday)
	if err != nil {
		t.Fatalf("LoadDay failed: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Bob" {
		t.Errorf("Expected only Bob on monday, got %+v", got)
	}

	other, err := repo.LoadDay(ctx, tuesday)
	if err != nil {
		t.Fatalf("LoadDay failed: %v", err)
	}
	if len(other) != 1 || other[0].Name != "Alice" {
		t.Errorf("Tuesday partition should be untouched, got %+v", other)
	}
}

func TestIntruderRepository_InsertAndList(t *testing.T) {
	repo := NewIntruderRepository(newTestDB(t))
	ctx := context.Background()

	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	for i, name := range []string{"Intruder-a.jpg", "Intruder-b.jpg"} {
		rec := &model.IntruderRecord{
			ID:         name,
			Camera:     model.CameraID(i),
			Embedding:  model.Embedding{0.25, -1.5, float32(i)},
			Filename:   name,
			FilePath:   filepath.Join("intruder", name),
			CapturedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Insert(ctx, rec); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	all, err := repo.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(all))
	}
	if all[0].Filename != "Intruder-b.jpg" {
		t.Errorf("Expected newest first, got %s", all[0].Filename)
	}
	if !reflect.DeepEqual(all[0].Embedding, model.Embedding{0.25, -1.5, 1}) {
		t.Errorf("Embedding not preserved: %v", all[0].Embedding)
	}

	rec, err := repo.GetByFilename(ctx, "Intruder-a.jpg")
	if err != nil || rec == nil {
		t.Fatalf("GetByFilename failed: %v, %v", rec, err)
	}
	missing, err := repo.GetByFilename(ctx, "nope.jpg")
	if err != nil || missing != nil {
		t.Errorf("Expected nil for missing record, got %v, %v", missing, err)
	}

	if err := repo.DeleteAll(ctx); err != nil {
		t.Fatalf("DeleteAll failed: %v", err)
	}
	all, _ = repo.GetAll(ctx)
	if len(all) != 0 {
		t.Errorf("Expected empty table, got %d", len(all))
	}
}

func TestEmbeddingCodec(t *testing.T) {
	in := model.Embedding{1, 0.5, -0.125}
	out, err := decodeEmbedding(encodeEmbedding(in))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("Expected %v, got %v", in, out)
	}
	if _, err := decodeEmbedding([]byte{1, 2, 3}); err == nil {
		t.Error("Expected error for truncated blob")
	}
}
