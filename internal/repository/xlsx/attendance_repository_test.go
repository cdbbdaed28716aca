package xlsx

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"campusguard/internal/logger"
	"campusguard/internal/model"
)

func newTestRepository(t *testing.T, dir string) *AttendanceRepository {
	t.Helper()
	l, err := logger.New(t.TempDir(), nil, nil)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	t.Cleanup(l.Close)
	return NewAttendanceRepository(dir, l)
}

// editLedger rewrites cells of a saved ledger the way a spreadsheet program would.
func editLedger(t *testing.T, path string, cells map[string]interface{}) {
	t.Helper()
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("Failed to open ledger: %v", err)
	}
	defer f.Close()
	sheet := f.GetSheetName(0)
	for cell, v := range cells {
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			t.Fatalf("Failed to set %s: %v", cell, err)
		}
	}
	if err := f.Save(); err != nil {
		t.Fatalf("Failed to save ledger: %v", err)
	}
}

func TestAttendanceRepository_MissingDayIsEmpty(t *testing.T) {
	repo := newTestRepository(t, t.TempDir())

	sessions, err := repo.LoadDay(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("LoadDay failed: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("Expected no sessions, got %d", len(sessions))
	}
}

func TestAttendanceRepository_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	repo := newTestRepository(t, dir)
	ctx := context.Background()

	day := time.Date(2026, 10, 19, 0, 0, 0, 0, time.Local)
	exit := day.Add(17 * time.Hour)
	sessions := []model.AttendanceSession{
		{Name: "Alice", Designation: model.Student, EnterTime: day.Add(9 * time.Hour), ExitTime: &exit},
		{Name: "Bob", Designation: model.Teacher, EnterTime: day.Add(8*time.Hour + time.Minute)},
	}

	if err := repo.SaveDay(ctx, day, sessions); err != nil {
		t.Fatalf("SaveDay failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "entry_exit_records_19-10-2026.xlsx")); err != nil {
		t.Fatalf("Expected ledger file: %v", err)
	}

	got, err := repo.LoadDay(ctx, day)
	if err != nil {
		t.Fatalf("LoadDay failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(got))
	}
	if got[0].ExitTime == nil || !got[0].ExitTime.Equal(exit) {
		t.Errorf("Expected Alice closed at %v, got %+v", exit, got[0])
	}
	if !got[1].Open() || got[1].Designation != model.Teacher {
		t.Errorf("Expected Bob open as Teacher, got %+v", got[1])
	}
}

func TestAttendanceRepository_DateCells(t *testing.T) {
	dir := t.TempDir()
	repo := newTestRepository(t, dir)
	ctx := context.Background()

	day := time.Date(2026, 10, 19, 0, 0, 0, 0, time.Local)
	sessions := []model.AttendanceSession{
		{Name: "Alice", Designation: model.Student, EnterTime: day.Add(9 * time.Hour)},
	}
	if err := repo.SaveDay(ctx, day, sessions); err != nil {
		t.Fatalf("SaveDay failed: %v", err)
	}

	enter := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	exit := time.Date(2026, 10, 19, 17, 30, 15, 0, time.UTC)
	editLedger(t, filepath.Join(dir, FileName(day)), map[string]interface{}{"C2": enter, "D2": exit})

	got, err := repo.LoadDay(ctx, day)
	if err != nil {
		t.Fatalf("LoadDay failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 session, got %d", len(got))
	}
	if !got[0].EnterTime.Equal(day.Add(9 * time.Hour)) {
		t.Errorf("Expected enter at 09:00, got %v", got[0].EnterTime)
	}
	wantExit := day.Add(17*time.Hour + 30*time.Minute + 15*time.Second)
	if got[0].ExitTime == nil || !got[0].ExitTime.Equal(wantExit) {
		t.Errorf("Expected exit at %v, got %v", wantExit, got[0].ExitTime)
	}
}

func TestAttendanceRepository_SkipsMalformedRows(t *testing.T) {
	dir := t.TempDir()
	repo := newTestRepository(t, dir)
	ctx := context.Background()

	day := time.Date(2026, 10, 19, 0, 0, 0, 0, time.Local)
	sessions := []model.AttendanceSession{
		{Name: "Alice", Designation: model.Student, EnterTime: day.Add(9 * time.Hour)},
		{Name: "Bob", Designation: model.Teacher, EnterTime: day.Add(10 * time.Hour)},
		{Name: "Carol", Designation: model.Guest, EnterTime: day.Add(11 * time.Hour)},
	}
	if err := repo.SaveDay(ctx, day, sessions); err != nil {
		t.Fatalf("SaveDay failed: %v", err)
	}
	editLedger(t, filepath.Join(dir, FileName(day)), map[string]interface{}{"C3": "sometime", "B4": "Janitor"})

	got, err := repo.LoadDay(ctx, day)
	if err != nil {
		t.Fatalf("LoadDay failed: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Alice" {
		t.Fatalf("Expected only Alice to survive, got %+v", got)
	}

	// the day stays writable
	got = append(got, model.AttendanceSession{Name: "Dan", Designation: model.Admin, EnterTime: day.Add(12 * time.Hour)})
	if err := repo.SaveDay(ctx, day, got); err != nil {
		t.Fatalf("SaveDay after skip failed: %v", err)
	}
	if reloaded, err := repo.LoadDay(ctx, day); err != nil || len(reloaded) != 2 {
		t.Errorf("Expected 2 sessions after rewrite, got %d (%v)", len(reloaded), err)
	}
}

func TestParseTime(t *testing.T) {
	loc := time.Local
	want := time.Date(2026, 10, 19, 9, 0, 0, 0, loc)
	tests := []struct {
		in string
		ok bool
	}{
		{"2026-10-19 09:00:00", true},
		{"2026-10-19T09:00:00", true},
		{"46314.375", true},
		{"10/19/26 09:00", false},
		{"", false},
	}
	for _, tt := range tests {
		got, err := parseTime(tt.in, loc)
		if (err == nil) != tt.ok {
			t.Errorf("parseTime(%q) err = %v, want ok=%v", tt.in, err, tt.ok)
			continue
		}
		if tt.ok && !got.Equal(want) {
			t.Errorf("parseTime(%q) = %v, want %v", tt.in, got, want)
		}
	}
}

func TestParseFileName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
		day  string
	}{
		{"entry_exit_records_19-10-2026.xlsx", true, "2026-10-19"},
		{"entry_exit_records_31-02-2026.xlsx", false, ""},
		{"entry_exit_records_19-10-2026.xlsx.tmp", false, ""},
		{"notes.xlsx", false, ""},
	}
	for _, tt := range tests {
		day, ok := ParseFileName(tt.name)
		if ok != tt.ok {
			t.Errorf("ParseFileName(%q) ok = %v, want %v", tt.name, ok, tt.ok)
			continue
		}
		if ok && day.Format("2006-01-02") != tt.day {
			t.Errorf("ParseFileName(%q) = %v, want %s", tt.name, day, tt.day)
		}
	}
}
