// Package xlsx stores the attendance ledger as one spreadsheet per day.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"campusguard/internal/logger"
	"campusguard/internal/model"
)

var header = []interface{}{"Name", "Designation", "Enter Time", "Exit Time"}

// AttendanceRepository implements repository.AttendanceRepository with one
// entry_exit_records_DD-MM-YYYY.xlsx file per day.
type AttendanceRepository struct {
	dir    string
	logger *logger.Logger
	mu     sync.Mutex
}

// NewAttendanceRepository creates a repository writing into dir. Rows that
// cannot be read are reported to logger and left out of the day.
func NewAttendanceRepository(dir string, logger *logger.Logger) *AttendanceRepository {
	return &AttendanceRepository{dir: dir, logger: logger}
}

// FileName returns the ledger file name for a day.
func FileName(day time.Time) string {
	return fmt.Sprintf("entry_exit_records_%s.xlsx", day.Format("02-01-2006"))
}

func (r *AttendanceRepository) path(day time.Time) string {
	return filepath.Join(r.dir, FileName(day))
}

// LoadDay reads the ledger file of one day; a missing file is an empty day.
func (r *AttendanceRepository) LoadDay(_ context.Context, day time.Time) ([]model.AttendanceSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	path := r.path(day)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()

	// raw values keep date cells as serial numbers instead of their display format
	rows, err := f.GetRows(f.GetSheetName(0), excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger rows: %w", err)
	}

	var sessions []model.AttendanceSession
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		s, err := parseRow(row, day.Location())
		if err != nil {
			r.logger.Warning("Skipping %s row %d: %v", FileName(day), i+1, err)
			continue
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

// SaveDay rewrites the ledger file of one day. The file is written next to
// the target and renamed over it.
func (r *AttendanceRepository) SaveDay(_ context.Context, day time.Time, sessions []model.AttendanceSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, s := range sessions {
		exit := ""
		if s.ExitTime != nil {
			exit = s.ExitTime.Format(model.TimestampLayout)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{s.Name, s.Designation.String(), s.EnterTime.Format(model.TimestampLayout), exit}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	target := r.path(day)
	tmp := filepath.Join(r.dir, "."+FileName(day)+".tmp.xlsx")
	if err := f.SaveAs(tmp); err != nil {
		return fmt.Errorf("failed to save ledger: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace ledger: %w", err)
	}
	return nil
}

func parseRow(row []string, loc *time.Location) (model.AttendanceSession, error) {
	if len(row) < 3 || row[0] == "" {
		return model.AttendanceSession{}, errors.New("row is incomplete")
	}
	d, err := model.ParseDesignation(row[1])
	if err != nil {
		return model.AttendanceSession{}, err
	}
	enter, err := parseTime(row[2], loc)
	if err != nil {
		return model.AttendanceSession{}, fmt.Errorf("invalid enter time %q: %w", row[2], err)
	}

	s := model.AttendanceSession{Name: row[0], Designation: d, EnterTime: enter}
	if len(row) > 3 && row[3] != "" {
		exit, err := parseTime(row[3], loc)
		if err != nil {
			return model.AttendanceSession{}, fmt.Errorf("invalid exit time %q: %w", row[3], err)
		}
		s.ExitTime = &exit
	}
	return s, nil
}

// parseTime accepts the text timestamps this repository writes and the date
// cells a spreadsheet program leaves behind after editing the file.
func parseTime(v string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(model.TimestampLayout, v, loc); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", v, loc); err == nil {
		return t, nil
	}
	serial, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return time.Time{}, errors.New("not a timestamp or date cell")
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, err
	}
	// serials carry wall-clock time without a zone
	t = t.Round(time.Second)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
}

// ParseFileName returns the day of a ledger file name.
func ParseFileName(name string) (time.Time, bool) {
	var date string
	if _, err := fmt.Sscanf(name, "entry_exit_records_%10s.xlsx", &date); err != nil {
		return time.Time{}, false
	}
	day, err := time.ParseInLocation("02-01-2006", date, time.Local)
	if err != nil || FileName(day) != name {
		return time.Time{}, false
	}
	return day, true
}

// Days lists the days that have a ledger file, oldest first.
func (r *AttendanceRepository) Days() ([]time.Time, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger directory: %w", err)
	}

	var days []time.Time
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if day, ok := ParseFileName(e.Name()); ok {
			days = append(days, day)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days, nil
}
