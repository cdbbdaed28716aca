// Package memory holds in-process repository implementations used by tests
// and by deployments that do not need durable storage.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"campusguard/internal/model"
)

// AttendanceRepository keeps day partitions in a map.
type AttendanceRepository struct {
	mu    sync.Mutex
	days  map[string][]model.AttendanceSession
	saves int
}

func NewAttendanceRepository() *AttendanceRepository {
	return &AttendanceRepository{days: make(map[string][]model.AttendanceSession)}
}

func (r *AttendanceRepository) LoadDay(_ context.Context, day time.Time) ([]model.AttendanceSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneSessions(r.days[day.Format(model.DayLayout)]), nil
}

func (r *AttendanceRepository) SaveDay(_ context.Context, day time.Time, sessions []model.AttendanceSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.days[day.Format(model.DayLayout)] = cloneSessions(sessions)
	r.saves++
	return nil
}

// Saves reports how many times SaveDay was called.
func (r *AttendanceRepository) Saves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

func cloneSessions(in []model.AttendanceSession) []model.AttendanceSession {
	if in == nil {
		return nil
	}
	out := make([]model.AttendanceSession, len(in))
	for i, s := range in {
		out[i] = s
		if s.ExitTime != nil {
			t := *s.ExitTime
			out[i].ExitTime = &t
		}
	}
	return out
}

// IntruderRepository keeps records in a slice.
type IntruderRepository struct {
	mu      sync.Mutex
	records []model.IntruderRecord
}

func NewIntruderRepository() *IntruderRepository {
	return &IntruderRepository{}
}

func (r *IntruderRepository) Insert(_ context.Context, rec *model.IntruderRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, *rec)
	return nil
}

func (r *IntruderRepository) GetAll(_ context.Context) ([]model.IntruderRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]model.IntruderRecord(nil), r.records...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CapturedAt.After(out[j].CapturedAt) })
	return out, nil
}

func (r *IntruderRepository) GetByFilename(_ context.Context, filename string) (*model.IntruderRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.records {
		if r.records[i].Filename == filename {
			rec := r.records[i]
			return &rec, nil
		}
	}
	return nil, nil
}

func (r *IntruderRepository) DeleteAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = nil
	return nil
}
