// Package attendance keeps the daily entry/exit ledger fed by the gate cameras.
package attendance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"campusguard/internal/logger"
	"campusguard/internal/model"
	"campusguard/internal/repository"
)

// Ledger reconciles entry and exit events into attendance sessions. Every
// write is a read-modify-write of the current day's partition; the mutex is
// the single writer boundary for that sequence.
type Ledger struct {
	repo   repository.AttendanceRepository
	logger *logger.Logger
	now    func() time.Time
	mu     sync.Mutex
}

// NewLedger creates a ledger. now selects the day partition written to and
// defaults to time.Now.
func NewLedger(repo repository.AttendanceRepository, logger *logger.Logger, now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{repo: repo, logger: logger, now: now}
}

// RecordEntry opens a session for (name, designation) unless one is already
// open. It reports whether a session was created.
func (l *Ledger) RecordEntry(ctx context.Context, name string, d model.Designation, at time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	day := model.Day(l.now())
	sessions, err := l.repo.LoadDay(ctx, day)
	if err != nil {
		return false, fmt.Errorf("%w: load ledger %s: %v", model.ErrPersistence, day.Format(model.DayLayout), err)
	}

	if openSession(sessions, name, d) >= 0 {
		return false, nil
	}

	sessions = append(sessions, model.AttendanceSession{Name: name, Designation: d, EnterTime: at})
	if err := l.repo.SaveDay(ctx, day, sessions); err != nil {
		return false, fmt.Errorf("%w: save ledger %s: %v", model.ErrPersistence, day.Format(model.DayLayout), err)
	}

	l.logger.Info("🚪 %s (%s) entered at %s", name, d, at.Format(model.TimestampLayout))
	return true, nil
}

// RecordExit closes the most recent open session for (name, designation).
// An exit without an open session is dropped. It reports whether a session
// was closed.
func (l *Ledger) RecordExit(ctx context.Context, name string, d model.Designation, at time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	day := model.Day(l.now())
	sessions, err := l.repo.LoadDay(ctx, day)
	if err != nil {
		return false, fmt.Errorf("%w: load ledger %s: %v", model.ErrPersistence, day.Format(model.DayLayout), err)
	}

	i := openSession(sessions, name, d)
	if i < 0 {
		return false, nil
	}

	exit := at
	sessions[i].ExitTime = &exit
	if err := l.repo.SaveDay(ctx, day, sessions); err != nil {
		return false, fmt.Errorf("%w: save ledger %s: %v", model.ErrPersistence, day.Format(model.DayLayout), err)
	}

	l.logger.Info("🚪 %s (%s) left at %s", name, d, at.Format(model.TimestampLayout))
	return true, nil
}

// Day returns the sessions recorded on the given calendar day.
func (l *Ledger) Day(ctx context.Context, date time.Time) ([]model.AttendanceSession, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	sessions, err := l.repo.LoadDay(ctx, model.Day(date))
	if err != nil {
		return nil, fmt.Errorf("%w: load ledger %s: %v", model.ErrPersistence, date.Format(model.DayLayout), err)
	}
	return sessions, nil
}

// openSession returns the index of the most recent open session for the key, or -1.
func openSession(sessions []model.AttendanceSession, name string, d model.Designation) int {
	for i := len(sessions) - 1; i >= 0; i-- {
		if sessions[i].Matches(name, d) && sessions[i].Open() {
			return i
		}
	}
	return -1
}
