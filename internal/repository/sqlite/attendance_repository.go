package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"campusguard/internal/model"
)

// AttendanceRepository implements repository.AttendanceRepository for SQLite.
type AttendanceRepository struct {
	db *DB
}

// NewAttendanceRepository creates a new SQLite attendance repository.
func NewAttendanceRepository(db *DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// LoadDay returns the sessions of one day in ledger order.
func (r *AttendanceRepository) LoadDay(ctx context.Context, day time.Time) ([]model.AttendanceSession, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().QueryContext(ctx, `
		SELECT name, designation, enter_time, exit_time
		FROM attendance WHERE day = ? ORDER BY position
	`, day.Format(model.DayLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	var sessions []model.AttendanceSession
	for rows.Next() {
		var (
			name, designation, enter string
			exit                     sql.NullString
		)
		if err := rows.Scan(&name, &designation, &enter, &exit); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}

		s, err := parseSession(name, designation, enter, exit.String, day.Location())
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

// SaveDay rewrites the partition of one day in a single transaction.
func (r *AttendanceRepository) SaveDay(ctx context.Context, day time.Time, sessions []model.AttendanceSession) error {
	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	key := day.Format(model.DayLayout)
	if _, err := tx.ExecContext(ctx, `DELETE FROM attendance WHERE day = ?`, key); err != nil {
		return fmt.Errorf("failed to clear attendance day: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO attendance (day, position, name, designation, enter_time, exit_time)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, s := range sessions {
		var exit interface{}
		if s.ExitTime != nil {
			exit = s.ExitTime.Format(model.TimestampLayout)
		}
		if _, err := stmt.ExecContext(ctx, key, i, s.Name, s.Designation.String(), s.EnterTime.Format(model.TimestampLayout), exit); err != nil {
			return fmt.Errorf("failed to insert attendance: %w", err)
		}
	}

	return tx.Commit()
}

func parseSession(name, designation, enter, exit string, loc *time.Location) (model.AttendanceSession, error) {
	d, err := model.ParseDesignation(designation)
	if err != nil {
		return model.AttendanceSession{}, err
	}
	enterTime, err := time.ParseInLocation(model.TimestampLayout, enter, loc)
	if err != nil {
		return model.AttendanceSession{}, fmt.Errorf("invalid enter time %q: %w", enter, err)
	}

	s := model.AttendanceSession{Name: name, Designation: d, EnterTime: enterTime}
	if exit != "" {
		exitTime, err := time.ParseInLocation(model.TimestampLayout, exit, loc)
		if err != nil {
			return model.AttendanceSession{}, fmt.Errorf("invalid exit time %q: %w", exit, err)
		}
		s.ExitTime = &exitTime
	}
	return s, nil
}
