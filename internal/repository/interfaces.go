package repository

import (
	"context"
	"time"

	"campusguard/internal/model"
)

// AttendanceRepository stores the attendance ledger as one partition per
// calendar day. SaveDay replaces the whole partition.
type AttendanceRepository interface {
	LoadDay(ctx context.Context, day time.Time) ([]model.AttendanceSession, error)
	SaveDay(ctx context.Context, day time.Time, sessions []model.AttendanceSession) error
}

// IntruderRepository stores metadata of captured intruder images.
type IntruderRepository interface {
	// Create operations
	Insert(ctx context.Context, rec *model.IntruderRecord) error

	// Read operations
	GetAll(ctx context.Context) ([]model.IntruderRecord, error)
	GetByFilename(ctx context.Context, filename string) (*model.IntruderRecord, error)

	// Delete operations
	DeleteAll(ctx context.Context) error
}
