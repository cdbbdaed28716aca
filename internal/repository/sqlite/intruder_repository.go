package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"campusguard/internal/model"
)

// IntruderRepository implements repository.IntruderRepository for SQLite.
type IntruderRepository struct {
	db *DB
}

// NewIntruderRepository creates a new SQLite intruder repository.
func NewIntruderRepository(db *DB) *IntruderRepository {
	return &IntruderRepository{db: db}
}

// Insert adds a new intruder record to the database.
func (r *IntruderRepository) Insert(ctx context.Context, rec *model.IntruderRecord) error {
	r.db.Lock()
	defer r.db.Unlock()

	_, err := r.db.Conn().ExecContext(ctx, `
		INSERT INTO intruders (id, camera, filename, filepath, captured_at, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.ID, int(rec.Camera), rec.Filename, rec.FilePath, rec.CapturedAt.Format(time.RFC3339), encodeEmbedding(rec.Embedding))
	if err != nil {
		return fmt.Errorf("failed to insert intruder: %w", err)
	}
	return nil
}

// GetAll returns every intruder record, newest first.
func (r *IntruderRepository) GetAll(ctx context.Context) ([]model.IntruderRecord, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().QueryContext(ctx, `
		SELECT id, camera, filename, filepath, captured_at, embedding
		FROM intruders ORDER BY captured_at DESC, filename DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query intruders: %w", err)
	}
	defer rows.Close()

	var records []model.IntruderRecord
	for rows.Next() {
		rec, err := scanIntruder(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// GetByFilename retrieves a record by its image file name.
func (r *IntruderRepository) GetByFilename(ctx context.Context, filename string) (*model.IntruderRecord, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	row := r.db.Conn().QueryRowContext(ctx, `
		SELECT id, camera, filename, filepath, captured_at, embedding
		FROM intruders WHERE filename = ?
	`, filename)

	rec, err := scanIntruder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

// DeleteAll removes all intruder records.
func (r *IntruderRepository) DeleteAll(ctx context.Context) error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().ExecContext(ctx, `DELETE FROM intruders`); err != nil {
		return fmt.Errorf("failed to delete intruders: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanIntruder(s scanner) (*model.IntruderRecord, error) {
	var (
		rec      model.IntruderRecord
		camera   int
		captured string
		blob     []byte
	)
	if err := s.Scan(&rec.ID, &camera, &rec.Filename, &rec.FilePath, &captured, &blob); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan intruder: %w", err)
	}

	ts, err := time.Parse(time.RFC3339, captured)
	if err != nil {
		return nil, fmt.Errorf("invalid capture time %q: %w", captured, err)
	}
	emb, err := decodeEmbedding(blob)
	if err != nil {
		return nil, err
	}

	rec.Camera = model.CameraID(camera)
	rec.CapturedAt = ts
	rec.Embedding = emb
	return &rec, nil
}
