// Package intruder keeps one capture per distinct unrecognized face.
package intruder

import (
	"context"
	"sync"

	"campusguard/internal/logger"
	"campusguard/internal/model"
	"campusguard/internal/service/alert"
	"campusguard/internal/service/oracle"
)

// Saver persists the capture of a new intruder.
type Saver interface {
	Save(ctx context.Context, det model.ResolvedDetection) (*model.IntruderRecord, error)
}

// Registry deduplicates reported faces against the records captured so far.
// No two records it holds are considered a match by the oracle.
type Registry struct {
	oracle  oracle.Oracle
	saver   Saver
	alerter alert.Alerter
	logger  *logger.Logger

	mu         sync.Mutex
	records    []model.IntruderRecord
	embeddings []model.Embedding
}

func NewRegistry(o oracle.Oracle, saver Saver, alerter alert.Alerter, logger *logger.Logger) *Registry {
	return &Registry{oracle: o, saver: saver, alerter: alerter, logger: logger}
}

// Report captures det unless it matches an existing record. It reports
// whether a new record was stored. A failed save leaves the registry
// unchanged so the face is retried on its next sighting.
func (r *Registry) Report(ctx context.Context, det model.ResolvedDetection) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if oracle.AnyMatch(r.oracle, r.embeddings, det.Embedding) {
		return false, nil
	}

	rec, err := r.saver.Save(ctx, det)
	if err != nil {
		return false, err
	}

	r.records = append(r.records, *rec)
	r.embeddings = append(r.embeddings, rec.Embedding)
	r.logger.Warning("🚨 New intruder on camera %d: %s", det.Camera, rec.Filename)

	if err := r.alerter.Alert(ctx, alert.IntruderMessage); err != nil {
		r.logger.Error("Intruder alert failed: %v", err)
	}
	return true, nil
}

// Records returns the captured records in capture order.
func (r *Registry) Records() []model.IntruderRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.IntruderRecord(nil), r.records...)
}

// Len returns the number of distinct intruders captured.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// Clear forgets every record. Stored images are kept.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = nil
	r.embeddings = nil
}
