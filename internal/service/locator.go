package service

import (
	"context"
	"fmt"
	"image"

	"campusguard/internal/model"
	"campusguard/internal/service/alert"
)

// Track launches a search for one known identity, selected by its 0-based
// position in the identity list the operator was last shown. The identities
// are reloaded for the run and the target is looked up there by name and
// designation; with no earlier list the position indexes the fresh load. On
// every cycle each camera stops at its first match and raises a location
// alert.
func (m *Manager) Track(ctx context.Context, index int) (model.KnownIdentity, error) {
	listed := m.identities.Identities()

	loadCtx, prev, err := m.reserve(ctx)
	if err != nil {
		return model.KnownIdentity{}, err
	}

	bindings, _, _, identities, err := m.prepare(loadCtx)
	var target model.KnownIdentity
	if err == nil {
		target, err = selectTarget(listed, identities, index)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.settle(loadCtx, prev, err); err != nil {
		return model.KnownIdentity{}, err
	}

	r := &run{
		mode:    ModeTracking,
		workers: m.newWorkers(bindings),
		process: func(ctx context.Context, b model.CameraBinding, frame image.Image) ([]model.ResolvedDetection, error) {
			found, err := m.resolver.Locate(ctx, b, frame, target)
			if err != nil || found == nil {
				return nil, err
			}
			return []model.ResolvedDetection{*found}, nil
		},
		dispatch: func(ctx context.Context, res frameResult) {
			if len(res.detections) == 0 {
				return
			}
			m.located(ctx, target, res.binding)
		},
	}

	label := model.KnownAs(target.Name, target.Designation).Label()
	m.launch(ctx, r, bindings, label)
	m.logger.Info("🔎 Tracking %s on %d camera(s)", label, len(bindings))
	return target, nil
}

func (m *Manager) located(ctx context.Context, target model.KnownIdentity, where model.CameraBinding) {
	msg := alert.Located(target.Name, where.String())
	m.logger.Info("📍 %s", msg)
	if err := m.alerter.Alert(ctx, msg); err != nil {
		m.logger.Error("Location alert failed: %v", err)
	}
}

// selectTarget resolves index against listed, then finds that person in the
// fresh load so that enrolments made in between cannot shift the choice.
func selectTarget(listed, loaded []model.KnownIdentity, index int) (model.KnownIdentity, error) {
	choices := listed
	if len(choices) == 0 {
		choices = loaded
	}
	if index < 0 || index >= len(choices) {
		return model.KnownIdentity{}, fmt.Errorf("%w: no known face at position %d", model.ErrNotFound, index)
	}
	if len(listed) == 0 {
		return loaded[index], nil
	}

	want := listed[index]
	for _, id := range loaded {
		if id.Name == want.Name && id.Designation == want.Designation {
			return id, nil
		}
	}
	return model.KnownIdentity{}, fmt.Errorf("%w: %s (%s) is no longer enrolled", model.ErrNotFound, want.Name, want.Designation)
}
