// Package camera keeps the camera-to-role bindings and the restricted-area
// access policy.
package camera

import (
	"fmt"
	"sync"

	"campusguard/internal/model"
)

// DefaultMaxProbe bounds how many device indices are probed.
const DefaultMaxProbe = 10

// Prober reports whether a camera device index can be opened.
type Prober interface {
	Probe(index int) bool
}

// Registry owns the current bindings and access policy. Both are replaced
// together by an assignment session and never patched individually.
type Registry struct {
	prober   Prober
	maxProbe int

	mu         sync.RWMutex
	bindings   []model.CameraBinding
	policy     model.AccessPolicy
	generation int
}

// NewRegistry creates an empty registry.
func NewRegistry(prober Prober, maxProbe int) *Registry {
	if maxProbe <= 0 {
		maxProbe = DefaultMaxProbe
	}
	return &Registry{prober: prober, maxProbe: maxProbe}
}

// DetectAvailable probes indices from 0 and stops at the first one that
// cannot be opened.
func (r *Registry) DetectAvailable() []model.CameraID {
	var cameras []model.CameraID
	for i := 0; i < r.maxProbe; i++ {
		if !r.prober.Probe(i) {
			break
		}
		cameras = append(cameras, model.CameraID(i))
	}
	return cameras
}

// BeginAssignment discards the current bindings and policy and opens a
// session assigning the first count available cameras.
func (r *Registry) BeginAssignment(count int) (*Assignment, error) {
	available := r.DetectAvailable()

	r.mu.Lock()
	r.bindings = nil
	r.policy = model.AccessPolicy{}
	r.generation++
	gen := r.generation
	r.mu.Unlock()

	if len(available) == 0 {
		return nil, fmt.Errorf("%w: no cameras detected", model.ErrConfiguration)
	}
	if count <= 0 {
		return nil, fmt.Errorf("%w: camera count must be positive", model.ErrConfiguration)
	}
	if count > len(available) {
		return nil, fmt.Errorf("%w: %d cameras requested, only %d available", model.ErrConfiguration, count, len(available))
	}

	return &Assignment{
		registry:   r,
		generation: gen,
		cameras:    available[:count],
		roles:      make(map[model.CameraID]model.CameraRole, count),
	}, nil
}

// Bindings returns the bindings in registry order: grouped by role in
// model.CameraRoles order, assignment order within a role.
func (r *Registry) Bindings() []model.CameraBinding {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.CameraBinding(nil), r.bindings...)
}

// CurrentBindings returns the bound cameras grouped by role.
func (r *Registry) CurrentBindings() map[model.CameraRole][]model.CameraID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	grouped := make(map[model.CameraRole][]model.CameraID)
	for _, b := range r.bindings {
		grouped[b.Role] = append(grouped[b.Role], b.Camera)
	}
	return grouped
}

// Policy returns a copy of the restricted-area policy.
func (r *Registry) Policy() model.AccessPolicy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.policy.Clone()
}

// Snapshot returns bindings and policy read under one lock.
func (r *Registry) Snapshot() ([]model.CameraBinding, model.AccessPolicy) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.CameraBinding(nil), r.bindings...), r.policy.Clone()
}

func (r *Registry) commit(gen int, bindings []model.CameraBinding, policy model.AccessPolicy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.generation {
		return fmt.Errorf("%w: assignment session was superseded", model.ErrConfiguration)
	}
	r.bindings = bindings
	r.policy = policy
	r.generation++
	return nil
}

// Assignment stages role assignments until Commit.
type Assignment struct {
	registry   *Registry
	generation int
	cameras    []model.CameraID
	roles      map[model.CameraID]model.CameraRole
	order      []model.CameraID
	policy     model.AccessPolicy
	done       bool
}

// Cameras returns the cameras this session must assign.
func (a *Assignment) Cameras() []model.CameraID {
	return append([]model.CameraID(nil), a.cameras...)
}

// Assign stages a role for a camera. RestrictedArea requires an access
// policy; the latest one supplied in the session wins.
func (a *Assignment) Assign(camera model.CameraID, role model.CameraRole, access *model.AccessPolicy) error {
	if a.done {
		return fmt.Errorf("%w: assignment session already closed", model.ErrConfiguration)
	}
	if !a.covers(camera) {
		return fmt.Errorf("%w: camera %d is not part of this assignment", model.ErrConfiguration, camera)
	}
	if _, ok := a.roles[camera]; ok {
		return fmt.Errorf("%w: camera %d already assigned", model.ErrConfiguration, camera)
	}
	if !role.Valid() {
		return fmt.Errorf("%w: invalid role %d", model.ErrConfiguration, int(role))
	}
	if role == model.RestrictedArea {
		if access == nil {
			return fmt.Errorf("%w: restricted area camera %d needs an access policy", model.ErrConfiguration, camera)
		}
		a.policy = access.Clone()
	}

	a.roles[camera] = role
	a.order = append(a.order, camera)
	return nil
}

// Commit publishes the staged bindings and policy. Every camera of the
// session must have been assigned.
func (a *Assignment) Commit() error {
	if a.done {
		return fmt.Errorf("%w: assignment session already closed", model.ErrConfiguration)
	}
	for _, c := range a.cameras {
		if _, ok := a.roles[c]; !ok {
			return fmt.Errorf("%w: camera %d has no role", model.ErrConfiguration, c)
		}
	}

	bindings := make([]model.CameraBinding, 0, len(a.order))
	for _, role := range model.CameraRoles {
		for _, c := range a.order {
			if a.roles[c] == role {
				bindings = append(bindings, model.CameraBinding{Camera: c, Role: role})
			}
		}
	}

	if err := a.registry.commit(a.generation, bindings, a.policy); err != nil {
		return err
	}
	a.done = true
	return nil
}

func (a *Assignment) covers(camera model.CameraID) bool {
	for _, c := range a.cameras {
		if c == camera {
			return true
		}
	}
	return false
}
