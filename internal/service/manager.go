// Package service composes the recognition pipeline into runs driven by the
// operator console.
package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"campusguard/internal/config"
	"campusguard/internal/logger"
	"campusguard/internal/model"
	"campusguard/internal/service/access"
	"campusguard/internal/service/alert"
	"campusguard/internal/service/pipeline"
)

// State of the manager.
type State int

const (
	Idle State = iota
	Starting
	Polling
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Starting:
		return "starting"
	case Polling:
		return "polling"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Mode tells what a run does with its detections.
type Mode string

const (
	ModeRecognition Mode = "recognition"
	ModeTracking    Mode = "tracking"
)

// BindingSource provides the bindings and access policy a run starts with.
type BindingSource interface {
	Snapshot() ([]model.CameraBinding, model.AccessPolicy)
}

// IdentityLoader loads the known identities at the start of every run.
// Identities returns the result of the last load.
type IdentityLoader interface {
	Load(ctx context.Context) ([]model.KnownIdentity, error)
	Identities() []model.KnownIdentity
}

// AttendanceLedger records gate events.
type AttendanceLedger interface {
	RecordEntry(ctx context.Context, name string, d model.Designation, at time.Time) (bool, error)
	RecordExit(ctx context.Context, name string, d model.Designation, at time.Time) (bool, error)
}

// IntruderReporter receives unknown and denied detections.
type IntruderReporter interface {
	Report(ctx context.Context, det model.ResolvedDetection) (bool, error)
}

// Status describes the current or last run.
type Status struct {
	State    string                `json:"state"`
	Mode     Mode                  `json:"mode,omitempty"`
	Target   string                `json:"target,omitempty"`
	Cycles   int                   `json:"cycles"`
	Bindings []model.CameraBinding `json:"bindings,omitempty"`
	Started  *time.Time            `json:"started,omitempty"`
}

// Manager runs recognition or tracking over the bound cameras. At most one
// run is active. Bindings and identities are fixed when a run starts.
type Manager struct {
	registry   BindingSource
	identities IdentityLoader
	opener     pipeline.Opener
	resolver   *pipeline.Resolver
	ledger     AttendanceLedger
	intruders  IntruderReporter
	alerter    alert.Alerter
	logger     *logger.Logger

	readTimeout time.Duration
	interval    time.Duration

	mu      sync.Mutex
	state   State
	status  Status
	cancel  context.CancelFunc
	done    chan struct{}
	cycles  int
	started time.Time

	// afterCycle is called on the loop goroutine after every dispatch step.
	afterCycle func(cycle int, results []frameResult)
}

func NewManager(
	config *config.Config,
	registry BindingSource,
	identities IdentityLoader,
	opener pipeline.Opener,
	resolver *pipeline.Resolver,
	ledger AttendanceLedger,
	intruders IntruderReporter,
	alerter alert.Alerter,
	logger *logger.Logger,
) *Manager {
	readTimeout := config.CameraReadTimeout
	if readTimeout <= 0 {
		readTimeout = 2 * time.Second
	}
	return &Manager{
		registry:    registry,
		identities:  identities,
		opener:      opener,
		resolver:    resolver,
		ledger:      ledger,
		intruders:   intruders,
		alerter:     alerter,
		logger:      logger,
		readTimeout: readTimeout,
		interval:    config.CycleInterval,
	}
}

// run is the configuration of one active run.
type run struct {
	mode     Mode
	workers  []*cameraWorker
	process  processFunc
	dispatch func(ctx context.Context, res frameResult)
}

// Start launches face recognition across every bound camera. It fails with
// ErrConfiguration when no camera is bound or no identity is known.
func (m *Manager) Start(ctx context.Context) error {
	loadCtx, prev, err := m.reserve(ctx)
	if err != nil {
		return err
	}

	bindings, policy, gallery, _, err := m.prepare(loadCtx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.settle(loadCtx, prev, err); err != nil {
		return err
	}

	engine := access.NewEngine(policy, m.alerter, m.intruders, m.logger)
	r := &run{
		mode:    ModeRecognition,
		workers: m.newWorkers(bindings),
		process: func(ctx context.Context, b model.CameraBinding, frame image.Image) ([]model.ResolvedDetection, error) {
			return m.resolver.Resolve(ctx, b, frame, gallery)
		},
		dispatch: func(ctx context.Context, res frameResult) {
			for _, det := range res.detections {
				m.dispatch(ctx, engine, det)
			}
		},
	}

	m.launch(ctx, r, bindings, "")
	m.logger.Info("🎬 Recognition started on %d camera(s), %d known face(s), restricted access: %s", len(bindings), gallery.Len(), policy)
	return nil
}

// reserve moves the manager to Starting so that identities load without
// m.mu held. The returned context is cancelled by Stop.
func (m *Manager) reserve(ctx context.Context) (context.Context, State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == Starting || m.state == Polling {
		return nil, m.state, model.ErrAlreadyRunning
	}
	prev := m.state
	loadCtx, cancel := context.WithCancel(ctx)
	m.state = Starting
	m.cancel = cancel
	return loadCtx, prev, nil
}

// settle ends the Starting phase and must be called with m.mu held. On error,
// or when Stop came during the load, the previous state is restored.
func (m *Manager) settle(loadCtx context.Context, prev State, err error) error {
	if err == nil && loadCtx.Err() != nil {
		err = fmt.Errorf("start aborted: %w", loadCtx.Err())
	}
	m.cancel()
	m.cancel = nil
	if err != nil {
		m.state = prev
	}
	return err
}

// prepare snapshots the bindings and loads identities for a new run.
func (m *Manager) prepare(ctx context.Context) ([]model.CameraBinding, model.AccessPolicy, *pipeline.Gallery, []model.KnownIdentity, error) {
	bindings, policy := m.registry.Snapshot()
	if len(bindings) == 0 {
		return nil, policy, nil, nil, fmt.Errorf("%w: no cameras assigned", model.ErrConfiguration)
	}

	identities, err := m.identities.Load(ctx)
	if err != nil {
		return nil, policy, nil, nil, fmt.Errorf("load known faces: %w", err)
	}
	if len(identities) == 0 {
		return nil, policy, nil, nil, fmt.Errorf("%w: no known faces loaded", model.ErrConfiguration)
	}
	return bindings, policy, pipeline.NewGallery(identities), identities, nil
}

func (m *Manager) newWorkers(bindings []model.CameraBinding) []*cameraWorker {
	workers := make([]*cameraWorker, len(bindings))
	for i, b := range bindings {
		workers[i] = newCameraWorker(b, m.opener)
	}
	return workers
}

// launch must be called with m.mu held.
func (m *Manager) launch(ctx context.Context, r *run, bindings []model.CameraBinding, target string) {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	m.cancel = cancel
	m.done = make(chan struct{})
	m.state = Polling
	m.cycles = 0
	m.started = time.Now()
	m.status = Status{Mode: r.mode, Target: target, Bindings: bindings}

	go m.loop(runCtx, r, m.done)
}

// dispatch routes one detection by the role of its camera. Every unknown face
// outside restricted areas goes to the intruder registry; restricted areas
// forward denials through the access engine.
func (m *Manager) dispatch(ctx context.Context, engine *access.Engine, det model.ResolvedDetection) {
	switch det.Role {
	case model.EntryGate:
		if det.Identity.Known {
			if _, err := m.ledger.RecordEntry(ctx, det.Identity.Name, det.Identity.Designation, det.DetectedAt); err != nil {
				m.logger.Error("Attendance entry for %s failed: %v", det.Identity.Label(), err)
			}
		}
	case model.ExitGate:
		if det.Identity.Known {
			if _, err := m.ledger.RecordExit(ctx, det.Identity.Name, det.Identity.Designation, det.DetectedAt); err != nil {
				m.logger.Error("Attendance exit for %s failed: %v", det.Identity.Label(), err)
			}
		}
	case model.RestrictedArea:
		if _, err := engine.Evaluate(ctx, det); err != nil {
			m.logger.Error("Access check on camera %d failed: %v", det.Camera, err)
		}
	case model.Classroom, model.Ordinary:
	default:
		m.logger.Warning("Detection from camera %d with unknown role %d", det.Camera, int(det.Role))
	}

	if !det.Identity.Known && det.Role != model.RestrictedArea {
		if _, err := m.intruders.Report(ctx, det); err != nil {
			m.logger.Error("Intruder capture on camera %d failed: %v", det.Camera, err)
		}
	}
}

// loop drives cycles until ctx is cancelled. Cancellation is only observed
// between cycles; the dispatch step of a cycle always completes.
func (m *Manager) loop(ctx context.Context, r *run, done chan struct{}) {
	defer close(done)
	defer m.finish(r)

	dispatchCtx := context.WithoutCancel(ctx)
	for cycle := 1; ; cycle++ {
		if ctx.Err() != nil {
			return
		}

		results := sweep(ctx, r.workers, m.readTimeout, r.process)
		for _, res := range results {
			if res.err != nil {
				if !errors.Is(res.err, context.Canceled) {
					m.logger.Warning("%v", res.err)
				}
				continue
			}
			r.dispatch(dispatchCtx, res)
		}

		m.mu.Lock()
		m.cycles = cycle
		m.mu.Unlock()

		if m.afterCycle != nil {
			m.afterCycle(cycle, results)
		}

		if m.interval > 0 {
			t := time.NewTimer(m.interval)
			select {
			case <-ctx.Done():
				t.Stop()
				return
			case <-t.C:
			}
		}
	}
}

func (m *Manager) finish(r *run) {
	for _, err := range releaseAll(r.workers, m.readTimeout) {
		if err != nil {
			m.logger.Warning("Camera release: %v", err)
		}
	}

	m.mu.Lock()
	m.state = Stopped
	cycles := m.cycles
	m.mu.Unlock()
	m.logger.Info("🛑 %s stopped after %d cycle(s)", r.mode, cycles)
}

// Stop cancels the active run and waits until its cameras are released. A
// run still loading identities is abandoned before it opens any camera.
// Stopping when nothing runs is a no-op.
func (m *Manager) Stop() {
	m.mu.Lock()
	switch m.state {
	case Starting:
		cancel := m.cancel
		m.mu.Unlock()
		cancel()
		return
	case Polling:
	default:
		m.mu.Unlock()
		return
	}
	cancel, done := m.cancel, m.done
	m.mu.Unlock()

	cancel()
	<-done
}

// State returns the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Active reports whether a run is starting or polling.
func (m *Manager) Active() bool {
	s := m.State()
	return s == Starting || s == Polling
}

// Status returns a description of the current or last run.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.status
	s.State = m.state.String()
	s.Cycles = m.cycles
	s.Bindings = append([]model.CameraBinding(nil), m.status.Bindings...)
	if !m.started.IsZero() {
		started := m.started
		s.Started = &started
	}
	return s
}
