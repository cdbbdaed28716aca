package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/exec"
	"time"

	"campusguard/internal/config"
	"campusguard/internal/logger"
	"campusguard/internal/repository"
	"campusguard/internal/repository/sqlite"
	"campusguard/internal/repository/xlsx"
	"campusguard/internal/route"
	"campusguard/internal/service"
	"campusguard/internal/service/ai"
	"campusguard/internal/service/alert"
	"campusguard/internal/service/attendance"
	"campusguard/internal/service/auth"
	"campusguard/internal/service/camera"
	"campusguard/internal/service/capture"
	"campusguard/internal/service/identity"
	"campusguard/internal/service/intruder"
	"campusguard/internal/service/oracle"
	"campusguard/internal/service/pipeline"
	"campusguard/internal/service/storage"
	"campusguard/internal/service/websocket"
)

type App struct {
	config  *config.Config
	logger  *logger.Logger
	db      *sqlite.DB
	faces   *ai.FaceService
	hub     *websocket.HubService
	manager *service.Manager
	router  http.Handler
}

// NewApp wires every component from the loaded configuration.
func NewApp() (*App, error) {
	cfg := config.Load()
	log := logger.NewLogger(cfg)

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	var ledgerRepo repository.AttendanceRepository
	switch cfg.LedgerBackend {
	case "xlsx":
		ledgerRepo = xlsx.NewAttendanceRepository(cfg.LedgerDir, log)
	case "sqlite":
		ledgerRepo = sqlite.NewAttendanceRepository(db)
	default:
		db.Close()
		log.Close()
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.LedgerBackend)
	}

	hub := websocket.NewHubService(log)
	alerter := newAlerter(cfg, hub, log)

	faces := ai.NewFaceService(cfg, log)
	opener := capture.NewDeviceOpener(log)
	matcher := oracle.NewDistanceOracle(cfg.MatchTolerance)

	registry := camera.NewRegistry(opener, cfg.MaxCameraProbe)
	store := identity.NewStore(cfg.KnownFacesDir, faces, log)
	resolver := pipeline.NewResolver(faces, matcher, capture.NewOverlay(hub, log))
	ledger := attendance.NewLedger(ledgerRepo, log, nil)
	captures := storage.NewCaptureService(cfg.IntruderDir, sqlite.NewIntruderRepository(db), log)
	intruders := intruder.NewRegistry(matcher, captures, alerter, log)

	manager := service.NewManager(cfg, registry, store, opener, resolver, ledger, intruders, alerter, log)

	router := route.SetupRoutes(route.Services{
		Registry:    registry,
		Identities:  store,
		Manager:     manager,
		Ledger:      ledger,
		Captures:    captures,
		Intruders:   intruders,
		Credentials: auth.NewCredentialStore(cfg.PasswordFile),
		Sessions:    auth.NewSessionStore(cfg.SessionTTL),
		Hub:         hub,
		Grabber:     opener,
	}, log)

	return &App{
		config:  cfg,
		logger:  log,
		db:      db,
		faces:   faces,
		hub:     hub,
		manager: manager,
		router:  router,
	}, nil
}

// newAlerter always logs and notifies viewers; speech is added when the
// configured command is installed.
func newAlerter(cfg *config.Config, hub *websocket.HubService, log *logger.Logger) alert.Alerter {
	alerters := alert.Multi{alert.NewLogAlerter(log), alert.NewHubAlerter(hub)}
	if cfg.SpeechCommand == "" {
		return alerters
	}
	if _, err := exec.LookPath(cfg.SpeechCommand); err != nil {
		log.Warning("Speech command %q not found, audio alerts disabled", cfg.SpeechCommand)
		return alerters
	}
	return append(alerters, alert.NewSpeechAlerter(cfg.SpeechCommand))
}

// Run serves the console until ctx is cancelled, then stops any active run
// and shuts the server down.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	go a.hub.Run(ctx)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.config.Port),
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	a.logger.Info("🚀 Campus surveillance console")
	a.logger.Info("📍 URL: http://localhost:%d", a.config.Port)
	a.logger.Info("👤 Known faces: %s", a.config.KnownFacesDir)
	a.logger.Info("📒 Ledger: %s (%s)", a.config.LedgerBackend, a.config.LedgerDir)
	a.logger.Info("🚨 Intruders: %s", a.config.IntruderDir)
	if !a.faces.Ready() {
		a.logger.Warning("Face networks are not loaded; recognition will fail until models are installed")
	}

	select {
	case err := <-errCh:
		a.manager.Stop()
		return err
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down")
	a.manager.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) close() {
	a.faces.Close()
	if err := a.db.Close(); err != nil {
		a.logger.Error("Failed to close database: %v", err)
	}
	a.logger.Close()
}
