package route

import (
	"net/http"
	"os"
	"path/filepath"

	"campusguard/internal/handler"
	"campusguard/internal/logger"
	"campusguard/internal/middleware"
	"campusguard/internal/service"
	"campusguard/internal/service/attendance"
	"campusguard/internal/service/auth"
	"campusguard/internal/service/camera"
	"campusguard/internal/service/identity"
	"campusguard/internal/service/intruder"
	"campusguard/internal/service/storage"
	"campusguard/internal/service/websocket"
)

// StaticDir holds the console pages.
const StaticDir = "static"

// Services are the components the console exposes.
type Services struct {
	Registry    *camera.Registry
	Identities  *identity.Store
	Manager     *service.Manager
	Ledger      *attendance.Ledger
	Captures    *storage.CaptureService
	Intruders   *intruder.Registry
	Credentials *auth.CredentialStore
	Sessions    *auth.SessionStore
	Hub         *websocket.HubService
	Grabber     handler.FrameGrabber
}

// dynamicHTMLHandler serves /path as /static/path.html if the file exists; otherwise 404.
func dynamicHTMLHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	if path == "/" {
		path = "/index"
	}

	filePath := filepath.Join(StaticDir, filepath.Clean("/"+path)+".html")

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, filePath)
}

// SetupRoutes registers HTTP routes, static file serving, API endpoints,
// and wraps the mux with the authentication middleware.
func SetupRoutes(s Services, logger *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	// Static files
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(StaticDir))))

	// Cameras
	mux.HandleFunc("/api/cameras", handler.CamerasHandler(s.Registry, logger))
	mux.HandleFunc("/api/cameras/available", handler.AvailableCamerasHandler(s.Registry, logger))
	mux.HandleFunc("/api/cameras/assign", handler.AssignCamerasHandler(s.Registry, s.Manager, logger))

	// Faces
	mux.HandleFunc("/api/faces", handler.FacesHandler(s.Identities, s.Grabber, s.Manager, logger))
	mux.HandleFunc("/api/faces/known", handler.KnownFacesHandler(s.Identities, logger))

	// Runs
	mux.HandleFunc("/api/recognition/start", handler.StartRecognitionHandler(s.Manager, logger))
	mux.HandleFunc("/api/recognition/stop", handler.StopRecognitionHandler(s.Manager, logger))
	mux.HandleFunc("/api/recognition/status", handler.RecognitionStatusHandler(s.Manager, logger))
	mux.HandleFunc("/api/track", handler.TrackHandler(s.Manager, logger))

	// Records
	mux.HandleFunc("/api/attendance", handler.AttendanceHandler(s.Ledger, logger))
	mux.HandleFunc("/api/intruders", handler.IntrudersHandler(s.Captures, s.Intruders, logger))
	mux.HandleFunc("/api/intruders/view", handler.ViewIntruderHandler(s.Captures, logger))
	mux.HandleFunc("/api/intruders/clear", handler.ClearIntrudersHandler(s.Captures, s.Intruders, logger))

	// Live view
	mux.HandleFunc("/api/view", handler.ViewWebsocketHandler(s.Hub, logger))

	// Log endpoints
	for _, name := range []string{"info", "warning", "error"} {
		file := name + ".log"
		mux.HandleFunc("/logs/"+name, handler.ShowLogsHandler(logger, file))
		mux.HandleFunc("/logs/"+name+"/clear", handler.ClearLogsHandler(logger, file))
	}

	// Auth endpoints
	mux.HandleFunc("/auth/setup", handler.SetupHandler(s.Credentials, s.Sessions, logger))
	mux.HandleFunc("/auth/login", handler.LoginHandler(s.Credentials, s.Sessions, logger))
	mux.HandleFunc("/auth/logout", handler.LogoutHandler(s.Sessions))
	mux.HandleFunc("/auth/password", handler.ChangePasswordHandler(s.Credentials, s.Sessions, logger))

	// Automatic HTML handler mapping for example: /settings -> /static/settings.html
	mux.HandleFunc("/", dynamicHTMLHandler)

	// Apply middleware
	return middleware.AuthMiddleware(s.Sessions)(mux)
}
