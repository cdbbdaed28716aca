package handler

import (
	"fmt"
	"image"
	"net/http"
	"strconv"

	"campusguard/internal/dto"
	"campusguard/internal/logger"
	"campusguard/internal/model"
	"campusguard/internal/service"
	"campusguard/internal/service/identity"

	"github.com/disintegration/imaging"
)

// MaxUploadSize bounds enrollment image uploads.
const MaxUploadSize = 10 << 20

// FrameGrabber captures a single frame from a camera.
type FrameGrabber interface {
	Snapshot(camera model.CameraID) (image.Image, error)
}

// parseDesignation accepts a menu number (1..4) or a designation name.
func parseDesignation(v string) (model.Designation, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return model.ParseDesignationChoice(n)
	}
	return model.ParseDesignation(v)
}

// FacesHandler serves /api/faces: GET lists, POST enrolls, DELETE removes.
func FacesHandler(store *identity.Store, grabber FrameGrabber, manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			listFaces(w, r, store, logger)
		case http.MethodPost:
			addFace(w, r, store, grabber, manager, logger)
		case http.MethodDelete:
			deleteFace(w, r, store, logger)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func listFaces(w http.ResponseWriter, r *http.Request, store *identity.Store, logger *logger.Logger) {
	designations := model.Designations
	if v := r.URL.Query().Get("designation"); v != "" {
		d, err := parseDesignation(v)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		designations = []model.Designation{d}
	}

	data := dto.FacesData{Faces: []dto.FaceInfo{}, Dir: store.Root()}
	for _, d := range designations {
		names, err := store.List(d)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		for _, name := range names {
			data.Faces = append(data.Faces, dto.FaceInfo{Name: name, Designation: d.String()})
		}
	}
	data.Length = len(data.Faces)
	writeJSON(w, logger, http.StatusOK, data)
}

func addFace(w http.ResponseWriter, r *http.Request, store *identity.Store, grabber FrameGrabber, manager *service.Manager, logger *logger.Logger) {
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		writeError(w, logger, fmt.Errorf("%w: %v", model.ErrInvalidInput, err))
		return
	}

	name, err := model.ValidateName(r.FormValue("name"))
	if err != nil {
		writeError(w, logger, err)
		return
	}
	d, err := parseDesignation(r.FormValue("designation"))
	if err != nil {
		writeError(w, logger, err)
		return
	}

	var img image.Image
	if file, _, err := r.FormFile("image"); err == nil {
		defer file.Close()
		img, err = imaging.Decode(file, imaging.AutoOrientation(true))
		if err != nil {
			writeError(w, logger, fmt.Errorf("%w: cannot decode image: %v", model.ErrInvalidInput, err))
			return
		}
	} else if v := r.FormValue("camera"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, logger, fmt.Errorf("%w: bad camera %q", model.ErrInvalidInput, v))
			return
		}
		if manager.Active() {
			writeError(w, logger, fmt.Errorf("%w: cameras are in use", model.ErrAlreadyRunning))
			return
		}
		img, err = grabber.Snapshot(model.CameraID(n))
		if err != nil {
			writeError(w, logger, err)
			return
		}
	} else {
		writeError(w, logger, fmt.Errorf("%w: an image file or a camera is required", model.ErrInvalidInput))
		return
	}

	path, err := store.Add(name, d, img)
	if err != nil {
		writeError(w, logger, err)
		return
	}
	logger.Info("👤 Face added: %s (%s)", name, d)
	writeJSON(w, logger, http.StatusCreated, map[string]string{"name": name, "designation": d.String(), "path": path})
}

func deleteFace(w http.ResponseWriter, r *http.Request, store *identity.Store, logger *logger.Logger) {
	q := r.URL.Query()
	name, err := model.ValidateName(q.Get("name"))
	if err != nil {
		writeError(w, logger, err)
		return
	}
	d, err := parseDesignation(q.Get("designation"))
	if err != nil {
		writeError(w, logger, err)
		return
	}

	if err := store.Remove(name, d); err != nil {
		writeError(w, logger, err)
		return
	}
	logger.Info("👤 Face deleted: %s (%s)", name, d)
	writeJSON(w, logger, http.StatusOK, map[string]string{"status": "deleted", "name": name})
}

// KnownFacesHandler handles GET /api/faces/known: the identities of the last
// load, in the order /api/track indexes them.
func KnownFacesHandler(store *identity.Store, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodGet) {
			return
		}
		if r.URL.Query().Get("reload") == "true" {
			if _, err := store.Load(r.Context()); err != nil {
				writeError(w, logger, err)
				return
			}
		}

		data := dto.FacesData{Faces: []dto.FaceInfo{}, Dir: store.Root()}
		for _, id := range store.Identities() {
			data.Faces = append(data.Faces, dto.FaceInfo{Name: id.Name, Designation: id.Designation.String()})
		}
		data.Length = len(data.Faces)
		writeJSON(w, logger, http.StatusOK, data)
	}
}
