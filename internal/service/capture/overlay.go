package capture

import (
	"encoding/base64"
	"image"
	"image/color"

	"campusguard/internal/logger"
	"campusguard/internal/model"

	"gocv.io/x/gocv"
)

// Broadcaster pushes JSON messages to live viewers.
type Broadcaster interface {
	BroadcastJSON(v any) error
	GetClientCount() int
}

// FrameMessage is one annotated frame sent to viewers.
type FrameMessage struct {
	Type   string `json:"type"`
	Camera int    `json:"camera"`
	Role   string `json:"role"`
	Image  string `json:"image"`
}

var (
	knownColor   = color.RGBA{G: 255, A: 255}
	unknownColor = color.RGBA{R: 255, A: 255}
)

// Overlay draws detections onto frames and forwards them to viewers.
type Overlay struct {
	hub    Broadcaster
	logger *logger.Logger
}

func NewOverlay(hub Broadcaster, logger *logger.Logger) *Overlay {
	return &Overlay{hub: hub, logger: logger}
}

// Show renders a box and "name (designation)" label for every detection.
// Nothing is rendered while no viewer is connected.
func (o *Overlay) Show(binding model.CameraBinding, frame image.Image, detections []model.ResolvedDetection) {
	if o.hub.GetClientCount() == 0 {
		return
	}

	data, err := o.Render(frame, detections)
	if err != nil {
		o.logger.Error("Failed to render frame of %s: %v", binding, err)
		return
	}

	msg := FrameMessage{
		Type:   "frame",
		Camera: int(binding.Camera),
		Role:   binding.Role.String(),
		Image:  base64.StdEncoding.EncodeToString(data),
	}
	if err := o.hub.BroadcastJSON(msg); err != nil {
		o.logger.Error("Failed to send frame of %s: %v", binding, err)
	}
}

// Render returns the annotated frame as JPEG.
func (o *Overlay) Render(frame image.Image, detections []model.ResolvedDetection) ([]byte, error) {
	mat, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	for _, det := range detections {
		c := unknownColor
		if det.Identity.Known {
			c = knownColor
		}
		if err := gocv.Rectangle(&mat, det.Region, c, 2); err != nil {
			return nil, err
		}
		pt := image.Pt(det.Region.Min.X, det.Region.Min.Y-5)
		if err := gocv.PutText(&mat, det.Identity.Label(), pt, gocv.FontHersheySimplex, 0.5, c, 1); err != nil {
			return nil, err
		}
	}

	buf, err := gocv.IMEncode(".jpg", mat)
	if err != nil {
		return nil, err
	}
	defer buf.Close()
	out := make([]byte, len(buf.GetBytes()))
	copy(out, buf.GetBytes())
	return out, nil
}
