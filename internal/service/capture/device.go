// Package capture reads frames from local camera devices and renders the
// detection overlay for live viewers.
package capture

import (
	"fmt"
	"image"
	"sync"

	"campusguard/internal/logger"
	"campusguard/internal/model"
	"campusguard/internal/service/pipeline"

	"gocv.io/x/gocv"
)

// DeviceOpener opens cameras by device index.
type DeviceOpener struct {
	logger *logger.Logger
}

func NewDeviceOpener(logger *logger.Logger) *DeviceOpener {
	return &DeviceOpener{logger: logger}
}

// Probe reports whether device index can be opened. The device is released
// before returning.
func (o *DeviceOpener) Probe(index int) bool {
	vc, err := gocv.OpenVideoCapture(index)
	if err != nil {
		return false
	}
	defer vc.Close()
	return vc.IsOpened()
}

// Open starts capturing from camera.
func (o *DeviceOpener) Open(camera model.CameraID) (pipeline.Source, error) {
	vc, err := gocv.OpenVideoCapture(int(camera))
	if err != nil {
		return nil, fmt.Errorf("%w: open camera %d: %v", model.ErrCapture, camera, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w: camera %d is not available", model.ErrCapture, camera)
	}
	o.logger.Info("📹 Camera %d opened", camera)
	return &VideoSource{camera: camera, vc: vc, mat: gocv.NewMat(), logger: o.logger}, nil
}

// VideoSource reads frames from one gocv capture device.
type VideoSource struct {
	camera model.CameraID
	vc     *gocv.VideoCapture
	mat    gocv.Mat
	logger *logger.Logger
	mu     sync.Mutex
	closed bool
}

// Read grabs the next frame and converts it to an image.Image.
func (s *VideoSource) Read() (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("%w: camera %d is closed", model.ErrCapture, s.camera)
	}
	if ok := s.vc.Read(&s.mat); !ok || s.mat.Empty() {
		return nil, fmt.Errorf("%w: camera %d returned no frame", model.ErrCapture, s.camera)
	}

	img, err := s.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("%w: camera %d: %v", model.ErrCapture, s.camera, err)
	}
	return img, nil
}

// Close releases the device. Calling it twice is harmless.
func (s *VideoSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.mat.Close()
	if err := s.vc.Close(); err != nil {
		return fmt.Errorf("failed to release camera %d: %w", s.camera, err)
	}
	s.logger.Info("📹 Camera %d released", s.camera)
	return nil
}

// Snapshot opens camera, reads a single frame and releases the device.
func (o *DeviceOpener) Snapshot(camera model.CameraID) (image.Image, error) {
	src, err := o.Open(camera)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return src.Read()
}
