package ai

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"campusguard/internal/config"
	"campusguard/internal/logger"
	"campusguard/internal/model"

	"gocv.io/x/gocv"
)

const (
	// DetectionThreshold is the default minimum face confidence.
	DetectionThreshold = 0.5
	// MinFaceSize drops detections smaller than this many pixels per side.
	MinFaceSize = 20
	// EmbeddingSize is the length of an OpenFace descriptor.
	EmbeddingSize = 128
)

// ErrNotInitialized is returned when the networks could not be loaded.
var ErrNotInitialized = errors.New("face networks not initialized")

// FaceService finds faces with an SSD face detector and describes each with
// an OpenFace embedding. gocv networks are not safe for concurrent use, so
// every call holds mu.
type FaceService struct {
	detector  gocv.Net
	embedder  gocv.Net
	ready     bool
	threshold float32

	modelPath    string
	configPath   string
	embedderPath string

	mu     sync.Mutex
	logger *logger.Logger
}

// NewFaceService loads both networks. A service whose networks fail to load
// is still returned; its DetectFaces reports ErrNotInitialized.
func NewFaceService(config *config.Config, logger *logger.Logger) *FaceService {
	threshold := config.DetectionThreshold
	if threshold <= 0 {
		threshold = DetectionThreshold
	}
	service := &FaceService{
		modelPath:    config.DetectorModelPath,
		configPath:   config.DetectorConfigPath,
		embedderPath: config.EmbedderModelPath,
		threshold:    float32(threshold),
		logger:       logger,
	}

	if err := service.initializeNets(); err != nil {
		service.logger.Warning("Could not initialize face networks: %v", err)
		return service
	}
	return service
}

// initializeNets loads the detector and embedder and sets backend/target preferences.
func (s *FaceService) initializeNets() error {
	for _, path := range []string{s.modelPath, s.configPath, s.embedderPath} {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("model file not found: %s", path)
		}
	}

	detector := gocv.ReadNet(s.modelPath, s.configPath)
	if detector.Empty() {
		return fmt.Errorf("failed to load face detector")
	}
	embedder := gocv.ReadNetFromTorch(s.embedderPath)
	if embedder.Empty() {
		detector.Close()
		return fmt.Errorf("failed to load face embedder")
	}

	for _, net := range []*gocv.Net{&detector, &embedder} {
		errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
		errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)
		if errBackend != nil || errTarget != nil {
			detector.Close()
			embedder.Close()
			return fmt.Errorf("failed to set preferable backend or target")
		}
	}

	s.detector = detector
	s.embedder = embedder
	s.ready = true
	s.logger.Info("Face networks initialized successfully")
	return nil
}

// Ready reports whether both networks are loaded.
func (s *FaceService) Ready() bool {
	return s.ready
}

// DetectFaces returns every face above the confidence threshold together
// with its embedding. No faces is an empty result.
func (s *FaceService) DetectFaces(ctx context.Context, frame image.Image) ([]model.Face, error) {
	if !s.ready {
		return nil, ErrNotInitialized
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mat, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		return nil, fmt.Errorf("failed to convert frame: %v", err)
	}
	defer mat.Close()
	if mat.Empty() {
		return nil, fmt.Errorf("frame is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// res10 SSD expects 300x300 BGR with the Caffe mean subtracted
	blob := gocv.BlobFromImage(mat, 1.0, image.Pt(300, 300), gocv.NewScalar(104, 177, 123, 0), false, false)
	defer blob.Close()

	s.detector.SetInput(blob, "")
	output := s.detector.Forward("")
	defer output.Close()

	bounds := image.Rect(0, 0, mat.Cols(), mat.Rows())
	var faces []model.Face

	// Process detections with output: [ batch_id, class_id, confidence, x1, y1, x2, y2 ]
	outputReshaped := output.Reshape(1, output.Total()/7)
	defer outputReshaped.Close()
	for i := 0; i < outputReshaped.Rows(); i++ {
		confidence := outputReshaped.GetFloatAt(i, 2)
		if confidence < s.threshold {
			continue
		}
		region := image.Rect(
			int(outputReshaped.GetFloatAt(i, 3)*float32(mat.Cols())),
			int(outputReshaped.GetFloatAt(i, 4)*float32(mat.Rows())),
			int(outputReshaped.GetFloatAt(i, 5)*float32(mat.Cols())),
			int(outputReshaped.GetFloatAt(i, 6)*float32(mat.Rows())),
		).Intersect(bounds)
		if region.Dx() < MinFaceSize || region.Dy() < MinFaceSize {
			continue
		}

		embedding, err := s.embed(mat, region)
		if err != nil {
			s.logger.Warning("Skipping face at %v: %v", region, err)
			continue
		}
		faces = append(faces, model.Face{Region: region, Embedding: embedding})
	}

	return faces, nil
}

// embed runs the OpenFace network on one face crop.
func (s *FaceService) embed(mat gocv.Mat, region image.Rectangle) (model.Embedding, error) {
	face := mat.Region(region)
	defer face.Close()

	blob := gocv.BlobFromImage(face, 1.0/255, image.Pt(96, 96), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	s.embedder.SetInput(blob, "")
	output := s.embedder.Forward("")
	defer output.Close()

	if output.Total() != EmbeddingSize {
		return nil, fmt.Errorf("unexpected embedding size %d", output.Total())
	}
	embedding := make(model.Embedding, EmbeddingSize)
	for i := range embedding {
		embedding[i] = output.GetFloatAt(0, i)
	}
	return embedding, nil
}

// Close releases both networks.
func (s *FaceService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		s.detector.Close()
		s.embedder.Close()
		s.ready = false
	}
}
