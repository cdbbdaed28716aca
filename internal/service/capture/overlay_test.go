package capture

import (
	"image"
	"testing"

	"campusguard/internal/logger"
	"campusguard/internal/model"
)

type countingHub struct {
	clients int
	sent    []any
}

func (h *countingHub) BroadcastJSON(v any) error {
	h.sent = append(h.sent, v)
	return nil
}

func (h *countingHub) GetClientCount() int { return h.clients }

func TestOverlay_SkipsFramesWithoutViewers(t *testing.T) {
	l, err := logger.New(t.TempDir(), nil, nil)
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	defer l.Close()

	hub := &countingHub{}
	overlay := NewOverlay(hub, l)
	binding := model.CameraBinding{Camera: 1, Role: model.EntryGate}
	frame := image.NewRGBA(image.Rect(0, 0, 32, 32))
	dets := []model.ResolvedDetection{{Region: image.Rect(2, 8, 12, 18), Identity: model.KnownAs("Alice", model.Student)}}

	overlay.Show(binding, frame, dets)
	if len(hub.sent) != 0 {
		t.Fatalf("Expected no frames without viewers, got %d", len(hub.sent))
	}

	hub.clients = 1
	overlay.Show(binding, frame, dets)
	if len(hub.sent) != 1 {
		t.Fatalf("Expected 1 frame with a viewer, got %d", len(hub.sent))
	}
	msg, ok := hub.sent[0].(FrameMessage)
	if !ok || msg.Type != "frame" || msg.Camera != 1 || msg.Role != "entry gate" || msg.Image == "" {
		t.Errorf("Unexpected message %+v", hub.sent[0])
	}
}
