package alert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"campusguard/internal/logger"
)

type recorder struct {
	messages []string
	err      error
}

func (r *recorder) Alert(_ context.Context, message string) error {
	r.messages = append(r.messages, message)
	return r.err
}

func TestMulti_DeliversToAll(t *testing.T) {
	failing := &recorder{err: errors.New("speaker unplugged")}
	ok := &recorder{}

	err := Multi{failing, ok}.Alert(context.Background(), IntruderMessage)
	if err == nil || !strings.Contains(err.Error(), "speaker unplugged") {
		t.Errorf("Expected joined error, got %v", err)
	}
	if len(ok.messages) != 1 || ok.messages[0] != IntruderMessage {
		t.Errorf("Second alerter not reached: %v", ok.messages)
	}
}

func TestSpeechAlerter_Arguments(t *testing.T) {
	var got []string
	a := NewSpeechAlerter("espeak")
	a.run = func(_ context.Context, name string, args ...string) error {
		got = append([]string{name}, args...)
		return nil
	}

	if err := a.Alert(context.Background(), Unauthorized("Alice")); err != nil {
		t.Fatalf("Alert failed: %v", err)
	}
	want := []string{"espeak", "-s", "150", "You are unauthorized to enter this section, Alice"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSpeechAlerter_MissingCommand(t *testing.T) {
	a := NewSpeechAlerter(filepath.Join(t.TempDir(), "no-such-tts"))
	if err := a.Alert(context.Background(), "hello"); err == nil {
		t.Error("Expected error for missing command")
	}
}

type jsonSink struct{ sent []any }

func (s *jsonSink) BroadcastJSON(v any) error {
	s.sent = append(s.sent, v)
	return nil
}

func TestHubAlerter(t *testing.T) {
	sink := &jsonSink{}
	NewHubAlerter(sink).Alert(context.Background(), IntruderMessage)

	if len(sink.sent) != 1 || sink.sent[0] != (Message{Type: "alert", Message: IntruderMessage}) {
		t.Errorf("Unexpected payload %v", sink.sent)
	}
}

func TestLogAlerter(t *testing.T) {
	dir := t.TempDir()
	l, err := logger.New(dir, nil, nil)
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	NewLogAlerter(l).Alert(context.Background(), Located("Bob", "camera 1 (exit gate)"))
	l.Close()

	data, err := os.ReadFile(filepath.Join(dir, logger.WarningFile))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "Bob located at camera 1 (exit gate)") {
		t.Errorf("warning log missing alert: %s", data)
	}
}
