package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"campusguard/internal/logger"

	"github.com/gorilla/websocket"
)

func TestHub_BroadcastReachesViewer(t *testing.T) {
	l, err := logger.New(t.TempDir(), nil, nil)
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	defer l.Close()

	hub := NewHubService(l)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(conn)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.GetClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if hub.GetClientCount() != 1 {
		t.Fatalf("Expected 1 client, got %d", hub.GetClientCount())
	}

	if err := hub.BroadcastJSON(map[string]string{"type": "alert", "message": "Intruder Detected"}); err != nil {
		t.Fatalf("BroadcastJSON: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(msg), "Intruder Detected") {
		t.Errorf("Unexpected message %s", msg)
	}
}

func TestHub_BroadcastDoesNotBlockWithoutLoop(t *testing.T) {
	l, _ := logger.New(t.TempDir(), nil, nil)
	defer l.Close()
	hub := NewHubService(l)

	for i := 0; i < broadcastBuffer; i++ {
		if !hub.Broadcast([]byte("x")) {
			t.Fatalf("message %d dropped before buffer was full", i)
		}
	}
	if hub.Broadcast([]byte("x")) {
		t.Error("Expected message to be dropped when the buffer is full")
	}
}

func TestHub_RegisterAfterShutdownDoesNotBlock(t *testing.T) {
	l, _ := logger.New(t.TempDir(), nil, nil)
	defer l.Close()
	hub := NewHubService(l)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	upgrader := websocket.Upgrader{}
	returned := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(conn)
		hub.Unregister(conn)
		close(returned)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("Register/Unregister blocked after the hub stopped")
	}
	if hub.GetClientCount() != 0 {
		t.Errorf("Expected no clients, got %d", hub.GetClientCount())
	}
}

func TestHub_DropWarningIsRateLimited(t *testing.T) {
	dir := t.TempDir()
	l, err := logger.New(dir, nil, nil)
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	defer l.Close()

	hub := NewHubService(l)
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	hub.now = func() time.Time { return now }

	for i := 0; i < broadcastBuffer; i++ {
		hub.Broadcast([]byte("x"))
	}
	for i := 0; i < 50; i++ {
		hub.Broadcast([]byte("x"))
	}
	now = now.Add(dropLogInterval)
	hub.Broadcast([]byte("x"))

	if hub.Dropped() != 51 {
		t.Errorf("Expected 51 dropped messages, got %d", hub.Dropped())
	}

	data, err := os.ReadFile(filepath.Join(dir, logger.WarningFile))
	if err != nil {
		t.Fatalf("read warning log: %v", err)
	}
	if n := strings.Count(string(data), "Viewer queue full"); n != 2 {
		t.Errorf("Expected 2 drop warnings, got %d:\n%s", n, data)
	}
}
