package stream

import (
	"log/slog"
	"os"
	"testing"
	"time"
)

// testFrame is a complete 8-byte ADTS frame: MPEG-4, CRC absent, AAC Main,
// 48000 Hz, stereo, frame_length 8, one payload byte.
var testFrame = []byte{0xFF, 0xF1, 0x0E, 0xA4, 0x01, 0x01, 0xEC, 0x81}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestCreateAndRemoveSession(t *testing.T) {
	mgr := NewManager(testLogger(), 60*time.Second, 10, nil)
	defer mgr.Stop()

	session, err := mgr.CreateSession("127.0.0.1:5000")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	if got := mgr.GetActiveSessionCount(); got != 1 {
		t.Errorf("Expected 1 active session, got %d", got)
	}

	found, exists := mgr.GetSession(session.ID)
	if !exists || found != session {
		t.Errorf("Expected to find session %d", session.ID)
	}

	if !mgr.RemoveSession(session.ID) {
		t.Error("Expected RemoveSession to report true")
	}
	if mgr.RemoveSession(session.ID) {
		t.Error("Expected removing a missing session to report false")
	}
	if got := mgr.GetActiveSessionCount(); got != 0 {
		t.Errorf("Expected 0 active sessions, got %d", got)
	}
}

func TestSessionLimit(t *testing.T) {
	mgr := NewManager(testLogger(), 60*time.Second, 2, nil)
	defer mgr.Stop()

	for i := 0; i < 2; i++ {
		if _, err := mgr.CreateSession("127.0.0.1:5000"); err != nil {
			t.Fatalf("CreateSession %d failed: %v", i, err)
		}
	}

	if _, err := mgr.CreateSession("127.0.0.1:5001"); err == nil {
		t.Error("Expected error when exceeding the stream limit")
	}
}

func TestSessionCountsFrames(t *testing.T) {
	mgr := NewManager(testLogger(), 60*time.Second, 10, nil)
	defer mgr.Stop()

	session, err := mgr.CreateSession("127.0.0.1:5000")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	// Two frames split mid-header across pushes.
	data := append(append([]byte(nil), testFrame...), testFrame...)
	if !session.Push(data[:10]) {
		t.Fatal("Expected session to stay healthy")
	}
	if !session.Push(data[10:]) {
		t.Fatal("Expected session to stay healthy")
	}

	info := session.GetSessionInfo()
	if info.FramesReceived != 2 {
		t.Errorf("Expected 2 frames received, got %d", info.FramesReceived)
	}
	if info.BytesReceived != uint64(len(data)) {
		t.Errorf("Expected %d bytes received, got %d", len(data), info.BytesReceived)
	}
	if info.ConfigChanges != 1 {
		t.Errorf("Expected 1 config change, got %d", info.ConfigChanges)
	}
	if info.Config == nil {
		t.Fatal("Expected a config snapshot")
	}
	if info.Config.SampleRate != 48000 {
		t.Errorf("Expected sample rate 48000, got %d", info.Config.SampleRate)
	}
	if info.Config.Channels != "stereo" {
		t.Errorf("Expected stereo channels, got %s", info.Config.Channels)
	}
	if info.Faulted {
		t.Error("Expected session not to be faulted")
	}
}

func TestSessionFaultsOnBadSync(t *testing.T) {
	mgr := NewManager(testLogger(), 60*time.Second, 10, nil)
	defer mgr.Stop()

	session, err := mgr.CreateSession("127.0.0.1:5000")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	corrupt := append([]byte(nil), testFrame...)
	corrupt[0] = 0x00

	if session.Push(corrupt) {
		t.Error("Expected Push to report an unhealthy session")
	}
	if !session.Faulted() {
		t.Error("Expected session to be faulted")
	}

	info := session.GetSessionInfo()
	if info.LastError == "" {
		t.Error("Expected last error to be recorded")
	}
}

func TestCleanupExpiredSessions(t *testing.T) {
	mgr := NewManager(testLogger(), 50*time.Millisecond, 10, nil)
	defer mgr.Stop()

	session, err := mgr.CreateSession("127.0.0.1:5000")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	// Backdate the session's activity past the timeout.
	session.mu.Lock()
	session.lastActivity = time.Now().Add(-time.Second)
	session.mu.Unlock()

	mgr.cleanupExpiredSessions()

	if got := mgr.GetActiveSessionCount(); got != 0 {
		t.Errorf("Expected idle session to be removed, %d still active", got)
	}
}
