package stream

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/skypro1111/adts-stream-service/internal/metrics"
)

// Manager manages all active stream sessions and removes idle ones.
type Manager struct {
	sessions   map[uint64]*Session
	nextID     uint64
	mu         sync.RWMutex
	logger     *slog.Logger
	metrics    *metrics.Metrics
	timeout    time.Duration
	maxStreams int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager creates a new stream manager. Sessions with no activity for
// longer than timeout are removed by a background cleanup routine.
func NewManager(logger *slog.Logger, timeout time.Duration, maxStreams int, m *metrics.Metrics) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	mgr := &Manager{
		sessions:   make(map[uint64]*Session),
		logger:     logger,
		metrics:    m,
		timeout:    timeout,
		maxStreams: maxStreams,
		ctx:        ctx,
		cancel:     cancel,
	}

	mgr.wg.Add(1)
	go mgr.cleanupRoutine()

	return mgr
}

// CreateSession registers a new ingest stream and returns its session.
func (m *Manager) CreateSession(remoteAddr string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) >= m.maxStreams {
		return nil, fmt.Errorf("stream limit reached (%d active)", len(m.sessions))
	}

	m.nextID++
	session := newSession(m.nextID, remoteAddr, m.logger, m.metrics)
	m.sessions[session.ID] = session

	if m.metrics != nil {
		m.metrics.RecordStreamCreated()
		m.metrics.SetActiveStreams(len(m.sessions))
	}

	m.logger.Info("Stream session created",
		slog.Uint64("stream_id", session.ID),
		slog.String("remote_addr", remoteAddr),
		slog.Int("active_sessions", len(m.sessions)),
	)

	return session, nil
}

// GetSession returns the session with the given ID
func (m *Manager) GetSession(id uint64) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, exists := m.sessions[id]
	return session, exists
}

// RemoveSession removes a session and reports whether it existed.
func (m *Manager) RemoveSession(id uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[id]
	if !exists {
		return false
	}
	delete(m.sessions, id)

	if m.metrics != nil {
		m.metrics.RecordStreamDestroyed(time.Since(session.StartTime).Seconds())
		m.metrics.SetActiveStreams(len(m.sessions))
	}

	info := session.GetSessionInfo()
	m.logger.Info("Stream session removed",
		slog.Uint64("stream_id", id),
		slog.Uint64("frames_received", info.FramesReceived),
		slog.Uint64("bytes_received", info.BytesReceived),
		slog.String("duration", info.Duration),
	)

	return true
}

// GetActiveSessionCount returns the number of active sessions
func (m *Manager) GetActiveSessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// GetAllSessions returns all active sessions
func (m *Manager) GetAllSessions() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sessions := make([]*Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}

// Stop stops the cleanup routine and removes all sessions.
func (m *Manager) Stop() {
	m.cancel()
	m.wg.Wait()

	m.mu.Lock()
	ids := make([]uint64, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		m.RemoveSession(id)
	}

	m.logger.Info("Stream manager stopped")
}

// cleanupRoutine periodically removes sessions that have been idle for longer
// than the configured timeout.
func (m *Manager) cleanupRoutine() {
	defer m.wg.Done()

	interval := m.timeout / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.cleanupExpiredSessions()
		}
	}
}

func (m *Manager) cleanupExpiredSessions() {
	cutoff := time.Now().Add(-m.timeout)

	m.mu.RLock()
	var expired []uint64
	for id, session := range m.sessions {
		if session.LastActivity().Before(cutoff) {
			expired = append(expired, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range expired {
		m.logger.Warn("Removing idle stream session", slog.Uint64("stream_id", id))
		m.RemoveSession(id)
	}
}
