package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/skypro1111/adts-stream-service/internal/config"
	"github.com/skypro1111/adts-stream-service/internal/stream"
)

// TCPServer accepts ingest connections carrying raw ADTS byte streams. Each
// connection is one logical stream: it gets its own session (and parser) and
// is read until EOF or until the parser reports a decode error, at which
// point the connection is closed — the format has no reliable in-band
// resynchronization point, so a faulted stream is not recovered.
type TCPServer struct {
	listener  net.Listener
	config    *config.ServerConfig
	logger    *slog.Logger
	streamMgr *stream.Manager

	// Concurrency management
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Basic counters
	connectionsAccepted uint64
	connectionsRejected uint64
	readErrors          uint64
	mu                  sync.RWMutex
}

// NewTCPServer creates a new TCP ingest server instance
func NewTCPServer(cfg *config.ServerConfig, logger *slog.Logger, streamMgr *stream.Manager) *TCPServer {
	ctx, cancel := context.WithCancel(context.Background())

	return &TCPServer{
		config:    cfg,
		logger:    logger,
		streamMgr: streamMgr,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start begins listening for ingest connections
func (s *TCPServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.BindAddress, s.config.TCPPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on TCP: %w", err)
	}
	s.listener = listener

	s.logger.Info("TCP ingest server started",
		slog.String("address", listener.Addr().String()),
		slog.Int("read_buffer_size", s.config.ReadBufferSize),
	)

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// Stop gracefully stops the TCP server
func (s *TCPServer) Stop() error {
	s.logger.Info("Stopping TCP ingest server...")

	// Cancel context to signal shutdown
	s.cancel()

	// Close the listener to unblock the accept loop
	if s.listener != nil {
		if err := s.listener.Close(); err != nil {
			s.logger.Warn("Error closing listener", slog.String("error", err.Error()))
		}
	}

	// Wait for all connection handlers to finish
	s.wg.Wait()

	s.mu.RLock()
	accepted := s.connectionsAccepted
	rejected := s.connectionsRejected
	readErrors := s.readErrors
	s.mu.RUnlock()

	s.logger.Info("TCP ingest server stopped",
		slog.Uint64("connections_accepted", accepted),
		slog.Uint64("connections_rejected", rejected),
		slog.Uint64("read_errors", readErrors),
	)

	return nil
}

// acceptLoop accepts connections until the listener is closed
func (s *TCPServer) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return
			default:
				s.logger.Error("Failed to accept connection", slog.String("error", err.Error()))
				continue
			}
		}

		session, err := s.streamMgr.CreateSession(conn.RemoteAddr().String())
		if err != nil {
			s.mu.Lock()
			s.connectionsRejected++
			s.mu.Unlock()

			s.logger.Warn("Rejecting connection",
				slog.String("remote_addr", conn.RemoteAddr().String()),
				slog.String("error", err.Error()),
			)
			conn.Close()
			continue
		}

		s.mu.Lock()
		s.connectionsAccepted++
		s.mu.Unlock()

		s.wg.Add(1)
		go s.handleConnection(conn, session)
	}
}

// handleConnection reads stream bytes from one connection and feeds them to
// the session's parser until EOF, shutdown, or a decode fault.
func (s *TCPServer) handleConnection(conn net.Conn, session *stream.Session) {
	defer s.wg.Done()
	defer conn.Close()
	defer s.streamMgr.RemoveSession(session.ID)

	s.logger.Debug("Connection opened",
		slog.Uint64("stream_id", session.ID),
		slog.String("remote_addr", session.RemoteAddr),
	)

	buffer := make([]byte, s.config.ReadBufferSize)

	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		// Set read deadline to check for context cancellation periodically
		if err := conn.SetReadDeadline(time.Now().Add(1 * time.Second)); err != nil {
			s.logger.Error("Failed to set read deadline",
				slog.Uint64("stream_id", session.ID),
				slog.String("error", err.Error()),
			)
			return
		}

		n, err := conn.Read(buffer)
		if n > 0 {
			if !session.Push(buffer[:n]) {
				// Parse fault: the remainder of this stream cannot be framed.
				s.logger.Warn("Closing stream after parse error",
					slog.Uint64("stream_id", session.ID),
					slog.String("remote_addr", session.RemoteAddr),
				)
				return
			}
		}
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue // Check context and try again
			}
			if errors.Is(err, io.EOF) {
				s.logger.Debug("Connection closed by peer",
					slog.Uint64("stream_id", session.ID),
				)
				return
			}

			s.mu.Lock()
			s.readErrors++
			s.mu.Unlock()

			s.logger.Error("Failed to read from connection",
				slog.Uint64("stream_id", session.ID),
				slog.String("error", err.Error()),
			)
			return
		}
	}
}

// GetStatistics returns current server statistics
func (s *TCPServer) GetStatistics() ServerStatistics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return ServerStatistics{
		ConnectionsAccepted: s.connectionsAccepted,
		ConnectionsRejected: s.connectionsRejected,
		ReadErrors:          s.readErrors,
		ActiveStreams:       uint64(s.streamMgr.GetActiveSessionCount()),
	}
}

// ServerStatistics represents ingest server metrics
type ServerStatistics struct {
	ConnectionsAccepted uint64 `json:"connections_accepted"`
	ConnectionsRejected uint64 `json:"connections_rejected"`
	ReadErrors          uint64 `json:"read_errors"`
	ActiveStreams       uint64 `json:"active_streams"`
}
