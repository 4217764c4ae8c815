package stream

import (
	"log/slog"
	"sync"
	"time"

	"github.com/skypro1111/adts-stream-service/internal/adts"
	"github.com/skypro1111/adts-stream-service/internal/metrics"
)

// Session represents one active ingest stream. It owns the ADTS parser for
// the connection and accumulates counters and the last-seen configuration as
// frames are decoded.
type Session struct {
	ID         uint64
	RemoteAddr string
	StartTime  time.Time

	logger  *slog.Logger
	metrics *metrics.Metrics
	parser  *adts.Parser

	mu             sync.RWMutex
	lastActivity   time.Time
	framesReceived uint64
	bytesReceived  uint64
	configChanges  uint64
	faulted        bool
	lastError      string
	config         *ConfigInfo
}

// ConfigInfo is a snapshot of the stream configuration announced by the most
// recent in-band configuration change.
type ConfigInfo struct {
	MPEGVersion       string `json:"mpeg_version"`
	Protection        string `json:"protection"`
	Profile           string `json:"profile"`
	SamplingFrequency string `json:"sampling_frequency"`
	SampleRate        int    `json:"sample_rate,omitempty"`
	PrivateBit        uint8  `json:"private_bit"`
	Channels          string `json:"channels"`
	Originality       string `json:"originality"`
	Home              uint8  `json:"home"`
}

// SessionInfo represents session state for monitoring
type SessionInfo struct {
	ID             uint64      `json:"stream_id"`
	RemoteAddr     string      `json:"remote_addr"`
	StartTime      time.Time   `json:"start_time"`
	LastActivity   time.Time   `json:"last_activity"`
	Duration       string      `json:"duration"`
	FramesReceived uint64      `json:"frames_received"`
	BytesReceived  uint64      `json:"bytes_received"`
	ConfigChanges  uint64      `json:"config_changes"`
	Faulted        bool        `json:"faulted"`
	LastError      string      `json:"last_error,omitempty"`
	Config         *ConfigInfo `json:"config,omitempty"`
}

func newSession(id uint64, remoteAddr string, logger *slog.Logger, m *metrics.Metrics) *Session {
	s := &Session{
		ID:           id,
		RemoteAddr:   remoteAddr,
		StartTime:    time.Now(),
		lastActivity: time.Now(),
		logger:       logger,
		metrics:      m,
	}
	s.parser = adts.NewParser(sessionConsumer{s})
	return s
}

// Push feeds the next chunk of stream bytes into the session's parser. The
// parser callbacks run synchronously within the call. Push reports whether
// the session is still healthy; once a decode error has been delivered, the
// stream is dead and the caller should close the connection (the format
// offers no reliable way to resynchronize).
func (s *Session) Push(chunk []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastActivity = time.Now()
	s.bytesReceived += uint64(len(chunk))
	if s.metrics != nil {
		s.metrics.RecordBytesReceived(len(chunk))
	}

	s.parser.Push(chunk)
	return !s.faulted
}

// Faulted reports whether the session's parser has hit a decode error.
func (s *Session) Faulted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.faulted
}

// LastActivity returns the time of the most recent push.
func (s *Session) LastActivity() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActivity
}

// GetSessionInfo returns a snapshot of the session for the monitoring API.
func (s *Session) GetSessionInfo() SessionInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info := SessionInfo{
		ID:             s.ID,
		RemoteAddr:     s.RemoteAddr,
		StartTime:      s.StartTime,
		LastActivity:   s.lastActivity,
		Duration:       time.Since(s.StartTime).String(),
		FramesReceived: s.framesReceived,
		BytesReceived:  s.bytesReceived,
		ConfigChanges:  s.configChanges,
		Faulted:        s.faulted,
		LastError:      s.lastError,
	}
	if s.config != nil {
		cfg := *s.config
		info.Config = &cfg
	}
	return info
}

// sessionConsumer adapts a Session to the adts.Consumer interface. Its
// methods are only invoked from within Session.Push, while the session mutex
// is already held.
type sessionConsumer struct {
	s *Session
}

func (c sessionConsumer) NewConfig(version adts.MPEGVersion, protection adts.Protection,
	profile adts.Profile, frequency adts.SamplingFrequency, privateBit uint8,
	channels adts.ChannelConfiguration, originality adts.Originality, home uint8) {
	s := c.s

	cfg := &ConfigInfo{
		MPEGVersion:       version.String(),
		Protection:        protection.String(),
		Profile:           profile.String(),
		SamplingFrequency: frequency.String(),
		PrivateBit:        privateBit,
		Channels:          channels.String(),
		Originality:       originality.String(),
		Home:              home,
	}
	if rate, ok := frequency.Freq(); ok {
		cfg.SampleRate = rate
	}
	s.config = cfg
	s.configChanges++
	if s.metrics != nil {
		s.metrics.RecordConfigChange()
	}

	s.logger.Info("Stream configuration",
		slog.Uint64("stream_id", s.ID),
		slog.String("mpeg_version", cfg.MPEGVersion),
		slog.String("profile", cfg.Profile),
		slog.String("sampling_frequency", cfg.SamplingFrequency),
		slog.String("channels", cfg.Channels),
		slog.String("protection", cfg.Protection),
	)
}

func (c sessionConsumer) Payload(bufferFullness uint16, blockCount uint8, payload []byte) {
	s := c.s

	s.framesReceived++
	if s.metrics != nil {
		s.metrics.RecordFrameParsed(len(payload))
	}

	s.logger.Debug("Frame received",
		slog.Uint64("stream_id", s.ID),
		slog.Int("payload_size", len(payload)),
		slog.Int("buffer_fullness", int(bufferFullness)),
		slog.Int("blocks", int(blockCount)),
	)
}

func (c sessionConsumer) Error(err error) {
	s := c.s

	s.faulted = true
	s.lastError = err.Error()
	if s.metrics != nil {
		s.metrics.RecordParseError()
	}

	s.logger.Error("Stream parse error",
		slog.Uint64("stream_id", s.ID),
		slog.String("error", err.Error()),
	)
}
