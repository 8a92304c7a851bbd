package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/MrSnakeDoc/nearby/internal/logger"
	"github.com/MrSnakeDoc/nearby/internal/metrics"
)

// Chunk is one message from the live backend.
type Chunk struct {
	Audio        []byte
	MIMEType     string
	Transcript   string
	TurnComplete bool
	// Interrupted means the user spoke over the model; pending playback
	// is obsolete.
	Interrupted bool
}

// Stream is an open duplex connection. Receive returns io.EOF once the
// stream is closed.
type Stream interface {
	SendAudio(ctx context.Context, pcm []byte) error
	Receive(ctx context.Context) (Chunk, error)
	Close() error
}

type Config struct {
	Model             string
	SystemInstruction string
	Voice             string
	QueueBytes        int
}

type Backend interface {
	Connect(ctx context.Context, cfg Config) (Stream, error)
}

// Snapshot is a point-in-time view of a session.
type Snapshot struct {
	ID         string    `json:"id"`
	State      State     `json:"state"`
	Error      string    `json:"error,omitempty"`
	Buffered   int       `json:"buffered"`
	Transcript string    `json:"transcript,omitempty"`
	LastActive time.Time `json:"lastActive"`
}

type Session struct {
	id      string
	backend Backend
	cfg     Config
	logger  logger.Logger
	now     func() time.Time

	mu         sync.Mutex
	state      State
	lastErr    error
	stream     Stream
	queue      *PlaybackQueue
	cancel     context.CancelFunc
	done       chan struct{}
	transcript string
	lastActive time.Time
}

func newSession(id string, backend Backend, cfg Config, log logger.Logger, now func() time.Time) *Session {
	return &Session{
		id:         id,
		backend:    backend,
		cfg:        cfg,
		logger:     log.With(logger.String("voice_session", id)),
		now:        now,
		state:      StateIdle,
		queue:      NewPlaybackQueue(cfg.QueueBytes),
		lastActive: now(),
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:         s.id,
		State:      s.state,
		Buffered:   s.queue.Len(),
		Transcript: s.transcript,
		LastActive: s.lastActive,
	}
	if s.lastErr != nil {
		snap.Error = s.lastErr.Error()
	}
	return snap
}

// Open connects to the backend: idle → connecting → active, or error if
// the connection fails.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	if err := s.setStateLocked(StateConnecting); err != nil {
		s.mu.Unlock()
		return err
	}
	s.lastErr = nil
	s.transcript = ""
	s.mu.Unlock()

	stream, err := s.backend.Connect(ctx, s.cfg)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateConnecting {
		// Closed while connecting.
		if stream != nil {
			_ = stream.Close()
		}
		return fmt.Errorf("%w: closed while connecting", ErrNotActive)
	}
	if err != nil {
		s.failLocked(err)
		return fmt.Errorf("connect voice backend: %w", err)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	s.stream = stream
	s.queue = NewPlaybackQueue(s.cfg.QueueBytes)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.lastActive = s.now()
	_ = s.setStateLocked(StateActive)

	go s.pump(loopCtx, stream, s.queue, s.done)
	return nil
}

// SendAudio forwards microphone audio. Only valid while active.
func (s *Session) SendAudio(ctx context.Context, pcm []byte) error {
	s.mu.Lock()
	if s.state != StateActive {
		st := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: state %s", ErrNotActive, st)
	}
	stream := s.stream
	s.lastActive = s.now()
	s.mu.Unlock()

	if err := stream.SendAudio(ctx, pcm); err != nil {
		s.mu.Lock()
		s.failLocked(err)
		s.mu.Unlock()
		return fmt.Errorf("send audio: %w", err)
	}
	return nil
}

// Playback hands the client everything buffered so far.
func (s *Session) Playback() [][]byte {
	s.mu.Lock()
	q := s.queue
	s.lastActive = s.now()
	s.mu.Unlock()
	return q.Drain()
}

// Close ends the session from any state and releases buffered playback.
// Closing an idle session is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.state == StateIdle {
		s.mu.Unlock()
		return nil
	}
	_ = s.setStateLocked(StateIdle)
	stream, cancel, done, q := s.stream, s.cancel, s.done, s.queue
	s.stream, s.cancel = nil, nil
	s.mu.Unlock()

	dropped := q.Close()
	if cancel != nil {
		cancel()
	}

	var err error
	if stream != nil {
		err = stream.Close()
	}
	if done != nil {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			s.logger.Warn("voice receive loop did not stop in time")
		}
	}

	s.logger.Debug("voice session closed", logger.Int("dropped_chunks", dropped))
	return err
}

// LastActive is used by the reaper.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) pump(ctx context.Context, stream Stream, q *PlaybackQueue, done chan struct{}) {
	defer close(done)
	for {
		ch, err := stream.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil || (errors.Is(err, io.EOF) && s.State() != StateActive) {
				return
			}
			s.mu.Lock()
			if s.stream == stream {
				s.failLocked(err)
			}
			s.mu.Unlock()
			return
		}

		if ch.Interrupted {
			q.Flush()
		}
		q.Push(ch.Audio)

		s.mu.Lock()
		if ch.Transcript != "" {
			s.transcript += ch.Transcript
		}
		s.lastActive = s.now()
		s.mu.Unlock()
	}
}

// failLocked moves to error and releases the connection.
func (s *Session) failLocked(err error) {
	if checkTransition(s.state, StateError) != nil {
		return
	}
	s.logger.Warn("voice session failed", logger.Error(err))
	_ = s.setStateLocked(StateError)
	s.lastErr = err
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.stream != nil {
		_ = s.stream.Close()
		s.stream = nil
	}
	s.queue.Close()
}

func (s *Session) setStateLocked(to State) error {
	if err := checkTransition(s.state, to); err != nil {
		return err
	}
	if s.state == StateActive {
		metrics.VoiceSessionsActive.Dec()
	}
	if to == StateActive {
		metrics.VoiceSessionsActive.Inc()
	}
	s.state = to
	return nil
}
