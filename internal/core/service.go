package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/bakeryimport/internal/logging"
)

// DefaultSessionRetention is how long a finished session stays queryable.
const DefaultSessionRetention = 15 * time.Minute

// Service runs import sessions one at a time, off the caller's goroutine.
type Service struct {
	importer  *Importer
	limiter   *Limiter
	retention time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session
	latest   string
}

// NewService creates a new Service instance.
func NewService(importer *Importer, retention time.Duration) *Service {
	if retention <= 0 {
		retention = DefaultSessionRetention
	}
	return &Service{
		importer:  importer,
		limiter:   NewLimiter(DefaultMaxConcurrentImports),
		retention: retention,
		sessions:  make(map[string]*Session),
	}
}

// Tables returns the table definitions the service imports, in load order.
func (s *Service) Tables() []TableDefinition {
	return s.importer.Tables
}

// Start begins an asynchronous import and returns its session immediately.
// Returns ErrImportInProgress while another session is running.
// The import is not tied to ctx's cancellation; once started it runs to
// completion or failure.
func (s *Service) Start(ctx context.Context, req Request) (*Session, error) {
	if !s.limiter.TryAcquire() {
		return nil, ErrImportInProgress
	}

	sess := newSession(uuid.New().String(), req)

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.latest = sess.ID
	s.mu.Unlock()

	runCtx := logging.WithSessionID(context.WithoutCancel(ctx), sess.ID)
	go s.process(runCtx, sess)

	return sess, nil
}

// Run starts an import and blocks until it finishes, passing every event to
// onEvent. Used by the CLI.
func (s *Service) Run(ctx context.Context, req Request, onEvent func(Event)) (*Result, error) {
	sess, err := s.Start(ctx, req)
	if err != nil {
		return nil, err
	}
	for ev := range sess.Subscribe() {
		if onEvent != nil {
			onEvent(ev)
		}
	}
	return sess.Wait(ctx)
}

func (s *Service) process(ctx context.Context, sess *Session) {
	logger := logging.WithFields(ctx, "source", sess.Request.SourceDir)
	logger.Info("import started", "destination", RedactDestination(sess.Request.Destination))

	rep := &sessionReporter{session: sess, logger: logger}
	res, err := s.importer.Run(ctx, sess.Request, rep)
	res.SessionID = sess.ID

	if err != nil {
		logger.Error("import failed", "error", err, "code", res.Code, "duration", res.Duration)
	} else {
		logger.Info("import finished", "rows", res.Rows(), "duration", res.Duration)
	}

	// The slot is free by the time done is published.
	s.limiter.Release()
	s.cleanup(sess.ID, s.retention)
	sess.finish(res, err)
}

// Get returns a session by ID.
func (s *Service) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// Subscribe returns the event stream of a session.
func (s *Service) Subscribe(id string) (<-chan Event, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return sess.Subscribe(), nil
}

// Wait blocks until the session finishes and returns its result.
func (s *Service) Wait(ctx context.Context, id string) (*Result, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return sess.Wait(ctx)
}

// Active reports whether an import is running.
func (s *Service) Active() bool {
	return s.limiter.ActiveCount() > 0
}

// ServiceStatus describes the service for the status endpoint.
type ServiceStatus struct {
	Active  bool           `json:"active"`
	Limiter LimiterStatus  `json:"limiter"`
	Latest  *SessionStatus `json:"latest,omitempty"`
}

// Status returns whether an import is running and the most recent session.
func (s *Service) Status() ServiceStatus {
	st := ServiceStatus{Active: s.Active(), Limiter: s.limiter.Status()}

	s.mu.RLock()
	sess, ok := s.sessions[s.latest]
	s.mu.RUnlock()

	if ok {
		ss := sess.Status()
		st.Latest = &ss
	}
	return st
}

// Drain waits for a running import to finish. Used during shutdown.
func (s *Service) Drain(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// cleanup removes the session from tracking after a delay.
func (s *Service) cleanup(id string, delay time.Duration) {
	time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
	})
}
