package qualify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jkazadi/portfolio-ai-platform/internal/observability/metrics"
	"github.com/jkazadi/portfolio-ai-platform/pkg/logging"
)

// ErrSessionNotFound indicates the requested session ID does not exist.
var ErrSessionNotFound = errors.New("qualify: session not found")

// Service describes how the qualification engine behaves toward its
// transports (HTTP handler, widget WebSocket, queue workers).
type Service interface {
	StartSession(ctx context.Context, req StartRequest) (*Response, error)
	ProcessMessage(ctx context.Context, req MessageRequest) (*Response, error)
	CloseSession(ctx context.Context, sessionID string) error
	GetHistory(ctx context.Context, sessionID string) ([]Message, error)
}

// StartRequest opens a qualification session.
type StartRequest struct {
	SessionID string `json:"sessionId,omitempty"`
	VisitorID string `json:"visitorId,omitempty"`
}

// MessageRequest is a single visitor turn.
type MessageRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// Response is the DTO returned to the transport layer.
type Response struct {
	SessionID string    `json:"sessionId"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Complete  bool      `json:"complete"`
	Lead      *Lead     `json:"lead,omitempty"`
}

// LeadListener observes finalized leads after they are persisted.
type LeadListener func(ctx context.Context, lead *Lead)

type sessionEntry struct {
	controller *Controller
	visitorID  string

	// Guards finalization so a persistence failure can be retried without
	// duplicating the lead once the store recovers.
	mu        sync.Mutex
	finalized bool
	lead      *Lead
	closing   Message
}

// SessionService orchestrates qualification sessions: it owns the live
// controllers, persists transcript snapshots, and finalizes leads when a
// conversation completes.
type SessionService struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry

	extractor Extractor
	responder Responder
	cfg       Config
	sink      LeadSink
	history   HistoryStore
	listeners []LeadListener
	logger    *logging.Logger
	metrics   *metrics.QualificationMetrics

	now   func() time.Time
	newID func() string
}

// SessionOption customizes a SessionService.
type SessionOption func(*SessionService)

// WithHistoryStore enables transcript snapshot persistence, letting
// sessions survive process restarts.
func WithHistoryStore(h HistoryStore) SessionOption {
	return func(s *SessionService) { s.history = h }
}

// WithMetrics attaches qualification metrics.
func WithMetrics(m *metrics.QualificationMetrics) SessionOption {
	return func(s *SessionService) { s.metrics = m }
}

// WithSessionClock injects the time source. Used by tests.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *SessionService) { s.now = now }
}

// WithSessionIDGenerator injects the ID source. Used by tests.
func WithSessionIDGenerator(newID func() string) SessionOption {
	return func(s *SessionService) { s.newID = newID }
}

// NewSessionService wires the qualification engine together.
func NewSessionService(extractor Extractor, responder Responder, sink LeadSink, cfg Config, logger *logging.Logger, opts ...SessionOption) *SessionService {
	if extractor == nil {
		panic("qualify: extractor cannot be nil")
	}
	if responder == nil {
		panic("qualify: responder cannot be nil")
	}
	if sink == nil {
		panic("qualify: lead sink cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}

	s := &SessionService{
		sessions:  make(map[string]*sessionEntry),
		extractor: extractor,
		responder: responder,
		cfg:       cfg,
		sink:      sink,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnLeadFinalized registers a listener invoked after a lead is persisted.
// Listener failures never affect session completion.
func (s *SessionService) OnLeadFinalized(fn LeadListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// StartSession opens a session and returns the seeded greeting.
func (s *SessionService) StartSession(ctx context.Context, req StartRequest) (*Response, error) {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = s.newID()
	}
	visitorID := req.VisitorID
	if visitorID == "" {
		visitorID = "visitor_" + s.newID()
	}

	ctrl := NewController(s.extractor, s.responder, s.cfg,
		WithClock(s.now), WithIDGenerator(s.newID))

	entry := &sessionEntry{controller: ctrl, visitorID: visitorID}
	s.mu.Lock()
	if _, exists := s.sessions[sessionID]; exists {
		s.mu.Unlock()
		return nil, fmt.Errorf("qualify: session %s already exists", sessionID)
	}
	s.sessions[sessionID] = entry
	s.mu.Unlock()

	s.metrics.RecordSessionStarted()
	s.saveSnapshot(ctx, sessionID, entry)
	s.logger.Info("session started", "session_id", sessionID, "visitor_id", visitorID)

	greeting := ctrl.Messages()[0]
	return &Response{
		SessionID: sessionID,
		Message:   greeting.Text,
		Timestamp: greeting.Timestamp,
	}, nil
}

// ProcessMessage runs one turn. When the turn completes the conversation,
// the returned response carries the closing message and the persisted lead.
func (s *SessionService) ProcessMessage(ctx context.Context, req MessageRequest) (*Response, error) {
	entry, err := s.lookup(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	reply, done, err := entry.controller.Submit(ctx, req.Message)
	if err != nil {
		if !errors.Is(err, ErrSessionComplete) {
			return nil, err
		}
		// The conversation already ended. If the completing turn's lead
		// never made it to the store, finish persistence now instead of
		// rejecting the retry; the transcript is still in memory.
		lead, closing, ferr := s.finalize(ctx, req.SessionID, entry)
		if ferr != nil {
			return nil, ferr
		}
		return &Response{
			SessionID: req.SessionID,
			Message:   closing.Text,
			Timestamp: closing.Timestamp,
			Complete:  true,
			Lead:      lead,
		}, nil
	}

	if !done {
		s.saveSnapshot(ctx, req.SessionID, entry)
		return &Response{
			SessionID: req.SessionID,
			Message:   reply.Text,
			Timestamp: reply.Timestamp,
		}, nil
	}

	lead, closing, err := s.finalize(ctx, req.SessionID, entry)
	if err != nil {
		return nil, err
	}
	return &Response{
		SessionID: req.SessionID,
		Message:   closing.Text,
		Timestamp: closing.Timestamp,
		Complete:  true,
		Lead:      lead,
	}, nil
}

// finalize scores the accumulator, appends the personalized closing
// message, and persists the lead. A store failure is surfaced to the
// caller and leaves the entry eligible for a later retry; losing a
// qualified lead silently is the one unacceptable failure mode here.
func (s *SessionService) finalize(ctx context.Context, sessionID string, entry *sessionEntry) (*Lead, Message, error) {
	entry.mu.Lock()
	if entry.finalized {
		lead, closing := entry.lead, entry.closing
		entry.mu.Unlock()
		if lead == nil {
			// Restored from a snapshot taken after the lead was stored;
			// nothing left to persist.
			return nil, Message{}, ErrSessionComplete
		}
		return lead, closing, nil
	}

	ctrl := entry.controller
	data := ctrl.Data()
	score, category := Score(data, s.cfg)
	if entry.closing.ID == "" {
		entry.closing = ctrl.AppendClosing(ClosingMessage(category, data))
	}
	closing := entry.closing

	lead := &Lead{
		ID:                  s.newID(),
		Timestamp:           s.now().UTC(),
		VisitorID:           entry.visitorID,
		ConversationHistory: ctrl.Messages(),
		ExtractedData:       data,
		QualificationScore:  score,
		Category:            category,
		Status:              StatusNew,
		Notes:               closing.Text,
	}

	if err := s.sink.Append(ctx, lead); err != nil {
		entry.mu.Unlock()
		s.logger.Error("failed to persist finalized lead",
			"session_id", sessionID, "category", string(category), "error", err)
		return nil, Message{}, fmt.Errorf("qualify: failed to persist lead: %w", err)
	}
	entry.finalized = true
	entry.lead = lead
	entry.mu.Unlock()

	s.metrics.RecordSessionCompleted(string(category), string(ctrl.CompletionReason()))
	s.metrics.RecordLeadStored(string(category))
	s.saveSnapshot(ctx, sessionID, entry)
	s.logger.Info("session completed",
		"session_id", sessionID,
		"lead_id", lead.ID,
		"score", score,
		"category", string(category),
		"reason", string(ctrl.CompletionReason()),
	)

	s.mu.RLock()
	listeners := make([]LeadListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(ctx, lead)
	}
	return lead, closing, nil
}

// CloseSession abandons a session without producing a lead.
func (s *SessionService) CloseSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	_, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	if s.history != nil {
		if err := s.history.Delete(ctx, sessionID); err != nil {
			s.logger.Warn("failed to delete session snapshot", "session_id", sessionID, "error", err)
		}
	}
	s.logger.Info("session closed", "session_id", sessionID)
	return nil
}

// GetHistory returns the transcript for a session.
func (s *SessionService) GetHistory(ctx context.Context, sessionID string) ([]Message, error) {
	entry, err := s.lookup(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return entry.controller.Messages(), nil
}

// lookup resolves a live session, falling back to a persisted snapshot so
// conversations survive a restart when a history store is configured.
func (s *SessionService) lookup(ctx context.Context, sessionID string) (*sessionEntry, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}
	s.mu.RLock()
	entry, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		return entry, nil
	}
	if s.history == nil {
		return nil, ErrSessionNotFound
	}

	snap, found, err := s.history.LoadSnapshot(ctx, sessionID)
	if err != nil {
		s.logger.Warn("failed to load session snapshot", "session_id", sessionID, "error", err)
		return nil, ErrSessionNotFound
	}
	if !found {
		return nil, ErrSessionNotFound
	}

	ctrl := RestoreController(s.extractor, s.responder, s.cfg, snap,
		WithClock(s.now), WithIDGenerator(s.newID))
	visitorID := snap.VisitorID
	if visitorID == "" {
		visitorID = "visitor_" + sessionID
	}
	entry = &sessionEntry{controller: ctrl, visitorID: visitorID, finalized: snap.Finalized}

	s.mu.Lock()
	if existing, ok := s.sessions[sessionID]; ok {
		entry = existing
	} else {
		s.sessions[sessionID] = entry
	}
	s.mu.Unlock()
	return entry, nil
}

func (s *SessionService) saveSnapshot(ctx context.Context, sessionID string, entry *sessionEntry) {
	if s.history == nil {
		return
	}
	snap := entry.controller.Snapshot()
	snap.VisitorID = entry.visitorID
	entry.mu.Lock()
	snap.Finalized = entry.finalized
	entry.mu.Unlock()
	if err := s.history.SaveSnapshot(ctx, sessionID, snap); err != nil {
		s.logger.Warn("failed to save session snapshot", "session_id", sessionID, "error", err)
	}
}
