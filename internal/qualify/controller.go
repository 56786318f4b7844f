package qualify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session state machine. COMPLETE is terminal.
type State string

const (
	StateAwaitingInput State = "AWAITING_INPUT"
	StateProcessing    State = "PROCESSING"
	StateComplete      State = "COMPLETE"
)

// CompletionReason records which policy rule ended the conversation.
type CompletionReason string

const (
	ReasonMaxLength     CompletionReason = "max_length_reached"
	ReasonEngaged       CompletionReason = "engaged_complete"
	ReasonStandard      CompletionReason = "standard_complete"
	ReasonHighValue     CompletionReason = "high_value_complete"
	ReasonLowEngagement CompletionReason = "low_engagement"
)

var (
	// ErrSessionComplete is returned for submissions after the terminal state.
	ErrSessionComplete = errors.New("qualify: session already complete")
	// ErrSessionBusy is returned for submissions while a prior turn is in flight.
	ErrSessionBusy = errors.New("qualify: previous turn still processing")
)

const greetingText = "Hi! I'm Jacob's AI assistant. I'd love to learn about your project and see how I can help. What brings you here today?"

// Controller drives one qualification conversation: per-turn extraction,
// accumulator merge, reply generation, and the completion policy. Turns are
// strictly serialized; a submission while PROCESSING is rejected, not queued.
type Controller struct {
	mu          sync.Mutex
	state       State
	reason      CompletionReason
	messages    []Message
	data        ExtractedData
	extractor   Extractor
	responder   Responder
	maxMessages int

	now   func() time.Time
	newID func() string
}

// ControllerOption customizes a Controller.
type ControllerOption func(*Controller)

// WithClock injects the time source. Used by tests.
func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) { c.now = now }
}

// WithIDGenerator injects the message ID source. Used by tests.
func WithIDGenerator(newID func() string) ControllerOption {
	return func(c *Controller) { c.newID = newID }
}

// NewController seeds a conversation with the assistant greeting and waits
// for the first visitor submission.
func NewController(extractor Extractor, responder Responder, cfg Config, opts ...ControllerOption) *Controller {
	if extractor == nil {
		panic("qualify: extractor cannot be nil")
	}
	if responder == nil {
		panic("qualify: responder cannot be nil")
	}
	maxMessages := cfg.MaxConversationLength
	if maxMessages <= 0 {
		maxMessages = DefaultConfig().MaxConversationLength
	}

	c := &Controller{
		state:       StateAwaitingInput,
		extractor:   extractor,
		responder:   responder,
		maxMessages: maxMessages,
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.messages = append(c.messages, Message{
		ID:        c.newID(),
		Timestamp: c.now().UTC(),
		Role:      RoleAssistant,
		Text:      greetingText,
	})
	return c
}

// RestoreController rebuilds a controller from a persisted snapshot.
func RestoreController(extractor Extractor, responder Responder, cfg Config, snapshot Snapshot, opts ...ControllerOption) *Controller {
	c := NewController(extractor, responder, cfg, opts...)
	if len(snapshot.Messages) > 0 {
		c.messages = snapshot.Messages
	}
	c.data = snapshot.Data
	if snapshot.State != "" {
		c.state = snapshot.State
	}
	if c.state == StateProcessing {
		// A turn that was in flight when the snapshot was taken is lost.
		c.state = StateAwaitingInput
	}
	c.reason = snapshot.Reason
	return c
}

// Snapshot is the persistable view of a conversation in progress.
// Finalized records whether the completing turn's lead reached the store,
// so a restored session never persists the same lead twice.
type Snapshot struct {
	VisitorID string           `json:"visitorId,omitempty"`
	Messages  []Message        `json:"messages"`
	Data      ExtractedData    `json:"data"`
	State     State            `json:"state"`
	Reason    CompletionReason `json:"reason,omitempty"`
	Finalized bool             `json:"finalized,omitempty"`
}

// Submit runs one full turn for a visitor utterance and returns the
// assistant's reply plus whether the conversation just completed.
func (c *Controller) Submit(ctx context.Context, text string) (Message, bool, error) {
	c.mu.Lock()
	switch c.state {
	case StateComplete:
		c.mu.Unlock()
		return Message{}, false, ErrSessionComplete
	case StateProcessing:
		c.mu.Unlock()
		return Message{}, false, ErrSessionBusy
	}
	c.state = StateProcessing
	history := copyMessages(c.messages)
	data := c.data
	c.mu.Unlock()

	// Capability calls run outside the lock; the PROCESSING state guards
	// against concurrent turns.
	update := c.extractor.Extract(ctx, text, history)
	data.Merge(update)
	reply := c.responder.Generate(ctx, text, history, data)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.data = data
	userMsg := Message{
		ID:        c.newID(),
		Timestamp: c.now().UTC(),
		Role:      RoleUser,
		Text:      text,
	}
	meta := &MessageMetadata{Confidence: update.ConfidenceScore}
	if !update.IsEmpty() {
		u := update
		meta.Extracted = &u
	}
	assistantMsg := Message{
		ID:        c.newID(),
		Timestamp: c.now().UTC(),
		Role:      RoleAssistant,
		Text:      reply,
		Metadata:  meta,
	}
	c.messages = append(c.messages, userMsg, assistantMsg)

	done, reason := evaluateCompletion(c.messages, c.data, c.maxMessages)
	if done {
		c.state = StateComplete
		c.reason = reason
	} else {
		c.state = StateAwaitingInput
	}
	return assistantMsg, done, nil
}

// AppendClosing adds a final assistant message to a completed transcript.
func (c *Controller) AppendClosing(text string) Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := Message{
		ID:        c.newID(),
		Timestamp: c.now().UTC(),
		Role:      RoleAssistant,
		Text:      text,
	}
	c.messages = append(c.messages, msg)
	return msg
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CompletionReason returns the rule that ended the session, if any.
func (c *Controller) CompletionReason() CompletionReason {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reason
}

// Messages returns a copy of the transcript.
func (c *Controller) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyMessages(c.messages)
}

// Data returns the accumulated extraction state.
func (c *Controller) Data() ExtractedData {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data
}

// Snapshot returns the persistable view of the conversation.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Messages: copyMessages(c.messages),
		Data:     c.data,
		State:    c.state,
		Reason:   c.reason,
	}
}

func copyMessages(in []Message) []Message {
	out := make([]Message, len(in))
	copy(out, in)
	return out
}

// evaluateCompletion applies the completion policy in priority order.
// First matching rule wins.
func evaluateCompletion(messages []Message, data ExtractedData, maxMessages int) (bool, CompletionReason) {
	count := len(messages)
	richness := richnessScore(data)
	critical := data.ProjectType != "" && data.Timeline != "" &&
		(data.BudgetRange != "" || len(data.PainPoints) > 0)

	var userCount, userChars int
	businessFocus := false
	for _, m := range messages {
		if m.Role != RoleUser {
			continue
		}
		userCount++
		userChars += len(m.Text)
		lower := strings.ToLower(m.Text)
		if strings.Contains(lower, "business") || strings.Contains(lower, "roi") ||
			strings.Contains(lower, "team") || strings.Contains(lower, "process") {
			businessFocus = true
		}
	}
	avgUserLen := 0.0
	if userCount > 0 {
		avgUserLen = float64(userChars) / float64(userCount)
	}

	switch {
	case count >= maxMessages:
		return true, ReasonMaxLength
	case count >= 16 && critical && businessFocus:
		return true, ReasonEngaged
	case count >= 12 && critical && richness >= 6:
		return true, ReasonStandard
	case count >= 10 && richness >= 8 && avgUserLen > 50:
		return true, ReasonHighValue
	case count >= 8 && avgUserLen <= 50 && richness < 4:
		return true, ReasonLowEngagement
	}
	return false, ""
}

// richnessScore weighs how much usable signal the accumulator holds.
// Capped at 9.
func richnessScore(data ExtractedData) int {
	score := 0
	if data.ProjectType != "" {
		score += 2
	}
	if data.Timeline != "" {
		score += 2
	}
	if data.BudgetRange != "" {
		score += 2
	}
	if data.CompanySize != "" {
		score++
	}
	if len(data.PainPoints) > 0 {
		score += 2
	}
	if len(data.DesiredOutcomes) > 0 {
		score++
	}
	if data.ContactInfo.Name != "" || data.ContactInfo.Email != "" {
		score++
	}
	if score > 9 {
		score = 9
	}
	return score
}
