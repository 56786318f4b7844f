package qualify

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/jkazadi/portfolio-ai-platform/internal/observability/metrics"
	"github.com/jkazadi/portfolio-ai-platform/pkg/logging"
)

// Responder produces the assistant's next reply. Implementations never
// return an error and never return an empty string.
type Responder interface {
	Generate(ctx context.Context, utterance string, history []Message, data ExtractedData) string
}

// LLMResponder generates replies with a text-generation capability, biased
// by the conversation strategy for the current turn. Any failure falls
// through to the canned responder.
type LLMResponder struct {
	client   LLMClient
	model    string
	timeout  time.Duration
	fallback *CannedResponder
	logger   *logging.Logger
	metrics  *metrics.QualificationMetrics
}

// NewLLMResponder builds a responder around the given capability client.
// A nil client is valid and routes every turn to the canned responder.
func NewLLMResponder(client LLMClient, model string, timeout time.Duration, fallback *CannedResponder, logger *logging.Logger, m *metrics.QualificationMetrics) *LLMResponder {
	if fallback == nil {
		panic("qualify: canned responder cannot be nil")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &LLMResponder{
		client:   client,
		model:    model,
		timeout:  timeout,
		fallback: fallback,
		logger:   logger,
		metrics:  m,
	}
}

// Generate implements Responder.
func (r *LLMResponder) Generate(ctx context.Context, utterance string, history []Message, data ExtractedData) string {
	if r.client == nil {
		return r.fallback.Generate(ctx, utterance, history, data)
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	strategy := determineStrategy(data, history)
	msgs := make([]ChatMessage, 0, 5)
	start := len(history) - 4
	if start < 0 {
		start = 0
	}
	for _, m := range history[start:] {
		role := ChatRoleUser
		if m.Role == RoleAssistant {
			role = ChatRoleAssistant
		}
		msgs = append(msgs, ChatMessage{Role: role, Content: m.Text})
	}
	msgs = append(msgs, ChatMessage{Role: ChatRoleUser, Content: utterance})

	began := time.Now()
	resp, err := r.client.Complete(callCtx, LLMRequest{
		Model:       r.model,
		System:      buildResponderSystem(strategy),
		Messages:    msgs,
		MaxTokens:   512,
		Temperature: 0.7,
	})
	r.metrics.ObserveCapabilityLatency("respond", time.Since(began))
	if err != nil || strings.TrimSpace(resp.Text) == "" {
		if err != nil {
			r.logger.Warn("reply capability failed, using canned response", "error", err)
		}
		return r.fallback.Generate(ctx, utterance, history, data)
	}
	return strings.TrimSpace(resp.Text)
}

var rotatingResponses = []string{
	"That's interesting! Can you tell me more about your specific goals for this project?",
	"I'd love to help with that. What's your timeline looking like for this initiative?",
	"Great question! What's your experience been with AI tools so far?",
	"That sounds like a valuable project. What's your budget range for something like this?",
	"I can definitely help with that. Are you looking for a complete solution or specific components?",
	"Excellent! What size is your team or organization?",
	"That's exactly the kind of challenge I specialize in. What's the biggest pain point you're facing right now?",
}

// CannedResponder is the deterministic no-capability reply strategy:
// topic-keyed responses first, then a rotating default chosen by an
// injectable random source so tests can pin the sequence.
type CannedResponder struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewCannedResponder seeds the rotation source. The same seed yields the
// same default-response sequence.
func NewCannedResponder(seed int64) *CannedResponder {
	return &CannedResponder{rng: rand.New(rand.NewSource(seed))}
}

// Generate implements Responder.
func (r *CannedResponder) Generate(_ context.Context, utterance string, _ []Message, _ ExtractedData) string {
	lower := strings.ToLower(utterance)

	switch {
	case strings.Contains(lower, "budget") || strings.Contains(lower, "cost") || strings.Contains(lower, "price"):
		return "Budget is always an important consideration. I work with clients across different budget ranges. What range are you thinking for this project?"
	case strings.Contains(lower, "timeline") || strings.Contains(lower, "urgent") || strings.Contains(lower, "when"):
		return "Timeline is crucial for planning. Are you looking for something immediate, or do we have some time to build this properly?"
	case strings.Contains(lower, "leads") || strings.Contains(lower, "lead generation"):
		return "Here are 3 lead generation strategies that work: 1) Create a lead magnet (free resource) that solves a specific problem for your ideal customer, 2) Set up LinkedIn automation to connect with prospects in your niche, 3) Use AI-powered chatbots on your website to qualify visitors 24/7. Which of these fits your current marketing setup best?"
	case strings.Contains(lower, "social media") || strings.Contains(lower, "content"):
		return "For social media success: 1) Use AI tools to batch-create 30 days of content in 2 hours, 2) Post at optimal times using scheduling tools, 3) Engage with your audience within the first hour of posting for maximum reach. What platform are you focusing on most right now?"
	case strings.Contains(lower, "email") || strings.Contains(lower, "newsletter"):
		return "Email marketing ROI averages 4200%! Here's how: 1) Segment your list based on behavior and interests, 2) Use AI to personalize subject lines and content, 3) Set up automated welcome sequences and re-engagement campaigns. Are you currently collecting emails from your website visitors?"
	case strings.Contains(lower, "ai") || strings.Contains(lower, "automation"):
		return "AI and automation are my specialties! What specific processes are you looking to automate or enhance with AI?"
	case strings.Contains(lower, "conversion") || strings.Contains(lower, "sales"):
		return "Boost conversions with these proven tactics: 1) Add social proof (testimonials, reviews) to your landing pages, 2) Create urgency with limited-time offers, 3) Use exit-intent popups with compelling offers. What's your current conversion rate on your main landing page?"
	case strings.Contains(lower, "website") || strings.Contains(lower, "web") || strings.Contains(lower, "app"):
		return "Web development with AI integration is one of my favorite projects. Are you looking for a completely new build or enhancing an existing system?"
	}

	r.mu.Lock()
	idx := r.rng.Intn(len(rotatingResponses))
	r.mu.Unlock()
	return rotatingResponses[idx]
}
