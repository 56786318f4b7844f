package qualify

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/jkazadi/portfolio-ai-platform/internal/observability/metrics"
	"github.com/jkazadi/portfolio-ai-platform/pkg/logging"
)

// Extractor pulls structured qualification fields out of a single visitor
// utterance. Implementations never return an error to the caller; the
// worst case is an empty update.
type Extractor interface {
	Extract(ctx context.Context, utterance string, recent []Message) ExtractedData
}

// LLMExtractor asks a text-generation capability for a JSON extraction and
// falls back to deterministic keyword matching when the capability is
// unavailable, times out, or returns unusable output.
type LLMExtractor struct {
	client   LLMClient
	model    string
	timeout  time.Duration
	fallback *KeywordExtractor
	logger   *logging.Logger
	metrics  *metrics.QualificationMetrics
}

// NewLLMExtractor builds an extractor around the given capability client.
// A nil client is valid and means every call takes the fallback path.
func NewLLMExtractor(client LLMClient, model string, timeout time.Duration, logger *logging.Logger, m *metrics.QualificationMetrics) *LLMExtractor {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &LLMExtractor{
		client:   client,
		model:    model,
		timeout:  timeout,
		fallback: NewKeywordExtractor(),
		logger:   logger,
		metrics:  m,
	}
}

// Extract implements Extractor.
func (e *LLMExtractor) Extract(ctx context.Context, utterance string, recent []Message) ExtractedData {
	if e.client == nil {
		e.metrics.RecordExtractionFallback("unconfigured")
		return e.fallback.Extract(ctx, utterance, recent)
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	resp, err := e.client.Complete(callCtx, LLMRequest{
		Model:       e.model,
		System:      []string{extractionSystemPrompt},
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: buildExtractionPrompt(utterance, recent)}},
		MaxTokens:   1024,
		Temperature: 0,
	})
	e.metrics.ObserveCapabilityLatency("extract", time.Since(start))
	if err != nil {
		e.logger.Warn("extraction capability failed, using keyword fallback", "error", err)
		e.metrics.RecordExtractionFallback("capability_error")
		return e.fallback.Extract(ctx, utterance, recent)
	}

	update, err := parseExtractionJSON(resp.Text)
	if err != nil {
		e.logger.Warn("extraction response unparseable, using keyword fallback", "error", err)
		e.metrics.RecordExtractionFallback("malformed_response")
		return e.fallback.Extract(ctx, utterance, recent)
	}
	return update
}

// rawExtraction mirrors the JSON shape requested from the capability.
// Everything is loosely typed so a partially valid object still yields
// whatever fields survived.
type rawExtraction struct {
	ProjectType        string   `json:"projectType"`
	Timeline           string   `json:"timeline"`
	BudgetRange        string   `json:"budgetRange"`
	CompanySize        string   `json:"companySize"`
	AIExperience       string   `json:"aiExperience"`
	Industry           string   `json:"industry"`
	ProjectDescription string   `json:"projectDescription"`
	SpecificNeeds      []string `json:"specificNeeds"`
	PainPoints         []string `json:"painPoints"`
	DesiredOutcomes    []string `json:"desiredOutcomes"`
	UrgencyIndicators  []string `json:"urgencyIndicators"`
	DecisionMakers     []string `json:"decisionMakers"`
	OpportunitySize    string   `json:"opportunitySize"`
	ReadyToBuy         string   `json:"readyToBuy"`
	EngagementLevel    string   `json:"engagementLevel"`
	ContactInfo        struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Company string `json:"company"`
		Phone   string `json:"phone"`
	} `json:"contactInfo"`
	Confidence *float64 `json:"confidence"`
}

// parseExtractionJSON strips markdown code fences, parses the JSON body,
// and maps recognized values onto the typed accumulator update. Fields the
// model invented or left null are dropped, never guessed at.
func parseExtractionJSON(text string) (ExtractedData, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var raw rawExtraction
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return ExtractedData{}, err
	}

	var update ExtractedData
	if v, ok := ParseProjectType(raw.ProjectType); ok {
		update.ProjectType = v
	}
	if v, ok := ParseTimeline(raw.Timeline); ok {
		update.Timeline = v
	}
	if v, ok := ParseBudget(raw.BudgetRange); ok {
		update.BudgetRange = v
	}
	if v, ok := ParseCompanySize(raw.CompanySize); ok {
		update.CompanySize = v
	}
	if v, ok := ParseAIExperience(raw.AIExperience); ok {
		update.AIExperience = v
	}
	if v, ok := ParseOpportunitySize(raw.OpportunitySize); ok {
		update.OpportunitySize = v
	}
	if v, ok := ParseReadiness(raw.ReadyToBuy); ok {
		update.ReadyToBuy = v
	}
	if v, ok := ParseEngagement(raw.EngagementLevel); ok {
		update.EngagementLevel = v
	}
	update.Industry = nullSafe(raw.Industry)
	update.ProjectDescription = nullSafe(raw.ProjectDescription)
	update.SpecificNeeds = raw.SpecificNeeds
	update.PainPoints = raw.PainPoints
	update.DesiredOutcomes = raw.DesiredOutcomes
	update.UrgencyIndicators = raw.UrgencyIndicators
	update.DecisionMakers = raw.DecisionMakers
	update.ContactInfo = ContactInfo{
		Name:    nullSafe(raw.ContactInfo.Name),
		Email:   nullSafe(raw.ContactInfo.Email),
		Company: nullSafe(raw.ContactInfo.Company),
		Phone:   nullSafe(raw.ContactInfo.Phone),
	}
	if raw.Confidence != nil && *raw.Confidence >= 0 && *raw.Confidence <= 1 {
		update.ConfidenceScore = raw.Confidence
	}
	return update, nil
}

// Models occasionally emit the literal string "null" for absent fields.
func nullSafe(s string) string {
	trimmed := strings.TrimSpace(s)
	if strings.EqualFold(trimmed, "null") {
		return ""
	}
	return trimmed
}

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// KeywordExtractor is the deterministic no-capability strategy: substring
// matching against the lower-cased utterance. It is intentionally
// conservative; an empty update is an acceptable outcome.
type KeywordExtractor struct{}

func NewKeywordExtractor() *KeywordExtractor {
	return &KeywordExtractor{}
}

// Extract implements Extractor. The recent context is unused; keyword
// matching looks only at the current utterance.
func (e *KeywordExtractor) Extract(_ context.Context, utterance string, _ []Message) ExtractedData {
	lower := strings.ToLower(utterance)
	var update ExtractedData

	switch {
	case strings.Contains(lower, "ai") || strings.Contains(lower, "artificial intelligence"):
		update.ProjectType = ProjectTypeAIIntegration
	case strings.Contains(lower, "marketing") || strings.Contains(lower, "automation"):
		update.ProjectType = ProjectTypeMarketingAutomation
	case strings.Contains(lower, "web") || strings.Contains(lower, "app") || strings.Contains(lower, "development"):
		update.ProjectType = ProjectTypeFullStack
	case strings.Contains(lower, "consultation") || strings.Contains(lower, "advice"):
		update.ProjectType = ProjectTypeConsultation
	}

	switch {
	case strings.Contains(lower, "urgent") || strings.Contains(lower, "asap") || strings.Contains(lower, "immediately"):
		update.Timeline = TimelineImmediate
	case strings.Contains(lower, "month") || strings.Contains(lower, "soon"):
		update.Timeline = TimelineShortTerm
	case strings.Contains(lower, "quarter") || strings.Contains(lower, "planning"):
		update.Timeline = TimelineMediumTerm
	}

	if strings.Contains(lower, "budget") || strings.Contains(lower, "cost") || strings.Contains(lower, "price") {
		if strings.Contains(lower, "small") || strings.Contains(lower, "limited") {
			update.BudgetRange = BudgetUnder5K
		} else if strings.Contains(lower, "substantial") || strings.Contains(lower, "significant") {
			update.BudgetRange = BudgetOver50K
		}
	}

	switch {
	case strings.Contains(lower, "startup"):
		update.CompanySize = CompanyStartup
	case strings.Contains(lower, "enterprise") || strings.Contains(lower, "large company"):
		update.CompanySize = CompanyLarge
	case strings.Contains(lower, "small business"):
		update.CompanySize = CompanySmall
	}

	switch {
	case strings.Contains(lower, "new to ai") || strings.Contains(lower, "never used ai"):
		update.AIExperience = AIExperienceNone
	case strings.Contains(lower, "experienced") || strings.Contains(lower, "advanced"):
		update.AIExperience = AIExperienceAdvanced
	}

	if email := emailPattern.FindString(utterance); email != "" {
		update.ContactInfo.Email = email
	}

	return update
}
