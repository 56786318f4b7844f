package qualify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLLMClient struct {
	response LLMResponse
	err      error
	requests []LLMRequest
}

func (m *mockLLMClient) Complete(_ context.Context, req LLMRequest) (LLMResponse, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return LLMResponse{}, m.err
	}
	return m.response, nil
}

func TestKeywordExtractor_RichUtterance(t *testing.T) {
	e := NewKeywordExtractor()

	update := e.Extract(context.Background(), "We need AI for our startup, it's urgent. Reach me at jane@acme.io", nil)

	assert.Equal(t, ProjectTypeAIIntegration, update.ProjectType)
	assert.Equal(t, TimelineImmediate, update.Timeline)
	assert.Equal(t, CompanyStartup, update.CompanySize)
	assert.Equal(t, "jane@acme.io", update.ContactInfo.Email)
}

func TestKeywordExtractor_BudgetHints(t *testing.T) {
	e := NewKeywordExtractor()

	limited := e.Extract(context.Background(), "our budget is pretty limited", nil)
	assert.Equal(t, BudgetUnder5K, limited.BudgetRange)

	substantial := e.Extract(context.Background(), "we set aside a substantial budget", nil)
	assert.Equal(t, BudgetOver50K, substantial.BudgetRange)

	unstated := e.Extract(context.Background(), "budget is flexible", nil)
	assert.Empty(t, unstated.BudgetRange)
}

func TestKeywordExtractor_NothingRecognized(t *testing.T) {
	e := NewKeywordExtractor()

	update := e.Extract(context.Background(), "hello there", nil)

	assert.True(t, update.IsEmpty())
}

func TestLLMExtractor_NilClientUsesFallback(t *testing.T) {
	e := NewLLMExtractor(nil, "model", 0, nil, nil)

	update := e.Extract(context.Background(), "we run marketing automation", nil)

	assert.Equal(t, ProjectTypeMarketingAutomation, update.ProjectType)
}

func TestLLMExtractor_ParsesFencedJSON(t *testing.T) {
	client := &mockLLMClient{response: LLMResponse{Text: "```json\n" + `{
		"projectType": "AI_INTEGRATION",
		"timeline": "one_to_three_months",
		"budgetRange": "over_50k",
		"companySize": "startup",
		"aiExperience": "basic",
		"industry": "null",
		"painPoints": ["manual follow-up"],
		"contactInfo": {"name": "Sam", "email": "sam@example.com"},
		"readyToBuy": "evaluating",
		"engagementLevel": "high",
		"opportunitySize": "large",
		"confidence": 0.85
	}` + "\n```"}}
	e := NewLLMExtractor(client, "model", 0, nil, nil)

	update := e.Extract(context.Background(), "anything", nil)

	assert.Equal(t, ProjectTypeAIIntegration, update.ProjectType)
	assert.Equal(t, TimelineShortTerm, update.Timeline)
	assert.Equal(t, BudgetOver50K, update.BudgetRange)
	assert.Equal(t, CompanyStartup, update.CompanySize)
	assert.Equal(t, AIExperienceBasic, update.AIExperience)
	assert.Empty(t, update.Industry, "literal null strings are dropped")
	assert.Equal(t, []string{"manual follow-up"}, update.PainPoints)
	assert.Equal(t, "Sam", update.ContactInfo.Name)
	assert.Equal(t, "sam@example.com", update.ContactInfo.Email)
	assert.Equal(t, ReadinessEvaluating, update.ReadyToBuy)
	assert.Equal(t, EngagementHigh, update.EngagementLevel)
	assert.Equal(t, OpportunityLarge, update.OpportunitySize)
	require.NotNil(t, update.ConfidenceScore)
	assert.Equal(t, 0.85, *update.ConfidenceScore)
	require.Len(t, client.requests, 1)
	assert.Equal(t, "model", client.requests[0].Model)
}

func TestLLMExtractor_UnrecognizedEnumsDropped(t *testing.T) {
	client := &mockLLMClient{response: LLMResponse{Text: `{"projectType": "blockchain", "confidence": 1.5}`}}
	e := NewLLMExtractor(client, "model", 0, nil, nil)

	update := e.Extract(context.Background(), "hello there", nil)

	assert.Empty(t, update.ProjectType)
	assert.Nil(t, update.ConfidenceScore, "out-of-range confidence is dropped")
}

func TestLLMExtractor_MalformedResponseFallsBack(t *testing.T) {
	client := &mockLLMClient{response: LLMResponse{Text: "sorry, I cannot answer that"}}
	e := NewLLMExtractor(client, "model", 0, nil, nil)

	update := e.Extract(context.Background(), "we want a new web app", nil)

	assert.Equal(t, ProjectTypeFullStack, update.ProjectType)
}

func TestLLMExtractor_ClientErrorFallsBack(t *testing.T) {
	client := &mockLLMClient{err: errors.New("throttled")}
	e := NewLLMExtractor(client, "model", 0, nil, nil)

	update := e.Extract(context.Background(), "need a consultation", nil)

	assert.Equal(t, ProjectTypeConsultation, update.ProjectType)
}
