package qualify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCannedResponder_TopicResponses(t *testing.T) {
	r := NewCannedResponder(1)
	ctx := context.Background()

	cases := []struct {
		utterance string
		contains  string
	}{
		{"what does this cost?", "budget ranges"},
		{"when could we start?", "Timeline is crucial"},
		{"I need more leads", "lead generation strategies"},
		{"help with social media content", "social media success"},
		{"improve our email newsletter", "Email marketing ROI"},
		{"interested in ai automation", "AI and automation are my specialties"},
		{"our sales conversion is low", "Boost conversions"},
		{"we want a new website", "Web development with AI integration"},
	}

	for _, tc := range cases {
		reply := r.Generate(ctx, tc.utterance, nil, ExtractedData{})
		assert.Contains(t, reply, tc.contains, "utterance %q", tc.utterance)
	}
}

func TestCannedResponder_RotationIsSeeded(t *testing.T) {
	ctx := context.Background()
	first := NewCannedResponder(42)
	second := NewCannedResponder(42)

	for i := 0; i < 10; i++ {
		a := first.Generate(ctx, "hmm", nil, ExtractedData{})
		b := second.Generate(ctx, "hmm", nil, ExtractedData{})
		require.Equal(t, a, b)
		assert.Contains(t, rotatingResponses, a)
	}
}

func TestLLMResponder_NilClientUsesCanned(t *testing.T) {
	r := NewLLMResponder(nil, "model", 0, NewCannedResponder(7), nil, nil)

	reply := r.Generate(context.Background(), "what does this cost?", nil, ExtractedData{})

	assert.Contains(t, reply, "budget ranges")
}

func TestLLMResponder_SuccessTrimsText(t *testing.T) {
	client := &mockLLMClient{response: LLMResponse{Text: "  Happy to help with that!  \n"}}
	r := NewLLMResponder(client, "model", 0, NewCannedResponder(7), nil, nil)

	reply := r.Generate(context.Background(), "hi", nil, ExtractedData{})

	assert.Equal(t, "Happy to help with that!", reply)
}

func TestLLMResponder_FailureFallsBack(t *testing.T) {
	client := &mockLLMClient{err: errors.New("timeout")}
	r := NewLLMResponder(client, "model", 0, NewCannedResponder(7), nil, nil)

	reply := r.Generate(context.Background(), "when could we start?", nil, ExtractedData{})

	assert.Contains(t, reply, "Timeline is crucial")
}

func TestLLMResponder_BlankResponseFallsBack(t *testing.T) {
	client := &mockLLMClient{response: LLMResponse{Text: "   "}}
	r := NewLLMResponder(client, "model", 0, NewCannedResponder(7), nil, nil)

	reply := r.Generate(context.Background(), "hello", nil, ExtractedData{})

	assert.NotEmpty(t, strings.TrimSpace(reply))
}

func TestLLMResponder_SendsRecentHistoryWindow(t *testing.T) {
	client := &mockLLMClient{response: LLMResponse{Text: "ok"}}
	r := NewLLMResponder(client, "model", 0, NewCannedResponder(7), nil, nil)

	history := []Message{
		{Role: RoleAssistant, Text: "m1"},
		{Role: RoleUser, Text: "m2"},
		{Role: RoleAssistant, Text: "m3"},
		{Role: RoleUser, Text: "m4"},
		{Role: RoleAssistant, Text: "m5"},
		{Role: RoleUser, Text: "m6"},
	}

	r.Generate(context.Background(), "latest", history, ExtractedData{})

	require.Len(t, client.requests, 1)
	msgs := client.requests[0].Messages
	// Last four history entries plus the current utterance.
	require.Len(t, msgs, 5)
	assert.Equal(t, "m3", msgs[0].Content)
	assert.Equal(t, "latest", msgs[4].Content)
	assert.Equal(t, ChatRoleUser, msgs[4].Role)
}

func TestDetermineStrategy_Stages(t *testing.T) {
	early := determineStrategy(ExtractedData{}, make([]Message, 2))
	assert.Equal(t, StageDiscovery, early.Stage)
	assert.Equal(t, "project_identification", early.Strategy)

	mid := determineStrategy(ExtractedData{ProjectType: ProjectTypeAIIntegration}, make([]Message, 5))
	assert.Equal(t, StageQualification, mid.Stage)
	assert.Equal(t, "timeline_urgency", mid.Strategy)

	midBudget := determineStrategy(ExtractedData{
		ProjectType: ProjectTypeAIIntegration,
		Timeline:    TimelineImmediate,
	}, make([]Message, 5))
	assert.Equal(t, "budget_discovery", midBudget.Strategy)
	assert.Contains(t, midBudget.QualitySignals, "urgent timeline")

	late := determineStrategy(ExtractedData{}, make([]Message, 9))
	assert.Equal(t, StageClosing, late.Stage)
	assert.Equal(t, "closing_qualification", late.Strategy)
}

func TestClassifyStage(t *testing.T) {
	assert.Equal(t, StageDiscovery, ClassifyStage(0))
	assert.Equal(t, StageDiscovery, ClassifyStage(3))
	assert.Equal(t, StageQualification, ClassifyStage(4))
	assert.Equal(t, StageQualification, ClassifyStage(7))
	assert.Equal(t, StageClosing, ClassifyStage(8))
}
