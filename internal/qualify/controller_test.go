package qualify

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExtractor struct {
	update ExtractedData
	// byTurn takes precedence when set; keyed by 1-based call number.
	byTurn map[int]ExtractedData
	calls  int
}

func (s *stubExtractor) Extract(_ context.Context, _ string, _ []Message) ExtractedData {
	s.calls++
	if s.byTurn != nil {
		return s.byTurn[s.calls]
	}
	return s.update
}

type stubResponder struct {
	reply string
	block chan struct{}
}

func (s *stubResponder) Generate(_ context.Context, _ string, _ []Message, _ ExtractedData) string {
	if s.block != nil {
		<-s.block
	}
	if s.reply == "" {
		return "tell me more"
	}
	return s.reply
}

func testClock() func() time.Time {
	base := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

func testIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func TestNewController_SeedsGreeting(t *testing.T) {
	c := NewController(&stubExtractor{}, &stubResponder{}, DefaultConfig(),
		WithClock(testClock()), WithIDGenerator(testIDs("msg")))

	msgs := c.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, RoleAssistant, msgs[0].Role)
	assert.Equal(t, greetingText, msgs[0].Text)
	assert.Equal(t, "msg-1", msgs[0].ID)
	assert.Equal(t, StateAwaitingInput, c.State())
}

func TestController_SubmitRunsOneTurn(t *testing.T) {
	extractor := &stubExtractor{update: ExtractedData{ProjectType: ProjectTypeAIIntegration}}
	c := NewController(extractor, &stubResponder{reply: "what is your timeline?"}, DefaultConfig(),
		WithClock(testClock()), WithIDGenerator(testIDs("msg")))

	reply, done, err := c.Submit(context.Background(), "I need AI help")

	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, "what is your timeline?", reply.Text)
	assert.Equal(t, RoleAssistant, reply.Role)

	msgs := c.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, RoleUser, msgs[1].Role)
	assert.Equal(t, "I need AI help", msgs[1].Text)
	require.NotNil(t, msgs[2].Metadata)
	require.NotNil(t, msgs[2].Metadata.Extracted)
	assert.Equal(t, ProjectTypeAIIntegration, msgs[2].Metadata.Extracted.ProjectType)
	assert.Equal(t, ProjectTypeAIIntegration, c.Data().ProjectType)
	assert.Equal(t, StateAwaitingInput, c.State())
}

func TestController_EmptyUpdateOmitsMetadata(t *testing.T) {
	c := NewController(&stubExtractor{}, &stubResponder{}, DefaultConfig())

	_, _, err := c.Submit(context.Background(), "hello")
	require.NoError(t, err)

	msgs := c.Messages()
	require.NotNil(t, msgs[2].Metadata)
	assert.Nil(t, msgs[2].Metadata.Extracted)
}

func TestController_MaxLengthCompletion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxConversationLength = 7
	c := NewController(&stubExtractor{}, &stubResponder{}, cfg)

	longText := strings.Repeat("we are exploring options for the platform ", 3)

	_, done, err := c.Submit(context.Background(), longText)
	require.NoError(t, err)
	assert.False(t, done)

	_, done, err = c.Submit(context.Background(), longText)
	require.NoError(t, err)
	assert.False(t, done)

	_, done, err = c.Submit(context.Background(), longText)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, StateComplete, c.State())
	assert.Equal(t, ReasonMaxLength, c.CompletionReason())
}

func TestController_SubmitAfterCompleteRejected(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxConversationLength = 3
	c := NewController(&stubExtractor{}, &stubResponder{}, cfg)

	_, done, err := c.Submit(context.Background(), strings.Repeat("long message text ", 5))
	require.NoError(t, err)
	require.True(t, done)

	_, _, err = c.Submit(context.Background(), "one more thing")
	assert.ErrorIs(t, err, ErrSessionComplete)
}

func TestController_ConcurrentSubmitRejected(t *testing.T) {
	block := make(chan struct{})
	c := NewController(&stubExtractor{}, &stubResponder{block: block}, DefaultConfig())

	firstDone := make(chan error, 1)
	go func() {
		_, _, err := c.Submit(context.Background(), "first")
		firstDone <- err
	}()

	require.Eventually(t, func() bool {
		return c.State() == StateProcessing
	}, time.Second, 5*time.Millisecond)

	_, _, err := c.Submit(context.Background(), "second")
	assert.ErrorIs(t, err, ErrSessionBusy)

	close(block)
	require.NoError(t, <-firstDone)
}

func TestRestoreController(t *testing.T) {
	snap := Snapshot{
		Messages: []Message{
			{ID: "a", Role: RoleAssistant, Text: greetingText},
			{ID: "b", Role: RoleUser, Text: "hi"},
			{ID: "c", Role: RoleAssistant, Text: "tell me more"},
		},
		Data:  ExtractedData{ProjectType: ProjectTypeStrategy},
		State: StateProcessing,
	}

	c := RestoreController(&stubExtractor{}, &stubResponder{}, DefaultConfig(), snap)

	// An in-flight turn does not survive a restart.
	assert.Equal(t, StateAwaitingInput, c.State())
	assert.Len(t, c.Messages(), 3)
	assert.Equal(t, ProjectTypeStrategy, c.Data().ProjectType)
}

func transcript(count int, userText string) []Message {
	msgs := make([]Message, 0, count)
	for i := 0; i < count; i++ {
		if i%2 == 0 {
			msgs = append(msgs, Message{Role: RoleAssistant, Text: "assistant turn"})
		} else {
			msgs = append(msgs, Message{Role: RoleUser, Text: userText})
		}
	}
	return msgs
}

func TestEvaluateCompletion_MaxLength(t *testing.T) {
	done, reason := evaluateCompletion(transcript(20, "some message"), ExtractedData{}, 20)

	assert.True(t, done)
	assert.Equal(t, ReasonMaxLength, reason)
}

func TestEvaluateCompletion_EngagedBeatsStandard(t *testing.T) {
	data := ExtractedData{
		ProjectType: ProjectTypeAIIntegration,
		Timeline:    TimelineShortTerm,
		PainPoints:  []string{"manual work"},
	}

	done, reason := evaluateCompletion(transcript(17, "our business team needs this"), data, 20)

	assert.True(t, done)
	assert.Equal(t, ReasonEngaged, reason)
}

func TestEvaluateCompletion_Standard(t *testing.T) {
	data := ExtractedData{
		ProjectType: ProjectTypeAIIntegration,
		Timeline:    TimelineShortTerm,
		BudgetRange: Budget15KTo50K,
	}

	done, reason := evaluateCompletion(transcript(13, "just exploring what is possible here"), data, 20)

	assert.True(t, done)
	assert.Equal(t, ReasonStandard, reason)
}

func TestEvaluateCompletion_HighValue(t *testing.T) {
	data := ExtractedData{
		ProjectType: ProjectTypeAIIntegration,
		Timeline:    TimelineImmediate,
		BudgetRange: BudgetOver50K,
		PainPoints:  []string{"slow intake"},
	}
	longText := strings.Repeat("detailed answer about scope and constraints ", 3)

	done, reason := evaluateCompletion(transcript(11, longText), data, 20)

	assert.True(t, done)
	assert.Equal(t, ReasonHighValue, reason)
}

func TestEvaluateCompletion_LowEngagement(t *testing.T) {
	done, reason := evaluateCompletion(transcript(9, "ok"), ExtractedData{}, 20)

	assert.True(t, done)
	assert.Equal(t, ReasonLowEngagement, reason)
}

func TestEvaluateCompletion_ShortConversationContinues(t *testing.T) {
	done, _ := evaluateCompletion(transcript(7, "ok"), ExtractedData{}, 20)

	assert.False(t, done)
}

func TestRichnessScore(t *testing.T) {
	assert.Equal(t, 0, richnessScore(ExtractedData{}))

	partial := ExtractedData{
		ProjectType: ProjectTypeAIIntegration,
		Timeline:    TimelineImmediate,
		BudgetRange: BudgetOver50K,
	}
	assert.Equal(t, 6, richnessScore(partial))

	full := ExtractedData{
		ProjectType:     ProjectTypeAIIntegration,
		Timeline:        TimelineImmediate,
		BudgetRange:     BudgetOver50K,
		CompanySize:     CompanyStartup,
		PainPoints:      []string{"a"},
		DesiredOutcomes: []string{"b"},
		ContactInfo:     ContactInfo{Email: "x@y.com"},
	}
	assert.Equal(t, 9, richnessScore(full), "richness is capped")
}

func TestEvaluateCompletion_MonotoneInMessageCount(t *testing.T) {
	profiles := []struct {
		name     string
		data     ExtractedData
		userText string
	}{
		{
			name: "rich engaged visitor",
			data: ExtractedData{
				ProjectType:     ProjectTypeAIIntegration,
				Timeline:        TimelineImmediate,
				BudgetRange:     BudgetOver50K,
				CompanySize:     CompanyStartup,
				PainPoints:      []string{"manual reporting"},
				DesiredOutcomes: []string{"faster onboarding"},
				ContactInfo:     ContactInfo{Email: "x@y.com"},
			},
			userText: strings.Repeat("our business process needs automation ", 3),
		},
		{
			name:     "sparse terse visitor",
			data:     ExtractedData{},
			userText: "ok",
		},
	}

	for _, p := range profiles {
		t.Run(p.name, func(t *testing.T) {
			completed := false
			for count := 1; count <= 25; count++ {
				done, _ := evaluateCompletion(transcript(count, p.userText), p.data, 20)
				if completed {
					require.True(t, done, "completion regressed at count %d", count)
				}
				completed = done
			}
			assert.True(t, completed, "policy never fired by count 25")
		})
	}
}
