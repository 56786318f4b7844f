package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkazadi/portfolio-ai-platform/internal/qualify"
)

type mockEmailSender struct {
	sent    []EmailMessage
	callErr error
}

func (m *mockEmailSender) Send(_ context.Context, msg EmailMessage) error {
	if m.callErr != nil {
		return m.callErr
	}
	m.sent = append(m.sent, msg)
	return nil
}

func sampleLead() *qualify.Lead {
	return &qualify.Lead{
		ID:                 "lead-1",
		Timestamp:          time.Date(2026, 4, 2, 16, 45, 0, 0, time.UTC),
		QualificationScore: 85,
		Category:           qualify.CategoryHighValue,
		Status:             qualify.StatusNew,
		Notes:              "Thank you for sharing details!",
		ConversationHistory: []qualify.Message{
			{Role: qualify.RoleAssistant, Text: "hi"},
			{Role: qualify.RoleUser, Text: "hello"},
		},
		ExtractedData: qualify.ExtractedData{
			ProjectType: qualify.ProjectTypeAIIntegration,
			Timeline:    qualify.TimelineImmediate,
			BudgetRange: qualify.BudgetOver50K,
			PainPoints:  []string{"manual intake"},
			ContactInfo: qualify.ContactInfo{Name: "Dana", Email: "dana@example.com"},
		},
	}
}

func TestNewLeadNotifier_RequiresSenderAndRecipient(t *testing.T) {
	assert.Nil(t, NewLeadNotifier(nil, "owner@example.com", nil))
	assert.Nil(t, NewLeadNotifier(&mockEmailSender{}, "", nil))
	assert.NotNil(t, NewLeadNotifier(&mockEmailSender{}, "owner@example.com", nil))
}

func TestNotifyLead_SendsSummary(t *testing.T) {
	sender := &mockEmailSender{}
	n := NewLeadNotifier(sender, "owner@example.com", nil)

	n.NotifyLead(context.Background(), sampleLead())

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "owner@example.com", msg.To)
	assert.Equal(t, "New high-value lead (score 85)", msg.Subject)
	assert.Contains(t, msg.Body, "Score:    85")
	assert.Contains(t, msg.Body, "AI Integration")
	assert.Contains(t, msg.Body, "Over $50,000")
	assert.Contains(t, msg.Body, "manual intake")
	assert.Contains(t, msg.Body, "dana@example.com")
	assert.Contains(t, msg.Body, "Conversation: 2 messages")
	assert.Contains(t, msg.Body, "Lead ID: lead-1")
}

func TestNotifyLead_SkipsEmptyProfileLines(t *testing.T) {
	sender := &mockEmailSender{}
	n := NewLeadNotifier(sender, "owner@example.com", nil)

	lead := sampleLead()
	lead.ExtractedData = qualify.ExtractedData{ProjectType: qualify.ProjectTypeOther}
	n.NotifyLead(context.Background(), lead)

	require.Len(t, sender.sent, 1)
	body := sender.sent[0].Body
	assert.NotContains(t, body, "Budget:")
	assert.NotContains(t, body, "Contact\n")
}

func TestNotifyLead_SendFailureIsSwallowed(t *testing.T) {
	sender := &mockEmailSender{callErr: errors.New("smtp down")}
	n := NewLeadNotifier(sender, "owner@example.com", nil)

	// Must not panic or propagate; lead persistence already succeeded.
	n.NotifyLead(context.Background(), sampleLead())

	assert.Empty(t, sender.sent)
}

func TestNotifyLead_NilLead(t *testing.T) {
	sender := &mockEmailSender{}
	n := NewLeadNotifier(sender, "owner@example.com", nil)

	n.NotifyLead(context.Background(), nil)

	assert.Empty(t, sender.sent)
}
