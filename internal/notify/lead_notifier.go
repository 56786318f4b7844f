package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/jkazadi/portfolio-ai-platform/internal/qualify"
	"github.com/jkazadi/portfolio-ai-platform/pkg/logging"
)

// LeadNotifier emails a summary of each finalized lead to the owner.
type LeadNotifier struct {
	sender  EmailSender
	toEmail string
	logger  *logging.Logger
}

// NewLeadNotifier creates a notifier. Returns nil when no recipient or
// sender is configured, so callers can skip registration.
func NewLeadNotifier(sender EmailSender, toEmail string, logger *logging.Logger) *LeadNotifier {
	if sender == nil || toEmail == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &LeadNotifier{
		sender:  sender,
		toEmail: toEmail,
		logger:  logger,
	}
}

// NotifyLead sends the summary email. Failures are logged, not returned,
// so a broken mail provider never blocks lead persistence.
func (n *LeadNotifier) NotifyLead(ctx context.Context, lead *qualify.Lead) {
	if lead == nil {
		return
	}

	msg := EmailMessage{
		To:      n.toEmail,
		Subject: fmt.Sprintf("New %s lead (score %d)", lead.Category, lead.QualificationScore),
		Body:    formatLeadSummary(lead),
	}

	if err := n.sender.Send(ctx, msg); err != nil {
		n.logger.Error("failed to send lead notification", "error", err, "lead_id", lead.ID)
		return
	}
	n.logger.Info("lead notification sent", "lead_id", lead.ID, "category", lead.Category)
}

func formatLeadSummary(lead *qualify.Lead) string {
	var b strings.Builder

	fmt.Fprintf(&b, "A new lead finished the qualification chat.\n\n")
	fmt.Fprintf(&b, "Score:    %d\n", lead.QualificationScore)
	fmt.Fprintf(&b, "Category: %s\n", lead.Category)
	fmt.Fprintf(&b, "Captured: %s\n", lead.Timestamp.Format("Jan 2, 2006 15:04 MST"))

	data := lead.ExtractedData
	fmt.Fprintf(&b, "\nProfile\n")
	writeLine(&b, "Project type", string(data.ProjectType))
	writeLine(&b, "Timeline", string(data.Timeline))
	writeLine(&b, "Budget", string(data.BudgetRange))
	writeLine(&b, "Company size", string(data.CompanySize))
	writeLine(&b, "Industry", data.Industry)
	if len(data.PainPoints) > 0 {
		writeLine(&b, "Pain points", strings.Join(data.PainPoints, "; "))
	}
	if len(data.DesiredOutcomes) > 0 {
		writeLine(&b, "Desired outcomes", strings.Join(data.DesiredOutcomes, "; "))
	}

	contact := data.ContactInfo
	if contact.Name != "" || contact.Email != "" || contact.Phone != "" || contact.Company != "" {
		fmt.Fprintf(&b, "\nContact\n")
		writeLine(&b, "Name", contact.Name)
		writeLine(&b, "Email", contact.Email)
		writeLine(&b, "Phone", contact.Phone)
		writeLine(&b, "Company", contact.Company)
	}

	fmt.Fprintf(&b, "\nConversation: %d messages\n", len(lead.ConversationHistory))
	if lead.Notes != "" {
		fmt.Fprintf(&b, "\nClosing message sent:\n%s\n", lead.Notes)
	}
	fmt.Fprintf(&b, "\nLead ID: %s\n", lead.ID)

	return b.String()
}

func writeLine(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "  %-16s %s\n", label+":", value)
}
