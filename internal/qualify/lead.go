package qualify

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Lead is the finalized, scored record of one qualification conversation.
// Created exactly once, at session completion. Only Status and Notes are
// mutable afterwards, via admin actions.
type Lead struct {
	ID                  string        `json:"id"`
	Timestamp           time.Time     `json:"timestamp"`
	VisitorID           string        `json:"visitorId"`
	ConversationHistory []Message     `json:"conversationHistory"`
	ExtractedData       ExtractedData `json:"extractedData"`
	QualificationScore  int           `json:"qualificationScore"`
	Category            LeadCategory  `json:"category"`
	Status              LeadStatus    `json:"status"`
	Notes               string        `json:"notes,omitempty"`
	NextFollowUp        *time.Time    `json:"nextFollowUp,omitempty"`
}

// LeadSink receives finalized leads. The production implementation is the
// lead store; persistence failure must fail the session completion.
type LeadSink interface {
	Append(ctx context.Context, lead *Lead) error
}

// ClosingMessage synthesizes the personalized wrap-up text shown to the
// visitor once their conversation is scored.
func ClosingMessage(category LeadCategory, data ExtractedData) string {
	projectText := "your project"
	if data.ProjectType != "" {
		projectText = strings.ToLower(string(data.ProjectType))
	}
	timelineText := "upcoming project"
	if data.Timeline == TimelineImmediate {
		timelineText = "urgent timeline"
	}

	switch category {
	case CategoryHighValue:
		return fmt.Sprintf("Thank you for sharing details about your %s! Based on your %s and requirements, this sounds like an excellent fit for my expertise. I'd love to schedule a priority consultation to discuss how we can bring your vision to life. I'll be in touch within the next few hours to coordinate our next steps.", projectText, timelineText)
	case CategoryQualified:
		return fmt.Sprintf("I appreciate you taking the time to discuss your %s needs. This looks like a great opportunity for collaboration! I'll prepare some relevant case studies and initial recommendations. Expect to hear from me within 24 hours to schedule our consultation call.", projectText)
	case CategoryNurture:
		return fmt.Sprintf("Thanks for your interest in %s solutions! While your project timeline allows for some planning, I'd like to keep you informed about relevant insights and case studies. I'll add you to my newsletter and follow up as your project develops.", projectText)
	default:
		return fmt.Sprintf("Thank you for reaching out about your %s. I'll review your requirements and get back to you soon with some initial thoughts and next steps.", projectText)
	}
}
