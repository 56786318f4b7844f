package qualify

import (
	"fmt"
	"strings"
)

const extractionSystemPrompt = `You are an expert business analyst. Extract structured information from a single visitor message in a sales qualification chat.

Respond ONLY with a valid JSON object, no prose, matching this shape:

{
  "projectType": "AI_INTEGRATION" | "MARKETING_AUTOMATION" | "FULL_STACK_DEVELOPMENT" | "CONSULTATION" | "STRATEGY" | "OTHER",
  "timeline": "immediate" | "1-3 months" | "3-6 months" | "future planning",
  "budgetRange": "Under $5,000" | "$5,000 - $15,000" | "$15,000 - $50,000" | "Over $50,000" | "To be discussed",
  "companySize": "Startup (1-10 employees)" | "Small Business (11-50 employees)" | "Medium Business (51-200 employees)" | "Large Enterprise (200+ employees)" | "Individual/Freelancer",
  "aiExperience": "No prior AI experience" | "Basic understanding" | "Some implementation experience" | "Advanced AI user",
  "industry": "detected industry or null",
  "projectDescription": "summary of project needs",
  "specificNeeds": ["array", "of", "specific", "requirements"],
  "painPoints": ["key", "pain", "points"],
  "desiredOutcomes": ["desired", "business", "outcomes"],
  "urgencyIndicators": ["phrases", "signalling", "urgency"],
  "decisionMakers": ["people", "or", "roles", "mentioned"],
  "opportunitySize": "small" | "medium" | "large" | "enterprise",
  "readyToBuy": "not_ready" | "researching" | "evaluating" | "ready_to_decide",
  "engagementLevel": "low" | "medium" | "high" | "very_high",
  "contactInfo": {"name": "...", "email": "...", "company": "...", "phone": "..."},
  "confidence": 0.0-1.0
}

Only include fields you have reasonable confidence in. Omit or null everything else.`

// buildExtractionPrompt renders the per-turn extraction request. The prior
// context window is bounded to the last three transcript entries.
func buildExtractionPrompt(utterance string, recent []Message) string {
	var sb strings.Builder
	if len(recent) > 0 {
		sb.WriteString("CONTEXT: Previous conversation history:\n")
		start := len(recent) - 3
		if start < 0 {
			start = 0
		}
		for _, msg := range recent[start:] {
			fmt.Fprintf(&sb, "%s: %s\n", msg.Role, msg.Text)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "CURRENT MESSAGE: %q\n\nExtract the structured information as JSON.", utterance)
	return sb.String()
}

const responderIdentityPrompt = `You are Jacob's AI assistant for his consulting practice, an expert at providing actionable, specific marketing and AI advice.

Your role:
1. PROVIDE IMMEDIATE VALUE: give specific, actionable advice rather than generic questions
2. OFFER STRATEGIC INSIGHTS: share concrete strategies, tactics, and frameworks
3. BE SOLUTION-FOCUSED: address challenges with practical steps the visitor can implement today
4. DEMONSTRATE EXPERTISE: show deep marketing and AI knowledge through specific recommendations

Response format:
1. Acknowledge the visitor's specific situation
2. Provide 2-3 concrete, actionable strategies with implementation steps
3. Ask ONE follow-up question to offer more specific help

Keep responses helpful, tactical, and immediately valuable. Never mention internal scoring or qualification.`

// buildResponderSystem assembles the system prompts for a reply generation
// call, biased by the current conversation strategy.
func buildResponderSystem(strategy responseStrategy) []string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "CONVERSATION STAGE: %s\n", strategy.Stage)
	fmt.Fprintf(&sb, "STRATEGY: %s\n", strategy.Strategy)
	fmt.Fprintf(&sb, "PRIMARY OBJECTIVE: %s\n", strategy.PrimaryObjective)
	fmt.Fprintf(&sb, "STEER TOWARD: %s\n", strategy.NextQuestion)
	fmt.Fprintf(&sb, "TONE: %s\n", strategy.Tone)
	if len(strategy.MissingCritical) > 0 {
		fmt.Fprintf(&sb, "STILL UNKNOWN: %s\n", strings.Join(strategy.MissingCritical, ", "))
	}
	if len(strategy.QualitySignals) > 0 {
		fmt.Fprintf(&sb, "QUALITY SIGNALS OBSERVED: %s\n", strings.Join(strategy.QualitySignals, ", "))
	}
	return []string{responderIdentityPrompt, sb.String()}
}
