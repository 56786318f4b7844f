package qualify

import (
	"strings"
	"time"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ProjectType classifies the kind of engagement a visitor is asking about.
type ProjectType string

const (
	ProjectTypeAIIntegration       ProjectType = "AI Integration"
	ProjectTypeMarketingAutomation ProjectType = "Marketing Automation"
	ProjectTypeFullStack           ProjectType = "Full Stack Development"
	ProjectTypeConsultation        ProjectType = "Consultation"
	ProjectTypeStrategy            ProjectType = "Strategy & Planning"
	ProjectTypeOther               ProjectType = "Other"
)

// TimelineUrgency captures how soon the visitor wants to start.
type TimelineUrgency string

const (
	TimelineImmediate  TimelineUrgency = "immediate"
	TimelineShortTerm  TimelineUrgency = "1-3 months"
	TimelineMediumTerm TimelineUrgency = "3-6 months"
	TimelineLongTerm   TimelineUrgency = "future planning"
)

// BudgetRange captures the visitor's stated budget bracket.
type BudgetRange string

const (
	BudgetUnder5K     BudgetRange = "Under $5,000"
	Budget5KTo15K     BudgetRange = "$5,000 - $15,000"
	Budget15KTo50K    BudgetRange = "$15,000 - $50,000"
	BudgetOver50K     BudgetRange = "Over $50,000"
	BudgetUnspecified BudgetRange = "To be discussed"
)

// CompanySize buckets the visitor's organization.
type CompanySize string

const (
	CompanyStartup    CompanySize = "Startup (1-10 employees)"
	CompanySmall      CompanySize = "Small Business (11-50 employees)"
	CompanyMedium     CompanySize = "Medium Business (51-200 employees)"
	CompanyLarge      CompanySize = "Large Enterprise (200+ employees)"
	CompanyIndividual CompanySize = "Individual/Freelancer"
)

// AIExperienceLevel describes the visitor's familiarity with AI tooling.
type AIExperienceLevel string

const (
	AIExperienceNone         AIExperienceLevel = "No prior AI experience"
	AIExperienceBasic        AIExperienceLevel = "Basic understanding"
	AIExperienceIntermediate AIExperienceLevel = "Some implementation experience"
	AIExperienceAdvanced     AIExperienceLevel = "Advanced AI user"
)

// EngagementLevel is a soft signal of how invested the visitor is.
type EngagementLevel string

const (
	EngagementLow      EngagementLevel = "low"
	EngagementMedium   EngagementLevel = "medium"
	EngagementHigh     EngagementLevel = "high"
	EngagementVeryHigh EngagementLevel = "very_high"
)

// BuyingReadiness describes where the visitor sits in their decision process.
type BuyingReadiness string

const (
	ReadinessNotReady    BuyingReadiness = "not_ready"
	ReadinessResearching BuyingReadiness = "researching"
	ReadinessEvaluating  BuyingReadiness = "evaluating"
	ReadinessReady       BuyingReadiness = "ready_to_decide"
)

// OpportunitySize is the extractor's estimate of deal magnitude.
type OpportunitySize string

const (
	OpportunitySmall      OpportunitySize = "small"
	OpportunityMedium     OpportunitySize = "medium"
	OpportunityLarge      OpportunitySize = "large"
	OpportunityEnterprise OpportunitySize = "enterprise"
)

// LeadCategory is the qualification outcome bucket.
type LeadCategory string

const (
	CategoryHighValue   LeadCategory = "high-value"
	CategoryQualified   LeadCategory = "qualified"
	CategoryNurture     LeadCategory = "nurture"
	CategoryUnqualified LeadCategory = "unqualified"
)

// LeadStatus tracks follow-up workflow state on a stored lead.
type LeadStatus string

const (
	StatusNew        LeadStatus = "new"
	StatusInProgress LeadStatus = "in-progress"
	StatusResponded  LeadStatus = "responded"
	StatusConverted  LeadStatus = "converted"
	StatusClosed     LeadStatus = "closed"
)

// ContactInfo holds whatever identifying details the visitor has volunteered.
type ContactInfo struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Company string `json:"company,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

func (c ContactInfo) isEmpty() bool {
	return c.Name == "" && c.Email == "" && c.Company == "" && c.Phone == ""
}

// ExtractedData accumulates everything learned about a visitor across a
// session. Every field is optional; absence means "not yet learned".
type ExtractedData struct {
	ProjectType        ProjectType       `json:"projectType,omitempty"`
	Timeline           TimelineUrgency   `json:"timeline,omitempty"`
	BudgetRange        BudgetRange       `json:"budgetRange,omitempty"`
	CompanySize        CompanySize       `json:"companySize,omitempty"`
	Industry           string            `json:"industry,omitempty"`
	AIExperience       AIExperienceLevel `json:"aiExperience,omitempty"`
	ContactInfo        ContactInfo       `json:"contactInfo,omitempty"`
	ProjectDescription string            `json:"projectDescription,omitempty"`
	SpecificNeeds      []string          `json:"specificNeeds,omitempty"`
	PainPoints         []string          `json:"painPoints,omitempty"`
	DesiredOutcomes    []string          `json:"desiredOutcomes,omitempty"`
	UrgencyIndicators  []string          `json:"urgencyIndicators,omitempty"`
	DecisionMakers     []string          `json:"decisionMakers,omitempty"`
	OpportunitySize    OpportunitySize   `json:"opportunitySize,omitempty"`
	ReadyToBuy         BuyingReadiness   `json:"readyToBuy,omitempty"`
	EngagementLevel    EngagementLevel   `json:"engagementLevel,omitempty"`
	ConfidenceScore    *float64          `json:"confidenceScore,omitempty"`
}

// IsEmpty reports whether nothing has been extracted yet.
func (d ExtractedData) IsEmpty() bool {
	return d.ProjectType == "" && d.Timeline == "" && d.BudgetRange == "" &&
		d.CompanySize == "" && d.Industry == "" && d.AIExperience == "" &&
		d.ContactInfo.isEmpty() && d.ProjectDescription == "" &&
		len(d.SpecificNeeds) == 0 && len(d.PainPoints) == 0 &&
		len(d.DesiredOutcomes) == 0 && len(d.UrgencyIndicators) == 0 &&
		len(d.DecisionMakers) == 0 && d.OpportunitySize == "" &&
		d.ReadyToBuy == "" && d.EngagementLevel == "" && d.ConfidenceScore == nil
}

// Merge folds a per-turn update into the accumulator. Scalars are
// last-write-wins when the update carries a value; list fields append
// with case-insensitive de-duplication; an earlier value is never
// cleared by an absent field.
func (d *ExtractedData) Merge(update ExtractedData) {
	if update.ProjectType != "" {
		d.ProjectType = update.ProjectType
	}
	if update.Timeline != "" {
		d.Timeline = update.Timeline
	}
	if update.BudgetRange != "" {
		d.BudgetRange = update.BudgetRange
	}
	if update.CompanySize != "" {
		d.CompanySize = update.CompanySize
	}
	if update.Industry != "" {
		d.Industry = update.Industry
	}
	if update.AIExperience != "" {
		d.AIExperience = update.AIExperience
	}
	if update.ContactInfo.Name != "" {
		d.ContactInfo.Name = update.ContactInfo.Name
	}
	if update.ContactInfo.Email != "" {
		d.ContactInfo.Email = update.ContactInfo.Email
	}
	if update.ContactInfo.Company != "" {
		d.ContactInfo.Company = update.ContactInfo.Company
	}
	if update.ContactInfo.Phone != "" {
		d.ContactInfo.Phone = update.ContactInfo.Phone
	}
	if update.ProjectDescription != "" {
		d.ProjectDescription = update.ProjectDescription
	}
	d.SpecificNeeds = appendUnique(d.SpecificNeeds, update.SpecificNeeds)
	d.PainPoints = appendUnique(d.PainPoints, update.PainPoints)
	d.DesiredOutcomes = appendUnique(d.DesiredOutcomes, update.DesiredOutcomes)
	d.UrgencyIndicators = appendUnique(d.UrgencyIndicators, update.UrgencyIndicators)
	d.DecisionMakers = appendUnique(d.DecisionMakers, update.DecisionMakers)
	if update.OpportunitySize != "" {
		d.OpportunitySize = update.OpportunitySize
	}
	if update.ReadyToBuy != "" {
		d.ReadyToBuy = update.ReadyToBuy
	}
	if update.EngagementLevel != "" {
		d.EngagementLevel = update.EngagementLevel
	}
	if update.ConfidenceScore != nil {
		d.ConfidenceScore = update.ConfidenceScore
	}
}

func appendUnique(existing, incoming []string) []string {
	if len(incoming) == 0 {
		return existing
	}
	seen := make(map[string]struct{}, len(existing))
	for _, v := range existing {
		seen[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}
	for _, v := range incoming {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		existing = append(existing, trimmed)
	}
	return existing
}

// MessageMetadata carries per-turn extraction results for auditability.
type MessageMetadata struct {
	Extracted  *ExtractedData `json:"extracted,omitempty"`
	Confidence *float64       `json:"confidence,omitempty"`
}

// Message is a single transcript entry.
type Message struct {
	ID        string           `json:"id"`
	Timestamp time.Time        `json:"timestamp"`
	Role      Role             `json:"role"`
	Text      string           `json:"text"`
	Metadata  *MessageMetadata `json:"metadata,omitempty"`
}
