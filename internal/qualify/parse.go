package qualify

import "strings"

// The extraction capability is asked for token-form enum values
// (e.g. AI_INTEGRATION) but models frequently echo the display form
// instead. Both spellings resolve to the same enum; anything else is
// dropped rather than guessed at.

var projectTypeAliases = map[string]ProjectType{
	"ai_integration":         ProjectTypeAIIntegration,
	"ai integration":         ProjectTypeAIIntegration,
	"marketing_automation":   ProjectTypeMarketingAutomation,
	"marketing automation":   ProjectTypeMarketingAutomation,
	"full_stack_development": ProjectTypeFullStack,
	"full stack development": ProjectTypeFullStack,
	"consultation":           ProjectTypeConsultation,
	"strategy":               ProjectTypeStrategy,
	"strategy & planning":    ProjectTypeStrategy,
	"other":                  ProjectTypeOther,
}

var timelineAliases = map[string]TimelineUrgency{
	"immediate":           TimelineImmediate,
	"one_to_three_months": TimelineShortTerm,
	"1-3 months":          TimelineShortTerm,
	"three_to_six_months": TimelineMediumTerm,
	"3-6 months":          TimelineMediumTerm,
	"future_planning":     TimelineLongTerm,
	"future planning":     TimelineLongTerm,
}

var budgetAliases = map[string]BudgetRange{
	"under_5k":          BudgetUnder5K,
	"under $5,000":      BudgetUnder5K,
	"five_to_15k":       Budget5KTo15K,
	"$5,000 - $15,000":  Budget5KTo15K,
	"fifteen_to_50k":    Budget15KTo50K,
	"$15,000 - $50,000": Budget15KTo50K,
	"over_50k":          BudgetOver50K,
	"over $50,000":      BudgetOver50K,
	"unspecified":       BudgetUnspecified,
	"to be discussed":   BudgetUnspecified,
}

var companySizeAliases = map[string]CompanySize{
	"startup":                            CompanyStartup,
	"startup (1-10 employees)":           CompanyStartup,
	"small":                              CompanySmall,
	"small business (11-50 employees)":   CompanySmall,
	"medium":                             CompanyMedium,
	"medium business (51-200 employees)": CompanyMedium,
	"large":                              CompanyLarge,
	"large enterprise (200+ employees)":  CompanyLarge,
	"individual":                         CompanyIndividual,
	"individual/freelancer":              CompanyIndividual,
}

var aiExperienceAliases = map[string]AIExperienceLevel{
	"none":                           AIExperienceNone,
	"no prior ai experience":         AIExperienceNone,
	"basic":                          AIExperienceBasic,
	"basic understanding":            AIExperienceBasic,
	"intermediate":                   AIExperienceIntermediate,
	"some implementation experience": AIExperienceIntermediate,
	"advanced":                       AIExperienceAdvanced,
	"advanced ai user":               AIExperienceAdvanced,
}

var engagementAliases = map[string]EngagementLevel{
	"low":       EngagementLow,
	"medium":    EngagementMedium,
	"high":      EngagementHigh,
	"very_high": EngagementVeryHigh,
	"very high": EngagementVeryHigh,
}

var readinessAliases = map[string]BuyingReadiness{
	"not_ready":       ReadinessNotReady,
	"researching":     ReadinessResearching,
	"evaluating":      ReadinessEvaluating,
	"ready_to_decide": ReadinessReady,
	"ready to decide": ReadinessReady,
}

var opportunityAliases = map[string]OpportunitySize{
	"small":      OpportunitySmall,
	"medium":     OpportunityMedium,
	"large":      OpportunityLarge,
	"enterprise": OpportunityEnterprise,
}

func normalizeAlias(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ParseProjectType resolves a token or display spelling to a ProjectType.
func ParseProjectType(s string) (ProjectType, bool) {
	v, ok := projectTypeAliases[normalizeAlias(s)]
	return v, ok
}

// ParseTimeline resolves a token or display spelling to a TimelineUrgency.
func ParseTimeline(s string) (TimelineUrgency, bool) {
	v, ok := timelineAliases[normalizeAlias(s)]
	return v, ok
}

// ParseBudget resolves a token or display spelling to a BudgetRange.
func ParseBudget(s string) (BudgetRange, bool) {
	v, ok := budgetAliases[normalizeAlias(s)]
	return v, ok
}

// ParseCompanySize resolves a token or display spelling to a CompanySize.
func ParseCompanySize(s string) (CompanySize, bool) {
	v, ok := companySizeAliases[normalizeAlias(s)]
	return v, ok
}

// ParseAIExperience resolves a spelling to an AIExperienceLevel.
func ParseAIExperience(s string) (AIExperienceLevel, bool) {
	v, ok := aiExperienceAliases[normalizeAlias(s)]
	return v, ok
}

// ParseEngagement resolves a spelling to an EngagementLevel.
func ParseEngagement(s string) (EngagementLevel, bool) {
	v, ok := engagementAliases[normalizeAlias(s)]
	return v, ok
}

// ParseReadiness resolves a spelling to a BuyingReadiness.
func ParseReadiness(s string) (BuyingReadiness, bool) {
	v, ok := readinessAliases[normalizeAlias(s)]
	return v, ok
}

// ParseOpportunitySize resolves a spelling to an OpportunitySize.
func ParseOpportunitySize(s string) (OpportunitySize, bool) {
	v, ok := opportunityAliases[normalizeAlias(s)]
	return v, ok
}
