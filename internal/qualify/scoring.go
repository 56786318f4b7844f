package qualify

import "math"

// Dimension value tables. Each present field contributes its table value
// scaled by the configured weight. Experience is scored inversely to
// sophistication: prospects with less AI experience need more help.
var projectTypeValues = map[ProjectType]float64{
	ProjectTypeAIIntegration:       100,
	ProjectTypeMarketingAutomation: 90,
	ProjectTypeStrategy:            85,
	ProjectTypeFullStack:           70,
	ProjectTypeConsultation:        60,
	ProjectTypeOther:               40,
}

var timelineValues = map[TimelineUrgency]float64{
	TimelineImmediate:  100,
	TimelineShortTerm:  85,
	TimelineMediumTerm: 70,
	TimelineLongTerm:   40,
}

var budgetValues = map[BudgetRange]float64{
	BudgetOver50K:     100,
	Budget15KTo50K:    80,
	Budget5KTo15K:     60,
	BudgetUnspecified: 50,
	BudgetUnder5K:     30,
}

var companySizeValues = map[CompanySize]float64{
	CompanyLarge:      90,
	CompanyStartup:    85,
	CompanyMedium:     80,
	CompanySmall:      70,
	CompanyIndividual: 40,
}

var aiExperienceValues = map[AIExperienceLevel]float64{
	AIExperienceBasic:        100,
	AIExperienceNone:         90,
	AIExperienceIntermediate: 85,
	AIExperienceAdvanced:     70,
}

var engagementMultipliers = map[EngagementLevel]float64{
	EngagementVeryHigh: 1.2,
	EngagementHigh:     1.1,
	EngagementMedium:   1.0,
	EngagementLow:      0.9,
}

var opportunityMultipliers = map[OpportunitySize]float64{
	OpportunityEnterprise: 1.15,
	OpportunityLarge:      1.10,
	OpportunityMedium:     1.0,
	OpportunitySmall:      0.95,
}

var readinessBonuses = map[BuyingReadiness]float64{
	ReadinessReady:       10,
	ReadinessEvaluating:  7,
	ReadinessResearching: 4,
	ReadinessNotReady:    0,
}

const (
	painPointValue   = 5.0
	painPointCap     = 15.0
	outcomeValue     = 10.0 / 3.0
	outcomeCap       = 10.0
	urgencyBonus     = 5.0
	decisionBonus    = 8.0
	defaultReadiness = 2.0
)

// Score computes the qualification score and category for an accumulator.
// Pure and deterministic; an accumulator with nothing extracted scores zero.
func Score(data ExtractedData, cfg Config) (int, LeadCategory) {
	if data.IsEmpty() {
		return 0, Categorize(0, cfg.Thresholds)
	}

	score := 0.0
	if v, ok := projectTypeValues[data.ProjectType]; ok {
		score += v * cfg.Weights.ProjectType
	}
	if v, ok := timelineValues[data.Timeline]; ok {
		score += v * cfg.Weights.Timeline
	}
	if v, ok := budgetValues[data.BudgetRange]; ok {
		score += v * cfg.Weights.Budget
	}
	if v, ok := companySizeValues[data.CompanySize]; ok {
		score += v * cfg.Weights.CompanySize
	}
	if v, ok := aiExperienceValues[data.AIExperience]; ok {
		score += v * cfg.Weights.AIExperience
	}

	score += math.Min(painPointCap, float64(len(data.PainPoints))*painPointValue)
	score += math.Min(outcomeCap, float64(len(data.DesiredOutcomes))*outcomeValue)

	if m, ok := engagementMultipliers[data.EngagementLevel]; ok {
		score *= m
	}

	if len(data.UrgencyIndicators) > 0 {
		score += urgencyBonus
	}
	if len(data.DecisionMakers) > 0 {
		score += decisionBonus
	}

	if m, ok := opportunityMultipliers[data.OpportunitySize]; ok {
		score *= m
	}

	if bonus, ok := readinessBonuses[data.ReadyToBuy]; ok {
		score += bonus
	} else {
		score += defaultReadiness
	}

	if data.ConfidenceScore != nil {
		score *= 1 + (*data.ConfidenceScore-0.5)*0.3
	}

	rounded := int(math.Round(score))
	if rounded < 0 {
		rounded = 0
	}
	if rounded > 100 {
		rounded = 100
	}
	return rounded, Categorize(rounded, cfg.Thresholds)
}

// Categorize maps a score onto a lead category using inclusive lower
// bounds checked in descending order.
func Categorize(score int, t CategoryThresholds) LeadCategory {
	switch {
	case score >= t.HighValue:
		return CategoryHighValue
	case score >= t.Qualified:
		return CategoryQualified
	case score >= t.Nurture:
		return CategoryNurture
	default:
		return CategoryUnqualified
	}
}
