package qualify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestScore_EmptyAccumulator(t *testing.T) {
	score, category := Score(ExtractedData{}, DefaultConfig())

	assert.Equal(t, 0, score)
	assert.Equal(t, CategoryUnqualified, category)
}

func TestScore_FullSignalClampsToHundred(t *testing.T) {
	data := ExtractedData{
		ProjectType:       ProjectTypeAIIntegration,
		Timeline:          TimelineImmediate,
		BudgetRange:       BudgetOver50K,
		CompanySize:       CompanyStartup,
		AIExperience:      AIExperienceBasic,
		PainPoints:        []string{"manual follow-up", "slow reporting", "churn"},
		DesiredOutcomes:   []string{"more leads", "less busywork", "faster sales"},
		EngagementLevel:   EngagementVeryHigh,
		UrgencyIndicators: []string{"launching next month"},
		DecisionMakers:    []string{"CEO"},
		OpportunitySize:   OpportunityEnterprise,
		ReadyToBuy:        ReadinessReady,
		ConfidenceScore:   floatPtr(0.9),
	}

	score, category := Score(data, DefaultConfig())

	assert.Equal(t, 100, score)
	assert.Equal(t, CategoryHighValue, category)
}

func TestScore_DimensionOnlyQualified(t *testing.T) {
	data := ExtractedData{
		ProjectType:  ProjectTypeAIIntegration,
		Timeline:     TimelineShortTerm,
		BudgetRange:  BudgetUnder5K,
		CompanySize:  CompanySmall,
		AIExperience: AIExperienceBasic,
	}

	// 25 + 25.5 + 7.5 + 10.5 + 5, plus the default readiness bonus.
	score, category := Score(data, DefaultConfig())

	assert.Equal(t, 76, score)
	assert.Equal(t, CategoryQualified, category)
}

func TestScore_WeakProfileNurture(t *testing.T) {
	data := ExtractedData{
		ProjectType:  ProjectTypeConsultation,
		Timeline:     TimelineLongTerm,
		BudgetRange:  BudgetUnder5K,
		CompanySize:  CompanyIndividual,
		AIExperience: AIExperienceAdvanced,
	}

	score, category := Score(data, DefaultConfig())

	assert.Equal(t, 46, score)
	assert.Equal(t, CategoryNurture, category)
}

func TestScore_NonEmptyButNoDimensions(t *testing.T) {
	data := ExtractedData{Industry: "retail"}

	score, category := Score(data, DefaultConfig())

	assert.Equal(t, 2, score)
	assert.Equal(t, CategoryUnqualified, category)
}

func TestScore_PainPointsCapped(t *testing.T) {
	three := ExtractedData{PainPoints: []string{"a", "b", "c"}}
	ten := ExtractedData{PainPoints: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}}

	threeScore, _ := Score(three, DefaultConfig())
	tenScore, _ := Score(ten, DefaultConfig())

	assert.Equal(t, 17, threeScore)
	assert.Equal(t, threeScore, tenScore)
}

func TestScore_OutcomesCapped(t *testing.T) {
	one := ExtractedData{DesiredOutcomes: []string{"a"}}
	three := ExtractedData{DesiredOutcomes: []string{"a", "b", "c"}}
	five := ExtractedData{DesiredOutcomes: []string{"a", "b", "c", "d", "e"}}

	oneScore, _ := Score(one, DefaultConfig())
	threeScore, _ := Score(three, DefaultConfig())
	fiveScore, _ := Score(five, DefaultConfig())

	assert.Equal(t, 5, oneScore)
	assert.Equal(t, 12, threeScore)
	assert.Equal(t, threeScore, fiveScore)
}

func TestScore_EngagementMultiplier(t *testing.T) {
	base := ExtractedData{ProjectType: ProjectTypeAIIntegration}

	low := base
	low.EngagementLevel = EngagementLow
	high := base
	high.EngagementLevel = EngagementVeryHigh

	baseScore, _ := Score(base, DefaultConfig())
	lowScore, _ := Score(low, DefaultConfig())
	highScore, _ := Score(high, DefaultConfig())

	assert.Equal(t, 27, baseScore)
	assert.Equal(t, 25, lowScore)
	assert.Equal(t, 32, highScore)
}

func TestScore_UrgencyAndDecisionMakerBonuses(t *testing.T) {
	base := ExtractedData{ProjectType: ProjectTypeAIIntegration}
	urgent := base
	urgent.UrgencyIndicators = []string{"this quarter"}
	decider := base
	decider.DecisionMakers = []string{"founder"}

	baseScore, _ := Score(base, DefaultConfig())
	urgentScore, _ := Score(urgent, DefaultConfig())
	deciderScore, _ := Score(decider, DefaultConfig())

	assert.Equal(t, baseScore+5, urgentScore)
	assert.Equal(t, baseScore+8, deciderScore)
}

func TestScore_ReadinessBonuses(t *testing.T) {
	cases := []struct {
		readiness BuyingReadiness
		want      int
	}{
		{ReadinessReady, 35},
		{ReadinessEvaluating, 32},
		{ReadinessResearching, 29},
		{ReadinessNotReady, 25},
		{"", 27}, // unknown readiness falls back to the default bonus
	}

	for _, tc := range cases {
		data := ExtractedData{ProjectType: ProjectTypeAIIntegration, ReadyToBuy: tc.readiness}
		score, _ := Score(data, DefaultConfig())
		assert.Equal(t, tc.want, score, "readiness %q", tc.readiness)
	}
}

func TestScore_ConfidenceAdjustment(t *testing.T) {
	base := ExtractedData{ProjectType: ProjectTypeAIIntegration}

	confident := base
	confident.ConfidenceScore = floatPtr(1.0)
	unsure := base
	unsure.ConfidenceScore = floatPtr(0.0)
	neutral := base
	neutral.ConfidenceScore = floatPtr(0.5)

	baseScore, _ := Score(base, DefaultConfig())
	confidentScore, _ := Score(confident, DefaultConfig())
	unsureScore, _ := Score(unsure, DefaultConfig())
	neutralScore, _ := Score(neutral, DefaultConfig())

	assert.Equal(t, 27, baseScore)
	assert.Equal(t, 31, confidentScore)
	assert.Equal(t, 23, unsureScore)
	assert.Equal(t, baseScore, neutralScore)
}

func TestScore_Deterministic(t *testing.T) {
	data := ExtractedData{
		ProjectType: ProjectTypeMarketingAutomation,
		Timeline:    TimelineMediumTerm,
		PainPoints:  []string{"manual outreach"},
	}

	first, firstCat := Score(data, DefaultConfig())
	for i := 0; i < 10; i++ {
		score, category := Score(data, DefaultConfig())
		require.Equal(t, first, score)
		require.Equal(t, firstCat, category)
	}
}

func TestCategorize_InclusiveBounds(t *testing.T) {
	thresholds := DefaultConfig().Thresholds

	assert.Equal(t, CategoryHighValue, Categorize(100, thresholds))
	assert.Equal(t, CategoryHighValue, Categorize(80, thresholds))
	assert.Equal(t, CategoryQualified, Categorize(79, thresholds))
	assert.Equal(t, CategoryQualified, Categorize(60, thresholds))
	assert.Equal(t, CategoryNurture, Categorize(59, thresholds))
	assert.Equal(t, CategoryNurture, Categorize(40, thresholds))
	assert.Equal(t, CategoryUnqualified, Categorize(39, thresholds))
	assert.Equal(t, CategoryUnqualified, Categorize(0, thresholds))
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.Weights.Timeline = 0.5
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.Thresholds.Qualified = 85
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.MaxConversationLength = 1
	assert.Error(t, bad.Validate())
}

func TestScore_FullDimensionProfile(t *testing.T) {
	data := ExtractedData{
		ProjectType:  ProjectTypeAIIntegration,
		Timeline:     TimelineImmediate,
		BudgetRange:  BudgetOver50K,
		CompanySize:  CompanyLarge,
		AIExperience: AIExperienceNone,
	}

	score, category := Score(data, DefaultConfig())

	// Dimensions contribute 25+30+25+13.5+4.5 = 98; the absent buying
	// readiness signal adds its default 2.
	assert.Equal(t, 100, score)
	assert.Equal(t, CategoryHighValue, category)
}

func TestScore_ClampedAcrossEnumCombinations(t *testing.T) {
	cfg := DefaultConfig()
	projectTypes := []ProjectType{"", ProjectTypeAIIntegration, ProjectTypeMarketingAutomation,
		ProjectTypeStrategy, ProjectTypeFullStack, ProjectTypeConsultation, ProjectTypeOther}
	timelines := []TimelineUrgency{"", TimelineImmediate, TimelineShortTerm, TimelineMediumTerm, TimelineLongTerm}
	budgets := []BudgetRange{"", BudgetOver50K, Budget15KTo50K, Budget5KTo15K, BudgetUnspecified, BudgetUnder5K}
	sizes := []CompanySize{"", CompanyLarge, CompanyStartup, CompanyMedium, CompanySmall, CompanyIndividual}
	experiences := []AIExperienceLevel{"", AIExperienceBasic, AIExperienceNone, AIExperienceIntermediate, AIExperienceAdvanced}
	confidences := []*float64{nil, floatPtr(-0.5), floatPtr(0), floatPtr(0.5), floatPtr(1), floatPtr(1.5)}

	for _, pt := range projectTypes {
		for _, tl := range timelines {
			for _, b := range budgets {
				for _, cs := range sizes {
					for _, exp := range experiences {
						for _, conf := range confidences {
							data := ExtractedData{
								ProjectType:       pt,
								Timeline:          tl,
								BudgetRange:       b,
								CompanySize:       cs,
								AIExperience:      exp,
								PainPoints:        []string{"a", "b", "c", "d"},
								DesiredOutcomes:   []string{"w", "x", "y", "z"},
								EngagementLevel:   EngagementVeryHigh,
								OpportunitySize:   OpportunityEnterprise,
								UrgencyIndicators: []string{"asap"},
								DecisionMakers:    []string{"ceo"},
								ReadyToBuy:        ReadinessReady,
								ConfidenceScore:   conf,
							}
							score, category := Score(data, cfg)
							if score < 0 || score > 100 {
								t.Fatalf("score %d out of range for %+v", score, data)
							}
							if category != Categorize(score, cfg.Thresholds) {
								t.Fatalf("category %s disagrees with score %d", category, score)
							}
						}
					}
				}
			}
		}
	}
}

func TestCategorize_MonotoneInScore(t *testing.T) {
	thresholds := DefaultConfig().Thresholds
	rank := map[LeadCategory]int{
		CategoryUnqualified: 0,
		CategoryNurture:     1,
		CategoryQualified:   2,
		CategoryHighValue:   3,
	}

	prev := rank[Categorize(0, thresholds)]
	for score := 1; score <= 100; score++ {
		cur := rank[Categorize(score, thresholds)]
		require.GreaterOrEqual(t, cur, prev, "category rank dropped at score %d", score)
		prev = cur
	}
}
