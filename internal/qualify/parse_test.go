package qualify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseProjectType(t *testing.T) {
	cases := map[string]ProjectType{
		"AI_INTEGRATION":       ProjectTypeAIIntegration,
		"AI Integration":       ProjectTypeAIIntegration,
		"marketing_automation": ProjectTypeMarketingAutomation,
		"Full Stack Development": ProjectTypeFullStack,
		"  strategy  ":         ProjectTypeStrategy,
		"Strategy & Planning":  ProjectTypeStrategy,
		"other":                ProjectTypeOther,
	}
	for in, want := range cases {
		got, ok := ParseProjectType(in)
		assert.True(t, ok, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)
	}

	_, ok := ParseProjectType("mobile game")
	assert.False(t, ok)
}

func TestParseTimeline(t *testing.T) {
	got, ok := ParseTimeline("ONE_TO_THREE_MONTHS")
	assert.True(t, ok)
	assert.Equal(t, TimelineShortTerm, got)

	got, ok = ParseTimeline("1-3 months")
	assert.True(t, ok)
	assert.Equal(t, TimelineShortTerm, got)

	got, ok = ParseTimeline("future_planning")
	assert.True(t, ok)
	assert.Equal(t, TimelineLongTerm, got)

	_, ok = ParseTimeline("someday")
	assert.False(t, ok)
}

func TestParseBudget(t *testing.T) {
	got, ok := ParseBudget("OVER_50K")
	assert.True(t, ok)
	assert.Equal(t, BudgetOver50K, got)

	got, ok = ParseBudget("$15,000 - $50,000")
	assert.True(t, ok)
	assert.Equal(t, Budget15KTo50K, got)

	got, ok = ParseBudget("to be discussed")
	assert.True(t, ok)
	assert.Equal(t, BudgetUnspecified, got)

	_, ok = ParseBudget("one million dollars")
	assert.False(t, ok)
}

func TestParseCompanySize(t *testing.T) {
	got, ok := ParseCompanySize("STARTUP")
	assert.True(t, ok)
	assert.Equal(t, CompanyStartup, got)

	got, ok = ParseCompanySize("Large Enterprise (200+ employees)")
	assert.True(t, ok)
	assert.Equal(t, CompanyLarge, got)

	_, ok = ParseCompanySize("huge")
	assert.False(t, ok)
}

func TestParseAIExperience(t *testing.T) {
	got, ok := ParseAIExperience("none")
	assert.True(t, ok)
	assert.Equal(t, AIExperienceNone, got)

	got, ok = ParseAIExperience("Some implementation experience")
	assert.True(t, ok)
	assert.Equal(t, AIExperienceIntermediate, got)

	_, ok = ParseAIExperience("guru")
	assert.False(t, ok)
}

func TestParseSoftSignals(t *testing.T) {
	engagement, ok := ParseEngagement("VERY_HIGH")
	assert.True(t, ok)
	assert.Equal(t, EngagementVeryHigh, engagement)

	readiness, ok := ParseReadiness("ready to decide")
	assert.True(t, ok)
	assert.Equal(t, ReadinessReady, readiness)

	opportunity, ok := ParseOpportunitySize("Enterprise")
	assert.True(t, ok)
	assert.Equal(t, OpportunityEnterprise, opportunity)

	_, ok = ParseEngagement("extreme")
	assert.False(t, ok)
}
