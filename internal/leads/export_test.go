package leads

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkazadi/portfolio-ai-platform/internal/qualify"
)

func TestWriteCSV(t *testing.T) {
	ts := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
	lead := &qualify.Lead{
		ID:                 "lead-1",
		Timestamp:          ts,
		QualificationScore: 87,
		Category:           qualify.CategoryHighValue,
		Status:             qualify.StatusNew,
		ExtractedData: qualify.ExtractedData{
			ProjectType: qualify.ProjectTypeAIIntegration,
			Timeline:    qualify.TimelineImmediate,
			BudgetRange: qualify.BudgetOver50K,
			CompanySize: qualify.CompanyStartup,
			Industry:    "fintech",
			ContactInfo: qualify.ContactInfo{
				Name:    "Dana",
				Email:   "dana@example.com",
				Company: "Acme",
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []*qualify.Lead{lead}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, []string{
		"ID", "Date", "Score", "Category", "Status",
		"Project Type", "Timeline", "Budget", "Company Size", "Industry",
		"Name", "Email", "Company",
	}, records[0])

	assert.Equal(t, []string{
		"lead-1", "2026-03-10T14:30:00Z", "87", "high-value", "new",
		"AI Integration", "immediate", "Over $50,000", "Startup (1-10 employees)", "fintech",
		"Dana", "dana@example.com", "Acme",
	}, records[1])
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1, "header only")
}
