package leads

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jkazadi/portfolio-ai-platform/internal/qualify"
)

var exportHeader = []string{
	"ID", "Date", "Score", "Category", "Status",
	"Project Type", "Timeline", "Budget", "Company Size", "Industry",
	"Name", "Email", "Company",
}

// WriteCSV streams the leads as a CSV export for the admin dashboard.
func WriteCSV(w io.Writer, leads []*qualify.Lead) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(exportHeader); err != nil {
		return fmt.Errorf("leads: failed to write CSV header: %w", err)
	}

	for _, lead := range leads {
		row := []string{
			lead.ID,
			lead.Timestamp.UTC().Format(time.RFC3339),
			strconv.Itoa(lead.QualificationScore),
			string(lead.Category),
			string(lead.Status),
			string(lead.ExtractedData.ProjectType),
			string(lead.ExtractedData.Timeline),
			string(lead.ExtractedData.BudgetRange),
			string(lead.ExtractedData.CompanySize),
			lead.ExtractedData.Industry,
			lead.ExtractedData.ContactInfo.Name,
			lead.ExtractedData.ContactInfo.Email,
			lead.ExtractedData.ContactInfo.Company,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("leads: failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("leads: failed to flush CSV: %w", err)
	}
	return nil
}
