package leads

import (
	"context"
	"database/sql"
)

// Stats summarizes stored leads for the admin dashboard.
type Stats struct {
	Total        int            `json:"total"`
	AverageScore float64        `json:"averageScore"`
	ByCategory   map[string]int `json:"byCategory"`
	ByStatus     map[string]int `json:"byStatus"`
}

// StatsReporter aggregates lead counts straight from the database.
type StatsReporter struct {
	db *sql.DB
}

// NewStatsReporter wraps a database/sql handle for reporting queries.
func NewStatsReporter(db *sql.DB) *StatsReporter {
	if db == nil {
		panic("leads: sql db required")
	}
	return &StatsReporter{db: db}
}

func (r *StatsReporter) Report(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		ByCategory: map[string]int{},
		ByStatus:   map[string]int{},
	}

	var avg sql.NullFloat64
	if err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), AVG(qualification_score) FROM leads`).Scan(&stats.Total, &avg); err != nil {
		return nil, err
	}
	if avg.Valid {
		stats.AverageScore = avg.Float64
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT category, COUNT(*) FROM leads GROUP BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		stats.ByCategory[category] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	statusRows, err := r.db.QueryContext(ctx, `
		SELECT status, COUNT(*) FROM leads GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer statusRows.Close()
	for statusRows.Next() {
		var status string
		var count int
		if err := statusRows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.ByStatus[status] = count
	}
	return stats, statusRows.Err()
}
