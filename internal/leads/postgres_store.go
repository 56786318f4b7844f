package leads

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jkazadi/portfolio-ai-platform/internal/qualify"
)

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists leads in the relational database. The
// conversation transcript and extracted profile are stored as jsonb.
type PostgresStore struct {
	pool pgxQuerier
}

var _ Store = (*PostgresStore)(nil)
var _ qualify.LeadSink = (*PostgresStore)(nil)

// NewPostgresStore initializes a store backed by pgxpool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresStore{pool: pool}
}

func newPostgresStoreWithExec(exec pgxQuerier) *PostgresStore {
	if exec == nil {
		panic("leads: exec required")
	}
	return &PostgresStore{pool: exec}
}

// Append inserts a finalized lead.
func (s *PostgresStore) Append(ctx context.Context, lead *qualify.Lead) error {
	history, err := json.Marshal(lead.ConversationHistory)
	if err != nil {
		return fmt.Errorf("leads: failed to encode history: %w", err)
	}
	extracted, err := json.Marshal(lead.ExtractedData)
	if err != nil {
		return fmt.Errorf("leads: failed to encode extracted data: %w", err)
	}

	query := `
		INSERT INTO leads (id, created_at, visitor_id, conversation_history, extracted_data,
			qualification_score, category, status, notes, next_follow_up)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	if _, err := s.pool.Exec(ctx, query,
		lead.ID,
		lead.Timestamp,
		lead.VisitorID,
		history,
		extracted,
		lead.QualificationScore,
		lead.Category,
		lead.Status,
		lead.Notes,
		lead.NextFollowUp,
	); err != nil {
		return fmt.Errorf("leads: insert failed: %w", err)
	}
	return nil
}

// Get fetches a lead by ID.
func (s *PostgresStore) Get(ctx context.Context, id string) (*qualify.Lead, error) {
	query := `
		SELECT id, created_at, visitor_id, conversation_history, extracted_data,
			qualification_score, category, status, notes, next_follow_up
		FROM leads
		WHERE id = $1
	`
	lead, err := scanLead(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	return lead, nil
}

// List returns leads matching the filter, sorted descending.
func (s *PostgresStore) List(ctx context.Context, filter Filter) ([]*qualify.Lead, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `
		SELECT id, created_at, visitor_id, conversation_history, extracted_data,
			qualification_score, category, status, notes, next_follow_up
		FROM leads
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	if strings.EqualFold(filter.SortBy, SortByScore) {
		query += " ORDER BY qualification_score DESC, created_at DESC"
	} else {
		query += " ORDER BY created_at DESC"
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	defer rows.Close()

	var results []*qualify.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("leads: scan failed: %w", err)
		}
		results = append(results, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	return results, nil
}

// Update patches the mutable columns. Unknown IDs are ignored.
func (s *PostgresStore) Update(ctx context.Context, id string, update Update) error {
	var (
		sets []string
		args []any
	)
	if update.Status != nil {
		args = append(args, *update.Status)
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
	}
	if update.Notes != nil {
		args = append(args, *update.Notes)
		sets = append(sets, fmt.Sprintf("notes = $%d", len(args)))
	}
	if update.NextFollowUp != nil {
		args = append(args, *update.NextFollowUp)
		sets = append(sets, fmt.Sprintf("next_follow_up = $%d", len(args)))
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE leads SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("leads: update failed: %w", err)
	}
	return nil
}

// Remove deletes a lead. Unknown IDs are ignored.
func (s *PostgresStore) Remove(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, "DELETE FROM leads WHERE id = $1", id); err != nil {
		return fmt.Errorf("leads: delete failed: %w", err)
	}
	return nil
}

func scanLead(row pgx.Row) (*qualify.Lead, error) {
	var (
		lead      qualify.Lead
		history   []byte
		extracted []byte
		createdAt time.Time
	)
	if err := row.Scan(
		&lead.ID,
		&createdAt,
		&lead.VisitorID,
		&history,
		&extracted,
		&lead.QualificationScore,
		&lead.Category,
		&lead.Status,
		&lead.Notes,
		&lead.NextFollowUp,
	); err != nil {
		return nil, err
	}
	lead.Timestamp = createdAt

	if len(history) > 0 {
		if err := json.Unmarshal(history, &lead.ConversationHistory); err != nil {
			return nil, fmt.Errorf("decode history: %w", err)
		}
	}
	if len(extracted) > 0 {
		if err := json.Unmarshal(extracted, &lead.ExtractedData); err != nil {
			return nil, fmt.Errorf("decode extracted data: %w", err)
		}
	}
	return &lead, nil
}
