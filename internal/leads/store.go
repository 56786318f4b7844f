package leads

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jkazadi/portfolio-ai-platform/internal/qualify"
)

// Sort orders for List.
const (
	SortByDate  = "date"
	SortByScore = "score"
)

// Filter narrows and orders List results. Empty fields match everything.
type Filter struct {
	Category qualify.LeadCategory
	Status   qualify.LeadStatus
	SortBy   string // "date" (default) or "score", both descending
}

// Update carries the mutable lead fields. Nil fields are left untouched.
type Update struct {
	Status       *qualify.LeadStatus
	Notes        *string
	NextFollowUp *time.Time
}

// Store persists qualified leads. Update and Remove on an unknown ID
// are no-ops.
type Store interface {
	Append(ctx context.Context, lead *qualify.Lead) error
	Get(ctx context.Context, id string) (*qualify.Lead, error)
	List(ctx context.Context, filter Filter) ([]*qualify.Lead, error)
	Update(ctx context.Context, id string, update Update) error
	Remove(ctx context.Context, id string) error
}

// InMemoryStore keeps leads in a map, for development and tests.
type InMemoryStore struct {
	mu    sync.RWMutex
	leads map[string]*qualify.Lead
}

var _ Store = (*InMemoryStore)(nil)
var _ qualify.LeadSink = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		leads: make(map[string]*qualify.Lead),
	}
}

// Append stores a finalized lead.
func (s *InMemoryStore) Append(_ context.Context, lead *qualify.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *lead
	s.leads[lead.ID] = &copied
	return nil
}

// Get returns the lead with the given ID.
func (s *InMemoryStore) Get(_ context.Context, id string) (*qualify.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lead, ok := s.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	copied := *lead
	return &copied, nil
}

// List returns leads matching the filter, sorted descending.
func (s *InMemoryStore) List(_ context.Context, filter Filter) ([]*qualify.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]*qualify.Lead, 0, len(s.leads))
	for _, lead := range s.leads {
		if filter.Category != "" && lead.Category != filter.Category {
			continue
		}
		if filter.Status != "" && lead.Status != filter.Status {
			continue
		}
		copied := *lead
		results = append(results, &copied)
	}

	sortLeads(results, filter.SortBy)
	return results, nil
}

// Update patches a lead in place. Unknown IDs are ignored.
func (s *InMemoryStore) Update(_ context.Context, id string, update Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.leads[id]
	if !ok {
		return nil
	}
	if update.Status != nil {
		lead.Status = *update.Status
	}
	if update.Notes != nil {
		lead.Notes = *update.Notes
	}
	if update.NextFollowUp != nil {
		lead.NextFollowUp = update.NextFollowUp
	}
	return nil
}

// Remove deletes a lead. Unknown IDs are ignored.
func (s *InMemoryStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.leads, id)
	return nil
}

func sortLeads(leads []*qualify.Lead, sortBy string) {
	switch strings.ToLower(sortBy) {
	case SortByScore:
		sort.SliceStable(leads, func(i, j int) bool {
			if leads[i].QualificationScore != leads[j].QualificationScore {
				return leads[i].QualificationScore > leads[j].QualificationScore
			}
			return leads[i].Timestamp.After(leads[j].Timestamp)
		})
	default:
		sort.SliceStable(leads, func(i, j int) bool {
			return leads[i].Timestamp.After(leads[j].Timestamp)
		})
	}
}
