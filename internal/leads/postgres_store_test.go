package leads

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkazadi/portfolio-ai-platform/internal/qualify"
)

func newMockedStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return newPostgresStoreWithExec(mock), mock
}

func TestPostgresStore_Append(t *testing.T) {
	store, mock := newMockedStore(t)
	lead := makeLead("lead-1", 85, qualify.CategoryHighValue, time.Now().UTC())

	mock.ExpectExec("INSERT INTO leads").
		WithArgs(
			"lead-1", lead.Timestamp, "vis-lead-1",
			pgxmock.AnyArg(), pgxmock.AnyArg(),
			85, qualify.CategoryHighValue, qualify.StatusNew, "", lead.NextFollowUp,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.Append(context.Background(), lead))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Get(t *testing.T) {
	store, mock := newMockedStore(t)
	ts := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	history, err := json.Marshal([]qualify.Message{{ID: "m1", Role: qualify.RoleAssistant, Text: "hi"}})
	require.NoError(t, err)
	extracted, err := json.Marshal(qualify.ExtractedData{ProjectType: qualify.ProjectTypeAIIntegration})
	require.NoError(t, err)

	rows := pgxmock.NewRows([]string{
		"id", "created_at", "visitor_id", "conversation_history", "extracted_data",
		"qualification_score", "category", "status", "notes", "next_follow_up",
	}).AddRow(
		"lead-1", ts, "vis-1", history, extracted,
		85, qualify.CategoryHighValue, qualify.StatusNew, "note", (*time.Time)(nil),
	)
	mock.ExpectQuery("SELECT id, created_at").WithArgs("lead-1").WillReturnRows(rows)

	lead, err := store.Get(context.Background(), "lead-1")

	require.NoError(t, err)
	assert.Equal(t, "lead-1", lead.ID)
	assert.True(t, lead.Timestamp.Equal(ts))
	assert.Equal(t, qualify.CategoryHighValue, lead.Category)
	require.Len(t, lead.ConversationHistory, 1)
	assert.Equal(t, qualify.ProjectTypeAIIntegration, lead.ExtractedData.ProjectType)
	assert.Nil(t, lead.NextFollowUp)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetNotFound(t *testing.T) {
	store, mock := newMockedStore(t)
	mock.ExpectQuery("SELECT id, created_at").WithArgs("missing").WillReturnError(pgx.ErrNoRows)

	_, err := store.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrLeadNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListWithFilter(t *testing.T) {
	store, mock := newMockedStore(t)

	rows := pgxmock.NewRows([]string{
		"id", "created_at", "visitor_id", "conversation_history", "extracted_data",
		"qualification_score", "category", "status", "notes", "next_follow_up",
	}).AddRow(
		"lead-1", time.Now().UTC(), "vis-1", []byte("[]"), []byte("{}"),
		85, qualify.CategoryHighValue, qualify.StatusNew, "", (*time.Time)(nil),
	)
	mock.ExpectQuery("SELECT id, created_at").
		WithArgs(qualify.CategoryHighValue, qualify.StatusNew).
		WillReturnRows(rows)

	results, err := store.List(context.Background(), Filter{
		Category: qualify.CategoryHighValue,
		Status:   qualify.StatusNew,
		SortBy:   SortByScore,
	})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "lead-1", results[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Update(t *testing.T) {
	store, mock := newMockedStore(t)
	status := qualify.StatusResponded

	mock.ExpectExec("UPDATE leads SET").
		WithArgs(status, "lead-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, store.Update(context.Background(), "lead-1", Update{Status: &status}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateNothingToDo(t *testing.T) {
	store, mock := newMockedStore(t)

	// No SET clauses means no query at all.
	require.NoError(t, store.Update(context.Background(), "lead-1", Update{}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Remove(t *testing.T) {
	store, mock := newMockedStore(t)

	mock.ExpectExec("DELETE FROM leads").
		WithArgs("lead-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, store.Remove(context.Background(), "lead-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
