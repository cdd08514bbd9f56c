package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/horunap/timetable-api/internal/models"
	appErrors "github.com/horunap/timetable-api/pkg/errors"
)

func newConflictFixture(existing ...models.Conflict) (*ConflictService, *conflictAdminStub, *statsInvalidatorStub) {
	repo := &conflictAdminStub{items: existing}
	stats := &statsInvalidatorStub{}
	svc := NewConflictService(repo, stats, zap.NewNop())
	return svc, repo, stats
}

func openConflict(id string) models.Conflict {
	return models.Conflict{
		ID:           id,
		ScheduleID:   "sched-1",
		AssignmentID: "a-1",
		Kind:         models.ConflictInstructor,
	}
}

func TestConflictServiceResolveManual(t *testing.T) {
	svc, repo, stats := newConflictFixture(openConflict("c-1"))

	conflict, err := svc.ResolveManual(context.Background(), "c-1")

	require.NoError(t, err)
	assert.True(t, conflict.Resolved)
	require.NotNil(t, conflict.ResolvedAt)
	assert.Equal(t, []string{"c-1"}, repo.resolvedIDs)
	assert.Equal(t, []string{"sched-1"}, stats.invalidated)
}

func TestConflictServiceResolveManualAlreadyResolved(t *testing.T) {
	resolved := openConflict("c-1")
	resolved.Resolved = true
	svc, repo, stats := newConflictFixture(resolved)

	_, err := svc.ResolveManual(context.Background(), "c-1")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.resolvedIDs)
	assert.Empty(t, stats.invalidated)
}

func TestConflictServiceResolveManualNotFound(t *testing.T) {
	svc, _, _ := newConflictFixture()

	_, err := svc.ResolveManual(context.Background(), "missing")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestConflictServiceListPaginates(t *testing.T) {
	svc, _, _ := newConflictFixture(openConflict("c-1"), openConflict("c-2"))

	conflicts, pagination, err := svc.List(context.Background(), models.ConflictFilter{})

	require.NoError(t, err)
	assert.Len(t, conflicts, 2)
	require.NotNil(t, pagination)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 2, pagination.TotalCount)
}

// --- Fixtures ---

type conflictAdminStub struct {
	items       []models.Conflict
	resolvedIDs []string
}

func (s *conflictAdminStub) FindByID(ctx context.Context, id string) (*models.Conflict, error) {
	for i := range s.items {
		if s.items[i].ID == id {
			conflict := s.items[i]
			return &conflict, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *conflictAdminStub) List(ctx context.Context, filter models.ConflictFilter) ([]models.Conflict, int, error) {
	return s.items, len(s.items), nil
}

func (s *conflictAdminStub) MarkResolved(ctx context.Context, id string, resolvedAt time.Time) error {
	s.resolvedIDs = append(s.resolvedIDs, id)
	return nil
}
