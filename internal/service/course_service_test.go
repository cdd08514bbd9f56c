package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/horunap/timetable-api/internal/models"
	appErrors "github.com/horunap/timetable-api/pkg/errors"
)

func newCourseFixture(existing ...models.Course) (*CourseService, *courseCrudStub) {
	repo := &courseCrudStub{items: existing}
	svc := NewCourseService(repo, nil, zap.NewNop())
	return svc, repo
}

func validCourseRequest() CreateCourseRequest {
	return CreateCourseRequest{
		Code:              "mat101",
		Name:              "Calculus I",
		Credits:           4,
		Type:              "MANDATORY",
		SessionsPerWeek:   2,
		SessionDuration:   2,
		EstimatedCapacity: 40,
	}
}

func TestCourseServiceCreateUppercasesCode(t *testing.T) {
	svc, repo := newCourseFixture()

	course, err := svc.Create(context.Background(), validCourseRequest())

	require.NoError(t, err)
	assert.Equal(t, "MAT101", course.Code)
	assert.NotEmpty(t, course.ID)
	assert.True(t, course.Active)
	require.Len(t, repo.items, 1)
}

func TestCourseServiceCreateDerivesLabFromEquipment(t *testing.T) {
	svc, _ := newCourseFixture()
	req := validCourseRequest()
	req.RequiredEquipment = "Chemistry laboratory benches"

	course, err := svc.Create(context.Background(), req)

	require.NoError(t, err)
	assert.True(t, course.RequiresLab)
}

func TestCourseServiceCreateDuplicateCode(t *testing.T) {
	svc, repo := newCourseFixture(models.Course{ID: "course-1", Code: "MAT101"})

	_, err := svc.Create(context.Background(), validCourseRequest())

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	require.Len(t, repo.items, 1)
}

func TestCourseServiceCreateInvalidType(t *testing.T) {
	svc, _ := newCourseFixture()
	req := validCourseRequest()
	req.Type = "SEMINAR"

	_, err := svc.Create(context.Background(), req)

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceUpdateKeepsOwnCode(t *testing.T) {
	svc, _ := newCourseFixture(models.Course{ID: "course-1", Code: "MAT101", Active: true})
	req := UpdateCourseRequest{
		Code:              "MAT101",
		Name:              "Calculus I (revised)",
		Credits:           5,
		Type:              "MANDATORY",
		SessionsPerWeek:   3,
		SessionDuration:   2,
		EstimatedCapacity: 45,
	}

	course, err := svc.Update(context.Background(), "course-1", req)

	require.NoError(t, err)
	assert.Equal(t, "Calculus I (revised)", course.Name)
	assert.Equal(t, 3, course.SessionsPerWeek)
}

func TestCourseServiceDeleteNotFound(t *testing.T) {
	svc, _ := newCourseFixture()

	err := svc.Delete(context.Background(), "missing")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

// --- Fixtures ---

type courseCrudStub struct {
	items []models.Course
}

func (s *courseCrudStub) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	return s.items, len(s.items), nil
}

func (s *courseCrudStub) FindByID(ctx context.Context, id string) (*models.Course, error) {
	for i := range s.items {
		if s.items[i].ID == id {
			course := s.items[i]
			return &course, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *courseCrudStub) ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error) {
	for _, c := range s.items {
		if c.Code == code && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *courseCrudStub) Create(ctx context.Context, course *models.Course) error {
	s.items = append(s.items, *course)
	return nil
}

func (s *courseCrudStub) Update(ctx context.Context, course *models.Course) error {
	for i := range s.items {
		if s.items[i].ID == course.ID {
			s.items[i] = *course
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *courseCrudStub) Delete(ctx context.Context, id string) error {
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}
