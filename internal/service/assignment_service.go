package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/horunap/timetable-api/internal/models"
	appErrors "github.com/horunap/timetable-api/pkg/errors"
)

type assignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.AssignmentDetail, int, error)
	ExistsForInstructor(ctx context.Context, scheduleID, instructorID string, day models.Weekday, block models.TimeBlock) (bool, error)
	ExistsForRoom(ctx context.Context, scheduleID, roomID string, day models.Weekday, block models.TimeBlock) (bool, error)
	ExistsForCourse(ctx context.Context, scheduleID, courseID string, day models.Weekday, block models.TimeBlock) (bool, error)
	UpdateSlot(ctx context.Context, assignmentID, roomID string, day models.Weekday, block models.TimeBlock) error
	SetActive(ctx context.Context, assignmentID string, active bool) error
	Delete(ctx context.Context, id string) error
}

type assignmentCourseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type assignmentRoomReader interface {
	FindByID(ctx context.Context, id string) (*models.Room, error)
}

type assignmentUserReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type assignmentScheduleReader interface {
	FindByID(ctx context.Context, id string) (*models.Schedule, error)
}

type statsInvalidator interface {
	InvalidateStats(ctx context.Context, scheduleID string)
}

// CreateAssignmentRequest books one slot by hand.
type CreateAssignmentRequest struct {
	ScheduleID   string `json:"schedule_id" validate:"required"`
	CourseID     string `json:"course_id" validate:"required"`
	InstructorID string `json:"instructor_id" validate:"required"`
	RoomID       string `json:"room_id" validate:"required"`
	Day          string `json:"day_of_week" validate:"required"`
	Block        string `json:"time_block" validate:"required"`
}

// UpdateAssignmentRequest moves an assignment to a different room or slot.
type UpdateAssignmentRequest struct {
	RoomID string `json:"room_id" validate:"required"`
	Day    string `json:"day_of_week" validate:"required"`
	Block  string `json:"time_block" validate:"required"`
}

// AssignmentService handles manual assignment edits. Every write runs the
// same slot checks the generator performs, so a hand-placed session obeys
// the rules an automatic one does.
type AssignmentService struct {
	repo      assignmentRepository
	courses   assignmentCourseReader
	rooms     assignmentRoomReader
	users     assignmentUserReader
	schedules assignmentScheduleReader
	stats     statsInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService creates a new assignment service.
func NewAssignmentService(
	repo assignmentRepository,
	courses assignmentCourseReader,
	rooms assignmentRoomReader,
	users assignmentUserReader,
	schedules assignmentScheduleReader,
	stats statsInvalidator,
	validate *validator.Validate,
	logger *zap.Logger,
) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		repo:      repo,
		courses:   courses,
		rooms:     rooms,
		users:     users,
		schedules: schedules,
		stats:     stats,
		validator: validate,
		logger:    logger,
	}
}

// List returns paginated assignment details.
func (s *AssignmentService) List(ctx context.Context, filter models.AssignmentFilter) ([]models.AssignmentDetail, *models.Pagination, error) {
	details, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return details, pagination, nil
}

// Get returns an assignment by identifier.
func (s *AssignmentService) Get(ctx context.Context, id string) (*models.Assignment, error) {
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	return assignment, nil
}

// Create books a slot by hand, subject to the full generator checks.
func (s *AssignmentService) Create(ctx context.Context, req CreateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	day, err := models.ParseWeekday(req.Day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid day")
	}
	block, err := models.ParseTimeBlock(req.Block)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time block")
	}

	if _, err := s.schedules.FindByID(ctx, req.ScheduleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}

	course, err := s.loadCourse(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	room, err := s.loadRoom(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureInstructor(ctx, req.InstructorID); err != nil {
		return nil, err
	}
	if err := s.checkSlot(ctx, req.ScheduleID, course, req.InstructorID, room, day, block, nil); err != nil {
		return nil, err
	}

	assignment := &models.Assignment{
		ID:           uuid.NewString(),
		ScheduleID:   req.ScheduleID,
		CourseID:     req.CourseID,
		InstructorID: req.InstructorID,
		RoomID:       req.RoomID,
		Day:          day,
		Block:        block,
		Active:       true,
	}
	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}
	s.invalidate(ctx, req.ScheduleID)
	return assignment, nil
}

// Update moves an assignment to another room and slot after re-running the
// slot checks against the new position.
func (s *AssignmentService) Update(ctx context.Context, id string, req UpdateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	day, err := models.ParseWeekday(req.Day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid day")
	}
	block, err := models.ParseTimeBlock(req.Block)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time block")
	}

	assignment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	course, err := s.loadCourse(ctx, assignment.CourseID)
	if err != nil {
		return nil, err
	}
	room, err := s.loadRoom(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	if err := s.checkSlot(ctx, assignment.ScheduleID, course, assignment.InstructorID, room, day, block, assignment); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateSlot(ctx, id, req.RoomID, day, block); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assignment")
	}
	assignment.RoomID = req.RoomID
	assignment.Day = day
	assignment.Block = block
	s.invalidate(ctx, assignment.ScheduleID)
	return assignment, nil
}

// SetActive toggles one assignment in or out of the live timetable.
func (s *AssignmentService) SetActive(ctx context.Context, id string, active bool) (*models.Assignment, error) {
	assignment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to toggle assignment")
	}
	assignment.Active = active
	s.invalidate(ctx, assignment.ScheduleID)
	return assignment, nil
}

// Delete removes an assignment.
func (s *AssignmentService) Delete(ctx context.Context, id string) error {
	assignment, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}
	s.invalidate(ctx, assignment.ScheduleID)
	return nil
}

// checkSlot mirrors the generator's write-time rules. current is the
// assignment being moved, nil on create; when the target slot equals its
// current slot the uniqueness invariants guarantee any occupant the probes
// see is the assignment itself, so those probes are skipped.
func (s *AssignmentService) checkSlot(ctx context.Context, scheduleID string, course *models.Course, instructorID string, room *models.Room, day models.Weekday, block models.TimeBlock, current *models.Assignment) error {
	if room.Capacity < course.EstimatedCapacity {
		return appErrors.Clone(appErrors.ErrConflict,
			"room capacity is below the course's estimated enrollment")
	}
	if !course.EquipmentSatisfiedBy(*room) {
		return appErrors.Clone(appErrors.ErrConflict,
			"room does not satisfy the course's equipment requirements")
	}

	sameSlot := current != nil && current.Day == day && current.Block == block
	if !sameSlot {
		busy, err := s.repo.ExistsForInstructor(ctx, scheduleID, instructorID, day, block)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check slot occupancy")
		}
		if busy {
			return appErrors.Clone(appErrors.ErrSlotOccupied, "instructor already has an assignment in this slot")
		}
		busy, err = s.repo.ExistsForCourse(ctx, scheduleID, course.ID, day, block)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check slot occupancy")
		}
		if busy {
			return appErrors.Clone(appErrors.ErrSlotOccupied, "course already has a session in this slot")
		}
	}

	if !(sameSlot && current.RoomID == room.ID) {
		busy, err := s.repo.ExistsForRoom(ctx, scheduleID, room.ID, day, block)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check slot occupancy")
		}
		if busy {
			return appErrors.Clone(appErrors.ErrSlotOccupied, "room already has an assignment in this slot")
		}
	}
	return nil
}

func (s *AssignmentService) loadCourse(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

func (s *AssignmentService) loadRoom(ctx context.Context, id string) (*models.Room, error) {
	room, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}
	return room, nil
}

func (s *AssignmentService) ensureInstructor(ctx context.Context, id string) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}
	if user.Role != models.RoleInstructor || !user.Active {
		return appErrors.Clone(appErrors.ErrValidation, "assignments require an active instructor account")
	}
	return nil
}

func (s *AssignmentService) invalidate(ctx context.Context, scheduleID string) {
	if s.stats != nil {
		s.stats.InvalidateStats(ctx, scheduleID)
	}
}
