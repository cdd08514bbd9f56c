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

type roomRepository interface {
	List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error)
	FindByID(ctx context.Context, id string) (*models.Room, error)
	ListFreeAt(ctx context.Context, scheduleID string, day models.Weekday, block models.TimeBlock) ([]models.Room, error)
	Create(ctx context.Context, room *models.Room) error
	Update(ctx context.Context, room *models.Room) error
	Delete(ctx context.Context, id string) error
}

// CreateRoomRequest captures fields for creating rooms.
type CreateRoomRequest struct {
	Name         string `json:"name" validate:"required"`
	Capacity     int    `json:"capacity" validate:"required,min=1"`
	Category     string `json:"category" validate:"required,oneof=NORMAL LAB"`
	Building     string `json:"building"`
	Floor        string `json:"floor"`
	HasProjector bool   `json:"has_projector"`
	HasComputers bool   `json:"has_computers"`
	Active       *bool  `json:"active"`
}

// UpdateRoomRequest modifies room fields.
type UpdateRoomRequest struct {
	Name         string `json:"name" validate:"required"`
	Capacity     int    `json:"capacity" validate:"required,min=1"`
	Category     string `json:"category" validate:"required,oneof=NORMAL LAB"`
	Building     string `json:"building"`
	Floor        string `json:"floor"`
	HasProjector bool   `json:"has_projector"`
	HasComputers bool   `json:"has_computers"`
	Active       *bool  `json:"active"`
}

// RoomService handles room catalog workflows.
type RoomService struct {
	repo      roomRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRoomService creates a new room service.
func NewRoomService(repo roomRepository, validate *validator.Validate, logger *zap.Logger) *RoomService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomService{repo: repo, validator: validate, logger: logger}
}

// List returns paginated rooms.
func (s *RoomService) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, *models.Pagination, error) {
	rooms, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
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
	return rooms, pagination, nil
}

// Get returns a room by identifier.
func (s *RoomService) Get(ctx context.Context, id string) (*models.Room, error) {
	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}
	return room, nil
}

// ListAvailable returns active rooms free at a slot within a schedule.
func (s *RoomService) ListAvailable(ctx context.Context, scheduleID string, day models.Weekday, block models.TimeBlock) ([]models.Room, error) {
	if scheduleID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "schedule_id is required")
	}
	if _, err := models.ParseWeekday(string(day)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid day")
	}
	if _, err := models.ParseTimeBlock(string(block)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time block")
	}
	rooms, err := s.repo.ListFreeAt(ctx, scheduleID, day, block)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list available rooms")
	}
	return rooms, nil
}

// Create adds a new room.
func (s *RoomService) Create(ctx context.Context, req CreateRoomRequest) (*models.Room, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room payload")
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	room := &models.Room{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Capacity:     req.Capacity,
		Category:     models.RoomCategory(req.Category),
		Building:     req.Building,
		Floor:        req.Floor,
		HasProjector: req.HasProjector,
		HasComputers: req.HasComputers,
		Active:       active,
	}

	if err := s.repo.Create(ctx, room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create room")
	}
	return room, nil
}

// Update modifies an existing room.
func (s *RoomService) Update(ctx context.Context, id string, req UpdateRoomRequest) (*models.Room, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room payload")
	}

	room, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	room.Name = req.Name
	room.Capacity = req.Capacity
	room.Category = models.RoomCategory(req.Category)
	room.Building = req.Building
	room.Floor = req.Floor
	room.HasProjector = req.HasProjector
	room.HasComputers = req.HasComputers
	if req.Active != nil {
		room.Active = *req.Active
	}

	if err := s.repo.Update(ctx, room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update room")
	}
	return room, nil
}

// Delete removes a room.
func (s *RoomService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete room")
	}
	return nil
}
