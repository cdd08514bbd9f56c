package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/horunap/timetable-api/internal/models"
	"github.com/horunap/timetable-api/internal/service"
	"github.com/horunap/timetable-api/pkg/response"
)

// ConflictHandler handles conflict endpoints.
type ConflictHandler struct {
	service *service.ConflictService
}

// NewConflictHandler constructs a conflict handler.
func NewConflictHandler(svc *service.ConflictService) *ConflictHandler {
	return &ConflictHandler{service: svc}
}

// List godoc
// @Summary List conflicts
// @Tags Conflicts
// @Produce json
// @Param schedule_id query string false "Schedule ID"
// @Param kind query string false "Conflict kind"
// @Param resolved query bool false "Resolved flag"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /conflicts [get]
func (h *ConflictHandler) List(c *gin.Context) {
	var filter models.ConflictFilter
	filter.ScheduleID = c.Query("schedule_id")
	filter.Kind = models.ConflictKind(c.Query("kind"))
	if raw := c.Query("resolved"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			filter.Resolved = &v
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}

	conflicts, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, conflicts, pagination)
}

// Get godoc
// @Summary Get conflict by id
// @Tags Conflicts
// @Produce json
// @Param id path string true "Conflict ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /conflicts/{id} [get]
func (h *ConflictHandler) Get(c *gin.Context) {
	conflict, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, conflict, nil)
}

// ResolveManual godoc
// @Summary Mark a conflict resolved by hand
// @Tags Conflicts
// @Produce json
// @Param id path string true "Conflict ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /conflicts/{id}/resolve-manual [post]
func (h *ConflictHandler) ResolveManual(c *gin.Context) {
	conflict, err := h.service.ResolveManual(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, conflict, nil)
}
