package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nitap-dev/mentor-portal-api/internal/models"
	"github.com/nitap-dev/mentor-portal-api/internal/service"
	appErrors "github.com/nitap-dev/mentor-portal-api/pkg/errors"
	"github.com/nitap-dev/mentor-portal-api/pkg/response"
)

// FacultyHandler wires HTTP endpoints to the faculty service.
type FacultyHandler struct {
	service *service.FacultyService
}

// NewFacultyHandler creates a new handler.
func NewFacultyHandler(svc *service.FacultyService) *FacultyHandler {
	return &FacultyHandler{service: svc}
}

// List godoc
// @Summary List faculty
// @Tags Faculty
// @Produce json
// @Param search query string false "Name or employee id search"
// @Param department query string false "Department filter (admin only)"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /faculty [get]
func (h *FacultyHandler) List(c *gin.Context) {
	filter := models.FacultyFilter{
		Search:     c.Query("search"),
		Department: c.Query("department"),
		Page:       queryInt(c, "page", 1),
		PageSize:   queryInt(c, "page_size", 20),
		SortBy:     c.Query("sort_by"),
		SortOrder:  c.Query("sort_order"),
	}

	faculty, pagination, err := h.service.List(c.Request.Context(), currentScope(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, faculty, pagination)
}

// Get godoc
// @Summary Get faculty member
// @Tags Faculty
// @Produce json
// @Param id path string true "Faculty ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /faculty/{id} [get]
func (h *FacultyHandler) Get(c *gin.Context) {
	faculty, err := h.service.Get(c.Request.Context(), currentScope(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, faculty, nil)
}

// Mentees godoc
// @Summary List mentees
// @Description List the faculty member's currently assigned mentees
// @Tags Faculty
// @Produce json
// @Param id path string true "Faculty ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /faculty/{id}/mentees [get]
func (h *FacultyHandler) Mentees(c *gin.Context) {
	mentees, err := h.service.Mentees(c.Request.Context(), currentScope(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mentees, nil)
}

// Create godoc
// @Summary Onboard faculty
// @Tags Faculty
// @Accept json
// @Produce json
// @Param payload body models.CreateFacultyRequest true "Faculty payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /faculty [post]
func (h *FacultyHandler) Create(c *gin.Context) {
	var req models.CreateFacultyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid faculty payload"))
		return
	}

	faculty, err := h.service.Create(c.Request.Context(), currentScope(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, faculty)
}

// Update godoc
// @Summary Update faculty
// @Tags Faculty
// @Accept json
// @Produce json
// @Param id path string true "Faculty ID"
// @Param payload body models.UpdateFacultyRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /faculty/{id} [put]
func (h *FacultyHandler) Update(c *gin.Context) {
	var req models.UpdateFacultyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid faculty payload"))
		return
	}

	faculty, err := h.service.Update(c.Request.Context(), currentScope(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, faculty, nil)
}

// AssignMentor godoc
// @Summary Assign mentor
// @Description Replace the student's active mentorship
// @Tags Faculty
// @Accept json
// @Produce json
// @Param payload body models.AssignMentorRequest true "Assignment payload"
// @Success 204 "No Content"
// @Failure 403 {object} response.Envelope
// @Router /mentorships [post]
func (h *FacultyHandler) AssignMentor(c *gin.Context) {
	var req models.AssignMentorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}

	if err := h.service.AssignMentor(c.Request.Context(), currentScope(c), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AppointHOD godoc
// @Summary Appoint HOD
// @Description Open a new HOD appointment, closing the department's current one
// @Tags Faculty
// @Accept json
// @Produce json
// @Param payload body models.AppointHODRequest true "Appointment payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /hod/appointments [post]
func (h *FacultyHandler) AppointHOD(c *gin.Context) {
	var req models.AppointHODRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid appointment payload"))
		return
	}

	appointment, err := h.service.AppointHOD(c.Request.Context(), currentScope(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, appointment)
}

// CurrentHOD godoc
// @Summary Current HOD appointment
// @Tags Faculty
// @Produce json
// @Param department path string true "Department"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /hod/appointments/{department} [get]
func (h *FacultyHandler) CurrentHOD(c *gin.Context) {
	appointment, err := h.service.CurrentHOD(c.Request.Context(), currentScope(c), c.Param("department"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appointment, nil)
}
