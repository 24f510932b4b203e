package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nitap-dev/mentor-portal-api/internal/models"
	"github.com/nitap-dev/mentor-portal-api/internal/service"
	appErrors "github.com/nitap-dev/mentor-portal-api/pkg/errors"
	"github.com/nitap-dev/mentor-portal-api/pkg/response"
)

// MeetingHandler wires HTTP endpoints to the meeting service. Separate
// faculty and HOD creation routes decide which capability the meeting is
// created under.
type MeetingHandler struct {
	service *service.MeetingService
}

// NewMeetingHandler creates a new handler.
func NewMeetingHandler(svc *service.MeetingService) *MeetingHandler {
	return &MeetingHandler{service: svc}
}

// CreateAsFaculty godoc
// @Summary Schedule mentor meeting
// @Description Schedule a meeting with students from the caller's mentee list
// @Tags Meetings
// @Accept json
// @Produce json
// @Param payload body models.CreateMeetingRequest true "Meeting payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /meetings [post]
func (h *MeetingHandler) CreateAsFaculty(c *gin.Context) {
	h.create(c, models.RoleFaculty)
}

// CreateAsHOD godoc
// @Summary Schedule department meeting
// @Description Schedule a meeting with any students of the caller's department
// @Tags Meetings
// @Accept json
// @Produce json
// @Param payload body models.CreateMeetingRequest true "Meeting payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /hod/meetings [post]
func (h *MeetingHandler) CreateAsHOD(c *gin.Context) {
	h.create(c, models.RoleHOD)
}

func (h *MeetingHandler) create(c *gin.Context, as models.Role) {
	var req models.CreateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid meeting payload"))
		return
	}

	meeting, err := h.service.Create(c.Request.Context(), currentScope(c), as, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, meeting)
}

// List godoc
// @Summary List meetings
// @Description List meetings visible to the caller, newest first
// @Tags Meetings
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /meetings [get]
func (h *MeetingHandler) List(c *gin.Context) {
	meetings, pagination, err := h.service.List(c.Request.Context(), currentScope(c), queryInt(c, "page", 1), queryInt(c, "page_size", 20))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, meetings, pagination)
}

// Get godoc
// @Summary Get meeting
// @Tags Meetings
// @Produce json
// @Param id path string true "Meeting ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /meetings/{id} [get]
func (h *MeetingHandler) Get(c *gin.Context) {
	meeting, err := h.service.Get(c.Request.Context(), currentScope(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, meeting, nil)
}

// Cancel godoc
// @Summary Cancel meeting
// @Description Move a scheduled meeting to CANCELLED; creator only
// @Tags Meetings
// @Accept json
// @Produce json
// @Param id path string true "Meeting ID"
// @Param payload body models.CancelMeetingRequest true "Cancellation payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /meetings/{id}/cancel [post]
func (h *MeetingHandler) Cancel(c *gin.Context) {
	var req models.CancelMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid cancellation payload"))
		return
	}

	meeting, err := h.service.Cancel(c.Request.Context(), currentScope(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, meeting, nil)
}

// Complete godoc
// @Summary Complete meeting
// @Description Move a scheduled meeting to COMPLETED; creator only
// @Tags Meetings
// @Produce json
// @Param id path string true "Meeting ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /meetings/{id}/complete [post]
func (h *MeetingHandler) Complete(c *gin.Context) {
	meeting, err := h.service.Complete(c.Request.Context(), currentScope(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, meeting, nil)
}

// Review godoc
// @Summary Review meeting
// @Description Attach the creator's review to a meeting
// @Tags Meetings
// @Accept json
// @Produce json
// @Param id path string true "Meeting ID"
// @Param payload body models.MeetingReviewRequest true "Review payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /meetings/{id}/review [put]
func (h *MeetingHandler) Review(c *gin.Context) {
	var req models.MeetingReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}

	meeting, err := h.service.AddReview(c.Request.Context(), currentScope(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, meeting, nil)
}
