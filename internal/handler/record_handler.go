package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nitap-dev/mentor-portal-api/internal/models"
	"github.com/nitap-dev/mentor-portal-api/internal/service"
	appErrors "github.com/nitap-dev/mentor-portal-api/pkg/errors"
	"github.com/nitap-dev/mentor-portal-api/pkg/response"
)

// RecordHandler wires HTTP endpoints to the student sub-record service.
// All routes hang off /students/:id so ownership is always explicit.
type RecordHandler struct {
	service *service.RecordService
}

// NewRecordHandler creates a new handler.
func NewRecordHandler(svc *service.RecordService) *RecordHandler {
	return &RecordHandler{service: svc}
}

// ListInternships godoc
// @Summary List internships
// @Tags Records
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/internships [get]
func (h *RecordHandler) ListInternships(c *gin.Context) {
	items, err := h.service.ListInternships(c.Request.Context(), currentScope(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// CreateInternship godoc
// @Summary Add internship
// @Tags Records
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body models.InternshipRequest true "Internship payload"
// @Success 201 {object} response.Envelope
// @Router /students/{id}/internships [post]
func (h *RecordHandler) CreateInternship(c *gin.Context) {
	var req models.InternshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid internship payload"))
		return
	}

	item, err := h.service.CreateInternship(c.Request.Context(), currentScope(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// UpdateInternship godoc
// @Summary Edit internship
// @Tags Records
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param entryId path string true "Internship ID"
// @Param payload body models.InternshipRequest true "Internship payload"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/internships/{entryId} [put]
func (h *RecordHandler) UpdateInternship(c *gin.Context) {
	var req models.InternshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid internship payload"))
		return
	}

	item, err := h.service.UpdateInternship(c.Request.Context(), currentScope(c), c.Param("id"), c.Param("entryId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// DeleteInternship godoc
// @Summary Remove internship
// @Tags Records
// @Param id path string true "Student ID"
// @Param entryId path string true "Internship ID"
// @Success 204 "No Content"
// @Router /students/{id}/internships/{entryId} [delete]
func (h *RecordHandler) DeleteInternship(c *gin.Context) {
	if err := h.service.DeleteInternship(c.Request.Context(), currentScope(c), c.Param("id"), c.Param("entryId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListProjects godoc
// @Summary List projects
// @Tags Records
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/projects [get]
func (h *RecordHandler) ListProjects(c *gin.Context) {
	items, err := h.service.ListProjects(c.Request.Context(), currentScope(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// CreateProject godoc
// @Summary Add project
// @Tags Records
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body models.ProjectRequest true "Project payload"
// @Success 201 {object} response.Envelope
// @Router /students/{id}/projects [post]
func (h *RecordHandler) CreateProject(c *gin.Context) {
	var req models.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid project payload"))
		return
	}

	item, err := h.service.CreateProject(c.Request.Context(), currentScope(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// UpdateProject godoc
// @Summary Edit project
// @Tags Records
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param entryId path string true "Project ID"
// @Param payload body models.ProjectRequest true "Project payload"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/projects/{entryId} [put]
func (h *RecordHandler) UpdateProject(c *gin.Context) {
	var req models.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid project payload"))
		return
	}

	item, err := h.service.UpdateProject(c.Request.Context(), currentScope(c), c.Param("id"), c.Param("entryId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// DeleteProject godoc
// @Summary Remove project
// @Tags Records
// @Param id path string true "Student ID"
// @Param entryId path string true "Project ID"
// @Success 204 "No Content"
// @Router /students/{id}/projects/{entryId} [delete]
func (h *RecordHandler) DeleteProject(c *gin.Context) {
	if err := h.service.DeleteProject(c.Request.Context(), currentScope(c), c.Param("id"), c.Param("entryId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListCoCurriculars godoc
// @Summary List achievements
// @Tags Records
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/cocurriculars [get]
func (h *RecordHandler) ListCoCurriculars(c *gin.Context) {
	items, err := h.service.ListCoCurriculars(c.Request.Context(), currentScope(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// CreateCoCurricular godoc
// @Summary Add achievement
// @Tags Records
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body models.CoCurricularRequest true "Achievement payload"
// @Success 201 {object} response.Envelope
// @Router /students/{id}/cocurriculars [post]
func (h *RecordHandler) CreateCoCurricular(c *gin.Context) {
	var req models.CoCurricularRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid achievement payload"))
		return
	}

	item, err := h.service.CreateCoCurricular(c.Request.Context(), currentScope(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// GetCareerDetails godoc
// @Summary Get career survey
// @Tags Records
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/career [get]
func (h *RecordHandler) GetCareerDetails(c *gin.Context) {
	cd, err := h.service.GetCareerDetails(c.Request.Context(), currentScope(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cd, nil)
}

// SaveCareerDetails godoc
// @Summary Save career survey
// @Tags Records
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body models.CareerDetailsRequest true "Career survey payload"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/career [put]
func (h *RecordHandler) SaveCareerDetails(c *gin.Context) {
	var req models.CareerDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid career payload"))
		return
	}

	cd, err := h.service.SaveCareerDetails(c.Request.Context(), currentScope(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cd, nil)
}

// GetPersonalProblem godoc
// @Summary Get personal-problem survey
// @Description Visible only to the student, their mentor and the department HOD
// @Tags Records
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /students/{id}/personal-problems [get]
func (h *RecordHandler) GetPersonalProblem(c *gin.Context) {
	pp, err := h.service.GetPersonalProblem(c.Request.Context(), currentScope(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pp, nil)
}

// SavePersonalProblem godoc
// @Summary Save personal-problem survey
// @Tags Records
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body models.PersonalProblemRequest true "Survey payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /students/{id}/personal-problems [put]
func (h *RecordHandler) SavePersonalProblem(c *gin.Context) {
	var req models.PersonalProblemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid personal problem payload"))
		return
	}

	pp, err := h.service.SavePersonalProblem(c.Request.Context(), currentScope(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pp, nil)
}

// ListSemesters godoc
// @Summary List semester results
// @Tags Records
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/semesters [get]
func (h *RecordHandler) ListSemesters(c *gin.Context) {
	semesters, err := h.service.ListSemesters(c.Request.Context(), currentScope(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, semesters, nil)
}

// SaveSemester godoc
// @Summary Save semester results
// @Tags Records
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body models.SemesterRequest true "Semester payload"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/semesters [put]
func (h *RecordHandler) SaveSemester(c *gin.Context) {
	var req models.SemesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid semester payload"))
		return
	}

	sem, err := h.service.SaveSemester(c.Request.Context(), currentScope(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sem, nil)
}
