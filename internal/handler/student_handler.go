package handler

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-placement-api/internal/models"
	appErrors "github.com/noah-isme/campus-placement-api/pkg/errors"
	"github.com/noah-isme/campus-placement-api/pkg/response"
)

type studentService interface {
	List(ctx context.Context, filter models.StudentFilter, actor *models.Actor) ([]models.Student, *models.Pagination, error)
	Get(ctx context.Context, id string, actor *models.Actor) (*models.Student, error)
	Update(ctx context.Context, id string, req models.UpdateStudentRequest, actor *models.Actor) (*models.Student, error)
	Delete(ctx context.Context, id string, actor *models.Actor) error
	UploadDocument(ctx context.Context, id string, docType models.DocumentType, filename string, r io.Reader, actor *models.Actor) (*models.DocumentUpload, error)
	OpenDocument(ctx context.Context, token string) (io.ReadCloser, string, error)
}

// StudentHandler exposes student endpoints.
type StudentHandler struct {
	students       studentService
	maxUploadBytes int64
}

// NewStudentHandler constructs StudentHandler. A non-positive limit disables the size check.
func NewStudentHandler(students studentService, maxUploadBytes int64) *StudentHandler {
	return &StudentHandler{students: students, maxUploadBytes: maxUploadBytes}
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param search query string false "Search by name, email or roll"
// @Param branch query string false "Filter by branch"
// @Param year query string false "Filter by year"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	filter := models.StudentFilter{
		Search: strings.TrimSpace(c.Query("search")),
		Branch: strings.TrimSpace(c.Query("branch")),
		Year:   strings.TrimSpace(c.Query("year")),
	}
	filter.Page, filter.PageSize = pageParams(c)

	students, pagination, err := h.students.List(c.Request.Context(), filter, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, pagination)
}

// Get godoc
// @Summary Get student profile
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Update godoc
// @Summary Update student profile
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body models.UpdateStudentRequest true "Profile fields"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	var req models.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.students.Update(c.Request.Context(), c.Param("id"), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Delete godoc
// @Summary Delete student profile
// @Tags Students
// @Param id path string true "Student ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.students.Delete(c.Request.Context(), c.Param("id"), actorFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UploadDocument godoc
// @Summary Upload a student document
// @Tags Students
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Student ID"
// @Param type path string true "resume, profile_photo, certificate or offer_letter"
// @Param file formData file true "Document"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/documents/{type} [post]
func (h *StudentHandler) UploadDocument(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	if h.maxUploadBytes > 0 && fileHeader.Size > h.maxUploadBytes {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds the %d byte limit", h.maxUploadBytes)))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close()

	docType := models.DocumentType(strings.ToLower(c.Param("type")))
	upload, err := h.students.UploadDocument(c.Request.Context(), c.Param("id"), docType, fileHeader.Filename, src, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, upload)
}

// DownloadDocument godoc
// @Summary Download a document through a signed link
// @Tags Students
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200
// @Failure 403 {object} response.Envelope
// @Router /documents/download [get]
func (h *StudentHandler) DownloadDocument(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	file, name, err := h.students.OpenDocument(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	response.AttachmentReader(c, name, contentType, file)
}
