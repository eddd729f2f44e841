package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-placement-api/internal/models"
	appErrors "github.com/noah-isme/campus-placement-api/pkg/errors"
	"github.com/noah-isme/campus-placement-api/pkg/response"
)

type certificateService interface {
	Upload(ctx context.Context, studentID string, req models.CreateCertificateRequest, filename string, size int64, r io.Reader, actor *models.Actor) (*models.CertificateView, error)
	List(ctx context.Context, studentID string, actor *models.Actor) ([]models.CertificateView, error)
	Get(ctx context.Context, studentID, id string, actor *models.Actor) (*models.CertificateView, error)
	Delete(ctx context.Context, studentID, id string, actor *models.Actor) error
}

// CertificateHandler exposes the certificate catalog of a student.
type CertificateHandler struct {
	certificates   certificateService
	maxUploadBytes int64
}

// NewCertificateHandler constructs a CertificateHandler.
func NewCertificateHandler(certificates certificateService, maxUploadBytes int64) *CertificateHandler {
	return &CertificateHandler{certificates: certificates, maxUploadBytes: maxUploadBytes}
}

// Upload godoc
// @Summary Upload a certificate
// @Tags Certificates
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Student ID"
// @Param type formData string true "Internship, Hackathon, Course, Workshop, Project or Award"
// @Param title formData string true "Title"
// @Param issuer formData string false "Issuer"
// @Param date formData string true "Issue date (YYYY-MM-DD)"
// @Param file formData file true "Certificate file"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/certificates [post]
func (h *CertificateHandler) Upload(c *gin.Context) {
	var req models.CreateCertificateRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid certificate payload"))
		return
	}
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

	cert, err := h.certificates.Upload(c.Request.Context(), c.Param("id"), req, fileHeader.Filename, fileHeader.Size, src, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, cert)
}

// List godoc
// @Summary List a student's certificates
// @Tags Certificates
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/certificates [get]
func (h *CertificateHandler) List(c *gin.Context) {
	certs, err := h.certificates.List(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, certs, nil)
}

// Get godoc
// @Summary Get a certificate with a fresh download link
// @Tags Certificates
// @Produce json
// @Param id path string true "Student ID"
// @Param certificateId path string true "Certificate ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/certificates/{certificateId} [get]
func (h *CertificateHandler) Get(c *gin.Context) {
	cert, err := h.certificates.Get(c.Request.Context(), c.Param("id"), c.Param("certificateId"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cert, nil)
}

// Delete godoc
// @Summary Delete a certificate and its file
// @Tags Certificates
// @Param id path string true "Student ID"
// @Param certificateId path string true "Certificate ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/certificates/{certificateId} [delete]
func (h *CertificateHandler) Delete(c *gin.Context) {
	if err := h.certificates.Delete(c.Request.Context(), c.Param("id"), c.Param("certificateId"), actorFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
