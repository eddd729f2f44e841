package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-placement-api/internal/middleware"
	"github.com/noah-isme/campus-placement-api/internal/models"
	"github.com/noah-isme/campus-placement-api/internal/service"
	appErrors "github.com/noah-isme/campus-placement-api/pkg/errors"
	"github.com/noah-isme/campus-placement-api/pkg/export"
	"github.com/noah-isme/campus-placement-api/pkg/response"
)

type driveService interface {
	List(ctx context.Context, filter models.DriveFilter, viewer *models.Actor) ([]models.DriveListing, *models.Pagination, bool, error)
	Get(ctx context.Context, id string) (*models.Drive, error)
	Create(ctx context.Context, req service.DriveRequest) (*models.Drive, error)
	Update(ctx context.Context, id string, req service.DriveRequest) (*models.Drive, error)
	Delete(ctx context.Context, id string) error
	CheckEligibility(ctx context.Context, driveID, studentID string) (*models.EligibilityResult, error)
}

type applicantLister interface {
	ApplicantsFor(ctx context.Context, driveID string) ([]models.Applicant, error)
}

type applicantExporter interface {
	ExportApplicants(ctx context.Context, driveID string, format export.Format) (*service.ExportFile, error)
}

// DriveHandler exposes placement drive endpoints.
type DriveHandler struct {
	drives     driveService
	applicants applicantLister
	exporter   applicantExporter
}

// NewDriveHandler constructs the handler.
func NewDriveHandler(drives driveService, applicants applicantLister, exporter applicantExporter) *DriveHandler {
	return &DriveHandler{drives: drives, applicants: applicants, exporter: exporter}
}

// List godoc
// @Summary List drives
// @Description Newest first. Authenticated students receive their eligibility for each drive.
// @Tags Drives
// @Produce json
// @Param search query string false "Search by company or role"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /drives [get]
func (h *DriveHandler) List(c *gin.Context) {
	filter := models.DriveFilter{Search: strings.TrimSpace(c.Query("search"))}
	filter.Page, filter.PageSize = pageParams(c)

	drives, pagination, cacheHit, err := h.drives.List(c.Request.Context(), filter, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, drives, pagination, middleware.ResponseMeta(c))
}

// Get godoc
// @Summary Get drive
// @Tags Drives
// @Produce json
// @Param id path string true "Drive ID"
// @Success 200 {object} response.Envelope
// @Router /drives/{id} [get]
func (h *DriveHandler) Get(c *gin.Context) {
	drive, err := h.drives.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, drive, nil)
}

// Create godoc
// @Summary Create drive
// @Tags Drives
// @Accept json
// @Produce json
// @Param payload body service.DriveRequest true "Drive payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /drives [post]
func (h *DriveHandler) Create(c *gin.Context) {
	var req service.DriveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	drive, err := h.drives.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, drive)
}

// Update godoc
// @Summary Update drive
// @Tags Drives
// @Accept json
// @Produce json
// @Param id path string true "Drive ID"
// @Param payload body service.DriveRequest true "Drive payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /drives/{id} [put]
func (h *DriveHandler) Update(c *gin.Context) {
	var req service.DriveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	drive, err := h.drives.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, drive, nil)
}

// Delete godoc
// @Summary Delete drive
// @Tags Drives
// @Param id path string true "Drive ID"
// @Success 204
// @Security BearerAuth
// @Router /drives/{id} [delete]
func (h *DriveHandler) Delete(c *gin.Context) {
	if err := h.drives.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Applicants godoc
// @Summary List applicants of a drive
// @Tags Drives
// @Produce json
// @Param id path string true "Drive ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /drives/{id}/applicants [get]
func (h *DriveHandler) Applicants(c *gin.Context) {
	applicants, err := h.applicants.ApplicantsFor(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, applicants, nil)
}

// ExportApplicants godoc
// @Summary Export applicants as CSV or PDF
// @Tags Drives
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Drive ID"
// @Param format query string false "csv (default) or pdf"
// @Success 200
// @Security BearerAuth
// @Router /drives/{id}/applicants/export [get]
func (h *DriveHandler) ExportApplicants(c *gin.Context) {
	format := export.Format(c.DefaultQuery("format", string(export.FormatCSV)))
	file, err := h.exporter.ExportApplicants(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

// Eligibility godoc
// @Summary Check a student's eligibility for a drive
// @Tags Drives
// @Produce json
// @Param id path string true "Drive ID"
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /drives/{id}/eligibility/{studentId} [get]
func (h *DriveHandler) Eligibility(c *gin.Context) {
	result, err := h.drives.CheckEligibility(c.Request.Context(), c.Param("id"), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
