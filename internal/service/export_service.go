package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-placement-api/internal/models"
	appErrors "github.com/noah-isme/campus-placement-api/pkg/errors"
	"github.com/noah-isme/campus-placement-api/pkg/export"
)

type applicantSource interface {
	ApplicantsFor(ctx context.Context, driveID string) ([]models.Applicant, error)
}

type exportDriveReader interface {
	Get(ctx context.Context, id string) (*models.Drive, error)
}

var applicantHeaders = []string{"Name", "Roll", "Email", "Phone", "Status", "Applied On"}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders applicant rosters into downloadable files.
type ExportService struct {
	applicants applicantSource
	drives     exportDriveReader
	logger     *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(applicants applicantSource, drives exportDriveReader, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{applicants: applicants, drives: drives, logger: logger}
}

// ExportApplicants renders the applicant roster of a drive as CSV or PDF.
func (s *ExportService) ExportApplicants(ctx context.Context, driveID string, format export.Format) (*ExportFile, error) {
	renderer, err := export.RendererFor(export.Format(strings.ToLower(string(format))))
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	drive, err := s.drives.Get(ctx, driveID)
	if err != nil {
		return nil, err
	}
	applicants, err := s.applicants.ApplicantsFor(ctx, driveID)
	if err != nil {
		return nil, err
	}

	data, err := renderer.Render(applicantDataset(drive, applicants))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	s.logger.Info("applicants exported",
		zap.String("drive_id", drive.ID),
		zap.String("format", renderer.Extension()),
		zap.Int("rows", len(applicants)),
	)

	return &ExportFile{
		Filename:    fmt.Sprintf("applicants-%s.%s", slugify(drive.Company+" "+drive.Role), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Data:        data,
	}, nil
}

func applicantDataset(drive *models.Drive, applicants []models.Applicant) export.Dataset {
	rows := make([]map[string]string, 0, len(applicants))
	for _, a := range applicants {
		rows = append(rows, map[string]string{
			"Name":       a.Name,
			"Roll":       a.Roll,
			"Email":      a.Email,
			"Phone":      a.Phone,
			"Status":     string(a.Status),
			"Applied On": a.AppliedOn.UTC().Format(time.DateOnly),
		})
	}
	return export.Dataset{
		Title:   fmt.Sprintf("Applicants - %s (%s)", drive.Company, drive.Role),
		Headers: applicantHeaders,
		Rows:    rows,
	}
}

func slugify(raw string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(raw)) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "drive"
	}
	return out
}
