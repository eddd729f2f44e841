package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/campus-placement-api/internal/models"
	"github.com/noah-isme/campus-placement-api/internal/repository"
	appErrors "github.com/noah-isme/campus-placement-api/pkg/errors"
	"github.com/noah-isme/campus-placement-api/pkg/jobs"
	"github.com/noah-isme/campus-placement-api/pkg/roster"
	"github.com/noah-isme/campus-placement-api/pkg/storage"
)

type rosterStudentRepository interface {
	ExistsByEmailOrRoll(ctx context.Context, email, roll, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
}

// RosterConfig tunes bulk imports.
type RosterConfig struct {
	Workers  int
	MaxRows  int
	HashCost int
}

// RosterService bulk-imports student accounts from uploaded rosters.
type RosterService struct {
	repo      rosterStudentRepository
	scratch   storage.FileStore
	pool      *jobs.Pool
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       RosterConfig
}

// NewRosterService constructs the roster importer.
func NewRosterService(repo rosterStudentRepository, scratch storage.FileStore, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg RosterConfig) *RosterService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.HashCost == 0 {
		cfg.HashCost = bcrypt.DefaultCost
	}
	registerPlacementValidations(validate)
	return &RosterService{
		repo:      repo,
		scratch:   scratch,
		pool:      jobs.NewPool("roster-import", jobs.PoolConfig{Workers: cfg.Workers, Logger: logger}),
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// ImportFile stages the upload in scratch storage, parses it and imports the rows.
// The scratch copy is removed whatever the outcome.
func (s *RosterService) ImportFile(ctx context.Context, filename string, r io.Reader) (*models.RosterImportResult, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".csv" && ext != ".xlsx" && ext != ".txt" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "roster must be a .csv, .txt or .xlsx file")
	}
	if s.scratch == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "scratch storage is not configured")
	}

	key, err := s.scratch.Save(ctx, storage.ObjectKey("roster-imports", uuid.NewString()+ext), r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stage roster upload")
	}
	defer func() {
		if err := s.scratch.Delete(context.Background(), key); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			s.logger.Warn("failed to remove roster scratch file", zap.String("key", key), zap.Error(err))
		}
	}()

	staged, err := s.scratch.Open(ctx, key)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read roster upload")
	}
	defer staged.Close() //nolint:errcheck

	rows, err := roster.Parse(ctx, filename, staged, roster.Options{MaxRows: s.cfg.MaxRows})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "roster import cancelled")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	return s.Import(ctx, rows)
}

// Import creates a student for every valid row. Rows are isolated from each other:
// a failing row is reported in Skipped and never aborts its siblings.
func (s *RosterService) Import(ctx context.Context, rows []roster.Row) (*models.RosterImportResult, error) {
	result := &models.RosterImportResult{Skipped: []models.SkippedRow{}}
	if len(rows) == 0 {
		return result, nil
	}

	outcomes := make([]*models.SkippedRow, len(rows))
	pending := make([]int, 0, len(rows))
	seenEmail := make(map[string]int, len(rows))
	seenRoll := make(map[string]int, len(rows))

	for i := range rows {
		row := normalizeRow(rows[i])
		rows[i] = row
		if reason := s.precheck(row, seenEmail, seenRoll); reason != "" {
			outcomes[i] = skipped(row, reason)
			continue
		}
		seenEmail[row.Email] = row.Number
		seenRoll[row.Roll] = row.Number
		pending = append(pending, i)
	}

	errs := s.pool.Run(ctx, len(pending), func(ctx context.Context, j int) error {
		i := pending[j]
		if reason := s.importRow(ctx, rows[i]); reason != "" {
			outcomes[i] = skipped(rows[i], reason)
		}
		return nil
	})
	for j, err := range errs {
		if err != nil && outcomes[pending[j]] == nil {
			outcomes[pending[j]] = skipped(rows[pending[j]], "failed to import row")
		}
	}

	for _, outcome := range outcomes {
		if outcome == nil {
			result.Imported++
			continue
		}
		result.Skipped = append(result.Skipped, *outcome)
	}
	sort.SliceStable(result.Skipped, func(a, b int) bool { return result.Skipped[a].Row < result.Skipped[b].Row })

	s.metrics.RecordRosterImport(result.Imported, len(result.Skipped))
	s.logger.Info("roster import finished",
		zap.Int("rows", len(rows)),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

func (s *RosterService) precheck(row roster.Row, seenEmail, seenRoll map[string]int) string {
	if field := row.MissingField(); field != "" {
		return "missing required field: " + field
	}
	if err := s.validator.Var(row.Email, "email"); err != nil {
		return "invalid email: " + row.Email
	}
	if row.CGPA != "" {
		if _, ok := parseCGPA(row.CGPA); !ok {
			return "invalid cgpa: " + row.CGPA
		}
	}
	if first, dup := seenEmail[row.Email]; dup {
		return fmt.Sprintf("duplicate email in upload (first seen on row %d)", first)
	}
	if first, dup := seenRoll[row.Roll]; dup {
		return fmt.Sprintf("duplicate roll in upload (first seen on row %d)", first)
	}
	return ""
}

func (s *RosterService) importRow(ctx context.Context, row roster.Row) string {
	exists, err := s.repo.ExistsByEmailOrRoll(ctx, row.Email, row.Roll, "")
	if err != nil {
		s.logger.Warn("roster row lookup failed", zap.Int("row", row.Number), zap.Error(err))
		return "failed to verify existing students"
	}
	if exists {
		return "a student with this email or roll already exists"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(row.Password), s.cfg.HashCost)
	if err != nil {
		return "failed to hash password"
	}

	student := &models.Student{
		Name:         row.Name,
		Email:        row.Email,
		Roll:         row.Roll,
		PasswordHash: string(hash),
		Branch:       row.Branch,
		Year:         row.Year,
		CGPA:         row.CGPA,
		Phone:        row.Phone,
		Address:      row.Address,
		Skills:       row.SkillList(),
	}
	if err := s.repo.Create(ctx, student); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return "a student with this email or roll already exists"
		}
		s.logger.Warn("roster row insert failed", zap.Int("row", row.Number), zap.Error(err))
		return "failed to save student"
	}
	return ""
}

func normalizeRow(row roster.Row) roster.Row {
	row.Name = strings.TrimSpace(row.Name)
	row.Email = strings.ToLower(strings.TrimSpace(row.Email))
	row.Roll = strings.TrimSpace(row.Roll)
	row.Branch = strings.TrimSpace(row.Branch)
	row.Year = strings.TrimSpace(row.Year)
	row.CGPA = strings.TrimSpace(row.CGPA)
	row.Phone = strings.TrimSpace(row.Phone)
	row.Address = strings.TrimSpace(row.Address)
	return row
}

func skipped(row roster.Row, reason string) *models.SkippedRow {
	return &models.SkippedRow{
		Row:    row.Number,
		Data:   models.SkippedRowData{Name: row.Name, Email: row.Email, Roll: row.Roll},
		Reason: reason,
	}
}
