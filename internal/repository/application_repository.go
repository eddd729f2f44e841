package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-placement-api/internal/models"
)

const applicationReturning = `id, student_id, drive_id, student_name, roll, company, role, status, applied_by_admin,
        COALESCE(applied_at, created_at) AS applied_at, created_at, updated_at`

// ApplicationRepository manages persistence for drive applications.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository constructs an ApplicationRepository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Exists reports whether the student already applied for the drive.
func (r *ApplicationRepository) Exists(ctx context.Context, studentID, driveID string) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM applications WHERE student_id = $1 AND drive_id = $2 LIMIT 1", studentID, driveID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isMalformedID(err) {
			return false, nil
		}
		return false, fmt.Errorf("check application: %w", err)
	}
	return true, nil
}

// Create inserts an application. A second application for the same student and drive yields ErrDuplicate.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now
	if app.AppliedAt.IsZero() {
		app.AppliedAt = now
	}
	const query = `INSERT INTO applications (id, student_id, drive_id, student_name, roll, company, role, status, applied_by_admin,
        applied_at, created_at, updated_at)
        VALUES (:id, :student_id, :drive_id, :student_name, :roll, :company, :role, :status, :applied_by_admin,
        :applied_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, app); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create application: %w", ErrDuplicate)
		}
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// FindByID fetches an application by ID.
func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*models.Application, error) {
	var app models.Application
	if err := r.db.GetContext(ctx, &app, "SELECT "+applicationReturning+" FROM applications WHERE id = $1", id); err != nil {
		return nil, lookupError(err)
	}
	return &app, nil
}

// UpdateStatus overwrites the status and returns the updated row. sql.ErrNoRows signals a missing application.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) (*models.Application, error) {
	query := "UPDATE applications SET status = $2, updated_at = $3 WHERE id = $1 RETURNING " + applicationReturning
	var app models.Application
	if err := r.db.GetContext(ctx, &app, query, id, status, time.Now().UTC()); err != nil {
		return nil, lookupError(err)
	}
	return &app, nil
}

// Delete removes an application and reports whether a row was deleted.
func (r *ApplicationRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM applications WHERE id = $1", id)
	if err != nil {
		if isMalformedID(err) {
			return false, nil
		}
		return false, fmt.Errorf("delete application: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete application rows: %w", err)
	}
	return affected > 0, nil
}

// List returns applications newest first. Company and role fall back to the live drive when the snapshot is blank.
func (r *ApplicationRepository) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error) {
	where := squirrel.And{}
	if filter.StudentID != "" {
		where = append(where, squirrel.Eq{"a.student_id": filter.StudentID})
	}
	if filter.DriveID != "" {
		where = append(where, squirrel.Eq{"a.drive_id": filter.DriveID})
	}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"a.status": filter.Status})
	}

	limit, offset := pageBounds(filter.Page, filter.PageSize)
	query, args, err := psql.Select(
		"a.id", "a.student_id", "a.drive_id", "a.student_name", "a.roll",
		"COALESCE(NULLIF(a.company, ''), d.company, '') AS company",
		"COALESCE(NULLIF(a.role, ''), d.role, '') AS role",
		"a.status", "a.applied_by_admin", "COALESCE(a.applied_at, a.created_at) AS applied_at", "a.created_at", "a.updated_at",
	).From("applications a").LeftJoin("drives d ON d.id = a.drive_id").Where(where).
		OrderBy("a.created_at DESC").Limit(limit).Offset(offset).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list applications: %w", err)
	}

	apps := []models.Application{}
	if err := r.db.SelectContext(ctx, &apps, query, args...); err != nil {
		if isMalformedID(err) {
			return []models.Application{}, 0, nil
		}
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}

	countQuery, countArgs, err := psql.Select("COUNT(*)").From("applications a").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count applications: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}
	return apps, total, nil
}

// ListApplicants returns the applicant roster of a drive newest first, using snapshots for deleted students.
func (r *ApplicationRepository) ListApplicants(ctx context.Context, driveID string) ([]models.Applicant, error) {
	const query = `SELECT a.id AS application_id, a.student_id,
        COALESCE(s.name, a.student_name) AS name, COALESCE(s.roll, a.roll) AS roll,
        COALESCE(s.email, '') AS email, COALESCE(s.phone, '') AS phone,
        a.status, COALESCE(a.applied_at, a.created_at) AS applied_on
        FROM applications a
        LEFT JOIN students s ON s.id = a.student_id
        WHERE a.drive_id = $1
        ORDER BY a.created_at DESC`
	applicants := []models.Applicant{}
	if err := r.db.SelectContext(ctx, &applicants, query, driveID); err != nil {
		if isMalformedID(err) {
			return applicants, nil
		}
		return nil, fmt.Errorf("list applicants: %w", err)
	}
	return applicants, nil
}

// CountByStatus groups applications by status.
func (r *ApplicationRepository) CountByStatus(ctx context.Context) ([]models.StatusCount, error) {
	counts := []models.StatusCount{}
	if err := r.db.SelectContext(ctx, &counts, "SELECT status, COUNT(*) AS count FROM applications GROUP BY status"); err != nil {
		return nil, fmt.Errorf("count applications by status: %w", err)
	}
	return counts, nil
}

// CountByStudent returns how many applications reference the student.
func (r *ApplicationRepository) CountByStudent(ctx context.Context, studentID string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM applications WHERE student_id = $1", studentID); err != nil {
		if isMalformedID(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("count student applications: %w", err)
	}
	return total, nil
}

// CountPlacedStudents returns the number of distinct students holding a placed application.
func (r *ApplicationRepository) CountPlacedStudents(ctx context.Context) (int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(DISTINCT student_id) FROM applications WHERE status = $1", models.ApplicationStatusPlaced)
	if err != nil {
		return 0, fmt.Errorf("count placed students: %w", err)
	}
	return total, nil
}
