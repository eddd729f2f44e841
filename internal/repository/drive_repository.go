package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-placement-api/internal/models"
)

const driveColumns = `id, company, role, ctc, location, deadline, drive_date, min_cgpa, eligible_branches, eligible_years,
        description, link, created_at, updated_at`

// DriveRepository manages persistence for placement drives.
type DriveRepository struct {
	db *sqlx.DB
}

// NewDriveRepository constructs a DriveRepository.
func NewDriveRepository(db *sqlx.DB) *DriveRepository {
	return &DriveRepository{db: db}
}

// List returns drives newest first.
func (r *DriveRepository) List(ctx context.Context, filter models.DriveFilter) ([]models.Drive, int, error) {
	where := squirrel.And{}
	if filter.Search != "" {
		term := "%" + filter.Search + "%"
		where = append(where, squirrel.Or{squirrel.ILike{"company": term}, squirrel.ILike{"role": term}})
	}

	limit, offset := pageBounds(filter.Page, filter.PageSize)
	query, args, err := psql.Select(driveColumns).From("drives").Where(where).
		OrderBy("created_at DESC").Limit(limit).Offset(offset).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list drives: %w", err)
	}
	drives := []models.Drive{}
	if err := r.db.SelectContext(ctx, &drives, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list drives: %w", err)
	}

	countQuery, countArgs, err := psql.Select("COUNT(*)").From("drives").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count drives: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count drives: %w", err)
	}
	return drives, total, nil
}

// FindByID fetches a drive by ID.
func (r *DriveRepository) FindByID(ctx context.Context, id string) (*models.Drive, error) {
	var drive models.Drive
	if err := r.db.GetContext(ctx, &drive, "SELECT "+driveColumns+" FROM drives WHERE id = $1", id); err != nil {
		return nil, lookupError(err)
	}
	return &drive, nil
}

// Create inserts a new drive.
func (r *DriveRepository) Create(ctx context.Context, drive *models.Drive) error {
	if drive.ID == "" {
		drive.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	drive.CreatedAt = now
	drive.UpdatedAt = now
	const query = `INSERT INTO drives (id, company, role, ctc, location, deadline, drive_date, min_cgpa, eligible_branches,
        eligible_years, description, link, created_at, updated_at)
        VALUES (:id, :company, :role, :ctc, :location, :deadline, :drive_date, :min_cgpa, :eligible_branches,
        :eligible_years, :description, :link, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, drive); err != nil {
		return fmt.Errorf("create drive: %w", err)
	}
	return nil
}

// Update overwrites the mutable fields of a drive.
func (r *DriveRepository) Update(ctx context.Context, drive *models.Drive) error {
	drive.UpdatedAt = time.Now().UTC()
	const query = `UPDATE drives SET company = :company, role = :role, ctc = :ctc, location = :location, deadline = :deadline,
        drive_date = :drive_date, min_cgpa = :min_cgpa, eligible_branches = :eligible_branches, eligible_years = :eligible_years,
        description = :description, link = :link, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, drive); err != nil {
		return fmt.Errorf("update drive: %w", err)
	}
	return nil
}

// Delete removes a drive and reports whether a row was deleted.
func (r *DriveRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM drives WHERE id = $1", id)
	if err != nil {
		if isMalformedID(err) {
			return false, nil
		}
		return false, fmt.Errorf("delete drive: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete drive rows: %w", err)
	}
	return affected > 0, nil
}

// Counts returns the total number of drives and those still open at now.
func (r *DriveRepository) Counts(ctx context.Context, now time.Time) (int, int, error) {
	const query = `SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE deadline IS NULL OR deadline >= $1) AS open FROM drives`
	var counts struct {
		Total int `db:"total"`
		Open  int `db:"open"`
	}
	if err := r.db.GetContext(ctx, &counts, query, now); err != nil {
		return 0, 0, fmt.Errorf("count drives: %w", err)
	}
	return counts.Total, counts.Open, nil
}
