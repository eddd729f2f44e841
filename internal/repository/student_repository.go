package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-placement-api/internal/models"
)

const studentColumns = `id, name, email, roll, password_hash, branch, year, cgpa, phone, address, skills,
        profile_photo, resume, certificates, offer_letters, created_at, updated_at`

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters ordered by name.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	where := squirrel.And{}
	if filter.Branch != "" {
		where = append(where, squirrel.Expr("LOWER(branch) = LOWER(?)", strings.TrimSpace(filter.Branch)))
	}
	if filter.Year != "" {
		where = append(where, squirrel.Eq{"year": strings.TrimSpace(filter.Year)})
	}
	if filter.Search != "" {
		term := "%" + strings.TrimSpace(filter.Search) + "%"
		where = append(where, squirrel.Or{squirrel.ILike{"name": term}, squirrel.ILike{"roll": term}, squirrel.ILike{"email": term}})
	}

	limit, offset := pageBounds(filter.Page, filter.PageSize)
	query, args, err := psql.Select(studentColumns).From("students").Where(where).
		OrderBy("name ASC").Limit(limit).Offset(offset).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list students: %w", err)
	}

	students := []models.Student{}
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery, countArgs, err := psql.Select("COUNT(*)").From("students").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count students: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	var student models.Student
	if err := r.db.GetContext(ctx, &student, "SELECT "+studentColumns+" FROM students WHERE id = $1", id); err != nil {
		return nil, lookupError(err)
	}
	return &student, nil
}

// FindByRoll fetches a student by roll number.
func (r *StudentRepository) FindByRoll(ctx context.Context, roll string) (*models.Student, error) {
	var student models.Student
	if err := r.db.GetContext(ctx, &student, "SELECT "+studentColumns+" FROM students WHERE roll = $1", roll); err != nil {
		return nil, err
	}
	return &student, nil
}

// ExistsByEmailOrRoll checks whether another student already uses the email or roll.
func (r *StudentRepository) ExistsByEmailOrRoll(ctx context.Context, email, roll, excludeID string) (bool, error) {
	query := "SELECT 1 FROM students WHERE (LOWER(email) = LOWER($1) OR roll = $2)"
	args := []interface{}{email, roll}
	if excludeID != "" {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check student identity: %w", err)
	}
	return true, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, name, email, roll, password_hash, branch, year, cgpa, phone, address, skills,
        profile_photo, resume, certificates, offer_letters, created_at, updated_at)
        VALUES (:id, :name, :email, :roll, :password_hash, :branch, :year, :cgpa, :phone, :address, :skills,
        :profile_photo, :resume, :certificates, :offer_letters, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create student: %w", ErrDuplicate)
		}
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update modifies the profile fields of an existing student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET name = :name, email = :email, branch = :branch, year = :year, cgpa = :cgpa,
        phone = :phone, address = :address, skills = :skills, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update student: %w", ErrDuplicate)
		}
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// UpdateDocuments persists the document references of a student.
func (r *StudentRepository) UpdateDocuments(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET profile_photo = :profile_photo, resume = :resume, certificates = :certificates,
        offer_letters = :offer_letters, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student documents: %w", err)
	}
	return nil
}

// Delete removes a student and reports whether a row was deleted.
func (r *StudentRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM students WHERE id = $1", id)
	if err != nil {
		if isMalformedID(err) {
			return false, nil
		}
		return false, fmt.Errorf("delete student: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete student rows: %w", err)
	}
	return affected > 0, nil
}

// Count returns the number of registered students.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM students"); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return total, nil
}
