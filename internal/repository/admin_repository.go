package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-placement-api/internal/models"
)

const adminColumns = "id, username, email, password_hash, created_at, updated_at"

// AdminRepository persists administrator accounts.
type AdminRepository struct {
	db *sqlx.DB
}

// NewAdminRepository constructs an AdminRepository.
func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// FindByIdentifier fetches an admin by email or username.
func (r *AdminRepository) FindByIdentifier(ctx context.Context, identifier string) (*models.Admin, error) {
	const query = `SELECT ` + adminColumns + ` FROM admins WHERE LOWER(email) = LOWER($1) OR username = $1 LIMIT 1`
	var admin models.Admin
	if err := r.db.GetContext(ctx, &admin, query, identifier); err != nil {
		return nil, err
	}
	return &admin, nil
}

// FindByID fetches an admin by ID.
func (r *AdminRepository) FindByID(ctx context.Context, id string) (*models.Admin, error) {
	const query = `SELECT ` + adminColumns + ` FROM admins WHERE id = $1`
	var admin models.Admin
	if err := r.db.GetContext(ctx, &admin, query, id); err != nil {
		return nil, lookupError(err)
	}
	return &admin, nil
}

// Create inserts a new admin.
func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	if admin.ID == "" {
		admin.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	admin.CreatedAt = now
	admin.UpdatedAt = now
	const query = `INSERT INTO admins (id, username, email, password_hash, created_at, updated_at)
        VALUES (:id, :username, :email, :password_hash, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, admin); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create admin: %w", ErrDuplicate)
		}
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}

// List returns every admin ordered by username.
func (r *AdminRepository) List(ctx context.Context) ([]models.Admin, error) {
	admins := []models.Admin{}
	if err := r.db.SelectContext(ctx, &admins, "SELECT "+adminColumns+" FROM admins ORDER BY username"); err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}

// UpdatePassword stores a new password hash and returns the updated admin. sql.ErrNoRows signals a missing admin.
func (r *AdminRepository) UpdatePassword(ctx context.Context, id, passwordHash string) (*models.Admin, error) {
	query := "UPDATE admins SET password_hash = $2, updated_at = $3 WHERE id = $1 RETURNING " + adminColumns
	var admin models.Admin
	if err := r.db.GetContext(ctx, &admin, query, id, passwordHash, time.Now().UTC()); err != nil {
		return nil, lookupError(err)
	}
	return &admin, nil
}

// Delete removes an admin and reports whether a row was deleted.
func (r *AdminRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM admins WHERE id = $1", id)
	if err != nil {
		if isMalformedID(err) {
			return false, nil
		}
		return false, fmt.Errorf("delete admin: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete admin rows: %w", err)
	}
	return affected > 0, nil
}
