package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Rishikarathore0601/rfp/internal/models"
)

var (
	// ErrVendorNotFound возвращается, когда запись поставщика не найдена.
	ErrVendorNotFound = errors.New("vendor not found")
	// ErrVendorEmailTaken возвращается при попытке создать поставщика
	// с уже занятым email.
	ErrVendorEmailTaken = errors.New("vendor email already registered")
)

// VendorRepository отвечает за работу с таблицей vendors.
type VendorRepository struct {
	db *sqlx.DB
}

// NewVendorRepository создаёт экземпляр репозитория.
func NewVendorRepository(db *sqlx.DB) *VendorRepository {
	return &VendorRepository{db: db}
}

// Create сохраняет нового поставщика. Email нормализуется к нижнему регистру,
// уникальность обеспечивает индекс в БД.
func (r *VendorRepository) Create(ctx context.Context, vendor *models.Vendor) error {
	vendor.Email = strings.ToLower(strings.TrimSpace(vendor.Email))

	query := `
		INSERT INTO vendors (name, company, email, phone, address, notes, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		vendor.Name, vendor.Company, vendor.Email, vendor.Phone, vendor.Address, vendor.Notes, vendor.IsActive,
	).Scan(&vendor.ID, &vendor.CreatedAt, &vendor.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrVendorEmailTaken
		}
		return fmt.Errorf("vendor repository: create %w", err)
	}

	return nil
}

// GetByID возвращает поставщика по идентификатору.
func (r *VendorRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	query := `
		SELECT id, name, company, email, phone, address, notes, is_active, created_at, updated_at
		FROM vendors
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &vendor, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVendorNotFound
		}
		return nil, fmt.Errorf("vendor repository: get by id %w", err)
	}

	return &vendor, nil
}

// GetByEmail возвращает поставщика по email без учёта регистра.
func (r *VendorRepository) GetByEmail(ctx context.Context, email string) (*models.Vendor, error) {
	var vendor models.Vendor
	query := `
		SELECT id, name, company, email, phone, address, notes, is_active, created_at, updated_at
		FROM vendors
		WHERE email = LOWER($1)
	`
	if err := r.db.GetContext(ctx, &vendor, query, strings.TrimSpace(email)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVendorNotFound
		}
		return nil, fmt.Errorf("vendor repository: get by email %w", err)
	}

	return &vendor, nil
}

// List возвращает поставщиков, отсортированных по компании.
// isActive == nil означает «без фильтра».
func (r *VendorRepository) List(ctx context.Context, isActive *bool) ([]models.Vendor, error) {
	query := `
		SELECT id, name, company, email, phone, address, notes, is_active, created_at, updated_at
		FROM vendors
	`
	args := []interface{}{}
	if isActive != nil {
		query += ` WHERE is_active = $1`
		args = append(args, *isActive)
	}
	query += ` ORDER BY company ASC`

	var vendors []models.Vendor
	if err := r.db.SelectContext(ctx, &vendors, query, args...); err != nil {
		return nil, fmt.Errorf("vendor repository: list %w", err)
	}

	return vendors, nil
}

// ListByIDs возвращает активных поставщиков из переданного набора идентификаторов.
func (r *VendorRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Vendor, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, name, company, email, phone, address, notes, is_active, created_at, updated_at
		FROM vendors
		WHERE id = ANY($1) AND is_active = TRUE
		ORDER BY company ASC
	`

	var vendors []models.Vendor
	if err := r.db.SelectContext(ctx, &vendors, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("vendor repository: list by ids %w", err)
	}

	return vendors, nil
}

// Update обновляет изменяемые поля поставщика.
func (r *VendorRepository) Update(ctx context.Context, vendor *models.Vendor) error {
	vendor.Email = strings.ToLower(strings.TrimSpace(vendor.Email))

	query := `
		UPDATE vendors
		SET name = $1, company = $2, email = $3, phone = $4, address = $5, notes = $6, is_active = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		vendor.Name, vendor.Company, vendor.Email, vendor.Phone, vendor.Address, vendor.Notes, vendor.IsActive, vendor.ID,
	).Scan(&vendor.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrVendorNotFound
		}
		if isUniqueViolation(err) {
			return ErrVendorEmailTaken
		}
		return fmt.Errorf("vendor repository: update %w", err)
	}

	return nil
}

// Delete удаляет поставщика.
func (r *VendorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM vendors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("vendor repository: delete %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("vendor repository: delete rows affected %w", err)
	}
	if rowsAffected == 0 {
		return ErrVendorNotFound
	}

	return nil
}

// isUniqueViolation распознаёт нарушение уникального ограничения Postgres.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
