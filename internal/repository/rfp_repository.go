package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Rishikarathore0601/rfp/internal/models"
)

// ErrRFPNotFound возвращается, когда запись RFP не найдена.
var ErrRFPNotFound = errors.New("rfp not found")

// RFPRepository отвечает за работу с таблицами rfps и rfp_vendors.
type RFPRepository struct {
	db *sqlx.DB
}

// NewRFPRepository создаёт экземпляр репозитория.
func NewRFPRepository(db *sqlx.DB) *RFPRepository {
	return &RFPRepository{db: db}
}

// Create сохраняет новый RFP вместе со ссылочным токеном.
func (r *RFPRepository) Create(ctx context.Context, rfp *models.RFP) error {
	query := `
		INSERT INTO rfps (title, description, structured_data, status, reference_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		rfp.Title, rfp.Description, rfp.StructuredData, rfp.Status, rfp.ReferenceID,
	).Scan(&rfp.ID, &rfp.CreatedAt, &rfp.UpdatedAt); err != nil {
		return fmt.Errorf("rfp repository: create %w", err)
	}

	return nil
}

// GetByID возвращает RFP по идентификатору.
func (r *RFPRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.RFP, error) {
	var rfp models.RFP
	query := `
		SELECT id, title, description, structured_data, status, reference_id, created_at, updated_at
		FROM rfps
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &rfp, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRFPNotFound
		}
		return nil, fmt.Errorf("rfp repository: get by id %w", err)
	}

	return &rfp, nil
}

// List возвращает все RFP, новые первыми.
func (r *RFPRepository) List(ctx context.Context) ([]models.RFP, error) {
	query := `
		SELECT id, title, description, structured_data, status, reference_id, created_at, updated_at
		FROM rfps
		ORDER BY created_at DESC
	`

	var rfps []models.RFP
	if err := r.db.SelectContext(ctx, &rfps, query); err != nil {
		return nil, fmt.Errorf("rfp repository: list %w", err)
	}

	return rfps, nil
}

// ListOpen возвращает RFP, по которым ещё принимаются предложения.
// Используется при сверке почтового ящика для поиска ссылочного токена.
func (r *RFPRepository) ListOpen(ctx context.Context) ([]models.RFP, error) {
	query := `
		SELECT id, title, description, structured_data, status, reference_id, created_at, updated_at
		FROM rfps
		WHERE status != $1
		ORDER BY created_at DESC
	`

	var rfps []models.RFP
	if err := r.db.SelectContext(ctx, &rfps, query, models.RFPStatusClosed); err != nil {
		return nil, fmt.Errorf("rfp repository: list open %w", err)
	}

	return rfps, nil
}

// Update обновляет изменяемые поля RFP.
func (r *RFPRepository) Update(ctx context.Context, rfp *models.RFP) error {
	query := `
		UPDATE rfps
		SET title = $1, description = $2, structured_data = $3, status = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		rfp.Title, rfp.Description, rfp.StructuredData, rfp.Status, rfp.ID,
	).Scan(&rfp.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRFPNotFound
		}
		return fmt.Errorf("rfp repository: update %w", err)
	}

	return nil
}

// UpdateStatus переводит RFP в новый статус.
func (r *RFPRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE rfps SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("rfp repository: update status %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rfp repository: update status rows affected %w", err)
	}
	if rowsAffected == 0 {
		return ErrRFPNotFound
	}

	return nil
}

// Delete удаляет RFP вместе со связанными предложениями (ON DELETE CASCADE).
func (r *RFPRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM rfps WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("rfp repository: delete %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rfp repository: delete rows affected %w", err)
	}
	if rowsAffected == 0 {
		return ErrRFPNotFound
	}

	return nil
}

// AppendVendor привязывает поставщика к RFP. Повторная привязка не ошибка.
func (r *RFPRepository) AppendVendor(ctx context.Context, rfpID, vendorID uuid.UUID) error {
	query := `
		INSERT INTO rfp_vendors (rfp_id, vendor_id)
		VALUES ($1, $2)
		ON CONFLICT (rfp_id, vendor_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, rfpID, vendorID); err != nil {
		return fmt.Errorf("rfp repository: append vendor %w", err)
	}

	return nil
}

// AssociateVendors привязывает набор поставщиков к RFP в одной транзакции.
func (r *RFPRepository) AssociateVendors(ctx context.Context, rfpID uuid.UUID, vendorIDs []uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("rfp repository: associate vendors begin %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO rfp_vendors (rfp_id, vendor_id)
		VALUES ($1, $2)
		ON CONFLICT (rfp_id, vendor_id) DO NOTHING
	`
	for _, vendorID := range vendorIDs {
		if _, err := tx.ExecContext(ctx, query, rfpID, vendorID); err != nil {
			return fmt.Errorf("rfp repository: associate vendors %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("rfp repository: associate vendors commit %w", err)
	}

	return nil
}

// GetVendors возвращает поставщиков, привязанных к RFP.
func (r *RFPRepository) GetVendors(ctx context.Context, rfpID uuid.UUID) ([]models.Vendor, error) {
	query := `
		SELECT v.id, v.name, v.company, v.email, v.phone, v.address, v.notes, v.is_active, v.created_at, v.updated_at
		FROM vendors v
		INNER JOIN rfp_vendors rv ON v.id = rv.vendor_id
		WHERE rv.rfp_id = $1
		ORDER BY v.company ASC
	`

	var vendors []models.Vendor
	if err := r.db.SelectContext(ctx, &vendors, query, rfpID); err != nil {
		return nil, fmt.Errorf("rfp repository: get vendors %w", err)
	}

	return vendors, nil
}
