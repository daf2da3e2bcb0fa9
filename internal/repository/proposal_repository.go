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

var (
	// ErrProposalNotFound возвращается, когда предложение не найдено.
	ErrProposalNotFound = errors.New("proposal not found")
	// ErrDuplicateProposal возвращается, когда поставщик уже подал
	// предложение на этот RFP.
	ErrDuplicateProposal = errors.New("proposal already submitted for this rfp")
)

// ProposalRepository отвечает за работу с таблицей proposals.
type ProposalRepository struct {
	db *sqlx.DB
}

// NewProposalRepository создаёт экземпляр репозитория.
func NewProposalRepository(db *sqlx.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

// Create сохраняет новое предложение. Уникальность пары (rfp_id, vendor_id)
// обеспечивает ограничение в БД.
func (r *ProposalRepository) Create(ctx context.Context, proposal *models.Proposal) error {
	query := `
		INSERT INTO proposals (rfp_id, vendor_id, email_subject, email_body, email_received_at, parsed_data, ai_extracted, ai_confidence, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		proposal.RFPID, proposal.VendorID,
		proposal.EmailSubject, proposal.EmailBody, proposal.EmailReceivedAt,
		proposal.ParsedData, proposal.AIExtracted, proposal.AIConfidence, proposal.Status,
	).Scan(&proposal.ID, &proposal.CreatedAt, &proposal.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateProposal
		}
		return fmt.Errorf("proposal repository: create %w", err)
	}

	return nil
}

// GetByID возвращает предложение по идентификатору вместе с поставщиком.
func (r *ProposalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	var proposal models.Proposal
	query := `
		SELECT id, rfp_id, vendor_id, email_subject, email_body, email_received_at, parsed_data, ai_extracted, ai_confidence, status, created_at, updated_at
		FROM proposals
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &proposal, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProposalNotFound
		}
		return nil, fmt.Errorf("proposal repository: get by id %w", err)
	}

	if err := r.attachVendor(ctx, &proposal); err != nil {
		return nil, err
	}

	return &proposal, nil
}

// ListByRFP возвращает предложения по RFP в порядке поступления.
// Стабильный порядок по created_at фиксирует разрешение ничьих при
// ранжировании. При excludeRejected отклонённые предложения опускаются.
func (r *ProposalRepository) ListByRFP(ctx context.Context, rfpID uuid.UUID, excludeRejected bool) ([]models.Proposal, error) {
	query := `
		SELECT id, rfp_id, vendor_id, email_subject, email_body, email_received_at, parsed_data, ai_extracted, ai_confidence, status, created_at, updated_at
		FROM proposals
		WHERE rfp_id = $1
	`
	args := []interface{}{rfpID}
	if excludeRejected {
		query += ` AND status != $2`
		args = append(args, models.ProposalStatusRejected)
	}
	query += ` ORDER BY created_at ASC`

	var proposals []models.Proposal
	if err := r.db.SelectContext(ctx, &proposals, query, args...); err != nil {
		return nil, fmt.Errorf("proposal repository: list by rfp %w", err)
	}

	for i := range proposals {
		if err := r.attachVendor(ctx, &proposals[i]); err != nil {
			return nil, err
		}
	}

	return proposals, nil
}

// Update обновляет изменяемые поля предложения.
func (r *ProposalRepository) Update(ctx context.Context, proposal *models.Proposal) error {
	query := `
		UPDATE proposals
		SET parsed_data = $1, ai_extracted = $2, ai_confidence = $3, status = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		proposal.ParsedData, proposal.AIExtracted, proposal.AIConfidence, proposal.Status, proposal.ID,
	).Scan(&proposal.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProposalNotFound
		}
		return fmt.Errorf("proposal repository: update %w", err)
	}

	return nil
}

// UpdateStatus переводит предложение в новый статус.
func (r *ProposalRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE proposals SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("proposal repository: update status %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("proposal repository: update status rows affected %w", err)
	}
	if rowsAffected == 0 {
		return ErrProposalNotFound
	}

	return nil
}

// Delete удаляет предложение.
func (r *ProposalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM proposals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("proposal repository: delete %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("proposal repository: delete rows affected %w", err)
	}
	if rowsAffected == 0 {
		return ErrProposalNotFound
	}

	return nil
}

func (r *ProposalRepository) attachVendor(ctx context.Context, proposal *models.Proposal) error {
	var vendor models.Vendor
	query := `
		SELECT id, name, company, email, phone, address, notes, is_active, created_at, updated_at
		FROM vendors
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &vendor, query, proposal.VendorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("proposal repository: attach vendor %w", err)
	}

	proposal.Vendor = &vendor
	return nil
}
