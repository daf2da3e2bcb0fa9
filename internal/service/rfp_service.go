package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/Rishikarathore0601/rfp/internal/logger"
	"github.com/Rishikarathore0601/rfp/internal/mail"
	"github.com/Rishikarathore0601/rfp/internal/models"
	"github.com/Rishikarathore0601/rfp/internal/repository"
)

// ErrNoVendors возвращается, когда для рассылки не нашлось ни одного
// активного поставщика.
var ErrNoVendors = errors.New("no active vendors to send to")

// RFPExtractor извлекает структурированный RFP из свободного текста.
type RFPExtractor interface {
	Extract(ctx context.Context, description string) (models.RFPData, error)
}

// RFPSender рассылает письмо с RFP набору поставщиков.
type RFPSender interface {
	SendRFPToVendors(rfp *models.RFP, vendors []models.Vendor) *mail.SendReport
}

// RFPStore — операции хранилища, нужные сервису RFP.
type RFPStore interface {
	Create(ctx context.Context, rfp *models.RFP) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.RFP, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	AssociateVendors(ctx context.Context, rfpID uuid.UUID, vendorIDs []uuid.UUID) error
}

// VendorLister — операции хранилища поставщиков, нужные сервису RFP.
type VendorLister interface {
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Vendor, error)
}

// RFPService управляет жизненным циклом RFP: генерация из свободного
// текста, рассылка поставщикам, смена статусов.
type RFPService struct {
	rfps      RFPStore
	vendors   VendorLister
	extractor RFPExtractor
	sender    RFPSender
}

// NewRFPService создаёт сервис RFP.
func NewRFPService(rfps RFPStore, vendors VendorLister, extractor RFPExtractor, sender RFPSender) *RFPService {
	return &RFPService{
		rfps:      rfps,
		vendors:   vendors,
		extractor: extractor,
		sender:    sender,
	}
}

// CreateFromDescription извлекает структурированный RFP из описания
// пользователя и сохраняет его в статусе DRAFT со свежим ссылочным токеном.
func (s *RFPService) CreateFromDescription(ctx context.Context, description string) (*models.RFP, error) {
	data, err := s.extractor.Extract(ctx, description)
	if err != nil {
		return nil, err
	}

	rfp := &models.RFP{
		Title:          data.Title,
		Description:    description,
		StructuredData: data,
		Status:         models.RFPStatusDraft,
		ReferenceID:    newReferenceID(),
	}

	if err := s.rfps.Create(ctx, rfp); err != nil {
		return nil, err
	}

	if logger.Log != nil {
		logger.Log.WithField("rfp_id", rfp.ID).WithField("reference_id", rfp.ReferenceID).Info("rfp: создан из описания")
	}

	return rfp, nil
}

// SendToVendors рассылает RFP выбранным поставщикам. Успешно доставленные
// поставщики привязываются к RFP, сам RFP переводится в статус SENT.
// Частичный сбой рассылки не откатывает успешные доставки.
func (s *RFPService) SendToVendors(ctx context.Context, rfpID uuid.UUID, vendorIDs []uuid.UUID) (*mail.SendReport, error) {
	rfp, err := s.rfps.GetByID(ctx, rfpID)
	if err != nil {
		return nil, err
	}

	vendors, err := s.vendors.ListByIDs(ctx, vendorIDs)
	if err != nil {
		return nil, err
	}
	if len(vendors) == 0 {
		return nil, ErrNoVendors
	}

	report := s.sender.SendRFPToVendors(rfp, vendors)

	if len(report.Sent) > 0 {
		sentIDs := make([]uuid.UUID, 0, len(report.Sent))
		for _, delivery := range report.Sent {
			id, err := uuid.Parse(delivery.VendorID)
			if err != nil {
				continue
			}
			sentIDs = append(sentIDs, id)
		}

		if err := s.rfps.AssociateVendors(ctx, rfpID, sentIDs); err != nil {
			return nil, err
		}
		if err := s.rfps.UpdateStatus(ctx, rfpID, models.RFPStatusSent); err != nil {
			return nil, err
		}
	}

	return report, nil
}

// IsNotFound сообщает, является ли ошибка отсутствием записи в хранилище.
func IsNotFound(err error) bool {
	return errors.Is(err, repository.ErrRFPNotFound) ||
		errors.Is(err, repository.ErrVendorNotFound) ||
		errors.Is(err, repository.ErrProposalNotFound)
}

const referenceAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// newReferenceID выдаёт токен вида RFP-<unix millis>-<9 случайных символов>.
// Токен вставляется в письмо и служит ключом сопоставления входящих ответов.
func newReferenceID() string {
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = referenceAlphabet[rand.IntN(len(referenceAlphabet))]
	}
	return fmt.Sprintf("RFP-%d-%s", time.Now().UnixMilli(), suffix)
}
