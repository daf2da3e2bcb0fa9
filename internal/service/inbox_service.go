package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Rishikarathore0601/rfp/internal/logger"
	"github.com/Rishikarathore0601/rfp/internal/mail"
	"github.com/Rishikarathore0601/rfp/internal/models"
	"github.com/Rishikarathore0601/rfp/internal/repository"
)

// InboxError — ошибка обработки одного письма, не прервавшая проход.
type InboxError struct {
	Subject string `json:"subject"`
	Error   string `json:"error"`
}

// InboxReport — итог одного прохода сверки почтового ящика.
type InboxReport struct {
	Processed int          `json:"processed"`
	Errors    []InboxError `json:"errors"`
}

// MailboxClient — IMAP-сессия с точки зрения сверки ящика.
type MailboxClient interface {
	ListUnseen(subjectFilter string) ([]mail.Message, error)
	MarkSeen(uid uint32) error
	Close() error
}

// MailboxDialer открывает новую IMAP-сессию для каждого прохода.
type MailboxDialer func() (MailboxClient, error)

// ProposalExtractor извлекает данные предложения из текста письма.
type ProposalExtractor interface {
	Extract(ctx context.Context, emailBody string, rfp *models.RFP) (models.ProposalData, error)
}

// InboxRFPStore — операции с RFP, нужные сверке ящика.
type InboxRFPStore interface {
	ListOpen(ctx context.Context) ([]models.RFP, error)
	AppendVendor(ctx context.Context, rfpID, vendorID uuid.UUID) error
}

// InboxVendorStore — операции с поставщиками, нужные сверке ящика.
type InboxVendorStore interface {
	GetByEmail(ctx context.Context, email string) (*models.Vendor, error)
	Create(ctx context.Context, vendor *models.Vendor) error
}

// InboxProposalStore — операции с предложениями, нужные сверке ящика.
type InboxProposalStore interface {
	Create(ctx context.Context, proposal *models.Proposal) error
}

// InboxService сверяет входящий ящик с открытыми RFP: находит письма со
// ссылочным токеном, извлекает из них предложения и сохраняет их.
// Письмо помечается прочитанным только после успешного сохранения,
// поэтому сбойные письма будут обработаны повторно на следующем проходе.
type InboxService struct {
	mu sync.Mutex

	dial          MailboxDialer
	rfps          InboxRFPStore
	vendors       InboxVendorStore
	proposals     InboxProposalStore
	extractor     ProposalExtractor
	subjectFilter string
	autoCreate    bool
	now           func() time.Time
}

// NewInboxService создаёт сервис сверки ящика.
func NewInboxService(
	dial MailboxDialer,
	rfps InboxRFPStore,
	vendors InboxVendorStore,
	proposals InboxProposalStore,
	extractor ProposalExtractor,
	subjectFilter string,
	autoCreate bool,
) *InboxService {
	return &InboxService{
		dial:          dial,
		rfps:          rfps,
		vendors:       vendors,
		proposals:     proposals,
		extractor:     extractor,
		subjectFilter: subjectFilter,
		autoCreate:    autoCreate,
		now:           time.Now,
	}
}

// CheckInbox выполняет один проход сверки. Проходы сериализуются:
// параллельный вызов ждёт завершения текущего, чтобы два прохода не
// обработали одно письмо дважды.
func (s *InboxService) CheckInbox(ctx context.Context) (*InboxReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := &InboxReport{Errors: []InboxError{}}

	mailbox, err := s.dial()
	if err != nil {
		return nil, err
	}
	defer mailbox.Close()

	messages, err := mailbox.ListUnseen(s.subjectFilter)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return report, nil
	}

	if logger.Log != nil {
		logger.Log.WithField("count", len(messages)).Info("inbox: найдены непрочитанные письма")
	}

	openRFPs, err := s.rfps.ListOpen(ctx)
	if err != nil {
		return nil, err
	}

	for _, msg := range messages {
		processed, err := s.processMessage(ctx, mailbox, msg, openRFPs)
		if err != nil {
			report.Errors = append(report.Errors, InboxError{Subject: msg.Subject, Error: err.Error()})
			if logger.Log != nil {
				logger.Log.WithError(err).WithField("subject", msg.Subject).Error("inbox: письмо не обработано")
			}
			continue
		}
		if processed {
			report.Processed++
		}
	}

	return report, nil
}

// processMessage обрабатывает одно письмо. Письмо без ссылочного токена —
// не сбой: оно молча пропускается и остаётся непрочитанным.
func (s *InboxService) processMessage(ctx context.Context, mailbox MailboxClient, msg mail.Message, openRFPs []models.RFP) (bool, error) {
	matched := matchReference(msg, openRFPs)
	if matched == nil {
		if logger.Log != nil {
			logger.Log.WithField("subject", msg.Subject).Debug("inbox: ссылочный токен не найден, пропускаем")
		}
		return false, nil
	}

	vendor, err := s.resolveVendor(ctx, msg)
	if err != nil {
		return false, err
	}

	data, err := s.extractor.Extract(ctx, msg.Body, matched)
	if err != nil {
		return false, err
	}

	receivedAt := s.now()
	proposal := &models.Proposal{
		RFPID:           matched.ID,
		VendorID:        vendor.ID,
		EmailSubject:    &msg.Subject,
		EmailBody:       &msg.Body,
		EmailReceivedAt: &receivedAt,
		ParsedData:      data,
		AIExtracted:     true,
		Status:          models.ProposalStatusParsed,
	}
	if err := s.proposals.Create(ctx, proposal); err != nil {
		return false, err
	}

	if err := s.rfps.AppendVendor(ctx, matched.ID, vendor.ID); err != nil {
		return false, err
	}

	if logger.Log != nil {
		logger.Log.WithField("proposal_id", proposal.ID).WithField("rfp_id", matched.ID).Info("inbox: предложение сохранено")
	}

	if err := mailbox.MarkSeen(msg.UID); err != nil {
		return false, err
	}

	return true, nil
}

// matchReference ищет ссылочный токен открытого RFP в теме или теле письма.
func matchReference(msg mail.Message, openRFPs []models.RFP) *models.RFP {
	for i := range openRFPs {
		ref := openRFPs[i].ReferenceID
		if ref == "" {
			continue
		}
		if strings.Contains(msg.Subject, ref) || strings.Contains(msg.Body, ref) {
			return &openRFPs[i]
		}
	}
	return nil
}

// resolveVendor находит поставщика по адресу отправителя. Неизвестный
// отправитель заводится автоматически, если политика это разрешает.
func (s *InboxService) resolveVendor(ctx context.Context, msg mail.Message) (*models.Vendor, error) {
	vendor, err := s.vendors.GetByEmail(ctx, msg.FromAddress)
	if err == nil {
		return vendor, nil
	}
	if !errors.Is(err, repository.ErrVendorNotFound) {
		return nil, err
	}
	if !s.autoCreate {
		return nil, errors.New("unknown sender: " + msg.FromAddress)
	}

	name := msg.FromName
	if name == "" {
		if at := strings.Index(msg.FromAddress, "@"); at > 0 {
			name = msg.FromAddress[:at]
		} else {
			name = msg.FromAddress
		}
	}

	created := &models.Vendor{
		Name:     name,
		Company:  name + " (Auto-created)",
		Email:    msg.FromAddress,
		Notes:    "Auto-created from incoming email",
		IsActive: true,
	}
	if err := s.vendors.Create(ctx, created); err != nil {
		// Гонка двух писем от одного отправителя: запись уже есть.
		if errors.Is(err, repository.ErrVendorEmailTaken) {
			return s.vendors.GetByEmail(ctx, msg.FromAddress)
		}
		return nil, err
	}

	if logger.Log != nil {
		logger.Log.WithField("vendor", created.Email).Info("inbox: поставщик заведён автоматически")
	}

	return created, nil
}
