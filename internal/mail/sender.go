package mail

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/Rishikarathore0601/rfp/internal/config"
	"github.com/Rishikarathore0601/rfp/internal/logger"
	"github.com/Rishikarathore0601/rfp/internal/models"
)

// Delivery — результат отправки письма одному поставщику.
type Delivery struct {
	VendorID   string `json:"vendorId"`
	VendorName string `json:"vendorName"`
	Email      string `json:"email"`
	Error      string `json:"error,omitempty"`
}

// SendReport — сводка рассылки RFP: кому ушло, кому не удалось.
type SendReport struct {
	Sent   []Delivery `json:"sent"`
	Failed []Delivery `json:"failed"`
}

// Sender отправляет письма через SMTP с аутентификацией по app-паролю.
type Sender struct {
	host     string
	port     string
	user     string
	password string
}

// NewSender создаёт отправителя из конфигурации приложения.
func NewSender(cfg *config.Config) *Sender {
	return &Sender{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.EmailUser,
		password: cfg.EmailAppPassword,
	}
}

// SendRFPToVendors рассылает письмо с RFP каждому поставщику по очереди.
// Сбой одной доставки не прерывает остальные.
func (s *Sender) SendRFPToVendors(rfp *models.RFP, vendors []models.Vendor) *SendReport {
	body := BuildRFPEmail(rfp)
	subject := rfpSubject(rfp)

	report := &SendReport{Sent: []Delivery{}, Failed: []Delivery{}}
	for _, vendor := range vendors {
		delivery := Delivery{
			VendorID:   vendor.ID.String(),
			VendorName: vendor.Name,
			Email:      vendor.Email,
		}

		if err := s.send(vendor.Email, subject, body); err != nil {
			delivery.Error = err.Error()
			report.Failed = append(report.Failed, delivery)
			if logger.Log != nil {
				logger.Log.WithError(err).WithField("vendor", vendor.Email).Error("mail: письмо не отправлено")
			}
			continue
		}

		report.Sent = append(report.Sent, delivery)
		if logger.Log != nil {
			logger.Log.WithField("vendor", vendor.Email).Info("mail: письмо отправлено")
		}
	}

	return report
}

// Verify проверяет доступность SMTP-сервера и корректность учётных данных.
func (s *Sender) Verify() error {
	addr := s.host + ":" + s.port

	c, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("mail: подключение к smtp %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			return fmt.Errorf("mail: starttls %w", err)
		}
	}

	if err := c.Auth(s.auth()); err != nil {
		return fmt.Errorf("mail: аутентификация %w", err)
	}

	return c.Quit()
}

func (s *Sender) send(to, subject, body string) error {
	headers := []string{
		"From: " + s.user,
		"To: " + to,
		"Subject: " + subject,
		"",
		body,
	}
	msg := []byte(strings.Join(headers, "\r\n") + "\r\n")

	addr := s.host + ":" + s.port
	if err := smtp.SendMail(addr, s.auth(), s.user, []string{to}, msg); err != nil {
		return fmt.Errorf("mail: send %w", err)
	}

	return nil
}

func (s *Sender) auth() smtp.Auth {
	return smtp.PlainAuth("", s.user, s.password, s.host)
}

func rfpSubject(rfp *models.RFP) string {
	title := rfp.StructuredData.Title
	if title == "" {
		title = rfp.Title
	}
	return "Request for Proposal - " + title
}

// BuildRFPEmail собирает текст письма с RFP. Блок REFERENCE ID обязателен:
// по этому токену входящие ответы сопоставляются с RFP при сверке ящика.
func BuildRFPEmail(rfp *models.RFP) string {
	data := rfp.StructuredData

	var itemsList strings.Builder
	for i, item := range data.Items {
		fmt.Fprintf(&itemsList, "%d. %s - Quantity: %d", i+1, item.Name, item.Quantity)
		if item.Specs != "" {
			fmt.Fprintf(&itemsList, " (%s)", item.Specs)
		}
		itemsList.WriteString("\n")
	}

	summary := data.Summary
	if summary == "" {
		summary = rfp.Description
	}

	return strings.TrimSpace(fmt.Sprintf(`Dear Vendor,

We are requesting proposals for the following procurement:

REFERENCE ID: %s
(Please include this reference ID in your response)

SUMMARY:
%s

ITEMS REQUIRED:
%s
BUDGET: %s %.2f
DELIVERY TIMEFRAME: %d days
PAYMENT TERMS: %s
WARRANTY REQUIREMENTS: %s

Please provide your proposal including:
1. Detailed pricing for each item
2. Total cost
3. Delivery timeline
4. Payment terms you can offer
5. Warranty information
6. Any additional terms or conditions

Please reply to this email with your proposal.

Best regards,
Procurement Team`,
		rfp.ReferenceID,
		summary,
		itemsList.String(),
		data.Currency,
		data.Budget,
		data.DeliveryDays,
		data.PaymentTerms,
		data.Warranty,
	))
}
