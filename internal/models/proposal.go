package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ItemPrice — построчная расшифровка цен из письма поставщика.
type ItemPrice struct {
	ItemName   string   `json:"itemName"`
	UnitPrice  *float64 `json:"unitPrice"`
	Quantity   *float64 `json:"quantity"`
	TotalPrice *float64 `json:"totalPrice"`
}

// ProposalData — данные предложения, извлечённые AI из письма.
// Все поля опциональны: письмо поставщика может не содержать часть информации.
type ProposalData struct {
	TotalPrice      *float64    `json:"totalPrice"`
	Currency        string      `json:"currency"`
	DeliveryDays    *float64    `json:"deliveryDays"`
	PaymentTerms    string      `json:"paymentTerms"`
	Warranty        string      `json:"warranty"`
	ItemPrices      []ItemPrice `json:"itemPrices"`
	AdditionalNotes string      `json:"additionalNotes"`
}

// Value сериализует данные предложения в JSONB.
func (d ProposalData) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan читает данные предложения из JSONB.
func (d *ProposalData) Scan(src interface{}) error {
	if src == nil {
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("proposal data: ожидался []byte, получен %T", src)
	}
	return json.Unmarshal(b, d)
}

// Proposal представляет предложение поставщика на конкретный RFP.
// Пара (RFPID, VendorID) уникальна — повторное предложение от того же
// поставщика отклоняется на уровне хранилища.
type Proposal struct {
	ID              uuid.UUID    `db:"id" json:"id"`
	RFPID           uuid.UUID    `db:"rfp_id" json:"rfpId"`
	VendorID        uuid.UUID    `db:"vendor_id" json:"vendorId"`
	EmailSubject    *string      `db:"email_subject" json:"emailSubject,omitempty"`
	EmailBody       *string      `db:"email_body" json:"emailBody,omitempty"`
	EmailReceivedAt *time.Time   `db:"email_received_at" json:"emailReceivedAt,omitempty"`
	ParsedData      ProposalData `db:"parsed_data" json:"parsedData"`
	AIExtracted     bool         `db:"ai_extracted" json:"aiExtracted"`
	AIConfidence    *float64     `db:"ai_confidence" json:"aiConfidence,omitempty"`
	Status          string       `db:"status" json:"status"`
	CreatedAt       time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at" json:"updated_at"`
	Vendor          *Vendor      `json:"vendor,omitempty"`
}
