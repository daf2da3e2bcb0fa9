package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RFPItem описывает одну позицию закупки.
type RFPItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Specs    string `json:"specs"`
}

// RFPData — структурированные данные запроса, извлечённые AI из свободного текста.
type RFPData struct {
	Title        string    `json:"title"`
	Summary      string    `json:"summary"`
	Budget       float64   `json:"budget"`
	Currency     string    `json:"currency"`
	DeliveryDays int       `json:"delivery_days"`
	Items        []RFPItem `json:"items"`
	PaymentTerms string    `json:"payment_terms"`
	Warranty     string    `json:"warranty"`
}

// Value сериализует структурированные данные в JSONB.
func (d RFPData) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan читает структурированные данные из JSONB.
func (d *RFPData) Scan(src interface{}) error {
	if src == nil {
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("rfp data: ожидался []byte, получен %T", src)
	}
	return json.Unmarshal(b, d)
}

// RFP описывает запрос предложений (Request for Proposal).
// Description хранит исходный текст пользователя, StructuredData — результат извлечения.
type RFP struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Title          string    `db:"title" json:"title"`
	Description    string    `db:"description" json:"description"`
	StructuredData RFPData   `db:"structured_data" json:"structuredData"`
	Status         string    `db:"status" json:"status"`
	ReferenceID    string    `db:"reference_id" json:"referenceId"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
	Vendors        []Vendor  `json:"vendors,omitempty"`
}
