package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rishikarathore0601/rfp/internal/models"
)

func templateRFP() *models.RFP {
	return &models.RFP{
		Title:       "Office Laptops",
		Description: "Нужно 20 ноутбуков",
		ReferenceID: "RFP-1712000000000-abc123def",
		Status:      models.RFPStatusDraft,
		StructuredData: models.RFPData{
			Title:        "Office Laptops",
			Summary:      "Procurement of 20 laptops for the office.",
			Budget:       50000,
			Currency:     "USD",
			DeliveryDays: 30,
			Items: []models.RFPItem{
				{Name: "Laptop", Quantity: 20, Specs: "16GB RAM, 512GB SSD"},
				{Name: "Docking station", Quantity: 20},
			},
			PaymentTerms: "Net 30",
			Warranty:     "2 years",
		},
	}
}

func TestBuildRFPEmail_ContainsReferenceBlock(t *testing.T) {
	body := BuildRFPEmail(templateRFP())

	assert.Contains(t, body, "REFERENCE ID: RFP-1712000000000-abc123def")
	assert.Contains(t, body, "(Please include this reference ID in your response)")
}

func TestBuildRFPEmail_NumbersItems(t *testing.T) {
	body := BuildRFPEmail(templateRFP())

	assert.Contains(t, body, "1. Laptop - Quantity: 20 (16GB RAM, 512GB SSD)")
	assert.Contains(t, body, "2. Docking station - Quantity: 20")
	// У позиции без характеристик скобки не печатаются.
	assert.NotContains(t, body, "Docking station - Quantity: 20 (")
}

func TestBuildRFPEmail_CommercialTerms(t *testing.T) {
	body := BuildRFPEmail(templateRFP())

	assert.Contains(t, body, "BUDGET: USD 50000.00")
	assert.Contains(t, body, "DELIVERY TIMEFRAME: 30 days")
	assert.Contains(t, body, "PAYMENT TERMS: Net 30")
	assert.Contains(t, body, "WARRANTY REQUIREMENTS: 2 years")
}

func TestBuildRFPEmail_FallsBackToDescription(t *testing.T) {
	rfp := templateRFP()
	rfp.StructuredData.Summary = ""

	body := BuildRFPEmail(rfp)
	assert.Contains(t, body, rfp.Description)
}

func TestRFPSubject_PrefersStructuredTitle(t *testing.T) {
	rfp := templateRFP()
	rfp.Title = "fallback title"
	require.Equal(t, "Request for Proposal - Office Laptops", rfpSubject(rfp))

	rfp.StructuredData.Title = ""
	require.Equal(t, "Request for Proposal - fallback title", rfpSubject(rfp))
}
