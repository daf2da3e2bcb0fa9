package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRFPObject() map[string]interface{} {
	return map[string]interface{}{
		"title":         "Office Laptops",
		"summary":       "Procurement of 20 laptops for the office.",
		"budget":        float64(50000),
		"currency":      "EUR",
		"delivery_days": float64(30),
		"items": []interface{}{
			map[string]interface{}{"name": "Laptop", "quantity": float64(20), "specs": "16GB RAM"},
		},
		"payment_terms": "Net 30",
		"warranty":      "2 years",
	}
}

func TestValidateRFP_Valid(t *testing.T) {
	data, err := ValidateRFP(validRFPObject())
	require.NoError(t, err)

	assert.Equal(t, "Office Laptops", data.Title)
	assert.Equal(t, "EUR", data.Currency)
	assert.Equal(t, float64(50000), data.Budget)
	assert.Equal(t, 30, data.DeliveryDays)
	require.Len(t, data.Items, 1)
	assert.Equal(t, "Laptop", data.Items[0].Name)
	assert.Equal(t, 20, data.Items[0].Quantity)
	assert.Equal(t, "16GB RAM", data.Items[0].Specs)
}

func TestValidateRFP_Defaults(t *testing.T) {
	obj := validRFPObject()
	delete(obj, "currency")
	items := obj["items"].([]interface{})
	delete(items[0].(map[string]interface{}), "specs")

	data, err := ValidateRFP(obj)
	require.NoError(t, err)

	assert.Equal(t, "USD", data.Currency)
	assert.Equal(t, "", data.Items[0].Specs)
}

func TestValidateRFP_AggregatesViolations(t *testing.T) {
	obj := map[string]interface{}{
		"budget":        float64(-5),
		"delivery_days": float64(2.5),
		"items":         []interface{}{},
	}

	_, err := ValidateRFP(obj)
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	paths := make(map[string]string)
	for _, v := range validationErr.Violations {
		paths[v.Path] = v.Message
	}

	assert.Equal(t, "Title is required", paths["title"])
	assert.Equal(t, "Summary is required", paths["summary"])
	assert.Equal(t, "Budget must be a positive number", paths["budget"])
	assert.Equal(t, "Delivery days must be a positive integer", paths["delivery_days"])
	assert.Equal(t, "At least one item is required", paths["items"])
	assert.Equal(t, "Payment terms are required", paths["payment_terms"])
	assert.Equal(t, "Warranty information is required", paths["warranty"])
}

func TestValidateRFP_ItemViolationPaths(t *testing.T) {
	obj := validRFPObject()
	obj["items"] = []interface{}{
		map[string]interface{}{"name": "Laptop", "quantity": float64(20)},
		map[string]interface{}{"quantity": float64(0)},
	}

	_, err := ValidateRFP(obj)
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	paths := make(map[string]string)
	for _, v := range validationErr.Violations {
		paths[v.Path] = v.Message
	}

	assert.Equal(t, "Item name is required", paths["items.1.name"])
	assert.Equal(t, "Quantity must be a positive integer", paths["items.1.quantity"])
	assert.NotContains(t, paths, "items.0.name")
}

func TestValidateRFP_RepeatedValidationStable(t *testing.T) {
	// Повторная валидация того же объекта даёт тот же результат:
	// валидатор не мутирует вход.
	obj := validRFPObject()

	first, err := ValidateRFP(obj)
	require.NoError(t, err)
	second, err := ValidateRFP(obj)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestValidateProposal_Lenient(t *testing.T) {
	obj := map[string]interface{}{
		"totalPrice":   "70000",
		"currency":     "USD",
		"deliveryDays": float64(50),
		"paymentTerms": "Net 45",
		"warranty":     "1 year",
		"itemPrices": []interface{}{
			map[string]interface{}{"itemName": "Laptop", "unitPrice": float64(3500), "quantity": float64(20), "totalPrice": float64(70000)},
			"garbage entry is skipped",
		},
		"additionalNotes": nil,
	}

	data, err := ValidateProposal(obj)
	require.NoError(t, err)

	require.NotNil(t, data.TotalPrice)
	assert.Equal(t, float64(70000), *data.TotalPrice)
	require.NotNil(t, data.DeliveryDays)
	assert.Equal(t, float64(50), *data.DeliveryDays)
	assert.Equal(t, "Net 45", data.PaymentTerms)
	assert.Equal(t, "", data.AdditionalNotes)
	require.Len(t, data.ItemPrices, 1)
	assert.Equal(t, "Laptop", data.ItemPrices[0].ItemName)
}

func TestValidateProposal_MissingFieldsAreNull(t *testing.T) {
	data, err := ValidateProposal(map[string]interface{}{})
	require.NoError(t, err)

	assert.Nil(t, data.TotalPrice)
	assert.Nil(t, data.DeliveryDays)
	assert.Empty(t, data.ItemPrices)
}

func TestValidateProposal_NilObject(t *testing.T) {
	_, err := ValidateProposal(nil)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}
