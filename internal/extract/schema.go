package extract

import (
	"fmt"
	"math"

	"github.com/Rishikarathore0601/rfp/internal/models"
)

// ValidateRFP проверяет извлечённый объект по строгой схеме RFP и
// возвращает типизированную структуру. Все нарушения собираются за один
// проход — вызывающий код видит полный список, а не первое поле.
//
// Правила: title и summary непустые; budget > 0; delivery_days —
// положительное целое; items непустой, в каждой позиции непустое name и
// положительное целое quantity (specs опционально, по умолчанию "");
// payment_terms и warranty непустые; currency по умолчанию "USD".
func ValidateRFP(obj map[string]interface{}) (models.RFPData, error) {
	var data models.RFPData
	var violations []Violation

	addViolation := func(path, message string) {
		violations = append(violations, Violation{Path: path, Message: message})
	}

	data.Title = requireString(obj, "title", "Title is required", addViolation)
	data.Summary = requireString(obj, "summary", "Summary is required", addViolation)

	if budget, ok := asNumber(obj["budget"]); ok && budget > 0 {
		data.Budget = budget
	} else {
		addViolation("budget", "Budget must be a positive number")
	}

	// currency опциональна, но если указана — должна быть непустой строкой
	if raw, present := obj["currency"]; !present || raw == nil {
		data.Currency = "USD"
	} else if s, ok := raw.(string); ok && s != "" {
		data.Currency = s
	} else {
		addViolation("currency", "Currency is required")
	}

	if days, ok := asPositiveInt(obj["delivery_days"]); ok {
		data.DeliveryDays = days
	} else {
		addViolation("delivery_days", "Delivery days must be a positive integer")
	}

	items, ok := obj["items"].([]interface{})
	if !ok || len(items) == 0 {
		addViolation("items", "At least one item is required")
	} else {
		data.Items = make([]models.RFPItem, 0, len(items))
		for i, rawItem := range items {
			itemObj, ok := rawItem.(map[string]interface{})
			if !ok {
				addViolation(fmt.Sprintf("items.%d", i), "Item must be an object")
				continue
			}

			var item models.RFPItem
			if name, ok := itemObj["name"].(string); ok && name != "" {
				item.Name = name
			} else {
				addViolation(fmt.Sprintf("items.%d.name", i), "Item name is required")
			}
			if qty, ok := asPositiveInt(itemObj["quantity"]); ok {
				item.Quantity = qty
			} else {
				addViolation(fmt.Sprintf("items.%d.quantity", i), "Quantity must be a positive integer")
			}
			if specs, ok := itemObj["specs"].(string); ok {
				item.Specs = specs
			}

			data.Items = append(data.Items, item)
		}
	}

	data.PaymentTerms = requireString(obj, "payment_terms", "Payment terms are required", addViolation)
	data.Warranty = requireString(obj, "warranty", "Warranty information is required", addViolation)

	if len(violations) > 0 {
		return models.RFPData{}, &ValidationError{Violations: violations}
	}

	return data, nil
}

// ValidateProposal проверяет только общую форму: извлечённое значение
// должно быть непустым объектом. Глубже типы не проверяются — данные
// предложения трактуются как коммерческий текст "как есть", в отличие
// от RFP, который является строгим контрактом для поставщиков.
func ValidateProposal(obj map[string]interface{}) (models.ProposalData, error) {
	if obj == nil {
		return models.ProposalData{}, &ValidationError{Violations: []Violation{
			{Path: "", Message: "Proposal must be a non-null object"},
		}}
	}

	var data models.ProposalData
	data.TotalPrice = asNumberPtr(obj["totalPrice"])
	data.Currency = asStringLenient(obj["currency"])
	data.DeliveryDays = asNumberPtr(obj["deliveryDays"])
	data.PaymentTerms = asStringLenient(obj["paymentTerms"])
	data.Warranty = asStringLenient(obj["warranty"])
	data.AdditionalNotes = asStringLenient(obj["additionalNotes"])

	if rawItems, ok := obj["itemPrices"].([]interface{}); ok {
		for _, rawItem := range rawItems {
			itemObj, ok := rawItem.(map[string]interface{})
			if !ok {
				continue
			}
			data.ItemPrices = append(data.ItemPrices, models.ItemPrice{
				ItemName:   asStringLenient(itemObj["itemName"]),
				UnitPrice:  asNumberPtr(itemObj["unitPrice"]),
				Quantity:   asNumberPtr(itemObj["quantity"]),
				TotalPrice: asNumberPtr(itemObj["totalPrice"]),
			})
		}
	}

	return data, nil
}

func requireString(obj map[string]interface{}, key, message string, add func(string, string)) string {
	if s, ok := obj[key].(string); ok && s != "" {
		return s
	}
	add(key, message)
	return ""
}

func asNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

func asPositiveInt(v interface{}) (int, bool) {
	n, ok := asNumber(v)
	if !ok || n <= 0 || n != math.Trunc(n) {
		return 0, false
	}
	return int(n), true
}

// asNumberPtr снисходительно приводит значение к числу: модель иногда
// отвечает числом в строке.
func asNumberPtr(v interface{}) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case string:
		var parsed float64
		if _, err := fmt.Sscanf(n, "%f", &parsed); err == nil {
			return &parsed
		}
	}
	return nil
}

// asStringLenient приводит значение к строке, не считая ошибкой другой тип.
func asStringLenient(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return fmt.Sprintf("%v", s)
	}
	return ""
}
