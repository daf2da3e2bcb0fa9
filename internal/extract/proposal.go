package extract

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Rishikarathore0601/rfp/internal/models"
)

// ProposalExtractor извлекает коммерческие данные из письма поставщика.
// Контекстом служит исходный RFP: заголовок и список позиций помогают
// модели сопоставить цены с запрошенными товарами.
type ProposalExtractor struct {
	pipeline *Pipeline
}

// NewProposalExtractor создаёт экстрактор поверх шлюза генеративной модели.
func NewProposalExtractor(gen Generator) *ProposalExtractor {
	return &ProposalExtractor{pipeline: NewPipeline(gen)}
}

// NewProposalExtractorWithPipeline используется в тестах с подменённым пайплайном.
func NewProposalExtractorWithPipeline(p *Pipeline) *ProposalExtractor {
	return &ProposalExtractor{pipeline: p}
}

// Extract запускает пайплайн для текста письма поставщика.
func (e *ProposalExtractor) Extract(ctx context.Context, emailBody string, rfp *models.RFP) (models.ProposalData, error) {
	prompt := buildProposalPrompt(emailBody, rfp)
	return Run(ctx, e.pipeline, prompt, ValidateProposal)
}

func buildProposalPrompt(emailBody string, rfp *models.RFP) string {
	title := rfp.StructuredData.Title
	if title == "" {
		title = rfp.Title
	}

	itemsJSON, err := json.Marshal(rfp.StructuredData.Items)
	if err != nil {
		itemsJSON = []byte("[]")
	}

	return fmt.Sprintf(`You are an AI assistant that extracts structured data from vendor proposal emails.

CRITICAL RULES:
1. Return ONLY valid JSON - no explanations, no markdown, no extra text
2. Do NOT wrap in code blocks
3. Extract pricing, delivery, and terms information
4. If information is not found, use null

REQUIRED JSON SCHEMA:
{
  "totalPrice": number or null - total price quoted,
  "currency": "string" - currency code (USD, EUR, etc.),
  "deliveryDays": number or null - delivery timeframe in days,
  "paymentTerms": "string" - payment terms offered,
  "warranty": "string" - warranty information,
  "itemPrices": [
    {
      "itemName": "string",
      "unitPrice": number or null,
      "quantity": number or null,
      "totalPrice": number or null
    }
  ],
  "additionalNotes": "string" - any other important information
}

ORIGINAL RFP CONTEXT:
Title: %s
Items Requested: %s

VENDOR EMAIL:
%s

Extract the proposal data as JSON:`, title, itemsJSON, emailBody)
}
