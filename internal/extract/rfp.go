package extract

import (
	"context"
	"fmt"

	"github.com/Rishikarathore0601/rfp/internal/models"
)

// RFPExtractor превращает свободное описание закупки в строго
// валидированную структуру RFP.
type RFPExtractor struct {
	pipeline *Pipeline
}

// NewRFPExtractor создаёт экстрактор поверх шлюза генеративной модели.
func NewRFPExtractor(gen Generator) *RFPExtractor {
	return &RFPExtractor{pipeline: NewPipeline(gen)}
}

// NewRFPExtractorWithPipeline используется в тестах с подменённым пайплайном.
func NewRFPExtractorWithPipeline(p *Pipeline) *RFPExtractor {
	return &RFPExtractor{pipeline: p}
}

// Extract запускает пайплайн для свободного текста пользователя.
func (e *RFPExtractor) Extract(ctx context.Context, description string) (models.RFPData, error) {
	prompt := buildRFPPrompt(description)
	return Run(ctx, e.pipeline, prompt, ValidateRFP)
}

// buildRFPPrompt встраивает описание и целевую схему в промпт.
func buildRFPPrompt(description string) string {
	return fmt.Sprintf(`Convert this request into a valid JSON RFP.
IMPORTANT: You MUST include ALL fields in the schema. Do not skip any.

SCHEMA:
{
  "title": "Clear concise title",
  "summary": "2-3 sentence overview",
  "budget": 1000,
  "currency": "USD",
  "delivery_days": 14,
  "items": [{ "name": "Item Name", "quantity": 1, "specs": "Technical specs" }],
  "payment_terms": "e.g. Net 30",
  "warranty": "e.g. 1 Year"
}

REQUEST:
%s

Return ONLY the JSON object.`, description)
}
