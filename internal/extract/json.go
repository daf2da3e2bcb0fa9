package extract

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fenceRe    = regexp.MustCompile("```(?:json)?\\s*")
	preambleRe = regexp.MustCompile(`(?i)^(Here's the JSON|Here is the JSON|JSON output|Output):\s*`)
)

// Repair чинит типичные дефекты вывода LLM: markdown-ограждения,
// пояснительные префиксы вида "Here is the JSON:", лишние пробелы.
// Повторный вызов на уже чистом тексте ничего не меняет.
func Repair(text string) string {
	cleaned := fenceRe.ReplaceAllString(text, "")
	cleaned = preambleRe.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}

// FirstJSONObject выделяет подстроку от первой '{' до последней '}' и
// разбирает её как JSON-объект. Правило намеренно жадное и наивное:
// фигурные скобки внутри строковых значений могут сломать разбор,
// тогда вернётся ExtractionError и пайплайн перегенерирует ответ.
func FirstJSONObject(text string) (map[string]interface{}, error) {
	firstBrace := strings.Index(text, "{")
	lastBrace := strings.LastIndex(text, "}")

	if firstBrace == -1 || lastBrace == -1 || lastBrace < firstBrace {
		return nil, &ExtractionError{Reason: "в ответе модели не найден JSON-объект"}
	}

	jsonStr := text[firstBrace : lastBrace+1]

	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(jsonStr), &obj); err != nil {
		return nil, &ExtractionError{Reason: "некорректная структура JSON", Cause: err}
	}

	return obj, nil
}
