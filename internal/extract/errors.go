package extract

import (
	"errors"
	"fmt"
	"strings"
)

// ExtractionError означает, что в очищенном тексте не нашлось
// корректного JSON-объекта.
type ExtractionError struct {
	Reason string
	Cause  error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extract: %s: %v", e.Reason, e.Cause)
	}
	return "extract: " + e.Reason
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// Violation — одно нарушение схемы: путь до поля через точку и сообщение.
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError агрегирует все нарушения схемы за один проход.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Path+": "+v.Message)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// PipelineError оборачивает последнюю причину после исчерпания ретраев.
type PipelineError struct {
	Attempts int
	Cause    error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("extract: все %d попыток генерации исчерпаны: %v", e.Attempts, e.Cause)
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// IsValidation сообщает, является ли ошибка ошибкой валидации схемы.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
