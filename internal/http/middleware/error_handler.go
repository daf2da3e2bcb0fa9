package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Rishikarathore0601/rfp/internal/ai"
	"github.com/Rishikarathore0601/rfp/internal/extract"
	"github.com/Rishikarathore0601/rfp/internal/logger"
	"github.com/Rishikarathore0601/rfp/internal/repository"
	"github.com/Rishikarathore0601/rfp/internal/service"
)

// ErrorHandler обрабатывает ошибки централизованно.
// Маскирует внутренние ошибки и возвращает понятные сообщения клиенту.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Проверяем, не был ли уже отправлен ответ
		if c.Writer.Written() {
			return
		}

		if len(c.Errors) > 0 {
			err := c.Errors.Last()

			statusCode, message := classifyError(err.Err)

			if logger.Log != nil {
				logger.Log.WithFields(logrus.Fields{
					"error":  err.Error(),
					"path":   c.Request.URL.Path,
					"method": c.Request.Method,
				}).Error("Request error")
			}

			c.JSON(statusCode, gin.H{"error": message})
		}
	}
}

// classifyError переводит доменные ошибки в статус и сообщение для клиента.
func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrRFPNotFound):
		return http.StatusNotFound, "RFP not found"
	case errors.Is(err, repository.ErrVendorNotFound):
		return http.StatusNotFound, "Vendor not found"
	case errors.Is(err, repository.ErrProposalNotFound):
		return http.StatusNotFound, "Proposal not found"
	case errors.Is(err, repository.ErrVendorEmailTaken):
		return http.StatusBadRequest, "Email already exists"
	case errors.Is(err, repository.ErrDuplicateProposal):
		return http.StatusBadRequest, "Proposal from this vendor already exists for this RFP"
	case errors.Is(err, service.ErrNoProposals):
		return http.StatusNotFound, "No proposals found for this RFP"
	case errors.Is(err, service.ErrNoVendors):
		return http.StatusNotFound, "No active vendors found"
	}

	// Сбои генерации: пайплайн исчерпал попытки либо модель недоступна.
	var pipelineErr *extract.PipelineError
	if errors.As(err, &pipelineErr) {
		if extract.IsValidation(pipelineErr.Cause) {
			return http.StatusUnprocessableEntity, pipelineErr.Cause.Error()
		}
		return http.StatusBadGateway, "AI extraction failed, please try again"
	}
	if ai.IsUpstream(err) {
		return http.StatusBadGateway, "AI model is unavailable"
	}

	// Прочие ошибки с безопасным текстом отдаём как есть.
	if msg := err.Error(); msg != "" && !containsInternalKeywords(msg) {
		statusCode := http.StatusInternalServerError
		if contains(msg, "валидации") || contains(msg, "invalid") || contains(msg, "required") {
			statusCode = http.StatusBadRequest
		}
		return statusCode, msg
	}

	return http.StatusInternalServerError, "внутренняя ошибка сервера"
}

// containsInternalKeywords проверяет, содержит ли строка ключевые слова внутренних ошибок.
func containsInternalKeywords(s string) bool {
	keywords := []string{
		"sql:",
		"database",
		"connection",
		"timeout",
		"internal",
		"panic",
		"runtime",
	}

	for _, keyword := range keywords {
		if contains(s, keyword) {
			return true
		}
	}
	return false
}

// contains проверяет, содержит ли строка подстроку (case-insensitive).
func contains(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
