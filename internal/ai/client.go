package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// UpstreamError означает, что генеративный сервис недоступен, вернул
// неуспешный статус или не уложился в таймаут. Клиент сам не делает
// повторов — политика ретраев принадлежит вызывающему коду.
type UpstreamError struct {
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("ai: код ответа %d", e.StatusCode)
	}
	return fmt.Sprintf("ai: запрос не выполнен: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsUpstream сообщает, относится ли ошибка к недоступности генеративного сервиса.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// Client выполняет запросы к Ollama (/api/generate).
// Один вызов — один промпт — один текстовый ответ, без ретраев и парсинга.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewClient создаёт экземпляр клиента. Таймаут должен быть большим:
// генерация медленными моделями занимает минуты.
func NewClient(baseURL, model string, timeout time.Duration) *Client {
	if model == "" {
		model = "llama3:latest"
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	return &Client{
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// generateRequest — тело запроса к /api/generate.
type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Format  string          `json:"format"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	// Минимальная температура: ответ идёт в строгий валидатор схемы,
	// поэтому просим максимально детерминированную генерацию.
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
	NumCtx      int     `json:"num_ctx"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate отправляет промпт и возвращает сырой текст ответа модели.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.baseURL == "" {
		return "", &UpstreamError{Err: fmt.Errorf("ai: baseURL не задан")}
	}

	payload := generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
		Format: "json",
		Options: generateOptions{
			Temperature: 0.1,
			NumPredict:  1000,
			NumCtx:      4096,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	url := strings.TrimSuffix(c.baseURL, "/") + "/api/generate"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &UpstreamError{StatusCode: resp.StatusCode}
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &UpstreamError{Err: fmt.Errorf("ai: не удалось разобрать ответ: %w", err)}
	}

	if result.Response == "" {
		return "", &UpstreamError{Err: fmt.Errorf("ai: пустой ответ")}
	}

	return result.Response, nil
}
