package extract

import (
	"context"
	"time"

	"github.com/Rishikarathore0601/rfp/internal/logger"
)

const (
	// MaxAttempts — число попыток генерации, включая первую.
	MaxAttempts = 3
	// BaseDelay — базовая задержка перед повтором, растёт экспоненциально:
	// 1s перед второй попыткой, 2s перед третьей.
	BaseDelay = time.Second
)

// Generator — единственная операция шлюза генеративной модели.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// SleepFunc — кооперативная пауза между попытками. В тестах подменяется,
// чтобы не спать по-настоящему.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Pipeline выполняет цикл генерация → починка → извлечение JSON →
// валидация с ограниченным числом повторов и экспоненциальным бэкоффом.
// Повтор безусловный: неисправимый сбой апстрима и исправимый мусор в
// выводе модели не различаются, итоговая ошибка фатальна для запроса.
type Pipeline struct {
	gen         Generator
	maxAttempts int
	baseDelay   time.Duration
	sleep       SleepFunc
}

// NewPipeline создаёт пайплайн с боевыми параметрами ретраев.
func NewPipeline(gen Generator) *Pipeline {
	return &Pipeline{
		gen:         gen,
		maxAttempts: MaxAttempts,
		baseDelay:   BaseDelay,
		sleep:       sleepContext,
	}
}

// NewPipelineWithPolicy создаёт пайплайн с явной политикой ретраев.
// Используется в тестах для подмены задержек.
func NewPipelineWithPolicy(gen Generator, maxAttempts int, baseDelay time.Duration, sleep SleepFunc) *Pipeline {
	if maxAttempts <= 0 {
		maxAttempts = MaxAttempts
	}
	if sleep == nil {
		sleep = sleepContext
	}
	return &Pipeline{
		gen:         gen,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		sleep:       sleep,
	}
}

// Run выполняет пайплайн: validate получает извлечённый объект и
// возвращает типизированный результат либо ошибку валидации.
func Run[T any](ctx context.Context, p *Pipeline, prompt string, validate func(map[string]interface{}) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		result, err := runOnce(ctx, p, prompt, validate)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if logger.Log != nil {
			logger.Log.WithField("attempt", attempt).WithError(err).Warn("extract: попытка генерации не удалась")
		}

		if attempt < p.maxAttempts {
			delay := p.baseDelay * (1 << (attempt - 1))
			if sleepErr := p.sleep(ctx, delay); sleepErr != nil {
				return zero, &PipelineError{Attempts: attempt, Cause: sleepErr}
			}
		}
	}

	return zero, &PipelineError{Attempts: p.maxAttempts, Cause: lastErr}
}

func runOnce[T any](ctx context.Context, p *Pipeline, prompt string, validate func(map[string]interface{}) (T, error)) (T, error) {
	var zero T

	raw, err := p.gen.Generate(ctx, prompt)
	if err != nil {
		return zero, err
	}

	obj, err := FirstJSONObject(Repair(raw))
	if err != nil {
		return zero, err
	}

	return validate(obj)
}

// sleepContext ждёт d, не блокируя другие запросы и уважая отмену контекста.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
