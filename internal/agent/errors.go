package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Ошибки шага поглощаются циклом и попадают в запись шага; терминальные
// ошибки переводят прогон в FAILED с сохранением всех записей.
var (
	ErrElementNotFound = errors.New("элемент не найден")
	ErrActionFailed    = errors.New("действие не выполнено")
	ErrLoginTimeout    = errors.New("пользователь не выполнил вход за отведенное время")
	ErrMaxSteps        = errors.New("превышен лимит шагов")
)

type ErrorType int

const (
	ErrorTypeTemporary ErrorType = iota
	ErrorTypeCritical
	ErrorTypeRetryable
)

func (e ErrorType) String() string {
	switch e {
	case ErrorTypeTemporary:
		return "temporary"
	case ErrorTypeCritical:
		return "critical"
	case ErrorTypeRetryable:
		return "retryable"
	default:
		return "unknown"
	}
}

func classifyError(err error) ErrorType {
	if err == nil {
		return ErrorTypeTemporary
	}

	if errors.Is(err, ErrElementNotFound) || errors.Is(err, ErrActionFailed) {
		return ErrorTypeTemporary
	}
	if errors.Is(err, ErrLoginTimeout) || errors.Is(err, ErrMaxSteps) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrorTypeCritical
	}

	errStr := err.Error()
	if strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "network") ||
		strings.Contains(errStr, "connection") {
		return ErrorTypeRetryable
	}

	return ErrorTypeTemporary
}

func retryAction(ctx context.Context, maxRetries int, delay time.Duration, fn func() error) error {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err
		if classifyError(err) == ErrorTypeCritical {
			return err
		}
	}

	return fmt.Errorf("после %d попыток: %w", maxRetries, lastErr)
}
