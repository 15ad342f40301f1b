// Package sanitizer вычищает чувствительные данные из текста перед сохранением
// в базу (логи LLM, записи шагов). Применяется ко всем промптам и ответам модели.
package sanitizer

import (
	"regexp"
	"strings"
)

type DataSanitizer struct {
	rules []SanitizerRule
}

type SanitizerRule interface {
	Sanitize(text string) string
}

func New() *DataSanitizer {
	return &DataSanitizer{
		rules: []SanitizerRule{
			&PasswordSanitizer{},
			&TokenSanitizer{},
			&APIKeySanitizer{},
			&EmailSanitizer{},
		},
	}
}

func (s *DataSanitizer) Sanitize(text string) string {
	if text == "" {
		return text
	}

	result := text
	for _, rule := range s.rules {
		result = rule.Sanitize(result)
	}

	return result
}

// SanitizeValue фильтрует значения, которые агент вводит в поля страницы,
// перед записью в историю шагов.
func (s *DataSanitizer) SanitizeValue(value string) string {
	if value == "" {
		return value
	}

	if s.looksLikeSensitiveData(value) {
		return "[FILTERED]"
	}

	return s.Sanitize(value)
}

func (s *DataSanitizer) looksLikeSensitiveData(value string) bool {
	lower := strings.ToLower(value)

	sensitivePatterns := []string{
		"password", "пароль", "token", "secret", "session",
	}

	for _, pattern := range sensitivePatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}

	if len(value) > 20 && regexp.MustCompile(`^[a-zA-Z0-9_-]+$`).MatchString(value) {
		return true
	}

	return false
}
