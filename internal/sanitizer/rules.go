package sanitizer

import "regexp"

type PasswordSanitizer struct{}

func (s *PasswordSanitizer) Sanitize(text string) string {
	patterns := []*regexp.Regexp{
		regexp.MustCompile(`(?i)(password|passwd|пароль)\s*[:=]\s*["']?(\S+)["']?`),
		regexp.MustCompile(`(?i)(pwd)\s*[:=]\s*["']?(\S+)["']?`),
	}

	for _, pattern := range patterns {
		text = pattern.ReplaceAllString(text, `${1}: [FILTERED]`)
	}

	return text
}

type TokenSanitizer struct{}

func (s *TokenSanitizer) Sanitize(text string) string {
	patterns := []*regexp.Regexp{
		regexp.MustCompile(`(?i)(bearer)\s+([a-zA-Z0-9_\-.]{20,})`),
		regexp.MustCompile(`(?i)(token|jwt|session[_-]?id)\s*[:=]\s*["']?([a-zA-Z0-9_\-.]{16,})["']?`),
	}

	for _, pattern := range patterns {
		text = pattern.ReplaceAllString(text, `${1}: [FILTERED]`)
	}

	return text
}

type APIKeySanitizer struct{}

func (s *APIKeySanitizer) Sanitize(text string) string {
	patterns := []*regexp.Regexp{
		regexp.MustCompile(`(?i)(api[_-]?key|api[_-]?secret)\s*[:=]\s*["']?([a-zA-Z0-9_-]{20,})["']?`),
		regexp.MustCompile(`sk-[a-zA-Z0-9_-]{20,}`),
	}

	text = patterns[0].ReplaceAllString(text, `${1}: [FILTERED]`)
	text = patterns[1].ReplaceAllString(text, `[FILTERED]`)

	return text
}

type EmailSanitizer struct{}

func (s *EmailSanitizer) Sanitize(text string) string {
	pattern := regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	return pattern.ReplaceAllString(text, "[EMAIL]")
}
