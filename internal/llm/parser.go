package llm

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoJSON возвращается, когда в ответе модели не найден ни один корректный
// JSON-объект. Цикл агента трактует это как временный сбой с одним повтором.
var ErrNoJSON = errors.New("в ответе модели не найден JSON")

// ErrDecisionParse возвращается, когда ответ модели не удалось превратить
// в валидное решение: нет JSON, неизвестное событие или пустая цель действия.
var ErrDecisionParse = errors.New("некорректное решение модели")

// ExtractJSON извлекает первый корректный JSON-объект из текста ответа.
// Модель может оборачивать JSON в рассуждения или markdown-блоки - сканируем
// по глубине скобок и проверяем каждого кандидата, предпочитая самый длинный.
func ExtractJSON(text string) (string, error) {
	t := strings.TrimSpace(text)
	if t == "" {
		return "", ErrNoJSON
	}

	var candidates []string
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i, ch := range t {
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start >= 0 {
					candidates = append(candidates, t[start:i+1])
					start = -1
				}
			}
		}
	}

	var best string
	for _, candidate := range candidates {
		if !json.Valid([]byte(candidate)) {
			continue
		}
		if len(candidate) > len(best) {
			best = candidate
		}
	}
	if best == "" {
		return "", ErrNoJSON
	}
	return best, nil
}

// decodeInto извлекает JSON из ответа модели и декодирует его в dst.
func decodeInto(text string, dst any) error {
	raw, err := ExtractJSON(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return ErrNoJSON
	}
	return nil
}
