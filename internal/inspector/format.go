package inspector

import (
	"fmt"
	"strings"
)

// FormatForPrompt перечисляет элементы снимка по одному на строку ("kind: label"),
// ограничивая количество строк размером контекста модели.
func (s *Snapshot) FormatForPrompt(limit int) string {
	if s == nil || len(s.Elements) == 0 {
		return "No interactive elements detected."
	}

	var b strings.Builder
	n := 0
	for _, el := range s.Elements {
		label := el.BestLabel()
		if label == "" {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", el.Kind, label)
		n++
		if n >= limit {
			break
		}
	}
	if rest := len(s.Elements) - n; rest > 0 {
		fmt.Fprintf(&b, "... (еще %d элементов)\n", rest)
	}
	return b.String()
}
