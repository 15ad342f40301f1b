package inspector

import (
	"fmt"
	"strings"
)

// Delta - множества элементов, появившихся и исчезнувших между двумя снимками.
// Ключ, присутствующий в обоих снимках, считается неизменным и не попадает
// ни в одно из множеств, поэтому Appeared и Disappeared не пересекаются.
type Delta struct {
	Appeared    []ElementDescriptor
	Disappeared []ElementDescriptor
}

func (d Delta) Empty() bool {
	return len(d.Appeared) == 0 && len(d.Disappeared) == 0
}

// Summary - короткая сводка для записи шага и промпта.
func (d Delta) Summary() string {
	if d.Empty() {
		return "Изменений не обнаружено"
	}
	return fmt.Sprintf("появилось: %d, исчезло: %d", len(d.Appeared), len(d.Disappeared))
}

// FormatAppeared перечисляет появившиеся элементы для промпта модели.
// limit ограничивает размер контекста.
func (d Delta) FormatAppeared(limit int) string {
	if len(d.Appeared) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("New elements that just appeared on the page:\n")
	n := 0
	for _, el := range d.Appeared {
		label := el.BestLabel()
		if label == "" {
			continue
		}
		fmt.Fprintf(&b, "- %s: %q\n", el.Kind, label)
		n++
		if n >= limit {
			break
		}
	}
	if rest := len(d.Appeared) - n; rest > 0 {
		fmt.Fprintf(&b, "... (еще %d)\n", rest)
	}
	return b.String()
}

// Diff сравнивает два снимка по структурным ключам.
// prior == nil трактуется как пустой снимок: все текущие элементы "появились".
func Diff(prior, current *Snapshot) Delta {
	if prior == nil {
		prior = EmptySnapshot()
	}
	if current == nil {
		current = EmptySnapshot()
	}

	var delta Delta
	for _, el := range current.Elements {
		if !prior.HasKey(el.Key) {
			delta.Appeared = append(delta.Appeared, el)
		}
	}
	for _, el := range prior.Elements {
		if !current.HasKey(el.Key) {
			delta.Disappeared = append(delta.Disappeared, el)
		}
	}
	return delta
}
