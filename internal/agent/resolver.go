package agent

import (
	"fmt"
	"strings"

	"webGuide/internal/inspector"
)

// Resolve сопоставляет текстовую подсказку модели с конкретным элементом
// снимка. Политика, первый успех побеждает:
//  1. точное совпадение метки среди появившихся элементов - только что
//     раскрытый UI (меню, попап) важнее старого;
//  2. точное совпадение в любом месте снимка;
//  3. подстрока без учета регистра среди появившихся;
//  4. подстрока в любом месте снимка.
//
// При равных кандидатах побеждает первый в порядке захвата.
func Resolve(hint string, snap *inspector.Snapshot, delta inspector.Delta) (*inspector.ElementDescriptor, error) {
	target := inspector.NormalizeLabel(hint)
	if target == "" {
		return nil, fmt.Errorf("%w: пустая подсказка", ErrElementNotFound)
	}

	if el := findExact(delta.Appeared, target); el != nil {
		return el, nil
	}
	if snap != nil {
		if el := findExact(snap.Elements, target); el != nil {
			return el, nil
		}
	}
	if el := findSubstring(delta.Appeared, target); el != nil {
		return el, nil
	}
	if snap != nil {
		if el := findSubstring(snap.Elements, target); el != nil {
			return el, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrElementNotFound, hint)
}

func findExact(elements []inspector.ElementDescriptor, target string) *inspector.ElementDescriptor {
	for i := range elements {
		if inspector.NormalizeLabel(elements[i].BestLabel()) == target {
			return &elements[i]
		}
	}
	return nil
}

func findSubstring(elements []inspector.ElementDescriptor, target string) *inspector.ElementDescriptor {
	for i := range elements {
		if strings.Contains(inspector.NormalizeLabel(elements[i].BestLabel()), target) {
			return &elements[i]
		}
	}
	return nil
}
