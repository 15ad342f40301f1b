package agent

import (
	"fmt"
	"strings"
)

// HistoryEntry - одно выполненное действие в истории прогона.
type HistoryEntry struct {
	Step    int
	Action  string
	Target  string
	Value   string
	Outcome string
}

// History - append-only история действий. Принадлежит циклу; модель читает
// ее текстовое представление как контекст следующего промпта.
type History struct {
	entries []HistoryEntry
}

func NewHistory() *History {
	return &History{}
}

func (h *History) Append(entry HistoryEntry) {
	h.entries = append(h.entries, entry)
}

func (h *History) Len() int {
	return len(h.entries)
}

const historyCharLimit = 2000

// Format строит контекст для промпта: последние 10 действий, а когда
// полная история перерастает лимит символов - сжатая сводка из последних 5.
// Переполнение меряется по полной истории, не по окну из 10 записей.
func (h *History) Format() string {
	if len(h.entries) == 0 {
		return "Starting fresh."
	}

	if len(h.format(len(h.entries), false)) > historyCharLimit {
		return h.format(5, true)
	}
	return h.format(10, false)
}

func (h *History) format(last int, compact bool) string {
	var b strings.Builder
	b.WriteString("What I did in previous steps:")

	start := len(h.entries) - last
	if start < 0 {
		start = 0
	}
	for _, e := range h.entries[start:] {
		b.WriteString("\n")
		switch {
		case compact:
			fmt.Fprintf(&b, "  Step %d: %s '%s' → %s", e.Step, strings.ToUpper(e.Action), e.Target, e.Outcome)
		case e.Action == "fill" && e.Value != "":
			fmt.Fprintf(&b, "  Step %d: Filled '%s' with '%s' → %s", e.Step, e.Target, e.Value, e.Outcome)
		default:
			fmt.Fprintf(&b, "  Step %d: Clicked '%s' → %s", e.Step, e.Target, e.Outcome)
		}
	}
	if compact {
		fmt.Fprintf(&b, "\n(Summary: Completed %d total actions)", len(h.entries))
	}
	return b.String()
}
