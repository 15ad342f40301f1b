package commands

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"webGuide/internal/cli/ui"
	"webGuide/internal/database"
)

// LogsHandler показывает LLM логи прогона
type LogsHandler struct {
	repo *database.RunRepository
	log  *zap.Logger
}

func NewLogsHandler(repo *database.RunRepository, log *zap.Logger) *LogsHandler {
	return &LogsHandler{repo: repo, log: log}
}

func (h *LogsHandler) Show(idStr string) {
	id, err := strconv.Atoi(idStr)
	if err != nil {
		fmt.Println(ui.ColorRed + ui.IconCross + " Неверный ID прогона" + ui.ColorReset)
		return
	}

	logs, err := h.repo.ListLLMLogs(uint(id), 50)
	if err != nil {
		h.log.Error("Ошибка чтения LLM логов", zap.Error(err))
		fmt.Println(ui.ColorRed + ui.IconCross + " Ошибка чтения логов" + ui.ColorReset)
		return
	}
	if len(logs) == 0 {
		fmt.Println(ui.ColorYellow + ui.IconClock + " Логов пока нет" + ui.ColorReset)
		return
	}

	for _, l := range logs {
		fmt.Printf("\n"+ui.ColorBold+"[%s]"+ui.ColorReset+" %s "+ui.ColorGray+"(%d токенов)"+ui.ColorReset+"\n",
			l.PromptKind, l.CreatedAt.Format("15:04:05"), l.TokensUsed)
		fmt.Printf("  "+ui.ColorGray+"→ %s"+ui.ColorReset+"\n", truncate(l.ResponseText, 200))
	}
	fmt.Println()
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
