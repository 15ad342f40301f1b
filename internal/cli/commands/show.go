package commands

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"webGuide/internal/cli/ui"
	"webGuide/internal/database"
)

// ShowHandler показывает детали прогона и его шаги
type ShowHandler struct {
	repo *database.RunRepository
	log  *zap.Logger
}

func NewShowHandler(repo *database.RunRepository, log *zap.Logger) *ShowHandler {
	return &ShowHandler{repo: repo, log: log}
}

func (h *ShowHandler) Show(idStr string) {
	id, err := strconv.Atoi(idStr)
	if err != nil {
		fmt.Println(ui.ColorRed + ui.IconCross + " Неверный ID прогона" + ui.ColorReset)
		return
	}
	run, err := h.repo.GetRunByID(uint(id))
	if err != nil {
		fmt.Println(ui.ColorRed + ui.IconCross + " Прогон не найден" + ui.ColorReset)
		return
	}

	icon, color, text := ui.FormatStatus(run.Status)
	fmt.Println()
	fmt.Printf(ui.ColorBold+"Прогон #%d"+ui.ColorReset+" %s%s %s"+ui.ColorReset+"\n", run.ID, color, icon, text)
	fmt.Printf("  "+ui.ColorCyan+ui.IconDocument+ui.ColorReset+" %s\n", run.UserInput)
	if run.AppName != "" {
		fmt.Printf("  "+ui.ColorCyan+ui.IconGlobe+ui.ColorReset+" %s\n", run.AppName)
	}
	if run.FailReason != "" {
		fmt.Printf("  "+ui.ColorRed+ui.IconCross+ui.ColorReset+" Причина: %s\n", run.FailReason)
	}
	fmt.Printf("  "+ui.ColorGray+ui.IconTime+ui.ColorReset+" %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"))

	steps, err := h.repo.ListSteps(run.ID)
	if err != nil {
		h.log.Error("Ошибка чтения шагов", zap.Error(err))
		return
	}
	if len(steps) == 0 {
		fmt.Println()
		return
	}

	fmt.Println("\n  " + ui.ColorBold + "Шаги:" + ui.ColorReset)
	for _, s := range steps {
		reused := ""
		if s.Reused {
			reused = ui.ColorGray + " (повтор)" + ui.ColorReset
		}
		fmt.Printf("  %2d. %s '%s'%s → %s\n", s.StepNo, s.ActionType, s.Target, reused, s.Outcome)
		if s.DeltaSummary != "" {
			fmt.Printf("      "+ui.ColorGray+"%s"+ui.ColorReset+"\n", s.DeltaSummary)
		}
	}
	fmt.Println()
}

// Report выводит путь к сгенерированному отчету прогона
func (h *ShowHandler) Report(idStr string) {
	id, err := strconv.Atoi(idStr)
	if err != nil {
		fmt.Println(ui.ColorRed + ui.IconCross + " Неверный ID прогона" + ui.ColorReset)
		return
	}
	run, err := h.repo.GetRunByID(uint(id))
	if err != nil {
		fmt.Println(ui.ColorRed + ui.IconCross + " Прогон не найден" + ui.ColorReset)
		return
	}
	if run.ReportPath == "" {
		fmt.Println(ui.ColorYellow + ui.IconClock + " Отчет еще не сгенерирован" + ui.ColorReset)
		return
	}
	fmt.Printf(ui.ColorCyan+ui.IconBook+" Отчет:"+ui.ColorReset+" %s\n", run.ReportPath)
}
