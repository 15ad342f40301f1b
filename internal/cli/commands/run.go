package commands

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"webGuide/internal/cli/ui"
	"webGuide/internal/database"
	"webGuide/internal/runner"
)

// RunHandler обрабатывает команды, связанные с прогонами задач
type RunHandler struct {
	repo   *database.RunRepository
	runner *runner.Runner
	log    *zap.Logger
}

func NewRunHandler(repo *database.RunRepository, r *runner.Runner, log *zap.Logger) *RunHandler {
	return &RunHandler{
		repo:   repo,
		runner: r,
		log:    log,
	}
}

// Create создает новый прогон
func (h *RunHandler) Create(userInput string) {
	run := database.Run{UserInput: userInput, Status: "pending"}
	if err := h.repo.CreateRun(&run); err != nil {
		h.log.Error("Ошибка создания прогона", zap.Error(err))
		fmt.Printf(ui.ColorRed+ui.IconCross+" Ошибка:"+ui.ColorReset+" %v\n", err)
		return
	}
	fmt.Printf(ui.ColorGreen+ui.IconCheckmark+" Создан прогон #%d"+ui.ColorReset+"\n", run.ID)
}

// List выводит список всех прогонов
func (h *RunHandler) List() {
	runs, err := h.repo.ListRuns(50, 0)
	if err != nil {
		h.log.Error("Ошибка чтения прогонов", zap.Error(err))
		fmt.Println(ui.ColorRed + ui.IconCross + " Ошибка чтения прогонов" + ui.ColorReset)
		return
	}
	fmt.Println("\n" + ui.ColorBold + ui.IconList + " Прогоны:" + ui.ColorReset)
	fmt.Println()
	for _, r := range runs {
		icon, color, text := ui.FormatStatus(r.Status)
		fmt.Printf("  "+ui.ColorBold+"#%d"+ui.ColorReset+" %s%s %s"+ui.ColorReset+"\n", r.ID, color, icon, text)
		fmt.Printf("  "+ui.ColorGray+"└─"+ui.ColorReset+" %s\n", r.UserInput)
		fmt.Println()
	}
}

// Run выполняет прогон
func (h *RunHandler) Run(ctx context.Context, idStr string) {
	if h.runner == nil {
		fmt.Println(ui.ColorRed + ui.IconCross + " Агент не инициализирован (нет ключа OpenAI)" + ui.ColorReset)
		return
	}
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

	fmt.Printf(ui.ColorCyan+ui.IconPlay+" Запуск прогона #%d:"+ui.ColorReset+" %s\n", run.ID, run.UserInput)
	result, err := h.runner.Execute(ctx, run.UserInput, &run.ID)
	if err != nil {
		fmt.Printf(ui.ColorRed+ui.IconCross+" Прогон провален:"+ui.ColorReset+" %v\n", err)
		return
	}
	fmt.Printf(ui.ColorGreen+ui.IconCheckmark+" Прогон завершен за %d шагов"+ui.ColorReset+"\n", result.Steps)
	if result.ReportPath != "" {
		fmt.Printf(ui.ColorCyan+ui.IconBook+" Отчет:"+ui.ColorReset+" %s\n", result.ReportPath)
	}
}
