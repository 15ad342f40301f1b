package agent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"webGuide/internal/browser"
	"webGuide/internal/capture"
	"webGuide/internal/database"
	"webGuide/internal/inspector"
	"webGuide/internal/llm"
	"webGuide/internal/taskparse"
)

// Статусы прогона, разделяемые с базой и журналом захвата.
const (
	StatusRunning = "running"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// Коды причин провала для колонки fail_reason.
const (
	ReasonMaxSteps       = "max_steps"
	ReasonLoginTimeout   = "login_timeout"
	ReasonDecisionParse  = "decision_parse"
	ReasonDecisionFailed = "decision_failed"
	ReasonCanceled       = "canceled"
	ReasonNavigation     = "navigation"
)

// Run ведет прогон задачи от навигации до терминального состояния.
// Всегда завершается либо готовым отчетом, либо FAILED с сохраненными
// записями всех пройденных шагов.
func (a *Agent) Run(ctx context.Context, task *taskparse.Task, userInput string) (*RunResult, error) {
	a.createRun(task, userInput)

	result := a.run(ctx, task)

	report, ferr := a.recorder.Finalize(result.State.String())
	if ferr != nil {
		a.log.Warn("Не удалось сгенерировать отчет", zap.Error(ferr))
	} else {
		result.ReportPath = report
	}
	a.finishRun(result)

	return result, result.Err
}

func (a *Agent) run(ctx context.Context, task *taskparse.Task) *RunResult {
	a.state = StateInit
	a.log.Info("Прогон начат",
		a.runFields(zap.String("app", task.App), zap.String("url", task.StartURL))...)

	err := retryAction(ctx, 2, 2*time.Second, func() error {
		return a.driver.Navigate(ctx, task.StartURL)
	})
	if err != nil {
		return a.fail(0, ReasonNavigation, fmt.Errorf("навигация на %s: %w", task.StartURL, err))
	}

	if err := a.waitForLogin(ctx); err != nil {
		return a.fail(0, ReasonLoginTimeout, err)
	}

	return a.iterate(ctx, task)
}

// waitForLogin проверяет признаки входа и при необходимости передает
// управление человеку, опрашивая страницу до успеха или таймаута.
// Сначала дешевая DOM-проверка; к модели идем только если она неубедительна.
func (a *Agent) waitForLogin(ctx context.Context) error {
	needsLogin, err := a.loginRequired(ctx)
	if err != nil {
		return err
	}
	if !needsLogin {
		return nil
	}

	a.state = StateLoginWait
	a.log.Info("Требуется вход. Ожидание ручного входа пользователя", a.runFields()...)

	deadline := time.Now().Add(a.cfg.LoginMaxWait)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(a.cfg.LoginPollInterval):
		}

		probe, err := a.driver.ProbeLogin(ctx)
		if err != nil {
			continue
		}
		if !probe.LoginRequired() {
			a.log.Info("Вход выполнен, продолжаем", a.runFields()...)
			return nil
		}
	}

	return ErrLoginTimeout
}

func (a *Agent) loginRequired(ctx context.Context) (bool, error) {
	probe, err := a.driver.ProbeLogin(ctx)
	if err != nil {
		return false, fmt.Errorf("проверка признаков входа: %w", err)
	}
	if !probe.Inconclusive() {
		return probe.LoginRequired(), nil
	}

	// Неубедительно - решает модель по скриншоту
	shot, err := a.driver.Screenshot(ctx)
	if err != nil {
		return false, fmt.Errorf("скриншот для проверки входа: %w", err)
	}
	check, err := a.decider.DetectLogin(ctx, shot, a.runID)
	if err != nil {
		// При недоступности модели считаем, что вход выполнен,
		// чтобы не блокировать прогон ложным срабатыванием
		a.log.Warn("Проверка входа моделью не удалась", a.runFields(zap.Error(err))...)
		return false, nil
	}
	return check.IsLoginPage, nil
}

func (a *Agent) iterate(ctx context.Context, task *taskparse.Task) *RunResult {
	a.state = StateIterating

	var (
		prevShot     []byte
		prevSnap     *inspector.Snapshot
		prevDecision *llm.Decision
		prevGoalOpen bool // Предыдущая проверка цели сказала "не достигнута"
		reusedLast   bool
		lastDelta    inspector.Delta
	)

	for step := 1; step <= a.cfg.MaxSteps; step++ {
		if err := ctx.Err(); err != nil {
			return a.fail(step-1, ReasonCanceled, err)
		}

		shot, err := a.driver.Screenshot(ctx)
		if err != nil {
			return a.fail(step-1, ReasonNavigation, fmt.Errorf("скриншот шага %d: %w", step, err))
		}
		snap, err := a.driver.Snapshot(ctx)
		if err != nil {
			return a.fail(step-1, ReasonNavigation, fmt.Errorf("снимок шага %d: %w", step, err))
		}

		// Стагнация: страница не изменилась, а цель еще не достигнута -
		// переиспользуем прошлое решение вместо нового запроса к модели.
		// Никогда два раза подряд, иначе замерзший цикл станет вечным.
		reused := false
		decision := (*llm.Decision)(nil)
		if !reusedLast && prevDecision != nil && prevGoalOpen && a.stagnated(prevShot, shot, prevSnap, snap) {
			decision = prevDecision
			reused = true
			a.log.Info("Стагнация: переиспользуем прошлое решение",
				a.runFields(zap.Int("step", step), zap.String("target", decision.Text))...)
		}

		goal, err := a.decider.CheckGoal(ctx, shot, task.ActionHint, a.history.Format(), a.runID)
		if err != nil {
			a.log.Warn("Проверка цели не удалась", a.runFields(zap.Int("step", step), zap.Error(err))...)
			goal = &llm.GoalCheck{}
		}
		if goal.Completed {
			return a.done(ctx, a.history.Len(), shot)
		}
		prevGoalOpen = true

		if !reused {
			decision, err = a.nextDecision(ctx, shot, snap, task, lastDelta)
			if err != nil {
				return a.fail(a.history.Len(), decisionFailReason(ctx, err), err)
			}
		}

		if decision.Complete() {
			return a.done(ctx, a.history.Len(), shot)
		}

		outcome := a.perform(ctx, decision, snap, lastDelta)

		_, delta, serr := a.afterAction(ctx, snap)
		if serr != nil {
			if ctx.Err() != nil {
				return a.fail(step-1, ReasonCanceled, ctx.Err())
			}
			a.log.Warn("Не удалось захватить состояние после действия",
				a.runFields(zap.Int("step", step), zap.Error(serr))...)
			delta = inspector.Delta{}
		}

		a.recordStep(step, decision, reused, outcome, delta, shot)

		a.history.Append(HistoryEntry{
			Step:    step,
			Action:  decision.Event,
			Target:  decision.Text,
			Value:   a.sanitize.SanitizeValue(decision.Value),
			Outcome: outcome,
		})

		prevShot, prevSnap, prevDecision = shot, snap, decision
		reusedLast = reused
		lastDelta = delta
	}

	return a.fail(a.history.Len(), ReasonMaxSteps, ErrMaxSteps)
}

// stagnated - скриншот попиксельно совпал либо снимок структурно не изменился.
func (a *Agent) stagnated(prevShot, shot []byte, prevSnap, snap *inspector.Snapshot) bool {
	if len(prevShot) > 0 && bytes.Equal(prevShot, shot) {
		return true
	}
	return prevSnap != nil && snap != nil && prevSnap.StructurallyEqual(snap)
}

// decisionFailReason различает нечитаемый ответ модели и отказ самого
// клиента (сеть, отмена) в коде причины провала.
func decisionFailReason(ctx context.Context, err error) string {
	switch {
	case ctx.Err() != nil:
		return ReasonCanceled
	case errors.Is(err, llm.ErrDecisionParse) || errors.Is(err, llm.ErrNoJSON):
		return ReasonDecisionParse
	default:
		return ReasonDecisionFailed
	}
}

// nextDecision запрашивает следующее действие. Нечитаемый ответ модели
// повторяется один раз немедленно, после чего прогон проваливается.
// Когда новых элементов нет, модель получает полный список элементов снимка.
func (a *Agent) nextDecision(ctx context.Context, shot []byte, snap *inspector.Snapshot, task *taskparse.Task, delta inspector.Delta) (*llm.Decision, error) {
	newElements := delta.FormatAppeared(25)
	if newElements == "" {
		newElements = "Interactive elements on the page:\n" + snap.FormatForPrompt(30)
	}

	decision, err := a.decider.NextAction(ctx, shot, task.ActionHint, a.history.Format(), newElements, a.runID)
	if err == nil {
		return decision, nil
	}
	if !errors.Is(err, llm.ErrDecisionParse) && !errors.Is(err, llm.ErrNoJSON) {
		return nil, err
	}

	a.log.Warn("Нечитаемое решение модели, повторный запрос", a.runFields(zap.Error(err))...)
	decision, err = a.decider.NextAction(ctx, shot, task.ActionHint, a.history.Format(), newElements, a.runID)
	if err != nil {
		return nil, fmt.Errorf("повторный запрос решения: %w", err)
	}
	return decision, nil
}

// perform разрешает цель решения в элемент снимка и выполняет действие.
// Действие идет по координатам разрешенного дескриптора: повторный поиск
// по тексту в живом DOM потерял бы выбор резолвера, когда старый и
// появившийся элементы носят одну метку. Поиск по тексту остается
// запасным путем для элементов без геометрии.
// Ошибки шага не прерывают прогон - они попадают в запись шага и историю.
func (a *Agent) perform(ctx context.Context, decision *llm.Decision, snap *inspector.Snapshot, delta inspector.Delta) string {
	el, err := Resolve(decision.Text, snap, delta)
	if err != nil {
		a.log.Warn("Элемент не найден", a.runFields(zap.String("target", decision.Text))...)
		return "not found"
	}

	target := el.BestLabel()

	switch decision.Event {
	case llm.EventClick:
		var click *browser.ClickResult
		if el.Bounds.Empty() {
			click, err = a.driver.ClickByText(ctx, target)
		} else {
			x, y := el.Bounds.Center()
			click, err = a.driver.ClickAt(ctx, x, y)
		}
		if err != nil {
			a.log.Warn("Клик не выполнен", a.runFields(zap.String("target", target), zap.Error(err))...)
			return fmt.Sprintf("failed - %v", firstN(err.Error(), 80))
		}
		a.log.Info("Клик выполнен",
			a.runFields(zap.String("target", target), zap.String("clicked", click.Text))...)
		return "success"

	case llm.EventFill:
		if !el.Fillable() {
			a.log.Warn("Элемент не является полем ввода", a.runFields(zap.String("target", target))...)
			return "failed - not a fillable field"
		}
		value := decision.Value
		if value == "" {
			value = a.cfg.DefaultFillValue
		}
		if el.Bounds.Empty() {
			err = a.driver.FillByLabel(ctx, target, value)
		} else {
			x, y := el.Bounds.Center()
			err = a.driver.FillAt(ctx, x, y, value)
		}
		if err != nil {
			a.log.Warn("Заполнение не выполнено", a.runFields(zap.String("target", target), zap.Error(err))...)
			return fmt.Sprintf("failed - %v", firstN(err.Error(), 80))
		}
		a.log.Info("Поле заполнено",
			a.runFields(zap.String("target", target), zap.String("value", value))...)
		return "success"

	default:
		return fmt.Sprintf("failed - unknown event %q", decision.Event)
	}
}

// recordStep сохраняет шаг в журнал захвата и базу. Введенное значение
// проходит через санитайзер: пароли и токены не должны попадать в отчеты.
func (a *Agent) recordStep(step int, decision *llm.Decision, reused bool, outcome string, delta inspector.Delta, shot []byte) {
	safeValue := a.sanitize.SanitizeValue(decision.Value)
	rec := capture.StepRecord{
		Step:         step,
		Action:       decision.Event,
		Target:       decision.Text,
		Value:        safeValue,
		Outcome:      outcome,
		DeltaSummary: delta.Summary(),
		URL:          a.driver.CurrentURL(),
		Timestamp:    time.Now(),
	}

	shotPath, err := a.recorder.SaveStep(rec, shot)
	if err != nil {
		a.log.Warn("Не удалось сохранить запись шага", a.runFields(zap.Int("step", step), zap.Error(err))...)
	}

	if a.repo != nil && a.runID != nil {
		dbStep := &database.RunStep{
			RunID:          *a.runID,
			StepNo:         step,
			ActionType:     decision.Event,
			Target:         decision.Text,
			Value:          safeValue,
			Reused:         reused,
			Outcome:        outcome,
			DeltaSummary:   delta.Summary(),
			ScreenshotPath: shotPath,
		}
		if err := a.repo.CreateStep(dbStep); err != nil {
			a.log.Warn("Не удалось сохранить шаг в базу", a.runFields(zap.Int("step", step), zap.Error(err))...)
		}
	}
}

func (a *Agent) done(ctx context.Context, steps int, lastShot []byte) *RunResult {
	a.state = StateDone

	finalShot, err := a.driver.Screenshot(ctx)
	if err != nil {
		finalShot = lastShot
	}
	if _, err := a.recorder.SaveFinal(finalShot); err != nil {
		a.log.Warn("Не удалось сохранить итоговый скриншот", a.runFields(zap.Error(err))...)
	}

	summary := fmt.Sprintf("Цель достигнута за %d шагов", steps)
	a.log.Info("Прогон завершен", a.runFields(zap.Int("steps", steps))...)

	return &RunResult{State: StateDone, Steps: steps, Summary: summary}
}

func (a *Agent) fail(steps int, reason string, err error) *RunResult {
	a.state = StateFailed
	a.log.Error("Прогон провален",
		a.runFields(zap.Int("steps", steps), zap.String("reason", reason), zap.Error(err))...)

	return &RunResult{
		State:   StateFailed,
		Steps:   steps,
		Summary: reason,
		Err:     err,
	}
}

func (a *Agent) createRun(task *taskparse.Task, userInput string) {
	if a.repo == nil {
		return
	}
	if a.runID != nil {
		if err := a.repo.UpdateRunStatus(*a.runID, StatusRunning, "", ""); err != nil {
			a.log.Warn("Не удалось перевести прогон в running", a.runFields(zap.Error(err))...)
		}
		if err := a.repo.SetRunTask(*a.runID, task.App, task.Slug); err != nil {
			a.log.Warn("Не удалось сохранить задачу прогона", a.runFields(zap.Error(err))...)
		}
		return
	}
	run := &database.Run{
		UserInput: userInput,
		AppName:   task.App,
		TaskSlug:  task.Slug,
		Status:    StatusRunning,
	}
	if err := a.repo.CreateRun(run); err != nil {
		a.log.Warn("Не удалось создать запись прогона", zap.Error(err))
		return
	}
	a.runID = &run.ID
}

func (a *Agent) finishRun(result *RunResult) {
	if a.repo == nil || a.runID == nil {
		return
	}

	status := StatusDone
	failReason := ""
	if result.State != StateDone {
		status = StatusFailed
		failReason = result.Summary
	}
	if err := a.repo.UpdateRunStatus(*a.runID, status, failReason, result.Summary); err != nil {
		a.log.Warn("Не удалось обновить статус прогона", a.runFields(zap.Error(err))...)
	}
	if result.ReportPath != "" {
		if err := a.repo.SetRunReport(*a.runID, result.ReportPath); err != nil {
			a.log.Warn("Не удалось сохранить путь отчета", a.runFields(zap.Error(err))...)
		}
	}
}

func (a *Agent) runFields(fields ...zap.Field) []zap.Field {
	result := make([]zap.Field, 0, len(fields)+1)
	if a.runID != nil {
		result = append(result, zap.Uint("run_id", *a.runID))
	}
	result = append(result, fields...)
	return result
}

func firstN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
