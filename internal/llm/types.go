// Package llm предоставляет клиент vision-модели для принятия решений агентом.
// Три вида промптов: детекция страницы логина, проверка достижения цели и выбор
// следующего действия. Все вызовы проходят через rate limiter и логируются в базу.
package llm

import "context"

// Logger определяет интерфейс для логирования запросов к модели.
type Logger interface {
	// LogLLMRequest сохраняет промпт и ответ модели (уже очищенные от секретов).
	LogLLMRequest(runID, stepID *uint, promptKind, promptText, responseText, model string, tokensUsed int) error
}

// DecisionClient определяет интерфейс принятия решений, потребляемый агентом.
type DecisionClient interface {
	// DetectLogin определяет по скриншоту, является ли страница формой логина.
	DetectLogin(ctx context.Context, screenshot []byte, runID *uint) (*LoginCheck, error)

	// CheckGoal проверяет по скриншоту и истории действий, достигнута ли цель задачи.
	CheckGoal(ctx context.Context, screenshot []byte, goal, history string, runID *uint) (*GoalCheck, error)

	// NextAction запрашивает следующее действие: клик, заполнение поля или завершение.
	NextAction(ctx context.Context, screenshot []byte, goal, history, newElements string, runID *uint) (*Decision, error)

	// Complete выполняет текстовый запрос без изображения (парсинг задач).
	Complete(ctx context.Context, promptKind, prompt string, runID *uint) (string, error)
}

// События, которые модель может вернуть в поле event.
const (
	EventClick = "click"
	EventFill  = "fill"
	EventDone  = "done"
)

// Decision - решение модели для одного шага.
type Decision struct {
	Event     string `json:"event"` // click | fill | done
	Text      string `json:"text"`  // Текст элемента для клика или метка поля для заполнения
	Value     string `json:"value,omitempty"`
	Reasoning string `json:"reasoning,omitempty"`
}

// Complete сообщает, считает ли модель задачу выполненной.
func (d *Decision) Complete() bool {
	return d != nil && d.Event == EventDone
}

// GoalCheck - результат проверки достижения цели.
type GoalCheck struct {
	Completed bool   `json:"goal_completed"`
	Reasoning string `json:"reasoning,omitempty"`
}

// LoginCheck - результат детекции страницы логина.
type LoginCheck struct {
	IsLoginPage bool   `json:"is_login_page"`
	Reason      string `json:"reason,omitempty"`
}

// Виды промптов для логирования.
const (
	KindLoginDetect = "login_detect"
	KindGoalCheck   = "goal_check"
	KindNextAction  = "next_action"
	KindTaskParse   = "task_parse"
)
