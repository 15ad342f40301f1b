// Package taskparse превращает описание задачи на естественном языке
// ("How do I create a task in Asana?") в структурированную задачу:
// приложение, стартовый URL, цель и слаг для каталога захвата.
package taskparse

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"webGuide/internal/llm"
)

// Task - структурированный результат разбора пользовательской задачи.
type Task struct {
	App        string            `json:"app"`
	StartURL   string            `json:"app_url"`
	ActionHint string            `json:"action"`
	Slug       string            `json:"task_name"`
	Parameters map[string]string `json:"task_parameters,omitempty"`
}

// Completer - минимальный срез клиента модели, нужный парсеру.
type Completer interface {
	Complete(ctx context.Context, promptKind, prompt string, runID *uint) (string, error)
}

type Parser struct {
	client Completer
}

func NewParser(client Completer) *Parser {
	return &Parser{client: client}
}

const parsePromptTemplate = `Parse this task description into structured JSON format:
"%s"

Extract the following information:
1. The web application name (e.g., "Asana", "Notion")
2. The base URL if known (e.g., "https://asana.com" for Asana)
3. The action to perform (e.g., "create_project", "filter_issues")
4. A sanitized task name (lowercase, underscores, no special chars)
5. Any named parameters mentioned in the task (empty object if none)

Return ONLY valid JSON in this exact format:
{
  "app": "app name",
  "app_url": "base URL or empty string",
  "action": "action description",
  "task_name": "sanitized_task_name",
  "task_parameters": {}
}`

// Parse разбирает описание задачи моделью; при недоступности модели или
// нечитаемом ответе возвращает детерминированную догадку из Fallback.
func (p *Parser) Parse(ctx context.Context, text string, runID *uint) (*Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("пустое описание задачи")
	}

	task := p.parseWithModel(ctx, text, runID)
	if task == nil {
		task = Fallback(text)
	}

	normalize(task, text)
	return task, nil
}

func (p *Parser) parseWithModel(ctx context.Context, text string, runID *uint) *Task {
	if p.client == nil {
		return nil
	}

	raw, err := p.client.Complete(ctx, llm.KindTaskParse, fmt.Sprintf(parsePromptTemplate, text), runID)
	if err != nil {
		return nil
	}

	extracted, err := llm.ExtractJSON(raw)
	if err != nil {
		return nil
	}

	var task Task
	if err := json.Unmarshal([]byte(extracted), &task); err != nil {
		return nil
	}
	if task.App == "" {
		return nil
	}
	return &task
}

var knownAppURLs = map[string]string{
	"asana":  "https://app.asana.com",
	"notion": "https://www.notion.so",
	"linear": "https://linear.app",
	"trello": "https://trello.com",
	"jira":   "https://www.atlassian.com/software/jira",
	"github": "https://github.com",
}

var inAppRe = regexp.MustCompile(`(?i)\b(?:in|on|using)\s+([A-Z][A-Za-z0-9]*)\b`)

// Fallback строит лучшую догадку без модели: приложение из оборота
// "in <App>", URL из таблицы известных приложений, слаг из самого текста.
func Fallback(text string) *Task {
	task := &Task{ActionHint: strings.TrimSpace(text)}

	if m := inAppRe.FindStringSubmatch(text); m != nil {
		task.App = m[1]
	}
	if task.App == "" {
		task.App = "web"
	}
	if url, ok := knownAppURLs[strings.ToLower(task.App)]; ok {
		task.StartURL = url
	}
	return task
}

var nameRe = regexp.MustCompile(`(?i)name(?:d)?\s+(?:it\s+)?['"]?([A-Za-z0-9][A-Za-z0-9\s\-_]*)['"]?`)

// MineName извлекает из текста задачи значение, названное пользователем
// ("name it Roadmap"). Используется как значение по умолчанию, когда модель
// решает заполнить поле, но не предлагает значения.
func MineName(text string) string {
	if m := nameRe.FindStringSubmatch(text); m != nil {
		return strings.Trim(m[1], ` '"`)
	}
	if strings.Contains(strings.ToLower(text), "test") {
		return "test"
	}
	return ""
}

var slugCleanRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify приводит произвольный текст к безопасному слагу каталога.
func Slugify(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = slugCleanRe.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 60 {
		s = s[:60]
		s = strings.Trim(s, "_")
	}
	if s == "" {
		return "task"
	}
	return s
}

func normalize(task *Task, text string) {
	if task.Slug == "" {
		task.Slug = Slugify(text)
	} else {
		task.Slug = Slugify(task.Slug)
	}
	if task.StartURL == "" {
		if url, ok := knownAppURLs[strings.ToLower(task.App)]; ok {
			task.StartURL = url
		}
	}
	if task.ActionHint == "" {
		task.ActionHint = text
	}
	if task.Parameters == nil {
		task.Parameters = map[string]string{}
	}
	if _, ok := task.Parameters["name"]; !ok {
		if name := MineName(text); name != "" {
			task.Parameters["name"] = name
		}
	}
}
