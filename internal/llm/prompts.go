package llm

import "fmt"

// Шаблоны промптов - конфигурация клиента, а не логика цикла.
// Модель обязана отвечать JSON-объектом; обертку в прозу разбирает ExtractJSON.

const systemPrompt = "You are a browser automation assistant. You look at screenshots " +
	"of a web application and decide the single next UI action needed to accomplish " +
	"the user's goal. Always answer with a single JSON object."

func loginDetectPrompt() string {
	return `Look at this screenshot. Is this a LOGIN PAGE or SIGNUP PAGE?

Answer ONLY with JSON:
{
  "is_login_page": true/false,
  "reason": "one sentence"
}`
}

func goalCheckPrompt(goal, history string) string {
	return fmt.Sprintf(`Goal: %s

%s

Look at the screenshot. Has the goal been fully accomplished?

Answer ONLY with JSON:
{
  "goal_completed": true/false,
  "reasoning": "one sentence"
}`, goal, history)
}

func nextActionPrompt(goal, history, newElements string) string {
	if newElements == "" {
		newElements = "No new popup elements."
	}
	return fmt.Sprintf(`Goal: %s

%s

%s

What do I do next?

Return ONLY valid JSON:
{
  "event": "click|fill|done",
  "text": "exact text to click or label to fill",
  "value": "text to type (only for fill)"
}`, goal, history, newElements)
}
