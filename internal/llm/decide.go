package llm

import (
	"context"
	"fmt"
	"strings"
)

// DetectLogin спрашивает модель, является ли текущая страница формой входа.
func (c *Client) DetectLogin(ctx context.Context, screenshot []byte, runID *uint) (*LoginCheck, error) {
	raw, err := c.askVision(ctx, KindLoginDetect, loginDetectPrompt(), screenshot, runID)
	if err != nil {
		return nil, err
	}

	var check LoginCheck
	if err := decodeInto(raw, &check); err != nil {
		return nil, fmt.Errorf("разбор ответа о странице входа: %w", err)
	}
	return &check, nil
}

// CheckGoal спрашивает модель, достигнута ли цель задачи на текущем экране.
func (c *Client) CheckGoal(ctx context.Context, screenshot []byte, goal, history string, runID *uint) (*GoalCheck, error) {
	raw, err := c.askVision(ctx, KindGoalCheck, goalCheckPrompt(goal, history), screenshot, runID)
	if err != nil {
		return nil, err
	}

	var check GoalCheck
	if err := decodeInto(raw, &check); err != nil {
		return nil, fmt.Errorf("разбор ответа о достижении цели: %w", err)
	}
	return &check, nil
}

// NextAction запрашивает у модели следующее действие на странице.
func (c *Client) NextAction(ctx context.Context, screenshot []byte, goal, history, newElements string, runID *uint) (*Decision, error) {
	raw, err := c.askVision(ctx, KindNextAction, nextActionPrompt(goal, history, newElements), screenshot, runID)
	if err != nil {
		return nil, err
	}

	decision, err := ParseDecision(raw)
	if err != nil {
		return nil, err
	}
	return decision, nil
}

// ParseDecision извлекает решение из сырого ответа модели и проверяет
// его корректность: известное событие и непустая цель для click/fill.
func ParseDecision(raw string) (*Decision, error) {
	var decision Decision
	if err := decodeInto(raw, &decision); err != nil {
		return nil, fmt.Errorf("%w: разбор решения", ErrDecisionParse)
	}

	decision.Event = strings.ToLower(strings.TrimSpace(decision.Event))
	decision.Text = strings.TrimSpace(decision.Text)

	switch decision.Event {
	case EventClick, EventFill:
		if decision.Text == "" {
			return nil, fmt.Errorf("%w: пустой текст элемента для события %q", ErrDecisionParse, decision.Event)
		}
	case EventDone:
	default:
		return nil, fmt.Errorf("%w: неизвестное событие %q", ErrDecisionParse, decision.Event)
	}
	return &decision, nil
}
