// Package runner собирает один прогон задачи из частей: разбор текста,
// персистентный профиль, браузер, рекордер и цикл агента.
package runner

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"webGuide/internal/agent"
	"webGuide/internal/browser"
	"webGuide/internal/capture"
	"webGuide/internal/config"
	"webGuide/internal/database"
	"webGuide/internal/llm"
	"webGuide/internal/logger"
	"webGuide/internal/session"
	"webGuide/internal/taskparse"
)

type Runner struct {
	cfg      *config.Cfg
	log      *logger.Zap
	repo     *database.RunRepository
	decider  llm.DecisionClient
	sessions *session.Manager
	parser   *taskparse.Parser
}

func New(cfg *config.Cfg, log *logger.Zap, repo *database.RunRepository, decider llm.DecisionClient) (*Runner, error) {
	sessions, err := session.NewManager(cfg.Browser.ProfilesDir)
	if err != nil {
		return nil, err
	}

	return &Runner{
		cfg:      cfg,
		log:      log,
		repo:     repo,
		decider:  decider,
		sessions: sessions,
		parser:   taskparse.NewParser(decider),
	}, nil
}

// Execute ведет один прогон от текста задачи до терминального состояния.
// runID привязывает прогон к уже созданной записи в базе; nil создает новую.
// Каждый прогон получает собственный браузер и профиль - прогоны независимы.
func (r *Runner) Execute(ctx context.Context, userInput string, runID *uint) (*agent.RunResult, error) {
	task, err := r.parser.Parse(ctx, userInput, runID)
	if err != nil {
		return nil, fmt.Errorf("разбор задачи: %w", err)
	}
	r.log.Info("Задача разобрана",
		zap.String("app", task.App),
		zap.String("url", task.StartURL),
		zap.String("slug", task.Slug))

	profile, err := r.sessions.ProfilePath(task.App)
	if err != nil {
		return nil, err
	}

	br := browser.New(browser.Config{
		Headless:    r.cfg.Browser.Headless,
		UserDataDir: profile,
		Display:     r.cfg.Browser.Display,
	})
	if err := br.Launch(ctx); err != nil {
		return nil, fmt.Errorf("запуск браузера: %w", err)
	}
	defer func() {
		if err := br.Close(); err != nil {
			r.log.Warn("Ошибка закрытия браузера", zap.Error(err))
		}
	}()

	rec, err := capture.NewRecorder(r.cfg.Capture.Dir, task.Slug, userInput, task.App)
	if err != nil {
		return nil, err
	}

	ag := agent.New(br, r.decider, rec, r.repo, r.log, agent.Config{
		MaxSteps:          r.cfg.Agent.MaxSteps,
		SettleWait:        r.cfg.Agent.SettleWait,
		LoginPollInterval: r.cfg.Agent.LoginPollInterval,
		LoginMaxWait:      r.cfg.Agent.LoginMaxWait,
		DefaultFillValue:  task.Parameters["name"],
	})
	if runID != nil {
		ag.WithRunID(*runID)
	}

	return ag.Run(ctx, task, userInput)
}
