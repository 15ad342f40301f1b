package main

import (
	"context"
	"os/signal"
	"syscall"

	"webGuide/internal/cli"
	"webGuide/internal/config"
	"webGuide/internal/database"
	"webGuide/internal/llm"
	"webGuide/internal/logger"
	"webGuide/internal/migrations"
	"webGuide/internal/runner"
	"webGuide/internal/server"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Logger.Env, cfg.Logger.Level)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := migrations.Run(cfg, log); err != nil {
		log.Fatal("Ошибка миграций", zap.Error(err))
	}

	db, err := database.New(cfg, log)
	if err != nil {
		log.Fatal("Ошибка подключения к БД", zap.Error(err))
	}
	defer db.Close(log)

	repo := database.NewRunRepository(db.DB)

	var decider llm.DecisionClient
	if cfg.OpenAI.KeyAI != "" {
		decider = llm.NewClient(cfg.OpenAI.KeyAI, cfg.OpenAI.Model, cfg.OpenAI.VisionModel,
			cfg.OpenAI.MaxTokens, cfg.OpenAI.CallsPerMinute, repo)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var r *runner.Runner
	if decider != nil {
		r, err = runner.New(cfg, log, repo, decider)
		if err != nil {
			log.Fatal("Ошибка инициализации runner", zap.Error(err))
		}
	} else {
		log.Warn("OPENAI_API_KEY не задан, запуск задач недоступен")
	}

	srv := server.New(cfg, log, db)
	go func() {
		if err := srv.Run(ctx); err != nil {
			log.Error("Ошибка HTTP сервера", zap.Error(err))
		}
	}()

	console := cli.New(repo, log, r)
	console.Run(ctx)
}
