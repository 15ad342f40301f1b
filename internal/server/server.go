package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"webGuide/internal/config"
	"webGuide/internal/database"
	"webGuide/internal/logger"
)

type Server struct {
	cfg  *config.Cfg
	log  *logger.Zap
	db   *database.Database
	repo *database.RunRepository
}

func New(cfg *config.Cfg, log *logger.Zap, db *database.Database) *Server {
	return &Server{
		cfg:  cfg,
		log:  log,
		db:   db,
		repo: database.NewRunRepository(db.DB),
	}
}

func (s *Server) Run(ctx context.Context) error {
	r := gin.New()
	r.Use(gin.Recovery())

	// Простейший лог-мидлвар
	r.Use(func(c *gin.Context) {
		s.log.Info("HTTP",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Создать прогон
	r.POST("/api/run", func(c *gin.Context) {
		var req struct {
			UserInput string `json:"user_input" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		run := database.Run{
			UserInput: req.UserInput,
			Status:    "pending",
		}
		if err := s.repo.CreateRun(&run); err != nil {
			s.log.Error("db create run", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"run_id": run.ID})
	})

	// Получить прогон
	r.GET("/api/run/:id", func(c *gin.Context) {
		id64, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad id"})
			return
		}
		run, err := s.repo.GetRunByID(uint(id64))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusOK, run)
	})

	// Шаги прогона
	r.GET("/api/run/:id/steps", func(c *gin.Context) {
		id64, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad id"})
			return
		}
		steps, err := s.repo.ListSteps(uint(id64))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		c.JSON(http.StatusOK, steps)
	})

	// Список прогонов
	r.GET("/api/runs", func(c *gin.Context) {
		runs, err := s.repo.ListRuns(50, 0)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		c.JSON(http.StatusOK, runs)
	})

	// Каталог captures с отчетами и скриншотами
	r.Static("/captures", s.cfg.Capture.Dir)

	addr := fmt.Sprintf("%s:%s", s.cfg.Server.Host, s.cfg.Server.Port)
	s.log.Info("Сервер запущен", zap.String("addr", addr))
	return r.Run(addr)
}
