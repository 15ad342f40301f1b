// Package agent реализует цикл восприятие-решение-действие: скриншот и снимок
// элементов страницы превращаются через vision-модель в следующее действие,
// пока цель задачи не достигнута либо не исчерпан лимит шагов.
package agent

import (
	"context"
	"time"

	"webGuide/internal/browser"
	"webGuide/internal/capture"
	"webGuide/internal/database"
	"webGuide/internal/inspector"
	"webGuide/internal/llm"
	"webGuide/internal/logger"
	"webGuide/internal/sanitizer"
)

// State - состояние конечного автомата прогона.
type State int

const (
	StateInit State = iota
	StateLoginWait
	StateIterating
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateLoginWait:
		return "login_wait"
	case StateIterating:
		return "iterating"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Driver - срез браузера, нужный циклу. Реализуется browser.PlaywrightBrowser;
// в тестах подменяется скриптованной страницей.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	Screenshot(ctx context.Context) ([]byte, error)
	Snapshot(ctx context.Context) (*inspector.Snapshot, error)
	ClickByText(ctx context.Context, text string) (*browser.ClickResult, error)
	ClickAt(ctx context.Context, x, y float64) (*browser.ClickResult, error)
	FillByLabel(ctx context.Context, label, value string) error
	FillAt(ctx context.Context, x, y float64, value string) error
	ProbeLogin(ctx context.Context) (browser.LoginProbe, error)
	Settle(ctx context.Context, d time.Duration) error
	CurrentURL() string
}

// Recorder - приемник записей шагов. Реализуется capture.Recorder.
type Recorder interface {
	SaveStep(rec capture.StepRecord, screenshot []byte) (string, error)
	SaveFinal(screenshot []byte) (string, error)
	Finalize(status string) (string, error)
	Dir() string
}

// Config содержит конфигурацию цикла.
type Config struct {
	MaxSteps          int           // Лимит шагов на прогон
	SettleWait        time.Duration // Пауза после действия перед захватом состояния
	LoginPollInterval time.Duration // Интервал опроса признаков входа
	LoginMaxWait      time.Duration // Максимальное ожидание ручного входа
	DefaultFillValue  string        // Значение для fill, когда модель его не предложила
}

// Agent ведет один прогон задачи. Прогоны независимы: история действий
// и снимки никогда не разделяются между прогонами.
type Agent struct {
	driver   Driver
	decider  llm.DecisionClient
	recorder Recorder
	repo     *database.RunRepository
	log      *logger.Zap
	cfg      Config
	sanitize *sanitizer.DataSanitizer

	state   State
	history *History
	runID   *uint
}

// RunResult - итог прогона.
type RunResult struct {
	State      State
	Steps      int
	ReportPath string
	Summary    string
	Err        error
}

func New(driver Driver, decider llm.DecisionClient, recorder Recorder, repo *database.RunRepository, log *logger.Zap, cfg Config) *Agent {
	if cfg.MaxSteps == 0 {
		cfg.MaxSteps = 20
	}
	if cfg.SettleWait == 0 {
		cfg.SettleWait = time.Second
	}
	if cfg.LoginPollInterval == 0 {
		cfg.LoginPollInterval = 5 * time.Second
	}
	if cfg.LoginMaxWait == 0 {
		cfg.LoginMaxWait = 5 * time.Minute
	}
	if cfg.DefaultFillValue == "" {
		cfg.DefaultFillValue = "Test"
	}

	return &Agent{
		driver:   driver,
		decider:  decider,
		recorder: recorder,
		repo:     repo,
		log:      log,
		cfg:      cfg,
		sanitize: sanitizer.New(),
		state:    StateInit,
		history:  NewHistory(),
	}
}

// State возвращает текущее состояние автомата.
func (a *Agent) State() State {
	return a.state
}

// WithRunID привязывает агента к уже созданной записи прогона в базе
// вместо создания новой.
func (a *Agent) WithRunID(id uint) *Agent {
	a.runID = &id
	return a
}
