package browser

import (
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Config задает параметры запуска браузера. UserDataDir включает персистентный
// профиль: сохраненные логины переживают перезапуски между прогонами.
type Config struct {
	Headless        bool
	UserDataDir     string
	Display         string
	Timeout         time.Duration
	NavigateTimeout time.Duration
	ActionTimeout   time.Duration
}

// ClickResult описывает фактически кликнутый элемент.
type ClickResult struct {
	Text   string
	Tag    string
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// LoginProbe - дешевая проверка признаков логина без обращения к модели.
type LoginProbe struct {
	HasAuthCookie     bool
	LoginURL          bool
	HasPasswordField  bool
	HasLoginButton    bool
	HasUserIndicators bool
}

// LoggedIn сообщает, найден ли хотя бы один признак активной сессии.
// Любой положительный признак трактуется как вход выполнен.
func (p LoginProbe) LoggedIn() bool {
	return p.HasAuthCookie || p.HasUserIndicators
}

// LoginRequired сообщает, что страница похожа на форму входа
// и признаков активной сессии нет.
func (p LoginProbe) LoginRequired() bool {
	if p.LoggedIn() {
		return false
	}
	return p.LoginURL || (p.HasPasswordField && p.HasLoginButton)
}

// Inconclusive - проверка не дала ответа, нужен скриншот и модель.
func (p LoginProbe) Inconclusive() bool {
	return !p.LoggedIn() && !p.LoginRequired()
}

type PlaywrightBrowser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	cfg     Config
	mu      sync.RWMutex
}
