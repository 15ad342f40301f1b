package browser

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Settle дает странице время отработать анимации и отложенные рендеры
// после действия, уважая отмену контекста.
func (b *PlaywrightBrowser) Settle(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

const loginProbeJS = `
() => {
	const passwordInputs = document.querySelectorAll(
		'input[type="password"], input[name*="password"], input[id*="password"]');
	const loginButtons = Array.from(document.querySelectorAll('button, a')).filter(el => {
		const text = (el.innerText || '').toLowerCase();
		return text.includes('log in') || text.includes('sign in') || text.includes('login');
	});
	const userIndicators = Array.from(document.querySelectorAll('*')).filter(el => {
		const attrs = (el.className + ' ' + el.id).toLowerCase();
		const text = (el.innerText || '').toLowerCase();
		return text.includes('dashboard') || text.includes('workspace') ||
			attrs.includes('user-menu') || attrs.includes('profile') || attrs.includes('avatar');
	});
	return {
		hasPasswordField: passwordInputs.length > 0,
		hasLoginButton: loginButtons.length > 0,
		hasUserIndicators: userIndicators.length > 0
	};
}
`

var authCookieNames = []string{
	"session", "auth", "token", "access_token", "jwt",
	"sid", "sessionid", "logged_in", "user_id",
}

var loginURLPaths = []string{
	"/login", "/signin", "/sign-in", "/auth", "/signup", "/register",
}

// ProbeLogin проверяет признаки входа без обращения к модели:
// куки сессии, путь URL и форму логина в DOM. Любой признак активной
// сессии перевешивает признаки формы входа.
func (b *PlaywrightBrowser) ProbeLogin(ctx context.Context) (LoginProbe, error) {
	page := b.getPage()
	if page == nil {
		return LoginProbe{}, fmt.Errorf("браузер не запущен")
	}

	var probe LoginProbe

	if cookies, err := page.Context().Cookies(); err == nil {
		var names []string
		for _, c := range cookies {
			names = append(names, strings.ToLower(c.Name))
		}
		joined := strings.Join(names, " ")
		for _, indicator := range authCookieNames {
			if strings.Contains(joined, indicator) {
				probe.HasAuthCookie = true
				break
			}
		}
	}

	currentURL := strings.ToLower(page.URL())
	for _, path := range loginURLPaths {
		if strings.Contains(currentURL, path) {
			probe.LoginURL = true
			break
		}
	}

	raw, err := page.Evaluate(loginProbeJS)
	if err != nil {
		return probe, nil
	}
	if result, ok := raw.(map[string]interface{}); ok {
		probe.HasPasswordField, _ = result["hasPasswordField"].(bool)
		probe.HasLoginButton, _ = result["hasLoginButton"].(bool)
		probe.HasUserIndicators, _ = result["hasUserIndicators"].(bool)
	}

	return probe, nil
}
