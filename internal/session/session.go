// Package session управляет персистентными профилями браузера. Профиль на
// приложение: сохраненные логины переживают перезапуски, и повторный вход
// не требуется между прогонами.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Manager struct {
	profilesDir string
}

func NewManager(profilesDir string) (*Manager, error) {
	if profilesDir == "" {
		profilesDir = "browser_profiles"
	}
	if err := os.MkdirAll(profilesDir, 0o755); err != nil {
		return nil, fmt.Errorf("создание каталога профилей: %w", err)
	}
	return &Manager{profilesDir: profilesDir}, nil
}

// ProfilePath возвращает каталог персистентного профиля для приложения,
// создавая его при необходимости.
func (m *Manager) ProfilePath(appName string) (string, error) {
	dir := filepath.Join(m.profilesDir, SafeName(appName)+"_profile")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("создание профиля для %s: %w", appName, err)
	}
	return dir, nil
}

// HasProfile сообщает, существует ли уже профиль для приложения.
func (m *Manager) HasProfile(appName string) bool {
	info, err := os.Stat(filepath.Join(m.profilesDir, SafeName(appName)+"_profile"))
	return err == nil && info.IsDir()
}

// SafeName приводит имя приложения к безопасному для файловой системы виду.
func SafeName(appName string) string {
	s := strings.ToLower(strings.TrimSpace(appName))
	if s == "" {
		return "default"
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '.':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "default"
	}
	return b.String()
}
