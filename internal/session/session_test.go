package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Простое имя", "Asana", "asana"},
		{"Пробелы заменяются подчеркиванием", "Google Sheets", "google_sheets"},
		{"Спецсимволы отбрасываются", "Notion!?", "notion"},
		{"Пустое имя", "", "default"},
		{"Только спецсимволы", "***", "default"},
		{"Цифры сохраняются", "App365", "app365"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeName(tt.in))
		})
	}
}

func TestManagerProfilePath(t *testing.T) {
	base := t.TempDir()
	m, err := NewManager(base)
	require.NoError(t, err)

	assert.False(t, m.HasProfile("Asana"))

	dir, err := m.ProfilePath("Asana")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "asana_profile"), dir)
	assert.DirExists(t, dir)
	assert.True(t, m.HasProfile("Asana"))

	// Повторный вызов возвращает тот же каталог
	again, err := m.ProfilePath("Asana")
	require.NoError(t, err)
	assert.Equal(t, dir, again)
}
