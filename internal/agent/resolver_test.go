package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webGuide/internal/inspector"
)

func el(kind, text, path string) inspector.ElementDescriptor {
	d := inspector.ElementDescriptor{Kind: kind, Text: text, Path: path}
	d.Key = inspector.BuildKey(d)
	return d
}

func TestResolve(t *testing.T) {
	existing := el("button", "Create", "main/0")
	appeared := el("button", "Create", "dialog/0")
	other := el("a", "Create project", "main/1")

	snap := inspector.NewSnapshot("https://app.test", "Test",
		[]inspector.ElementDescriptor{existing, other, appeared})

	t.Run("Появившийся элемент важнее существующего", func(t *testing.T) {
		delta := inspector.Delta{Appeared: []inspector.ElementDescriptor{appeared}}
		got, err := Resolve("Create", snap, delta)
		require.NoError(t, err)
		assert.Equal(t, appeared.Key, got.Key)
	})

	t.Run("Точное совпадение в снимке без дельты", func(t *testing.T) {
		got, err := Resolve("Create", snap, inspector.Delta{})
		require.NoError(t, err)
		assert.Equal(t, existing.Key, got.Key)
	})

	t.Run("Подстрока среди появившихся", func(t *testing.T) {
		menu := el("button", "Create new board", "dialog/1")
		delta := inspector.Delta{Appeared: []inspector.ElementDescriptor{menu}}
		got, err := Resolve("new board", snap, delta)
		require.NoError(t, err)
		assert.Equal(t, menu.Key, got.Key)
	})

	t.Run("Подстрока без учета регистра в снимке", func(t *testing.T) {
		got, err := Resolve("PROJECT", snap, inspector.Delta{})
		require.NoError(t, err)
		assert.Equal(t, other.Key, got.Key)
	})

	t.Run("Ничего не найдено", func(t *testing.T) {
		_, err := Resolve("Add Task", snap, inspector.Delta{})
		require.ErrorIs(t, err, ErrElementNotFound)
	})

	t.Run("Пустая подсказка", func(t *testing.T) {
		_, err := Resolve("  ", snap, inspector.Delta{})
		require.ErrorIs(t, err, ErrElementNotFound)
	})

	t.Run("Равные кандидаты - побеждает порядок захвата", func(t *testing.T) {
		first := el("button", "Save", "main/0")
		second := el("button", "Save", "main/5")
		s := inspector.NewSnapshot("", "", []inspector.ElementDescriptor{first, second})
		got, err := Resolve("Save", s, inspector.Delta{})
		require.NoError(t, err)
		assert.Equal(t, first.Key, got.Key)
	})

	t.Run("Nil снимок с непустой дельтой", func(t *testing.T) {
		delta := inspector.Delta{Appeared: []inspector.ElementDescriptor{appeared}}
		got, err := Resolve("Create", nil, delta)
		require.NoError(t, err)
		assert.Equal(t, appeared.Key, got.Key)
	})
}
