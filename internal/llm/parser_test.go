package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "Чистый JSON",
			input: `{"event":"click","text":"Create"}`,
			want:  `{"event":"click","text":"Create"}`,
		},
		{
			name:  "JSON с прозой перед ним",
			input: `Sure! {"event":"click","text":"Create"}`,
			want:  `{"event":"click","text":"Create"}`,
		},
		{
			name: "JSON в markdown-блоке",
			input: "Here is my answer:\n```json\n{\"event\":\"done\",\"text\":\"\"}\n```",
			want:  `{"event":"done","text":""}`,
		},
		{
			name:  "Вложенные объекты",
			input: `{"event":"fill","text":"Name","meta":{"a":1}}`,
			want:  `{"event":"fill","text":"Name","meta":{"a":1}}`,
		},
		{
			name:  "Скобки внутри строк не ломают сканер",
			input: `{"event":"click","text":"Open {menu}"}`,
			want:  `{"event":"click","text":"Open {menu}"}`,
		},
		{
			name:  "Предпочитается самый длинный валидный кандидат",
			input: `{"a":1} and the full answer {"event":"click","text":"Save changes"}`,
			want:  `{"event":"click","text":"Save changes"}`,
		},
		{
			name:    "Нет JSON",
			input:   "I cannot decide what to do here.",
			wantErr: true,
		},
		{
			name:    "Пустая строка",
			input:   "",
			wantErr: true,
		},
		{
			name:    "Только невалидный JSON",
			input:   `{"event": click}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrNoJSON)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDecision(t *testing.T) {
	t.Run("Клик с обрамляющей прозой", func(t *testing.T) {
		d, err := ParseDecision(`Sure! {"event":"click","text":"Create"}`)
		require.NoError(t, err)
		assert.Equal(t, EventClick, d.Event)
		assert.Equal(t, "Create", d.Text)
		assert.False(t, d.Complete())
	})

	t.Run("Заполнение поля со значением", func(t *testing.T) {
		d, err := ParseDecision(`{"event":"fill","text":"Board name","value":"Roadmap"}`)
		require.NoError(t, err)
		assert.Equal(t, EventFill, d.Event)
		assert.Equal(t, "Board name", d.Text)
		assert.Equal(t, "Roadmap", d.Value)
	})

	t.Run("Завершение без текста", func(t *testing.T) {
		d, err := ParseDecision(`{"event":"done"}`)
		require.NoError(t, err)
		assert.True(t, d.Complete())
	})

	t.Run("Событие нормализуется по регистру", func(t *testing.T) {
		d, err := ParseDecision(`{"event":"Click","text":" Save "}`)
		require.NoError(t, err)
		assert.Equal(t, EventClick, d.Event)
		assert.Equal(t, "Save", d.Text)
	})

	t.Run("Неизвестное событие", func(t *testing.T) {
		_, err := ParseDecision(`{"event":"scroll","text":"down"}`)
		require.ErrorIs(t, err, ErrDecisionParse)
	})

	t.Run("Клик без текста", func(t *testing.T) {
		_, err := ParseDecision(`{"event":"click","text":""}`)
		require.ErrorIs(t, err, ErrDecisionParse)
	})

	t.Run("Ответ без JSON", func(t *testing.T) {
		_, err := ParseDecision("no structured answer")
		require.ErrorIs(t, err, ErrDecisionParse)
	})
}

func TestRateLimiter(t *testing.T) {
	t.Run("Первый вызов проходит сразу", func(t *testing.T) {
		rl := NewRateLimiter(15)
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		assert.NoError(t, rl.Wait(ctx))
	})

	t.Run("Второй вызов подряд блокируется до появления бюджета", func(t *testing.T) {
		rl := NewRateLimiter(1)
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		require.NoError(t, rl.Wait(ctx))
		// Бюджет 1/мин исчерпан: Wait не успевает до дедлайна контекста
		assert.Error(t, rl.Wait(ctx))
	})

	t.Run("Некорректный лимит заменяется значением по умолчанию", func(t *testing.T) {
		rl := NewRateLimiter(0)
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		assert.NoError(t, rl.Wait(ctx))
	})
}
