package capture

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	base := t.TempDir()

	r, err := NewRecorder(base, "create_task_in_asana", "How do I create a task in Asana?", "Asana")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(r.Dir()), "create_task_in_asana_"))

	// Журнал существует сразу после создания
	require.FileExists(t, filepath.Join(r.Dir(), "steps.json"))

	shot := []byte("png-bytes")
	path, err := r.SaveStep(StepRecord{
		Step:         1,
		Action:       "click",
		Target:       "Create",
		Outcome:      "ok",
		DeltaSummary: "появилось: 3, исчезло: 0",
	}, shot)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(r.Dir(), "screenshot_step_1.png"), path)

	_, err = r.SaveStep(StepRecord{Step: 2, Action: "fill", Target: "Task name", Value: "Roadmap", Outcome: "ok"}, shot)
	require.NoError(t, err)

	_, err = r.SaveFinal(shot)
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(r.Dir(), "final.png"))

	reportPath, err := r.Finalize("done")
	require.NoError(t, err)
	require.FileExists(t, reportPath)

	// Журнал содержит оба шага и итоговый статус
	data, err := os.ReadFile(filepath.Join(r.Dir(), "steps.json"))
	require.NoError(t, err)
	var ledger Ledger
	require.NoError(t, json.Unmarshal(data, &ledger))
	assert.Equal(t, "done", ledger.Status)
	assert.Equal(t, 2, ledger.TotalSteps)
	require.Len(t, ledger.Steps, 2)
	assert.Equal(t, "screenshot_step_1.png", ledger.Steps[0].Screenshot)
	assert.NotNil(t, ledger.CompletedAt)

	// Отчет ссылается на скриншоты шагов
	html, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(html), "screenshot_step_1.png")
	assert.Contains(t, string(html), "Create Task In Asana")
}

func TestRecorderDistinctDirs(t *testing.T) {
	base := t.TempDir()
	r1, err := NewRecorder(base, "same_slug", "task", "App")
	require.NoError(t, err)
	r2, err := NewRecorder(base, "same_slug", "task", "App")
	require.NoError(t, err)
	assert.NotEqual(t, r1.Dir(), r2.Dir())
}
