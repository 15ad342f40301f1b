// Package capture записывает ход прогона: скриншот каждого шага, инкрементный
// JSON-журнал и итоговый HTML-отчет с иллюстрированной инструкцией.
package capture

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// StepRecord - один шаг прогона в журнале.
type StepRecord struct {
	Step         int       `json:"step"`
	Action       string    `json:"action"`
	Target       string    `json:"target,omitempty"`
	Value        string    `json:"value,omitempty"`
	Outcome      string    `json:"outcome"`
	DeltaSummary string    `json:"delta_summary,omitempty"`
	Screenshot   string    `json:"screenshot"`
	URL          string    `json:"url,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Ledger - машиночитаемый журнал прогона, переписываемый после каждого шага.
// Упавший прогон оставляет журнал со всеми завершенными шагами.
type Ledger struct {
	Task        string       `json:"task"`
	App         string       `json:"app"`
	Slug        string       `json:"slug"`
	Status      string       `json:"status"`
	StartedAt   time.Time    `json:"started_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	TotalSteps  int          `json:"total_steps"`
	Steps       []StepRecord `json:"steps"`
}

type Recorder struct {
	dir    string
	ledger Ledger
}

// NewRecorder создает каталог прогона captures/<slug>_<суффикс>/.
// Суффикс гарантирует, что параллельные прогоны одного слага не пересекутся.
func NewRecorder(baseDir, slug, task, app string) (*Recorder, error) {
	suffix := uuid.New().String()[:8]
	dir := filepath.Join(baseDir, fmt.Sprintf("%s_%s", slug, suffix))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("создание каталога захвата: %w", err)
	}

	r := &Recorder{
		dir: dir,
		ledger: Ledger{
			Task:      task,
			App:       app,
			Slug:      slug,
			Status:    "running",
			StartedAt: time.Now(),
			Steps:     []StepRecord{},
		},
	}
	if err := r.writeLedger(); err != nil {
		return nil, err
	}
	return r, nil
}

// Dir возвращает каталог прогона.
func (r *Recorder) Dir() string {
	return r.dir
}

// SaveStep сохраняет скриншот шага и дописывает запись в журнал.
func (r *Recorder) SaveStep(rec StepRecord, screenshot []byte) (string, error) {
	name := fmt.Sprintf("screenshot_step_%d.png", rec.Step)
	path := filepath.Join(r.dir, name)
	if err := os.WriteFile(path, screenshot, 0o644); err != nil {
		return "", fmt.Errorf("сохранение скриншота шага %d: %w", rec.Step, err)
	}

	rec.Screenshot = name
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	r.ledger.Steps = append(r.ledger.Steps, rec)
	r.ledger.TotalSteps = len(r.ledger.Steps)

	if err := r.writeLedger(); err != nil {
		return "", err
	}
	return path, nil
}

// SaveFinal сохраняет итоговый скриншот прогона.
func (r *Recorder) SaveFinal(screenshot []byte) (string, error) {
	path := filepath.Join(r.dir, "final.png")
	if err := os.WriteFile(path, screenshot, 0o644); err != nil {
		return "", fmt.Errorf("сохранение итогового скриншота: %w", err)
	}
	return path, nil
}

// Finalize фиксирует статус прогона, дописывает журнал и генерирует
// HTML-отчет. Возвращает путь к отчету.
func (r *Recorder) Finalize(status string) (string, error) {
	now := time.Now()
	r.ledger.Status = status
	r.ledger.CompletedAt = &now
	if err := r.writeLedger(); err != nil {
		return "", err
	}
	return r.writeReport()
}

func (r *Recorder) writeLedger() error {
	data, err := json.MarshalIndent(r.ledger, "", "  ")
	if err != nil {
		return fmt.Errorf("сериализация журнала: %w", err)
	}
	if err := os.WriteFile(filepath.Join(r.dir, "steps.json"), data, 0o644); err != nil {
		return fmt.Errorf("запись журнала шагов: %w", err)
	}
	return nil
}
