// Package database предоставляет модели данных и репозиторий для работы с PostgreSQL.
// Использует GORM ORM; каждый прогон задачи и его шаги сохраняются для диагностики.
package database

import "time"

// Run представляет один прогон задачи агентом.
// Статусы: pending, running, done, failed.
type Run struct {
	ID            uint      `gorm:"primaryKey"`
	UserInput     string    `gorm:"type:text;not null"`                          // Текст задачи от пользователя
	AppName       string    `gorm:"type:varchar(128)"`                           // Приложение (Asana, Notion и т.д.)
	TaskSlug      string    `gorm:"type:varchar(255)"`                           // Слаг задачи, ключ каталога captures
	Status        string    `gorm:"type:varchar(32);not null;default:'pending'"` // Статус прогона
	FailReason    string    `gorm:"type:varchar(64)"`                            // Код причины провала (max_steps, login_timeout...)
	ResultSummary string    `gorm:"type:text"`                                   // Итог прогона
	ReportPath    string    `gorm:"type:text"`                                   // Путь к сгенерированному отчету
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

// RunStep представляет один шаг прогона: решение модели и результат его выполнения.
type RunStep struct {
	ID             uint      `gorm:"primaryKey"`
	RunID          uint      `gorm:"index;not null"`            // ID прогона
	StepNo         int       `gorm:"not null"`                  // Номер шага
	ActionType     string    `gorm:"type:varchar(32);not null"` // click, fill, none
	Target         string    `gorm:"type:text"`                 // Текст/метка целевого элемента
	Value          string    `gorm:"type:text"`                 // Введенное значение (для fill)
	Reused         bool      `gorm:"not null;default:false"`    // Решение переиспользовано при стагнации
	Outcome        string    `gorm:"type:text"`                 // Результат выполнения шага
	DeltaSummary   string    `gorm:"type:text"`                 // Сводка появившихся/исчезнувших элементов
	ScreenshotPath string    `gorm:"type:text"`                 // Скриншот состояния перед действием
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

// LlmLog представляет лог запроса к модели.
type LlmLog struct {
	ID           uint      `gorm:"primaryKey"`
	RunID        *uint     `gorm:"index"`                     // ID прогона (опционально)
	StepID       *uint     `gorm:"index"`                     // ID шага (опционально)
	PromptKind   string    `gorm:"type:varchar(32);not null"` // login_detect, goal_check, next_action, task_parse
	PromptText   string    `gorm:"type:text;not null"`
	ResponseText string    `gorm:"type:text"`
	Model        string    `gorm:"type:varchar(64)"`
	TokensUsed   int
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}
