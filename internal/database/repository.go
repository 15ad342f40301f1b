package database

import "gorm.io/gorm"

type RunRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) CreateRun(run *Run) error {
	return r.db.Create(run).Error
}

func (r *RunRepository) GetRunByID(id uint) (*Run, error) {
	var run Run
	if err := r.db.First(&run, id).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *RunRepository) ListRuns(limit, offset int) ([]Run, error) {
	var runs []Run
	if err := r.db.Order("id DESC").Limit(limit).Offset(offset).Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

func (r *RunRepository) UpdateRunStatus(id uint, status, failReason, summary string) error {
	return r.db.Model(&Run{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":         status,
			"fail_reason":    failReason,
			"result_summary": summary,
		}).Error
}

func (r *RunRepository) SetRunReport(id uint, reportPath string) error {
	return r.db.Model(&Run{}).
		Where("id = ?", id).
		Update("report_path", reportPath).Error
}

func (r *RunRepository) SetRunTask(id uint, appName, taskSlug string) error {
	return r.db.Model(&Run{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"app_name":  appName,
			"task_slug": taskSlug,
		}).Error
}

func (r *RunRepository) CreateStep(step *RunStep) error {
	return r.db.Create(step).Error
}

func (r *RunRepository) ListSteps(runID uint) ([]RunStep, error) {
	var steps []RunStep
	if err := r.db.Where("run_id = ?", runID).Order("step_no ASC").Find(&steps).Error; err != nil {
		return nil, err
	}
	return steps, nil
}

// LogLLMRequest сохраняет запрос к модели. Реализует llm.Logger.
func (r *RunRepository) LogLLMRequest(runID, stepID *uint, promptKind, promptText, responseText, model string, tokensUsed int) error {
	return r.db.Create(&LlmLog{
		RunID:        runID,
		StepID:       stepID,
		PromptKind:   promptKind,
		PromptText:   promptText,
		ResponseText: responseText,
		Model:        model,
		TokensUsed:   tokensUsed,
	}).Error
}

func (r *RunRepository) ListLLMLogs(runID uint, limit int) ([]LlmLog, error) {
	var logs []LlmLog
	if err := r.db.Where("run_id = ?", runID).Order("id ASC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
