package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"webGuide/internal/browser"
	"webGuide/internal/capture"
	"webGuide/internal/inspector"
	"webGuide/internal/llm"
	"webGuide/internal/logger"
	"webGuide/internal/taskparse"
)

type fakePage struct {
	shot []byte
	snap *inspector.Snapshot
}

// fakeDriver проигрывает заскриптованную последовательность страниц:
// успешный клик или заполнение переводит на следующую.
type fakeDriver struct {
	pages          []fakePage
	idx            int
	advanceOnClick bool

	navs     []string
	clicks   []string
	clickAts [][2]float64
	fills    [][2]string
	fillAts  []fillAtCall

	probes   []browser.LoginProbe
	probeIdx int
}

type fillAtCall struct {
	x, y  float64
	value string
}

func (d *fakeDriver) cur() fakePage { return d.pages[d.idx] }

func (d *fakeDriver) advance() {
	if d.idx < len(d.pages)-1 {
		d.idx++
	}
}

func (d *fakeDriver) Navigate(_ context.Context, url string) error {
	d.navs = append(d.navs, url)
	return nil
}

func (d *fakeDriver) Screenshot(_ context.Context) ([]byte, error) {
	return d.cur().shot, nil
}

func (d *fakeDriver) Snapshot(_ context.Context) (*inspector.Snapshot, error) {
	return d.cur().snap, nil
}

func (d *fakeDriver) ClickByText(_ context.Context, text string) (*browser.ClickResult, error) {
	d.clicks = append(d.clicks, text)
	if d.advanceOnClick {
		d.advance()
	}
	return &browser.ClickResult{Text: text}, nil
}

func (d *fakeDriver) ClickAt(_ context.Context, x, y float64) (*browser.ClickResult, error) {
	d.clickAts = append(d.clickAts, [2]float64{x, y})
	if d.advanceOnClick {
		d.advance()
	}
	return &browser.ClickResult{X: x, Y: y}, nil
}

func (d *fakeDriver) FillByLabel(_ context.Context, label, value string) error {
	d.fills = append(d.fills, [2]string{label, value})
	if d.advanceOnClick {
		d.advance()
	}
	return nil
}

func (d *fakeDriver) FillAt(_ context.Context, x, y float64, value string) error {
	d.fillAts = append(d.fillAts, fillAtCall{x: x, y: y, value: value})
	if d.advanceOnClick {
		d.advance()
	}
	return nil
}

func (d *fakeDriver) ProbeLogin(_ context.Context) (browser.LoginProbe, error) {
	if d.probeIdx < len(d.probes) {
		p := d.probes[d.probeIdx]
		d.probeIdx++
		return p, nil
	}
	return browser.LoginProbe{HasUserIndicators: true}, nil
}

func (d *fakeDriver) Settle(_ context.Context, _ time.Duration) error { return nil }

func (d *fakeDriver) CurrentURL() string { return "https://app.test" }

// fakeDecider отдает заранее подготовленные решения и проверки цели.
type fakeDecider struct {
	decisions []*llm.Decision
	nextErrs  []error
	nextCalls int

	goalCompleteAfter int // Проверка цели становится истинной после N ложных
	goalCalls         int
}

func (f *fakeDecider) DetectLogin(_ context.Context, _ []byte, _ *uint) (*llm.LoginCheck, error) {
	return &llm.LoginCheck{IsLoginPage: false}, nil
}

func (f *fakeDecider) CheckGoal(_ context.Context, _ []byte, _, _ string, _ *uint) (*llm.GoalCheck, error) {
	f.goalCalls++
	if f.goalCompleteAfter >= 0 && f.goalCalls > f.goalCompleteAfter {
		return &llm.GoalCheck{Completed: true}, nil
	}
	return &llm.GoalCheck{Completed: false}, nil
}

func (f *fakeDecider) NextAction(_ context.Context, _ []byte, _, _, _ string, _ *uint) (*llm.Decision, error) {
	i := f.nextCalls
	f.nextCalls++
	if i < len(f.nextErrs) && f.nextErrs[i] != nil {
		return nil, f.nextErrs[i]
	}
	if len(f.decisions) == 0 {
		return &llm.Decision{Event: llm.EventDone}, nil
	}
	if i >= len(f.decisions) {
		i = len(f.decisions) - 1
	}
	return f.decisions[i], nil
}

func (f *fakeDecider) Complete(_ context.Context, _, _ string, _ *uint) (string, error) {
	return "", nil
}

// fakeRecorder собирает записи шагов в памяти.
type fakeRecorder struct {
	steps     []capture.StepRecord
	finalized string
}

func (f *fakeRecorder) SaveStep(rec capture.StepRecord, _ []byte) (string, error) {
	f.steps = append(f.steps, rec)
	return rec.Screenshot, nil
}

func (f *fakeRecorder) SaveFinal(_ []byte) (string, error) { return "final.png", nil }

func (f *fakeRecorder) Finalize(status string) (string, error) {
	f.finalized = status
	return "report.html", nil
}

func (f *fakeRecorder) Dir() string { return "" }

func testLogger() *logger.Zap {
	return &logger.Zap{Logger: zap.NewNop()}
}

func testTask() *taskparse.Task {
	return &taskparse.Task{
		App:        "Asana",
		StartURL:   "https://app.asana.com",
		ActionHint: "create a task",
		Slug:       "create_a_task",
	}
}

func page(shot string, elements ...inspector.ElementDescriptor) fakePage {
	return fakePage{
		shot: []byte(shot),
		snap: inspector.NewSnapshot("https://app.test", "Test", elements),
	}
}

func newTestAgent(driver *fakeDriver, decider llm.DecisionClient, rec *fakeRecorder, cfg Config) *Agent {
	if cfg.LoginPollInterval == 0 {
		cfg.LoginPollInterval = time.Millisecond
	}
	if cfg.LoginMaxWait == 0 {
		cfg.LoginMaxWait = 100 * time.Millisecond
	}
	if cfg.SettleWait == 0 {
		cfg.SettleWait = time.Microsecond
	}
	return New(driver, decider, rec, nil, testLogger(), cfg)
}

func TestRunThreeStepScenario(t *testing.T) {
	input := inspector.ElementDescriptor{Kind: "input", Placeholder: "Task name", Path: "form/0"}

	driver := &fakeDriver{
		advanceOnClick: true,
		pages: []fakePage{
			page("s0", el("button", "New", "nav/0")),
			page("s1", input),
			page("s2", el("button", "Submit", "form/1")),
			page("s3"),
		},
	}
	decider := &fakeDecider{
		goalCompleteAfter: 3,
		decisions: []*llm.Decision{
			{Event: llm.EventClick, Text: "New"},
			{Event: llm.EventFill, Text: "Task name", Value: "Roadmap"},
			{Event: llm.EventClick, Text: "Submit"},
		},
	}
	rec := &fakeRecorder{}

	a := newTestAgent(driver, decider, rec, Config{MaxSteps: 10})
	result, err := a.Run(context.Background(), testTask(), "create a task in Asana")

	require.NoError(t, err)
	assert.Equal(t, StateDone, result.State)
	assert.Equal(t, 3, result.Steps)
	require.Len(t, rec.steps, 3)
	assert.Equal(t, "click", rec.steps[0].Action)
	assert.Equal(t, "fill", rec.steps[1].Action)
	assert.Equal(t, "click", rec.steps[2].Action)
	assert.Equal(t, [][2]string{{"Task name", "Roadmap"}}, driver.fills)
	assert.Equal(t, "done", rec.finalized)
	assert.Equal(t, "report.html", result.ReportPath)
}

func TestRunNeverExceedsMaxSteps(t *testing.T) {
	driver := &fakeDriver{
		pages: []fakePage{page("s0", el("button", "Save", "main/0"))},
	}
	decider := &fakeDecider{
		goalCompleteAfter: -1,
		decisions:         []*llm.Decision{{Event: llm.EventClick, Text: "Save"}},
	}
	rec := &fakeRecorder{}

	a := newTestAgent(driver, decider, rec, Config{MaxSteps: 3})
	result, err := a.Run(context.Background(), testTask(), "task")

	require.ErrorIs(t, err, ErrMaxSteps)
	assert.Equal(t, StateFailed, result.State)
	assert.Len(t, rec.steps, 3)
	assert.Equal(t, "failed", rec.finalized)
}

func TestStagnationReuseNeverTwiceInARow(t *testing.T) {
	// Страница не меняется: каждая вторая итерация переиспользует решение,
	// но никогда две подряд
	driver := &fakeDriver{
		pages: []fakePage{page("frozen", el("button", "Save", "main/0"))},
	}
	decider := &fakeDecider{
		goalCompleteAfter: -1,
		decisions:         []*llm.Decision{{Event: llm.EventClick, Text: "Save"}},
	}
	rec := &fakeRecorder{}

	a := newTestAgent(driver, decider, rec, Config{MaxSteps: 4})
	result, _ := a.Run(context.Background(), testTask(), "task")

	assert.Equal(t, StateFailed, result.State)
	assert.Len(t, rec.steps, 4)
	// Шаги 1 и 3 - свежие решения, шаги 2 и 4 - переиспользование
	assert.Equal(t, 2, decider.nextCalls)
	assert.Len(t, driver.clicks, 4)
}

func TestElementNotFoundContinuesLoop(t *testing.T) {
	driver := &fakeDriver{
		pages: []fakePage{page("s0", el("button", "Save", "main/0"))},
	}
	decider := &fakeDecider{
		goalCompleteAfter: -1,
		decisions:         []*llm.Decision{{Event: llm.EventClick, Text: "Add Task"}},
	}
	rec := &fakeRecorder{}

	a := newTestAgent(driver, decider, rec, Config{MaxSteps: 2})
	result, err := a.Run(context.Background(), testTask(), "task")

	require.ErrorIs(t, err, ErrMaxSteps)
	assert.Equal(t, StateFailed, result.State)
	require.Len(t, rec.steps, 2)
	assert.Equal(t, "not found", rec.steps[0].Outcome)
	assert.Empty(t, driver.clicks)
}

func TestLoginWaitTransitionsOnce(t *testing.T) {
	loginPage := browser.LoginProbe{HasPasswordField: true, HasLoginButton: true}
	driver := &fakeDriver{
		pages: []fakePage{page("s0")},
		probes: []browser.LoginProbe{
			loginPage, // Первичная проверка: требуется вход
			loginPage, // Опрос 1
			loginPage, // Опрос 2
			{HasAuthCookie: true}, // Опрос 3: вход выполнен
		},
	}
	decider := &fakeDecider{goalCompleteAfter: 0}
	rec := &fakeRecorder{}

	a := newTestAgent(driver, decider, rec, Config{MaxSteps: 5})
	result, err := a.Run(context.Background(), testTask(), "task")

	require.NoError(t, err)
	assert.Equal(t, StateDone, result.State)
	// Навигация выполняется ровно один раз, без повторов после входа
	assert.Equal(t, []string{"https://app.asana.com"}, driver.navs)
}

func TestLoginTimeout(t *testing.T) {
	loginPage := browser.LoginProbe{LoginURL: true}
	driver := &fakeDriver{pages: []fakePage{page("s0")}}
	// Все опросы говорят - вход не выполнен
	for i := 0; i < 1000; i++ {
		driver.probes = append(driver.probes, loginPage)
	}
	decider := &fakeDecider{goalCompleteAfter: 0}
	rec := &fakeRecorder{}

	a := newTestAgent(driver, decider, rec, Config{
		MaxSteps:          5,
		LoginPollInterval: time.Millisecond,
		LoginMaxWait:      10 * time.Millisecond,
	})
	result, err := a.Run(context.Background(), testTask(), "task")

	require.ErrorIs(t, err, ErrLoginTimeout)
	assert.Equal(t, StateFailed, result.State)
	assert.Equal(t, ReasonLoginTimeout, result.Summary)
}

func TestDecisionParseRetriesOnceThenFails(t *testing.T) {
	driver := &fakeDriver{
		pages: []fakePage{page("s0", el("button", "Save", "main/0"))},
	}
	decider := &fakeDecider{
		goalCompleteAfter: -1,
		nextErrs:          []error{llm.ErrDecisionParse, llm.ErrDecisionParse},
	}
	rec := &fakeRecorder{}

	a := newTestAgent(driver, decider, rec, Config{MaxSteps: 5})
	result, err := a.Run(context.Background(), testTask(), "task")

	require.ErrorIs(t, err, llm.ErrDecisionParse)
	assert.Equal(t, StateFailed, result.State)
	assert.Equal(t, ReasonDecisionParse, result.Summary)
	assert.Equal(t, 2, decider.nextCalls)
}

func TestDecisionParseRecoversAfterRetry(t *testing.T) {
	driver := &fakeDriver{
		advanceOnClick: true,
		pages: []fakePage{
			page("s0", el("button", "Save", "main/0")),
			page("s1"),
		},
	}
	decider := &fakeDecider{
		goalCompleteAfter: 1,
		nextErrs:          []error{llm.ErrDecisionParse},
		decisions: []*llm.Decision{
			{Event: llm.EventClick, Text: "Save"},
			{Event: llm.EventClick, Text: "Save"},
		},
	}
	rec := &fakeRecorder{}

	a := newTestAgent(driver, decider, rec, Config{MaxSteps: 5})
	result, err := a.Run(context.Background(), testTask(), "task")

	require.NoError(t, err)
	assert.Equal(t, StateDone, result.State)
	assert.Equal(t, 1, result.Steps)
}

func TestCancellationFailsPreservingSteps(t *testing.T) {
	driver := &fakeDriver{
		advanceOnClick: true,
		pages: []fakePage{
			page("s0", el("button", "Save", "main/0")),
			page("s1", el("button", "Save", "main/1")),
			page("s2", el("button", "Save", "main/2")),
			page("s3", el("button", "Save", "main/3")),
		},
	}
	decider := &fakeDecider{
		goalCompleteAfter: -1,
		decisions:         []*llm.Decision{{Event: llm.EventClick, Text: "Save"}},
	}
	rec := &fakeRecorder{}

	ctx, cancel := context.WithCancel(context.Background())
	steps := 0
	// Отменяем после второго скриншота через обертку решения
	decider2 := &cancelAfterDecider{inner: decider, cancel: cancel, after: 2, calls: &steps}

	a := newTestAgent(driver, decider2, rec, Config{MaxSteps: 10})
	result, err := a.Run(ctx, testTask(), "task")

	require.Error(t, err)
	assert.Equal(t, StateFailed, result.State)
	// Записи выполненных шагов сохранены
	assert.Len(t, rec.steps, 2)
	assert.Equal(t, "failed", rec.finalized)
}

// cancelAfterDecider отменяет контекст после заданного числа решений.
type cancelAfterDecider struct {
	inner  *fakeDecider
	cancel context.CancelFunc
	after  int
	calls  *int
}

func (c *cancelAfterDecider) DetectLogin(ctx context.Context, shot []byte, runID *uint) (*llm.LoginCheck, error) {
	return c.inner.DetectLogin(ctx, shot, runID)
}

func (c *cancelAfterDecider) CheckGoal(ctx context.Context, shot []byte, goal, history string, runID *uint) (*llm.GoalCheck, error) {
	return c.inner.CheckGoal(ctx, shot, goal, history, runID)
}

func (c *cancelAfterDecider) NextAction(ctx context.Context, shot []byte, goal, history, newElements string, runID *uint) (*llm.Decision, error) {
	*c.calls++
	if *c.calls >= c.after {
		c.cancel()
	}
	return c.inner.NextAction(ctx, shot, goal, history, newElements, runID)
}

func (c *cancelAfterDecider) Complete(ctx context.Context, kind, prompt string, runID *uint) (string, error) {
	return c.inner.Complete(ctx, kind, prompt, runID)
}

func TestClickHitsAppearedElementCoordinates(t *testing.T) {
	// Старая и появившаяся кнопки носят одну метку: клик обязан уйти
	// по координатам появившейся, а не в повторный поиск по тексту
	existing := inspector.ElementDescriptor{
		Kind: "button", Text: "Create", Path: "main/0",
		Bounds: inspector.Bounds{X: 10, Y: 10, Width: 100, Height: 20},
	}
	appeared := inspector.ElementDescriptor{
		Kind: "button", Text: "Create", Path: "dialog/0",
		Bounds: inspector.Bounds{X: 300, Y: 400, Width: 100, Height: 20},
	}
	snap := inspector.NewSnapshot("https://app.test", "Test", []inspector.ElementDescriptor{existing, appeared})
	delta := inspector.Delta{Appeared: []inspector.ElementDescriptor{appeared}}

	driver := &fakeDriver{pages: []fakePage{page("s0")}}
	a := newTestAgent(driver, &fakeDecider{}, &fakeRecorder{}, Config{})

	outcome := a.perform(context.Background(), &llm.Decision{Event: llm.EventClick, Text: "Create"}, snap, delta)

	require.Equal(t, "success", outcome)
	require.Len(t, driver.clickAts, 1)
	assert.Equal(t, [2]float64{350, 410}, driver.clickAts[0])
	assert.Empty(t, driver.clicks)
}

func TestFillHitsResolvedElementCoordinates(t *testing.T) {
	field := inspector.ElementDescriptor{
		Kind: "input", Placeholder: "Task name", Path: "form/0",
		Bounds: inspector.Bounds{X: 50, Y: 200, Width: 200, Height: 30},
	}
	snap := inspector.NewSnapshot("https://app.test", "Test", []inspector.ElementDescriptor{field})

	driver := &fakeDriver{pages: []fakePage{page("s0")}}
	a := newTestAgent(driver, &fakeDecider{}, &fakeRecorder{}, Config{})

	outcome := a.perform(context.Background(),
		&llm.Decision{Event: llm.EventFill, Text: "Task name", Value: "Roadmap"},
		snap, inspector.Delta{})

	require.Equal(t, "success", outcome)
	require.Len(t, driver.fillAts, 1)
	assert.Equal(t, fillAtCall{x: 150, y: 215, value: "Roadmap"}, driver.fillAts[0])
	assert.Empty(t, driver.fills)
}

func TestFillValueFilteredInStepRecords(t *testing.T) {
	input := inspector.ElementDescriptor{Kind: "input", Placeholder: "Secret", Path: "form/0"}

	driver := &fakeDriver{
		advanceOnClick: true,
		pages: []fakePage{
			page("s0", input),
			page("s1"),
		},
	}
	decider := &fakeDecider{
		goalCompleteAfter: 1,
		decisions: []*llm.Decision{
			{Event: llm.EventFill, Text: "Secret", Value: "MySecretPassword1"},
		},
	}
	rec := &fakeRecorder{}

	a := newTestAgent(driver, decider, rec, Config{MaxSteps: 5})
	_, err := a.Run(context.Background(), testTask(), "task")

	require.NoError(t, err)
	// В поле страницы уходит настоящее значение
	require.Len(t, driver.fills, 1)
	assert.Equal(t, "MySecretPassword1", driver.fills[0][1])
	// В записи шага - отфильтрованное
	require.Len(t, rec.steps, 1)
	assert.Equal(t, "[FILTERED]", rec.steps[0].Value)
}

func TestDecisionClientFailureNotLabeledParse(t *testing.T) {
	driver := &fakeDriver{
		pages: []fakePage{page("s0", el("button", "Save", "main/0"))},
	}
	decider := &fakeDecider{
		goalCompleteAfter: -1,
		nextErrs:          []error{errors.New("api timeout")},
	}
	rec := &fakeRecorder{}

	a := newTestAgent(driver, decider, rec, Config{MaxSteps: 5})
	result, err := a.Run(context.Background(), testTask(), "task")

	require.Error(t, err)
	assert.Equal(t, StateFailed, result.State)
	assert.Equal(t, ReasonDecisionFailed, result.Summary)
	assert.NotEqual(t, ReasonDecisionParse, result.Summary)
}

func TestHistoryFormat(t *testing.T) {
	h := NewHistory()
	assert.Equal(t, "Starting fresh.", h.Format())

	h.Append(HistoryEntry{Step: 1, Action: "click", Target: "New", Outcome: "success"})
	h.Append(HistoryEntry{Step: 2, Action: "fill", Target: "Task name", Value: "Roadmap", Outcome: "success"})

	got := h.Format()
	assert.Contains(t, got, "Step 1: Clicked 'New' → success")
	assert.Contains(t, got, "Step 2: Filled 'Task name' with 'Roadmap' → success")

	// Переполненная история сжимается до сводки
	for i := 3; i < 40; i++ {
		h.Append(HistoryEntry{Step: i, Action: "click", Target: "A very long target label to inflate the context well past its limit", Outcome: "success"})
	}
	compact := h.Format()
	assert.LessOrEqual(t, len(compact), historyCharLimit+200)
	assert.Contains(t, compact, "total actions")
}
