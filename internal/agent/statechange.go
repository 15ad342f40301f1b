package agent

import (
	"context"
	"fmt"

	"webGuide/internal/inspector"
)

// afterAction ждет, пока страница отработает асинхронные обновления,
// захватывает свежий снимок и считает дельту относительно снимка до действия.
// Обновления UI не синхронны с действием, без паузы дельта почти всегда пуста.
func (a *Agent) afterAction(ctx context.Context, prior *inspector.Snapshot) (*inspector.Snapshot, inspector.Delta, error) {
	if err := a.driver.Settle(ctx, a.cfg.SettleWait); err != nil {
		return nil, inspector.Delta{}, err
	}

	current, err := a.driver.Snapshot(ctx)
	if err != nil {
		return nil, inspector.Delta{}, fmt.Errorf("захват снимка после действия: %w", err)
	}

	return current, inspector.Diff(prior, current), nil
}
