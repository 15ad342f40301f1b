package browser

import (
	"context"
	"fmt"

	"webGuide/internal/inspector"
)

// Snapshot захватывает структурный снимок интерактивных элементов страницы.
func (b *PlaywrightBrowser) Snapshot(ctx context.Context) (*inspector.Snapshot, error) {
	page := b.getPage()
	if page == nil {
		return nil, fmt.Errorf("браузер не запущен")
	}
	return inspector.Capture(ctx, page)
}
