package render

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/jgoulah/callcharts/pkg/models"
)

// Snapshot renders the chart in a headless browser and returns PNG bytes
func Snapshot(ctx context.Context, chart models.ChartID, s models.Series) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.WindowSize(width, height),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, 60*time.Second)
	defer cancel()

	doc := Document(chart, s)

	var buf []byte
	if err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, doc).Do(ctx)
		}),
		chromedp.WaitVisible(`#chart`, chromedp.ByQuery),
		chromedp.Screenshot(`#chart`, &buf, chromedp.ByQuery),
	); err != nil {
		return nil, fmt.Errorf("rendering chart: %w", err)
	}

	return buf, nil
}
