package capture

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/ternarybob/snapdiff/internal/common"
)

// chromedpSession drives a locally launched headless Chrome. Useful for
// development boxes without a Selenium grid.
type chromedpSession struct {
	ctx             context.Context
	cancelBrowser   context.CancelFunc
	cancelAllocator context.CancelFunc
	navigateTimeout time.Duration
}

func newChromedpSession(parent context.Context, config *common.CaptureConfig) (Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(config.UserAgent),
	)

	allocCtx, cancelAllocator := chromedp.NewExecAllocator(parent, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// Launch the browser up front so a missing Chrome binary fails the
	// session open, not the first navigation.
	if err := chromedp.Run(browserCtx, chromedp.Navigate("about:blank")); err != nil {
		cancelBrowser()
		cancelAllocator()
		return nil, fmt.Errorf("failed to start chrome: %w", err)
	}

	return &chromedpSession{
		ctx:             browserCtx,
		cancelBrowser:   cancelBrowser,
		cancelAllocator: cancelAllocator,
		navigateTimeout: config.NavigateTimeout,
	}, nil
}

func (s *chromedpSession) Navigate(url string) error {
	ctx, cancel := context.WithTimeout(s.ctx, s.navigateTimeout)
	defer cancel()

	if err := chromedp.Run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

func (s *chromedpSession) WaitReady(xpath string, timeout, interval time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		var count int
		err := chromedp.Run(s.ctx, chromedp.Evaluate(
			fmt.Sprintf(`document.evaluate(%q, document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null).snapshotLength`, xpath),
			&count,
		))
		if err == nil && count > 0 {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("element %s did not appear within %s", xpath, timeout)
		}
		select {
		case <-s.ctx.Done():
			return s.ctx.Err()
		case <-time.After(interval):
		}
	}
}

func (s *chromedpSession) Screenshot() ([]byte, float64, float64, error) {
	var width, height float64
	var data []byte

	err := chromedp.Run(s.ctx,
		chromedp.Evaluate(`document.documentElement.scrollWidth`, &width),
		chromedp.Evaluate(`document.documentElement.scrollHeight`, &height),
		chromedp.FullScreenshot(&data, 100),
	)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to take screenshot: %w", err)
	}

	return data, width, height, nil
}

func (s *chromedpSession) Close() error {
	s.cancelBrowser()
	s.cancelAllocator()
	return nil
}
