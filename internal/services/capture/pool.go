package capture

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/snapdiff/internal/common"
	"github.com/ternarybob/snapdiff/internal/interfaces"
	"github.com/ternarybob/snapdiff/internal/models"
	"golang.org/x/sync/errgroup"
)

// Session is one browser context. A pool worker opens exactly one session,
// walks its chunk of descriptors through it, and closes it on exit.
type Session interface {
	// Navigate loads the story URL, bounded by the configured page-load timeout.
	Navigate(url string) error
	// WaitReady polls for the mount-marker element until it appears or the
	// ceiling elapses.
	WaitReady(xpath string, timeout, interval time.Duration) error
	// Screenshot locates the page root, reads its bounding size and returns
	// its PNG screenshot.
	Screenshot() (data []byte, width, height float64, err error)
	Close() error
}

// sessionFactory opens a fresh browser session.
type sessionFactory func(ctx context.Context) (Session, error)

// Pool fans screenshot work out over a bounded set of browser sessions.
type Pool struct {
	config     *common.CaptureConfig
	logger     arbor.ILogger
	newSession sessionFactory
}

// NewCapturer builds the capture pool for the configured driver.
func NewCapturer(config *common.CaptureConfig, logger arbor.ILogger) (interfaces.Capturer, error) {
	var factory sessionFactory
	switch config.Driver {
	case "webdriver":
		factory = func(ctx context.Context) (Session, error) {
			return newWebDriverSession(config)
		}
	case "chromedp":
		factory = func(ctx context.Context) (Session, error) {
			return newChromedpSession(ctx, config)
		}
	default:
		return nil, fmt.Errorf("unknown capture driver %q", config.Driver)
	}

	return &Pool{
		config:     config,
		logger:     logger,
		newSession: factory,
	}, nil
}

// NewPoolWithFactory builds a pool around a custom session factory. Used by
// tests to substitute fake sessions.
func NewPoolWithFactory(config *common.CaptureConfig, logger arbor.ILogger, factory func(ctx context.Context) (Session, error)) *Pool {
	return &Pool{
		config:     config,
		logger:     logger,
		newSession: factory,
	}
}

// chunkSize partitions n descriptors so the number of chunks, and therefore
// concurrent sessions, never exceeds maxSessions.
func chunkSize(n, maxSessions int) int {
	if maxSessions < 1 {
		maxSessions = 1
	}
	size := (n + maxSessions - 1) / maxSessions
	if size < 1 {
		size = 1
	}
	return size
}

// Capture screenshots every descriptor. The returned slice is in 1:1
// positional correspondence with the input; each entry carries either a raw
// image or the error that prevented it. Per-descriptor and per-worker
// failures never abort the call.
func (p *Pool) Capture(ctx context.Context, descriptors []models.CaptureDescriptor) ([]models.CaptureResult, error) {
	results := make([]models.CaptureResult, len(descriptors))
	if len(descriptors) == 0 {
		return results, nil
	}

	size := chunkSize(len(descriptors), p.config.MaxSessions)

	g, gctx := errgroup.WithContext(ctx)
	workers := 0
	for start := 0; start < len(descriptors); start += size {
		end := start + size
		if end > len(descriptors) {
			end = len(descriptors)
		}
		chunk := descriptors[start:end]
		out := results[start:end]
		workers++

		g.Go(func() error {
			p.captureChunk(gctx, chunk, out)
			return nil
		})
	}

	p.logger.Debug().
		Int("descriptors", len(descriptors)).
		Int("workers", workers).
		Int("chunk_size", size).
		Msg("Capture fan-out started")

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("capture join failed: %w", err)
	}

	return results, nil
}

// captureChunk runs one chunk inside a single session. A session-open
// failure marks every descriptor in the chunk failed; a session that dies
// mid-chunk marks the remaining descriptors failed.
func (p *Pool) captureChunk(ctx context.Context, chunk []models.CaptureDescriptor, out []models.CaptureResult) {
	session, err := p.newSession(ctx)
	if err != nil {
		p.logger.Error().Err(err).Int("descriptors", len(chunk)).Msg("Unable to open browser session")
		for i := range chunk {
			out[i] = models.CaptureResult{
				Name: chunk[i].Name,
				Err:  fmt.Errorf("failed to open browser session: %w", err),
			}
		}
		return
	}
	defer session.Close()

	for i := range chunk {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(chunk); j++ {
				out[j] = models.CaptureResult{Name: chunk[j].Name, Err: err}
			}
			return
		}

		image, err := p.captureOne(session, &chunk[i])
		if err != nil {
			p.logger.Error().Err(err).Str("story", chunk[i].Name).Msg("Error capturing screenshot")
			out[i] = models.CaptureResult{Name: chunk[i].Name, Err: err}
			continue
		}
		out[i] = models.CaptureResult{Name: chunk[i].Name, Image: image}
	}
}

func (p *Pool) captureOne(session Session, descriptor *models.CaptureDescriptor) (*models.RawImage, error) {
	if err := session.Navigate(descriptor.URL); err != nil {
		return nil, fmt.Errorf("unable to navigate to %s: %w", descriptor.URL, err)
	}

	if err := session.WaitReady(p.config.ReadySelector, p.config.ReadyTimeout, p.config.ReadyPollEvery); err != nil {
		return nil, fmt.Errorf("story %s never became ready: %w", descriptor.Name, err)
	}

	data, width, height, err := session.Screenshot()
	if err != nil {
		return nil, fmt.Errorf("unable to screenshot %s: %w", descriptor.Name, err)
	}

	p.logger.Debug().
		Str("story", descriptor.Name).
		Str("size", humanize.Bytes(uint64(len(data)))).
		Msg("Captured screenshot")

	return &models.RawImage{
		Data:   data,
		Width:  width,
		Height: height,
		Kind:   descriptor.Kind,
		Name:   descriptor.Name,
	}, nil
}
