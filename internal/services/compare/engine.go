package compare

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"runtime"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/snapdiff/internal/models"
	"golang.org/x/sync/errgroup"
)

// diffRatioThreshold is the fraction of differing pixels below which a pair
// counts as visually identical and produces no diff images.
const diffRatioThreshold = 1e-4

// DiffResult is the rendered output for one changed pair.
type DiffResult struct {
	Name      string
	ColorDiff models.RawImage
	LcsDiff   models.RawImage
}

// Engine renders diff images for paired captures across a worker pool.
type Engine struct {
	logger      arbor.ILogger
	parallelism int
	threshold   float64
	rate        float64
}

// NewEngine builds a diff engine sized to the machine.
func NewEngine(logger arbor.ILogger) *Engine {
	return &Engine{
		logger:      logger,
		parallelism: runtime.GOMAXPROCS(0),
		threshold:   diffRatioThreshold,
		rate:        DefaultRate,
	}
}

// Diff renders color and subsequence diff images for every pair whose
// difference ratio reaches the threshold. Pairs that fail to decode or whose
// dimensions differ are logged and skipped. Output order follows input
// order.
func (e *Engine) Diff(ctx context.Context, pairs []Pair) ([]DiffResult, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	size := chunkSize(len(pairs), e.parallelism)
	chunks := make([][]DiffResult, (len(pairs)+size-1)/size)
	g, gctx := errgroup.WithContext(ctx)

	chunkIndex := 0
	for start := 0; start < len(pairs); start += size {
		end := start + size
		if end > len(pairs) {
			end = len(pairs)
		}
		chunk := pairs[start:end]
		index := chunkIndex
		chunkIndex++

		g.Go(func() error {
			results := make([]DiffResult, 0, len(chunk))
			for i := range chunk {
				if err := gctx.Err(); err != nil {
					return err
				}
				result, ok := e.diffPair(&chunk[i])
				if ok {
					results = append(results, result)
				}
			}
			chunks[index] = results
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("diff workers failed: %w", err)
	}

	var results []DiffResult
	for _, chunk := range chunks {
		results = append(results, chunk...)
	}

	e.logger.Debug().
		Int("pairs", len(pairs)).
		Int("changed", len(results)).
		Msg("Diff pass complete")

	return results, nil
}

// chunkSize splits n pairs so the chunk count never exceeds the worker
// count.
func chunkSize(n, workers int) int {
	if workers < 1 {
		workers = 1
	}
	size := (n + workers - 1) / workers
	if size < 1 {
		return 1
	}
	return size
}

// diffPair renders the diff images for one pair, or reports it unchanged.
func (e *Engine) diffPair(pair *Pair) (DiffResult, bool) {
	newImg, _, err := image.Decode(bytes.NewReader(pair.New.Data))
	if err != nil {
		e.logger.Error().Err(err).Str("story", pair.New.Name).Msg("Failed to decode new screenshot")
		return DiffResult{}, false
	}
	oldImg, _, err := image.Decode(bytes.NewReader(pair.Old.Data))
	if err != nil {
		e.logger.Error().Err(err).Str("story", pair.Old.Name).Msg("Failed to decode old screenshot")
		return DiffResult{}, false
	}

	if DiffRatio(newImg, oldImg) < e.threshold {
		return DiffResult{}, false
	}

	if !newImg.Bounds().Size().Eq(oldImg.Bounds().Size()) {
		e.logger.Warn().
			Str("story", pair.New.Name).
			Str("new_size", newImg.Bounds().Size().String()).
			Str("old_size", oldImg.Bounds().Size().String()).
			Msg("Skipping diff render for resized story")
		return DiffResult{}, false
	}

	colorImg := ColorDiff(newImg, oldImg)
	lcsImg := LcsDiff(newImg, oldImg, e.rate)

	colorData, err := encodePNG(colorImg)
	if err != nil {
		e.logger.Error().Err(err).Str("story", pair.New.Name).Msg("Failed to encode color diff")
		return DiffResult{}, false
	}
	lcsData, err := encodePNG(lcsImg)
	if err != nil {
		e.logger.Error().Err(err).Str("story", pair.New.Name).Msg("Failed to encode lcs diff")
		return DiffResult{}, false
	}

	width := float64(newImg.Bounds().Dx())
	height := float64(newImg.Bounds().Dy())

	return DiffResult{
		Name: pair.New.Name,
		ColorDiff: models.RawImage{
			Data:   colorData,
			Width:  width,
			Height: height,
			Kind:   models.SnapshotKindColorDiff,
			Name:   pair.New.Name,
		},
		LcsDiff: models.RawImage{
			Data:   lcsData,
			Width:  width,
			Height: height,
			Kind:   models.SnapshotKindLcsDiff,
			Name:   pair.New.Name,
		},
	}, true
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
