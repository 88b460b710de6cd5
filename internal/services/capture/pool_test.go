package capture

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/snapdiff/internal/common"
	"github.com/ternarybob/snapdiff/internal/models"
)

type fakeSession struct {
	mu        sync.Mutex
	navigated []string
	failURL   string
	closed    bool
}

func (s *fakeSession) Navigate(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.navigated = append(s.navigated, url)
	if url == s.failURL {
		return errors.New("navigation failed")
	}
	return nil
}

func (s *fakeSession) WaitReady(xpath string, timeout, interval time.Duration) error {
	return nil
}

func (s *fakeSession) Screenshot() ([]byte, float64, float64, error) {
	return []byte("png"), 100, 200, nil
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func testCaptureConfig(maxSessions int) *common.CaptureConfig {
	cfg := &common.NewDefaultConfig().Capture
	cfg.MaxSessions = maxSessions
	return cfg
}

func descriptors(names ...string) []models.CaptureDescriptor {
	out := make([]models.CaptureDescriptor, 0, len(names))
	for _, name := range names {
		out = append(out, models.CaptureDescriptor{
			URL:  "http://gallery/" + name,
			Name: name,
			Kind: models.SnapshotKindNew,
		})
	}
	return out
}

func TestChunkSizeNeverExceedsMaxSessions(t *testing.T) {
	cases := []struct {
		n, max, want int
	}{
		{n: 10, max: 4, want: 3},
		{n: 12, max: 4, want: 3},
		{n: 3, max: 4, want: 1},
		{n: 1, max: 1, want: 1},
		{n: 100, max: 7, want: 15},
		{n: 5, max: 0, want: 5},
	}

	for _, tc := range cases {
		got := chunkSize(tc.n, tc.max)
		assert.Equal(t, tc.want, got, "n=%d max=%d", tc.n, tc.max)

		if tc.max > 0 {
			workers := (tc.n + got - 1) / got
			assert.LessOrEqual(t, workers, tc.max, "n=%d max=%d", tc.n, tc.max)
		}
	}
}

func TestCaptureReturnsOneResultPerDescriptor(t *testing.T) {
	var opened int32
	pool := NewPoolWithFactory(testCaptureConfig(3), common.GetLogger(), func(ctx context.Context) (Session, error) {
		atomic.AddInt32(&opened, 1)
		return &fakeSession{}, nil
	})

	input := descriptors("a", "b", "c", "d", "e", "f", "g")
	results, err := pool.Capture(context.Background(), input)
	require.NoError(t, err)

	require.Len(t, results, len(input))
	for i, result := range results {
		assert.Equal(t, input[i].Name, result.Name)
		require.NoError(t, result.Err)
		require.NotNil(t, result.Image)
		assert.Equal(t, float64(100), result.Image.Width)
		assert.Equal(t, float64(200), result.Image.Height)
		assert.Equal(t, models.SnapshotKindNew, result.Image.Kind)
	}

	assert.LessOrEqual(t, atomic.LoadInt32(&opened), int32(3))
}

func TestCapturePerDescriptorFailureDoesNotAbort(t *testing.T) {
	pool := NewPoolWithFactory(testCaptureConfig(1), common.GetLogger(), func(ctx context.Context) (Session, error) {
		return &fakeSession{failURL: "http://gallery/b"}, nil
	})

	results, err := pool.Capture(context.Background(), descriptors("a", "b", "c"))
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.Nil(t, results[1].Image)
	assert.NoError(t, results[2].Err)
}

func TestCaptureSessionOpenFailureMarksWholeChunk(t *testing.T) {
	var attempt int32
	pool := NewPoolWithFactory(testCaptureConfig(2), common.GetLogger(), func(ctx context.Context) (Session, error) {
		if atomic.AddInt32(&attempt, 1) == 1 {
			return nil, errors.New("grid unavailable")
		}
		return &fakeSession{}, nil
	})

	results, err := pool.Capture(context.Background(), descriptors("a", "b", "c", "d"))
	require.NoError(t, err)

	require.Len(t, results, 4)
	failed := 0
	succeeded := 0
	for _, result := range results {
		if result.Err != nil {
			failed++
		} else {
			succeeded++
		}
	}
	// One chunk of two failed to open, the other completed.
	assert.Equal(t, 2, failed)
	assert.Equal(t, 2, succeeded)
}

func TestCaptureEmptyInput(t *testing.T) {
	pool := NewPoolWithFactory(testCaptureConfig(4), common.GetLogger(), func(ctx context.Context) (Session, error) {
		t.Fatal("no session should be opened")
		return nil, nil
	})

	results, err := pool.Capture(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCaptureClosesSessions(t *testing.T) {
	var sessions []*fakeSession
	var mu sync.Mutex
	pool := NewPoolWithFactory(testCaptureConfig(2), common.GetLogger(), func(ctx context.Context) (Session, error) {
		s := &fakeSession{}
		mu.Lock()
		sessions = append(sessions, s)
		mu.Unlock()
		return s, nil
	})

	_, err := pool.Capture(context.Background(), descriptors("a", "b", "c", "d"))
	require.NoError(t, err)

	require.NotEmpty(t, sessions)
	for _, s := range sessions {
		assert.True(t, s.closed)
	}
}

func TestNewCapturerRejectsUnknownDriver(t *testing.T) {
	cfg := testCaptureConfig(2)
	cfg.Driver = "phantomjs"

	_, err := NewCapturer(cfg, common.GetLogger())
	assert.Error(t, err)
}
