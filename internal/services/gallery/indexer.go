package gallery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/snapdiff/internal/models"
)

// storyEntryType is the manifest entry type worth capturing; docs and other
// entry types render no stable story frame.
const storyEntryType = "story"

// manifest mirrors the gallery's index.json shape. Only entry ids and types
// are consumed; the outer map keys are ignored.
type manifest struct {
	V       int64                    `json:"v"`
	Entries map[string]manifestEntry `json:"entries"`
}

type manifestEntry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

// Indexer fetches a gallery manifest and turns its stories into capture
// descriptors.
type Indexer struct {
	client *http.Client
	logger arbor.ILogger
}

// NewIndexer creates a gallery indexer.
func NewIndexer(logger arbor.ILogger) *Indexer {
	return &Indexer{
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

// Descriptors fetches `<baseURL>/index.json` and returns one capture
// descriptor per story entry, tagged with the given side. Any failure fails
// the whole index; there is no partial result.
func (ix *Indexer) Descriptors(ctx context.Context, baseURL string, side models.SnapshotKind) ([]models.CaptureDescriptor, error) {
	manifestURL := fmt.Sprintf("%s/index.json", baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, manifestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build manifest request: %w", err)
	}

	resp, err := ix.client.Do(req)
	if err != nil {
		ix.logger.Error().Err(err).Str("url", manifestURL).Msg("Failed to fetch gallery manifest")
		return nil, fmt.Errorf("failed to find story book config at %s: %w", baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("gallery manifest at %s returned status %d", manifestURL, resp.StatusCode)
	}

	var m manifest
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode gallery manifest at %s: %w", manifestURL, err)
	}

	descriptors := make([]models.CaptureDescriptor, 0, len(m.Entries))
	for _, entry := range m.Entries {
		if entry.Type != storyEntryType {
			continue
		}
		descriptors = append(descriptors, models.CaptureDescriptor{
			URL:  fmt.Sprintf("%s/iframe.html?args=&id=%s&viewMode=story", baseURL, entry.ID),
			Name: entry.ID,
			Kind: side,
		})
	}

	ix.logger.Debug().
		Str("url", baseURL).
		Int("stories", len(descriptors)).
		Int("entries", len(m.Entries)).
		Msg("Indexed gallery manifest")

	return descriptors, nil
}
