package gallery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/snapdiff/internal/common"
	"github.com/ternarybob/snapdiff/internal/models"
)

const manifestFixture = `{
	"v": 5,
	"entries": {
		"button--primary": {
			"id": "button--primary",
			"name": "Primary",
			"title": "Components/Button",
			"type": "story"
		},
		"button--docs": {
			"id": "button--docs",
			"name": "Docs",
			"title": "Components/Button",
			"type": "docs"
		},
		"card--default": {
			"id": "card--default",
			"name": "Default",
			"title": "Components/Card",
			"type": "story"
		}
	}
}`

func TestDescriptorsBuildsStoryURLs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/index.json", r.URL.Path)
		w.Write([]byte(manifestFixture))
	}))
	defer server.Close()

	indexer := NewIndexer(common.GetLogger())
	descriptors, err := indexer.Descriptors(context.Background(), server.URL, models.SnapshotKindNew)
	require.NoError(t, err)

	// Docs entries are skipped.
	require.Len(t, descriptors, 2)

	byName := make(map[string]models.CaptureDescriptor)
	for _, d := range descriptors {
		byName[d.Name] = d
	}

	button, ok := byName["button--primary"]
	require.True(t, ok)
	assert.Equal(t, server.URL+"/iframe.html?args=&id=button--primary&viewMode=story", button.URL)
	assert.Equal(t, models.SnapshotKindNew, button.Kind)

	_, hasDocs := byName["button--docs"]
	assert.False(t, hasDocs)
}

func TestDescriptorsTagsRequestedSide(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(manifestFixture))
	}))
	defer server.Close()

	indexer := NewIndexer(common.GetLogger())
	descriptors, err := indexer.Descriptors(context.Background(), server.URL, models.SnapshotKindOld)
	require.NoError(t, err)

	for _, d := range descriptors {
		assert.Equal(t, models.SnapshotKindOld, d.Kind)
	}
}

func TestDescriptorsNonSuccessStatusFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not here", http.StatusNotFound)
	}))
	defer server.Close()

	indexer := NewIndexer(common.GetLogger())
	_, err := indexer.Descriptors(context.Background(), server.URL, models.SnapshotKindNew)
	assert.Error(t, err)
}

func TestDescriptorsMalformedManifestFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	indexer := NewIndexer(common.GetLogger())
	_, err := indexer.Descriptors(context.Background(), server.URL, models.SnapshotKindNew)
	assert.Error(t, err)
}

func TestDescriptorsUnreachableGalleryFails(t *testing.T) {
	indexer := NewIndexer(common.GetLogger())
	_, err := indexer.Descriptors(context.Background(), "http://127.0.0.1:1", models.SnapshotKindNew)
	assert.Error(t, err)
}

func TestDescriptorsEmptyManifest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"v": 5, "entries": {}}`))
	}))
	defer server.Close()

	indexer := NewIndexer(common.GetLogger())
	descriptors, err := indexer.Descriptors(context.Background(), server.URL, models.SnapshotKindNew)
	require.NoError(t, err)
	assert.Empty(t, descriptors)
}
