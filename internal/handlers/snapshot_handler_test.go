package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/snapdiff/internal/common"
	"github.com/ternarybob/snapdiff/internal/models"
	"github.com/ternarybob/snapdiff/internal/services/assets"
	"github.com/ternarybob/snapdiff/internal/services/compare"
	"github.com/ternarybob/snapdiff/internal/services/gallery"
	"github.com/ternarybob/snapdiff/internal/services/snapshot"
	"github.com/ternarybob/snapdiff/internal/storage/badger"
	"github.com/ternarybob/snapdiff/internal/storage/sqlite"
)

// emptyCapturer satisfies the capture interface for handler tests that never
// reach real screenshots.
type emptyCapturer struct{}

func (emptyCapturer) Capture(ctx context.Context, descriptors []models.CaptureDescriptor) ([]models.CaptureResult, error) {
	return make([]models.CaptureResult, len(descriptors)), nil
}

func newTestService(t *testing.T) *snapshot.Service {
	t.Helper()
	logger := common.GetLogger()

	sqliteDB, err := sqlite.NewSQLiteDB(logger, &common.SQLiteConfig{
		Path:          filepath.Join(t.TempDir(), "test.db"),
		CacheSizeMB:   8,
		BusyTimeoutMS: 1000,
	})
	require.NoError(t, err)
	t.Cleanup(func() { sqliteDB.Close() })

	badgerDB, err := badger.NewBadgerDB(logger, &common.BadgerConfig{Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { badgerDB.Close() })

	return snapshot.NewService(
		sqlite.NewBatchStorage(sqliteDB, logger),
		badger.NewJobStorage(badgerDB, logger),
		gallery.NewIndexer(logger),
		emptyCapturer{},
		compare.NewEngine(logger),
		assets.NewWriter(filepath.Join(t.TempDir(), "assets"), logger),
		logger,
	)
}

func emptyGallery(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"v": 5, "entries": {}}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCreateBatchInvalidBody(t *testing.T) {
	handler := NewSnapshotHandler(newTestService(t), common.GetLogger())

	req := httptest.NewRequest("POST", "/api/snap-shots", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	handler.CollectionHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBatchRejectsNonURLs(t *testing.T) {
	handler := NewSnapshotHandler(newTestService(t), common.GetLogger())

	cases := []string{
		`{"new": "", "old": "http://example.com"}`,
		`{"new": "http://example.com", "old": ""}`,
		`{"new": "not a url", "old": "http://example.com"}`,
		`{"old": "http://example.com"}`,
	}

	for _, body := range cases {
		req := httptest.NewRequest("POST", "/api/snap-shots", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.CollectionHandler(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestCreateBatchEmptyGalleries(t *testing.T) {
	handler := NewSnapshotHandler(newTestService(t), common.GetLogger())
	newGallery := emptyGallery(t)
	oldGallery := emptyGallery(t)

	body := fmt.Sprintf(`{"new": %q, "old": %q}`, newGallery.URL, oldGallery.URL)
	req := httptest.NewRequest("POST", "/api/snap-shots", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.CollectionHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var batch models.SnapShotBatch
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &batch))
	assert.NotEmpty(t, batch.ID)
	assert.Equal(t, newGallery.URL+"-"+oldGallery.URL, batch.Name)
	assert.Empty(t, batch.DiffImage)
}

func TestCreateBatchUnreachableGallery(t *testing.T) {
	handler := NewSnapshotHandler(newTestService(t), common.GetLogger())

	body := `{"new": "http://127.0.0.1:1", "old": "http://127.0.0.1:1"}`
	req := httptest.NewRequest("POST", "/api/snap-shots", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.CollectionHandler(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestListBatchesEmpty(t *testing.T) {
	handler := NewSnapshotHandler(newTestService(t), common.GetLogger())

	req := httptest.NewRequest("GET", "/api/snap-shots", nil)
	rec := httptest.NewRecorder()
	handler.CollectionHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestGetBatchNotFound(t *testing.T) {
	handler := NewSnapshotHandler(newTestService(t), common.GetLogger())

	req := httptest.NewRequest("GET", "/api/snap-shots/does-not-exist", nil)
	rec := httptest.NewRecorder()
	handler.ItemHandler(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteBatchNotFound(t *testing.T) {
	handler := NewSnapshotHandler(newTestService(t), common.GetLogger())

	req := httptest.NewRequest("DELETE", "/api/snap-shots/does-not-exist", nil)
	rec := httptest.NewRecorder()
	handler.ItemHandler(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetAndDeleteRoundTrip(t *testing.T) {
	service := newTestService(t)
	handler := NewSnapshotHandler(service, common.GetLogger())
	newGallery := emptyGallery(t)
	oldGallery := emptyGallery(t)

	batch, err := service.CreateBatch(context.Background(), newGallery.URL, oldGallery.URL)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/snap-shots/"+batch.ID, nil)
	rec := httptest.NewRecorder()
	handler.ItemHandler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// Batches without snapshots cannot be deleted atomically; this one has
	// none, so the delete reports not found and keeps the row.
	req = httptest.NewRequest("DELETE", "/api/snap-shots/"+batch.ID, nil)
	rec = httptest.NewRecorder()
	handler.ItemHandler(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCollectionHandlerRejectsOtherMethods(t *testing.T) {
	handler := NewSnapshotHandler(newTestService(t), common.GetLogger())

	req := httptest.NewRequest("PUT", "/api/snap-shots", nil)
	rec := httptest.NewRecorder()
	handler.CollectionHandler(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
