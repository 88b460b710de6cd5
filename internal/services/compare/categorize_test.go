package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/snapdiff/internal/models"
)

func rawImage(name string, kind models.SnapshotKind) models.RawImage {
	return models.RawImage{
		Data:   []byte(name),
		Width:  10,
		Height: 10,
		Kind:   kind,
		Name:   name,
	}
}

func TestCategorizePartitionsByName(t *testing.T) {
	newImages := []models.RawImage{
		rawImage("button--primary", models.SnapshotKindNew),
		rawImage("button--added", models.SnapshotKindNew),
	}
	oldImages := []models.RawImage{
		rawImage("button--primary", models.SnapshotKindOld),
		rawImage("button--removed", models.SnapshotKindOld),
	}

	result := Categorize(newImages, oldImages)

	require.Len(t, result.Paired, 1)
	assert.Equal(t, "button--primary", result.Paired[0].New.Name)
	assert.Equal(t, models.SnapshotKindNew, result.Paired[0].New.Kind)
	assert.Equal(t, models.SnapshotKindOld, result.Paired[0].Old.Kind)

	require.Len(t, result.Created, 1)
	assert.Equal(t, "button--added", result.Created[0].Name)
	assert.Equal(t, models.SnapshotKindCreate, result.Created[0].Kind)

	require.Len(t, result.Deleted, 1)
	assert.Equal(t, "button--removed", result.Deleted[0].Name)
	assert.Equal(t, models.SnapshotKindDeleted, result.Deleted[0].Kind)
}

func TestCategorizeEverythingCreated(t *testing.T) {
	newImages := []models.RawImage{
		rawImage("a", models.SnapshotKindNew),
		rawImage("b", models.SnapshotKindNew),
	}

	result := Categorize(newImages, nil)

	assert.Len(t, result.Created, 2)
	assert.Empty(t, result.Deleted)
	assert.Empty(t, result.Paired)
}

func TestCategorizeEverythingDeleted(t *testing.T) {
	oldImages := []models.RawImage{
		rawImage("a", models.SnapshotKindOld),
	}

	result := Categorize(nil, oldImages)

	assert.Empty(t, result.Created)
	assert.Len(t, result.Deleted, 1)
	assert.Empty(t, result.Paired)
}

func TestCategorizeDuplicateNamesKeepFirst(t *testing.T) {
	first := rawImage("dup", models.SnapshotKindNew)
	second := rawImage("dup", models.SnapshotKindNew)
	second.Width = 99

	result := Categorize([]models.RawImage{first, second}, nil)

	require.Len(t, result.Created, 1)
	assert.Equal(t, float64(10), result.Created[0].Width)
}

func TestCategorizePreservesNewSideOrder(t *testing.T) {
	newImages := []models.RawImage{
		rawImage("c", models.SnapshotKindNew),
		rawImage("a", models.SnapshotKindNew),
		rawImage("b", models.SnapshotKindNew),
	}
	oldImages := []models.RawImage{
		rawImage("b", models.SnapshotKindOld),
		rawImage("a", models.SnapshotKindOld),
		rawImage("c", models.SnapshotKindOld),
	}

	result := Categorize(newImages, oldImages)

	require.Len(t, result.Paired, 3)
	assert.Equal(t, "c", result.Paired[0].New.Name)
	assert.Equal(t, "a", result.Paired[1].New.Name)
	assert.Equal(t, "b", result.Paired[2].New.Name)
}
