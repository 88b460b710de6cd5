package compare

import (
	"github.com/ternarybob/snapdiff/internal/models"
)

// Pair is one story present on both sides of a batch.
type Pair struct {
	New models.RawImage
	Old models.RawImage
}

// Categorized splits two capture sets by story name: stories only in the new
// set, stories only in the old set, and stories present in both.
type Categorized struct {
	Created []models.RawImage
	Deleted []models.RawImage
	Paired  []Pair
}

// Categorize matches new and old captures by story name. Order follows the
// new set for created and paired entries and the old set for deleted
// entries. Duplicate names keep their first occurrence.
func Categorize(newImages, oldImages []models.RawImage) Categorized {
	oldByName := make(map[string]*models.RawImage, len(oldImages))
	for i := range oldImages {
		if _, ok := oldByName[oldImages[i].Name]; !ok {
			oldByName[oldImages[i].Name] = &oldImages[i]
		}
	}

	var result Categorized
	seen := make(map[string]bool, len(newImages))
	for i := range newImages {
		img := newImages[i]
		if seen[img.Name] {
			continue
		}
		seen[img.Name] = true

		if old, ok := oldByName[img.Name]; ok {
			newSide := img
			newSide.Kind = models.SnapshotKindNew
			oldSide := *old
			oldSide.Kind = models.SnapshotKindOld
			result.Paired = append(result.Paired, Pair{New: newSide, Old: oldSide})
			continue
		}

		img.Kind = models.SnapshotKindCreate
		result.Created = append(result.Created, img)
	}

	seenOld := make(map[string]bool, len(oldImages))
	for i := range oldImages {
		img := oldImages[i]
		if seenOld[img.Name] {
			continue
		}
		seenOld[img.Name] = true

		if seen[img.Name] {
			continue
		}
		img.Kind = models.SnapshotKindDeleted
		result.Deleted = append(result.Deleted, img)
	}

	return result
}
