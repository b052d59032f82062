package duplicates

import (
	"context"

	"dupefinder/internal/models"
)

// Strategy finds duplicate groups in a read-only snapshot of scanned files.
// Implementations must not mutate files and must only emit groups of two or more.
type Strategy interface {
	Name() string
	Classification() models.Classification
	Find(ctx context.Context, files []models.AudioFile) ([]*models.DuplicateGroup, error)
}

// buildGroups turns key buckets into groups, skipping buckets of fewer than two files.
func buildGroups[K comparable](buckets map[K][]models.AudioFile, build func(K, []models.AudioFile) (*models.DuplicateGroup, error)) ([]*models.DuplicateGroup, error) {
	groups := make([]*models.DuplicateGroup, 0)
	for key, members := range buckets {
		if len(members) < 2 {
			continue
		}
		group, err := build(key, members)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}
