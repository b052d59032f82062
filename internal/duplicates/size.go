package duplicates

import (
	"context"

	"dupefinder/internal/models"
)

// DefaultSizeFloor is the size a file must exceed to take part in size matching (1 MiB)
const DefaultSizeFloor int64 = 1024 * 1024

// SizeStrategy groups files of identical byte size above a floor.
// It is the weakest signal and only surfaces candidates for review.
type SizeStrategy struct {
	Floor             int64
	Workers           int
	ParallelThreshold int
}

// Name returns the strategy name used in logs and metrics
func (s *SizeStrategy) Name() string { return "size" }

// Classification returns SizeMatch
func (s *SizeStrategy) Classification() models.Classification { return models.SizeMatch }

// Find groups files whose size is strictly greater than the floor
func (s *SizeStrategy) Find(_ context.Context, files []models.AudioFile) ([]*models.DuplicateGroup, error) {
	buckets := groupFiles(files, s.Workers, s.ParallelThreshold, func(f models.AudioFile) (int64, bool) {
		return f.Size, f.Size > s.Floor
	})
	return buildGroups(buckets, models.NewSizeMatch)
}
