package duplicates

import (
	"context"

	"dupefinder/internal/models"
)

// ChecksumStrategy groups files with identical content checksums.
// Files without a checksum are ignored.
type ChecksumStrategy struct {
	Workers           int
	ParallelThreshold int
}

// Name returns the strategy name used in logs and metrics
func (s *ChecksumStrategy) Name() string { return "checksum" }

// Classification returns ExactMatch
func (s *ChecksumStrategy) Classification() models.Classification { return models.ExactMatch }

// Find groups files by case-sensitive checksum equality
func (s *ChecksumStrategy) Find(_ context.Context, files []models.AudioFile) ([]*models.DuplicateGroup, error) {
	buckets := groupFiles(files, s.Workers, s.ParallelThreshold, func(f models.AudioFile) (string, bool) {
		return f.Checksum, f.HasChecksum()
	})
	return buildGroups(buckets, models.NewExactMatch)
}
