package duplicates

import (
	"github.com/sourcegraph/conc/pool"

	"dupefinder/internal/models"
)

// keyFunc extracts a grouping key from a file; ok=false excludes the file.
type keyFunc[K comparable] func(models.AudioFile) (key K, ok bool)

// groupFiles buckets files by key. Inputs at or above threshold are split into
// one chunk per worker and grouped concurrently; each worker owns its partial map
// and the maps are merged after the pool joins.
func groupFiles[K comparable](files []models.AudioFile, workers, threshold int, key keyFunc[K]) map[K][]models.AudioFile {
	if workers <= 1 || threshold <= 0 || len(files) < threshold {
		return groupChunk(files, key)
	}

	chunkSize := (len(files) + workers - 1) / workers
	p := pool.NewWithResults[map[K][]models.AudioFile]().WithMaxGoroutines(workers)
	for start := 0; start < len(files); start += chunkSize {
		end := min(start+chunkSize, len(files))
		chunk := files[start:end]
		p.Go(func() map[K][]models.AudioFile {
			return groupChunk(chunk, key)
		})
	}

	merged := make(map[K][]models.AudioFile)
	for _, partial := range p.Wait() {
		for k, members := range partial {
			merged[k] = append(merged[k], members...)
		}
	}
	return merged
}

func groupChunk[K comparable](files []models.AudioFile, key keyFunc[K]) map[K][]models.AudioFile {
	groups := make(map[K][]models.AudioFile)
	for _, f := range files {
		k, ok := key(f)
		if !ok {
			continue
		}
		groups[k] = append(groups[k], f)
	}
	return groups
}
