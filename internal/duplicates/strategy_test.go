package duplicates

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dupefinder/internal/models"
)

const mib = 1024 * 1024

func audioFile(path string, size int64, checksum string) models.AudioFile {
	return models.AudioFile{Path: path, Size: size, Checksum: checksum}
}

func tagged(path string, size int64, artist, title string) models.AudioFile {
	return models.AudioFile{
		Path: path,
		Size: size,
		Metadata: models.AudioMetadata{
			Artist: models.StringPtr(artist),
			Title:  models.StringPtr(title),
		},
	}
}

func TestChecksumStrategy_Find(t *testing.T) {
	files := []models.AudioFile{
		audioFile("/music/a.mp3", 100, "abc123"),
		audioFile("/music/b.mp3", 200, "abc123"),
		audioFile("/music/c.mp3", 300, "ABC123"),
		audioFile("/music/d.mp3", 400, ""),
		audioFile("/music/e.mp3", 500, ""),
	}

	groups, err := (&ChecksumStrategy{}).Find(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	assert.Equal(t, models.ExactMatch, groups[0].Classification)
	assert.Equal(t, "abc123", groups[0].Key)
	assert.Equal(t, []string{"/music/a.mp3", "/music/b.mp3"}, groups[0].Paths())
}

func TestChecksumStrategy_EmptyInput(t *testing.T) {
	groups, err := (&ChecksumStrategy{}).Find(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestSizeStrategy_Floor(t *testing.T) {
	files := []models.AudioFile{
		audioFile("/big/a.flac", 2*mib, ""),
		audioFile("/big/b.flac", 2*mib, ""),
		audioFile("/small/a.mp3", 512*1024, ""),
		audioFile("/small/b.mp3", 512*1024, ""),
		audioFile("/edge/a.mp3", mib, ""),
		audioFile("/edge/b.mp3", mib, ""),
	}

	groups, err := (&SizeStrategy{Floor: DefaultSizeFloor}).Find(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, groups, 1, "sizes at or below the floor are ignored")

	assert.Equal(t, models.SizeMatch, groups[0].Classification)
	assert.Equal(t, models.SizeKey(2*mib), groups[0].Key)
	assert.Equal(t, int64(2*mib), groups[0].WastedSpace())
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hotel California", "hotel california"},
		{"  HOTEL   California ", "hotel california"},
		{"AC/DC", "acdc"},
		{"Guns N' Roses", "guns n roses"},
		{"Sigur Rós", "sigur rós"},
		{"Track\t#1 (Remix)", "track 1 remix"},
		{"Hotel - California", "hotel california"},
		{"!!!", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := NormalizeText(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, NormalizeText(got), "normalization must be idempotent")
		})
	}
}

func TestSignature(t *testing.T) {
	m := models.AudioMetadata{
		Artist:      models.StringPtr("Eagles"),
		Album:       models.StringPtr("Hotel California"),
		Title:       models.StringPtr("Hotel California"),
		Year:        models.IntPtr(1976),
		TrackNumber: models.IntPtr(1),
		Genre:       models.StringPtr("Rock"),
	}

	sig, ok := Signature(m)
	require.True(t, ok)
	assert.Equal(t, "eagles|hotel california|hotel california|1976|1", sig)

	upper := m
	upper.Title = models.StringPtr("HOTEL CALIFORNIA")
	upper.Genre = models.StringPtr("Classic Rock")
	upperSig, ok := Signature(upper)
	require.True(t, ok)
	assert.Equal(t, sig, upperSig, "case and genre do not affect the signature")

	_, ok = Signature(models.AudioMetadata{})
	assert.False(t, ok, "no metadata yields no signature")

	_, ok = Signature(models.AudioMetadata{Genre: models.StringPtr("Rock")})
	assert.False(t, ok, "genre alone is not signable")
}

func TestMetadataStrategy_Find(t *testing.T) {
	files := []models.AudioFile{
		tagged("/a/hotel.mp3", 100, "Eagles", "Hotel California"),
		tagged("/b/HOTEL.mp3", 200, "EAGLES", "HOTEL CALIFORNIA"),
		tagged("/c/single.mp3", 300, "Someone", "Else"),
		{Path: "/d/untagged.mp3", Size: 400},
		{Path: "/e/untagged.mp3", Size: 400},
	}

	groups, err := (&MetadataStrategy{Threshold: DefaultSimilarityThreshold}).Find(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	assert.Equal(t, models.MetadataMatch, groups[0].Classification)
	assert.Equal(t, "eagles|hotel california", groups[0].Key)
	assert.Equal(t, []string{"/a/hotel.mp3", "/b/HOTEL.mp3"}, groups[0].Paths())
	assert.Equal(t, int64(100), groups[0].WastedSpace(), "smallest member size times extra copies")
}

func TestMetadataStrategy_LowSimilarityCallback(t *testing.T) {
	files := []models.AudioFile{
		tagged("/a.mp3", 100, "Eagles", "Hotel California"),
		tagged("/b.mp3", 100, "eagles", "hotel california"),
		tagged("/c.mp3", 100, "Queen", "Bohemian Rhapsody"),
		tagged("/d.mp3", 100, "Queen", "Bohemian Rhapsody"),
	}

	var reported []string
	s := &MetadataStrategy{
		Threshold: DefaultSimilarityThreshold,
		OnLowSimilarity: func(g *models.DuplicateGroup, sim float64) {
			reported = append(reported, g.Key)
			assert.Less(t, sim, DefaultSimilarityThreshold)
		},
	}

	groups, err := s.Find(context.Background(), files)
	require.NoError(t, err)
	assert.Len(t, groups, 2, "the threshold never removes a group")
	assert.Equal(t, []string{"eagles|hotel california"}, reported)
}

func TestSimilarity(t *testing.T) {
	a := models.AudioMetadata{
		Title:  models.StringPtr("Song"),
		Artist: models.StringPtr("Band"),
		Album:  models.StringPtr("Record"),
		Year:   models.IntPtr(2001),
		Genre:  models.StringPtr("Jazz"),
	}
	assert.Equal(t, 1.0, Similarity(a, a))

	b := a
	b.Year = models.IntPtr(2002)
	b.Genre = nil
	assert.InDelta(t, 0.6, Similarity(a, b), 1e-9)

	assert.Equal(t, 1.0, Similarity(models.AudioMetadata{}, models.AudioMetadata{}))
}

func TestGroupFiles_ParallelMatchesSequential(t *testing.T) {
	files := make([]models.AudioFile, 0, 1000)
	for i := 0; i < 1000; i++ {
		files = append(files, audioFile(fmt.Sprintf("/lib/%04d.mp3", i), int64(i%37), fmt.Sprintf("sum-%d", i%53)))
	}
	key := func(f models.AudioFile) (string, bool) { return f.Checksum, true }

	sequential := groupFiles(files, 1, 0, key)
	parallel := groupFiles(files, 8, 100, key)

	require.Len(t, parallel, len(sequential))
	for k, members := range sequential {
		assert.ElementsMatch(t, members, parallel[k], k)
	}
}

func TestStrategies_ParallelGrouping(t *testing.T) {
	files := make([]models.AudioFile, 0, 200)
	for i := 0; i < 200; i++ {
		files = append(files, audioFile(fmt.Sprintf("/lib/%03d.flac", i), int64(2*mib+i%10), fmt.Sprintf("sum-%d", i%20)))
	}

	exact, err := (&ChecksumStrategy{Workers: 4, ParallelThreshold: 50}).Find(context.Background(), files)
	require.NoError(t, err)
	assert.Len(t, exact, 20)

	size, err := (&SizeStrategy{Floor: DefaultSizeFloor, Workers: 4, ParallelThreshold: 50}).Find(context.Background(), files)
	require.NoError(t, err)
	assert.Len(t, size, 10)

	for _, g := range append(exact, size...) {
		assert.GreaterOrEqual(t, g.DuplicateCount(), 2)
	}
}
