package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func file(path string, size int64) AudioFile {
	return AudioFile{Path: path, Size: size}
}

func TestClassification_Priority(t *testing.T) {
	assert.True(t, ExactMatch.Outranks(MetadataMatch))
	assert.True(t, MetadataMatch.Outranks(SizeMatch))
	assert.True(t, ExactMatch.Outranks(SizeMatch))
	assert.False(t, SizeMatch.Outranks(ExactMatch))
	assert.False(t, MetadataMatch.Outranks(MetadataMatch))

	// Every known classification must be ranked
	for _, c := range Classifications() {
		assert.Greater(t, c.Priority(), 0, c.String())
	}
}

func TestClassification_TextRoundTrip(t *testing.T) {
	data, err := json.Marshal(map[string]Classification{"c": MetadataMatch})
	require.NoError(t, err)
	assert.JSONEq(t, `{"c":"metadata_match"}`, string(data))

	var c Classification
	require.NoError(t, c.UnmarshalText([]byte("size_match")))
	assert.Equal(t, SizeMatch, c)
	assert.Error(t, c.UnmarshalText([]byte("partial_match")))
}

func TestNewGroup_RejectsSingleFile(t *testing.T) {
	_, err := NewExactMatch("abc123", []AudioFile{file("/a.mp3", 10)})
	assert.ErrorIs(t, err, ErrTooFewFiles)

	_, err = NewMetadataMatch("", []AudioFile{file("/a.mp3", 10), file("/b.mp3", 10)})
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestNewGroup_SortsMembersAndCopies(t *testing.T) {
	input := []AudioFile{file("/z.mp3", 5), file("/a.mp3", 5)}
	group, err := NewExactMatch("abc123", input)
	require.NoError(t, err)

	assert.Equal(t, []string{"/a.mp3", "/z.mp3"}, group.Paths())
	assert.Equal(t, "/z.mp3", input[0].Path, "input slice must not be reordered")
}

func TestWastedSpace(t *testing.T) {
	exact, err := NewExactMatch("abc", []AudioFile{file("/a", 100), file("/b", 100), file("/c", 100)})
	require.NoError(t, err)
	assert.Equal(t, 3, exact.DuplicateCount())
	assert.Equal(t, int64(200), exact.WastedSpace())

	size, err := NewSizeMatch(2048, []AudioFile{file("/a", 2048), file("/b", 2048)})
	require.NoError(t, err)
	assert.Equal(t, "size:2048", size.Key)
	assert.Equal(t, int64(2048), size.WastedSpace())

	// Metadata matches use the smallest member as a conservative estimate
	meta, err := NewMetadataMatch("eagles|hotel california", []AudioFile{file("/a", 900), file("/b", 300), file("/c", 500)})
	require.NoError(t, err)
	assert.Equal(t, int64(300), meta.UnitSize())
	assert.Equal(t, int64(600), meta.WastedSpace())
}

func TestMemberKey_IgnoresOrderAndClassification(t *testing.T) {
	a, err := NewExactMatch("abc", []AudioFile{file("/1", 10), file("/2", 10)})
	require.NoError(t, err)
	b, err := NewSizeMatch(10, []AudioFile{file("/2", 10), file("/1", 10)})
	require.NoError(t, err)
	c, err := NewSizeMatch(10, []AudioFile{file("/2", 10), file("/3", 10)})
	require.NoError(t, err)

	assert.Equal(t, a.MemberKey(), b.MemberKey())
	assert.NotEqual(t, a.MemberKey(), c.MemberKey())
}

func TestSuggestedKeeper(t *testing.T) {
	tagged := AudioFile{
		Path:     "/music/library/eagles/hotel-california-copy.mp3",
		Metadata: AudioMetadata{Title: StringPtr("Hotel California")},
	}
	short := file("/x.mp3", 10)
	alsoShort := file("/A.mp3", 10)

	group, err := NewExactMatch("abc", []AudioFile{short, tagged, alsoShort})
	require.NoError(t, err)
	assert.Equal(t, tagged.Path, group.SuggestedKeeper().Path)

	untagged, err := NewExactMatch("abc", []AudioFile{short, alsoShort, file("/longer.mp3", 10)})
	require.NoError(t, err)
	assert.Equal(t, "/A.mp3", untagged.SuggestedKeeper().Path)

	toDelete := untagged.FilesToDelete()
	assert.Len(t, toDelete, 2)
	for _, f := range toDelete {
		assert.NotEqual(t, "/A.mp3", f.Path)
	}
}

func TestAudioMetadata_HasAnyData(t *testing.T) {
	assert.False(t, AudioMetadata{}.HasAnyData())
	assert.True(t, AudioMetadata{Genre: StringPtr("")}.HasAnyData())
	assert.True(t, AudioMetadata{Year: IntPtr(1977)}.HasAnyData())
}

func TestOptionalEquality(t *testing.T) {
	assert.True(t, EqualString(nil, nil))
	assert.False(t, EqualString(nil, StringPtr("")))
	assert.True(t, EqualString(StringPtr("a"), StringPtr("a")))
	assert.True(t, EqualInt(nil, nil))
	assert.False(t, EqualInt(IntPtr(1), nil))
}

func TestAudioFile_Extension(t *testing.T) {
	assert.Equal(t, "flac", AudioFile{Path: "/music/Track.FLAC"}.Extension())
	assert.Equal(t, "", AudioFile{Path: "/music/README"}.Extension())
}
