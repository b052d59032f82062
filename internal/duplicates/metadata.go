package duplicates

import (
	"context"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"dupefinder/internal/models"
)

// SignatureDelimiter separates the components of a metadata signature
const SignatureDelimiter = "|"

// DefaultSimilarityThreshold is the field-similarity level reported as coherent
const DefaultSimilarityThreshold = 0.85

// MetadataStrategy groups files whose normalized tag signatures are identical.
//
// Grouping is by exact signature equality. Threshold does not gate grouping; it is
// only compared against each group's lowest pairwise Similarity so that groups
// whose raw tags disagree more than expected can be reported.
type MetadataStrategy struct {
	Threshold         float64
	Workers           int
	ParallelThreshold int

	// OnLowSimilarity is called for groups whose lowest pairwise similarity is below Threshold
	OnLowSimilarity func(group *models.DuplicateGroup, similarity float64)
}

// Name returns the strategy name used in logs and metrics
func (s *MetadataStrategy) Name() string { return "metadata" }

// Classification returns MetadataMatch
func (s *MetadataStrategy) Classification() models.Classification { return models.MetadataMatch }

// Find groups files by metadata signature. Files with no tags are skipped.
func (s *MetadataStrategy) Find(_ context.Context, files []models.AudioFile) ([]*models.DuplicateGroup, error) {
	buckets := groupFiles(files, s.Workers, s.ParallelThreshold, func(f models.AudioFile) (string, bool) {
		sig, ok := Signature(f.Metadata)
		return sig, ok
	})

	groups, err := buildGroups(buckets, models.NewMetadataMatch)
	if err != nil {
		return nil, err
	}

	if s.OnLowSimilarity != nil {
		for _, g := range groups {
			if sim := GroupSimilarity(g); sim < s.Threshold {
				s.OnLowSimilarity(g, sim)
			}
		}
	}
	return groups, nil
}

// Signature builds the grouping signature of a tag set: normalized artist, album
// and title followed by year and track number, joined by SignatureDelimiter.
// Absent fields contribute nothing. ok is false when there is nothing to sign.
func Signature(m models.AudioMetadata) (signature string, ok bool) {
	if !m.HasAnyData() {
		return "", false
	}

	parts := make([]string, 0, 5)
	for _, field := range []*string{m.Artist, m.Album, m.Title} {
		if field != nil {
			parts = append(parts, NormalizeText(*field))
		}
	}
	for _, field := range []*int{m.Year, m.TrackNumber} {
		if field != nil {
			parts = append(parts, strconv.Itoa(*field))
		}
	}

	// Genre or format alone leaves nothing to compare on
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, SignatureDelimiter), true
}

// NormalizeText lowercases s, drops every rune that is not a letter, digit or
// whitespace, and collapses whitespace runs to single spaces with no padding.
// NormalizeText(NormalizeText(s)) == NormalizeText(s).
func NormalizeText(s string) string {
	lowered := cases.Lower(language.Und).String(s)

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Similarity returns the fraction of title, artist, album, year and genre that
// are equal between two tag sets, comparing raw values.
func Similarity(a, b models.AudioMetadata) float64 {
	const fields = 5
	matching := 0
	if models.EqualString(a.Title, b.Title) {
		matching++
	}
	if models.EqualString(a.Artist, b.Artist) {
		matching++
	}
	if models.EqualString(a.Album, b.Album) {
		matching++
	}
	if models.EqualInt(a.Year, b.Year) {
		matching++
	}
	if models.EqualString(a.Genre, b.Genre) {
		matching++
	}
	return float64(matching) / fields
}

// GroupSimilarity returns the lowest Similarity between the first member and every other member
func GroupSimilarity(g *models.DuplicateGroup) float64 {
	if len(g.Files) < 2 {
		return 1
	}
	ref := g.Files[0].Metadata
	lowest := 1.0
	for _, f := range g.Files[1:] {
		if sim := Similarity(ref, f.Metadata); sim < lowest {
			lowest = sim
		}
	}
	return lowest
}
