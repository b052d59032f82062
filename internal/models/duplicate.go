package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Classification tells which detection strategy produced a duplicate group
type Classification int

const (
	ExactMatch Classification = iota + 1
	MetadataMatch
	SizeMatch
)

// ErrTooFewFiles is returned when a group would hold fewer than two files
var ErrTooFewFiles = errors.New("duplicate group needs at least 2 files")

// ErrEmptyKey is returned when a group is built without a grouping key
var ErrEmptyKey = errors.New("duplicate group key cannot be empty")

// SizeKeyPrefix namespaces size-match keys away from checksums and signatures
const SizeKeyPrefix = "size:"

// Classifications lists every classification from the highest priority down
func Classifications() []Classification {
	return []Classification{ExactMatch, MetadataMatch, SizeMatch}
}

// Priority ranks classifications for reconciliation; higher wins.
// Every classification must have a case here.
func (c Classification) Priority() int {
	switch c {
	case ExactMatch:
		return 3
	case MetadataMatch:
		return 2
	case SizeMatch:
		return 1
	default:
		return 0
	}
}

// Outranks reports whether c should be kept over other for the same set of files
func (c Classification) Outranks(other Classification) bool {
	return c.Priority() > other.Priority()
}

// String returns the stable name used in logs, metrics and statistics
func (c Classification) String() string {
	switch c {
	case ExactMatch:
		return "exact_match"
	case MetadataMatch:
		return "metadata_match"
	case SizeMatch:
		return "size_match"
	default:
		return "unknown"
	}
}

// MarshalText encodes the classification by name
func (c Classification) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a classification name
func (c *Classification) UnmarshalText(text []byte) error {
	for _, candidate := range Classifications() {
		if candidate.String() == string(text) {
			*c = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown classification: %q", string(text))
}

// DuplicateGroup is a set of files one detection strategy considers duplicates
type DuplicateGroup struct {
	Classification Classification `json:"classification"`
	Key            string         `json:"key"`
	Files          []AudioFile    `json:"files"`
}

// NewExactMatch builds a group of files sharing the same content checksum
func NewExactMatch(checksum string, files []AudioFile) (*DuplicateGroup, error) {
	return newGroup(ExactMatch, checksum, files)
}

// NewMetadataMatch builds a group of files sharing the same normalized tag signature
func NewMetadataMatch(signature string, files []AudioFile) (*DuplicateGroup, error) {
	return newGroup(MetadataMatch, signature, files)
}

// NewSizeMatch builds a group of files sharing the same byte size
func NewSizeMatch(size int64, files []AudioFile) (*DuplicateGroup, error) {
	return newGroup(SizeMatch, SizeKey(size), files)
}

// SizeKey formats the grouping key of a size match
func SizeKey(size int64) string {
	return SizeKeyPrefix + strconv.FormatInt(size, 10)
}

func newGroup(classification Classification, key string, files []AudioFile) (*DuplicateGroup, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrEmptyKey
	}
	if len(files) < 2 {
		return nil, errors.Wrapf(ErrTooFewFiles, "%s group %q has %d", classification, key, len(files))
	}

	members := make([]AudioFile, len(files))
	copy(members, files)
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].Path < members[j].Path
	})

	return &DuplicateGroup{
		Classification: classification,
		Key:            key,
		Files:          members,
	}, nil
}

// DuplicateCount returns the number of files in the group
func (g *DuplicateGroup) DuplicateCount() int {
	return len(g.Files)
}

// UnitSize is the per-file size used for wasted-space accounting.
// Metadata matches may differ in size, so the smallest member is used as an estimate.
func (g *DuplicateGroup) UnitSize() int64 {
	if len(g.Files) == 0 {
		return 0
	}
	if g.Classification != MetadataMatch {
		return g.Files[0].Size
	}

	smallest := g.Files[0].Size
	for _, f := range g.Files[1:] {
		if f.Size < smallest {
			smallest = f.Size
		}
	}
	return smallest
}

// WastedSpace estimates the bytes recovered by keeping a single member
func (g *DuplicateGroup) WastedSpace() int64 {
	if len(g.Files) < 2 {
		return 0
	}
	return g.UnitSize() * int64(len(g.Files)-1)
}

// Paths returns the member paths in group order
func (g *DuplicateGroup) Paths() []string {
	paths := make([]string, len(g.Files))
	for i, f := range g.Files {
		paths[i] = f.Path
	}
	return paths
}

// MemberKey identifies the set of files in the group independent of order.
// Two groups hold the same files iff their member keys are equal.
func (g *DuplicateGroup) MemberKey() string {
	paths := g.Paths()
	sort.Strings(paths)

	unique := paths[:0]
	for i, p := range paths {
		if i > 0 && p == paths[i-1] {
			continue
		}
		unique = append(unique, p)
	}
	return strings.Join(unique, "\x00")
}

// SuggestedKeeper picks the member most worth keeping: tagged files first,
// then the shortest path, then case-insensitive path order.
func (g *DuplicateGroup) SuggestedKeeper() AudioFile {
	best := g.Files[0]
	for _, f := range g.Files[1:] {
		if keeperLess(f, best) {
			best = f
		}
	}
	return best
}

func keeperLess(a, b AudioFile) bool {
	aTagged, bTagged := a.Metadata.HasAnyData(), b.Metadata.HasAnyData()
	if aTagged != bTagged {
		return aTagged
	}
	if len(a.Path) != len(b.Path) {
		return len(a.Path) < len(b.Path)
	}
	return strings.ToLower(a.Path) < strings.ToLower(b.Path)
}

// FilesToDelete returns every member except the suggested keeper
func (g *DuplicateGroup) FilesToDelete() []AudioFile {
	keeper := g.SuggestedKeeper()
	out := make([]AudioFile, 0, len(g.Files)-1)
	for _, f := range g.Files {
		if f.Path != keeper.Path {
			out = append(out, f)
		}
	}
	return out
}
