package models

import (
	"path/filepath"
	"strings"
	"time"
)

// AudioMetadata holds the tag data of a scanned audio file.
// A nil field means the tag was absent, which is distinct from an empty string.
type AudioMetadata struct {
	Title       *string        `json:"title,omitempty"`
	Artist      *string        `json:"artist,omitempty"`
	Album       *string        `json:"album,omitempty"`
	Genre       *string        `json:"genre,omitempty"`
	Year        *int           `json:"year,omitempty"`
	TrackNumber *int           `json:"track_number,omitempty"`
	TotalTracks *int           `json:"total_tracks,omitempty"`
	Duration    *time.Duration `json:"duration,omitempty"`
	Bitrate     *int           `json:"bitrate,omitempty"` // kbps
	Format      *string        `json:"format,omitempty"`
}

// HasAnyData reports whether at least one tag is present
func (m AudioMetadata) HasAnyData() bool {
	return m.Title != nil || m.Artist != nil || m.Album != nil ||
		m.Genre != nil || m.Year != nil || m.TrackNumber != nil ||
		m.TotalTracks != nil || m.Duration != nil || m.Bitrate != nil ||
		m.Format != nil
}

// AudioFile represents one scanned audio file as produced by the scanner.
// Path identifies the file within a run. An empty Checksum means it was not computed.
type AudioFile struct {
	Path         string        `json:"path"`
	Size         int64         `json:"size"`
	LastModified time.Time     `json:"last_modified"`
	Metadata     AudioMetadata `json:"metadata"`
	Checksum     string        `json:"checksum,omitempty"`
}

// Extension returns the lower-case file extension without the leading dot
func (f AudioFile) Extension() string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(f.Path)), ".")
}

// HasChecksum reports whether the scanner computed a checksum for the file
func (f AudioFile) HasChecksum() bool {
	return f.Checksum != ""
}

// StringPtr returns a pointer to s, for building metadata literals.
func StringPtr(s string) *string {
	return &s
}

// IntPtr returns a pointer to i, for building metadata literals.
func IntPtr(i int) *int {
	return &i
}

// EqualString compares two optional strings: both absent is equal, one absent is not.
func EqualString(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// EqualInt compares two optional integers with the same absence rules as EqualString.
func EqualInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
