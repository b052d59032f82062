package scandb

import (
	"database/sql"
	"strings"
	"time"

	"dupefinder/internal/models"
)

// ScannedFile is one row of the scanned_files table. Nullable columns stay
// nullable so missing tags can be told apart from zero values.
type ScannedFile struct {
	FilePath     string
	FileSize     sql.NullInt64
	FileHash     sql.NullString
	ModifiedTime sql.NullInt64 // unix seconds

	Artist      sql.NullString
	AlbumArtist sql.NullString
	Album       sql.NullString
	Title       sql.NullString
	Genre       sql.NullString
	Year        sql.NullInt64
	TrackNumber sql.NullInt64
	Duration    sql.NullInt64 // milliseconds
	Bitrate     sql.NullInt64 // kbps
}

// ScanStats summarizes the contents of a scan database
type ScanStats struct {
	TotalFiles   int
	ValidFiles   int
	InvalidFiles int
	HashedFiles  int
}

// ToAudioFile converts the row into the record analyzed by the duplicate finder.
// Empty strings and zero year, track, duration or bitrate are treated as absent.
func (f *ScannedFile) ToAudioFile() models.AudioFile {
	file := models.AudioFile{
		Path:     f.FilePath,
		Size:     f.FileSize.Int64,
		Checksum: strings.TrimSpace(f.FileHash.String),
	}
	if f.ModifiedTime.Valid && f.ModifiedTime.Int64 > 0 {
		file.LastModified = time.Unix(f.ModifiedTime.Int64, 0).UTC()
	}

	artist := optionalString(f.Artist)
	if artist == nil {
		artist = optionalString(f.AlbumArtist)
	}

	file.Metadata = models.AudioMetadata{
		Title:       optionalString(f.Title),
		Artist:      artist,
		Album:       optionalString(f.Album),
		Genre:       optionalString(f.Genre),
		Year:        optionalInt(f.Year),
		TrackNumber: optionalInt(f.TrackNumber),
		Bitrate:     optionalInt(f.Bitrate),
	}
	if f.Duration.Valid && f.Duration.Int64 > 0 {
		d := time.Duration(f.Duration.Int64) * time.Millisecond
		file.Metadata.Duration = &d
	}

	// Format is only recorded for files that carry tags, so untagged files stay untagged
	if file.Metadata.HasAnyData() {
		if ext := file.Extension(); ext != "" {
			file.Metadata.Format = &ext
		}
	}
	return file
}

func optionalString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := strings.TrimSpace(s.String)
	if v == "" {
		return nil
	}
	return &v
}

func optionalInt(n sql.NullInt64) *int {
	if !n.Valid || n.Int64 <= 0 {
		return nil
	}
	v := int(n.Int64)
	return &v
}
