package scandb

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"dupefinder/internal/models"
)

// ScanDB reads file records from a scanner's SQLite database
type ScanDB struct {
	db   *sql.DB
	path string
}

// Open opens the scan database at path read-only
func Open(path string) (*ScanDB, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro&_query_only=1")
	if err != nil {
		return nil, errors.Wrap(err, "failed to open scan database")
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "failed to open scan database %s", path)
	}

	return NewFromConn(db, path), nil
}

// NewFromConn wraps an existing connection
func NewFromConn(db *sql.DB, path string) *ScanDB {
	return &ScanDB{db: db, path: path}
}

// Close closes the database connection
func (s *ScanDB) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// GetPath returns the database file path
func (s *ScanDB) GetPath() string {
	return s.path
}

const recordsQuery = `
	SELECT
		file_path, file_size, file_hash, modified_time,
		artist, album_artist, album, title, genre, year, track_number,
		duration, bitrate
	FROM scanned_files`

// LoadRecords returns every scanned file ordered by path.
// With validOnly set, files the scanner marked invalid are skipped.
func (s *ScanDB) LoadRecords(ctx context.Context, validOnly bool) ([]models.AudioFile, error) {
	query := recordsQuery
	if validOnly {
		query += " WHERE is_valid = 1"
	}
	query += " ORDER BY file_path"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query scanned files")
	}
	defer rows.Close()

	files := make([]models.AudioFile, 0)
	for rows.Next() {
		var row ScannedFile
		err := rows.Scan(
			&row.FilePath, &row.FileSize, &row.FileHash, &row.ModifiedTime,
			&row.Artist, &row.AlbumArtist, &row.Album, &row.Title, &row.Genre,
			&row.Year, &row.TrackNumber,
			&row.Duration, &row.Bitrate,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read scanned file")
		}
		files = append(files, row.ToAudioFile())
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate scanned files")
	}
	return files, nil
}

// GetStats returns statistics about the scan
func (s *ScanDB) GetStats(ctx context.Context) (*ScanStats, error) {
	stats := &ScanStats{}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) as total,
			COALESCE(SUM(CASE WHEN is_valid = 1 THEN 1 ELSE 0 END), 0) as valid,
			COALESCE(SUM(CASE WHEN is_valid = 0 THEN 1 ELSE 0 END), 0) as invalid,
			COALESCE(SUM(CASE WHEN file_hash IS NOT NULL AND file_hash != '' THEN 1 ELSE 0 END), 0) as hashed
		FROM scanned_files
	`).Scan(&stats.TotalFiles, &stats.ValidFiles, &stats.InvalidFiles, &stats.HashedFiles)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read scan statistics")
	}

	return stats, nil
}
