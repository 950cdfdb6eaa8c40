// Package sqlite caches the scanned music library in a SQLite database so
// the last folder can be shown again without rescanning.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/tejashwikalptaru/qtunes/internal/domain"
	"github.com/tejashwikalptaru/qtunes/internal/ports"
)

const (
	repoType = "sqlite"

	// MemoryPath opens a private in-memory database.
	MemoryPath = ":memory:"
)

const schema = `
CREATE TABLE IF NOT EXISTS library_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS songs (
	seq         INTEGER PRIMARY KEY,
	id          TEXT NOT NULL,
	path        TEXT NOT NULL UNIQUE,
	title       TEXT NOT NULL,
	artist      TEXT NOT NULL,
	album       TEXT NOT NULL,
	genre       TEXT NOT NULL,
	track       TEXT NOT NULL,
	time        TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	album_id    TEXT NOT NULL,
	size        INTEGER NOT NULL,
	format      TEXT NOT NULL,
	has_cover   INTEGER NOT NULL
);
`

// DefaultPath returns the cache location under the XDG data directory.
func DefaultPath() (string, error) {
	return xdg.DataFile(filepath.Join("qtunes", "library.db"))
}

// LibraryRepository implements ports.LibraryRepository.
type LibraryRepository struct {
	db     *sql.DB
	logger *slog.Logger
	mu     sync.Mutex
}

// Open opens or creates the cache at path. An empty path uses DefaultPath.
func Open(path string, logger *slog.Logger) (*LibraryRepository, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, domain.NewRepositoryError("Open", repoType, "failed to resolve data path", err)
		}
		path = p
	}
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, domain.NewRepositoryError("Open", repoType, "failed to create data directory", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, domain.NewRepositoryError("Open", repoType, "failed to open database", err)
	}
	if path == MemoryPath {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, domain.NewRepositoryError("Open", repoType, "failed to create schema", err)
	}

	logger.Debug("library cache opened", slog.String("path", path))
	return &LibraryRepository{db: db, logger: logger}, nil
}

// Save replaces the cached library.
func (r *LibraryRepository) Save(root string, songs []domain.Song) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := withTx(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM songs`); err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT OR REPLACE INTO library_meta (key, value) VALUES ('root', ?)`, root); err != nil {
			return err
		}

		stmt, err := tx.Prepare(`INSERT OR REPLACE INTO songs
			(seq, id, path, title, artist, album, genre, track, time, duration_ms, album_id, size, format, has_cover)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, s := range songs {
			if _, err := stmt.Exec(i, s.ID, s.Path, s.Title, s.Artist, s.Album, s.Genre, s.Track, s.Time,
				s.Duration.Milliseconds(), s.AlbumID, s.Size, s.Format, s.HasCover); err != nil {
				return fmt.Errorf("insert %s: %w", s.Path, err)
			}
		}
		return nil
	})
	if err != nil {
		return domain.NewRepositoryError("Save", repoType, "failed to save library", err)
	}

	r.logger.Debug("library cached", slog.String("root", root), slog.Int("songs", len(songs)))
	return nil
}

// Load returns the cached root and songs in scan order.
func (r *LibraryRepository) Load() (string, []domain.Song, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var root string
	err := r.db.QueryRow(`SELECT value FROM library_meta WHERE key = 'root'`).Scan(&root)
	if errors.Is(err, sql.ErrNoRows) {
		return "", []domain.Song{}, nil
	}
	if err != nil {
		return "", nil, domain.NewRepositoryError("Load", repoType, "failed to read root", err)
	}

	rows, err := r.db.Query(`SELECT id, path, title, artist, album, genre, track, time, duration_ms, album_id, size, format, has_cover
		FROM songs ORDER BY seq`)
	if err != nil {
		return "", nil, domain.NewRepositoryError("Load", repoType, "failed to query songs", err)
	}
	defer rows.Close()

	songs := []domain.Song{}
	for rows.Next() {
		var (
			s          domain.Song
			durationMS int64
		)
		if err := rows.Scan(&s.ID, &s.Path, &s.Title, &s.Artist, &s.Album, &s.Genre, &s.Track, &s.Time,
			&durationMS, &s.AlbumID, &s.Size, &s.Format, &s.HasCover); err != nil {
			return "", nil, domain.NewRepositoryError("Load", repoType, "failed to scan song", err)
		}
		s.Duration = time.Duration(durationMS) * time.Millisecond
		songs = append(songs, s)
	}
	if err := rows.Err(); err != nil {
		return "", nil, domain.NewRepositoryError("Load", repoType, "failed to read songs", err)
	}
	return root, songs, nil
}

// Clear removes the cached library.
func (r *LibraryRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := withTx(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM songs`); err != nil {
			return err
		}
		_, err := tx.Exec(`DELETE FROM library_meta`)
		return err
	})
	if err != nil {
		return domain.NewRepositoryError("Clear", repoType, "failed to clear library", err)
	}
	return nil
}

// Close releases the database.
func (r *LibraryRepository) Close() error {
	return r.db.Close()
}

var _ ports.LibraryRepository = (*LibraryRepository)(nil)
