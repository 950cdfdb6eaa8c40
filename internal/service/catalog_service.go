package service

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/tejashwikalptaru/qtunes/internal/domain"
	"github.com/tejashwikalptaru/qtunes/internal/ports"
)

// CatalogService keeps the filter panels, the song table, the checkboxes
// and the playlist consistent with each other.
//
// Panels cascade: the artist panel lists artists of the selected genre and
// the album panel lists albums of the selected genre and artist. The table
// shows songs matching every selected panel and the search query.
//
// Thread-safe: All operations protected by sync.RWMutex. Events are
// published after the lock is released.
type CatalogService struct {
	logger *slog.Logger
	bus    ports.EventBus
	repo   ports.PlaylistRepository

	mu      sync.RWMutex
	songs   []domain.Song
	byPath  map[string]int
	filter  domain.Filter
	panels  domain.Panels
	rows    []domain.Song
	checked []string // paths in check order
}

// NewCatalogService creates a catalog. It follows LibraryLoaded events, so
// a scan or cache restore resets it automatically.
func NewCatalogService(logger *slog.Logger, bus ports.EventBus, repo ports.PlaylistRepository) *CatalogService {
	s := &CatalogService{
		logger: logger,
		bus:    bus,
		repo:   repo,
		byPath: map[string]int{},
	}
	s.rebuildLocked()

	bus.Subscribe(domain.EventLibraryLoaded, func(e domain.Event) {
		if ev, ok := e.(domain.LibraryLoadedEvent); ok {
			s.SetSongs(ev.Songs)
		}
	})
	return s
}

// SetSongs replaces the library and clears filters, search and checkboxes.
func (s *CatalogService) SetSongs(songs []domain.Song) {
	s.mu.Lock()
	s.songs = slices.Clone(songs)
	s.byPath = make(map[string]int, len(songs))
	for i := range s.songs {
		s.byPath[s.songs[i].Path] = i
	}
	s.filter = domain.Filter{}
	s.checked = nil
	s.rebuildLocked()
	s.mu.Unlock()

	s.logger.Debug("catalog reset", slog.Int("songs", len(songs)))
	s.publishAll(true)
}

// SelectGenre filters by genre. ALL resets every filter.
func (s *CatalogService) SelectGenre(genre string) error {
	return s.update(func(f *domain.Filter) error {
		if genre == domain.PanelAll {
			*f = domain.Filter{Query: f.Query}
			return nil
		}
		if !slices.Contains(s.panels.Genres, genre) {
			return domain.ErrUnknownSelection
		}
		f.Genre, f.Artist, f.Album = genre, "", ""
		return nil
	})
}

// SelectArtist filters by artist within the selected genre.
func (s *CatalogService) SelectArtist(artist string) error {
	return s.update(func(f *domain.Filter) error {
		if artist == domain.PanelAll {
			f.Artist, f.Album = "", ""
			return nil
		}
		if !slices.Contains(s.panels.Artists, artist) {
			return domain.ErrUnknownSelection
		}
		f.Artist, f.Album = artist, ""
		return nil
	})
}

// SelectAlbum filters by album within the selected genre and artist.
func (s *CatalogService) SelectAlbum(album string) error {
	return s.update(func(f *domain.Filter) error {
		if album == domain.PanelAll {
			f.Album = ""
			return nil
		}
		if !slices.Contains(s.panels.Albums, album) {
			return domain.ErrUnknownSelection
		}
		f.Album = album
		return nil
	})
}

// ShowAlbum shows every song of an album regardless of the other filters.
func (s *CatalogService) ShowAlbum(album string) error {
	return s.update(func(f *domain.Filter) error {
		found := false
		for i := range s.songs {
			if s.songs[i].Album == album {
				found = true
				break
			}
		}
		if !found {
			return domain.ErrUnknownSelection
		}
		*f = domain.Filter{Album: album}
		return nil
	})
}

// Search applies a case-insensitive substring query on top of the panels.
func (s *CatalogService) Search(query string) {
	_ = s.update(func(f *domain.Filter) error {
		f.Query = query
		return nil
	})
}

// update applies fn to the filter under the lock and republishes the view.
func (s *CatalogService) update(fn func(*domain.Filter) error) error {
	s.mu.Lock()
	f := s.filter
	if err := fn(&f); err != nil {
		s.mu.Unlock()
		return err
	}
	if f == s.filter {
		s.mu.Unlock()
		return nil
	}
	s.filter = f
	s.rebuildLocked()
	s.mu.Unlock()

	s.publishAll(false)
	return nil
}

func (s *CatalogService) rebuildLocked() {
	f := s.filter
	s.panels = domain.Panels{
		Genres:    domain.PanelValues(s.songs, domain.ColumnGenre),
		Artists:   domain.PanelValues(domain.FilterSongs(s.songs, domain.Filter{Genre: f.Genre}), domain.ColumnArtist),
		Albums:    domain.PanelValues(domain.FilterSongs(s.songs, domain.Filter{Genre: f.Genre, Artist: f.Artist}), domain.ColumnAlbum),
		Selection: f,
	}
	s.rows = domain.FilterSongs(s.songs, f)
}

func (s *CatalogService) publishAll(withPlaylist bool) {
	s.mu.RLock()
	panels := s.panelsLocked()
	rows := slices.Clone(s.rows)
	checked := s.checkedSetLocked()
	playlist := s.playlistLocked()
	s.mu.RUnlock()

	s.bus.Publish(domain.NewPanelsChangedEvent(panels))
	s.bus.Publish(domain.NewTableChangedEvent(rows, checked))
	if withPlaylist {
		s.bus.Publish(domain.NewPlaylistChangedEvent(playlist))
	}
}

// Panels returns the current panel lists and selection.
func (s *CatalogService) Panels() domain.Panels {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.panelsLocked()
}

func (s *CatalogService) panelsLocked() domain.Panels {
	return domain.Panels{
		Genres:    slices.Clone(s.panels.Genres),
		Artists:   slices.Clone(s.panels.Artists),
		Albums:    slices.Clone(s.panels.Albums),
		Selection: s.panels.Selection,
	}
}

// Filter returns the active filter.
func (s *CatalogService) Filter() domain.Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// Rows returns the filtered song table.
func (s *CatalogService) Rows() []domain.Song {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.rows)
}

// Songs returns the whole library.
func (s *CatalogService) Songs() []domain.Song {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.songs)
}

// Albums lists the library's albums for the coverflow.
func (s *CatalogService) Albums() []domain.AlbumEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Albums(s.songs)
}

// IsChecked reports whether the song at path is in the playlist.
func (s *CatalogService) IsChecked(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.checked, path)
}

// SetChecked adds the song at path to the playlist or removes it.
func (s *CatalogService) SetChecked(path string, checked bool) error {
	s.mu.Lock()
	if _, ok := s.byPath[path]; !ok {
		s.mu.Unlock()
		return domain.ErrUnknownSelection
	}
	changed := s.setCheckedLocked(path, checked)
	s.mu.Unlock()

	if changed {
		s.playlistChanged()
	}
	return nil
}

// ToggleChecked flips the checkbox of the song at path.
func (s *CatalogService) ToggleChecked(path string) error {
	return s.SetChecked(path, !s.IsChecked(path))
}

// CheckVisible checks or unchecks every row currently in the table.
func (s *CatalogService) CheckVisible(checked bool) {
	s.mu.Lock()
	changed := false
	for i := range s.rows {
		if s.setCheckedLocked(s.rows[i].Path, checked) {
			changed = true
		}
	}
	s.mu.Unlock()

	if changed {
		s.playlistChanged()
	}
}

// ClearPlaylist unchecks every song.
func (s *CatalogService) ClearPlaylist() {
	s.mu.Lock()
	changed := len(s.checked) > 0
	s.checked = nil
	s.mu.Unlock()

	if changed {
		s.playlistChanged()
	}
}

func (s *CatalogService) setCheckedLocked(path string, checked bool) bool {
	i := slices.Index(s.checked, path)
	switch {
	case checked && i < 0:
		s.checked = append(s.checked, path)
		return true
	case !checked && i >= 0:
		s.checked = slices.Delete(s.checked, i, i+1)
		return true
	}
	return false
}

// Playlist returns the checked songs in the order they were checked.
func (s *CatalogService) Playlist() []domain.Song {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.playlistLocked()
}

func (s *CatalogService) playlistLocked() []domain.Song {
	out := make([]domain.Song, 0, len(s.checked))
	for _, p := range s.checked {
		out = append(out, s.songs[s.byPath[p]])
	}
	return out
}

func (s *CatalogService) checkedSetLocked() map[string]bool {
	set := make(map[string]bool, len(s.checked))
	for _, p := range s.checked {
		set[p] = true
	}
	return set
}

// playlistChanged persists the checked paths and publishes the new table
// checkboxes and playlist.
func (s *CatalogService) playlistChanged() {
	s.mu.RLock()
	paths := slices.Clone(s.checked)
	rows := slices.Clone(s.rows)
	checked := s.checkedSetLocked()
	playlist := s.playlistLocked()
	s.mu.RUnlock()

	if s.repo != nil {
		if err := s.repo.SavePlaylist(paths); err != nil {
			s.logger.Warn("failed to save playlist", slog.Any("error", err))
		}
	}

	s.bus.Publish(domain.NewTableChangedEvent(rows, checked))
	s.bus.Publish(domain.NewPlaylistChangedEvent(playlist))
}

// RestorePlaylist re-checks the saved paths that exist in the library.
// It returns how many songs were restored.
func (s *CatalogService) RestorePlaylist() (int, error) {
	if s.repo == nil {
		return 0, nil
	}
	saved, err := s.repo.LoadPlaylist()
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.checked = nil
	for _, p := range saved {
		if _, ok := s.byPath[p]; ok && !slices.Contains(s.checked, p) {
			s.checked = append(s.checked, p)
		}
	}
	restored := len(s.checked)
	s.mu.Unlock()

	if restored != len(saved) {
		s.logger.Info("dropped missing playlist entries", slog.Int("saved", len(saved)), slog.Int("restored", restored))
	}
	s.playlistChanged()
	return restored, nil
}

// CheckedPaths returns a copy of the checked set, keyed by path.
func (s *CatalogService) CheckedPaths() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkedSetLocked()
}
