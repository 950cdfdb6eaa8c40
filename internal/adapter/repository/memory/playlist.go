// Package memory provides repository implementations backed by Fyne preferences.
package memory

import (
	"sync"

	"fyne.io/fyne/v2"

	"github.com/tejashwikalptaru/qtunes/internal/ports"
)

const (
	keyPlaylist   = "playlist.paths"
	keyLastPlayed = "playlist.last_played"
)

// PlaylistRepository implements ports.PlaylistRepository using Fyne preferences.
//
// Fyne preferences automatically use OS-specific app data directories:
// - macOS: ~/Library/Preferences/<app id>.plist
// - Linux: ~/.config/fyne/<app id>/
// - Windows: %APPDATA%\fyne\<app id>\
//
// Thread-safe: All operations protected by sync.RWMutex.
type PlaylistRepository struct {
	prefs fyne.Preferences
	mu    sync.RWMutex
}

// NewPlaylistRepository creates a new playlist repository.
func NewPlaylistRepository(prefs fyne.Preferences) *PlaylistRepository {
	return &PlaylistRepository{
		prefs: prefs,
	}
}

// SavePlaylist stores the checked song paths in check order.
func (r *PlaylistRepository) SavePlaylist(paths []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(paths) == 0 {
		r.prefs.RemoveValue(keyPlaylist)
		return nil
	}
	r.prefs.SetStringList(keyPlaylist, append([]string(nil), paths...))
	return nil
}

// LoadPlaylist returns the saved paths.
func (r *PlaylistRepository) LoadPlaylist() ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	paths := r.prefs.StringList(keyPlaylist)
	if paths == nil {
		return []string{}, nil
	}
	return append([]string(nil), paths...), nil
}

// SaveLastPlayed stores the path of the most recently played song.
func (r *PlaylistRepository) SaveLastPlayed(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.SetString(keyLastPlayed, path)
	return nil
}

// LoadLastPlayed returns the most recently played path.
func (r *PlaylistRepository) LoadLastPlayed() (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.prefs.String(keyLastPlayed), nil
}

// Clear removes all saved playlist data.
func (r *PlaylistRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.RemoveValue(keyPlaylist)
	r.prefs.RemoveValue(keyLastPlayed)
	return nil
}

var _ ports.PlaylistRepository = (*PlaylistRepository)(nil)
