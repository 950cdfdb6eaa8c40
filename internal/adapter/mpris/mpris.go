//go:build linux

// Package mpris exposes the player to desktop media keys and applets over
// the D-Bus MPRIS interface.
package mpris

import (
	"log/slog"
	"sync"

	"github.com/quarckster/go-mpris-server/pkg/server"

	"github.com/tejashwikalptaru/qtunes/internal/service"
)

// busName is the suffix of org.mpris.MediaPlayer2.<name>.
const busName = "qtunes"

// Adapter serves the MPRIS interfaces for the playback and queue services.
type Adapter struct {
	logger *slog.Logger
	server *server.Server

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New creates the adapter and starts listening on the session bus.
func New(logger *slog.Logger, playback *service.PlaybackService, queue *service.PlaylistService) (*Adapter, error) {
	a := &Adapter{logger: logger}
	a.server = server.NewServer(busName, &rootAdapter{}, newPlayerAdapter(playback, queue))

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.server.Listen(); err != nil {
			logger.Warn("mpris unavailable", slog.Any("error", err))
		}
	}()

	logger.Debug("mpris adapter started", slog.String("name", busName))
	return a, nil
}

// Close stops the server and releases the D-Bus connection.
// It's safe to call multiple times (idempotent).
func (a *Adapter) Close() error {
	var err error
	a.closeOnce.Do(func() {
		err = a.server.Stop()
		a.wg.Wait()
	})
	return err
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil
}

func (r *rootAdapter) Quit() error {
	return nil // the window owns the lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return "qTunes", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/flac", "audio/ogg", "audio/wav"}, nil
}
