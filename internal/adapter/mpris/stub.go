//go:build !linux

package mpris

import (
	"log/slog"

	"github.com/tejashwikalptaru/qtunes/internal/service"
)

// Adapter is a no-op on non-Linux platforms.
type Adapter struct{}

// New returns a no-op adapter on non-Linux platforms.
func New(_ *slog.Logger, _ *service.PlaybackService, _ *service.PlaylistService) (*Adapter, error) {
	return &Adapter{}, nil
}

// Close is a no-op on non-Linux platforms.
func (a *Adapter) Close() error {
	return nil
}
