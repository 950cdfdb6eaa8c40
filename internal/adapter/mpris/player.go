//go:build linux

package mpris

import (
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/tejashwikalptaru/qtunes/internal/adapter/tags"
	"github.com/tejashwikalptaru/qtunes/internal/domain"
	"github.com/tejashwikalptaru/qtunes/internal/service"
)

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter plus the
// loop status and shuffle extensions.
type playerAdapter struct {
	playback *service.PlaybackService
	queue    *service.PlaylistService
}

func newPlayerAdapter(playback *service.PlaybackService, queue *service.PlaylistService) *playerAdapter {
	return &playerAdapter{playback: playback, queue: queue}
}

func (p *playerAdapter) Next() error {
	return ignoreEmpty(p.queue.Next())
}

func (p *playerAdapter) Previous() error {
	return ignoreEmpty(p.queue.Previous())
}

func (p *playerAdapter) Pause() error {
	return ignoreEmpty(p.playback.Pause())
}

func (p *playerAdapter) PlayPause() error {
	if p.playback.GetState().Status == domain.StatusPlaying {
		return p.Pause()
	}
	return p.Play()
}

func (p *playerAdapter) Stop() error {
	return p.playback.Stop()
}

// Play resumes the loaded song or starts the queue from the top.
func (p *playerAdapter) Play() error {
	err := p.playback.Play()
	if errors.Is(err, domain.ErrNoTrackLoaded) {
		err = p.queue.Next()
	}
	return ignoreEmpty(err)
}

// Seek moves by offset, clamped to the song.
func (p *playerAdapter) Seek(offset types.Microseconds) error {
	state := p.playback.GetState()
	if state.CurrentSong == nil {
		return nil
	}
	target := state.Position + time.Duration(offset)*time.Microsecond
	target = min(max(target, 0), state.Duration)
	return p.playback.Seek(target)
}

// SetPosition seeks only when trackID still names the loaded song.
func (p *playerAdapter) SetPosition(trackID string, position types.Microseconds) error {
	state := p.playback.GetState()
	if state.CurrentSong == nil || trackID != trackObjectPath(state.CurrentSong.Path) {
		return nil
	}
	target := time.Duration(position) * time.Microsecond
	if target < 0 || target > state.Duration {
		return nil
	}
	return p.playback.Seek(target)
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	return playbackStatus(p.playback.GetState().Status), nil
}

func (p *playerAdapter) Rate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetRate(_ float64) error {
	return nil
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	state := p.playback.GetState()
	if state.CurrentSong == nil {
		return types.Metadata{}, nil
	}
	return metadata(*state.CurrentSong, state.Duration), nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return p.playback.GetVolume(), nil
}

func (p *playerAdapter) SetVolume(volume float64) error {
	return p.playback.SetVolume(min(max(volume, 0), 1))
}

func (p *playerAdapter) Position() (int64, error) {
	return p.playback.GetState().Position.Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 1.0, nil
}

// The queue wraps, so both directions work whenever it has songs.
func (p *playerAdapter) CanGoNext() (bool, error) {
	return len(p.queue.Queue()) > 0, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return len(p.queue.Queue()) > 0, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return len(p.queue.Queue()) > 0 || p.playback.GetState().CurrentSong != nil, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return p.playback.GetState().CurrentSong != nil, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

// LoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
// Repeat replays the current song, which MPRIS calls Track.
func (p *playerAdapter) LoopStatus() (types.LoopStatus, error) {
	if p.queue.Mode() == domain.PlayModeRepeat {
		return types.LoopStatusTrack, nil
	}
	return types.LoopStatusNone, nil
}

// SetLoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) SetLoopStatus(status types.LoopStatus) error {
	p.queue.SetRepeat(status != types.LoopStatusNone)
	return nil
}

// Shuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) Shuffle() (bool, error) {
	return p.queue.Mode() == domain.PlayModeShuffle, nil
}

// SetShuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) SetShuffle(shuffle bool) error {
	p.queue.SetShuffle(shuffle)
	return nil
}

func ignoreEmpty(err error) error {
	if errors.Is(err, domain.ErrQueueEmpty) || errors.Is(err, domain.ErrNoTrackLoaded) {
		return nil
	}
	return err
}

func playbackStatus(s domain.PlaybackStatus) types.PlaybackStatus {
	switch s {
	case domain.StatusPlaying:
		return types.PlaybackStatusPlaying
	case domain.StatusPaused:
		return types.PlaybackStatusPaused
	default:
		return types.PlaybackStatusStopped
	}
}

// metadata describes song; placeholder tags are left out.
func metadata(song domain.Song, length time.Duration) types.Metadata {
	meta := types.Metadata{
		TrackId: dbus.ObjectPath(trackObjectPath(song.Path)),
		Length:  types.Microseconds(length.Microseconds()),
		Title:   song.Title,
	}
	if song.Artist != domain.Placeholder {
		meta.Artist = []string{song.Artist}
	}
	if song.Album != domain.Placeholder {
		meta.Album = song.Album
	}
	if n, err := strconv.Atoi(song.Track); err == nil {
		meta.TrackNumber = n
	}
	if art := tags.FolderArtPath(song.Path); art != "" {
		meta.ArtUrl = "file://" + art
	}
	return meta
}

func trackObjectPath(path string) string {
	h := fnv.New64a()
	h.Write([]byte(path))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
