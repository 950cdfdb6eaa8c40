//go:build linux

package mpris

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/quarckster/go-mpris-server/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/qtunes/internal/adapter/audio/mock"
	"github.com/tejashwikalptaru/qtunes/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/qtunes/internal/domain"
	"github.com/tejashwikalptaru/qtunes/internal/logger"
	"github.com/tejashwikalptaru/qtunes/internal/service"
)

func newTestPlayer(t *testing.T, songs ...domain.Song) (*playerAdapter, *mock.Engine) {
	t.Helper()
	log := logger.NewTestLogger()
	bus := eventbus.NewSyncEventBus(log)
	engine := mock.NewEngine()
	require.NoError(t, engine.Initialize(44100, 0))

	playback := service.NewPlaybackService(log, engine, bus, 0.5, time.Hour)
	queue := service.NewPlaylistService(log, playback, nil, bus, domain.PlayModeNormal)
	queue.SetQueue(songs, domain.SourceLibrary)

	t.Cleanup(func() {
		_ = queue.Shutdown()
		_ = playback.Shutdown()
		_ = engine.Shutdown()
	})
	return newPlayerAdapter(playback, queue), engine
}

func song(path, title string) domain.Song {
	s := domain.NewSong(path)
	s.Title = title
	return s
}

func TestPlayer_PlayStartsQueue(t *testing.T) {
	p, _ := newTestPlayer(t, song("/m/a.mp3", "A"), song("/m/b.mp3", "B"))

	require.NoError(t, p.Play())

	status, err := p.PlaybackStatus()
	require.NoError(t, err)
	assert.Equal(t, types.PlaybackStatusPlaying, status)

	meta, err := p.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "A", meta.Title)
}

func TestPlayer_EmptyQueueIsQuiet(t *testing.T) {
	p, _ := newTestPlayer(t)

	assert.NoError(t, p.Play())
	assert.NoError(t, p.Next())
	assert.NoError(t, p.Previous())
	assert.NoError(t, p.Pause())
	assert.NoError(t, p.Seek(1000))

	canPlay, _ := p.CanPlay()
	assert.False(t, canPlay)
	meta, _ := p.Metadata()
	assert.Empty(t, meta.Title)
}

func TestPlayer_PlayPauseToggles(t *testing.T) {
	p, _ := newTestPlayer(t, song("/m/a.mp3", "A"))

	require.NoError(t, p.PlayPause())
	status, _ := p.PlaybackStatus()
	assert.Equal(t, types.PlaybackStatusPlaying, status)

	require.NoError(t, p.PlayPause())
	status, _ = p.PlaybackStatus()
	assert.Equal(t, types.PlaybackStatusPaused, status)

	require.NoError(t, p.Stop())
	status, _ = p.PlaybackStatus()
	assert.Equal(t, types.PlaybackStatusStopped, status)
}

func TestPlayer_NextAndPreviousWrap(t *testing.T) {
	p, _ := newTestPlayer(t, song("/m/a.mp3", "A"), song("/m/b.mp3", "B"))

	require.NoError(t, p.Next())
	require.NoError(t, p.Next())
	meta, _ := p.Metadata()
	assert.Equal(t, "B", meta.Title)

	require.NoError(t, p.Next())
	meta, _ = p.Metadata()
	assert.Equal(t, "A", meta.Title)

	require.NoError(t, p.Previous())
	meta, _ = p.Metadata()
	assert.Equal(t, "B", meta.Title)
}

func TestPlayer_SeekIsClamped(t *testing.T) {
	p, engine := newTestPlayer(t, song("/m/a.mp3", "A"))
	engine.SetDuration("/m/a.mp3", 10*time.Second)
	require.NoError(t, p.Play())

	require.NoError(t, p.Seek(types.Microseconds(4*time.Second/time.Microsecond)))
	pos, _ := p.Position()
	assert.Equal(t, (4 * time.Second).Microseconds(), pos)

	require.NoError(t, p.Seek(types.Microseconds(time.Minute/time.Microsecond)))
	pos, _ = p.Position()
	assert.Equal(t, (10 * time.Second).Microseconds(), pos)

	require.NoError(t, p.Seek(types.Microseconds(-time.Hour/time.Microsecond)))
	pos, _ = p.Position()
	assert.Zero(t, pos)
}

func TestPlayer_SetPositionChecksTrack(t *testing.T) {
	p, engine := newTestPlayer(t, song("/m/a.mp3", "A"))
	engine.SetDuration("/m/a.mp3", 10*time.Second)
	require.NoError(t, p.Play())

	require.NoError(t, p.SetPosition(trackObjectPath("/m/other.mp3"), 3_000_000))
	pos, _ := p.Position()
	assert.Zero(t, pos)

	require.NoError(t, p.SetPosition(trackObjectPath("/m/a.mp3"), 3_000_000))
	pos, _ = p.Position()
	assert.Equal(t, int64(3_000_000), pos)
}

func TestPlayer_Volume(t *testing.T) {
	p, _ := newTestPlayer(t)

	v, err := p.Volume()
	require.NoError(t, err)
	assert.InDelta(t, 0.5, v, 1e-9)

	require.NoError(t, p.SetVolume(1.7))
	v, _ = p.Volume()
	assert.InDelta(t, 1.0, v, 1e-9)
}

func TestPlayer_LoopAndShuffle(t *testing.T) {
	p, _ := newTestPlayer(t, song("/m/a.mp3", "A"))

	require.NoError(t, p.SetLoopStatus(types.LoopStatusTrack))
	loop, _ := p.LoopStatus()
	assert.Equal(t, types.LoopStatusTrack, loop)

	require.NoError(t, p.SetShuffle(true))
	shuffle, _ := p.Shuffle()
	assert.True(t, shuffle)
	loop, _ = p.LoopStatus()
	assert.Equal(t, types.LoopStatusNone, loop, "shuffle turns repeat off")

	require.NoError(t, p.SetLoopStatus(types.LoopStatusNone))
	shuffle, _ = p.Shuffle()
	assert.True(t, shuffle)
}

func TestMetadata(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "song.flac")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cover.jpg"), []byte{0xff, 0xd8}, 0o600))

	s := domain.NewSong(path)
	s.Title = "Title"
	s.Artist = "Artist"
	s.Track = "7"

	meta := metadata(s, 90*time.Second)
	assert.Equal(t, "Title", meta.Title)
	assert.Equal(t, []string{"Artist"}, meta.Artist)
	assert.Empty(t, meta.Album)
	assert.Equal(t, 7, meta.TrackNumber)
	assert.Equal(t, types.Microseconds(90_000_000), meta.Length)
	assert.Equal(t, "file://"+filepath.Join(dir, "cover.jpg"), meta.ArtUrl)
	assert.Equal(t, trackObjectPath(path), string(meta.TrackId))
}

func TestTrackObjectPath(t *testing.T) {
	a := trackObjectPath("/m/a.mp3")
	assert.Equal(t, a, trackObjectPath("/m/a.mp3"))
	assert.NotEqual(t, a, trackObjectPath("/m/b.mp3"))
	assert.Regexp(t, `^/org/mpris/MediaPlayer2/Track/[0-9a-f]+$`, a)
}

func TestPlaybackStatus(t *testing.T) {
	assert.Equal(t, types.PlaybackStatusPlaying, playbackStatus(domain.StatusPlaying))
	assert.Equal(t, types.PlaybackStatusPaused, playbackStatus(domain.StatusPaused))
	assert.Equal(t, types.PlaybackStatusStopped, playbackStatus(domain.StatusStopped))
}
