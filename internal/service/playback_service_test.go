package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/qtunes/internal/adapter/audio/mock"
	"github.com/tejashwikalptaru/qtunes/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/qtunes/internal/domain"
	"github.com/tejashwikalptaru/qtunes/internal/logger"
	"github.com/tejashwikalptaru/qtunes/internal/testutil"
)

const testTick = 5 * time.Millisecond

// Helper to create a test playback service with an initialized mock engine
func newTestPlaybackService(t *testing.T) (*PlaybackService, *mock.Engine, *eventbus.SyncEventBus) {
	t.Helper()
	engine := mock.NewEngine()
	require.NoError(t, engine.Initialize(44100, 0))

	bus := newTestBus()
	service := NewPlaybackService(logger.NewTestLogger(), engine, bus, domain.DefaultVolume, testTick)
	t.Cleanup(func() { _ = service.Shutdown() })
	return service, engine, bus
}

func testSong(title string) domain.Song {
	return testSongs(title + "|Test Artist|Test Album|Rock")[0]
}

// loadedHandle returns the engine handle of the last TrackLoadedEvent.
func loadedHandle(t *testing.T, rec *recorder) domain.TrackHandle {
	t.Helper()
	loaded := rec.ofType(domain.EventTrackLoaded)
	require.NotEmpty(t, loaded)
	return loaded[len(loaded)-1].(domain.TrackLoadedEvent).Handle
}

func TestPlaybackService_LoadSong(t *testing.T) {
	service, engine, bus := newTestPlaybackService(t)
	rec := newRecorder(bus)
	song := testSong("Intro")
	engine.SetDuration(song.Path, 90*time.Second)

	require.NoError(t, service.LoadSong(song, 2))

	state := service.GetState()
	require.NotNil(t, state.CurrentSong)
	assert.Equal(t, song.Path, state.CurrentSong.Path)
	assert.Equal(t, 2, state.CurrentIndex)
	assert.Equal(t, domain.StatusStopped, state.Status)
	assert.Equal(t, 90*time.Second, state.Duration)

	loaded := rec.ofType(domain.EventTrackLoaded)
	require.Len(t, loaded, 1)
	ev := loaded[0].(domain.TrackLoadedEvent)
	assert.Equal(t, 90*time.Second, ev.Duration)
	assert.NotEqual(t, domain.InvalidTrackHandle, ev.Handle)

	vol, err := engine.GetVolume(ev.Handle)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultVolume, vol)
}

func TestPlaybackService_LoadSong_Failure(t *testing.T) {
	service, engine, bus := newTestPlaybackService(t)
	rec := newRecorder(bus)
	engine.SetFailLoad(true)

	err := service.LoadSong(testSong("Broken"), 0)
	var engineErr *domain.AudioEngineError
	require.ErrorAs(t, err, &engineErr)
	assert.Equal(t, 1, rec.count(domain.EventTrackError))
	assert.Nil(t, service.GetState().CurrentSong)
}

func TestPlaybackService_LoadSong_ReplacesCurrent(t *testing.T) {
	service, engine, bus := newTestPlaybackService(t)
	rec := newRecorder(bus)

	require.NoError(t, service.LoadSong(testSong("First"), 0))
	require.NoError(t, service.Play())
	require.NoError(t, service.LoadSong(testSong("Second"), 1))

	assert.Equal(t, 1, engine.LoadedTracks())
	assert.Equal(t, "Second", service.GetState().CurrentSong.Title)
	assert.Equal(t, 1, rec.count(domain.EventTrackStopped))
}

func TestPlaybackService_PlayPauseToggle(t *testing.T) {
	service, _, bus := newTestPlaybackService(t)
	rec := newRecorder(bus)

	assert.ErrorIs(t, service.Play(), domain.ErrNoTrackLoaded)
	assert.ErrorIs(t, service.Pause(), domain.ErrNoTrackLoaded)

	require.NoError(t, service.LoadSong(testSong("Song"), 0))
	require.NoError(t, service.Play())
	assert.Equal(t, domain.StatusPlaying, service.GetState().Status)

	require.NoError(t, service.Play(), "playing again is a no-op")
	assert.Equal(t, 1, rec.count(domain.EventTrackStarted))

	require.NoError(t, service.TogglePlayPause())
	assert.Equal(t, domain.StatusPaused, service.GetState().Status)
	assert.Equal(t, 1, rec.count(domain.EventTrackPaused))

	require.NoError(t, service.Pause(), "pausing a paused song is a no-op")
	assert.Equal(t, 1, rec.count(domain.EventTrackPaused))

	require.NoError(t, service.TogglePlayPause())
	assert.Equal(t, domain.StatusPlaying, service.GetState().Status)
}

func TestPlaybackService_StopThenPlayReloads(t *testing.T) {
	service, engine, bus := newTestPlaybackService(t)
	rec := newRecorder(bus)
	song := testSong("Again")

	require.NoError(t, service.LoadSong(song, 4))
	require.NoError(t, service.Play())
	require.NoError(t, service.Stop())

	state := service.GetState()
	assert.Nil(t, state.CurrentSong)
	assert.Equal(t, domain.StatusStopped, state.Status)
	assert.Zero(t, engine.LoadedTracks())
	assert.Equal(t, 1, rec.count(domain.EventTrackStopped))

	require.NoError(t, service.Stop(), "stopping twice is fine")

	require.NoError(t, service.Play())
	state = service.GetState()
	require.NotNil(t, state.CurrentSong)
	assert.Equal(t, song.Path, state.CurrentSong.Path)
	assert.Equal(t, 4, state.CurrentIndex)
	assert.Equal(t, domain.StatusPlaying, state.Status)
}

func TestPlaybackService_SetVolume(t *testing.T) {
	service, engine, bus := newTestPlaybackService(t)
	rec := newRecorder(bus)

	require.NoError(t, service.LoadSong(testSong("Loud"), 0))
	require.NoError(t, service.SetVolume(0.25))

	assert.Equal(t, 0.25, service.GetVolume())
	vol, err := engine.GetVolume(loadedHandle(t, rec))
	require.NoError(t, err)
	assert.Equal(t, 0.25, vol)
	assert.Equal(t, 1, rec.count(domain.EventVolumeChanged))

	assert.ErrorIs(t, service.SetVolume(-0.1), domain.ErrInvalidVolume)
	assert.ErrorIs(t, service.SetVolume(1.01), domain.ErrInvalidVolume)
	require.NoError(t, service.SetVolume(0))
	require.NoError(t, service.SetVolume(1))
}

func TestPlaybackService_Seek(t *testing.T) {
	service, engine, bus := newTestPlaybackService(t)
	rec := newRecorder(bus)
	song := testSong("Long")
	engine.SetDuration(song.Path, time.Minute)

	assert.ErrorIs(t, service.Seek(time.Second), domain.ErrNoTrackLoaded)

	require.NoError(t, service.LoadSong(song, 0))
	require.NoError(t, service.Seek(30*time.Second))
	assert.Equal(t, 30*time.Second, service.GetState().Position)

	progress := rec.ofType(domain.EventTrackProgress)
	require.NotEmpty(t, progress)

	assert.ErrorIs(t, service.Seek(-time.Second), domain.ErrInvalidPosition)
	assert.ErrorIs(t, service.Seek(2*time.Minute), domain.ErrInvalidPosition)
}

func TestPlaybackService_Levels(t *testing.T) {
	service, _, _ := newTestPlaybackService(t)

	assert.Equal(t, make([]float64, 9), service.Levels(9))

	require.NoError(t, service.LoadSong(testSong("Beat"), 0))
	require.NoError(t, service.Play())
	levels := service.Levels(9)
	require.Len(t, levels, 9)
	assert.Greater(t, levels[8], 0.0)
}

func TestPlaybackService_ProgressEvents(t *testing.T) {
	service, _, bus := newTestPlaybackService(t)
	rec := newRecorder(bus)

	require.NoError(t, service.LoadSong(testSong("Tick"), 0))
	require.NoError(t, service.Play())

	require.Eventually(t, func() bool {
		return rec.count(domain.EventTrackProgress) >= 3
	}, time.Second, testTick)
}

func TestPlaybackService_EndOfSongPublishesAutoNextOnce(t *testing.T) {
	service, engine, bus := newTestPlaybackService(t)
	rec := newRecorder(bus)
	song := testSong("Short")

	require.NoError(t, service.LoadSong(song, 3))
	require.NoError(t, service.Play())
	require.NoError(t, engine.SimulateEnd(loadedHandle(t, rec)))

	require.Eventually(t, func() bool {
		return rec.count(domain.EventAutoNext) == 1
	}, time.Second, testTick)

	// Several more ticks pass without a second notification.
	time.Sleep(10 * testTick)
	assert.Equal(t, 1, rec.count(domain.EventAutoNext))
	assert.Equal(t, 1, rec.count(domain.EventTrackCompleted))

	ev := rec.ofType(domain.EventAutoNext)[0].(domain.AutoNextEvent)
	assert.Equal(t, song.Path, ev.Song.Path)
	assert.Equal(t, 3, ev.Index)
}

func TestPlaybackService_ManualStopIsNotEndOfSong(t *testing.T) {
	service, _, bus := newTestPlaybackService(t)
	rec := newRecorder(bus)

	require.NoError(t, service.LoadSong(testSong("Halt"), 0))
	require.NoError(t, service.Play())
	require.NoError(t, service.Stop())

	time.Sleep(10 * testTick)
	assert.Zero(t, rec.count(domain.EventAutoNext))
}

func TestPlaybackService_ConcurrentAccess(t *testing.T) {
	service, _, _ := newTestPlaybackService(t)
	require.NoError(t, service.LoadSong(testSong("Busy"), 0))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(3)
		go func(i int) {
			defer wg.Done()
			_ = service.SetVolume(float64(i%10) / 10)
		}(i)
		go func() {
			defer wg.Done()
			_ = service.TogglePlayPause()
		}()
		go func() {
			defer wg.Done()
			_ = service.GetState()
		}()
	}
	wg.Wait()
}

func TestPlaybackService_Shutdown(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	engine := mock.NewEngine()
	require.NoError(t, engine.Initialize(44100, 0))
	service := NewPlaybackService(logger.NewTestLogger(), engine, newTestBus(), 2.0, 0)

	assert.Equal(t, domain.DefaultVolume, service.GetVolume(), "out-of-range volume falls back")
	require.NoError(t, service.LoadSong(testSong("Last"), 0))
	require.NoError(t, service.Play())

	require.NoError(t, service.Shutdown())
	assert.Zero(t, engine.LoadedTracks())
}
