package fyne

import (
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/qtunes/internal/adapter/audio/mock"
	"github.com/tejashwikalptaru/qtunes/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/qtunes/internal/adapter/repository/memory"
	"github.com/tejashwikalptaru/qtunes/internal/domain"
	"github.com/tejashwikalptaru/qtunes/internal/logger"
	"github.com/tejashwikalptaru/qtunes/internal/ports"
	"github.com/tejashwikalptaru/qtunes/internal/service"
	"github.com/tejashwikalptaru/qtunes/internal/testutil"
)

// recordingView is a ports.View that remembers what it was told.
type recordingView struct {
	mu sync.Mutex

	panels        domain.Panels
	rows          []domain.Song
	playlist      []domain.Song
	albums        []domain.AlbumEntry
	nowPlaying    *domain.Song
	playing       bool
	position      time.Duration
	duration      time.Duration
	volume        float64
	mode          domain.PlayMode
	nightMode     bool
	sliderColor   int
	speed         domain.VisualizerSpeed
	scanShown     int
	scanHidden    int
	notifications []string
	errors        []error
}

func (v *recordingView) SetPanels(p domain.Panels) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.panels = p
}

func (v *recordingView) SetTable(rows []domain.Song, _ map[string]bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rows = rows
}

func (v *recordingView) SetPlaylist(songs []domain.Song) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.playlist = songs
}

func (v *recordingView) SetAlbums(albums []domain.AlbumEntry) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.albums = albums
}

func (v *recordingView) SetNowPlaying(song *domain.Song, _ []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.nowPlaying = song
}

func (v *recordingView) SetPlayState(playing bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.playing = playing
}

func (v *recordingView) SetProgress(position, duration time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.position, v.duration = position, duration
}

func (v *recordingView) SetVolume(volume float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.volume = volume
}

func (v *recordingView) SetPlayMode(mode domain.PlayMode) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mode = mode
}

func (v *recordingView) SetAppearance(nightMode bool, sliderColor int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.nightMode, v.sliderColor = nightMode, sliderColor
}

func (v *recordingView) SetVisualizerSpeed(speed domain.VisualizerSpeed) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.speed = speed
}

func (v *recordingView) ShowScanProgress(domain.ScanProgress) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scanShown++
}

func (v *recordingView) HideScanProgress() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scanHidden++
}

func (v *recordingView) ShowNotification(title, _ string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notifications = append(v.notifications, title)
}

func (v *recordingView) ShowError(_ string, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.errors = append(v.errors, err)
}

func (v *recordingView) snapshot(fn func(v *recordingView)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fn(v)
}

var _ ports.View = (*recordingView)(nil)

// stubTags names songs after their file and folders.
type stubTags struct{}

func (stubTags) Read(path string) (domain.Song, error) {
	song := domain.NewSong(path)
	song.ID = path
	song.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	song.Album = filepath.Base(filepath.Dir(path))
	return song, nil
}

func (stubTags) CoverArt(string) ([]byte, string, error) {
	return nil, "", domain.ErrNoCoverArt
}

// cacheRepo is an in-process library cache.
type cacheRepo struct {
	mu    sync.Mutex
	root  string
	songs []domain.Song
}

func (r *cacheRepo) Save(root string, songs []domain.Song) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.root, r.songs = root, slices.Clone(songs)
	return nil
}

func (r *cacheRepo) Load() (string, []domain.Song, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.root, slices.Clone(r.songs), nil
}

func (r *cacheRepo) Clear() error { return r.Save("", nil) }
func (r *cacheRepo) Close() error { return nil }

type presenterFixture struct {
	presenter *Presenter
	view      *recordingView
	svc       Services
	bus       *eventbus.SyncEventBus
	engine    *mock.Engine
	cache     *cacheRepo
	playlists *memory.PlaylistRepository
}

func newPresenterFixture(t *testing.T) *presenterFixture {
	t.Helper()

	app := test.NewApp()
	log := logger.NewTestLogger()
	bus := eventbus.NewSyncEventBus(log)

	engine := mock.NewEngine()
	require.NoError(t, engine.Initialize(44100, 0))

	prefsRepo := memory.NewPreferencesRepository(app.Preferences())
	playlists := memory.NewPlaylistRepository(app.Preferences())
	cache := &cacheRepo{}

	prefs := service.NewPreferenceService(log, prefsRepo, bus, domain.SpeedNormal)
	playback := service.NewPlaybackService(log, engine, bus, prefs.Volume(), 5*time.Millisecond)
	svc := Services{
		Library:    service.NewLibraryService(log, stubTags{}, bus, cache, []string{".mp3"}),
		Catalog:    service.NewCatalogService(log, bus, playlists),
		Playback:   playback,
		Queue:      service.NewPlaylistService(log, playback, playlists, bus, prefs.PlayMode()),
		Preference: prefs,
		Tags:       stubTags{},
	}

	view := &recordingView{}
	f := &presenterFixture{
		presenter: NewPresenter(log, svc, bus, view),
		view:      view,
		svc:       svc,
		bus:       bus,
		engine:    engine,
		cache:     cache,
		playlists: playlists,
	}
	t.Cleanup(func() {
		f.presenter.Shutdown()
		_ = svc.Queue.Shutdown()
		_ = svc.Playback.Shutdown()
		_ = svc.Preference.Shutdown()
		_ = svc.Library.Shutdown()
		_ = engine.Shutdown()
		app.Quit()
	})
	return f
}

func songsAt(paths ...string) []domain.Song {
	out := make([]domain.Song, 0, len(paths))
	for _, p := range paths {
		s, _ := stubTags{}.Read(p)
		out = append(out, s)
	}
	return out
}

func TestPresenter_SyncInitialState(t *testing.T) {
	f := newPresenterFixture(t)
	f.svc.Queue.SetShuffle(true)

	f.presenter.SyncInitialState()

	f.view.snapshot(func(v *recordingView) {
		assert.Equal(t, domain.DefaultVolume, v.volume)
		assert.Equal(t, domain.PlayModeShuffle, v.mode)
		assert.Equal(t, domain.SpeedNormal, v.speed)
		assert.False(t, v.playing)
		assert.Nil(t, v.nowPlaying)
	})
}

func TestPresenter_LoadFolderFillsView(t *testing.T) {
	f := newPresenterFixture(t)
	root := testutil.MusicTree(t, "Rock/a.mp3", "Rock/b.mp3", "Jazz/c.mp3", "notes.txt")

	f.presenter.OnLoadFolder(root)

	require.Eventually(t, func() bool {
		var done bool
		f.view.snapshot(func(v *recordingView) { done = len(v.rows) == 3 && len(v.albums) == 2 })
		return done
	}, 2*time.Second, 5*time.Millisecond)

	f.presenter.Shutdown()
	f.view.snapshot(func(v *recordingView) {
		assert.Positive(t, v.scanShown)
		assert.Positive(t, v.scanHidden)
		assert.Contains(t, v.notifications, "Library Loaded")
		require.NotEmpty(t, v.panels.Albums)
		assert.Equal(t, []string{domain.PanelAll, "Jazz", "Rock"}, v.panels.Albums)
		assert.Empty(t, v.errors)
	})
	assert.Equal(t, root, f.svc.Preference.LastFolder())

	_, cached, err := f.cache.Load()
	require.NoError(t, err)
	assert.Len(t, cached, 3)
}

func TestPresenter_LoadFolderFailureShowsError(t *testing.T) {
	f := newPresenterFixture(t)

	f.presenter.OnLoadFolder(filepath.Join(t.TempDir(), "missing"))

	require.Eventually(t, func() bool {
		var shown bool
		f.view.snapshot(func(v *recordingView) { shown = len(v.errors) == 1 })
		return shown
	}, 2*time.Second, 5*time.Millisecond)
	f.view.snapshot(func(v *recordingView) { assert.Positive(t, v.scanHidden) })
	assert.Empty(t, f.svc.Preference.LastFolder())
}

func TestPresenter_RowActivatedPlaysFromTable(t *testing.T) {
	f := newPresenterFixture(t)
	f.svc.Catalog.SetSongs(songsAt("/m/a.mp3", "/m/b.mp3", "/m/c.mp3"))

	f.presenter.OnRowActivated(domain.SourceLibrary, "/m/b.mp3")

	f.view.snapshot(func(v *recordingView) {
		require.NotNil(t, v.nowPlaying)
		assert.Equal(t, "b", v.nowPlaying.Title)
		assert.True(t, v.playing)
	})
	assert.Equal(t, 1, f.svc.Queue.CurrentIndex())
	assert.Equal(t, domain.SourceLibrary, f.svc.Queue.Source())
}

func TestPresenter_RowActivatedInPlaylistFollowsPlaylist(t *testing.T) {
	f := newPresenterFixture(t)
	f.svc.Catalog.SetSongs(songsAt("/m/a.mp3", "/m/b.mp3", "/m/c.mp3"))
	f.presenter.OnSongChecked("/m/c.mp3", true)
	f.presenter.OnSongChecked("/m/a.mp3", true)

	f.view.snapshot(func(v *recordingView) {
		assert.Equal(t, []string{"c", "a"}, songTitles(v.playlist))
	})

	f.presenter.OnRowActivated(domain.SourcePlaylist, "/m/a.mp3")
	assert.Equal(t, domain.SourcePlaylist, f.svc.Queue.Source())
	assert.Equal(t, 1, f.svc.Queue.CurrentIndex())

	f.presenter.OnNextClicked()
	f.view.snapshot(func(v *recordingView) {
		require.NotNil(t, v.nowPlaying)
		assert.Equal(t, "c", v.nowPlaying.Title)
	})
}

func TestPresenter_PlayWithNothingLoadedStartsQueue(t *testing.T) {
	f := newPresenterFixture(t)
	f.svc.Catalog.SetSongs(songsAt("/m/a.mp3", "/m/b.mp3"))

	f.presenter.OnPlayClicked()

	f.view.snapshot(func(v *recordingView) {
		require.NotNil(t, v.nowPlaying)
		assert.Equal(t, "a", v.nowPlaying.Title)
		assert.True(t, v.playing)
		assert.Empty(t, v.errors)
	})

	f.presenter.OnTogglePlayPause()
	f.view.snapshot(func(v *recordingView) { assert.False(t, v.playing) })
	f.presenter.OnTogglePlayPause()
	f.view.snapshot(func(v *recordingView) { assert.True(t, v.playing) })
}

func TestPresenter_ButtonsOnEmptyQueueAreQuiet(t *testing.T) {
	f := newPresenterFixture(t)

	f.presenter.OnNextClicked()
	f.presenter.OnPreviousClicked()
	f.presenter.OnPauseClicked()
	f.presenter.OnSeekRequested(10)

	f.view.snapshot(func(v *recordingView) { assert.Empty(t, v.errors) })
}

func TestPresenter_StopResetsProgress(t *testing.T) {
	f := newPresenterFixture(t)
	f.svc.Catalog.SetSongs(songsAt("/m/a.mp3"))
	f.presenter.OnRowActivated(domain.SourceLibrary, "/m/a.mp3")

	f.presenter.OnStopClicked()

	f.view.snapshot(func(v *recordingView) {
		assert.False(t, v.playing)
		assert.Zero(t, v.position)
		assert.Zero(t, v.duration)
	})
}

func TestPresenter_PlaybackErrorShown(t *testing.T) {
	f := newPresenterFixture(t)
	f.svc.Catalog.SetSongs(songsAt("/m/a.mp3"))
	f.engine.SetFailLoad(true)

	f.presenter.OnRowActivated(domain.SourceLibrary, "/m/a.mp3")

	f.view.snapshot(func(v *recordingView) {
		require.NotEmpty(t, v.errors)
		var engineErr *domain.AudioEngineError
		assert.True(t, errors.As(v.errors[len(v.errors)-1], &engineErr))
	})
}

func TestPresenter_VolumeFromSlider(t *testing.T) {
	f := newPresenterFixture(t)

	f.presenter.OnVolumeChanged(25)

	f.view.snapshot(func(v *recordingView) { assert.InDelta(t, 0.25, v.volume, 1e-9) })
	assert.InDelta(t, 0.25, f.svc.Preference.Volume(), 1e-9)
}

func TestPresenter_ModesAndAppearance(t *testing.T) {
	f := newPresenterFixture(t)

	f.presenter.OnRepeatToggled(true)
	f.view.snapshot(func(v *recordingView) { assert.Equal(t, domain.PlayModeRepeat, v.mode) })
	f.presenter.OnShuffleToggled(true)
	f.view.snapshot(func(v *recordingView) { assert.Equal(t, domain.PlayModeShuffle, v.mode) })

	f.presenter.OnNightModeToggled()
	f.presenter.OnCycleSliderColor()
	f.presenter.OnVisualizerSpeedChosen(domain.SpeedFastest)

	f.view.snapshot(func(v *recordingView) {
		assert.True(t, v.nightMode)
		assert.Equal(t, 1, v.sliderColor)
		assert.Equal(t, domain.SpeedFastest, v.speed)
	})
}

func TestPresenter_PanelsAndSearchFilterTable(t *testing.T) {
	f := newPresenterFixture(t)
	songs := songsAt("/m/Rock/a.mp3", "/m/Rock/b.mp3", "/m/Jazz/c.mp3")
	f.svc.Catalog.SetSongs(songs)

	f.presenter.OnPanelSelected(domain.PanelAlbum, "Jazz")
	f.view.snapshot(func(v *recordingView) { assert.Equal(t, []string{"c"}, songTitles(v.rows)) })

	f.presenter.OnPanelSelected(domain.PanelAlbum, domain.PanelAll)
	f.presenter.OnSearch("B")
	f.view.snapshot(func(v *recordingView) { assert.Equal(t, []string{"b"}, songTitles(v.rows)) })

	f.presenter.OnSearch("")
	f.presenter.OnAlbumChosen("Rock")
	f.view.snapshot(func(v *recordingView) { assert.Equal(t, []string{"a", "b"}, songTitles(v.rows)) })

	f.presenter.OnSelectAll(true)
	f.view.snapshot(func(v *recordingView) { assert.Len(t, v.playlist, 2) })
}

func TestPresenter_RestoreSessionFromCache(t *testing.T) {
	f := newPresenterFixture(t)
	songs := songsAt("/m/a.mp3", "/m/b.mp3", "/m/c.mp3")
	require.NoError(t, f.cache.Save("/m", songs))
	require.NoError(t, f.playlists.SavePlaylist([]string{"/m/c.mp3", "/m/gone.mp3"}))
	require.NoError(t, f.playlists.SaveLastPlayed("/m/b.mp3"))

	f.presenter.RestoreSession("")

	f.view.snapshot(func(v *recordingView) {
		assert.Len(t, v.rows, 3)
		assert.Equal(t, []string{"c"}, songTitles(v.playlist))
		require.NotNil(t, v.nowPlaying)
		assert.Equal(t, "b", v.nowPlaying.Title)
		assert.False(t, v.playing)
	})
	assert.Equal(t, 1, f.svc.Queue.CurrentIndex())
}

func TestPresenter_RestoreSessionScansWithoutCache(t *testing.T) {
	f := newPresenterFixture(t)
	root := testutil.MusicTree(t, "a.mp3", "b.mp3")
	require.NoError(t, f.playlists.SavePlaylist([]string{filepath.Join(root, "b.mp3")}))

	f.presenter.RestoreSession(root)

	require.Eventually(t, func() bool {
		var restored bool
		f.view.snapshot(func(v *recordingView) {
			restored = len(v.rows) == 2 && slices.Equal(songTitles(v.playlist), []string{"b"})
		})
		return restored
	}, 2*time.Second, 5*time.Millisecond)
}

func TestPresenter_Levels(t *testing.T) {
	f := newPresenterFixture(t)

	_, ok := f.presenter.Levels(9)
	assert.False(t, ok)

	f.svc.Catalog.SetSongs(songsAt("/m/a.mp3"))
	f.presenter.OnRowActivated(domain.SourceLibrary, "/m/a.mp3")

	levels, ok := f.presenter.Levels(9)
	require.True(t, ok)
	assert.Len(t, levels, 9)
}

func TestPresenter_ShutdownUnsubscribes(t *testing.T) {
	f := newPresenterFixture(t)

	f.presenter.Shutdown()
	f.presenter.Shutdown()
	f.bus.Publish(domain.NewVolumeChangedEvent(0.1))

	f.view.snapshot(func(v *recordingView) { assert.Zero(t, v.volume) })
}

func TestSummaryText(t *testing.T) {
	summary := domain.ScanSummary{
		Root:     "/music",
		Songs:    1204,
		Bytes:    5_100_000_000,
		Duration: 76*time.Hour + 5*time.Minute + 10*time.Second,
		Elapsed:  2430 * time.Millisecond,
	}
	assert.Equal(t, "1,204 songs (5.1 GB, 3 days 4:05:10) from /music in 2.4s", SummaryText(summary))

	one := domain.ScanSummary{Root: "/m", Songs: 1, Bytes: 2000, Duration: 3 * time.Minute}
	assert.Equal(t, "1 song (2.0 kB, 0:03:00) from /m in 0s", SummaryText(one))
}

func TestLongDuration(t *testing.T) {
	assert.Equal(t, "0:00:00", longDuration(0))
	assert.Equal(t, "1 day 0:00:01", longDuration(24*time.Hour+time.Second))
	assert.Equal(t, "23:59:59", longDuration(24*time.Hour-time.Second))
}

func songTitles(songs []domain.Song) []string {
	out := make([]string, 0, len(songs))
	for _, s := range songs {
		out = append(out, s.Title)
	}
	return out
}
