// Package fyne provides Fyne UI adapter implementations.
// This package implements the UI layer using the Fyne toolkit.
package fyne

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/tejashwikalptaru/qtunes/internal/domain"
	"github.com/tejashwikalptaru/qtunes/internal/ports"
	"github.com/tejashwikalptaru/qtunes/internal/service"
)

// Services groups the services the presenter drives.
type Services struct {
	Library    *service.LibraryService
	Catalog    *service.CatalogService
	Playback   *service.PlaybackService
	Queue      *service.PlaylistService
	Preference *service.PreferenceService
	Tags       ports.TagReader
}

// Presenter implements the Presenter pattern (MVP architecture).
// It coordinates between services and the UI, handling all event-driven updates.
//
// Responsibilities:
// - Subscribe to events from the event bus
// - Map domain events to view updates
// - Translate UI commands to service method calls
// - Run folder scans off the UI goroutine
//
// Thread-safety: All operations are thread-safe via sync.Mutex.
type Presenter struct {
	logger *slog.Logger
	svc    Services
	bus    ports.EventBus
	view   ports.View

	subs []domain.SubscriptionID

	// Scans in flight
	scans          sync.WaitGroup
	restoreOnLoad  bool
	scanCtx        context.Context
	cancelAllScans context.CancelFunc

	mu           sync.Mutex
	shutdownOnce sync.Once
}

// NewPresenter creates a presenter and subscribes it to the bus.
func NewPresenter(logger *slog.Logger, svc Services, bus ports.EventBus, view ports.View) *Presenter {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Presenter{
		logger:         logger,
		svc:            svc,
		bus:            bus,
		view:           view,
		scanCtx:        ctx,
		cancelAllScans: cancel,
	}
	p.subscribeToEvents()
	return p
}

// subscribeToEvents subscribes to all relevant events from the event bus.
func (p *Presenter) subscribeToEvents() {
	subscriptions := []struct {
		eventType domain.EventType
		handler   domain.EventHandler
	}{
		// Playback events
		{domain.EventTrackLoaded, p.onTrackLoaded},
		{domain.EventTrackStarted, p.onTrackStarted},
		{domain.EventTrackPaused, p.onTrackPaused},
		{domain.EventTrackStopped, p.onTrackStopped},
		{domain.EventTrackCompleted, p.onTrackCompleted},
		{domain.EventTrackProgress, p.onTrackProgress},
		{domain.EventTrackError, p.onTrackError},
		{domain.EventVolumeChanged, p.onVolumeChanged},
		{domain.EventPlayModeChanged, p.onPlayModeChanged},

		// Library and table events
		{domain.EventScanStarted, p.onScanStarted},
		{domain.EventScanProgress, p.onScanProgress},
		{domain.EventScanCompleted, p.onScanCompleted},
		{domain.EventScanCancelled, p.onScanCancelled},
		{domain.EventLibraryLoaded, p.onLibraryLoaded},
		{domain.EventPanelsChanged, p.onPanelsChanged},
		{domain.EventTableChanged, p.onTableChanged},
		{domain.EventPlaylistChanged, p.onPlaylistChanged},

		// Appearance
		{domain.EventAppearanceChanged, p.onAppearanceChanged},
		{domain.EventVisualizerSpeedChanged, p.onVisualizerSpeedChanged},
	}

	for _, s := range subscriptions {
		p.subs = append(p.subs, p.bus.Subscribe(s.eventType, s.handler))
	}
}

// SyncInitialState pushes the saved preferences and the current playback
// state to the view.
func (p *Presenter) SyncInitialState() {
	prefs := p.svc.Preference.Preferences()
	p.view.SetAppearance(prefs.NightMode, prefs.SliderColor)
	p.view.SetVisualizerSpeed(prefs.VisualizerSpeed)
	p.view.SetPlayMode(p.svc.Queue.Mode())

	state := p.svc.Playback.GetState()
	p.view.SetVolume(state.Volume)
	p.view.SetPlayState(state.Status == domain.StatusPlaying)
	p.view.SetProgress(state.Position, state.Duration)
	if state.CurrentSong != nil {
		p.view.SetNowPlaying(state.CurrentSong, p.coverArt(state.CurrentSong.Path))
	}
}

// RestoreSession loads the cached library, or scans folder when there is no
// cache, and then restores the saved playlist and last played song.
func (p *Presenter) RestoreSession(folder string) {
	restored, err := p.svc.Library.LoadCached()
	if err != nil {
		p.logger.Warn("failed to load library cache", slog.Any("error", err))
	}
	if restored {
		p.restorePlaylist()
		return
	}
	if folder == "" {
		return
	}

	p.mu.Lock()
	p.restoreOnLoad = true
	p.mu.Unlock()
	p.startScan(folder)
}

func (p *Presenter) restorePlaylist() {
	n, err := p.svc.Catalog.RestorePlaylist()
	if err != nil {
		p.logger.Warn("failed to restore playlist", slog.Any("error", err))
	}
	p.logger.Debug("playlist restored", slog.Int("songs", n))

	if last := p.svc.Queue.LastPlayed(); last != "" {
		if err := p.svc.Queue.Cue(last); err != nil {
			p.logger.Debug("last played song not restored", slog.String("path", last), slog.Any("error", err))
		}
	}
}

// Event handlers

func (p *Presenter) onTrackLoaded(event domain.Event) {
	e, ok := event.(domain.TrackLoadedEvent)
	if !ok {
		return
	}

	song := e.Song
	p.view.SetNowPlaying(&song, p.coverArt(song.Path))
	p.view.SetProgress(0, e.Duration)
}

// coverArt returns the song's artwork, or nil for the default cover.
func (p *Presenter) coverArt(path string) []byte {
	if p.svc.Tags == nil {
		return nil
	}
	data, _, err := p.svc.Tags.CoverArt(path)
	if err != nil {
		if !errors.Is(err, domain.ErrNoCoverArt) {
			p.logger.Debug("cover art unreadable", slog.String("path", path), slog.Any("error", err))
		}
		return nil
	}
	return data
}

func (p *Presenter) onTrackStarted(domain.Event) {
	p.view.SetPlayState(true)
}

func (p *Presenter) onTrackPaused(domain.Event) {
	p.view.SetPlayState(false)
}

func (p *Presenter) onTrackStopped(domain.Event) {
	p.view.SetPlayState(false)
	p.view.SetProgress(0, 0)
}

func (p *Presenter) onTrackCompleted(domain.Event) {
	// The queue loads the next song on AutoNext.
	p.view.SetPlayState(false)
}

func (p *Presenter) onTrackProgress(event domain.Event) {
	if e, ok := event.(domain.TrackProgressEvent); ok {
		p.view.SetProgress(e.Position, e.Duration)
	}
}

func (p *Presenter) onTrackError(event domain.Event) {
	if e, ok := event.(domain.TrackErrorEvent); ok {
		p.view.ShowError("Playback Error", fmt.Errorf("%s: %w", e.Song.Title, e.Error))
	}
}

func (p *Presenter) onVolumeChanged(event domain.Event) {
	if e, ok := event.(domain.VolumeChangedEvent); ok {
		p.view.SetVolume(e.Volume)
	}
}

func (p *Presenter) onPlayModeChanged(event domain.Event) {
	if e, ok := event.(domain.PlayModeChangedEvent); ok {
		p.view.SetPlayMode(e.Mode)
	}
}

func (p *Presenter) onScanStarted(domain.Event) {
	p.view.ShowScanProgress(domain.ScanProgress{})
}

func (p *Presenter) onScanProgress(event domain.Event) {
	if e, ok := event.(domain.ScanProgressEvent); ok {
		p.view.ShowScanProgress(e.Progress)
	}
}

func (p *Presenter) onScanCompleted(event domain.Event) {
	e, ok := event.(domain.ScanCompletedEvent)
	if !ok {
		return
	}
	p.view.HideScanProgress()
	p.view.ShowNotification("Library Loaded", SummaryText(e.Summary))
}

func (p *Presenter) onScanCancelled(domain.Event) {
	p.view.HideScanProgress()
	p.view.ShowNotification("Scan Cancelled", "The library was left unchanged")
}

func (p *Presenter) onLibraryLoaded(event domain.Event) {
	if e, ok := event.(domain.LibraryLoadedEvent); ok {
		p.view.SetAlbums(domain.Albums(e.Songs))
	}
}

func (p *Presenter) onPanelsChanged(event domain.Event) {
	if e, ok := event.(domain.PanelsChangedEvent); ok {
		p.view.SetPanels(e.Panels)
	}
}

func (p *Presenter) onTableChanged(event domain.Event) {
	if e, ok := event.(domain.TableChangedEvent); ok {
		p.view.SetTable(e.Rows, e.Checked)
	}
}

func (p *Presenter) onPlaylistChanged(event domain.Event) {
	if e, ok := event.(domain.PlaylistChangedEvent); ok {
		p.view.SetPlaylist(e.Songs)
	}
}

func (p *Presenter) onAppearanceChanged(event domain.Event) {
	if e, ok := event.(domain.AppearanceChangedEvent); ok {
		p.view.SetAppearance(e.NightMode, e.SliderColor)
	}
}

func (p *Presenter) onVisualizerSpeedChanged(event domain.Event) {
	if e, ok := event.(domain.VisualizerSpeedChangedEvent); ok {
		p.view.SetVisualizerSpeed(e.Speed)
	}
}

// SummaryText describes a finished scan, e.g.
// "1,204 songs (5.1 GB, 3 days 4:05:10) from /music in 2.4s".
func SummaryText(s domain.ScanSummary) string {
	noun := "songs"
	if s.Songs == 1 {
		noun = "song"
	}
	return fmt.Sprintf("%s %s (%s, %s) from %s in %s",
		humanize.Comma(int64(s.Songs)), noun,
		humanize.Bytes(uint64(max(s.Bytes, 0))),
		longDuration(s.Duration),
		s.Root,
		s.Elapsed.Round(100*time.Millisecond))
}

// longDuration formats a total play time as "H:MM:SS", prefixed with days
// when it exceeds a day.
func longDuration(d time.Duration) string {
	d = d.Round(time.Second)
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	h, m, s := d/time.Hour, (d%time.Hour)/time.Minute, (d%time.Minute)/time.Second
	clock := fmt.Sprintf("%d:%02d:%02d", h, m, s)
	switch days {
	case 0:
		return clock
	case 1:
		return "1 day " + clock
	default:
		return fmt.Sprintf("%d days %s", days, clock)
	}
}

// UI Command handlers (called by the view)

// OnLoadFolder scans folder in the background.
func (p *Presenter) OnLoadFolder(folder string) {
	if folder == "" {
		return
	}
	p.startScan(folder)
}

func (p *Presenter) startScan(folder string) {
	if p.svc.Library.IsScanning() {
		p.view.ShowNotification("Scan In Progress", "Wait for the current scan to finish")
		return
	}

	p.scans.Add(1)
	go func() {
		defer p.scans.Done()
		p.runScan(folder)
	}()
}

func (p *Presenter) runScan(folder string) {
	_, err := p.svc.Library.ScanFolder(p.scanCtx, folder)

	p.mu.Lock()
	restore := p.restoreOnLoad
	p.restoreOnLoad = false
	p.mu.Unlock()

	switch {
	case err == nil:
		if err := p.svc.Preference.SetLastFolder(folder); err != nil {
			p.logger.Warn("failed to save last folder", slog.Any("error", err))
		}
		if restore {
			p.restorePlaylist()
		}
	case errors.Is(err, domain.ErrScanCancelled):
		p.logger.Info("scan cancelled", slog.String("path", folder))
	default:
		p.logger.Error("scan failed", slog.String("path", folder), slog.Any("error", err))
		p.view.HideScanProgress()
		p.view.ShowError("Load Music Folder", err)
	}
}

// OnCancelScan stops the running scan.
func (p *Presenter) OnCancelScan() {
	if err := p.svc.Library.CancelScan(); err != nil {
		p.logger.Debug("cancel ignored", slog.Any("error", err))
	}
}

// OnPanelSelected filters the table by a panel entry.
func (p *Presenter) OnPanelSelected(panel domain.Panel, value string) {
	var err error
	switch panel {
	case domain.PanelGenre:
		err = p.svc.Catalog.SelectGenre(value)
	case domain.PanelArtist:
		err = p.svc.Catalog.SelectArtist(value)
	case domain.PanelAlbum:
		err = p.svc.Catalog.SelectAlbum(value)
	}
	if err != nil {
		p.logger.Warn("panel selection failed", slog.String("value", value), slog.Any("error", err))
	}
}

// OnSearch filters the table by a free-text query.
func (p *Presenter) OnSearch(query string) {
	p.svc.Catalog.Search(query)
}

// OnAlbumChosen shows only the songs of the album picked in the coverflow.
func (p *Presenter) OnAlbumChosen(album string) {
	if err := p.svc.Catalog.ShowAlbum(album); err != nil {
		p.logger.Warn("album selection failed", slog.String("album", album), slog.Any("error", err))
	}
}

// OnSongChecked adds or removes a song from the playlist.
func (p *Presenter) OnSongChecked(path string, checked bool) {
	if err := p.svc.Catalog.SetChecked(path, checked); err != nil {
		p.logger.Warn("check failed", slog.String("path", path), slog.Any("error", err))
	}
}

// OnSelectAll checks or unchecks every visible row.
func (p *Presenter) OnSelectAll(checked bool) {
	p.svc.Catalog.CheckVisible(checked)
}

// OnRowActivated plays the double-clicked row and makes its table the queue.
func (p *Presenter) OnRowActivated(source domain.QueueSource, path string) {
	rows := p.svc.Catalog.Rows()
	if source == domain.SourcePlaylist {
		rows = p.svc.Catalog.Playlist()
	}
	p.svc.Queue.SetQueue(rows, source)

	if _, err := p.svc.Queue.PlayPath(path); err != nil {
		p.logger.Error("play failed", slog.String("path", path), slog.Any("error", err))
		p.view.ShowError("Playback Error", err)
	}
}

// OnPlayClicked starts or resumes playback. With nothing loaded it starts
// the queue from the top.
func (p *Presenter) OnPlayClicked() {
	err := p.svc.Playback.Play()
	if errors.Is(err, domain.ErrNoTrackLoaded) {
		err = p.svc.Queue.Next()
	}
	p.reportPlayback("play", err)
}

// OnPauseClicked pauses playback.
func (p *Presenter) OnPauseClicked() {
	p.reportPlayback("pause", ignore(p.svc.Playback.Pause(), domain.ErrNoTrackLoaded))
}

// OnTogglePlayPause handles the Space key.
func (p *Presenter) OnTogglePlayPause() {
	if p.svc.Playback.GetState().Status == domain.StatusPlaying {
		p.OnPauseClicked()
		return
	}
	p.OnPlayClicked()
}

// OnStopClicked stops playback.
func (p *Presenter) OnStopClicked() {
	p.reportPlayback("stop", p.svc.Playback.Stop())
}

// OnNextClicked plays the next row of the queue.
func (p *Presenter) OnNextClicked() {
	p.reportPlayback("next", ignore(p.svc.Queue.Next(), domain.ErrQueueEmpty))
}

// OnPreviousClicked plays the previous row of the queue.
func (p *Presenter) OnPreviousClicked() {
	p.reportPlayback("previous", ignore(p.svc.Queue.Previous(), domain.ErrQueueEmpty))
}

func ignore(err, target error) error {
	if errors.Is(err, target) {
		return nil
	}
	return err
}

func (p *Presenter) reportPlayback(op string, err error) {
	if err == nil {
		return
	}
	p.logger.Error(op+" failed", slog.Any("error", err))
	p.view.ShowError("Playback Error", err)
}

// OnVolumeChanged handles volume slider changes (0 to 100).
func (p *Presenter) OnVolumeChanged(percent float64) {
	if err := p.svc.Playback.SetVolume(percent / 100.0); err != nil {
		p.logger.Warn("volume change failed", slog.Float64("percent", percent), slog.Any("error", err))
	}
}

// OnSeekRequested moves the playing song to seconds.
func (p *Presenter) OnSeekRequested(seconds float64) {
	position := time.Duration(seconds * float64(time.Second))
	err := p.svc.Playback.Seek(position)
	if err != nil && !errors.Is(err, domain.ErrNoTrackLoaded) {
		p.logger.Warn("seek failed", slog.Any("error", err))
	}
}

// OnRepeatToggled switches repeat mode.
func (p *Presenter) OnRepeatToggled(on bool) {
	p.svc.Queue.SetRepeat(on)
}

// OnShuffleToggled switches shuffle mode.
func (p *Presenter) OnShuffleToggled(on bool) {
	p.svc.Queue.SetShuffle(on)
}

// OnNightModeToggled flips night mode.
func (p *Presenter) OnNightModeToggled() {
	if _, err := p.svc.Preference.ToggleNightMode(); err != nil {
		p.logger.Warn("night mode not saved", slog.Any("error", err))
	}
}

// OnCycleSliderColor moves to the next slider colour.
func (p *Presenter) OnCycleSliderColor() {
	if _, err := p.svc.Preference.CycleSliderColor(len(SliderPalette)); err != nil {
		p.logger.Warn("slider colour not saved", slog.Any("error", err))
	}
}

// OnVisualizerSpeedChosen changes the visualizer speed.
func (p *Presenter) OnVisualizerSpeedChosen(speed domain.VisualizerSpeed) {
	if err := p.svc.Preference.SetVisualizerSpeed(speed); err != nil {
		p.logger.Warn("visualizer speed not saved", slog.Any("error", err))
	}
}

// Levels returns the visualizer targets in 0..1 for the playing song.
// ok is false when nothing is playing.
func (p *Presenter) Levels(bands int) (levels []float64, ok bool) {
	if p.svc.Playback.GetState().Status != domain.StatusPlaying {
		return nil, false
	}
	return p.svc.Playback.Levels(bands), true
}

// Shutdown cancels running scans and unsubscribes from the bus.
// It's safe to call multiple times (idempotent).
func (p *Presenter) Shutdown() {
	p.shutdownOnce.Do(func() {
		p.cancelAllScans()
		p.scans.Wait()

		for _, id := range p.subs {
			p.bus.Unsubscribe(id)
		}
		p.subs = nil
	})
}
