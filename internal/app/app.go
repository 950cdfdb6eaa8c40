// Package app provides application-level orchestration and dependency injection.
// This package wires together all components and manages the application lifecycle.
package app

import (
	"fmt"
	"log/slog"
	"sync"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"github.com/tejashwikalptaru/qtunes/internal/adapter/audio/beepengine"
	"github.com/tejashwikalptaru/qtunes/internal/adapter/audio/mock"
	"github.com/tejashwikalptaru/qtunes/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/qtunes/internal/adapter/mpris"
	"github.com/tejashwikalptaru/qtunes/internal/adapter/repository/memory"
	"github.com/tejashwikalptaru/qtunes/internal/adapter/repository/sqlite"
	"github.com/tejashwikalptaru/qtunes/internal/adapter/tags"
	fyneui "github.com/tejashwikalptaru/qtunes/internal/adapter/ui/fyne"
	"github.com/tejashwikalptaru/qtunes/internal/config"
	"github.com/tejashwikalptaru/qtunes/internal/logger"
	"github.com/tejashwikalptaru/qtunes/internal/ports"
	"github.com/tejashwikalptaru/qtunes/internal/service"
)

// AppID is the Fyne application identifier; it also names the preferences store.
const AppID = "com.qtunes.app"

// Application is the root application structure that holds all dependencies.
// It follows the Dependency Injection pattern with constructor-based injection.
//
// The Application struct is responsible for:
// - Creating and wiring all dependencies
// - Managing the application lifecycle (startup, shutdown)
// - Providing a clean entry point for main.go
type Application struct {
	// Core dependencies
	config  *config.Config
	options Options
	logger  *slog.Logger
	fyneApp fyne.App

	// Infrastructure
	eventBus    ports.EventBus
	audioEngine ports.AudioEngine
	tagReader   ports.TagReader

	// Repositories
	playlistRepo    ports.PlaylistRepository
	preferencesRepo ports.PreferencesRepository
	libraryRepo     ports.LibraryRepository

	// Services
	preferenceService *service.PreferenceService
	playbackService   *service.PlaybackService
	playlistService   *service.PlaylistService
	libraryService    *service.LibraryService
	catalogService    *service.CatalogService

	// UI
	presenter  *fyneui.Presenter
	mainWindow *fyneui.MainWindow

	// Desktop integration
	mpris *mpris.Adapter

	shutdownOnce sync.Once
}

// Options are the command-line overrides and test hooks.
type Options struct {
	// ConfigPath replaces the default config file locations
	ConfigPath string

	// Folder is scanned at startup when no cached library exists,
	// taking precedence over default_folder
	Folder string

	// UseMockAudio determines whether to use a mock audio engine (for testing)
	UseMockAudio bool

	// LibraryPath overrides the library cache location (":memory:" in tests)
	LibraryPath string

	// TestFyneApp allows injecting a test Fyne app for testing (nil for production)
	TestFyneApp fyne.App
}

// NewApplication creates a new application with all dependencies wired.
// This is the main dependency injection function.
func NewApplication(opts Options) (*Application, error) {
	// Step 1: Load configuration
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app := &Application{config: cfg, options: opts}

	// Step 2: Create logger
	app.logger = logger.NewLogger(logger.FromSettings(cfg.Log.Level, cfg.Log.Format))
	app.logger.Info("initializing application",
		slog.String("app_id", AppID),
		slog.String("version", GetVersionInfo().FullString()))

	// Step 3: Create Fyne application
	if opts.TestFyneApp != nil {
		app.fyneApp = opts.TestFyneApp
	} else {
		app.fyneApp = fyneapp.NewWithID(AppID)
	}

	// Step 4: Create an event bus
	app.eventBus = eventbus.NewSyncEventBus(app.logger.With(slog.String("component", "eventbus")))

	// Step 5: Create an audio engine
	if err := app.initAudio(); err != nil {
		return nil, err
	}
	app.tagReader = tags.NewReader(app.logger.With(slog.String("component", "tags")))

	// Step 6: Create repositories
	prefs := app.fyneApp.Preferences()
	app.playlistRepo = memory.NewPlaylistRepository(prefs)
	app.preferencesRepo = memory.NewPreferencesRepository(prefs)
	app.openLibraryCache()

	// Step 7: Create services (with dependency injection)
	app.preferenceService = service.NewPreferenceService(
		app.logger.With(slog.String("service", "preference")),
		app.preferencesRepo,
		app.eventBus,
		cfg.Visualizer.DefaultSpeed(),
	)

	app.playbackService = service.NewPlaybackService(
		app.logger.With(slog.String("service", "playback")),
		app.audioEngine,
		app.eventBus,
		app.preferenceService.Volume(),
		service.DefaultUpdateInterval,
	)

	app.playlistService = service.NewPlaylistService(
		app.logger.With(slog.String("service", "playlist")),
		app.playbackService,
		app.playlistRepo,
		app.eventBus,
		app.preferenceService.PlayMode(),
	)

	app.libraryService = service.NewLibraryService(
		app.logger.With(slog.String("service", "library")),
		app.tagReader,
		app.eventBus,
		app.libraryRepo,
		cfg.Extensions,
	)

	app.catalogService = service.NewCatalogService(
		app.logger.With(slog.String("service", "catalog")),
		app.eventBus,
		app.playlistRepo,
	)

	// Step 8: Create UI
	app.mainWindow = fyneui.NewMainWindow(app.fyneApp, app.logger.With(slog.String("component", "window")), fyneui.WindowConfig{
		Bars:            cfg.Visualizer.Bars,
		FrameInterval:   cfg.Visualizer.FrameInterval(),
		VisualizerSpeed: app.preferenceService.Preferences().VisualizerSpeed,
		AlbumsShown:     cfg.Coverflow.AlbumsShown,
		ShiftTime:       cfg.Coverflow.ShiftDuration(),
		ThumbSize:       uint(cfg.Coverflow.ThumbSize),
	})

	// Step 9: Create Presenter and wire with UI
	app.presenter = fyneui.NewPresenter(
		app.logger.With(slog.String("component", "presenter")),
		fyneui.Services{
			Library:    app.libraryService,
			Catalog:    app.catalogService,
			Playback:   app.playbackService,
			Queue:      app.playlistService,
			Preference: app.preferenceService,
			Tags:       app.tagReader,
		},
		app.eventBus,
		app.mainWindow,
	)

	// Connect presenter to the main window
	app.mainWindow.SetPresenter(app.presenter)

	// Stop scans before the window goes away
	app.mainWindow.SetOnBeforeClose(app.presenter.Shutdown)

	// Step 10: Desktop media keys
	if cfg.MPRIS {
		adapter, err := mpris.New(app.logger.With(slog.String("component", "mpris")), app.playbackService, app.playlistService)
		if err != nil {
			app.logger.Warn("mpris disabled", slog.Any("error", err))
		} else {
			app.mpris = adapter
		}
	}

	return app, nil
}

func (a *Application) initAudio() error {
	var engine ports.AudioEngine
	if a.options.UseMockAudio {
		m := mock.NewEngine()
		m.SetLogger(a.logger.With(slog.String("engine", "mock")))
		engine = m
	} else {
		engine = beepengine.New(a.logger.With(slog.String("engine", "beep")))
	}

	if err := engine.Initialize(a.config.Audio.SampleRate, a.config.Audio.BufferSize()); err != nil {
		return fmt.Errorf("failed to initialize audio engine: %w", err)
	}
	a.audioEngine = engine
	return nil
}

// openLibraryCache opens the sqlite library cache. Without it every start
// rescans the music folder.
func (a *Application) openLibraryCache() {
	if !a.config.LibraryCache {
		return
	}

	// An empty path opens the default location.
	path := a.options.LibraryPath
	repo, err := sqlite.Open(path, a.logger.With(slog.String("repository", "library")))
	if err != nil {
		a.logger.Warn("library cache disabled", slog.String("path", path), slog.Any("error", err))
		return
	}
	a.libraryRepo = repo
}

// startupFolder is the folder scanned when no cached library exists.
func (a *Application) startupFolder() string {
	switch {
	case a.options.Folder != "":
		return a.options.Folder
	case a.config.DefaultFolder != "":
		return a.config.DefaultFolder
	default:
		return a.preferenceService.LastFolder()
	}
}

// Start pushes the saved state to the window and restores the library,
// playlist and last played song.
func (a *Application) Start() {
	a.presenter.SyncInitialState()
	a.presenter.RestoreSession(a.startupFolder())
}

// Run starts the application.
// This is called from main.go after the application is created.
func (a *Application) Run() {
	a.logger.Info("qTunes started")
	a.Start()

	// Show and run UI (blocks until the window is closed)
	a.mainWindow.ShowAndRun()
}

// Shutdown gracefully shuts down the application.
// It's safe to call multiple times (idempotent).
func (a *Application) Shutdown() {
	a.shutdownOnce.Do(a.shutdown)
}

func (a *Application) shutdown() {
	a.logger.Info("shutting down application")

	warn := func(what string, err error) {
		if err != nil {
			a.logger.Warn("failed to shutdown "+what, slog.Any("error", err))
		}
	}

	if a.mpris != nil {
		warn("mpris", a.mpris.Close())
	}

	// Shutdown UI and presenter
	if a.presenter != nil {
		a.presenter.Shutdown()
	}
	if a.mainWindow != nil {
		a.mainWindow.Close()
	}

	// Shutdown services (in reverse order of creation)
	if a.libraryService != nil {
		warn("library service", a.libraryService.Shutdown())
	}
	if a.playlistService != nil {
		warn("playlist service", a.playlistService.Shutdown())
	}
	if a.playbackService != nil {
		warn("playback service", a.playbackService.Shutdown())
	}
	if a.preferenceService != nil {
		warn("preference service", a.preferenceService.Shutdown())
	}

	// Shutdown audio engine
	if a.audioEngine != nil {
		warn("audio engine", a.audioEngine.Shutdown())
	}
	if a.libraryRepo != nil {
		warn("library cache", a.libraryRepo.Close())
	}

	a.logger.Info("application shutdown complete")
}
