// Package service provides the business logic of qTunes.
package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/tejashwikalptaru/qtunes/internal/domain"
	"github.com/tejashwikalptaru/qtunes/internal/ports"
)

// LibraryService scans music folders and owns the loaded library.
// All operations are thread-safe via sync.RWMutex.
type LibraryService struct {
	// Dependencies (injected)
	logger *slog.Logger
	tags   ports.TagReader
	bus    ports.EventBus
	repo   ports.LibraryRepository // nil disables the cache

	// State
	supportedExts []string
	scanning      bool
	cancelScan    context.CancelFunc
	root          string
	songs         []domain.Song

	// Concurrency control
	mu sync.RWMutex
}

// NewLibraryService creates a new library service. extensions are matched
// case-insensitively and include the dot.
func NewLibraryService(
	logger *slog.Logger,
	tags ports.TagReader,
	bus ports.EventBus,
	repo ports.LibraryRepository,
	extensions []string,
) *LibraryService {
	exts := make([]string, 0, len(extensions))
	for _, e := range extensions {
		exts = append(exts, strings.ToLower(e))
	}
	return &LibraryService{
		logger:        logger,
		tags:          tags,
		bus:           bus,
		repo:          repo,
		supportedExts: exts,
	}
}

// ScanFolder walks root depth-first and reads the tags of every supported
// file. Within a directory, files come before subdirectories and both are
// visited in name order, so the returned order is the traversal order.
//
// The scan blocks; callers run it off the UI goroutine. It stops with
// domain.ErrScanCancelled when ctx is cancelled or CancelScan is called, in
// which case the loaded library is left unchanged.
func (s *LibraryService) ScanFolder(ctx context.Context, root string) ([]domain.Song, error) {
	s.mu.Lock()
	if s.scanning {
		s.mu.Unlock()
		return nil, domain.ErrScanInProgress
	}
	s.scanning = true
	ctx, cancel := context.WithCancel(ctx)
	s.cancelScan = cancel
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		s.scanning = false
		s.cancelScan = nil
		s.mu.Unlock()
	}()

	started := time.Now()
	s.logger.Info("scan started", slog.String("root", root))
	s.bus.Publish(domain.NewScanStartedEvent(root))

	files, err := s.collectAudioFiles(ctx, root)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, s.cancelled(root)
		}
		s.logger.Error("scan failed", slog.String("root", root), slog.Any("error", err))
		return nil, domain.NewServiceError("LibraryService", "ScanFolder", "cannot read folder", err)
	}

	songs := make([]domain.Song, 0, len(files))
	total := len(files)
	for i, path := range files {
		if ctx.Err() != nil {
			return nil, s.cancelled(root)
		}

		songs = append(songs, s.readSong(path))

		s.bus.Publish(domain.NewScanProgressEvent(domain.ScanProgress{
			CurrentFile:  path,
			FilesScanned: i + 1,
			TotalFiles:   total,
		}))
	}

	summary := domain.Summarize(root, songs)
	summary.Elapsed = time.Since(started)

	s.mu.Lock()
	s.root = root
	s.songs = songs
	s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.Save(root, songs); err != nil {
			s.logger.Warn("failed to cache library", slog.Any("error", err))
		}
	}

	s.logger.Info("scan completed",
		slog.String("root", root),
		slog.Int("songs", summary.Songs),
		slog.Duration("elapsed", summary.Elapsed))
	s.bus.Publish(domain.NewScanCompletedEvent(summary))
	s.bus.Publish(domain.NewLibraryLoadedEvent(root, slices.Clone(songs)))

	return slices.Clone(songs), nil
}

func (s *LibraryService) cancelled(root string) error {
	s.logger.Info("scan cancelled", slog.String("root", root))
	s.bus.Publish(domain.NewScanCancelledEvent("cancelled"))
	return domain.ErrScanCancelled
}

// readSong never fails: unreadable files become placeholder songs.
func (s *LibraryService) readSong(path string) domain.Song {
	song, err := s.tags.Read(path)
	if err != nil {
		s.logger.Debug("tag read failed", slog.String("path", path), slog.Any("error", err))
		song = domain.NewSong(path)
		song.ID = path
		song.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		song.Format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	return song
}

// collectAudioFiles lists supported files under root in traversal order.
// Unreadable subdirectories are skipped; an unreadable root is an error.
func (s *LibraryService) collectAudioFiles(ctx context.Context, root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var files []string
	var walk func(dir string, entries []os.DirEntry) error
	walk = func(dir string, entries []os.DirEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		var subdirs []string
		for _, e := range entries {
			path := filepath.Join(dir, e.Name())
			if e.IsDir() {
				subdirs = append(subdirs, path)
				continue
			}
			if s.IsFormatSupported(path) {
				files = append(files, path)
			}
		}

		for _, sub := range subdirs {
			children, err := os.ReadDir(sub)
			if err != nil {
				s.logger.Warn("skipping unreadable folder", slog.String("path", sub), slog.Any("error", err))
				continue
			}
			if err := walk(sub, children); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(root, entries); err != nil {
		return nil, err
	}
	return files, nil
}

// LoadCached restores the library saved by the last scan. It reports false
// when there is no cache or it is empty.
func (s *LibraryService) LoadCached() (bool, error) {
	if s.repo == nil {
		return false, nil
	}

	root, songs, err := s.repo.Load()
	if err != nil {
		return false, err
	}
	if len(songs) == 0 {
		return false, nil
	}

	s.mu.Lock()
	s.root = root
	s.songs = songs
	s.mu.Unlock()

	s.logger.Info("library restored from cache", slog.String("root", root), slog.Int("songs", len(songs)))
	s.bus.Publish(domain.NewLibraryLoadedEvent(root, slices.Clone(songs)))
	return true, nil
}

// CancelScan cancels the running scan.
func (s *LibraryService) CancelScan() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.scanning {
		return domain.ErrNoScanInProgress
	}
	s.cancelScan()
	return nil
}

// IsScanning returns true if a scan is currently in progress.
func (s *LibraryService) IsScanning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scanning
}

// Songs returns a copy of the loaded library in traversal order.
func (s *LibraryService) Songs() []domain.Song {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.songs)
}

// Root returns the folder the library was loaded from.
func (s *LibraryService) Root() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

// IsFormatSupported checks the file extension, ignoring case.
func (s *LibraryService) IsFormatSupported(path string) bool {
	return slices.Contains(s.supportedExts, strings.ToLower(filepath.Ext(path)))
}

// SupportedFormats returns the list of supported file extensions.
func (s *LibraryService) SupportedFormats() []string {
	return slices.Clone(s.supportedExts)
}

// Shutdown cancels any running scan.
func (s *LibraryService) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scanning && s.cancelScan != nil {
		s.cancelScan()
	}
	return nil
}
