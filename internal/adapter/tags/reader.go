// Package tags reads song metadata, durations and cover art from audio files.
package tags

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/dhowden/tag"
	"github.com/go-flac/flacvorbis"
	goflac "github.com/go-flac/go-flac"

	"github.com/tejashwikalptaru/qtunes/internal/domain"
	"github.com/tejashwikalptaru/qtunes/internal/ports"
)

// fields holds the raw tag values before placeholders are applied.
type fields struct {
	title, artist, album, genre string
	track                       int
	picture                     bool
}

// Reader implements ports.TagReader.
type Reader struct {
	logger *slog.Logger
}

// NewReader creates a tag reader.
func NewReader(logger *slog.Logger) *Reader {
	return &Reader{logger: logger}
}

// Read returns the song at path. Tag or duration failures leave placeholders;
// only a missing or unreadable file is an error.
func (r *Reader) Read(path string) (domain.Song, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Song{}, fmt.Errorf("%w: %s", domain.ErrFileNotFound, path)
		}
		return domain.Song{}, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	song := domain.NewSong(path)
	song.ID = SongID(path)
	song.Size = info.Size()
	song.Format = strings.TrimPrefix(ext, ".")

	f, err := r.readFields(path, ext)
	if err != nil {
		r.logger.Debug("no readable tags", slog.String("path", path), slog.Any("error", err))
	}
	apply(&song, f)
	if song.Title == domain.Placeholder {
		song.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	if d, err := Duration(path); err != nil {
		r.logger.Debug("no duration", slog.String("path", path), slog.Any("error", err))
	} else if d > 0 {
		song.Duration = d
		song.Time = domain.FormatDuration(d)
	}

	song.AlbumID = AlbumID(song.Artist, song.Album)
	song.HasCover = f.picture || hasFolderArt(filepath.Dir(path))
	return song, nil
}

func apply(song *domain.Song, f fields) {
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	set(&song.Title, f.title)
	set(&song.Artist, f.artist)
	set(&song.Album, f.album)
	set(&song.Genre, f.genre)
	if f.track > 0 {
		song.Track = strconv.Itoa(f.track)
	}
}

// readFields tries dhowden/tag first, then a format-specific reader.
func (r *Reader) readFields(path, ext string) (fields, error) {
	f, err := readGeneric(path)
	if err == nil {
		return f, nil
	}

	switch ext {
	case ".mp3":
		if f, id3Err := readID3v2(path); id3Err == nil {
			return f, nil
		}
	case ".flac":
		if f, flacErr := readVorbisComments(path); flacErr == nil {
			return f, nil
		}
	}
	return fields{}, err
}

func readGeneric(path string) (fields, error) {
	file, err := os.Open(path)
	if err != nil {
		return fields{}, err
	}
	defer file.Close()

	m, err := tag.ReadFrom(file)
	if err != nil {
		return fields{}, err
	}
	track, _ := m.Track()
	return fields{
		title:   m.Title(),
		artist:  m.Artist(),
		album:   m.Album(),
		genre:   m.Genre(),
		track:   track,
		picture: m.Picture() != nil,
	}, nil
}

func readID3v2(path string) (fields, error) {
	t, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fields{}, err
	}
	defer t.Close()

	if !t.HasFrames() {
		return fields{}, errors.New("id3v2: no frames")
	}
	return fields{
		title:   t.Title(),
		artist:  t.Artist(),
		album:   t.Album(),
		genre:   t.Genre(),
		track:   parseTrack(id3Text(t, "TRCK")),
		picture: len(t.GetFrames(t.CommonID("Attached picture"))) > 0,
	}, nil
}

func id3Text(t *id3v2.Tag, id string) string {
	frames := t.GetFrames(id)
	if len(frames) == 0 {
		return ""
	}
	if tf, ok := frames[0].(id3v2.TextFrame); ok {
		return tf.Text
	}
	return ""
}

func readVorbisComments(path string) (fields, error) {
	file, err := goflac.ParseFile(path)
	if err != nil {
		return fields{}, err
	}

	var f fields
	found := false
	for _, meta := range file.Meta {
		switch meta.Type {
		case goflac.VorbisComment:
			cmts, err := flacvorbis.ParseFromMetaDataBlock(*meta)
			if err != nil {
				return fields{}, err
			}
			get := func(key string) string {
				values, err := cmts.Get(key)
				if err != nil || len(values) == 0 {
					return ""
				}
				return values[0]
			}
			f.title = get(flacvorbis.FIELD_TITLE)
			f.artist = get(flacvorbis.FIELD_ARTIST)
			f.album = get(flacvorbis.FIELD_ALBUM)
			f.genre = get(flacvorbis.FIELD_GENRE)
			f.track = parseTrack(get(flacvorbis.FIELD_TRACKNUMBER))
			found = true
		case goflac.Picture:
			f.picture = true
		}
	}
	if !found {
		return fields{}, errors.New("flac: no vorbis comment block")
	}
	return f, nil
}

// parseTrack reads "7" or "7/12" as 7. Anything else is 0.
func parseTrack(s string) int {
	s, _, _ = strings.Cut(strings.TrimSpace(s), "/")
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

var _ ports.TagReader = (*Reader)(nil)
