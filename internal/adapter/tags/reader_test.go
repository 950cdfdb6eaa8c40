package tags

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacvorbis"
	goflac "github.com/go-flac/go-flac"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/generators"
	"github.com/gopxl/beep/v2/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/qtunes/internal/domain"
	"github.com/tejashwikalptaru/qtunes/internal/logger"
)

var jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}

// writeMP3 writes a single MPEG1 Layer3 frame header plus padding.
func writeMP3(t *testing.T, path string) {
	t.Helper()
	frame := make([]byte, 417)
	frame[0], frame[1], frame[2] = 0xff, 0xfb, 0x90
	require.NoError(t, os.WriteFile(path, frame, 0o600))
}

func tagMP3(t *testing.T, path string, edit func(*id3v2.Tag)) {
	t.Helper()
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	edit(tag)
	require.NoError(t, tag.Save())
	require.NoError(t, tag.Close())
}

func writeWAV(t *testing.T, path string, d time.Duration) {
	t.Helper()
	format := beep.Format{SampleRate: 8000, NumChannels: 1, Precision: 2}
	tone, err := generators.SineTone(format.SampleRate, 440)
	require.NoError(t, err)

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, wav.Encode(f, beep.Take(format.SampleRate.N(d), tone), format))
	require.NoError(t, f.Close())
}

// writeFLAC writes a metadata-only FLAC file: 2 seconds at 44.1kHz, 16-bit stereo.
func writeFLAC(t *testing.T, path string, comments map[string]string) {
	t.Helper()
	info := make([]byte, 34)
	info[10], info[11], info[12], info[13] = 0x0A, 0xC4, 0x42, 0xF0
	info[14], info[15], info[16], info[17] = 0x00, 0x01, 0x58, 0x88

	file := &goflac.File{Meta: []*goflac.MetaDataBlock{{Type: goflac.StreamInfo, Data: info}}}
	if comments != nil {
		cmts := flacvorbis.New()
		for k, v := range comments {
			require.NoError(t, cmts.Add(k, v))
		}
		block := cmts.Marshal()
		file.Meta = append(file.Meta, &block)
	}
	require.NoError(t, file.Save(path))
}

func newTestReader() *Reader {
	return NewReader(logger.NewTestLogger())
}

func TestRead_MP3Tags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mp3")
	writeMP3(t, path)
	tagMP3(t, path, func(tag *id3v2.Tag) {
		tag.SetTitle("Blue in Green")
		tag.SetArtist("Miles Davis")
		tag.SetAlbum("Kind of Blue")
		tag.SetGenre("Jazz")
		tag.AddTextFrame("TRCK", id3v2.EncodingUTF8, "3/5")
	})

	song, err := newTestReader().Read(path)
	require.NoError(t, err)

	assert.Equal(t, "Blue in Green", song.Title)
	assert.Equal(t, "Miles Davis", song.Artist)
	assert.Equal(t, "Kind of Blue", song.Album)
	assert.Equal(t, "Jazz", song.Genre)
	assert.Equal(t, "3", song.Track)
	assert.Equal(t, path, song.Path)
	assert.Equal(t, "mp3", song.Format)
	assert.Equal(t, SongID(path), song.ID)
	assert.Equal(t, AlbumID("Miles Davis", "Kind of Blue"), song.AlbumID)
	assert.False(t, song.HasCover)
}

func TestReadID3v2(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mp3")
	writeMP3(t, path)
	tagMP3(t, path, func(tag *id3v2.Tag) {
		tag.SetTitle("So What")
		tag.SetArtist("Miles Davis")
		tag.AddTextFrame("TRCK", id3v2.EncodingUTF8, "1")
	})

	f, err := readID3v2(path)
	require.NoError(t, err)
	assert.Equal(t, "So What", f.title)
	assert.Equal(t, "Miles Davis", f.artist)
	assert.Equal(t, 1, f.track)
	assert.Empty(t, f.album)
}

func TestRead_UntaggedUsesPlaceholders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Take Five.wav")
	writeWAV(t, path, 2*time.Second)

	song, err := newTestReader().Read(path)
	require.NoError(t, err)

	assert.Equal(t, "Take Five", song.Title)
	assert.Equal(t, domain.Placeholder, song.Artist)
	assert.Equal(t, domain.Placeholder, song.Album)
	assert.Equal(t, domain.Placeholder, song.Genre)
	assert.Equal(t, domain.Placeholder, song.Track)
	assert.Equal(t, "0:02", song.Time)
	assert.InDelta(t, 2*time.Second, song.Duration, float64(10*time.Millisecond))
	assert.Equal(t, "wav", song.Format)
}

func TestRead_MissingFile(t *testing.T) {
	_, err := newTestReader().Read(filepath.Join(t.TempDir(), "nope.mp3"))
	assert.ErrorIs(t, err, domain.ErrFileNotFound)
}

func TestRead_FLAC(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.flac")
	writeFLAC(t, path, map[string]string{
		flacvorbis.FIELD_TITLE:       "Naima",
		flacvorbis.FIELD_ARTIST:      "John Coltrane",
		flacvorbis.FIELD_ALBUM:       "Giant Steps",
		flacvorbis.FIELD_GENRE:       "Jazz",
		flacvorbis.FIELD_TRACKNUMBER: "6",
	})

	song, err := newTestReader().Read(path)
	require.NoError(t, err)

	assert.Equal(t, "Naima", song.Title)
	assert.Equal(t, "John Coltrane", song.Artist)
	assert.Equal(t, "Giant Steps", song.Album)
	assert.Equal(t, "6", song.Track)
	assert.Equal(t, 2*time.Second, song.Duration)
	assert.Equal(t, "0:02", song.Time)
}

func TestReadVorbisComments(t *testing.T) {
	dir := t.TempDir()

	tagged := filepath.Join(dir, "tagged.flac")
	writeFLAC(t, tagged, map[string]string{flacvorbis.FIELD_TITLE: "Alabama"})
	f, err := readVorbisComments(tagged)
	require.NoError(t, err)
	assert.Equal(t, "Alabama", f.title)

	bare := filepath.Join(dir, "bare.flac")
	writeFLAC(t, bare, nil)
	_, err = readVorbisComments(bare)
	assert.Error(t, err)
}

func TestDuration(t *testing.T) {
	dir := t.TempDir()

	flacPath := filepath.Join(dir, "a.flac")
	writeFLAC(t, flacPath, nil)
	d, err := Duration(flacPath)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, d)

	wavPath := filepath.Join(dir, "b.wav")
	writeWAV(t, wavPath, time.Second)
	d, err = Duration(wavPath)
	require.NoError(t, err)
	assert.InDelta(t, time.Second, d, float64(10*time.Millisecond))

	_, err = Duration(filepath.Join(dir, "c.aiff"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestCoverArt_Embedded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mp3")
	writeMP3(t, path)
	tagMP3(t, path, func(tag *id3v2.Tag) {
		tag.SetTitle("With Art")
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    "image/jpeg",
			PictureType: id3v2.PTFrontCover,
			Description: "Front",
			Picture:     jpegHeader,
		})
	})

	r := newTestReader()
	data, mime, err := r.CoverArt(path)
	require.NoError(t, err)
	assert.Equal(t, jpegHeader, data)
	assert.Equal(t, "image/jpeg", mime)

	song, err := r.Read(path)
	require.NoError(t, err)
	assert.True(t, song.HasCover)
}

func TestCoverArt_FolderImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "song.wav")
	writeWAV(t, path, 100*time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "folder.png"), []byte("png-bytes"), 0o600))

	r := newTestReader()
	data, mime, err := r.CoverArt(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
	assert.Equal(t, "image/png", mime)

	song, err := r.Read(path)
	require.NoError(t, err)
	assert.True(t, song.HasCover)
}

func TestCoverArt_None(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.wav")
	writeWAV(t, path, 100*time.Millisecond)

	_, _, err := newTestReader().CoverArt(path)
	assert.ErrorIs(t, err, domain.ErrNoCoverArt)
}

func TestParseTrack(t *testing.T) {
	tests := map[string]int{"": 0, "7": 7, "7/12": 7, " 4 ": 4, "x": 0, "-2": 0}
	for in, want := range tests {
		assert.Equal(t, want, parseTrack(in), "input %q", in)
	}
}

func TestIDsAreStable(t *testing.T) {
	assert.Equal(t, SongID("/a/b.mp3"), SongID("/a/b.mp3"))
	assert.NotEqual(t, SongID("/a/b.mp3"), SongID("/a/c.mp3"))
	assert.Equal(t, AlbumID("Artist", "Album"), AlbumID("ARTIST", "album"))
	assert.NotEqual(t, AlbumID("Artist", "Album"), AlbumID("Artist", "Other"))
}

func TestFolderArtPath_Priority(t *testing.T) {
	dir := t.TempDir()
	track := filepath.Join(dir, "track.mp3")
	assert.Empty(t, FolderArtPath(track))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "folder.jpg"), jpegHeader, 0o600))
	assert.Equal(t, filepath.Join(dir, "folder.jpg"), FolderArtPath(track))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "cover.png"), jpegHeader, 0o600))
	assert.Equal(t, filepath.Join(dir, "cover.png"), FolderArtPath(track))

	// Empty files are not artwork.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cover.jpg"), nil, 0o600))
	assert.Equal(t, filepath.Join(dir, "cover.png"), FolderArtPath(track))
}
