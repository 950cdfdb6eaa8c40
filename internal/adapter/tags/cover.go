package tags

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/dhowden/tag"
	"github.com/go-flac/flacpicture"
	goflac "github.com/go-flac/go-flac"

	"github.com/tejashwikalptaru/qtunes/internal/domain"
)

// folderArtNames are checked, in order, next to a song without embedded art.
var folderArtNames = []string{
	"cover.jpg", "cover.jpeg", "cover.png",
	"folder.jpg", "folder.jpeg", "folder.png",
	"album.jpg", "album.jpeg", "album.png",
	"front.jpg", "front.jpeg", "front.png",
	"artwork.jpg", "artwork.jpeg", "artwork.png",
}

// CoverArt returns the artwork for the song at path: embedded first,
// then a FLAC picture block or ID3 APIC frame, then a folder image.
func (r *Reader) CoverArt(path string) ([]byte, string, error) {
	if data, mime := embeddedArt(path); data != nil {
		return data, mime, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".flac":
		if data, mime := flacPictureArt(path); data != nil {
			return data, mime, nil
		}
	case ".mp3":
		if data, mime := id3PictureArt(path); data != nil {
			return data, mime, nil
		}
	}

	if data, mime := folderArt(filepath.Dir(path)); data != nil {
		return data, mime, nil
	}
	return nil, "", domain.ErrNoCoverArt
}

func embeddedArt(path string) ([]byte, string) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ""
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, ""
	}
	if pic := m.Picture(); pic != nil && len(pic.Data) > 0 {
		return pic.Data, pic.MIMEType
	}
	return nil, ""
}

func flacPictureArt(path string) ([]byte, string) {
	file, err := goflac.ParseFile(path)
	if err != nil {
		return nil, ""
	}
	for _, meta := range file.Meta {
		if meta.Type != goflac.Picture {
			continue
		}
		pic, err := flacpicture.ParseFromMetaDataBlock(*meta)
		if err == nil && len(pic.ImageData) > 0 {
			return pic.ImageData, pic.MIME
		}
	}
	return nil, ""
}

func id3PictureArt(path string) ([]byte, string) {
	t, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, ""
	}
	defer t.Close()

	for _, frame := range t.GetFrames(t.CommonID("Attached picture")) {
		if pic, ok := frame.(id3v2.PictureFrame); ok && len(pic.Picture) > 0 {
			return pic.Picture, pic.MimeType
		}
	}
	return nil, ""
}

// folderArt reads the first matching image in dir.
func folderArt(dir string) ([]byte, string) {
	path := folderArtFile(dir)
	if path == "" {
		return nil, ""
	}
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return nil, ""
	}
	return data, mimeFor(path)
}

func hasFolderArt(dir string) bool {
	return folderArtFile(dir) != ""
}

// FolderArtPath returns the artwork file next to the song at trackPath,
// or "" when the folder has none.
func FolderArtPath(trackPath string) string {
	return folderArtFile(filepath.Dir(trackPath))
}

// folderArtFile tries each name in lower and upper case.
func folderArtFile(dir string) string {
	for _, name := range folderArtNames {
		for _, candidate := range []string{name, strings.ToUpper(name)} {
			path := filepath.Join(dir, candidate)
			if info, err := os.Stat(path); err == nil && info.Size() > 0 {
				return path
			}
		}
	}
	return ""
}

func mimeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "image/png"
	default:
		return "image/jpeg"
	}
}
