package tags

import (
	"strings"

	"github.com/google/uuid"
)

var albumNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("qtunes:album"))

// SongID returns a stable id for the file at path.
func SongID(path string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+path)).String()
}

// AlbumID groups songs by artist and album, ignoring case.
func AlbumID(artist, album string) string {
	key := strings.ToLower(artist) + "\x00" + strings.ToLower(album)
	return uuid.NewSHA1(albumNamespace, []byte(key)).String()
}
