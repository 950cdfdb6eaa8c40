package fyne

import (
	"bytes"
	"image"
	_ "image/jpeg" // cover art decoders
	_ "image/png"

	"github.com/tejashwikalptaru/qtunes/internal/domain"
)

// decodeCover decodes embedded or folder artwork, returning nil when the
// data is empty or not an image.
func decodeCover(data []byte) image.Image {
	if len(data) == 0 {
		return nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	return img
}

// AlbumCover loads the artwork of an album's first song for the coverflow.
// It returns nil when the album has none.
func (p *Presenter) AlbumCover(album domain.AlbumEntry) image.Image {
	return decodeCover(p.coverArt(album.CoverPath))
}
