// Package res holds the resources bundled with the qTunes binary.
package res

// AboutTitle is the heading of the About dialog.
const AboutTitle = "qTunes 1.0"

// AboutContent contains the Markdown content for the About dialog.
const AboutContent = `A music library player built with Go and Fyne.

**Features:**
- Scans a folder of MP3, FLAC, WAV and Ogg files
- Filters the library by genre, artist, album and search text
- Builds a playlist from checked songs
- Album coverflow and a bar visualizer
`
