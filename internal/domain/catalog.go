package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// FormatDuration renders d as M:SS. Durations below one second render as 0:00.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// UniqueSorted sorts values case-insensitively, keeping the input order of
// values that compare equal, and drops exact duplicates.
func UniqueSorted(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})

	seen := make(map[string]struct{}, len(out))
	n := 0
	for _, v := range out {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out[n] = v
		n++
	}
	return out[:n]
}

// Filter narrows the song table. Empty fields match every song.
type Filter struct {
	Genre  string
	Artist string
	Album  string

	// Query is matched case-insensitively against title, artist, album and genre
	Query string
}

// IsZero reports whether the filter matches every song.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// Match reports whether the song passes the filter.
func (f Filter) Match(s Song) bool {
	if f.Genre != "" && s.Genre != f.Genre {
		return false
	}
	if f.Artist != "" && s.Artist != f.Artist {
		return false
	}
	if f.Album != "" && s.Album != f.Album {
		return false
	}
	return MatchesQuery(s, f.Query)
}

// MatchesQuery reports whether the query is a case-insensitive substring of
// the song's title, artist, album or genre. An empty query matches.
func MatchesQuery(s Song, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, field := range []string{s.Title, s.Artist, s.Album, s.Genre} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// FilterSongs returns the songs passing f, in input order.
func FilterSongs(songs []Song, f Filter) []Song {
	out := make([]Song, 0, len(songs))
	for i := range songs {
		if f.Match(songs[i]) {
			out = append(out, songs[i])
		}
	}
	return out
}

// PanelValues collects one field from every song as ALL followed by the
// distinct values in case-insensitive order.
func PanelValues(songs []Song, field Column) []string {
	values := make([]string, 0, len(songs))
	for i := range songs {
		values = append(values, songs[i].Field(field))
	}
	return append([]string{PanelAll}, UniqueSorted(values)...)
}

// Albums lists the distinct albums of songs in case-insensitive name order.
// The first song of each album supplies its cover.
func Albums(songs []Song) []AlbumEntry {
	index := make(map[string]int)
	var out []AlbumEntry
	for i := range songs {
		s := songs[i]
		key := s.AlbumID
		if key == "" {
			key = strings.ToLower(s.Artist + "\x00" + s.Album)
		}
		if _, ok := index[key]; ok {
			continue
		}
		index[key] = len(out)
		out = append(out, AlbumEntry{ID: key, Name: s.Album, Artist: s.Artist, CoverPath: s.Path})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// IndexOfPath returns the position of the song with path, or -1.
func IndexOfPath(songs []Song, path string) int {
	for i := range songs {
		if songs[i].Path == path {
			return i
		}
	}
	return -1
}
