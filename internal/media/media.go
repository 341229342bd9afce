// Package media classifies lesson and thumbnail URLs.
package media

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

var youtubeIDRegex = regexp.MustCompile(
	`(?:youtube(?:-nocookie)?\.com/(?:watch\?(?:[^#]*&)?v=|embed/|v/|shorts/|live/)|youtu\.be/)([A-Za-z0-9_-]{11})`,
)

var videoExtensions = map[string]bool{
	".mp4":  true,
	".webm": true,
	".ogg":  true,
	".ogv":  true,
	".mov":  true,
	".m3u8": true,
}

// YouTubeID extracts the 11-character video ID from a YouTube URL.
func YouTubeID(rawURL string) (string, bool) {
	m := youtubeIDRegex.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// EmbedURL returns the embeddable player URL for a YouTube link.
func EmbedURL(rawURL string) (string, bool) {
	id, ok := YouTubeID(rawURL)
	if !ok {
		return "", false
	}
	return "https://www.youtube.com/embed/" + id, true
}

// IsVideoURL reports whether a thumbnail or lesson URL points at a video
// rather than an image.
func IsVideoURL(rawURL string) bool {
	if _, ok := YouTubeID(rawURL); ok {
		return true
	}
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	return videoExtensions[strings.ToLower(path.Ext(u.Path))]
}
