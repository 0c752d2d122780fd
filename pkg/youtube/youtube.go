// Package youtube validates and canonicalizes YouTube video links.
package youtube

import (
	"net/url"
	"regexp"
	"strings"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// IsValidVideoID reports whether id looks like a YouTube video ID.
func IsValidVideoID(id string) bool {
	return videoIDPattern.MatchString(strings.TrimSpace(id))
}

// VideoID extracts the video ID from a YouTube URL. It accepts youtu.be
// short links and youtube.com watch, shorts and embed paths. Returns ""
// for anything else, including non-YouTube hosts.
func VideoID(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())

	if strings.Contains(host, "youtu.be") {
		parts := splitPath(u.Path)
		if len(parts) > 0 && IsValidVideoID(parts[0]) {
			return parts[0]
		}
		return ""
	}

	if strings.Contains(host, "youtube.com") || strings.Contains(host, "youtube-nocookie.com") {
		if v := u.Query().Get("v"); IsValidVideoID(v) {
			return v
		}
		parts := splitPath(u.Path)
		for i, p := range parts {
			if (p == "shorts" || p == "embed") && i+1 < len(parts) && IsValidVideoID(parts[i+1]) {
				return parts[i+1]
			}
		}
	}

	return ""
}

// CanonicalWatchURL renders a video ID as a standard watch URL.
func CanonicalWatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + url.QueryEscape(videoID)
}

// SanitizeURLs keeps only valid YouTube links, deduplicates by video ID
// preserving order, caps the result at max and canonicalizes every entry.
func SanitizeURLs(raw []string, max int) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, item := range raw {
		id := VideoID(item)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, CanonicalWatchURL(id))
		if len(out) >= max {
			break
		}
	}
	return out
}

func splitPath(p string) []string {
	var parts []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return parts
}
