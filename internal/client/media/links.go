package media

import (
	"regexp"
	"strings"

	"github.com/atinyakov/DigitalHouse/internal/config"
)

var driveFileRe = regexp.MustCompile(`drive\.google\.com/file/d/([a-zA-Z0-9_-]+)`)

// ImageResolver turns stored image references into loadable URLs.
type ImageResolver struct {
	serverBase string
}

// NewImageResolver resolves relative paths against the server root of apiBase.
func NewImageResolver(apiBase string) ImageResolver {
	return ImageResolver{serverBase: strings.TrimRight(config.ServerBase(apiBase), "/")}
}

// Resolve returns "" for an empty reference. Relative paths are joined to
// the server root, Google Drive sharing links become direct view links and
// any other absolute URL is returned unchanged.
func (r ImageResolver) Resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		if direct, ok := DriveDirectURL(ref); ok {
			return direct
		}
		return ref
	}
	if strings.HasPrefix(ref, "/") {
		return r.serverBase + ref
	}
	return r.serverBase + "/" + ref
}

// ResolvePtr is Resolve for optional fields.
func (r ImageResolver) ResolvePtr(ref *string) string {
	if ref == nil {
		return ""
	}
	return r.Resolve(*ref)
}

// DriveDirectURL rewrites a Google Drive file sharing link to its direct
// view form.
func DriveDirectURL(link string) (string, bool) {
	m := driveFileRe.FindStringSubmatch(link)
	if m == nil {
		return "", false
	}
	return "https://drive.google.com/uc?export=view&id=" + m[1], true
}

var (
	youtuShortRe = regexp.MustCompile(`youtu\.be/([a-zA-Z0-9_-]{11})`)
	youtuWatchRe = regexp.MustCompile(`[?&]v=([a-zA-Z0-9_-]{11})`)
	youtuEmbedRe = regexp.MustCompile(`youtube\.com/embed/([a-zA-Z0-9_-]{11})`)
)

// IsYouTubeURL reports whether link looks like a YouTube share, watch or embed link.
func IsYouTubeURL(link string) bool {
	l := strings.ToLower(strings.TrimSpace(link))
	return strings.Contains(l, "youtu.be/") ||
		strings.Contains(l, "youtube.com/watch") ||
		strings.Contains(l, "youtube.com/embed")
}

// YouTubeVideoID extracts the 11 character video id, or "".
func YouTubeVideoID(link string) string {
	link = strings.TrimSpace(link)
	for _, re := range []*regexp.Regexp{youtuShortRe, youtuWatchRe, youtuEmbedRe} {
		if m := re.FindStringSubmatch(link); m != nil {
			return m[1]
		}
	}
	return ""
}

// YouTubeEmbedURL returns the embeddable player URL for link, or "".
func YouTubeEmbedURL(link string) string {
	id := YouTubeVideoID(link)
	if id == "" {
		return ""
	}
	return "https://www.youtube.com/embed/" + id
}
