package engine

import (
	"net/url"
	"strings"
)

// Video platform tables. videoDomains answers "is this any kind of
// video platform"; videoWhitelist answers "can we actually resolve
// metadata and transcripts for it". Both providers filter through
// these same tables; path-qualified entries (linkedin.com/video etc.)
// only ever match against the full URL.
var videoDomains = []string{
	"youtube.com", "youtu.be", "vimeo.com", "dailymotion.com",
	"metacafe.com", "twitch.tv", "bilibili.com", "veoh.com",
	"vevo.com", "facebook.com", "fb.watch", "instagram.com",
	"tiktok.com", "x.com", "twitter.com", "linkedin.com/video",
	"coursera.org/lecture", "udemy.com/course", "edx.org/course",
	"khanacademy.org/video", "netflix.com", "hulu.com",
	"primevideo.com", "disneyplus.com", "player.vimeo.com",
	"video.google.com", "cdn.jwplayer.com", "videos.cdn", "dai.ly",
}

var videoWhitelist = []string{
	"youtube.com", "youtu.be", "vimeo.com", "dailymotion.com",
	"twitch.tv", "bilibili.com", "linkedin.com/video",
	"coursera.org/lecture", "udemy.com/course", "edx.org/course",
	"khanacademy.org/video", "video.google.com",
}

// normalizeScheme prepends https:// when the link has no scheme, so
// host extraction works. The original link string is never rewritten.
func normalizeScheme(link string) string {
	if strings.Contains(link, "://") {
		return link
	}
	return "https://" + link
}

// matchesAny reports whether the link's host or the full link contains
// any of the given domain entries. Case-insensitive.
func matchesAny(link string, domains []string) bool {
	lower := strings.ToLower(normalizeScheme(strings.TrimSpace(link)))
	host := ""
	if u, err := url.Parse(lower); err == nil {
		host = u.Host
	}
	for _, d := range domains {
		if (host != "" && strings.Contains(host, d)) || strings.Contains(lower, d) {
			return true
		}
	}
	return false
}

// IsVideoDomain reports whether the link points at any recognizable
// video platform.
func IsVideoDomain(link string) bool {
	return matchesAny(link, videoDomains)
}

// IsAllowedVideoDomain reports whether the link points at a video
// platform the enricher can process.
func IsAllowedVideoDomain(link string) bool {
	return matchesAny(link, videoWhitelist)
}

// KeepForMode applies the mode filter to one link: text mode excludes
// every video platform, video mode keeps whitelisted platforms only.
func KeepForMode(link string, mode Mode) bool {
	if mode == ModeVideo {
		return IsAllowedVideoDomain(link)
	}
	return !IsVideoDomain(link)
}

// FilterCandidates keeps the candidates that pass the mode filter,
// preserving order. Candidates with an empty link are dropped.
func FilterCandidates(cands []Candidate, mode Mode) []Candidate {
	kept := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if strings.TrimSpace(c.Link) == "" {
			continue
		}
		if KeepForMode(c.Link, mode) {
			kept = append(kept, c)
		}
	}
	return kept
}
