package engine

import "testing"

func TestIsVideoDomain(t *testing.T) {
	tests := []struct {
		name string
		link string
		want bool
	}{
		{"youtube watch", "https://www.youtube.com/watch?v=X7TnKrOhJ3E", true},
		{"youtu.be short", "https://youtu.be/X7TnKrOhJ3E", true},
		{"netflix", "https://netflix.com/watch/123", true},
		{"tiktok", "https://www.tiktok.com/@user/video/1", true},
		{"facebook watch", "https://fb.watch/abc/", true},
		{"linkedin video path", "https://www.linkedin.com/video/live/urn:li:123/", true},
		{"linkedin profile is not video", "https://www.linkedin.com/in/somebody/", false},
		{"plain article", "https://kubernetes.io/docs/concepts/", false},
		{"scheme-less video host", "www.youtube.com/watch?v=abc12345678", true},
		{"uppercase host", "HTTPS://WWW.YOUTUBE.COM/watch?v=abc12345678", true},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsVideoDomain(tt.link); got != tt.want {
				t.Errorf("IsVideoDomain(%q) = %v, want %v", tt.link, got, tt.want)
			}
		})
	}
}

func TestIsAllowedVideoDomain(t *testing.T) {
	tests := []struct {
		name string
		link string
		want bool
	}{
		{"youtube allowed", "https://www.youtube.com/watch?v=X7TnKrOhJ3E", true},
		{"vimeo allowed", "https://vimeo.com/76979871", true},
		{"coursera lecture allowed", "https://www.coursera.org/lecture/algorithms/intro-1abc", true},
		{"netflix not allowed", "https://netflix.com/watch/123", false},
		{"tiktok not allowed", "https://www.tiktok.com/@user/video/1", false},
		{"instagram not allowed", "https://www.instagram.com/reel/abc/", false},
		{"plain article not allowed", "https://kubernetes.io/docs/concepts/", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAllowedVideoDomain(tt.link); got != tt.want {
				t.Errorf("IsAllowedVideoDomain(%q) = %v, want %v", tt.link, got, tt.want)
			}
		})
	}
}

func TestKeepForMode(t *testing.T) {
	// Broad-set-but-not-whitelisted platforms are excluded from BOTH modes.
	link := "https://netflix.com/watch/123"
	if KeepForMode(link, ModeText) {
		t.Errorf("text mode should exclude %q", link)
	}
	if KeepForMode(link, ModeVideo) {
		t.Errorf("video mode should exclude %q", link)
	}

	article := "https://go.dev/blog/slices"
	if !KeepForMode(article, ModeText) {
		t.Errorf("text mode should keep %q", article)
	}
	if KeepForMode(article, ModeVideo) {
		t.Errorf("video mode should exclude %q", article)
	}

	video := "https://www.youtube.com/watch?v=abc12345678"
	if KeepForMode(video, ModeText) {
		t.Errorf("text mode should exclude %q", video)
	}
	if !KeepForMode(video, ModeVideo) {
		t.Errorf("video mode should keep %q", video)
	}
}

func TestFilterCandidates(t *testing.T) {
	cands := []Candidate{
		{Title: "article", Link: "https://go.dev/blog/slices", Source: SourceSerper},
		{Title: "no link", Link: "", Source: SourceSerper},
		{Title: "video", Link: "https://youtu.be/abc12345678", Source: SourceSerper},
		{Title: "blocked platform", Link: "https://netflix.com/watch/1", Source: SourceSerper},
	}

	text := FilterCandidates(cands, ModeText)
	if len(text) != 1 || text[0].Title != "article" {
		t.Errorf("text filter = %+v, want only the article", text)
	}

	video := FilterCandidates(cands, ModeVideo)
	if len(video) != 1 || video[0].Title != "video" {
		t.Errorf("video filter = %+v, want only the youtube link", video)
	}
}
