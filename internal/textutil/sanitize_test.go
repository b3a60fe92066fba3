package textutil

import "testing"

func TestASCIIFileName(t *testing.T) {
	cases := []struct {
		in       string
		fallback string
		want     string
	}{
		{"holiday.mp4", "video.mp4", "holiday.mp4"},
		{"Café del Mar.mp4", "video.mp4", "Cafe del Mar.mp4"},
		{"a/b:c?.mov", "video.mp4", "a-b-c.mov"},
		{"日本.mp4", "video.mp4", "__.mp4"},
		{"日本", "video.mp4", "video.mp4"},
		{"   ", "video.mp4", "video.mp4"},
	}
	for _, tc := range cases {
		if got := ASCIIFileName(tc.in, tc.fallback); got != tc.want {
			t.Fatalf("ASCIIFileName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestReplaceExt(t *testing.T) {
	if got := ReplaceExt("talk.final.mp4", ".srt"); got != "talk.final.srt" {
		t.Fatalf("ReplaceExt = %q", got)
	}
	if got := ReplaceExt("noext", ".srt"); got != "noext.srt" {
		t.Fatalf("ReplaceExt = %q", got)
	}
}

func TestSanitizeToken(t *testing.T) {
	if got := SanitizeToken("Hello World!"); got != "hello_world" {
		t.Fatalf("SanitizeToken = %q", got)
	}
	if got := SanitizeToken("***"); got != "unknown" {
		t.Fatalf("SanitizeToken = %q", got)
	}
}

func TestTitleCase(t *testing.T) {
	if got := TitleCase(" cinema "); got != "Cinema" {
		t.Fatalf("TitleCase = %q", got)
	}
}
