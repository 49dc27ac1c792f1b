package linkdetect

import "testing"

func TestDetect_SchemelessYouTubeLink(t *testing.T) {
	m := Detect("şuna bak youtu.be/dQw4w9WgXcQ :)")
	if m == nil {
		t.Fatal("expected a match")
	}
	if m.Platform != "youtube" {
		t.Errorf("platform = %q, want youtube", m.Platform)
	}
	if m.URL != "https://youtu.be/dQw4w9WgXcQ" {
		t.Errorf("url = %q, want https prefix added", m.URL)
	}
}

func TestDetect_KeepsExistingScheme(t *testing.T) {
	m := Detect("https://vimeo.com/76979871")
	if m == nil {
		t.Fatal("expected a match")
	}
	if m.URL != "https://vimeo.com/76979871" {
		t.Errorf("url = %q, scheme must not be duplicated", m.URL)
	}
}

func TestDetect_FirstTableEntryWins(t *testing.T) {
	// Two platform links in one message: only the earlier table entry is
	// reported regardless of text order.
	m := Detect("instagram.com/reel/Cabc123 ve youtube.com/watch?v=dQw4w9WgXcQ")
	if m == nil {
		t.Fatal("expected a match")
	}
	if m.Platform != "youtube" {
		t.Errorf("platform = %q, want youtube (earlier table entry)", m.Platform)
	}
}

func TestDetect_NoMatch(t *testing.T) {
	for _, text := range []string{"", "merhaba", "https://example.com/video/123"} {
		if m := Detect(text); m != nil {
			t.Errorf("Detect(%q) = %+v, want nil", text, m)
		}
	}
}

func TestDetect_PlatformSamples(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"https://www.youtube.com/shorts/dQw4w9WgXcQ", "youtube"},
		{"instagram.com/p/Cabc123xyz", "instagram"},
		{"https://www.tiktok.com/@user/video/7234567890123456789", "tiktok"},
		{"vt.tiktok.com/ZS8abc123", "tiktok"},
		{"https://x.com/user/status/1234567890", "twitter"},
		{"facebook.com/watch/?v=123456789", "facebook"},
		{"dailymotion.com/video/x8abc12", "dailymotion"},
		{"https://www.reddit.com/r/videos/comments/abc123/title", "reddit"},
	}
	for _, tc := range cases {
		m := Detect(tc.text)
		if m == nil {
			t.Errorf("Detect(%q) = nil, want %s", tc.text, tc.want)
			continue
		}
		if m.Platform != tc.want {
			t.Errorf("Detect(%q) = %s, want %s", tc.text, m.Platform, tc.want)
		}
	}
}

func TestTable_TagsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, p := range Table {
		if seen[p.Tag] {
			t.Errorf("duplicate tag %q", p.Tag)
		}
		seen[p.Tag] = true
	}
}
