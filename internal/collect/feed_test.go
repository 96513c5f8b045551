package collect

import (
	"testing"
	"time"
)

func TestParseEpisodeNumber(t *testing.T) {
	cases := []struct {
		title string
		want  *int
	}{
		{"#370 Jeff Bezos: How He Built Amazon", intPtr(370)},
		{"370: The Founding of Amazon", intPtr(370)},
		{"Episode 42 - Estée Lauder", intPtr(42)},
		{"Ep. 7 Sam Walton", intPtr(7)},
		{"ep 12 Rockefeller", intPtr(12)},
		{"12. Henry Ford", intPtr(12)},
		{"The 1994 Letter to Shareholders", nil},
		{"Jeff Bezos on building Amazon", nil},
		{"", nil},
	}
	for _, tc := range cases {
		got := ParseEpisodeNumber(tc.title)
		switch {
		case tc.want == nil && got != nil:
			t.Errorf("ParseEpisodeNumber(%q) = %d, want nil", tc.title, *got)
		case tc.want != nil && got == nil:
			t.Errorf("ParseEpisodeNumber(%q) = nil, want %d", tc.title, *tc.want)
		case tc.want != nil && got != nil && *got != *tc.want:
			t.Errorf("ParseEpisodeNumber(%q) = %d, want %d", tc.title, *got, *tc.want)
		}
	}
}

func TestStripHTML(t *testing.T) {
	in := "<p>Jeff Bezos &amp; the founding of   Amazon</p>"
	want := "Jeff Bezos & the founding of Amazon"
	if got := stripHTML(in); got != want {
		t.Errorf("stripHTML(%q) = %q, want %q", in, got, want)
	}
}

func TestIsWithinWindow(t *testing.T) {
	cutoff := time.Now().AddDate(0, 0, -30)
	recent := time.Now().AddDate(0, 0, -5).Format("2006-01-02")
	old := time.Now().AddDate(0, 0, -60).Format("2006-01-02")

	if !isWithinWindow(recent, cutoff) {
		t.Error("expected recent date within window")
	}
	if isWithinWindow(old, cutoff) {
		t.Error("expected old date outside window")
	}
	if !isWithinWindow("", cutoff) {
		t.Error("expected missing date to pass")
	}
	if !isWithinWindow(old, time.Time{}) {
		t.Error("expected zero cutoff to accept everything")
	}
}

func intPtr(n int) *int { return &n }
