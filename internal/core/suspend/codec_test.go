package suspend

import (
	"errors"
	"net/url"
	"testing"

	"github.com/neilberkman/tabrider/internal/core/models"
)

const testPage = "chrome-extension://abc/suspended.html"

func newTestCodec() *Codec {
	return NewCodec(testPage, PrefixSpecial("chrome://", "chrome-extension://", "about:"))
}

func TestSuspendResumeRoundTrip(t *testing.T) {
	c := newTestCodec()

	urls := []string{
		"https://a.com",
		"https://example.com/path?q=1&r=two#frag",
		"https://example.com/search?q=a+b&x=%2F",
		"http://localhost:8080/uri=weird&uri=again",
		"https://例え.jp/パス?クエリ=値",
		"https://example.com/with space",
	}

	for _, u := range urls {
		t.Run(u, func(t *testing.T) {
			s := c.Suspend(u)
			if !c.IsSuspended(s) {
				t.Fatalf("Suspend(%q) = %q, not recognised as suspended", u, s)
			}
			if got := c.Resume(s); got != u {
				t.Errorf("Resume(Suspend(%q)) = %q", u, got)
			}
			if again := c.Suspend(s); again != s {
				t.Errorf("Suspend is not idempotent: %q -> %q", s, again)
			}
		})
	}
}

func TestSuspendSpecialURLs(t *testing.T) {
	c := newTestCodec()

	for _, u := range []string{"chrome://extensions", "chrome-extension://other/page.html", "about:blank", ""} {
		if got := c.Suspend(u); got != u {
			t.Errorf("Suspend(%q) = %q, want unchanged", u, got)
		}
	}
}

func TestResumeLiveURLUnchanged(t *testing.T) {
	c := newTestCodec()

	for _, u := range []string{"https://a.com", "chrome://newtab", testPage + "x#uri=https://a.com"} {
		if got := c.Resume(u); got != u {
			t.Errorf("Resume(%q) = %q, want unchanged", u, got)
		}
	}
}

func TestResumeLegacyAndTitledPayloads(t *testing.T) {
	c := newTestCodec()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"legacy unencoded", testPage + "#uri=https://a.com/?x=1&y=2", "https://a.com/?x=1&y=2"},
		{"title first", testPage + "#ttl=Hello%20World&uri=https%3A%2F%2Fa.com%2F", "https://a.com/"},
		{"query form", testPage + "?uri=https%3A%2F%2Fb.com", "https://b.com"},
		{"legacy plus kept", testPage + "#ttl=T&uri=https://g.com/search?q=c++", "https://g.com/search?q=c++"},
		{"legacy escape kept", testPage + "#uri=https://x.com/a%2Fb", "https://x.com/a%2Fb"},
		{"legacy opaque scheme", testPage + "#uri=mailto:a+b@c.com", "mailto:a+b@c.com"},
		{"encoded plus", testPage + "#uri=" + url.QueryEscape("https://g.com/?q=c++"), "https://g.com/?q=c++"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Resume(tt.in); got != tt.want {
				t.Errorf("Resume() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	c := newTestCodec()

	inputs := []string{
		testPage,
		testPage + "#ttl=only-title",
		testPage + "#uri=",
		testPage + "#uri=%zz",
		testPage + "#xuri=https://a.com",
		"https://a.com",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			_, err := c.Decode(in)
			if !errors.Is(err, ErrMalformedSuspendedURL) {
				t.Errorf("Decode(%q) error = %v, want ErrMalformedSuspendedURL", in, err)
			}
			if got := c.Resume(in); got != in {
				t.Errorf("Resume(%q) = %q, want input back", in, got)
			}
		})
	}
}

func TestIsSpecial(t *testing.T) {
	c := NewCodec(testPage, nil)

	if c.IsSpecial(models.Tab{URL: "chrome://settings"}) {
		t.Error("nil predicate should treat nothing as special")
	}
	if !c.IsSpecial(models.Tab{URL: c.Suspend("https://a.com")}) {
		t.Error("suspended pages are always special")
	}
}

func TestNewCodecDefaultPage(t *testing.T) {
	c := NewCodec("", nil)
	if c.Page() != DefaultPage {
		t.Errorf("Page() = %q, want %q", c.Page(), DefaultPage)
	}
}
