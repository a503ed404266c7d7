package suspend

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/neilberkman/tabrider/internal/core/models"
)

// DefaultPage is the suspended page of the extension this tool manages
const DefaultPage = "chrome-extension://klbibkeccnjlkjkiokjodocebajanakg/suspended.html"

// payloadKey is the fragment parameter carrying the original URL. It is always
// written last so that everything after it belongs to the URL.
const payloadKey = "uri="

// ErrMalformedSuspendedURL is returned by Decode when the embedded URL cannot be recovered
var ErrMalformedSuspendedURL = errors.New("malformed suspended url")

// Codec converts tab URLs between their live and suspended forms
type Codec struct {
	page    string
	special models.SpecialFunc
}

// NewCodec creates a codec for the given suspended page address.
// special may be nil, in which case no URL is treated as special.
func NewCodec(page string, special models.SpecialFunc) *Codec {
	if page == "" {
		page = DefaultPage
	}
	if special == nil {
		special = func(models.Tab) bool { return false }
	}
	return &Codec{page: page, special: special}
}

// Page returns the suspended page address
func (c *Codec) Page() string {
	return c.page
}

// IsSuspended reports whether u points at the suspended page
func (c *Codec) IsSuspended(u string) bool {
	if !strings.HasPrefix(u, c.page) {
		return false
	}
	rest := u[len(c.page):]
	return rest == "" || rest[0] == '#' || rest[0] == '?'
}

// IsSpecial reports whether the tab must never be suspended
func (c *Codec) IsSpecial(tab models.Tab) bool {
	return c.IsSuspended(tab.URL) || c.special(tab)
}

// Suspend embeds u in a suspended page URL. Special and already suspended
// URLs are returned unchanged.
func (c *Codec) Suspend(u string) string {
	if u == "" || c.IsSuspended(u) || c.special(models.Tab{URL: u}) {
		return u
	}
	return c.page + "#" + payloadKey + url.QueryEscape(u)
}

// Resume returns the original URL embedded in a suspended URL. Anything that
// is not a well-formed suspended URL is returned unchanged.
func (c *Codec) Resume(u string) string {
	orig, err := c.Decode(u)
	if err != nil {
		return u
	}
	return orig
}

// Decode extracts the original URL, reporting why it could not
func (c *Codec) Decode(u string) (string, error) {
	if !c.IsSuspended(u) {
		return "", fmt.Errorf("%w: not a suspended url: %s", ErrMalformedSuspendedURL, u)
	}

	params := u[len(c.page):]
	if params != "" {
		params = params[1:]
	}

	idx := payloadIndex(params)
	if idx < 0 {
		return "", fmt.Errorf("%w: missing uri parameter: %s", ErrMalformedSuspendedURL, u)
	}

	payload := params[idx+len(payloadKey):]
	if payload == "" {
		return "", fmt.Errorf("%w: empty uri parameter: %s", ErrMalformedSuspendedURL, u)
	}

	// Legacy payloads were stored unencoded. An encoded payload never holds a
	// raw scheme separator, so one means the URL is already in its final form.
	if hasRawScheme(payload) {
		return payload, nil
	}

	orig, err := url.QueryUnescape(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedSuspendedURL, err)
	}
	return orig, nil
}

// hasRawScheme reports whether s starts with an unescaped "scheme:"
func hasRawScheme(s string) bool {
	if strings.Contains(s, "://") {
		return true
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z':
		case i > 0 && (ch >= '0' && ch <= '9' || ch == '+' || ch == '-' || ch == '.'):
		case i > 0 && ch == ':':
			return true
		default:
			return false
		}
	}
	return false
}

// payloadIndex finds "uri=" at the start of a parameter, not inside another value
func payloadIndex(params string) int {
	if strings.HasPrefix(params, payloadKey) {
		return 0
	}
	if i := strings.Index(params, "&"+payloadKey); i >= 0 {
		return i + 1
	}
	return -1
}

// PrefixSpecial builds a predicate that treats URLs starting with any of the
// prefixes as special
func PrefixSpecial(prefixes ...string) models.SpecialFunc {
	cleaned := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		if p = strings.TrimSpace(p); p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return func(tab models.Tab) bool {
		for _, p := range cleaned {
			if strings.HasPrefix(tab.URL, p) {
				return true
			}
		}
		return false
	}
}
