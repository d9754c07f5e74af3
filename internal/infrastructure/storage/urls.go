package storage

import (
	"net/url"
	"strings"
)

// URLMapper converts between object keys and the public retrieval URLs handed
// out to clients. A URL is managed when it lives under the public prefix.
type URLMapper struct {
	prefix string
}

func NewURLMapper(publicURL string) URLMapper {
	return URLMapper{prefix: strings.TrimRight(publicURL, "/")}
}

func (m URLMapper) URLFor(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return m.prefix + "/" + strings.Join(segments, "/")
}

// KeyFor returns the object key behind a managed URL.
func (m URLMapper) KeyFor(rawURL string) (string, bool) {
	if m.prefix == "" || !strings.HasPrefix(rawURL, m.prefix+"/") {
		return "", false
	}

	escaped := strings.TrimPrefix(rawURL, m.prefix+"/")
	if i := strings.IndexAny(escaped, "?#"); i >= 0 {
		escaped = escaped[:i]
	}

	key, err := url.PathUnescape(escaped)
	if err != nil || key == "" {
		return "", false
	}
	return key, true
}

func (m URLMapper) IsManaged(rawURL string) bool {
	_, ok := m.KeyFor(rawURL)
	return ok
}
