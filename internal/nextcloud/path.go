package nextcloud

import (
	"net/url"
	"strings"

	"github.com/aitormendez/nextcloud-mcp-server/internal/validate"
)

// Resolver maps hrefs and URLs returned by the server back to paths relative
// to the user's storage root.
type Resolver struct {
	prefixes []string
	roots    []string
}

// NewResolver returns a Resolver for rc's storage root.
func NewResolver(rc RemoteContext) Resolver {
	full := strings.TrimRight(rc.BaseURL, "/")

	var r Resolver
	r.add(full)
	if u, err := url.Parse(full); err == nil {
		r.add(u.EscapedPath())
		if u.Path != u.EscapedPath() {
			r.add(u.Path)
		}
	}
	return r
}

func (r *Resolver) add(root string) {
	r.roots = append(r.roots, root)
	r.prefixes = append(r.prefixes, root+"/")
}

// Normalize strips the storage-root prefix, in full-URL or path-only form,
// from p and percent-decodes the remainder. The prefix is removed repeatedly
// so Normalize(Normalize(p)) == Normalize(p). Paths without the prefix are
// returned unchanged. The storage root itself normalizes to "".
func (r Resolver) Normalize(p string) string {
	for {
		rest, ok := r.strip(p)
		if !ok {
			return p
		}
		if decoded, err := url.PathUnescape(rest); err == nil {
			rest = decoded
		}
		p = rest
	}
}

// Resolve is Normalize for caller-supplied paths. The decoded result must not
// climb out of the storage root, so "%2E%2E" in an href is caught as well as
// a literal "..".
func (r Resolver) Resolve(p string) (string, error) {
	n := r.Normalize(p)
	if _, err := validate.Path(n); err != nil {
		return "", err
	}
	return n, nil
}

func (r Resolver) strip(p string) (string, bool) {
	for _, prefix := range r.prefixes {
		if strings.HasPrefix(p, prefix) {
			return p[len(prefix):], true
		}
	}
	for _, root := range r.roots {
		if p == root {
			return "", true
		}
	}
	return p, false
}

// same reports whether two normalized paths name the same resource.
func same(a, b string) bool {
	return strings.Trim(a, "/") == strings.Trim(b, "/")
}
