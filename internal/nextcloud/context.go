package nextcloud

import (
	"net/url"
	"strconv"
	"strings"
)

// filesSegment is the path under the server root where a user's storage lives.
const filesSegment = "/remote.php/dav/files/"

// RemoteContext carries the endpoints and credentials of one Nextcloud
// account. BaseURL always ends in /remote.php/dav/files/<user> and RootURL
// never contains that segment.
type RemoteContext struct {
	BaseURL  string
	RootURL  string
	User     string
	Password string
}

// NewRemoteContext builds a RemoteContext from a configured URL. The URL may
// be either the server root ("https://cloud.example.com") or the user's files
// collection ("https://cloud.example.com/remote.php/dav/files/alice").
// When user is empty it is taken from the files segment of rawURL.
func NewRemoteContext(rawURL, user, password string) (RemoteContext, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return RemoteContext{}, &ConfigurationError{Field: "url", Reason: "is required"}
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return RemoteContext{}, &ConfigurationError{Field: "url", Reason: err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return RemoteContext{}, &ConfigurationError{Field: "url", Reason: "scheme must be http or https"}
	}
	if u.Host == "" {
		return RemoteContext{}, &ConfigurationError{Field: "url", Reason: "host is required"}
	}
	u.RawQuery = ""
	u.Fragment = ""

	trimmed := strings.TrimRight(u.String(), "/")
	root := trimmed
	if i := strings.Index(trimmed+"/", filesSegment); i >= 0 {
		root = trimmed[:i]
		rest := strings.TrimPrefix((trimmed + "/")[i:], filesSegment)
		urlUser, _, _ := strings.Cut(rest, "/")
		if decoded, err := url.PathUnescape(urlUser); err == nil {
			urlUser = decoded
		}
		if user == "" {
			user = urlUser
		} else if urlUser != "" && urlUser != user {
			return RemoteContext{}, &ConfigurationError{
				Field:  "user",
				Reason: strconv.Quote(user) + " does not match the URL's files segment " + strconv.Quote(urlUser),
			}
		}
	}

	if user == "" {
		return RemoteContext{}, &ConfigurationError{Field: "user", Reason: "is required"}
	}
	if password == "" {
		return RemoteContext{}, &ConfigurationError{Field: "password", Reason: "is required"}
	}

	return RemoteContext{
		BaseURL:  root + filesSegment + escapePath(user),
		RootURL:  root,
		User:     user,
		Password: password,
	}, nil
}

// fileURL returns the URL of a path relative to the user's storage root.
func (rc RemoteContext) fileURL(rel string) string {
	rel = strings.Trim(rel, "/")
	if rel == "" {
		return rc.BaseURL + "/"
	}
	return rc.BaseURL + "/" + escapePath(rel)
}

func (rc RemoteContext) systemTagsURL() string {
	return rc.RootURL + "/remote.php/dav/systemtags"
}

func (rc RemoteContext) relationsURL(fileID FileID) string {
	return rc.RootURL + "/remote.php/dav/systemtags-relations/files/" + escapePath(string(fileID))
}

func (rc RemoteContext) relationURL(fileID FileID, tagID int) string {
	return rc.relationsURL(fileID) + "/" + strconv.Itoa(tagID)
}

// escapePath percent-encodes every byte except unreserved characters, '/'
// and ':'.
func escapePath(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) || c == '/' || c == ':' {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

const upperhex = "0123456789ABCDEF"

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '.', c == '_', c == '~':
		return true
	}
	return false
}
