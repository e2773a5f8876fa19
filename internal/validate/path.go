package validate

import (
	"fmt"
	"strings"
)

// Path validates a remote path relative to the files root and returns it
// with surrounding whitespace removed. The empty path is the root and is
// valid; callers that need a file check for it themselves.
//
// Rejected:
//   - null bytes
//   - ".." segments, which would address another user's storage
func Path(p string) (string, error) {
	p = strings.TrimSpace(p)
	if strings.ContainsRune(p, 0) {
		return "", fmt.Errorf("%w: null byte in path", ErrInvalidPath)
	}
	for _, seg := range strings.Split(strings.ReplaceAll(p, "\\", "/"), "/") {
		if seg == ".." {
			return "", fmt.Errorf("%w: %q escapes the files root", ErrInvalidPath, p)
		}
	}
	return p, nil
}

// File is Path for operations that need a file: the root is rejected.
func File(p string) (string, error) {
	p, err := Path(p)
	if err != nil {
		return "", err
	}
	if strings.Trim(p, "/") == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	return p, nil
}
