package validate

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxTagLen is the longest tag name Nextcloud stores.
const MaxTagLen = 64

// Tag validates a tag name. Names are case-sensitive and kept as given;
// only blank names, null bytes and overlong names are rejected.
func Tag(t string) error {
	if strings.TrimSpace(t) == "" {
		return fmt.Errorf("%w: empty tag", ErrInvalidTag)
	}
	if strings.ContainsRune(t, 0) {
		return fmt.Errorf("%w: null byte in tag", ErrInvalidTag)
	}
	if n := utf8.RuneCountInString(t); n > MaxTagLen {
		return fmt.Errorf("%w: %d characters (max %d)", ErrTagTooLong, n, MaxTagLen)
	}
	return nil
}
