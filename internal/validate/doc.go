// Package validate checks user input before it reaches the server.
//
// Validation is minimal. Clearly dangerous inputs (null bytes, paths that
// climb out of the files root) are rejected; everything else is left for
// Nextcloud to accept or refuse.
//
// All validation errors wrap one of the sentinel errors in errors.go, so
// callers can use errors.Is:
//
//	if errors.Is(err, validate.ErrInvalidPath) {
//	    // handle invalid path
//	}
package validate
