package validate

import "errors"

var (
	ErrInvalidPath = errors.New("invalid path")
	ErrInvalidTag  = errors.New("invalid tag")
	ErrTagTooLong  = errors.New("tag too long")
)
