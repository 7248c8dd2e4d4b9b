package apperr

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrEmptyTarget  = errors.New("empty wiki link target")
	ErrInvalidPath  = errors.New("invalid path")
	ErrNotSupported = errors.New("not supported")
)
