package store

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrConnection = errors.New("store unreachable")
)
