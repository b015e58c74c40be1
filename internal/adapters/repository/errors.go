package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound      = errors.New("session not found")
	ErrSessionExists = errors.New("session already exists")
	ErrNoFrame       = errors.New("no frame rendered yet")
	ErrClosed        = errors.New("store closed")
)
