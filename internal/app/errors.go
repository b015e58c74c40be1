package service

import (
	"github.com/lmduc2309/english-music-app/internal/adapters/repository"
	"github.com/lmduc2309/english-music-app/internal/domain/types"
)

// Sentinel kinds returned by the service. HTTP handlers map them to status codes.
var (
	ErrNotStarted   = types.ErrNotStarted
	ErrInvalidInput = types.ErrInvalidInput
	ErrBackpressure = types.ErrBackpressure

	ErrSessionNotFound = repository.ErrNotFound
	ErrNoFrame         = repository.ErrNoFrame
)
