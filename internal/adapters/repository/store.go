// Package repository holds practice sessions and their latest rendered frame.
package repository

import (
	"context"

	"github.com/lmduc2309/english-music-app/internal/domain/model"
)

// Store provides read/write access to sessions and rendered frames.
type Store interface {
	// CreateSession registers a new session. Returns ErrSessionExists if the id is taken.
	CreateSession(ctx context.Context, s model.Session) error

	// Session returns a session by id. Returns ErrNotFound if unknown.
	Session(ctx context.Context, id string) (model.Session, error)

	// Publish stores a rendered frame if its Seq is newer than the stored one
	// and fans it out to subscribers. Returns false, nil for stale frames.
	Publish(ctx context.Context, f model.RenderedFrame) (bool, error)

	// Latest returns the newest rendered frame of a session.
	// Returns ErrNoFrame if nothing was rendered yet.
	Latest(ctx context.Context, id string) (model.RenderedFrame, error)

	// Subscribe streams accepted frames of a session. The channel holds at
	// most one pending frame; a newer frame replaces an unread one. The
	// channel is closed by cancel or when the session goes away.
	Subscribe(ctx context.Context, id string) (<-chan model.RenderedFrame, func(), error)

	// Delete removes a session and closes its subscribers.
	Delete(ctx context.Context, id string) error

	// Count returns the number of open sessions.
	Count(ctx context.Context) int
}
