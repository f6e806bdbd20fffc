package model

import (
	"context"

	"github.com/google/uuid"
)

// Actor is the authenticated caller of a request.
type Actor struct {
	UserID uuid.UUID
	Email  string
	Role   Role
}

type actorKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}

// ActorID returns the caller's user id, or nil outside an authenticated request.
func ActorID(ctx context.Context) *uuid.UUID {
	a, ok := ActorFromContext(ctx)
	if !ok || a.UserID == uuid.Nil {
		return nil
	}
	id := a.UserID
	return &id
}
