package auth

import "context"

type actorKey struct{}

// WithActor stores the signed-in actor on the request context.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// GetActor returns the actor on ctx, Anonymous when none was set.
func GetActor(ctx context.Context) Actor {
	if a, ok := ctx.Value(actorKey{}).(Actor); ok {
		return a
	}
	return Anonymous()
}
