package mutation

import "context"

// Actor is the signed-in operator making a change. Write paths refuse to
// run without one.
type Actor struct {
	ID    string
	Email string
	Name  string
}

type actorKey struct{}

// WithActor attaches the operator to ctx.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom returns the operator attached to ctx.
func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	if !ok || (a.ID == "" && a.Email == "") {
		return Actor{}, false
	}
	return a, true
}
