package sensing

import "context"

// Listener receives events after their sensor has been resolved to an entity.
type Listener interface {
	HandleSensorData(ctx context.Context, ev ResolvedEvent) error
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(ctx context.Context, ev ResolvedEvent) error

// HandleSensorData calls f.
func (f ListenerFunc) HandleSensorData(ctx context.Context, ev ResolvedEvent) error {
	return f(ctx, ev)
}
