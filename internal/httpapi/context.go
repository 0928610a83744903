package httpapi

import (
	"context"
)

// serverBaseCtx is canceled on shutdown. Background until SetBaseContext is called.
var serverBaseCtx = context.Background()

// SetBaseContext sets the process-level context that in-flight analyses are
// tied to. nil resets it to Background.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// joinContexts derives from a and is also canceled when b is done.
// The returned cancel must be called when the handler returns.
func joinContexts(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(a)
	stop := context.AfterFunc(b, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
