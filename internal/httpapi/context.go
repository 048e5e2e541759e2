package httpapi

import (
	"context"
)

// serverBaseCtx is canceled when the server starts shutting down. Handlers
// join it with the request context.
var serverBaseCtx = context.Background()

// SetBaseContext installs the shutdown context. nil restores Background.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// joinContexts derives a context from req that is also canceled when base is
// done. The returned cancel func detaches the watch on base and must be
// called when the handler returns.
func joinContexts(base, req context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(req)
	stop := context.AfterFunc(base, func() {
		cancel(context.Cause(base))
	})
	return ctx, func() {
		stop()
		cancel(context.Canceled)
	}
}
