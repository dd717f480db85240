package cli

import (
	"context"

	"github.com/dmitrijs2005/mediahub/internal/client/query"
)

// startWatch keeps the user's list subscribed for the rest of the session,
// so every invalidation refetches it in the background and the prompt shows
// the current item count. A previous watch is stopped first.
func (a *App) startWatch(ctx context.Context) {
	a.stopWatch()

	wctx, cancel := context.WithCancel(ctx)
	sub, err := a.mediaService.Watch(wctx)
	if err != nil {
		cancel()
		a.logger.Warn(ctx, "list watch not started", "error", err)
		return
	}

	a.mu.Lock()
	a.watchCancel = cancel
	a.known = -1
	a.mu.Unlock()

	go a.follow(wctx, sub)
}

// follow runs until the subscription channel closes: on stopWatch, on
// sign-out or when the session expires.
func (a *App) follow(ctx context.Context, sub *query.Subscription) {
	for st := range sub.Updates() {
		if !st.HasData && !st.IsError {
			continue
		}
		items, err := a.mediaService.Items(ctx, st)
		if err != nil {
			a.logger.Debug(ctx, "background list refresh failed", "error", err)
			continue
		}

		a.mu.Lock()
		if ctx.Err() == nil {
			a.known = len(items)
		}
		a.mu.Unlock()
	}
}

func (a *App) stopWatch() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.watchCancel != nil {
		a.watchCancel()
		a.watchCancel = nil
	}
	a.known = -1
}
