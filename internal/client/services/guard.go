package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/mediahub/internal/client/api"
	"github.com/dmitrijs2005/mediahub/internal/client/client"
	"github.com/dmitrijs2005/mediahub/internal/client/query"
	"github.com/dmitrijs2005/mediahub/internal/client/session"
	"github.com/dmitrijs2005/mediahub/internal/logging"
)

// authGuard applies the 401 policy: a token that has expired locally, or
// one the backend rejects, ends the session. The store is cleared, cached
// data is dropped and the caller gets client.ErrUnauthorized.
type authGuard struct {
	store  *session.Store
	cache  *query.Cache
	logger logging.Logger
	now    func() time.Time
}

func newAuthGuard(store *session.Store, cache *query.Cache, logger logging.Logger) *authGuard {
	return &authGuard{store: store, cache: cache, logger: logger, now: time.Now}
}

// session returns the current session, or an error when there is none or
// its token has expired.
func (g *authGuard) session(ctx context.Context) (session.Session, error) {
	cur := g.store.Current()
	if !cur.Authenticated() {
		return session.Session{}, session.ErrNotAuthenticated
	}
	if session.TokenExpired(cur.Token, g.now()) {
		g.expire(ctx, cur, "token expired")
		return session.Session{}, client.ErrUnauthorized
	}
	return cur, nil
}

// check turns a 401 envelope received under sess into a sign-out.
func (g *authGuard) check(ctx context.Context, sess session.Session, env api.Envelope) error {
	if !env.Unauthorized() {
		return nil
	}
	g.expire(ctx, sess, "token rejected by server")
	return client.ErrUnauthorized
}

// expire signs out, unless the session has already been replaced by a
// newer sign-in.
func (g *authGuard) expire(ctx context.Context, sess session.Session, reason string) {
	if g.store.Current().Token != sess.Token {
		return
	}
	g.logger.Warn(ctx, "session ended", "reason", reason, "user_id", sess.UserID)
	if err := g.store.Clear(ctx); err != nil {
		g.logger.Warn(ctx, "failed to remove persisted session", "error", err)
	}
	g.cache.Reset()
}
