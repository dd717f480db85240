// Package services contains application services for the mediahub client.
// This file defines the authentication service: sign-in, sign-up and
// sign-out on top of the session store and the query cache.
package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/mediahub/internal/client/api"
	"github.com/dmitrijs2005/mediahub/internal/client/client"
	"github.com/dmitrijs2005/mediahub/internal/client/models"
	"github.com/dmitrijs2005/mediahub/internal/client/query"
	"github.com/dmitrijs2005/mediahub/internal/client/session"
	"github.com/dmitrijs2005/mediahub/internal/client/validation"
	"github.com/dmitrijs2005/mediahub/internal/logging"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - SignIn / SignUp: validate the form, call the backend and, on a 200
//     carrying a token and id, store and persist the session.
//   - SignOut: clear the session and drop all cached data.
//   - Current: snapshot of the session.
//
// Validation failures are returned as validation.Errors before any network
// call. Backend refusals are *RequestError.
type AuthService interface {
	SignIn(ctx context.Context, form models.SignInForm) (session.Session, error)
	SignUp(ctx context.Context, form models.SignUpForm) (session.Session, error)
	SignOut(ctx context.Context) error
	Current() session.Session
}

type authService struct {
	client    client.Client
	cache     *query.Cache
	store     *session.Store
	validator *validation.Validator
	logger    logging.Logger
}

func NewAuthService(c client.Client, cache *query.Cache, store *session.Store, v *validation.Validator, logger logging.Logger) AuthService {
	return &authService{
		client:    c,
		cache:     cache,
		store:     store,
		validator: v,
		logger:    logger.With("service", "auth"),
	}
}

func (a *authService) Current() session.Session {
	return a.store.Current()
}

func (a *authService) SignIn(ctx context.Context, form models.SignInForm) (session.Session, error) {
	if err := a.validator.SignIn(form); err != nil {
		return session.Session{}, err
	}
	return a.authenticate(ctx, "sign in", api.MutationSignIn, api.PathSignIn, form)
}

func (a *authService) SignUp(ctx context.Context, form models.SignUpForm) (session.Session, error) {
	if err := a.validator.SignUp(form); err != nil {
		return session.Session{}, err
	}
	return a.authenticate(ctx, "sign up", api.MutationSignUp, api.PathSignUp, form)
}

// authenticate runs the credential mutation. The session is stored inside
// the mutation so that the invalidations it triggers refetch under the new
// identity.
func (a *authService) authenticate(ctx context.Context, op, mutation, path string, form any) (session.Session, error) {
	var next session.Session

	env, err := a.cache.Mutate(ctx, query.Mutation{
		Name: mutation,
		Do: func(ctx context.Context) (api.Envelope, error) {
			env, err := a.client.Do(ctx, api.Build(path, api.MethodPost, "", form))
			if err != nil || env.StatusCode != http.StatusOK {
				return env, err
			}

			var res models.AuthResult
			if err := env.Decode(&res); err != nil {
				return env, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
			}
			next = session.Session{UserID: res.ID, Token: res.Token}
			if !next.Authenticated() {
				return env, fmt.Errorf("%w: %v", ErrMalformedResponse, session.ErrIncomplete)
			}

			prev := a.store.Current()
			if err := a.store.SetAuth(ctx, next); err != nil {
				a.logger.Warn(ctx, "session not persisted", "error", err)
			}
			if prev.UserID != "" && prev.UserID != next.UserID {
				a.cache.Reset()
			}
			return env, nil
		},
	})
	if err != nil {
		return session.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	if env.StatusCode != http.StatusOK {
		return session.Session{}, failure(op, env)
	}

	a.logger.Info(ctx, op+" succeeded", "user_id", next.UserID)
	return next, nil
}

func (a *authService) SignOut(ctx context.Context) error {
	err := a.store.Clear(ctx)
	a.cache.Reset()
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}
