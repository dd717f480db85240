package cli

import (
	"context"

	"github.com/dmitrijs2005/mediahub/internal/client/models"
	"github.com/dmitrijs2005/mediahub/internal/cryptox"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// SignIn prompts for an email and a password and authenticates. On success
// the background list watch is started for the new session.
func (a *App) SignIn(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer cryptox.Wipe(password)

	sess, err := a.authService.SignIn(ctx, models.SignInForm{Email: email, Password: string(password)})
	if err != nil {
		return err
	}

	a.startWatch(ctx)
	printlnFn("Signed in successfully as", sess.UserID)
	return nil
}

// SignUp prompts for the registration form, creates the account and signs
// in with it.
func (a *App) SignUp(ctx context.Context) error {
	fullName, err := getSimpleText(a.reader, "Enter full name", a.out)
	if err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer cryptox.Wipe(password)

	confirm, err := getPassword("Confirm password", a.out)
	if err != nil {
		return err
	}
	defer cryptox.Wipe(confirm)

	sess, err := a.authService.SignUp(ctx, models.SignUpForm{
		FullName:        fullName,
		Email:           email,
		Password:        string(password),
		ConfirmPassword: string(confirm),
	})
	if err != nil {
		return err
	}

	a.startWatch(ctx)
	printlnFn("Account created, signed in as", sess.UserID)
	return nil
}

// SignOut stops the list watch and ends the session. The session is gone
// from memory even when clearing the persisted copy fails.
func (a *App) SignOut(ctx context.Context) error {
	a.stopWatch()

	a.mu.Lock()
	a.search = ""
	a.mu.Unlock()

	if err := a.authService.SignOut(ctx); err != nil {
		return err
	}
	printlnFn("Signed out")
	return nil
}
