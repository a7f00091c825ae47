package sync

import (
	"context"
	"strings"
)

// Register creates an account and stores the returned token. Credentials are
// validated before any I/O happens.
func (r *Reconciler) Register(ctx context.Context, email, password string) error {
	email, password, err := normalizeCredentials(email, password)
	if err != nil {
		return err
	}
	session, err := r.remote.Register(ctx, email, password)
	if err != nil {
		return err
	}
	return r.store.SetToken(ctx, session.Token)
}

// Login authenticates and stores the returned token.
func (r *Reconciler) Login(ctx context.Context, email, password string) error {
	email, password, err := normalizeCredentials(email, password)
	if err != nil {
		return err
	}
	session, err := r.remote.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return r.store.SetToken(ctx, session.Token)
}

// Logout drops the stored token. The local task list is kept so the app
// stays usable offline.
func (r *Reconciler) Logout(ctx context.Context) error {
	return r.store.ClearToken(ctx)
}

// LoggedIn reports whether a session token is stored.
func (r *Reconciler) LoggedIn(ctx context.Context) (bool, error) {
	token, err := r.store.Token(ctx)
	if err != nil {
		return false, err
	}
	return token != "", nil
}

func normalizeCredentials(email, password string) (string, string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", "", ErrMissingCredentials
	}
	return email, password, nil
}
