package main

import (
	"context"
	"time"

	"github.com/desertthunder/flix/internal/formatter"
	"github.com/desertthunder/flix/internal/models"
	"github.com/urfave/cli/v3"
)

// authStatus is the --json shape of `auth status`.
type authStatus struct {
	Authenticated bool        `json:"authenticated"`
	User          models.User `json:"user"`
	ExpiresAt     *time.Time  `json:"expires_at,omitempty"`
}

// AuthLogin exchanges credentials for a token and stores the session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	creds := models.Credentials{
		Username: cmd.String("username"),
		Password: cmd.String("password"),
	}

	r.logger.Info("signing in", "username", creds.Username)

	user, err := r.session.Login(ctx, r.api, creds)
	if err != nil {
		return err
	}

	r.writePlain("✓ Signed in as %s\n", user.Username)
	if exp := r.session.ExpiresAt(); exp != nil {
		r.writePlain("Session expires %s\n", exp.Local().Format(time.RFC1123))
	}
	return nil
}

// AuthLogout ends the session. The local session is cleared even when the API call fails.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	if !r.session.IsAuthenticated() {
		return r.writePlain("Not signed in.\n")
	}

	if err := r.session.Logout(ctx, r.api); err != nil {
		return err
	}
	return r.writePlain("✓ Signed out\n")
}

// AuthStatus reports the stored session without calling the API.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	user, ok := r.session.User()
	status := authStatus{Authenticated: ok, User: user}
	if ok {
		status.ExpiresAt = r.session.ExpiresAt()
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, cmd.Bool("pretty"))
	}

	if !ok {
		return r.writePlain("✗ Not signed in\n")
	}

	r.writePlain("✓ Signed in as %s\n", user.Username)
	if user.Email != "" {
		r.writePlain("Email: %s\n", user.Email)
	}
	if status.ExpiresAt != nil {
		r.writePlain("Expires: %s\n", status.ExpiresAt.Local().Format(time.RFC1123))
	}
	return nil
}

// AuthRegister creates an account. It does not sign in.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	msg, err := r.api.Register(ctx, models.Registration{
		Username: cmd.String("username"),
		Email:    cmd.String("email"),
		Password: cmd.String("password"),
	})
	if err != nil {
		return err
	}

	r.writePlain("✓ %s\n", msg)
	return r.writePlain("Sign in with `flix auth login -u %s`\n", cmd.String("username"))
}

// ProfileShow prints the signed-in user's profile.
func (r *Runner) ProfileShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	profile, err := r.api.Profile(ctx)
	if err != nil {
		return r.check(err)
	}
	return r.render(cmd, profile, formatter.ProfileToText(profile))
}

// ProfileUpdate replaces the editable profile fields.
func (r *Runner) ProfileUpdate(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	profile, err := r.api.UpdateProfile(ctx, models.ProfileUpdate{
		Email: cmd.String("email"),
		Phone: cmd.String("phone"),
		DOB:   cmd.String("dob"),
	})
	if err != nil {
		return r.check(err)
	}

	if !cmd.Bool("json") {
		r.writePlain("✓ Profile updated\n")
	}
	return r.render(cmd, profile, formatter.ProfileToText(profile))
}
