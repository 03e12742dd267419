package services

import (
	"context"
	"errors"
	"testing"

	"duitku/internal/core"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, token, err := env.identity.Register(ctx, "Budi", "budi@example.com", "password123", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == 0 || token == "" {
		t.Fatalf("user = %+v, token = %q", user, token)
	}

	loggedIn, token, err := env.identity.Login(ctx, "budi@example.com", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loggedIn.ID != user.ID || token == "" {
		t.Errorf("login user = %+v", loggedIn)
	}
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		userName string
		email    string
		password string
		want     error
	}{
		{"blank name", "  ", "a@example.com", "password123", core.ErrEmptyName},
		{"blank email", "Budi", "", "password123", core.ErrEmptyEmail},
		{"email without at", "Budi", "not-an-email", "password123", core.ErrEmptyEmail},
		{"short password", "Budi", "a@example.com", "1234567", core.ErrWeakPassword},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := env.identity.Register(ctx, tc.userName, tc.email, tc.password, "")
			if !errors.Is(err, tc.want) {
				t.Errorf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.user(t, "Budi", "budi@example.com", "")
	_, _, err := env.identity.Register(ctx, "Other", "budi@example.com", "password123", "")
	if !errors.Is(err, core.ErrEmailTaken) {
		t.Fatalf("got %v, want ErrEmailTaken", err)
	}
	if !errors.Is(err, core.ErrValidation) {
		t.Errorf("err %v does not match ErrValidation", err)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.user(t, "Budi", "budi@example.com", "")

	_, _, wrongPassword := env.identity.Login(ctx, "budi@example.com", "wrong-password")
	_, _, unknownEmail := env.identity.Login(ctx, "nobody@example.com", "password123")

	if !errors.Is(wrongPassword, core.ErrUnauthenticated) {
		t.Errorf("wrong password: got %v", wrongPassword)
	}
	if !errors.Is(unknownEmail, core.ErrUnauthenticated) {
		t.Errorf("unknown email: got %v", unknownEmail)
	}
	if wrongPassword.Error() != unknownEmail.Error() {
		t.Errorf("errors differ: %q vs %q", wrongPassword, unknownEmail)
	}
}

func TestRegisterWithFamilyIssuesScopedUser(t *testing.T) {
	env := newTestEnv(t)

	u := env.user(t, "Budi", "budi@example.com", "Keluarga")
	if u.FamilyID == nil {
		t.Fatal("no family assigned")
	}

	current, err := env.identity.CurrentUser(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("current user: %v", err)
	}
	if current.FamilyID == nil || *current.FamilyID != *u.FamilyID {
		t.Errorf("current = %+v", current)
	}
}
