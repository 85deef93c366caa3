package app_test

import (
	"context"
	"errors"
	"testing"

	"hotel_business/internal/app"
	"hotel_business/internal/domain"
)

func seedAccount(t *testing.T, store *memStore, auth *app.AuthService, username string, role domain.Role) domain.Account {
	t.Helper()
	hash, err := auth.HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	a := domain.Account{Username: username, Email: username + "@example.com", PasswordHash: hash, Role: role}
	if err := store.CreateAccount(context.Background(), &a); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return a
}

func TestAuthenticate(t *testing.T) {
	store := newMemStore()
	auth := testAuth(store, newMemSessions())
	seedAccount(t, store, auth, "masha", domain.RoleManager)
	ctx := context.Background()

	a, err := auth.Authenticate(ctx, "masha", "correct-horse")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if a.Role != domain.RoleManager {
		t.Fatalf("role: %s", a.Role)
	}

	// bad password and unknown user must be indistinguishable
	_, badPass := auth.Authenticate(ctx, "masha", "wrong")
	_, noUser := auth.Authenticate(ctx, "nobody", "wrong")
	if !errors.Is(badPass, domain.ErrBadCredentials) || !errors.Is(noUser, domain.ErrBadCredentials) {
		t.Fatalf("got %v / %v", badPass, noUser)
	}
}

func TestLoginLogoutRoundTrip(t *testing.T) {
	store := newMemStore()
	sessions := newMemSessions()
	auth := testAuth(store, sessions)
	seedAccount(t, store, auth, "masha", domain.RoleManager)
	ctx := context.Background()

	token, a, err := auth.Login(ctx, "masha", "correct-horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	sess, err := auth.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if sess.AccountID != a.ID || sess.Role != domain.RoleManager {
		t.Fatalf("session: %+v", sess)
	}

	if err := auth.Logout(ctx, token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := auth.Resolve(ctx, token); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected dead session, got %v", err)
	}
}

func TestResolve_EmptyToken(t *testing.T) {
	auth := testAuth(newMemStore(), newMemSessions())
	if _, err := auth.Resolve(context.Background(), ""); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("got %v", err)
	}
}

func TestAuthorize_GateWidensMonotonically(t *testing.T) {
	admin := domain.Session{Role: domain.RoleAdmin}
	client := domain.Session{Role: domain.RoleClient}

	if !app.Authorize(admin, domain.RoleClient) {
		t.Fatal("admin must pass the client gate")
	}
	if app.Authorize(client, domain.RoleAdmin) {
		t.Fatal("client must not pass the admin gate")
	}
}
