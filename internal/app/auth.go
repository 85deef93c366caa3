package app

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"hotel_business/internal/adapters/observability"
	"hotel_business/internal/domain"
)

// AuthService authenticates credentials against the account store and
// manages session lifetimes. Denied access never distinguishes between a
// missing account and a bad password.
type AuthService struct {
	store      domain.Store
	sessions   domain.SessionStore
	bcryptCost int
}

func NewAuthService(store domain.Store, sessions domain.SessionStore, bcryptCost int) *AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{store: store, sessions: sessions, bcryptCost: bcryptCost}
}

func (s *AuthService) HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Authenticate resolves username+password to an account or ErrBadCredentials.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (domain.Account, error) {
	a, err := s.store.AccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			observability.ObserveLogin("unknown_user")
			return domain.Account{}, domain.ErrBadCredentials
		}
		return domain.Account{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		observability.ObserveLogin("bad_password")
		return domain.Account{}, domain.ErrBadCredentials
	}
	observability.ObserveLogin("ok")
	return a, nil
}

// Login authenticates and opens a session, returning the opaque token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, domain.Account, error) {
	a, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", domain.Account{}, err
	}
	token, err := s.sessions.Create(ctx, domain.Session{AccountID: a.ID, Username: a.Username, Role: a.Role})
	if err != nil {
		return "", domain.Account{}, err
	}
	return token, a, nil
}

// StartSession opens a session for an already-verified account (used right
// after registration).
func (s *AuthService) StartSession(ctx context.Context, a domain.Account) (string, error) {
	return s.sessions.Create(ctx, domain.Session{AccountID: a.ID, Username: a.Username, Role: a.Role})
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// Resolve maps a session token back to its session, if still live.
func (s *AuthService) Resolve(ctx context.Context, token string) (domain.Session, error) {
	if token == "" {
		return domain.Session{}, domain.ErrNoSession
	}
	sess, ok, err := s.sessions.Get(ctx, token)
	if err != nil {
		return domain.Session{}, err
	}
	if !ok {
		return domain.Session{}, domain.ErrNoSession
	}
	return sess, nil
}

// Authorize applies the monotonic role gate to a session.
func Authorize(sess domain.Session, required domain.Role) bool {
	return sess.Role.Permits(required)
}
