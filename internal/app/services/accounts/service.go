// Package accounts manages signup, credential checks and the session token
// lifecycle.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ethanscookies/storefront/internal/app/domain/user"
	"github.com/ethanscookies/storefront/internal/app/metrics"
	"github.com/ethanscookies/storefront/internal/app/storage"
	"github.com/ethanscookies/storefront/pkg/logger"
)

// SessionTTL is the client-side cookie lifetime handed out on login. Server
// side, a token stays valid until logout; the two are deliberately not
// reconciled, matching the storefront's historical behavior.
const SessionTTL = 3 * time.Hour

// tokenSuffixRange bounds the 4-digit zero-padded suffix of a session token.
const tokenSuffixRange = 10000

// Token space: 1-digit non-zero prefix plus a 4-digit suffix, roughly 90k
// values. Far too small for a real security token; kept to preserve the
// storefront's observable token shape.
var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrUsernameTaken      = errors.New("username taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid session token")
)

// Service manages accounts and session tokens.
type Service struct {
	store storage.UserStore
	log   *logger.Logger
}

// New constructs an accounts service.
func New(store storage.UserStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("accounts")
	}
	return &Service{store: store, log: log}
}

// Signup creates an account with no active session. The uniqueness check and
// insert are one atomic store operation, so concurrent signups with the same
// username cannot both succeed.
func (s *Service) Signup(ctx context.Context, username, email, password string) error {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return fmt.Errorf("%w: username, email and password are required", ErrInvalidArgument)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.store.CreateUser(ctx, user.Account{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("create user: %w", err)
	}

	s.log.WithField("username", username).Info("account created")
	return nil
}

// Login verifies credentials and issues a fresh session token. Which field
// was wrong is never revealed.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", ErrInvalidCredentials
	}

	acct, err := s.store.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			metrics.RecordLogin(false)
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("look up user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)) != nil {
		metrics.RecordLogin(false)
		return "", ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, username)
	if err != nil {
		return "", err
	}

	metrics.RecordLogin(true)
	s.log.WithField("username", username).Info("login")
	return token, nil
}

// issueToken draws tokens until one misses the live set, then stores it. The
// read-then-write window is backstopped by the store's unique session
// constraint; a collision there simply triggers another draw.
func (s *Service) issueToken(ctx context.Context, username string) (string, error) {
	for {
		live, err := s.store.ListActiveSessions(ctx)
		if err != nil {
			return "", fmt.Errorf("list sessions: %w", err)
		}
		taken := make(map[string]struct{}, len(live))
		for _, t := range live {
			taken[t] = struct{}{}
		}

		token := newToken()
		for {
			if _, collides := taken[token]; !collides {
				break
			}
			token = newToken()
		}

		err = s.store.SetSession(ctx, username, token)
		if err == nil {
			return token, nil
		}
		if errors.Is(err, storage.ErrConflict) {
			continue
		}
		return "", fmt.Errorf("store session: %w", err)
	}
}

func newToken() string {
	return fmt.Sprintf("%d%04d", 1+rand.Intn(9), rand.Intn(tokenSuffixRange))
}

// Logout clears the token from whichever account holds it. A token no account
// holds is still a successful logout, preserving the storefront's lenient
// behavior.
func (s *Service) Logout(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return ErrInvalidToken
	}

	cleared, err := s.store.ClearSession(ctx, token)
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	if cleared {
		s.log.Info("logout")
	}
	return nil
}

// Resume resolves a session token to the owning account's username.
func (s *Service) Resume(ctx context.Context, token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", ErrInvalidToken
	}

	acct, err := s.store.GetUserBySession(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrInvalidToken
		}
		return "", fmt.Errorf("resolve session: %w", err)
	}
	return acct.Username, nil
}
