// Package memory provides an in-memory implementation of the storage
// interfaces. It is safe for concurrent use and is primarily intended for
// tests and local development without a database.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ethanscookies/storefront/internal/app/domain/catalogue"
	"github.com/ethanscookies/storefront/internal/app/domain/feedback"
	"github.com/ethanscookies/storefront/internal/app/domain/order"
	"github.com/ethanscookies/storefront/internal/app/domain/user"
	"github.com/ethanscookies/storefront/internal/app/storage"
)

// Store is the in-memory implementation of every storage interface.
type Store struct {
	mu       sync.RWMutex
	products []catalogue.Product
	users    map[string]user.Account
	sessions map[string]string // token -> username
	orders   []order.Record
	feedback []feedback.Entry
}

var _ storage.CatalogueStore = (*Store)(nil)
var _ storage.UserStore = (*Store)(nil)
var _ storage.OrderStore = (*Store)(nil)
var _ storage.FeedbackStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		users:    make(map[string]user.Account),
		sessions: make(map[string]string),
	}
}

// SeedProducts replaces the catalogue contents. Intended for startup seeding
// and tests; the catalogue is otherwise read-only.
func (s *Store) SeedProducts(products []catalogue.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append([]catalogue.Product(nil), products...)
}

// CatalogueStore implementation ----------------------------------------------

func (s *Store) ListProducts(_ context.Context) ([]catalogue.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]catalogue.Product(nil), s.products...), nil
}

func (s *Store) ListProductsByIngredient(_ context.Context, substring string) ([]catalogue.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []catalogue.Product
	for _, p := range s.products {
		if strings.Contains(p.Ingredients, substring) {
			result = append(result, p)
		}
	}
	return result, nil
}

func (s *Store) GetProduct(_ context.Context, shortname string) (catalogue.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.products {
		if p.Shortname == shortname {
			return p, nil
		}
	}
	return catalogue.Product{}, storage.ErrNotFound
}

// UserStore implementation ----------------------------------------------------

func (s *Store) CreateUser(_ context.Context, acct user.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[acct.Username]; exists {
		return storage.ErrConflict
	}
	if acct.CreatedAt.IsZero() {
		acct.CreatedAt = time.Now().UTC()
	}
	s.users[acct.Username] = acct
	return nil
}

func (s *Store) GetUser(_ context.Context, username string) (user.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.users[username]
	if !ok {
		return user.Account{}, storage.ErrNotFound
	}
	return acct, nil
}

func (s *Store) GetUserBySession(_ context.Context, token string) (user.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	username, ok := s.sessions[token]
	if !ok {
		return user.Account{}, storage.ErrNotFound
	}
	return s.users[username], nil
}

func (s *Store) SetSession(_ context.Context, username, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.users[username]
	if !ok {
		return storage.ErrNotFound
	}
	if acct.SessionID != "" {
		delete(s.sessions, acct.SessionID)
	}
	acct.SessionID = token
	s.users[username] = acct
	if token != "" {
		s.sessions[token] = username
	}
	return nil
}

func (s *Store) ClearSession(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	username, ok := s.sessions[token]
	if !ok {
		return false, nil
	}
	delete(s.sessions, token)
	acct := s.users[username]
	acct.SessionID = ""
	s.users[username] = acct
	return true, nil
}

func (s *Store) ListActiveSessions(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tokens := make([]string, 0, len(s.sessions))
	for token := range s.sessions {
		tokens = append(tokens, token)
	}
	return tokens, nil
}

// OrderStore implementation ---------------------------------------------------

func (s *Store) CreateOrder(_ context.Context, rec order.Record) (order.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	s.orders = append(s.orders, rec)
	return rec, nil
}

func (s *Store) ListOrdersForUser(_ context.Context, username string) ([]order.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []order.Record
	for _, rec := range s.orders {
		if rec.Username == username {
			result = append(result, rec)
		}
	}
	return result, nil
}

// FeedbackStore implementation ------------------------------------------------

func (s *Store) CreateFeedback(_ context.Context, entry feedback.Entry) (feedback.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.feedback = append(s.feedback, entry)
	return entry, nil
}
