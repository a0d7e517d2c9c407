package storage

import (
	"context"
	"errors"

	"github.com/ethanscookies/storefront/internal/app/domain/catalogue"
	"github.com/ethanscookies/storefront/internal/app/domain/feedback"
	"github.com/ethanscookies/storefront/internal/app/domain/order"
	"github.com/ethanscookies/storefront/internal/app/domain/user"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert collides with an existing unique key.
var ErrConflict = errors.New("already exists")

// CatalogueStore reads the product catalogue.
type CatalogueStore interface {
	ListProducts(ctx context.Context) ([]catalogue.Product, error)
	// ListProductsByIngredient returns products whose ingredient text contains
	// the given substring. The match is a parameterized pattern, never
	// interpolated query text.
	ListProductsByIngredient(ctx context.Context, substring string) ([]catalogue.Product, error)
	GetProduct(ctx context.Context, shortname string) (catalogue.Product, error)
}

// UserStore persists accounts and their session tokens.
type UserStore interface {
	// CreateUser inserts the account if the username is free and returns
	// ErrConflict otherwise. The check and insert are a single atomic step.
	CreateUser(ctx context.Context, acct user.Account) error
	GetUser(ctx context.Context, username string) (user.Account, error)
	GetUserBySession(ctx context.Context, token string) (user.Account, error)
	SetSession(ctx context.Context, username, token string) error
	// ClearSession removes the token from whichever account holds it and
	// reports whether any account did.
	ClearSession(ctx context.Context, token string) (bool, error)
	// ListActiveSessions returns every session token currently assigned.
	ListActiveSessions(ctx context.Context) ([]string, error)
}

// OrderStore persists flattened order rows.
type OrderStore interface {
	CreateOrder(ctx context.Context, rec order.Record) (order.Record, error)
	ListOrdersForUser(ctx context.Context, username string) ([]order.Record, error)
}

// FeedbackStore persists submitted questions.
type FeedbackStore interface {
	CreateFeedback(ctx context.Context, entry feedback.Entry) (feedback.Entry, error)
}
