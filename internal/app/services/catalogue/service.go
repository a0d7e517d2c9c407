// Package catalogue serves read-only lookups over the product catalogue.
package catalogue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethanscookies/storefront/internal/app/domain/catalogue"
	"github.com/ethanscookies/storefront/internal/app/storage"
	"github.com/ethanscookies/storefront/pkg/logger"
)

// ErrInvalidArgument marks a request rejected for a missing or malformed
// input field.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrNotFound is returned when a shortname matches no catalogue item.
var ErrNotFound = errors.New("item not found")

// Service reads the product catalogue.
type Service struct {
	store storage.CatalogueStore
	log   *logger.Logger
}

// New constructs a catalogue service.
func New(store storage.CatalogueStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("catalogue")
	}
	return &Service{store: store, log: log}
}

// List returns every product keyed by display name.
func (s *Service) List(ctx context.Context) (catalogue.Mapping, error) {
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalogue: %w", err)
	}
	return catalogue.AsMapping(products), nil
}

// ListByBatter returns products whose ingredient text contains
// "<batter> batter". No matches yields an empty mapping, not an error.
func (s *Service) ListByBatter(ctx context.Context, batter string) (catalogue.Mapping, error) {
	batter = strings.TrimSpace(batter)
	if batter == "" {
		return nil, fmt.Errorf("%w: batter type is required", ErrInvalidArgument)
	}

	products, err := s.store.ListProductsByIngredient(ctx, batter+" batter")
	if err != nil {
		return nil, fmt.Errorf("list catalogue by batter: %w", err)
	}
	return catalogue.AsMapping(products), nil
}

// Get returns a single item by its shortname.
func (s *Service) Get(ctx context.Context, shortname string) (catalogue.Detail, error) {
	shortname = strings.TrimSpace(shortname)
	if shortname == "" {
		return catalogue.Detail{}, fmt.Errorf("%w: item name is required", ErrInvalidArgument)
	}

	product, err := s.store.GetProduct(ctx, shortname)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return catalogue.Detail{}, fmt.Errorf("%w: %s", ErrNotFound, shortname)
		}
		return catalogue.Detail{}, fmt.Errorf("get item: %w", err)
	}
	return product.Detail(), nil
}
