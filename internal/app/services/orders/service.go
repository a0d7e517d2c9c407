// Package orders validates carts, persists orders in their flattened storage
// shape and reconstructs past orders for a user.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethanscookies/storefront/internal/app/domain/catalogue"
	"github.com/ethanscookies/storefront/internal/app/domain/order"
	"github.com/ethanscookies/storefront/internal/app/metrics"
	"github.com/ethanscookies/storefront/internal/app/storage"
	"github.com/ethanscookies/storefront/pkg/logger"
)

// ErrInvalidArgument marks a submission rejected for missing or malformed
// fields.
var ErrInvalidArgument = errors.New("invalid argument")

// Service places orders and lists a user's order history.
type Service struct {
	catalogue storage.CatalogueStore
	store     storage.OrderStore
	log       *logger.Logger
}

// New constructs an order service. The catalogue store is consulted to
// re-price known items at placement time.
func New(catalogueStore storage.CatalogueStore, store storage.OrderStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("orders")
	}
	return &Service{catalogue: catalogueStore, store: store, log: log}
}

// Place validates a submission, re-prices catalogue items, computes the total
// and persists the flattened order.
func (s *Service) Place(ctx context.Context, sub order.Submission) (order.Record, error) {
	if err := sub.Validate(); err != nil {
		return order.Record{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	cart, err := s.reprice(ctx, sub.Cart)
	if err != nil {
		return order.Record{}, err
	}

	items, qtys, ingredients := cart.Flatten()
	rec := order.Record{
		Phone:       strings.TrimSpace(sub.Phone),
		Username:    strings.TrimSpace(sub.Username),
		Email:       strings.TrimSpace(sub.Email),
		Items:       items,
		Qtys:        qtys,
		Ingredients: ingredients,
		Total:       cart.Total(),
	}

	rec, err = s.store.CreateOrder(ctx, rec)
	if err != nil {
		return order.Record{}, fmt.Errorf("create order: %w", err)
	}

	metrics.RecordOrderPlaced(rec.Total)
	s.log.WithField("order_id", rec.ID).
		WithField("total", rec.Total).
		Info("order placed")
	return rec, nil
}

// reprice replaces the client-supplied price of each catalogue item with the
// catalogue price of record. Custom builder items absent from the catalogue
// keep the submitted price.
func (s *Service) reprice(ctx context.Context, cart order.Cart) (order.Cart, error) {
	products, err := s.catalogue.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalogue for pricing: %w", err)
	}
	byName := make(map[string]catalogue.Product, len(products))
	for _, p := range products {
		byName[p.Name] = p
	}

	priced := make(order.Cart, len(cart))
	for name, line := range cart {
		if p, ok := byName[name]; ok {
			line.Price = p.Price
		}
		priced[name] = line
	}
	return priced, nil
}

// ListForUser reconstructs a user's past orders from their flattened rows.
func (s *Service) ListForUser(ctx context.Context, username string) ([]order.Summary, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidArgument)
	}

	records, err := s.store.ListOrdersForUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	summaries := make([]order.Summary, 0, len(records))
	for _, rec := range records {
		summary, err := order.Reconstruct(rec)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
