// Package app wires the storefront's domain services together and manages
// their lifecycle.
package app

import (
	"context"

	"github.com/ethanscookies/storefront/internal/app/services/accounts"
	cataloguesvc "github.com/ethanscookies/storefront/internal/app/services/catalogue"
	feedbacksvc "github.com/ethanscookies/storefront/internal/app/services/feedback"
	"github.com/ethanscookies/storefront/internal/app/services/orders"
	"github.com/ethanscookies/storefront/internal/app/storage"
	"github.com/ethanscookies/storefront/internal/app/storage/memory"
	"github.com/ethanscookies/storefront/internal/app/system"
	"github.com/ethanscookies/storefront/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to a
// shared in-memory implementation.
type Stores struct {
	Catalogue storage.CatalogueStore
	Users     storage.UserStore
	Orders    storage.OrderStore
	Feedback  storage.FeedbackStore
}

// Application ties the storefront services together.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Catalogue *cataloguesvc.Service
	Accounts  *accounts.Service
	Orders    *orders.Service
	Feedback  *feedbacksvc.Service
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Catalogue == nil {
		stores.Catalogue = mem
	}
	if stores.Users == nil {
		stores.Users = mem
	}
	if stores.Orders == nil {
		stores.Orders = mem
	}
	if stores.Feedback == nil {
		stores.Feedback = mem
	}

	manager := system.NewManager()

	catalogueService := cataloguesvc.New(stores.Catalogue, log)
	accountService := accounts.New(stores.Users, log)
	orderService := orders.New(stores.Catalogue, stores.Orders, log)
	feedbackService := feedbacksvc.New(stores.Feedback, log)

	for _, name := range []string{"catalogue", "accounts", "orders", "feedback"} {
		if err := manager.Register(system.NoopService{ServiceName: name}); err != nil {
			return nil, err
		}
	}

	return &Application{
		manager:   manager,
		log:       log,
		Catalogue: catalogueService,
		Accounts:  accountService,
		Orders:    orderService,
		Feedback:  feedbackService,
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
