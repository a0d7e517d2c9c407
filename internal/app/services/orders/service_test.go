package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/ethanscookies/storefront/internal/app/domain/catalogue"
	"github.com/ethanscookies/storefront/internal/app/domain/order"
	"github.com/ethanscookies/storefront/internal/app/storage/memory"
)

func newService() (*Service, *memory.Store) {
	store := memory.New()
	store.SeedProducts([]catalogue.Product{
		{Shortname: "snickerdoodle", Name: "Snickerdoodle", Ingredients: "sugar batter,cinnamon", Price: 2},
		{Shortname: "chocolatechip", Name: "Chocolate Chip", Ingredients: "chocolate chip batter,chips", Price: 2},
	})
	return New(store, store, nil), store
}

func TestPlaceAndListRoundTrip(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	rec, err := svc.Place(ctx, order.Submission{
		Phone:    "555-0100",
		Email:    "e@example.com",
		Username: "ethan",
		Cart: order.Cart{
			"Snickerdoodle": {Price: 2, Qty: 3},
		},
	})
	if err != nil {
		t.Fatalf("Place failed: %v", err)
	}
	if rec.ID == "" {
		t.Error("expected generated order id")
	}
	if rec.Total != 6 {
		t.Errorf("expected total 6, got %v", rec.Total)
	}

	summaries, err := svc.ListForUser(ctx, "ethan")
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	if got := summaries[0].Quantities["Snickerdoodle"]; got != 3 {
		t.Errorf("expected quantity 3, got %d", got)
	}
	if summaries[0].Total != 6 {
		t.Errorf("expected total 6, got %v", summaries[0].Total)
	}
}

func TestPlaceReprices(t *testing.T) {
	svc, _ := newService()

	// Client claims the catalogue item is free; the catalogue price wins.
	rec, err := svc.Place(context.Background(), order.Submission{
		Phone: "555-0100",
		Email: "e@example.com",
		Cart: order.Cart{
			"Snickerdoodle": {Price: 0, Qty: 2},
		},
	})
	if err != nil {
		t.Fatalf("Place failed: %v", err)
	}
	if rec.Total != 4 {
		t.Errorf("expected re-priced total 4, got %v", rec.Total)
	}
}

func TestPlaceCustomItemKeepsPrice(t *testing.T) {
	svc, _ := newService()

	rec, err := svc.Place(context.Background(), order.Submission{
		Phone: "555-0100",
		Email: "e@example.com",
		Cart: order.Cart{
			"My Custom Cookie": {Price: 3.5, Qty: 1, Ingredients: "sugar batter with sprinkles"},
		},
	})
	if err != nil {
		t.Fatalf("Place failed: %v", err)
	}
	if rec.Total != 3.5 {
		t.Errorf("expected submitted price kept, got total %v", rec.Total)
	}
	if rec.Ingredients != "[sugar batter with sprinkles]" {
		t.Errorf("unexpected ingredients field: %q", rec.Ingredients)
	}
}

func TestPlaceInvalid(t *testing.T) {
	svc, _ := newService()

	_, err := svc.Place(context.Background(), order.Submission{
		Phone: "",
		Email: "e@example.com",
		Cart:  order.Cart{"Snickerdoodle": {Price: 2, Qty: 1}},
	})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestListForUserEmptyUsername(t *testing.T) {
	svc, _ := newService()

	if _, err := svc.ListForUser(context.Background(), "  "); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestListForUserNoOrders(t *testing.T) {
	svc, _ := newService()

	summaries, err := svc.ListForUser(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(summaries) != 0 {
		t.Errorf("expected no summaries, got %v", summaries)
	}
}
