package service

import (
	"testing"

	"github.com/driftwear-shop/driftwear/internal/config"
	"github.com/driftwear-shop/driftwear/internal/constants"
	"github.com/driftwear-shop/driftwear/internal/models"
)

func newViewBuilder(t *testing.T, discount config.DiscountConfig) *CartViewBuilder {
	t.Helper()

	carts, _ := newCartService(t, discount)
	return NewCartViewBuilder(carts, config.CartConfig{
		CurrencyCode:   "USD",
		CurrencySymbol: "$",
		Discount:       discount,
	})
}

func TestBuildEmptyCartView(t *testing.T) {
	builder := newViewBuilder(t, config.DiscountConfig{})

	view := builder.Build(nil, []string{"drawer"})
	if !view.Empty {
		t.Fatalf("expected empty view")
	}
	if view.BadgeCount != 0 {
		t.Fatalf("expected badge 0, got %d", view.BadgeCount)
	}
	if view.CheckoutEnabled {
		t.Fatalf("checkout must be disabled on empty cart")
	}
	if view.Subtotal != "$0.00" || view.Total != "$0.00" {
		t.Fatalf("unexpected totals %q / %q", view.Subtotal, view.Total)
	}
	if len(view.Rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(view.Rows))
	}
}

func TestBuildCartViewRowsAndTotals(t *testing.T) {
	builder := newViewBuilder(t, config.DiscountConfig{})

	lines := []models.CartLine{
		{Key: "tee__M", ProductID: "tee", Title: "Tee", Variant: "M", PriceCents: 2499, Quantity: 2},
		{Key: "hat", ProductID: "hat", Title: "Hat", PriceCents: 1800, Quantity: 1},
	}
	view := builder.Build(lines, []string{"page"})

	if view.Empty {
		t.Fatalf("expected non-empty view")
	}
	if view.BadgeCount != 3 {
		t.Fatalf("expected badge 3, got %d", view.BadgeCount)
	}
	if view.Rows[0].LineTotalCents != 4998 {
		t.Fatalf("expected line total 4998, got %d", view.Rows[0].LineTotalCents)
	}
	if view.Rows[0].LineTotal != "$49.98" {
		t.Fatalf("unexpected line total %q", view.Rows[0].LineTotal)
	}
	if view.SubtotalCents != 6798 {
		t.Fatalf("expected subtotal 6798, got %d", view.SubtotalCents)
	}
	if view.Total != "$67.98" {
		t.Fatalf("unexpected total %q", view.Total)
	}
	if !view.CheckoutEnabled {
		t.Fatalf("checkout must be enabled with items")
	}
}

func TestBuildCartViewAppliesDiscount(t *testing.T) {
	builder := newViewBuilder(t, config.DiscountConfig{Enabled: true, Percent: 20, Code: "LAUNCH20"})

	lines := []models.CartLine{
		{Key: "tee", ProductID: "tee", PriceCents: 2500, Quantity: 2},
	}
	view := builder.Build(lines, nil)

	if view.SubtotalCents != 5000 {
		t.Fatalf("expected subtotal 5000, got %d", view.SubtotalCents)
	}
	if view.Discount == nil {
		t.Fatalf("expected discount row")
	}
	if view.Discount.AmountCents != 1000 {
		t.Fatalf("expected discount 1000, got %d", view.Discount.AmountCents)
	}
	if view.TotalCents != 4000 {
		t.Fatalf("expected total 4000 after discount, got %d", view.TotalCents)
	}
	if view.Total != "$40.00" {
		t.Fatalf("unexpected total %q", view.Total)
	}
}

func TestResolveSurfacePrecedence(t *testing.T) {
	cases := []struct {
		surfaces []string
		want     string
	}{
		{[]string{"page", "drawer"}, constants.CartSurfacePage},
		{[]string{"drawer", "page"}, constants.CartSurfacePage},
		{[]string{"drawer"}, constants.CartSurfaceDrawer},
		{[]string{" DRAWER "}, constants.CartSurfaceDrawer},
		{[]string{"sidebar"}, constants.CartSurfaceNone},
		{nil, constants.CartSurfaceNone},
	}
	for _, tc := range cases {
		if got := ResolveSurface(tc.surfaces); got != tc.want {
			t.Fatalf("ResolveSurface(%v) = %q, want %q", tc.surfaces, got, tc.want)
		}
	}
}
