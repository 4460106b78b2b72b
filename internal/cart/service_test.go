package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/attarhouse/attarhouse-backend/internal/pricing"
	"github.com/attarhouse/attarhouse-backend/pkg/config"
	"github.com/attarhouse/attarhouse-backend/pkg/db/models"
	pkgerrors "github.com/attarhouse/attarhouse-backend/pkg/errors"
	"github.com/attarhouse/attarhouse-backend/pkg/types"
)

type stubStore struct {
	carts map[string]*Cart
}

func newStubStore() *stubStore {
	return &stubStore{carts: map[string]*Cart{}}
}

func (s *stubStore) Load(_ context.Context, sessionID string) (*Cart, error) {
	if cart, ok := s.carts[sessionID]; ok {
		copied := *cart
		copied.Lines = append([]Line{}, cart.Lines...)
		return &copied, nil
	}
	return &Cart{}, nil
}

func (s *stubStore) Save(_ context.Context, sessionID string, cart *Cart) error {
	s.carts[sessionID] = cart
	return nil
}

func (s *stubStore) Clear(_ context.Context, sessionID string) error {
	delete(s.carts, sessionID)
	return nil
}

type stubProducts struct {
	products map[uuid.UUID]*models.Product
}

func (s *stubProducts) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	if product, ok := s.products[id]; ok {
		return product, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func testEngine(t *testing.T) *pricing.Engine {
	t.Helper()
	engine, err := pricing.NewEngine(config.PricingConfig{
		FreeShippingThreshold:    decimal.NewFromInt(30000),
		ReducedShippingThreshold: decimal.NewFromInt(6000),
		ReducedShippingFee:       decimal.NewFromInt(600),
		StandardShippingFee:      decimal.NewFromInt(250),
		Coupons:                  "SAVE10:10,DIS10:10",
		DonationPercents:         []int{2, 3, 4, 5, 6},
		GiftThreshold:            decimal.NewFromInt(10000),
	})
	if err != nil {
		t.Fatalf("building engine: %v", err)
	}
	return engine
}

func newTestService(t *testing.T, store *stubStore, catalog map[uuid.UUID]*models.Product) *Service {
	t.Helper()
	svc, err := NewService(store, &stubProducts{products: catalog}, testEngine(t), nil)
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc
}

func testProduct(price int64, discount int64) *models.Product {
	return &models.Product{
		ID:              uuid.New(),
		Slug:            "oud-royale",
		Title:           "Oud Royale",
		Price:           decimal.NewFromInt(price),
		DiscountPercent: decimal.NewFromInt(discount),
	}
}

func TestAddItemIncrementsExistingLine(t *testing.T) {
	t.Parallel()

	product := testProduct(1000, 0)
	store := newStubStore()
	svc := newTestService(t, store, map[uuid.UUID]*models.Product{product.ID: product})
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "s1", product.ID, 0, nil); err != nil {
		t.Fatalf("first add: %v", err)
	}
	quote, err := svc.AddItem(ctx, "s1", product.ID, 2, nil)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}

	if len(quote.Lines) != 1 {
		t.Fatalf("expected a single line, got %d", len(quote.Lines))
	}
	if quote.Lines[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", quote.Lines[0].Quantity)
	}
}

func TestAddItemUnknownProduct(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubStore(), map[uuid.UUID]*models.Product{})

	_, err := svc.AddItem(context.Background(), "s1", uuid.New(), 1, nil)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestAddItemSizeOverride(t *testing.T) {
	t.Parallel()

	product := testProduct(1000, 0)
	product.Sizes = types.ProductSizes{{Label: "50ml", Price: decimal.NewFromInt(1800)}}
	store := newStubStore()
	svc := newTestService(t, store, map[uuid.UUID]*models.Product{product.ID: product})

	label := "50ml"
	quote, err := svc.AddItem(context.Background(), "s1", product.ID, 1, &label)
	if err != nil {
		t.Fatalf("add with size: %v", err)
	}
	if !quote.Lines[0].UnitPrice.Equal(decimal.NewFromInt(1800)) {
		t.Fatalf("expected size price 1800, got %s", quote.Lines[0].UnitPrice)
	}

	bad := "500ml"
	if _, err := svc.AddItem(context.Background(), "s1", product.ID, 1, &bad); err == nil {
		t.Fatal("expected error for unknown size")
	}
}

func TestUpdateQuantityFloorsAtOne(t *testing.T) {
	t.Parallel()

	product := testProduct(1000, 0)
	store := newStubStore()
	svc := newTestService(t, store, map[uuid.UUID]*models.Product{product.ID: product})
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "s1", product.ID, 1, nil); err != nil {
		t.Fatalf("add: %v", err)
	}

	quote, err := svc.UpdateQuantity(ctx, "s1", product.ID, DirectionDecrease)
	if err != nil {
		t.Fatalf("decrease: %v", err)
	}
	if quote.Lines[0].Quantity != 1 {
		t.Fatalf("decrease must floor at 1, got %d", quote.Lines[0].Quantity)
	}

	quote, err = svc.UpdateQuantity(ctx, "s1", product.ID, DirectionIncrease)
	if err != nil {
		t.Fatalf("increase: %v", err)
	}
	if quote.Lines[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", quote.Lines[0].Quantity)
	}
}

func TestUpdateQuantityAbsentProductIsNoop(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubStore(), map[uuid.UUID]*models.Product{})

	quote, err := svc.UpdateQuantity(context.Background(), "s1", uuid.New(), DirectionIncrease)
	if err != nil {
		t.Fatalf("update on empty cart: %v", err)
	}
	if len(quote.Lines) != 0 {
		t.Fatalf("no line should appear, got %d", len(quote.Lines))
	}
}

func TestRemoveItem(t *testing.T) {
	t.Parallel()

	product := testProduct(1000, 0)
	store := newStubStore()
	svc := newTestService(t, store, map[uuid.UUID]*models.Product{product.ID: product})
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "s1", product.ID, 1, nil); err != nil {
		t.Fatalf("add: %v", err)
	}
	quote, err := svc.RemoveItem(ctx, "s1", product.ID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(quote.Lines) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(quote.Lines))
	}
}

func TestApplyCouponTwiceConflicts(t *testing.T) {
	t.Parallel()

	product := testProduct(1000, 10)
	store := newStubStore()
	svc := newTestService(t, store, map[uuid.UUID]*models.Product{product.ID: product})
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "s1", product.ID, 2, nil); err != nil {
		t.Fatalf("add: %v", err)
	}

	first, err := svc.ApplyCoupon(ctx, "s1", "save10")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !first.CouponDiscount.Equal(decimal.NewFromInt(180)) {
		t.Fatalf("expected discount 180, got %s", first.CouponDiscount)
	}

	_, err = svc.ApplyCoupon(ctx, "s1", "SAVE10")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict on second apply, got %v", err)
	}

	// discount unchanged after the rejected attempt
	quote, err := svc.Quote(ctx, "s1")
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if !quote.CouponDiscount.Equal(first.CouponDiscount) {
		t.Fatalf("discount changed after rejection: %s vs %s", quote.CouponDiscount, first.CouponDiscount)
	}
}

func TestRemoveAndReapplyCouponReproducesDiscount(t *testing.T) {
	t.Parallel()

	product := testProduct(1000, 10)
	store := newStubStore()
	svc := newTestService(t, store, map[uuid.UUID]*models.Product{product.ID: product})
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "s1", product.ID, 2, nil); err != nil {
		t.Fatalf("add: %v", err)
	}
	first, err := svc.ApplyCoupon(ctx, "s1", "SAVE10")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := svc.RemoveCoupon(ctx, "s1"); err != nil {
		t.Fatalf("remove coupon: %v", err)
	}
	again, err := svc.ApplyCoupon(ctx, "s1", "SAVE10")
	if err != nil {
		t.Fatalf("reapply: %v", err)
	}
	if !again.CouponDiscount.Equal(first.CouponDiscount) {
		t.Fatalf("reapplied discount differs: %s vs %s", again.CouponDiscount, first.CouponDiscount)
	}
}

func TestApplyCouponUnknownCode(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubStore(), map[uuid.UUID]*models.Product{})

	_, err := svc.ApplyCoupon(context.Background(), "s1", "WRONG")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSetDonation(t *testing.T) {
	t.Parallel()

	product := testProduct(10000, 0)
	store := newStubStore()
	svc := newTestService(t, store, map[uuid.UUID]*models.Product{product.ID: product})
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "s1", product.ID, 1, nil); err != nil {
		t.Fatalf("add: %v", err)
	}

	quote, err := svc.SetDonation(ctx, "s1", true, 5)
	if err != nil {
		t.Fatalf("set donation: %v", err)
	}
	if !quote.DonationAmount.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected donation 500, got %s", quote.DonationAmount)
	}

	if _, err := svc.SetDonation(ctx, "s1", true, 9); err == nil {
		t.Fatal("expected error for percent outside the offered set")
	}

	quote, err = svc.SetDonation(ctx, "s1", false, 0)
	if err != nil {
		t.Fatalf("disable donation: %v", err)
	}
	if !quote.DonationAmount.Equal(decimal.Zero) {
		t.Fatalf("disabled donation should contribute 0, got %s", quote.DonationAmount)
	}
}

func TestQuoteEndToEndScenario(t *testing.T) {
	t.Parallel()

	discounted := testProduct(1000, 10)
	plain := testProduct(500, 0)
	plain.Slug = "rose-musk"
	store := newStubStore()
	svc := newTestService(t, store, map[uuid.UUID]*models.Product{
		discounted.ID: discounted,
		plain.ID:      plain,
	})
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "s1", discounted.ID, 2, nil); err != nil {
		t.Fatalf("add discounted: %v", err)
	}
	quote, err := svc.AddItem(ctx, "s1", plain.ID, 1, nil)
	if err != nil {
		t.Fatalf("add plain: %v", err)
	}

	if !quote.Subtotal.Equal(decimal.NewFromInt(2300)) {
		t.Fatalf("expected subtotal 2300, got %s", quote.Subtotal)
	}
	if !quote.Total.Equal(decimal.NewFromInt(2550)) {
		t.Fatalf("expected total 2550, got %s", quote.Total)
	}

	withCoupon, err := svc.ApplyCoupon(ctx, "s1", "SAVE10")
	if err != nil {
		t.Fatalf("apply coupon: %v", err)
	}
	if !withCoupon.Total.Equal(decimal.NewFromInt(2320)) {
		t.Fatalf("expected total 2320, got %s", withCoupon.Total)
	}
}
