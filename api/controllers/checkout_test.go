package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/attarhouse/attarhouse-backend/api/middleware"
	"github.com/attarhouse/attarhouse-backend/internal/cart"
	checkoutsvc "github.com/attarhouse/attarhouse-backend/internal/checkout"
	"github.com/attarhouse/attarhouse-backend/internal/pricing"
	"github.com/attarhouse/attarhouse-backend/pkg/config"
	"github.com/attarhouse/attarhouse-backend/pkg/db/models"
	pkgerrors "github.com/attarhouse/attarhouse-backend/pkg/errors"
	"github.com/attarhouse/attarhouse-backend/pkg/outbox"
	"github.com/attarhouse/attarhouse-backend/pkg/types"
)

type stubCheckoutCarts struct {
	snapshot *cart.Cart
	cleared  bool
}

func (s *stubCheckoutCarts) Snapshot(_ context.Context, _ string) (*cart.Cart, error) {
	return s.snapshot, nil
}

func (s *stubCheckoutCarts) Clear(_ context.Context, _ string) error {
	s.cleared = true
	return nil
}

type stubCheckoutPlacer struct {
	err error
}

func (s *stubCheckoutPlacer) Place(_ context.Context, order *models.Order, _ *outbox.SessionRef) (*models.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	return order, nil
}

type stubCheckoutLocks struct{}

func (stubCheckoutLocks) SetNX(_ context.Context, _ string, _ any, _ time.Duration) (bool, error) {
	return true, nil
}

func (stubCheckoutLocks) Del(_ context.Context, _ ...string) error {
	return nil
}

func (stubCheckoutLocks) SubmitLockKey(sessionID string) string {
	return "ah:submit_lock:" + sessionID
}

func newCheckoutTestService(t *testing.T, placer *stubCheckoutPlacer) *checkoutsvc.Service {
	t.Helper()

	engine, err := pricing.NewEngine(config.PricingConfig{
		FreeShippingThreshold:    decimal.NewFromInt(30000),
		ReducedShippingThreshold: decimal.NewFromInt(6000),
		ReducedShippingFee:       decimal.NewFromInt(600),
		StandardShippingFee:      decimal.NewFromInt(250),
		Coupons:                  "SAVE10:10",
		DonationPercents:         []int{2, 3, 4, 5, 6},
		GiftThreshold:            decimal.NewFromInt(10000),
	})
	if err != nil {
		t.Fatalf("building engine: %v", err)
	}

	carts := &stubCheckoutCarts{snapshot: &cart.Cart{
		Lines: []cart.Line{
			{ProductID: uuid.New(), Title: "Oud Royale", UnitPrice: decimal.NewFromInt(1000), DiscountPercent: decimal.NewFromInt(10), Quantity: 2},
			{ProductID: uuid.New(), Title: "Rose Musk", UnitPrice: decimal.NewFromInt(500), Quantity: 1},
		},
	}}
	svc, err := checkoutsvc.NewService(carts, placer, stubCheckoutLocks{}, engine, config.CheckoutConfig{
		SubmitLockTTL:     30 * time.Second,
		SubmissionTimeout: time.Second,
		OrderNumberPrefix: "ORD-",
	}, nil, nil)
	if err != nil {
		t.Fatalf("building checkout service: %v", err)
	}
	return svc
}

func checkoutBody() string {
	return `{
		"first_name": "Sara",
		"last_name": "Khan",
		"email": "sara@example.com",
		"phone": "03001234567",
		"address1": "1 Mall Rd",
		"city": "Lahore",
		"payment_method": "cash_on_delivery"
	}`
}

func TestCheckoutSubmitSuccess(t *testing.T) {
	t.Parallel()

	svc := newCheckoutTestService(t, &stubCheckoutPlacer{})
	handler := CheckoutSubmit(svc, nil)

	r := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(checkoutBody()))
	r = r.WithContext(middleware.WithSessionID(r.Context(), uuid.NewString()))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201 but got %d: %s", w.Code, w.Body.String())
	}

	var body types.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	order := body.Data.(map[string]any)
	if total := order["total"]; total != "2550.00" {
		t.Fatalf("unexpected total %v", total)
	}
	if num, _ := order["order_number"].(string); !strings.HasPrefix(num, "ORD-") {
		t.Fatalf("unexpected order number %v", order["order_number"])
	}
}

func TestCheckoutSubmitFailureReturnsSnapshot(t *testing.T) {
	t.Parallel()

	svc := newCheckoutTestService(t, &stubCheckoutPlacer{
		err: pkgerrors.New(pkgerrors.CodeInvalidRef, "order references missing products"),
	})
	handler := CheckoutSubmit(svc, nil)

	r := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(checkoutBody()))
	r = r.WithContext(middleware.WithSessionID(r.Context(), uuid.NewString()))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422 but got %d: %s", w.Code, w.Body.String())
	}

	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if body.Error.Code != string(pkgerrors.CodeInvalidRef) {
		t.Fatalf("unexpected code %s", body.Error.Code)
	}

	details, ok := body.Error.Details.(map[string]any)
	if !ok {
		t.Fatalf("expected snapshot details in error payload, got %v", body.Error.Details)
	}
	order, ok := details["order"].(map[string]any)
	if !ok {
		t.Fatalf("expected order snapshot in details, got %v", details)
	}
	if num, _ := order["order_number"].(string); !strings.HasPrefix(num, "ORD-") {
		t.Fatalf("unexpected snapshot order number %v", order["order_number"])
	}
	if total := order["total"]; total != "2550.00" {
		t.Fatalf("unexpected snapshot total %v", total)
	}
}
