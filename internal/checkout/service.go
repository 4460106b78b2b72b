package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/attarhouse/attarhouse-backend/internal/cart"
	"github.com/attarhouse/attarhouse-backend/internal/pricing"
	"github.com/attarhouse/attarhouse-backend/pkg/config"
	"github.com/attarhouse/attarhouse-backend/pkg/db/models"
	"github.com/attarhouse/attarhouse-backend/pkg/enums"
	pkgerrors "github.com/attarhouse/attarhouse-backend/pkg/errors"
	"github.com/attarhouse/attarhouse-backend/pkg/logger"
	"github.com/attarhouse/attarhouse-backend/pkg/metrics"
	"github.com/attarhouse/attarhouse-backend/pkg/outbox"
	"github.com/attarhouse/attarhouse-backend/pkg/types"
)

// EstimatedDeliveryDays is added to the order date for the delivery estimate.
const EstimatedDeliveryDays = 7

type cartProvider interface {
	Snapshot(ctx context.Context, sessionID string) (*cart.Cart, error)
	Clear(ctx context.Context, sessionID string) error
}

type orderPlacer interface {
	Place(ctx context.Context, order *models.Order, session *outbox.SessionRef) (*models.Order, error)
}

type submitLocker interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	SubmitLockKey(sessionID string) string
}

// Input is the delivery form plus the payment selection.
type Input struct {
	Customer      types.Customer
	PaymentMethod enums.PaymentMethod
}

// Result is the outcome of a submission. On persistence failure the built
// snapshot is still returned alongside the error so the caller can show or
// retry it; the cart stays intact in that case.
type Result struct {
	Order             *models.Order
	EstimatedDelivery time.Time
}

// Service drives a checkout submission: validate the form, guard against a
// concurrent submit for the same session, price the cart, persist the order,
// and clear the cart only after the write succeeds.
type Service struct {
	carts   cartProvider
	orders  orderPlacer
	locks   submitLocker
	engine  *pricing.Engine
	cfg     config.CheckoutConfig
	metrics *metrics.CheckoutMetrics
	logg    *logger.Logger
	now     func() time.Time
}

// NewService builds the checkout service.
func NewService(carts cartProvider, orders orderPlacer, locks submitLocker, engine *pricing.Engine, cfg config.CheckoutConfig, checkoutMetrics *metrics.CheckoutMetrics, logg *logger.Logger) (*Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart provider required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order placer required")
	}
	if locks == nil {
		return nil, fmt.Errorf("submit locker required")
	}
	if engine == nil {
		return nil, fmt.Errorf("pricing engine required")
	}
	return &Service{
		carts:   carts,
		orders:  orders,
		locks:   locks,
		engine:  engine,
		cfg:     cfg,
		metrics: checkoutMetrics,
		logg:    logg,
		now:     time.Now,
	}, nil
}

// Submit runs the whole checkout flow for one session.
func (s *Service) Submit(ctx context.Context, sessionID string, input Input) (*Result, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	if err := validateInput(input); err != nil {
		s.metrics.IncRejected("validation")
		return nil, err
	}

	snapshot, err := s.carts.Snapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if snapshot.IsEmpty() {
		s.metrics.IncRejected("empty_cart")
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "cannot check out an empty cart")
	}

	lockKey := s.locks.SubmitLockKey(sessionID)
	acquired, err := s.locks.SetNX(ctx, lockKey, "1", s.cfg.SubmitLockTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquiring submit lock")
	}
	if !acquired {
		s.metrics.IncRejected("in_flight")
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a submission is already in flight for this session")
	}
	defer func() {
		if delErr := s.locks.Del(ctx, lockKey); delErr != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithSessionID(ctx, sessionID), "releasing submit lock failed: "+delErr.Error())
		}
	}()

	order, err := s.buildOrder(snapshot, input)
	if err != nil {
		return nil, err
	}

	started := s.now()
	placed, err := s.placeWithTimeout(ctx, order, sessionID)
	s.metrics.ObserveDuration(string(input.PaymentMethod), s.now().Sub(started))
	if err != nil {
		// cart stays intact; the snapshot is returned for display/retry
		return &Result{Order: order, EstimatedDelivery: estimatedDelivery(order.OrderDate)}, err
	}

	if err := s.carts.Clear(ctx, sessionID); err != nil && s.logg != nil {
		// the order is already durable; a stale cart is the lesser problem
		s.logg.Warn(s.logg.WithSessionID(ctx, sessionID), "clearing cart after checkout failed: "+err.Error())
	}

	s.metrics.IncPlaced(string(input.PaymentMethod))
	if s.logg != nil {
		logCtx := s.logg.WithOrderNumber(s.logg.WithSessionID(ctx, sessionID), placed.OrderNumber)
		s.logg.Info(logCtx, "checkout confirmed")
	}

	return &Result{Order: placed, EstimatedDelivery: estimatedDelivery(placed.OrderDate)}, nil
}

func (s *Service) placeWithTimeout(ctx context.Context, order *models.Order, sessionID string) (*models.Order, error) {
	submitCtx := ctx
	if s.cfg.SubmissionTimeout > 0 {
		var cancel context.CancelFunc
		submitCtx, cancel = context.WithTimeout(ctx, s.cfg.SubmissionTimeout)
		defer cancel()
	}

	placed, err := s.orders.Place(submitCtx, order, &outbox.SessionRef{SessionID: sessionID})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.metrics.IncRejected("timeout")
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order submission timed out")
		}
		if typed := pkgerrors.As(err); typed != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order submission failed")
	}
	return placed, nil
}

func (s *Service) buildOrder(snapshot *cart.Cart, input Input) (*models.Order, error) {
	quoteInput := pricing.QuoteInput{
		Lines:           snapshot.PricingLines(),
		DonationEnabled: snapshot.Donation.Enabled,
		DonationPercent: snapshot.Donation.Percent,
	}
	if snapshot.Coupon.Applied {
		quoteInput.CouponCode = snapshot.Coupon.Code
	}

	quote, err := s.engine.Quote(quoteInput)
	if err != nil {
		return nil, err
	}

	items := make([]models.OrderLineItem, 0, len(snapshot.Lines))
	for _, line := range snapshot.Lines {
		unit := s.engine.DiscountedUnitPrice(line.UnitPrice, line.DiscountPercent)
		items = append(items, models.OrderLineItem{
			ProductID: line.ProductID,
			Title:     line.Title,
			SizeLabel: line.SizeLabel,
			UnitPrice: unit,
			Quantity:  line.Quantity,
			LineTotal: unit.Mul(quantityDecimal(line.Quantity)),
		})
	}

	order := &models.Order{
		OrderNumber:    s.newOrderNumber(),
		OrderDate:      s.now(),
		Status:         enums.OrderStatusPending,
		Customer:       input.Customer,
		PaymentMethod:  input.PaymentMethod,
		Subtotal:       quote.Subtotal,
		Shipping:       quote.Shipping,
		CouponDiscount: quote.CouponDiscount,
		Donation:       quote.Donation,
		Total:          quote.Total,
		Items:          items,
	}
	if snapshot.Coupon.Applied {
		code := snapshot.Coupon.Code
		order.CouponCode = &code
	}
	if input.Customer.Notes != nil {
		if notes := strings.TrimSpace(*input.Customer.Notes); notes != "" {
			order.Notes = &notes
		}
	}
	return order, nil
}

func (s *Service) newOrderNumber() string {
	return s.cfg.OrderNumberPrefix + strings.ToUpper(uuid.NewString())
}

func estimatedDelivery(orderDate time.Time) time.Time {
	return orderDate.AddDate(0, 0, EstimatedDeliveryDays)
}

func validateInput(input Input) error {
	missing := missingContactFields(input.Customer)
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "missing required delivery details").
			WithDetails(map[string]any{"category": "contact", "missing": missing})
	}
	if !input.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "select a payment method").
			WithDetails(map[string]any{"category": "payment"})
	}
	return nil
}

func missingContactFields(customer types.Customer) []string {
	missing := []string{}
	check := func(value, name string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	check(customer.FirstName, "firstName")
	check(customer.LastName, "lastName")
	check(customer.Email, "email")
	check(customer.Address1, "address1")
	check(customer.City, "city")
	check(customer.Phone, "phone")
	return missing
}

func quantityDecimal(quantity int) decimal.Decimal {
	return decimal.NewFromInt(int64(quantity))
}
