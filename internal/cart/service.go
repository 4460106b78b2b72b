package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/attarhouse/attarhouse-backend/internal/pricing"
	"github.com/attarhouse/attarhouse-backend/pkg/db/models"
	pkgerrors "github.com/attarhouse/attarhouse-backend/pkg/errors"
	"github.com/attarhouse/attarhouse-backend/pkg/logger"
)

type cartStore interface {
	Load(ctx context.Context, sessionID string) (*Cart, error)
	Save(ctx context.Context, sessionID string, cart *Cart) error
	Clear(ctx context.Context, sessionID string) error
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service owns every cart mutation for a session and prices the result
// through the shared engine.
type Service struct {
	store    cartStore
	products productLoader
	engine   *pricing.Engine
	logg     *logger.Logger
}

// NewService builds the cart service.
func NewService(store cartStore, products productLoader, engine *pricing.Engine, logg *logger.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if engine == nil {
		return nil, fmt.Errorf("pricing engine required")
	}
	return &Service{store: store, products: products, engine: engine, logg: logg}, nil
}

// AddItem puts a product into the cart, incrementing the existing line when
// the product is already present. Quantity defaults to 1.
func (s *Service) AddItem(ctx context.Context, sessionID string, productID uuid.UUID, quantity int, sizeLabel *string) (*QuoteResult, error) {
	if quantity <= 0 {
		quantity = 1
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	unitPrice := product.Price
	var lineSize *string
	if sizeLabel != nil && strings.TrimSpace(*sizeLabel) != "" {
		size, ok := product.Sizes.ByLabel(strings.TrimSpace(*sizeLabel))
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("size %q is not offered for this product", *sizeLabel))
		}
		unitPrice = size.Price
		label := size.Label
		lineSize = &label
	}

	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if idx := cart.FindLine(productID); idx >= 0 {
		cart.Lines[idx].Quantity += quantity
	} else {
		cart.Lines = append(cart.Lines, Line{
			ProductID:       product.ID,
			Title:           product.Title,
			UnitPrice:       unitPrice,
			DiscountPercent: product.DiscountPercent,
			Quantity:        quantity,
			SizeLabel:       lineSize,
		})
	}

	if err := s.store.Save(ctx, sessionID, cart); err != nil {
		return nil, err
	}
	return s.quote(cart)
}

// UpdateQuantity adjusts a line by one in the given direction. Decrease floors
// at 1 and an absent product is a no-op.
func (s *Service) UpdateQuantity(ctx context.Context, sessionID string, productID uuid.UUID, direction Direction) (*QuoteResult, error) {
	if !direction.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "direction must be increase or decrease")
	}

	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if idx := cart.FindLine(productID); idx >= 0 {
		switch direction {
		case DirectionIncrease:
			cart.Lines[idx].Quantity++
		case DirectionDecrease:
			if cart.Lines[idx].Quantity > 1 {
				cart.Lines[idx].Quantity--
			}
		}
		if err := s.store.Save(ctx, sessionID, cart); err != nil {
			return nil, err
		}
	}

	return s.quote(cart)
}

// RemoveItem deletes the line for the product if present.
func (s *Service) RemoveItem(ctx context.Context, sessionID string, productID uuid.UUID) (*QuoteResult, error) {
	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if idx := cart.FindLine(productID); idx >= 0 {
		cart.Lines = append(cart.Lines[:idx], cart.Lines[idx+1:]...)
		if err := s.store.Save(ctx, sessionID, cart); err != nil {
			return nil, err
		}
	}

	return s.quote(cart)
}

// Clear drops the whole session cart.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	return s.store.Clear(ctx, sessionID)
}

// ApplyCoupon validates the code against the configured table and records it
// on the session. A second application is rejected as a conflict; the
// discount itself is always recomputed from the current subtotal.
func (s *Service) ApplyCoupon(ctx context.Context, sessionID, code string) (*QuoteResult, error) {
	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if cart.Coupon.Applied {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon already applied")
	}

	normalized := strings.ToUpper(strings.TrimSpace(code))
	if _, ok := s.engine.CouponPercent(normalized); !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid coupon code")
	}

	cart.Coupon = Coupon{Code: normalized, Applied: true}
	if err := s.store.Save(ctx, sessionID, cart); err != nil {
		return nil, err
	}
	return s.quote(cart)
}

// RemoveCoupon resets the coupon selection.
func (s *Service) RemoveCoupon(ctx context.Context, sessionID string) (*QuoteResult, error) {
	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	cart.Coupon = Coupon{}
	if err := s.store.Save(ctx, sessionID, cart); err != nil {
		return nil, err
	}
	return s.quote(cart)
}

// SetDonation records the donation selection after validating the percent.
func (s *Service) SetDonation(ctx context.Context, sessionID string, enabled bool, percent int) (*QuoteResult, error) {
	if _, err := s.engine.DonationAmount(decimal.Zero, enabled, percent); err != nil {
		return nil, err
	}

	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	cart.Donation = Donation{Enabled: enabled, Percent: percent}
	if !enabled {
		cart.Donation.Percent = 0
	}
	if err := s.store.Save(ctx, sessionID, cart); err != nil {
		return nil, err
	}
	return s.quote(cart)
}

// Quote loads and prices the session cart without mutating it.
func (s *Service) Quote(ctx context.Context, sessionID string) (*QuoteResult, error) {
	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.quote(cart)
}

// Snapshot returns the raw cart for the checkout orchestrator.
func (s *Service) Snapshot(ctx context.Context, sessionID string) (*Cart, error) {
	return s.store.Load(ctx, sessionID)
}

func (s *Service) quote(cart *Cart) (*QuoteResult, error) {
	input := pricing.QuoteInput{
		Lines:           cart.PricingLines(),
		DonationEnabled: cart.Donation.Enabled,
		DonationPercent: cart.Donation.Percent,
	}
	if cart.Coupon.Applied {
		input.CouponCode = cart.Coupon.Code
	}

	priced, err := s.engine.Quote(input)
	if err != nil {
		return nil, err
	}

	lines := make([]QuoteLine, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		unit := s.engine.DiscountedUnitPrice(line.UnitPrice, line.DiscountPercent)
		lines = append(lines, QuoteLine{
			ProductID:           line.ProductID,
			Title:               line.Title,
			SizeLabel:           line.SizeLabel,
			UnitPrice:           line.UnitPrice,
			DiscountPercent:     line.DiscountPercent,
			DiscountedUnitPrice: unit,
			Quantity:            line.Quantity,
			LineTotal:           unit.Mul(decimal.NewFromInt(int64(line.Quantity))),
		})
	}

	return &QuoteResult{
		Lines:          lines,
		Coupon:         cart.Coupon,
		Donation:       cart.Donation,
		Subtotal:       priced.Subtotal,
		Shipping:       priced.Shipping,
		CouponDiscount: priced.CouponDiscount,
		DonationAmount: priced.Donation,
		Total:          priced.Total,
		GiftEligible:   priced.GiftEligible,
	}, nil
}
