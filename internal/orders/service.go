package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/attarhouse/attarhouse-backend/pkg/db/models"
	"github.com/attarhouse/attarhouse-backend/pkg/enums"
	pkgerrors "github.com/attarhouse/attarhouse-backend/pkg/errors"
	"github.com/attarhouse/attarhouse-backend/pkg/logger"
	"github.com/attarhouse/attarhouse-backend/pkg/outbox"
	"github.com/attarhouse/attarhouse-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type orderRepository interface {
	CreateTx(tx *gorm.DB, order *models.Order) error
	FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error)
}

type refValidator interface {
	CountExistingTx(tx *gorm.DB, ids []uuid.UUID) (int64, error)
}

type outboxPublisher interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service writes order documents. The whole write is one transaction: the
// order row, its line items, reference validation, and the outbox event
// commit together or not at all.
type Service struct {
	tx       txRunner
	repo     orderRepository
	products refValidator
	outbox   outboxPublisher
	logg     *logger.Logger
}

// NewService builds the order service.
func NewService(tx txRunner, repo orderRepository, products refValidator, publisher outboxPublisher, logg *logger.Logger) (*Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("reference validator required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &Service{tx: tx, repo: repo, products: products, outbox: publisher, logg: logg}, nil
}

// Place persists the order. Every referenced product must exist; a missing
// reference fails the whole write.
func (s *Service) Place(ctx context.Context, order *models.Order, session *outbox.SessionRef) (*models.Order, error) {
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}
	if len(order.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "order has no line items")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ids := uniqueProductIDs(order.Items)
		count, err := s.products.CountExistingTx(tx, ids)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validating product references")
		}
		if count != int64(len(ids)) {
			return pkgerrors.New(pkgerrors.CodeInvalidRef, "order references missing products")
		}

		if err := s.repo.CreateTx(tx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting order")
		}

		// an order is placed once; a second emit for the same aggregate is a no-op
		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Session:       session,
			Data:          buildOrderPlacedPayload(order),
			Version:       1,
		})
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithOrderNumber(ctx, order.OrderNumber)
		s.logg.Info(logCtx, "order persisted")
	}
	return order, nil
}

// GetByOrderNumber returns the persisted order document.
func (s *Service) GetByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	return s.repo.FindByOrderNumber(ctx, orderNumber)
}

func uniqueProductIDs(items []models.OrderLineItem) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

func buildOrderPlacedPayload(order *models.Order) payloads.OrderPlacedEvent {
	items := make([]payloads.OrderPlacedLine, 0, len(order.Items))
	for _, item := range order.Items {
		line := payloads.OrderPlacedLine{
			ProductID: item.ProductID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(2),
			LineTotal: item.LineTotal.StringFixed(2),
		}
		if item.SizeLabel != nil {
			line.SizeLabel = *item.SizeLabel
		}
		items = append(items, line)
	}

	event := payloads.OrderPlacedEvent{
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		OrderDate:      order.OrderDate,
		CustomerName:   order.Customer.FullName(),
		CustomerEmail:  order.Customer.Email,
		PaymentMethod:  order.PaymentMethod,
		Subtotal:       order.Subtotal.StringFixed(2),
		Shipping:       order.Shipping.StringFixed(2),
		CouponDiscount: order.CouponDiscount.StringFixed(2),
		Donation:       order.Donation.StringFixed(2),
		Total:          order.Total.StringFixed(2),
		Items:          items,
	}
	if order.CouponCode != nil {
		event.CouponCode = *order.CouponCode
	}
	return event
}
