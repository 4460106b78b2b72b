package controllers

import (
	"time"

	"github.com/google/uuid"

	cartsvc "github.com/attarhouse/attarhouse-backend/internal/cart"
	"github.com/attarhouse/attarhouse-backend/internal/checkout"
	"github.com/attarhouse/attarhouse-backend/pkg/db/models"
)

// All monetary figures leave the API rounded to two decimal places. The stored
// values stay unrounded.

type cartLineDTO struct {
	ProductID           uuid.UUID `json:"product_id"`
	Title               string    `json:"title"`
	SizeLabel           *string   `json:"size_label,omitempty"`
	UnitPrice           string    `json:"unit_price"`
	DiscountPercent     string    `json:"discount_percent"`
	DiscountedUnitPrice string    `json:"discounted_unit_price"`
	Quantity            int       `json:"quantity"`
	LineTotal           string    `json:"line_total"`
}

type cartQuoteDTO struct {
	Lines          []cartLineDTO `json:"lines"`
	CouponCode     string        `json:"coupon_code,omitempty"`
	CouponApplied  bool          `json:"coupon_applied"`
	Donation       donationDTO   `json:"donation"`
	Subtotal       string        `json:"subtotal"`
	Shipping       string        `json:"shipping"`
	CouponDiscount string        `json:"coupon_discount"`
	DonationAmount string        `json:"donation_amount"`
	Total          string        `json:"total"`
	GiftEligible   bool          `json:"gift_eligible"`
}

type donationDTO struct {
	Enabled bool `json:"enabled"`
	Percent int  `json:"percent,omitempty"`
}

func newCartQuoteDTO(quote *cartsvc.QuoteResult) cartQuoteDTO {
	lines := make([]cartLineDTO, 0, len(quote.Lines))
	for _, line := range quote.Lines {
		lines = append(lines, cartLineDTO{
			ProductID:           line.ProductID,
			Title:               line.Title,
			SizeLabel:           line.SizeLabel,
			UnitPrice:           line.UnitPrice.StringFixed(2),
			DiscountPercent:     line.DiscountPercent.StringFixed(2),
			DiscountedUnitPrice: line.DiscountedUnitPrice.StringFixed(2),
			Quantity:            line.Quantity,
			LineTotal:           line.LineTotal.StringFixed(2),
		})
	}
	return cartQuoteDTO{
		Lines:          lines,
		CouponCode:     quote.Coupon.Code,
		CouponApplied:  quote.Coupon.Applied,
		Donation:       donationDTO{Enabled: quote.Donation.Enabled, Percent: quote.Donation.Percent},
		Subtotal:       quote.Subtotal.StringFixed(2),
		Shipping:       quote.Shipping.StringFixed(2),
		CouponDiscount: quote.CouponDiscount.StringFixed(2),
		DonationAmount: quote.DonationAmount.StringFixed(2),
		Total:          quote.Total.StringFixed(2),
		GiftEligible:   quote.GiftEligible,
	}
}

type orderItemDTO struct {
	ProductID uuid.UUID `json:"product_id"`
	Title     string    `json:"title"`
	SizeLabel *string   `json:"size_label,omitempty"`
	UnitPrice string    `json:"unit_price"`
	Quantity  int       `json:"quantity"`
	LineTotal string    `json:"line_total"`
}

type orderDTO struct {
	OrderNumber       string         `json:"order_number"`
	OrderDate         time.Time      `json:"order_date"`
	Status            string         `json:"status"`
	PaymentMethod     string         `json:"payment_method"`
	CustomerName      string         `json:"customer_name"`
	Subtotal          string         `json:"subtotal"`
	Shipping          string         `json:"shipping"`
	CouponDiscount    string         `json:"coupon_discount"`
	Donation          string         `json:"donation"`
	Total             string         `json:"total"`
	CouponCode        *string        `json:"coupon_code,omitempty"`
	Items             []orderItemDTO `json:"items"`
	EstimatedDelivery *time.Time     `json:"estimated_delivery,omitempty"`
}

func newOrderDTO(order *models.Order, estimatedDelivery *time.Time) orderDTO {
	items := make([]orderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemDTO{
			ProductID: item.ProductID,
			Title:     item.Title,
			SizeLabel: item.SizeLabel,
			UnitPrice: item.UnitPrice.StringFixed(2),
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal.StringFixed(2),
		})
	}
	return orderDTO{
		OrderNumber:       order.OrderNumber,
		OrderDate:         order.OrderDate,
		Status:            string(order.Status),
		PaymentMethod:     string(order.PaymentMethod),
		CustomerName:      order.Customer.FullName(),
		Subtotal:          order.Subtotal.StringFixed(2),
		Shipping:          order.Shipping.StringFixed(2),
		CouponDiscount:    order.CouponDiscount.StringFixed(2),
		Donation:          order.Donation.StringFixed(2),
		Total:             order.Total.StringFixed(2),
		CouponCode:        order.CouponCode,
		Items:             items,
		EstimatedDelivery: estimatedDelivery,
	}
}

func newCheckoutResultDTO(result *checkout.Result) orderDTO {
	delivery := result.EstimatedDelivery
	return newOrderDTO(result.Order, &delivery)
}

type productDTO struct {
	ID              uuid.UUID `json:"id"`
	Slug            string    `json:"slug"`
	Title           string    `json:"title"`
	Subtitle        *string   `json:"subtitle,omitempty"`
	Description     *string   `json:"description,omitempty"`
	Category        string    `json:"category"`
	SubCategory     *string   `json:"sub_category,omitempty"`
	Price           string    `json:"price"`
	DiscountPercent string    `json:"discount_percent"`
	Sizes           []sizeDTO `json:"sizes,omitempty"`
	Tags            []string  `json:"tags,omitempty"`
	ImageURL        *string   `json:"image_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type sizeDTO struct {
	Label string `json:"label"`
	Price string `json:"price"`
}

func newProductDTO(product *models.Product) productDTO {
	sizes := make([]sizeDTO, 0, len(product.Sizes))
	for _, size := range product.Sizes {
		sizes = append(sizes, sizeDTO{Label: size.Label, Price: size.Price.StringFixed(2)})
	}
	return productDTO{
		ID:              product.ID,
		Slug:            product.Slug,
		Title:           product.Title,
		Subtitle:        product.Subtitle,
		Description:     product.Description,
		Category:        string(product.Category),
		SubCategory:     product.SubCategory,
		Price:           product.Price.StringFixed(2),
		DiscountPercent: product.DiscountPercent.StringFixed(2),
		Sizes:           sizes,
		Tags:            product.Tags,
		ImageURL:        product.ImageURL,
		CreatedAt:       product.CreatedAt,
	}
}

type reviewDTO struct {
	ID         uuid.UUID `json:"id"`
	ProductID  uuid.UUID `json:"product_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	AuthorName string    `json:"author_name"`
	CreatedAt  time.Time `json:"created_at"`
}

func newReviewDTO(review *models.Review) reviewDTO {
	return reviewDTO{
		ID:         review.ID,
		ProductID:  review.ProductID,
		Rating:     review.Rating,
		Comment:    review.Comment,
		AuthorName: review.AuthorName,
		CreatedAt:  review.CreatedAt,
	}
}
