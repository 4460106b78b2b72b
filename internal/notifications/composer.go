package notifications

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/attarhouse/attarhouse-backend/internal/checkout"
	pkgerrors "github.com/attarhouse/attarhouse-backend/pkg/errors"
	"github.com/attarhouse/attarhouse-backend/pkg/outbox/payloads"
	"github.com/attarhouse/attarhouse-backend/pkg/sendgrid"
)

const (
	confirmationDateFormat = "January 2, 2006"
	currencyLabel          = "Rs."
)

// ComposeOrderConfirmation renders the transactional confirmation mail for a
// placed order. Monetary figures arrive pre-formatted with two decimals.
func ComposeOrderConfirmation(event *payloads.OrderPlacedEvent) (sendgrid.Mail, error) {
	if event == nil {
		return sendgrid.Mail{}, pkgerrors.New(pkgerrors.CodeValidation, "order payload is required")
	}
	if strings.TrimSpace(event.CustomerEmail) == "" {
		return sendgrid.Mail{}, pkgerrors.New(pkgerrors.CodeValidation, "customer email is required")
	}
	if event.OrderNumber == "" {
		return sendgrid.Mail{}, pkgerrors.New(pkgerrors.CodeValidation, "order number is required")
	}

	delivery := estimatedDeliveryDate(event.OrderDate)

	return sendgrid.Mail{
		ToEmail:   event.CustomerEmail,
		ToName:    event.CustomerName,
		Subject:   fmt.Sprintf("Order %s confirmed", event.OrderNumber),
		PlainText: renderPlainText(event, delivery),
		HTML:      renderHTML(event, delivery),
	}, nil
}

func estimatedDeliveryDate(orderDate time.Time) time.Time {
	return orderDate.AddDate(0, 0, checkout.EstimatedDeliveryDays)
}

func renderPlainText(event *payloads.OrderPlacedEvent, delivery time.Time) string {
	var b strings.Builder

	name := strings.TrimSpace(event.CustomerName)
	if name == "" {
		name = "there"
	}
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	fmt.Fprintf(&b, "Thank you for your order. Here is your confirmation.\n\n")
	fmt.Fprintf(&b, "Order number: %s\n", event.OrderNumber)
	fmt.Fprintf(&b, "Order date: %s\n", event.OrderDate.Format(confirmationDateFormat))
	fmt.Fprintf(&b, "Payment: %s\n", event.PaymentMethod.Label())
	fmt.Fprintf(&b, "Estimated delivery: %s\n\n", delivery.Format(confirmationDateFormat))

	b.WriteString("Items:\n")
	for _, item := range event.Items {
		title := item.Title
		if item.SizeLabel != "" {
			title = fmt.Sprintf("%s (%s)", title, item.SizeLabel)
		}
		fmt.Fprintf(&b, "  %d x %s at %s %s = %s %s\n", item.Quantity, title, currencyLabel, item.UnitPrice, currencyLabel, item.LineTotal)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Subtotal: %s %s\n", currencyLabel, event.Subtotal)
	fmt.Fprintf(&b, "Shipping: %s %s\n", currencyLabel, event.Shipping)
	if event.CouponCode != "" {
		fmt.Fprintf(&b, "Coupon (%s): -%s %s\n", event.CouponCode, currencyLabel, event.CouponDiscount)
	}
	if event.Donation != "" && event.Donation != "0.00" {
		fmt.Fprintf(&b, "Donation: %s %s\n", currencyLabel, event.Donation)
	}
	fmt.Fprintf(&b, "Total: %s %s\n\n", currencyLabel, event.Total)

	b.WriteString("Attar House\n")
	return b.String()
}

func renderHTML(event *payloads.OrderPlacedEvent, delivery time.Time) string {
	var b strings.Builder

	name := html.EscapeString(strings.TrimSpace(event.CustomerName))
	if name == "" {
		name = "there"
	}
	fmt.Fprintf(&b, "<p>Hi %s,</p>", name)
	b.WriteString("<p>Thank you for your order. Here is your confirmation.</p>")
	fmt.Fprintf(&b, "<p><strong>Order number:</strong> %s<br>", html.EscapeString(event.OrderNumber))
	fmt.Fprintf(&b, "<strong>Order date:</strong> %s<br>", event.OrderDate.Format(confirmationDateFormat))
	fmt.Fprintf(&b, "<strong>Payment:</strong> %s<br>", html.EscapeString(event.PaymentMethod.Label()))
	fmt.Fprintf(&b, "<strong>Estimated delivery:</strong> %s</p>", delivery.Format(confirmationDateFormat))

	b.WriteString("<table><thead><tr><th>Item</th><th>Qty</th><th>Unit</th><th>Line total</th></tr></thead><tbody>")
	for _, item := range event.Items {
		title := item.Title
		if item.SizeLabel != "" {
			title = fmt.Sprintf("%s (%s)", title, item.SizeLabel)
		}
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%d</td><td>%s %s</td><td>%s %s</td></tr>",
			html.EscapeString(title), item.Quantity, currencyLabel, item.UnitPrice, currencyLabel, item.LineTotal)
	}
	b.WriteString("</tbody></table>")

	fmt.Fprintf(&b, "<p>Subtotal: %s %s<br>", currencyLabel, event.Subtotal)
	fmt.Fprintf(&b, "Shipping: %s %s<br>", currencyLabel, event.Shipping)
	if event.CouponCode != "" {
		fmt.Fprintf(&b, "Coupon (%s): -%s %s<br>", html.EscapeString(event.CouponCode), currencyLabel, event.CouponDiscount)
	}
	if event.Donation != "" && event.Donation != "0.00" {
		fmt.Fprintf(&b, "Donation: %s %s<br>", currencyLabel, event.Donation)
	}
	fmt.Fprintf(&b, "<strong>Total: %s %s</strong></p>", currencyLabel, event.Total)

	b.WriteString("<p>Attar House</p>")
	return b.String()
}
