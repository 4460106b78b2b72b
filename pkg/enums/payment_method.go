package enums

// PaymentMethod labels how the shopper intends to pay. It is a tag only; no
// gateway integration sits behind it.
type PaymentMethod string

const (
	PaymentMethodCreditCard     PaymentMethod = "credit_card"
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentMethodEasypaisa      PaymentMethod = "easypaisa"
)

var paymentMethods = map[PaymentMethod]struct{}{
	PaymentMethodCreditCard:     {},
	PaymentMethodCashOnDelivery: {},
	PaymentMethodEasypaisa:      {},
}

// IsValid reports whether the value is one of the recognized methods.
func (p PaymentMethod) IsValid() bool {
	_, ok := paymentMethods[p]
	return ok
}

// Label returns the human-readable name used on confirmations.
func (p PaymentMethod) Label() string {
	switch p {
	case PaymentMethodCreditCard:
		return "Credit Card"
	case PaymentMethodCashOnDelivery:
		return "Cash on Delivery"
	case PaymentMethodEasypaisa:
		return "Easypaisa"
	default:
		return string(p)
	}
}
