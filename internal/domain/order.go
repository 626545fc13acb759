package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// PaymentMethod is how the customer pays on delivery.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
	PaymentPix  PaymentMethod = "pix"
)

var paymentLabels = map[PaymentMethod]string{
	PaymentCash: "Dinheiro",
	PaymentCard: "Cartão (Crédito/Débito)",
	PaymentPix:  "Pix",
}

// Valid reports whether p is a known method.
func (p PaymentMethod) Valid() bool {
	_, ok := paymentLabels[p]
	return ok
}

// Label is the customer-facing name used in the order message.
func (p PaymentMethod) Label() string {
	if l, ok := paymentLabels[p]; ok {
		return l
	}
	return string(p)
}

// Address is a delivery address as typed by the customer.
type Address struct {
	Street    string `json:"street"`
	Number    string `json:"number"`
	District  string `json:"district"`
	Reference string `json:"reference"`
}

// String joins the non-blank parts with ", ".
func (a Address) String() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.Street, a.Number, a.District, a.Reference} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// OrderDetails is the customer input collected at checkout.
type OrderDetails struct {
	CustomerName string
	Address      Address
	Payment      PaymentMethod
}

// OrderSummary is what the formatter needs to know about the cart.
type OrderSummary struct {
	Restaurant  string
	Lines       []CartLine
	DeliveryFee Money
}

// Subtotal of the summarized lines.
func (s OrderSummary) Subtotal() Money {
	return Subtotal(s.Lines)
}

// Total of the summarized lines plus delivery.
func (s OrderSummary) Total() Money {
	return s.Subtotal() + s.DeliveryFee
}

// FormatOrderMessage renders the plain-text order sent to the restaurant.
func FormatOrderMessage(s OrderSummary, d OrderDetails) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Olá, %s! Gostaria de fazer o seguinte pedido:\n\n", s.Restaurant)
	for _, l := range s.Lines {
		fmt.Fprintf(&b, "%dx %s", l.Quantity, l.Name)
		if l.VariantLabel != nil && *l.VariantLabel != "" {
			fmt.Fprintf(&b, " (Opção: %s)", *l.VariantLabel)
		}
		if l.AddOnSelected {
			fmt.Fprintf(&b, " (Adicional: %s)", shortAddOnLabel(l.AddOnLabel))
		}
		fmt.Fprintf(&b, " - R$ %s\n", l.LineTotal())
	}

	fmt.Fprintf(&b, "\nSubtotal: R$ %s\n", s.Subtotal())
	fmt.Fprintf(&b, "Taxa de Entrega: R$ %s\n", s.DeliveryFee)
	fmt.Fprintf(&b, "*Total do Pedido: R$ %s*\n\n", s.Total())
	fmt.Fprintf(&b, "Nome do Cliente: %s\n", strings.TrimSpace(d.CustomerName))
	fmt.Fprintf(&b, "Endereço de Entrega: %s\n", d.Address)
	fmt.Fprintf(&b, "Forma de Pagamento: %s\n\n", d.Payment.Label())
	b.WriteString("Aguardando confirmação. Obrigado!")

	return b.String()
}

// uriComponentUnescape restores the characters encodeURIComponent leaves
// alone but url.QueryEscape encodes.
var uriComponentUnescape = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeURIComponent percent-encodes s the way browsers' encodeURIComponent does.
func EncodeURIComponent(s string) string {
	return uriComponentUnescape.Replace(url.QueryEscape(s))
}

// WhatsAppLink builds the wa.me deep link carrying message.
func WhatsAppLink(recipient, message string) string {
	return "https://wa.me/" + recipient + "?text=" + EncodeURIComponent(message)
}
