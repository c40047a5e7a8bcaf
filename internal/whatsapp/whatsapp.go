// Package whatsapp renders the customer-facing order message and the wa.me
// deep link. It never delivers anything; the link is handed back to the
// client.
package whatsapp

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PedroLLOliveira/ecommerce-backend/internal/money"

	"github.com/shopspring/decimal"
)

// Item is one fulfillable order line as it appears in the message body.
type Item struct {
	Name      string
	Qty       int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// BuildMessage renders the order summary. Item order follows the slice
// order; blank-line separators are fixed.
func BuildMessage(customerName string, items []Item, total decimal.Decimal, notes string) string {
	lines := []string{}

	if customerName != "" {
		lines = append(lines, fmt.Sprintf("Olá! Meu nome é %s. Gostaria de fazer um pedido:", customerName))
	} else {
		lines = append(lines, "Olá! Gostaria de fazer um pedido:")
	}

	lines = append(lines, "")
	for _, it := range items {
		lines = append(lines, fmt.Sprintf(
			"- %s x%d (R$ %s) = R$ %s",
			it.Name, it.Qty, money.FormatBRL(it.UnitPrice), money.FormatBRL(it.Subtotal),
		))
	}

	lines = append(lines, "", fmt.Sprintf("Total: R$ %s", money.FormatBRL(total)))

	if notes != "" {
		lines = append(lines, "", fmt.Sprintf("Observações: %s", notes))
	}

	return strings.Join(lines, "\n")
}

// BuildLink builds the wa.me deep link for a pre-filled message. All
// non-digit characters are stripped from the phone number. An empty phone
// yields an empty link, not an error.
func BuildLink(phone, message string) string {
	digits := strings.Builder{}
	for _, c := range phone {
		if c >= '0' && c <= '9' {
			digits.WriteRune(c)
		}
	}

	if digits.Len() == 0 {
		return ""
	}

	// QueryEscape encodes spaces as '+', which wa.me renders literally.
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")

	return fmt.Sprintf("https://wa.me/%s?text=%s", digits.String(), text)
}
