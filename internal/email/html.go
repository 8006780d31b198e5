package email

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/s4trading/storefront-backend/pkg/enums"
)

// formatMoney renders "AED 1,248" style amounts: grouped thousands, up to
// two decimals, trailing zeros dropped.
func formatMoney(amount decimal.Decimal) string {
	text := amount.Round(2).String()

	negative := strings.HasPrefix(text, "-")
	text = strings.TrimPrefix(text, "-")

	whole, fraction, _ := strings.Cut(text, ".")

	var grouped strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(digit)
	}

	result := grouped.String()
	if fraction != "" {
		result += "." + fraction
	}
	if negative {
		result = "-" + result
	}
	return "AED " + result
}

func paymentLabel(method enums.PaymentMethod) string {
	if method == enums.PaymentMethodStripe {
		return "Stripe (Paid)"
	}
	return "Cash on Delivery"
}

func buildHTML(input OrderEmail) string {
	var rows strings.Builder
	for _, item := range input.Items {
		rows.WriteString(fmt.Sprintf(
			`<tr><td style="padding:6px 0">%s x %d</td><td style="padding:6px 0;text-align:right">%s</td></tr>`,
			item.Name, item.Qty, formatMoney(item.LineTotal())))
	}

	return fmt.Sprintf(`
  <div style="font-family:Arial,sans-serif;line-height:1.5;color:#0f172a;max-width:620px;margin:0 auto;">
    <h2 style="margin-bottom:8px;">S4 Order Confirmation</h2>
    <p style="margin:0 0 14px;">Order <strong>#%s</strong> is confirmed.</p>
    <p style="margin:0 0 14px;">Payment method: <strong>%s</strong></p>
    <p style="margin:0 0 14px;">Delivery date: <strong>%s</strong></p>
    <table style="width:100%%;border-collapse:collapse;border-top:1px solid #e2e8f0;border-bottom:1px solid #e2e8f0;margin:10px 0 14px;">
      %s
      <tr><td style="padding:10px 0;font-weight:700;">Total</td><td style="padding:10px 0;text-align:right;font-weight:700;">%s</td></tr>
    </table>
    <p style="margin:0 0 16px;">Track your order: <a href="%s">%s</a></p>
    <p style="margin:0;color:#475569;font-size:13px;">S4 Commerce Team</p>
  </div>`,
		input.OrderNumber,
		paymentLabel(input.PaymentMethod),
		input.DeliveryDate,
		rows.String(),
		formatMoney(input.Amount),
		input.TrackingURL,
		input.TrackingURL)
}
