// internal/email/templates.go
package email

import (
	"fmt"
	"strings"
)

// OrderLine is one order row rendered into a transactional email.
type OrderLine struct {
	Name     string
	Quantity int
	Size     string
	Price    float64
	Total    float64
}

func itemsTable(lines []OrderLine) string {
	var rows strings.Builder
	for _, line := range lines {
		name := line.Name
		if line.Size != "" {
			name = fmt.Sprintf("%s (size %s)", name, line.Size)
		}
		rows.WriteString(fmt.Sprintf(
			`<tr>
				<td style="padding: 10px; border-bottom: 1px solid #eee;">%s</td>
				<td style="padding: 10px; border-bottom: 1px solid #eee; text-align: center;">%d</td>
				<td style="padding: 10px; border-bottom: 1px solid #eee; text-align: right;">%.2f&nbsp;&euro;</td>
				<td style="padding: 10px; border-bottom: 1px solid #eee; text-align: right;">%.2f&nbsp;&euro;</td>
			</tr>`,
			name, line.Quantity, line.Price, line.Total,
		))
	}

	return fmt.Sprintf(`<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
		<thead>
			<tr style="background: #f8f8f8;">
				<th style="padding: 10px; text-align: left;">Item</th>
				<th style="padding: 10px; text-align: center;">Qty</th>
				<th style="padding: 10px; text-align: right;">Price</th>
				<th style="padding: 10px; text-align: right;">Total</th>
			</tr>
		</thead>
		<tbody>%s</tbody>
	</table>`, rows.String())
}

func layout(heading, inner string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Helvetica, Arial, sans-serif; color: #222; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: #111; padding: 24px; border-radius: 8px 8px 0 0;">
		<h1 style="color: #fff; margin: 0; font-size: 20px; letter-spacing: 2px;">%s</h1>
	</div>
	<div style="background: #fff; padding: 24px; border: 1px solid #eee; border-top: none; border-radius: 0 0 8px 8px;">
		%s
	</div>
</body>
</html>`, heading, inner)
}

// BuildOrderConfirmationBody renders the email sent right after checkout.
func BuildOrderConfirmationBody(orderNumber string, lines []OrderLine, subtotal, shipping, total float64) string {
	inner := fmt.Sprintf(`<p>Thank you for your order.</p>
		<p style="font-size: 14px; color: #666; margin-bottom: 4px;">Order number</p>
		<p style="font-size: 18px; font-weight: bold; font-family: monospace; margin-top: 0;">%s</p>
		%s
		<p style="text-align: right; margin: 4px 0;">Subtotal: %.2f&nbsp;&euro;</p>
		<p style="text-align: right; margin: 4px 0;">Shipping: %.2f&nbsp;&euro;</p>
		<p style="text-align: right; font-size: 18px; font-weight: bold;">Total: %.2f&nbsp;&euro;</p>`,
		orderNumber, itemsTable(lines), subtotal, shipping, total)
	return layout("Order confirmed", inner)
}

// BuildStatusUpdateBody renders the admin-triggered status update email.
func BuildStatusUpdateBody(orderNumber, status string) string {
	inner := fmt.Sprintf(`<p>Your order <strong style="font-family: monospace;">%s</strong> is now <strong>%s</strong>.</p>
		<p style="font-size: 13px; color: #666;">You will receive another email when the next step is reached.</p>`,
		orderNumber, status)
	return layout("Order update", inner)
}

// BuildShippingNoticeBody renders the shipping notification with tracking details.
func BuildShippingNoticeBody(orderNumber, trackingNumber, carrier, estimatedDelivery string) string {
	var details strings.Builder
	if carrier != "" {
		details.WriteString(fmt.Sprintf(`<p style="margin: 4px 0;">Carrier: <strong>%s</strong></p>`, carrier))
	}
	if trackingNumber != "" {
		details.WriteString(fmt.Sprintf(`<p style="margin: 4px 0;">Tracking number: <strong style="font-family: monospace;">%s</strong></p>`, trackingNumber))
	}
	if estimatedDelivery != "" {
		details.WriteString(fmt.Sprintf(`<p style="margin: 4px 0;">Estimated delivery: <strong>%s</strong></p>`, estimatedDelivery))
	}

	inner := fmt.Sprintf(`<p>Good news: your order <strong style="font-family: monospace;">%s</strong> has shipped.</p>%s`,
		orderNumber, details.String())
	return layout("Your order is on its way", inner)
}
