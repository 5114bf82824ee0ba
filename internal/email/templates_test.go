// internal/email/templates_test.go
package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildOrderConfirmationBody(t *testing.T) {
	lines := []OrderLine{
		{Name: "Linen Shirt", Quantity: 2, Size: "M", Price: 45, Total: 90},
		{Name: "Wool Scarf", Quantity: 1, Price: 30, Total: 30},
	}

	body := BuildOrderConfirmationBody("CMD-2026-123456789", lines, 120, 7, 127)

	assert.Contains(t, body, "CMD-2026-123456789")
	assert.Contains(t, body, "Linen Shirt (size M)")
	assert.Contains(t, body, "Wool Scarf")
	assert.Contains(t, body, "120.00")
	assert.Contains(t, body, "127.00")
}

func TestBuildStatusUpdateBody(t *testing.T) {
	body := BuildStatusUpdateBody("CMD-2026-123456789", "processing")

	assert.Contains(t, body, "CMD-2026-123456789")
	assert.Contains(t, body, "processing")
}

func TestBuildShippingNoticeBody(t *testing.T) {
	body := BuildShippingNoticeBody("CMD-2026-123456789", "1Z999AA10123456784", "UPS", "2026-09-02")

	assert.Contains(t, body, "1Z999AA10123456784")
	assert.Contains(t, body, "UPS")
	assert.Contains(t, body, "2026-09-02")

	// Omitted fields leave no empty rows behind
	bare := BuildShippingNoticeBody("CMD-2026-123456789", "", "", "")
	assert.NotContains(t, bare, "Tracking number")
	assert.NotContains(t, bare, "Carrier")
}
