// internal/services/payment_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAmountInCents(t *testing.T) {
	cases := []struct {
		amount float64
		cents  int64
	}{
		{19.99, 1999},
		{64.35, 6435},
		{51.90, 5190},
		{0.01, 1},
		{100, 10000},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.cents, amountInCents(tc.amount), "%v euro", tc.amount)
	}
}
