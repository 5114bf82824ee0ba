// internal/services/checkout_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/cmdboutique/storefront-backend/internal/models"
)

func product(name string, stock int, active bool) *models.Product {
	p := &models.Product{Name: name, Stock: stock, IsActive: active}
	p.ID = uuid.New()
	return p
}

func TestEvaluateStockAllSatisfiable(t *testing.T) {
	shirt := product("Linen Shirt", 10, true)
	scarf := product("Wool Scarf", 3, true)

	items := []CartItem{
		{ProductID: shirt.ID, Quantity: 2, Size: "M"},
		{ProductID: scarf.ID, Quantity: 3},
	}
	products := map[uuid.UUID]*models.Product{shirt.ID: shirt, scarf.ID: scarf}

	result := EvaluateStock(items, products)

	assert.True(t, result.Available)
	assert.Len(t, result.Items, 2)
	assert.Empty(t, result.InsufficientItems)
}

func TestEvaluateStockReportsEveryShortLine(t *testing.T) {
	shirt := product("Linen Shirt", 1, true)
	scarf := product("Wool Scarf", 0, true)
	coat := product("Trench Coat", 50, true)

	items := []CartItem{
		{ProductID: shirt.ID, Quantity: 2},
		{ProductID: scarf.ID, Quantity: 1},
		{ProductID: coat.ID, Quantity: 1},
	}
	products := map[uuid.UUID]*models.Product{shirt.ID: shirt, scarf.ID: scarf, coat.ID: coat}

	result := EvaluateStock(items, products)

	assert.False(t, result.Available)
	assert.Len(t, result.InsufficientItems, 2)

	byName := map[string]StockLine{}
	for _, line := range result.InsufficientItems {
		byName[line.ProductName] = line
	}
	assert.Equal(t, 2, byName["Linen Shirt"].Requested)
	assert.Equal(t, 1, byName["Linen Shirt"].Available)
	assert.Equal(t, 1, byName["Wool Scarf"].Requested)
	assert.Equal(t, 0, byName["Wool Scarf"].Available)
}

func TestEvaluateStockOutOfStockScenario(t *testing.T) {
	// Cart with 1 unit of a product whose stock is 0
	x := product("Sold Out Tee", 0, true)

	result := EvaluateStock(
		[]CartItem{{ProductID: x.ID, Quantity: 1}},
		map[uuid.UUID]*models.Product{x.ID: x},
	)

	assert.False(t, result.Available)
	assert.Len(t, result.InsufficientItems, 1)
	assert.Equal(t, x.ID, result.InsufficientItems[0].ProductID)
	assert.Equal(t, 1, result.InsufficientItems[0].Requested)
	assert.Equal(t, 0, result.InsufficientItems[0].Available)
}

func TestEvaluateStockUnknownAndInactiveProducts(t *testing.T) {
	inactive := product("Retired Jacket", 10, false)

	items := []CartItem{
		{ProductID: uuid.New(), Quantity: 1}, // never existed
		{ProductID: inactive.ID, Quantity: 1},
	}

	result := EvaluateStock(items, map[uuid.UUID]*models.Product{inactive.ID: inactive})

	assert.False(t, result.Available)
	assert.Len(t, result.InsufficientItems, 2)
	for _, line := range result.InsufficientItems {
		assert.Equal(t, 0, line.Available)
	}
}
