package headless

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/s4trading/storefront-backend/pkg/enums"
	"github.com/s4trading/storefront-backend/pkg/medusa"
)

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func TestMapProduct_PriceAndStock(t *testing.T) {
	raw := medusa.Product{
		ID:    "prod_1",
		Title: "A5 Wagyu Ribeye",
		Categories: []medusa.Category{
			{Name: "Premium Japanese Beef"},
		},
		Variants: []medusa.Variant{
			{
				ID:                "variant_1",
				CalculatedPrice:   &medusa.CalculatedPrice{CalculatedAmount: floatPtr(89900)},
				InventoryQuantity: intPtr(20),
			},
		},
	}

	product := mapProduct(raw)
	assert.Equal(t, enums.ProductCategoryJapanese, product.Category)
	assert.True(t, product.Price.Equal(decimal.NewFromInt(899)))
	assert.Equal(t, enums.StockStatusInStock, product.StockStatus)
	assert.Equal(t, 20, product.StockLevel)
}

func TestMapProduct_FallbackPriceAndBackorder(t *testing.T) {
	raw := medusa.Product{
		ID:    "prod_2",
		Title: "Ramadan Box",
		Collection: &medusa.Category{
			Title: "Ramadan Specials",
		},
		Variants: []medusa.Variant{
			{
				ID:                "variant_2",
				Prices:            []medusa.Price{{Amount: 24950}},
				InventoryQuantity: intPtr(0),
				AllowBackorder:    true,
			},
		},
	}

	product := mapProduct(raw)
	assert.Equal(t, enums.ProductCategoryRamadan, product.Category)
	assert.True(t, product.Price.Equal(decimal.NewFromFloat(249.50)))
	assert.Equal(t, enums.StockStatusPreorder, product.StockStatus)
}

func TestMapOrder_PaidOrderCarriesDeposit(t *testing.T) {
	raw := medusa.Order{
		ID:            "order_1",
		CustomerID:    "cus_1",
		Status:        "completed",
		PaymentStatus: "captured",
		Total:         124800,
		CreatedAt:     "2026-03-01T10:00:00Z",
		Items: []medusa.OrderItem{
			{ID: "item_1", Title: "Wagyu Ribeye", Quantity: 2, VariantID: "variant_1", UnitPrice: 62400},
		},
		Metadata: map[string]any{
			"supabase_user_id": "user-1",
			"order_number":     "RAM-20260301-4821",
			"turnkey_status":   "confirmed",
			"delivery_date":    "2026-03-05",
		},
	}

	order := mapOrder(raw)
	assert.Equal(t, "user-1", order.UserID)
	assert.Equal(t, "RAM-20260301-4821", order.OrderNumber)
	assert.Equal(t, enums.OrderStatusConfirmed, order.Status)
	assert.True(t, order.DepositPaid)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(1248)))
	assert.True(t, order.DepositAmount.Equal(decimal.NewFromInt(1248)))
	assert.Equal(t, "2026-03-05", order.DeliveryDate)
	assert.Equal(t, "variant_1", order.Items[0].ProductID)
	assert.True(t, order.Items[0].UnitPrice.Equal(decimal.NewFromInt(624)))
	assert.Equal(t, 2026, order.CreatedAt.Year())
}

func TestMapOrder_UnpaidAndUnknownStatus(t *testing.T) {
	raw := medusa.Order{
		ID:            "order_2",
		CustomerID:    "cus_1",
		Status:        "requires_action",
		PaymentStatus: "awaiting",
		Total:         50000,
	}

	order := mapOrder(raw)
	assert.Equal(t, "cus_1", order.UserID)
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.False(t, order.DepositPaid)
	assert.True(t, order.DepositAmount.IsZero())
}
