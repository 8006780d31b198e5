// Package headless implements the commerce provider against an external
// Medusa deployment. Orders live remotely, keyed by a backend customer id;
// pay-now checkouts stage a local attempt that the webhook finalizes.
package headless

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/s4trading/storefront-backend/internal/commerce"
	"github.com/s4trading/storefront-backend/pkg/enums"
	"github.com/s4trading/storefront-backend/pkg/medusa"
	"github.com/s4trading/storefront-backend/pkg/types"
)

// Backend money is integer minor units; the storefront works in major units.
func fromMinorUnits(amount float64) decimal.Decimal {
	return decimal.NewFromFloat(amount).Div(decimal.NewFromInt(100)).Round(2)
}

func toMinorUnits(amount decimal.Decimal) float64 {
	cents := amount.Mul(decimal.NewFromInt(100)).Round(0)
	value, _ := cents.Float64()
	return value
}

func mapProduct(raw medusa.Product) commerce.Product {
	product := commerce.Product{
		ID:          raw.ID,
		Name:        raw.Title,
		Category:    enums.NormalizeProductCategory(categoryName(raw)),
		Unit:        "Pack",
		Description: raw.Description,
		ImageURL:    raw.Thumbnail,
		StockStatus: enums.StockStatusLowStock,
	}

	if len(raw.Variants) > 0 {
		variant := raw.Variants[0]
		product.Price = variantPrice(variant)
		if variant.InventoryQuantity != nil {
			product.StockLevel = *variant.InventoryQuantity
			product.StockStatus = enums.StockStatusFromQuantity(*variant.InventoryQuantity, variant.AllowBackorder)
		} else if variant.AllowBackorder {
			product.StockStatus = enums.StockStatusPreorder
		}
	}
	return product
}

func categoryName(raw medusa.Product) string {
	if len(raw.Categories) > 0 {
		if raw.Categories[0].Name != "" {
			return raw.Categories[0].Name
		}
		return raw.Categories[0].Title
	}
	if raw.Collection != nil {
		if raw.Collection.Title != "" {
			return raw.Collection.Title
		}
		return raw.Collection.Name
	}
	return ""
}

func variantPrice(variant medusa.Variant) decimal.Decimal {
	if variant.CalculatedPrice != nil && variant.CalculatedPrice.CalculatedAmount != nil {
		return fromMinorUnits(*variant.CalculatedPrice.CalculatedAmount)
	}
	if len(variant.Prices) > 0 {
		return fromMinorUnits(float64(variant.Prices[0].Amount))
	}
	return decimal.Zero
}

func mapOrder(raw medusa.Order) commerce.Order {
	paid := raw.PaymentStatus == "captured" || raw.PaymentStatus == "paid"

	total := fromMinorUnits(raw.Total)
	deposit := decimal.Zero
	if paid {
		deposit = total
	}

	order := commerce.Order{
		ID:            raw.ID,
		OrderNumber:   metadataString(raw.Metadata, "order_number"),
		UserID:        raw.CustomerID,
		TotalAmount:   total,
		DepositAmount: deposit,
		DepositPaid:   paid,
		Status:        orderStatus(raw),
		DeliveryDate:  metadataString(raw.Metadata, "delivery_date"),
	}
	if userID := metadataString(raw.Metadata, "supabase_user_id"); userID != "" {
		order.UserID = userID
	}
	if instructions := metadataString(raw.Metadata, "special_instructions"); instructions != "" {
		order.SpecialInstructions = instructions
	}
	if raw.CreatedAt != "" {
		if createdAt, err := time.Parse(time.RFC3339, raw.CreatedAt); err == nil {
			order.CreatedAt = createdAt
		}
	}

	order.Items = make([]types.OrderItem, 0, len(raw.Items))
	for _, item := range raw.Items {
		productID := item.VariantID
		if productID == "" {
			productID = item.ID
		}
		order.Items = append(order.Items, types.OrderItem{
			ProductID: productID,
			Name:      item.Title,
			Qty:       item.Quantity,
			UnitPrice: fromMinorUnits(item.UnitPrice),
		})
	}
	return order
}

// orderStatus prefers the storefront's own status tag over the backend's
// raw lifecycle value.
func orderStatus(raw medusa.Order) enums.OrderStatus {
	if tagged := metadataString(raw.Metadata, "turnkey_status"); tagged != "" {
		return enums.NormalizeOrderStatus(tagged)
	}
	return enums.NormalizeOrderStatus(raw.Status)
}

func metadataString(metadata map[string]any, key string) string {
	if metadata == nil {
		return ""
	}
	if value, ok := metadata[key].(string); ok {
		return value
	}
	return ""
}
