package types

import "github.com/shopspring/decimal"

// OrderItem is a single line of an order as stored and returned to clients.
type OrderItem struct {
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id,omitempty"`
	Name      string          `json:"name"`
	Qty       int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// LineTotal returns qty * unit price.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Qty)))
}

// SubtotalOf sums the line totals of the provided items.
func SubtotalOf(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// DeliveryDetails carries the buyer-entered delivery block of a checkout.
type DeliveryDetails struct {
	RestaurantName      string `json:"restaurantName,omitempty"`
	ContactName         string `json:"contactName,omitempty"`
	ContactPhone        string `json:"contactPhone,omitempty"`
	Email               string `json:"email,omitempty"`
	Address             string `json:"address,omitempty"`
	DeliveryDate        string `json:"deliveryDate,omitempty"`
	SpecialInstructions string `json:"specialInstructions,omitempty"`
}

// JSONMap is a free-form JSON object column.
type JSONMap map[string]any
