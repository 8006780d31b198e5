package enums

import "strings"

// ProductCategory groups catalog items for the storefront filters.
type ProductCategory string

const (
	ProductCategoryRamadan     ProductCategory = "ramadan"
	ProductCategoryJapanese    ProductCategory = "japanese"
	ProductCategoryPremiumBeef ProductCategory = "premium_beef"
	ProductCategoryGeneral     ProductCategory = "general"
)

func (c ProductCategory) String() string {
	return string(c)
}

// NormalizeProductCategory maps free-form upstream category names onto the
// storefront's fixed set.
func NormalizeProductCategory(value string) ProductCategory {
	input := strings.ToLower(value)
	switch {
	case strings.Contains(input, "ramadan"):
		return ProductCategoryRamadan
	case strings.Contains(input, "japanese"):
		return ProductCategoryJapanese
	case strings.Contains(input, "beef"):
		return ProductCategoryPremiumBeef
	}
	return ProductCategoryGeneral
}

// StockStatus is the display-facing availability label.
type StockStatus string

const (
	StockStatusInStock  StockStatus = "In Stock"
	StockStatusLowStock StockStatus = "Low Stock"
	StockStatusPreorder StockStatus = "Pre-order"
)

func (s StockStatus) String() string {
	return string(s)
}

// StockStatusFromQuantity derives the availability label from inventory.
func StockStatusFromQuantity(quantity int, allowBackorder bool) StockStatus {
	switch {
	case quantity > 15:
		return StockStatusInStock
	case quantity > 0:
		return StockStatusLowStock
	case allowBackorder:
		return StockStatusPreorder
	}
	return StockStatusLowStock
}
