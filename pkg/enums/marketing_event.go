package enums

import "fmt"

// MarketingEventName enumerates the funnel events the storefront records.
type MarketingEventName string

const (
	MarketingEventProductView       MarketingEventName = "product_view"
	MarketingEventAddToCart         MarketingEventName = "add_to_cart"
	MarketingEventCheckoutStarted   MarketingEventName = "checkout_started"
	MarketingEventCheckoutCompleted MarketingEventName = "checkout_completed"
	MarketingEventCODOrderPlaced    MarketingEventName = "cod_order_placed"
)

var validMarketingEventNames = []MarketingEventName{
	MarketingEventProductView,
	MarketingEventAddToCart,
	MarketingEventCheckoutStarted,
	MarketingEventCheckoutCompleted,
	MarketingEventCODOrderPlaced,
}

func (m MarketingEventName) String() string {
	return string(m)
}

func (m MarketingEventName) IsValid() bool {
	for _, candidate := range validMarketingEventNames {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMarketingEventName converts raw input into a MarketingEventName.
func ParseMarketingEventName(value string) (MarketingEventName, error) {
	for _, candidate := range validMarketingEventNames {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid marketing event %q", value)
}

// MarketingEventNames returns the known event names, for metrics iteration.
func MarketingEventNames() []MarketingEventName {
	out := make([]MarketingEventName, len(validMarketingEventNames))
	copy(out, validMarketingEventNames)
	return out
}
