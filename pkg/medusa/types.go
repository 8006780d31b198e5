package medusa

// Customer is the subset of a commerce customer record the storefront uses.
type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// CustomerInput creates a customer on the commerce backend. RestaurantName
// doubles as the first name so admin views stay readable.
type CustomerInput struct {
	Email          string
	RestaurantName string
	Phone          string
	UserID         string
}

// Money amounts on the wire are integer minor units (fils).
type Price struct {
	Amount       int64  `json:"amount"`
	CurrencyCode string `json:"currency_code,omitempty"`
}

type CalculatedPrice struct {
	CalculatedAmount *float64 `json:"calculated_amount,omitempty"`
}

// Variant is one purchasable variant of a product.
type Variant struct {
	ID                string           `json:"id"`
	Title             string           `json:"title,omitempty"`
	InventoryQuantity *int             `json:"inventory_quantity,omitempty"`
	AllowBackorder    bool             `json:"allow_backorder,omitempty"`
	CalculatedPrice   *CalculatedPrice `json:"calculated_price,omitempty"`
	Prices            []Price          `json:"prices,omitempty"`
}

// Product is a store catalog entry.
type Product struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Thumbnail   string         `json:"thumbnail,omitempty"`
	Variants    []Variant      `json:"variants,omitempty"`
	Categories  []Category     `json:"categories,omitempty"`
	Collection  *Category      `json:"collection,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type Category struct {
	Name  string `json:"name,omitempty"`
	Title string `json:"title,omitempty"`
}

// OrderItem is a line on a commerce order.
type OrderItem struct {
	ID        string  `json:"id,omitempty"`
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	VariantID string  `json:"variant_id,omitempty"`
	UnitPrice float64 `json:"unit_price"`
}

// Order is the commerce backend's order shape.
type Order struct {
	ID            string         `json:"id"`
	DisplayID     any            `json:"display_id,omitempty"`
	CustomerID    string         `json:"customer_id,omitempty"`
	Status        string         `json:"status,omitempty"`
	PaymentStatus string         `json:"payment_status,omitempty"`
	Total         float64        `json:"total,omitempty"`
	CreatedAt     string         `json:"created_at,omitempty"`
	Items         []OrderItem    `json:"items,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// OrderInput creates an order through the admin API. UnitPrice values are
// already minor units.
type OrderInput struct {
	CustomerID string
	Items      []OrderItem
	Metadata   map[string]any
}
