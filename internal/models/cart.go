package models

// CartAttribute is a single selected product option (e.g. color, size).
// Order matters for display, so attributes stay a slice, never a map.
type CartAttribute struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	GroupType string `json:"group_type"`
}

// CartLine is one purchasable entry in the cart. PriceID is the key the
// upstream API mutates by, not ProductID.
type CartLine struct {
	ProductID     string          `json:"product_id"`
	PriceID       string          `json:"price_id"`
	Title         string          `json:"title"`
	Image         string          `json:"image"`
	Quantity      int             `json:"quantity"`
	UnitPrice     int64           `json:"unit_price"`
	RegularPrice  int64           `json:"regular_price"`
	DiscountPrice int64           `json:"discount_price,omitempty"`
	Attributes    []CartAttribute `json:"attributes,omitempty"`
	CartMax       int             `json:"cart_max"`
	CartMin       int             `json:"cart_min"`
}

// CartSummary is the server-computed aggregate that accompanies the lines.
// It is replaced wholesale on every successful fetch, never patched.
type CartSummary struct {
	FinalPrice         int64  `json:"final_price"`
	TotalDiscount      int64  `json:"total_discount"`
	ShippingCost       string `json:"shipping_cost"`
	ShippingCostAmount int64  `json:"shipping_cost_amount"`
	Weight             int64  `json:"weight"`
}

// CartSnapshot is the consistent view handed to subscribers and the HTTP
// facade. TotalItems is always recomputed from Lines.
type CartSnapshot struct {
	CartID     string       `json:"cart_id,omitempty"`
	Lines      []CartLine   `json:"lines"`
	Summary    *CartSummary `json:"summary,omitempty"`
	TotalItems int          `json:"total_items"`
	IsLoading  bool         `json:"is_loading"`
	Updating   []string     `json:"updating,omitempty"`
	LastError  string       `json:"last_error,omitempty"`
}

type AddItemRequest struct {
	PriceID  string `json:"price_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

type UpdateQuantityRequest struct {
	PriceID  string `json:"price_id" validate:"required"`
	Quantity *int   `json:"quantity" validate:"required,min=0"`
}

type ApplyDiscountRequest struct {
	Code string `json:"code" validate:"required,min=1,max=64"`
}
