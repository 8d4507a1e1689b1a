package api

// Cart is the structured view of the server-side cart. The suite
// observes this state; it never owns it.
type Cart struct {
	Products []LineItem `json:"products"`
	Totals   []Total    `json:"totals"`
	Vouchers []any      `json:"vouchers"`

	// ShippingRequired is present and true when the cart holds at
	// least one physical product.
	ShippingRequired bool `json:"shipping_required"`
}

// LineItem is one cart entry. CartID is the server-assigned line-item
// identifier and is distinct from ProductID by construction: adding the
// same product twice through different paths yields different CartIDs.
// Removal keys off CartID, never ProductID.
type LineItem struct {
	CartID    string `json:"cart_id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`

	// Quantity arrives as a numeric string, matching the storefront's
	// form-value representation.
	Quantity string `json:"quantity"`

	Price string `json:"price"`
	Total string `json:"total"`
}

// Total is one row of the cart totals breakdown (sub-total, shipping,
// grand total).
type Total struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// IsEmpty reports whether the cart holds no products.
func (c *Cart) IsEmpty() bool { return len(c.Products) == 0 }

// emptyCart is what an empty response body parses to.
func emptyCart() *Cart {
	return &Cart{
		Products: []LineItem{},
		Totals:   []Total{},
		Vouchers: []any{},
	}
}
