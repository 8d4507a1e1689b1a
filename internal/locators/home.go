// Package locators holds the selector tables for the storefront pages.
// The tables are pure data, shared by both automation backends; every
// value is a CSS selector (with the occasional Playwright text filter)
// and nothing here talks to a browser.
package locators

// HomeTable maps semantic element names on the storefront homepage to
// selectors.
type HomeTable struct {
	// Header
	Logo         string
	SearchInput  string
	SearchButton string
	CartButton   string
	CartTotal    string

	// Navigation
	Navbar       string
	NavCurrency  string
	NavMyAccount string
	NavWishlist  string

	// Main content
	FeaturedProducts string
	ProductName      string
	ProductPrice     string
	AddToCartButton  string

	// Footer
	Footer      string
	FooterLinks string

	// My Account dropdown
	MyAccountDropdown string
	LoginLink         string
	RegisterLink      string
	LogoutLink        string
}

// Home is the homepage locator table.
var Home = HomeTable{
	Logo:         "#logo",
	SearchInput:  "input[name='search']",
	SearchButton: "#search button",
	CartButton:   "#header-cart",
	CartTotal:    "#header-cart .btn-inverse",

	Navbar:       ".navbar",
	NavCurrency:  "#form-currency",
	NavMyAccount: "a[title='My Account']",
	NavWishlist:  "#wishlist-total",

	FeaturedProducts: "#content .product-thumb",
	ProductName:      ".product-thumb .description h4 a",
	ProductPrice:     ".product-thumb .price",
	AddToCartButton:  "button[title='Add to Cart']",

	Footer:      "footer",
	FooterLinks: "footer a",

	MyAccountDropdown: "a.dropdown-toggle:has-text('My Account')",
	LoginLink:         "a.dropdown-item:has-text('Login')",
	RegisterLink:      "a.dropdown-item:has-text('Register')",
	LogoutLink:        "a.dropdown-item:has-text('Logout')",
}
