// Package pages holds the concrete page objects. A page object is a
// locator table plus a *browser.Page; domain actions are methods that
// run the low-level steps in order and surface the first step's error
// unchanged, so a failure always names the element that caused it.
package pages

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/storeqa/storeqa/internal/browser"
	"github.com/storeqa/storeqa/internal/locators"
)

// HomePage drives the storefront homepage.
type HomePage struct {
	page *browser.Page
	loc  locators.HomeTable
	log  *zap.Logger
}

// NewHomePage binds a home page object to a live page.
func NewHomePage(page *browser.Page, logger *zap.Logger) *HomePage {
	if logger == nil {
		logger, _ = zap.NewDevelopment()
	}
	return &HomePage{page: page, loc: locators.Home, log: logger}
}

// Open navigates to the storefront root.
func (h *HomePage) Open() error {
	return h.page.Navigate("/")
}

// SearchProduct types a product name into the search box and submits.
func (h *HomePage) SearchProduct(name string) error {
	h.log.Info("searching for product", zap.String("product", name))
	if err := h.page.Fill(h.loc.SearchInput, name); err != nil {
		return err
	}
	if err := h.page.Click(h.loc.SearchButton); err != nil {
		return err
	}
	return h.page.WaitForLoad()
}

// OpenCart opens the header cart dropdown.
func (h *HomePage) OpenCart() error {
	return h.page.Click(h.loc.CartButton)
}

// CartTotal returns the header cart total text.
func (h *HomePage) CartTotal() (string, error) {
	return h.page.GetText(h.loc.CartTotal)
}

// FeaturedProductCount returns how many featured products the homepage
// shows.
func (h *HomePage) FeaturedProductCount() (int, error) {
	return h.page.GetElementCount(h.loc.FeaturedProducts)
}

// ProductNames returns the names of all featured products, in page
// order. An empty homepage yields an empty slice.
func (h *HomePage) ProductNames() ([]string, error) {
	return h.page.GetAllTexts(h.loc.ProductName)
}

// ClickProduct opens a featured product's page by its displayed name.
func (h *HomePage) ClickProduct(name string) error {
	h.log.Info("opening product", zap.String("product", name))
	selector := fmt.Sprintf("%s:has-text('%s')", h.loc.ProductName, name)
	if err := h.page.Click(selector); err != nil {
		return err
	}
	return h.page.WaitForLoad()
}

// AddFirstProductToCart clicks the first featured product's add-to-cart
// button.
func (h *HomePage) AddFirstProductToCart() error {
	h.log.Info("adding first featured product to cart")
	return h.page.Click(h.loc.AddToCartButton)
}

// GoToMyAccount clicks the My Account header link.
func (h *HomePage) GoToMyAccount() error {
	return h.page.Click(h.loc.NavMyAccount)
}

// ClickLogin opens My Account and follows the Login link. Each step's
// failure propagates as-is; a broken dropdown reads as a dropdown
// error, not a vague navigation failure.
func (h *HomePage) ClickLogin() error {
	h.log.Info("navigating to login page")
	if err := h.page.Click(h.loc.MyAccountDropdown); err != nil {
		return err
	}
	if err := h.page.Click(h.loc.LoginLink); err != nil {
		return err
	}
	return h.page.WaitForLoad()
}

// ClickRegister opens My Account and follows the Register link.
func (h *HomePage) ClickRegister() error {
	h.log.Info("navigating to register page")
	if err := h.page.Click(h.loc.MyAccountDropdown); err != nil {
		return err
	}
	if err := h.page.Click(h.loc.RegisterLink); err != nil {
		return err
	}
	return h.page.WaitForLoad()
}

// VerifyLoaded asserts the homepage rendered: right title, logo
// visible.
func (h *HomePage) VerifyLoaded() error {
	if err := h.page.ExpectTitle("Your Store"); err != nil {
		return err
	}
	return h.page.ExpectVisible(h.loc.Logo)
}

// VerifySearchBoxVisible asserts the search input and button render.
func (h *HomePage) VerifySearchBoxVisible() error {
	if err := h.page.ExpectVisible(h.loc.SearchInput); err != nil {
		return err
	}
	return h.page.ExpectVisible(h.loc.SearchButton)
}

// VerifyCartVisible asserts the header cart button renders.
func (h *HomePage) VerifyCartVisible() error {
	return h.page.ExpectVisible(h.loc.CartButton)
}

// VerifyOnSearchResults asserts navigation reached the search results
// page.
func (h *HomePage) VerifyOnSearchResults() error {
	return h.page.ExpectURLContains("search")
}

// VerifyProductsDisplayed asserts at least min products render.
func (h *HomePage) VerifyProductsDisplayed(min int) error {
	count, err := h.FeaturedProductCount()
	if err != nil {
		return err
	}
	if count < min {
		return &browser.ExpectationError{
			Selector:  h.loc.FeaturedProducts,
			Condition: fmt.Sprintf("showing at least %d products", min),
			Observed:  fmt.Sprintf("%d products", count),
		}
	}
	return nil
}
