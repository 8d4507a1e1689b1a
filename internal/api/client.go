// Package api is the OpenCart storefront API client. Authentication is
// session-based: Login exchanges the API credentials for a token the
// server also expects as the OCSESSID cookie; every other call refuses
// to touch the network until that has happened.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// ErrNotAuthenticated is returned by every API call made before a
// successful Login. The call fails fast, before any network I/O, so
// the failure is never mistaken for a server-side problem.
var ErrNotAuthenticated = errors.New("not authenticated: call Login first")

// APIError is an in-band error reported by the storefront API. OpenCart
// reports failures in the response body at HTTP 200, so status codes
// alone mean nothing.
type APIError struct {
	Route  string
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error on %s: %s", e.Route, e.Detail)
}

// ParseError is a malformed non-empty response body. The excerpt is
// truncated for log hygiene but long enough to diagnose.
type ParseError struct {
	Route   string
	Excerpt string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid JSON from %s: %v (body: %s)", e.Route, e.Err, e.Excerpt)
}

func (e *ParseError) Unwrap() error { return e.Err }

const excerptLen = 200

// Client talks to the storefront API. One client per test scope; the
// zero state is Unauthenticated and only Login moves it forward.
type Client struct {
	baseURL  string
	username string
	key      string
	http     *http.Client
	token    string
	log      *zap.Logger
}

// New creates an unauthenticated client.
func New(baseURL, username, key string, logger *zap.Logger) *Client {
	if logger == nil {
		logger, _ = zap.NewDevelopment()
	}
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		username: username,
		key:      key,
		http:     &http.Client{Jar: jar},
		log:      logger,
	}
}

// Token returns the current session token; empty before Login.
func (c *Client) Token() string { return c.token }

// routeURL builds the index.php route URL for an API route name.
func (c *Client) routeURL(route string) string {
	route = strings.TrimPrefix(route, "/")
	if strings.HasPrefix(route, "index.php") {
		return c.baseURL + "/" + route
	}
	return c.baseURL + "/index.php?route=" + route
}

// Login posts the API credentials and stores the session token. A body
// carrying an "error" field is a failure regardless of HTTP status; a
// body with neither "error" nor "api_token" violates the API contract
// and is reported as such.
func (c *Client) Login() error {
	route := "api/account/login"
	c.log.Info("logging in to api", zap.String("username", c.username))

	form := url.Values{}
	form.Set("username", c.username)
	form.Set("key", c.key)

	body, err := c.postForm(route, form)
	if err != nil {
		return err
	}

	var resp map[string]any
	if err := decodeBody(route, body, &resp); err != nil {
		return err
	}

	if detail, ok := errorField(resp); ok {
		return &APIError{Route: route, Detail: detail}
	}

	token, ok := resp["api_token"].(string)
	if !ok || token == "" {
		return fmt.Errorf("login response from %s has neither error nor api_token", route)
	}

	c.token = token
	c.setSessionCookie(token)
	c.log.Info("api login successful")
	return nil
}

// setSessionCookie plants the OCSESSID cookie the storefront expects on
// authenticated calls.
func (c *Client) setSessionCookie(token string) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return
	}
	c.http.Jar.SetCookies(u, []*http.Cookie{{
		Name:  "OCSESSID",
		Value: token,
		Path:  "/",
	}})
}

// ensureAuthenticated gates every call after Login.
func (c *Client) ensureAuthenticated() error {
	if c.token == "" {
		return ErrNotAuthenticated
	}
	return nil
}

// postForm sends a form-encoded POST and returns the raw body. Login
// uses it directly; everything else goes through post, which checks
// authentication first.
func (c *Client) postForm(route string, form url.Values) ([]byte, error) {
	u := c.routeURL(route)
	resp, err := c.http.PostForm(u, form)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", u, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", u, err)
	}
	c.log.Debug("api response",
		zap.String("route", route),
		zap.Int("status", resp.StatusCode),
		zap.String("body", excerpt(body)),
	)
	return body, nil
}

func (c *Client) post(route string, form url.Values) ([]byte, error) {
	if err := c.ensureAuthenticated(); err != nil {
		return nil, err
	}
	if form == nil {
		form = url.Values{}
	}
	form.Set("api_token", c.token)
	return c.postForm(route, form)
}

func (c *Client) get(route string) ([]byte, error) {
	if err := c.ensureAuthenticated(); err != nil {
		return nil, err
	}
	u := c.routeURL(route) + "&api_token=" + url.QueryEscape(c.token)
	resp, err := c.http.Get(u)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", u, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", u, err)
	}
	c.log.Debug("api response",
		zap.String("route", route),
		zap.Int("status", resp.StatusCode),
		zap.String("body", excerpt(body)),
	)
	return body, nil
}

// decodeBody parses a JSON body, reporting malformed content with a
// truncated excerpt.
func decodeBody(route string, body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return &ParseError{Route: route, Excerpt: excerpt(body), Err: err}
	}
	return nil
}

func excerpt(body []byte) string {
	s := string(body)
	if len(s) > excerptLen {
		s = s[:excerptLen] + "..."
	}
	return s
}

// errorField extracts OpenCart's in-band error, which may be a string,
// a list, or a map depending on the endpoint.
func errorField(resp map[string]any) (string, bool) {
	raw, ok := resp["error"]
	if !ok {
		return "", false
	}
	switch v := raw.(type) {
	case string:
		return v, true
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, "; "), true
	case map[string]any:
		parts := make([]string, 0, len(v))
		for k, item := range v {
			parts = append(parts, fmt.Sprintf("%s: %v", k, item))
		}
		return strings.Join(parts, "; "), true
	default:
		return fmt.Sprint(v), true
	}
}

// AssertSuccess errors when the response body carries an in-band error,
// in any shape.
func AssertSuccess(route string, resp map[string]any) error {
	if detail, ok := errorField(resp); ok {
		return &APIError{Route: route, Detail: detail}
	}
	return nil
}

// ---------- Cart ----------

// Cart returns the current cart contents. An empty response body is an
// empty cart (the storefront responds that way before the first add);
// malformed non-empty JSON is a parse error, never silently defaulted.
func (c *Client) Cart() (*Cart, error) {
	route := "api/sale/cart"
	body, err := c.get(route)
	if err != nil {
		return nil, err
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		return emptyCart(), nil
	}

	var cart Cart
	if err := decodeBody(route, body, &cart); err != nil {
		return nil, err
	}
	if cart.Products == nil {
		cart.Products = []LineItem{}
	}
	if cart.Totals == nil {
		cart.Totals = []Total{}
	}
	if cart.Vouchers == nil {
		cart.Vouchers = []any{}
	}
	return &cart, nil
}

// AddToCart adds quantity units of a product.
func (c *Client) AddToCart(productID, quantity int) (map[string]any, error) {
	route := "api/sale/cart.add"
	c.log.Info("adding product to cart",
		zap.Int("product_id", productID),
		zap.Int("quantity", quantity),
	)

	form := url.Values{}
	form.Set("product_id", strconv.Itoa(productID))
	form.Set("quantity", strconv.Itoa(quantity))

	body, err := c.post(route, form)
	if err != nil {
		return nil, err
	}
	var resp map[string]any
	if err := decodeBody(route, body, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// RemoveFromCart removes one cart line item. cartID is the
// server-assigned line-item identifier from Cart (the cart_id field),
// never the product id; the wire protocol calls the same value "key".
func (c *Client) RemoveFromCart(cartID string) (map[string]any, error) {
	route := "api/sale/cart.remove"
	c.log.Info("removing cart line item", zap.String("cart_id", cartID))

	form := url.Values{}
	form.Set("key", cartID)

	body, err := c.post(route, form)
	if err != nil {
		return nil, err
	}
	var resp map[string]any
	if err := decodeBody(route, body, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// ClearCart removes every line item currently in the cart.
func (c *Client) ClearCart() error {
	cart, err := c.Cart()
	if err != nil {
		return err
	}
	for _, item := range cart.Products {
		resp, err := c.RemoveFromCart(item.CartID)
		if err != nil {
			return err
		}
		if err := AssertSuccess("api/sale/cart.remove", resp); err != nil {
			return err
		}
	}
	return nil
}

// ---------- Customer / order ----------

// SetCustomer sets the customer on the current API session.
func (c *Client) SetCustomer(fields map[string]string) (map[string]any, error) {
	route := "api/sale/customer"
	form := url.Values{}
	for k, v := range fields {
		form.Set(k, v)
	}
	body, err := c.post(route, form)
	if err != nil {
		return nil, err
	}
	var resp map[string]any
	if err := decodeBody(route, body, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// LoadOrder loads an order into the current API session.
func (c *Client) LoadOrder(orderID int) (map[string]any, error) {
	route := "api/sale/order.load"
	form := url.Values{}
	form.Set("order_id", strconv.Itoa(orderID))
	body, err := c.post(route, form)
	if err != nil {
		return nil, err
	}
	var resp map[string]any
	if err := decodeBody(route, body, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}
