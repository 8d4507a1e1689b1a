// Command smoke runs a quick end-to-end pass over the storefront API:
// login, cart add, cart verification, cleanup. It is the fastest way to
// check that a deployed store and its API credentials are healthy
// before pointing the full suite at them.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/storeqa/storeqa/internal/api"
	"github.com/storeqa/storeqa/internal/config"
)

var (
	green  = color.New(color.FgGreen, color.Bold)
	red    = color.New(color.FgRed, color.Bold)
	yellow = color.New(color.FgYellow, color.Bold)
	cyan   = color.New(color.FgCyan, color.Bold)
)

func main() {
	godotenv.Load()

	configPath := flag.String("config", "config/config.yaml", "Path to suite configuration")
	productID := flag.Int("product", 43, "Product ID to exercise the cart with")
	quantity := flag.Int("quantity", 1, "Quantity to add")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	var logger *zap.Logger
	if *verbose {
		logger, _ = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.OutputPaths = []string{"/dev/null"}
		logger, _ = cfg.Build()
	}
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		red.Printf("✗ configuration: %v\n", err)
		os.Exit(1)
	}

	cyan.Println("storefront API smoke check")
	fmt.Printf("  target: %s\n\n", cfg.Application.BaseURL)

	bar := progressbar.NewOptions(5,
		progressbar.OptionSetDescription("running"),
		progressbar.OptionClearOnFinish(),
	)

	client := api.New(cfg.Application.BaseURL, cfg.API.Username, cfg.API.Key, logger)
	start := time.Now()

	step := func(name string, fn func() error) {
		if err := fn(); err != nil {
			fmt.Println()
			red.Printf("✗ %s: %v\n", name, err)
			os.Exit(1)
		}
		bar.Add(1)
		green.Printf("✓ %s\n", name)
	}

	step("login", client.Login)

	step("clear cart", client.ClearCart)

	step("add to cart", func() error {
		resp, err := client.AddToCart(*productID, *quantity)
		if err != nil {
			return err
		}
		return api.AssertSuccess("api/sale/cart.add", resp)
	})

	var lineItems []api.LineItem
	step("verify cart", func() error {
		cart, err := client.Cart()
		if err != nil {
			return err
		}
		if len(cart.Products) != 1 {
			return fmt.Errorf("expected 1 line item, got %d", len(cart.Products))
		}
		want := fmt.Sprintf("%d", *quantity)
		if cart.Products[0].Quantity != want {
			return fmt.Errorf("expected quantity %q, got %q", want, cart.Products[0].Quantity)
		}
		lineItems = cart.Products
		return nil
	})

	step("cleanup", func() error {
		for _, item := range lineItems {
			resp, err := client.RemoveFromCart(item.CartID)
			if err != nil {
				return err
			}
			if err := api.AssertSuccess("api/sale/cart.remove", resp); err != nil {
				return err
			}
		}
		return nil
	})

	fmt.Println()
	green.Printf("store is healthy")
	yellow.Printf("  (%s)\n", time.Since(start).Round(time.Millisecond))
}
