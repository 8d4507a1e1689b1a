package webdriver_test

import (
	"os"
	"sort"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storeqa/storeqa/internal/artifacts"
	"github.com/storeqa/storeqa/internal/config"
	"github.com/storeqa/storeqa/internal/locators"
	"github.com/storeqa/storeqa/internal/webdriver"
)

// The grid suite needs a reachable Selenoid hub and storefront, so it
// is opt-in behind the same STOREQA_CONFIG gate as the harness suite.
// Each test runs once per configured grid browser.
func liveConfig(t *testing.T) *config.Config {
	t.Helper()
	godotenv.Load()

	path := os.Getenv("STOREQA_CONFIG")
	if path == "" {
		t.Skip("STOREQA_CONFIG not set; live grid required")
	}
	cfg, err := config.Load(path)
	require.NoError(t, err)

	if len(cfg.Selenoid.Browsers) == 0 {
		t.Skip("no selenoid browsers configured")
	}
	return cfg
}

func gridBrowsers(cfg *config.Config) []string {
	names := make([]string, 0, len(cfg.Selenoid.Browsers))
	for name := range cfg.Selenoid.Browsers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// liveSession starts a remote session and registers teardown: a
// screenshot when the test failed, then the grid slot release. Capture
// problems are logged, never failures of their own.
func liveSession(t *testing.T, cfg *config.Config, browserName string) *webdriver.Session {
	t.Helper()

	logger, err := zap.NewDevelopment()
	require.NoError(t, err)

	sess, err := webdriver.NewSession(cfg, browserName, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		if t.Failed() && cfg.TestSettings.ScreenshotOnFailure {
			if _, err := sess.Screenshot(artifacts.Name(t.Name(), "")); err != nil {
				t.Logf("failure screenshot not captured: %v", err)
			}
		}
		if err := sess.Quit(); err != nil {
			t.Logf("quitting remote session: %v", err)
		}
	})
	return sess
}

func TestHomepageOnGrid(t *testing.T) {
	cfg := liveConfig(t)
	for _, name := range gridBrowsers(cfg) {
		t.Run(name, func(t *testing.T) {
			sess := liveSession(t, cfg, name)

			require.NoError(t, sess.Open("/"))
			require.NoError(t, sess.WaitVisible(locators.Home.Logo))

			assert.True(t, sess.IsDisplayed(locators.Home.SearchInput))
			assert.True(t, sess.IsDisplayed(locators.Home.CartButton))

			title, err := sess.Title()
			require.NoError(t, err)
			assert.Equal(t, "Your Store", title)
		})
	}
}

func TestSearchOnGrid(t *testing.T) {
	cfg := liveConfig(t)
	for _, name := range gridBrowsers(cfg) {
		t.Run(name, func(t *testing.T) {
			sess := liveSession(t, cfg, name)

			require.NoError(t, sess.Open("/"))
			require.NoError(t, sess.WaitVisible(locators.Home.SearchInput))
			require.NoError(t, sess.Fill(locators.Home.SearchInput, "MacBook"))
			require.NoError(t, sess.Click(locators.Home.SearchButton))
			require.NoError(t, sess.WaitVisible("#content"))

			url, err := sess.CurrentURL()
			require.NoError(t, err)
			assert.Contains(t, url, "search")
		})
	}
}

func TestFeaturedProductsOnGrid(t *testing.T) {
	cfg := liveConfig(t)
	for _, name := range gridBrowsers(cfg) {
		t.Run(name, func(t *testing.T) {
			sess := liveSession(t, cfg, name)

			require.NoError(t, sess.Open("/"))
			require.NoError(t, sess.WaitVisible(locators.Home.FeaturedProducts))

			product, err := sess.Text(locators.Home.ProductName)
			require.NoError(t, err)
			assert.NotEmpty(t, product)
		})
	}
}

func TestLoginRejectsInvalidCredentialsOnGrid(t *testing.T) {
	cfg := liveConfig(t)
	for _, name := range gridBrowsers(cfg) {
		t.Run(name, func(t *testing.T) {
			sess := liveSession(t, cfg, name)

			require.NoError(t, sess.Open("/index.php?route=account/login"))
			require.NoError(t, sess.WaitVisible(locators.Login.EmailInput))
			require.NoError(t, sess.Fill(locators.Login.EmailInput, "nobody@example.com"))
			require.NoError(t, sess.Fill(locators.Login.PasswordInput, "wrong-password"))
			require.NoError(t, sess.Click(locators.Login.LoginButton))
			require.NoError(t, sess.WaitVisible(locators.Login.AlertDanger))

			msg, err := sess.Text(locators.Login.AlertDanger)
			require.NoError(t, err)
			assert.NotEmpty(t, msg)
		})
	}
}
