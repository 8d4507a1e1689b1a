package harness_test

import (
	"os"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storeqa/storeqa/internal/config"
	"github.com/storeqa/storeqa/internal/harness"
)

// The suite needs a live storefront and browser binaries, so it is
// opt-in: point STOREQA_CONFIG at a configuration file to run it.
func liveHarness(t *testing.T) *harness.Harness {
	t.Helper()
	godotenv.Load()

	path := os.Getenv("STOREQA_CONFIG")
	if path == "" {
		t.Skip("STOREQA_CONFIG not set; live storefront required")
	}
	cfg, err := config.Load(path)
	require.NoError(t, err)

	logger, err := zap.NewDevelopment()
	require.NoError(t, err)
	return harness.New(cfg, logger)
}

func liveSession(t *testing.T) *harness.Session {
	t.Helper()
	h := liveHarness(t)

	sess, err := h.NewSession()
	require.NoError(t, err)
	t.Cleanup(sess.Release)
	sess.CaptureOnFailure(t)
	return sess
}

func TestHomepageLoads(t *testing.T) {
	sess := liveSession(t)

	require.NoError(t, sess.Home.Open())
	assert.NoError(t, sess.Home.VerifyLoaded())
	assert.NoError(t, sess.Home.VerifySearchBoxVisible())
	assert.NoError(t, sess.Home.VerifyCartVisible())
	assert.NoError(t, sess.Home.VerifyProductsDisplayed(1))
}

func TestSearchNavigatesToResults(t *testing.T) {
	sess := liveSession(t)

	require.NoError(t, sess.Home.Open())
	require.NoError(t, sess.Home.SearchProduct("MacBook"))
	assert.NoError(t, sess.Home.VerifyOnSearchResults())
}

func TestLoginPageReachableFromHeader(t *testing.T) {
	sess := liveSession(t)

	require.NoError(t, sess.Home.Open())
	require.NoError(t, sess.Home.ClickLogin())
	assert.NoError(t, sess.Login.VerifyLoaded())
	assert.NoError(t, sess.Login.VerifyForgottenPasswordVisible())
}

func TestLoginRejectsInvalidCredentials(t *testing.T) {
	sess := liveSession(t)

	require.NoError(t, sess.Login.Open())
	require.NoError(t, sess.Login.Login("nobody@example.com", "wrong-password"))
	assert.NoError(t, sess.Login.VerifyLoginError())

	msg, err := sess.Login.ErrorMessage()
	require.NoError(t, err)
	assert.NotEmpty(t, msg)
}

func TestLoginWithConfiguredCustomer(t *testing.T) {
	h := liveHarness(t)
	creds := h.Config().Credentials
	if creds.CustomerEmail == "" || creds.CustomerPassword == "" {
		t.Skip("customer credentials not configured")
	}

	sess, err := h.NewSession()
	require.NoError(t, err)
	t.Cleanup(sess.Release)
	sess.CaptureOnFailure(t)

	require.NoError(t, sess.Login.Open())
	require.NoError(t, sess.Login.Login(creds.CustomerEmail, creds.CustomerPassword))
	assert.NoError(t, sess.Login.VerifyLoginSuccessful())
}

func TestCartFlowOverAPI(t *testing.T) {
	h := liveHarness(t)
	if h.Config().API.Key == "" {
		t.Skip("api key not configured")
	}

	client := h.APIClient()
	require.NoError(t, client.Login())
	require.NoError(t, client.ClearCart())

	_, err := client.AddToCart(43, 2)
	require.NoError(t, err)

	cart, err := client.Cart()
	require.NoError(t, err)
	require.Len(t, cart.Products, 1)
	assert.Equal(t, "2", cart.Products[0].Quantity)

	require.NoError(t, client.ClearCart())
	cart, err = client.Cart()
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}
