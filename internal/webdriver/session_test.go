package webdriver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeqa/storeqa/internal/config"
)

func gridConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Application.BaseURL = "http://shop.local/"
	cfg.Selenoid.Browsers = map[string]config.SelenoidBrowser{
		"chrome": {
			Version: "120.0",
			Options: map[string]any{
				"enableVNC":   true,
				"enableVideo": false,
			},
		},
		"firefox": {},
	}
	return cfg
}

func TestCapabilitiesChrome(t *testing.T) {
	caps, err := Capabilities(gridConfig(), "chrome")
	require.NoError(t, err)

	assert.Equal(t, "chrome", caps["browserName"])
	assert.Equal(t, "120.0", caps["browserVersion"])

	opts, ok := caps["selenoid:options"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, opts["enableVNC"])

	assert.Contains(t, caps, "goog:chromeOptions")
}

func TestCapabilitiesFirefoxDefaultsVersion(t *testing.T) {
	caps, err := Capabilities(gridConfig(), "firefox")
	require.NoError(t, err)

	assert.Equal(t, "firefox", caps["browserName"])
	assert.Equal(t, "latest", caps["browserVersion"])
	assert.NotContains(t, caps, "selenoid:options")
}

func TestCapabilitiesUnknownBrowser(t *testing.T) {
	_, err := Capabilities(gridConfig(), "safari")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedBrowser)
}

func TestCapabilitiesUnconfiguredBrowserStillBuilds(t *testing.T) {
	cfg := &config.Config{}
	cfg.Application.BaseURL = "http://shop.local/"

	caps, err := Capabilities(cfg, "chrome")
	require.NoError(t, err)
	assert.Equal(t, "latest", caps["browserVersion"])
	assert.Contains(t, caps, "goog:chromeOptions")
}
