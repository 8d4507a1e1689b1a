package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
application:
  base_url: "http://shop.local/"
  admin_url: "http://shop.local/admin/"
credentials:
  customer_email: "buyer@shop.local"
  customer_password: "hunter2"
selenium:
  browser: "firefox"
  headless: true
  window_width: 1280
  window_height: 720
timeouts:
  default: 25
test_settings:
  screenshot_on_failure: true
  screenshot_folder: "out/shots"
api:
  username: "api_user"
  key: "sekrit"
selenoid:
  hub_url: "http://grid.local:4444/wd/hub"
  browsers:
    chrome:
      version: "120.0"
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "http://shop.local/", cfg.Application.BaseURL)
	assert.Equal(t, "buyer@shop.local", cfg.Credentials.CustomerEmail)
	assert.Equal(t, "firefox", cfg.Selenium.Browser)
	assert.True(t, cfg.Selenium.Headless)
	assert.Equal(t, 25*time.Second, cfg.Timeouts.Default())
	assert.Equal(t, "out/shots", cfg.ScreenshotFolder())
	assert.Equal(t, "sekrit", cfg.API.Key)
	assert.Equal(t, "http://grid.local:4444/wd/hub", cfg.Selenoid.Hub())
	assert.Equal(t, "120.0", cfg.Selenoid.Browsers["chrome"].Version)
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("application: [not a map"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing yaml")
}

func TestValidateRequiresBaseURL(t *testing.T) {
	_, err := Parse([]byte("timeouts:\n  default: 5\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "application.base_url is required")
}

func TestValidateRejectsUnknownBrowser(t *testing.T) {
	yaml := `
application:
  base_url: "http://shop.local/"
selenium:
  browser: "netscape"
`
	_, err := Parse([]byte(yaml))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported browser: "netscape"`)
}

func TestValidateRejectsUnknownSelenoidBrowser(t *testing.T) {
	yaml := `
application:
  base_url: "http://shop.local/"
selenoid:
  browsers:
    opera:
      version: "latest"
`
	_, err := Parse([]byte(yaml))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported selenoid browser")
}

func TestSeleniumDriverTimeouts(t *testing.T) {
	yaml := `
application:
  base_url: "http://shop.local/"
selenium:
  implicit_wait: 7
  page_load_timeout: 45
`
	cfg, err := Parse([]byte(yaml))
	require.NoError(t, err)
	assert.Equal(t, 7*time.Second, cfg.Selenium.ImplicitWaitDuration())
	assert.Equal(t, 45*time.Second, cfg.Selenium.PageLoadTimeoutDuration())

	// Unset values fall back to the driver defaults.
	assert.Equal(t, 10*time.Second, SeleniumConfig{}.ImplicitWaitDuration())
	assert.Equal(t, 30*time.Second, SeleniumConfig{}.PageLoadTimeoutDuration())
}

func TestTimeoutDefaultFallback(t *testing.T) {
	assert.Equal(t, 10*time.Second, TimeoutConfig{}.Default())
	assert.Equal(t, 10*time.Second, TimeoutConfig{DefaultSeconds: -3}.Default())
	assert.Equal(t, 2*time.Second, TimeoutConfig{DefaultSeconds: 2}.Default())
}

func TestDefaults(t *testing.T) {
	cfg, err := Parse([]byte("application:\n  base_url: \"http://shop.local/\"\n"))
	require.NoError(t, err)

	assert.Equal(t, "reports/screenshots", cfg.ScreenshotFolder())
	assert.Equal(t, "http://localhost:4444/wd/hub", cfg.Selenoid.Hub())
	assert.Equal(t, 10*time.Second, cfg.Timeouts.Default())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("NGROK_USER", "tunnel")
	t.Setenv("NGROK_PASS", "tunnelpass")
	t.Setenv("OLLAMA_HOST", "http://ollama.local:11434")

	cfg, err := Parse([]byte("application:\n  base_url: \"http://shop.local/\"\n"))
	require.NoError(t, err)

	assert.Equal(t, "tunnel", cfg.Env.NgrokUser)
	assert.Equal(t, "tunnelpass", cfg.Env.NgrokPass)
	assert.Equal(t, "http://ollama.local:11434", cfg.AI.OllamaHost)
}

func TestSupportedBrowser(t *testing.T) {
	assert.True(t, SupportedBrowser("chrome"))
	assert.True(t, SupportedBrowser("Firefox"))
	assert.False(t, SupportedBrowser("safari"))
	assert.False(t, SupportedBrowser(""))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("does/not/exist.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}
