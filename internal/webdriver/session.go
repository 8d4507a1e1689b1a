// Package webdriver is the remote-driver automation backend. Sessions
// run against a Selenoid grid over the WebDriver protocol; the grid
// itself is an external service. The backend shares the locator tables
// with the evented backend but carries a smaller verb set, matching
// what the remote suites exercise.
package webdriver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"github.com/tebeka/selenium/firefox"
	"go.uber.org/zap"

	"github.com/storeqa/storeqa/internal/config"
	"github.com/storeqa/storeqa/internal/observability"
)

// ErrUnsupportedBrowser mirrors the evented backend's eager
// session-setup failure for unknown browser names.
var ErrUnsupportedBrowser = errors.New("unsupported browser")

// Session wraps one remote WebDriver session. Constructed per test; a
// failed session start is fatal to that test only, not the run.
type Session struct {
	wd      selenium.WebDriver
	baseURL string
	timeout time.Duration
	shotDir string
	log     *zap.Logger

	quitOnce sync.Once
	quitErr  error
}

// Capabilities builds the WebDriver capabilities for a named browser
// from the grid configuration. Exposed for tests; NewSession calls it.
func Capabilities(cfg *config.Config, browserName string) (selenium.Capabilities, error) {
	browser := cfg.Selenoid.Browsers[browserName]
	version := browser.Version
	if version == "" {
		version = "latest"
	}

	caps := selenium.Capabilities{
		"browserName":    browserName,
		"browserVersion": version,
	}
	if len(browser.Options) > 0 {
		caps["selenoid:options"] = browser.Options
	}

	switch strings.ToLower(browserName) {
	case config.BrowserChrome:
		caps.AddChrome(chrome.Capabilities{
			Args: []string{
				"--no-sandbox",
				"--disable-dev-shm-usage",
				"--disable-blink-features=AutomationControlled",
			},
		})
	case config.BrowserFirefox:
		caps.AddFirefox(firefox.Capabilities{})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBrowser, browserName)
	}

	return caps, nil
}

// NewSession creates a remote session on the grid for the given
// browser name.
func NewSession(cfg *config.Config, browserName string, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger, _ = zap.NewDevelopment()
	}
	metrics := observability.Default()

	caps, err := Capabilities(cfg, browserName)
	if err != nil {
		metrics.SessionsFailed.Inc()
		return nil, err
	}

	hub := cfg.Selenoid.Hub()
	wd, err := selenium.NewRemote(caps, hub)
	if err != nil {
		metrics.SessionsFailed.Inc()
		return nil, fmt.Errorf("creating remote session on %s: %w", hub, err)
	}

	if err := wd.SetImplicitWaitTimeout(cfg.Selenium.ImplicitWaitDuration()); err != nil {
		logger.Warn("setting implicit wait", zap.Error(err))
	}
	if err := wd.SetPageLoadTimeout(cfg.Selenium.PageLoadTimeoutDuration()); err != nil {
		logger.Warn("setting page load timeout", zap.Error(err))
	}
	if err := wd.MaximizeWindow(""); err != nil {
		logger.Debug("maximizing window", zap.Error(err))
	}

	metrics.SessionsStarted.Inc()
	logger.Debug("remote session started",
		zap.String("hub", hub),
		zap.String("browser", browserName),
	)

	return &Session{
		wd:      wd,
		baseURL: strings.TrimSuffix(cfg.Application.BaseURL, "/"),
		timeout: cfg.Timeouts.Default(),
		shotDir: cfg.ScreenshotFolder(),
		log:     logger,
	}, nil
}

// Quit ends the remote session. Idempotent; always run it via defer so
// the grid slot is released even when the test body fails.
func (s *Session) Quit() error {
	s.quitOnce.Do(func() {
		s.quitErr = s.wd.Quit()
	})
	return s.quitErr
}

// Driver exposes the underlying WebDriver for operations outside the
// verb set.
func (s *Session) Driver() selenium.WebDriver { return s.wd }

// Open navigates to baseURL+path (or an absolute URL).
func (s *Session) Open(path string) error {
	url := path
	if !strings.HasPrefix(path, "http") {
		url = s.baseURL + path
	}
	s.log.Debug("navigating", zap.String("url", url))
	if err := s.wd.Get(url); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

func (s *Session) find(selector string) (selenium.WebElement, error) {
	return s.wd.FindElement(selenium.ByCSSSelector, selector)
}

// Click clicks the first element matching the CSS selector.
func (s *Session) Click(selector string) error {
	el, err := s.find(selector)
	if err != nil {
		return fmt.Errorf("click %q: %w", selector, err)
	}
	if err := el.Click(); err != nil {
		return fmt.Errorf("click %q: %w", selector, err)
	}
	return nil
}

// Fill clears the field and types text; prior content never survives.
func (s *Session) Fill(selector, text string) error {
	el, err := s.find(selector)
	if err != nil {
		return fmt.Errorf("fill %q: %w", selector, err)
	}
	if err := el.Clear(); err != nil {
		return fmt.Errorf("fill %q: clearing: %w", selector, err)
	}
	if err := el.SendKeys(text); err != nil {
		return fmt.Errorf("fill %q: %w", selector, err)
	}
	return nil
}

// Text returns the visible text of the first matching element.
func (s *Session) Text(selector string) (string, error) {
	el, err := s.find(selector)
	if err != nil {
		return "", fmt.Errorf("text of %q: %w", selector, err)
	}
	return el.Text()
}

// IsDisplayed reports element visibility; driver errors read as false.
func (s *Session) IsDisplayed(selector string) bool {
	el, err := s.find(selector)
	if err != nil {
		return false
	}
	displayed, err := el.IsDisplayed()
	return err == nil && displayed
}

// WaitVisible blocks until the element is displayed, or errors at the
// timeout.
func (s *Session) WaitVisible(selector string, timeout ...time.Duration) error {
	d := s.timeout
	if len(timeout) > 0 && timeout[0] > 0 {
		d = timeout[0]
	}
	err := s.wd.WaitWithTimeout(func(wd selenium.WebDriver) (bool, error) {
		el, err := wd.FindElement(selenium.ByCSSSelector, selector)
		if err != nil {
			return false, nil
		}
		return el.IsDisplayed()
	}, d)
	if err != nil {
		return fmt.Errorf("waiting for %q to be visible: %w", selector, err)
	}
	return nil
}

// CurrentURL returns the browser's current URL.
func (s *Session) CurrentURL() (string, error) { return s.wd.CurrentURL() }

// Title returns the current page title.
func (s *Session) Title() (string, error) { return s.wd.Title() }

// Screenshot writes a screenshot under the configured folder and
// returns its path. Failure-path callers treat errors as log-only.
func (s *Session) Screenshot(name string) (string, error) {
	data, err := s.wd.Screenshot()
	if err != nil {
		return "", fmt.Errorf("capturing screenshot: %w", err)
	}
	if !strings.HasSuffix(name, ".png") {
		name += ".png"
	}
	path := filepath.Join(s.shotDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating screenshot dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing screenshot: %w", err)
	}
	observability.Default().ScreenshotsCaptured.Inc()
	return path, nil
}
