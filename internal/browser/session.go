package browser

import (
	"fmt"
	"strings"
	"sync"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"github.com/storeqa/storeqa/internal/config"
	"github.com/storeqa/storeqa/internal/observability"
)

// Session owns one live browser automation session: the Playwright
// runtime, a browser, one context, and one page. A session is
// constructed per test and never shared; Close is safe to call more
// than once and is expected to run via defer even when the test body
// fails.
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    *Page

	tracing bool
	log     *zap.Logger

	closeOnce sync.Once
	closeErr  error
}

// SessionOptions tune per-session behavior beyond the config file.
type SessionOptions struct {
	// Trace enables context tracing; the trace is written on demand by
	// StopTrace, typically from the failure-capture hook.
	Trace bool
}

// NewSession launches a browser per the configuration and returns a
// ready session. Unsupported browser names fail here, before any test
// logic runs.
func NewSession(cfg *config.Config, logger *zap.Logger, opts SessionOptions) (*Session, error) {
	if logger == nil {
		logger, _ = zap.NewDevelopment()
	}
	metrics := observability.Default()

	pw, err := playwright.Run()
	if err != nil {
		metrics.SessionsFailed.Inc()
		return nil, fmt.Errorf("starting playwright: %w", err)
	}

	browserType, err := browserTypeFor(pw, cfg.Selenium.Browser)
	if err != nil {
		pw.Stop()
		metrics.SessionsFailed.Inc()
		return nil, err
	}

	b, err := browserType.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Selenium.Headless),
	})
	if err != nil {
		pw.Stop()
		metrics.SessionsFailed.Inc()
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	ctxOpts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  viewportDim(cfg.Selenium.WindowWidth, 1920),
			Height: viewportDim(cfg.Selenium.WindowHeight, 1080),
		},
	}

	// Tunneled endpoints sit behind HTTP basic auth in CI.
	if cfg.Env.NgrokUser != "" && cfg.Env.NgrokPass != "" {
		ctxOpts.HttpCredentials = &playwright.HttpCredentials{
			Username: cfg.Env.NgrokUser,
			Password: cfg.Env.NgrokPass,
		}
	}

	ctx, err := b.NewContext(ctxOpts)
	if err != nil {
		b.Close()
		pw.Stop()
		metrics.SessionsFailed.Inc()
		return nil, fmt.Errorf("creating browser context: %w", err)
	}

	if opts.Trace {
		if err := ctx.Tracing().Start(playwright.TracingStartOptions{
			Screenshots: playwright.Bool(true),
			Snapshots:   playwright.Bool(true),
		}); err != nil {
			logger.Warn("failed to start tracing", zap.Error(err))
			opts.Trace = false
		}
	}

	pwPage, err := ctx.NewPage()
	if err != nil {
		ctx.Close()
		b.Close()
		pw.Stop()
		metrics.SessionsFailed.Inc()
		return nil, fmt.Errorf("creating page: %w", err)
	}

	metrics.SessionsStarted.Inc()
	logger.Debug("browser session started",
		zap.String("browser", cfg.Selenium.Browser),
		zap.Bool("headless", cfg.Selenium.Headless),
	)

	return &Session{
		pw:      pw,
		browser: b,
		context: ctx,
		page:    NewPage(pwPage, cfg, logger),
		tracing: opts.Trace,
		log:     logger,
	}, nil
}

// Page returns the session's page abstraction.
func (s *Session) Page() *Page { return s.page }

// Context returns the underlying browser context, for callers that need
// cookies or storage state directly.
func (s *Session) Context() playwright.BrowserContext { return s.context }

// StopTrace writes the trace archive to path. Only meaningful when the
// session was created with Trace enabled.
func (s *Session) StopTrace(path string) error {
	if !s.tracing {
		return nil
	}
	s.tracing = false
	if err := s.context.Tracing().Stop(path); err != nil {
		return fmt.Errorf("stopping trace: %w", err)
	}
	return nil
}

// Close tears the session down: page, context, browser, runtime. It is
// idempotent so both an explicit call and a deferred one are safe.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if s.page != nil {
			if err := s.page.close(); err != nil {
				s.log.Warn("closing page", zap.Error(err))
			}
		}
		if s.context != nil {
			if err := s.context.Close(); err != nil {
				s.log.Warn("closing browser context", zap.Error(err))
			}
		}
		if s.browser != nil {
			if err := s.browser.Close(); err != nil {
				s.log.Warn("closing browser", zap.Error(err))
			}
		}
		if s.pw != nil {
			s.closeErr = s.pw.Stop()
		}
	})
	return s.closeErr
}

func browserTypeFor(pw *playwright.Playwright, name string) (playwright.BrowserType, error) {
	switch strings.ToLower(name) {
	case config.BrowserChrome, "chromium", "":
		return pw.Chromium, nil
	case config.BrowserFirefox:
		return pw.Firefox, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBrowser, name)
	}
}

func viewportDim(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
