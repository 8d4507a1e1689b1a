// Package harness wires the test lifecycle: one isolated automation
// session per test, ready-made page objects, and failure capture.
// Everything is explicit: tests acquire sessions and register the
// failure observer themselves instead of relying on naming-convention
// magic.
package harness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storeqa/storeqa/internal/api"
	"github.com/storeqa/storeqa/internal/artifacts"
	"github.com/storeqa/storeqa/internal/browser"
	"github.com/storeqa/storeqa/internal/config"
	"github.com/storeqa/storeqa/internal/pages"
)

// Harness holds the per-process pieces: the immutable configuration,
// the logger, and the artifact store. One harness serves a whole test
// binary; sessions are created per test from it.
type Harness struct {
	cfg   *config.Config
	log   *zap.Logger
	store *artifacts.Store

	// RunID tags every artifact from this process, so parallel workers
	// never collide on artifact names.
	RunID string
}

// New builds a harness from a loaded configuration.
func New(cfg *config.Config, logger *zap.Logger) *Harness {
	if logger == nil {
		logger, _ = zap.NewDevelopment()
	}
	return &Harness{
		cfg:   cfg,
		log:   logger,
		store: artifacts.NewStore(cfg, logger),
		RunID: uuid.NewString(),
	}
}

// Config returns the process configuration (read-only).
func (h *Harness) Config() *config.Config { return h.cfg }

// Logger returns the harness logger.
func (h *Harness) Logger() *zap.Logger { return h.log }

// APIClient builds a fresh unauthenticated API client from the
// configuration.
func (h *Harness) APIClient() *api.Client {
	return api.New(h.cfg.Application.BaseURL, h.cfg.API.Username, h.cfg.API.Key, h.log)
}

// Session is one per-test automation session with its page objects.
// Nothing in it survives the test: cookies, storage, and dialogs die
// with the browser context on Release.
type Session struct {
	Browser *browser.Session
	Home    *pages.HomePage
	Login   *pages.LoginPage

	harness *Harness
	log     *zap.Logger
}

// NewSession starts an isolated browser session and binds the page
// objects. Release must run even when the test body fails; pair every
// successful NewSession with a deferred Release.
func (h *Harness) NewSession() (*Session, error) {
	opts := browser.SessionOptions{Trace: true}
	bs, err := browser.NewSession(h.cfg, h.log, opts)
	if err != nil {
		return nil, fmt.Errorf("starting session: %w", err)
	}

	page := bs.Page()
	return &Session{
		Browser: bs,
		Home:    pages.NewHomePage(page, h.log),
		Login:   pages.NewLoginPage(page, h.log),
		harness: h,
		log:     h.log,
	}, nil
}

// Release tears the session down. Safe to call after a failed test
// body and safe to call twice.
func (s *Session) Release() {
	if err := s.Browser.Close(); err != nil {
		s.log.Warn("closing session", zap.Error(err))
	}
}

// CaptureOnFailure registers the failure observer for a test: when the
// test ends failed, a full-page screenshot and the trace are captured
// before teardown. Capture problems are logged, never raised, so the
// test's own failure stays the headline.
func (s *Session) CaptureOnFailure(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		if !t.Failed() {
			return
		}
		if !s.harness.cfg.TestSettings.ScreenshotOnFailure {
			return
		}
		s.capture(t.Name())
	})
}

// capture saves the diagnostic artifacts for a failed test. Artifact
// names carry the run id so parallel workers sharing a reports
// directory never collide.
func (s *Session) capture(testName string) {
	ctx := context.Background()
	base := fmt.Sprintf("%s_%s", s.harness.RunID[:8], testName)

	path, err := s.Browser.Page().Screenshot(artifacts.Name(base, ""))
	if err != nil {
		s.log.Error("failure screenshot not captured", zap.String("test", testName), zap.Error(err))
	} else {
		s.harness.store.Attach(ctx, path, "image/png")
		s.log.Info("failure screenshot saved", zap.String("path", path))
	}

	tracePath := filepath.Join(s.harness.store.Dir(), artifacts.Name(base, ".trace.zip"))
	if err := os.MkdirAll(filepath.Dir(tracePath), 0o755); err == nil {
		if err := s.Browser.StopTrace(tracePath); err != nil {
			s.log.Warn("failure trace not captured", zap.String("test", testName), zap.Error(err))
		} else {
			s.harness.store.Attach(ctx, tracePath, "application/zip")
		}
	}
}
