package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"github.com/storeqa/storeqa/internal/config"
	"github.com/storeqa/storeqa/internal/observability"
)

// ElementState is the element condition an explicit wait targets.
type ElementState string

const (
	StateAttached ElementState = "attached"
	StateDetached ElementState = "detached"
	StateVisible  ElementState = "visible"
	StateHidden   ElementState = "hidden"
)

// pollInterval is how often Expect* re-checks its condition.
const pollInterval = 100 * time.Millisecond

// Page is the wait/interact/assert abstraction over one live browser
// page. Concrete page objects hold a *Page and a locator table; they do
// not reach into the driver directly.
//
// All waiting operations share one default timeout from the
// configuration; any verb taking a trailing ...time.Duration accepts a
// per-call override.
type Page struct {
	pw      playwright.Page
	baseURL string
	timeout time.Duration
	shotDir string
	log     *zap.Logger
	metrics *observability.Metrics
}

// NewPage wraps a driver page with the suite's timeout policy.
func NewPage(pw playwright.Page, cfg *config.Config, logger *zap.Logger) *Page {
	if logger == nil {
		logger, _ = zap.NewDevelopment()
	}
	p := &Page{
		pw:      pw,
		baseURL: strings.TrimSuffix(cfg.Application.BaseURL, "/"),
		timeout: cfg.Timeouts.Default(),
		shotDir: cfg.ScreenshotFolder(),
		log:     logger,
		metrics: observability.Default(),
	}
	pw.SetDefaultTimeout(ms(p.timeout))
	return p
}

// ms converts a wait duration to the driver's millisecond unit. Every
// seconds-vs-milliseconds conversion in this backend goes through here.
func ms(d time.Duration) float64 { return float64(d.Milliseconds()) }

// deadline resolves the effective timeout for one call.
func (p *Page) deadline(override []time.Duration) time.Duration {
	if len(override) > 0 && override[0] > 0 {
		return override[0]
	}
	return p.timeout
}

// Raw returns the underlying driver page for operations outside the
// verb set. Tests should not need it; page objects may.
func (p *Page) Raw() playwright.Page { return p.pw }

func (p *Page) close() error { return p.pw.Close() }

// ---------- Navigation ----------

// Navigate opens baseURL+path (or an absolute URL) and blocks until the
// page settles (network idle). A page that never settles within the
// timeout is an error, not a partial success.
func (p *Page) Navigate(path string, timeout ...time.Duration) error {
	url := path
	if !strings.HasPrefix(path, "http") {
		url = p.baseURL + path
	}
	start := time.Now()
	p.log.Debug("navigating", zap.String("url", url))

	_, err := p.pw.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(ms(p.deadline(timeout))),
	})
	p.metrics.ObserveAction("navigate", start, err)
	if err != nil {
		return stepFailed("navigate", url, fmt.Errorf("%w: %v", ErrSettleTimeout, err))
	}
	return nil
}

// WaitForLoad blocks until the current page reaches network idle.
func (p *Page) WaitForLoad(timeout ...time.Duration) error {
	err := p.pw.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(ms(p.deadline(timeout))),
	})
	if err != nil {
		return stepFailed("wait for load", "", fmt.Errorf("%w: %v", ErrSettleTimeout, err))
	}
	return nil
}

// Reload reloads the current page and waits for it to settle.
func (p *Page) Reload(timeout ...time.Duration) error {
	start := time.Now()
	_, err := p.pw.Reload(playwright.PageReloadOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(ms(p.deadline(timeout))),
	})
	p.metrics.ObserveAction("reload", start, err)
	if err != nil {
		return stepFailed("reload", "", fmt.Errorf("%w: %v", ErrSettleTimeout, err))
	}
	return nil
}

// GoBack navigates back in history and waits for the page to settle.
func (p *Page) GoBack(timeout ...time.Duration) error {
	start := time.Now()
	_, err := p.pw.GoBack(playwright.PageGoBackOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(ms(p.deadline(timeout))),
	})
	p.metrics.ObserveAction("go_back", start, err)
	if err != nil {
		return stepFailed("go back", "", fmt.Errorf("%w: %v", ErrSettleTimeout, err))
	}
	return nil
}

// GoForward navigates forward in history and waits for the page to
// settle.
func (p *Page) GoForward(timeout ...time.Duration) error {
	start := time.Now()
	_, err := p.pw.GoForward(playwright.PageGoForwardOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(ms(p.deadline(timeout))),
	})
	p.metrics.ObserveAction("go_forward", start, err)
	if err != nil {
		return stepFailed("go forward", "", fmt.Errorf("%w: %v", ErrSettleTimeout, err))
	}
	return nil
}

// ---------- Interaction ----------

// actionable waits for the element to be visible before an interaction
// verb acts on it. The driver's own actionability checks still apply to
// the action itself.
func (p *Page) actionable(verb, selector string, timeout []time.Duration) (playwright.Locator, error) {
	loc := p.pw.Locator(selector)
	err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(ms(p.deadline(timeout))),
	})
	if err != nil {
		return nil, notActionable(verb, selector, err)
	}
	return loc, nil
}

func (p *Page) interact(verb, selector string, timeout []time.Duration, act func(playwright.Locator) error) error {
	start := time.Now()
	loc, err := p.actionable(verb, selector, timeout)
	if err == nil {
		if aerr := act(loc); aerr != nil {
			err = notActionable(verb, selector, aerr)
		}
	}
	p.metrics.ObserveAction(verb, start, err)
	if err != nil {
		return err
	}
	p.log.Debug("action", zap.String("verb", verb), zap.String("selector", selector))
	return nil
}

// Click clicks an element once it is actionable.
func (p *Page) Click(selector string, timeout ...time.Duration) error {
	return p.interact("click", selector, timeout, func(loc playwright.Locator) error {
		return loc.Click()
	})
}

// DoubleClick double-clicks an element once it is actionable.
func (p *Page) DoubleClick(selector string, timeout ...time.Duration) error {
	return p.interact("double_click", selector, timeout, func(loc playwright.Locator) error {
		return loc.Dblclick()
	})
}

// Fill replaces the field's content with text. Prior content is
// cleared by the driver's fill semantics, never appended to.
func (p *Page) Fill(selector, text string, timeout ...time.Duration) error {
	return p.interact("fill", selector, timeout, func(loc playwright.Locator) error {
		return loc.Fill(text)
	})
}

// ClearAndFill clears the field explicitly, then fills it. Equivalent
// to Fill for well-behaved inputs; kept for fields with change handlers
// that react to the empty state.
func (p *Page) ClearAndFill(selector, text string, timeout ...time.Duration) error {
	return p.interact("clear_and_fill", selector, timeout, func(loc playwright.Locator) error {
		if err := loc.Clear(); err != nil {
			return err
		}
		return loc.Fill(text)
	})
}

// PressKey presses a key (e.g. "Enter", "Escape") in an element.
func (p *Page) PressKey(selector, key string, timeout ...time.Duration) error {
	return p.interact("press_key", selector, timeout, func(loc playwright.Locator) error {
		return loc.Press(key)
	})
}

// Hover moves the pointer over an element.
func (p *Page) Hover(selector string, timeout ...time.Duration) error {
	return p.interact("hover", selector, timeout, func(loc playwright.Locator) error {
		return loc.Hover()
	})
}

// SelectOption selects a value in a select element.
func (p *Page) SelectOption(selector, value string, timeout ...time.Duration) error {
	return p.interact("select_option", selector, timeout, func(loc playwright.Locator) error {
		_, err := loc.SelectOption(playwright.SelectOptionValues{Values: &[]string{value}})
		return err
	})
}

// Check checks a checkbox.
func (p *Page) Check(selector string, timeout ...time.Duration) error {
	return p.interact("check", selector, timeout, func(loc playwright.Locator) error {
		return loc.Check()
	})
}

// Uncheck unchecks a checkbox.
func (p *Page) Uncheck(selector string, timeout ...time.Duration) error {
	return p.interact("uncheck", selector, timeout, func(loc playwright.Locator) error {
		return loc.Uncheck()
	})
}

// ---------- Retrieval ----------

// GetText returns the text content of the first matching element.
func (p *Page) GetText(selector string) (string, error) {
	text, err := p.pw.Locator(selector).TextContent()
	if err != nil {
		return "", stepFailed("get text", selector, err)
	}
	return text, nil
}

// GetAttribute returns an attribute value of the first matching
// element.
func (p *Page) GetAttribute(selector, name string) (string, error) {
	val, err := p.pw.Locator(selector).GetAttribute(name)
	if err != nil {
		return "", stepFailed("get attribute", selector, err)
	}
	return val, nil
}

// GetValue returns the current value of an input element.
func (p *Page) GetValue(selector string) (string, error) {
	val, err := p.pw.Locator(selector).InputValue()
	if err != nil {
		return "", stepFailed("get value", selector, err)
	}
	return val, nil
}

// GetElementCount returns how many elements currently match selector.
func (p *Page) GetElementCount(selector string) (int, error) {
	n, err := p.pw.Locator(selector).Count()
	if err != nil {
		return 0, stepFailed("count", selector, err)
	}
	return n, nil
}

// GetAllTexts returns the text of every current match, in document
// order. Zero matches yields an empty slice, not an error.
func (p *Page) GetAllTexts(selector string) ([]string, error) {
	texts, err := p.pw.Locator(selector).AllTextContents()
	if err != nil {
		return nil, stepFailed("all texts", selector, err)
	}
	if texts == nil {
		texts = []string{}
	}
	return texts, nil
}

// CurrentURL returns the page's current URL.
func (p *Page) CurrentURL() string { return p.pw.URL() }

// Title returns the page title.
func (p *Page) Title() (string, error) { return p.pw.Title() }

// ---------- State queries (non-throwing) ----------

// IsVisible reports whether the element is visible right now. Driver
// errors (absent or detached elements included) read as false; callers
// use this family for branching, never for final assertions.
func (p *Page) IsVisible(selector string) bool {
	visible, err := p.pw.Locator(selector).IsVisible()
	return err == nil && visible
}

// IsEnabled reports whether the element is enabled; false on any driver
// error.
func (p *Page) IsEnabled(selector string) bool {
	enabled, err := p.pw.Locator(selector).IsEnabled()
	return err == nil && enabled
}

// IsChecked reports whether the checkbox is checked; false on any
// driver error.
func (p *Page) IsChecked(selector string) bool {
	checked, err := p.pw.Locator(selector).IsChecked()
	return err == nil && checked
}

// ---------- Explicit waits ----------

// WaitForElement blocks until the element reaches the given state and
// returns its locator.
func (p *Page) WaitForElement(selector string, state ElementState, timeout ...time.Duration) (playwright.Locator, error) {
	pwState, err := selectorState(state)
	if err != nil {
		return nil, err
	}
	loc := p.pw.Locator(selector)
	if err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   pwState,
		Timeout: playwright.Float(ms(p.deadline(timeout))),
	}); err != nil {
		return nil, stepFailed(fmt.Sprintf("wait for %s", state), selector, err)
	}
	return loc, nil
}

// WaitForURL blocks until the page URL matches pattern (glob).
func (p *Page) WaitForURL(pattern string, timeout ...time.Duration) error {
	if err := p.pw.WaitForURL(pattern, playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(ms(p.deadline(timeout))),
	}); err != nil {
		return stepFailed("wait for url", pattern, err)
	}
	return nil
}

// WaitForTimeout sleeps for a fixed delay. Last resort only: it waits
// for wall-clock time, not for a condition, so it either wastes time or
// races. Prefer WaitForElement / WaitForURL / Expect*.
func (p *Page) WaitForTimeout(d time.Duration) {
	p.metrics.FixedDelayWaits.Inc()
	p.log.Debug("fixed delay wait", zap.Duration("delay", d))
	p.pw.WaitForTimeout(ms(d))
}

func selectorState(state ElementState) (*playwright.WaitForSelectorState, error) {
	switch state {
	case StateAttached:
		return playwright.WaitForSelectorStateAttached, nil
	case StateDetached:
		return playwright.WaitForSelectorStateDetached, nil
	case StateVisible:
		return playwright.WaitForSelectorStateVisible, nil
	case StateHidden:
		return playwright.WaitForSelectorStateHidden, nil
	default:
		return nil, fmt.Errorf("unknown element state %q", state)
	}
}

// ---------- Assertions (Expect*) ----------

// expect polls probe until it reports true or the timeout elapses.
// Unlike the Is* family these verbs return an error on failure, because
// they state invariants rather than drive control flow. The error names
// the selector, the condition, and the last observed value.
func (p *Page) expect(selector, condition string, timeout []time.Duration, probe func() (bool, string)) error {
	p.metrics.ExpectationsTotal.WithLabelValues(condition).Inc()
	deadline := time.Now().Add(p.deadline(timeout))
	var observed string
	for {
		var ok bool
		ok, observed = probe()
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			break
		}
		time.Sleep(pollInterval)
	}
	p.metrics.ExpectationFailures.WithLabelValues(condition).Inc()
	return &ExpectationError{Selector: selector, Condition: condition, Observed: observed}
}

// ExpectVisible asserts the element becomes visible.
func (p *Page) ExpectVisible(selector string, timeout ...time.Duration) error {
	return p.expect(selector, "visible", timeout, func() (bool, string) {
		return p.IsVisible(selector), "not visible"
	})
}

// ExpectHidden asserts the element becomes hidden or absent.
func (p *Page) ExpectHidden(selector string, timeout ...time.Duration) error {
	return p.expect(selector, "hidden", timeout, func() (bool, string) {
		return !p.IsVisible(selector), "still visible"
	})
}

// ExpectText asserts the element's text contains want.
func (p *Page) ExpectText(selector, want string, timeout ...time.Duration) error {
	return p.expect(selector, fmt.Sprintf("containing text %q", want), timeout, func() (bool, string) {
		got, err := p.pw.Locator(selector).TextContent()
		if err != nil {
			return false, fmt.Sprintf("error: %v", err)
		}
		return strings.Contains(got, want), fmt.Sprintf("%q", got)
	})
}

// ExpectValue asserts the input's value equals want.
func (p *Page) ExpectValue(selector, want string, timeout ...time.Duration) error {
	return p.expect(selector, fmt.Sprintf("having value %q", want), timeout, func() (bool, string) {
		got, err := p.pw.Locator(selector).InputValue()
		if err != nil {
			return false, fmt.Sprintf("error: %v", err)
		}
		return got == want, fmt.Sprintf("%q", got)
	})
}

// ExpectEnabled asserts the element becomes enabled.
func (p *Page) ExpectEnabled(selector string, timeout ...time.Duration) error {
	return p.expect(selector, "enabled", timeout, func() (bool, string) {
		return p.IsEnabled(selector), "disabled or absent"
	})
}

// ExpectDisabled asserts the element becomes disabled.
func (p *Page) ExpectDisabled(selector string, timeout ...time.Duration) error {
	return p.expect(selector, "disabled", timeout, func() (bool, string) {
		enabled, err := p.pw.Locator(selector).IsEnabled()
		if err != nil {
			return false, fmt.Sprintf("error: %v", err)
		}
		return !enabled, "enabled"
	})
}

// ExpectChecked asserts the checkbox becomes checked.
func (p *Page) ExpectChecked(selector string, timeout ...time.Duration) error {
	return p.expect(selector, "checked", timeout, func() (bool, string) {
		return p.IsChecked(selector), "unchecked or absent"
	})
}

// ExpectCount asserts exactly want elements match selector.
func (p *Page) ExpectCount(selector string, want int, timeout ...time.Duration) error {
	return p.expect(selector, fmt.Sprintf("matching %d elements", want), timeout, func() (bool, string) {
		got, err := p.pw.Locator(selector).Count()
		if err != nil {
			return false, fmt.Sprintf("error: %v", err)
		}
		return got == want, fmt.Sprintf("%d elements", got)
	})
}

// ExpectURL asserts the page URL becomes exactly want.
func (p *Page) ExpectURL(want string, timeout ...time.Duration) error {
	return p.expect(want, "the current url", timeout, func() (bool, string) {
		got := p.pw.URL()
		return got == want, fmt.Sprintf("%q", got)
	})
}

// ExpectURLContains asserts the page URL comes to contain substr.
func (p *Page) ExpectURLContains(substr string, timeout ...time.Duration) error {
	return p.expect(substr, "contained in the current url", timeout, func() (bool, string) {
		got := p.pw.URL()
		return strings.Contains(got, substr), fmt.Sprintf("%q", got)
	})
}

// ExpectTitle asserts the page title becomes exactly want.
func (p *Page) ExpectTitle(want string, timeout ...time.Duration) error {
	return p.expect(want, "the page title", timeout, func() (bool, string) {
		got, err := p.pw.Title()
		if err != nil {
			return false, fmt.Sprintf("error: %v", err)
		}
		return got == want, fmt.Sprintf("%q", got)
	})
}

// ExpectTitleContains asserts the page title comes to contain substr.
func (p *Page) ExpectTitleContains(substr string, timeout ...time.Duration) error {
	return p.expect(substr, "contained in the page title", timeout, func() (bool, string) {
		got, err := p.pw.Title()
		if err != nil {
			return false, fmt.Sprintf("error: %v", err)
		}
		return strings.Contains(got, substr), fmt.Sprintf("%q", got)
	})
}

// ---------- Diagnostics ----------

// Screenshot writes a full-page screenshot under the configured
// screenshot folder and returns its path. Callers in the failure path
// must treat errors as log-only.
func (p *Page) Screenshot(name string) (string, error) {
	path := p.shotPath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating screenshot dir: %w", err)
	}
	_, err := p.pw.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("capturing screenshot: %w", err)
	}
	p.metrics.ScreenshotsCaptured.Inc()
	p.log.Info("screenshot saved", zap.String("path", path))
	return path, nil
}

// ScreenshotElement captures just the matching element.
func (p *Page) ScreenshotElement(selector, name string) (string, error) {
	path := p.shotPath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating screenshot dir: %w", err)
	}
	_, err := p.pw.Locator(selector).Screenshot(playwright.LocatorScreenshotOptions{
		Path: playwright.String(path),
	})
	if err != nil {
		return "", stepFailed("screenshot", selector, err)
	}
	p.metrics.ScreenshotsCaptured.Inc()
	return path, nil
}

func (p *Page) shotPath(name string) string {
	if !strings.HasSuffix(name, ".png") {
		name += ".png"
	}
	return filepath.Join(p.shotDir, name)
}

// ScrollToElement scrolls the element into view.
func (p *Page) ScrollToElement(selector string) error {
	if err := p.pw.Locator(selector).ScrollIntoViewIfNeeded(); err != nil {
		return stepFailed("scroll to", selector, err)
	}
	return nil
}

// ExecuteScript evaluates JavaScript on the page and returns its
// result.
func (p *Page) ExecuteScript(script string) (any, error) {
	return p.pw.Evaluate(script)
}

// HighlightElement outlines the element in the browser; useful when
// watching a headed run. Best effort.
func (p *Page) HighlightElement(selector string) {
	if err := p.pw.Locator(selector).Highlight(); err != nil {
		p.log.Debug("highlight failed", zap.String("selector", selector), zap.Error(err))
	}
}
