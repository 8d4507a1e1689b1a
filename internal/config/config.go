package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Supported browser names for both automation backends.
const (
	BrowserChrome  = "chrome"
	BrowserFirefox = "firefox"
)

// Config holds the full suite configuration. It is loaded once at
// process start and must be treated as read-only afterwards; components
// receive it by reference instead of looking it up globally.
type Config struct {
	Application  ApplicationConfig  `yaml:"application"`
	Credentials  CredentialsConfig  `yaml:"credentials"`
	Selenium     SeleniumConfig     `yaml:"selenium"`
	Timeouts     TimeoutConfig      `yaml:"timeouts"`
	TestSettings TestSettingsConfig `yaml:"test_settings"`
	API          APIConfig          `yaml:"api"`
	Selenoid     SelenoidConfig     `yaml:"selenoid"`
	AI           AIConfig           `yaml:"ai"`
	Artifacts    ArtifactsConfig    `yaml:"artifacts"`

	// Env carries overrides that never belong in the YAML file
	// (tunnel credentials and host overrides for CI).
	Env EnvOverrides `yaml:"-"`
}

// ApplicationConfig holds storefront URLs.
type ApplicationConfig struct {
	BaseURL  string `yaml:"base_url"`
	AdminURL string `yaml:"admin_url"`
}

// CredentialsConfig holds UI login credentials.
type CredentialsConfig struct {
	AdminUsername    string `yaml:"admin_username"`
	AdminPassword    string `yaml:"admin_password"`
	CustomerEmail    string `yaml:"customer_email"`
	CustomerPassword string `yaml:"customer_password"`
}

// SeleniumConfig holds browser parameters shared by both backends.
type SeleniumConfig struct {
	Browser         string `yaml:"browser"`
	Headless        bool   `yaml:"headless"`
	ImplicitWait    int    `yaml:"implicit_wait"`
	PageLoadTimeout int    `yaml:"page_load_timeout"`
	WindowWidth     int    `yaml:"window_width"`
	WindowHeight    int    `yaml:"window_height"`
}

// ImplicitWaitDuration returns the driver-level implicit wait as a
// duration, defaulting to 10s when unset. Like Timeouts.Default, the
// seconds-to-duration conversion lives here and nowhere else.
func (s SeleniumConfig) ImplicitWaitDuration() time.Duration {
	if s.ImplicitWait <= 0 {
		return 10 * time.Second
	}
	return time.Duration(s.ImplicitWait) * time.Second
}

// PageLoadTimeoutDuration returns the driver-level page-load timeout as
// a duration, defaulting to 30s when unset.
func (s SeleniumConfig) PageLoadTimeoutDuration() time.Duration {
	if s.PageLoadTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.PageLoadTimeout) * time.Second
}

// TimeoutConfig holds wait timeouts, expressed in seconds in the file.
type TimeoutConfig struct {
	DefaultSeconds int `yaml:"default"`
}

// Default returns the default wait timeout as a duration. This is the
// single place where the file's seconds become a time.Duration; every
// consumer works in durations from here on.
func (t TimeoutConfig) Default() time.Duration {
	if t.DefaultSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(t.DefaultSeconds) * time.Second
}

// TestSettingsConfig holds runner-level settings.
type TestSettingsConfig struct {
	ScreenshotFolder    string `yaml:"screenshot_folder"`
	ScreenshotOnFailure bool   `yaml:"screenshot_on_failure"`
	ParallelWorkers     int    `yaml:"parallel_workers"`
}

// APIConfig holds OpenCart API credentials.
type APIConfig struct {
	Username string `yaml:"username"`
	Key      string `yaml:"key"`
}

// SelenoidConfig holds remote grid settings.
type SelenoidConfig struct {
	HubURL   string                     `yaml:"hub_url"`
	Browsers map[string]SelenoidBrowser `yaml:"browsers"`
}

// Hub returns the remote grid endpoint, defaulting to the standard
// Selenoid port on localhost.
func (c SelenoidConfig) Hub() string {
	if c.HubURL == "" {
		return "http://localhost:4444/wd/hub"
	}
	return c.HubURL
}

// SelenoidBrowser describes one browser image on the grid.
type SelenoidBrowser struct {
	Version string         `yaml:"version"`
	Options map[string]any `yaml:"options"`
}

// AIConfig holds the failure-analysis host. The suite only carries the
// setting; analysis itself lives outside this repository.
type AIConfig struct {
	OllamaHost string `yaml:"ollama_host"`
}

// ArtifactsConfig holds the optional object-storage mirror for
// diagnostic artifacts. Empty endpoint disables the mirror.
type ArtifactsConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// EnvOverrides are read from the environment, not the YAML file.
type EnvOverrides struct {
	NgrokUser  string `envconfig:"NGROK_USER"`
	NgrokPass  string `envconfig:"NGROK_PASS"`
	OllamaHost string `envconfig:"OLLAMA_HOST"`
}

// Load reads the YAML configuration file, applies environment
// overrides, and validates the result. Call it once per process.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes configuration from raw YAML, applies environment
// overrides, and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}

	if err := envconfig.Process("", &cfg.Env); err != nil {
		return nil, fmt.Errorf("processing env overrides: %w", err)
	}
	if cfg.Env.OllamaHost != "" {
		cfg.AI.OllamaHost = cfg.Env.OllamaHost
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration eagerly so misconfiguration fails
// at session-setup time, before any test logic runs.
func (c *Config) Validate() error {
	var errs []string

	if c.Application.BaseURL == "" {
		errs = append(errs, "application.base_url is required")
	}
	if c.Selenium.Browser != "" && !SupportedBrowser(c.Selenium.Browser) {
		errs = append(errs, fmt.Sprintf("unsupported browser: %q", c.Selenium.Browser))
	}
	for name := range c.Selenoid.Browsers {
		if !SupportedBrowser(name) {
			errs = append(errs, fmt.Sprintf("unsupported selenoid browser: %q", name))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// SupportedBrowser reports whether name is a browser the backends can
// drive.
func SupportedBrowser(name string) bool {
	switch strings.ToLower(name) {
	case BrowserChrome, BrowserFirefox:
		return true
	}
	return false
}

// ScreenshotFolder returns the configured screenshot folder, with the
// suite's default when unset.
func (c *Config) ScreenshotFolder() string {
	if c.TestSettings.ScreenshotFolder == "" {
		return "reports/screenshots"
	}
	return c.TestSettings.ScreenshotFolder
}
