// Package config loads and validates scraper configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/JakeFAU/zambian-names/internal/partition"
	"github.com/JakeFAU/zambian-names/internal/scrape"
)

// Supported browser engines.
const (
	EngineChromedp = "chromedp"
	EngineStatic   = "static"
)

// Config captures all scraper configuration knobs loaded via Viper.
type Config struct {
	Scrape    ScrapeConfig    `mapstructure:"scrape"`
	Browser   BrowserConfig   `mapstructure:"browser"`
	Output    OutputConfig    `mapstructure:"output"`
	Artifacts ArtifactsConfig `mapstructure:"artifacts"`
	Progress  ProgressConfig  `mapstructure:"progress"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ScrapeConfig governs partition enumeration and per-worker bounds.
type ScrapeConfig struct {
	URLTemplate       string        `mapstructure:"url_template"`
	Selector          string        `mapstructure:"selector"`
	Concurrency       int           `mapstructure:"concurrency"`
	WaitTimeout       time.Duration `mapstructure:"wait_timeout"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout"`
	ScreenshotTimeout time.Duration `mapstructure:"screenshot_timeout"`
}

// BrowserConfig selects and tunes the page engine.
type BrowserConfig struct {
	Engine    string `mapstructure:"engine"`
	Headless  bool   `mapstructure:"headless"`
	UserAgent string `mapstructure:"user_agent"`
}

// OutputConfig shapes the rendered document.
type OutputConfig struct {
	DefaultPath   string `mapstructure:"default_path"`
	Title         string `mapstructure:"title"`
	SectionFormat string `mapstructure:"section_format"`
}

// ArtifactsConfig decides where diagnostic screenshots go. A bucket switches
// storage from the local directory to GCS.
type ArtifactsConfig struct {
	Dir       string `mapstructure:"dir"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	Prefix    string `mapstructure:"prefix"`
}

// ProgressConfig sizes the progress hub.
type ProgressConfig struct {
	BufferSize    int           `mapstructure:"buffer_size"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
}

// MetricsConfig enables the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ZAMBIANNAMES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scrape.url_template", partition.DefaultURLTemplate)
	v.SetDefault("scrape.selector", scrape.DefaultSelector)
	v.SetDefault("scrape.concurrency", scrape.DefaultConcurrency)
	v.SetDefault("scrape.wait_timeout", scrape.DefaultWaitTimeout)
	v.SetDefault("scrape.navigation_timeout", scrape.DefaultNavigationTimeout)
	v.SetDefault("scrape.screenshot_timeout", scrape.DefaultScreenshotTimeout)
	v.SetDefault("browser.engine", EngineChromedp)
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.user_agent", "")
	v.SetDefault("output.default_path", "zambian_names.md")
	v.SetDefault("output.title", "Zambian Names")
	v.SetDefault("output.section_format", "Zambian names beginning with the letter %s")
	v.SetDefault("artifacts.dir", ".")
	v.SetDefault("artifacts.gcs_bucket", "")
	v.SetDefault("artifacts.prefix", "")
	v.SetDefault("progress.buffer_size", 256)
	v.SetDefault("progress.flush_interval", 250*time.Millisecond)
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if !strings.Contains(c.Scrape.URLTemplate, partition.Placeholder) {
		return fmt.Errorf("scrape.url_template must contain %s", partition.Placeholder)
	}
	if strings.TrimSpace(c.Scrape.Selector) == "" {
		return fmt.Errorf("scrape.selector must be set")
	}
	if c.Scrape.Concurrency <= 0 {
		return fmt.Errorf("scrape.concurrency must be > 0")
	}
	if c.Scrape.WaitTimeout <= 0 {
		return fmt.Errorf("scrape.wait_timeout must be > 0")
	}
	if c.Scrape.NavigationTimeout <= 0 {
		return fmt.Errorf("scrape.navigation_timeout must be > 0")
	}
	if c.Scrape.ScreenshotTimeout <= 0 {
		return fmt.Errorf("scrape.screenshot_timeout must be > 0")
	}
	switch c.Browser.Engine {
	case EngineChromedp, EngineStatic:
	default:
		return fmt.Errorf("browser.engine must be %q or %q, got %q", EngineChromedp, EngineStatic, c.Browser.Engine)
	}
	if c.Output.DefaultPath == "" {
		return fmt.Errorf("output.default_path must be set")
	}
	if strings.Count(c.Output.SectionFormat, "%s") != 1 {
		return fmt.Errorf("output.section_format must contain exactly one %%s")
	}
	if c.Artifacts.GCSBucket == "" && c.Artifacts.Dir == "" {
		return fmt.Errorf("artifacts.dir must be set when artifacts.gcs_bucket is empty")
	}
	if c.Progress.BufferSize <= 0 {
		return fmt.Errorf("progress.buffer_size must be > 0")
	}
	return nil
}

// WorkerConfig converts the scrape section into worker settings.
func (c Config) WorkerConfig() scrape.Config {
	return scrape.Config{
		Selector:          c.Scrape.Selector,
		WaitTimeout:       c.Scrape.WaitTimeout,
		NavigationTimeout: c.Scrape.NavigationTimeout,
		ScreenshotTimeout: c.Scrape.ScreenshotTimeout,
	}
}
