package config

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"

	"sjsage522/gramrelay/pkg/errors"
)

// Config represents the application configuration
type Config struct {
	// Relay configuration
	SendDelaySeconds   int    `long:"send-delay" env:"SEND_DELAY_SECONDS" default:"15" description:"Seconds to wait after a delivery before the next one"`
	HTTPTimeoutSeconds int    `long:"http-timeout" env:"HTTP_TIMEOUT_SECONDS" default:"10" description:"Timeout in seconds for page fetches and webhook calls"`
	FlushEachDelivery  bool   `long:"flush-each-delivery" env:"FLUSH_EACH_DELIVERY" description:"Persist the ledger after every successful delivery"`
	SourcesFile        string `long:"sources-file" env:"SOURCES_FILE" description:"YAML file listing additional profile URLs"`

	// Scraped site configuration
	BaseURL string `long:"base-url" env:"INSTAGRAM_BASE_URL" default:"https://www.instagram.com" description:"Base URL for permalinks and profile links"`
	Marker  string `long:"marker" env:"SHARED_DATA_MARKER" default:"window._sharedData = {" description:"Script prefix that assigns the shared data blob"`

	// Memcache configuration
	MemcacheAddr     string `long:"memcache-addr" env:"MEMCACHE_ADDR" description:"Memcache address for rate-limit blocks (disabled when empty)"`
	BlockTimeSeconds int    `long:"block-time" env:"BLOCK_TIME_SECONDS" default:"500" description:"Seconds to stop fetching a host after it rate limits us"`

	// Proxy used for page fetches only
	ProxyURL string `long:"proxy-url" env:"FETCH_PROXY_URL" description:"http, https or socks5 proxy for page fetches"`

	// Environment
	Environment string `long:"environment" env:"RELAY_ENVIRONMENT" default:"development" description:"Runtime environment"`

	Args struct {
		Ledger  string   `positional-arg-name:"LEDGER" description:"Ledger location (file path, redis://... or sqlite://...)"`
		Webhook string   `positional-arg-name:"WEBHOOK" description:"Webhook URL deliveries are posted to"`
		Sources []string `positional-arg-name:"SOURCE" description:"Profile URLs to follow"`
	} `positional-args:"yes"`
}

// sourcesFile is the YAML layout of the optional sources file
type sourcesFile struct {
	Sources []struct {
		URL string `yaml:"url"`
	} `yaml:"sources"`
}

// Usage is printed when the positional arguments are incomplete
const Usage = "usage: gramrelay [options] LEDGER WEBHOOK SOURCE [SOURCE...]"

// ErrHelp is returned by Parse when help output was requested
var ErrHelp = fmt.Errorf("help requested")

// Parse parses command-line arguments and environment variables into a Config
func Parse(args []string, stderr io.Writer) (*Config, error) {
	var cfg Config

	parser := flags.NewParser(&cfg, flags.HelpFlag|flags.PassDoubleDash)
	parser.Usage = "[options] LEDGER WEBHOOK SOURCE [SOURCE...]"

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(stderr, flagsErr.Message)
			return nil, ErrHelp
		}
		return nil, errors.NewConfiguration("failed to parse arguments", err)
	}

	if cfg.SourcesFile != "" {
		extra, err := LoadSourcesFile(cfg.SourcesFile)
		if err != nil {
			return nil, err
		}
		cfg.Args.Sources = append(cfg.Args.Sources, extra...)
	}

	return &cfg, nil
}

// LoadSourcesFile reads profile URLs from a YAML sources file
func LoadSourcesFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfiguration("failed to read sources file", err)
	}

	var file sourcesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.NewConfiguration("failed to parse sources file", err)
	}

	urls := make([]string, 0, len(file.Sources))
	for _, s := range file.Sources {
		if u := strings.TrimSpace(s.URL); u != "" {
			urls = append(urls, u)
		}
	}
	return urls, nil
}

// Validate checks that the configuration can drive a run
func (c *Config) Validate() error {
	if c.Args.Ledger == "" || c.Args.Webhook == "" || len(c.Args.Sources) == 0 {
		return errors.NewConfiguration(Usage, nil)
	}

	if err := validateHTTPURL(c.Args.Webhook); err != nil {
		return errors.NewConfiguration("invalid webhook URL", err)
	}
	for _, s := range c.Args.Sources {
		if err := validateHTTPURL(s); err != nil {
			return errors.NewConfiguration(fmt.Sprintf("invalid source URL %q", s), err)
		}
	}
	if err := validateHTTPURL(c.BaseURL); err != nil {
		return errors.NewConfiguration("invalid base URL", err)
	}

	if c.ProxyURL != "" {
		u, err := url.Parse(c.ProxyURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https" && u.Scheme != "socks5") {
			return errors.NewConfiguration("proxy URL must be http, https or socks5", err)
		}
	}

	if c.Marker == "" {
		return errors.NewConfiguration("shared data marker must not be empty", nil)
	}
	if c.SendDelaySeconds < 0 {
		return errors.NewConfiguration("send delay must not be negative", nil)
	}
	if c.HTTPTimeoutSeconds <= 0 {
		return errors.NewConfiguration("http timeout must be positive", nil)
	}
	return nil
}

// SendDelay returns the cooldown applied after a delivery
func (c *Config) SendDelay() time.Duration {
	return time.Duration(c.SendDelaySeconds) * time.Second
}

// HTTPTimeout returns the timeout for outbound HTTP calls
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// BlockTime returns how long a rate-limited host is left alone
func (c *Config) BlockTime() time.Duration {
	return time.Duration(c.BlockTimeSeconds) * time.Second
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}
