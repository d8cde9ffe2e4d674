package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Log levels accepted by the logLevel option.
var validLogLevels = map[string]struct{}{
	"DEBUG":    {},
	"INFO":     {},
	"WARNING":  {},
	"ERROR":    {},
	"CRITICAL": {},
}

type Config struct {
	//===============
	// Limits
	//===============
	// Maximum number of pages scheduled for fetching in one crawl
	maxPages int
	// Maximum number of hyperlink hops from the start URL
	maxDepth int
	// Wall-clock budget for the whole crawl
	maxDuration time.Duration

	//===============
	// Concurrency & politeness
	//===============
	// Maximum number of in-flight fetches at any moment;
	// it does not control OS threads or CPU parallelism.
	maxConcurrency int
	// Minimum spacing between two requests to the same host. Zero disables it.
	politenessDelay time.Duration

	//===============
	// Fetch
	//===============
	// Maximum time of a single fetch attempt
	requestTimeout time.Duration
	// User agent sent in the request header. In raw string
	userAgent string
	// Hard cap on the number of response body bytes read per page
	maxBodyBytes int
	// How many transient-failure retries a fetch gets on top of the first attempt
	retryTotal int
	// Initial backoff before the first retry, in seconds; doubles per attempt
	retryBackoffFactor float64

	//===============
	// Crawl scope
	//===============
	// Whether query strings participate in URL identity
	includeQuery bool
	// Maximum number of hrefs examined per page, in document order
	maxLinksPerPage int
	// Whether contact-promising links are fetched before others
	focusedCrawling bool

	//===============
	// Extraction
	//===============
	// Regions for interpreting non-international phone numbers.
	// Empty means infer from the site's top-level domain.
	phoneRegions []string
	// Domain suffixes an extracted e-mail must match. Empty means accept all
	emailDomainAllowlist []string

	//===============
	// Observability
	//===============
	// Minimum level emitted by the loggers
	logLevel string
}

type configDTO struct {
	MaxPages             *int     `json:"max_pages,omitempty"`
	MaxDepth             *int     `json:"max_depth,omitempty"`
	MaxSeconds           *float64 `json:"max_seconds,omitempty"`
	MaxConcurrency       *int     `json:"max_concurrency,omitempty"`
	RequestTimeout       *float64 `json:"request_timeout,omitempty"`
	UserAgent            *string  `json:"user_agent,omitempty"`
	IncludeQuery         *bool    `json:"include_query,omitempty"`
	PhoneRegions         []string `json:"phone_regions,omitempty"`
	EmailDomainAllowlist []string `json:"email_domain_allowlist,omitempty"`
	FocusedCrawling      *bool    `json:"focused_crawling,omitempty"`
	MaxBodyBytes         *int     `json:"max_body_bytes,omitempty"`
	MaxLinksPerPage      *int     `json:"max_links_per_page,omitempty"`
	RetryTotal           *int     `json:"retry_total,omitempty"`
	RetryBackoffFactor   *float64 `json:"retry_backoff_factor,omitempty"`
	LogLevel             *string  `json:"log_level,omitempty"`
	PolitenessDelay      *float64 `json:"politeness_delay,omitempty"`
}

func (c *Config) applyDTO(dto configDTO) {
	// Pointer fields distinguish "absent" from a genuine zero, so 0 and
	// false survive as explicit overrides.
	if dto.MaxPages != nil {
		c.maxPages = *dto.MaxPages
	}
	if dto.MaxDepth != nil {
		c.maxDepth = *dto.MaxDepth
	}
	if dto.MaxSeconds != nil {
		c.maxDuration = secondsToDuration(*dto.MaxSeconds)
	}
	if dto.MaxConcurrency != nil {
		c.maxConcurrency = *dto.MaxConcurrency
	}
	if dto.RequestTimeout != nil {
		c.requestTimeout = secondsToDuration(*dto.RequestTimeout)
	}
	if dto.UserAgent != nil {
		c.userAgent = *dto.UserAgent
	}
	if dto.IncludeQuery != nil {
		c.includeQuery = *dto.IncludeQuery
	}
	if dto.PhoneRegions != nil {
		c.phoneRegions = NormalizeRegions(dto.PhoneRegions)
	}
	if dto.EmailDomainAllowlist != nil {
		c.emailDomainAllowlist = NormalizeDomains(dto.EmailDomainAllowlist)
	}
	if dto.FocusedCrawling != nil {
		c.focusedCrawling = *dto.FocusedCrawling
	}
	if dto.MaxBodyBytes != nil {
		c.maxBodyBytes = *dto.MaxBodyBytes
	}
	if dto.MaxLinksPerPage != nil {
		c.maxLinksPerPage = *dto.MaxLinksPerPage
	}
	if dto.RetryTotal != nil {
		c.retryTotal = *dto.RetryTotal
	}
	if dto.RetryBackoffFactor != nil {
		c.retryBackoffFactor = *dto.RetryBackoffFactor
	}
	if dto.LogLevel != nil {
		c.logLevel = strings.ToUpper(strings.TrimSpace(*dto.LogLevel))
	}
	if dto.PolitenessDelay != nil {
		c.politenessDelay = secondsToDuration(*dto.PolitenessDelay)
	}
}

// WithDefault creates a new Config carrying the default value of every option.
func WithDefault() *Config {
	defaultConfig := Config{
		maxPages:             200,
		maxDepth:             5,
		maxDuration:          30 * time.Second,
		maxConcurrency:       4,
		politenessDelay:      0,
		requestTimeout:       10 * time.Second,
		userAgent:            "site-parser/0.1.0",
		maxBodyBytes:         2_000_000,
		retryTotal:           2,
		retryBackoffFactor:   0.5,
		includeQuery:         false,
		maxLinksPerPage:      200,
		focusedCrawling:      true,
		phoneRegions:         nil,
		emailDomainAllowlist: nil,
		logLevel:             "INFO",
	}
	return &defaultConfig
}

// WithConfigFile loads a JSON config file on top of the defaults.
func WithConfigFile(path string) (*Config, error) {
	_, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	configContent, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	cfgDTO := configDTO{}

	err = json.Unmarshal(configContent, &cfgDTO)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	cfg := WithDefault()
	cfg.applyDTO(cfgDTO)
	return cfg, nil
}

// Load resolves the effective config: defaults, then the config file (the
// explicit path, or PARSER_CONFIG_FILE / PARSER_CONFIG when set), then
// PARSER_* environment variables on top.
func Load(path string) (Config, error) {
	if path == "" {
		path = os.Getenv("PARSER_CONFIG_FILE")
	}
	if path == "" {
		path = os.Getenv("PARSER_CONFIG")
	}

	var cfg *Config
	if path != "" {
		loaded, err := WithConfigFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	} else {
		cfg = WithDefault()
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg.Build()
}

func (c *Config) applyEnv() error {
	var firstErr error
	intVar := func(name string, apply func(int)) {
		raw, ok := os.LookupEnv(name)
		if !ok || strings.TrimSpace(raw) == "" {
			return
		}
		value, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, name, raw)
			}
			return
		}
		apply(value)
	}
	floatVar := func(name string, apply func(float64)) {
		raw, ok := os.LookupEnv(name)
		if !ok || strings.TrimSpace(raw) == "" {
			return
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%w: %s=%q is not a number", ErrInvalidConfig, name, raw)
			}
			return
		}
		apply(value)
	}
	boolVar := func(name string, apply func(bool)) {
		raw, ok := os.LookupEnv(name)
		if !ok || strings.TrimSpace(raw) == "" {
			return
		}
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "1", "true", "yes", "on":
			apply(true)
		case "0", "false", "no", "off":
			apply(false)
		default:
			if firstErr == nil {
				firstErr = fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalidConfig, name, raw)
			}
		}
	}
	stringVar := func(name string, apply func(string)) {
		raw, ok := os.LookupEnv(name)
		if !ok || strings.TrimSpace(raw) == "" {
			return
		}
		apply(strings.TrimSpace(raw))
	}

	intVar("PARSER_MAX_PAGES", func(v int) { c.maxPages = v })
	intVar("PARSER_MAX_DEPTH", func(v int) { c.maxDepth = v })
	floatVar("PARSER_MAX_SECONDS", func(v float64) { c.maxDuration = secondsToDuration(v) })
	intVar("PARSER_MAX_CONCURRENCY", func(v int) { c.maxConcurrency = v })
	floatVar("PARSER_REQUEST_TIMEOUT", func(v float64) { c.requestTimeout = secondsToDuration(v) })
	stringVar("PARSER_USER_AGENT", func(v string) { c.userAgent = v })
	boolVar("PARSER_INCLUDE_QUERY", func(v bool) { c.includeQuery = v })
	stringVar("PARSER_PHONE_REGIONS", func(v string) {
		c.phoneRegions = NormalizeRegions(splitList(v))
	})
	stringVar("PARSER_EMAIL_DOMAIN_ALLOWLIST", func(v string) {
		c.emailDomainAllowlist = NormalizeDomains(splitList(v))
	})
	boolVar("PARSER_FOCUSED_CRAWLING", func(v bool) { c.focusedCrawling = v })
	intVar("PARSER_MAX_BODY_BYTES", func(v int) { c.maxBodyBytes = v })
	intVar("PARSER_MAX_LINKS_PER_PAGE", func(v int) { c.maxLinksPerPage = v })
	intVar("PARSER_RETRY_TOTAL", func(v int) { c.retryTotal = v })
	floatVar("PARSER_RETRY_BACKOFF_FACTOR", func(v float64) { c.retryBackoffFactor = v })
	stringVar("PARSER_LOG_LEVEL", func(v string) { c.logLevel = strings.ToUpper(v) })
	floatVar("PARSER_POLITENESS_DELAY", func(v float64) { c.politenessDelay = secondsToDuration(v) })

	return firstErr
}

func (c *Config) WithMaxPages(pages int) *Config {
	c.maxPages = pages
	return c
}

func (c *Config) WithMaxDepth(depth int) *Config {
	c.maxDepth = depth
	return c
}

func (c *Config) WithMaxDuration(duration time.Duration) *Config {
	c.maxDuration = duration
	return c
}

func (c *Config) WithMaxConcurrency(concurrency int) *Config {
	c.maxConcurrency = concurrency
	return c
}

func (c *Config) WithPolitenessDelay(delay time.Duration) *Config {
	c.politenessDelay = delay
	return c
}

func (c *Config) WithRequestTimeout(timeout time.Duration) *Config {
	c.requestTimeout = timeout
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithIncludeQuery(includeQuery bool) *Config {
	c.includeQuery = includeQuery
	return c
}

func (c *Config) WithPhoneRegions(regions []string) *Config {
	c.phoneRegions = NormalizeRegions(regions)
	return c
}

func (c *Config) WithEmailDomainAllowlist(domains []string) *Config {
	c.emailDomainAllowlist = NormalizeDomains(domains)
	return c
}

func (c *Config) WithFocusedCrawling(focused bool) *Config {
	c.focusedCrawling = focused
	return c
}

func (c *Config) WithMaxBodyBytes(limit int) *Config {
	c.maxBodyBytes = limit
	return c
}

func (c *Config) WithMaxLinksPerPage(limit int) *Config {
	c.maxLinksPerPage = limit
	return c
}

func (c *Config) WithRetryTotal(total int) *Config {
	c.retryTotal = total
	return c
}

func (c *Config) WithRetryBackoffFactor(factor float64) *Config {
	c.retryBackoffFactor = factor
	return c
}

func (c *Config) WithLogLevel(level string) *Config {
	c.logLevel = strings.ToUpper(strings.TrimSpace(level))
	return c
}

func (c *Config) Build() (Config, error) {
	if c.maxPages < 1 {
		return Config{}, fmt.Errorf("%w: max_pages must be at least 1", ErrInvalidConfig)
	}
	if c.maxDepth < 0 {
		return Config{}, fmt.Errorf("%w: max_depth cannot be negative", ErrInvalidConfig)
	}
	if c.maxDuration <= 0 {
		return Config{}, fmt.Errorf("%w: max_seconds must be positive", ErrInvalidConfig)
	}
	if c.maxConcurrency < 1 {
		return Config{}, fmt.Errorf("%w: max_concurrency must be at least 1", ErrInvalidConfig)
	}
	if c.politenessDelay < 0 {
		return Config{}, fmt.Errorf("%w: politeness_delay cannot be negative", ErrInvalidConfig)
	}
	if c.requestTimeout <= 0 {
		return Config{}, fmt.Errorf("%w: request_timeout must be positive", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.userAgent) == "" {
		return Config{}, fmt.Errorf("%w: user_agent cannot be empty", ErrInvalidConfig)
	}
	if c.maxBodyBytes < 1 {
		return Config{}, fmt.Errorf("%w: max_body_bytes must be at least 1", ErrInvalidConfig)
	}
	if c.maxLinksPerPage < 1 {
		return Config{}, fmt.Errorf("%w: max_links_per_page must be at least 1", ErrInvalidConfig)
	}
	if c.retryTotal < 0 {
		return Config{}, fmt.Errorf("%w: retry_total cannot be negative", ErrInvalidConfig)
	}
	if c.retryBackoffFactor < 0 {
		return Config{}, fmt.Errorf("%w: retry_backoff_factor cannot be negative", ErrInvalidConfig)
	}
	if _, ok := validLogLevels[c.logLevel]; !ok {
		return Config{}, fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.logLevel)
	}
	for _, region := range c.phoneRegions {
		if len(region) != 2 {
			return Config{}, fmt.Errorf("%w: phone region %q is not a two-letter code", ErrInvalidConfig, region)
		}
	}

	return *c, nil
}

func (c Config) MaxPages() int {
	return c.maxPages
}

func (c Config) MaxDepth() int {
	return c.maxDepth
}

func (c Config) MaxDuration() time.Duration {
	return c.maxDuration
}

func (c Config) MaxConcurrency() int {
	return c.maxConcurrency
}

func (c Config) PolitenessDelay() time.Duration {
	return c.politenessDelay
}

func (c Config) RequestTimeout() time.Duration {
	return c.requestTimeout
}

func (c Config) UserAgent() string {
	return c.userAgent
}

func (c Config) IncludeQuery() bool {
	return c.includeQuery
}

func (c Config) PhoneRegions() []string {
	regions := make([]string, len(c.phoneRegions))
	copy(regions, c.phoneRegions)
	return regions
}

func (c Config) EmailDomainAllowlist() []string {
	domains := make([]string, len(c.emailDomainAllowlist))
	copy(domains, c.emailDomainAllowlist)
	return domains
}

func (c Config) FocusedCrawling() bool {
	return c.focusedCrawling
}

func (c Config) MaxBodyBytes() int {
	return c.maxBodyBytes
}

func (c Config) MaxLinksPerPage() int {
	return c.maxLinksPerPage
}

func (c Config) RetryTotal() int {
	return c.retryTotal
}

func (c Config) RetryBackoffFactor() float64 {
	return c.retryBackoffFactor
}

func (c Config) LogLevel() string {
	return c.logLevel
}

// NormalizeRegions uppercases two-letter region codes and drops duplicates
// while keeping the original order.
func NormalizeRegions(regions []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, region := range regions {
		region = strings.ToUpper(strings.TrimSpace(region))
		if region == "" {
			continue
		}
		if _, ok := seen[region]; ok {
			continue
		}
		seen[region] = struct{}{}
		out = append(out, region)
	}
	return out
}

// NormalizeDomains lowercases allowlist entries, strips a leading "@" or "."
// and drops duplicates while keeping the original order.
func NormalizeDomains(domains []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, domain := range domains {
		domain = strings.ToLower(strings.TrimSpace(domain))
		domain = strings.TrimLeft(domain, "@.")
		if domain == "" {
			continue
		}
		if _, ok := seen[domain]; ok {
			continue
		}
		seen[domain] = struct{}{}
		out = append(out, domain)
	}
	return out
}

func splitList(raw string) []string {
	raw = strings.ReplaceAll(raw, ";", ",")
	return strings.Split(raw, ",")
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
