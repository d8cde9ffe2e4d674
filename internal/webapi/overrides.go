package webapi

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rohmanhakim/site-parser/internal/config"
)

// applyOverrides layers per-request option overrides on top of a loaded
// config. Every value is bounds-checked so a single API call cannot ask for
// an unreasonable crawl.
func applyOverrides(cfg config.Config, overrides map[string]json.RawMessage) (config.Config, error) {
	if len(overrides) == 0 {
		return cfg, nil
	}

	builder := &cfg
	for key, raw := range overrides {
		var err error
		switch key {
		case "max_pages":
			err = overrideInt(raw, key, 1, 5000, func(v int) { builder.WithMaxPages(v) })
		case "max_depth":
			err = overrideInt(raw, key, 0, 50, func(v int) { builder.WithMaxDepth(v) })
		case "max_seconds":
			err = overrideFloat(raw, key, 1.0, 3600.0, func(v float64) {
				builder.WithMaxDuration(time.Duration(v * float64(time.Second)))
			})
		case "max_concurrency":
			err = overrideInt(raw, key, 1, 64, func(v int) { builder.WithMaxConcurrency(v) })
		case "request_timeout":
			err = overrideFloat(raw, key, 0.5, 120.0, func(v float64) {
				builder.WithRequestTimeout(time.Duration(v * float64(time.Second)))
			})
		case "user_agent":
			err = overrideUserAgent(raw, builder)
		case "include_query":
			err = overrideBool(raw, key, func(v bool) { builder.WithIncludeQuery(v) })
		case "phone_regions":
			err = overrideStringList(raw, key, func(v []string) { builder.WithPhoneRegions(v) })
		case "email_domain_allowlist":
			err = overrideStringList(raw, key, func(v []string) { builder.WithEmailDomainAllowlist(v) })
		case "focused_crawling":
			err = overrideBool(raw, key, func(v bool) { builder.WithFocusedCrawling(v) })
		case "max_body_bytes":
			err = overrideInt(raw, key, 1024, 50_000_000, func(v int) { builder.WithMaxBodyBytes(v) })
		case "max_links_per_page":
			err = overrideInt(raw, key, 1, 5000, func(v int) { builder.WithMaxLinksPerPage(v) })
		case "retry_total":
			err = overrideInt(raw, key, 0, 10, func(v int) { builder.WithRetryTotal(v) })
		case "retry_backoff_factor":
			err = overrideFloat(raw, key, 0.0, 10.0, func(v float64) { builder.WithRetryBackoffFactor(v) })
		case "log_level":
			err = overrideLogLevel(raw, builder)
		default:
			err = fmt.Errorf("unsupported override: %s", key)
		}
		if err != nil {
			return config.Config{}, err
		}
	}

	return builder.Build()
}

func overrideInt(raw json.RawMessage, name string, min int, max int, apply func(int)) error {
	var value int
	if err := json.Unmarshal(raw, &value); err != nil {
		return fmt.Errorf("%s must be an integer", name)
	}
	if value < min || value > max {
		return fmt.Errorf("%s must be between %d and %d", name, min, max)
	}
	apply(value)
	return nil
}

func overrideFloat(raw json.RawMessage, name string, min float64, max float64, apply func(float64)) error {
	var value float64
	if err := json.Unmarshal(raw, &value); err != nil {
		return fmt.Errorf("%s must be a number", name)
	}
	if value < min || value > max {
		return fmt.Errorf("%s must be between %g and %g", name, min, max)
	}
	apply(value)
	return nil
}

func overrideBool(raw json.RawMessage, name string, apply func(bool)) error {
	var value bool
	if err := json.Unmarshal(raw, &value); err == nil {
		apply(value)
		return nil
	}
	// Also accept common string spellings.
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return fmt.Errorf("%s must be a boolean", name)
	}
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "1", "true", "yes", "y", "on":
		apply(true)
	case "0", "false", "no", "n", "off":
		apply(false)
	default:
		return fmt.Errorf("invalid boolean value for %s: %q", name, text)
	}
	return nil
}

// overrideStringList accepts either a JSON array of strings or a single
// comma/semicolon separated string.
func overrideStringList(raw json.RawMessage, name string, apply func([]string)) error {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		apply(list)
		return nil
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return fmt.Errorf("%s must be a string or an array of strings", name)
	}
	apply(strings.Split(strings.ReplaceAll(text, ";", ","), ","))
	return nil
}

func overrideUserAgent(raw json.RawMessage, builder *config.Config) error {
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return fmt.Errorf("user_agent must be a string")
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("user_agent must not be empty")
	}
	if len(value) > 512 {
		return fmt.Errorf("user_agent is too long")
	}
	builder.WithUserAgent(value)
	return nil
}

func overrideLogLevel(raw json.RawMessage, builder *config.Config) error {
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return fmt.Errorf("log_level must be a string")
	}
	level := strings.ToUpper(strings.TrimSpace(value))
	switch level {
	case "DEBUG", "INFO", "WARNING", "ERROR", "CRITICAL":
		builder.WithLogLevel(level)
		return nil
	default:
		return fmt.Errorf("invalid log_level: %q", value)
	}
}
