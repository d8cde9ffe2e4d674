package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rohmanhakim/site-parser/internal/config"
	"github.com/rohmanhakim/site-parser/internal/logging"
	"github.com/rohmanhakim/site-parser/internal/scheduler"
)

var (
	cfgFile         string
	logLevel        string
	pretty          bool
	diagnostics     bool
	maxPages        int
	maxDepth        int
	maxSeconds      float64
	maxConcurrency  int
	requestTimeout  float64
	userAgent       string
	includeQuery    bool
	phoneRegions    []string
	emailAllowlist  []string
	noFocused       bool
	maxBodyBytes    int
	maxLinksPerPage int
	retryTotal      int
	backoffFactor   float64
	politenessDelay float64
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "site-parser <start-url>",
	Short: "Extract contact e-mails and phone numbers from a website.",
	Long: `site-parser crawls a single domain starting from the given URL and
extracts e-mail addresses and phone numbers in E.164 format.

The crawl never leaves the start URL's domain, honors page, depth and
wall-clock budgets, and prefers contact-looking pages when focused
crawling is enabled. The result is printed to stdout as JSON.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildConfig(cmd)
		if err != nil {
			return inputError(err)
		}

		logger, _, err := logging.NewLogger(cfg.LogLevel())
		if err != nil {
			return inputError(err)
		}
		defer logger.Sync()

		result, err := scheduler.New(cfg, logger).Parse(context.Background(), args[0], diagnostics)
		if err != nil {
			return inputError(err)
		}

		encoder := json.NewEncoder(os.Stdout)
		if pretty {
			encoder.SetIndent("", "  ")
		}
		encoder.SetEscapeHTML(false)
		return encoder.Encode(result)
	},
}

// inputErrorCode is the exit code for bad input (invalid start URL, broken
// config), as opposed to 1 for unexpected failures.
const inputErrorCode = 2

type exitCodeError struct {
	err  error
	code int
}

func (e *exitCodeError) Error() string { return e.err.Error() }
func (e *exitCodeError) Unwrap() error { return e.err }

func inputError(err error) error {
	return &exitCodeError{err: err, code: inputErrorCode}
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		if coded, ok := err.(*exitCodeError); ok {
			os.Exit(coded.code)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path (e.g., /home/myuser/config.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (DEBUG, INFO, WARNING, ERROR, CRITICAL)")
	rootCmd.Flags().BoolVar(&pretty, "pretty", false, "indent the JSON output")
	rootCmd.Flags().BoolVar(&diagnostics, "diagnostics", false, "include crawl diagnostics in the output")
	rootCmd.PersistentFlags().IntVar(&maxPages, "max-pages", 0, "maximum number of pages to fetch")
	rootCmd.PersistentFlags().IntVar(&maxDepth, "max-depth", -1, "maximum link depth from the start URL")
	rootCmd.PersistentFlags().Float64Var(&maxSeconds, "max-seconds", 0, "wall-clock budget for the crawl in seconds")
	rootCmd.PersistentFlags().IntVar(&maxConcurrency, "max-concurrency", 0, "number of concurrent fetches")
	rootCmd.PersistentFlags().Float64Var(&requestTimeout, "request-timeout", 0, "timeout of a single fetch in seconds")
	rootCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "", "user agent string for HTTP requests")
	rootCmd.PersistentFlags().BoolVar(&includeQuery, "include-query", false, "keep query strings in URL identity")
	rootCmd.PersistentFlags().StringSliceVar(&phoneRegions, "phone-region", nil, "phone region like RU, DE (can be repeated)")
	rootCmd.PersistentFlags().StringSliceVar(&emailAllowlist, "email-domain", nil, "restrict e-mails to this domain suffix (can be repeated)")
	rootCmd.PersistentFlags().BoolVar(&noFocused, "no-focused", false, "disable focused crawling, fetch in discovery order")
	rootCmd.PersistentFlags().IntVar(&maxBodyBytes, "max-body-bytes", 0, "cap on response body bytes read per page")
	rootCmd.PersistentFlags().IntVar(&maxLinksPerPage, "max-links-per-page", 0, "maximum hrefs examined per page")
	rootCmd.PersistentFlags().IntVar(&retryTotal, "retry-total", -1, "transient-failure retries per fetch")
	rootCmd.PersistentFlags().Float64Var(&backoffFactor, "retry-backoff-factor", -1, "initial retry backoff in seconds")
	rootCmd.PersistentFlags().Float64Var(&politenessDelay, "politeness-delay", -1, "minimum spacing between requests to one host in seconds")
}

// buildConfig resolves the effective config: file and environment first,
// then explicitly set CLI flags on top.
func buildConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, err
	}

	builder := &cfg
	if logLevel != "" {
		builder = builder.WithLogLevel(logLevel)
	}
	if maxPages > 0 {
		builder = builder.WithMaxPages(maxPages)
	}
	if maxDepth >= 0 {
		builder = builder.WithMaxDepth(maxDepth)
	}
	if maxSeconds > 0 {
		builder = builder.WithMaxDuration(time.Duration(maxSeconds * float64(time.Second)))
	}
	if maxConcurrency > 0 {
		builder = builder.WithMaxConcurrency(maxConcurrency)
	}
	if requestTimeout > 0 {
		builder = builder.WithRequestTimeout(time.Duration(requestTimeout * float64(time.Second)))
	}
	if userAgent != "" {
		builder = builder.WithUserAgent(userAgent)
	}
	if cmd.Flags().Changed("include-query") {
		builder = builder.WithIncludeQuery(includeQuery)
	}
	if len(phoneRegions) > 0 {
		builder = builder.WithPhoneRegions(phoneRegions)
	}
	if len(emailAllowlist) > 0 {
		builder = builder.WithEmailDomainAllowlist(emailAllowlist)
	}
	if noFocused {
		builder = builder.WithFocusedCrawling(false)
	}
	if maxBodyBytes > 0 {
		builder = builder.WithMaxBodyBytes(maxBodyBytes)
	}
	if maxLinksPerPage > 0 {
		builder = builder.WithMaxLinksPerPage(maxLinksPerPage)
	}
	if retryTotal >= 0 {
		builder = builder.WithRetryTotal(retryTotal)
	}
	if backoffFactor >= 0 {
		builder = builder.WithRetryBackoffFactor(backoffFactor)
	}
	if politenessDelay >= 0 {
		builder = builder.WithPolitenessDelay(time.Duration(politenessDelay * float64(time.Second)))
	}

	return builder.Build()
}
