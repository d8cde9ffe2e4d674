/*
Package fetcher turns URLs into decoded page text.

Responsibilities:
- Issue HTTP GETs with the configured user agent and timeout
- Retry transient failures with exponential backoff
- Gate responses on status and content type
- Cap the body read and decode it with the server's declared charset
- Report the canonical post-redirect URL alongside the text
*/
package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"github.com/rohmanhakim/site-parser/internal/config"
	"github.com/rohmanhakim/site-parser/pkg/failure"
	"github.com/rohmanhakim/site-parser/pkg/limiter"
	"github.com/rohmanhakim/site-parser/pkg/retry"
	"github.com/rohmanhakim/site-parser/pkg/timeutil"
	"github.com/rohmanhakim/site-parser/pkg/urlutil"
)

const (
	acceptHeader    = "text/html,application/xhtml+xml"
	backoffMaxDelay = 10 * time.Second
	backoffJitter   = 50 * time.Millisecond
)

type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *limiter.HostLimiter
	logger     *zap.Logger
}

func NewClient(cfg config.Config, logger *zap.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		limiter:    limiter.NewHostLimiter(cfg.PolitenessDelay()),
		logger:     logger,
	}
}

// Fetch retrieves one URL. Transient failures (transport errors and the
// retryable HTTP statuses) are retried per the configured retry budget; the
// returned Result always reflects the final attempt.
func (c *Client) Fetch(ctx context.Context, rawURL string) Result {
	host := ""
	if parsed, err := url.Parse(rawURL); err == nil {
		host = parsed.Hostname()
	}

	retryParam := retry.NewRetryParam(
		backoffJitter,
		time.Now().UnixNano(),
		c.cfg.RetryTotal()+1,
		timeutil.NewBackoffParam(
			time.Duration(c.cfg.RetryBackoffFactor()*float64(time.Second)),
			2.0,
			backoffMaxDelay,
		),
	)

	attempts := 0
	result, err := retry.Retry(ctx, retryParam, func() (Result, failure.ClassifiedError) {
		attempts++
		return c.fetchOnce(ctx, rawURL, host)
	})
	if err != nil {
		reason := ReasonRequestError
		var fetchErr *FetchError
		if errors.As(err, &fetchErr) {
			reason = fetchErr.Reason
		}
		c.logger.Debug("fetch failed",
			zap.String("url", rawURL),
			zap.String("reason", reason),
			zap.Int("attempts", attempts),
			zap.Error(err),
		)
		return Result{Reason: reason}
	}

	c.logger.Debug("fetch ok",
		zap.String("url", result.URL),
		zap.Int("status", result.StatusCode),
		zap.Int("attempts", attempts),
	)
	return result
}

func (c *Client) fetchOnce(ctx context.Context, rawURL string, host string) (Result, failure.ClassifiedError) {
	if err := c.limiter.Wait(ctx, host); err != nil {
		return Result{}, &FetchError{
			Message:   fmt.Sprintf("politeness wait aborted: %s", err.Error()),
			Reason:    ReasonRequestError,
			Retryable: false,
		}
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout())
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Result{}, &FetchError{
			Message:   fmt.Sprintf("building request for %s: %s", rawURL, err.Error()),
			Reason:    ReasonRequestError,
			Retryable: false,
		}
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent())
	req.Header.Set("Accept", acceptHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, &FetchError{
			Message:   fmt.Sprintf("requesting %s: %s", rawURL, err.Error()),
			Reason:    ReasonRequestError,
			Retryable: true,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		_, transient := transientStatuses[resp.StatusCode]
		return Result{}, &FetchError{
			Message:   fmt.Sprintf("fetching %s: HTTP %d", rawURL, resp.StatusCode),
			Reason:    ReasonHTTPStatus,
			Retryable: transient,
		}
	}

	contentType := resp.Header.Get("Content-Type")
	if !isParseableContentType(contentType) {
		return Result{}, &FetchError{
			Message:   fmt.Sprintf("fetching %s: content type %q is not parseable", rawURL, contentType),
			Reason:    ReasonContentType,
			Retryable: false,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, int64(c.cfg.MaxBodyBytes())))
	if err != nil {
		return Result{}, &FetchError{
			Message:   fmt.Sprintf("reading body of %s: %s", rawURL, err.Error()),
			Reason:    ReasonRequestError,
			Retryable: true,
		}
	}

	finalURL, normErr := urlutil.Normalize(resp.Request.URL.String(), c.cfg.IncludeQuery())
	if normErr != nil {
		return Result{}, &FetchError{
			Message:   fmt.Sprintf("normalizing final URL of %s: %s", rawURL, normErr.Error()),
			Reason:    ReasonURLNormalize,
			Retryable: false,
		}
	}

	return Result{
		OK:         true,
		URL:        finalURL,
		StatusCode: resp.StatusCode,
		Text:       decodeBody(body, contentType),
	}, nil
}

// decodeBody converts the capped body bytes to UTF-8 using the charset the
// server declared, falling back to treating the bytes as UTF-8 as-is.
func decodeBody(body []byte, contentType string) string {
	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return string(body)
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return string(body)
	}
	return string(decoded)
}

func isParseableContentType(contentType string) bool {
	mediaType := mediaTypeOf(contentType)
	if mediaType == "" {
		return true
	}
	_, ok := parseableContentTypes[mediaType]
	return ok
}

func mediaTypeOf(contentType string) string {
	mediaType, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mediaType))
}
