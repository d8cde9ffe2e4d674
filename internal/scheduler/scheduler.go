/*
Package scheduler orchestrates a single-domain crawl.

Responsibilities:
- Seed the frontier with the normalized start URL
- Keep up to the configured number of fetches in flight
- Enforce the page, depth and wall-clock budgets
- Resolve, filter and prioritize discovered links
- Union extracted contacts and produce the final result with diagnostics
*/
package scheduler

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rohmanhakim/site-parser/internal/config"
	"github.com/rohmanhakim/site-parser/internal/extractor"
	"github.com/rohmanhakim/site-parser/internal/fetcher"
	"github.com/rohmanhakim/site-parser/internal/focus"
	"github.com/rohmanhakim/site-parser/internal/frontier"
	"github.com/rohmanhakim/site-parser/pkg/hashutil"
	"github.com/rohmanhakim/site-parser/pkg/urlutil"
)

type Scheduler struct {
	cfg    config.Config
	client *fetcher.Client
	logger *zap.Logger
}

func New(cfg config.Config, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cfg:    cfg,
		client: fetcher.NewClient(cfg, logger.Named("http")),
		logger: logger,
	}
}

// completion is what a fetch worker reports back to the orchestrator.
type completion struct {
	url      string
	depth    int
	result   fetcher.Result
	panicked bool
}

// Parse crawls the site reachable from startURL and returns the contacts it
// found. The crawl stays on the start URL's domain and stops when the
// frontier drains or a configured budget runs out.
func (s *Scheduler) Parse(ctx context.Context, startURL string, includeDiagnostics bool) (ParseResult, error) {
	startedAt := time.Now()
	s.logger.Info("crawl started", zap.String("start_url", startURL))

	normalizedStart, err := urlutil.Normalize(startURL, s.cfg.IncludeQuery())
	if err != nil {
		return ParseResult{}, fmt.Errorf("%w: %s", ErrInvalidStartURL, err.Error())
	}
	baseHostname, err := urlutil.HostnameKey(normalizedStart)
	if err != nil {
		return ParseResult{}, fmt.Errorf("%w: %s", ErrInvalidStartURL, err.Error())
	}

	phoneRegions, inferredRegions := s.initialRegions(normalizedStart)

	deadline := startedAt.Add(s.cfg.MaxDuration())
	maxConcurrency := s.cfg.MaxConcurrency()
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}

	emails := make(map[string]struct{})
	phones := make(map[string]struct{})
	pageFingerprints := make(map[string]struct{})

	discovered := frontier.NewSet[string]()
	discovered.Add(normalizedStart)
	queue := frontier.New()
	queue.Push(s.priority(normalizedStart), 0, normalizedStart)

	effectiveStart := normalizedStart

	crawlCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	var workers errgroup.Group
	// Buffered so a worker finishing after the loop breaks never blocks.
	completions := make(chan completion, maxConcurrency)

	inFlight := 0
	scheduled := 0
	fetchedOK := 0
	fetchedFailed := 0
	processedPages := 0
	skippedParse := 0
	duplicatePages := 0
	linksExamined := 0
	linksEnqueued := 0
	maxDepthReached := 0
	failureReasons := make(map[string]int)
	stopReason := StopCompleted

loop:
	for queue.Len() > 0 || inFlight > 0 {
		if time.Now().After(deadline) {
			s.logger.Info("stopping crawl on wall-clock budget",
				zap.Duration("max_duration", s.cfg.MaxDuration()))
			stopReason = StopMaxSeconds
			break
		}

		for queue.Len() > 0 && inFlight < maxConcurrency && scheduled < s.cfg.MaxPages() {
			item, _ := queue.Pop()
			fetchURL, depth := item.URL, item.Depth
			workers.Go(func() error {
				defer func() {
					if r := recover(); r != nil {
						completions <- completion{url: fetchURL, depth: depth, panicked: true}
					}
				}()
				result := s.client.Fetch(crawlCtx, fetchURL)
				completions <- completion{url: fetchURL, depth: depth, result: result}
				return nil
			})
			inFlight++
			scheduled++
		}

		if inFlight == 0 {
			if queue.Len() > 0 && scheduled >= s.cfg.MaxPages() {
				stopReason = StopMaxPages
			}
			break
		}

		waitBudget := time.Until(deadline)
		if waitBudget < 0 {
			waitBudget = 0
		}
		timer := time.NewTimer(waitBudget)
		select {
		case done := <-completions:
			timer.Stop()
			inFlight--

			if done.depth > maxDepthReached {
				maxDepthReached = done.depth
			}
			if done.panicked {
				fetchedFailed++
				failureReasons[reasonWorkerPanic]++
				continue
			}
			if !done.result.OK {
				fetchedFailed++
				failureReasons[done.result.Reason]++
				continue
			}

			fetchedOK++
			if done.url == normalizedStart {
				// Redirects may move the crawl to another host; adopt the
				// final URL as the domain anchor.
				effectiveStart = done.result.URL
				if key, keyErr := urlutil.HostnameKey(effectiveStart); keyErr == nil {
					baseHostname = key
				}
				if inferredRegions {
					phoneRegions = regionsFromURL(effectiveStart)
				}
			}

			doc, parseErr := goquery.NewDocumentFromReader(strings.NewReader(done.result.Text))
			if parseErr != nil {
				skippedParse++
				continue
			}
			processedPages++

			fingerprint := hashutil.FingerprintString(done.result.Text)
			if _, seen := pageFingerprints[fingerprint]; seen {
				// Same body as an earlier page: links are still worth
				// following, re-extracting contacts is not.
				duplicatePages++
			} else {
				pageFingerprints[fingerprint] = struct{}{}
				pageText := extractor.FlattenText(doc)
				for email := range extractor.Emails(pageText, doc, s.cfg.EmailDomainAllowlist()) {
					emails[email] = struct{}{}
				}
				for phone := range extractor.Phones(pageText, doc, phoneRegions) {
					phones[phone] = struct{}{}
				}
			}

			if done.depth >= s.cfg.MaxDepth() {
				continue
			}

			var candidates []string
			links := extractor.Links(doc)
			if len(links) > s.cfg.MaxLinksPerPage() {
				links = links[:s.cfg.MaxLinksPerPage()]
			}
			for _, href := range links {
				linksExamined++
				if !extractor.IsProbablyParseableHref(href) {
					continue
				}
				normalized, resolveErr := resolveLink(done.result.URL, href, s.cfg.IncludeQuery())
				if resolveErr != nil {
					continue
				}
				if !urlutil.IsSameDomain(normalized, baseHostname) {
					continue
				}
				if discovered.Contains(normalized) {
					continue
				}
				candidates = append(candidates, normalized)
			}

			if s.cfg.FocusedCrawling() {
				sort.SliceStable(candidates, func(i, j int) bool {
					return focus.Score(candidates[i]) < focus.Score(candidates[j])
				})
			}

			for _, normalized := range candidates {
				if discovered.Len() >= s.cfg.MaxPages() {
					break
				}
				discovered.Add(normalized)
				linksEnqueued++
				queue.Push(s.priority(normalized), done.depth+1, normalized)
			}

		case <-timer.C:
			stopReason = StopMaxSeconds
			break loop

		case <-ctx.Done():
			timer.Stop()
			stopReason = StopMaxSeconds
			break loop
		}
	}

	cancel()
	_ = workers.Wait()

	if stopReason == StopCompleted && queue.Len() > 0 && inFlight == 0 && scheduled >= s.cfg.MaxPages() {
		stopReason = StopMaxPages
	}

	duration := math.Round(time.Since(startedAt).Seconds()*1000) / 1000

	var diagnostics *Diagnostics
	if includeDiagnostics {
		diagnostics = &Diagnostics{
			StopReason:      stopReason,
			DurationSeconds: duration,
			Limits: Limits{
				MaxPages:   s.cfg.MaxPages(),
				MaxDepth:   s.cfg.MaxDepth(),
				MaxSeconds: s.cfg.MaxDuration().Seconds(),
			},
			Counters: Counters{
				ScheduledPages:    scheduled,
				FetchedPages:      fetchedOK,
				FailedPages:       fetchedFailed,
				ProcessedPages:    processedPages,
				SkippedSoupParse:  skippedParse,
				DuplicatePages:    duplicatePages,
				DiscoveredURLs:    discovered.Len(),
				LinksExamined:     linksExamined,
				LinksEnqueued:     linksEnqueued,
				FrontierRemaining: queue.Len(),
				MaxDepthReached:   maxDepthReached,
			},
			FailureReasons: failureReasons,
			ContactsFound: ContactsFound{
				Emails: len(emails),
				Phones: len(phones),
			},
		}
	}

	s.logger.Info("crawl finished",
		zap.Int("emails", len(emails)),
		zap.Int("phones", len(phones)),
		zap.Int("pages", scheduled),
		zap.Float64("duration_seconds", duration),
		zap.String("stop_reason", stopReason),
	)

	resultURL, originErr := urlutil.Origin(effectiveStart)
	if originErr != nil {
		resultURL = effectiveStart
	}

	return ParseResult{
		URL:         resultURL,
		Emails:      sortedKeys(emails),
		Phones:      sortedKeys(phones),
		Diagnostics: diagnostics,
	}, nil
}

func (s *Scheduler) priority(rawURL string) int {
	if !s.cfg.FocusedCrawling() {
		return 0
	}
	return focus.Score(rawURL)
}

// initialRegions decides which phone regions apply before the first page
// comes back: the configured list when present, otherwise a guess from the
// start URL's top-level domain.
func (s *Scheduler) initialRegions(normalizedStart string) ([]string, bool) {
	configured := s.cfg.PhoneRegions()
	if len(configured) > 0 {
		var regions []string
		for _, region := range configured {
			if region != "" && strings.ToUpper(region) != urlutil.RegionUnknown {
				regions = append(regions, region)
			}
		}
		return regions, false
	}
	return regionsFromURL(normalizedStart), true
}

func regionsFromURL(rawURL string) []string {
	inferred := urlutil.InferPhoneRegion(rawURL)
	if inferred == urlutil.RegionUnknown {
		return nil
	}
	return []string{inferred}
}

// resolveLink makes an href absolute against the page it appeared on and
// canonicalizes it.
func resolveLink(pageURL string, href string, includeQuery bool) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", err
	}
	return urlutil.Normalize(base.ResolveReference(ref).String(), includeQuery)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
