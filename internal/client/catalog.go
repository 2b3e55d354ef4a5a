package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"sheetpos/pos/internal/config"
	"sheetpos/pos/internal/domain"
	"sheetpos/pos/internal/metrics"
	"sheetpos/pos/internal/proxy"
	"sheetpos/pos/internal/resolver"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

// CatalogClient downloads workbook bytes for a catalog source URL.
type CatalogClient interface {
	Download(ctx context.Context, sourceURL string) ([]byte, error)
}

type catalogClient struct {
	rl            ratelimit.Limiter
	config        config.FetchConfig
	httpClient    *resty.Client
	proxySupplier proxy.Supplier
	metrics       *metrics.Metrics
}

func NewCatalogClient(cfg config.FetchConfig, proxySupplier proxy.Supplier, m *metrics.Metrics) CatalogClient {
	client := resty.New().
		SetRetryCount(0).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(cfg.MaxRedirects)).
		SetHeader("Accept", cfg.Accept).
		SetHeader("User-Agent", cfg.UserAgent)

	if proxySupplier != nil {
		if proxyURL := proxySupplier.Get(); proxyURL != "" {
			client.SetProxy(proxyURL)
			log.Infof("🔗 Using initial proxy: %s", proxyURL)
		}
	}

	return &catalogClient{
		rl:            ratelimit.New(cfg.MaxRequestsPerSecond),
		config:        cfg,
		httpClient:    client,
		proxySupplier: proxySupplier,
		metrics:       m,
	}
}

// attempt is the outcome of one GET against one candidate URL.
type attempt struct {
	candidate resolver.Candidate
	status    int
	body      []byte
	html      bool
	err       error
	timedOut  bool
}

func (a attempt) ok() bool {
	return a.err == nil && a.status >= 200 && a.status < 300 && len(a.body) > 0 && !a.html
}

func (a attempt) authFailure() bool {
	return a.status == http.StatusUnauthorized || a.status == http.StatusForbidden
}

func (a attempt) describe() string {
	switch {
	case a.err != nil:
		return fmt.Sprintf("%s: %v", a.candidate.Name, a.err)
	case a.status < 200 || a.status >= 300:
		return fmt.Sprintf("%s: HTTP %d", a.candidate.Name, a.status)
	case a.html:
		return fmt.Sprintf("%s: web page instead of a spreadsheet", a.candidate.Name)
	case len(a.body) == 0:
		return fmt.Sprintf("%s: empty response", a.candidate.Name)
	}
	return a.candidate.Name + ": ok"
}

func (a attempt) outcome() string {
	switch {
	case a.timedOut:
		return "timeout"
	case a.err != nil:
		return "transport_error"
	case a.status < 200 || a.status >= 300:
		return fmt.Sprintf("status_%d", a.status)
	case a.html:
		return "html"
	case len(a.body) == 0:
		return "empty_body"
	}
	return metrics.OutcomeSuccess
}

func (c *catalogClient) Download(ctx context.Context, sourceURL string) ([]byte, error) {
	sourceURL = strings.TrimSpace(sourceURL)
	if sourceURL == "" {
		return nil, domain.NewError(domain.KindInvalidSource, "Please enter an Excel file URL")
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.OverallTimeout)
	defer cancel()

	class := resolver.Classify(sourceURL)
	candidates := resolver.Resolve(sourceURL)
	log.Infof("📥 Loading catalog from %s (%s, %d candidate(s))", sourceURL, class, len(candidates))

	var data []byte
	var err error
	if class == resolver.EnterpriseCloud {
		data, err = c.tryCandidates(ctx, candidates)
	} else {
		data, err = c.trySingle(ctx, class, candidates[0])
	}

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &domain.Error{
				Kind:    domain.KindFetchTimeout,
				Message: fmt.Sprintf("Request timeout after %s. The file may require authentication or be inaccessible.", c.config.OverallTimeout),
				Err:     err,
			}
		}
		return nil, err
	}

	log.Infof("✅ Downloaded catalog workbook, %d bytes", len(data))
	return data, nil
}

// tryCandidates walks enterprise-cloud strategies in order and stops at the
// first usable workbook.
func (c *catalogClient) tryCandidates(ctx context.Context, candidates []resolver.Candidate) ([]byte, error) {
	attempts := make([]attempt, 0, len(candidates))

	for i, candidate := range candidates {
		log.Infof("🔄 [%d/%d] Trying %s: %s", i+1, len(candidates), candidate.Name, candidate.URL)

		a := c.fetch(ctx, candidate, c.config.EnterpriseAttemptTimeout)
		a = c.followInterstitial(ctx, a, c.config.EnterpriseAttemptTimeout)
		if a.ok() {
			return a.body, nil
		}

		log.Warnf("❌ %s failed: %s", candidate.Name, a.describe())
		attempts = append(attempts, a)

		if ctx.Err() != nil {
			break
		}
	}

	described := make([]string, 0, len(attempts))
	for _, a := range attempts {
		described = append(described, a.describe())
	}

	last := attempts[len(attempts)-1]
	if last.authFailure() || (last.html && last.err == nil) {
		return nil, &domain.Error{
			Kind:       domain.KindFetchAuthRequired,
			Message:    "OneDrive file requires authentication. Please download the file and upload it instead.",
			StatusCode: last.status,
			Attempts:   described,
		}
	}

	return nil, &domain.Error{
		Kind:       domain.KindFetchFailed,
		Message:    "All download methods failed: " + strings.Join(described, "; "),
		StatusCode: last.status,
		Attempts:   described,
		Err:        last.err,
	}
}

func (c *catalogClient) trySingle(ctx context.Context, class resolver.SourceClass, candidate resolver.Candidate) ([]byte, error) {
	log.Debugf("Converted download URL: %s", candidate.URL)

	a := c.fetch(ctx, candidate, c.config.Timeout)
	a = c.followInterstitial(ctx, a, c.config.Timeout)
	if a.ok() {
		return a.body, nil
	}

	fail := func(kind domain.ErrorKind, msg string) error {
		return &domain.Error{
			Kind:       kind,
			Message:    msg,
			StatusCode: a.status,
			Attempts:   []string{a.describe()},
			Err:        a.err,
		}
	}

	switch {
	case a.timedOut:
		return nil, fail(domain.KindFetchTimeout, fmt.Sprintf("Request timeout after %s. The file may require authentication or be inaccessible.", c.config.Timeout))
	case a.err != nil:
		return nil, fail(domain.KindFetchFailed, "No response from server. Check your internet connection and the file URL.")
	case a.authFailure() && class == resolver.SpreadsheetHost:
		return nil, fail(domain.KindFetchAuthRequired, "Google Sheets file is not publicly accessible. Share it with \"Anyone with the link\" as Viewer, or download it and upload the file instead.")
	case a.status == http.StatusNotFound:
		return nil, fail(domain.KindFetchFailed, "File not found (404). Please check the URL.")
	case a.status == http.StatusForbidden:
		return nil, fail(domain.KindFetchFailed, "Access denied (403). The file may be private. Make sure the file is publicly accessible.")
	case a.status < 200 || a.status >= 300:
		return nil, fail(domain.KindFetchFailed, fmt.Sprintf("HTTP %d: %s", a.status, http.StatusText(a.status)))
	case a.html:
		return nil, fail(domain.KindFetchAuthRequired, "The link returned a web page instead of a spreadsheet. The file may require sign-in; share it publicly or download and upload it instead.")
	default:
		return nil, fail(domain.KindFetchFailed, "Empty response from server")
	}
}

// followInterstitial follows a download confirmation page once.
func (c *catalogClient) followInterstitial(ctx context.Context, a attempt, timeout time.Duration) attempt {
	if a.err != nil || !a.html {
		return a
	}

	link, err := extractDownloadLink(a.candidate.URL, a.body)
	if err != nil {
		log.Warnf("Failed to inspect HTML response from %s: %v", a.candidate.Name, err)
		return a
	}
	if link == "" {
		return a
	}

	log.Infof("🔁 Following download confirmation for %s", a.candidate.Name)
	return c.fetch(ctx, resolver.Candidate{Name: a.candidate.Name + "-confirm", URL: link}, timeout)
}

func (c *catalogClient) fetch(ctx context.Context, candidate resolver.Candidate, timeout time.Duration) attempt {
	c.rl.Take()

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.httpClient.R().
		SetContext(reqCtx).
		Get(candidate.URL)

	a := attempt{candidate: candidate}
	if err != nil {
		a.err = err
		a.timedOut = errors.Is(reqCtx.Err(), context.DeadlineExceeded)
		if ctx.Err() == nil && !a.timedOut {
			c.rotateProxy()
		}
	} else {
		a.status = resp.StatusCode()
		a.body = resp.Bytes()
		a.html = a.status >= 200 && a.status < 300 && looksLikeHTML(resp.Header().Get("Content-Type"), a.body)
	}

	c.metrics.FetchAttempt(candidate.Name, a.outcome(), time.Since(start))
	log.Debugf("%s answered in %s: %s", candidate.Name, time.Since(start).Round(time.Millisecond), a.outcome())
	return a
}

func (c *catalogClient) rotateProxy() {
	if c.proxySupplier == nil || c.proxySupplier.Len() < 2 {
		return
	}
	if next := c.proxySupplier.Get(); next != "" {
		log.Infof("🔄 Switching to proxy: %s", next)
		c.httpClient.SetProxy(next)
	}
}
