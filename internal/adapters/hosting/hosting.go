// Package hosting implements the admission network capability: redirect
// resolution over HTTP, repository inspection through the git CLI, and a
// GitHub REST fast path when tokens are configured
package hosting

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"registrygate/internal/adapters/hosting/github"
	"registrygate/internal/core/repourl"
	"registrygate/internal/platform/logger"
	"registrygate/internal/services/admission/domain"

	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 30 * time.Second
	defaultUA      = "registrygate-parser"
	defaultGitBin  = "git"
	maxRedirects   = 10
)

// Options configures the Transport
type Options struct {
	Timeout    time.Duration
	RatePerSec float64 // <= 0 disables limiting
	Burst      int
	UserAgent  string
	GitBin     string

	GitHub github.Options // fast path is used only when tokens are set

	// HTTPClient overrides the resolver client (tests)
	HTTPClient *http.Client
}

// Transport talks to hosting providers. Safe for concurrent use
type Transport struct {
	http    *http.Client
	limiter *rate.Limiter
	gh      *github.Client
	opts    Options
	log     logger.Logger
}

var _ domain.Transport = (*Transport)(nil)

// New builds a Transport with defaults applied
func New(o Options) *Transport {
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.GitBin == "" {
		o.GitBin = defaultGitBin
	}
	if o.Burst <= 0 {
		o.Burst = 1
	}

	lim := rate.NewLimiter(rate.Inf, o.Burst)
	if o.RatePerSec > 0 {
		lim = rate.NewLimiter(rate.Limit(o.RatePerSec), o.Burst)
	}

	// the caller's client is copied so its redirect policy stays untouched
	hc := &http.Client{Timeout: o.Timeout}
	if o.HTTPClient != nil {
		c := *o.HTTPClient
		hc = &c
	}
	hc.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return http.ErrUseLastResponse
		}
		return nil
	}

	if o.GitHub.UserAgent == "" {
		o.GitHub.UserAgent = o.UserAgent
	}
	if o.GitHub.Timeout <= 0 {
		o.GitHub.Timeout = o.Timeout
	}

	return &Transport{
		http:    hc,
		limiter: lim,
		gh:      github.NewClient(o.GitHub),
		opts:    o,
		log:     *logger.Named("hosting"),
	}
}

// wait blocks on the shared rate limiter
func (t *Transport) wait(ctx context.Context) error {
	return t.limiter.Wait(ctx)
}

// githubRepo returns owner and repo when the fast path can serve cloneURL
func (t *Transport) githubRepo(cloneURL string) (string, string, bool) {
	if !t.gh.Enabled() {
		return "", "", false
	}
	u, err := url.Parse(cloneURL)
	if err != nil || !strings.EqualFold(u.Host, "github.com") {
		return "", "", false
	}
	segs := repourl.Segments(u)
	if len(segs) != 2 {
		return "", "", false
	}
	return segs[0], segs[1], true
}
