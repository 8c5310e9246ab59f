// Package mesh resolves free-text concepts to PubMed search fragments and
// holds the whitelist of authoritative MeSH blocks.
package mesh

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/ppiankov/querysmith/internal/cache"
	"github.com/ppiankov/querysmith/internal/logging"
	"github.com/ppiankov/querysmith/internal/model"
	"github.com/ppiankov/querysmith/internal/util"
	"github.com/ppiankov/querysmith/internal/worker"
)

const maxResponseBytes = 1 << 20

// Resolver turns a concept into the query translation reported by NCBI
// esearch. It never fails: any problem yields Fallback(concept).
type Resolver struct {
	httpClient *http.Client
	baseURL    string
	db         string
	apiKey     string
	tool       string
	email      string
	userAgent  string
	timeout    time.Duration
	ttl        time.Duration
	cache      cache.Cache
	limiter    *worker.Limiter
	logger     *zap.SugaredLogger

	hits     atomic.Int64
	fetched  atomic.Int64
	degraded atomic.Int64
}

// Options configures a Resolver. Cache, Limiter and Logger may be nil.
type Options struct {
	Terminology model.TerminologyConfig
	HTTP        model.HTTPConfig
	Cache       cache.Cache
	Limiter     *worker.Limiter
	Logger      *zap.SugaredLogger
	HTTPClient  *http.Client
}

// Stats counts resolver outcomes
type Stats struct {
	CacheHits int64
	Fetched   int64
	Degraded  int64
}

// NewResolver creates a resolver from opts, filling unset values from
// model.DefaultConfig
func NewResolver(opts Options) *Resolver {
	defaults := model.DefaultConfig().Terminology
	tc := opts.Terminology
	if tc.BaseURL == "" {
		tc.BaseURL = defaults.BaseURL
	}
	if tc.DB == "" {
		tc.DB = defaults.DB
	}
	if tc.Timeout <= 0 {
		tc.Timeout = defaults.Timeout
	}
	if tc.CacheTTL <= 0 {
		tc.CacheTTL = defaults.CacheTTL
	}

	c := opts.Cache
	if c == nil {
		c = cache.NewMemoryCache(tc.CacheTTL, 10*time.Minute)
	}

	limiter := opts.Limiter
	if limiter == nil {
		limiter = worker.NewLimiter(tc.RequestsPerSecond, tc.Burst)
	}

	client := opts.HTTPClient
	if client == nil {
		client = util.NewHTTPClient(tc.Timeout, opts.HTTP.HTTPProxy, opts.HTTP.HTTPSProxy, opts.HTTP.NoProxy)
	}

	return &Resolver{
		httpClient: client,
		baseURL:    tc.BaseURL,
		db:         tc.DB,
		apiKey:     tc.APIKey,
		tool:       tc.Tool,
		email:      tc.Email,
		userAgent:  opts.HTTP.UserAgent,
		timeout:    tc.Timeout,
		ttl:        tc.CacheTTL,
		cache:      c,
		limiter:    limiter,
		logger:     logging.Component(opts.Logger, "mesh.resolver"),
	}
}

type degradedKey struct{}

// TrackDegraded returns a context under which every fallback produced by
// Resolve is also counted in the returned counter
func TrackDegraded(ctx context.Context) (context.Context, *atomic.Int64) {
	c := new(atomic.Int64)
	return context.WithValue(ctx, degradedKey{}, c), c
}

// Fallback is the fragment used whenever resolution is not possible
func Fallback(concept string) string {
	return fmt.Sprintf(`"%s"[All Fields]`, concept)
}

// Resolve returns the search fragment for a non-empty concept
func (r *Resolver) Resolve(ctx context.Context, concept string) string {
	key := cache.CacheKey(concept)
	if fragment, ok := r.cache.Get(key); ok {
		r.hits.Add(1)
		return fragment
	}

	fragment, err := r.translate(ctx, concept)
	if err != nil {
		r.degraded.Add(1)
		if c, ok := ctx.Value(degradedKey{}).(*atomic.Int64); ok {
			c.Add(1)
		}
		logging.FromContext(ctx, r.logger).Warnw("resolution degraded, using fallback fragment",
			logging.FieldConcept, concept,
			logging.FieldReason, err.Error(),
		)
		return Fallback(concept)
	}

	r.fetched.Add(1)
	r.cache.Set(key, fragment, r.ttl)
	return fragment
}

// Stats returns a snapshot of resolver counters
func (r *Resolver) Stats() Stats {
	return Stats{
		CacheHits: r.hits.Load(),
		Fetched:   r.fetched.Load(),
		Degraded:  r.degraded.Load(),
	}
}

// esearchResult is the subset of the esearch XML we read
type esearchResult struct {
	QueryTranslation string `xml:"QueryTranslation"`
}

// translate asks esearch for the query translation of concept
func (r *Resolver) translate(ctx context.Context, concept string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.limiter.Wait(ctx, r.baseURL); err != nil {
		return "", errors.Wrap(err, "rate limit")
	}

	params := url.Values{}
	params.Set("db", r.db)
	params.Set("term", concept)
	params.Set("retmode", "xml")
	params.Set("retmax", "0")
	if r.apiKey != "" {
		params.Set("api_key", r.apiKey)
	}
	if r.tool != "" {
		params.Set("tool", r.tool)
	}
	if r.email != "" {
		params.Set("email", r.email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", errors.Wrap(err, "create request")
	}
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}
	req.Header.Set("Accept", "application/xml, text/xml")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Newf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", errors.Wrap(err, "read body")
	}
	if strings.TrimSpace(string(body)) == "" {
		return "", errors.New("empty body")
	}

	var result esearchResult
	if err := xml.Unmarshal(body, &result); err != nil {
		return "", errors.Wrap(err, "parse xml")
	}

	translation := strings.TrimSpace(result.QueryTranslation)
	if translation == "" {
		return "", errors.New("no query translation")
	}
	return translation, nil
}
