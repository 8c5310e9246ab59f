package mesh

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/querysmith/internal/model"
)

const obesityXML = `<?xml version="1.0" encoding="UTF-8" ?>
<!DOCTYPE eSearchResult PUBLIC "-//NLM//DTD esearch 20060628//EN" "https://eutils.ncbi.nlm.nih.gov/eutils/dtd/20060628/esearch.dtd">
<eSearchResult><Count>48213</Count><RetMax>0</RetMax><RetStart>0</RetStart><IdList/>
<TranslationSet/><QueryTranslation>"pediatric obesity"[MeSH Terms] OR ("pediatric"[All Fields] AND "obesity"[All Fields])</QueryTranslation>
</eSearchResult>`

func newTestResolver(t *testing.T, handler http.HandlerFunc) (*Resolver, *int32) {
	t.Helper()

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	r := NewResolver(Options{
		Terminology: model.TerminologyConfig{
			BaseURL:  server.URL,
			DB:       "pubmed",
			Timeout:  2 * time.Second,
			CacheTTL: time.Minute,
			Tool:     "querysmith-test",
		},
	})
	return r, &calls
}

func TestResolver_Success(t *testing.T) {
	r, calls := newTestResolver(t, func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		assert.Equal(t, "pubmed", q.Get("db"))
		assert.Equal(t, "children with obesity", q.Get("term"))
		assert.Equal(t, "xml", q.Get("retmode"))
		assert.Equal(t, "0", q.Get("retmax"))
		assert.Equal(t, "querysmith-test", q.Get("tool"))
		_, _ = w.Write([]byte(obesityXML))
	})

	got := r.Resolve(context.Background(), "children with obesity")
	assert.Equal(t, `"pediatric obesity"[MeSH Terms] OR ("pediatric"[All Fields] AND "obesity"[All Fields])`, got)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestResolver_CacheHitWithinTTL(t *testing.T) {
	r, calls := newTestResolver(t, func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(obesityXML))
	})

	first := r.Resolve(context.Background(), "children with obesity")
	second := r.Resolve(context.Background(), "children with obesity")

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls), "second call must be served from cache")
	assert.Equal(t, Stats{CacheHits: 1, Fetched: 1}, r.Stats())
}

func TestResolver_Fallbacks(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"non-200 status", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"too many requests", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}},
		{"empty body", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("   \n"))
		}},
		{"malformed xml", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<eSearchResult><QueryTranslation>"))
		}},
		{"missing translation", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<eSearchResult><Count>0</Count></eSearchResult>"))
		}},
		{"blank translation", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<eSearchResult><QueryTranslation> </QueryTranslation></eSearchResult>"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestResolver(t, tt.handler)
			got := r.Resolve(context.Background(), "BMI reduction")
			assert.Equal(t, `"BMI reduction"[All Fields]`, got)
			assert.Equal(t, int64(1), r.Stats().Degraded)
		})
	}
}

func TestResolver_FallbackIsNotCached(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)

	r, calls := newTestResolver(t, func(w http.ResponseWriter, _ *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(obesityXML))
	})

	assert.Equal(t, Fallback("obesity"), r.Resolve(context.Background(), "obesity"))

	fail.Store(false)
	assert.Contains(t, r.Resolve(context.Background(), "obesity"), "[MeSH Terms]")
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestResolver_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	r := NewResolver(Options{Terminology: model.TerminologyConfig{BaseURL: url, Timeout: time.Second}})
	assert.Equal(t, `"physical activity"[All Fields]`, r.Resolve(context.Background(), "physical activity"))
}

func TestResolver_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	r := NewResolver(Options{Terminology: model.TerminologyConfig{BaseURL: server.URL, Timeout: 50 * time.Millisecond}})

	start := time.Now()
	got := r.Resolve(context.Background(), "hyperkalemia")
	assert.Equal(t, `"hyperkalemia"[All Fields]`, got)
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}

func TestResolver_ConcurrentMisses(t *testing.T) {
	r, _ := newTestResolver(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(obesityXML))
	})

	var wg sync.WaitGroup
	results := make([]string, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.Resolve(context.Background(), "children with obesity")
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		require.Equal(t, results[0], got)
	}
}

func TestFallback(t *testing.T) {
	assert.Equal(t, `"children with obesity"[All Fields]`, Fallback("children with obesity"))
}

func TestResolver_TrackDegraded(t *testing.T) {
	r, _ := newTestResolver(t, func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Query().Get("term") == "children with obesity" {
			_, _ = w.Write([]byte(obesityXML))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	})

	ctx, degraded := TrackDegraded(context.Background())
	r.Resolve(ctx, "children with obesity")
	r.Resolve(ctx, "unknown thing")
	r.Resolve(ctx, "another unknown")
	assert.Equal(t, int64(2), degraded.Load())

	// untracked contexts still work
	assert.Equal(t, Fallback("x"), r.Resolve(context.Background(), "x"))
	assert.Equal(t, int64(2), degraded.Load())
}

func TestResolver_TranslateErrors(t *testing.T) {
	r, _ := newTestResolver(t, func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	_, err := r.translate(context.Background(), "malaria")
	require.Error(t, err)
	assert.Equal(t, "unexpected status: 503", err.Error())

	r, _ = newTestResolver(t, func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte("<eSearchResult><QueryTranslation>"))
	})
	_, err = r.translate(context.Background(), "malaria")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse xml: ")
}
