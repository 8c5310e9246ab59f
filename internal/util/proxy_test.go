package util

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProxyFunc_Explicit(t *testing.T) {
	proxy := NewProxyFunc("http://proxy.local:3128", "http://secure.local:3129", "")

	req, err := http.NewRequest(http.MethodGet, "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi", nil)
	require.NoError(t, err)
	u, err := proxy(req)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "secure.local:3129", u.Host)

	req, err = http.NewRequest(http.MethodGet, "http://example.org/", nil)
	require.NoError(t, err)
	u, err = proxy(req)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "proxy.local:3128", u.Host)
}

func TestNewProxyFunc_NoProxy(t *testing.T) {
	proxy := NewProxyFunc("http://proxy.local:3128", "http://proxy.local:3128", "internal.example")

	req, err := http.NewRequest(http.MethodGet, "https://internal.example/api", nil)
	require.NoError(t, err)
	u, err := proxy(req)
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestNewHTTPClient(t *testing.T) {
	c := NewHTTPClient(10*time.Second, "", "", "")
	assert.Equal(t, 10*time.Second, c.Timeout)
	assert.NotNil(t, c.Transport)
}
