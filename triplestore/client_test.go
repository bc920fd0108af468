package triplestore

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"paralog-backend/base"
	"paralog-backend/results"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const selectResult = `{
  "head": {"vars": ["uri", "name"]},
  "results": {"bindings": [
    {"uri": {"type": "uri", "value": "http://example.org/a1"}, "name": {"type": "literal", "value": "First"}}
  ]}
}`

// newTestClient points a client at srv with the dataset "knowledge".
func newTestClient(t *testing.T, srv *httptest.Server, opts ...Option) *Client {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return NewClient(base.JenaConfig{
		Protocol: u.Scheme,
		Host:     u.Hostname(),
		Port:     port,
		Dataset:  "knowledge",
		Timeout:  2 * time.Second,
	}, opts...)
}

func TestQuery(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Header().Set("Content-Type", sparqlResultsJSON)
		io.WriteString(w, selectResult)
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	bs, err := client.Query(context.Background(), "SELECT * WHERE { ?s ?p ?o }", map[string]string{
		"x-amzn-oidc-data": "token",
	})
	require.NoError(t, err)
	require.Equal(t, 1, bs.Len())
	assert.Equal(t, "First", bs.Rows[0]["name"].Value)

	require.NotNil(t, got)
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "/knowledge/query", got.URL.Path)
	assert.Equal(t, "SELECT * WHERE { ?s ?p ?o }", got.URL.Query().Get("query"))
	assert.Equal(t, sparqlResultsJSON, got.Header.Get("Accept"))
	assert.Equal(t, "token", got.Header.Get("x-amzn-oidc-data"))
	assert.Empty(t, got.Header.Get("Authorization"), "no credentials without digest config")
}

func TestQueryUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Parse error: bad query", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).Query(context.Background(), "SELECT", nil)
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusBadRequest, upstream.Status)
	assert.Contains(t, upstream.Body, "Parse error")
}

func TestQueryMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html>not json</html>")
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).Query(context.Background(), "SELECT * WHERE {}", nil)
	assert.ErrorIs(t, err, results.ErrMalformedResponse)
}

func TestQueryTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := newTestClient(t, srv).Query(ctx, "SELECT * WHERE {}", nil)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestQueryUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	client := newTestClient(t, srv)
	srv.Close()

	_, err := client.Query(context.Background(), "SELECT * WHERE {}", nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestUpdate(t *testing.T) {
	var method, path, update, contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path, contentType = r.Method, r.URL.Path, r.Header.Get("Content-Type")
		r.ParseForm()
		update = r.PostForm.Get("update")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	err := newTestClient(t, srv).Update(context.Background(), "INSERT DATA { <http://a> <http://b> <http://c> }", nil)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "/knowledge/update", path)
	assert.Equal(t, "application/x-www-form-urlencoded", contentType)
	assert.Equal(t, "INSERT DATA { <http://a> <http://b> <http://c> }", update)
}

func TestUpdateUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	err := newTestClient(t, srv).Update(context.Background(), "CLEAR ALL", nil)
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusForbidden, upstream.Status)
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ASK {}", r.URL.Query().Get("query"))
		io.WriteString(w, `{"head": {}, "boolean": true}`)
	}))
	defer srv.Close()

	assert.NoError(t, newTestClient(t, srv).Ping(context.Background()))
}

func TestMetricsRecordOutcome(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, selectResult)
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	client := newTestClient(t, srv, WithMetrics(NewMetrics(reg)))
	_, err := client.Query(context.Background(), "SELECT * WHERE {}", nil)
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "paralog_triplestore_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestForwardedHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("x-amzn-oidc-data", "data")
	h.Set("X-Custom", "custom")
	h.Set("Authorization", "Bearer abc")

	assert.Equal(t, map[string]string{"x-amzn-oidc-data": "data"}, ForwardedHeaders(h))
	assert.Empty(t, ForwardedHeaders(http.Header{}))
}

func TestReplayBodyTransport(t *testing.T) {
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(b))
	}))
	defer srv.Close()

	rt := replayBodyTransport{next: http.DefaultTransport}
	req, err := http.NewRequest(http.MethodPost, srv.URL, strings.NewReader("update=x"))
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		resp, err := rt.RoundTrip(req)
		require.NoError(t, err)
		resp.Body.Close()
	}
	assert.Equal(t, []string{"update=x", "update=x"}, bodies)
}

// digestServer challenges every request lacking an Authorization header and
// records what the retries carried.
type digestServer struct {
	mu         sync.Mutex
	challenged []string
	authorized []string
	bodies     []string
}

func (d *digestServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	d.mu.Lock()
	defer d.mu.Unlock()
	auth := r.Header.Get("Authorization")
	if auth == "" {
		d.challenged = append(d.challenged, r.URL.Path)
		w.Header().Set("WWW-Authenticate", `Digest realm="jena", nonce="dcd98b7102dd2f0e8b11d0f600bfb0c093", opaque="5ccc069c403ebaf9f0171e9517f40e41", qop="auth", algorithm=MD5`)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	d.authorized = append(d.authorized, auth)
	d.bodies = append(d.bodies, string(body))
	if r.Method == http.MethodGet {
		io.WriteString(w, selectResult)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func TestDigestCredentials(t *testing.T) {
	ds := &digestServer{}
	srv := httptest.NewServer(ds)
	defer srv.Close()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	client := NewClient(base.JenaConfig{
		Protocol: u.Scheme,
		Host:     u.Hostname(),
		Port:     port,
		Dataset:  "ds",
		User:     "u",
		Password: "p",
		Timeout:  2 * time.Second,
	})

	bs, err := client.Query(context.Background(), "SELECT * WHERE { ?s ?p ?o }", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, bs.Len())

	require.NoError(t, client.Update(context.Background(), "INSERT DATA {}", nil))

	ds.mu.Lock()
	defer ds.mu.Unlock()
	assert.Equal(t, []string{"/ds/query", "/ds/update"}, ds.challenged)
	require.Len(t, ds.authorized, 2)
	for _, auth := range ds.authorized {
		assert.True(t, strings.HasPrefix(auth, "Digest "), auth)
		assert.Contains(t, auth, `username="u"`)
		assert.Contains(t, auth, `realm="jena"`)
	}
	assert.Contains(t, ds.authorized[1], `uri="/ds/update"`)
	assert.Equal(t, "update=INSERT+DATA+%7B%7D", ds.bodies[1])
}
