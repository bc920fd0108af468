package auth

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"paralog-backend/base"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHeader = "X-Amzn-Oidc-Data"

func init() {
	gin.SetMode(gin.TestMode)
}

func sign(t *testing.T, alg jose.SignatureAlgorithm, key any, kid string, claims jwt.Claims) string {
	t.Helper()
	opts := (&jose.SignerOptions{}).WithType("JWT")
	if kid != "" {
		opts = opts.WithHeader("kid", kid)
	}
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: alg, Key: key}, opts)
	require.NoError(t, err)
	token, err := jwt.Signed(signer).Claims(claims).Serialize()
	require.NoError(t, err)
	return token
}

func validClaims() jwt.Claims {
	now := time.Now()
	return jwt.Claims{
		Subject:  "user-1",
		IssuedAt: jwt.NewNumericDate(now.Add(-time.Minute)),
		Expiry:   jwt.NewNumericDate(now.Add(time.Hour)),
	}
}

// newJWKSServer serves the RSA public key under kid "k1".
func newJWKSServer(t *testing.T) (*httptest.Server, *rsa.PrivateKey) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	set := jose.JSONWebKeySet{Keys: []jose.JSONWebKey{{
		Key:       &priv.PublicKey,
		KeyID:     "k1",
		Algorithm: string(jose.RS256),
		Use:       "sig",
	}}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(set)
	}))
	t.Cleanup(srv.Close)
	return srv, priv
}

// newPublicKeyServer serves a PEM encoded P-256 key under /keys/k1.
func newPublicKeyServer(t *testing.T) (*httptest.Server, *ecdsa.PrivateKey, *atomic.Int32) {
	t.Helper()
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	hits := &atomic.Int32{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/keys/k1" {
			http.NotFound(w, r)
			return
		}
		w.Write(pemKey)
	}))
	t.Cleanup(srv.Close)
	return srv, priv, hits
}

func newRouter(t *testing.T, a *Authenticator) *gin.Engine {
	t.Helper()
	router := gin.New()
	router.Use(a.Handler())
	router.GET("/assessments", func(c *gin.Context) {
		c.JSON(http.StatusOK, []string{})
	})
	return router
}

func do(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/assessments", nil)
	if token != "" {
		req.Header.Set(testHeader, token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestDisabledPassesThrough(t *testing.T) {
	for name, cfg := range map[string]base.AuthConfig{
		"no key source": {Header: testHeader},
		"no header":     {JWKSURL: "http://localhost/jwks"},
	} {
		t.Run(name, func(t *testing.T) {
			a, err := New(cfg)
			require.NoError(t, err)
			assert.False(t, a.Enabled())
			w := do(newRouter(t, a), "")
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestMissingHeader(t *testing.T) {
	srv, _ := newJWKSServer(t)
	a, err := New(base.AuthConfig{Header: testHeader, JWKSURL: srv.URL})
	require.NoError(t, err)

	w := do(newRouter(t, a), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"missing auth header: X-Amzn-Oidc-Data"}`, w.Body.String())
}

func TestJWKS(t *testing.T) {
	srv, priv := newJWKSServer(t)
	reg := prometheus.NewRegistry()
	a, err := New(base.AuthConfig{Header: testHeader, JWKSURL: srv.URL}, WithRegisterer(reg))
	require.NoError(t, err)
	router := newRouter(t, a)

	t.Run("valid token", func(t *testing.T) {
		w := do(router, sign(t, jose.RS256, priv, "k1", validClaims()))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("bearer prefix", func(t *testing.T) {
		w := do(router, "Bearer "+sign(t, jose.RS256, priv, "k1", validClaims()))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("garbage", func(t *testing.T) {
		w := do(router, "not-a-token")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"message":"unauthorised, invalid token"}`, w.Body.String())
	})

	t.Run("expired", func(t *testing.T) {
		claims := validClaims()
		claims.Expiry = jwt.NewNumericDate(time.Now().Add(-time.Hour))
		w := do(router, sign(t, jose.RS256, priv, "k1", claims))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown kid", func(t *testing.T) {
		w := do(router, sign(t, jose.RS256, priv, "other", validClaims()))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong key", func(t *testing.T) {
		other, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		w := do(router, sign(t, jose.RS256, other, "k1", validClaims()))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("hmac refused", func(t *testing.T) {
		w := do(router, sign(t, jose.HS256, []byte("0123456789abcdef0123456789abcdef"), "k1", validClaims()))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	count, err := testutil.GatherAndCount(reg, "paralog_auth_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "ok and invalid outcomes")
}

func TestPublicKey(t *testing.T) {
	srv, priv, hits := newPublicKeyServer(t)
	a, err := New(base.AuthConfig{Header: testHeader, PublicKeyURL: srv.URL + "/keys/"})
	require.NoError(t, err)
	router := newRouter(t, a)

	t.Run("valid token", func(t *testing.T) {
		w := do(router, sign(t, jose.ES256, priv, "k1", validClaims()))
		assert.Equal(t, http.StatusOK, w.Code)
		w = do(router, sign(t, jose.ES256, priv, "k1", validClaims()))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.EqualValues(t, 1, hits.Load(), "key is fetched once per kid")
	})

	t.Run("missing kid", func(t *testing.T) {
		w := do(router, sign(t, jose.ES256, priv, "", validClaims()))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("algorithm not allowed", func(t *testing.T) {
		rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		w := do(router, sign(t, jose.RS256, rsaKey, "k1", validClaims()))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("key endpoint failure", func(t *testing.T) {
		w := do(router, sign(t, jose.ES256, priv, "unknown", validClaims()))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"message":"Internal Server Error"}`, w.Body.String())
	})
}

func TestPublicKeyAsJWK(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(jose.JSONWebKey{Key: &priv.PublicKey, KeyID: "k1"})
	}))
	defer srv.Close()

	a, err := New(base.AuthConfig{Header: testHeader, PublicKeyURL: srv.URL})
	require.NoError(t, err)
	claims, err := a.Verify(context.Background(), sign(t, jose.ES256, priv, "k1", validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestClock(t *testing.T) {
	srv, priv := newJWKSServer(t)
	future := func() time.Time { return time.Now().Add(48 * time.Hour) }
	a, err := New(base.AuthConfig{Header: testHeader, JWKSURL: srv.URL}, WithClock(future))
	require.NoError(t, err)

	_, err = a.Verify(context.Background(), sign(t, jose.RS256, priv, "k1", validClaims()))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAlgorithms(t *testing.T) {
	algs, err := parseAlgorithms(nil, PublicKeyAlgorithms)
	require.NoError(t, err)
	assert.Equal(t, PublicKeyAlgorithms, algs)

	algs, err = parseAlgorithms([]string{"rs256", " ES256", "RS256", "eddsa"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []jose.SignatureAlgorithm{jose.RS256, jose.ES256, jose.EdDSA}, algs)

	_, err = parseAlgorithms([]string{"HS256"}, nil)
	assert.Error(t, err)

	_, err = New(base.AuthConfig{Header: testHeader, JWKSURL: "http://localhost", Algorithms: []string{"none"}})
	assert.Error(t, err)
}

func TestParsePublicKey(t *testing.T) {
	_, err := parsePublicKey([]byte("nonsense"))
	assert.Error(t, err)

	_, err = parsePublicKey([]byte(`{"kty":"oct","k":"c2VjcmV0"}`))
	assert.Error(t, err)
}
