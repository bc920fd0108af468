// Package auth validates bearer tokens carried in a configurable request
// header. Signing keys come either from a JWKS endpoint or from a
// load-balancer style public-key endpoint addressed by key id.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"paralog-backend/base"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/exp/slices"
)

var (
	// ErrInvalidToken covers every token the caller could fix: malformed,
	// badly signed, expired, disallowed algorithm, unknown key.
	ErrInvalidToken = errors.New("invalid token")
	// ErrKeyResolution means the public-key endpoint could not produce a key.
	ErrKeyResolution = errors.New("failed resolving public key")
)

// JWKSAlgorithms is the default allow-list when keys come from a JWKS endpoint.
var JWKSAlgorithms = []jose.SignatureAlgorithm{
	jose.RS256, jose.RS384, jose.RS512,
	jose.ES256, jose.ES384, jose.ES512,
	jose.PS256, jose.PS384, jose.PS512,
}

var supportedAlgorithms = append(slices.Clone(JWKSAlgorithms), jose.EdDSA)

// PublicKeyAlgorithms is the default allow-list for the public-key endpoint.
var PublicKeyAlgorithms = []jose.SignatureAlgorithm{jose.ES256}

const bearerPrefix = "Bearer "

// keyVerifier checks the signature of a compact token and returns its payload.
type keyVerifier interface {
	verify(ctx context.Context, raw string, kid string) ([]byte, error)
}

// Authenticator is the token gate. A zero verifier means the gate is open.
type Authenticator struct {
	header     string
	algorithms []jose.SignatureAlgorithm
	verifier   keyVerifier
	httpClient *http.Client
	now        func() time.Time
	requests   *prometheus.CounterVec
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithHTTPClient sets the client used to fetch keys.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Authenticator) {
		a.httpClient = c
	}
}

// WithClock overrides the time used for claim validation.
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) {
		a.now = now
	}
}

// WithRegisterer counts authentication outcomes on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(a *Authenticator) {
		a.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "paralog",
			Subsystem: "auth",
			Name:      "requests_total",
			Help:      "Authentication decisions by outcome",
		}, []string{"outcome"})
		reg.MustRegister(a.requests)
	}
}

// New builds the gate from cfg. Authentication is disabled when no header
// name or no key source is configured.
func New(cfg base.AuthConfig, opts ...Option) (*Authenticator, error) {
	a := &Authenticator{
		header: cfg.Header,
		now:    time.Now,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(a)
	}

	if cfg.Header == "" || (cfg.JWKSURL == "" && cfg.PublicKeyURL == "") {
		slog.Warn("token validation is disabled, all requests are accepted",
			"header_set", cfg.Header != "", "jwks_url_set", cfg.JWKSURL != "", "public_key_url_set", cfg.PublicKeyURL != "")
		return a, nil
	}

	defaults := PublicKeyAlgorithms
	if cfg.JWKSURL != "" {
		defaults = JWKSAlgorithms
	}
	algorithms, err := parseAlgorithms(cfg.Algorithms, defaults)
	if err != nil {
		return nil, err
	}
	a.algorithms = algorithms

	if cfg.JWKSURL != "" {
		if cfg.PublicKeyURL != "" {
			slog.Info("both JWKS and public key endpoints configured, using JWKS", "jwks_url", cfg.JWKSURL)
		}
		a.verifier = newJWKSVerifier(cfg.JWKSURL, a.httpClient)
	} else {
		a.verifier = newPublicKeyVerifier(cfg.PublicKeyURL, a.httpClient, algorithms)
	}
	slog.Info("token validation enabled", "header", cfg.Header, "algorithms", algorithms)
	return a, nil
}

// Enabled reports whether tokens are checked.
func (a *Authenticator) Enabled() bool {
	return a.verifier != nil
}

// Verify checks a raw header value and returns the validated registered claims.
func (a *Authenticator) Verify(ctx context.Context, value string) (*jwt.Claims, error) {
	raw := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(value), bearerPrefix))
	tok, err := jwt.ParseSigned(raw, a.algorithms)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	kid := ""
	if len(tok.Headers) > 0 {
		kid = tok.Headers[0].KeyID
	}

	payload, err := a.verifier.verify(ctx, raw, kid)
	if err != nil {
		return nil, err
	}

	var claims jwt.Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if err := claims.ValidateWithLeeway(jwt.Expected{Time: a.now()}, jwt.DefaultLeeway); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return &claims, nil
}

// Handler returns the gin middleware enforcing the gate.
func (a *Authenticator) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.Enabled() {
			c.Next()
			return
		}
		values := c.Request.Header.Values(a.header)
		if len(values) == 0 {
			a.count("missing_header")
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "missing auth header: " + a.header})
			return
		}
		if _, err := a.Verify(c.Request.Context(), values[0]); err != nil {
			if errors.Is(err, ErrInvalidToken) {
				slog.Info("rejected token", "path", c.Request.URL.Path, "error", err)
				a.count("invalid")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthorised, invalid token"})
				return
			}
			slog.Error("failed validating token", "path", c.Request.URL.Path, "error", err)
			a.count("error")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
			return
		}
		a.count("ok")
		c.Next()
	}
}

func (a *Authenticator) count(outcome string) {
	if a.requests != nil {
		a.requests.WithLabelValues(outcome).Inc()
	}
}

// parseAlgorithms maps configured names to signature algorithms. HMAC
// algorithms are refused.
func parseAlgorithms(names []string, defaults []jose.SignatureAlgorithm) ([]jose.SignatureAlgorithm, error) {
	if len(names) == 0 {
		return defaults, nil
	}
	algorithms := make([]jose.SignatureAlgorithm, 0, len(names))
	for _, name := range names {
		i := slices.IndexFunc(supportedAlgorithms, func(alg jose.SignatureAlgorithm) bool {
			return strings.EqualFold(string(alg), strings.TrimSpace(name))
		})
		if i < 0 {
			return nil, fmt.Errorf("unsupported token algorithm %q", name)
		}
		alg := supportedAlgorithms[i]
		if !slices.Contains(algorithms, alg) {
			algorithms = append(algorithms, alg)
		}
	}
	return algorithms, nil
}
