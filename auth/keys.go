package auth

import (
	"context"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/go-jose/go-jose/v4"
)

// jwksVerifier resolves keys from a JWKS document. Keys are cached and the
// document is refetched when a token names an unknown kid.
type jwksVerifier struct {
	keySet *oidc.RemoteKeySet
}

func newJWKSVerifier(jwksURL string, client *http.Client) *jwksVerifier {
	ctx := oidc.ClientContext(context.Background(), client)
	return &jwksVerifier{keySet: oidc.NewRemoteKeySet(ctx, jwksURL)}
}

func (v *jwksVerifier) verify(ctx context.Context, raw string, kid string) ([]byte, error) {
	payload, err := v.keySet.VerifySignature(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: kid %q: %v", ErrInvalidToken, kid, err)
	}
	return payload, nil
}

// publicKeyVerifier fetches one public key per kid from {baseURL}/{kid}.
// Keys behind a kid never change, so they are kept for the process lifetime.
type publicKeyVerifier struct {
	baseURL    string
	client     *http.Client
	algorithms []jose.SignatureAlgorithm

	mu   sync.RWMutex
	keys map[string]any
}

func newPublicKeyVerifier(baseURL string, client *http.Client, algorithms []jose.SignatureAlgorithm) *publicKeyVerifier {
	return &publicKeyVerifier{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		client:     client,
		algorithms: algorithms,
		keys:       map[string]any{},
	}
}

func (v *publicKeyVerifier) verify(ctx context.Context, raw string, kid string) ([]byte, error) {
	if kid == "" {
		return nil, fmt.Errorf("%w: token has no kid header", ErrInvalidToken)
	}
	key, err := v.key(ctx, kid)
	if err != nil {
		return nil, err
	}
	jws, err := jose.ParseSigned(raw, v.algorithms)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	payload, err := jws.Verify(key)
	if err != nil {
		return nil, fmt.Errorf("%w: kid %q: %v", ErrInvalidToken, kid, err)
	}
	return payload, nil
}

func (v *publicKeyVerifier) key(ctx context.Context, kid string) (any, error) {
	v.mu.RLock()
	key, ok := v.keys[kid]
	v.mu.RUnlock()
	if ok {
		return key, nil
	}

	key, err := v.fetch(ctx, kid)
	if err != nil {
		return nil, err
	}
	v.mu.Lock()
	v.keys[kid] = key
	v.mu.Unlock()
	return key, nil
}

func (v *publicKeyVerifier) fetch(ctx context.Context, kid string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/"+url.PathEscape(kid), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyResolution, err)
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: kid %q: %v", ErrKeyResolution, kid, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, fmt.Errorf("%w: kid %q: %v", ErrKeyResolution, kid, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: kid %q: status %d", ErrKeyResolution, kid, resp.StatusCode)
	}
	key, err := parsePublicKey(body)
	if err != nil {
		return nil, fmt.Errorf("%w: kid %q: %v", ErrKeyResolution, kid, err)
	}
	return key, nil
}

// parsePublicKey accepts a PEM encoded PKIX public key or a single JWK.
func parsePublicKey(data []byte) (any, error) {
	if block, _ := pem.Decode(data); block != nil {
		return x509.ParsePKIXPublicKey(block.Bytes)
	}
	var jwk jose.JSONWebKey
	if err := json.Unmarshal(data, &jwk); err != nil {
		return nil, errors.New("key is neither PEM nor JWK")
	}
	if !jwk.Valid() || !jwk.IsPublic() {
		return nil, errors.New("JWK is not a valid public key")
	}
	return jwk.Key, nil
}
