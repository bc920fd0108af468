package triplestore

import (
	"net/http"
)

// PassThroughHeaders are the only inbound headers forwarded to the triplestore.
var PassThroughHeaders = []string{
	"x-amzn-oidc-data",
	"x-amzn-oidc-identity",
	"x-amzn-oidc-accesstoken",
}

// ForwardedHeaders picks the pass-through headers present in h. Keys use the
// lower-case names above.
func ForwardedHeaders(h http.Header) map[string]string {
	forward := make(map[string]string)
	for _, name := range PassThroughHeaders {
		if values := h.Values(name); len(values) > 0 {
			forward[name] = values[0]
		}
	}
	return forward
}
