package utils

import "net/http"

// Headers the proxy sets itself or that only make sense on a single
// connection. Keys are in canonical form.
var droppedHeaders = map[string]bool{
	"Content-Type":        true,
	"Content-Length":      true,
	"Connection":          true,
	"Keep-Alive":          true,
	"Proxy-Authenticate":  true,
	"Proxy-Authorization": true,
	"Te":                  true,
	"Trailer":             true,
	"Transfer-Encoding":   true,
	"Upgrade":             true,
}

// PassthroughHeaders returns a copy of upstream without the headers the
// response determines on its own. Matching is case-insensitive.
func PassthroughHeaders(upstream http.Header) http.Header {
	out := make(http.Header, len(upstream))
	for key, values := range upstream {
		if droppedHeaders[http.CanonicalHeaderKey(key)] {
			continue
		}
		out[key] = append([]string(nil), values...)
	}
	return out
}
