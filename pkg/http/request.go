package http

import (
	"net/http"
)

// RequestBaseURL reconstructs the external scheme://host prefix of a request
// for building absolute resource URLs (e.g. image links). A reverse proxy's
// X-Forwarded-Proto wins over the local connection state.
func RequestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}
