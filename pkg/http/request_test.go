package http_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	pkghttp "github.com/roy-raphael/DW-P6-Piiquante/pkg/http"
)

func TestRequestBaseURL(t *testing.T) {
	r := httptest.NewRequest("GET", "http://api.example.com/api/sauces", nil)

	assert.Equal(t, "http://api.example.com", pkghttp.RequestBaseURL(r))
}

func TestRequestBaseURL_ForwardedProto(t *testing.T) {
	r := httptest.NewRequest("GET", "http://api.example.com/api/sauces", nil)
	r.Header.Set("X-Forwarded-Proto", "https")

	assert.Equal(t, "https://api.example.com", pkghttp.RequestBaseURL(r))
}
