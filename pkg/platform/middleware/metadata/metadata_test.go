package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIPFromRequest(t *testing.T) {
	tests := []struct {
		name       string
		remote     string
		headers    map[string]string
		trustProxy bool
		want       string
	}{
		{"direct ipv4", "10.1.2.3:5555", nil, false, "10.1.2.3"},
		{"direct ipv6", "[::1]:5555", nil, false, "::1"},
		{"forwarded ignored without trust", "10.1.2.3:5555", map[string]string{"X-Forwarded-For": "203.0.113.9"}, false, "10.1.2.3"},
		{"first forwarded hop", "10.1.2.3:5555", map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"}, true, "203.0.113.9"},
		{"real ip header", "10.1.2.3:5555", map[string]string{"X-Real-IP": " 198.51.100.4 "}, true, "198.51.100.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIPFromRequest(r, tt.trustProxy))
		})
	}
}

func TestClientMetadataMiddleware(t *testing.T) {
	var ip, ua string
	h := ClientMetadata(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip = GetClientIP(r.Context())
		ua = GetUserAgent(r.Context())
	}))
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.7:1234"
	r.Header.Set("User-Agent", "homestay-portal/2.1")
	h.ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "192.0.2.7", ip)
	assert.Equal(t, "homestay-portal/2.1", ua)
}
