package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func requestFrom(remoteAddr string, headers map[string]string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signin", nil)
	req.RemoteAddr = remoteAddr
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

func TestClientIPResolver_IgnoresHeadersFromUntrustedPeer(t *testing.T) {
	var nilResolver *ClientIPResolver
	resolver, err := NewClientIPResolver(nil)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	req := requestFrom("192.0.2.1:5555", map[string]string{
		"X-Forwarded-For": "203.0.113.9",
		"X-Real-IP":       "203.0.113.10",
	})
	for _, r := range []*ClientIPResolver{nilResolver, resolver} {
		if got := r.ClientIP(req); got != "192.0.2.1" {
			t.Errorf("expected peer address, got %s", got)
		}
	}
}

func TestClientIPResolver_TrustedProxy(t *testing.T) {
	resolver, err := NewClientIPResolver([]string{"10.0.0.0/8", "172.16.0.5"})
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	tests := []struct {
		name    string
		remote  string
		headers map[string]string
		want    string
	}{
		{"forwarded", "10.0.0.2:80", map[string]string{"X-Forwarded-For": "203.0.113.9"}, "203.0.113.9"},
		{"spoofed leftmost hop", "10.0.0.2:80", map[string]string{"X-Forwarded-For": "1.2.3.4, 203.0.113.9, 10.0.0.3"}, "203.0.113.9"},
		{"bare address proxy", "172.16.0.5:80", map[string]string{"X-Real-IP": "198.51.100.7"}, "198.51.100.7"},
		{"garbage header", "10.0.0.2:80", map[string]string{"X-Forwarded-For": "not-an-ip"}, "10.0.0.2"},
		{"no headers", "10.0.0.2:80", nil, "10.0.0.2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolver.ClientIP(requestFrom(tt.remote, tt.headers)); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestNewClientIPResolver_RejectsInvalidEntries(t *testing.T) {
	if _, err := NewClientIPResolver([]string{"10.0.0.0/99"}); err == nil {
		t.Error("expected error for invalid prefix")
	}
	if _, err := NewClientIPResolver([]string{"proxy.local"}); err == nil {
		t.Error("expected error for hostname")
	}
}

func TestStrictRateLimiter_RotatedForwardedHeaderSharesBucket(t *testing.T) {
	factory := func(rule LimitRule) Limiter {
		return &countingLimiter{allowFirst: 1, calls: make(map[string]int)}
	}
	srl := NewStrictRateLimiter(factory, nil)
	handler := srl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, requestFrom("192.0.2.1:5555", map[string]string{"X-Forwarded-For": "203.0.113.1"}))
	if first.Code != http.StatusOK {
		t.Fatalf("expected first request allowed, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, requestFrom("192.0.2.1:5555", map[string]string{"X-Forwarded-For": "203.0.113.2"}))
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("expected a new forwarded address not to reset the limit, got %d", second.Code)
	}
}
