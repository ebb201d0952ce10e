package client

import (
	"testing"

	"github.com/bongobongo2020/craft/settings"
)

func authSettings(endpoint string) settings.Settings {
	return settings.Settings{
		HTTPEndpoint: endpoint,
		WSEndpoint:   "ws://example.com",
		AuthID:       "user",
		AuthSecret:   "secret",
		AuthEnabled:  true,
	}
}

func TestIsPrivateEndpoint(t *testing.T) {
	cases := []struct {
		endpoint string
		private  bool
	}{
		{"http://127.0.0.1:8188", true},
		{"http://localhost:8188", true},
		{"http://[::1]:8188", true},
		{"http://10.0.0.5:8188", true},
		{"http://172.16.0.1:8188", true},
		{"http://172.31.255.254", true},
		{"http://192.168.1.20:8188", true},
		{"https://example.com", false},
		{"http://8.8.8.8:8188", false},
		{"http://172.32.0.1", false},
		{"https://my-pod.runpod.net", false},
	}
	for _, tc := range cases {
		if got := isPrivateEndpoint(tc.endpoint); got != tc.private {
			t.Errorf("isPrivateEndpoint(%q) = %v, expected %v", tc.endpoint, got, tc.private)
		}
	}
}

func TestAuthHeadersAttachedForPublicEndpoint(t *testing.T) {
	h := deriveHeaders(authSettings("https://example.com"))
	if h.Get(headerAuthID) != "user" {
		t.Errorf("expected %s header, got %q", headerAuthID, h.Get(headerAuthID))
	}
	if h.Get(headerAuthSecret) != "secret" {
		t.Errorf("expected %s header, got %q", headerAuthSecret, h.Get(headerAuthSecret))
	}
}

func TestAuthHeadersNeverAttachedForLocalEndpoint(t *testing.T) {
	// credentials must not leak to local dev servers even with auth on
	h := deriveHeaders(authSettings("http://127.0.0.1:8188"))
	if len(h) != 0 {
		t.Errorf("expected no headers for loopback endpoint, got %v", h)
	}
}

func TestAuthHeadersRequireEnabledAndBothCredentials(t *testing.T) {
	s := authSettings("https://example.com")
	s.AuthEnabled = false
	if h := deriveHeaders(s); len(h) != 0 {
		t.Errorf("auth disabled: expected no headers, got %v", h)
	}

	s = authSettings("https://example.com")
	s.AuthSecret = ""
	if h := deriveHeaders(s); len(h) != 0 {
		t.Errorf("missing secret: expected no headers, got %v", h)
	}

	s = authSettings("https://example.com")
	s.AuthID = ""
	if h := deriveHeaders(s); len(h) != 0 {
		t.Errorf("missing id: expected no headers, got %v", h)
	}
}
