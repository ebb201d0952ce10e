package client

import (
	"net/http"
	"net/netip"
	"net/url"

	"github.com/bongobongo2020/craft/settings"
)

// Auth headers carry the configured credentials verbatim.
const (
	headerAuthID     = "X-Auth-Id"
	headerAuthSecret = "X-Auth-Secret"
)

// deriveHeaders computes the auth headers for a settings snapshot.
// Credentials are attached only when auth is enabled, both values are
// present, and the HTTP endpoint is not a loopback or private-network
// address. Local endpoints never receive credentials, so pointing the
// same settings at a dev server cannot leak them.
func deriveHeaders(s settings.Settings) http.Header {
	h := http.Header{}
	if s.AuthEnabled && s.AuthID != "" && s.AuthSecret != "" && !isPrivateEndpoint(s.HTTPEndpoint) {
		h.Set(headerAuthID, s.AuthID)
		h.Set(headerAuthSecret, s.AuthSecret)
	}
	return h
}

// isPrivateEndpoint reports whether the endpoint host is loopback or in
// an RFC1918 private range. Non-IP hostnames other than "localhost" are
// assumed public.
func isPrivateEndpoint(endpoint string) bool {
	u, err := url.Parse(endpoint)
	if err != nil {
		return false
	}
	host := u.Hostname()
	if host == "localhost" {
		return true
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	return addr.IsLoopback() || addr.IsPrivate()
}

// applyAuthHeaders attaches the derived auth headers to a request.
func (c *Client) applyAuthHeaders(req *http.Request) {
	c.mu.Lock()
	headers := c.headers
	c.mu.Unlock()
	for k, vals := range headers {
		for _, v := range vals {
			req.Header.Set(k, v)
		}
	}
}

// applyJSONHeaders attaches the JSON content type plus auth headers.
// Multipart uploads skip this and let the multipart writer set its own
// content type.
func (c *Client) applyJSONHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	c.applyAuthHeaders(req)
}
