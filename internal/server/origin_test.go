package server

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeOrigin(t *testing.T) {
	cases := []struct {
		origin   string
		expected string
		ok       bool
	}{
		{"http://example.com", "http://example.com", true},
		{"HTTP://Example.COM", "http://example.com", true},
		{"https://example.com:8443", "https://example.com:8443", true},
		{"not-a-url", "", false},
		{"http://", "", false},
		{"://missing-scheme", "", false},
		{"", "", false},
	}

	for _, c := range cases {
		got, ok := normalizeOrigin(c.origin)
		assert.Equal(t, c.ok, ok, "origin %q", c.origin)
		assert.Equal(t, c.expected, got, "origin %q", c.origin)
	}
}

func TestIsOriginAllowed(t *testing.T) {
	configureTest(t, func(cfg *Config) {
		cfg.AllowedOrigins = []string{"http://chat.example.com"}
	})

	t.Run("configured origin passes", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/ws", nil)
		r.Header.Set("Origin", "http://chat.example.com")
		assert.True(t, isOriginAllowed(r))
	})

	t.Run("origin matching is case-insensitive", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/ws", nil)
		r.Header.Set("Origin", "HTTP://Chat.Example.COM")
		assert.True(t, isOriginAllowed(r))
	})

	t.Run("unlisted origin is blocked", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/ws", nil)
		r.Header.Set("Origin", "http://evil.example.com")
		assert.False(t, isOriginAllowed(r))
	})

	t.Run("missing origin header is blocked", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/ws", nil)
		assert.False(t, isOriginAllowed(r))
	})

	t.Run("malformed origin is blocked", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/ws", nil)
		r.Header.Set("Origin", "not-a-url")
		assert.False(t, isOriginAllowed(r))
	})
}

func TestWildcardOriginAllowsEverything(t *testing.T) {
	configureTest(t, func(cfg *Config) {
		cfg.AllowedOrigins = []string{"*"}
	})

	r := httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Origin", "http://anything.example.com")
	assert.True(t, isOriginAllowed(r))
}
