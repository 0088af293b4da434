package utils

import (
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	cases := []struct {
		name       string
		forwarded  string
		remoteAddr string
		want       string
	}{
		{"no proxy", "", "192.168.1.10:54321", "192.168.1.10"},
		{"single forwarded", "203.0.113.7", "10.0.0.1:80", "203.0.113.7"},
		{"proxy chain keeps first", "203.0.113.7, 10.0.0.2, 10.0.0.3", "10.0.0.1:80", "203.0.113.7"},
		{"whitespace trimmed", "  203.0.113.7 , 10.0.0.2", "10.0.0.1:80", "203.0.113.7"},
	}
	for _, c := range cases {
		r := httptest.NewRequest("POST", "/", nil)
		r.RemoteAddr = c.remoteAddr
		if c.forwarded != "" {
			r.Header.Set("X-Forwarded-For", c.forwarded)
		}
		if got := ClientIP(r); got != c.want {
			t.Errorf("%s: ClientIP = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestIsAllowedIP(t *testing.T) {
	allowed := []string{"192.168.1.10", " 10.0.0.5 "}
	cases := []struct {
		ip   string
		want bool
	}{
		{"192.168.1.10", true},
		{"10.0.0.5", true},
		{" 192.168.1.10 ", true},
		{"192.168.1.11", false},
		{"", false},
	}
	for _, c := range cases {
		if got := IsAllowedIP(c.ip, allowed); got != c.want {
			t.Errorf("IsAllowedIP(%q) = %v, want %v", c.ip, got, c.want)
		}
	}
}

func TestIsAllowedIPEmptyList(t *testing.T) {
	if IsAllowedIP("192.168.1.10", nil) {
		t.Error("empty allow-list must return false; the caller handles fail-open")
	}
}
