package middleware

import "testing"

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/users", "/api/users"},
		{"/health/ready", "/health/ready"},
		{"/socket", "/socket"},
		{"/api/redis-worker/job/1f0e2c1a-5b1d-4a8e-9c4e-0d7b0f3a9c11", "/api/redis-worker/job/{id}"},
		{"/api/redis-worker/job/abc/retry", "/api/redis-worker/job/{id}/retry"},
		{"/api/redis-worker/job/abc/other", "unmatched"},
		{"/api/redis-worker/job/", "unmatched"},
		{"/random/path", "unmatched"},
	}

	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, ожидался %q", tt.path, got, tt.want)
		}
	}
}
