// dephealth_test.go — unit-тесты построения URL зависимости Redis.
package service

import "testing"

// TestRedisDependencyURL проверяет построение redis:// URL.
func TestRedisDependencyURL(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		db      int
		want    string
		wantErr bool
	}{
		{name: "localhost", addr: "localhost:6379", db: 0, want: "redis://localhost:6379/0"},
		{name: "номер БД", addr: "redis.svc:6380", db: 3, want: "redis://redis.svc:6380/3"},
		{name: "пустой хост", addr: ":6379", db: 0, want: "redis://localhost:6379/0"},
		{name: "IPv6", addr: "[::1]:6379", db: 1, want: "redis://[::1]:6379/1"},
		{name: "без порта", addr: "redis", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RedisDependencyURL(tt.addr, tt.db)
			if tt.wantErr {
				if err == nil {
					t.Errorf("RedisDependencyURL(%q) ожидалась ошибка", tt.addr)
				}
				return
			}
			if err != nil {
				t.Fatalf("RedisDependencyURL(%q) ошибка: %v", tt.addr, err)
			}
			if got != tt.want {
				t.Errorf("RedisDependencyURL(%q) = %q, ожидался %q", tt.addr, got, tt.want)
			}
		})
	}
}
