package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("COMMENT_RENDER_DEPTH", "")
	t.Setenv("STATEMENT_TIMEOUT", "not-a-duration")

	cfg := Load()
	if cfg.DBDriver != "postgres" {
		t.Fatalf("DBDriver = %q, want postgres", cfg.DBDriver)
	}
	if cfg.CommentRenderDepth != 3 {
		t.Fatalf("CommentRenderDepth = %d, want 3", cfg.CommentRenderDepth)
	}
	if cfg.StatementTimeout != 10*time.Second {
		t.Fatalf("StatementTimeout = %v, want fallback 10s", cfg.StatementTimeout)
	}
}

func TestDSNPerDriver(t *testing.T) {
	cases := []struct {
		driver string
		want   string
	}{
		{driver: "postgres", want: "sslmode=disable"},
		{driver: "mysql", want: "parseTime=True"},
		{driver: "sqlite", want: "foreign_keys(1)"},
	}
	for _, tc := range cases {
		t.Run(tc.driver, func(t *testing.T) {
			cfg := &Config{DBDriver: tc.driver, DBSSLMode: "disable", SQLitePath: "x.db"}
			if dsn := cfg.DSN(); !strings.Contains(dsn, tc.want) {
				t.Fatalf("DSN() = %q, want it to contain %q", dsn, tc.want)
			}
		})
	}
}

func TestClampPageSize(t *testing.T) {
	cfg := &Config{DefaultPageSize: 20, MaxPageSize: 100}
	cases := map[int]int{0: 20, -5: 20, 10: 10, 500: 100}
	for in, want := range cases {
		if got := cfg.ClampPageSize(in); got != want {
			t.Fatalf("ClampPageSize(%d) = %d, want %d", in, got, want)
		}
	}
}
