package database

import (
	"testing"
	"time"
)

func TestDSN(t *testing.T) {
	cfg := Config{User: "app", Pass: "pw", Host: "db", Port: "3306", Name: "tickets"}
	want := "app:pw@tcp(db:3306)/tickets?" + dsnParams
	if got := cfg.dsn(); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	cfg.Pass = ""
	want = "app@tcp(db:3306)/tickets?" + dsnParams
	if got := cfg.dsn(); got != want {
		t.Errorf("Expected passwordless DSN %q, got %q", want, got)
	}
}

func TestWithDefaults(t *testing.T) {
	got := Config{}.withDefaults()
	if got.MaxOpenConns != 25 {
		t.Errorf("Expected 25 open conns, got %d", got.MaxOpenConns)
	}
	if got.MaxIdleConns != got.MaxOpenConns {
		t.Errorf("Expected idle conns to follow open conns, got %d", got.MaxIdleConns)
	}
	if got.ConnMaxLifetime != 30*time.Minute {
		t.Errorf("Expected 30m lifetime, got %s", got.ConnMaxLifetime)
	}
	if got.PingTimeout != 5*time.Second {
		t.Errorf("Expected 5s ping timeout, got %s", got.PingTimeout)
	}

	set := Config{MaxOpenConns: 10, MaxIdleConns: 4, ConnMaxLifetime: time.Minute, PingTimeout: time.Second}.withDefaults()
	if set.MaxOpenConns != 10 || set.MaxIdleConns != 4 || set.ConnMaxLifetime != time.Minute || set.PingTimeout != time.Second {
		t.Errorf("Explicit tunables must survive defaulting, got %+v", set)
	}
}
