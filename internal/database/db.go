// Package database opens and tunes the MySQL connection pool.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// dsnParams makes DATETIME columns scan into time.Time and pins the
// session to UTC; every timestamp in the schema is stored in UTC.
const dsnParams = "charset=utf8mb4&parseTime=true&loc=UTC"

// Config describes one MySQL target plus pool tunables.  Zero values for
// the tunables pick sensible defaults, so callers only set what they
// override.
type Config struct {
	User string
	Pass string // empty means no password
	Host string
	Port string
	Name string

	MaxOpenConns    int           // default 25
	MaxIdleConns    int           // default: same as MaxOpenConns
	ConnMaxLifetime time.Duration // default 30m
	PingTimeout     time.Duration // default 5s
}

func (c Config) dsn() string {
	cred := c.User
	if c.Pass != "" {
		cred += ":" + c.Pass
	}
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?%s", cred, c.Host, c.Port, c.Name, dsnParams)
}

func (c Config) withDefaults() Config {
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 25
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = c.MaxOpenConns
	}
	if c.ConnMaxLifetime <= 0 {
		c.ConnMaxLifetime = 30 * time.Minute
	}
	if c.PingTimeout <= 0 {
		c.PingTimeout = 5 * time.Second
	}
	return c
}

// Open builds the pool from cfg and verifies connectivity with a bounded
// ping before handing the handle out.
func Open(cfg Config) (*sql.DB, error) {
	cfg = cfg.withDefaults()

	db, err := sql.Open("mysql", cfg.dsn())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
