package dbpool

import (
	"fmt"
	"net/url"
	"time"
)

// MainDatabase is the fixed catalog database holding the gallery table and
// the FX rate cache.
const MainDatabase = "pardaaf_main"

// Config describes the shared DSN template. Only the database name varies
// per tenant.
type Config struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     int    `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER,required"`
	Password string `env:"DB_PASSWORD,required"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	MinConns int32 `env:"DB_POOL_MIN_CONNS" envDefault:"1"`
	MaxConns int32 `env:"DB_POOL_MAX_CONNS" envDefault:"10"`

	// AcquireTimeout bounds how long a request waits for a free connection
	// before the pool is reported as unavailable.
	AcquireTimeout time.Duration `env:"DB_ACQUIRE_TIMEOUT" envDefault:"5s"`
}

// DSN renders the connection string for the given database name.
func (c Config) DSN(dbName string) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.User), url.QueryEscape(c.Password),
		c.Host, c.Port, dbName, c.SSLMode)
}
