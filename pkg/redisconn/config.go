package redisconn

import "time"

// Config holds Redis connection settings. The service keeps all of its
// keys in a single logical database (index 1 by default).
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL,required"`
	DB             int           `env:"REDIS_DB" envDefault:"1"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"10s"`
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"2s"`
}
