package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
)

type Config struct {
	AppPort string

	DataFile     string
	BorrowersDir string
	APIKey       string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func Load() *Config {
	c := &Config{
		AppPort:      getenv("LOAN_TRACKER_PORT", "8087"),
		DataFile:     getenv("LOAN_TRACKER_DATA", "data/loans.json"),
		BorrowersDir: getenv("BORROWERS_DIR", ""),
		APIKey:       os.Getenv("LOAN_TRACKER_API_KEY"),

		// Redis is optional; when unset, idempotency replay is off.
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		IdempTTLSecs: 300,
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RedisDB = n
		}
	}
	if v := os.Getenv("IDEMPOTENCY_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.IdempTTLSecs = n
		}
	}
	return c
}

func (c *Config) Validate() error {
	if c.DataFile == "" {
		return errors.New("missing LOAN_TRACKER_DATA")
	}
	if c.AppPort == "" {
		return errors.New("missing LOAN_TRACKER_PORT")
	}
	if _, err := net.LookupPort("tcp", c.AppPort); err != nil {
		return fmt.Errorf("invalid LOAN_TRACKER_PORT %q: %w", c.AppPort, err)
	}
	return nil
}
