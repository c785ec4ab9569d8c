package config

import (
	"errors"
	"fmt"

	"github.com/tinker/quotesync/internal/chunk"
)

// Validate checks that all required fields are set and values are valid.
func (c *SyncerConfig) Validate() error {
	if c.Sync.LookbackDays < 1 || c.Sync.LookbackDays > chunk.MaxLookbackDays {
		return fmt.Errorf("sync.lookback_days must be between 1 and %d, got %d",
			chunk.MaxLookbackDays, c.Sync.LookbackDays)
	}
	if len(c.Sync.Tickers) == 0 {
		return errors.New("sync.tickers must list at least one symbol")
	}
	for _, t := range c.Sync.Tickers {
		if t == "" {
			return errors.New("sync.tickers must not contain empty symbols")
		}
	}

	if c.Provider.MaxRetries < 0 {
		return errors.New("provider.max_retries must be >= 0")
	}

	if err := c.Database.validate("database"); err != nil {
		return err
	}

	if c.Logging.Level != "debug" && c.Logging.Level != "info" {
		return fmt.Errorf("logging.level must be debug or info, got %q", c.Logging.Level)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
