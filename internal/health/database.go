// Package health reports whether the service's dependencies are reachable.
package health

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

const defaultTimeout = 2 * time.Second

// DatabaseCheck pings the pool behind a gorm handle.
type DatabaseCheck struct {
	conn    *gorm.DB
	timeout time.Duration
}

func NewDatabaseCheck(conn *gorm.DB) *DatabaseCheck {
	return &DatabaseCheck{conn: conn, timeout: defaultTimeout}
}

func (c *DatabaseCheck) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	sqlDB, err := c.conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}
