package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"elitepay/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

const lastScanKey = "scan:last"

// scanCacheTTL keeps a stale "last seen card" from surfacing after long
// reader idle periods.
const scanCacheTTL = 24 * time.Hour

// ScanCache implements ports.ScanCache using Redis. It is the fast path
// for the kiosk's "last seen card" view; the scan log remains the
// source of truth.
type ScanCache struct {
	client *goredis.Client
}

// NewScanCache creates a new Redis-backed scan cache.
func NewScanCache(client *goredis.Client) *ScanCache {
	return &ScanCache{client: client}
}

// SetLast stores the most recent scan.
func (c *ScanCache) SetLast(ctx context.Context, scan *domain.Scan) error {
	payload, err := json.Marshal(scan)
	if err != nil {
		return fmt.Errorf("marshal scan: %w", err)
	}
	if err := c.client.Set(ctx, lastScanKey, payload, scanCacheTTL).Err(); err != nil {
		return fmt.Errorf("redis scan set: %w", err)
	}
	return nil
}

// GetLast retrieves the most recent scan. Returns nil, nil on a miss.
func (c *ScanCache) GetLast(ctx context.Context) (*domain.Scan, error) {
	val, err := c.client.Get(ctx, lastScanKey).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis scan get: %w", err)
	}

	var scan domain.Scan
	if err := json.Unmarshal(val, &scan); err != nil {
		return nil, fmt.Errorf("unmarshal scan: %w", err)
	}
	return &scan, nil
}
