package jobs

import (
	"context"
	"time"

	"corpanalyst/cmd/internal/metrics"

	"github.com/labstack/gommon/log"
)

// ExpiringCache is a cache table whose rows can be swept by age.
type ExpiringCache interface {
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// CacheCleaner deletes cache rows older than the retention window. Freshness
// never depends on it: a stale row is still served while providers are off.
type CacheCleaner struct {
	Tables    map[string]ExpiringCache
	Retention time.Duration
	Interval  time.Duration
	Now       func() time.Time
}

func NewCacheCleaner(tables map[string]ExpiringCache, retentionDays int, interval time.Duration) *CacheCleaner {
	return &CacheCleaner{
		Tables:    tables,
		Retention: time.Duration(retentionDays) * 24 * time.Hour,
		Interval:  interval,
		Now:       time.Now,
	}
}

func (c *CacheCleaner) Start(ctx context.Context) {
	if c.Retention <= 0 {
		log.Info("Cache retention is disabled, cache cleaner not started")
		return
	}

	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()

	log.Info("Cache cleaner cron started")

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping cache cleaner...")
			return
		case <-ticker.C:
			c.Sweep(ctx)
		}
	}
}

// Sweep runs one pass over every table and returns the number of rows removed.
// A failing table is logged and skipped.
func (c *CacheCleaner) Sweep(ctx context.Context) int64 {
	cutoff := c.Now().UTC().Add(-c.Retention)

	var total int64
	for name, table := range c.Tables {
		n, err := table.DeleteExpired(ctx, cutoff)
		if err != nil {
			log.Errorf("Cleaner: failed to sweep %s: %v", name, err)
			continue
		}

		metrics.CacheRowsSwept.WithLabelValues(name).Add(float64(n))
		total += n
	}

	log.Debugf("Cleaner: swept %d cache rows older than %s", total, cutoff.Format(time.DateOnly))
	return total
}
