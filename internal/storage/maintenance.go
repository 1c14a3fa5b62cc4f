package storage

import (
	"context"
	"log"
	"time"
)

const maintenanceInterval = 1 * time.Hour

// StartMaintenance prunes expired cache entries on a fixed interval
// until ctx is cancelled.
func (c *Cache) StartMaintenance(ctx context.Context, retentionDays int) {
	go c.maintenanceLoop(ctx, retentionDays)
}

func (c *Cache) maintenanceLoop(ctx context.Context, retentionDays int) {
	ticker := time.NewTicker(maintenanceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Prune(retentionDays); err != nil {
				log.Printf("ERROR: cache maintenance failed: %v", err)
			}
		}
	}
}
