// Command backfill resolves order queue entries that were ingested before
// their identifiers existed in the catalog, for example after a bulk
// seedcatalog load. Archived entries are left alone.
// Usage: go run ./cmd/backfill
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"packslip/internal/config"
	"packslip/internal/domain"
	"packslip/internal/identifier"
	"packslip/internal/port"
	"packslip/internal/repository/postgres"
)

const batchSize = 100

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	resolver := identifier.NewResolver(postgres.NewCatalogRepo(db))
	resolved, scanned, err := backfill(context.Background(), postgres.NewOrderQueueRepo(db), resolver, batchSize)
	if err != nil {
		return err
	}

	log.Printf("Backfill complete: %d of %d unresolved entries resolved", resolved, scanned)
	return nil
}

// backfill pages through unresolved entries. Entries resolved in a batch drop
// out of the unresolved listing, so the offset only advances past the ones
// that stay unresolved.
func backfill(ctx context.Context, queueRepo port.OrderQueueRepository, resolver *identifier.Resolver, size int) (resolved, scanned int, err error) {
	offset := 0
	for {
		entries, _, err := queueRepo.List(ctx, domain.OrderQueueFilter{UnresolvedOnly: true}, offset, size)
		if err != nil {
			return resolved, scanned, fmt.Errorf("listing unresolved entries at offset %d: %w", offset, err)
		}
		if len(entries) == 0 {
			return resolved, scanned, nil
		}

		stillUnresolved := 0
		for i := range entries {
			e := &entries[i]
			scanned++
			if !e.WorkflowStatus.IsActive() {
				stillUnresolved++
				continue
			}

			res, err := resolver.Resolve(ctx, e.MarketplaceIdentifier, e.Platform)
			if err != nil {
				return resolved, scanned, fmt.Errorf("resolving entry %s: %w", e.ID, err)
			}
			if !res.IsResolved() {
				stillUnresolved++
				continue
			}

			ok, err := queueRepo.SetResolution(ctx, e.ID, res.CanonicalSKU, res.ProductID)
			if err != nil {
				return resolved, scanned, fmt.Errorf("updating entry %s: %w", e.ID, err)
			}
			if ok {
				resolved++
			}
		}

		if len(entries) < size {
			return resolved, scanned, nil
		}
		offset += stillUnresolved
	}
}
