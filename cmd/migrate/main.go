// Command migrate rewrites legacy item records into the canonical schema.
//
//	migrate [-dry-run] [-ensure-table]
//
// Records keyed by LOST_REPORT/FOUND_ITEM or carrying the old attribute names
// are rewritten in place; when the item type changes the canonical record is
// written first and the legacy key deleted afterwards. Re-running is safe.
// After a real run the Redis item cache is purged when REDIS_URL is set.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ghuser/lostfound/pkg/cache"
	"github.com/ghuser/lostfound/pkg/config"
	"github.com/ghuser/lostfound/pkg/database"
	"github.com/ghuser/lostfound/pkg/logger"
	"github.com/ghuser/lostfound/services/item/infrastructure/persistence/dynamo"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "print the migration plan without writing")
	ensureTable := flag.Bool("ensure-table", false, "create the item table and its indexes if missing")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg)
	ctx := context.Background()

	db, err := database.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to connect to dynamodb", "error", err)
		os.Exit(1)
	}
	if *ensureTable {
		if err := db.EnsureTable(ctx); err != nil {
			log.Error("failed to ensure table", "error", err)
			os.Exit(1)
		}
	}

	repo := dynamo.NewItemRepository(db, log)
	stats, err := repo.MigrateLegacy(ctx, *dryRun, func(s dynamo.MigrationStep) {
		action := "rewrite"
		if s.KeyChanged {
			action = "rekey"
		}
		fmt.Printf("%s\t%s\t%s -> %s\tstatus=%s", action, s.ItemID, s.FromType, s.ToType, s.Status)
		if len(s.ExtraNames) > 0 {
			fmt.Printf("\textra=%s", strings.Join(s.ExtraNames, ","))
		}
		fmt.Println()
	})
	if err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}

	if !*dryRun && stats.Migrated > 0 && cfg.RedisURL != "" {
		purgeItemCache(ctx, cfg, log)
	}

	log.Info("migration finished",
		"dry_run", *dryRun,
		"table", db.TableName(),
		"scanned", stats.Scanned,
		"canonical", stats.Canonical,
		"migrated", stats.Migrated,
		"failed", stats.Failed,
	)
	if stats.Failed > 0 {
		os.Exit(2)
	}
}

// purgeItemCache drops cached items so readers do not see pre-migration
// records. Failure is logged only; entries expire on their own.
func purgeItemCache(ctx context.Context, cfg *config.Config, log logger.Logger) {
	rc, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		log.Warn("skipping cache purge", "error", err)
		return
	}
	defer rc.Close() //nolint:errcheck

	n, err := cache.NewItemCache(rc).Purge(ctx)
	if err != nil {
		log.Warn("cache purge incomplete", "removed", n, "error", err)
		return
	}
	log.Info("item cache purged", "removed", n)
}
