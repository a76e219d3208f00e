// catalogsync 單次同步商品目錄到設定的資料庫
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/appcontext"
	"github.com/RoyceAzure/lab/storefront/internal/config"
	"github.com/rs/zerolog/log"
)

func main() {
	file := flag.String("file", "", "yaml seed file, overrides CATALOG_SEED_FILE")
	url := flag.String("url", "", "product feed url, overrides CATALOG_FEED_URL")
	timeout := flag.Duration("timeout", time.Minute, "sync timeout")
	flag.Parse()

	cf := *config.GetConfig()
	if *file != "" {
		cf.CatalogSeedFile = *file
		cf.CatalogFeedURL = ""
	} else if *url != "" {
		cf.CatalogSeedFile = ""
		cf.CatalogFeedURL = *url
	}

	app, err := appcontext.NewApplicationContext(&cf)
	if err != nil {
		log.Error().Err(err).Msg("init application")
		os.Exit(1)
	}
	defer app.Shutdown(5 * time.Second)

	source := app.CatalogSource()
	if source == nil {
		log.Error().Msg("no catalog source, set -file or -url")
		app.Shutdown(5 * time.Second)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	n, err := app.CatalogService.SyncFrom(ctx, source)
	if err != nil {
		log.Error().Err(err).Str("source", source.Name()).Msg("catalog sync failed")
		cancel()
		app.Shutdown(5 * time.Second)
		os.Exit(1)
	}
	log.Info().Int("count", n).Str("source", source.Name()).Msg("catalog synchronized")
}
