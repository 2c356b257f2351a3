package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/makeitchaccha/voicebank/migrations"
	"github.com/makeitchaccha/voicebank/voicebank"
	"github.com/makeitchaccha/voicebank/voicebank/bundled"
	"github.com/makeitchaccha/voicebank/voicebank/catalog"
	"github.com/makeitchaccha/voicebank/voicebank/registry"
	"github.com/makeitchaccha/voicebank/voicebank/resource"
	"github.com/makeitchaccha/voicebank/voicebank/voice"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	path := flag.String("config", "config.toml", "path to config")
	format := flag.String("format", "toml", "format of the voice listing (toml or json)")
	shouldMigrate := flag.Bool("migrate", false, "Whether to migrate the catalog database before syncing")
	flag.Parse()

	cfg, err := voicebank.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to read config", slog.Any("err", err))
		os.Exit(-1)
	}

	setupLogger(cfg.Log)
	slog.Info("Starting voicebank...", slog.String("version", Version), slog.String("commit", Commit))

	ctx, cancel := voicebank.WithTimeout(context.Background(), cfg.Voices.LoadTimeout)

	opts := []voice.Option{voice.WithResources(packagedResources(cfg.Voices))}
	voices := registry.New()

	if cfg.Voices.IncludeBundled {
		src := registry.Source{Name: "bundled", FS: bundled.Voices(), Pattern: bundled.Pattern}
		if err := voices.Load(ctx, src, cfg.Voices.Workers, opts...); err != nil {
			slog.Warn("Some bundled voices could not be loaded", slog.Any("err", err))
		}
	}
	for _, dir := range cfg.Voices.Directories {
		src := registry.Source{Name: dir, FS: os.DirFS(dir), Pattern: cfg.Voices.Pattern}
		if err := voices.Load(ctx, src, cfg.Voices.Workers, opts...); err != nil {
			slog.Warn("Some voices could not be loaded", slog.String("directory", dir), slog.Any("err", err))
		}
	}
	cancel()
	slog.Info("Voices loaded", slog.Int("count", voices.Len()), slog.Any("locales", voices.Locales()))

	if cfg.Database.Enabled {
		if err := syncCatalog(context.Background(), cfg.Database, *shouldMigrate, voices); err != nil {
			slog.Error("Failed to sync voice catalog", slog.Any("err", err))
			os.Exit(-1)
		}
	} else {
		slog.Info("Database is disabled, catalog will not be updated")
	}

	listing := voicebank.NewListing(voices.List(), cfg.Voices.BaseLocation)
	if err := listing.Encode(os.Stdout, *format); err != nil {
		slog.Error("Failed to write voice listing", slog.Any("err", err))
		os.Exit(-1)
	}
}

func packagedResources(cfg voicebank.VoicesConfig) resource.Accessor {
	var accessors []resource.Accessor
	if cfg.PackagedDir != "" {
		accessors = append(accessors, resource.FromFS(os.DirFS(cfg.PackagedDir)))
	}
	if cfg.IncludeBundled {
		accessors = append(accessors, bundled.Resources())
	}
	return resource.Chain(accessors...)
}

func syncCatalog(ctx context.Context, cfg voicebank.DatabaseConfig, migrate bool, voices *registry.Registry) error {
	dialect, err := cfg.GooseDialect()
	if err != nil {
		return err
	}

	ctx, cancel := voicebank.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	slog.Info("Connecting to database", slog.String("driver", cfg.Driver))
	db, err := sqlx.ConnectContext(ctx, cfg.Driver, cfg.Dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	if migrate {
		slog.Info("Migrating catalog database", slog.String("dialect", dialect))
		goose.SetBaseFS(migrations.FS)
		if err := goose.SetDialect(dialect); err != nil {
			return err
		}
		if err := goose.UpContext(ctx, db.DB, "."); err != nil {
			return err
		}
	}

	if err := catalog.Sync(ctx, catalog.NewRepository(db), voices.List(), time.Now()); err != nil {
		return err
	}
	slog.Info("Voice catalog synced", slog.Int("count", voices.Len()))
	return nil
}

func setupLogger(cfg voicebank.LogConfig) {
	opts := &slog.HandlerOptions{
		AddSource: cfg.AddSource,
		Level:     cfg.Level,
	}

	var sHandler slog.Handler
	switch cfg.Format {
	case "json":
		sHandler = slog.NewJSONHandler(os.Stderr, opts)
	case "text":
		sHandler = slog.NewTextHandler(os.Stderr, opts)
	default:
		slog.Error("Unknown log format", slog.String("format", cfg.Format))
		os.Exit(-1)
	}
	slog.SetDefault(slog.New(sHandler))
}
