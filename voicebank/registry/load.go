package registry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/makeitchaccha/voicebank/voicebank/voice"
)

// Source is a tree of voice definitions.
type Source struct {
	// Name identifies the tree in logs and voice sources, e.g. a directory.
	Name    string
	FS      fs.FS
	Pattern string
}

// Load parses every definition in src matching src.Pattern, using up to
// workers goroutines (unbounded when workers <= 0), and registers the valid
// ones in file order.
//
// A broken definition does not stop the others: its error is logged and
// collected, and all collected errors are returned joined. Only a cancelled
// ctx aborts the load without registering anything.
func (r *Registry) Load(ctx context.Context, src Source, workers int, opts ...voice.Option) error {
	matches, err := fs.Glob(src.FS, src.Pattern)
	if err != nil {
		return fmt.Errorf("failed to list voice definitions in %s: %w", src.Name, err)
	}
	if len(matches) == 0 {
		slog.Warn("No voice definitions found", slog.String("source", src.Name), slog.String("pattern", src.Pattern))
		return nil
	}

	loaded := make([]*voice.Config, len(matches))
	errs := make([]error, len(matches))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, name := range matches {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			cfg, err := loadFile(src, name, opts)
			if err != nil {
				errs[i] = err
				return nil
			}
			loaded[i] = cfg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("loading voices from %s: %w", src.Name, err)
	}

	for i, cfg := range loaded {
		if cfg != nil {
			if err := r.Register(cfg); err != nil {
				errs[i] = err
			} else {
				slog.Info("Loaded voice",
					slog.String("name", cfg.Name()),
					slog.String("locale", cfg.LocaleTag().String()),
					slog.String("source", cfg.Source()),
				)
			}
		}
		if errs[i] != nil {
			slog.Error("Failed to load voice", slog.String("file", matches[i]), slog.String("source", src.Name), slog.Any("err", errs[i]))
		}
	}

	return errors.Join(errs...)
}

func loadFile(src Source, name string, opts []voice.Option) (*voice.Config, error) {
	file, err := src.FS.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open voice definition %s: %w", name, err)
	}
	defer file.Close()

	opts = append(slices.Clip(opts), voice.WithSource(filepath.Join(src.Name, filepath.FromSlash(name))))
	return voice.New(file, opts...)
}
