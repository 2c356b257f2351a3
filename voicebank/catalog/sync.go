package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"

	"github.com/makeitchaccha/voicebank/voicebank/locale"
	"github.com/makeitchaccha/voicebank/voicebank/voice"
)

// EntryOf describes v as a catalog entry indexed at the given time.
func EntryOf(v *voice.Config, indexedAt time.Time) Entry {
	return Entry{
		Name:      v.Name(),
		Locale:    locale.String(v.LocaleTag()),
		Kind:      v.Kind().String(),
		Source:    v.Source(),
		IndexedAt: indexedAt,
	}
}

// Sync makes the catalog mirror voices: every voice is saved and entries
// of voices that are no longer present are removed.
func Sync(ctx context.Context, repo Repository, voices []*voice.Config, now time.Time) error {
	existing, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list catalog: %w", err)
	}

	var errs []error
	for _, v := range voices {
		if err := repo.Save(ctx, EntryOf(v, now)); err != nil {
			errs = append(errs, err)
		}
	}

	stale, _ := lo.Difference(
		lo.Map(existing, func(e Entry, _ int) string { return e.Name }),
		lo.Map(voices, func(v *voice.Config, _ int) string { return v.Name() }),
	)
	for _, name := range stale {
		if err := repo.Delete(ctx, name); err != nil {
			// already removed by someone else
			if !errors.Is(err, ErrNotFound) {
				errs = append(errs, fmt.Errorf("failed to remove stale voice %q: %w", name, err))
			}
			continue
		}
		slog.Info("Removed stale voice from catalog", slog.String("name", name))
	}

	return errors.Join(errs...)
}
