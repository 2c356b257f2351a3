package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/makeitchaccha/voicebank/voicebank/properties"
	"github.com/makeitchaccha/voicebank/voicebank/voice"
)

func openTestDB(t *testing.T, name string) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Connect("sqlite", "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	// always use the latest schema
	goose.SetBaseFS(nil)
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.Up(db.DB, "../../migrations"))
	return db
}

func TestRepository(t *testing.T) {
	repo := NewRepository(openTestDB(t, "catalog_repository"))
	ctx := context.Background()
	indexedAt := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	t.Run("Save and Find", func(t *testing.T) {
		entry := Entry{Name: "alice", Locale: "en_US", Kind: "voice", Source: "voices/alice.config", IndexedAt: indexedAt}
		require.NoError(t, repo.Save(ctx, entry))

		found, err := repo.Find(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, entry.Name, found.Name)
		assert.Equal(t, entry.Locale, found.Locale)
		assert.Equal(t, entry.Kind, found.Kind)
		assert.Equal(t, entry.Source, found.Source)
		assert.True(t, entry.IndexedAt.Equal(found.IndexedAt), "IndexedAt = %v, want %v", found.IndexedAt, entry.IndexedAt)
	})

	t.Run("Save and Update", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, Entry{Name: "bob", Locale: "de", Kind: "voice", Source: "old", IndexedAt: indexedAt}))
		require.NoError(t, repo.Save(ctx, Entry{Name: "bob", Locale: "de_AT", Kind: "voice", Source: "new", IndexedAt: indexedAt}))

		found, err := repo.Find(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, "de_AT", found.Locale)
		assert.Equal(t, "new", found.Source)
	})

	t.Run("List", func(t *testing.T) {
		entries, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "alice", entries[0].Name)
		assert.Equal(t, "bob", entries[1].Name)
	})

	t.Run("Find Not Found", func(t *testing.T) {
		_, err := repo.Find(ctx, "carol")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "bob"))

		_, err := repo.Find(ctx, "bob")
		require.ErrorIs(t, err, ErrNotFound)

		require.ErrorIs(t, repo.Delete(ctx, "bob"), ErrNotFound)
	})
}

func TestPlaceholderFormat(t *testing.T) {
	query, err := placeholderFormat("postgres").ReplacePlaceholders("name = ? AND locale = ?")
	require.NoError(t, err)
	assert.Equal(t, "name = $1 AND locale = $2", query)

	query, err = placeholderFormat("mysql").ReplacePlaceholders("name = ?")
	require.NoError(t, err)
	assert.Equal(t, "name = ?", query)
}

func TestSync(t *testing.T) {
	repo := NewRepository(openTestDB(t, "catalog_sync"))
	ctx := context.Background()
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Save(ctx, Entry{Name: "retired", Locale: "fr", Kind: "voice", Source: "gone", IndexedAt: now.Add(-time.Hour)}))

	alice, err := voice.FromRecord(properties.Record{"name": "alice", "locale": "en_US"}, voice.WithSource("voices/alice.config"))
	require.NoError(t, err)
	bob, err := voice.FromRecord(properties.Record{"name": "bob", "locale": "de"})
	require.NoError(t, err)

	require.NoError(t, Sync(ctx, repo, []*voice.Config{alice, bob}, now))

	entries, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "alice", entries[0].Name)
	assert.Equal(t, "en_US", entries[0].Locale)
	assert.Equal(t, "voice", entries[0].Kind)
	assert.Equal(t, "voices/alice.config", entries[0].Source)
	assert.Equal(t, "bob", entries[1].Name)
	assert.Equal(t, "de", entries[1].Locale)

	_, err = repo.Find(ctx, "retired")
	require.ErrorIs(t, err, ErrNotFound)
}
