// Package catalog keeps a persistent index of the voices known to the
// registry, so other services can look voices up without parsing their
// definitions.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound = errors.New("voice not found in catalog")
)

const tableVoices = "voices"

var columns = []string{"name", "locale", "kind", "source", "indexed_at"}

type Entry struct {
	Name      string    `db:"name"`
	Locale    string    `db:"locale"`
	Kind      string    `db:"kind"`
	Source    string    `db:"source"`
	IndexedAt time.Time `db:"indexed_at"`
}

type Repository interface {
	Find(ctx context.Context, name string) (Entry, error)
	List(ctx context.Context) ([]Entry, error)
	// Save inserts entry or replaces the entry with the same name.
	Save(ctx context.Context, entry Entry) error
	Delete(ctx context.Context, name string) error
}

func NewRepository(db *sqlx.DB) Repository {
	return &repositoryImpl{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholderFormat(db.DriverName())),
	}
}

func placeholderFormat(driver string) sq.PlaceholderFormat {
	switch driver {
	case "postgres", "pgx":
		return sq.Dollar
	default:
		return sq.Question
	}
}

type repositoryImpl struct {
	db      *sqlx.DB
	builder sq.StatementBuilderType
}

func (r *repositoryImpl) Find(ctx context.Context, name string) (Entry, error) {
	query, args, err := r.builder.Select(columns...).From(tableVoices).Where(sq.Eq{"name": name}).ToSql()
	if err != nil {
		return Entry{}, err
	}

	var entry Entry
	if err := r.db.GetContext(ctx, &entry, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, err
	}
	return entry, nil
}

func (r *repositoryImpl) List(ctx context.Context) ([]Entry, error) {
	query, args, err := r.builder.Select(columns...).From(tableVoices).OrderBy("name").ToSql()
	if err != nil {
		return nil, err
	}

	var entries []Entry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, err
	}
	return entries, nil
}

// Save deletes and re-inserts the row in one transaction; the statements
// run unchanged on sqlite, MySQL and Postgres.
func (r *repositoryImpl) Save(ctx context.Context, entry Entry) error {
	deleteQuery, deleteArgs, err := r.builder.Delete(tableVoices).Where(sq.Eq{"name": entry.Name}).ToSql()
	if err != nil {
		return err
	}
	insertQuery, insertArgs, err := r.builder.Insert(tableVoices).
		Columns(columns...).
		Values(entry.Name, entry.Locale, entry.Kind, entry.Source, entry.IndexedAt.UTC()).
		ToSql()
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("failed to replace voice %q: %w", entry.Name, err)
	}
	if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return fmt.Errorf("failed to save voice %q: %w", entry.Name, err)
	}
	return tx.Commit()
}

func (r *repositoryImpl) Delete(ctx context.Context, name string) error {
	query, args, err := r.builder.Delete(tableVoices).Where(sq.Eq{"name": name}).ToSql()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
