package datastores

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// EntriesPostgres implements [EntriesStore] on a PostgreSQL table.
type EntriesPostgres struct {
	pool *pgxpool.Pool
}

var _ EntriesStore = (*EntriesPostgres)(nil)

// OpenEntriesPostgres connects to dsn and brings the schema up to date.
// A maxConns of zero keeps the pgxpool default.
func OpenEntriesPostgres(ctx context.Context, dsn string, maxConns int32) (*EntriesPostgres, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	if maxConns > 0 {
		config.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &EntriesPostgres{pool: pool}, nil
}

func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *EntriesPostgres) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *EntriesPostgres) Close() error {
	s.pool.Close()
	return nil
}

const entryColumns = `id, name, phone_number, email, created_at, updated_at`

func scanEntry(row pgx.Row) (*Entry, error) {
	var (
		e  Entry
		id uuid.UUID
	)
	if err := row.Scan(&id, &e.Name, &e.Phone, &e.Email, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.ID = EntryID(id)
	e.CreatedAt, e.UpdatedAt = e.CreatedAt.UTC(), e.UpdatedAt.UTC()
	return &e, nil
}

func (s *EntriesPostgres) List(ctx context.Context) ([]*Entry, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+entryColumns+` FROM entries ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	entries := []*Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("could not transform rows into entries: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error while iterating over rows: %w", err)
	}
	return entries, nil
}

func (s *EntriesPostgres) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return n, nil
}

func (s *EntriesPostgres) Get(ctx context.Context, id EntryID) (*Entry, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = $1`, uuid.UUID(id))
	e, err := scanEntry(row)
	switch {
	case err == nil:
		return e, nil
	case errors.Is(err, pgx.ErrNoRows):
		return nil, ErrObjectNotFound
	default:
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
}

func (s *EntriesPostgres) Create(ctx context.Context, f Fields) (*Entry, error) {
	e, err := newEntry(f)
	if err != nil {
		return nil, err
	}
	row := s.pool.QueryRow(ctx,
		`INSERT INTO entries (`+entryColumns+`) VALUES ($1, $2, $3, $4, $5, $6) RETURNING `+entryColumns,
		uuid.UUID(e.ID), e.Name, e.Phone, e.Email, e.CreatedAt, e.UpdatedAt)
	created, err := scanEntry(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}
	return created, nil
}

func (s *EntriesPostgres) Update(ctx context.Context, id EntryID, f Fields) (*Entry, error) {
	if err := f.Validate(); err != nil {
		if _, gerr := s.Get(ctx, id); gerr != nil {
			return nil, gerr
		}
		return nil, err
	}

	f = f.Normalize()
	row := s.pool.QueryRow(ctx,
		`UPDATE entries
		SET name = $2, phone_number = $3, email = $4,
			updated_at = GREATEST($5, updated_at + interval '1 microsecond')
		WHERE id = $1
		RETURNING `+entryColumns,
		uuid.UUID(id), f.Name, f.Phone, f.Email, timestamp())
	e, err := scanEntry(row)
	switch {
	case err == nil:
		return e, nil
	case errors.Is(err, pgx.ErrNoRows):
		return nil, ErrObjectNotFound
	default:
		return nil, fmt.Errorf("failed to update entry: %w", err)
	}
}

func (s *EntriesPostgres) Delete(ctx context.Context, id EntryID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM entries WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrObjectNotFound
	}
	return nil
}
