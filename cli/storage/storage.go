package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/TechHubXperts/project-AnuAleMagar/datastores"
)

type Options struct {
	Driver   string `doc:"store entries in inmem, badger or postgres" default:"inmem"`
	Dir      string `doc:"badger database directory, in memory if empty"`
	DSN      string `doc:"postgres connection url"`
	MaxConns int32  `doc:"postgres pool size, pgxpool default if 0"`
}

// Open returns the store selected by options. The returned closer
// releases the store and must be called once it is no longer used.
func Open(ctx context.Context, options *Options) (datastores.EntriesStore, io.Closer, error) {
	switch strings.ToLower(options.Driver) {
	case "", "inmem":
		store := datastores.NewEntriesInmem()
		return store, nopCloser{}, nil
	case "badger":
		store, err := datastores.OpenEntriesBadger(options.Dir)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case "postgres":
		if options.DSN == "" {
			return nil, nil, fmt.Errorf("storage: postgres driver requires a dsn")
		}
		store, err := datastores.OpenEntriesPostgres(ctx, options.DSN, options.MaxConns)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("storage: unknown driver %q", options.Driver)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
