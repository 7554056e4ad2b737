package datastores

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
)

// EntriesBadger implements [EntriesStore] on an embedded badger database.
type EntriesBadger struct {
	store *badgerhold.Store
}

var _ EntriesStore = (*EntriesBadger)(nil)

// OpenEntriesBadger opens (or creates) the database in dir.
// An empty dir keeps the database in memory.
func OpenEntriesBadger(dir string) (*EntriesBadger, error) {
	options := badgerhold.DefaultOptions
	options.Options = badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		options.Options = options.Options.WithInMemory(true)
	}

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}
	return &EntriesBadger{store: store}, nil
}

func (s *EntriesBadger) Close() error {
	return s.store.Close()
}

func (s *EntriesBadger) List(_ context.Context) ([]*Entry, error) {
	var found []Entry
	if err := s.store.Find(&found, nil); err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	slices.SortStableFunc(found, func(a, b Entry) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), slices.Compare(a.ID[:], b.ID[:]))
	})

	entries := make([]*Entry, len(found))
	for i := range found {
		entries[i] = &found[i]
	}
	return entries, nil
}

func (s *EntriesBadger) Count(_ context.Context) (int, error) {
	n, err := s.store.Count(&Entry{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return int(n), nil
}

func (s *EntriesBadger) Get(_ context.Context, id EntryID) (*Entry, error) {
	var e Entry
	if err := s.store.Get(id.String(), &e); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return &e, nil
}

func (s *EntriesBadger) Create(_ context.Context, f Fields) (*Entry, error) {
	e, err := newEntry(f)
	if err != nil {
		return nil, err
	}
	for {
		err = s.store.Insert(e.ID.String(), e)
		if !errors.Is(err, badgerhold.ErrKeyExists) {
			break
		}
		e.ID = newEntryID()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}
	return e, nil
}

func (s *EntriesBadger) Update(_ context.Context, id EntryID, f Fields) (*Entry, error) {
	var e Entry
	err := s.store.Badger().Update(func(tx *badger.Txn) error {
		if err := s.store.TxGet(tx, id.String(), &e); err != nil {
			return err
		}
		if err := f.Validate(); err != nil {
			return err
		}
		e.apply(f)
		return s.store.TxUpdate(tx, id.String(), &e)
	})
	var verr *ValidationError
	switch {
	case err == nil:
		return &e, nil
	case errors.Is(err, badgerhold.ErrNotFound):
		return nil, ErrObjectNotFound
	case errors.As(err, &verr):
		return nil, err
	default:
		return nil, fmt.Errorf("failed to update entry: %w", err)
	}
}

func (s *EntriesBadger) Delete(_ context.Context, id EntryID) error {
	err := s.store.Delete(id.String(), &Entry{})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, badgerhold.ErrNotFound):
		return ErrObjectNotFound
	default:
		return fmt.Errorf("failed to delete entry: %w", err)
	}
}
