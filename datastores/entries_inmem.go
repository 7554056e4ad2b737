package datastores

import (
	"context"
	"slices"
	"sync"
)

// EntriesInmem implements [EntriesStore].
type EntriesInmem struct {
	mu      sync.Mutex
	index   map[EntryID]int
	entries []*Entry
}

var _ EntriesStore = (*EntriesInmem)(nil)

func NewEntriesInmem() *EntriesInmem {
	return &EntriesInmem{index: make(map[EntryID]int)}
}

func (s *EntriesInmem) List(_ context.Context) ([]*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]*Entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, clone(e))
	}
	return entries, nil
}

func (s *EntriesInmem) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries), nil
}

func (s *EntriesInmem) Get(_ context.Context, id EntryID) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	index, ok := s.index[id]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return clone(s.entries[index]), nil
}

func (s *EntriesInmem) Create(_ context.Context, f Fields) (*Entry, error) {
	e, err := newEntry(f)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		if _, loaded := s.index[e.ID]; !loaded {
			break
		}
		e.ID = newEntryID()
	}
	s.index[e.ID] = len(s.entries)
	s.entries = append(s.entries, e)
	return clone(e), nil
}

func (s *EntriesInmem) Update(_ context.Context, id EntryID, f Fields) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	index, ok := s.index[id]
	if !ok {
		return nil, ErrObjectNotFound
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	e := s.entries[index]
	e.apply(f)
	return clone(e), nil
}

func (s *EntriesInmem) Delete(_ context.Context, id EntryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	index, ok := s.index[id]
	if !ok {
		return ErrObjectNotFound
	}
	delete(s.index, id)
	s.entries = slices.Delete(s.entries, index, index+1)
	for i := index; i < len(s.entries); i++ {
		s.index[s.entries[i].ID] = i
	}
	return nil
}

// clone keeps stored entries unreachable from callers.
func clone(e *Entry) *Entry {
	c := *e
	return &c
}
