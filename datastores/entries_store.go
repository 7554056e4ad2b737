package datastores

import (
	"context"
	"errors"
	"strings"
	"time"
)

type (
	Entry struct {
		ID        EntryID
		Name      string
		Phone     string
		Email     string
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	// Fields holds the caller-supplied part of an [Entry].
	Fields struct {
		Name  string
		Phone string
		Email string
	}
)

type EntriesStore interface {
	List(context.Context) ([]*Entry, error)
	Count(context.Context) (int, error)
	Get(context.Context, EntryID) (*Entry, error)
	Create(context.Context, Fields) (*Entry, error)
	Update(context.Context, EntryID, Fields) (*Entry, error)
	Delete(context.Context, EntryID) error
}

var ErrObjectNotFound = errors.New("store: object not found")

// ValidationError reports a required field that is missing or empty.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "store: invalid " + e.Field + ": " + e.Reason
}

// Normalize trims surrounding whitespace from every field.
func (f Fields) Normalize() Fields {
	return Fields{
		Name:  strings.TrimSpace(f.Name),
		Phone: strings.TrimSpace(f.Phone),
		Email: strings.TrimSpace(f.Email),
	}
}

// Validate returns a [*ValidationError] for the first required field that is empty.
func (f Fields) Validate() error {
	switch {
	case strings.TrimSpace(f.Name) == "":
		return &ValidationError{Field: "name", Reason: "is required"}
	case strings.TrimSpace(f.Phone) == "":
		return &ValidationError{Field: "phoneNumber", Reason: "is required"}
	}
	return nil
}

// newEntry stamps a validated copy of f with a fresh id and creation time.
func newEntry(f Fields) (*Entry, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	f = f.Normalize()
	now := timestamp()
	return &Entry{
		ID:        newEntryID(),
		Name:      f.Name,
		Phone:     f.Phone,
		Email:     f.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// apply replaces the mutable fields of e and refreshes UpdatedAt.
// UpdatedAt strictly increases on every call, even when the clock does not.
func (e *Entry) apply(f Fields) {
	f = f.Normalize()
	e.Name, e.Phone, e.Email = f.Name, f.Phone, f.Email
	now := timestamp()
	if !now.After(e.UpdatedAt) {
		now = e.UpdatedAt.Add(time.Microsecond)
	}
	e.UpdatedAt = now
}

// timestamp is the current UTC time at the precision every backend can round-trip.
func timestamp() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
