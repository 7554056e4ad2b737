package datastores

import (
	"encoding/base64"
	"errors"

	"github.com/google/uuid"
)

// EntryID is a [uuid.UUID] that uses [base64.RawURLEncoding]
// to marshal to and from text.
type EntryID uuid.UUID

// newEntryID returns a time-ordered (version 7) id.
func newEntryID() EntryID { return EntryID(uuid.Must(uuid.NewV7())) }

// ParseEntryID decodes the text form of an [EntryID].
func ParseEntryID(s string) (EntryID, error) {
	var id EntryID
	err := id.UnmarshalText([]byte(s))
	return id, err
}

func (*EntryID) encoding() *base64.Encoding { return base64.RawURLEncoding }

func (id *EntryID) encodedLen() int {
	return id.encoding().EncodedLen(len(id))
}

func (id EntryID) String() string {
	b, _ := id.AppendText(nil)
	return string(b)
}

func (id EntryID) AppendText(b []byte) ([]byte, error) {
	return id.encoding().AppendEncode(b, id[:]), nil
}

func (id EntryID) MarshalText() ([]byte, error) {
	return id.AppendText(nil)
}

func (id *EntryID) UnmarshalText(b []byte) error {
	if len(b) != id.encodedLen() {
		return errors.New("invalid length")
	}
	_, err := id.encoding().Decode(id[:], b)
	return err
}
