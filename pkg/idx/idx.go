// Package idx mints the identifiers stored on account rows: ULID primary
// keys, concurrency stamps and token ids.
package idx

import (
	"crypto/rand"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// ID is a ULID used as the primary key for users, roles and reset tokens.
type ID string

// Zero is the empty ID.
const Zero ID = ""

// ErrInvalid reports a malformed ULID string.
var ErrInvalid = errors.New("idx: invalid ulid")

// Monotonic entropy keeps ids minted in the same millisecond in creation
// order. It is not safe for concurrent use, hence the mutex.
var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// New returns an ID stamped with the current UTC time.
func New() ID {
	return NewAt(time.Now().UTC())
}

// NewAt returns an ID stamped with t.
func NewAt(t time.Time) ID {
	mu.Lock()
	defer mu.Unlock()

	return ID(ulid.MustNew(ulid.Timestamp(t), entropy).String())
}

// Parse validates s as a ULID and returns it in canonical upper case.
func Parse(s string) (ID, error) {
	u, err := ulid.ParseStrict(strings.TrimSpace(s))
	if err != nil {
		return Zero, ErrInvalid
	}
	return ID(u.String()), nil
}

func (id ID) IsZero() bool   { return id == Zero }
func (id ID) String() string { return string(id) }

// NewStamp returns a fresh opaque version token. Every successful write to
// a user row replaces the stored stamp with one of these.
func NewStamp() string {
	return uuid.NewString()
}

// NewTokenID returns a random identifier for the "jti" claim.
func NewTokenID() string {
	return uuid.NewString()
}
