package repository

import (
	"context"
	"time"
)

// EntryKind is the direction of a clock event.
type EntryKind string

const (
	// EntryKindIn opens a journey.
	EntryKindIn EntryKind = "IN"
	// EntryKindOut closes a journey.
	EntryKindOut EntryKind = "OUT"
)

// Entry is one record in the append-only clock ledger. Immutable once
// written; the amendment fields are populated only at creation time by the
// administrator compensation path.
type Entry struct {
	ID             int64      `db:"id"`
	UserID         int64      `db:"user_id"`
	Kind           EntryKind  `db:"kind"`
	OccurredAt     time.Time  `db:"occurred_at"`
	Latitude       *float64   `db:"latitude"`
	Longitude      *float64   `db:"longitude"`
	ServiceOrderID *int64     `db:"service_order_id"`

	Note            *string    `db:"note"`
	AmendedBy       *int64     `db:"amended_by"`
	AmendedAt       *time.Time `db:"amended_at"`
	AmendmentReason *string    `db:"amendment_reason"`
	SourceAlertID   *int64     `db:"source_alert_id"`

	CreatedAt time.Time `db:"created_at"`
}

// EntryWithUser is an entry joined with the worker's display name for
// administrator listings.
type EntryWithUser struct {
	Entry
	UserName string `db:"user_name"`
}

// CreateEntryParams contains parameters for appending a clock entry.
type CreateEntryParams struct {
	UserID         int64
	Kind           EntryKind
	OccurredAt     time.Time
	Latitude       *float64
	Longitude      *float64
	ServiceOrderID *int64
}

// TransitionGuard validates a requested transition against the user's last
// entry (nil when the ledger is empty). It runs inside the append transaction
// so the check and the insert form one read-modify-write.
type TransitionGuard func(last *Entry) error

// EntryReader provides read operations on the clock ledger.
type EntryReader interface {
	// LastEntry returns the most recent entry for a user by id order, or nil
	// when the user has no entries. Id order is authoritative: occurred_at is
	// client-supplied and not trustworthy for ordering.
	LastEntry(ctx context.Context, userID int64) (*Entry, error)
	ListByUser(ctx context.Context, userID int64, from, to time.Time) ([]Entry, error)
	ListAllWithUser(ctx context.Context, from, to time.Time) ([]EntryWithUser, error)
	// UserIDsWithOpenJourney returns users whose last entry is IN.
	UserIDsWithOpenJourney(ctx context.Context) ([]int64, error)
}

// EntryWriter provides write operations on the clock ledger.
type EntryWriter interface {
	// AppendClock appends a clock entry after the guard accepts the
	// transition, all inside one transaction that serializes per user.
	AppendClock(ctx context.Context, params CreateEntryParams, guard TransitionGuard) (Entry, error)
}

// Repository combines all clock ledger operations.
type Repository interface {
	EntryReader
	EntryWriter
}
