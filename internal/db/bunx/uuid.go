package bunx

import "github.com/google/uuid"

// NewUUIDv7 generates a time-ordered UUIDv7 string for primary keys. The
// time-ordered layout keeps btree indexes append-mostly on both PostgreSQL
// and SQLite, with no gen_random_uuid() dependency.
//
// Panics if the entropy source fails; every ID generation would fail in that
// state, so there is nothing useful for a caller to do with the error.
func NewUUIDv7() string {
	return uuid.Must(uuid.NewV7()).String()
}
