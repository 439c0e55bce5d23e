package models

import "github.com/google/uuid"

// assignID fills a nil primary key before insert. Postgres also defaults the
// column, but SQLite-backed runs rely on the application value.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
