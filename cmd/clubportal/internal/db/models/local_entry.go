package models

import (
	"time"

	"github.com/uptrace/bun"
)

// LocalEntry is one key/value pair of the client's persisted local storage.
type LocalEntry struct {
	bun.BaseModel `bun:"table:local_storage,alias:ls"`

	Name      string    `bun:"name,pk"`
	Value     string    `bun:"value,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}
