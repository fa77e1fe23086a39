package entities

import "time"

// KVEntry backs the per-browser storage slots.
type KVEntry struct {
	Key       string `gorm:"primaryKey;size:191"`
	Value     []byte
	UpdatedAt time.Time
}
