package repository

// KVStore is the per-browser storage slot capability.
type KVStore interface {
	// Get reports ok=false when key has never been set or was removed.
	Get(key string) (value []byte, ok bool, err error)
	Set(key string, value []byte) error
	Remove(key string) error
}
