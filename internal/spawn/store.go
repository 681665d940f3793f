package spawn

// Persisted key space. Repositories must not alias keys; these names are
// part of the stored-data compatibility contract.
const (
	KeyProfiles     = "profiles"
	KeyAssets       = "assets"
	KeySettings     = "settings"
	KeyImportBackup = "import_backup"
)

// KVStore is the persistent key-value store backing all repositories:
// durable, synchronous, string-keyed text storage with no partial-update
// support. Implementations may enforce a total-capacity quota, in which
// case Set returns an error and leaves the previous value intact.
type KVStore interface {
	// Get returns the value for key. found is false when the key has
	// never been set (or has been removed).
	Get(key string) (value string, found bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(key string) error

	// Close releases any resources held by the store.
	Close() error
}
