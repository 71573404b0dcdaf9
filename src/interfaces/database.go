package interfaces

import "crypto-compare/src/models"

// -----------------------------------------------------------------------------
// IKeyValueStore defines the contract for the persistent key/value backend.
// -----------------------------------------------------------------------------

type IKeyValueStore interface {

	// -----------------------------------------------------------------------------

	// Initialize opens the connection and creates the schema if missing.
	Initialize() error

	// -----------------------------------------------------------------------------

	// Get returns the stored value and whether the key exists.
	Get(key string) (string, bool, error)

	// -----------------------------------------------------------------------------

	// PutMany writes all pairs in a single transaction.
	PutMany(values map[string]string) error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}

// -----------------------------------------------------------------------------
// IPreferenceStore persists the settings record and the comparison selection.
// -----------------------------------------------------------------------------

type IPreferenceStore interface {

	// Load never fails: absent or corrupt blobs yield defaults.
	Load() (models.MPreferences, []models.MComparisonEntry)

	// Save writes both blobs together.
	Save(prefs models.MPreferences, entries []models.MComparisonEntry) error
}
