package storage

import (
	"encoding/json"
	"fmt"

	"crypto-compare/src/comparison"
	"crypto-compare/src/helpers"
	"crypto-compare/src/interfaces"
	"crypto-compare/src/logger"
	"crypto-compare/src/models"
)

// Keys of the two persisted blobs
const (
	PreferencesKey = "cryptoComparePreferences"
	ComparisonKey  = "cryptoCompareComparison"
)

// -----------------------------------------------------------------------------

// PreferenceStore serializes the settings record and the comparison
// selection as JSON blobs on top of a key/value backend
type PreferenceStore struct {
	Backend interfaces.IKeyValueStore
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPreferenceStore(backend interfaces.IKeyValueStore, log *logger.Logger) *PreferenceStore {
	return &PreferenceStore{Backend: backend, Logger: log}
}

// NewBackend picks the key/value backend named by storage.db_type
func NewBackend(cfg *models.MConfig, log *logger.Logger) (interfaces.IKeyValueStore, error) {
	switch cfg.Storage.DBType {
	case "sqlite", "":
		return NewSQLiteStore(cfg, log)
	case "postgres":
		return NewPostgresStore(cfg, log)
	default:
		return nil, helpers.NewConfigurationError(fmt.Sprintf("unsupported database type %q", cfg.Storage.DBType), nil)
	}
}

// -----------------------------------------------------------------------------

// Load returns the stored settings and selection. Each blob falls back to
// its defaults independently when absent, unreadable or malformed.
func (s *PreferenceStore) Load() (models.MPreferences, []models.MComparisonEntry) {
	return s.loadPreferences(), s.loadComparison()
}

func (s *PreferenceStore) loadPreferences() models.MPreferences {
	prefs := models.DefaultPreferences()

	raw, ok := s.read(PreferencesKey)
	if !ok {
		return prefs
	}

	// Fields missing from the blob keep their defaults
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		s.Logger.Warning("Discarding stored preferences: %v", err)
		return models.DefaultPreferences()
	}
	return prefs
}

func (s *PreferenceStore) loadComparison() []models.MComparisonEntry {
	raw, ok := s.read(ComparisonKey)
	if !ok {
		return []models.MComparisonEntry{}
	}

	var entries []models.MComparisonEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		s.Logger.Warning("Discarding stored comparison: %v", err)
		return []models.MComparisonEntry{}
	}

	// Enforce the set bounds on whatever was stored
	set := comparison.Restore(entries)
	if set.Len() != len(entries) {
		s.Logger.Warning("Stored comparison had %d entries, kept %d", len(entries), set.Len())
	}
	return set.Entries()
}

func (s *PreferenceStore) read(key string) (string, bool) {
	raw, ok, err := s.Backend.Get(key)
	if err != nil {
		s.Logger.Warning("Failed to read %s: %v", key, err)
		return "", false
	}
	return raw, ok
}

// -----------------------------------------------------------------------------

// Save writes both blobs in one transaction
func (s *PreferenceStore) Save(prefs models.MPreferences, entries []models.MComparisonEntry) error {
	if entries == nil {
		entries = []models.MComparisonEntry{}
	}

	prefsJSON, err := json.Marshal(prefs)
	if err != nil {
		return helpers.NewStorageError("failed to encode preferences", err)
	}
	entriesJSON, err := json.Marshal(entries)
	if err != nil {
		return helpers.NewStorageError("failed to encode comparison", err)
	}

	if err := s.Backend.PutMany(map[string]string{
		PreferencesKey: string(prefsJSON),
		ComparisonKey:  string(entriesJSON),
	}); err != nil {
		return helpers.NewStorageError("failed to save preferences", err)
	}
	return nil
}
