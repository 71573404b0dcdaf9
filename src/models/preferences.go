package models

// MPreferences is the persisted settings record
type MPreferences struct {
	DarkMode    bool        `json:"darkMode"`
	ShowChanges bool        `json:"showChanges"`
	SortOption  MSortOption `json:"sortOption"`
}

// DefaultPreferences returns the settings used when nothing is stored
func DefaultPreferences() MPreferences {
	return MPreferences{
		DarkMode:    false,
		ShowChanges: true,
		SortOption:  DefaultSortOption,
	}
}
