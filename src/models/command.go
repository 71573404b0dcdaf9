package models

// Command types accepted by the controller
const (
	CmdToggleComparison   = "toggleComparison"
	CmdRemoveComparisonAt = "removeComparisonAt"
	CmdClearComparison    = "clearComparison"
	CmdSetSort            = "setSort"
	CmdSetShowChanges     = "setShowChanges"
	CmdSetDarkMode        = "setDarkMode"
	CmdRefresh            = "refresh"
)

// MCommand is one user action. Only the fields relevant to Type are read;
// Index and Enabled are pointers so an absent field is never read as zero.
type MCommand struct {
	Type       string `json:"type"`
	AssetID    string `json:"assetId,omitempty"`
	Index      *int   `json:"index,omitempty"`
	SortOption string `json:"sortOption,omitempty"`
	Enabled    *bool  `json:"enabled,omitempty"`
}

// IntPtr and BoolPtr build the optional command fields
func IntPtr(v int) *int { return &v }

func BoolPtr(v bool) *bool { return &v }
