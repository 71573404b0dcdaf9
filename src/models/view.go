package models

// -----------------------------------------------------------------------------
// Dashboard view model (output of the render pipeline)
// -----------------------------------------------------------------------------

type MDashboardView struct {
	DarkMode    bool              `json:"darkMode"`
	ShowChanges bool              `json:"showChanges"`
	SortOption  string            `json:"sortOption"`
	SortOptions []MSortChoiceView `json:"sortOptions"`
	Cards       []MCardView       `json:"cards"`
	Comparison  MComparisonPanel  `json:"comparison"`
	Loading     bool              `json:"loading"`
	Error       string            `json:"error,omitempty"`
	LastUpdated string            `json:"lastUpdated,omitempty"`
}

type MSortChoiceView struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

type MCardView struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Symbol      string       `json:"symbol"`
	Image       string       `json:"image"`
	Price       string       `json:"price"`
	MarketCap   string       `json:"marketCap"`
	Volume      string       `json:"volume"`
	Selected    bool         `json:"selected"`
	ActionLabel string       `json:"actionLabel"`
	Change      *MChangeView `json:"change,omitempty"`
}

// MChangeView is only present when the show-changes preference is on
type MChangeView struct {
	Direction string `json:"direction"` // "positive" or "negative"
	Percent   string `json:"percent"`   // absolute value, 2 decimals
	Label     string `json:"label"`
}

type MComparisonPanel struct {
	Entries      []MComparisonItemView `json:"entries"`
	Count        int                   `json:"count"`
	Capacity     int                   `json:"capacity"`
	CountLabel   string                `json:"countLabel"`
	Empty        bool                  `json:"empty"`
	EmptyMessage string                `json:"emptyMessage,omitempty"`
	ShowClear    bool                  `json:"showClear"`
}

type MComparisonItemView struct {
	Index  int          `json:"index"`
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Symbol string       `json:"symbol"`
	Image  string       `json:"image"`
	Price  string       `json:"price"`
	Change *MChangeView `json:"change,omitempty"`
}
