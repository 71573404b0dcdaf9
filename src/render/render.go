package render

import (
	"fmt"
	"time"

	"crypto-compare/src/helpers"
	"crypto-compare/src/models"
)

const (
	addLabel          = "Add to Comparison"
	removeLabel       = "Remove from Comparison"
	emptyComparison   = "Select up to %d cryptocurrencies to compare"
	changeWindowLabel = "(24h)"
	lastUpdatedLayout = "2006-01-02 15:04:05"
)

// -----------------------------------------------------------------------------

// Render projects the application state into the dashboard view model.
// It is pure: the same inputs always give the same view.
func Render(
	assets []models.MAssetQuote,
	entries []models.MComparisonEntry,
	capacity int,
	prefs models.MPreferences,
	status models.MFetchStatus,
) models.MDashboardView {
	selected := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		selected[e.ID] = struct{}{}
	}

	view := models.MDashboardView{
		DarkMode:    prefs.DarkMode,
		ShowChanges: prefs.ShowChanges,
		SortOption:  prefs.SortOption.String(),
		SortOptions: sortChoices(prefs.SortOption),
		Cards:       make([]models.MCardView, 0, len(assets)),
		Comparison:  comparisonPanel(entries, capacity, prefs.ShowChanges),
		Loading:     status.Loading,
	}

	if status.Failed {
		view.Error = helpers.FetchFailedNotice
	}
	if status.LastUpdated > 0 {
		view.LastUpdated = time.Unix(status.LastUpdated, 0).Format(lastUpdatedLayout)
	}

	for _, a := range assets {
		_, isSelected := selected[a.ID]
		view.Cards = append(view.Cards, card(a, isSelected, prefs.ShowChanges))
	}

	return view
}

// -----------------------------------------------------------------------------

func card(a models.MAssetQuote, isSelected, showChanges bool) models.MCardView {
	c := models.MCardView{
		ID:          a.ID,
		Name:        a.Name,
		Symbol:      a.Symbol,
		Image:       a.Image,
		Price:       FormatPrice(a.CurrentPrice),
		MarketCap:   AbbreviateNull(a.MarketCap),
		Volume:      AbbreviateNull(a.TotalVolume),
		Selected:    isSelected,
		ActionLabel: addLabel,
	}
	if isSelected {
		c.ActionLabel = removeLabel
	}
	if showChanges {
		direction, percent := FormatPercent(a.PriceChangePercentage24h)
		c.Change = &models.MChangeView{Direction: direction, Percent: percent, Label: changeWindowLabel}
	}
	return c
}

// -----------------------------------------------------------------------------

func comparisonPanel(entries []models.MComparisonEntry, capacity int, showChanges bool) models.MComparisonPanel {
	panel := models.MComparisonPanel{
		Entries:    make([]models.MComparisonItemView, 0, len(entries)),
		Count:      len(entries),
		Capacity:   capacity,
		CountLabel: fmt.Sprintf("(%d/%d)", len(entries), capacity),
		Empty:      len(entries) == 0,
		ShowClear:  len(entries) > 0,
	}
	if panel.Empty {
		panel.EmptyMessage = fmt.Sprintf(emptyComparison, capacity)
	}

	for i, e := range entries {
		item := models.MComparisonItemView{
			Index:  i,
			ID:     e.ID,
			Name:   e.Name,
			Symbol: e.Symbol,
			Image:  e.Image,
			Price:  FormatPrice(e.Price),
		}
		if showChanges {
			direction, percent := FormatPercent(e.Change)
			item.Change = &models.MChangeView{Direction: direction, Percent: percent}
		}
		panel.Entries = append(panel.Entries, item)
	}
	return panel
}

// -----------------------------------------------------------------------------

func sortChoices(current models.MSortOption) []models.MSortChoiceView {
	opts := models.AllSortOptions()
	out := make([]models.MSortChoiceView, 0, len(opts))
	for _, o := range opts {
		out = append(out, models.MSortChoiceView{
			Value:    o.String(),
			Label:    o.Label(),
			Selected: o == current,
		})
	}
	return out
}
