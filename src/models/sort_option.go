package models

import (
	"fmt"
	"strings"
)

// MSortField names the asset attribute a list is ordered by
type MSortField string

const (
	SortFieldMarketCap   MSortField = "market_cap"
	SortFieldTotalVolume MSortField = "total_volume"
	SortFieldPrice       MSortField = "current_price"
	SortFieldChange24h   MSortField = "price_change_percentage_24h"
	SortFieldName        MSortField = "id" // ordered by name, not by id
)

type MSortDirection string

const (
	SortAsc  MSortDirection = "asc"
	SortDesc MSortDirection = "desc"
)

// -----------------------------------------------------------------------------

// MSortOption is the structured form of the "<field>_<direction>" preference.
type MSortOption struct {
	Field     MSortField
	Direction MSortDirection
}

// DefaultSortOption is market cap, largest first
var DefaultSortOption = MSortOption{Field: SortFieldMarketCap, Direction: SortDesc}

var sortFieldLabels = map[MSortField]string{
	SortFieldMarketCap:   "Market Cap",
	SortFieldTotalVolume: "Volume",
	SortFieldPrice:       "Price",
	SortFieldChange24h:   "24h Change",
	SortFieldName:        "Name",
}

// SortFields lists the fields in selector order
var SortFields = []MSortField{
	SortFieldMarketCap,
	SortFieldTotalVolume,
	SortFieldPrice,
	SortFieldChange24h,
	SortFieldName,
}

// -----------------------------------------------------------------------------

// ParseSortOption splits on the last underscore, so field names that contain
// underscores ("market_cap_desc") resolve to exactly one field and direction.
func ParseSortOption(s string) (MSortOption, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	i := strings.LastIndex(s, "_")
	if i <= 0 || i == len(s)-1 {
		return MSortOption{}, fmt.Errorf("malformed sort option %q", s)
	}

	opt := MSortOption{
		Field:     MSortField(s[:i]),
		Direction: MSortDirection(s[i+1:]),
	}
	if err := opt.Validate(); err != nil {
		return MSortOption{}, err
	}
	return opt, nil
}

// -----------------------------------------------------------------------------

func (o MSortOption) Validate() error {
	if _, ok := sortFieldLabels[o.Field]; !ok {
		return fmt.Errorf("unknown sort field %q", o.Field)
	}
	if o.Direction != SortAsc && o.Direction != SortDesc {
		return fmt.Errorf("unknown sort direction %q", o.Direction)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (o MSortOption) String() string {
	return string(o.Field) + "_" + string(o.Direction)
}

// Label is the human readable selector text, e.g. "Market Cap (High to Low)"
func (o MSortOption) Label() string {
	suffix := "(Low to High)"
	if o.Field == SortFieldName {
		suffix = "(A-Z)"
		if o.Direction == SortDesc {
			suffix = "(Z-A)"
		}
	} else if o.Direction == SortDesc {
		suffix = "(High to Low)"
	}
	return sortFieldLabels[o.Field] + " " + suffix
}

// UpstreamOrder maps the option to the API's order parameter.
// The API only orders by market cap, volume and id; other fields fall back to
// market cap and are ordered locally after the fetch.
func (o MSortOption) UpstreamOrder() string {
	switch o.Field {
	case SortFieldMarketCap:
		return "market_cap_" + string(o.Direction)
	case SortFieldTotalVolume:
		return "volume_" + string(o.Direction)
	case SortFieldName:
		return "id_" + string(o.Direction)
	default:
		return DefaultSortOption.UpstreamOrder()
	}
}

// AllSortOptions enumerates every field/direction pair the selector offers
func AllSortOptions() []MSortOption {
	opts := make([]MSortOption, 0, len(SortFields)*2)
	for _, f := range SortFields {
		opts = append(opts, MSortOption{Field: f, Direction: SortDesc}, MSortOption{Field: f, Direction: SortAsc})
	}
	return opts
}

// -----------------------------------------------------------------------------

func (o MSortOption) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *MSortOption) UnmarshalText(b []byte) error {
	parsed, err := ParseSortOption(string(b))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}
