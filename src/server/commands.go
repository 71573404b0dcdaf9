package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"crypto-compare/src/helpers"
	"crypto-compare/src/models"
)

// -----------------------------------------------------------------------------

// commandError maps a dispatch error to an HTTP status and a user notice
func commandError(err error) (int, string) {
	switch {
	case errors.Is(err, helpers.ErrComparisonFull):
		return http.StatusConflict, helpers.ComparisonFullNotice
	case errors.Is(err, helpers.ErrUnknownAsset):
		return http.StatusNotFound, "Unknown cryptocurrency."
	case errors.Is(err, helpers.ErrFetchFailed):
		return http.StatusBadGateway, helpers.FetchFailedNotice
	case errors.Is(err, helpers.ErrRefreshInFlight):
		return http.StatusConflict, "A refresh is already running."
	case errors.Is(err, helpers.ErrIndexOutOfRange),
		errors.Is(err, helpers.ErrInvalidSortOption),
		errors.Is(err, helpers.ErrUnknownCommand):
		return http.StatusBadRequest, "Invalid request."
	default:
		return http.StatusInternalServerError, "Something went wrong."
	}
}

// -----------------------------------------------------------------------------

// commandFromForm builds a command from an HTML form post
func commandFromForm(cmdType string, field func(string) string) (models.MCommand, error) {
	cmd := models.MCommand{
		Type:       cmdType,
		AssetID:    field("assetId"),
		SortOption: field("sortOption"),
	}

	if raw := field("index"); raw != "" {
		i, err := strconv.Atoi(raw)
		if err != nil {
			return cmd, fmt.Errorf("index %q: %w", raw, helpers.ErrIndexOutOfRange)
		}
		cmd.Index = &i
	}

	// Checkboxes post "on", hidden inputs post "true"/"false"
	switch field("enabled") {
	case "on", "true", "1":
		cmd.Enabled = models.BoolPtr(true)
	case "false", "0", "off":
		cmd.Enabled = models.BoolPtr(false)
	}

	return cmd, nil
}
