package interfaces

import (
	"context"

	"crypto-compare/src/models"
)

// -----------------------------------------------------------------------------
// IDashboardController is the state owner the server talks to.
// -----------------------------------------------------------------------------

type IDashboardController interface {

	// View renders the current state
	View() models.MDashboardView

	// -----------------------------------------------------------------------------

	// Dispatch applies one user command
	Dispatch(ctx context.Context, cmd models.MCommand) error

	// -----------------------------------------------------------------------------

	Preferences() models.MPreferences
	FetchMetrics() models.MFetchMetrics

	// InitialMessage is sent to a websocket client on connect
	InitialMessage() models.MViewMessage
}
