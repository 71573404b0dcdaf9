package interfaces

import (
	"context"

	"crypto-compare/src/models"
)

// -----------------------------------------------------------------------------
// IViewPublisher receives every rendered dashboard view.
// -----------------------------------------------------------------------------

type IViewPublisher interface {
	Broadcast(message models.MViewMessage)
}

// -----------------------------------------------------------------------------
// IDataExchanger is the outward facing server (HTTP + push).
// -----------------------------------------------------------------------------

type IDataExchanger interface {
	IViewPublisher

	// -----------------------------------------------------------------------------
	// Start the server, blocks until it stops
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop(ctx context.Context) error
}
