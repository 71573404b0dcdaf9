package interfaces

import "context"

// -----------------------------------------------------------------------------
// INetworkManager defines the contract for outbound HTTP requests.
// -----------------------------------------------------------------------------

type INetworkManager interface {

	// -----------------------------------------------------------------------------

	// Get performs a GET request to the specified URL with query parameters and
	// extra headers. Returns the response body or an error for any non-2xx status.
	Get(ctx context.Context, url string, params map[string]string, headers map[string]string) ([]byte, error)
}
