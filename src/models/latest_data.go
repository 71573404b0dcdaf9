package models

// -----------------------------------------------------------------------------
// Websocket message envelope
// -----------------------------------------------------------------------------

// Message types pushed to clients
const (
	MessageInitial = "INITIAL"
	MessageUpdate  = "UPDATE"
	MessageNotice  = "NOTICE"
)

type MViewMessage struct {
	Type      string         `json:"type"` // "INITIAL", "UPDATE" or "NOTICE"
	View      MDashboardView `json:"view"`
	Notice    string         `json:"notice,omitempty"`
	Timestamp int64          `json:"timestamp"`
}

// -----------------------------------------------------------------------------
// MFetchStatus describes the outcome of the latest refresh
// -----------------------------------------------------------------------------

type MFetchStatus struct {
	Loading     bool  `json:"loading"`
	Failed      bool  `json:"failed"`
	LastUpdated int64 `json:"lastUpdated"` // unix seconds of the last successful fetch
}

// MFetchMetrics is served by /api/metrics
type MFetchMetrics struct {
	FetchDurationSeconds float64 `json:"fetchDurationSeconds"`
	FetchedAssets        int     `json:"fetchedAssets"`
	SuccessfulFetches    int64   `json:"successfulFetches"`
	FailedFetches        int64   `json:"failedFetches"`
	SkippedRefreshes     int64   `json:"skippedRefreshes"`
}
