package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"crypto-compare/src/helpers"
	"crypto-compare/src/interfaces"
	"crypto-compare/src/logger"
	"crypto-compare/src/models"
)

const (
	publicBaseURL = "https://api.coingecko.com/api/v3"
	marketsPath   = "/coins/markets"
)

// -----------------------------------------------------------------------------

type CoinGeckoSource struct {
	Config       *models.MConfig
	Network      interfaces.INetworkManager
	Logger       *logger.Logger
	baseURL      string
	apiKeyHeader string
}

// -----------------------------------------------------------------------------

func NewCoinGeckoSource(cfg *models.MConfig, netMgr interfaces.INetworkManager, log *logger.Logger) *CoinGeckoSource {
	baseURL := strings.TrimRight(cfg.DataSource.BaseURL, "/")
	if baseURL == "" {
		baseURL = publicBaseURL
	}

	header := "x-cg-demo-api-key"
	if strings.Contains(baseURL, "pro-api.coingecko.com") {
		header = "x-cg-pro-api-key"
	}

	return &CoinGeckoSource{
		Config:       cfg,
		Network:      netMgr,
		Logger:       log,
		baseURL:      baseURL,
		apiKeyHeader: header,
	}
}

// -----------------------------------------------------------------------------

func (s *CoinGeckoSource) Name() string {
	return "coingecko"
}

// -----------------------------------------------------------------------------

// FetchMarkets requests page 1 of /coins/markets priced in the configured
// currency, without sparklines.
func (s *CoinGeckoSource) FetchMarkets(ctx context.Context, order models.MSortOption) ([]models.MAssetQuote, error) {
	perPage := s.Config.DataSource.PerPage
	params := map[string]string{
		"vs_currency": s.Config.DataSource.VsCurrency,
		"order":       order.UpstreamOrder(),
		"per_page":    strconv.Itoa(perPage),
		"page":        "1",
		"sparkline":   "false",
	}

	headers := map[string]string{}
	if key := s.Config.DataSource.APIKey; key != "" {
		headers[s.apiKeyHeader] = key
	}

	body, err := s.Network.Get(ctx, s.baseURL+marketsPath, params, headers)
	if err != nil {
		return nil, helpers.NewFetchError("coingecko markets request", err)
	}

	quotes, err := parseMarketsResponse(body)
	if err != nil {
		return nil, helpers.NewFetchError("coingecko markets decode", err)
	}

	if len(quotes) > perPage {
		s.Logger.Warning("Received %d assets, truncating to %d", len(quotes), perPage)
		quotes = quotes[:perPage]
	}

	s.Logger.Debug("CoinGecko: fetched %d assets (order=%s)", len(quotes), params["order"])
	return quotes, nil
}

// -----------------------------------------------------------------------------

// parseMarketsResponse decodes the JSON array; missing or null fields are
// passed through unvalidated.
func parseMarketsResponse(body []byte) ([]models.MAssetQuote, error) {
	var quotes []models.MAssetQuote
	if err := json.Unmarshal(body, &quotes); err != nil {
		snippet := string(body)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, fmt.Errorf("JSON parse error: %w, Received Data: %s", err, snippet)
	}
	if quotes == nil {
		quotes = []models.MAssetQuote{}
	}
	return quotes, nil
}
