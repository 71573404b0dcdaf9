package network

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"crypto-compare/src/helpers"
	"crypto-compare/src/interfaces"
	"crypto-compare/src/logger"
	"crypto-compare/src/models"
)

// maxErrorBody bounds how much of a failed response is kept for the error message
const maxErrorBody = 2048

// StatusError is returned for non-2xx responses
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad status %d: %s", e.StatusCode, e.Body)
}

// -----------------------------------------------------------------------------

// NetworkManager performs single-attempt GET requests with a bounded timeout.
// A failed request rotates to the next proxy for the following call; it is
// not retried.
type NetworkManager struct {
	Config       *models.MConfig
	ProxyManager interfaces.IProxyManager
	Client       *http.Client
	Logger       *logger.Logger
}

// -----------------------------------------------------------------------------

func NewNetworkManager(cfg *models.MConfig, log *logger.Logger) *NetworkManager {
	nm := &NetworkManager{
		Config:       cfg,
		ProxyManager: helpers.NewProxyManager(cfg.Network.Proxies, cfg.Network.UserAgent, log.Named("ProxyManager")),
		Logger:       log,
	}
	nm.Client = nm.createClient()
	return nm
}

// -----------------------------------------------------------------------------

func (nm *NetworkManager) createClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	// Resolve the proxy per request so rotation needs no new client
	transport.Proxy = func(req *http.Request) (*url.URL, error) {
		if !nm.ProxyManager.HasProxies() {
			return http.ProxyFromEnvironment(req)
		}
		proxyStr, err := nm.ProxyManager.GetCurrentProxy()
		if err != nil || proxyStr == "" {
			return nil, err
		}
		return url.Parse(proxyStr)
	}

	return &http.Client{
		Transport: transport,
		Timeout:   time.Duration(nm.Config.Network.RequestTimeout) * time.Second,
	}
}

// -----------------------------------------------------------------------------

// Get performs a GET request. The body is returned only for 2xx responses.
func (nm *NetworkManager) Get(ctx context.Context, urlStr string, params map[string]string, headers map[string]string) ([]byte, error) {
	reqUrl, err := url.Parse(urlStr)
	if err != nil {
		return nil, err
	}

	q := reqUrl.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	reqUrl.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqUrl.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", nm.ProxyManager.GetUserAgent())
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := nm.Client.Do(req)
	if err != nil {
		nm.Logger.Info("Request to %s failed after %v: %v", reqUrl.Host, time.Since(start).Round(time.Millisecond), err)
		nm.ProxyManager.RotateProxy()
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		nm.Logger.Info("Bad status %d from %s", resp.StatusCode, reqUrl.Host)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden {
			nm.ProxyManager.RotateProxy()
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("body read error: %w", err)
	}

	nm.Logger.Debug("GET %s%s -> %d (%d bytes, %v)", reqUrl.Host, reqUrl.Path, resp.StatusCode, len(body), time.Since(start).Round(time.Millisecond))
	return body, nil
}
