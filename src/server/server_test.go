package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"crypto-compare/src/app"
	"crypto-compare/src/helpers"
	"crypto-compare/src/logger"
	"crypto-compare/src/metrics"
	"crypto-compare/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

type stubSource struct {
	mu     sync.Mutex
	assets []models.MAssetQuote
	err    error
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) FetchMarkets(ctx context.Context, order models.MSortOption) ([]models.MAssetQuote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]models.MAssetQuote(nil), s.assets...), nil
}

type memoryStore struct {
	mu      sync.Mutex
	prefs   models.MPreferences
	entries []models.MComparisonEntry
}

func (m *memoryStore) Load() (models.MPreferences, []models.MComparisonEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prefs, m.entries
}

func (m *memoryStore) Save(prefs models.MPreferences, entries []models.MComparisonEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs, m.entries = prefs, entries
	return nil
}

// -----------------------------------------------------------------------------

type testEnv struct {
	server     *DashboardServer
	controller *app.Controller
	source     *stubSource
	http       *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var assets []models.MAssetQuote
	for i, id := range []string{"bitcoin", "ethereum", "tether", "solana", "cardano", "dogecoin", "tron"} {
		assets = append(assets, models.MAssetQuote{
			ID:           id,
			Name:         strings.ToUpper(id[:1]) + id[1:],
			Symbol:       id[:3],
			MarketCap:    decimal.NewNullDecimal(decimal.NewFromInt(int64(7-i) * 1_000_000_000)),
			CurrentPrice: decimal.NewNullDecimal(decimal.NewFromInt(int64(100 * (7 - i)))),
		})
	}

	log := logger.NewWithWriter(io.Discard, "Test", logger.LevelCritical)
	source := &stubSource{assets: assets}
	m := metrics.New()

	controller := app.NewController(source, &memoryStore{prefs: models.DefaultPreferences()}, m, log)
	srv := NewDashboardServer(&models.MConfig{Host: "127.0.0.1", Port: 8000}, controller, m, log)
	controller.Subscribe(srv)

	if err := controller.Refresh(context.Background()); err != nil {
		t.Fatalf("initial refresh: %v", err)
	}

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Stop(context.Background())
	})

	return &testEnv{server: srv, controller: controller, source: source, http: ts}
}

func (e *testEnv) postJSON(t *testing.T, cmd models.MCommand) (*http.Response, map[string]any) {
	t.Helper()
	body, _ := json.Marshal(cmd)
	resp, err := http.Post(e.http.URL+"/api/commands", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

// -----------------------------------------------------------------------------

func TestGetView(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.http.URL + "/api/view")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	var view models.MDashboardView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.StatusCode != http.StatusOK || len(view.Cards) != 7 || view.Cards[0].ID != "bitcoin" {
		t.Fatalf("unexpected view: status %d, %d cards", resp.StatusCode, len(view.Cards))
	}
	if view.Cards[0].MarketCap != "7.00B" {
		t.Fatalf("expected abbreviated market cap, got %q", view.Cards[0].MarketCap)
	}
}

func TestPostCommandStatuses(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Post(env.http.URL+"/api/commands", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad payload, got %d", resp.StatusCode)
	}

	for _, id := range []string{"bitcoin", "ethereum", "tether", "solana", "cardano"} {
		resp, _ := env.postJSON(t, models.MCommand{Type: models.CmdToggleComparison, AssetID: id})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("toggle %s: expected 200, got %d", id, resp.StatusCode)
		}
	}

	resp, body := env.postJSON(t, models.MCommand{Type: models.CmdToggleComparison, AssetID: "dogecoin"})
	if resp.StatusCode != http.StatusConflict || body["notice"] != helpers.ComparisonFullNotice {
		t.Fatalf("expected 409 with capacity notice, got %d %v", resp.StatusCode, body)
	}

	resp, _ = env.postJSON(t, models.MCommand{Type: models.CmdToggleComparison, AssetID: "unknown-coin"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown asset, got %d", resp.StatusCode)
	}

	resp, _ = env.postJSON(t, models.MCommand{Type: models.CmdSetSort, SortOption: "sideways"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad sort option, got %d", resp.StatusCode)
	}

	env.source.mu.Lock()
	env.source.err = helpers.NewFetchError("request failed", errors.New("timeout"))
	env.source.mu.Unlock()

	resp, body = env.postJSON(t, models.MCommand{Type: models.CmdRefresh})
	if resp.StatusCode != http.StatusBadGateway || body["notice"] != helpers.FetchFailedNotice {
		t.Fatalf("expected 502 with fetch notice, got %d %v", resp.StatusCode, body)
	}
}

func TestPreferencesMetricsAndHealth(t *testing.T) {
	env := newTestEnv(t)

	env.postJSON(t, models.MCommand{Type: models.CmdSetDarkMode, Enabled: models.BoolPtr(true)})

	resp, err := http.Get(env.http.URL + "/api/preferences")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(raw) != `{"darkMode":true,"showChanges":true,"sortOption":"market_cap_desc"}` {
		t.Fatalf("unexpected preferences %s", raw)
	}

	resp, err = http.Get(env.http.URL + "/api/metrics")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var fm models.MFetchMetrics
	_ = json.NewDecoder(resp.Body).Decode(&fm)
	resp.Body.Close()
	if fm.SuccessfulFetches != 1 || fm.FetchedAssets != 7 {
		t.Fatalf("unexpected fetch metrics %+v", fm)
	}

	resp, err = http.Get(env.http.URL + "/metrics")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	raw, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(raw), `crypto_compare_fetch_total{result="success"} 1`) {
		t.Fatalf("expected prometheus fetch counter, got:\n%s", raw)
	}

	resp, err = http.Get(env.http.URL + "/api/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var health map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&health)
	resp.Body.Close()
	if health["status"] != "ok" {
		t.Fatalf("unexpected health %v", health)
	}
}

func TestCommandsMissingFieldsLeaveStateUnchanged(t *testing.T) {
	env := newTestEnv(t)

	for _, id := range []string{"bitcoin", "ethereum"} {
		env.postJSON(t, models.MCommand{Type: models.CmdToggleComparison, AssetID: id})
	}

	for _, payload := range []string{`{"type":"removeComparisonAt"}`, `{"type":"setDarkMode"}`, `{"type":"setShowChanges"}`} {
		resp, err := http.Post(env.http.URL+"/api/commands", "application/json", strings.NewReader(payload))
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", payload, resp.StatusCode)
		}
	}

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	resp, err := client.PostForm(env.http.URL+"/actions/"+models.CmdRemoveComparisonAt, url.Values{})
	if err != nil {
		t.Fatalf("post form: %v", err)
	}
	resp.Body.Close()
	loc, _ := url.Parse(resp.Header.Get("Location"))
	if loc.Query().Get("notice") == "" {
		t.Fatalf("expected a notice in the redirect, got %q", resp.Header.Get("Location"))
	}

	view := env.controller.View()
	if view.Comparison.Count != 2 || view.Comparison.Entries[0].ID != "bitcoin" {
		t.Fatalf("expected comparison untouched, got %+v", view.Comparison)
	}
	if view.DarkMode || !view.ShowChanges {
		t.Fatalf("expected default settings, dark=%v changes=%v", view.DarkMode, view.ShowChanges)
	}
}

var snakeKey = regexp.MustCompile(`"[a-z]+_[a-z_]+":`)

func TestViewJSONUsesCamelCase(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/api/view", "/api/metrics", "/api/health"} {
		resp, err := http.Get(env.http.URL + path)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if key := snakeKey.Find(raw); key != nil {
			t.Fatalf("%s: expected camelCase keys, found %s", path, key)
		}
	}

	resp, err := http.Get(env.http.URL + "/api/view")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	for _, want := range []string{`"darkMode":`, `"sortOption":`, `"marketCap":`, `"countLabel":`, `"lastUpdated":`} {
		if !strings.Contains(string(raw), want) {
			t.Fatalf("expected key %s in view json", want)
		}
	}
}

// -----------------------------------------------------------------------------

func TestIndexPage(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.http.URL + "/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	page := string(raw)
	for _, want := range []string{"Select up to 5 cryptocurrencies to compare", "(0/5)", "Bitcoin", "Add to Comparison", "Market Cap (High to Low)"} {
		if !strings.Contains(page, want) {
			t.Fatalf("expected %q on the dashboard page", want)
		}
	}
}

func TestFormActionsRedirect(t *testing.T) {
	env := newTestEnv(t)

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	post := func(action string, form url.Values) *http.Response {
		resp, err := client.PostForm(env.http.URL+"/actions/"+action, form)
		if err != nil {
			t.Fatalf("post %s: %v", action, err)
		}
		resp.Body.Close()
		return resp
	}

	for _, id := range []string{"bitcoin", "ethereum", "tether", "solana", "cardano"} {
		resp := post(models.CmdToggleComparison, url.Values{"assetId": {id}})
		if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/" {
			t.Fatalf("toggle %s: expected redirect to /, got %d %q", id, resp.StatusCode, resp.Header.Get("Location"))
		}
	}

	resp := post(models.CmdToggleComparison, url.Values{"assetId": {"tron"}})
	loc, _ := url.Parse(resp.Header.Get("Location"))
	if loc.Query().Get("notice") != helpers.ComparisonFullNotice {
		t.Fatalf("expected capacity notice in redirect, got %q", resp.Header.Get("Location"))
	}

	post(models.CmdRemoveComparisonAt, url.Values{"index": {"0"}})
	post(models.CmdSetShowChanges, url.Values{"enabled": {"false"}})
	post(models.CmdSetSort, url.Values{"sortOption": {"id_asc"}})

	view := env.controller.View()
	if view.Comparison.Count != 4 || view.Comparison.Entries[0].ID != "ethereum" {
		t.Fatalf("expected bitcoin removed, got %+v", view.Comparison)
	}
	if view.ShowChanges || view.SortOption != "id_asc" || view.Cards[0].ID != "bitcoin" || view.Cards[1].ID != "cardano" {
		t.Fatalf("unexpected view after form posts: changes=%v sort=%s", view.ShowChanges, view.SortOption)
	}
}

func TestIndexPageMissingMarketData(t *testing.T) {
	env := newTestEnv(t)

	env.source.mu.Lock()
	env.source.assets[0].MarketCap = decimal.NullDecimal{}
	env.source.assets[0].TotalVolume = decimal.NullDecimal{}
	env.source.mu.Unlock()
	if err := env.controller.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	resp, err := http.Get(env.http.URL + "/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	page := string(raw)
	if strings.Contains(page, "$-") {
		t.Fatalf("expected no currency sign on missing values")
	}
	if !strings.Contains(page, "Market Cap: -") || !strings.Contains(page, "Volume: -") {
		t.Fatalf("expected placeholders for missing market cap and volume")
	}
	if !strings.Contains(page, "Market Cap: $6.00B") {
		t.Fatalf("expected other cards to keep the currency sign")
	}
}

func TestCommandFromForm(t *testing.T) {
	t.Parallel()

	form := url.Values{"index": {"2"}, "enabled": {"on"}}
	cmd, err := commandFromForm(models.CmdRemoveComparisonAt, form.Get)
	if err != nil || cmd.Index == nil || *cmd.Index != 2 || cmd.Enabled == nil || !*cmd.Enabled {
		t.Fatalf("unexpected command %+v err=%v", cmd, err)
	}

	_, err = commandFromForm(models.CmdRemoveComparisonAt, url.Values{"index": {"x"}}.Get)
	if !errors.Is(err, helpers.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

// -----------------------------------------------------------------------------

func dialWS(t *testing.T, env *testEnv) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(env.http.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) models.MViewMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg models.MViewMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

// readUntil skips messages queued before the one the test waits for
func readUntil(t *testing.T, conn *websocket.Conn, match func(models.MViewMessage) bool) models.MViewMessage {
	t.Helper()
	for i := 0; i < 10; i++ {
		if msg := readMessage(t, conn); match(msg) {
			return msg
		}
	}
	t.Fatalf("expected message not received")
	return models.MViewMessage{}
}

func TestWebSocketInitialAndCommands(t *testing.T) {
	env := newTestEnv(t)
	conn := dialWS(t, env)

	initial := readMessage(t, conn)
	if initial.Type != models.MessageInitial || len(initial.View.Cards) != 7 {
		t.Fatalf("unexpected initial message %+v", initial.Type)
	}

	if err := conn.WriteJSON(models.MCommand{Type: models.CmdToggleComparison, AssetID: "solana"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	update := readUntil(t, conn, func(m models.MViewMessage) bool { return m.View.Comparison.Count > 0 })
	if update.Type != models.MessageUpdate || update.View.Comparison.Count != 1 || update.View.Comparison.Entries[0].ID != "solana" {
		t.Fatalf("unexpected update %+v", update.View.Comparison)
	}

	// unknown asset is answered to the sender only
	if err := conn.WriteJSON(models.MCommand{Type: models.CmdToggleComparison, AssetID: "nope"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	notice := readUntil(t, conn, func(m models.MViewMessage) bool { return m.Type == models.MessageNotice })
	if notice.Type != models.MessageNotice || notice.Notice == "" {
		t.Fatalf("expected notice, got %+v", notice.Type)
	}
}

func TestWebSocketBroadcastReachesAllClients(t *testing.T) {
	env := newTestEnv(t)
	first := dialWS(t, env)
	second := dialWS(t, env)
	readMessage(t, first)
	readMessage(t, second)

	env.postJSON(t, models.MCommand{Type: models.CmdSetDarkMode, Enabled: models.BoolPtr(true)})

	for _, conn := range []*websocket.Conn{first, second} {
		readUntil(t, conn, func(m models.MViewMessage) bool { return m.View.DarkMode })
	}
}

func TestWebSocketCapacityNoticeOnlyToSender(t *testing.T) {
	env := newTestEnv(t)
	sender := dialWS(t, env)
	other := dialWS(t, env)
	readMessage(t, sender)
	readMessage(t, other)

	for _, id := range []string{"bitcoin", "ethereum", "tether", "solana", "cardano"} {
		env.postJSON(t, models.MCommand{Type: models.CmdToggleComparison, AssetID: id})
	}

	if err := sender.WriteJSON(models.MCommand{Type: models.CmdToggleComparison, AssetID: "tron"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	notice := readUntil(t, sender, func(m models.MViewMessage) bool { return m.Type == models.MessageNotice })
	if notice.Notice != helpers.ComparisonFullNotice || notice.View.Comparison.Count != 5 {
		t.Fatalf("expected capacity notice with the set at 5, got %q %d", notice.Notice, notice.View.Comparison.Count)
	}

	// the next broadcast must reach the other client without a notice before it
	env.postJSON(t, models.MCommand{Type: models.CmdSetDarkMode, Enabled: models.BoolPtr(true)})
	for i := 0; i < 10; i++ {
		msg := readMessage(t, other)
		if msg.Type == models.MessageNotice {
			t.Fatalf("notice leaked to another client: %q", msg.Notice)
		}
		if msg.View.DarkMode {
			return
		}
	}
	t.Fatalf("expected dark mode update on the other client")
}

func TestWebSocketInvalidFrameClosesClient(t *testing.T) {
	env := newTestEnv(t)
	conn := dialWS(t, env)
	readMessage(t, conn)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected the server to close the connection")
	}
}
