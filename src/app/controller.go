package app

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"crypto-compare/src/analysis"
	"crypto-compare/src/comparison"
	"crypto-compare/src/helpers"
	"crypto-compare/src/interfaces"
	"crypto-compare/src/logger"
	"crypto-compare/src/metrics"
	"crypto-compare/src/models"
	"crypto-compare/src/render"
)

// Controller owns the dashboard state: the asset list, the comparison set,
// the preferences and the status of the last fetch. Every state change is
// rendered and pushed to the registered publishers.
type Controller struct {
	Source       interfaces.IDataSource
	Store        interfaces.IPreferenceStore
	Metrics      *metrics.Metrics
	Logger       *logger.Logger
	ErrorHandler *helpers.ErrorHandler

	mu         sync.Mutex
	assets     []models.MAssetQuote
	set        *comparison.ComparisonSet
	prefs      models.MPreferences
	status     models.MFetchStatus
	stats      models.MFetchMetrics
	publishers []interfaces.IViewPublisher

	refreshing atomic.Bool
	now        func() time.Time
}

// -----------------------------------------------------------------------------

// NewController restores persisted preferences and selection from the store
func NewController(
	source interfaces.IDataSource,
	store interfaces.IPreferenceStore,
	m *metrics.Metrics,
	l *logger.Logger,
) *Controller {
	prefs, entries := store.Load()

	c := &Controller{
		Source:       source,
		Store:        store,
		Metrics:      m,
		Logger:       l,
		ErrorHandler: helpers.NewErrorHandler(l.Named("ErrorHandler")),
		assets:       []models.MAssetQuote{},
		set:          comparison.Restore(entries),
		prefs:        prefs,
		now:          time.Now,
	}
	c.Metrics.SetComparisonSize(c.set.Len())

	l.Info("Restored preferences (sort %s, dark mode %v, %d compared)", prefs.SortOption, prefs.DarkMode, c.set.Len())
	return c
}

// Subscribe registers a publisher for every subsequent view
func (c *Controller) Subscribe(p interfaces.IViewPublisher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.publishers = append(c.publishers, p)
}

// -----------------------------------------------------------------------------

// View renders the current state
func (c *Controller) View() models.MDashboardView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renderLocked()
}

// Preferences returns the current settings record
func (c *Controller) Preferences() models.MPreferences {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prefs
}

// FetchMetrics returns the refresh counters
func (c *Controller) FetchMetrics() models.MFetchMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// InitialMessage is sent to a client when it connects
func (c *Controller) InitialMessage() models.MViewMessage {
	return models.MViewMessage{Type: models.MessageInitial, View: c.View(), Timestamp: c.now().Unix()}
}

func (c *Controller) renderLocked() models.MDashboardView {
	return render.Render(c.assets, c.set.Entries(), c.set.Capacity(), c.prefs, c.status)
}

// -----------------------------------------------------------------------------

// Refresh fetches the listing ordered by the current sort option, re-sorts it
// locally and publishes the result. On failure the previous list is kept and
// the view carries the error notice. A refresh that finds another in flight
// returns ErrRefreshInFlight without fetching.
func (c *Controller) Refresh(ctx context.Context) error {
	if !c.refreshing.CompareAndSwap(false, true) {
		c.mu.Lock()
		c.stats.SkippedRefreshes++
		c.mu.Unlock()
		c.Metrics.ObserveSkipped()
		c.Logger.Info("Refresh skipped, previous one still in flight")
		return helpers.ErrRefreshInFlight
	}
	defer c.refreshing.Store(false)

	// 1. Mark loading
	c.mu.Lock()
	c.status.Loading = true
	order := c.prefs.SortOption
	loadingView := c.renderLocked()
	c.mu.Unlock()
	c.publish(models.MViewMessage{Type: models.MessageUpdate, View: loadingView})

	// 2. Fetch outside the lock
	start := time.Now()
	fetched, err := c.Source.FetchMarkets(ctx, order)
	elapsed := time.Since(start)
	c.Metrics.ObserveFetch(elapsed, err)

	// 3. Apply the outcome
	c.mu.Lock()
	c.status.Loading = false
	c.stats.FetchDurationSeconds = elapsed.Seconds()
	if err != nil {
		c.status.Failed = true
		c.stats.FailedFetches++
	} else {
		// The sort option may have changed while the request was out
		c.assets = analysis.SortAssets(fetched, c.prefs.SortOption)
		c.status.Failed = false
		c.status.LastUpdated = c.now().Unix()
		c.stats.SuccessfulFetches++
		c.stats.FetchedAssets = len(fetched)
	}
	view := c.renderLocked()
	assetCount := len(c.assets)
	c.mu.Unlock()

	c.Metrics.SetAssets(assetCount)
	c.publish(models.MViewMessage{Type: models.MessageUpdate, View: view})

	if err != nil {
		c.ErrorHandler.Handle(err, fmt.Sprintf("refresh from %s", c.Source.Name()))
		return err
	}

	c.Logger.Info("Fetched %d assets from %s in %v", len(fetched), c.Source.Name(), elapsed.Round(time.Millisecond))
	return nil
}

// -----------------------------------------------------------------------------

// Dispatch applies one user command. Commands that change persisted state
// save both blobs before the new view is published.
func (c *Controller) Dispatch(ctx context.Context, cmd models.MCommand) error {
	if cmd.Type == models.CmdRefresh {
		return c.Refresh(ctx)
	}

	c.mu.Lock()
	err := c.applyLocked(cmd)
	if err != nil {
		c.mu.Unlock()
		// Rejected commands are answered to the caller only
		c.ErrorHandler.Handle(err, "command "+cmd.Type)
		return err
	}

	prefs, entries := c.prefs, c.set.Entries()
	view := c.renderLocked()
	c.mu.Unlock()

	c.Metrics.SetComparisonSize(len(entries))

	// A failed save keeps the in-memory change
	if err := c.Store.Save(prefs, entries); err != nil {
		c.ErrorHandler.Handle(err, "save preferences")
	}

	c.publish(models.MViewMessage{Type: models.MessageUpdate, View: view})
	return nil
}

func (c *Controller) applyLocked(cmd models.MCommand) error {
	switch cmd.Type {
	case models.CmdToggleComparison:
		// Entries can outlive the asset in the list, removal needs only the id
		if c.set.Contains(cmd.AssetID) {
			_, err := c.set.Toggle(models.MAssetQuote{ID: cmd.AssetID})
			return err
		}
		asset, ok := c.findAsset(cmd.AssetID)
		if !ok {
			return fmt.Errorf("toggle %q: %w", cmd.AssetID, helpers.ErrUnknownAsset)
		}
		_, err := c.set.Toggle(asset)
		return err

	case models.CmdRemoveComparisonAt:
		if cmd.Index == nil {
			return fmt.Errorf("remove without index: %w", helpers.ErrIndexOutOfRange)
		}
		return c.set.RemoveAt(*cmd.Index)

	case models.CmdClearComparison:
		c.set.Clear()
		return nil

	case models.CmdSetSort:
		opt, err := models.ParseSortOption(cmd.SortOption)
		if err != nil {
			return fmt.Errorf("%w: %v", helpers.ErrInvalidSortOption, err)
		}
		c.prefs.SortOption = opt
		c.assets = analysis.SortAssets(c.assets, opt)
		return nil

	case models.CmdSetShowChanges:
		if cmd.Enabled == nil {
			return fmt.Errorf("%w: %s without enabled", helpers.ErrUnknownCommand, cmd.Type)
		}
		c.prefs.ShowChanges = *cmd.Enabled
		return nil

	case models.CmdSetDarkMode:
		if cmd.Enabled == nil {
			return fmt.Errorf("%w: %s without enabled", helpers.ErrUnknownCommand, cmd.Type)
		}
		c.prefs.DarkMode = *cmd.Enabled
		return nil

	default:
		return fmt.Errorf("%w: %q", helpers.ErrUnknownCommand, cmd.Type)
	}
}

func (c *Controller) findAsset(id string) (models.MAssetQuote, bool) {
	for _, a := range c.assets {
		if a.ID == id {
			return a, true
		}
	}
	return models.MAssetQuote{}, false
}

// -----------------------------------------------------------------------------

func (c *Controller) publish(msg models.MViewMessage) {
	if msg.Timestamp == 0 {
		msg.Timestamp = c.now().Unix()
	}

	c.mu.Lock()
	publishers := make([]interfaces.IViewPublisher, len(c.publishers))
	copy(publishers, c.publishers)
	c.mu.Unlock()

	for _, p := range publishers {
		p.Broadcast(msg)
	}
}
