package main

import (
	"crypto-compare/src/app"
	"crypto-compare/src/data_source/coingecko"
	"crypto-compare/src/interfaces"
	"crypto-compare/src/logger"
	"crypto-compare/src/metrics"
	"crypto-compare/src/models"
	"crypto-compare/src/network"
	"crypto-compare/src/storage"
)

// -----------------------------------------------------------------------------

// setupStore opens the preference backend selected by storage.db_type
func setupStore(config *models.MConfig, appLogger *logger.Logger) (interfaces.IKeyValueStore, *storage.PreferenceStore, error) {
	storeLogger := logger.NewLogger(config, "PreferenceStore")

	backend, err := storage.NewBackend(config, storeLogger)
	if err != nil {
		return nil, nil, err
	}
	if err := backend.Initialize(); err != nil {
		return nil, nil, err
	}

	appLogger.Info("Preference store ready (%s)", config.Storage.DBType)
	return backend, storage.NewPreferenceStore(backend, storeLogger), nil
}

// -----------------------------------------------------------------------------

// setupDataSource builds the CoinGecko client on top of the network manager
func setupDataSource(config *models.MConfig) interfaces.IDataSource {
	networkManager := network.NewNetworkManager(config, logger.NewLogger(config, "NetworkManager"))
	return coingecko.NewCoinGeckoSource(config, networkManager, logger.NewLogger(config, "CoinGecko"))
}

// -----------------------------------------------------------------------------

// setupController restores persisted state and wires the data source
func setupController(
	config *models.MConfig,
	source interfaces.IDataSource,
	store interfaces.IPreferenceStore,
	m *metrics.Metrics,
) *app.Controller {
	return app.NewController(source, store, m, logger.NewLogger(config, "Controller"))
}
