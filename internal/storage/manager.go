// Package storage provides the top-level StorageManager that coordinates
// the 2 storage areas: the SurrealDB internal store and the SQLite ledger.
package storage

import (
	"context"
	"fmt"

	"github.com/bobmcallan/fundboard/internal/common"
	"github.com/bobmcallan/fundboard/internal/interfaces"
	"github.com/bobmcallan/fundboard/internal/storage/sqlite"
	"github.com/bobmcallan/fundboard/internal/storage/surrealdb"
)

// Manager implements interfaces.StorageManager using 2 storage areas.
type Manager struct {
	internal interfaces.InternalStore
	ledger   interfaces.LedgerStore
	logger   *common.Logger
}

// NewManager opens both storage areas and migrates the ledger.
func NewManager(ctx context.Context, logger *common.Logger, config *common.Config) (*Manager, error) {
	ledger, err := OpenLedger(ctx, logger, config.Storage.Ledger)
	if err != nil {
		return nil, err
	}

	internal, err := surrealdb.OpenInternalStore(ctx, logger, config.Storage.Internal)
	if err != nil {
		ledger.Close()
		return nil, fmt.Errorf("failed to create internal store: %w", err)
	}

	logger.Info().
		Str("internal", config.Storage.Internal.Address).
		Str("ledger", config.Storage.Ledger.Path).
		Msg("Storage manager initialized (2 areas)")

	return NewManagerFromStores(logger, internal, ledger), nil
}

// OpenLedger opens and migrates the SQLite ledger on its own. Commands that
// only touch the ledger use it without a SurrealDB connection.
func OpenLedger(ctx context.Context, logger *common.Logger, config common.LedgerConfig) (*sqlite.Store, error) {
	ledger, err := sqlite.NewStore(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create ledger store: %w", err)
	}
	if err := ledger.Migrate(ctx); err != nil {
		ledger.Close()
		return nil, fmt.Errorf("failed to migrate ledger: %w", err)
	}
	return ledger, nil
}

// NewManagerFromStores wires already-open stores.
func NewManagerFromStores(logger *common.Logger, internal interfaces.InternalStore, ledger interfaces.LedgerStore) *Manager {
	return &Manager{
		internal: internal,
		ledger:   ledger,
		logger:   logger,
	}
}

func (m *Manager) InternalStore() interfaces.InternalStore {
	return m.internal
}

func (m *Manager) LedgerStore() interfaces.LedgerStore {
	return m.ledger
}

func (m *Manager) Close() error {
	var firstErr error
	if err := m.internal.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := m.ledger.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)
