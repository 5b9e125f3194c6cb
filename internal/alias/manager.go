// Package alias maintains the docs_read and docs_write aliases that every
// search and indexing request resolves through, applying every move as a
// single atomic transaction against the engine.
package alias

import (
	"context"
	"fmt"

	"github.com/Junhan0037/SearchFoundry/internal/cache"
	"github.com/Junhan0037/SearchFoundry/internal/engine"
	"github.com/Junhan0037/SearchFoundry/internal/model"
	"github.com/Junhan0037/SearchFoundry/internal/pkg/logger"
)

// Manager wraps an engine.Port with the alias-switch contract.
type Manager struct {
	port  engine.Port
	log   *logger.Logger
	cache cache.AliasStateCache
}

// New wraps port in a Manager. log may be nil, in which case transitions
// are not logged. c may be nil, in which case every read falls through to
// the engine directly.
func New(port engine.Port, log *logger.Logger, c cache.AliasStateCache) *Manager {
	return &Manager{port: port, log: log, cache: c}
}

// Bootstrap points both aliases at target for the first time. It is the
// same atomic transaction as SwitchTo; the name exists to make the initial
// migration-free setup call read clearly at call sites.
func (m *Manager) Bootstrap(ctx context.Context, target string) error {
	return m.SwitchTo(ctx, target)
}

// SwitchTo moves both the read and write aliases onto target as one atomic
// transaction: remove read from any index, remove write from any index, add
// read to target, add write to target with is_write_index. It fails if
// target does not exist so that a migration can never point both aliases at
// a nonexistent index.
func (m *Manager) SwitchTo(ctx context.Context, target string) error {
	exists, err := m.port.IndexExists(ctx, target)
	if err != nil {
		return fmt.Errorf("checking target index %s: %w", target, err)
	}
	if !exists {
		return fmt.Errorf("cannot switch aliases to %s: index does not exist", target)
	}

	if err := m.port.UpdateAliases(ctx, model.SwitchActions(target)); err != nil {
		return fmt.Errorf("switching aliases to %s: %w", target, err)
	}
	if m.cache != nil {
		m.cache.Invalidate(ctx)
	}

	if m.log != nil {
		m.log.WithIndex(target).Info("aliases switched")
	}

	state, err := m.port.CurrentAliasState(ctx)
	if err != nil {
		return fmt.Errorf("verifying alias state after switch: %w", err)
	}
	if !state.Healthy() {
		return fmt.Errorf("alias state unhealthy after switch to %s: read=%v write=%v", target, state.ReadTargets, state.WriteTargets)
	}
	if m.cache != nil {
		m.cache.Set(ctx, state)
	}

	return nil
}

// CurrentAliasState returns the indices docs_read and docs_write currently
// resolve to, serving from cache when available and falling through to the
// engine on a miss.
func (m *Manager) CurrentAliasState(ctx context.Context) (model.AliasState, error) {
	if m.cache != nil {
		if state, ok := m.cache.Get(ctx); ok {
			return state, nil
		}
	}

	state, err := m.port.CurrentAliasState(ctx)
	if err != nil {
		return model.AliasState{}, err
	}
	if m.cache != nil {
		m.cache.Set(ctx, state)
	}
	return state, nil
}
