// Package rollback implements the guarded rollback of the read/write
// aliases to a previously retained index.
package rollback

import (
	"context"
	"fmt"

	"github.com/Junhan0037/SearchFoundry/internal/alias"
	"github.com/Junhan0037/SearchFoundry/internal/model"
	apperrors "github.com/Junhan0037/SearchFoundry/internal/pkg/errors"
)

// Service performs guarded alias rollbacks.
type Service struct {
	alias *alias.Manager
}

// New wraps an alias.Manager in a rollback Service.
func New(aliasMgr *alias.Manager) *Service {
	return &Service{alias: aliasMgr}
}

// Rollback refuses unless both the read and write aliases currently
// resolve exactly to req.CurrentIndex, then atomically switches them to
// req.RollbackToIndex.
func (s *Service) Rollback(ctx context.Context, req model.RollbackRequest) (model.RollbackResult, error) {
	before, err := s.alias.CurrentAliasState(ctx)
	if err != nil {
		return model.RollbackResult{}, fmt.Errorf("reading current alias state: %w", err)
	}

	if !onlyTarget(before.ReadTargets, req.CurrentIndex) || !onlyTarget(before.WriteTargets, req.CurrentIndex) {
		return model.RollbackResult{}, apperrors.ConflictError(
			fmt.Sprintf("current alias state (read=%v write=%v) does not match expected current index %q; refusing rollback",
				before.ReadTargets, before.WriteTargets, req.CurrentIndex))
	}

	if err := s.alias.SwitchTo(ctx, req.RollbackToIndex); err != nil {
		return model.RollbackResult{}, fmt.Errorf("rolling back to %s: %w", req.RollbackToIndex, err)
	}

	after, err := s.alias.CurrentAliasState(ctx)
	if err != nil {
		return model.RollbackResult{}, fmt.Errorf("reading alias state after rollback: %w", err)
	}

	return model.RollbackResult{Before: before, After: after}, nil
}

func onlyTarget(targets []string, index string) bool {
	return len(targets) == 1 && targets[0] == index
}
