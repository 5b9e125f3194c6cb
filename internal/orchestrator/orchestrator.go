// Package orchestrator drives the blue-green reindex state machine:
// create the target index, reindex into it, validate it against the
// source, and only then atomically switch the read/write aliases.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Junhan0037/SearchFoundry/internal/alias"
	"github.com/Junhan0037/SearchFoundry/internal/bus"
	"github.com/Junhan0037/SearchFoundry/internal/config"
	"github.com/Junhan0037/SearchFoundry/internal/engine"
	"github.com/Junhan0037/SearchFoundry/internal/model"
	pkgcontext "github.com/Junhan0037/SearchFoundry/internal/pkg/context"
	apperrors "github.com/Junhan0037/SearchFoundry/internal/pkg/errors"
	"github.com/Junhan0037/SearchFoundry/internal/pkg/logger"
	"github.com/Junhan0037/SearchFoundry/internal/retention"
	"github.com/Junhan0037/SearchFoundry/internal/validate"
)

// Orchestrator drives one blue-green migration at a time end to end.
type Orchestrator struct {
	port      engine.Port
	alias     *alias.Manager
	validator *validate.Validator
	recorder  *retention.Recorder
	bus       bus.Bus
	valCfg    config.ValidationConfig
	log       *logger.Logger
}

// New wires the orchestrator's collaborators.
func New(port engine.Port, aliasMgr *alias.Manager, recorder *retention.Recorder, b bus.Bus, valCfg config.ValidationConfig, log *logger.Logger) *Orchestrator {
	if b == nil {
		b = bus.NilBus{}
	}
	return &Orchestrator{
		port:      port,
		alias:     aliasMgr,
		validator: validate.New(port),
		recorder:  recorder,
		bus:       b,
		valCfg:    valCfg,
		log:       log,
	}
}

// Reindex drives IDLE -> CREATE_TARGET -> REINDEX -> VALIDATE -> SWITCH ->
// RECORD -> DONE, failing fast (with no alias change) at any step.
func (o *Orchestrator) Reindex(ctx context.Context, req model.BlueGreenRequest) (model.BlueGreenResult, error) {
	if req.SourceVersion == req.TargetVersion {
		return model.BlueGreenResult{}, apperrors.BadRequestError("sourceVersion and targetVersion must differ")
	}
	if req.SourceVersion < 1 || req.TargetVersion < 1 {
		return model.BlueGreenResult{}, apperrors.BadRequestError("sourceVersion and targetVersion must be >= 1")
	}

	sourceIndex := model.Generation{Version: req.SourceVersion}.IndexName()
	targetIndex := model.Generation{Version: req.TargetVersion}.IndexName()
	ctx = pkgcontext.WithCorrelationID(ctx, uuid.NewString())

	aliasBefore, err := o.alias.CurrentAliasState(ctx)
	if err != nil {
		return model.BlueGreenResult{}, fmt.Errorf("capturing alias state before migration: %w", err)
	}

	result := model.BlueGreenResult{
		SourceIndex: sourceIndex,
		TargetIndex: targetIndex,
		AliasBefore: aliasBefore,
	}

	if err := o.createTarget(ctx, targetIndex); err != nil {
		o.publishFailed(ctx, sourceIndex, targetIndex, err)
		return model.BlueGreenResult{}, err
	}

	reindexResult, err := o.reindex(ctx, sourceIndex, targetIndex, req)
	if err != nil {
		o.publishFailed(ctx, sourceIndex, targetIndex, err)
		return model.BlueGreenResult{}, err
	}
	result.ReindexTookMs = reindexResult.TookMs
	result.Failures = reindexResult.Failures
	if len(reindexResult.Failures) > 0 {
		err := apperrors.EngineErrorWrap(fmt.Sprintf("reindex %s -> %s reported %d document failures", sourceIndex, targetIndex, len(reindexResult.Failures)), nil)
		o.publishFailed(ctx, sourceIndex, targetIndex, err)
		return model.BlueGreenResult{}, err
	}

	resolved := validate.ResolveOptions(req.ValidationOptions, o.valCfg)
	validation, err := o.validate(ctx, sourceIndex, targetIndex, resolved)
	if err != nil {
		o.publishFailed(ctx, sourceIndex, targetIndex, err)
		return model.BlueGreenResult{}, err
	}
	result.Validation = validation
	if !validation.Passed {
		err := apperrors.ValidationFailedError(strings.Join(validation.FailureReasons, "; "))
		o.publishFailed(ctx, sourceIndex, targetIndex, err)
		return model.BlueGreenResult{}, err
	}

	if validation.Count != nil {
		result.SourceCount = validation.Count.SourceCount
		result.TargetCount = validation.Count.TargetCount
	} else {
		srcCount, err := o.port.Count(ctx, sourceIndex)
		if err != nil {
			return model.BlueGreenResult{}, fmt.Errorf("counting %s after validation: %w", sourceIndex, err)
		}
		tgtCount, err := o.port.Count(ctx, targetIndex)
		if err != nil {
			return model.BlueGreenResult{}, fmt.Errorf("counting %s after validation: %w", targetIndex, err)
		}
		result.SourceCount = srcCount
		result.TargetCount = tgtCount
	}

	if err := o.switchAlias(ctx, targetIndex); err != nil {
		o.publishFailed(ctx, sourceIndex, targetIndex, err)
		return model.BlueGreenResult{}, err
	}

	aliasAfter, err := o.alias.CurrentAliasState(ctx)
	if err != nil {
		return model.BlueGreenResult{}, fmt.Errorf("capturing alias state after switch: %w", err)
	}
	result.AliasAfter = aliasAfter

	manifestPath, err := o.record(ctx, sourceIndex, targetIndex, aliasBefore, result.SourceCount, result.TargetCount)
	if err != nil {
		return model.BlueGreenResult{}, err
	}
	result.RetentionManifestPath = manifestPath

	return result, nil
}

func (o *Orchestrator) createTarget(ctx context.Context, targetIndex string) error {
	exists, err := o.port.IndexExists(ctx, targetIndex)
	if err != nil {
		return fmt.Errorf("checking target index %s: %w", targetIndex, err)
	}
	if exists {
		return apperrors.ConflictError(fmt.Sprintf("target index %s already exists", targetIndex))
	}
	if err := o.port.CreateIndex(ctx, targetIndex, nil); err != nil {
		return fmt.Errorf("creating target index %s: %w", targetIndex, err)
	}
	o.publish(ctx, bus.TopicReindexCreateTarget, map[string]any{"targetIndex": targetIndex})
	return nil
}

func (o *Orchestrator) reindex(ctx context.Context, sourceIndex, targetIndex string, req model.BlueGreenRequest) (engine.ReindexResult, error) {
	result, err := o.port.Reindex(ctx, sourceIndex, targetIndex, req.WaitForCompletion, req.RefreshAfter)
	if err != nil {
		return engine.ReindexResult{}, fmt.Errorf("reindexing %s -> %s: %w", sourceIndex, targetIndex, err)
	}
	o.publish(ctx, bus.TopicReindexReindex, map[string]any{
		"sourceIndex": sourceIndex, "targetIndex": targetIndex, "tookMs": result.TookMs, "failures": len(result.Failures),
	})
	return result, nil
}

func (o *Orchestrator) validate(ctx context.Context, sourceIndex, targetIndex string, opts validate.ResolvedOptions) (model.ValidationResult, error) {
	result, err := o.validator.Validate(ctx, sourceIndex, targetIndex, opts)
	if err != nil {
		return model.ValidationResult{}, fmt.Errorf("validating %s against %s: %w", targetIndex, sourceIndex, err)
	}
	o.publish(ctx, bus.TopicReindexValidate, map[string]any{
		"sourceIndex": sourceIndex, "targetIndex": targetIndex, "passed": result.Passed,
	})
	return result, nil
}

func (o *Orchestrator) switchAlias(ctx context.Context, targetIndex string) error {
	if err := o.alias.SwitchTo(ctx, targetIndex); err != nil {
		return fmt.Errorf("switching alias to %s: %w", targetIndex, err)
	}
	o.publish(ctx, bus.TopicReindexSwitch, map[string]any{"targetIndex": targetIndex})
	return nil
}

func (o *Orchestrator) record(ctx context.Context, sourceIndex, targetIndex string, aliasBefore model.AliasState, sourceCount, targetCount int64) (string, error) {
	path, err := o.recorder.Record(model.RetentionManifest{
		Timestamp:   time.Now().UTC(),
		SourceIndex: sourceIndex,
		TargetIndex: targetIndex,
		AliasBefore: aliasBefore,
		SourceCount: sourceCount,
		TargetCount: targetCount,
	})
	if err != nil {
		return "", fmt.Errorf("writing retention manifest: %w", err)
	}
	o.publish(ctx, bus.TopicReindexRecord, map[string]any{"retentionManifestPath": path})
	return path, nil
}

// publish emits an orchestrator event, tagging it with the correlation ID
// stashed in ctx by Reindex.
func (o *Orchestrator) publish(ctx context.Context, topic string, payload map[string]any) {
	if err := o.bus.Publish(ctx, topic, bus.Event{
		ID:            uuid.NewString(),
		Type:          topic,
		Source:        "orchestrator",
		Timestamp:     time.Now().UTC().Unix(),
		CorrelationID: pkgcontext.CorrelationIDFromContext(ctx),
		Payload:       payload,
	}); err != nil && o.log != nil {
		o.log.WithError(err).Warn("failed to publish orchestrator event", "topic", topic)
	}
}

func (o *Orchestrator) publishFailed(ctx context.Context, sourceIndex, targetIndex string, cause error) {
	if o.log != nil {
		o.log.WithError(cause).Error("blue-green migration failed", "sourceIndex", sourceIndex, "targetIndex", targetIndex)
	}
	o.publish(ctx, bus.TopicReindexFailed, map[string]any{
		"sourceIndex": sourceIndex, "targetIndex": targetIndex, "reason": cause.Error(),
	})
}
