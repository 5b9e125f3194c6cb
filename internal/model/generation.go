package model

import "fmt"

// Generation is a migration-target version; its index name is derived
// deterministically so the orchestrator never has to invent or persist a
// naming scheme separately from the version counter.
type Generation struct {
	Version int
}

// IndexName returns the derived index name docs_v{version}.
func (g Generation) IndexName() string {
	return fmt.Sprintf("docs_v%d", g.Version)
}

// AliasState describes which indices the read and write aliases currently
// resolve to. A healthy system has exactly one read target and exactly one
// write target, both equal.
type AliasState struct {
	ReadTargets  []string `json:"readTargets"`
	WriteTargets []string `json:"writeTargets"`
}

// Healthy reports whether both aliases resolve to a single, identical index.
func (a AliasState) Healthy() bool {
	if len(a.ReadTargets) != 1 || len(a.WriteTargets) != 1 {
		return false
	}
	return a.ReadTargets[0] == a.WriteTargets[0]
}

// CurrentIndex returns the single index both aliases point at, and whether
// the state is well-formed enough to have one.
func (a AliasState) CurrentIndex() (string, bool) {
	if !a.Healthy() {
		return "", false
	}
	return a.ReadTargets[0], true
}

// AliasAction is one step of an atomic alias-update transaction.
type AliasAction struct {
	Type         AliasActionType `json:"type"`
	Alias        string          `json:"alias"`
	Index        string          `json:"index,omitempty"`
	IsWriteIndex bool            `json:"isWriteIndex,omitempty"`
}

// AliasActionType enumerates the kinds of steps an alias transaction can
// contain.
type AliasActionType string

const (
	AliasActionRemove AliasActionType = "remove"
	AliasActionAdd    AliasActionType = "add"
)

const (
	// ReadAlias and WriteAlias are the two fixed alias names the Alias
	// Manager maintains.
	ReadAlias  = "docs_read"
	WriteAlias = "docs_write"
)

// SwitchActions builds the four-action atomic transaction required to move
// both aliases onto target: remove read from any index, remove write from
// any index, add read to target, add write to target with is_write_index.
func SwitchActions(target string) []AliasAction {
	return []AliasAction{
		{Type: AliasActionRemove, Alias: ReadAlias},
		{Type: AliasActionRemove, Alias: WriteAlias},
		{Type: AliasActionAdd, Alias: ReadAlias, Index: target},
		{Type: AliasActionAdd, Alias: WriteAlias, Index: target, IsWriteIndex: true},
	}
}
