// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package hooks classifies charm event names. Every event a charm can
// observe falls into one of a closed set of kinds, determined entirely
// by the shape of its name: a suffix for relation, storage, workload
// and action events, an exact match for secret, framework and builtin
// events, and anything else is a custom event defined by the charm
// itself.
package hooks

import (
	"strings"

	"github.com/juju/collections/set"
)

// Kind is the semantic category of an event.
type Kind string

const (
	// Relation events concern one of the charm's relation endpoints.
	Relation Kind = "relation"

	// Action events are triggered by an operator running a charm action.
	Action Kind = "action"

	// Secret events concern a juju secret the charm owns or observes.
	Secret Kind = "secret"

	// Framework events are emitted by the operator framework itself
	// rather than by juju.
	Framework Kind = "framework"

	// Storage events concern one of the charm's storage instances.
	Storage Kind = "storage"

	// Workload events concern one of the charm's sidecar containers.
	Workload Kind = "workload"

	// Builtin events are the fixed juju lifecycle hooks.
	Builtin Kind = "builtin"

	// Custom events are defined by the charm or one of its libraries;
	// nothing further can be known about them from the name alone.
	Custom Kind = "custom"
)

// Event name suffixes, in underscore form. Relation, storage, workload
// and action events embed the entity name before the suffix.
const (
	RelationCreatedSuffix  = "_relation_created"
	RelationJoinedSuffix   = "_relation_joined"
	RelationChangedSuffix  = "_relation_changed"
	RelationDepartedSuffix = "_relation_departed"
	RelationBrokenSuffix   = "_relation_broken"

	ActionSuffix = "_action"

	StorageAttachedSuffix  = "_storage_attached"
	StorageDetachingSuffix = "_storage_detaching"

	PebbleReadySuffix          = "_pebble_ready"
	PebbleCustomNoticeSuffix   = "_pebble_custom_notice"
	PebbleCheckFailedSuffix    = "_pebble_check_failed"
	PebbleCheckRecoveredSuffix = "_pebble_check_recovered"
)

var relationSuffixes = []string{
	RelationCreatedSuffix,
	RelationJoinedSuffix,
	RelationChangedSuffix,
	RelationDepartedSuffix,
	RelationBrokenSuffix,
}

var storageSuffixes = []string{
	StorageAttachedSuffix,
	StorageDetachingSuffix,
}

var workloadSuffixes = []string{
	PebbleReadySuffix,
	PebbleCustomNoticeSuffix,
	PebbleCheckFailedSuffix,
	PebbleCheckRecoveredSuffix,
}

var secretEvents = set.NewStrings(
	"secret_changed",
	"secret_remove",
	"secret_rotate",
	"secret_expired",
)

var frameworkEvents = set.NewStrings(
	"pre_commit",
	"commit",
	"collect_app_status",
	"collect_unit_status",
)

var builtinEvents = set.NewStrings(
	"start",
	"stop",
	"install",
	"remove",
	"update_status",
	"config_changed",
	"upgrade_charm",
	"pre_series_upgrade",
	"post_series_upgrade",
	"leader_elected",
	"leader_settings_changed",
	"collect_metrics",
)

// NormalizeName converts an event name from its juju (dashed) form to
// its framework (underscored) form.
func NormalizeName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// Path is a parsed event path. The name is the last dot-separated
// segment; any leading segments form the owner path of the object the
// event is defined on, defaulting to the charm's own "on".
type Path struct {
	// Full is the normalized path string.
	Full string
	// OwnerPath is the path to the object owning the event.
	OwnerPath []string
	// Name is the full event name, prefix plus suffix.
	Name string
	// Prefix is the entity name the event is about, for the kinds
	// that embed one. Empty for secret and framework events; the
	// whole name for builtin and custom events.
	Prefix string
	// Suffix is the matched suffix. For secret and framework events
	// the whole name matched, so suffix equals name. Empty for
	// builtin and custom events.
	Suffix string
	// Kind is the event's semantic category.
	Kind Kind
}

// Parse classifies an event path. It is total: any string yields a
// valid Path, with unrecognized names classified as custom events.
func Parse(path string) Path {
	full := NormalizeName(path)
	segments := strings.Split(full, ".")
	name := segments[len(segments)-1]
	owner := segments[:len(segments)-1]
	if len(owner) == 0 {
		owner = []string{"on"}
	}

	suffix, kind := classify(name)
	prefix := name
	if suffix != "" {
		prefix = strings.TrimSuffix(name, suffix)
	}
	return Path{
		Full:      full,
		OwnerPath: owner,
		Name:      name,
		Prefix:    prefix,
		Suffix:    suffix,
		Kind:      kind,
	}
}

// classify matches the name against the known shapes, most specific
// first. Relation suffixes win over everything, then actions, then the
// exact-name sets, then storage and workload suffixes, then builtins.
func classify(name string) (string, Kind) {
	for _, suffix := range relationSuffixes {
		if strings.HasSuffix(name, suffix) {
			return suffix, Relation
		}
	}
	if strings.HasSuffix(name, ActionSuffix) {
		return ActionSuffix, Action
	}
	if secretEvents.Contains(name) {
		return name, Secret
	}
	if frameworkEvents.Contains(name) {
		return name, Framework
	}
	for _, suffix := range storageSuffixes {
		if strings.HasSuffix(name, suffix) {
			return suffix, Storage
		}
	}
	for _, suffix := range workloadSuffixes {
		if strings.HasSuffix(name, suffix) {
			return suffix, Workload
		}
	}
	if builtinEvents.Contains(name) {
		return "", Builtin
	}
	return "", Custom
}

// IsRelation reports whether this is a relation event kind.
func (k Kind) IsRelation() bool {
	return k == Relation
}

// IsAction reports whether this is an action event kind.
func (k Kind) IsAction() bool {
	return k == Action
}

// IsSecret reports whether this is a secret event kind.
func (k Kind) IsSecret() bool {
	return k == Secret
}

// IsStorage reports whether this is a storage event kind.
func (k Kind) IsStorage() bool {
	return k == Storage
}

// IsWorkload reports whether this is a workload event kind.
func (k Kind) IsWorkload() bool {
	return k == Workload
}

// NeedsEntity reports whether events of this kind refer to a state
// entity that must be resolved before the event can run.
func (k Kind) NeedsEntity() bool {
	switch k {
	case Relation, Secret, Storage, Workload, Action:
		return true
	default:
		return false
	}
}

// BuiltinEvents returns the names of the fixed juju lifecycle hooks.
func BuiltinEvents() set.Strings {
	return builtinEvents.Union(nil)
}

// SecretEvents returns the names of the juju secret hooks.
func SecretEvents() set.Strings {
	return secretEvents.Union(nil)
}

// FrameworkEvents returns the names of the framework-emitted events.
func FrameworkEvents() set.Strings {
	return frameworkEvents.Union(nil)
}
