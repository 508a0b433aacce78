// Copyright 2025 Canonical Ltd.
// Licensed under the LGPLv3, see LICENCE file for details.

// Package charm describes the static face of the charm under test: the
// metadata, config options and actions it declares. The harness never
// loads a real charm directory; callers hand it the parsed equivalents
// of metadata.yaml, config.yaml and actions.yaml, or raw readers for
// the same.
package charm

import (
	"sort"
)

// Spec collects everything the harness knows about a charm without
// running it. Any of the fields may be nil, meaning the corresponding
// file is absent or empty.
type Spec struct {
	Meta    *Meta
	Config  *Config
	Actions *Actions
}

// AllRelations returns every relation declared in the metadata, across
// the provides, requires and peers sections, sorted by endpoint name.
// An endpoint declared in more than one section appears once per
// section.
func (s Spec) AllRelations() []Relation {
	if s.Meta == nil {
		return nil
	}
	var all []Relation
	for _, rels := range []map[string]Relation{
		s.Meta.Provides,
		s.Meta.Requires,
		s.Meta.Peers,
	} {
		for _, rel := range rels {
			all = append(all, rel)
		}
	}
	sortRelations(all)
	return all
}

// Relation returns the declared relation with the given endpoint name,
// searching provides, then requires, then peers.
func (s Spec) Relation(endpoint string) (Relation, bool) {
	if s.Meta == nil {
		return Relation{}, false
	}
	for _, rels := range []map[string]Relation{
		s.Meta.Provides,
		s.Meta.Requires,
		s.Meta.Peers,
	} {
		if rel, ok := rels[endpoint]; ok {
			return rel, true
		}
	}
	return Relation{}, false
}

func sortRelations(rels []Relation) {
	sort.Slice(rels, func(i, j int) bool {
		if rels[i].Name != rels[j].Name {
			return rels[i].Name < rels[j].Name
		}
		return rels[i].Role < rels[j].Role
	})
}
