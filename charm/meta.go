// Copyright 2025 Canonical Ltd.
// Licensed under the LGPLv3, see LICENCE file for details.

package charm

import (
	"fmt"
	"io"

	"github.com/juju/errors"
	"github.com/juju/schema"
	"gopkg.in/yaml.v3"
)

// RelationScope describes the scope of a relation.
type RelationScope string

const (
	// ScopeGlobal allows units of the related applications to see and
	// interact with each other freely.
	ScopeGlobal RelationScope = "global"

	// ScopeContainer restricts the relation to units co-located on the
	// same machine or pod; it is how subordinate charms attach to
	// their principal.
	ScopeContainer RelationScope = "container"
)

// RelationRole describes which side of a relation an endpoint takes.
type RelationRole string

const (
	RoleProvider RelationRole = "provider"
	RoleRequirer RelationRole = "requirer"
	RolePeer     RelationRole = "peer"
)

// Relation represents a single relation defined in the charm
// metadata.yaml file.
type Relation struct {
	Name      string
	Role      RelationRole
	Interface string
	Optional  bool
	Limit     int
	Scope     RelationScope
}

// Storage represents a charm's storage requirement as declared in
// metadata.yaml.
type Storage struct {
	Name        string
	Type        string
	Description string
}

// Resource represents a charm resource declaration.
type Resource struct {
	Name        string
	Type        string
	Description string
}

// Mount maps a storage instance into a workload container's
// filesystem.
type Mount struct {
	Storage  string
	Location string
}

// Container describes a sidecar workload container declared in
// metadata.yaml.
type Container struct {
	Name     string
	Resource string
	Mounts   []Mount
}

// ExtraBinding represents an extra bindable endpoint that is not a
// relation.
type ExtraBinding struct {
	Name string
}

// Meta represents all the known content that may be defined within a
// charm's metadata.yaml file that the harness cares about.
type Meta struct {
	Name          string
	Summary       string
	Description   string
	Subordinate   bool
	Provides      map[string]Relation
	Requires      map[string]Relation
	Peers         map[string]Relation
	ExtraBindings map[string]ExtraBinding
	Storage       map[string]Storage
	Resources     map[string]Resource
	Containers    map[string]Container
}

// CombinedRelations returns all defined relations, whether they are
// provides, requires or peers. An endpoint declared in more than one
// section appears only once; detecting that collision is the
// consistency checker's job, not this accessor's.
func (m *Meta) CombinedRelations() map[string]Relation {
	combined := make(map[string]Relation)
	for _, rels := range []map[string]Relation{m.Provides, m.Requires, m.Peers} {
		for name, rel := range rels {
			combined[name] = rel
		}
	}
	return combined
}

// ReadMeta reads the content of a metadata.yaml file and returns its
// representation.
func ReadMeta(r io.Reader) (*Meta, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Trace(err)
	}
	raw := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Trace(err)
	}
	return ParseMeta(raw)
}

// ParseMeta builds a Meta from the parsed-YAML equivalent of a
// metadata.yaml file. A nil or empty map yields an empty Meta.
func ParseMeta(raw map[string]interface{}) (*Meta, error) {
	if len(raw) == 0 {
		return &Meta{}, nil
	}
	v, err := charmSchema.Coerce(raw, nil)
	if err != nil {
		return nil, errors.Annotatef(err, "metadata")
	}
	m := v.(map[string]interface{})

	meta := &Meta{}
	if name, ok := m["name"].(string); ok {
		meta.Name = name
	}
	meta.Summary = m["summary"].(string)
	meta.Description = m["description"].(string)
	meta.Provides = parseRelations(m["provides"], RoleProvider)
	meta.Requires = parseRelations(m["requires"], RoleRequirer)
	meta.Peers = parseRelations(m["peers"], RolePeer)
	meta.ExtraBindings, err = parseMetaExtraBindings(m["extra-bindings"])
	if err != nil {
		return nil, errors.Trace(err)
	}
	meta.Storage = parseStorage(m["storage"])
	meta.Resources = parseResources(m["resources"])
	meta.Containers = parseContainers(m["containers"])

	if subordinate := m["subordinate"]; subordinate != nil {
		// Subordinate charms must have at least one requires relation
		// with container scope, otherwise they cannot relate to their
		// principal.
		valid := false
		for _, rel := range meta.Requires {
			if rel.Scope == ScopeContainer {
				valid = true
				break
			}
		}
		if !valid {
			return nil, errors.Errorf("subordinate charm %q lacks requires relation with container scope", meta.Name)
		}
		meta.Subordinate = subordinate.(bool)
	}
	return meta, nil
}

func parseRelations(relations interface{}, role RelationRole) map[string]Relation {
	if relations == nil {
		return nil
	}
	result := make(map[string]Relation)
	for name, rel := range relations.(map[string]interface{}) {
		relMap := rel.(map[string]interface{})
		relation := Relation{
			Name:      name,
			Role:      role,
			Interface: relMap["interface"].(string),
			Optional:  relMap["optional"].(bool),
		}
		if scope := relMap["scope"]; scope != nil {
			relation.Scope = RelationScope(scope.(string))
		}
		if relMap["limit"] != nil {
			// Schema decodes as int64, but the int range is plenty
			// for relation limits.
			relation.Limit = int(relMap["limit"].(int64))
		}
		result[name] = relation
	}
	return result
}

func parseMetaExtraBindings(data interface{}) (map[string]ExtraBinding, error) {
	if data == nil {
		return nil, nil
	}
	bindingMap := data.(map[string]interface{})
	result := make(map[string]ExtraBinding)
	for name := range bindingMap {
		if name == "" {
			return nil, errors.Errorf("extra bindings: missing binding name")
		}
		result[name] = ExtraBinding{Name: name}
	}
	return result, nil
}

func parseStorage(data interface{}) map[string]Storage {
	if data == nil {
		return nil
	}
	result := make(map[string]Storage)
	for name, val := range data.(map[string]interface{}) {
		store := Storage{Name: name}
		if m, ok := val.(map[string]interface{}); ok {
			if t := m["type"]; t != nil {
				store.Type = fmt.Sprint(t)
			}
			if d := m["description"]; d != nil {
				store.Description = fmt.Sprint(d)
			}
		}
		result[name] = store
	}
	return result
}

func parseResources(data interface{}) map[string]Resource {
	if data == nil {
		return nil
	}
	result := make(map[string]Resource)
	for name, val := range data.(map[string]interface{}) {
		res := Resource{Name: name}
		if m, ok := val.(map[string]interface{}); ok {
			if t := m["type"]; t != nil {
				res.Type = fmt.Sprint(t)
			}
			if d := m["description"]; d != nil {
				res.Description = fmt.Sprint(d)
			}
		}
		result[name] = res
	}
	return result
}

func parseContainers(data interface{}) map[string]Container {
	if data == nil {
		return nil
	}
	result := make(map[string]Container)
	for name, val := range data.(map[string]interface{}) {
		container := Container{Name: name}
		if m, ok := val.(map[string]interface{}); ok {
			if res := m["resource"]; res != nil {
				container.Resource = fmt.Sprint(res)
			}
			if mounts, ok := m["mounts"].([]interface{}); ok {
				for _, mount := range mounts {
					mm, ok := mount.(map[string]interface{})
					if !ok {
						continue
					}
					parsed := Mount{}
					if s := mm["storage"]; s != nil {
						parsed.Storage = fmt.Sprint(s)
					}
					if l := mm["location"]; l != nil {
						parsed.Location = fmt.Sprint(l)
					}
					container.Mounts = append(container.Mounts, parsed)
				}
			}
		}
		result[name] = container
	}
	return result
}

// Schema coercer that expands the interface shorthand notation.
// A consistent format is easier to work with than considering the
// potential difference everywhere.
//
// Supports the following variants:
//
//	provides:
//	  server: riak
//	  admin: http
//	  foobar:
//	    interface: blah
//
//	provides:
//	  server:
//	    interface: mysql
//	    limit:
//	    optional: false
//
// In all input cases, the output is the fully specified interface
// representation.
func ifaceExpander(limit interface{}) schema.Checker {
	return ifaceExpC{limit}
}

type ifaceExpC struct {
	limit interface{}
}

var (
	stringC = schema.String()
	mapC    = schema.StringMap(schema.Any())
)

func (c ifaceExpC) Coerce(v interface{}, path []string) (newv interface{}, err error) {
	s, err := stringC.Coerce(v, path)
	if err == nil {
		newv = map[string]interface{}{
			"interface": s,
			"limit":     c.limit,
			"optional":  false,
			"scope":     string(ScopeGlobal),
		}
		return
	}

	v, err = mapC.Coerce(v, path)
	if err != nil {
		return
	}
	m := v.(map[string]interface{})
	if _, ok := m["limit"]; !ok {
		m["limit"] = c.limit
	}
	return ifaceSchema.Coerce(m, path)
}

var ifaceSchema = schema.FieldMap(
	schema.Fields{
		"interface": schema.String(),
		"limit":     schema.OneOf(schema.Const(nil), schema.Int()),
		"scope":     schema.OneOf(schema.Const(string(ScopeGlobal)), schema.Const(string(ScopeContainer))),
		"optional":  schema.Bool(),
	},
	schema.Defaults{
		"scope":    string(ScopeGlobal),
		"optional": false,
	},
)

var charmSchema = schema.FieldMap(
	schema.Fields{
		"name":           schema.String(),
		"summary":        schema.String(),
		"description":    schema.String(),
		"subordinate":    schema.Bool(),
		"provides":       schema.StringMap(ifaceExpander(nil)),
		"requires":       schema.StringMap(ifaceExpander(int64(1))),
		"peers":          schema.StringMap(ifaceExpander(int64(1))),
		"extra-bindings": schema.StringMap(schema.Any()),
		"storage":        schema.StringMap(schema.Any()),
		"resources":      schema.StringMap(schema.Any()),
		"containers":     schema.StringMap(schema.Any()),
	},
	schema.Defaults{
		"name":           schema.Omit,
		"summary":        "",
		"description":    "",
		"subordinate":    schema.Omit,
		"provides":       schema.Omit,
		"requires":       schema.Omit,
		"peers":          schema.Omit,
		"extra-bindings": schema.Omit,
		"storage":        schema.Omit,
		"resources":      schema.Omit,
		"containers":     schema.Omit,
	},
)
