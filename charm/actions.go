// Copyright 2025 Canonical Ltd.
// Licensed under the LGPLv3, see LICENCE file for details.

package charm

import (
	"io"
	"regexp"

	"github.com/juju/errors"
	"github.com/juju/schema"
	"gopkg.in/yaml.v3"
)

var actionNameRule = regexp.MustCompile("^[a-z](?:[a-z-]*[a-z])?$")

// ParamSpec declares one action parameter. The type keyword follows
// the JSON schema vocabulary (string, boolean, integer, number,
// array, object); it is stored as given and validated by the
// consistency checker, so a spec parsed from a broken actions.yaml
// can still be inspected.
type ParamSpec struct {
	Type        string
	Description string
}

// ActionSpec is the definition of one action: its description and
// declared parameters.
type ActionSpec struct {
	Description string
	Params      map[string]ParamSpec
}

// Actions defines the actions available on a charm, as declared in
// its actions.yaml file.
type Actions struct {
	Specs map[string]ActionSpec
}

// NewActions returns a new Actions with no action defined.
func NewActions() *Actions {
	return &Actions{Specs: map[string]ActionSpec{}}
}

// ReadActions reads an actions.yaml file and returns its
// representation.
func ReadActions(r io.Reader) (*Actions, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Trace(err)
	}
	raw := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Trace(err)
	}
	return ParseActions(raw)
}

// ParseActions builds an Actions from the parsed-YAML equivalent of
// an actions.yaml file: a map of action name to spec. A nil or empty
// map yields an empty Actions.
func ParseActions(raw map[string]interface{}) (*Actions, error) {
	actions := NewActions()
	for name, val := range raw {
		if !actionNameRule.MatchString(name) {
			return nil, errors.Errorf("bad action name %s", name)
		}
		spec, err := parseActionSpec(name, val)
		if err != nil {
			return nil, errors.Trace(err)
		}
		actions.Specs[name] = spec
	}
	return actions, nil
}

func parseActionSpec(name string, val interface{}) (ActionSpec, error) {
	if val == nil {
		return ActionSpec{}, nil
	}
	v, err := actionSchema.Coerce(val, []string{name})
	if err != nil {
		return ActionSpec{}, errors.Annotatef(err, "actions")
	}
	m := v.(map[string]interface{})
	spec := ActionSpec{
		Description: m["description"].(string),
	}
	params, ok := m["params"].(map[string]interface{})
	if !ok {
		return spec, nil
	}
	spec.Params = make(map[string]ParamSpec)
	for paramName, paramVal := range params {
		param := ParamSpec{}
		if pm, ok := paramVal.(map[string]interface{}); ok {
			if t := pm["type"]; t != nil {
				if s, ok := t.(string); ok {
					param.Type = s
				}
			}
			if d := pm["description"]; d != nil {
				if s, ok := d.(string); ok {
					param.Description = s
				}
			}
		}
		spec.Params[paramName] = param
	}
	return spec, nil
}

var actionSchema = schema.FieldMap(
	schema.Fields{
		"description": schema.String(),
		"params":      schema.StringMap(schema.Any()),
	},
	schema.Defaults{
		"description": "",
		"params":      schema.Omit,
	},
)
