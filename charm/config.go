// Copyright 2025 Canonical Ltd.
// Licensed under the LGPLv3, see LICENCE file for details.

package charm

import (
	"io"

	"github.com/juju/errors"
	"github.com/juju/schema"
	"gopkg.in/yaml.v3"
)

// Option represents a single configurable option declared in a
// charm's config.yaml file.
type Option struct {
	Type        string
	Description string
	Default     interface{}
}

// Config represents the supported configuration options for a charm,
// as declared in its config.yaml file.
type Config struct {
	Options map[string]Option
}

// NewConfig returns a new Config without any options.
func NewConfig() *Config {
	return &Config{Options: map[string]Option{}}
}

// optionTypeCheckers validate option defaults against the declared
// option type. Secret-typed options hold secret URI strings; whether
// the simulated juju version accepts them at all is the consistency
// checker's concern, not the parser's.
var optionTypeCheckers = map[string]schema.Checker{
	"string":  schema.String(),
	"int":     schema.Int(),
	"float":   schema.Float(),
	"boolean": schema.Bool(),
	"secret":  schema.String(),
}

// ReadConfig reads a config.yaml file and returns its representation.
func ReadConfig(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Trace(err)
	}
	raw := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Trace(err)
	}
	if len(raw) == 0 {
		return nil, errors.Errorf("invalid config: empty configuration")
	}
	return ParseConfig(raw)
}

// ParseConfig builds a Config from the parsed-YAML equivalent of a
// config.yaml file. A nil or empty map yields an empty Config.
func ParseConfig(raw map[string]interface{}) (*Config, error) {
	config := NewConfig()
	if len(raw) == 0 {
		return config, nil
	}
	v, err := configSchema.Coerce(raw, nil)
	if err != nil {
		return nil, errors.Annotatef(err, "config")
	}
	m := v.(map[string]interface{})
	options, ok := m["options"].(map[string]interface{})
	if !ok {
		return config, nil
	}
	for name, val := range options {
		opt, err := parseOption(name, val)
		if err != nil {
			return nil, errors.Trace(err)
		}
		config.Options[name] = opt
	}
	return config, nil
}

func parseOption(name string, val interface{}) (Option, error) {
	m := val.(map[string]interface{})
	opt := Option{
		Type:        m["type"].(string),
		Description: m["description"].(string),
	}
	checker, ok := optionTypeCheckers[opt.Type]
	if !ok {
		return Option{}, errors.Errorf("invalid config: option %q has unknown type %q", name, opt.Type)
	}
	if def, ok := m["default"]; ok && def != nil {
		coerced, err := checker.Coerce(def, nil)
		if err != nil {
			return Option{}, errors.Errorf("invalid config default: option %q expected %s, got %#v", name, opt.Type, def)
		}
		opt.Default = coerced
	}
	return opt, nil
}

var optionSchema = schema.FieldMap(
	schema.Fields{
		"type":        schema.String(),
		"description": schema.String(),
		"default":     schema.Any(),
	},
	schema.Defaults{
		// Missing type means string, as the charm tools accept.
		"type":        "string",
		"description": "",
		"default":     schema.Omit,
	},
)

var configSchema = schema.FieldMap(
	schema.Fields{
		"options": schema.StringMap(optionSchema),
	},
	schema.Defaults{
		"options": schema.Omit,
	},
)
