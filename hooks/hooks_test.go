// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package hooks_test

import (
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/canonical/scenario/hooks"
)

type hooksSuite struct{}

var _ = gc.Suite(&hooksSuite{})

var parseTests = []struct {
	path   string
	kind   hooks.Kind
	prefix string
	suffix string
}{{
	path:   "foo_relation_created",
	kind:   hooks.Relation,
	prefix: "foo",
	suffix: "_relation_created",
}, {
	path:   "foo_relation_joined",
	kind:   hooks.Relation,
	prefix: "foo",
	suffix: "_relation_joined",
}, {
	path:   "foo_relation_changed",
	kind:   hooks.Relation,
	prefix: "foo",
	suffix: "_relation_changed",
}, {
	path:   "foo_relation_departed",
	kind:   hooks.Relation,
	prefix: "foo",
	suffix: "_relation_departed",
}, {
	path:   "foo_relation_broken",
	kind:   hooks.Relation,
	prefix: "foo",
	suffix: "_relation_broken",
}, {
	path:   "do_backup_action",
	kind:   hooks.Action,
	prefix: "do_backup",
	suffix: "_action",
}, {
	path:   "secret_changed",
	kind:   hooks.Secret,
	prefix: "",
	suffix: "secret_changed",
}, {
	path:   "secret_remove",
	kind:   hooks.Secret,
	prefix: "",
	suffix: "secret_remove",
}, {
	path:   "secret_rotate",
	kind:   hooks.Secret,
	prefix: "",
	suffix: "secret_rotate",
}, {
	path:   "secret_expired",
	kind:   hooks.Secret,
	prefix: "",
	suffix: "secret_expired",
}, {
	path:   "pre_commit",
	kind:   hooks.Framework,
	prefix: "",
	suffix: "pre_commit",
}, {
	path:   "commit",
	kind:   hooks.Framework,
	prefix: "",
	suffix: "commit",
}, {
	path:   "collect_app_status",
	kind:   hooks.Framework,
	prefix: "",
	suffix: "collect_app_status",
}, {
	path:   "collect_unit_status",
	kind:   hooks.Framework,
	prefix: "",
	suffix: "collect_unit_status",
}, {
	path:   "data_storage_attached",
	kind:   hooks.Storage,
	prefix: "data",
	suffix: "_storage_attached",
}, {
	path:   "data_storage_detaching",
	kind:   hooks.Storage,
	prefix: "data",
	suffix: "_storage_detaching",
}, {
	path:   "workload_pebble_ready",
	kind:   hooks.Workload,
	prefix: "workload",
	suffix: "_pebble_ready",
}, {
	path:   "workload_pebble_custom_notice",
	kind:   hooks.Workload,
	prefix: "workload",
	suffix: "_pebble_custom_notice",
}, {
	path:   "workload_pebble_check_failed",
	kind:   hooks.Workload,
	prefix: "workload",
	suffix: "_pebble_check_failed",
}, {
	path:   "workload_pebble_check_recovered",
	kind:   hooks.Workload,
	prefix: "workload",
	suffix: "_pebble_check_recovered",
}, {
	path:   "install",
	kind:   hooks.Builtin,
	prefix: "install",
	suffix: "",
}, {
	path:   "update_status",
	kind:   hooks.Builtin,
	prefix: "update_status",
	suffix: "",
}, {
	path:   "leader_settings_changed",
	kind:   hooks.Builtin,
	prefix: "leader_settings_changed",
	suffix: "",
}, {
	path:   "collect_metrics",
	kind:   hooks.Builtin,
	prefix: "collect_metrics",
	suffix: "",
}, {
	path:   "frobnicate",
	kind:   hooks.Custom,
	prefix: "frobnicate",
	suffix: "",
}, {
	// Only an exact match counts as a secret event.
	path:   "foo_secret_changed",
	kind:   hooks.Custom,
	prefix: "foo_secret_changed",
	suffix: "",
}, {
	// Relation suffixes take priority over the action suffix.
	path:   "foo_action_relation_changed",
	kind:   hooks.Relation,
	prefix: "foo_action",
	suffix: "_relation_changed",
}}

func (s *hooksSuite) TestParse(c *gc.C) {
	for i, t := range parseTests {
		c.Logf("test %d: %q", i, t.path)
		p := hooks.Parse(t.path)
		c.Check(p.Kind, gc.Equals, t.kind)
		c.Check(p.Prefix, gc.Equals, t.prefix)
		c.Check(p.Suffix, gc.Equals, t.suffix)
		c.Check(p.Name, gc.Equals, t.path)
	}
}

func (s *hooksSuite) TestParseNormalizesDashes(c *gc.C) {
	dashed := hooks.Parse("foo-relation-changed")
	underscored := hooks.Parse("foo_relation_changed")
	c.Assert(dashed, jc.DeepEquals, underscored)
	c.Assert(dashed.Name, gc.Equals, "foo_relation_changed")
}

func (s *hooksSuite) TestParseOwnerPath(c *gc.C) {
	p := hooks.Parse("foo_relation_changed")
	c.Assert(p.OwnerPath, jc.DeepEquals, []string{"on"})

	p = hooks.Parse("charm.lib.on.frobnicate")
	c.Assert(p.OwnerPath, jc.DeepEquals, []string{"charm", "lib", "on"})
	c.Assert(p.Name, gc.Equals, "frobnicate")
	c.Assert(p.Kind, gc.Equals, hooks.Custom)
}

func (s *hooksSuite) TestParseIsTotal(c *gc.C) {
	known := []hooks.Kind{
		hooks.Relation, hooks.Action, hooks.Secret, hooks.Framework,
		hooks.Storage, hooks.Workload, hooks.Builtin, hooks.Custom,
	}
	for _, path := range []string{
		"", " ", "a", "___", "install!", "_action", "1234",
		"start", "weird.path.with.dots", "-", "_relation_changed",
	} {
		p := hooks.Parse(path)
		found := false
		for _, k := range known {
			if p.Kind == k {
				found = true
				break
			}
		}
		c.Check(found, jc.IsTrue, gc.Commentf("path %q classified %q", path, p.Kind))
	}
}

func (s *hooksSuite) TestKindPredicates(c *gc.C) {
	c.Check(hooks.Relation.IsRelation(), jc.IsTrue)
	c.Check(hooks.Action.IsAction(), jc.IsTrue)
	c.Check(hooks.Secret.IsSecret(), jc.IsTrue)
	c.Check(hooks.Storage.IsStorage(), jc.IsTrue)
	c.Check(hooks.Workload.IsWorkload(), jc.IsTrue)
	c.Check(hooks.Builtin.IsRelation(), jc.IsFalse)
}

func (s *hooksSuite) TestNeedsEntity(c *gc.C) {
	for _, k := range []hooks.Kind{
		hooks.Relation, hooks.Secret, hooks.Storage, hooks.Workload, hooks.Action,
	} {
		c.Check(k.NeedsEntity(), jc.IsTrue, gc.Commentf("kind %q", k))
	}
	for _, k := range []hooks.Kind{hooks.Builtin, hooks.Framework, hooks.Custom} {
		c.Check(k.NeedsEntity(), jc.IsFalse, gc.Commentf("kind %q", k))
	}
}

func (s *hooksSuite) TestEventNameSets(c *gc.C) {
	c.Assert(hooks.BuiltinEvents().SortedValues(), jc.DeepEquals, []string{
		"collect_metrics",
		"config_changed",
		"install",
		"leader_elected",
		"leader_settings_changed",
		"post_series_upgrade",
		"pre_series_upgrade",
		"remove",
		"start",
		"stop",
		"update_status",
		"upgrade_charm",
	})
	c.Assert(hooks.SecretEvents().SortedValues(), jc.DeepEquals, []string{
		"secret_changed",
		"secret_expired",
		"secret_remove",
		"secret_rotate",
	})
	c.Assert(hooks.FrameworkEvents().SortedValues(), jc.DeepEquals, []string{
		"collect_app_status",
		"collect_unit_status",
		"commit",
		"pre_commit",
	})
}
