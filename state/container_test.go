// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package state_test

import (
	"time"

	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/canonical/scenario/core/sequencer"
	"github.com/canonical/scenario/hooks"
	"github.com/canonical/scenario/state"
)

type containerSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&containerSuite{})

func (s *containerSuite) SetUpTest(c *gc.C) {
	s.IsolationSuite.SetUpTest(c)
	sequencer.Reset()
}

func (s *containerSuite) TestNewContainerDefaults(c *gc.C) {
	container := state.NewContainer(state.ContainerArgs{Name: "workload"})

	c.Check(container.Name, gc.Equals, "workload")
	c.Check(container.CanConnect, jc.IsFalse)
	c.Check(container.Layers, gc.HasLen, 0)
	c.Check(container.RenderedPlan().Services, gc.HasLen, 0)
}

func (s *containerSuite) TestRenderedPlanMergesLayersInLabelOrder(c *gc.C) {
	container := state.NewContainer(state.ContainerArgs{
		Name: "workload",
		Layers: map[string]state.Layer{
			"b": {Services: map[string]state.Service{
				"srv": {Command: "from-b"},
			}},
			"a": {Services: map[string]state.Service{
				"srv":   {Command: "from-a"},
				"other": {Command: "other"},
			}},
		},
	})

	plan := container.RenderedPlan()
	c.Assert(plan.Services, gc.HasLen, 2)
	// Label "b" sorts after "a", so its service definition wins.
	c.Check(plan.Services["srv"].Command, gc.Equals, "from-b")
	c.Check(plan.Services["other"].Command, gc.Equals, "other")
}

func (s *containerSuite) TestRenderedPlanKeepsBasePlan(c *gc.C) {
	container := state.NewContainer(state.ContainerArgs{
		Name: "workload",
		BasePlan: state.Plan{Services: map[string]state.Service{
			"base": {Command: "base-cmd"},
		}},
		Layers: map[string]state.Layer{
			"charm": {Services: map[string]state.Service{
				"base": {Command: "layered-cmd"},
			}},
		},
	})

	plan := container.RenderedPlan()
	c.Check(plan.Services["base"].Command, gc.Equals, "layered-cmd")
}

func (s *containerSuite) TestPlanYAML(c *gc.C) {
	plan := state.Plan{Services: map[string]state.Service{
		"srv": {Override: "replace", Command: "run"},
	}}
	out, err := plan.YAML()
	c.Assert(err, jc.ErrorIsNil)
	c.Check(out, gc.Equals, "services:\n    srv:\n        override: replace\n        command: run\n")
}

func (s *containerSuite) TestServiceInfos(c *gc.C) {
	container := state.NewContainer(state.ContainerArgs{
		Name: "workload",
		Layers: map[string]state.Layer{
			"charm": {Services: map[string]state.Service{
				"b-started": {Command: "b", Startup: "enabled"},
				"a-stopped": {Command: "a"},
			}},
		},
		ServiceStatuses: map[string]state.ServiceStatus{
			"b-started": state.ServiceActive,
		},
	})

	c.Assert(container.ServiceInfos(), jc.DeepEquals, []state.ServiceInfo{{
		Name:    "a-stopped",
		Startup: state.StartupDisabled,
		Current: state.ServiceInactive,
	}, {
		Name:    "b-started",
		Startup: state.StartupEnabled,
		Current: state.ServiceActive,
	}})
}

func (s *containerSuite) TestNewNoticeDefaults(c *gc.C) {
	notice := state.NewNotice(state.NoticeArgs{Key: "example.com/charm/retrain"})

	c.Check(notice.ID, gc.Equals, "1")
	c.Check(notice.Type, gc.Equals, state.NoticeCustom)
	c.Check(notice.Occurrences, gc.Equals, 1)
	c.Check(notice.FirstOccurred.IsZero(), jc.IsFalse)
	c.Check(notice.LastOccurred.IsZero(), jc.IsFalse)
	c.Check(notice.LastRepeated.IsZero(), jc.IsFalse)

	second := state.NewNotice(state.NoticeArgs{Key: "example.com/charm/other"})
	c.Check(second.ID, gc.Equals, "2")
}

func (s *containerSuite) TestNewNoticeExplicitTimes(c *gc.C) {
	when := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	notice := state.NewNotice(state.NoticeArgs{
		Key:           "example.com/charm/retrain",
		FirstOccurred: when,
		LastOccurred:  when,
		LastRepeated:  when,
	})
	c.Check(notice.FirstOccurred, gc.Equals, when)
	c.Check(notice.LastRepeated, gc.Equals, when)
}

func (s *containerSuite) TestNoticeLookup(c *gc.C) {
	notice := state.NewNotice(state.NoticeArgs{Key: "example.com/charm/retrain"})
	container := state.NewContainer(state.ContainerArgs{
		Name:    "workload",
		Notices: []*state.Notice{notice},
	})

	found, err := container.Notice("example.com/charm/retrain", state.NoticeCustom)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(found, gc.Equals, notice)

	_, err = container.Notice("example.com/charm/missing", state.NoticeCustom)
	c.Assert(err, jc.ErrorIs, errors.NotFound)
}

func (s *containerSuite) TestCheckLookup(c *gc.C) {
	check := state.NewCheckInfo(state.CheckInfoArgs{Name: "http-ok"})
	container := state.NewContainer(state.ContainerArgs{
		Name:   "workload",
		Checks: []*state.CheckInfo{check},
	})

	found, err := container.Check("http-ok")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(found, gc.Equals, check)
	c.Check(found.Status, gc.Equals, state.CheckUp)
	c.Check(found.Threshold, gc.Equals, 3)

	_, err = container.Check("nope")
	c.Assert(err, jc.ErrorIs, errors.NotFound)
}

func (s *containerSuite) TestNewExecOutputAssignsChangeIDs(c *gc.C) {
	first := state.NewExecOutput(state.ExecOutputArgs{Stdout: "ubuntu"})
	second := state.NewExecOutput(state.ExecOutputArgs{ReturnCode: 1})

	c.Check(first.ChangeID, gc.Equals, 1)
	c.Check(second.ChangeID, gc.Equals, 2)
}

func (s *containerSuite) TestEventSugar(c *gc.C) {
	notice := state.NewNotice(state.NoticeArgs{Key: "example.com/charm/retrain"})
	check := state.NewCheckInfo(state.CheckInfoArgs{Name: "http-ok"})
	container := state.NewContainer(state.ContainerArgs{
		Name:    "some-workload",
		Notices: []*state.Notice{notice},
		Checks:  []*state.CheckInfo{check},
	})

	ready := container.PebbleReadyEvent()
	c.Check(ready.Name(), gc.Equals, "some_workload_pebble_ready")
	c.Check(ready.Kind(), gc.Equals, hooks.Workload)
	c.Check(ready.Container(), gc.Equals, container)

	noticeEvent := container.CustomNoticeEvent(notice)
	c.Check(noticeEvent.Name(), gc.Equals, "some_workload_pebble_custom_notice")
	c.Check(noticeEvent.Notice(), gc.Equals, notice)

	failed := container.CheckFailedEvent(check)
	c.Check(failed.Name(), gc.Equals, "some_workload_pebble_check_failed")
	c.Check(failed.Check(), gc.Equals, check)

	recovered := container.CheckRecoveredEvent(check)
	c.Check(recovered.Name(), gc.Equals, "some_workload_pebble_check_recovered")
	c.Check(recovered.Check(), gc.Equals, check)
}
