// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package status_test

import (
	"github.com/juju/errors"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/canonical/scenario/core/status"
)

type statusSuite struct{}

var _ = gc.Suite(&statusSuite{})

func (s *statusSuite) TestKnownStatus(c *gc.C) {
	for _, v := range []status.Status{
		status.Unknown,
		status.Error,
		status.Active,
		status.Blocked,
		status.Maintenance,
		status.Waiting,
	} {
		c.Check(v.KnownStatus(), jc.IsTrue, gc.Commentf("status %q", v))
	}
	c.Check(status.Status("started").KnownStatus(), jc.IsFalse)
	c.Check(status.Status("").KnownStatus(), jc.IsFalse)
}

func (s *statusSuite) TestValidWorkloadStatus(c *gc.C) {
	for _, v := range []status.Status{
		status.Active,
		status.Blocked,
		status.Maintenance,
		status.Waiting,
	} {
		c.Check(status.ValidWorkloadStatus(v), jc.IsTrue, gc.Commentf("status %q", v))
	}
	// Juju reserves these; a charm cannot set them.
	c.Check(status.ValidWorkloadStatus(status.Error), jc.IsFalse)
	c.Check(status.ValidWorkloadStatus(status.Unknown), jc.IsFalse)
}

func (s *statusSuite) TestValidate(c *gc.C) {
	err := status.ActiveStatus("all good").Validate()
	c.Assert(err, jc.ErrorIsNil)

	err = status.StatusInfo{Status: "bogus"}.Validate()
	c.Assert(err, gc.ErrorMatches, `status "bogus" not valid`)
	c.Assert(err, jc.ErrorIs, errors.NotValid)
}

func (s *statusSuite) TestEqualityIsNameAndMessage(c *gc.C) {
	c.Check(status.ActiveStatus("foo"), gc.Equals, status.ActiveStatus("foo"))
	c.Check(status.ActiveStatus("foo"), gc.Not(gc.Equals), status.ActiveStatus("bar"))
	c.Check(status.ActiveStatus(""), gc.Not(gc.Equals), status.BlockedStatus(""))
}

func (s *statusSuite) TestConstructors(c *gc.C) {
	c.Check(status.UnknownStatus(), gc.Equals, status.StatusInfo{Status: status.Unknown})
	c.Check(status.ActiveStatus("m"), gc.Equals, status.StatusInfo{Status: status.Active, Message: "m"})
	c.Check(status.BlockedStatus("m"), gc.Equals, status.StatusInfo{Status: status.Blocked, Message: "m"})
	c.Check(status.MaintenanceStatus("m"), gc.Equals, status.StatusInfo{Status: status.Maintenance, Message: "m"})
	c.Check(status.WaitingStatus("m"), gc.Equals, status.StatusInfo{Status: status.Waiting, Message: "m"})
	c.Check(status.ErrorStatus("m"), gc.Equals, status.StatusInfo{Status: status.Error, Message: "m"})
}
