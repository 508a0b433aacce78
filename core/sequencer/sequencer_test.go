// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package sequencer_test

import (
	"sync"

	"github.com/juju/collections/set"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/canonical/scenario/core/sequencer"
)

type sequencerSuite struct{}

var _ = gc.Suite(&sequencerSuite{})

func (s *sequencerSuite) TestRelationIDsStartAtOne(c *gc.C) {
	seq := sequencer.New()
	c.Assert(seq.NextRelationID(), gc.Equals, 1)
	c.Assert(seq.NextRelationID(), gc.Equals, 2)
	c.Assert(seq.NextRelationID(), gc.Equals, 3)
}

func (s *sequencerSuite) TestStorageIndicesStartAtZero(c *gc.C) {
	seq := sequencer.New()
	c.Assert(seq.NextStorageIndex(), gc.Equals, 0)
	c.Assert(seq.NextStorageIndex(), gc.Equals, 1)
}

func (s *sequencerSuite) TestActionAndNoticeIDsAreStrings(c *gc.C) {
	seq := sequencer.New()
	c.Assert(seq.NextActionID(), gc.Equals, "1")
	c.Assert(seq.NextActionID(), gc.Equals, "2")
	c.Assert(seq.NextNoticeID(), gc.Equals, "1")
	c.Assert(seq.NextNoticeID(), gc.Equals, "2")
}

func (s *sequencerSuite) TestChangeIDsStartAtOne(c *gc.C) {
	seq := sequencer.New()
	c.Assert(seq.NextChangeID(), gc.Equals, 1)
	c.Assert(seq.NextChangeID(), gc.Equals, 2)
}

func (s *sequencerSuite) TestCountersAreIndependent(c *gc.C) {
	seq := sequencer.New()
	c.Assert(seq.NextRelationID(), gc.Equals, 1)
	c.Assert(seq.NextStorageIndex(), gc.Equals, 0)
	c.Assert(seq.NextRelationID(), gc.Equals, 2)
	c.Assert(seq.NextStorageIndex(), gc.Equals, 1)
	c.Assert(seq.NextActionID(), gc.Equals, "1")
}

func (s *sequencerSuite) TestReset(c *gc.C) {
	seq := sequencer.New()
	seq.NextRelationID()
	seq.NextStorageIndex()
	seq.NextActionID()
	seq.NextNoticeID()
	seq.NextChangeID()

	seq.Reset()

	c.Assert(seq.NextRelationID(), gc.Equals, 1)
	c.Assert(seq.NextStorageIndex(), gc.Equals, 0)
	c.Assert(seq.NextActionID(), gc.Equals, "1")
	c.Assert(seq.NextNoticeID(), gc.Equals, "1")
	c.Assert(seq.NextChangeID(), gc.Equals, 1)
}

func (s *sequencerSuite) TestConcurrentIDsAreUnique(c *gc.C) {
	seq := sequencer.New()

	const n = 100
	ids := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = seq.NextRelationID()
		}(i)
	}
	wg.Wait()

	seen := set.NewInts(ids...)
	c.Assert(seen.Size(), gc.Equals, n)
}

func (s *sequencerSuite) TestDefaultSequencerIsShared(c *gc.C) {
	sequencer.Reset()
	defer sequencer.Reset()

	c.Assert(sequencer.NextRelationID(), gc.Equals, 1)
	c.Assert(sequencer.Default().NextRelationID(), gc.Equals, 2)
	c.Assert(sequencer.NextStorageIndex(), gc.Equals, 0)
	c.Assert(sequencer.NextActionID(), gc.Equals, "1")
	c.Assert(sequencer.NextNoticeID(), gc.Equals, "1")
	c.Assert(sequencer.NextChangeID(), gc.Equals, 1)
	c.Assert(sequencer.NextRelationID(), jc.GreaterThan, 2)
}
