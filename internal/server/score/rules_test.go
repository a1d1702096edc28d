package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewVote(t *testing.T) {
	assert.Equal(t, Effect{Author: 250}, NewVote(BugWeights, true))
	assert.Equal(t, Effect{Author: -150, Voter: -150}, NewVote(BugWeights, false))
	assert.Equal(t, Effect{Author: 500}, NewVote(CommentWeights, true))
	assert.Equal(t, Effect{Author: -250, Voter: -150}, NewVote(CommentWeights, false))
}

func TestReversal_UndoesNewVote(t *testing.T) {
	for _, w := range []Weights{BugWeights, CommentWeights} {
		for _, up := range []bool{true, false} {
			assert.True(t, NewVote(w, up).Add(Reversal(w, up)).IsZero())
		}
	}
}

func TestToggle(t *testing.T) {
	// down -> up on a bug: author +4.0, voter +1.5
	assert.Equal(t, Effect{Author: 400, Voter: 150}, Toggle(BugWeights, false, true))
	// up -> down on a bug: author -4.0, voter -1.5
	assert.Equal(t, Effect{Author: -400, Voter: -150}, Toggle(BugWeights, true, false))
	// up -> down on a comment: author -7.5, voter -1.5
	assert.Equal(t, Effect{Author: -750, Voter: -150}, Toggle(CommentWeights, true, false))
	assert.True(t, Toggle(CommentWeights, true, true).IsZero())
}

func TestToggle_ManyTimesReturnsToStart(t *testing.T) {
	var total Effect
	cur := true
	total = total.Add(NewVote(BugWeights, cur))
	for i := 0; i < 101; i++ {
		total = total.Add(Toggle(BugWeights, cur, !cur))
		cur = !cur
	}
	// 101 flips from up leaves a downvote in force.
	assert.False(t, cur)
	assert.Equal(t, NewVote(BugWeights, false), total)
}

func TestVoteCountDelta(t *testing.T) {
	up, down := true, false
	assert.Equal(t, 1, VoteCountDelta(nil, &up))
	assert.Equal(t, -1, VoteCountDelta(nil, &down))
	assert.Equal(t, 2, VoteCountDelta(&down, &up))
	assert.Equal(t, -2, VoteCountDelta(&up, &down))
	assert.Equal(t, 0, VoteCountDelta(&up, &up))
	assert.Equal(t, -1, VoteCountDelta(&up, nil))
	assert.Equal(t, 1, VoteCountDelta(&down, nil))
}

func TestRecalculated(t *testing.T) {
	// two bugs at +3 and -1, one comment at +2, one downvote cast
	got := Recalculated([]int64{3, -1}, []int64{2}, 1)
	assert.Equal(t, Points(3*250-250+2*500-150), got)
	assert.Equal(t, Points(0), Recalculated(nil, nil, 0))
}

func TestRecalculated_DivergesFromIncremental(t *testing.T) {
	// One downvote received on a bug: incremental -1.5, recalculated -2.5.
	incremental := NewVote(BugWeights, false).Author
	recalculated := Recalculated([]int64{-1}, nil, 0)
	assert.Equal(t, Points(-150), incremental)
	assert.Equal(t, Points(-250), recalculated)
	assert.NotEqual(t, incremental, recalculated)
}
