package score

// Weights describe how votes on one kind of content move reputation.
type Weights struct {
	// Upvote and Downvote are credited to the content author.
	Upvote   Points
	Downvote Points
	// PerNetVote is the recalculation weight applied to a net vote count.
	PerNetVote Points
}

var (
	BugWeights = Weights{
		Upvote:     250,
		Downvote:   -150,
		PerNetVote: 250,
	}
	CommentWeights = Weights{
		Upvote:     500,
		Downvote:   -250,
		PerNetVote: 500,
	}
)

// DownvotePenalty is charged to whoever casts a downvote, on any content.
const DownvotePenalty Points = -150

// Effect is a pair of score deltas produced by one ledger change.
type Effect struct {
	Author Points
	Voter  Points
}

func (e Effect) Add(o Effect) Effect {
	return Effect{Author: e.Author + o.Author, Voter: e.Voter + o.Voter}
}

func (e Effect) Neg() Effect {
	return Effect{Author: -e.Author, Voter: -e.Voter}
}

// IsZero reports whether applying e would change nothing.
func (e Effect) IsZero() bool { return e.Author == 0 && e.Voter == 0 }

// NewVote is the effect of a fresh vote.
func NewVote(w Weights, isUpvote bool) Effect {
	if isUpvote {
		return Effect{Author: w.Upvote}
	}
	return Effect{Author: w.Downvote, Voter: DownvotePenalty}
}

// Reversal exactly undoes NewVote(w, isUpvote).
func Reversal(w Weights, isUpvote bool) Effect {
	return NewVote(w, isUpvote).Neg()
}

// Toggle is the effect of flipping a vote from previous to next. Flipping to
// the same value is a no-op.
func Toggle(w Weights, previous, next bool) Effect {
	if previous == next {
		return Effect{}
	}
	return Reversal(w, previous).Add(NewVote(w, next))
}

// VoteCountDelta is how a content vote count moves on a new vote (±1), a
// toggle (±2) or a removal (∓1).
func VoteCountDelta(previous *bool, next *bool) int {
	v := func(b *bool) int {
		switch {
		case b == nil:
			return 0
		case *b:
			return 1
		default:
			return -1
		}
	}
	return v(next) - v(previous)
}

// Recalculated is the reconciliation score of a user from net vote counts
// on their bugs and comments and the number of downvotes they hold in the
// ledger. It deliberately differs from the incrementally maintained score:
// net counts weight every downvote received like an upvote, and the
// per-kind downvote weights are not used.
func Recalculated(bugVoteCounts, commentVoteCounts []int64, downvotesCast int64) Points {
	var total Points
	for _, n := range bugVoteCounts {
		total += BugWeights.PerNetVote.Mul(n)
	}
	for _, n := range commentVoteCounts {
		total += CommentWeights.PerNetVote.Mul(n)
	}
	return total + DownvotePenalty.Mul(downvotesCast)
}
