package game

import (
	"sort"

	"github.com/google/uuid"
)

// VoteResult is the outcome of counting one voting round.
type VoteResult struct {
	Counts     map[uuid.UUID]int
	MaxVotes   int
	Eliminated uuid.UUID   // uuid.Nil unless exactly one target has MaxVotes
	Tied       []uuid.UUID // targets sharing MaxVotes when there is a tie
}

// Decided reports whether exactly one player was voted out.
func (r VoteResult) Decided() bool {
	return r.Eliminated != uuid.Nil
}

// TallyVotes counts the vote targets of the given voters. Only the strictly
// highest count eliminates; a shared maximum leaves Eliminated unset and lists
// the tied targets. Votes for players outside valid are ignored.
func TallyVotes(voters []*Player, valid map[uuid.UUID]bool) VoteResult {
	res := VoteResult{Counts: make(map[uuid.UUID]int)}
	for _, v := range voters {
		if v.VoteTarget == nil || !valid[*v.VoteTarget] {
			continue
		}
		res.Counts[*v.VoteTarget]++
	}

	var leaders []uuid.UUID
	for target, n := range res.Counts {
		switch {
		case n > res.MaxVotes:
			res.MaxVotes = n
			leaders = []uuid.UUID{target}
		case n == res.MaxVotes:
			leaders = append(leaders, target)
		}
	}

	switch len(leaders) {
	case 0:
	case 1:
		res.Eliminated = leaders[0]
	default:
		sort.Slice(leaders, func(i, j int) bool { return leaders[i].String() < leaders[j].String() })
		res.Tied = leaders
	}
	return res
}
