package engine

import (
	"math/rand/v2"
	"slices"
)

// Draft pool primitives. The pool is a plain slice; every mutation happens
// inside Apply while the room actor serializes transitions, so no locking
// lives here.

func poolContains(pool []string, item string) bool {
	return slices.Contains(pool, item)
}

func poolRemove(pool []string, item string) []string {
	i := slices.Index(pool, item)
	if i < 0 {
		return pool
	}
	return slices.Delete(slices.Clone(pool), i, i+1)
}

// samplePool picks one remaining item uniformly at random. Overridable so
// tests can force a deterministic choice.
var samplePool = func(pool []string) string {
	return pool[rand.IntN(len(pool))]
}

// shuffleOrder is a uniform in-place permutation (Fisher-Yates via
// rand.Shuffle). Overridable for deterministic tests.
var shuffleOrder = func(names []string) {
	rand.Shuffle(len(names), func(i, j int) {
		names[i], names[j] = names[j], names[i]
	})
}

// nextEligible scans the turn order starting just after the current turn,
// wrapping at most once around, and returns the index of the first member
// still below quota. Members at quota are skipped forever; the scan landing
// back on the current index is legal when everyone else is done.
func nextEligible(s Session) (int, bool) {
	n := len(s.TurnOrder)
	for i := 1; i <= n; i++ {
		idx := (s.Turn + i) % n
		mi := s.memberIndex(s.TurnOrder[idx])
		if mi >= 0 && len(s.Members[mi].Claimed) < Quota {
			return idx, true
		}
	}
	return NoTurn, false
}
