// Package retry holds the small, pure pieces of the anti-entropy engine
// (spec.md §4.2) that don't need access to node state and are easiest to
// test in isolation: peer selection for random-peer sync rounds.
//
// Grounded on the gossip-round shape of
// other_examples/f4291f51_mcastellin-golang-mastery__gossip-pkg-gossiper.go.go
// ("on every gossip round, the node exchanges its entire internal state
// with randomly selected peers").
package retry

import "math/rand"

// SelectPeers returns up to k distinct peers drawn uniformly at random from
// peers, excluding self. Returns fewer than k (down to zero) if the
// candidate pool is smaller, covering spec.md's boundary behavior for an
// empty or small peer list.
func SelectPeers(peers []string, self string, k int, rng *rand.Rand) []string {
	candidates := make([]string, 0, len(peers))
	for _, p := range peers {
		if p != self {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	if k > len(candidates) {
		k = len(candidates)
	}
	return candidates[:k]
}
