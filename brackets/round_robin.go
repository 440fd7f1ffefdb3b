package brackets

import "github.com/Dosada05/swiss-pairings/models"

// PairSet is a set of unordered competitor pairs.
type PairSet map[models.PairKey]struct{}

func (s PairSet) Add(a, b models.Competitor) {
	s[models.NewPairKey(a, b)] = struct{}{}
}

func (s PairSet) Has(a, b models.Competitor) bool {
	_, ok := s[models.NewPairKey(a, b)]
	return ok
}

// PlayedPairs collects every pair that already met in duels, bye pairs included.
func PlayedPairs(duels []models.Duel) PairSet {
	played := make(PairSet, len(duels))
	for _, d := range duels {
		played.Add(d.A, d.B)
	}
	return played
}

// AllPairs lists each unordered pair of competitors once, in the order of the input:
// (0,1), (0,2), ..., (1,2), ... like a single round-robin.
func AllPairs(competitors []models.Competitor) [][2]models.Competitor {
	pairs := make([][2]models.Competitor, 0, len(competitors)*(len(competitors)-1)/2)
	for i := 0; i < len(competitors); i++ {
		for j := i + 1; j < len(competitors); j++ {
			pairs = append(pairs, [2]models.Competitor{competitors[i], competitors[j]})
		}
	}
	return pairs
}

// RemainingPairs returns the pairs of the pool that have not met yet.
func RemainingPairs(pool []models.Competitor, played PairSet) [][2]models.Competitor {
	var remaining [][2]models.Competitor
	for _, pair := range AllPairs(pool) {
		if !played.Has(pair[0], pair[1]) {
			remaining = append(remaining, pair)
		}
	}
	return remaining
}

// Exhausted is a cheap check for the full round-robin case: some competitor of the
// pool has already met everybody else.
func Exhausted(pool []models.Competitor, played PairSet) bool {
	open := make(map[models.Competitor]int, len(pool))
	for _, pair := range RemainingPairs(pool, played) {
		open[pair[0]]++
		open[pair[1]]++
	}
	for _, c := range pool {
		if open[c] == 0 {
			return true
		}
	}
	return false
}
