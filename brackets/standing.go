package brackets

import (
	"sort"

	"github.com/Dosada05/swiss-pairings/models"
)

// Standing folds duels into one Performance per competitor, best first.
// Equal performances keep the order of competitors.
func Standing(duels []models.Duel, competitors []models.Competitor, winsNeeded int) []models.Performance {
	index := make(map[models.Competitor]int, len(competitors))
	perfs := make([]models.Performance, len(competitors))
	for i, c := range competitors {
		index[c] = i
		perfs[i] = models.ZeroPerformance(c)
	}

	for _, d := range duels {
		winner, decided := d.Winner(winsNeeded)
		for _, side := range [2]models.Competitor{d.A, d.B} {
			i, ok := index[side]
			if !ok {
				continue
			}
			perfs[i].Wins += d.WinsOf(side)
			perfs[i].Losses += d.LossesOf(side)
			if !decided {
				continue
			}
			if winner == side {
				perfs[i].MatchWins++
			} else {
				perfs[i].MatchLosses++
			}
		}
	}

	sort.SliceStable(perfs, func(i, j int) bool {
		return perfs[i].Better(perfs[j])
	})
	return perfs
}

// StandingPersonalization biases PageRank toward the current standing: 1 + match wins.
func StandingPersonalization(perfs []models.Performance) map[models.Competitor]float64 {
	personalization := make(map[models.Competitor]float64, len(perfs))
	for _, p := range perfs {
		personalization[p.Competitor] = float64(1 + p.MatchWins)
	}
	return personalization
}

// AllTimeStanding sums per-tournament standings into one record per competitor.
func AllTimeStanding(perTournament [][]models.Performance) ([]models.Performance, error) {
	var order []models.Competitor
	totals := make(map[models.Competitor]models.Performance)
	for _, standing := range perTournament {
		for _, p := range standing {
			total, ok := totals[p.Competitor]
			if !ok {
				order = append(order, p.Competitor)
				total = models.ZeroPerformance(p.Competitor)
			}
			combined, err := models.Combine(total, p)
			if err != nil {
				return nil, err
			}
			totals[p.Competitor] = combined
		}
	}

	result := make([]models.Performance, len(order))
	for i, c := range order {
		result[i] = totals[c]
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Better(result[j])
	})
	return result, nil
}
