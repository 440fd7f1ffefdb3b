package brackets

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Dosada05/swiss-pairings/models"
	"gonum.org/v1/gonum/graph/simple"
)

// weightScale turns float penalties into int64 matching weights so that the
// dual updates of the matching stay exact.
const weightScale = 1e6

// Penalty is the matching weight of a pair: 0 for equal ratings and increasingly
// negative as the ratings drift apart. Ratings are squared with their sign kept,
// so a negative bye rating stays below every real rating.
func Penalty(a, b float64) float64 {
	d := a*math.Abs(a) - b*math.Abs(b)
	return -(d * d)
}

// SwissPairer builds one round as a maximum-cardinality, maximum-weight matching
// over the pairs that have not met yet.
type SwissPairer struct {
	WinsNeeded int
	Damping    float64
	Bye        models.Competitor
	ByeRating  float64
}

func NewSwissPairer(cfg EngineConfig) *SwissPairer {
	cfg = cfg.withDefaults()
	return &SwissPairer{
		WinsNeeded: cfg.WinsNeeded,
		Damping:    cfg.Damping,
		Bye:        cfg.Bye,
		ByeRating:  cfg.ByeRating,
	}
}

// PairFirstRound pairs a fresh tournament. Competitors are rated by their
// lifetime history outside the tournament, so without history every rating is
// equal and any perfect pairing is as good as another.
func (p *SwissPairer) PairFirstRound(competitors []models.Competitor, historical []models.Duel) ([]models.Duel, error) {
	ratings, err := Rank(historical, competitors, nil, RankOptions{Damping: p.Damping, Bye: p.Bye})
	if err != nil {
		return nil, fmt.Errorf("rating competitors from history: %w", err)
	}
	return p.pair(competitors, nil, ratings, 1)
}

// PairNextRound pairs the round after previous. Pairs that already met in
// previous, bye pairs included, are never repeated.
func (p *SwissPairer) PairNextRound(competitors []models.Competitor, previous []models.Duel, ratings map[models.Competitor]float64) ([]models.Duel, error) {
	number := 1
	for _, d := range previous {
		number = max(number, d.RoundNumber+1)
	}
	return p.pair(competitors, previous, ratings, number)
}

func (p *SwissPairer) pool(competitors []models.Competitor) []models.Competitor {
	pool := make([]models.Competitor, len(competitors), len(competitors)+1)
	copy(pool, competitors)
	if len(pool)%2 == 1 {
		pool = append(pool, p.Bye)
	}
	return pool
}

func (p *SwissPairer) rating(ratings map[models.Competitor]float64, c models.Competitor) float64 {
	if c == p.Bye {
		return p.ByeRating
	}
	return RatingOf(ratings, c, 0)
}

func (p *SwissPairer) pair(competitors []models.Competitor, previous []models.Duel, ratings map[models.Competitor]float64, roundNumber int) ([]models.Duel, error) {
	pool := p.pool(competitors)
	played := PlayedPairs(previous)
	if Exhausted(pool, played) {
		return nil, fmt.Errorf("%w: a competitor has met every other competitor", ErrPairingExhausted)
	}

	g := simple.NewWeightedUndirectedGraph(0, 0)
	for i := range pool {
		g.AddNode(simple.Node(int64(i)))
	}
	for i := 0; i < len(pool); i++ {
		for j := i + 1; j < len(pool); j++ {
			if played.Has(pool[i], pool[j]) {
				continue
			}
			w := Penalty(p.rating(ratings, pool[i]), p.rating(ratings, pool[j]))
			g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(int64(i)), simple.Node(int64(j)), w))
		}
	}

	mate := MaxWeightMatching(candidateEdges(g), true)

	var unmatched []string
	for i, c := range pool {
		if i >= len(mate) || mate[i] == -1 {
			unmatched = append(unmatched, c.Name)
		}
	}
	if len(unmatched) > 0 {
		return nil, fmt.Errorf("%w: unmatched %s", ErrPairingExhausted, strings.Join(unmatched, ", "))
	}

	duels := make([]models.Duel, 0, len(pool)/2)
	for i := range pool {
		j := mate[i]
		if mate[j] != i {
			return nil, fmt.Errorf("%w: %s and %s are not mutual mates", ErrInvariantViolation, pool[i].Name, pool[j].Name)
		}
		if j < i {
			continue
		}
		if played.Has(pool[i], pool[j]) {
			return nil, fmt.Errorf("%w: %s and %s already met", ErrInvariantViolation, pool[i].Name, pool[j].Name)
		}
		duels = append(duels, p.newDuel(pool[i], pool[j], roundNumber))
	}
	return duels, nil
}

func (p *SwissPairer) newDuel(a, b models.Competitor, roundNumber int) models.Duel {
	if a == p.Bye {
		a, b = b, a
	}
	d := models.Duel{RoundNumber: roundNumber, A: a, B: b}
	if b == p.Bye {
		d.AWins = p.WinsNeeded
	}
	return d
}

// candidateEdges converts the candidate graph into matching edges in a stable order.
func candidateEdges(g *simple.WeightedUndirectedGraph) []MatchEdge {
	var edges []MatchEdge
	seen := make(map[[2]int]bool)
	it := g.WeightedEdges()
	for it.Next() {
		e := it.WeightedEdge()
		u, v := int(e.From().ID()), int(e.To().ID())
		if u > v {
			u, v = v, u
		}
		if seen[[2]int{u, v}] {
			continue
		}
		seen[[2]int{u, v}] = true
		edges = append(edges, MatchEdge{U: u, V: v, Weight: int64(math.Round(e.Weight() * weightScale))})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].U != edges[j].U {
			return edges[i].U < edges[j].U
		}
		return edges[i].V < edges[j].V
	})
	return edges
}
