package brackets

import (
	"fmt"
	"sort"

	"github.com/Dosada05/swiss-pairings/models"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

const (
	DefaultDamping = 0.85
	// DefaultByeRating is far below any PageRank score so the bye pairs with the weakest competitor.
	DefaultByeRating = -10.0

	rankingScale     = 100.0
	rankingTolerance = 1e-6
	rankingMaxIter   = 100
)

type RankOptions struct {
	Damping float64
	// Bye is left out of the graph.
	Bye models.Competitor
}

// winGraph is a directed graph where opponent -> competitor weighs the games competitor won.
type winGraph struct {
	g     *simple.WeightedDirectedGraph
	nodes []models.Competitor
	ids   map[models.Competitor]int64
}

func newWinGraph() *winGraph {
	return &winGraph{
		g:   simple.NewWeightedDirectedGraph(0, 0),
		ids: make(map[models.Competitor]int64),
	}
}

func (w *winGraph) node(c models.Competitor) graph.Node {
	id, ok := w.ids[c]
	if !ok {
		id = int64(len(w.nodes))
		w.ids[c] = id
		w.nodes = append(w.nodes, c)
		w.g.AddNode(simple.Node(id))
	}
	return simple.Node(id)
}

func (w *winGraph) addWins(from, to models.Competitor, games int) {
	if games <= 0 || from == to {
		return
	}
	u, v := w.node(from), w.node(to)
	weight := float64(games)
	if e := w.g.WeightedEdge(u.ID(), v.ID()); e != nil {
		weight += e.Weight()
	}
	w.g.SetWeightedEdge(w.g.NewWeightedEdge(u, v, weight))
}

// buildWinGraph creates the ranking graph. Only duel participants that are in
// competitors become nodes; an empty competitors list admits everybody but the bye.
func buildWinGraph(duels []models.Duel, competitors []models.Competitor, bye models.Competitor) *winGraph {
	allowed := make(map[models.Competitor]bool, len(competitors))
	for _, c := range competitors {
		allowed[c] = true
	}
	admit := func(c models.Competitor) bool {
		if c == bye {
			return false
		}
		return len(allowed) == 0 || allowed[c]
	}

	w := newWinGraph()
	for _, d := range duels {
		if !admit(d.A) || !admit(d.B) {
			// a bye duel still makes the real competitor known
			if admit(d.A) {
				w.node(d.A)
			}
			if admit(d.B) {
				w.node(d.B)
			}
			continue
		}
		w.node(d.A)
		w.node(d.B)
		w.addWins(d.B, d.A, d.AWins)
		w.addWins(d.A, d.B, d.BWins)
	}
	return w
}

// Rank computes a PageRank strength rating from the duels, scaled by 100.
// Competitors without duels get no entry.
func Rank(duels []models.Duel, competitors []models.Competitor, personalization map[models.Competitor]float64, opts RankOptions) (map[models.Competitor]float64, error) {
	damping := opts.Damping
	if damping <= 0 || damping >= 1 {
		damping = DefaultDamping
	}

	w := buildWinGraph(duels, competitors, opts.Bye)
	n := len(w.nodes)
	ratings := make(map[models.Competitor]float64, n)
	if n == 0 {
		return ratings, nil
	}

	p := teleportVector(w.nodes, personalization)
	outWeight := make([]float64, n)
	for i := range w.nodes {
		to := w.g.From(int64(i))
		for to.Next() {
			outWeight[i] += w.g.WeightedEdge(int64(i), to.Node().ID()).Weight()
		}
	}

	x := make([]float64, n)
	for i := range x {
		x[i] = 1 / float64(n)
	}
	last := make([]float64, n)

	converged := false
	for iter := 0; iter < rankingMaxIter; iter++ {
		copy(last, x)
		for i := range x {
			x[i] = 0
		}

		dangling := 0.0
		for i := range w.nodes {
			if outWeight[i] == 0 {
				dangling += last[i]
				continue
			}
			to := w.g.From(int64(i))
			for to.Next() {
				j := to.Node().ID()
				share := w.g.WeightedEdge(int64(i), j).Weight() / outWeight[i]
				x[j] += damping * last[i] * share
			}
		}
		for i := range x {
			x[i] += damping*dangling*p[i] + (1-damping)*p[i]
		}

		if floats.Distance(x, last, 1) < float64(n)*rankingTolerance {
			converged = true
			break
		}
	}
	if !converged {
		return nil, fmt.Errorf("%w after %d iterations over %d competitors", ErrRankingDidNotConverge, rankingMaxIter, n)
	}

	for i, c := range w.nodes {
		ratings[c] = x[i] * rankingScale
	}
	return ratings, nil
}

// teleportVector normalises the personalization over the graph nodes, uniform when it is empty.
func teleportVector(nodes []models.Competitor, personalization map[models.Competitor]float64) []float64 {
	p := make([]float64, len(nodes))
	for i, c := range nodes {
		if v := personalization[c]; v > 0 {
			p[i] = v
		}
	}
	total := floats.Sum(p)
	if total == 0 {
		for i := range p {
			p[i] = 1
		}
		total = float64(len(p))
	}
	floats.Scale(1/total, p)
	return p
}

// RatingOf returns the rating of c, or def when the ranker produced none.
func RatingOf(ratings map[models.Competitor]float64, c models.Competitor, def float64) float64 {
	if r, ok := ratings[c]; ok {
		return r
	}
	return def
}

// Ranked is a rating with its competitor, used for sorted output.
type Ranked struct {
	Competitor models.Competitor `json:"competitor"`
	Rating     float64           `json:"rating"`
}

// SortedRatings orders ratings best first, by name on ties.
func SortedRatings(ratings map[models.Competitor]float64) []Ranked {
	out := make([]Ranked, 0, len(ratings))
	for c, r := range ratings {
		out = append(out, Ranked{Competitor: c, Rating: r})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].Competitor.Name < out[j].Competitor.Name
	})
	return out
}
