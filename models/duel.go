package models

import "time"

// DefaultWinsNeeded - сколько побед в играх нужно, чтобы выиграть дуэль.
const DefaultWinsNeeded = 2

// Duel is one match between two competitors inside a round.
type Duel struct {
	ID          int        `json:"id" db:"id"`
	RoundID     int        `json:"round_id,omitempty" db:"round_id"`
	RoundNumber int        `json:"round_number" db:"-"`
	A           Competitor `json:"a" db:"competitor_a"`
	B           Competitor `json:"b" db:"competitor_b"`
	AWins       int        `json:"a_wins" db:"a_wins"`
	BWins       int        `json:"b_wins" db:"b_wins"`
	CreatedAt   time.Time  `json:"created_at,omitempty" db:"created_at"`
}

// PairKey is an unordered pair of competitor names.
type PairKey struct {
	Low  string
	High string
}

func NewPairKey(a, b Competitor) PairKey {
	if a.Name <= b.Name {
		return PairKey{Low: a.Name, High: b.Name}
	}
	return PairKey{Low: b.Name, High: a.Name}
}

func (d Duel) Pair() PairKey {
	return NewPairKey(d.A, d.B)
}

func (d Duel) Involves(c Competitor) bool {
	return d.A == c || d.B == c
}

// Opponent returns the other side of the duel. ok is false when c does not play in it.
func (d Duel) Opponent(c Competitor) (opponent Competitor, ok bool) {
	switch c {
	case d.A:
		return d.B, true
	case d.B:
		return d.A, true
	}
	return Competitor{}, false
}

func (d Duel) WinsOf(c Competitor) int {
	switch c {
	case d.A:
		return d.AWins
	case d.B:
		return d.BWins
	}
	return 0
}

func (d Duel) LossesOf(c Competitor) int {
	switch c {
	case d.A:
		return d.BWins
	case d.B:
		return d.AWins
	}
	return 0
}

// Winner returns the competitor who reached winsNeeded with more wins than the opponent.
func (d Duel) Winner(winsNeeded int) (Competitor, bool) {
	switch {
	case d.AWins >= winsNeeded && d.AWins > d.BWins:
		return d.A, true
	case d.BWins >= winsNeeded && d.BWins > d.AWins:
		return d.B, true
	}
	return Competitor{}, false
}

func (d Duel) Decided(winsNeeded int) bool {
	_, ok := d.Winner(winsNeeded)
	return ok
}

func (d Duel) IsBye(bye Competitor) bool {
	return d.Involves(bye)
}
