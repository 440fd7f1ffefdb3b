package models

import "time"

// TournamentStatus is derived from the rounds and the finished flag; it is not stored.
type TournamentStatus string

const (
	StatusNotStarted TournamentStatus = "not_started"
	StatusInProgress TournamentStatus = "in_progress"
	StatusFinished   TournamentStatus = "finished"
)

// Tournament представляет турнир по швейцарской системе.
type Tournament struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Finished  bool      `json:"finished" db:"finished"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Competitors []Competitor `json:"competitors,omitempty" db:"-"`
	Rounds      []Round      `json:"rounds,omitempty" db:"-"`
}

// CurrentRound is the round with the highest number, nil before the tournament starts.
func (t *Tournament) CurrentRound() *Round {
	var current *Round
	for i := range t.Rounds {
		if current == nil || t.Rounds[i].Number > current.Number {
			current = &t.Rounds[i]
		}
	}
	return current
}

// Duels flattens the duels of every round, ordered by round.
func (t *Tournament) Duels() []Duel {
	var duels []Duel
	for _, r := range t.Rounds {
		duels = append(duels, r.Duels...)
	}
	return duels
}

func (t *Tournament) HasCompetitor(c Competitor) bool {
	for _, existing := range t.Competitors {
		if existing == c {
			return true
		}
	}
	return false
}
