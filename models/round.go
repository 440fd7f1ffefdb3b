package models

import "time"

type Round struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Number       int       `json:"number" db:"number"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	Duels []Duel `json:"duels" db:"-"`
}

// DuelFor returns the duel in which c plays this round.
func (r *Round) DuelFor(c Competitor) (*Duel, bool) {
	for i := range r.Duels {
		if r.Duels[i].Involves(c) {
			return &r.Duels[i], true
		}
	}
	return nil, false
}

func (r *Round) DuelByID(id int) (*Duel, bool) {
	for i := range r.Duels {
		if r.Duels[i].ID == id {
			return &r.Duels[i], true
		}
	}
	return nil, false
}
