package models

// Competitor - участник турнира. Идентифицируется только именем.
type Competitor struct {
	Name string `json:"name" db:"name"`
}

// DefaultBye is the sentinel opponent used when a round has an odd number of competitors.
// It is stored like any other competitor so that bye duels satisfy foreign keys.
var DefaultBye = Competitor{Name: "~bye"}

func (c Competitor) String() string {
	return c.Name
}

// CompetitorNames returns the names in the same order.
func CompetitorNames(competitors []Competitor) []string {
	names := make([]string, len(competitors))
	for i, c := range competitors {
		names[i] = c.Name
	}
	return names
}

func CompetitorsFromNames(names []string) []Competitor {
	competitors := make([]Competitor, len(names))
	for i, name := range names {
		competitors[i] = Competitor{Name: name}
	}
	return competitors
}

// HistoryEntry is one duel seen from the side of a single competitor.
type HistoryEntry struct {
	TournamentID   int        `json:"tournament_id"`
	TournamentName string     `json:"tournament_name"`
	RoundNumber    int        `json:"round_number"`
	DuelID         int        `json:"duel_id"`
	Opponent       Competitor `json:"opponent"`
	Wins           int        `json:"wins"`
	Losses         int        `json:"losses"`
}
