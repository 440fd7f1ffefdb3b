package models

import (
	"errors"
	"fmt"
)

var ErrPerformanceCompetitorMismatch = errors.New("performances belong to different competitors")

// maxWinRatio keeps the win percentage below one match in Score.
const maxWinRatio = 0.99

// Performance is a derived win/loss record of one competitor over some set of duels.
// MatchWins/MatchLosses count whole duels, Wins/Losses count single games.
type Performance struct {
	Competitor  Competitor `json:"competitor"`
	MatchWins   int        `json:"match_wins"`
	MatchLosses int        `json:"match_losses"`
	Wins        int        `json:"wins"`
	Losses      int        `json:"losses"`
}

func ZeroPerformance(c Competitor) Performance {
	return Performance{Competitor: c}
}

// ComparePerformance orders by match wins (more first), match losses (fewer first),
// game wins (more first) and game losses (fewer first). It returns a negative number
// when p ranks above q, a positive number when q ranks above p and 0 on a tie.
func ComparePerformance(p, q Performance) int {
	switch {
	case p.MatchWins != q.MatchWins:
		return q.MatchWins - p.MatchWins
	case p.MatchLosses != q.MatchLosses:
		return p.MatchLosses - q.MatchLosses
	case p.Wins != q.Wins:
		return q.Wins - p.Wins
	default:
		return p.Losses - q.Losses
	}
}

// Better reports whether p ranks strictly above q.
func (p Performance) Better(q Performance) bool {
	return ComparePerformance(p, q) < 0
}

// Combine adds two performances of the same competitor.
func Combine(p, q Performance) (Performance, error) {
	if p.Competitor != q.Competitor {
		return Performance{}, fmt.Errorf("%w: %q and %q", ErrPerformanceCompetitorMismatch, p.Competitor.Name, q.Competitor.Name)
	}
	return Performance{
		Competitor:  p.Competitor,
		MatchWins:   p.MatchWins + q.MatchWins,
		MatchLosses: p.MatchLosses + q.MatchLosses,
		Wins:        p.Wins + q.Wins,
		Losses:      p.Losses + q.Losses,
	}, nil
}

func (p Performance) Games() int {
	return p.Wins + p.Losses
}

func (p Performance) WinPercentage() float64 {
	if p.Games() == 0 {
		return 0
	}
	return float64(p.Wins) / float64(p.Games())
}

// Score collapses the record into one float for display. Ordering uses ComparePerformance.
func (p Performance) Score() float64 {
	return float64(p.MatchWins-p.MatchLosses) + min(p.WinPercentage(), maxWinRatio)
}
