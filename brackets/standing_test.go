package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/swiss-pairings/models"
)

var (
	alice = models.Competitor{Name: "alice"}
	bob   = models.Competitor{Name: "bob"}
	carol = models.Competitor{Name: "carol"}
	dave  = models.Competitor{Name: "dave"}
	erin  = models.Competitor{Name: "erin"}
)

func duel(round int, a, b models.Competitor, aWins, bWins int) models.Duel {
	return models.Duel{RoundNumber: round, A: a, B: b, AWins: aWins, BWins: bWins}
}

func TestStanding_OrdersByMatchesThenGames(t *testing.T) {
	duels := []models.Duel{
		duel(1, alice, bob, 2, 1),
		duel(1, carol, dave, 0, 2),
		duel(2, alice, dave, 2, 0),
		duel(2, bob, carol, 2, 1),
	}
	got := Standing(duels, []models.Competitor{alice, bob, carol, dave}, 2)

	want := []models.Performance{
		{Competitor: alice, MatchWins: 2, Wins: 4, Losses: 1},
		// bob and dave share match records; bob has more game wins.
		{Competitor: bob, MatchWins: 1, MatchLosses: 1, Wins: 3, Losses: 3},
		{Competitor: dave, MatchWins: 1, MatchLosses: 1, Wins: 2, Losses: 2},
		{Competitor: carol, MatchLosses: 2, Wins: 1, Losses: 4},
	}
	assert.Equal(t, want, got)
}

func TestStanding_UndecidedDuelCountsGamesOnly(t *testing.T) {
	got := Standing([]models.Duel{duel(1, alice, bob, 1, 1)}, []models.Competitor{alice, bob}, 2)

	require.Len(t, got, 2)
	for _, p := range got {
		assert.Zero(t, p.MatchWins)
		assert.Zero(t, p.MatchLosses)
		assert.Equal(t, 1, p.Wins)
		assert.Equal(t, 1, p.Losses)
	}
	assert.Equal(t, alice, got[0].Competitor, "ties keep the competitor order")
}

func TestStanding_IgnoresOutsiders(t *testing.T) {
	duels := []models.Duel{
		duel(1, alice, models.DefaultBye, 2, 0),
		duel(1, bob, erin, 2, 0),
	}
	got := Standing(duels, []models.Competitor{alice, bob}, 2)

	require.Len(t, got, 2)
	for _, p := range got {
		assert.Equal(t, 1, p.MatchWins, p.Competitor.Name)
		assert.Equal(t, 2, p.Wins, p.Competitor.Name)
	}
}

func TestStanding_NoDuels(t *testing.T) {
	got := Standing(nil, []models.Competitor{alice, bob}, 2)
	assert.Equal(t, []models.Performance{models.ZeroPerformance(alice), models.ZeroPerformance(bob)}, got)
}

func TestStandingPersonalization(t *testing.T) {
	got := StandingPersonalization([]models.Performance{
		{Competitor: alice, MatchWins: 2},
		{Competitor: bob},
	})
	assert.Equal(t, map[models.Competitor]float64{alice: 3, bob: 1}, got)
}

func TestAllTimeStanding(t *testing.T) {
	first := []models.Performance{
		{Competitor: alice, MatchWins: 1, Wins: 2, Losses: 1},
		{Competitor: bob, MatchLosses: 1, Wins: 1, Losses: 2},
	}
	second := []models.Performance{
		{Competitor: bob, MatchWins: 2, Wins: 4},
		{Competitor: carol, MatchLosses: 2, Losses: 4},
	}

	got, err := AllTimeStanding([][]models.Performance{first, second})
	require.NoError(t, err)
	assert.Equal(t, []models.Performance{
		{Competitor: bob, MatchWins: 2, MatchLosses: 1, Wins: 5, Losses: 2},
		{Competitor: alice, MatchWins: 1, Wins: 2, Losses: 1},
		{Competitor: carol, MatchLosses: 2, Losses: 4},
	}, got)
}
