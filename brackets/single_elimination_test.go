package brackets

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidosbek/tournament-hub/models"
)

func TestGenerateKnockoutFirstRound_PartitionsField(t *testing.T) {
	tests := []struct {
		players     int
		wantMatches int
		wantByes    int
	}{
		{players: 2, wantMatches: 1, wantByes: 0},
		{players: 4, wantMatches: 2, wantByes: 0},
		{players: 5, wantMatches: 3, wantByes: 1},
		{players: 7, wantMatches: 4, wantByes: 1},
		{players: 8, wantMatches: 4, wantByes: 0},
	}
	for _, tt := range tests {
		ids := sequentialIDs(tt.players)
		pairings := GenerateKnockoutFirstRound(ids, rand.New(rand.NewSource(1)))
		require.Len(t, pairings, tt.wantMatches, "%d players", tt.players)

		seen := make(map[int]bool)
		byes := 0
		for _, p := range pairings {
			assert.Equal(t, 1, p.RoundNumber)
			assert.False(t, seen[p.Player1ID], "player %d placed twice", p.Player1ID)
			seen[p.Player1ID] = true
			if p.Player2ID == nil {
				byes++
				continue
			}
			assert.False(t, seen[*p.Player2ID], "player %d placed twice", *p.Player2ID)
			seen[*p.Player2ID] = true
		}
		assert.Equal(t, tt.wantByes, byes, "%d players", tt.players)
		assert.Len(t, seen, tt.players, "every player must be placed exactly once")
	}
}

func TestGenerateKnockoutFirstRound_ByeGoesLast(t *testing.T) {
	pairings := GenerateKnockoutFirstRound(sequentialIDs(5), rand.New(rand.NewSource(7)))
	require.Len(t, pairings, 3)
	assert.NotNil(t, pairings[0].Player2ID)
	assert.NotNil(t, pairings[1].Player2ID)
	assert.Nil(t, pairings[2].Player2ID, "the odd player out gets the last slot")
}

func TestGenerateKnockoutFirstRound_SeededShuffleIsDeterministic(t *testing.T) {
	first := GenerateKnockoutFirstRound(sequentialIDs(8), rand.New(rand.NewSource(42)))
	second := GenerateKnockoutFirstRound(sequentialIDs(8), rand.New(rand.NewSource(42)))
	assert.Equal(t, first, second)
}

func TestGenerateKnockoutFirstRound_DoesNotMutateInput(t *testing.T) {
	ids := sequentialIDs(8)
	GenerateKnockoutFirstRound(ids, rand.New(rand.NewSource(3)))
	assert.Equal(t, sequentialIDs(8), ids)
}

func TestWinners(t *testing.T) {
	w3 := 3
	matches := []*models.Match{
		{Player1ID: 1, Player2ID: intPtr(2), WinnerID: nil},
		{Player1ID: 3, Player2ID: intPtr(4), WinnerID: &w3},
		{Player1ID: 5, Player2ID: nil}, // bye without a recorded result
	}
	assert.Equal(t, []int{3, 5}, Winners(matches))
}

func TestGenerateNextKnockoutRound_PairsWinnersInBracketOrder(t *testing.T) {
	round := make([]*models.Match, 0, 4)
	winners := []int{2, 3, 5, 8}
	for i, w := range winners {
		winner := w
		round = append(round, &models.Match{
			Player1ID:   i*2 + 1,
			Player2ID:   intPtr(i*2 + 2),
			RoundNumber: 1,
			WinnerID:    &winner,
			Completed:   true,
		})
	}

	next, err := GenerateNextKnockoutRound(round, 8)
	require.NoError(t, err)
	require.Len(t, next, 2)

	assert.Equal(t, 2, next[0].Player1ID)
	require.NotNil(t, next[0].Player2ID)
	assert.Equal(t, 3, *next[0].Player2ID)
	assert.Equal(t, 5, next[1].Player1ID)
	require.NotNil(t, next[1].Player2ID)
	assert.Equal(t, 8, *next[1].Player2ID)

	for _, p := range next {
		assert.Equal(t, 2, p.RoundNumber)
		assert.Equal(t, "Semifinal", p.RoundName)
	}
}

func TestGenerateNextKnockoutRound_OddWinnerCountLeavesBye(t *testing.T) {
	mkWinner := func(p1, p2, w int) *models.Match {
		winner := w
		return &models.Match{Player1ID: p1, Player2ID: intPtr(p2), RoundNumber: 1, WinnerID: &winner, Completed: true}
	}
	round := []*models.Match{
		mkWinner(1, 2, 1),
		mkWinner(3, 4, 4),
		{Player1ID: 5, Player2ID: nil, RoundNumber: 1},
	}

	next, err := GenerateNextKnockoutRound(round, 5)
	require.NoError(t, err)
	require.Len(t, next, 2)
	assert.Equal(t, 1, next[0].Player1ID)
	assert.Equal(t, 4, *next[0].Player2ID)
	assert.Equal(t, 5, next[1].Player1ID)
	assert.Nil(t, next[1].Player2ID)
}

func TestGenerateNextKnockoutRound_Errors(t *testing.T) {
	_, err := GenerateNextKnockoutRound(nil, 8)
	assert.Error(t, err)

	w := 1
	final := []*models.Match{{Player1ID: 1, Player2ID: intPtr(2), RoundNumber: 3, WinnerID: &w, Completed: true}}
	_, err = GenerateNextKnockoutRound(final, 8)
	assert.Error(t, err, "a single winner means the bracket is decided")
}

func TestRoundName(t *testing.T) {
	tests := []struct {
		totalPlayers int
		roundNumber  int
		want         string
	}{
		{16, 1, "Round of 16"},
		{16, 2, "Quarterfinal"},
		{16, 3, "Semifinal"},
		{16, 4, "Final"},
		{8, 1, "Quarterfinal"},
		{8, 2, "Semifinal"},
		{8, 3, "Final"},
		{4, 1, "Semifinal"},
		{4, 2, "Final"},
		{2, 1, "Final"},
		// non-power-of-two fields still label their last rounds correctly
		{5, 1, "Quarterfinal"},
		{5, 2, "Semifinal"},
		{5, 3, "Final"},
		{6, 1, "Quarterfinal"},
		{32, 1, "Round of 32"},
		{32, 2, "Round of 16"},
		{32, 5, "Final"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RoundName(tt.totalPlayers, tt.roundNumber),
			"RoundName(%d, %d)", tt.totalPlayers, tt.roundNumber)
	}
}

func intPtr(v int) *int { return &v }
