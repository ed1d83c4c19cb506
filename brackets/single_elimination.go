package brackets

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/aidosbek/tournament-hub/models"
)

// GenerateKnockoutFirstRound shuffles the field uniformly (Fisher–Yates) and
// pairs consecutive players. An odd field leaves the last player with a bye.
// The rng is injectable so tests can fix the seed; a nil rng falls back to
// the shared math/rand source.
func GenerateKnockoutFirstRound(playerIDs []int, rng *rand.Rand) []Pairing {
	shuffled := make([]int, len(playerIDs))
	copy(shuffled, playerIDs)

	swap := func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] }
	if rng != nil {
		rng.Shuffle(len(shuffled), swap)
	} else {
		rand.Shuffle(len(shuffled), swap)
	}

	return pairConsecutive(shuffled, 1, len(playerIDs))
}

// Winners extracts the advancing player of each completed match, in bracket
// order. A bye match without a recorded result advances player 1.
func Winners(matches []*models.Match) []int {
	winners := make([]int, 0, len(matches))
	for _, m := range matches {
		switch {
		case m.WinnerID != nil:
			winners = append(winners, *m.WinnerID)
		case m.Player2ID == nil:
			winners = append(winners, m.Player1ID)
		}
	}
	return winners
}

// GenerateNextKnockoutRound pairs the winners of a completed round in
// bracket order — seeding is preserved, only the first round is shuffled.
// totalPlayers is the tournament's original field size, so round names stay
// consistent even after byes shrank the active field.
//
// The caller owns the termination check: a single winner means the
// tournament is over and no next round must be generated.
func GenerateNextKnockoutRound(currentRound []*models.Match, totalPlayers int) ([]Pairing, error) {
	if len(currentRound) == 0 {
		return nil, errors.New("cannot generate next round from an empty round")
	}
	winners := Winners(currentRound)
	if len(winners) < 2 {
		return nil, fmt.Errorf("next round needs at least 2 winners, got %d", len(winners))
	}
	return pairConsecutive(winners, currentRound[0].RoundNumber+1, totalPlayers), nil
}

func pairConsecutive(ids []int, roundNumber, totalPlayers int) []Pairing {
	name := RoundName(totalPlayers, roundNumber)
	pairings := make([]Pairing, 0, (len(ids)+1)/2)
	for i := 0; i < len(ids); i += 2 {
		p := Pairing{
			Player1ID:   ids[i],
			RoundNumber: roundNumber,
			RoundName:   name,
		}
		if i+1 < len(ids) {
			opponent := ids[i+1]
			p.Player2ID = &opponent
		}
		pairings = append(pairings, p)
	}
	return pairings
}

// RoundName derives the display label for a knockout round from the original
// field size. The last three rounds get the familiar names; earlier rounds
// are "Round of N". For a non-power-of-two field the division is floored —
// the label is cosmetic and only has to stay well-formed.
func RoundName(totalPlayers, roundNumber int) string {
	totalRounds := int(math.Ceil(math.Log2(float64(totalPlayers))))
	remaining := totalRounds - roundNumber + 1

	switch remaining {
	case 1:
		return "Final"
	case 2:
		return "Semifinal"
	case 3:
		return "Quarterfinal"
	}
	return fmt.Sprintf("Round of %d", totalPlayers/(1<<uint(roundNumber-1)))
}
