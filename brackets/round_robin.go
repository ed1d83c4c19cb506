package brackets

import "fmt"

// Pairing is a match skeleton produced by schedule generation, before it is
// persisted as a Match row. A nil Player2ID encodes a bye.
type Pairing struct {
	Player1ID   int
	Player2ID   *int
	RoundNumber int
	RoundName   string
}

// GenerateRoundRobin builds a full league schedule with the circle method:
// pad an odd field with a bye slot, fix the last element and rotate the rest
// one position per round. Pairings that involve the bye slot are dropped, so
// with an odd field every player sits out exactly one round.
//
// Every unordered pair of players appears in exactly one round. Callers must
// reject fields of fewer than two players before calling.
func GenerateRoundRobin(playerIDs []int) [][]Pairing {
	players := make([]*int, 0, len(playerIDs)+1)
	for i := range playerIDs {
		players = append(players, &playerIDs[i])
	}
	if len(players)%2 != 0 {
		players = append(players, nil) // bye slot
	}

	n := len(players)
	numRounds := n - 1
	half := n / 2

	fixed := players[n-1]
	rotating := make([]*int, n-1)
	copy(rotating, players[:n-1])

	rounds := make([][]Pairing, 0, numRounds)
	for round := 0; round < numRounds; round++ {
		current := make([]*int, 0, n)
		current = append(current, fixed)
		current = append(current, rotating...)

		pairings := make([]Pairing, 0, half)
		for i := 0; i < half; i++ {
			p1 := current[i]
			p2 := current[n-1-i]
			if p1 == nil || p2 == nil {
				continue // bye, no match played this round
			}
			opponent := *p2
			pairings = append(pairings, Pairing{
				Player1ID:   *p1,
				Player2ID:   &opponent,
				RoundNumber: round + 1,
				RoundName:   fmt.Sprintf("Round %d", round+1),
			})
		}
		rounds = append(rounds, pairings)

		// rotate: last element moves to the front
		last := rotating[len(rotating)-1]
		copy(rotating[1:], rotating[:len(rotating)-1])
		rotating[0] = last
	}

	return rounds
}
