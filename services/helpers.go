package services

import (
	"context"
	"errors"
	"strings"

	"github.com/aidosbek/tournament-hub/brackets"
	"github.com/aidosbek/tournament-hub/models"
	"github.com/aidosbek/tournament-hub/repositories"
)

// resolvePlayers trims, deduplicates (case-insensitively) and resolves player
// names against the store, creating any player seen for the first time.
// Blank names are dropped before the count is validated.
func resolvePlayers(ctx context.Context, exec repositories.SQLExecutor, playerRepo repositories.PlayerRepository, names []string) ([]*models.Player, error) {
	seen := make(map[string]bool, len(names))
	players := make([]*models.Player, 0, len(names))

	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true

		player, err := playerRepo.GetByName(ctx, exec, name)
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			player = &models.Player{Name: name}
			if createErr := playerRepo.Create(ctx, exec, player); createErr != nil {
				// Lost a create race: someone inserted the name first.
				if errors.Is(createErr, repositories.ErrPlayerNameConflict) {
					player, err = playerRepo.GetByName(ctx, exec, name)
					if err != nil {
						return nil, err
					}
				} else {
					return nil, createErr
				}
			}
		} else if err != nil {
			return nil, err
		}
		players = append(players, player)
	}

	if len(players) < 2 {
		return nil, ErrNotEnoughPlayers
	}
	return players, nil
}

func matchesFromPairings(tournamentID int, pairings []brackets.Pairing) []*models.Match {
	matches := make([]*models.Match, 0, len(pairings))
	for _, p := range pairings {
		matches = append(matches, &models.Match{
			TournamentID: tournamentID,
			RoundNumber:  p.RoundNumber,
			RoundName:    p.RoundName,
			Player1ID:    p.Player1ID,
			Player2ID:    p.Player2ID,
		})
	}
	return matches
}

func playerIDs(players []*models.Player) []int {
	ids := make([]int, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}
	return ids
}
