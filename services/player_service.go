package services

import (
	"context"

	"github.com/aidosbek/tournament-hub/models"
	"github.com/aidosbek/tournament-hub/repositories"
)

type PlayerService interface {
	ListPlayers(ctx context.Context) ([]*models.Player, error)
}

type playerService struct {
	playerRepo repositories.PlayerRepository
}

func NewPlayerService(playerRepo repositories.PlayerRepository) PlayerService {
	return &playerService{playerRepo: playerRepo}
}

func (s *playerService) ListPlayers(ctx context.Context) ([]*models.Player, error) {
	players, err := s.playerRepo.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	if players == nil {
		return []*models.Player{}, nil
	}
	return players, nil
}
