package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aidosbek/tournament-hub/brackets"
	"github.com/aidosbek/tournament-hub/models"
	"github.com/aidosbek/tournament-hub/repositories"
)

type SubmitResultInput struct {
	WinnerID *int `json:"winner_id"`
	IsDraw   bool `json:"is_draw"`
}

type ResultService interface {
	// SubmitResult records a match result exactly once and advances the
	// tournament: standings and completion check for a league, round
	// progression for a knockout bracket.
	SubmitResult(ctx context.Context, matchID int, input SubmitResultInput) (*models.Match, error)
}

type resultService struct {
	tx             repositories.Transactor
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	standingRepo   repositories.StandingRepository
	hub            *brackets.Hub
	locks          *tournamentLocks
	logger         *slog.Logger
}

func NewResultService(
	tx repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	standingRepo repositories.StandingRepository,
	hub *brackets.Hub,
	logger *slog.Logger,
) ResultService {
	return &resultService{
		tx:             tx,
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		standingRepo:   standingRepo,
		hub:            hub,
		locks:          newTournamentLocks(),
		logger:         logger,
	}
}

func (s *resultService) SubmitResult(ctx context.Context, matchID int, input SubmitResultInput) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}

	// Serialize everything per tournament: the round-completion check below
	// reads all matches and must not interleave with another submission.
	s.locks.Lock(match.TournamentID)
	defer s.locks.Unlock(match.TournamentID)

	tournament, err := s.tournamentRepo.GetByID(ctx, nil, match.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	if tournament.Status == models.StatusFinished {
		return nil, ErrTournamentFinished
	}
	if match.Completed {
		return nil, ErrMatchAlreadyCompleted
	}
	if err := validateResult(tournament, match, input); err != nil {
		return nil, err
	}

	var (
		nextRound []*models.Match
		finished  bool
	)

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.matchRepo.CompleteResult(ctx, exec, match.ID, input.WinnerID, input.IsDraw); err != nil {
			if errors.Is(err, repositories.ErrMatchAlreadyCompleted) {
				return ErrMatchAlreadyCompleted
			}
			return err
		}
		match.WinnerID = input.WinnerID
		match.IsDraw = input.IsDraw
		match.Completed = true

		switch tournament.Type {
		case models.TypeLeague:
			if err := s.applyLeagueResult(ctx, exec, tournament, match); err != nil {
				return err
			}
			var err error
			finished, err = s.closeLeagueIfComplete(ctx, exec, tournament.ID)
			return err
		case models.TypeKnockout:
			var err error
			nextRound, finished, err = s.advanceKnockout(ctx, exec, tournament.ID, match.RoundNumber)
			return err
		default:
			return fmt.Errorf("unknown tournament type %q", tournament.Type)
		}
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("match result recorded",
		slog.Int("tournament_id", tournament.ID),
		slog.Int("match_id", match.ID),
		slog.Bool("is_draw", match.IsDraw),
		slog.Bool("tournament_finished", finished))

	if s.hub != nil {
		s.hub.BroadcastToTournament(tournament.ID, brackets.EventMatchCompleted, match)
		if tournament.Type == models.TypeLeague {
			s.hub.BroadcastToTournament(tournament.ID, brackets.EventStandingsUpdated, nil)
		}
		if len(nextRound) > 0 {
			s.hub.BroadcastToTournament(tournament.ID, brackets.EventRoundGenerated, nextRound)
		}
		if finished {
			s.hub.BroadcastToTournament(tournament.ID, brackets.EventTournamentFinished, nil)
		}
	}

	return match, nil
}

// validateResult enforces the result shape before anything is written:
// knockout matches and draw-forbidding leagues reject draws, bye matches can
// only wave player 1 through, and a named winner must play in the match.
func validateResult(tournament *models.Tournament, match *models.Match, input SubmitResultInput) error {
	if input.IsDraw {
		if tournament.Type != models.TypeLeague || !tournament.AllowDraw || match.IsBye() {
			return ErrDrawNotAllowed
		}
		return nil
	}
	if input.WinnerID == nil {
		return ErrWinnerRequired
	}
	winner := *input.WinnerID
	if winner == match.Player1ID {
		return nil
	}
	if match.Player2ID != nil && winner == *match.Player2ID {
		return nil
	}
	return ErrWinnerNotInMatch
}

func (s *resultService) applyLeagueResult(ctx context.Context, exec repositories.SQLExecutor, tournament *models.Tournament, match *models.Match) error {
	if match.Player2ID == nil {
		return fmt.Errorf("league match %d has no second player", match.ID)
	}
	player1, player2 := match.Player1ID, *match.Player2ID

	if match.IsDraw {
		for _, playerID := range []int{player1, player2} {
			if err := s.bumpStanding(ctx, exec, tournament.ID, playerID, outcome{draws: 1, points: tournament.DrawPoints}); err != nil {
				return err
			}
		}
		return nil
	}

	winner := *match.WinnerID
	loser := player1
	if winner == player1 {
		loser = player2
	}
	if err := s.bumpStanding(ctx, exec, tournament.ID, winner, outcome{wins: 1, points: tournament.WinPoints}); err != nil {
		return err
	}
	return s.bumpStanding(ctx, exec, tournament.ID, loser, outcome{losses: 1, points: tournament.LossPoints})
}

type outcome struct {
	wins, draws, losses, points int
}

func (s *resultService) bumpStanding(ctx context.Context, exec repositories.SQLExecutor, tournamentID, playerID int, o outcome) error {
	standing, err := s.standingRepo.GetByTournamentAndPlayer(ctx, exec, tournamentID, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrStandingNotFound) {
			return ErrStandingNotFound
		}
		return err
	}

	standing.Played++
	standing.Wins += o.wins
	standing.Draws += o.draws
	standing.Losses += o.losses
	standing.Points += o.points

	return s.standingRepo.UpdateCounters(ctx, exec, standing)
}

func (s *resultService) closeLeagueIfComplete(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (bool, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, exec, tournamentID)
	if err != nil {
		return false, err
	}
	for _, m := range matches {
		if !m.Completed {
			return false, nil
		}
	}
	if err := s.tournamentRepo.UpdateStatus(ctx, exec, tournamentID, models.StatusFinished); err != nil {
		return false, err
	}
	return true, nil
}

// advanceKnockout runs the bracket state machine once the submitted result is
// in: if the current round still has open matches nothing happens; a single
// winner finishes the tournament; otherwise the winners are paired into the
// next round.
func (s *resultService) advanceKnockout(ctx context.Context, exec repositories.SQLExecutor, tournamentID, roundNumber int) ([]*models.Match, bool, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, exec, tournamentID)
	if err != nil {
		return nil, false, err
	}

	roundMatches := make([]*models.Match, 0)
	for _, m := range matches {
		if m.RoundNumber == roundNumber {
			roundMatches = append(roundMatches, m)
			if !m.Completed {
				return nil, false, nil
			}
		}
	}

	winners := brackets.Winners(roundMatches)
	if len(winners) == 1 {
		if err := s.tournamentRepo.UpdateStatus(ctx, exec, tournamentID, models.StatusFinished); err != nil {
			return nil, false, err
		}
		return nil, true, nil
	}

	pairings, err := brackets.GenerateNextKnockoutRound(roundMatches, countBracketPlayers(matches))
	if err != nil {
		return nil, false, err
	}
	nextRound := matchesFromPairings(tournamentID, pairings)
	if err := s.matchRepo.BatchCreate(ctx, exec, nextRound); err != nil {
		return nil, false, err
	}
	return nextRound, false, nil
}

// countBracketPlayers recovers the original field size from round 1, so round
// names stay pinned to the bracket the tournament started with.
func countBracketPlayers(matches []*models.Match) int {
	players := make(map[int]bool)
	for _, m := range matches {
		if m.RoundNumber != 1 {
			continue
		}
		players[m.Player1ID] = true
		if m.Player2ID != nil {
			players[*m.Player2ID] = true
		}
	}
	return len(players)
}
