package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"mime"
	"strings"
	"time"

	"github.com/aidosbek/tournament-hub/brackets"
	"github.com/aidosbek/tournament-hub/models"
	"github.com/aidosbek/tournament-hub/repositories"
	"github.com/aidosbek/tournament-hub/storage"
	"golang.org/x/sync/errgroup"
)

type CreateLeagueInput struct {
	Name        string   `json:"name"`
	AllowDraw   bool     `json:"allow_draw"`
	WinPoints   int      `json:"win_points"`
	DrawPoints  int      `json:"draw_points"`
	LossPoints  int      `json:"loss_points"`
	PlayerNames []string `json:"player_names"`
}

type CreateKnockoutInput struct {
	Name        string   `json:"name"`
	PlayerNames []string `json:"player_names"`
}

type TournamentService interface {
	CreateLeague(ctx context.Context, input CreateLeagueInput) (*models.Tournament, error)
	CreateKnockout(ctx context.Context, input CreateKnockoutInput) (*models.Tournament, error)
	GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error)
	ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	UploadBanner(ctx context.Context, tournamentID int, contentType string, file io.Reader) (*models.Tournament, error)
}

type tournamentService struct {
	tx             repositories.Transactor
	tournamentRepo repositories.TournamentRepository
	playerRepo     repositories.PlayerRepository
	matchRepo      repositories.MatchRepository
	standingRepo   repositories.StandingRepository
	uploader       storage.FileUploader
	rng            *rand.Rand
	logger         *slog.Logger
}

// NewTournamentService wires the creation orchestrator. rng may be nil, in
// which case the shared math/rand source seeds knockout shuffles; tests pass
// a seeded source for determinism.
func NewTournamentService(
	tx repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	playerRepo repositories.PlayerRepository,
	matchRepo repositories.MatchRepository,
	standingRepo repositories.StandingRepository,
	uploader storage.FileUploader,
	rng *rand.Rand,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tx:             tx,
		tournamentRepo: tournamentRepo,
		playerRepo:     playerRepo,
		matchRepo:      matchRepo,
		standingRepo:   standingRepo,
		uploader:       uploader,
		rng:            rng,
		logger:         logger,
	}
}

func (s *tournamentService) CreateLeague(ctx context.Context, input CreateLeagueInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}
	if input.WinPoints < 0 || input.DrawPoints < 0 || input.LossPoints < 0 {
		return nil, ErrInvalidPoints
	}

	tournament := &models.Tournament{
		Name:       name,
		Type:       models.TypeLeague,
		Status:     models.StatusLive,
		AllowDraw:  input.AllowDraw,
		WinPoints:  input.WinPoints,
		DrawPoints: input.DrawPoints,
		LossPoints: input.LossPoints,
	}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		players, err := resolvePlayers(ctx, exec, s.playerRepo, input.PlayerNames)
		if err != nil {
			return err
		}

		if err := s.tournamentRepo.Create(ctx, exec, tournament); err != nil {
			return err
		}

		rounds := brackets.GenerateRoundRobin(playerIDs(players))
		allMatches := make([]*models.Match, 0)
		for _, round := range rounds {
			allMatches = append(allMatches, matchesFromPairings(tournament.ID, round)...)
		}
		if err := s.matchRepo.BatchCreate(ctx, exec, allMatches); err != nil {
			return err
		}

		standings := make([]*models.Standing, 0, len(players))
		for _, p := range players {
			standings = append(standings, &models.Standing{
				TournamentID: tournament.ID,
				PlayerID:     p.ID,
			})
		}
		return s.standingRepo.BatchCreate(ctx, exec, standings)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("league tournament created",
		slog.Int("tournament_id", tournament.ID),
		slog.String("name", tournament.Name),
		slog.Int("players", len(input.PlayerNames)))
	return tournament, nil
}

func (s *tournamentService) CreateKnockout(ctx context.Context, input CreateKnockoutInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}

	tournament := &models.Tournament{
		Name:      name,
		Type:      models.TypeKnockout,
		Status:    models.StatusLive,
		AllowDraw: false,
		WinPoints: 1,
	}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		players, err := resolvePlayers(ctx, exec, s.playerRepo, input.PlayerNames)
		if err != nil {
			return err
		}

		if err := s.tournamentRepo.Create(ctx, exec, tournament); err != nil {
			return err
		}

		firstRound := brackets.GenerateKnockoutFirstRound(playerIDs(players), s.rng)
		return s.matchRepo.BatchCreate(ctx, exec, matchesFromPairings(tournament.ID, firstRound))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("knockout tournament created",
		slog.Int("tournament_id", tournament.ID),
		slog.String("name", tournament.Name),
		slog.Int("players", len(input.PlayerNames)))
	return tournament, nil
}

// GetTournamentByID loads the tournament together with its matches, standings
// and players. The three collections are fetched in parallel.
func (s *tournamentService) GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	var (
		matches   []*models.Match
		standings []*models.Standing
		players   []*models.Player
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListByTournament(gCtx, nil, id)
		return err
	})
	g.Go(func() error {
		var err error
		standings, err = s.standingRepo.ListByTournament(gCtx, nil, id)
		return err
	})
	g.Go(func() error {
		var err error
		players, err = s.playerRepo.ListByTournament(gCtx, nil, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load tournament %d details: %w", id, err)
	}

	byID := make(map[int]*models.Player, len(players))
	tournament.Players = make([]models.Player, 0, len(players))
	for _, p := range players {
		byID[p.ID] = p
		tournament.Players = append(tournament.Players, *p)
	}

	tournament.Matches = make([]models.Match, 0, len(matches))
	for _, m := range matches {
		m.Player1 = byID[m.Player1ID]
		if m.Player2ID != nil {
			m.Player2 = byID[*m.Player2ID]
		}
		if m.WinnerID != nil {
			m.Winner = byID[*m.WinnerID]
		}
		tournament.Matches = append(tournament.Matches, *m)
	}

	tournament.Standings = make([]models.Standing, 0, len(standings))
	for _, st := range standings {
		st.Player = byID[st.PlayerID]
		tournament.Standings = append(tournament.Standings, *st)
	}

	s.attachBannerURL(tournament)
	return tournament, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx, nil, filter)
	if err != nil {
		return nil, err
	}
	for i := range tournaments {
		s.attachBannerURL(&tournaments[i])
	}
	return tournaments, nil
}

func (s *tournamentService) UploadBanner(ctx context.Context, tournamentID int, contentType string, file io.Reader) (*models.Tournament, error) {
	if s.uploader == nil {
		return nil, ErrUploaderDisabled
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrBannerInvalidType
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	ext := ".img"
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		ext = exts[0]
	}
	key := fmt.Sprintf("banners/tournament_%d_%d%s", tournamentID, time.Now().Unix(), ext)

	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload banner for tournament %d: %w", tournamentID, err)
	}

	oldKey := tournament.BannerKey
	if err := s.tournamentRepo.UpdateBannerKey(ctx, nil, tournamentID, &result.Key); err != nil {
		return nil, err
	}
	if oldKey != nil && *oldKey != result.Key {
		if delErr := s.uploader.Delete(ctx, *oldKey); delErr != nil {
			s.logger.Warn("failed to delete previous banner",
				slog.String("key", *oldKey), slog.Any("error", delErr))
		}
	}

	s.logger.Info("tournament banner updated",
		slog.Int("tournament_id", tournamentID),
		slog.String("key", result.Key),
		slog.String("etag", result.ETag))

	tournament.BannerKey = &result.Key
	if result.Location != "" {
		tournament.BannerURL = &result.Location
	}
	return tournament, nil
}

func (s *tournamentService) attachBannerURL(t *models.Tournament) {
	if s.uploader == nil || t.BannerKey == nil {
		return
	}
	url := s.uploader.GetPublicURL(*t.BannerKey)
	if url != "" {
		t.BannerURL = &url
	}
}
