package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aidosbek/tournament-hub/models"
)

var ErrStandingNotFound = errors.New("standing not found")

type StandingRepository interface {
	BatchCreate(ctx context.Context, exec SQLExecutor, standings []*models.Standing) error
	GetByTournamentAndPlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) (*models.Standing, error)
	UpdateCounters(ctx context.Context, exec SQLExecutor, standing *models.Standing) error
	// ListByTournament orders rows for display: points desc, wins desc,
	// player id as the stable tie-break.
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Standing, error)
}

type postgresStandingRepository struct {
	db *sql.DB
}

func NewPostgresStandingRepository(db *sql.DB) StandingRepository {
	return &postgresStandingRepository{db: db}
}

func (r *postgresStandingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresStandingRepository) BatchCreate(ctx context.Context, exec SQLExecutor, standings []*models.Standing) error {
	if len(standings) == 0 {
		return nil
	}
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO standings (tournament_id, player_id, played, wins, draws, losses, points, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	for _, s := range standings {
		if s.UpdatedAt.IsZero() {
			s.UpdatedAt = time.Now()
		}
		err := executor.QueryRowContext(ctx, query,
			s.TournamentID, s.PlayerID, s.Played, s.Wins, s.Draws, s.Losses, s.Points, s.UpdatedAt,
		).Scan(&s.ID)
		if err != nil {
			return fmt.Errorf("failed to create standing for player %d: %w", s.PlayerID, err)
		}
	}
	return nil
}

func (r *postgresStandingRepository) GetByTournamentAndPlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) (*models.Standing, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tournament_id, player_id, played, wins, draws, losses, points, updated_at
		FROM standings
		WHERE tournament_id = $1 AND player_id = $2`

	row := executor.QueryRowContext(ctx, query, tournamentID, playerID)
	return scanStanding(row)
}

func (r *postgresStandingRepository) UpdateCounters(ctx context.Context, exec SQLExecutor, standing *models.Standing) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE standings
		SET played = $1, wins = $2, draws = $3, losses = $4, points = $5, updated_at = NOW()
		WHERE id = $6`

	result, err := executor.ExecContext(ctx, query,
		standing.Played, standing.Wins, standing.Draws, standing.Losses, standing.Points, standing.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrStandingNotFound)
}

func (r *postgresStandingRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Standing, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tournament_id, player_id, played, wins, draws, losses, points, updated_at
		FROM standings
		WHERE tournament_id = $1
		ORDER BY points DESC, wins DESC, player_id`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	standings := make([]*models.Standing, 0)
	for rows.Next() {
		s, scanErr := scanStanding(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		standings = append(standings, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return standings, nil
}

func scanStanding(rowScanner interface{ Scan(...interface{}) error }) (*models.Standing, error) {
	var s models.Standing
	err := rowScanner.Scan(
		&s.ID, &s.TournamentID, &s.PlayerID, &s.Played,
		&s.Wins, &s.Draws, &s.Losses, &s.Points, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStandingNotFound
		}
		return nil, err
	}
	return &s, nil
}
