package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aidosbek/tournament-hub/models"
)

var (
	ErrMatchNotFound = errors.New("match not found")
	// ErrMatchAlreadyCompleted means the completed-flag compare-and-swap
	// lost: another submission finished the match first.
	ErrMatchAlreadyCompleted = errors.New("match result has already been recorded")
)

type MatchRepository interface {
	BatchCreate(ctx context.Context, exec SQLExecutor, matches []*models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	// ListByTournament returns matches ordered by (round_number, id) —
	// bracket order within a round is insertion order.
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Match, error)
	// CompleteResult records a result exactly once. Completing an already
	// completed match returns ErrMatchAlreadyCompleted.
	CompleteResult(ctx context.Context, exec SQLExecutor, id int, winnerID *int, isDraw bool) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchRepository) BatchCreate(ctx context.Context, exec SQLExecutor, matches []*models.Match) error {
	if len(matches) == 0 {
		return nil
	}
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches (tournament_id, round_number, round_name, player1_id, player2_id, is_draw, completed)
		VALUES ($1, $2, $3, $4, $5, FALSE, FALSE)
		RETURNING id, created_at`

	for _, m := range matches {
		err := executor.QueryRowContext(ctx, query,
			m.TournamentID, m.RoundNumber, m.RoundName, m.Player1ID, m.Player2ID,
		).Scan(&m.ID, &m.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create match (tournament %d, round %d): %w", m.TournamentID, m.RoundNumber, err)
		}
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tournament_id, round_number, round_name, player1_id, player2_id, winner_id, is_draw, completed, created_at
		FROM matches
		WHERE id = $1`

	match := &models.Match{}
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&match.ID, &match.TournamentID, &match.RoundNumber, &match.RoundName,
		&match.Player1ID, &match.Player2ID, &match.WinnerID, &match.IsDraw,
		&match.Completed, &match.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tournament_id, round_number, round_name, player1_id, player2_id, winner_id, is_draw, completed, created_at
		FROM matches
		WHERE tournament_id = $1
		ORDER BY round_number, id`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		var m models.Match
		if scanErr := rows.Scan(
			&m.ID, &m.TournamentID, &m.RoundNumber, &m.RoundName,
			&m.Player1ID, &m.Player2ID, &m.WinnerID, &m.IsDraw,
			&m.Completed, &m.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, &m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *postgresMatchRepository) CompleteResult(ctx context.Context, exec SQLExecutor, id int, winnerID *int, isDraw bool) error {
	executor := r.getExecutor(exec)
	// completed = FALSE in the predicate is the concurrency guard: two racing
	// submissions cannot both flip the flag.
	query := `
		UPDATE matches
		SET winner_id = $1, is_draw = $2, completed = TRUE
		WHERE id = $3 AND completed = FALSE`

	result, err := executor.ExecContext(ctx, query, winnerID, isDraw, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchAlreadyCompleted)
}
