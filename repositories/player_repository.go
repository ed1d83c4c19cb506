package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aidosbek/tournament-hub/models"
	"github.com/lib/pq"
)

var (
	ErrPlayerNotFound     = errors.New("player not found")
	ErrPlayerNameConflict = errors.New("player name is already taken")
)

type PlayerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, player *models.Player) error
	// GetByName matches the name case-insensitively and exactly.
	GetByName(ctx context.Context, exec SQLExecutor, name string) (*models.Player, error)
	List(ctx context.Context, exec SQLExecutor) ([]*models.Player, error)
	// ListByTournament returns every player referenced by the
	// tournament's matches, ordered by name.
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Player, error)
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPlayerRepository) Create(ctx context.Context, exec SQLExecutor, player *models.Player) error {
	executor := r.getExecutor(exec)
	query := `INSERT INTO players (name) VALUES ($1) RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query, player.Name).Scan(&player.ID, &player.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrPlayerNameConflict
		}
		return fmt.Errorf("failed to create player %q: %w", player.Name, err)
	}
	return nil
}

func (r *postgresPlayerRepository) GetByName(ctx context.Context, exec SQLExecutor, name string) (*models.Player, error) {
	executor := r.getExecutor(exec)
	query := `SELECT id, name, created_at FROM players WHERE LOWER(name) = LOWER($1)`

	player := &models.Player{}
	err := executor.QueryRowContext(ctx, query, name).Scan(&player.ID, &player.Name, &player.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player by name %q: %w", name, err)
	}
	return player, nil
}

func (r *postgresPlayerRepository) List(ctx context.Context, exec SQLExecutor) ([]*models.Player, error) {
	executor := r.getExecutor(exec)
	query := `SELECT id, name, created_at FROM players ORDER BY name`

	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPlayers(rows)
}

func (r *postgresPlayerRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Player, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT DISTINCT p.id, p.name, p.created_at
		FROM players p
		JOIN matches m ON p.id IN (m.player1_id, m.player2_id)
		WHERE m.tournament_id = $1
		ORDER BY p.name`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPlayers(rows)
}

func scanPlayers(rows *sql.Rows) ([]*models.Player, error) {
	players := make([]*models.Player, 0)
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, err
		}
		players = append(players, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return players, nil
}
