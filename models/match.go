package models

import "time"

// Match — одна встреча в рамках турнира. Для олимпийской системы
// Player2ID == nil означает bye (проход без соперника).
type Match struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	RoundNumber  int       `json:"round_number" db:"round_number"`
	RoundName    string    `json:"round_name" db:"round_name"`
	Player1ID    int       `json:"player1_id" db:"player1_id"`
	Player2ID    *int      `json:"player2_id,omitempty" db:"player2_id"`
	WinnerID     *int      `json:"winner_id,omitempty" db:"winner_id"`
	IsDraw       bool      `json:"is_draw" db:"is_draw"`
	Completed    bool      `json:"completed" db:"completed"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	// Optional linked data, populated by service
	Player1 *Player `json:"player1,omitempty" db:"-"`
	Player2 *Player `json:"player2,omitempty" db:"-"`
	Winner  *Player `json:"winner,omitempty" db:"-"`
}

// IsBye reports whether the match is a walkover slot with no second player.
func (m *Match) IsBye() bool {
	return m.Player2ID == nil
}
