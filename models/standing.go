package models

import "time"

// Standing — строка таблицы лиги. Инвариант: Played == Wins + Draws + Losses.
type Standing struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	PlayerID     int       `json:"player_id" db:"player_id"`
	Played       int       `json:"played" db:"played"`
	Wins         int       `json:"wins" db:"wins"`
	Draws        int       `json:"draws" db:"draws"`
	Losses       int       `json:"losses" db:"losses"`
	Points       int       `json:"points" db:"points"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`

	// Optional linked data, populated by service
	Player *Player `json:"player,omitempty" db:"-"`
}
