package models

import "time"

// TournamentType соответствует ENUM tournament_type в БД.
type TournamentType string

const (
	TypeLeague   TournamentType = "league"
	TypeKnockout TournamentType = "knockout"
)

// TournamentStatus соответствует ENUM tournament_status в БД.
type TournamentStatus string

const (
	StatusLive     TournamentStatus = "live"
	StatusFinished TournamentStatus = "finished"
)

// Tournament представляет турнир. Очковые поля имеют смысл только для
// лиги; для олимпийской системы они фиксируются при создании (1/0/0).
type Tournament struct {
	ID         int              `json:"id" db:"id"`
	Name       string           `json:"name" db:"name"`
	Type       TournamentType   `json:"type" db:"type"`
	Status     TournamentStatus `json:"status" db:"status"`
	AllowDraw  bool             `json:"allow_draw" db:"allow_draw"`
	WinPoints  int              `json:"win_points" db:"win_points"`
	DrawPoints int              `json:"draw_points" db:"draw_points"`
	LossPoints int              `json:"loss_points" db:"loss_points"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`
	BannerKey  *string          `json:"-" db:"banner_key"`
	BannerURL  *string          `json:"banner_url,omitempty" db:"-"`

	// Связанные сущности, заполняются сервисом (не мапятся напрямую).
	Matches   []Match    `json:"matches,omitempty" db:"-"`
	Standings []Standing `json:"standings,omitempty" db:"-"`
	Players   []Player   `json:"players,omitempty" db:"-"`
}
