package services

import "errors"

// Ошибки сервисного слоя; маппинг в HTTP-статусы живёт в handlers.
var (
	// Not found
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrStandingNotFound   = errors.New("standing not found")

	// Validation and business rules
	ErrTournamentNameRequired = errors.New("tournament name is required")
	ErrNotEnoughPlayers       = errors.New("at least 2 distinct players are required")
	ErrInvalidPoints          = errors.New("points values must not be negative")
	ErrWinnerRequired         = errors.New("a winner must be selected unless the match is a draw")
	ErrWinnerNotInMatch       = errors.New("winner is not a player of this match")
	ErrDrawNotAllowed         = errors.New("draw is not allowed for this match")
	ErrTournamentFinished     = errors.New("tournament is already finished")

	// Conflicts
	ErrMatchAlreadyCompleted = errors.New("match result has already been recorded")

	// Upload
	ErrBannerInvalidType = errors.New("banner must be an image")
	ErrUploaderDisabled  = errors.New("file storage is not configured")
)
