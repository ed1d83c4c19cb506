package services

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aidosbek/tournament-hub/models"
	"github.com/aidosbek/tournament-hub/repositories"
	"github.com/aidosbek/tournament-hub/storage"
)

// fakeTransactor mimics rollback semantics: the store state is snapshotted
// before the closure runs and restored when the closure errors, so a failed
// multi-step creation leaves no partial rows behind.
type fakeTransactor struct{ s *fakeStore }

func (t fakeTransactor) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	snap := t.s.snapshot()
	if err := fn(nil); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

// fakeStore is a mutex-guarded in-memory stand-in for the database, shared by
// all four repository fakes so cross-table reads stay consistent.
type fakeStore struct {
	mu          sync.Mutex
	nextID      int
	players     []*models.Player
	tournaments map[int]*models.Tournament
	matches     map[int]*models.Match
	standings   []*models.Standing
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tournaments: make(map[int]*models.Tournament),
		matches:     make(map[int]*models.Match),
	}
}

func (s *fakeStore) id() int {
	s.nextID++
	return s.nextID
}

type storeSnapshot struct {
	nextID      int
	players     []*models.Player
	tournaments map[int]*models.Tournament
	matches     map[int]*models.Match
	standings   []*models.Standing
}

func (s *fakeStore) snapshot() *storeSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := &storeSnapshot{
		nextID:      s.nextID,
		tournaments: make(map[int]*models.Tournament, len(s.tournaments)),
		matches:     make(map[int]*models.Match, len(s.matches)),
	}
	for _, p := range s.players {
		cp := *p
		snap.players = append(snap.players, &cp)
	}
	for id, t := range s.tournaments {
		cp := *t
		snap.tournaments[id] = &cp
	}
	for id, m := range s.matches {
		cp := *m
		snap.matches[id] = &cp
	}
	for _, st := range s.standings {
		cp := *st
		snap.standings = append(snap.standings, &cp)
	}
	return snap
}

func (s *fakeStore) restore(snap *storeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID = snap.nextID
	s.players = snap.players
	s.tournaments = snap.tournaments
	s.matches = snap.matches
	s.standings = snap.standings
}

type fakePlayerRepo struct{ s *fakeStore }

func (r *fakePlayerRepo) Create(ctx context.Context, exec repositories.SQLExecutor, player *models.Player) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.players {
		if strings.EqualFold(p.Name, player.Name) {
			return repositories.ErrPlayerNameConflict
		}
	}
	player.ID = r.s.id()
	player.CreatedAt = time.Now()
	stored := *player
	r.s.players = append(r.s.players, &stored)
	return nil
}

func (r *fakePlayerRepo) GetByName(ctx context.Context, exec repositories.SQLExecutor, name string) (*models.Player, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.players {
		if strings.EqualFold(p.Name, name) {
			found := *p
			return &found, nil
		}
	}
	return nil, repositories.ErrPlayerNotFound
}

func (r *fakePlayerRepo) List(ctx context.Context, exec repositories.SQLExecutor) ([]*models.Player, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.Player, 0, len(r.s.players))
	for _, p := range r.s.players {
		found := *p
		out = append(out, &found)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakePlayerRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]*models.Player, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	referenced := make(map[int]bool)
	for _, m := range r.s.matches {
		if m.TournamentID != tournamentID {
			continue
		}
		referenced[m.Player1ID] = true
		if m.Player2ID != nil {
			referenced[*m.Player2ID] = true
		}
	}
	out := make([]*models.Player, 0, len(referenced))
	for _, p := range r.s.players {
		if referenced[p.ID] {
			found := *p
			out = append(out, &found)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type fakeTournamentRepo struct{ s *fakeStore }

func (r *fakeTournamentRepo) Create(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t.ID = r.s.id()
	t.CreatedAt = time.Now()
	stored := *t
	r.s.tournaments[t.ID] = &stored
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	found := *t
	return &found, nil
}

func (r *fakeTournamentRepo) List(ctx context.Context, exec repositories.SQLExecutor, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Tournament, 0, len(r.s.tournaments))
	for _, t := range r.s.tournaments {
		if filter.Type != nil && t.Type != *filter.Type {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		out = append(out, *t)
	}
	// newest first, matching the SQL ordering
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []models.Tournament{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *fakeTournamentRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

func (r *fakeTournamentRepo) UpdateBannerKey(ctx context.Context, exec repositories.SQLExecutor, id int, bannerKey *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.BannerKey = bannerKey
	return nil
}

type fakeMatchRepo struct {
	s *fakeStore

	batchCreateErr error // injected failure for rollback tests
}

func (r *fakeMatchRepo) BatchCreate(ctx context.Context, exec repositories.SQLExecutor, matches []*models.Match) error {
	if r.batchCreateErr != nil {
		return r.batchCreateErr
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range matches {
		m.ID = r.s.id()
		m.CreatedAt = time.Now()
		stored := *m
		r.s.matches[m.ID] = &stored
	}
	return nil
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	found := *m
	return &found, nil
}

func (r *fakeMatchRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]*models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.Match, 0)
	for _, m := range r.s.matches {
		if m.TournamentID == tournamentID {
			found := *m
			out = append(out, &found)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RoundNumber != out[j].RoundNumber {
			return out[i].RoundNumber < out[j].RoundNumber
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeMatchRepo) CompleteResult(ctx context.Context, exec repositories.SQLExecutor, id int, winnerID *int, isDraw bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	if m.Completed {
		return repositories.ErrMatchAlreadyCompleted
	}
	m.WinnerID = winnerID
	m.IsDraw = isDraw
	m.Completed = true
	return nil
}

type fakeStandingRepo struct {
	s *fakeStore

	batchCreateErr error // injected failure for rollback tests
}

func (r *fakeStandingRepo) BatchCreate(ctx context.Context, exec repositories.SQLExecutor, standings []*models.Standing) error {
	if r.batchCreateErr != nil {
		return r.batchCreateErr
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, st := range standings {
		st.ID = r.s.id()
		st.UpdatedAt = time.Now()
		stored := *st
		r.s.standings = append(r.s.standings, &stored)
	}
	return nil
}

func (r *fakeStandingRepo) GetByTournamentAndPlayer(ctx context.Context, exec repositories.SQLExecutor, tournamentID, playerID int) (*models.Standing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, st := range r.s.standings {
		if st.TournamentID == tournamentID && st.PlayerID == playerID {
			found := *st
			return &found, nil
		}
	}
	return nil, repositories.ErrStandingNotFound
}

func (r *fakeStandingRepo) UpdateCounters(ctx context.Context, exec repositories.SQLExecutor, standing *models.Standing) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, st := range r.s.standings {
		if st.ID == standing.ID {
			st.Played = standing.Played
			st.Wins = standing.Wins
			st.Draws = standing.Draws
			st.Losses = standing.Losses
			st.Points = standing.Points
			st.UpdatedAt = time.Now()
			return nil
		}
	}
	return repositories.ErrStandingNotFound
}

func (r *fakeStandingRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]*models.Standing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.Standing, 0)
	for _, st := range r.s.standings {
		if st.TournamentID == tournamentID {
			found := *st
			out = append(out, &found)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		if out[i].Wins != out[j].Wins {
			return out[i].Wins > out[j].Wins
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out, nil
}

// fakeUploader records banner uploads and deletions in memory.
type fakeUploader struct {
	baseURL string
	uploads []string
	deleted []string
}

func (u *fakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	u.uploads = append(u.uploads, key)
	return &storage.UploadResult{
		Key:      key,
		Location: u.baseURL + "/" + key,
		ETag:     "etag-1",
	}, nil
}

func (u *fakeUploader) Delete(ctx context.Context, key string) error {
	u.deleted = append(u.deleted, key)
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	if key == "" {
		return ""
	}
	return u.baseURL + "/" + key
}

// testEnv bundles a fake store with fully wired services.
type testEnv struct {
	store          *fakeStore
	tournamentRepo *fakeTournamentRepo
	playerRepo     *fakePlayerRepo
	matchRepo      *fakeMatchRepo
	standingRepo   *fakeStandingRepo
	tournaments    TournamentService
	results        ResultService
}

func newTestEnv(rng *rand.Rand) *testEnv {
	store := newFakeStore()
	env := &testEnv{
		store:          store,
		tournamentRepo: &fakeTournamentRepo{s: store},
		playerRepo:     &fakePlayerRepo{s: store},
		matchRepo:      &fakeMatchRepo{s: store},
		standingRepo:   &fakeStandingRepo{s: store},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env.tournaments = NewTournamentService(
		fakeTransactor{s: store}, env.tournamentRepo, env.playerRepo, env.matchRepo, env.standingRepo,
		nil, rng, logger)
	env.results = NewResultService(
		fakeTransactor{s: store}, env.tournamentRepo, env.matchRepo, env.standingRepo,
		nil, logger)
	return env
}
