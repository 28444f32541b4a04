// internal/lobby/store.go
package lobby

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/imposter/internal/game"
	"github.com/jason-s-yu/imposter/internal/models"
	log "github.com/sirupsen/logrus"
)

const defaultCodeAttempts = 10

// Recorder persists lobby records. Implemented by the database package.
type Recorder interface {
	SaveLobbyRecord(ctx context.Context, rec models.LobbyRecord) error
	DeleteLobbyRecord(ctx context.Context, id uuid.UUID) error
}

// SnapshotCache keeps the latest public view of a lobby. Implemented by the cache package.
type SnapshotCache interface {
	PutSnapshot(ctx context.Context, code string, view interface{}) error
	DeleteSnapshot(ctx context.Context, code string) error
}

// StoreConfig wires the optional collaborators of a Store.
type StoreConfig struct {
	// GameOptions is passed to every new game.
	GameOptions game.Options

	Recorder  Recorder
	Snapshots SnapshotCache

	// CodeGenerator defaults to GenerateCode.
	CodeGenerator func() (string, error)
	// CodeAttempts bounds the retries on code collisions.
	CodeAttempts int

	// OnRemove is called after a lobby left the store, outside any lock.
	OnRemove func(l *Lobby)
}

// Store manages active lobbies in memory, addressable by id and by join code.
type Store struct {
	mu     sync.Mutex
	byID   map[uuid.UUID]*Lobby
	byCode map[string]*Lobby

	cfg     StoreConfig
	persist *persister
}

// NewStore initializes and returns an empty Store.
func NewStore(cfg StoreConfig) *Store {
	if cfg.CodeGenerator == nil {
		cfg.CodeGenerator = GenerateCode
	}
	if cfg.CodeAttempts <= 0 {
		cfg.CodeAttempts = defaultCodeAttempts
	}
	return &Store{
		byID:    make(map[uuid.UUID]*Lobby),
		byCode:  make(map[string]*Lobby),
		cfg:     cfg,
		persist: newPersister(cfg.Recorder, cfg.Snapshots),
	}
}

// Create opens a new lobby with the given user as host and first player.
func (s *Store) Create(hostUserID uuid.UUID, hostName string) (*Lobby, game.JoinResult, error) {
	s.mu.Lock()
	code, err := s.uniqueCodeUnsafe()
	if err != nil {
		s.mu.Unlock()
		return nil, game.JoinResult{}, err
	}
	l := newLobby(uuid.New(), code, s.cfg.GameOptions)
	l.Game.OnStateChange = s.persist.enqueue

	// The host has to be seated before the code becomes resolvable.
	res, err := l.Game.Join(hostUserID, hostName)
	if err != nil {
		s.mu.Unlock()
		return nil, game.JoinResult{}, err
	}
	s.byID[l.ID] = l
	s.byCode[code] = l
	s.mu.Unlock()

	if s.cfg.Recorder != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.cfg.Recorder.SaveLobbyRecord(ctx, l.Game.Record()); err != nil {
			s.remove(l, false)
			return nil, game.JoinResult{}, fmt.Errorf("saving lobby %s: %v: %w", code, err, models.ErrStorage)
		}
	}

	log.WithFields(log.Fields{"lobby": code, "host": hostUserID}).Info("lobby created")
	return l, res, nil
}

// uniqueCodeUnsafe draws codes until one is free. Assumes lock is held.
func (s *Store) uniqueCodeUnsafe() (string, error) {
	for i := 0; i < s.cfg.CodeAttempts; i++ {
		code, err := s.cfg.CodeGenerator()
		if err != nil {
			return "", fmt.Errorf("generating lobby code: %w", err)
		}
		if _, taken := s.byCode[code]; !taken {
			return code, nil
		}
		log.WithField("code", code).Debug("lobby code collision, retrying")
	}
	return "", fmt.Errorf("no free lobby code after %d attempts", s.cfg.CodeAttempts)
}

// Get returns the lobby with the given id.
func (s *Store) Get(id uuid.UUID) (*Lobby, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("lobby %s: %w", id, models.ErrNotFound)
	}
	return l, nil
}

// FindByCode looks a lobby up by its join code, ignoring case and surrounding whitespace.
func (s *Store) FindByCode(code string) (*Lobby, error) {
	code = NormalizeCode(code)
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.byCode[code]
	if !ok {
		return nil, fmt.Errorf("lobby %q: %w", code, models.ErrNotFound)
	}
	return l, nil
}

// List returns all active lobbies, oldest first.
func (s *Store) List() []*Lobby {
	s.mu.Lock()
	out := make([]*Lobby, 0, len(s.byID))
	for _, l := range s.byID {
		out = append(out, l)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Len returns the number of active lobbies.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// Join adds the user to the lobby with the given code.
func (s *Store) Join(code string, userID uuid.UUID, username string) (*Lobby, game.JoinResult, error) {
	l, err := s.FindByCode(code)
	if err != nil {
		return nil, game.JoinResult{}, err
	}
	res, err := l.Game.Join(userID, username)
	if err != nil {
		return nil, game.JoinResult{}, err
	}
	return l, res, nil
}

// Close ends a lobby on the host's request and removes it.
func (s *Store) Close(l *Lobby, actorID uuid.UUID) error {
	if err := l.Game.Close(actorID); err != nil {
		return err
	}
	s.remove(l, true)
	return nil
}

// DeleteIfEmpty removes the lobby if nobody is left in it. A concurrent join either
// lands before the check, keeping the lobby alive, or finds the game closed.
func (s *Store) DeleteIfEmpty(id uuid.UUID) bool {
	l, err := s.Get(id)
	if err != nil {
		return false
	}
	if !l.Game.CloseIfEmpty() {
		return false
	}
	s.remove(l, true)
	return true
}

// remove drops the lobby from the indexes and its persisted traces.
func (s *Store) remove(l *Lobby, notify bool) {
	s.mu.Lock()
	if cur, ok := s.byID[l.ID]; ok && cur == l {
		delete(s.byID, l.ID)
		delete(s.byCode, l.Code)
	}
	s.mu.Unlock()

	l.detachAll()
	s.persist.drop(l.ID, l.Code)
	log.WithField("lobby", l.Code).Info("lobby removed")

	if notify && s.cfg.OnRemove != nil {
		s.cfg.OnRemove(l)
	}
}
