// internal/game/game.go
package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/imposter/internal/models"
	log "github.com/sirupsen/logrus"
)

// WordSource draws the secret word of a round.
type WordSource interface {
	RandomWord(rng *rand.Rand) string
}

// StatsRecorder receives per-user statistics deltas from finished or started games.
type StatsRecorder interface {
	RecordGameStats(ctx context.Context, userID uuid.UUID, stats models.GameStats) error
}

// ErrNoWordSource is returned by StartGame when the game was built without a word source.
var ErrNoWordSource = errors.New("no word source configured")

const (
	countdownTicks      = 3
	defaultTickInterval = time.Second
	defaultSpeakerPause = time.Second
)

// Options configures a new ImposterGame.
type Options struct {
	Words        WordSource
	Rand         *rand.Rand // defaults to a time-seeded source
	Stats        StatsRecorder
	TickInterval time.Duration // countdown and speaking tick, default 1s
	SpeakerPause time.Duration // pause between two speakers, default 1s
}

// JoinResult describes the player record a join produced.
type JoinResult struct {
	PlayerID    uuid.UUID
	IsHost      bool
	Reconnected bool
	HostName    string
}

// LeaveResult describes the roster after a player left.
type LeaveResult struct {
	Remaining int
	NewHostID uuid.UUID // uuid.Nil unless the host changed
}

// ImposterGame is the authoritative state of one lobby: its roster, settings and
// the phase machine driving rounds. All exported methods are safe for concurrent use.
type ImposterGame struct {
	LobbyID   uuid.UUID
	Code      string
	CreatedAt time.Time

	roster   Roster
	settings Settings

	phase         Phase
	currentWord   string
	speakingOrder []string
	speakingIDs   []uuid.UUID
	speakerIndex  int
	timeRemaining int
	roundNumber   int
	votingFrom    Phase
	hints         map[uuid.UUID]string

	// generation is bumped whenever pending timers must be voided.
	generation  uint64
	timer       *time.Timer
	closed      bool
	version     int64
	actionIndex int

	words        WordSource
	rng          *rand.Rand
	stats        StatsRecorder
	tickInterval time.Duration
	speakerPause time.Duration

	// BroadcastFn sends an event to every member. If nil, nothing is sent.
	BroadcastFn func(ev GameEvent)

	// BroadcastToPlayerFn sends an event to a single player.
	BroadcastToPlayerFn func(playerID uuid.UUID, ev GameEvent)

	// OnStateChange receives every new public snapshot together with the full record to persist.
	OnStateChange func(view LobbyView, rec models.LobbyRecord)

	Mu sync.Mutex
}

// NewImposterGame builds an empty lobby game in the lobby phase with default settings.
func NewImposterGame(lobbyID uuid.UUID, code string, opts Options) *ImposterGame {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	tick := opts.TickInterval
	if tick <= 0 {
		tick = defaultTickInterval
	}
	pause := opts.SpeakerPause
	if pause <= 0 {
		pause = defaultSpeakerPause
	}

	return &ImposterGame{
		LobbyID:      lobbyID,
		Code:         code,
		CreatedAt:    time.Now(),
		settings:     DefaultSettings(),
		phase:        PhaseLobby,
		speakerIndex: -1,
		hints:        make(map[uuid.UUID]string),
		words:        opts.Words,
		rng:          rng,
		stats:        opts.Stats,
		tickInterval: tick,
		speakerPause: pause,
	}
}

// Join adds the user to the roster or reconnects their existing player. Nothing is
// broadcast; call AnnounceJoin once the player's connection is attached.
func (g *ImposterGame) Join(userID uuid.UUID, username string) (JoinResult, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.closed {
		return JoinResult{}, fmt.Errorf("lobby %s is closed: %w", g.Code, models.ErrNotFound)
	}

	p, reconnected, err := g.roster.Join(userID, username, g.phase.InGame())
	if err != nil {
		return JoinResult{}, err
	}

	g.logger().WithFields(log.Fields{
		"player":      p.ID,
		"user":        userID,
		"reconnected": reconnected,
		"spectating":  p.IsSpectating,
	}).Info("player joined")
	g.logAction(userID, "player_join", map[string]interface{}{"playerId": p.ID, "reconnected": reconnected})

	res := JoinResult{PlayerID: p.ID, IsHost: p.IsHost, Reconnected: reconnected}
	if h := g.roster.Host(); h != nil {
		res.HostName = h.Username
	}
	return res, nil
}

// AnnounceJoin broadcasts the new membership and, for players rejoining a running
// game, resends their private role.
func (g *ImposterGame) AnnounceJoin(playerID uuid.UUID) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.closed {
		return
	}
	p := g.roster.Find(playerID)
	if p == nil {
		return
	}
	g.broadcastStateUnsafe()
	if g.phase.InGame() && p.Active() {
		g.sendToPlayerUnsafe(p.ID, GameEvent{Type: EventRoleSync, Payload: g.rolePayloadUnsafe(p)})
	}
}

// Leave removes a player from the roster, transferring host status when needed.
// When Remaining is 0 the caller is expected to delete the lobby.
func (g *ImposterGame) Leave(playerID uuid.UUID) (LeaveResult, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	removed, newHost := g.roster.Leave(playerID)
	if removed == nil {
		return LeaveResult{}, fmt.Errorf("player %s: %w", playerID, models.ErrNotFound)
	}
	res := LeaveResult{Remaining: g.roster.Len()}

	g.logger().WithFields(log.Fields{"player": playerID, "remaining": res.Remaining}).Info("player left")
	g.logAction(removed.UserID, "player_leave", map[string]interface{}{"playerId": playerID})

	if res.Remaining == 0 || g.closed {
		return res, nil
	}

	// Votes for the departed player no longer count; those voters vote again.
	for _, p := range g.roster.Players() {
		if p.VoteTarget != nil && *p.VoteTarget == removed.ID {
			p.VoteTarget = nil
		}
	}

	if newHost != nil {
		res.NewHostID = newHost.ID
		g.logger().WithField("player", newHost.ID).Info("host transferred")
		g.sendToPlayerUnsafe(newHost.ID, GameEvent{
			Type:    EventHostTransferred,
			Payload: map[string]interface{}{"isHost": true},
		})
	}

	g.broadcastStateUnsafe()
	g.checkProgressUnsafe()
	return res, nil
}

// MarkUnreachable records that a player lost its connection. Flags and roles are kept.
func (g *ImposterGame) MarkUnreachable(playerID uuid.UUID) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.closed {
		return
	}
	if g.roster.MarkUnreachable(playerID, time.Now()) {
		g.broadcastStateUnsafe()
	}
}

// MarkReachable records that a player is connected again.
func (g *ImposterGame) MarkReachable(playerID uuid.UUID) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.closed {
		return
	}
	if g.roster.MarkReachable(playerID) {
		g.broadcastStateUnsafe()
	}
}

// UpdateSettings merges a partial settings payload. Host only, lobby phase only.
func (g *ImposterGame) UpdateSettings(actorID uuid.UUID, partial map[string]interface{}) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if _, err := g.requireHostUnsafe(actorID); err != nil {
		return err
	}
	if g.phase != PhaseLobby {
		return fmt.Errorf("settings can only change in the lobby: %w", models.ErrInvalidPhase)
	}
	if err := g.settings.Update(partial); err != nil {
		return err
	}

	g.logger().WithField("settings", g.settings).Debug("settings updated")
	g.logAction(uuid.Nil, "settings_update", g.settings.asMap())
	g.broadcastStateUnsafe()
	return nil
}

// StartGame moves the lobby into the first round. Host only.
func (g *ImposterGame) StartGame(actorID uuid.UUID) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if _, err := g.requireHostUnsafe(actorID); err != nil {
		return err
	}
	if g.phase != PhaseLobby {
		return fmt.Errorf("game already running: %w", models.ErrInvalidPhase)
	}
	active := g.roster.Active()
	if need := g.settings.MinPlayers(); len(active) < need {
		return fmt.Errorf("need %d players, have %d: %w", need, len(active), models.ErrInsufficientPlayers)
	}
	if g.words == nil {
		return ErrNoWordSource
	}

	g.roundNumber = 0
	g.startRoundUnsafe(EventGameStarted, g.settings.ImposterCount(len(active)))

	reports := make(map[uuid.UUID]models.GameStats, len(active))
	for _, p := range active {
		reports[p.UserID] = models.GameStats{Played: true, WasImposter: p.IsImposter}
	}
	g.reportStatsUnsafe(reports)
	return nil
}

// MarkReady records that a player has seen their word. The last active player to
// signal moves the game into discussion or word time.
func (g *ImposterGame) MarkReady(playerID uuid.UUID) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	p, err := g.participantUnsafe(playerID, PhaseWordReveal)
	if err != nil {
		return err
	}
	if p.IsReady {
		return nil
	}
	p.IsReady = true
	g.broadcastStateUnsafe()
	g.checkProgressUnsafe()
	return nil
}

// ReadyForVoting records that a player wants to vote. Accepted in discussion and word-time-waiting.
func (g *ImposterGame) ReadyForVoting(playerID uuid.UUID) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	p, err := g.participantUnsafe(playerID, "")
	if err != nil {
		return err
	}
	if !g.phase.AcceptsReadyForVoting() {
		return fmt.Errorf("cannot get ready for voting during %s: %w", g.phase, models.ErrInvalidPhase)
	}
	if p.ReadyForVoting {
		return nil
	}
	p.ReadyForVoting = true
	p.ReadyForNextRound = false
	g.broadcastStateUnsafe()
	g.checkProgressUnsafe()
	return nil
}

// ReadyForNextRound records that a player wants another word time round. Accepted in word-time-waiting.
func (g *ImposterGame) ReadyForNextRound(playerID uuid.UUID) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	p, err := g.participantUnsafe(playerID, PhaseWordTimeWaiting)
	if err != nil {
		return err
	}
	if p.ReadyForNextRound {
		return nil
	}
	p.ReadyForNextRound = true
	p.ReadyForVoting = false
	g.broadcastStateUnsafe()
	g.checkProgressUnsafe()
	return nil
}

// CastVote records or changes a vote. The last missing vote resolves the round.
func (g *ImposterGame) CastVote(voterID, targetID uuid.UUID) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	voter, err := g.participantUnsafe(voterID, PhaseVoting)
	if err != nil {
		return err
	}
	target := g.roster.Find(targetID)
	if target == nil || !target.Active() {
		return fmt.Errorf("vote target %s: %w", targetID, models.ErrNotFound)
	}
	if target.ID == voter.ID {
		return fmt.Errorf("cannot vote for yourself: %w", models.ErrForbidden)
	}

	t := target.ID
	voter.VoteTarget = &t
	g.logAction(voter.UserID, "cast_vote", map[string]interface{}{"targetPlayerId": t})
	g.broadcastStateUnsafe()
	g.checkProgressUnsafe()
	return nil
}

// GuessWord lets an imposter end the game by naming the word. The comparison
// ignores case and surrounding whitespace.
func (g *ImposterGame) GuessWord(playerID uuid.UUID, guess string) (bool, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	p := g.roster.Find(playerID)
	if p == nil {
		return false, fmt.Errorf("player %s: %w", playerID, models.ErrNotFound)
	}
	if !g.phase.InGame() {
		return false, fmt.Errorf("no round in progress: %w", models.ErrInvalidPhase)
	}
	if !p.IsImposter || !p.Active() {
		return false, fmt.Errorf("only an imposter can guess the word: %w", models.ErrForbidden)
	}

	correct := strings.EqualFold(strings.TrimSpace(guess), strings.TrimSpace(g.currentWord))

	g.cancelTimersUnsafe()
	g.phase = PhaseResults
	g.logger().WithFields(log.Fields{"player": p.ID, "correct": correct}).Info("word guessed")
	g.logAction(p.UserID, "guess_word", map[string]interface{}{"guess": guess, "correct": correct})

	g.broadcastUnsafe(GameEvent{Type: EventWordGuessResult, Payload: GuessResultPayload{
		Phase:        g.phase,
		ImposterName: p.Username,
		GuessedWord:  guess,
		CorrectWord:  g.currentWord,
		WasCorrect:   correct,
	}})
	g.broadcastStateUnsafe()
	g.reportWinnersUnsafe(correct)
	return correct, nil
}

// Restart returns the lobby to the lobby phase and clears every transient flag. Host only.
func (g *ImposterGame) Restart(actorID uuid.UUID) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if _, err := g.requireHostUnsafe(actorID); err != nil {
		return err
	}
	if g.phase == PhaseLobby {
		return fmt.Errorf("no game to restart: %w", models.ErrInvalidPhase)
	}

	g.cancelTimersUnsafe()
	for _, p := range g.roster.Players() {
		p.resetForLobby()
	}
	g.phase = PhaseLobby
	g.currentWord = ""
	g.speakingOrder, g.speakingIDs = nil, nil
	g.speakerIndex = -1
	g.timeRemaining = 0
	g.roundNumber = 0
	g.votingFrom = ""
	g.hints = make(map[uuid.UUID]string)

	g.logger().Info("game restarted")
	g.logAction(uuid.Nil, "game_restart", nil)
	g.broadcastUnsafe(GameEvent{Type: EventGameRestarted, Payload: phasePayload{Phase: PhaseLobby}})
	g.broadcastStateUnsafe()
	return nil
}

// Close ends the lobby on the host's request. Members are notified and pending timers voided.
func (g *ImposterGame) Close(actorID uuid.UUID) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if _, err := g.requireHostUnsafe(actorID); err != nil {
		return err
	}
	g.broadcastUnsafe(GameEvent{Type: EventLobbyClosed, Payload: map[string]interface{}{"lobbyId": g.LobbyID}})
	g.shutdownUnsafe("closed by host")
	return nil
}

// CloseIfEmpty shuts the game down when nobody is left. It returns true if the game is closed afterwards.
func (g *ImposterGame) CloseIfEmpty() bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.roster.Len() == 0 {
		g.shutdownUnsafe("empty")
	}
	return g.closed
}

// CloseIfAbandoned shuts the game down when every player has been unreachable since before cutoff.
func (g *ImposterGame) CloseIfAbandoned(cutoff time.Time) bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.roster.AllUnreachableSince(cutoff) {
		g.shutdownUnsafe("abandoned")
	}
	return g.closed
}

// Closed reports whether the lobby has been shut down.
func (g *ImposterGame) Closed() bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.closed
}

// View returns the current public snapshot.
func (g *ImposterGame) View() LobbyView {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.viewUnsafe()
}

// Record returns the full persisted form of the lobby.
func (g *ImposterGame) Record() models.LobbyRecord {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.recordUnsafe()
}

// Phase returns the current phase.
func (g *ImposterGame) Phase() Phase {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.phase
}

// Settings returns a copy of the current settings.
func (g *ImposterGame) Settings() Settings {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.settings
}

// PlayerCount returns the number of players in the roster.
func (g *ImposterGame) PlayerCount() int {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.roster.Len()
}

// checkProgressUnsafe fires the transition whose "everyone signalled" condition now holds.
// Always evaluated against the current roster. Assumes lock is held.
func (g *ImposterGame) checkProgressUnsafe() {
	if g.closed || g.endIfUnplayableUnsafe() {
		return
	}
	active := g.roster.Active()
	if len(active) == 0 {
		return
	}

	all := func(pred func(p *Player) bool) bool {
		for _, p := range active {
			if !pred(p) {
				return false
			}
		}
		return true
	}

	switch g.phase {
	case PhaseWordReveal:
		if all(func(p *Player) bool { return p.IsReady }) {
			g.beginSpeakingRoundUnsafe()
		}
	case PhaseDiscussion:
		if all(func(p *Player) bool { return p.ReadyForVoting }) {
			g.enterVotingUnsafe()
		}
	case PhaseWordTimeWaiting:
		if all(func(p *Player) bool { return p.ReadyForVoting }) {
			g.enterVotingUnsafe()
		} else if all(func(p *Player) bool { return p.ReadyForNextRound }) {
			g.startRoundUnsafe(EventNextRound, g.settings.ImposterCount(len(active)))
		}
	case PhaseVoting:
		if all(func(p *Player) bool { return p.VoteTarget != nil }) {
			g.resolveVotesUnsafe()
		}
	}
}

// startRoundUnsafe draws a fresh word and imposters among the active players, resets the
// round flags and sends each player its private role as event type ev. Assumes lock is held.
func (g *ImposterGame) startRoundUnsafe(ev GameEventType, imposters int) {
	g.cancelTimersUnsafe()

	active := g.roster.Active()
	g.roster.ResetRoundFlags()

	ids := make([]uuid.UUID, 0, imposters)
	for _, i := range g.rng.Perm(len(active))[:imposters] {
		ids = append(ids, active[i].ID)
	}
	g.roster.AssignRoles(ids)

	g.currentWord = g.words.RandomWord(g.rng)
	g.hints = make(map[uuid.UUID]string, len(ids))
	if g.settings.ImposterHint {
		for _, id := range ids {
			g.hints[id] = ImposterHint(g.currentWord, g.rng)
		}
	}

	g.roundNumber++
	g.phase = PhaseWordReveal
	g.speakingOrder, g.speakingIDs = nil, nil
	g.speakerIndex = -1
	g.timeRemaining = 0
	g.votingFrom = ""

	g.logger().WithFields(log.Fields{"round": g.roundNumber, "imposters": len(ids), "players": len(active)}).Info("round started")
	g.logAction(uuid.Nil, "round_start", map[string]interface{}{"round": g.roundNumber, "imposters": ids})

	for _, p := range g.roster.Players() {
		g.sendToPlayerUnsafe(p.ID, GameEvent{Type: ev, Payload: g.rolePayloadUnsafe(p)})
	}
	g.broadcastStateUnsafe()
}

// beginSpeakingRoundUnsafe fixes the speaking order and moves on from word-reveal. Assumes lock is held.
func (g *ImposterGame) beginSpeakingRoundUnsafe() {
	g.cancelTimersUnsafe()

	order := g.roster.Active()
	if g.settings.RandomOrder {
		g.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}
	g.speakingOrder = make([]string, len(order))
	g.speakingIDs = make([]uuid.UUID, len(order))
	for i, p := range order {
		g.speakingOrder[i] = p.Username
		g.speakingIDs[i] = p.ID
	}

	if g.settings.WordTimeMode {
		g.enterCountdownUnsafe()
		return
	}

	g.phase = PhaseDiscussion
	for _, p := range g.roster.Players() {
		p.ReadyForVoting = false
	}
	g.logAction(uuid.Nil, "discussion_start", map[string]interface{}{"speakingOrder": g.speakingOrder})
	g.broadcastUnsafe(GameEvent{Type: EventDiscussionPhase, Payload: phasePayload{
		Phase:         g.phase,
		SpeakingOrder: g.speakingOrder,
		RoundNumber:   g.roundNumber,
	}})
	g.broadcastStateUnsafe()
}

// enterVotingUnsafe opens the vote, remembering where to return to on a tie. Assumes lock is held.
func (g *ImposterGame) enterVotingUnsafe() {
	g.cancelTimersUnsafe()
	g.votingFrom = g.phase
	g.phase = PhaseVoting
	for _, p := range g.roster.Players() {
		p.VoteTarget = nil
	}
	g.logAction(uuid.Nil, "voting_start", nil)
	g.broadcastUnsafe(GameEvent{Type: EventVotingPhase, Payload: phasePayload{Phase: g.phase, RoundNumber: g.roundNumber}})
	g.broadcastStateUnsafe()
}

// shutdownUnsafe marks the game closed and voids any pending timer. Assumes lock is held.
func (g *ImposterGame) shutdownUnsafe(reason string) {
	if g.closed {
		return
	}
	g.cancelTimersUnsafe()
	g.closed = true
	g.logger().WithField("reason", reason).Info("lobby shut down")
	g.logAction(uuid.Nil, "lobby_closed", map[string]interface{}{"reason": reason})
}

// requireHostUnsafe returns the acting player if they are the host. Assumes lock is held.
func (g *ImposterGame) requireHostUnsafe(actorID uuid.UUID) (*Player, error) {
	if g.closed {
		return nil, fmt.Errorf("lobby %s is closed: %w", g.Code, models.ErrNotFound)
	}
	p := g.roster.Find(actorID)
	if p == nil {
		return nil, fmt.Errorf("player %s: %w", actorID, models.ErrNotFound)
	}
	if !p.IsHost {
		return nil, fmt.Errorf("only the host can do that: %w", models.ErrForbidden)
	}
	return p, nil
}

// participantUnsafe resolves an active player, optionally requiring a phase. Assumes lock is held.
func (g *ImposterGame) participantUnsafe(playerID uuid.UUID, phase Phase) (*Player, error) {
	p := g.roster.Find(playerID)
	if p == nil || g.closed {
		return nil, fmt.Errorf("player %s: %w", playerID, models.ErrNotFound)
	}
	if phase != "" && g.phase != phase {
		return nil, fmt.Errorf("not accepted during %s: %w", g.phase, models.ErrInvalidPhase)
	}
	if !p.Active() {
		return nil, fmt.Errorf("player is not part of this game: %w", models.ErrForbidden)
	}
	return p, nil
}

// broadcastStateUnsafe pushes the public snapshot and hands it to the state hook. Assumes lock is held.
func (g *ImposterGame) broadcastStateUnsafe() {
	view := g.viewUnsafe()
	g.broadcastUnsafe(GameEvent{Type: EventLobbyUpdated, Payload: view})
	if g.OnStateChange != nil {
		g.version++
		g.OnStateChange(view, g.recordUnsafe())
	}
}

// broadcastUnsafe sends an event to every member. Assumes lock is held.
func (g *ImposterGame) broadcastUnsafe(ev GameEvent) {
	if g.BroadcastFn == nil {
		g.logger().WithField("event", ev.Type).Debug("BroadcastFn is nil, dropping event")
		return
	}
	g.BroadcastFn(ev)
}

// sendToPlayerUnsafe sends an event to one player. Assumes lock is held.
func (g *ImposterGame) sendToPlayerUnsafe(playerID uuid.UUID, ev GameEvent) {
	if g.BroadcastToPlayerFn == nil {
		g.logger().WithFields(log.Fields{"event": ev.Type, "player": playerID}).Debug("BroadcastToPlayerFn is nil, dropping event")
		return
	}
	g.BroadcastToPlayerFn(playerID, ev)
}

// recordUnsafe renders the full state for persistence. Assumes lock is held.
func (g *ImposterGame) recordUnsafe() models.LobbyRecord {
	rec := models.LobbyRecord{
		ID:        g.LobbyID,
		Code:      g.Code,
		Settings:  g.settings.asMap(),
		CreatedAt: g.CreatedAt,
		Version:   g.version,
		GameState: models.GameStateRecord{
			Phase:         string(g.phase),
			CurrentWord:   g.currentWord,
			SpeakingOrder: append([]string(nil), g.speakingOrder...),
			RoundNumber:   g.roundNumber,
			VotesRevealed: g.phase == PhaseResults,
		},
	}
	if h := g.roster.Host(); h != nil {
		rec.HostID = h.UserID
	}
	for _, p := range g.roster.Players() {
		rec.Players = append(rec.Players, p.toRecord())
	}
	return rec
}

// reportStatsUnsafe hands statistics deltas to the recorder without blocking the game. Assumes lock is held.
func (g *ImposterGame) reportStatsUnsafe(reports map[uuid.UUID]models.GameStats) {
	if g.stats == nil || len(reports) == 0 {
		return
	}
	stats := g.stats
	lobbyLog := g.logger()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for userID, s := range reports {
			if err := stats.RecordGameStats(ctx, userID, s); err != nil {
				lobbyLog.WithError(err).WithField("user", userID).Warn("failed to record game stats")
			}
		}
	}()
}

func (g *ImposterGame) logger() *log.Entry {
	return log.WithFields(log.Fields{"lobby": g.Code, "phase": g.phase})
}
