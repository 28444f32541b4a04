// internal/game/game_test.go
package game

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/imposter/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWord = "Giraffe"

type fixedWords string

func (w fixedWords) RandomWord(*rand.Rand) string { return string(w) }

// mockBroadcaster collects events instead of sending them over WS.
type mockBroadcaster struct {
	mu           sync.Mutex
	allEvents    []GameEvent               // Events sent to everyone
	playerEvents map[uuid.UUID][]GameEvent // Events sent to specific players
}

func newMockBroadcaster() *mockBroadcaster {
	return &mockBroadcaster{
		playerEvents: make(map[uuid.UUID][]GameEvent),
	}
}

func (mb *mockBroadcaster) broadcastFn(ev GameEvent) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.allEvents = append(mb.allEvents, ev)
}

func (mb *mockBroadcaster) broadcastToPlayerFn(playerID uuid.UUID, ev GameEvent) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.playerEvents[playerID] = append(mb.playerEvents[playerID], ev)
}

func (mb *mockBroadcaster) clear() {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.allEvents = []GameEvent{}
	mb.playerEvents = make(map[uuid.UUID][]GameEvent)
}

// eventsOfType returns the public events of the given type, in order.
func (mb *mockBroadcaster) eventsOfType(typ GameEventType) []GameEvent {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	var out []GameEvent
	for _, ev := range mb.allEvents {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func (mb *mockBroadcaster) getLastPlayerEvent(playerID uuid.UUID) *GameEvent {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	events, ok := mb.playerEvents[playerID]
	if !ok || len(events) == 0 {
		return nil
	}
	return &events[len(events)-1]
}

// mockStats records the statistics deltas reported by the game.
type mockStats struct {
	mu      sync.Mutex
	reports map[uuid.UUID][]models.GameStats
}

func (m *mockStats) RecordGameStats(_ context.Context, userID uuid.UUID, s models.GameStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[userID] = append(m.reports[userID], s)
	return nil
}

func (m *mockStats) get(userID uuid.UUID) []models.GameStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.GameStats(nil), m.reports[userID]...)
}

// setupTestGame creates a lobby game with n joined players. The first player is the host.
func setupTestGame(t *testing.T, n int, configure func(s *Settings)) (*ImposterGame, []uuid.UUID, *mockBroadcaster) {
	t.Helper()
	g := NewImposterGame(uuid.New(), "ABC123", Options{
		Words:        fixedWords(testWord),
		Rand:         rand.New(rand.NewSource(42)),
		TickInterval: 5 * time.Millisecond,
		SpeakerPause: 5 * time.Millisecond,
	})
	mb := newMockBroadcaster()
	g.BroadcastFn = mb.broadcastFn
	g.BroadcastToPlayerFn = mb.broadcastToPlayerFn

	ids := make([]uuid.UUID, n)
	for i := range ids {
		res, err := g.Join(uuid.New(), fmt.Sprintf("player%d", i+1))
		require.NoError(t, err)
		ids[i] = res.PlayerID
	}
	if configure != nil {
		g.Mu.Lock()
		configure(&g.settings)
		g.Mu.Unlock()
	}
	return g, ids, mb
}

func imposters(g *ImposterGame) []uuid.UUID {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	var out []uuid.UUID
	for _, p := range g.roster.Active() {
		if p.IsImposter {
			out = append(out, p.ID)
		}
	}
	return out
}

func activeIDs(g *ImposterGame) []uuid.UUID {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	var out []uuid.UUID
	for _, p := range g.roster.Active() {
		out = append(out, p.ID)
	}
	return out
}

func crewMember(g *ImposterGame) uuid.UUID {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	for _, p := range g.roster.Active() {
		if !p.IsImposter {
			return p.ID
		}
	}
	return uuid.Nil
}

func readyAll(t *testing.T, g *ImposterGame) {
	t.Helper()
	for _, id := range activeIDs(g) {
		require.NoError(t, g.MarkReady(id))
	}
}

func readyForVotingAll(t *testing.T, g *ImposterGame) {
	t.Helper()
	for _, id := range activeIDs(g) {
		require.NoError(t, g.ReadyForVoting(id))
	}
}

// voteOut makes every active player vote for target; target votes for someone else.
func voteOut(t *testing.T, g *ImposterGame, target uuid.UUID) {
	t.Helper()
	active := activeIDs(g)
	var other uuid.UUID
	for _, id := range active {
		if id != target {
			other = id
			break
		}
	}
	for _, id := range active {
		to := target
		if id == target {
			to = other
		}
		require.NoError(t, g.CastVote(id, to))
	}
}

func TestStartGameRequiresHostAndPlayers(t *testing.T) {
	g, ids, _ := setupTestGame(t, 2, nil)

	err := g.StartGame(ids[1])
	assert.ErrorIs(t, err, models.ErrForbidden)

	err = g.StartGame(ids[0])
	assert.ErrorIs(t, err, models.ErrInsufficientPlayers)
	assert.Equal(t, PhaseLobby, g.Phase())

	g2, ids2, _ := setupTestGame(t, 3, func(s *Settings) { s.TwoImposters = true })
	assert.ErrorIs(t, g2.StartGame(ids2[0]), models.ErrInsufficientPlayers, "two imposters need 4 players")
}

// TestStartGameSendsPrivateRoles checks role assignment and that the word never leaks.
func TestStartGameSendsPrivateRoles(t *testing.T) {
	g, ids, mb := setupTestGame(t, 4, nil)
	mb.clear()

	require.NoError(t, g.StartGame(ids[0]))
	assert.Equal(t, PhaseWordReveal, g.Phase())

	imps := imposters(g)
	require.Len(t, imps, 1)

	for _, id := range ids {
		ev := mb.getLastPlayerEvent(id)
		require.NotNil(t, ev)
		assert.Equal(t, EventGameStarted, ev.Type)
		role, ok := ev.Payload.(RolePayload)
		require.True(t, ok)
		assert.Equal(t, 1, role.RoundNumber)
		if id == imps[0] {
			assert.True(t, role.IsImposter)
			assert.Nil(t, role.Word, "imposter must not receive the word")
		} else {
			assert.False(t, role.IsImposter)
			require.NotNil(t, role.Word)
			assert.Equal(t, testWord, *role.Word)
		}
	}

	readyAll(t, g)
	assert.Equal(t, PhaseDiscussion, g.Phase())

	mb.mu.Lock()
	defer mb.mu.Unlock()
	for _, ev := range mb.allEvents {
		data, err := json.Marshal(ev)
		require.NoError(t, err)
		assert.NotContains(t, string(data), testWord, "public event %s leaked the word", ev.Type)
		assert.NotContains(t, string(data), "isImposter")
	}
}

func TestImposterHintOnlyForImposters(t *testing.T) {
	g, ids, mb := setupTestGame(t, 3, func(s *Settings) { s.ImposterHint = true })
	require.NoError(t, g.StartGame(ids[0]))

	imp := imposters(g)[0]
	role := mb.getLastPlayerEvent(imp).Payload.(RolePayload)
	require.NotEmpty(t, role.ImposterHint)
	assert.Equal(t, "G", role.ImposterHint[:1])
	assert.Len(t, role.ImposterHint, len(testWord))

	crew := mb.getLastPlayerEvent(crewMember(g)).Payload.(RolePayload)
	assert.Empty(t, crew.ImposterHint)
}

// TestFullRoundVoteOutImposter walks a regular game from start to results.
func TestFullRoundVoteOutImposter(t *testing.T) {
	g, ids, mb := setupTestGame(t, 4, nil)
	require.NoError(t, g.StartGame(ids[0]))

	require.NoError(t, g.MarkReady(ids[0]))
	require.NoError(t, g.MarkReady(ids[0]), "ready is idempotent")
	assert.Equal(t, PhaseWordReveal, g.Phase())
	readyAll(t, g)

	require.Equal(t, PhaseDiscussion, g.Phase())
	discussion := mb.eventsOfType(EventDiscussionPhase)
	require.Len(t, discussion, 1)
	assert.Len(t, discussion[0].Payload.(phasePayload).SpeakingOrder, 4)

	assert.ErrorIs(t, g.CastVote(ids[0], ids[1]), models.ErrInvalidPhase)

	readyForVotingAll(t, g)
	require.Equal(t, PhaseVoting, g.Phase())

	imp := imposters(g)[0]
	voteOut(t, g, imp)
	assert.Equal(t, PhaseResults, g.Phase())

	results := mb.eventsOfType(EventVotingResults)
	require.Len(t, results, 1)
	payload := results[0].Payload.(VotingResultsPayload)
	assert.True(t, payload.WasImposter)
	assert.Equal(t, imp, payload.EliminatedPlayerID)
	assert.Equal(t, testWord, payload.Word)
	assert.Equal(t, 3, payload.VoteCount[imp.String()])
	assert.Len(t, payload.ImposterNames, 1)
}

func TestVoteValidation(t *testing.T) {
	g, ids, _ := setupTestGame(t, 3, nil)
	require.NoError(t, g.StartGame(ids[0]))
	readyAll(t, g)
	readyForVotingAll(t, g)

	assert.ErrorIs(t, g.CastVote(ids[0], ids[0]), models.ErrForbidden)
	assert.ErrorIs(t, g.CastVote(ids[0], uuid.New()), models.ErrNotFound)
	assert.ErrorIs(t, g.CastVote(uuid.New(), ids[1]), models.ErrNotFound)

	// A vote can be changed until the last one is in.
	require.NoError(t, g.CastVote(ids[0], ids[1]))
	require.NoError(t, g.CastVote(ids[0], ids[2]))
	assert.Equal(t, PhaseVoting, g.Phase())

	view := g.View()
	assert.True(t, view.Players[0].HasVoted)
	assert.False(t, view.Players[1].HasVoted)
}

// TestVoteTieReverts checks that a shared maximum eliminates nobody.
func TestVoteTieReverts(t *testing.T) {
	g, ids, mb := setupTestGame(t, 4, nil)
	require.NoError(t, g.StartGame(ids[0]))
	readyAll(t, g)
	readyForVotingAll(t, g)

	require.NoError(t, g.CastVote(ids[0], ids[2]))
	require.NoError(t, g.CastVote(ids[1], ids[2]))
	require.NoError(t, g.CastVote(ids[2], ids[0]))
	require.NoError(t, g.CastVote(ids[3], ids[0]))

	assert.Equal(t, PhaseDiscussion, g.Phase())
	tied := mb.eventsOfType(EventVotingTied)
	require.Len(t, tied, 1)
	assert.ElementsMatch(t, []string{"player1", "player3"}, tied[0].Payload.(VotingTiedPayload).TiedPlayers)

	for _, p := range g.View().Players {
		assert.False(t, p.IsEliminated)
		assert.False(t, p.HasVoted)
		assert.False(t, p.ReadyForVoting)
	}

	// The players can go straight back to voting.
	readyForVotingAll(t, g)
	assert.Equal(t, PhaseVoting, g.Phase())
}

func TestSurvivalMode(t *testing.T) {
	g, ids, mb := setupTestGame(t, 4, func(s *Settings) { s.SurvivalMode = true })
	require.NoError(t, g.StartGame(ids[0]))
	readyAll(t, g)
	readyForVotingAll(t, g)

	victim := crewMember(g)
	voteOut(t, g, victim)

	require.Equal(t, PhaseWordReveal, g.Phase(), "survival continues with 3 players")
	assert.Equal(t, 2, g.View().GameState.RoundNumber)
	assert.Len(t, activeIDs(g), 3)
	assert.Len(t, imposters(g), 1)

	ev := mb.getLastPlayerEvent(victim)
	require.NotNil(t, ev)
	assert.Equal(t, EventSurvivalNextRound, ev.Type)
	assert.Nil(t, ev.Payload.(RolePayload).Word, "eliminated players get no word")

	assert.ErrorIs(t, g.MarkReady(victim), models.ErrForbidden)

	readyAll(t, g)
	readyForVotingAll(t, g)
	voteOut(t, g, activeIDs(g)[0])

	assert.Equal(t, PhaseResults, g.Phase())
	ended := mb.eventsOfType(EventSurvivalGameEnded)
	require.Len(t, ended, 1)
	payload := ended[0].Payload.(SurvivalEndedPayload)
	assert.Len(t, payload.Winners, 2)
	assert.Equal(t, testWord, payload.LastWord)
}

func TestGuessWord(t *testing.T) {
	g, ids, mb := setupTestGame(t, 3, nil)

	_, err := g.GuessWord(ids[0], testWord)
	assert.ErrorIs(t, err, models.ErrInvalidPhase)

	require.NoError(t, g.StartGame(ids[0]))

	_, err = g.GuessWord(crewMember(g), testWord)
	assert.ErrorIs(t, err, models.ErrForbidden)

	correct, err := g.GuessWord(imposters(g)[0], "  gIRAFFE ")
	require.NoError(t, err)
	assert.True(t, correct)
	assert.Equal(t, PhaseResults, g.Phase())

	results := mb.eventsOfType(EventWordGuessResult)
	require.Len(t, results, 1)
	payload := results[0].Payload.(GuessResultPayload)
	assert.True(t, payload.WasCorrect)
	assert.Equal(t, testWord, payload.CorrectWord)
}

func TestRestartResetsEverything(t *testing.T) {
	g, ids, mb := setupTestGame(t, 4, nil)
	assert.ErrorIs(t, g.Restart(ids[0]), models.ErrInvalidPhase)

	require.NoError(t, g.StartGame(ids[0]))
	readyAll(t, g)
	readyForVotingAll(t, g)
	voteOut(t, g, crewMember(g))
	require.Equal(t, PhaseResults, g.Phase())

	assert.ErrorIs(t, g.Restart(ids[1]), models.ErrForbidden)
	require.NoError(t, g.Restart(ids[0]))

	assert.Equal(t, PhaseLobby, g.Phase())
	assert.Len(t, mb.eventsOfType(EventGameRestarted), 1)
	view := g.View()
	assert.Equal(t, 0, view.GameState.RoundNumber)
	assert.Empty(t, view.GameState.SpeakingOrder)
	for _, p := range view.Players {
		assert.False(t, p.IsEliminated)
		assert.False(t, p.IsReady)
		assert.False(t, p.HasVoted)
	}
	assert.Empty(t, imposters(g))

	// A fresh game can start right away.
	require.NoError(t, g.StartGame(ids[0]))
	assert.Equal(t, 1, g.View().GameState.RoundNumber)
}

// TestLeaveReevaluatesReadiness checks that a departure can complete a pending condition
// and hands the host role to the earliest remaining player.
func TestLeaveReevaluatesReadiness(t *testing.T) {
	// Two imposters keep the round playable whoever leaves.
	g, ids, mb := setupTestGame(t, 4, func(s *Settings) { s.TwoImposters = true })
	require.NoError(t, g.StartGame(ids[0]))

	for _, id := range ids[1:] {
		require.NoError(t, g.MarkReady(id))
	}
	require.Equal(t, PhaseWordReveal, g.Phase())

	res, err := g.Leave(ids[0])
	require.NoError(t, err)
	assert.Equal(t, 3, res.Remaining)
	assert.Equal(t, ids[1], res.NewHostID)
	assert.Equal(t, PhaseDiscussion, g.Phase())

	ev := mb.getLastPlayerEvent(ids[1])
	require.NotNil(t, ev)
	assert.Equal(t, EventHostTransferred, ev.Type)

	view := g.View()
	assert.Equal(t, ids[1], view.HostID)
	hosts := 0
	for _, p := range view.Players {
		if p.IsHost {
			hosts++
		}
	}
	assert.Equal(t, 1, hosts)

	_, err = g.Leave(ids[0])
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestLeaveDuringVotingDropsVotesForLeaver(t *testing.T) {
	g, ids, _ := setupTestGame(t, 4, func(s *Settings) { s.TwoImposters = true })
	require.NoError(t, g.StartGame(ids[0]))
	readyAll(t, g)
	readyForVotingAll(t, g)

	require.NoError(t, g.CastVote(ids[0], ids[3]))
	require.NoError(t, g.CastVote(ids[1], ids[2]))
	require.NoError(t, g.CastVote(ids[2], ids[1]))

	_, err := g.Leave(ids[3])
	require.NoError(t, err)
	assert.Equal(t, PhaseVoting, g.Phase(), "player1 has to vote again")

	require.NoError(t, g.CastVote(ids[0], ids[1]))
	assert.NotEqual(t, PhaseVoting, g.Phase())
}

func TestLeaveBelowMinimumEndsGame(t *testing.T) {
	g, ids, mb := setupTestGame(t, 3, func(s *Settings) {
		s.WordTimeMode = true
		s.WordTimeSeconds = 3
	})
	require.NoError(t, g.StartGame(ids[0]))
	readyAll(t, g)
	require.Eventually(t, func() bool { return g.Phase() == PhaseWordTimeWaiting }, 2*time.Second, 5*time.Millisecond)

	_, err := g.Leave(crewMember(g))
	require.NoError(t, err)
	assert.Equal(t, PhaseResults, g.Phase())

	ended := mb.eventsOfType(EventGameEnded)
	require.Len(t, ended, 1)
	payload := ended[0].Payload.(GameEndedPayload)
	assert.Equal(t, reasonTooFewPlayers, payload.Reason)
	assert.False(t, payload.CrewWon)
	assert.Equal(t, testWord, payload.Word)
	assert.Len(t, payload.ImposterNames, 1)

	for _, id := range activeIDs(g) {
		assert.ErrorIs(t, g.ReadyForNextRound(id), models.ErrInvalidPhase)
	}
	assert.Equal(t, 1, g.View().GameState.RoundNumber, "no round with fewer than three players")
	assert.Len(t, imposters(g), 1)
}

func TestImposterLeavingHandsCrewTheWin(t *testing.T) {
	stats := &mockStats{reports: make(map[uuid.UUID][]models.GameStats)}
	g, ids, mb := setupTestGame(t, 4, nil)
	g.stats = stats
	require.NoError(t, g.StartGame(ids[0]))
	readyAll(t, g)

	crew := crewMember(g)
	g.Mu.Lock()
	crewUser := g.roster.Find(crew).UserID
	g.Mu.Unlock()

	_, err := g.Leave(imposters(g)[0])
	require.NoError(t, err)
	assert.Equal(t, PhaseResults, g.Phase())

	ended := mb.eventsOfType(EventGameEnded)
	require.Len(t, ended, 1)
	payload := ended[0].Payload.(GameEndedPayload)
	assert.Equal(t, reasonImpostersLeft, payload.Reason)
	assert.True(t, payload.CrewWon)

	require.Eventually(t, func() bool { return len(stats.get(crewUser)) == 2 }, time.Second, 5*time.Millisecond)
	assert.Contains(t, stats.get(crewUser), models.GameStats{Won: true})
	assert.ErrorIs(t, g.ReadyForVoting(crew), models.ErrInvalidPhase)
}

func TestSurvivalEndsWhenLeaveLeavesTwo(t *testing.T) {
	g, ids, mb := setupTestGame(t, 3, func(s *Settings) { s.SurvivalMode = true })
	require.NoError(t, g.StartGame(ids[0]))
	readyAll(t, g)
	readyForVotingAll(t, g)

	_, err := g.Leave(crewMember(g))
	require.NoError(t, err)
	assert.Equal(t, PhaseResults, g.Phase())

	ended := mb.eventsOfType(EventSurvivalGameEnded)
	require.Len(t, ended, 1)
	assert.Len(t, ended[0].Payload.(SurvivalEndedPayload).Winners, 2)

	remaining := activeIDs(g)
	require.Len(t, remaining, 2)
	assert.ErrorIs(t, g.CastVote(remaining[0], remaining[1]), models.ErrInvalidPhase)
}

func TestSurvivalImposterLeavingDrawsNewImposter(t *testing.T) {
	g, ids, mb := setupTestGame(t, 4, func(s *Settings) { s.SurvivalMode = true })
	require.NoError(t, g.StartGame(ids[0]))
	readyAll(t, g)

	_, err := g.Leave(imposters(g)[0])
	require.NoError(t, err)

	assert.Equal(t, PhaseWordReveal, g.Phase())
	assert.Equal(t, 2, g.View().GameState.RoundNumber)
	assert.Len(t, activeIDs(g), 3)
	assert.Len(t, imposters(g), 1)
	for _, id := range activeIDs(g) {
		ev := mb.getLastPlayerEvent(id)
		require.NotNil(t, ev)
		assert.Equal(t, EventSurvivalNextRound, ev.Type)
	}
}

func TestJoinDuringGameSpectates(t *testing.T) {
	g, ids, mb := setupTestGame(t, 3, nil)
	require.NoError(t, g.StartGame(ids[0]))

	res, err := g.Join(uuid.New(), "latecomer")
	require.NoError(t, err)
	g.AnnounceJoin(res.PlayerID)

	assert.ErrorIs(t, g.MarkReady(res.PlayerID), models.ErrForbidden)
	assert.Nil(t, mb.getLastPlayerEvent(res.PlayerID), "spectators get no role sync")

	readyAll(t, g)
	assert.Equal(t, PhaseDiscussion, g.Phase(), "spectators do not hold up the round")

	require.NoError(t, g.Restart(ids[0]))
	for _, p := range g.View().Players {
		assert.False(t, p.IsSpectating)
	}
}

func TestReconnectResendsRole(t *testing.T) {
	g, ids, mb := setupTestGame(t, 3, nil)
	require.NoError(t, g.StartGame(ids[0]))

	g.MarkUnreachable(ids[1])
	assert.False(t, g.View().Players[1].Connected)

	g.Mu.Lock()
	userID := g.roster.Find(ids[1]).UserID
	g.Mu.Unlock()

	res, err := g.Join(userID, "player2")
	require.NoError(t, err)
	assert.True(t, res.Reconnected)
	assert.Equal(t, ids[1], res.PlayerID)
	g.AnnounceJoin(res.PlayerID)

	ev := mb.getLastPlayerEvent(ids[1])
	require.NotNil(t, ev)
	assert.Equal(t, EventRoleSync, ev.Type)
	assert.Equal(t, PhaseWordReveal, ev.Payload.(RolePayload).Phase)
	assert.True(t, g.View().Players[1].Connected)
}

func TestUpdateSettings(t *testing.T) {
	g, ids, _ := setupTestGame(t, 3, nil)

	assert.ErrorIs(t, g.UpdateSettings(ids[1], map[string]interface{}{"imposterHint": true}), models.ErrForbidden)
	require.NoError(t, g.UpdateSettings(ids[0], map[string]interface{}{"imposterHint": true, "wordTimeSeconds": float64(30)}))
	assert.True(t, g.Settings().ImposterHint)
	assert.Equal(t, 30, g.Settings().WordTimeSeconds)

	require.NoError(t, g.StartGame(ids[0]))
	assert.ErrorIs(t, g.UpdateSettings(ids[0], map[string]interface{}{"randomOrder": false}), models.ErrInvalidPhase)
}

// TestWordTimeSequence runs the countdown and every speaker turn with short ticks.
func TestWordTimeSequence(t *testing.T) {
	g, ids, mb := setupTestGame(t, 3, func(s *Settings) {
		s.WordTimeMode = true
		s.WordTimeSeconds = 3
	})
	require.NoError(t, g.StartGame(ids[0]))
	readyAll(t, g)

	require.Eventually(t, func() bool { return g.Phase() == PhaseWordTimeWaiting }, 2*time.Second, 5*time.Millisecond)

	var ticks []int
	for _, ev := range mb.eventsOfType(EventWordTimeCountdown) {
		ticks = append(ticks, ev.Payload.(countdownPayload).TimeRemaining)
	}
	assert.Equal(t, []int{3, 2, 1, 0}, ticks)

	speaking := mb.eventsOfType(EventWordTimeSpeaking)
	require.Len(t, speaking, 3*4)
	order := g.View().GameState.SpeakingOrder
	for i, ev := range speaking {
		p := ev.Payload.(speakingPayload)
		assert.Equal(t, order[i/4], p.CurrentSpeaker)
		assert.Equal(t, 3-i%4, p.TimeRemaining)
	}

	assert.ErrorIs(t, g.MarkReady(ids[0]), models.ErrInvalidPhase)

	for _, id := range ids {
		require.NoError(t, g.ReadyForNextRound(id))
	}
	assert.Equal(t, PhaseWordReveal, g.Phase())
	assert.Equal(t, 2, g.View().GameState.RoundNumber)
	ev := mb.getLastPlayerEvent(ids[0])
	require.NotNil(t, ev)
	assert.Equal(t, EventNextRound, ev.Type)
}

func TestSpeakerPauseClearsSpeaker(t *testing.T) {
	g, ids, _ := setupTestGame(t, 3, func(s *Settings) {
		s.WordTimeMode = true
		s.WordTimeSeconds = 3
	})
	g.Mu.Lock()
	g.speakerPause = 2 * time.Second
	g.Mu.Unlock()

	require.NoError(t, g.StartGame(ids[0]))
	readyAll(t, g)

	require.Eventually(t, func() bool {
		g.Mu.Lock()
		defer g.Mu.Unlock()
		return g.phase == PhaseWordTimeSpeaking && g.speakerIndex == -1
	}, time.Second, time.Millisecond)

	view := g.View()
	assert.Equal(t, PhaseWordTimeSpeaking, view.GameState.Phase)
	assert.Nil(t, view.GameState.CurrentSpeaker)
	g.Mu.Lock()
	assert.Equal(t, 0, g.timeRemaining)
	g.Mu.Unlock()

	require.NoError(t, g.Restart(ids[0]))
}

func TestWordTimeVotingTieReturnsToWaiting(t *testing.T) {
	g, ids, _ := setupTestGame(t, 4, func(s *Settings) {
		s.WordTimeMode = true
		s.WordTimeSeconds = 3
	})
	require.NoError(t, g.StartGame(ids[0]))
	readyAll(t, g)
	require.Eventually(t, func() bool { return g.Phase() == PhaseWordTimeWaiting }, 2*time.Second, 5*time.Millisecond)

	readyForVotingAll(t, g)
	require.Equal(t, PhaseVoting, g.Phase())

	require.NoError(t, g.CastVote(ids[0], ids[2]))
	require.NoError(t, g.CastVote(ids[1], ids[2]))
	require.NoError(t, g.CastVote(ids[2], ids[0]))
	require.NoError(t, g.CastVote(ids[3], ids[0]))
	assert.Equal(t, PhaseWordTimeWaiting, g.Phase())
}

// TestStaleTimerIgnored makes sure a timer scheduled before a restart never fires into the new state.
func TestStaleTimerIgnored(t *testing.T) {
	g, ids, mb := setupTestGame(t, 3, func(s *Settings) { s.WordTimeMode = true })
	g.Mu.Lock()
	g.tickInterval = 30 * time.Millisecond
	g.Mu.Unlock()

	require.NoError(t, g.StartGame(ids[0]))
	readyAll(t, g)
	require.Equal(t, PhaseWordTimeCountdown, g.Phase())

	require.NoError(t, g.Restart(ids[0]))
	mb.clear()

	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, PhaseLobby, g.Phase())
	assert.Empty(t, mb.eventsOfType(EventWordTimeCountdown))
	assert.Empty(t, mb.eventsOfType(EventWordTimeSpeaking))
}

func TestCloseVoidsTimers(t *testing.T) {
	g, ids, mb := setupTestGame(t, 3, func(s *Settings) { s.WordTimeMode = true })
	require.NoError(t, g.StartGame(ids[0]))
	readyAll(t, g)

	assert.ErrorIs(t, g.Close(ids[1]), models.ErrForbidden)
	require.NoError(t, g.Close(ids[0]))
	assert.True(t, g.Closed())
	assert.Len(t, mb.eventsOfType(EventLobbyClosed), 1)

	mb.clear()
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, mb.eventsOfType(EventWordTimeCountdown))

	_, err := g.Join(uuid.New(), "late")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestStatsReported(t *testing.T) {
	stats := &mockStats{reports: make(map[uuid.UUID][]models.GameStats)}
	g, ids, _ := setupTestGame(t, 3, nil)
	g.stats = stats

	require.NoError(t, g.StartGame(ids[0]))
	imp := imposters(g)[0]
	crew := crewMember(g)

	g.Mu.Lock()
	impUser := g.roster.Find(imp).UserID
	crewUser := g.roster.Find(crew).UserID
	g.Mu.Unlock()

	require.Eventually(t, func() bool { return len(stats.get(impUser)) == 1 && len(stats.get(crewUser)) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, models.GameStats{Played: true, WasImposter: true}, stats.get(impUser)[0])
	assert.Equal(t, models.GameStats{Played: true}, stats.get(crewUser)[0])

	_, err := g.GuessWord(imp, testWord)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(stats.get(impUser)) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, models.GameStats{Won: true, WasImposter: true}, stats.get(impUser)[1])
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, stats.get(crewUser), 1, "the crew lost")
}

func TestStateChangeHookVersions(t *testing.T) {
	g, ids, _ := setupTestGame(t, 3, nil)

	var mu sync.Mutex
	var versions []int64
	g.OnStateChange = func(_ LobbyView, rec models.LobbyRecord) {
		mu.Lock()
		defer mu.Unlock()
		versions = append(versions, rec.Version)
	}

	require.NoError(t, g.StartGame(ids[0]))
	readyAll(t, g)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, versions)
	for i := 1; i < len(versions); i++ {
		assert.Greater(t, versions[i], versions[i-1])
	}
	rec := g.Record()
	assert.Equal(t, string(PhaseDiscussion), rec.GameState.Phase)
	assert.Equal(t, testWord, rec.GameState.CurrentWord)
	assert.Len(t, rec.Players, 3)
}
