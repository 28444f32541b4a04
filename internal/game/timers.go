// internal/game/timers.go
package game

import (
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// scheduleUnsafe runs step after d, replacing any pending timer. The step is skipped
// if the game was closed or moved on (generation bumped) before it fires.
// Assumes lock is held.
func (g *ImposterGame) scheduleUnsafe(d time.Duration, step func()) {
	if g.timer != nil {
		g.timer.Stop()
	}
	gen := g.generation

	var timer *time.Timer
	timer = time.AfterFunc(d, func() {
		g.Mu.Lock()
		defer g.Mu.Unlock()

		if g.closed || g.generation != gen || g.timer != timer {
			log.WithField("lobby", g.Code).Debug("stale timer fired, ignoring")
			return
		}
		g.timer = nil
		step()
	})
	g.timer = timer
}

// cancelTimersUnsafe voids every pending timer callback. Assumes lock is held.
func (g *ImposterGame) cancelTimersUnsafe() {
	g.generation++
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}

// enterCountdownUnsafe starts the 3..0 countdown before the first speaker. Assumes lock is held.
func (g *ImposterGame) enterCountdownUnsafe() {
	g.phase = PhaseWordTimeCountdown
	g.speakerIndex = -1
	for _, p := range g.roster.Players() {
		p.ReadyForVoting = false
		p.ReadyForNextRound = false
	}
	g.timeRemaining = countdownTicks
	g.logAction(uuid.Nil, "word_time_start", map[string]interface{}{"speakingOrder": g.speakingOrder})
	g.emitCountdownUnsafe()
	g.scheduleUnsafe(g.tickInterval, g.countdownStepUnsafe)
}

func (g *ImposterGame) countdownStepUnsafe() {
	g.timeRemaining--
	if g.timeRemaining < 0 {
		g.beginSpeakerUnsafe(0)
		return
	}
	g.emitCountdownUnsafe()
	g.scheduleUnsafe(g.tickInterval, g.countdownStepUnsafe)
}

// beginSpeakerUnsafe hands the word to the i-th entry of the speaking order, skipping
// players that left or were eliminated. Past the last speaker the round waits for
// the players' decision. Assumes lock is held.
func (g *ImposterGame) beginSpeakerUnsafe(i int) {
	for i < len(g.speakingIDs) {
		if p := g.roster.Find(g.speakingIDs[i]); p != nil && p.Active() {
			break
		}
		i++
	}
	if i >= len(g.speakingIDs) {
		g.enterWaitingUnsafe()
		return
	}

	g.phase = PhaseWordTimeSpeaking
	g.speakerIndex = i
	g.timeRemaining = g.settings.WordTimeSeconds
	g.emitSpeakingUnsafe()
	g.scheduleUnsafe(g.tickInterval, g.speakingStepUnsafe)
}

func (g *ImposterGame) speakingStepUnsafe() {
	g.timeRemaining--
	if g.timeRemaining < 0 {
		// Nobody holds the word during the pause between two speakers.
		next := g.speakerIndex + 1
		g.speakerIndex = -1
		g.timeRemaining = 0
		g.broadcastStateUnsafe()
		g.scheduleUnsafe(g.speakerPause, func() { g.beginSpeakerUnsafe(next) })
		return
	}
	g.emitSpeakingUnsafe()
	g.scheduleUnsafe(g.tickInterval, g.speakingStepUnsafe)
}

func (g *ImposterGame) enterWaitingUnsafe() {
	g.phase = PhaseWordTimeWaiting
	g.speakerIndex = -1
	g.timeRemaining = 0
	g.broadcastUnsafe(GameEvent{Type: EventWordTimeWaiting, Payload: phasePayload{
		Phase:       g.phase,
		RoundNumber: g.roundNumber,
	}})
	g.broadcastStateUnsafe()
}

func (g *ImposterGame) emitCountdownUnsafe() {
	g.broadcastUnsafe(GameEvent{Type: EventWordTimeCountdown, Payload: countdownPayload{
		Phase:         g.phase,
		SpeakingOrder: g.speakingOrder,
		TimeRemaining: g.timeRemaining,
		RoundNumber:   g.roundNumber,
	}})
	g.broadcastStateUnsafe()
}

func (g *ImposterGame) emitSpeakingUnsafe() {
	g.broadcastUnsafe(GameEvent{Type: EventWordTimeSpeaking, Payload: speakingPayload{
		Phase:          g.phase,
		CurrentSpeaker: g.speakingOrder[g.speakerIndex],
		TimeRemaining:  g.timeRemaining,
		RoundNumber:    g.roundNumber,
	}})
	g.broadcastStateUnsafe()
}
