// internal/game/resolve.go
package game

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/imposter/internal/models"
	log "github.com/sirupsen/logrus"
)

// resolveVotesUnsafe tallies the finished vote and applies the outcome. Assumes lock is held.
func (g *ImposterGame) resolveVotesUnsafe() {
	active := g.roster.Active()
	valid := make(map[uuid.UUID]bool, len(active))
	for _, p := range active {
		valid[p.ID] = true
	}

	result := TallyVotes(active, valid)
	counts := make(map[string]int, len(result.Counts))
	for id, n := range result.Counts {
		counts[id.String()] = n
	}
	g.logAction(uuid.Nil, "voting_resolved", map[string]interface{}{"voteCount": counts, "eliminated": result.Eliminated})

	if !result.Decided() {
		g.revertVotingUnsafe(result, counts)
		return
	}

	eliminated := g.roster.Find(result.Eliminated)
	eliminated.IsEliminated = true
	g.logger().WithFields(log.Fields{
		"player":      eliminated.ID,
		"wasImposter": eliminated.IsImposter,
		"votes":       result.MaxVotes,
	}).Info("player voted out")

	if g.settings.SurvivalMode {
		g.resolveSurvivalUnsafe()
		return
	}

	g.cancelTimersUnsafe()
	g.phase = PhaseResults

	var imposterNames []string
	imposterName := ""
	for _, p := range g.roster.Players() {
		if !p.IsImposter {
			continue
		}
		imposterNames = append(imposterNames, p.Username)
		if imposterName == "" || (p.ID == eliminated.ID) {
			imposterName = p.Username
		}
	}

	g.broadcastUnsafe(GameEvent{Type: EventVotingResults, Payload: VotingResultsPayload{
		Phase:              g.phase,
		EliminatedPlayer:   eliminated.Username,
		EliminatedPlayerID: eliminated.ID,
		WasImposter:        eliminated.IsImposter,
		VoteCount:          counts,
		Word:               g.currentWord,
		ImposterName:       imposterName,
		ImposterNames:      imposterNames,
	}})
	g.broadcastStateUnsafe()

	// The crew wins by voting out an imposter, otherwise the imposters win.
	g.reportWinnersUnsafe(!eliminated.IsImposter)
}

// revertVotingUnsafe handles a vote without a single leader: nobody is eliminated
// and the players go back to where voting started. Assumes lock is held.
func (g *ImposterGame) revertVotingUnsafe(result VoteResult, counts map[string]int) {
	back := g.votingFrom
	if back != PhaseDiscussion && back != PhaseWordTimeWaiting {
		back = PhaseDiscussion
	}
	for _, p := range g.roster.Players() {
		p.VoteTarget = nil
		p.ReadyForVoting = false
		p.ReadyForNextRound = false
	}
	g.phase = back

	if len(result.Tied) > 0 {
		names := make([]string, 0, len(result.Tied))
		for _, id := range result.Tied {
			if p := g.roster.Find(id); p != nil {
				names = append(names, p.Username)
			}
		}
		g.logger().WithField("tied", names).Info("vote tied, nobody eliminated")
		g.broadcastUnsafe(GameEvent{Type: EventVotingTied, Payload: VotingTiedPayload{
			Phase:       g.phase,
			VoteCount:   counts,
			TiedPlayers: names,
		}})
	} else {
		g.logger().Warn("vote produced no result")
		g.broadcastUnsafe(NewErrorEvent("The vote could not be resolved, nobody was eliminated"))
	}
	g.broadcastStateUnsafe()
}

// resolveSurvivalUnsafe either starts the next survival round or ends the game once
// only two players remain. Assumes lock is held.
func (g *ImposterGame) resolveSurvivalUnsafe() {
	remaining := g.roster.Active()
	if len(remaining) > 2 {
		g.startRoundUnsafe(EventSurvivalNextRound, 1)

		reports := make(map[uuid.UUID]models.GameStats, 1)
		for _, p := range g.roster.Active() {
			if p.IsImposter {
				reports[p.UserID] = models.GameStats{WasImposter: true}
			}
		}
		g.reportStatsUnsafe(reports)
		return
	}

	g.cancelTimersUnsafe()
	g.phase = PhaseResults

	winners := make([]string, 0, len(remaining))
	reports := make(map[uuid.UUID]models.GameStats, len(remaining))
	for _, p := range remaining {
		winners = append(winners, p.Username)
		reports[p.UserID] = models.GameStats{Won: true, WasImposter: p.IsImposter}
	}
	g.logger().WithField("winners", winners).Info("survival game ended")

	g.broadcastUnsafe(GameEvent{Type: EventSurvivalGameEnded, Payload: SurvivalEndedPayload{
		Phase:    g.phase,
		Winners:  winners,
		LastWord: g.currentWord,
	}})
	g.broadcastStateUnsafe()
	g.reportStatsUnsafe(reports)
}

// reportWinnersUnsafe records a win for every participant on the winning side.
// Spectators took no part and are skipped. Assumes lock is held.
func (g *ImposterGame) reportWinnersUnsafe(impostersWon bool) {
	reports := make(map[uuid.UUID]models.GameStats)
	for _, p := range g.roster.Players() {
		if p.IsSpectating || p.IsImposter != impostersWon {
			continue
		}
		reports[p.UserID] = models.GameStats{Won: true, WasImposter: p.IsImposter}
	}
	g.reportStatsUnsafe(reports)
}

const (
	reasonImpostersLeft = "all imposters left the game"
	reasonTooFewPlayers = "not enough players left"
)

// endIfUnplayableUnsafe stops a round that departures made unplayable. Survival ends
// once two players remain and draws a new imposter if the current one left. A regular
// game needs MinRoundPlayers active players with an imposter among them; losing every
// imposter hands the crew the win, running short of players ends it without a winner.
// It reports whether the round was ended or replaced. Assumes lock is held.
func (g *ImposterGame) endIfUnplayableUnsafe() bool {
	if !g.phase.InGame() {
		return false
	}
	active := g.roster.Active()
	imposters := 0
	for _, p := range active {
		if p.IsImposter {
			imposters++
		}
	}

	if g.settings.SurvivalMode {
		if len(active) > 2 && imposters > 0 {
			return false
		}
		g.logger().WithFields(log.Fields{"players": len(active), "imposters": imposters}).Info("survival round lost players")
		g.resolveSurvivalUnsafe()
		return true
	}

	switch {
	case imposters == 0:
		g.endGameEarlyUnsafe(reasonImpostersLeft, true)
	case len(active) < MinRoundPlayers:
		g.endGameEarlyUnsafe(reasonTooFewPlayers, false)
	default:
		return false
	}
	return true
}

// endGameEarlyUnsafe moves a running game to results without a vote. Assumes lock is held.
func (g *ImposterGame) endGameEarlyUnsafe(reason string, crewWon bool) {
	g.cancelTimersUnsafe()
	g.phase = PhaseResults
	g.speakerIndex = -1
	g.timeRemaining = 0

	var imposterNames []string
	for _, p := range g.roster.Players() {
		if p.IsImposter {
			imposterNames = append(imposterNames, p.Username)
		}
	}

	g.logger().WithFields(log.Fields{"reason": reason, "crewWon": crewWon}).Info("game ended early")
	g.logAction(uuid.Nil, "game_ended", map[string]interface{}{"reason": reason, "crewWon": crewWon})

	g.broadcastUnsafe(GameEvent{Type: EventGameEnded, Payload: GameEndedPayload{
		Phase:         g.phase,
		Reason:        reason,
		Word:          g.currentWord,
		ImposterNames: imposterNames,
		CrewWon:       crewWon,
	}})
	g.broadcastStateUnsafe()

	if crewWon {
		g.reportWinnersUnsafe(false)
	}
}
