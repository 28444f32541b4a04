package game

// Phase is the current stage of a lobby's game.
type Phase string

const (
	PhaseLobby             Phase = "lobby"
	PhaseWordReveal        Phase = "word-reveal"
	PhaseDiscussion        Phase = "discussion"
	PhaseWordTimeCountdown Phase = "word-time-countdown"
	PhaseWordTimeSpeaking  Phase = "word-time-speaking"
	PhaseWordTimeWaiting   Phase = "word-time-waiting"
	PhaseVoting            Phase = "voting"
	PhaseResults           Phase = "results"
)

// InGame reports whether a round is being played, i.e. the phase is neither lobby nor results.
func (p Phase) InGame() bool {
	return p != PhaseLobby && p != PhaseResults
}

// AcceptsReadyForVoting reports whether ready-for-voting signals count in this phase.
func (p Phase) AcceptsReadyForVoting() bool {
	return p == PhaseDiscussion || p == PhaseWordTimeWaiting
}
