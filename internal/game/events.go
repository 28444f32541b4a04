// internal/game/events.go
package game

import "github.com/google/uuid"

// GameEventType names an event pushed to clients.
type GameEventType string

const (
	EventAuthenticated     GameEventType = "authenticated"
	EventLobbyCreated      GameEventType = "lobby-created"
	EventLobbyJoined       GameEventType = "lobby-joined"
	EventLobbyLeft         GameEventType = "lobby-left"
	EventLobbyUpdated      GameEventType = "lobby-updated" // public snapshot
	EventLobbyClosed       GameEventType = "lobby-closed"
	EventHostTransferred   GameEventType = "host-transferred" // private, to the new host
	EventGameStarted       GameEventType = "game-started"     // private role payload
	EventRoleSync          GameEventType = "role-sync"        // private role payload on reconnect
	EventDiscussionPhase   GameEventType = "discussion-phase"
	EventWordTimeCountdown GameEventType = "word-time-countdown"
	EventWordTimeSpeaking  GameEventType = "word-time-speaking"
	EventWordTimeWaiting   GameEventType = "word-time-waiting"
	EventNextRound         GameEventType = "next-round" // private role payload
	EventVotingPhase       GameEventType = "voting-phase"
	EventVotingResults     GameEventType = "voting-results"
	EventVotingTied        GameEventType = "voting-tied"
	EventSurvivalNextRound GameEventType = "survival-next-round" // private role payload
	EventSurvivalGameEnded GameEventType = "survival-game-ended"
	EventWordGuessResult   GameEventType = "word-guess-result"
	EventGameEnded         GameEventType = "game-ended" // round abandoned after departures
	EventGameRestarted     GameEventType = "game-restarted"
	EventError             GameEventType = "error"
)

// GameEvent is the envelope of every server-to-client message.
type GameEvent struct {
	Type    GameEventType `json:"type"`
	Payload interface{}   `json:"payload,omitempty"`
}

// ErrorPayload carries a user-facing rejection.
type ErrorPayload struct {
	Message string `json:"message"`
}

// NewErrorEvent builds an error event with the given message.
func NewErrorEvent(msg string) GameEvent {
	return GameEvent{Type: EventError, Payload: ErrorPayload{Message: msg}}
}

// RolePayload is the private part of a round: only its owner ever receives it.
type RolePayload struct {
	Phase        Phase   `json:"phase"`
	Word         *string `json:"word"`
	IsImposter   bool    `json:"isImposter"`
	ImposterHint string  `json:"imposterHint,omitempty"`
	RoundNumber  int     `json:"roundNumber"`
}

type phasePayload struct {
	Phase         Phase    `json:"phase"`
	SpeakingOrder []string `json:"speakingOrder,omitempty"`
	RoundNumber   int      `json:"roundNumber,omitempty"`
}

type countdownPayload struct {
	Phase         Phase    `json:"phase"`
	SpeakingOrder []string `json:"speakingOrder"`
	TimeRemaining int      `json:"timeRemaining"`
	RoundNumber   int      `json:"roundNumber"`
}

type speakingPayload struct {
	Phase          Phase  `json:"phase"`
	CurrentSpeaker string `json:"currentSpeaker"`
	TimeRemaining  int    `json:"timeRemaining"`
	RoundNumber    int    `json:"roundNumber"`
}

// VotingResultsPayload is broadcast when a regular game ends by vote.
type VotingResultsPayload struct {
	Phase              Phase          `json:"phase"`
	EliminatedPlayer   string         `json:"eliminatedPlayer"`
	EliminatedPlayerID uuid.UUID      `json:"eliminatedPlayerId"`
	WasImposter        bool           `json:"wasImposter"`
	VoteCount          map[string]int `json:"voteCount"`
	Word               string         `json:"word"`
	ImposterName       string         `json:"imposterName"`
	ImposterNames      []string       `json:"imposterNames"`
}

// VotingTiedPayload is broadcast when no single player received the most votes.
type VotingTiedPayload struct {
	Phase       Phase          `json:"phase"`
	VoteCount   map[string]int `json:"voteCount"`
	TiedPlayers []string       `json:"tiedPlayers"`
}

// SurvivalEndedPayload is broadcast when survival mode runs down to its last players.
type SurvivalEndedPayload struct {
	Phase    Phase    `json:"phase"`
	Winners  []string `json:"winners"`
	LastWord string   `json:"lastWord"`
}

// GameEndedPayload is broadcast when departures leave a round that cannot go on.
type GameEndedPayload struct {
	Phase         Phase    `json:"phase"`
	Reason        string   `json:"reason"`
	Word          string   `json:"word"`
	ImposterNames []string `json:"imposterNames"`
	CrewWon       bool     `json:"crewWon"`
}

// GuessResultPayload is broadcast after an imposter guesses the word.
type GuessResultPayload struct {
	Phase        Phase  `json:"phase"`
	ImposterName string `json:"imposterName"`
	GuessedWord  string `json:"guessedWord"`
	CorrectWord  string `json:"correctWord"`
	WasCorrect   bool   `json:"wasCorrect"`
}
