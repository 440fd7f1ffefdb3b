package brackets

import "errors"

// Ошибки валидации: вызывающий код может исправить ввод и повторить.
var (
	ErrInvalidWinCount      = errors.New("win count out of range")
	ErrNotParticipant       = errors.New("competitor does not play in this duel")
	ErrDuelTwoWinners       = errors.New("both competitors cannot reach the winning count")
	ErrByeDuelImmutable     = errors.New("bye duel result cannot be changed")
	ErrDuelNotFound         = errors.New("duel not found in current round")
	ErrRoundClosed          = errors.New("duel belongs to a closed round")
	ErrRoundNotDecided      = errors.New("not every duel of the current round is decided")
	ErrTournamentStarted    = errors.New("competitors cannot change after the first round")
	ErrTournamentNotStarted = errors.New("tournament has no rounds yet")
	ErrTournamentFinished   = errors.New("tournament is finished")
	ErrNotEnoughCompetitors = errors.New("at least two competitors are required")
	ErrDuplicateCompetitor  = errors.New("competitor listed twice")
	ErrInvalidCompetitor    = errors.New("invalid competitor name")
)

// ErrPairingExhausted means no perfect pairing exists under the forbidden pairs.
// It ends a tournament normally.
var ErrPairingExhausted = errors.New("no valid pairing left")

// ErrInvariantViolation marks corrupted input or a bug; the enclosing operation must abort.
var ErrInvariantViolation = errors.New("pairing invariant violated")

var ErrRankingDidNotConverge = errors.New("ranking power iteration did not converge")
