package dsbft

import "fmt"

// Error wraps an internal failure with the phase (round index, or -1 for
// configuration-time errors) and the party the failure concerns, following
// the culprit-carrying error shape used across the protocol's round chain.
type Error struct {
	cause    error
	phase    int
	victim   *PartyID
	culprits []PartyID
}

// NewError constructs an Error. culprits is optional; it names the parties
// responsible when the failure was caused by another party's message rather
// than the victim's own state.
func NewError(cause error, phase int, victim *PartyID, culprits ...PartyID) *Error {
	return &Error{cause: cause, phase: phase, victim: victim, culprits: culprits}
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Cause() error { return e.cause }

func (e *Error) Phase() int { return e.phase }

func (e *Error) Victim() *PartyID { return e.victim }

func (e *Error) Culprits() []PartyID { return e.culprits }

func (e *Error) Error() string {
	if e == nil || e.cause == nil {
		return "dsbft: nil error"
	}
	if len(e.culprits) > 0 {
		return fmt.Sprintf("phase %d, party %v, culprits %v: %s", e.phase, e.victim, e.culprits, e.cause.Error())
	}
	return fmt.Sprintf("phase %d, party %v: %s", e.phase, e.victim, e.cause.Error())
}
