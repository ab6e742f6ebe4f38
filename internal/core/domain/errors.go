package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMeasureNotFound    = errors.New("measure not found")
	ErrVoterNotFound      = errors.New("voter not found")
	ErrVoterInactive      = errors.New("voter is inactive")
	ErrVoterNotEligible   = errors.New("voter is not eligible to vote")
	ErrInvalidTransition  = errors.New("invalid session state transition")
	ErrSessionNotOpen     = errors.New("voting session is not open")
	ErrDuplicateVote      = errors.New("voter has already voted on this measure")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrStateConflict      = errors.New("measure state changed concurrently")
	ErrInvalidChoice      = errors.New("invalid ballot choice")
	ErrInvalidMeasure     = errors.New("invalid measure")
	ErrInvalidPage        = errors.New("invalid page")
	ErrInvalidNationalID  = errors.New("invalid national id")
	ErrNationalIDTaken    = errors.New("a voter with this national id already exists")
	ErrSessionAlreadyOpen = fmt.Errorf("%w: voting session is already open", ErrInvalidTransition)
)
