package domain

import (
	"time"

	"github.com/google/uuid"
)

type Voter struct {
	ID         uuid.UUID `json:"id"`
	NationalID string    `json:"national_id"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
}

type Eligibility int

const (
	Eligible Eligibility = iota
	Ineligible
	Unavailable
)

func (e Eligibility) String() string {
	switch e {
	case Eligible:
		return "ABLE_TO_VOTE"
	case Ineligible:
		return "UNABLE_TO_VOTE"
	default:
		return "UNAVAILABLE"
	}
}
