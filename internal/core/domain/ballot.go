package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Choice string

const (
	ChoiceFor     Choice = "FOR"
	ChoiceAgainst Choice = "AGAINST"
)

func ParseChoice(s string) (Choice, error) {
	switch Choice(strings.ToUpper(strings.TrimSpace(s))) {
	case ChoiceFor:
		return ChoiceFor, nil
	case ChoiceAgainst:
		return ChoiceAgainst, nil
	}
	return "", ErrInvalidChoice
}

func (c Choice) Valid() bool {
	return c == ChoiceFor || c == ChoiceAgainst
}

type Ballot struct {
	ID        uuid.UUID `json:"id"`
	MeasureID uuid.UUID `json:"measure_id"`
	VoterID   uuid.UUID `json:"voter_id"`
	Choice    Choice    `json:"choice"`
	CastAt    time.Time `json:"cast_at"`
}

type Tally struct {
	MeasureID uuid.UUID `json:"measure_id"`
	For       int64     `json:"for"`
	Against   int64     `json:"against"`
	Total     int64     `json:"total"`
}
