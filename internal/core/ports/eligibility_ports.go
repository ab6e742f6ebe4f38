package ports

import (
	"context"
	"time"

	"github.com/vncsmyrnk/assembly/internal/core/domain"
)

// EligibilityOracle is the external classifier. It answers true for
// "able to vote", false for "unable", or an error.
type EligibilityOracle interface {
	Check(ctx context.Context, nationalID string) (bool, error)
}

type EligibilityGate interface {
	Check(ctx context.Context, nationalID string) domain.Eligibility
}

type Clock interface {
	Now() time.Time
}
