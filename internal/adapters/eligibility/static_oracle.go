package eligibility

import (
	"context"
	"math/rand/v2"

	"github.com/vncsmyrnk/assembly/internal/core/ports"
)

const DefaultAbleRatio = 0.7

type RandomOracle struct {
	ableRatio float64
	float     func() float64
}

// NewRandomOracle answers "able" with probability ableRatio. It stands in
// for the external service in development.
func NewRandomOracle(ableRatio float64) ports.EligibilityOracle {
	if ableRatio < 0 || ableRatio > 1 {
		ableRatio = DefaultAbleRatio
	}
	return &RandomOracle{ableRatio: ableRatio, float: rand.Float64}
}

func (o *RandomOracle) Check(_ context.Context, _ string) (bool, error) {
	return o.float() < o.ableRatio, nil
}

type AllowOracle struct{}

func NewAllowOracle() ports.EligibilityOracle {
	return AllowOracle{}
}

func (AllowOracle) Check(context.Context, string) (bool, error) {
	return true, nil
}
