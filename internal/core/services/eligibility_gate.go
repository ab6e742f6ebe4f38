package services

import (
	"context"
	"log/slog"

	"github.com/vncsmyrnk/assembly/internal/core/domain"
	"github.com/vncsmyrnk/assembly/internal/core/ports"
)

type eligibilityGate struct {
	oracle ports.EligibilityOracle
	logger *slog.Logger
}

// NewEligibilityGate wraps the external oracle. The gate makes exactly one
// call per check and never lets an oracle error escape: anything other than
// a clean yes/no answer is Unavailable.
func NewEligibilityGate(oracle ports.EligibilityOracle, logger *slog.Logger) ports.EligibilityGate {
	return &eligibilityGate{
		oracle: oracle,
		logger: resolveLogger(logger),
	}
}

func (g *eligibilityGate) Check(ctx context.Context, nationalID string) domain.Eligibility {
	if !domain.WellFormedNationalID(nationalID) {
		g.logger.Warn("eligibility unavailable: malformed national id")
		return domain.Unavailable
	}

	able, err := g.oracle.Check(ctx, nationalID)
	if err != nil {
		g.logger.Warn("eligibility unavailable: oracle call failed", "error", err)
		return domain.Unavailable
	}
	if !able {
		g.logger.Info("eligibility denied by oracle")
		return domain.Ineligible
	}
	return domain.Eligible
}
