package ports

import (
	"context"

	"github.com/emiliopalmerini/dissolvo/internal/domain"
)

// ResultRepository persists analysis runs and the factor results computed
// for each R–T pair.
type ResultRepository interface {
	SaveRun(ctx context.Context, run *domain.Run) error
	FinishRun(ctx context.Context, run *domain.Run) error
	SavePairResult(ctx context.Context, res *domain.PairResult) error
	ListRecent(ctx context.Context, limit int) ([]domain.PairResult, error)
}
