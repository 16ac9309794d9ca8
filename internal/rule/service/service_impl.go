package service

import (
	ruledomain "github.com/smallbiznis/fulfillment-billing/internal/rule/domain"
	"go.uber.org/zap"
)

// Evaluator decides whether rules and rule groups hold for an order.
// It holds no mutable state and is safe for concurrent use.
type Evaluator struct {
	log      *zap.Logger
	maxDepth int
}

// NewEvaluator returns an Evaluator that refuses trees deeper than
// maxDepth. A non-positive maxDepth selects the default limit.
func NewEvaluator(log *zap.Logger, maxDepth int) *Evaluator {
	if log == nil {
		log = zap.NewNop()
	}
	if maxDepth <= 0 {
		maxDepth = ruledomain.DefaultMaxDepth
	}
	return &Evaluator{
		log:      log.Named("rule.service"),
		maxDepth: maxDepth,
	}
}

// MaxDepth is the deepest rule tree the evaluator accepts.
func (e *Evaluator) MaxDepth() int {
	return e.maxDepth
}
