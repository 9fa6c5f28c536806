package ai

import (
	"context"

	"github.com/brlegal/clausula-ai/internal/domain/analysis"
)

// Analyzer produces the free-text clause analysis for extracted contract text.
type Analyzer interface {
	Analyze(ctx context.Context, text, uid string) (string, error)
}

// Classifier partitions a clause analysis into safe and risky clauses.
type Classifier interface {
	Classify(ctx context.Context, clauseText string) (Buckets, error)
}

// Buckets is the structured classification result.
type Buckets struct {
	Safe  []analysis.Clause `json:"seguras"`
	Risky []analysis.Clause `json:"riscos"`
}
