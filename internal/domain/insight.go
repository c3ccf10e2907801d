package domain

import "context"

// InsightGenerator defines the interface (port) for producing a short
// narrative summary of a completed assessment. Implementations are optional;
// the deterministic recommendations never depend on it.
type InsightGenerator interface {
	GenerateInsight(ctx context.Context, assessment *Assessment) (string, error)
}
