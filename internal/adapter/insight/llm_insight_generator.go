package insight

import (
	"context"
	"fmt"
	"strings"
	"time"

	"leadsync/internal/config"
	"leadsync/internal/domain"
	"leadsync/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

// caller is the subset of the langchaingo model surface this adapter needs.
// Both ollama.LLM and openai.LLM satisfy it.
type caller interface {
	Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error)
}

// llmInsightGenerator implements domain.InsightGenerator
type llmInsightGenerator struct {
	llmClient caller
}

// NewLLMInsightGenerator wires an insight generator from configuration.
// Returns nil when no LLM source is configured; callers treat a nil
// generator as "insights disabled".
func NewLLMInsightGenerator(cfg config.InsightConfig) (domain.InsightGenerator, error) {
	switch cfg.Source {
	case "":
		return nil, nil
	case "ollama":
		llm, err := ollama.New(
			ollama.WithServerURL(cfg.ServerURL),
			ollama.WithModel(cfg.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize ollama client: %w", err)
		}
		return &llmInsightGenerator{llmClient: llm}, nil
	case "openai":
		llm, err := openai.New(
			openai.WithToken(cfg.APIKey),
			openai.WithModel(cfg.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize openai client: %w", err)
		}
		return &llmInsightGenerator{llmClient: llm}, nil
	default:
		return nil, fmt.Errorf("unknown insight source: %s", cfg.Source)
	}
}

// GenerateInsight implements domain.InsightGenerator
func (g *llmInsightGenerator) GenerateInsight(ctx context.Context, assessment *domain.Assessment) (string, error) {
	l := logger.Get()

	breakdown := assessment.ScoreBreakdown
	if breakdown == nil {
		breakdown = &domain.ScoreBreakdown{}
	}

	prompt := fmt.Sprintf(`You are an AI readiness advisor. Write a short narrative summary (3 to 5 sentences, plain prose, no lists, no markdown) of this organization's AI readiness assessment result.

Overall score: %.1f out of 100
Readiness category: %s
Value creation score: %.1f
Customer safety score: %.1f
Risk management score: %.1f
Governance score: %.1f

Rules:
1. Address the reader directly as "your organization"
2. Name the strongest and the weakest dimension
3. Do not repeat the raw numbers more than once
4. Do not mention that you are an AI`,
		assessment.TotalScore,
		assessment.Category,
		breakdown.ValueCreation,
		breakdown.CustomerSafety,
		breakdown.RiskManagement,
		breakdown.Governance,
	)

	callCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	response, err := g.llmClient.Call(callCtx, prompt, llms.WithTemperature(0.3))
	if err != nil {
		l.Error("Failed to generate insight", zap.String("assessment_id", assessment.ID), zap.Error(err))
		return "", fmt.Errorf("insight generation failed: %w", err)
	}

	cleaned := strings.TrimSpace(response)
	if thinkStart := strings.Index(cleaned, "<think>"); thinkStart != -1 {
		if thinkEnd := strings.Index(cleaned, "</think>"); thinkEnd > thinkStart {
			cleaned = strings.TrimSpace(cleaned[:thinkStart] + cleaned[thinkEnd+len("</think>"):])
		}
	}

	return cleaned, nil
}
