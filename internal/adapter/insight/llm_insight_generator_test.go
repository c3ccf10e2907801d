package insight

import (
	"context"
	"errors"
	"strings"
	"testing"

	"leadsync/internal/config"
	"leadsync/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/tmc/langchaingo/llms"
)

type fakeLLM struct {
	response string
	err      error
	prompt   string
}

func (f *fakeLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	f.prompt = prompt
	return f.response, f.err
}

func completedAssessment() *domain.Assessment {
	return &domain.Assessment{
		ID:         "assessment1",
		TotalScore: 67.5,
		Category:   "ai_builder",
		ScoreBreakdown: &domain.ScoreBreakdown{
			ValueCreation:  80,
			CustomerSafety: 60,
			RiskManagement: 65,
			Governance:     55,
		},
	}
}

func TestGenerateInsight(t *testing.T) {
	fake := &fakeLLM{response: "Your organization shows solid momentum on value creation."}
	g := &llmInsightGenerator{llmClient: fake}

	insight, err := g.GenerateInsight(context.Background(), completedAssessment())
	assert.NoError(t, err)
	assert.Equal(t, "Your organization shows solid momentum on value creation.", insight)
	assert.Contains(t, fake.prompt, "67.5")
	assert.Contains(t, fake.prompt, "ai_builder")
}

func TestGenerateInsight_StripsThinkBlock(t *testing.T) {
	fake := &fakeLLM{response: "<think>internal reasoning</think>\nYour organization is on track."}
	g := &llmInsightGenerator{llmClient: fake}

	insight, err := g.GenerateInsight(context.Background(), completedAssessment())
	assert.NoError(t, err)
	assert.Equal(t, "Your organization is on track.", insight)
	assert.False(t, strings.Contains(insight, "think"))
}

func TestGenerateInsight_LLMError(t *testing.T) {
	fake := &fakeLLM{err: errors.New("connection refused")}
	g := &llmInsightGenerator{llmClient: fake}

	_, err := g.GenerateInsight(context.Background(), completedAssessment())
	assert.Error(t, err)
}

func TestGenerateInsight_NilBreakdown(t *testing.T) {
	fake := &fakeLLM{response: "ok"}
	g := &llmInsightGenerator{llmClient: fake}

	a := completedAssessment()
	a.ScoreBreakdown = nil
	_, err := g.GenerateInsight(context.Background(), a)
	assert.NoError(t, err)
}

func TestNewLLMInsightGenerator_Disabled(t *testing.T) {
	g, err := NewLLMInsightGenerator(config.InsightConfig{})
	assert.NoError(t, err)
	assert.Nil(t, g)
}

func TestNewLLMInsightGenerator_UnknownSource(t *testing.T) {
	_, err := NewLLMInsightGenerator(config.InsightConfig{Source: "watson"})
	assert.Error(t, err)
}
