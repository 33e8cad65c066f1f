package advisory

import (
	"context"

	"github.com/agribharat/agribharat-api/internal/app/agentflow"
	"github.com/agribharat/agribharat-api/internal/domain"
	"github.com/agribharat/agribharat-api/internal/observability"
)

// Service implements domain.Advisor on top of a language model. Disease
// analysis runs the multi-agent flow; the other capabilities are one call.
type Service struct {
	llm          domain.LLMClient
	orchestrator *agentflow.Orchestrator
}

func NewService(llm domain.LLMClient) *Service {
	return &Service{
		llm:          llm,
		orchestrator: agentflow.NewDiseaseOrchestrator(llm),
	}
}

func (s *Service) AnswerQuestion(ctx context.Context, question string, lang domain.Language) (string, error) {
	observability.LoggerFromContext(ctx).Debug("advisory: crop question", "language", lang)
	return s.llm.GenerateReply(ctx, questionPrompt(question, lang))
}

func (s *Service) AnalyzeDisease(ctx context.Context, image domain.Image, question string, lang domain.Language) (string, error) {
	return s.orchestrator.Run(ctx, agentflow.AgentInput{
		Question: question,
		Image:    &image,
		Language: lang,
	})
}

func (s *Service) AnalyzeMarket(ctx context.Context, cropName string, lang domain.Language) (string, error) {
	observability.LoggerFromContext(ctx).Debug("advisory: market analysis", "crop", cropName, "language", lang)
	return s.llm.GenerateReply(ctx, marketPrompt(cropName, lang))
}

func (s *Service) LookupSchemes(ctx context.Context, schemeQuery string, lang domain.Language) (string, error) {
	observability.LoggerFromContext(ctx).Debug("advisory: scheme lookup", "language", lang)
	return s.llm.GenerateReply(ctx, schemesPrompt(schemeQuery, lang))
}

var _ domain.Advisor = (*Service)(nil)
