package agentflow

import (
	"context"
	"fmt"

	"github.com/agribharat/agribharat-api/internal/domain"
	"github.com/agribharat/agribharat-api/internal/observability"
)

// ReporterAgent merges the diagnosis and the plan into one answer written in
// the farmer's language.
type ReporterAgent struct {
	llm domain.LLMClient
}

func NewReporterAgent(llm domain.LLMClient) *ReporterAgent {
	return &ReporterAgent{llm: llm}
}

func (a *ReporterAgent) Name() string {
	return "reporter"
}

func (a *ReporterAgent) Run(ctx context.Context, in AgentInput) (AgentOutput, error) {
	log := observability.LoggerFromContext(ctx).With("agent", a.Name())

	prompt := domain.Prompt{
		System: fmt.Sprintf(
			"You write crop advisories for farmers. Combine the diagnosis and treatment plan below into one "+
				"clear report with the headings Diagnosis, Treatment and Prevention. "+
				"Use simple words. Respond only in %s.", in.Language),
		User: fmt.Sprintf("Question: %s\n\nDiagnosis:\n%s\n\nTreatment plan:\n%s",
			in.Question, in.Notes["diagnostician"], in.Notes["planner"]),
	}

	reply, err := a.llm.GenerateReply(ctx, prompt)
	if err != nil {
		log.Error("reporter agent error", "error", err)
		return AgentOutput{}, err
	}
	return AgentOutput{Reply: reply}, nil
}
