package agentflow

import (
	"context"
	"fmt"

	"github.com/agribharat/agribharat-api/internal/domain"
)

// PlannerAgent turns a diagnosis into a treatment and prevention plan.
type PlannerAgent struct {
	llm domain.LLMClient
}

func NewPlannerAgent(llm domain.LLMClient) *PlannerAgent {
	return &PlannerAgent{llm: llm}
}

func (a *PlannerAgent) Name() string {
	return "planner"
}

func (a *PlannerAgent) Run(ctx context.Context, in AgentInput) (AgentOutput, error) {
	prompt := domain.Prompt{
		System: "You are an agronomist. Given a crop diagnosis, write a practical treatment plan: " +
			"immediate steps, organic and chemical options with typical doses available in India, " +
			"safety precautions, and how to prevent recurrence next season.",
		User: fmt.Sprintf("Diagnosis:\n%s\n\nFarmer's question: %s", in.Previous, in.Question),
	}

	reply, err := a.llm.GenerateReply(ctx, prompt)
	if err != nil {
		return AgentOutput{}, err
	}
	return AgentOutput{Reply: reply}, nil
}
