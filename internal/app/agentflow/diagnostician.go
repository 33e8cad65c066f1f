package agentflow

import (
	"context"
	"fmt"

	"github.com/agribharat/agribharat-api/internal/domain"
)

// DiagnosticianAgent looks at the crop photo and names the likely problem.
type DiagnosticianAgent struct {
	llm domain.LLMClient
}

func NewDiagnosticianAgent(llm domain.LLMClient) *DiagnosticianAgent {
	return &DiagnosticianAgent{llm: llm}
}

func (a *DiagnosticianAgent) Name() string {
	return "diagnostician"
}

func (a *DiagnosticianAgent) Run(ctx context.Context, in AgentInput) (AgentOutput, error) {
	if in.Image == nil {
		return AgentOutput{}, fmt.Errorf("diagnostician needs an image")
	}

	prompt := domain.Prompt{
		System: "You are a plant pathologist helping Indian smallholder farmers. " +
			"Identify the crop, the most likely disease, pest or deficiency visible in the photo, " +
			"the visible symptoms that support it, and how confident you are. " +
			"If the photo does not show a plant, say so plainly.",
		User:  fmt.Sprintf("Farmer's question: %s", in.Question),
		Image: in.Image,
	}

	reply, err := a.llm.GenerateReply(ctx, prompt)
	if err != nil {
		return AgentOutput{}, err
	}
	return AgentOutput{Reply: reply}, nil
}
