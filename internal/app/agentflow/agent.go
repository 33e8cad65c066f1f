package agentflow

import (
	"context"

	"github.com/agribharat/agribharat-api/internal/domain"
)

// Agent is one step of a sequential flow.
type Agent interface {
	Name() string
	Run(ctx context.Context, in AgentInput) (AgentOutput, error)
}

// AgentInput carries the farmer's request plus what earlier agents produced.
// Notes is keyed by agent name.
type AgentInput struct {
	Question string
	Image    *domain.Image
	Language domain.Language
	Previous string
	Notes    map[string]string
}

type AgentOutput struct {
	Reply string
}
