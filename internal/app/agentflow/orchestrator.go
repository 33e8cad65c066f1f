package agentflow

import (
	"context"
	"fmt"
	"time"

	"github.com/agribharat/agribharat-api/internal/domain"
	"github.com/agribharat/agribharat-api/internal/observability"
)

// Orchestrator is responsible for running multiple agents in sequence.
type Orchestrator struct {
	agents []Agent
}

func NewOrchestrator(agents ...Agent) *Orchestrator {
	return &Orchestrator{agents: agents}
}

// NewDiseaseOrchestrator constructs a flow with Diagnostician -> Planner -> Reporter.
func NewDiseaseOrchestrator(llm domain.LLMClient) *Orchestrator {
	return NewOrchestrator(
		NewDiagnosticianAgent(llm),
		NewPlannerAgent(llm),
		NewReporterAgent(llm),
	)
}

// Run executes the chain of agents sequentially and returns the last reply.
func (o *Orchestrator) Run(ctx context.Context, in AgentInput) (string, error) {
	if len(o.agents) == 0 {
		return "", fmt.Errorf("no agents configured in orchestrator")
	}

	log := observability.LoggerFromContext(ctx).With("language", in.Language)
	log.Info("orchestrator started", "agents_count", len(o.agents))

	if in.Notes == nil {
		in.Notes = make(map[string]string, len(o.agents))
	}

	var out AgentOutput
	for _, ag := range o.agents {
		start := time.Now()
		log.Info("agent run start", "agent", ag.Name())

		var err error
		out, err = ag.Run(ctx, in)
		if err != nil {
			log.Error("agent failed", "agent", ag.Name(), "error", err)
			return "", fmt.Errorf("agent %s failed: %w", ag.Name(), err)
		}

		log.Info("agent run end", "agent", ag.Name(), "elapsed_ms", time.Since(start).Milliseconds())

		// The output of an agent is the input for the next agent
		in.Previous = out.Reply
		in.Notes[ag.Name()] = out.Reply
	}

	log.Info("orchestrator end")
	return out.Reply, nil
}
