package agentflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agribharat/agribharat-api/internal/domain"
)

// recordingLLM replies with a fixed script and keeps every prompt it saw.
type recordingLLM struct {
	replies []string
	prompts []domain.Prompt
	failAt  int
}

func (r *recordingLLM) GenerateReply(_ context.Context, p domain.Prompt) (string, error) {
	r.prompts = append(r.prompts, p)
	n := len(r.prompts)
	if r.failAt == n {
		return "", errors.New("model overloaded")
	}
	return r.replies[n-1], nil
}

func TestDiseaseOrchestratorChainsAgents(t *testing.T) {
	llm := &recordingLLM{replies: []string{"early blight", "spray copper", "final report"}}
	img := &domain.Image{Data: []byte("jpeg"), MimeType: "image/jpeg"}

	reply, err := NewDiseaseOrchestrator(llm).Run(context.Background(), AgentInput{
		Question: "What disease is this?",
		Image:    img,
		Language: domain.LanguageHindi,
	})
	require.NoError(t, err)
	assert.Equal(t, "final report", reply)

	require.Len(t, llm.prompts, 3)
	assert.Same(t, img, llm.prompts[0].Image, "diagnostician sees the photo")
	assert.Nil(t, llm.prompts[1].Image)
	assert.Contains(t, llm.prompts[1].User, "early blight")
	assert.Contains(t, llm.prompts[2].User, "early blight")
	assert.Contains(t, llm.prompts[2].User, "spray copper")
	assert.Contains(t, llm.prompts[2].System, "Hindi")
}

func TestOrchestratorStopsOnFailure(t *testing.T) {
	llm := &recordingLLM{replies: []string{"diag", "", ""}, failAt: 2}

	_, err := NewDiseaseOrchestrator(llm).Run(context.Background(), AgentInput{
		Question: "q",
		Image:    &domain.Image{Data: []byte("x"), MimeType: "image/png"},
		Language: domain.LanguageEnglish,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "agent planner failed")
	assert.Contains(t, err.Error(), "model overloaded")
	assert.Len(t, llm.prompts, 2)
}

func TestOrchestratorRequiresAgents(t *testing.T) {
	_, err := NewOrchestrator().Run(context.Background(), AgentInput{})
	assert.Error(t, err)
}

func TestDiagnosticianRequiresImage(t *testing.T) {
	_, err := NewDiagnosticianAgent(&recordingLLM{}).Run(context.Background(), AgentInput{Question: "q"})
	assert.Error(t, err)
}
