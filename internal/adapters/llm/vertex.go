package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/agribharat/agribharat-api/internal/domain"
)

type VertexClient struct {
	client    *genai.Client
	modelName string
}

// NewVertexClient creates an LLMClient based on Vertex AI (Gemini).
func NewVertexClient(ctx context.Context, projectID, location, modelName string) (*VertexClient, error) {
	if projectID == "" || location == "" {
		return nil, fmt.Errorf("vertex: project and location must be set")
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Vertex AI client: %w", err)
	}

	return &VertexClient{
		client:    client,
		modelName: modelName,
	}, nil
}

// GenerateReply implements domain.LLMClient using Vertex AI.
func (v *VertexClient) GenerateReply(ctx context.Context, prompt domain.Prompt) (string, error) {
	contents := []*genai.Content{buildContent(prompt)}

	temp := float32(0.4)
	topP := float32(0.9)
	outputTokens := int32(8192)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(prompt.System, genai.RoleUser),
		Temperature:       &temp,
		TopP:              &topP,
		MaxOutputTokens:   outputTokens,
	}

	res, err := v.client.Models.GenerateContent(ctx, v.modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("vertex generate content: %w", err)
	}

	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("vertex returned empty text")
	}

	return text, nil
}

// buildContent puts the image part (if any) before the text so the model
// reads the question with the picture in view.
func buildContent(prompt domain.Prompt) *genai.Content {
	if prompt.Image == nil {
		return genai.NewContentFromText(prompt.User, genai.RoleUser)
	}
	parts := []*genai.Part{
		genai.NewPartFromBytes(prompt.Image.Data, prompt.Image.MimeType),
		genai.NewPartFromText(prompt.User),
	}
	return genai.NewContentFromParts(parts, genai.RoleUser)
}
