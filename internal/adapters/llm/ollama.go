package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/agribharat/agribharat-api/internal/domain"
)

// OllamaClient talks to a local Ollama server. The model must be vision
// capable (llava, llama3.2-vision, ...) for disease analysis.
type OllamaClient struct {
	client *api.Client
	model  string
}

// NewOllamaClient reads OLLAMA_HOST like the ollama CLI does.
func NewOllamaClient(model string) (*OllamaClient, error) {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return nil, fmt.Errorf("creating ollama client: %w", err)
	}
	return NewOllamaClientWith(client, model), nil
}

func NewOllamaClientWith(client *api.Client, model string) *OllamaClient {
	if model == "" {
		model = "llava:latest"
	}
	return &OllamaClient{client: client, model: model}
}

// GenerateReply implements domain.LLMClient with a single non-streamed chat.
func (o *OllamaClient) GenerateReply(ctx context.Context, prompt domain.Prompt) (string, error) {
	user := api.Message{Role: "user", Content: prompt.User}
	if prompt.Image != nil {
		user.Images = []api.ImageData{prompt.Image.Data}
	}

	stream := false
	req := &api.ChatRequest{
		Model: o.model,
		Messages: []api.Message{
			{Role: "system", Content: prompt.System},
			user,
		},
		Stream: &stream,
	}

	var sb strings.Builder
	err := o.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		sb.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("ollama returned empty text")
	}
	return text, nil
}
