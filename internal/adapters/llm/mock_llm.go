package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/agribharat/agribharat-api/internal/domain"
)

// MockLLM answers without calling any model. It echoes the first line of the
// user content so local runs and tests get deterministic replies.
type MockLLM struct{}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) GenerateReply(_ context.Context, prompt domain.Prompt) (string, error) {
	line, _, _ := strings.Cut(strings.TrimSpace(prompt.User), "\n")
	if prompt.Image != nil {
		return fmt.Sprintf("Mock advisory (image %s, %d bytes): %s", prompt.Image.MimeType, len(prompt.Image.Data), line), nil
	}
	return fmt.Sprintf("Mock advisory: %s", line), nil
}
